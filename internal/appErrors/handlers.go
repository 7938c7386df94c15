package appErrors

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"artlink_backend/internal/logger"
)

// HandleError writes an error response for a gin request. AppErrors keep
// their code and status; anything else becomes a 500 with a generic body.
func HandleError(c *gin.Context, err error) {
	var appErr *AppError
	if As(err, &appErr) {
		if appErr.HTTPCode >= http.StatusInternalServerError {
			logger.Error("request failed", "code", appErr.Code, "error", appErr.Error(), "path", c.FullPath())
		}
		c.JSON(appErr.HTTPCode, gin.H{"error": appErr})
		return
	}

	logger.Error("unhandled error", "error", err.Error(), "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, gin.H{"error": InternalError(err)})
}

// AbortWith stops the request chain with the given AppError.
func AbortWith(c *gin.Context, appErr *AppError) {
	c.AbortWithStatusJSON(appErr.HTTPCode, gin.H{"error": appErr})
}
