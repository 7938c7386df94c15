package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"artlink_backend/internal/appErrors"
	"artlink_backend/internal/logger"
	"artlink_backend/internal/validator"
)

type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) *BaseHandler {
	return &BaseHandler{validator: v}
}

// BindAndValidateJSON binds the body and runs struct validation. On failure
// it writes the error response and returns false.
func (h *BaseHandler) BindAndValidateJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		logger.Warn("failed to bind request body", "path", c.Request.URL.Path, "error", err)
		appErrors.HandleError(c, appErrors.ErrValidationFailed.WithDetails("invalid request body"))
		return false
	}

	if err := h.validator.Struct(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			appErrors.HandleError(c, appErrors.ValidationError(vErr.Errors))
		} else {
			appErrors.HandleError(c, appErrors.InternalError(err))
		}
		return false
	}
	return true
}

// GetAndAuthorizeUserID pulls the authenticated user from the context set by
// the auth middleware.
func (h *BaseHandler) GetAndAuthorizeUserID(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get("userID")
	if !exists {
		appErrors.HandleError(c, appErrors.ErrUnauthorized)
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		appErrors.HandleError(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return userID, true
}

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	var appErr *appErrors.AppError
	if appErrors.As(err, &appErr) {
		logger.Warn("service error", "error", appErr.Message, "path", c.Request.URL.Path)
		appErrors.HandleError(c, appErr)
		return
	}
	logger.Error("internal server error", "error", err, "path", c.Request.URL.Path)
	appErrors.HandleError(c, appErrors.InternalError(err))
}

func ParseQueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func ParsePagination(c *gin.Context) (limit, offset int) {
	const defaultLimit = 20
	const maxLimit = 100

	limit = ParseQueryInt(c, "limit", defaultLimit)
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	offset = ParseQueryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
