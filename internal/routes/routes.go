package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"artlink_backend/internal/handlers"
	"artlink_backend/ws"
)

// RegisterRoutes wires all HTTP and WebSocket routes.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *handlers.AppHandlers, wsHandler *ws.Handler) {
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.ChatHandler.RegisterRoutes(api)
		appHandlers.NotificationHandler.RegisterRoutes(api)
		appHandlers.SocialHandler.RegisterRoutes(api)
		appHandlers.DeviceHandler.RegisterRoutes(api)
	}

	// Socket auth happens in the handler itself: the credential travels as
	// a query parameter and failures close with a distinguishing code.
	ginRouter.GET("/ws", wsHandler.ServeWS)
}
