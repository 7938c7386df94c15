package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"artlink_backend/internal/auth"
	"artlink_backend/internal/config"
	"artlink_backend/internal/logger"
	"artlink_backend/internal/realtime"
	"artlink_backend/internal/services/chat"
	"artlink_backend/internal/workers"
)

// Handler upgrades HTTP requests into managed socket sessions.
type Handler struct {
	manager  *Manager
	chat     *chat.ChatService
	typing   *chat.TypingService
	pool     *workers.Pool
	upgrader websocket.Upgrader
}

func NewHandler(manager *Manager, chatSvc *chat.ChatService, typingSvc *chat.TypingService, pool *workers.Pool) *Handler {
	cfg := config.GetConfig()
	return &Handler{
		manager: manager,
		chat:    chatSvc,
		typing:  typingSvc,
		pool:    pool,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: time.Duration(cfg.WebSocket.HandshakeTimeout) * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS authenticates via the token query parameter and upgrades. Auth is
// checked before the upgrade; on failure the socket is still upgraded so a
// distinguishing close code can be delivered, then shut immediately. No
// connected event precedes an auth close.
func (h *Handler) ServeWS(c *gin.Context) {
	token := c.Query("token")

	var closeCode int
	var closeReason string
	var userID string

	if token == "" {
		closeCode, closeReason = CloseNoCredential, "missing credential"
	} else {
		claims, err := auth.ParseToken(token)
		if err != nil {
			closeCode, closeReason = CloseInvalidCredential, "invalid credential"
		} else {
			userID = claims.UserID
		}
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	if closeCode != 0 {
		deadline := time.Now().Add(writeWait)
		conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(closeCode, closeReason), deadline)
		conn.Close()
		return
	}

	client := &Client{
		ID:      uuid.New().String(),
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan OutboundEvent, config.GetConfig().WebSocket.SendBufferSize),
		manager: h.manager,
		chat:    h.chat,
		typing:  h.typing,
		pool:    h.pool,
		joined:  make(map[string]struct{}),
	}

	// Queued before registration so connected is always the first frame.
	client.deliver(OutboundEvent{Type: realtime.EventConnected, Data: map[string]string{
		"connectionId": client.ID,
		"userId":       client.UserID,
	}})

	h.manager.Register(client)

	go client.writePump()
	go client.readPump()
}
