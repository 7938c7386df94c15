package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"artlink_backend/database"
	"artlink_backend/internal/auth"
	"artlink_backend/internal/config"
	"artlink_backend/internal/push"
	"artlink_backend/internal/realtime"
	"artlink_backend/internal/realtime/bus"
	"artlink_backend/internal/repositories"
	repoChat "artlink_backend/internal/repositories/chat"
	"artlink_backend/internal/services"
	svcChat "artlink_backend/internal/services/chat"
	"artlink_backend/internal/workers"
)

func newTestServer(t *testing.T) (*httptest.Server, *Manager) {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	cfg.WebSocket.HandshakeTimeout = 5
	cfg.WebSocket.SendBufferSize = 32
	cfg.WebSocket.MaxMessageLength = 500
	config.AppConfig = cfg

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	notificationRepo := repositories.NewNotificationRepository(db)
	deviceRepo := repositories.NewDeviceRepository(db)
	conversationRepo := repoChat.NewConversationRepository(db)
	participantRepo := repoChat.NewParticipantRepository(db)
	messageRepo := repoChat.NewMessageRepository(db)
	receiptRepo := repoChat.NewReceiptRepository(db)
	typingRepo := repoChat.NewTypingRepository(db)

	eventBus := bus.NewMemoryBus()
	manager := NewManager(eventBus)

	dispatcher := push.NewDispatcherWithProviders(map[string]push.Provider{}, deviceRepo)
	fanout := services.NewFanoutService(notificationRepo, receiptRepo, deviceRepo, dispatcher, eventBus, manager)
	chatService := svcChat.NewChatService(conversationRepo, participantRepo, messageRepo, receiptRepo, fanout)
	typingService := svcChat.NewTypingService(participantRepo, typingRepo, fanout, 15*time.Second)

	manager.OnDisconnect = func(userID string, joined []string) {
		typingService.ClearForUser(context.Background(), userID, joined)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Run(ctx)

	pool := workers.NewPool(4, 32)
	handler := NewHandler(manager, chatService, typingService, pool)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", handler.ServeWS)

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		cancel()
		pool.Stop(context.Background())
	})
	return srv, manager
}

func wsURL(srv *httptest.Server, token string) string {
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if token != "" {
		u += "?token=" + token
	}
	return u
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) OutboundEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event OutboundEvent
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func closeCodeOf(t *testing.T, conn *websocket.Conn) int {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok, "expected close error, got %v", err)
	return closeErr.Code
}

func TestConnectWithoutTokenClosesWith4001(t *testing.T) {
	srv, _ := newTestServer(t)

	conn := dial(t, srv, "")
	assert.Equal(t, CloseNoCredential, closeCodeOf(t, conn))
}

func TestConnectWithInvalidTokenClosesWith4002(t *testing.T) {
	srv, _ := newTestServer(t)

	conn := dial(t, srv, "not-a-real-token")
	assert.Equal(t, CloseInvalidCredential, closeCodeOf(t, conn))
}

func TestConnectWithValidTokenSendsConnectedEvent(t *testing.T) {
	srv, manager := newTestServer(t)

	token, err := auth.GenerateToken("alice")
	require.NoError(t, err)

	conn := dial(t, srv, token)
	event := readEvent(t, conn)
	assert.Equal(t, realtime.EventConnected, event.Type)

	require.Eventually(t, func() bool {
		return manager.IsUserConnected("alice")
	}, time.Second, 5*time.Millisecond)
}

func TestPingPong(t *testing.T) {
	srv, _ := newTestServer(t)

	token, err := auth.GenerateToken("alice")
	require.NoError(t, err)

	conn := dial(t, srv, token)
	readEvent(t, conn) // connected

	require.NoError(t, conn.WriteJSON(IncomingEvent{Type: IntentPing}))
	event := readEvent(t, conn)
	assert.Equal(t, realtime.EventPong, event.Type)
}

func TestSendMessageAcknowledgedSynchronously(t *testing.T) {
	srv, _ := newTestServer(t)

	token, err := auth.GenerateToken("alice")
	require.NoError(t, err)

	conn := dial(t, srv, token)
	readEvent(t, conn) // connected

	require.NoError(t, conn.WriteJSON(IncomingEvent{
		Type:        IntentSend,
		RecipientID: "bob",
		Text:        "hello bob",
	}))

	event := readEvent(t, conn)
	require.Equal(t, realtime.EventNewMessage, event.Type)

	raw, err := json.Marshal(event.Data)
	require.NoError(t, err)
	var ack struct {
		Message struct {
			ID       string `json:"id"`
			SenderID string `json:"sender_id"`
			Content  string `json:"content"`
		} `json:"message"`
	}
	require.NoError(t, json.Unmarshal(raw, &ack))
	assert.NotEmpty(t, ack.Message.ID)
	assert.Equal(t, "alice", ack.Message.SenderID)
	assert.Equal(t, "hello bob", ack.Message.Content)
}

func TestMalformedFrameKeepsConnectionOpen(t *testing.T) {
	srv, _ := newTestServer(t)

	token, err := auth.GenerateToken("alice")
	require.NoError(t, err)

	conn := dial(t, srv, token)
	readEvent(t, conn) // connected

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	event := readEvent(t, conn)
	assert.Equal(t, realtime.EventError, event.Type)

	// The session survives the bad frame.
	require.NoError(t, conn.WriteJSON(IncomingEvent{Type: IntentPing}))
	event = readEvent(t, conn)
	assert.Equal(t, realtime.EventPong, event.Type)
}

func TestUnknownIntentReturnsErrorEvent(t *testing.T) {
	srv, _ := newTestServer(t)

	token, err := auth.GenerateToken("alice")
	require.NoError(t, err)

	conn := dial(t, srv, token)
	readEvent(t, conn) // connected

	require.NoError(t, conn.WriteJSON(IncomingEvent{Type: "teleport"}))
	event := readEvent(t, conn)
	assert.Equal(t, realtime.EventError, event.Type)
}

func TestSendToForeignConversationReturnsErrorEvent(t *testing.T) {
	srv, _ := newTestServer(t)

	token, err := auth.GenerateToken("mallory")
	require.NoError(t, err)

	conn := dial(t, srv, token)
	readEvent(t, conn) // connected

	require.NoError(t, conn.WriteJSON(IncomingEvent{
		Type:           IntentSend,
		ConversationID: "not-my-conversation",
		Text:           "let me in",
	}))
	event := readEvent(t, conn)
	assert.Equal(t, realtime.EventError, event.Type)
}

func TestDisconnectClearsPresence(t *testing.T) {
	srv, manager := newTestServer(t)

	token, err := auth.GenerateToken("alice")
	require.NoError(t, err)

	conn := dial(t, srv, token)
	readEvent(t, conn) // connected

	require.Eventually(t, func() bool {
		return manager.IsUserConnected("alice")
	}, time.Second, 5*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return !manager.IsUserConnected("alice")
	}, time.Second, 5*time.Millisecond)
}
