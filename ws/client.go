package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"artlink_backend/internal/appErrors"
	"artlink_backend/internal/logger"
	"artlink_backend/internal/realtime"
	"artlink_backend/internal/services/chat"
	"artlink_backend/internal/services/dto"
	"artlink_backend/internal/workers"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one authenticated socket. All reads happen on readPump, all
// writes on writePump; nothing else touches Conn directly.
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan OutboundEvent

	manager *Manager
	chat    *chat.ChatService
	typing  *chat.TypingService
	pool    *workers.Pool

	mu     sync.Mutex
	joined map[string]struct{} // conversation IDs this connection joined
	closed bool                // Send is closed; no further sends allowed
}

// trySend queues the event unless the connection is tearing down or its
// buffer is full. Holding mu across the send is what keeps it safe against
// a concurrent closeSend.
func (c *Client) trySend(event OutboundEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- event:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once. A broadcast racing the
// close is rejected by trySend instead of panicking on a closed channel.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// JoinedConversations snapshots the conversations this connection joined.
func (c *Client) JoinedConversations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.joined))
	for id := range c.joined {
		out = append(out, id)
	}
	return out
}

func (c *Client) markJoined(conversationID string) {
	c.mu.Lock()
	c.joined[conversationID] = struct{}{}
	c.mu.Unlock()
}

func (c *Client) markLeft(conversationID string) {
	c.mu.Lock()
	delete(c.joined, conversationID)
	c.mu.Unlock()
}

// readPump consumes frames until the connection drops. A malformed frame or
// a failed intent produces an error event; only transport failure ends the
// session.
func (c *Client) readPump() {
	defer func() {
		c.manager.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("unexpected socket close", "user_id", c.UserID, "error", err)
			}
			return
		}

		var event IncomingEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			c.sendError("malformed frame", string(appErrors.CodeValidationFailed))
			continue
		}

		c.handleIntent(&event)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleIntent routes one client frame. Intents that hit the database run on
// the worker pool so a slow query never blocks this connection's read loop.
func (c *Client) handleIntent(event *IncomingEvent) {
	switch event.Type {
	case IntentPing:
		c.deliver(OutboundEvent{Type: realtime.EventPong})

	case IntentJoin:
		c.submit(func() { c.handleJoin(event) })

	case IntentLeave:
		conversationID := c.conversationID(event)
		if conversationID == "" {
			c.sendError("conversationId required", string(appErrors.CodeValidationFailed))
			return
		}
		c.markLeft(conversationID)
		c.manager.LeaveTopic(c, realtime.ConversationTopic(conversationID))

	case IntentSend:
		c.submit(func() { c.handleSend(event) })

	case IntentTypingStart:
		c.submit(func() { c.handleTyping(event, true) })

	case IntentTypingStop:
		c.submit(func() { c.handleTyping(event, false) })

	default:
		c.sendError("unknown event type", string(appErrors.CodeValidationFailed))
	}
}

// handleJoin validates membership before subscribing; an outsider joining a
// conversation group would otherwise see its traffic.
func (c *Client) handleJoin(event *IncomingEvent) {
	conversationID := c.conversationID(event)
	if conversationID == "" {
		c.sendError("conversationId required", string(appErrors.CodeValidationFailed))
		return
	}

	isMember, err := c.chat.IsParticipant(c.UserID, conversationID)
	if err != nil {
		c.sendAppError(appErrors.InternalError(err))
		return
	}
	if !isMember {
		c.sendAppError(appErrors.ErrNotParticipant)
		return
	}

	c.markJoined(conversationID)
	c.manager.JoinTopic(c, realtime.ConversationTopic(conversationID))
}

// handleSend persists and fans out the message; the persisted message comes
// back on this connection as the synchronous acknowledgment.
func (c *Client) handleSend(event *IncomingEvent) {
	req := &dto.SendMessageRequest{
		ConversationID: event.ConversationID,
		RecipientID:    event.RecipientID,
		Content:        event.Text,
		ReplyToID:      event.ReplyToID,
	}
	if len(event.Data) > 0 {
		if err := json.Unmarshal(event.Data, req); err != nil {
			c.sendError("malformed send payload", string(appErrors.CodeValidationFailed))
			return
		}
	}

	resp, err := c.chat.SendMessage(context.Background(), c.UserID, req)
	if err != nil {
		c.sendAppError(err)
		return
	}

	c.deliver(OutboundEvent{Type: realtime.EventNewMessage, Data: map[string]interface{}{
		"message":         resp,
		"conversation_id": resp.ConversationID,
	}})
}

func (c *Client) handleTyping(event *IncomingEvent, isTyping bool) {
	conversationID := c.conversationID(event)
	if conversationID == "" {
		c.sendError("conversationId required", string(appErrors.CodeValidationFailed))
		return
	}
	if err := c.typing.SetTyping(context.Background(), c.UserID, conversationID, isTyping); err != nil {
		c.sendAppError(err)
	}
}

// submit hands database work to the pool. Saturation comes back to the
// client as a typed error rather than a dropped frame.
func (c *Client) submit(task func()) {
	if err := c.pool.Submit(task); err != nil {
		c.sendError("server busy, try again", string(appErrors.CodeInternal))
	}
}

func (c *Client) conversationID(event *IncomingEvent) string {
	if event.ConversationID != "" {
		return event.ConversationID
	}
	if len(event.Data) > 0 {
		var body struct {
			ConversationID string `json:"conversationId"`
		}
		if err := json.Unmarshal(event.Data, &body); err == nil {
			return body.ConversationID
		}
	}
	return ""
}

func (c *Client) sendAppError(err error) {
	var appErr *appErrors.AppError
	if appErrors.As(err, &appErr) {
		c.sendError(appErr.Message, string(appErr.Code))
		return
	}
	c.sendError("internal error", string(appErrors.CodeInternal))
}

func (c *Client) sendError(message, code string) {
	c.deliver(OutboundEvent{Type: realtime.EventError, Data: ErrorPayload{Message: message, Code: code}})
}

// deliver performs a non-blocking send; events to a saturated or closing
// connection are dropped here because the manager disconnects it anyway.
func (c *Client) deliver(event OutboundEvent) {
	c.trySend(event)
}
