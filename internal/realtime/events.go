package realtime

import "fmt"

// Server -> client event kinds carried over the bus and the socket.
const (
	EventConnected         = "connected"
	EventNewMessage        = "new_message"
	EventMessageUpdated    = "message_updated"
	EventMessageDeleted    = "message_deleted"
	EventUserTyping        = "user_typing"
	EventUnreadCountUpdate = "unread_count_update"
	EventFollowNotif       = "follow_notification"
	EventError             = "error"
	EventPong              = "pong"
)

// UserTopic is the account-wide broadcast group: notifications, unread
// counts, and messages pushed to every live connection of one user.
func UserTopic(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

// ConversationTopic groups connections that joined one conversation.
func ConversationTopic(conversationID string) string {
	return fmt.Sprintf("conversation:%s", conversationID)
}

// TypingPayload is the body of a user_typing event.
type TypingPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"user"`
	IsTyping       bool   `json:"isTyping"`
}

// UnreadPayload is the body of an unread_count_update event.
type UnreadPayload struct {
	MessageCount      int64 `json:"messageCount"`
	NotificationCount int64 `json:"notificationCount"`
}
