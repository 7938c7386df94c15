package chat

import "time"

// ConversationParticipant is unique per (conversation, user). LastReadAt
// supports unread counts without scanning receipts. LeftAt is the per-user
// soft delete; the conversation itself is removed only when every
// participant has left.
type ConversationParticipant struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ConversationID string `gorm:"not null;uniqueIndex:idx_conv_participants_pair" json:"conversation_id"`
	UserID         string `gorm:"not null;uniqueIndex:idx_conv_participants_pair;index" json:"user_id"`
	JoinedAt       time.Time  `json:"joined_at"`
	LastReadAt     *time.Time `json:"last_read_at,omitempty"`
	LeftAt         *time.Time `json:"-"`
}

func (ConversationParticipant) TableName() string {
	return "chat_conversation_participants"
}
