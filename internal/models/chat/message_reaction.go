package chat

import "time"

// MessageReaction is unique per (message, user, emoji): a user may hold
// several distinct reactions on one message but never the same one twice.
type MessageReaction struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	MessageID string    `gorm:"not null;uniqueIndex:idx_message_reactions_triple" json:"message_id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_message_reactions_triple" json:"user_id"`
	Emoji     string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_message_reactions_triple" json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

func (MessageReaction) TableName() string {
	return "chat_message_reactions"
}
