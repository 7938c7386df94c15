package chat

import "time"

// TypingStatus is ephemeral: upserted on typing-start, removed on
// typing-stop or disconnect, swept when stale. It carries no history and is
// not expected to survive restarts.
type TypingStatus struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ConversationID string    `gorm:"not null;uniqueIndex:idx_typing_statuses_pair" json:"conversation_id"`
	UserID         string    `gorm:"not null;uniqueIndex:idx_typing_statuses_pair" json:"user_id"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (TypingStatus) TableName() string {
	return "chat_typing_statuses"
}
