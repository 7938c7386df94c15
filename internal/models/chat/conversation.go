package chat

import "time"

// Conversation is a persistent thread between a fixed participant set.
// ParticipantKey is the sorted, colon-joined set of participant ids; its
// unique index is what makes concurrent create-or-fetch converge on one row.
type Conversation struct {
	ID             string  `gorm:"primaryKey;type:uuid" json:"id"`
	IsGroup        bool    `gorm:"default:false" json:"is_group"`
	Title          *string `json:"title,omitempty"`
	ParticipantKey string  `gorm:"uniqueIndex;not null" json:"-"`
	LastMessageID  *string   `gorm:"index" json:"last_message_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
	LastMessage  *Message                  `gorm:"foreignKey:LastMessageID" json:"last_message,omitempty"`
}

func (Conversation) TableName() string {
	return "chat_conversations"
}
