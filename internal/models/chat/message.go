package chat

import "time"

// Message ids are UUIDv7, so creation order and pagination order are the id
// sort order. DeletedAt set by the sender hides the message for everyone;
// MessageHide rows hide it for single users only.
type Message struct {
	ID             string  `gorm:"primaryKey;type:uuid" json:"id"`
	ConversationID string  `gorm:"index;not null" json:"conversation_id"`
	SenderID       string  `gorm:"index;not null" json:"sender_id"`
	RecipientID    *string `gorm:"index" json:"recipient_id,omitempty"`
	Content        string  `gorm:"type:text" json:"content"`
	ReplyToID      *string `gorm:"index" json:"reply_to_id,omitempty"`
	Edited         bool    `gorm:"default:false" json:"edited"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
	DeletedAt      *time.Time `gorm:"index" json:"-"`
	CreatedAt      time.Time  `json:"created_at"`

	// ReplyTo is a weak back reference: deleting a parent never deletes
	// its replies.
	ReplyTo      *Message          `gorm:"foreignKey:ReplyToID" json:"reply_to,omitempty"`
	Reactions    []MessageReaction `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"reactions,omitempty"`
	Receipts     []MessageReceipt  `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
	HiddenFor    []MessageHide     `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Message) TableName() string {
	return "chat_messages"
}

// MessageHide is the per-user "deleted for me" tombstone.
type MessageHide struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	MessageID string    `gorm:"not null;uniqueIndex:idx_message_hides_pair" json:"message_id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_message_hides_pair" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (MessageHide) TableName() string {
	return "chat_message_hides"
}
