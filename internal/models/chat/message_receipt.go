package chat

import "time"

// Receipt kinds.
const (
	ReceiptRead      = "read"
	ReceiptDelivered = "delivered"
)

// MessageReceipt records that a user reached a milestone for a message.
// The (message, user, kind) unique index plus insert-ignore semantics make
// read/delivered state monotonic: set once, never reverted, never duplicated.
type MessageReceipt struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	MessageID string    `gorm:"not null;uniqueIndex:idx_message_receipts_triple" json:"message_id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_message_receipts_triple;index" json:"user_id"`
	Kind      string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_message_receipts_triple" json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

func (MessageReceipt) TableName() string {
	return "chat_message_receipts"
}
