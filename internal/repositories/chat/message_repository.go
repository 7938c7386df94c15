package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"artlink_backend/internal/models/chat"
	"artlink_backend/internal/repositories"
)

type MessageRepository struct {
	DB *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

func (r *MessageRepository) Create(message *chat.Message) error {
	return r.DB.Create(message).Error
}

func (r *MessageRepository) GetByID(id string) (*chat.Message, error) {
	var msg chat.Message
	err := r.DB.Where("id = ? AND deleted_at IS NULL", id).First(&msg).Error
	if err == gorm.ErrRecordNotFound {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetVisible returns a page of messages the user may see: not sender-deleted
// and not hidden for this user. Message ids are UUIDv7, so ordering by id is
// creation order; beforeID pages backwards and the page comes back
// oldest-first (newest-last).
func (r *MessageRepository) GetVisible(userID, conversationID, beforeID string, limit int) ([]chat.Message, error) {
	q := r.DB.
		Where("conversation_id = ? AND deleted_at IS NULL", conversationID).
		Where("NOT EXISTS (SELECT 1 FROM chat_message_hides h WHERE h.message_id = chat_messages.id AND h.user_id = ?)", userID)

	if beforeID != "" {
		q = q.Where("id < ?", beforeID)
	}

	var page []chat.Message
	err := q.Order("id DESC").
		Limit(limit).
		Preload("Reactions").
		Find(&page).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
		page[i], page[j] = page[j], page[i]
	}
	return page, nil
}

// UnreadIDs lists visible messages in the conversation the user has not yet
// read, i.e. those missing a read receipt.
func (r *MessageRepository) UnreadIDs(userID, conversationID string) ([]string, error) {
	var ids []string
	err := r.DB.Model(&chat.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND deleted_at IS NULL", conversationID, userID).
		Where("NOT EXISTS (SELECT 1 FROM chat_message_receipts rc WHERE rc.message_id = chat_messages.id AND rc.user_id = ? AND rc.kind = ?)", userID, chat.ReceiptRead).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *MessageRepository) UpdateContent(messageID, content string) error {
	now := time.Now()
	return r.DB.Model(&chat.Message{}).
		Where("id = ?", messageID).
		Updates(map[string]interface{}{
			"content":   content,
			"edited":    true,
			"edited_at": now,
		}).Error
}

// SoftDelete hides the message for everyone. Only the sender may do this;
// the service enforces that.
func (r *MessageRepository) SoftDelete(messageID string) error {
	now := time.Now()
	return r.DB.Model(&chat.Message{}).
		Where("id = ?", messageID).
		Update("deleted_at", now).Error
}

// HideForUser writes the per-user tombstone. Insert-ignore keeps repeated
// "delete for me" requests idempotent.
func (r *MessageRepository) HideForUser(messageID, userID string) error {
	hide := &chat.MessageHide{
		ID:        uuid.New().String(),
		MessageID: messageID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(hide).Error
}
