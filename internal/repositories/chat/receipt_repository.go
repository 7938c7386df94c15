package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"artlink_backend/internal/models/chat"
)

type ReceiptRepository struct {
	DB *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{DB: db}
}

// Create writes a receipt with insert-ignore semantics: the unique
// (message, user, kind) index makes receipts monotonic and idempotent, so
// marking the same message read twice leaves exactly one row.
func (r *ReceiptRepository) Create(messageID, userID, kind string) error {
	receipt := &chat.MessageReceipt{
		ID:        uuid.New().String(),
		MessageID: messageID,
		UserID:    userID,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(receipt).Error
}

// CreateMany bulk-inserts receipts, skipping ones that already exist.
func (r *ReceiptRepository) CreateMany(messageIDs []string, userID, kind string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	now := time.Now()
	receipts := make([]chat.MessageReceipt, 0, len(messageIDs))
	for _, id := range messageIDs {
		receipts = append(receipts, chat.MessageReceipt{
			ID:        uuid.New().String(),
			MessageID: id,
			UserID:    userID,
			Kind:      kind,
			CreatedAt: now,
		})
	}
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&receipts).Error
}

func (r *ReceiptRepository) Exists(messageID, userID, kind string) (bool, error) {
	var count int64
	err := r.DB.Model(&chat.MessageReceipt{}).
		Where("message_id = ? AND user_id = ? AND kind = ?", messageID, userID, kind).
		Count(&count).Error
	return count > 0, err
}

func (r *ReceiptRepository) GetByMessage(messageID string) ([]chat.MessageReceipt, error) {
	var receipts []chat.MessageReceipt
	err := r.DB.Where("message_id = ?", messageID).Find(&receipts).Error
	return receipts, err
}

// UnreadCountForConversation counts visible messages from others without a
// read receipt for this user.
func (r *ReceiptRepository) UnreadCountForConversation(userID, conversationID string) (int64, error) {
	var count int64
	err := r.DB.
		Raw(`
			SELECT COUNT(*) FROM chat_messages m
			WHERE m.conversation_id = ?
			AND m.sender_id <> ?
			AND m.deleted_at IS NULL
			AND NOT EXISTS (
				SELECT 1 FROM chat_message_receipts rc
				WHERE rc.message_id = m.id AND rc.user_id = ? AND rc.kind = ?
			)
		`, conversationID, userID, userID, chat.ReceiptRead).
		Scan(&count).Error
	return count, err
}

// TotalUnreadCount derives the account-wide unread message count from
// persisted state. Live pushes are a latency optimization only; this query
// is the source of truth a reconnecting client converges to.
func (r *ReceiptRepository) TotalUnreadCount(userID string) (int64, error) {
	var count int64
	err := r.DB.
		Raw(`
			SELECT COUNT(*) FROM chat_messages m
			JOIN chat_conversation_participants p
				ON p.conversation_id = m.conversation_id AND p.user_id = ? AND p.left_at IS NULL
			WHERE m.sender_id <> ?
			AND m.deleted_at IS NULL
			AND NOT EXISTS (
				SELECT 1 FROM chat_message_receipts rc
				WHERE rc.message_id = m.id AND rc.user_id = ? AND rc.kind = ?
			)
		`, userID, userID, userID, chat.ReceiptRead).
		Scan(&count).Error
	return count, err
}
