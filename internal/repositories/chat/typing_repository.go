package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"artlink_backend/internal/models/chat"
)

type TypingRepository struct {
	DB *gorm.DB
}

func NewTypingRepository(db *gorm.DB) *TypingRepository {
	return &TypingRepository{DB: db}
}

// Start upserts the (conversation, user) typing row, refreshing UpdatedAt on
// repeated typing-start events.
func (r *TypingRepository) Start(conversationID, userID string) error {
	status := &chat.TypingStatus{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		UserID:         userID,
		UpdatedAt:      time.Now(),
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
	}).Create(status).Error
}

func (r *TypingRepository) Stop(conversationID, userID string) error {
	return r.DB.Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Delete(&chat.TypingStatus{}).Error
}

// ClearForUser removes every typing row the user holds, in any conversation.
// Called on disconnect so no phantom indicator outlives the connection.
func (r *TypingRepository) ClearForUser(userID string) error {
	return r.DB.Where("user_id = ?", userID).Delete(&chat.TypingStatus{}).Error
}

// ActiveTypers lists users currently typing in a conversation, ignoring rows
// older than ttl (stale rows from crashed connections).
func (r *TypingRepository) ActiveTypers(conversationID string, ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	var ids []string
	err := r.DB.Model(&chat.TypingStatus{}).
		Where("conversation_id = ? AND updated_at > ?", conversationID, cutoff).
		Pluck("user_id", &ids).Error
	return ids, err
}

// SweepStale deletes typing rows older than ttl; run periodically by the
// typing sweeper worker.
func (r *TypingRepository) SweepStale(ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	res := r.DB.Where("updated_at <= ?", cutoff).Delete(&chat.TypingStatus{})
	return res.RowsAffected, res.Error
}
