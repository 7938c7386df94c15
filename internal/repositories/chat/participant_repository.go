package chat

import (
	"time"

	"gorm.io/gorm"

	"artlink_backend/internal/models/chat"
)

type ParticipantRepository struct {
	DB *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{DB: db}
}

// IsParticipant reports whether the user is a current (not left) member.
// Callers re-check this on every mutating intent; membership is never cached
// across socket frames.
func (r *ParticipantRepository) IsParticipant(userID, conversationID string) (bool, error) {
	var count int64
	err := r.DB.Model(&chat.ConversationParticipant{}).
		Where("user_id = ? AND conversation_id = ? AND left_at IS NULL", userID, conversationID).
		Count(&count).Error
	return count > 0, err
}

func (r *ParticipantRepository) GetParticipants(conversationID string) ([]chat.ConversationParticipant, error) {
	var participants []chat.ConversationParticipant
	err := r.DB.Where("conversation_id = ? AND left_at IS NULL", conversationID).
		Find(&participants).Error
	return participants, err
}

// ParticipantIDs returns the current member ids, the set fan-out targets.
func (r *ParticipantRepository) ParticipantIDs(conversationID string) ([]string, error) {
	var ids []string
	err := r.DB.Model(&chat.ConversationParticipant{}).
		Where("conversation_id = ? AND left_at IS NULL", conversationID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *ParticipantRepository) UpdateLastRead(userID, conversationID string, t time.Time) error {
	return r.DB.Model(&chat.ConversationParticipant{}).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		Update("last_read_at", t).Error
}

// Leave is the per-user soft delete of a conversation.
func (r *ParticipantRepository) Leave(userID, conversationID string) error {
	now := time.Now()
	return r.DB.Model(&chat.ConversationParticipant{}).
		Where("user_id = ? AND conversation_id = ? AND left_at IS NULL", userID, conversationID).
		Update("left_at", now).Error
}

// AllLeft reports whether every participant has left, at which point the
// conversation itself can be removed.
func (r *ParticipantRepository) AllLeft(conversationID string) (bool, error) {
	var remaining int64
	err := r.DB.Model(&chat.ConversationParticipant{}).
		Where("conversation_id = ? AND left_at IS NULL", conversationID).
		Count(&remaining).Error
	return remaining == 0, err
}
