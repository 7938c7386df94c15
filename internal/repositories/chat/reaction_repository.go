package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"artlink_backend/internal/models/chat"
)

type ReactionRepository struct {
	DB *gorm.DB
}

func NewReactionRepository(db *gorm.DB) *ReactionRepository {
	return &ReactionRepository{DB: db}
}

// Add stores a reaction; the unique (message, user, emoji) index plus
// insert-ignore makes duplicate reactions a no-op.
func (r *ReactionRepository) Add(messageID, userID, emoji string) error {
	reaction := &chat.MessageReaction{
		ID:        uuid.New().String(),
		MessageID: messageID,
		UserID:    userID,
		Emoji:     emoji,
		CreatedAt: time.Now(),
	}
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(reaction).Error
}

func (r *ReactionRepository) Remove(messageID, userID, emoji string) error {
	return r.DB.Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		Delete(&chat.MessageReaction{}).Error
}

func (r *ReactionRepository) GetByMessage(messageID string) ([]chat.MessageReaction, error) {
	var reactions []chat.MessageReaction
	err := r.DB.Where("message_id = ?", messageID).Find(&reactions).Error
	return reactions, err
}
