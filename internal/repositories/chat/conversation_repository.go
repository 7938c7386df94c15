package chat

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"artlink_backend/internal/models/chat"
	"artlink_backend/internal/repositories"
)

type ConversationRepository struct {
	DB *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{DB: db}
}

// ParticipantKey builds the canonical key for a participant set: sorted ids
// joined with ':'. The unique index on this key is what guarantees one
// conversation per exact participant set.
func ParticipantKey(userIDs []string) string {
	ids := make([]string, len(userIDs))
	copy(ids, userIDs)
	sort.Strings(ids)
	return strings.Join(ids, ":")
}

// GetOrCreateByParticipants resolves the conversation for the given set,
// creating it if absent. Two concurrent callers both attempt the insert;
// the unique ParticipantKey index lets exactly one win, the other's insert
// is skipped and the follow-up fetch returns the winner's row. Participant
// rows are only written by the winning insert.
func (r *ConversationRepository) GetOrCreateByParticipants(userIDs []string, isGroup bool, title *string) (*chat.Conversation, bool, error) {
	key := ParticipantKey(userIDs)
	now := time.Now()

	conv := &chat.Conversation{
		ID:             uuid.New().String(),
		IsGroup:        isGroup,
		Title:          title,
		ParticipantKey: key,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	res := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(conv)
	if res.Error != nil {
		return nil, false, res.Error
	}
	created := res.RowsAffected > 0

	if created {
		participants := make([]chat.ConversationParticipant, 0, len(userIDs))
		for _, id := range userIDs {
			participants = append(participants, chat.ConversationParticipant{
				ID:             uuid.New().String(),
				ConversationID: conv.ID,
				UserID:         id,
				JoinedAt:       now,
			})
		}
		if err := r.DB.Create(&participants).Error; err != nil {
			return nil, false, err
		}
	}

	var existing chat.Conversation
	err := r.DB.Preload("Participants").
		Where("participant_key = ?", key).
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, repositories.ErrNotFound
	}
	if err != nil {
		return nil, false, err
	}

	return &existing, created, nil
}

func (r *ConversationRepository) GetByID(id string) (*chat.Conversation, error) {
	var conv chat.Conversation
	err := r.DB.Preload("Participants").
		Where("id = ?", id).
		First(&conv).Error
	if err == gorm.ErrRecordNotFound {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetByUser lists a user's conversations, most recently active first,
// skipping ones the user has left.
func (r *ConversationRepository) GetByUser(userID string) ([]chat.Conversation, error) {
	var conversations []chat.Conversation
	err := r.DB.
		Joins("JOIN chat_conversation_participants p ON p.conversation_id = chat_conversations.id").
		Where("p.user_id = ? AND p.left_at IS NULL", userID).
		Preload("Participants").
		Preload("LastMessage").
		Order("chat_conversations.updated_at DESC").
		Find(&conversations).Error
	return conversations, err
}

// TouchActivity bumps the conversation's activity timestamp and last message.
func (r *ConversationRepository) TouchActivity(conversationID, lastMessageID string) error {
	return r.DB.Model(&chat.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message_id": lastMessageID,
			"updated_at":      time.Now(),
		}).Error
}

// HardDelete removes the conversation and everything hanging off it. Called
// once the last participant has left; per-user views are handled by LeftAt
// before that point, so nothing here needs to survive.
func (r *ConversationRepository) HardDelete(conversationID string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var messageIDs []string
		if err := tx.Model(&chat.Message{}).
			Where("conversation_id = ?", conversationID).
			Pluck("id", &messageIDs).Error; err != nil {
			return err
		}
		if len(messageIDs) > 0 {
			if err := tx.Where("message_id IN ?", messageIDs).Delete(&chat.MessageReceipt{}).Error; err != nil {
				return err
			}
			if err := tx.Where("message_id IN ?", messageIDs).Delete(&chat.MessageReaction{}).Error; err != nil {
				return err
			}
			if err := tx.Where("message_id IN ?", messageIDs).Delete(&chat.MessageHide{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("conversation_id = ?", conversationID).Delete(&chat.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", conversationID).Delete(&chat.TypingStatus{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", conversationID).Delete(&chat.ConversationParticipant{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", conversationID).Delete(&chat.Conversation{}).Error
	})
}
