package chat

import (
	"context"

	"artlink_backend/internal/appErrors"
	"artlink_backend/internal/models"
	modelChat "artlink_backend/internal/models/chat"
	repoChat "artlink_backend/internal/repositories/chat"
	"artlink_backend/internal/services"
)

type ReactionService struct {
	Participants *repoChat.ParticipantRepository
	Messages     *repoChat.MessageRepository
	Reactions    *repoChat.ReactionRepository
	Fanout       *services.FanoutService
}

func NewReactionService(
	participants *repoChat.ParticipantRepository,
	messages *repoChat.MessageRepository,
	reactions *repoChat.ReactionRepository,
	fanout *services.FanoutService,
) *ReactionService {
	return &ReactionService{
		Participants: participants,
		Messages:     messages,
		Reactions:    reactions,
		Fanout:       fanout,
	}
}

// Add stores a reaction. The unique (message, user, emoji) triple makes a
// repeated reaction a no-op; the sender is notified only on the first one.
func (s *ReactionService) Add(ctx context.Context, userID, messageID, emoji string) error {
	if emoji == "" {
		return appErrors.ErrValidationFailed.WithDetails("emoji required")
	}

	message, err := s.Messages.GetByID(messageID)
	if err != nil {
		return appErrors.ErrMessageNotFound
	}

	isMember, err := s.Participants.IsParticipant(userID, message.ConversationID)
	if err != nil {
		return appErrors.InternalError(err)
	}
	if !isMember {
		return appErrors.ErrNotParticipant
	}

	existing, err := s.hasReaction(messageID, userID, emoji)
	if err != nil {
		return appErrors.InternalError(err)
	}

	if err := s.Reactions.Add(messageID, userID, emoji); err != nil {
		return appErrors.InternalError(err)
	}

	if !existing && message.SenderID != userID {
		s.Fanout.Publish(ctx, services.Event{
			Recipients: []string{message.SenderID},
			Type:       models.NotificationReaction,
			ActorID:    &userID,
			Title:      "New reaction",
			Body:       emoji,
			Data: map[string]interface{}{
				"message_id":      messageID,
				"conversation_id": message.ConversationID,
				"emoji":           emoji,
			},
		})
	}
	return nil
}

func (s *ReactionService) Remove(ctx context.Context, userID, messageID, emoji string) error {
	message, err := s.Messages.GetByID(messageID)
	if err != nil {
		return appErrors.ErrMessageNotFound
	}

	isMember, err := s.Participants.IsParticipant(userID, message.ConversationID)
	if err != nil {
		return appErrors.InternalError(err)
	}
	if !isMember {
		return appErrors.ErrNotParticipant
	}

	if err := s.Reactions.Remove(messageID, userID, emoji); err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *ReactionService) GetByMessage(messageID string) ([]modelChat.MessageReaction, error) {
	return s.Reactions.GetByMessage(messageID)
}

func (s *ReactionService) hasReaction(messageID, userID, emoji string) (bool, error) {
	reactions, err := s.Reactions.GetByMessage(messageID)
	if err != nil {
		return false, err
	}
	for _, r := range reactions {
		if r.UserID == userID && r.Emoji == emoji {
			return true, nil
		}
	}
	return false, nil
}
