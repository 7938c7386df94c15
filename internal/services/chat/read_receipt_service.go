package chat

import (
	"context"
	"time"

	"artlink_backend/internal/appErrors"
	modelChat "artlink_backend/internal/models/chat"
	repoChat "artlink_backend/internal/repositories/chat"
	"artlink_backend/internal/services"
)

// ReadReceiptService marks messages read. Receipts are monotonic and
// idempotent: marking the same message read twice leaves one row and never
// errors.
type ReadReceiptService struct {
	Participants *repoChat.ParticipantRepository
	Messages     *repoChat.MessageRepository
	Receipts     *repoChat.ReceiptRepository
	Fanout       *services.FanoutService
}

func NewReadReceiptService(
	participants *repoChat.ParticipantRepository,
	messages *repoChat.MessageRepository,
	receipts *repoChat.ReceiptRepository,
	fanout *services.FanoutService,
) *ReadReceiptService {
	return &ReadReceiptService{
		Participants: participants,
		Messages:     messages,
		Receipts:     receipts,
		Fanout:       fanout,
	}
}

// MarkConversationRead writes read receipts for every unread message in the
// conversation and pushes the caller a fresh unread count.
func (s *ReadReceiptService) MarkConversationRead(ctx context.Context, userID, conversationID string) error {
	isMember, err := s.Participants.IsParticipant(userID, conversationID)
	if err != nil {
		return appErrors.InternalError(err)
	}
	if !isMember {
		return appErrors.ErrNotParticipant
	}

	unreadIDs, err := s.Messages.UnreadIDs(userID, conversationID)
	if err != nil {
		return appErrors.InternalError(err)
	}

	if err := s.Receipts.CreateMany(unreadIDs, userID, modelChat.ReceiptRead); err != nil {
		return appErrors.InternalError(err)
	}

	if err := s.Participants.UpdateLastRead(userID, conversationID, time.Now()); err != nil {
		return appErrors.InternalError(err)
	}

	s.Fanout.PushUnreadCounts(ctx, userID)
	return nil
}

// MarkMessageRead records one read receipt.
func (s *ReadReceiptService) MarkMessageRead(ctx context.Context, userID, messageID string) error {
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

	if err := s.Receipts.Create(messageID, userID, modelChat.ReceiptRead); err != nil {
		return appErrors.InternalError(err)
	}

	s.Fanout.PushUnreadCounts(ctx, userID)
	return nil
}

// IsReadBy reports whether the user has a read receipt for the message.
func (s *ReadReceiptService) IsReadBy(userID, messageID string) (bool, error) {
	return s.Receipts.Exists(messageID, userID, modelChat.ReceiptRead)
}
