package chat

import (
	"context"
	"encoding/json"
	"time"

	"artlink_backend/internal/appErrors"
	"artlink_backend/internal/realtime"
	"artlink_backend/internal/realtime/bus"
	repoChat "artlink_backend/internal/repositories/chat"
	"artlink_backend/internal/services"
)

// TypingService manages the ephemeral typing state. Nothing here survives a
// restart, and a typing event from a non-participant is dropped silently:
// it means the client holds a stale join, not that it did something wrong.
type TypingService struct {
	Participants *repoChat.ParticipantRepository
	Typing       *repoChat.TypingRepository
	Fanout       *services.FanoutService
	TTL          time.Duration
}

func NewTypingService(
	participants *repoChat.ParticipantRepository,
	typing *repoChat.TypingRepository,
	fanout *services.FanoutService,
	ttl time.Duration,
) *TypingService {
	return &TypingService{
		Participants: participants,
		Typing:       typing,
		Fanout:       fanout,
		TTL:          ttl,
	}
}

// SetTyping starts or stops the indicator and tells the other participants.
// The originator never receives their own echo.
func (s *TypingService) SetTyping(ctx context.Context, userID, conversationID string, isTyping bool) error {
	isMember, err := s.Participants.IsParticipant(userID, conversationID)
	if err != nil {
		return appErrors.InternalError(err)
	}
	if !isMember {
		// Stale join; drop without error.
		return nil
	}

	if isTyping {
		err = s.Typing.Start(conversationID, userID)
	} else {
		err = s.Typing.Stop(conversationID, userID)
	}
	if err != nil {
		return appErrors.InternalError(err)
	}

	payload, err := json.Marshal(realtime.TypingPayload{
		ConversationID: conversationID,
		UserID:         userID,
		IsTyping:       isTyping,
	})
	if err != nil {
		return nil
	}

	s.Fanout.Broadcast(ctx, bus.Event{
		Topic:   realtime.ConversationTopic(conversationID),
		Type:    realtime.EventUserTyping,
		Data:    payload,
		Exclude: userID,
	})
	return nil
}

// ClearForUser removes every typing row a disconnected user held and tells
// the affected conversations the user stopped typing.
func (s *TypingService) ClearForUser(ctx context.Context, userID string, conversationIDs []string) {
	_ = s.Typing.ClearForUser(userID)

	for _, conversationID := range conversationIDs {
		payload, err := json.Marshal(realtime.TypingPayload{
			ConversationID: conversationID,
			UserID:         userID,
			IsTyping:       false,
		})
		if err != nil {
			continue
		}
		s.Fanout.Broadcast(ctx, bus.Event{
			Topic:   realtime.ConversationTopic(conversationID),
			Type:    realtime.EventUserTyping,
			Data:    payload,
			Exclude: userID,
		})
	}
}

// ActiveTypers lists users currently typing in a conversation.
func (s *TypingService) ActiveTypers(userID, conversationID string) ([]string, error) {
	isMember, err := s.Participants.IsParticipant(userID, conversationID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	if !isMember {
		return nil, appErrors.ErrNotParticipant
	}
	return s.Typing.ActiveTypers(conversationID, s.TTL)
}
