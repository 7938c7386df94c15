package chat

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"artlink_backend/internal/appErrors"
	"artlink_backend/internal/config"
	"artlink_backend/internal/logger"
	modelChat "artlink_backend/internal/models/chat"
	"artlink_backend/internal/realtime"
	"artlink_backend/internal/realtime/bus"
	"artlink_backend/internal/repositories"
	repoChat "artlink_backend/internal/repositories/chat"
	"artlink_backend/internal/services"
	"artlink_backend/internal/services/dto"
)

// ChatService owns conversations and messages. Fan-out of the resulting
// events goes through the FanoutService; everything here mutates the store
// first, so a failed insert aborts the operation before any broadcast.
type ChatService struct {
	Conversations *repoChat.ConversationRepository
	Participants  *repoChat.ParticipantRepository
	Messages      *repoChat.MessageRepository
	Receipts      *repoChat.ReceiptRepository
	Fanout        *services.FanoutService
}

func NewChatService(
	conversations *repoChat.ConversationRepository,
	participants *repoChat.ParticipantRepository,
	messages *repoChat.MessageRepository,
	receipts *repoChat.ReceiptRepository,
	fanout *services.FanoutService,
) *ChatService {
	return &ChatService{
		Conversations: conversations,
		Participants:  participants,
		Messages:      messages,
		Receipts:      receipts,
		Fanout:        fanout,
	}
}

// GetOrCreateConversation resolves the conversation for the participant set,
// creating it when absent. Concurrent creation from both sides converges on
// one row via the participant-key unique index.
func (s *ChatService) GetOrCreateConversation(creatorID string, req *dto.CreateConversationRequest) (*modelChat.Conversation, error) {
	ids := dedupe(append(req.ParticipantIDs, creatorID))
	if len(ids) < 2 {
		return nil, appErrors.ErrValidationFailed.WithDetails("a conversation needs at least two participants")
	}

	conv, _, err := s.Conversations.GetOrCreateByParticipants(ids, req.IsGroup, req.Title)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return conv, nil
}

// SendMessage validates, resolves the conversation (lazily creating a direct
// one when only a recipient is given), persists the message and hands it to
// the fan-out engine. The caller gets the persisted message back as the
// synchronous acknowledgment.
func (s *ChatService) SendMessage(ctx context.Context, senderID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, appErrors.ErrEmptyMessage
	}
	if max := config.GetConfig().WebSocket.MaxMessageLength; len(content) > max {
		return nil, appErrors.ErrMessageTooLong
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		if req.RecipientID == "" {
			return nil, appErrors.ErrValidationFailed.WithDetails("conversation_id or recipient_id required")
		}
		if req.RecipientID == senderID {
			return nil, appErrors.ErrValidationFailed.WithDetails("cannot message yourself")
		}
		conv, _, err := s.Conversations.GetOrCreateByParticipants([]string{senderID, req.RecipientID}, false, nil)
		if err != nil {
			return nil, appErrors.InternalError(err)
		}
		conversationID = conv.ID
	}

	// Membership is re-validated on every send; it can change mid-session.
	isMember, err := s.Participants.IsParticipant(senderID, conversationID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	if !isMember {
		return nil, appErrors.ErrNotParticipant
	}

	if req.ReplyToID != nil {
		parent, err := s.Messages.GetByID(*req.ReplyToID)
		if err != nil || parent.ConversationID != conversationID {
			return nil, appErrors.ErrMessageNotFound
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	message := &modelChat.Message{
		ID:             id.String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		ReplyToID:      req.ReplyToID,
		CreatedAt:      time.Now(),
	}
	if req.RecipientID != "" {
		message.RecipientID = &req.RecipientID
	}

	if err := s.Messages.Create(message); err != nil {
		// Source-of-truth failure: abort before any broadcast happens.
		return nil, appErrors.InternalError(err)
	}

	if err := s.Conversations.TouchActivity(conversationID, message.ID); err != nil {
		logger.Warn("failed to touch conversation activity", "conversation_id", conversationID, "error", err)
	}

	// The sender has read their own message by definition.
	if err := s.Receipts.Create(message.ID, senderID, modelChat.ReceiptRead); err != nil {
		logger.Warn("failed to create sender receipt", "message_id", message.ID, "error", err)
	}

	s.fanOutMessage(ctx, message, senderID)

	return dto.NewMessageResponse(message), nil
}

func (s *ChatService) fanOutMessage(ctx context.Context, message *modelChat.Message, senderID string) {
	recipients, err := s.recipientsOf(message.ConversationID, senderID)
	if err != nil {
		logger.Error("failed to resolve fan-out recipients", "conversation_id", message.ConversationID, "error", err)
		return
	}

	s.Fanout.Publish(ctx, services.Event{
		Recipients: recipients,
		Type:       realtime.EventNewMessage,
		ActorID:    &message.SenderID,
		Title:      "New message",
		Body:       message.Content,
		Data: map[string]interface{}{
			"message":         dto.NewMessageResponse(message),
			"conversation_id": message.ConversationID,
		},
	})

	for _, recipientID := range recipients {
		s.Fanout.PushUnreadCounts(ctx, recipientID)
	}
}

// recipientsOf returns the current participants except the actor.
func (s *ChatService) recipientsOf(conversationID, actorID string) ([]string, error) {
	ids, err := s.Participants.ParticipantIDs(conversationID)
	if err != nil {
		return nil, err
	}
	recipients := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != actorID {
			recipients = append(recipients, id)
		}
	}
	return recipients, nil
}

// EditMessage updates the text; sender only. Participants hear about it via
// a message_updated broadcast, not a persisted notification.
func (s *ChatService) EditMessage(ctx context.Context, userID, messageID string, req *dto.EditMessageRequest) (*dto.MessageResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, appErrors.ErrEmptyMessage
	}

	message, err := s.Messages.GetByID(messageID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.ErrMessageNotFound
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	if message.SenderID != userID {
		return nil, appErrors.ErrNotMessageSender
	}

	if err := s.Messages.UpdateContent(messageID, content); err != nil {
		return nil, appErrors.InternalError(err)
	}

	message.Content = content
	message.Edited = true
	now := time.Now()
	message.EditedAt = &now

	s.broadcastToParticipants(ctx, message.ConversationID, userID, realtime.EventMessageUpdated, dto.NewMessageResponse(message))

	return dto.NewMessageResponse(message), nil
}

// DeleteMessage removes the message globally when the caller is the sender,
// or hides it only for the caller when forMe is set. A non-sender may only
// delete for themselves.
func (s *ChatService) DeleteMessage(ctx context.Context, userID, messageID string, forMe bool) error {
	message, err := s.Messages.GetByID(messageID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return appErrors.ErrMessageNotFound
	}
	if err != nil {
		return appErrors.InternalError(err)
	}

	isMember, err := s.Participants.IsParticipant(userID, message.ConversationID)
	if err != nil {
		return appErrors.InternalError(err)
	}
	if !isMember {
		return appErrors.ErrNotParticipant
	}

	if forMe || message.SenderID != userID {
		if !forMe && message.SenderID != userID {
			return appErrors.ErrNotMessageSender
		}
		if err := s.Messages.HideForUser(messageID, userID); err != nil {
			return appErrors.InternalError(err)
		}
		return nil
	}

	if err := s.Messages.SoftDelete(messageID); err != nil {
		return appErrors.InternalError(err)
	}

	s.broadcastToParticipants(ctx, message.ConversationID, userID, realtime.EventMessageDeleted, map[string]string{
		"message_id":      messageID,
		"conversation_id": message.ConversationID,
	})

	return nil
}

func (s *ChatService) broadcastToParticipants(ctx context.Context, conversationID, actorID, eventType string, payload interface{}) {
	recipients, err := s.recipientsOf(conversationID, actorID)
	if err != nil {
		logger.Error("failed to resolve broadcast recipients", "conversation_id", conversationID, "error", err)
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}

	for _, recipientID := range recipients {
		s.Fanout.Broadcast(ctx, bus.Event{
			Topic: realtime.UserTopic(recipientID),
			Type:  eventType,
			Data:  raw,
		})
	}
}

// GetConversations lists the user's conversations with unread counts.
func (s *ChatService) GetConversations(userID string) ([]dto.ConversationResponse, error) {
	conversations, err := s.Conversations.GetByUser(userID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	out := make([]dto.ConversationResponse, 0, len(conversations))
	for i := range conversations {
		conv := &conversations[i]

		unread, err := s.Receipts.UnreadCountForConversation(userID, conv.ID)
		if err != nil {
			return nil, appErrors.InternalError(err)
		}

		participantIDs := make([]string, 0, len(conv.Participants))
		for _, p := range conv.Participants {
			if p.LeftAt == nil {
				participantIDs = append(participantIDs, p.UserID)
			}
		}

		resp := dto.ConversationResponse{
			ID:           conv.ID,
			IsGroup:      conv.IsGroup,
			Title:        conv.Title,
			Participants: participantIDs,
			UnreadCount:  unread,
			UpdatedAt:    conv.UpdatedAt,
		}
		if conv.LastMessage != nil && conv.LastMessage.DeletedAt == nil {
			resp.LastMessage = dto.NewMessageResponse(conv.LastMessage)
		}
		out = append(out, resp)
	}
	return out, nil
}

// GetMessages returns a page of visible messages, oldest-first within the
// page, and records delivered receipts for the fetched messages.
func (s *ChatService) GetMessages(userID, conversationID, beforeID string, limit int) ([]dto.MessageResponse, error) {
	isMember, err := s.Participants.IsParticipant(userID, conversationID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	if !isMember {
		return nil, appErrors.ErrNotParticipant
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	messages, err := s.Messages.GetVisible(userID, conversationID, beforeID, limit)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	deliveredIDs := make([]string, 0, len(messages))
	out := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		if messages[i].SenderID != userID {
			deliveredIDs = append(deliveredIDs, messages[i].ID)
		}
		out = append(out, *dto.NewMessageResponse(&messages[i]))
	}

	// Delivery state is monotonic; duplicates are skipped by the receipt's
	// unique index.
	if err := s.Receipts.CreateMany(deliveredIDs, userID, modelChat.ReceiptDelivered); err != nil {
		logger.Warn("failed to record delivered receipts", "conversation_id", conversationID, "error", err)
	}

	return out, nil
}

// LeaveConversation soft-deletes the conversation for this user. Once every
// participant has left, the conversation and its messages are removed for
// good.
func (s *ChatService) LeaveConversation(userID, conversationID string) error {
	isMember, err := s.Participants.IsParticipant(userID, conversationID)
	if err != nil {
		return appErrors.InternalError(err)
	}
	if !isMember {
		return appErrors.ErrNotParticipant
	}

	if err := s.Participants.Leave(userID, conversationID); err != nil {
		return appErrors.InternalError(err)
	}

	allLeft, err := s.Participants.AllLeft(conversationID)
	if err != nil {
		return appErrors.InternalError(err)
	}
	if allLeft {
		if err := s.Conversations.HardDelete(conversationID); err != nil {
			return appErrors.InternalError(err)
		}
	}
	return nil
}

// GetUnreadCounts derives both unread totals from persisted state.
func (s *ChatService) GetUnreadCounts(userID string, notificationCount int64) (*dto.UnreadCountResponse, error) {
	messageCount, err := s.Receipts.TotalUnreadCount(userID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return &dto.UnreadCountResponse{
		MessageCount:      messageCount,
		NotificationCount: notificationCount,
	}, nil
}

// IsParticipant re-validates membership for the session handler.
func (s *ChatService) IsParticipant(userID, conversationID string) (bool, error) {
	return s.Participants.IsParticipant(userID, conversationID)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
