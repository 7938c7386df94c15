package dto

import (
	"time"

	"artlink_backend/internal/models/chat"
)

type CreateConversationRequest struct {
	ParticipantIDs []string `json:"participant_ids" validate:"required,min=1,dive,required"`
	IsGroup        bool     `json:"is_group"`
	Title          *string  `json:"title,omitempty"`
}

type SendMessageRequest struct {
	ConversationID string  `json:"conversation_id,omitempty"`
	RecipientID    string  `json:"recipient_id,omitempty"`
	Content        string  `json:"content" validate:"required"`
	ReplyToID      *string `json:"reply_to_id,omitempty"`
}

type EditMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type MessageResponse struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	Content        string     `json:"content"`
	ReplyToID      *string    `json:"reply_to_id,omitempty"`
	Edited         bool       `json:"edited"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func NewMessageResponse(m *chat.Message) *MessageResponse {
	return &MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		ReplyToID:      m.ReplyToID,
		Edited:         m.Edited,
		EditedAt:       m.EditedAt,
		CreatedAt:      m.CreatedAt,
	}
}

type ConversationResponse struct {
	ID           string           `json:"id"`
	IsGroup      bool             `json:"is_group"`
	Title        *string          `json:"title,omitempty"`
	Participants []string         `json:"participants"`
	LastMessage  *MessageResponse `json:"last_message,omitempty"`
	UnreadCount  int64            `json:"unread_count"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type UnreadCountResponse struct {
	MessageCount      int64 `json:"messageCount"`
	NotificationCount int64 `json:"notificationCount"`
}

type TypingRequest struct {
	IsTyping bool `json:"is_typing"`
}

type ReactionRequest struct {
	Emoji string `json:"emoji" validate:"required,max=10"`
}
