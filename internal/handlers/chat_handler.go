package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"artlink_backend/internal/middleware"
	"artlink_backend/internal/services"
	"artlink_backend/internal/services/chat"
	"artlink_backend/internal/services/dto"
)

type ChatHandler struct {
	*BaseHandler
	chatService         *chat.ChatService
	receiptService      *chat.ReadReceiptService
	reactionService     *chat.ReactionService
	typingService       *chat.TypingService
	notificationService services.NotificationService
}

func NewChatHandler(
	base *BaseHandler,
	chatService *chat.ChatService,
	receiptService *chat.ReadReceiptService,
	reactionService *chat.ReactionService,
	typingService *chat.TypingService,
	notificationService services.NotificationService,
) *ChatHandler {
	return &ChatHandler{
		BaseHandler:         base,
		chatService:         chatService,
		receiptService:      receiptService,
		reactionService:     reactionService,
		typingService:       typingService,
		notificationService: notificationService,
	}
}

func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup) {
	conversations := r.Group("/conversations")
	conversations.Use(middleware.AuthMiddleware())
	{
		conversations.POST("", h.CreateConversation)
		conversations.GET("", h.GetConversations)
		conversations.GET("/:conversationId/messages", h.GetMessages)
		conversations.POST("/:conversationId/read", h.MarkConversationRead)
		conversations.GET("/:conversationId/typing", h.GetActiveTypers)
		conversations.POST("/:conversationId/typing", h.SetTyping)
		conversations.POST("/:conversationId/leave", h.LeaveConversation)
	}

	messages := r.Group("/messages")
	messages.Use(middleware.AuthMiddleware())
	{
		messages.POST("", h.SendMessage)
		messages.PUT("/:messageId", h.EditMessage)
		messages.DELETE("/:messageId", h.DeleteMessage)
		messages.POST("/:messageId/read", h.MarkMessageRead)
		messages.POST("/:messageId/reactions", h.AddReaction)
		messages.DELETE("/:messageId/reactions/:emoji", h.RemoveReaction)
	}

	unread := r.Group("/unread")
	unread.Use(middleware.AuthMiddleware())
	{
		unread.GET("", h.GetUnreadCounts)
	}
}

func (h *ChatHandler) CreateConversation(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateConversationRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	conv, err := h.chatService.GetOrCreateConversation(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

func (h *ChatHandler) GetConversations(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	conversations, err := h.chatService.GetConversations(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *ChatHandler) GetMessages(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	conversationID := c.Param("conversationId")
	beforeID := c.Query("before")
	limit := ParseQueryInt(c, "limit", 50)

	messages, err := h.chatService.GetMessages(userID, conversationID, beforeID, limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *ChatHandler) EditMessage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.EditMessageRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	message, err := h.chatService.EditMessage(c.Request.Context(), userID, c.Param("messageId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, message)
}

// DeleteMessage deletes for everyone when the caller is the sender; with
// for_me=true it only hides the message for the caller.
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	forMe := c.Query("for_me") == "true"

	if err := h.chatService.DeleteMessage(c.Request.Context(), userID, c.Param("messageId"), forMe); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}

func (h *ChatHandler) MarkConversationRead(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.receiptService.MarkConversationRead(c.Request.Context(), userID, c.Param("conversationId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation marked as read"})
}

func (h *ChatHandler) MarkMessageRead(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.receiptService.MarkMessageRead(c.Request.Context(), userID, c.Param("messageId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message marked as read"})
}

func (h *ChatHandler) AddReaction(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ReactionRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	if err := h.reactionService.Add(c.Request.Context(), userID, c.Param("messageId"), req.Emoji); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Reaction added"})
}

func (h *ChatHandler) RemoveReaction(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.reactionService.Remove(c.Request.Context(), userID, c.Param("messageId"), c.Param("emoji")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reaction removed"})
}

func (h *ChatHandler) GetActiveTypers(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	typers, err := h.typingService.ActiveTypers(userID, c.Param("conversationId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	if typers == nil {
		typers = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"typing": typers})
}

// SetTyping is the REST fallback for clients without a live socket. A stale
// membership is dropped silently, same as the socket intent.
func (h *ChatHandler) SetTyping(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.TypingRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	if err := h.typingService.SetTyping(c.Request.Context(), userID, c.Param("conversationId"), req.IsTyping); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Typing state updated"})
}

func (h *ChatHandler) LeaveConversation(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.chatService.LeaveConversation(userID, c.Param("conversationId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left conversation"})
}

// GetUnreadCounts returns both unread totals, derived from persisted state
// so a fresh session starts with accurate badges.
func (h *ChatHandler) GetUnreadCounts(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	notifCount, err := h.notificationService.GetUnreadCount(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	counts, err := h.chatService.GetUnreadCounts(userID, notifCount)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}
