package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"artlink_backend/database"
	"artlink_backend/internal/appErrors"
	"artlink_backend/internal/config"
	"artlink_backend/internal/models"
	modelChat "artlink_backend/internal/models/chat"
	"artlink_backend/internal/push"
	"artlink_backend/internal/realtime/bus"
	"artlink_backend/internal/repositories"
	repoChat "artlink_backend/internal/repositories/chat"
	"artlink_backend/internal/services"
	"artlink_backend/internal/services/dto"
)

type fixture struct {
	db       *gorm.DB
	chat     *ChatService
	receipts *ReadReceiptService
	typing   *TypingService
	notifs   *repositories.NotificationRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.WebSocket.MaxMessageLength = 100
	config.AppConfig = cfg

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	notificationRepo := repositories.NewNotificationRepository(db)
	deviceRepo := repositories.NewDeviceRepository(db)
	conversationRepo := repoChat.NewConversationRepository(db)
	participantRepo := repoChat.NewParticipantRepository(db)
	messageRepo := repoChat.NewMessageRepository(db)
	receiptRepo := repoChat.NewReceiptRepository(db)
	typingRepo := repoChat.NewTypingRepository(db)

	dispatcher := push.NewDispatcherWithProviders(map[string]push.Provider{}, deviceRepo)
	fanout := services.NewFanoutService(notificationRepo, receiptRepo, deviceRepo, dispatcher, bus.NewMemoryBus(), nil)

	return &fixture{
		db:       db,
		chat:     NewChatService(conversationRepo, participantRepo, messageRepo, receiptRepo, fanout),
		receipts: NewReadReceiptService(participantRepo, messageRepo, receiptRepo, fanout),
		typing:   NewTypingService(participantRepo, typingRepo, fanout, 15*time.Second),
		notifs:   notificationRepo,
	}
}

func (f *fixture) send(t *testing.T, senderID string, req *dto.SendMessageRequest) *dto.MessageResponse {
	t.Helper()
	resp, err := f.chat.SendMessage(context.Background(), senderID, req)
	require.NoError(t, err)
	return resp
}

func TestSendMessageCreatesDirectConversationLazily(t *testing.T) {
	f := newFixture(t)

	first := f.send(t, "alice", &dto.SendMessageRequest{RecipientID: "bob", Content: "hi bob"})
	assert.NotEmpty(t, first.ConversationID)

	// The reply from bob lands in the same conversation, no duplicate row.
	second := f.send(t, "bob", &dto.SendMessageRequest{RecipientID: "alice", Content: "hi alice"})
	assert.Equal(t, first.ConversationID, second.ConversationID)
}

func TestSendMessageValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.chat.SendMessage(ctx, "alice", &dto.SendMessageRequest{RecipientID: "bob", Content: "   "})
	assert.True(t, appErrors.Is(err, appErrors.ErrEmptyMessage))

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	_, err = f.chat.SendMessage(ctx, "alice", &dto.SendMessageRequest{RecipientID: "bob", Content: string(long)})
	assert.True(t, appErrors.Is(err, appErrors.ErrMessageTooLong))

	_, err = f.chat.SendMessage(ctx, "alice", &dto.SendMessageRequest{Content: "no destination"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidationFailed))

	_, err = f.chat.SendMessage(ctx, "alice", &dto.SendMessageRequest{RecipientID: "alice", Content: "talking to myself"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidationFailed))
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	f := newFixture(t)

	first := f.send(t, "alice", &dto.SendMessageRequest{RecipientID: "bob", Content: "private"})

	_, err := f.chat.SendMessage(context.Background(), "mallory", &dto.SendMessageRequest{
		ConversationID: first.ConversationID,
		Content:        "let me in",
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotParticipant))
}

func TestSendMessagePersistsNotificationForRecipient(t *testing.T) {
	f := newFixture(t)

	f.send(t, "alice", &dto.SendMessageRequest{RecipientID: "bob", Content: "hello"})

	// The recipient gets a persisted notification row; the sender does not.
	var count int64
	require.NoError(t, f.db.Model(&models.Notification{}).Where("user_id = ?", "bob").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, f.db.Model(&models.Notification{}).Where("user_id = ?", "alice").Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestReplyMustBelongToSameConversation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inFirst := f.send(t, "alice", &dto.SendMessageRequest{RecipientID: "bob", Content: "first thread"})
	f.send(t, "alice", &dto.SendMessageRequest{RecipientID: "carol", Content: "second thread"})

	// Replying across conversations is rejected.
	_, err := f.chat.SendMessage(ctx, "carol", &dto.SendMessageRequest{
		RecipientID: "alice",
		Content:     "cross reply",
		ReplyToID:   &inFirst.ID,
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrMessageNotFound))

	// Replying in the right conversation works.
	reply, err := f.chat.SendMessage(ctx, "bob", &dto.SendMessageRequest{
		ConversationID: inFirst.ConversationID,
		Content:        "proper reply",
		ReplyToID:      &inFirst.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, reply.ReplyToID)
	assert.Equal(t, inFirst.ID, *reply.ReplyToID)
}

func TestUnreadCountLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.send(t, "alice", &dto.SendMessageRequest{RecipientID: "bob", Content: "one"})
	f.send(t, "alice", &dto.SendMessageRequest{ConversationID: first.ConversationID, Content: "two"})
	f.send(t, "alice", &dto.SendMessageRequest{ConversationID: first.ConversationID, Content: "three"})

	counts, err := f.chat.GetUnreadCounts("bob", 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, counts.MessageCount)

	// Reading the conversation zeroes the count; repeating is harmless.
	require.NoError(t, f.receipts.MarkConversationRead(ctx, "bob", first.ConversationID))
	require.NoError(t, f.receipts.MarkConversationRead(ctx, "bob", first.ConversationID))

	counts, err = f.chat.GetUnreadCounts("bob", 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, counts.MessageCount)

	// One more message brings it to exactly one.
	f.send(t, "alice", &dto.SendMessageRequest{ConversationID: first.ConversationID, Content: "four"})

	counts, err = f.chat.GetUnreadCounts("bob", 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts.MessageCount)

	// The sender never counts their own messages.
	counts, err = f.chat.GetUnreadCounts("alice", 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, counts.MessageCount)
}

func TestEditMessageOnlyBySender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg := f.send(t, "alice", &dto.SendMessageRequest{RecipientID: "bob", Content: "typo"})

	_, err := f.chat.EditMessage(ctx, "bob", msg.ID, &dto.EditMessageRequest{Content: "hijacked"})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotMessageSender))

	edited, err := f.chat.EditMessage(ctx, "alice", msg.ID, &dto.EditMessageRequest{Content: "fixed"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", edited.Content)
	assert.True(t, edited.Edited)
	assert.NotNil(t, edited.EditedAt)
}

func TestDeleteMessageForMeAndForEveryone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	keep := f.send(t, "alice", &dto.SendMessageRequest{RecipientID: "bob", Content: "keep"})
	conversationID := keep.ConversationID
	hidden := f.send(t, "alice", &dto.SendMessageRequest{ConversationID: conversationID, Content: "hide me"})
	gone := f.send(t, "alice", &dto.SendMessageRequest{ConversationID: conversationID, Content: "remove me"})

	// A non-sender cannot delete for everyone.
	err := f.chat.DeleteMessage(ctx, "bob", gone.ID, false)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotMessageSender))

	// Delete-for-me hides it only for bob.
	require.NoError(t, f.chat.DeleteMessage(ctx, "bob", hidden.ID, true))
	// Sender delete removes it for everyone.
	require.NoError(t, f.chat.DeleteMessage(ctx, "alice", gone.ID, false))

	bobView, err := f.chat.GetMessages("bob", conversationID, "", 50)
	require.NoError(t, err)
	require.Len(t, bobView, 1)
	assert.Equal(t, keep.ID, bobView[0].ID)

	aliceView, err := f.chat.GetMessages("alice", conversationID, "", 50)
	require.NoError(t, err)
	require.Len(t, aliceView, 2)
}

func TestLeaveConversationRemovesItOnceEveryoneLeft(t *testing.T) {
	f := newFixture(t)

	msg := f.send(t, "alice", &dto.SendMessageRequest{RecipientID: "bob", Content: "bye"})
	conversationID := msg.ConversationID

	require.NoError(t, f.chat.LeaveConversation("alice", conversationID))

	// Alice no longer lists or posts to the conversation.
	conversations, err := f.chat.GetConversations("alice")
	require.NoError(t, err)
	assert.Empty(t, conversations)

	_, err = f.chat.SendMessage(context.Background(), "alice", &dto.SendMessageRequest{
		ConversationID: conversationID,
		Content:        "one more thing",
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotParticipant))

	// Bob still sees it until he leaves too, and the rows are still there.
	conversations, err = f.chat.GetConversations("bob")
	require.NoError(t, err)
	assert.Len(t, conversations, 1)

	var convCount int64
	require.NoError(t, f.db.Model(&modelChat.Conversation{}).Count(&convCount).Error)
	assert.EqualValues(t, 1, convCount)

	require.NoError(t, f.chat.LeaveConversation("bob", conversationID))

	conversations, err = f.chat.GetConversations("bob")
	require.NoError(t, err)
	assert.Empty(t, conversations)

	// The last leave removes the conversation and its dependents for good.
	for _, model := range []interface{}{
		&modelChat.Conversation{},
		&modelChat.ConversationParticipant{},
		&modelChat.Message{},
		&modelChat.MessageReceipt{},
	} {
		var count int64
		require.NoError(t, f.db.Model(model).Count(&count).Error)
		assert.EqualValues(t, 0, count)
	}
}

func TestGetConversationsReportsUnreadAndLastMessage(t *testing.T) {
	f := newFixture(t)

	first := f.send(t, "alice", &dto.SendMessageRequest{RecipientID: "bob", Content: "old"})
	f.send(t, "alice", &dto.SendMessageRequest{ConversationID: first.ConversationID, Content: "latest"})

	conversations, err := f.chat.GetConversations("bob")
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.EqualValues(t, 2, conversations[0].UnreadCount)
	require.NotNil(t, conversations[0].LastMessage)
	assert.Equal(t, "latest", conversations[0].LastMessage.Content)
	assert.ElementsMatch(t, []string{"alice", "bob"}, conversations[0].Participants)
}

func TestTypingIgnoredForNonParticipant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg := f.send(t, "alice", &dto.SendMessageRequest{RecipientID: "bob", Content: "hi"})

	// A stale join from an outsider is dropped without error.
	require.NoError(t, f.typing.SetTyping(ctx, "mallory", msg.ConversationID, true))

	typers, err := f.typing.ActiveTypers("alice", msg.ConversationID)
	require.NoError(t, err)
	assert.Empty(t, typers)

	require.NoError(t, f.typing.SetTyping(ctx, "bob", msg.ConversationID, true))
	typers, err = f.typing.ActiveTypers("alice", msg.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, typers)
}

func TestGroupConversationRequiresTwoParticipants(t *testing.T) {
	f := newFixture(t)

	_, err := f.chat.GetOrCreateConversation("alice", &dto.CreateConversationRequest{
		ParticipantIDs: []string{"alice"},
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidationFailed))

	title := "project"
	conv, err := f.chat.GetOrCreateConversation("alice", &dto.CreateConversationRequest{
		ParticipantIDs: []string{"bob", "carol"},
		IsGroup:        true,
		Title:          &title,
	})
	require.NoError(t, err)
	assert.True(t, conv.IsGroup)
	assert.Len(t, conv.Participants, 3)
}
