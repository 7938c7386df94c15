package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"artlink_backend/internal/logger"
	"artlink_backend/internal/models"
	"artlink_backend/internal/push"
	"artlink_backend/internal/realtime"
	"artlink_backend/internal/realtime/bus"
	"artlink_backend/internal/repositories"
	chatRepo "artlink_backend/internal/repositories/chat"
)

// Presence reports whether a user holds at least one live connection on
// this node. Used only to decide whether a device push is worth sending;
// persisted state stays correct either way.
type Presence interface {
	IsUserConnected(userID string) bool
}

// Event is one domain event to fan out to a recipient set. LiveType, when
// set, is the socket event kind pushed to live connections; it defaults to
// Type, which always names the persisted notification row.
type Event struct {
	Recipients []string
	Type       string
	LiveType   string
	ActorID    *string
	Title      string
	Body       string
	Data       map[string]interface{}
	TargetType *string
	TargetID   *string
}

// FanoutService distributes a domain event across the three channels, in
// order: notification rows (source of truth), live connections via the bus
// (best effort, no retry), and device push for recipients without a live
// connection. A failure in one channel never blocks the others, and a
// failure for one recipient never blocks the rest.
type FanoutService struct {
	notificationRepo *repositories.NotificationRepository
	receiptRepo      *chatRepo.ReceiptRepository
	deviceRepo       *repositories.DeviceRepository
	dispatcher       *push.Dispatcher
	eventBus         bus.Bus
	presence         Presence
}

func NewFanoutService(
	notificationRepo *repositories.NotificationRepository,
	receiptRepo *chatRepo.ReceiptRepository,
	deviceRepo *repositories.DeviceRepository,
	dispatcher *push.Dispatcher,
	eventBus bus.Bus,
	presence Presence,
) *FanoutService {
	return &FanoutService{
		notificationRepo: notificationRepo,
		receiptRepo:      receiptRepo,
		deviceRepo:       deviceRepo,
		dispatcher:       dispatcher,
		eventBus:         eventBus,
		presence:         presence,
	}
}

func (s *FanoutService) Publish(ctx context.Context, event Event) {
	var dataJSON datatypes.JSON
	if event.Data != nil {
		raw, err := json.Marshal(event.Data)
		if err != nil {
			logger.Error("failed to marshal event data", "type", event.Type, "error", err)
		} else {
			dataJSON = datatypes.JSON(raw)
		}
	}

	for _, recipientID := range event.Recipients {
		s.persistNotification(recipientID, event, dataJSON)
		s.pushLive(ctx, recipientID, event, dataJSON)
		s.pushDevices(ctx, recipientID, event)
	}
}

func (s *FanoutService) persistNotification(recipientID string, event Event, data datatypes.JSON) {
	notification := &models.Notification{
		UserID:     recipientID,
		ActorID:    event.ActorID,
		Type:       event.Type,
		Title:      event.Title,
		Message:    event.Body,
		Data:       data,
		TargetType: event.TargetType,
		TargetID:   event.TargetID,
	}
	notification.ID = uuid.New().String()

	if err := s.notificationRepo.Create(notification); err != nil {
		logger.Error("failed to persist notification", "recipient", recipientID, "type", event.Type, "error", err)
	}
}

func (s *FanoutService) pushLive(ctx context.Context, recipientID string, event Event, data datatypes.JSON) {
	liveType := event.LiveType
	if liveType == "" {
		liveType = event.Type
	}
	busEvent := bus.Event{
		Topic: realtime.UserTopic(recipientID),
		Type:  liveType,
		Data:  json.RawMessage(data),
	}
	if err := s.eventBus.Publish(ctx, busEvent); err != nil {
		// Best effort: the recipient's next unread-count fetch is derived
		// from rows and stays correct without this push.
		logger.Warn("live push failed", "recipient", recipientID, "type", event.Type, "error", err)
	}
}

func (s *FanoutService) pushDevices(ctx context.Context, recipientID string, event Event) {
	if s.presence != nil && s.presence.IsUserConnected(recipientID) {
		return
	}

	devices, err := s.deviceRepo.GetActiveByUser(recipientID)
	if err != nil {
		logger.Error("failed to load devices", "recipient", recipientID, "error", err)
		return
	}
	if len(devices) == 0 {
		return
	}

	s.dispatcher.DeliverAll(ctx, devices, push.Payload{
		Title: event.Title,
		Body:  event.Body,
		Data:  event.Data,
	})
}

// Broadcast publishes a raw bus event without persisting anything; used for
// ephemeral state such as typing indicators and edit/delete echoes.
func (s *FanoutService) Broadcast(ctx context.Context, event bus.Event) {
	if err := s.eventBus.Publish(ctx, event); err != nil {
		logger.Warn("broadcast failed", "topic", event.Topic, "type", event.Type, "error", err)
	}
}

// PushUnreadCounts sends the recipient a fresh unread_count_update derived
// from persisted state.
func (s *FanoutService) PushUnreadCounts(ctx context.Context, userID string) {
	messageCount, err := s.receiptRepo.TotalUnreadCount(userID)
	if err != nil {
		logger.Error("failed to compute unread messages", "user_id", userID, "error", err)
		return
	}
	notificationCount, err := s.notificationRepo.GetUnreadCount(userID)
	if err != nil {
		logger.Error("failed to compute unread notifications", "user_id", userID, "error", err)
		return
	}

	payload, err := json.Marshal(realtime.UnreadPayload{
		MessageCount:      messageCount,
		NotificationCount: notificationCount,
	})
	if err != nil {
		return
	}

	s.Broadcast(ctx, bus.Event{
		Topic: realtime.UserTopic(userID),
		Type:  realtime.EventUnreadCountUpdate,
		Data:  payload,
	})
}
