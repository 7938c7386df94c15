package services

import (
	"artlink_backend/internal/appErrors"
	"artlink_backend/internal/models"
	"artlink_backend/internal/repositories"
	"artlink_backend/internal/services/dto"
)

type NotificationService interface {
	GetUserNotifications(userID string, limit, offset int) (*dto.NotificationListResponse, error)
	MarkAsRead(userID, notificationID string) error
	MarkAllAsRead(userID string) error
	GetUnreadCount(userID string) (int64, error)
}

type notificationService struct {
	notificationRepo *repositories.NotificationRepository
}

func NewNotificationService(notificationRepo *repositories.NotificationRepository) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
	}
}

func (s *notificationService) GetUserNotifications(userID string, limit, offset int) (*dto.NotificationListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	notifications, err := s.notificationRepo.GetByUser(userID, limit, offset)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	unread, err := s.notificationRepo.GetUnreadCount(userID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	return &dto.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
		Limit:         limit,
		Offset:        offset,
	}, nil
}

// MarkAsRead is idempotent; re-reading an already-read notification is a
// no-op, and read state never reverts.
func (s *notificationService) MarkAsRead(userID, notificationID string) error {
	err := s.notificationRepo.MarkAsRead(userID, notificationID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return appErrors.ErrNotificationNotFound
	}
	if err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(userID string) error {
	if err := s.notificationRepo.MarkAllAsRead(userID); err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *notificationService) GetUnreadCount(userID string) (int64, error) {
	count, err := s.notificationRepo.GetUnreadCount(userID)
	if err != nil {
		return 0, appErrors.InternalError(err)
	}
	return count, nil
}
