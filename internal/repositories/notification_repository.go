package repositories

import (
	"time"

	"gorm.io/gorm"

	"artlink_backend/internal/models"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(n *models.Notification) error {
	return r.DB.Create(n).Error
}

func (r *NotificationRepository) GetByID(id string) (*models.Notification, error) {
	var n models.Notification
	err := r.DB.First(&n, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// GetByUser returns the user's notifications newest-first.
func (r *NotificationRepository) GetByUser(userID string, limit, offset int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	return notifications, err
}

// MarkAsRead is monotonic: a notification already read stays read and the
// original ReadAt is preserved.
func (r *NotificationRepository) MarkAsRead(userID, notificationID string) error {
	now := time.Now()
	res := r.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", notificationID, userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either already read (fine) or not found/not owned.
		var count int64
		if err := r.DB.Model(&models.Notification{}).
			Where("id = ? AND user_id = ?", notificationID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(userID string) error {
	now := time.Now()
	return r.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}

func (r *NotificationRepository) GetUnreadCount(userID string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// DeleteOlderThan removes notifications past the retention window.
func (r *NotificationRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res := r.DB.Where("created_at < ?", cutoff).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
