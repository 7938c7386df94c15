package repositories

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"artlink_backend/internal/models"
)

type DeviceRepository struct {
	DB *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{DB: db}
}

// Upsert registers a device or refreshes an existing (user, token) row,
// reactivating it if a previous provider rejection deactivated it.
func (r *DeviceRepository) Upsert(device *models.Device) error {
	device.IsActive = true
	device.LastUsedAt = time.Now()
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"platform", "push_keys", "is_active", "last_used_at", "updated_at",
		}),
	}).Create(device).Error
}

// GetActiveByUser returns the devices eligible for push fan-out.
func (r *DeviceRepository) GetActiveByUser(userID string) ([]models.Device, error) {
	var devices []models.Device
	err := r.DB.Where("user_id = ? AND is_active = ?", userID, true).Find(&devices).Error
	return devices, err
}

// Deactivate marks a device dead after a permanent provider rejection.
// The row is kept; devices are never hard-deleted by the system.
func (r *DeviceRepository) Deactivate(deviceID string) error {
	return r.DB.Model(&models.Device{}).
		Where("id = ?", deviceID).
		Update("is_active", false).Error
}

// DeactivateByToken handles client-initiated unregistration.
func (r *DeviceRepository) DeactivateByToken(userID, token string) error {
	res := r.DB.Model(&models.Device{}).
		Where("user_id = ? AND token = ?", userID, token).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DeviceRepository) TouchLastUsed(deviceID string) error {
	return r.DB.Model(&models.Device{}).
		Where("id = ?", deviceID).
		Update("last_used_at", time.Now()).Error
}
