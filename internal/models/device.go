package models

import (
	"time"

	"gorm.io/datatypes"
)

// Device platforms.
const (
	PlatformWeb     = "web"
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

// Device is a registered push endpoint. Devices are never hard-deleted by
// the system; a token reported permanently invalid by its provider is
// deactivated instead.
type Device struct {
	BaseModel
	UserID     string         `gorm:"not null;uniqueIndex:idx_devices_user_token" json:"user_id"`
	Token      string         `gorm:"not null;uniqueIndex:idx_devices_user_token" json:"token"`
	Platform   string         `gorm:"type:varchar(10);not null" json:"platform"` // web, ios, android
	PushKeys   datatypes.JSON `gorm:"type:jsonb" json:"push_keys,omitempty"`     // platform-specific credentials
	IsActive   bool           `gorm:"default:true;index" json:"is_active"`
	LastUsedAt time.Time      `json:"last_used_at"`
}

func ValidPlatform(p string) bool {
	return p == PlatformWeb || p == PlatformIOS || p == PlatformAndroid
}
