package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types used by the fan-out engine.
const (
	NotificationNewMessage  = "new_message"
	NotificationNewFollower = "new_follower"
	NotificationReaction    = "reaction"
)

type Notification struct {
	BaseModel
	UserID     string  `gorm:"not null;index" json:"user_id"`
	ActorID    *string `gorm:"index" json:"actor_id,omitempty"`
	Type       string  `gorm:"not null" json:"type"`
	Title      string  `gorm:"not null" json:"title"`
	Message    string  `json:"message"`
	Data       datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"` // {"conversation_id": "...", "message_id": "..."}
	TargetType *string `json:"target_type,omitempty"`
	TargetID   *string `gorm:"index" json:"target_id,omitempty"`
	IsRead     bool    `gorm:"default:false;index" json:"is_read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
}
