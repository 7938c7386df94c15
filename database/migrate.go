package database

import (
	"gorm.io/gorm"

	"artlink_backend/internal/models"
	modelChat "artlink_backend/internal/models/chat"
)

// Migrate creates or updates the schema for every persisted model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Notification{},
		&models.Device{},
		&models.FollowEdge{},
		&models.Like{},
		&modelChat.Conversation{},
		&modelChat.ConversationParticipant{},
		&modelChat.Message{},
		&modelChat.MessageHide{},
		&modelChat.MessageReceipt{},
		&modelChat.MessageReaction{},
		&modelChat.TypingStatus{},
	)
}
