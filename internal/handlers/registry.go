package handlers

// AppHandlers bundles the HTTP handlers for route registration.
type AppHandlers struct {
	ChatHandler         *ChatHandler
	NotificationHandler *NotificationHandler
	SocialHandler       *SocialHandler
	DeviceHandler       *DeviceHandler
}
