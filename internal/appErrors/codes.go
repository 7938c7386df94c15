package appErrors

// Error codes exposed to API clients.
const (
	// Authentication / authorization
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"
	CodeForbidden    ErrorCode = "FORBIDDEN"

	// Validation
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Generic
	CodeNotFound ErrorCode = "NOT_FOUND"
	CodeConflict ErrorCode = "CONFLICT"
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// Chat
	CodeConversationNotFound ErrorCode = "CONVERSATION_NOT_FOUND"
	CodeMessageNotFound      ErrorCode = "MESSAGE_NOT_FOUND"
	CodeNotParticipant       ErrorCode = "NOT_A_PARTICIPANT"
	CodeEmptyMessage         ErrorCode = "EMPTY_MESSAGE"
	CodeMessageTooLong       ErrorCode = "MESSAGE_TOO_LONG"
	CodeNotMessageSender     ErrorCode = "NOT_MESSAGE_SENDER"

	// Social graph
	CodeSelfFollow   ErrorCode = "CANNOT_FOLLOW_SELF"
	CodeSelfLike     ErrorCode = "CANNOT_LIKE_OWN"
	CodeUserNotFound ErrorCode = "USER_NOT_FOUND"

	// Devices / push delivery
	CodeDeviceNotFound    ErrorCode = "DEVICE_NOT_FOUND"
	CodeInvalidPlatform   ErrorCode = "INVALID_PLATFORM"
	CodeTransientDelivery ErrorCode = "TRANSIENT_DELIVERY_FAILURE"
	CodePermanentDelivery ErrorCode = "PERMANENT_DELIVERY_FAILURE"

	// Notifications
	CodeNotificationNotFound ErrorCode = "NOTIFICATION_NOT_FOUND"
)
