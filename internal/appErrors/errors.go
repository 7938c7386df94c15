package appErrors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies an error class across the API and the socket protocol.
type ErrorCode string

// AppError is the application error carried through all layers.
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches AppErrors by code, so a WithDetails/WithError clone still
// compares equal to its predeclared base.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		HTTPCode: httpCode,
	}
}

// Wrap attaches an underlying error to a new AppError.
func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Err:      err,
		HTTPCode: httpCode,
	}
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}
	return json.Marshal(&alias{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

// Is wraps errors.Is from the standard library.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As wraps errors.As from the standard library.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Predeclared errors.
var (
	// Authentication / authorization
	ErrUnauthorized = New(CodeUnauthorized, "Authentication required", http.StatusUnauthorized)
	ErrInvalidToken = New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
	ErrForbidden    = New(CodeForbidden, "Access denied", http.StatusForbidden)

	// Validation
	ErrValidationFailed = New(CodeValidationFailed, "Validation failed", http.StatusBadRequest)

	// Chat
	ErrConversationNotFound = New(CodeConversationNotFound, "Conversation not found", http.StatusNotFound)
	ErrMessageNotFound      = New(CodeMessageNotFound, "Message not found", http.StatusNotFound)
	ErrNotParticipant       = New(CodeNotParticipant, "User is not a participant of this conversation", http.StatusForbidden)
	ErrEmptyMessage         = New(CodeEmptyMessage, "Message text must not be empty", http.StatusBadRequest)
	ErrMessageTooLong       = New(CodeMessageTooLong, "Message text exceeds the maximum length", http.StatusBadRequest)
	ErrNotMessageSender     = New(CodeNotMessageSender, "Only the sender can modify this message", http.StatusForbidden)

	// Social graph
	ErrSelfFollow   = New(CodeSelfFollow, "Cannot follow yourself", http.StatusBadRequest)
	ErrSelfLike     = New(CodeSelfLike, "Cannot like your own content", http.StatusBadRequest)
	ErrUserNotFound = New(CodeUserNotFound, "User not found", http.StatusNotFound)

	// Devices
	ErrDeviceNotFound  = New(CodeDeviceNotFound, "Device not found", http.StatusNotFound)
	ErrInvalidPlatform = New(CodeInvalidPlatform, "Platform must be one of web, ios, android", http.StatusBadRequest)

	// Notifications
	ErrNotificationNotFound = New(CodeNotificationNotFound, "Notification not found", http.StatusNotFound)

	// Conflicts (unique-constraint races; retried once internally)
	ErrConflict = New(CodeConflict, "Concurrent modification conflict", http.StatusConflict)
)

// ValidationError builds a validation error carrying field details.
func ValidationError(details interface{}) *AppError {
	return ErrValidationFailed.WithDetails(details)
}

// InternalError wraps an unexpected error without leaking its text to clients.
func InternalError(err error) *AppError {
	return Wrap(err, CodeInternal, "Internal server error", http.StatusInternalServerError)
}
