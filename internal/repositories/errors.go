package repositories

import "errors"

// Sentinel errors surfaced by repositories; services translate them into
// appErrors before they reach handlers.
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrNoParticipant = errors.New("user is not a participant")
)
