package session

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound indicates an operation referenced a session id absent
// from the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotConnected indicates an operation that requires a connected session.
var ErrNotConnected = errors.New("session is not connected")

// ErrNoQR indicates no QR code is currently pending for a session.
var ErrNoQR = errors.New("no QR code available")

// DuplicateSessionError indicates an id collision on insert. The generation
// scheme makes this effectively impossible; the store still refuses.
type DuplicateSessionError struct {
	SessionID string
}

func (e *DuplicateSessionError) Error() string {
	return fmt.Sprintf("session %s already exists", e.SessionID)
}
