package session

import "time"

// Status is a session's position in its lifecycle.
type Status string

const (
	StatusInitializing  Status = "initializing"
	StatusWaitingQR     Status = "waiting_qr"
	StatusAuthenticated Status = "authenticated"
	StatusConnected     Status = "connected"
	StatusAuthFailed    Status = "auth_failed"
	StatusDisconnected  Status = "disconnected"
)

// transitions enumerates the legal lifecycle edges. waiting_qr loops on
// itself because the protocol client refreshes unscanned codes.
var transitions = map[Status][]Status{
	StatusInitializing:  {StatusWaitingQR, StatusAuthenticated, StatusAuthFailed, StatusDisconnected},
	StatusWaitingQR:     {StatusWaitingQR, StatusAuthenticated, StatusAuthFailed, StatusDisconnected},
	StatusAuthenticated: {StatusConnected, StatusAuthFailed, StatusDisconnected},
	StatusConnected:     {StatusAuthFailed, StatusDisconnected},
}

// CanTransition reports whether moving from s to next follows the lifecycle.
// Terminal states have no outgoing edges; a disconnected or failed session is
// never resurrected.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status has no outgoing transitions.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Info is the snapshot view of a session exposed by the list endpoint.
type Info struct {
	SessionID   string     `json:"sessionId"`
	Status      Status     `json:"status"`
	PhoneNumber string     `json:"phoneNumber"`
	Name        string     `json:"name"`
	ConnectedAt *time.Time `json:"connectedAt"`
}

// DisconnectRequest represents a request to disconnect a session
type DisconnectRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}
