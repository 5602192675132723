package realtime

import "time"

// Envelope is the wire format for every realtime message, in both directions.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Observer -> server events.
const (
	EventBindSession = "bind-session"
)

// Server -> observer events. The first three are targeted at the observer
// bound to the session; the rest are broadcast to every observer.
const (
	EventQRGenerated     = "qr-generated"
	EventClientReady     = "client-ready"
	EventAuthFailed      = "auth-failed"
	EventSessionUpdate   = "session-update"
	EventSessionRemoved  = "session-removed"
	EventMessageReceived = "message-received"
)

// QRGenerated carries a displayable QR image for the bound observer.
type QRGenerated struct {
	SessionID string `json:"sessionId"`
	QR        string `json:"qr"`
}

// ClientReady signals that a session finished its handshake.
type ClientReady struct {
	SessionID   string `json:"sessionId"`
	PhoneNumber string `json:"phoneNumber"`
	Name        string `json:"name"`
}

// AuthFailed signals a terminal handshake failure.
type AuthFailed struct {
	SessionID string `json:"sessionId"`
	Error     string `json:"error"`
}

// SessionUpdate reflects a session status change to every dashboard.
type SessionUpdate struct {
	SessionID   string `json:"sessionId"`
	Status      string `json:"status"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Name        string `json:"name,omitempty"`
}

// SessionRemoved signals that a session left the registry.
type SessionRemoved struct {
	SessionID string `json:"sessionId"`
}

// MessageReceived relays an inbound message to every dashboard.
type MessageReceived struct {
	SessionID string    `json:"sessionId"`
	From      string    `json:"from"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// bindRequest is the payload of a bind-session envelope.
type bindRequest struct {
	SessionID string `json:"sessionId"`
}
