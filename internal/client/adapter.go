package client

import (
	"context"
	"time"
)

// Contact is a normalized address-book entry.
type Contact struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Number  string `json:"number"`
	IsGroup bool   `json:"isGroup"`
}

// Message is a normalized inbound text message.
type Message struct {
	From      string
	Body      string
	Timestamp time.Time
}

// Media kinds accepted by SendMedia.
const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
	MediaKindFile  = "file"
)

// Media describes an outbound media payload.
type Media struct {
	Kind     string
	Data     []byte
	Caption  string
	FileName string
}

// Events carries the normalized callbacks an adapter raises as the underlying
// protocol client moves through its handshake. Nil callbacks are skipped.
//
// Ordering is guaranteed per adapter: QR (possibly repeated as the code
// refreshes), then Authenticated, then Ready — or AuthFailed/Disconnected at
// any point, after which no further events fire.
type Events struct {
	QR            func(code string)
	Authenticated func()
	Ready         func(phoneNumber, displayName string)
	AuthFailed    func(reason string)
	Disconnected  func(reason string)
	Message       func(msg Message)
}

// Adapter wraps one instance of the underlying protocol client, bound to a
// single session identity. The lifecycle manager owns exactly one adapter per
// session record.
type Adapter interface {
	// Initialize begins the connection handshake. It returns quickly; all
	// progress is reported through Events callbacks.
	Initialize() error

	// SendText delivers a text message to a full recipient address
	// (user@server form).
	SendText(ctx context.Context, recipient, text string) error

	// SendMedia uploads and delivers a media payload.
	SendMedia(ctx context.Context, recipient string, media Media) error

	// Contacts returns the client's synced address book.
	Contacts(ctx context.Context) ([]Contact, error)

	// Destroy releases the underlying client's resources. Safe to call in any
	// state and more than once.
	Destroy()
}

// Factory creates an adapter bound to a session identity. Re-creating a
// session under a fresh identity must start a clean authentication flow.
type Factory func(sessionID string, events Events) (Adapter, error)
