package client

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waCompanionReg"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"github.com/zapline/whatsapp-server/internal/utils"
)

// WhatsmeowAdapter drives a whatsmeow client for one session. Each adapter
// owns its own sqlite device store, keyed by session ID, so a fresh session ID
// always starts a clean authentication flow.
type WhatsmeowAdapter struct {
	sessionID string
	events    Events
	container *sqlstore.Container
	client    *whatsmeow.Client
	dbPath    string
	log       zerolog.Logger

	mu     sync.Mutex
	authed bool
	dead   bool

	destroyOnce sync.Once
}

// NewWhatsmeowFactory returns a Factory that creates whatsmeow-backed
// adapters with device stores under dataDir.
func NewWhatsmeowFactory(dataDir string, log zerolog.Logger) Factory {
	return func(sessionID string, events Events) (Adapter, error) {
		return newWhatsmeowAdapter(dataDir, sessionID, events, log)
	}
}

func newWhatsmeowAdapter(dataDir, sessionID string, ev Events, log zerolog.Logger) (*WhatsmeowAdapter, error) {
	dbPath := filepath.Join(dataDir, sessionID+".db")
	waLogger := waLog.Zerolog(log.With().Str("session", sessionID).Logger())

	container, err := sqlstore.New(context.Background(), "sqlite3", "file:"+dbPath+"?_foreign_keys=on", waLogger)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(context.Background())
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("device error: %w", err)
	}

	store.SetOSInfo("Linux", store.GetWAVersion())
	store.DeviceProps.PlatformType = waCompanionReg.DeviceProps_CHROME.Enum()

	a := &WhatsmeowAdapter{
		sessionID: sessionID,
		events:    ev,
		container: container,
		client:    whatsmeow.NewClient(deviceStore, waLogger),
		dbPath:    dbPath,
		log:       log.With().Str("session", sessionID).Logger(),
	}
	a.client.AddEventHandler(a.handleEvent)
	return a, nil
}

// Initialize begins the connection handshake. For unregistered devices a QR
// watcher is attached before connecting so no code is missed.
func (a *WhatsmeowAdapter) Initialize() error {
	if a.client.Store.ID == nil {
		qrChan, err := a.client.GetQRChannel(context.Background())
		if err != nil {
			return fmt.Errorf("failed to create QR channel: %w", err)
		}
		go a.watchQR(qrChan)
	}

	if err := a.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect client: %w", err)
	}
	return nil
}

func (a *WhatsmeowAdapter) watchQR(qrChan <-chan whatsmeow.QRChannelItem) {
	for evt := range qrChan {
		switch evt.Event {
		case "code":
			a.emitQR(evt.Code)
		case whatsmeow.QRChannelSuccess.Event:
			a.emitAuthenticated()
			return
		case "error":
			reason := "pairing error"
			if evt.Error != nil {
				reason = evt.Error.Error()
			}
			a.emitAuthFailed(reason)
			return
		default:
			// timeout, client outdated, scanned without multidevice
			a.emitAuthFailed(evt.Event)
			return
		}
	}
}

func (a *WhatsmeowAdapter) handleEvent(evt interface{}) {
	switch e := evt.(type) {
	case *events.Connected:
		// Resumed sessions never pass through the QR channel, so make sure
		// the authenticated step fires before ready.
		a.emitAuthenticated()

		phone := ""
		if id := a.client.Store.ID; id != nil {
			phone = id.User
		}
		a.emitReady(phone, a.client.Store.PushName)

	case *events.LoggedOut:
		a.emitAuthFailed("logged out: " + e.Reason.String())

	case *events.Disconnected:
		a.emitDisconnected("connection closed")

	case *events.StreamError:
		a.emitDisconnected(fmt.Sprintf("stream error: %v", e))

	case *events.Message:
		body := e.Message.GetConversation()
		if body == "" {
			body = e.Message.GetExtendedTextMessage().GetText()
		}
		if body == "" {
			return
		}
		a.emitMessage(Message{
			From:      e.Info.Sender.User,
			Body:      body,
			Timestamp: e.Info.Timestamp,
		})
	}
}

// SendText delivers a plain text message.
func (a *WhatsmeowAdapter) SendText(ctx context.Context, recipient, text string) error {
	jid, err := types.ParseJID(recipient)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", recipient, err)
	}

	msg := &waE2E.Message{Conversation: proto.String(text)}
	opts := whatsmeow.SendRequestExtra{ID: whatsmeow.GenerateMessageID()}

	if _, err := a.client.SendMessage(ctx, jid, msg, opts); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendMedia uploads the payload and delivers it as an image, video or
// document message. Video sends get an inline JPEG thumbnail when ffmpeg can
// produce one.
func (a *WhatsmeowAdapter) SendMedia(ctx context.Context, recipient string, media Media) error {
	jid, err := types.ParseJID(recipient)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", recipient, err)
	}

	var mediaType whatsmeow.MediaType
	switch media.Kind {
	case MediaKindImage:
		mediaType = whatsmeow.MediaImage
	case MediaKindVideo:
		mediaType = whatsmeow.MediaVideo
	case MediaKindFile:
		mediaType = whatsmeow.MediaDocument
	default:
		return fmt.Errorf("invalid media type: %s", media.Kind)
	}

	uploaded, err := a.client.Upload(ctx, media.Data, mediaType)
	if err != nil {
		return fmt.Errorf("failed to upload media: %w", err)
	}

	mimeType := http.DetectContentType(media.Data)
	var msg waE2E.Message
	switch media.Kind {
	case MediaKindImage:
		msg = waE2E.Message{
			ImageMessage: &waE2E.ImageMessage{
				Caption:       proto.String(media.Caption),
				URL:           proto.String(uploaded.URL),
				DirectPath:    proto.String(uploaded.DirectPath),
				MediaKey:      uploaded.MediaKey,
				Mimetype:      proto.String(mimeType),
				FileEncSHA256: uploaded.FileEncSHA256,
				FileSHA256:    uploaded.FileSHA256,
				FileLength:    proto.Uint64(uint64(len(media.Data))),
			},
		}
	case MediaKindVideo:
		videoMsg := &waE2E.VideoMessage{
			Caption:       proto.String(media.Caption),
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			Mimetype:      proto.String(mimeType),
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uint64(len(media.Data))),
		}
		if thumb, err := utils.VideoThumbnail(media.Data, 72); err == nil {
			videoMsg.JPEGThumbnail = thumb
		} else {
			a.log.Warn().Err(err).Msg("failed to generate video thumbnail")
		}
		msg = waE2E.Message{VideoMessage: videoMsg}
	case MediaKindFile:
		msg = waE2E.Message{
			DocumentMessage: &waE2E.DocumentMessage{
				Caption:       proto.String(media.Caption),
				URL:           proto.String(uploaded.URL),
				DirectPath:    proto.String(uploaded.DirectPath),
				MediaKey:      uploaded.MediaKey,
				Mimetype:      proto.String(mimeType),
				FileEncSHA256: uploaded.FileEncSHA256,
				FileSHA256:    uploaded.FileSHA256,
				FileLength:    proto.Uint64(uint64(len(media.Data))),
				FileName:      proto.String(media.FileName),
			},
		}
	}

	opts := whatsmeow.SendRequestExtra{ID: whatsmeow.GenerateMessageID()}
	if _, err := a.client.SendMessage(ctx, jid, &msg, opts); err != nil {
		return fmt.Errorf("failed to send media message: %w", err)
	}
	return nil
}

// Contacts returns the synced address book.
func (a *WhatsmeowAdapter) Contacts(ctx context.Context) ([]Contact, error) {
	all, err := a.client.Store.Contacts.GetAllContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get contacts: %w", err)
	}

	result := make([]Contact, 0, len(all))
	for jid, info := range all {
		name := info.FullName
		if name == "" {
			name = info.PushName
		}
		result = append(result, Contact{
			ID:      jid.String(),
			Name:    name,
			Number:  jid.User,
			IsGroup: jid.Server == types.GroupServer,
		})
	}
	return result, nil
}

// Destroy disconnects the client, closes its device store and removes the
// per-session database file. Idempotent; no event fires after it returns.
func (a *WhatsmeowAdapter) Destroy() {
	a.destroyOnce.Do(func() {
		a.mu.Lock()
		a.dead = true
		a.mu.Unlock()

		if a.client.IsConnected() {
			a.client.Disconnect()
		}
		if a.container != nil {
			a.container.Close()
		}
		if err := os.Remove(a.dbPath); err != nil && !os.IsNotExist(err) {
			a.log.Warn().Err(err).Msg("failed to delete session database file")
		}
		a.log.Info().Msg("client destroyed")
	})
}

// silenced reports whether the adapter has been destroyed; events raised by
// lingering whatsmeow goroutines after teardown are dropped.
func (a *WhatsmeowAdapter) silenced() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dead
}

func (a *WhatsmeowAdapter) emitQR(code string) {
	if a.silenced() || a.events.QR == nil {
		return
	}
	a.events.QR(code)
}

func (a *WhatsmeowAdapter) emitAuthenticated() {
	a.mu.Lock()
	already := a.authed || a.dead
	a.authed = true
	a.mu.Unlock()
	if already || a.events.Authenticated == nil {
		return
	}
	a.events.Authenticated()
}

func (a *WhatsmeowAdapter) emitReady(phone, name string) {
	if a.silenced() || a.events.Ready == nil {
		return
	}
	a.events.Ready(phone, name)
}

func (a *WhatsmeowAdapter) emitAuthFailed(reason string) {
	if a.silenced() || a.events.AuthFailed == nil {
		return
	}
	a.events.AuthFailed(reason)
}

func (a *WhatsmeowAdapter) emitDisconnected(reason string) {
	if a.silenced() || a.events.Disconnected == nil {
		return
	}
	a.events.Disconnected(reason)
}

func (a *WhatsmeowAdapter) emitMessage(msg Message) {
	if a.silenced() || a.events.Message == nil {
		return
	}
	a.events.Message(msg)
}
