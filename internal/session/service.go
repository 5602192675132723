package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zapline/whatsapp-server/internal/app"
	"github.com/zapline/whatsapp-server/internal/client"
	"github.com/zapline/whatsapp-server/internal/metrics"
	"github.com/zapline/whatsapp-server/internal/realtime"
	"github.com/zapline/whatsapp-server/internal/utils"
)

// Broadcaster is the event delivery surface the service pushes lifecycle and
// message events through.
type Broadcaster interface {
	EmitToSession(sessionID, event string, data any)
	EmitBroadcast(event string, data any)
}

// Service orchestrates session creation, state transitions and teardown. It
// is the only writer of session records.
//
// Adapter callbacks arrive on whatsmeow goroutines; mu serializes every
// transition so handlers never observe a half-applied state change and
// per-session event order matches transition order.
type Service struct {
	app     *app.App
	store   *Store
	hub     Broadcaster
	factory client.Factory

	mu sync.Mutex
}

// NewService creates a new session service
func NewService(app *app.App, store *Store, hub Broadcaster, factory client.Factory) *Service {
	return &Service{
		app:     app,
		store:   store,
		hub:     hub,
		factory: factory,
	}
}

// newSessionID generates a unique session identifier: creation timestamp plus
// a random suffix.
func newSessionID() string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), suffix)
}

// CreateSession registers a new session and starts its handshake. It returns
// as soon as the record is registered; QR and connection events arrive over
// the realtime channel.
func (s *Service) CreateSession() (string, error) {
	id := newSessionID()

	adapter, err := s.factory(id, client.Events{
		QR:            func(code string) { s.handleQR(id, code) },
		Authenticated: func() { s.handleAuthenticated(id) },
		Ready:         func(phone, name string) { s.handleReady(id, phone, name) },
		AuthFailed:    func(reason string) { s.handleAuthFailed(id, reason) },
		Disconnected:  func(reason string) { s.handleDisconnected(id, reason) },
		Message:       func(msg client.Message) { s.handleMessage(id, msg) },
	})
	if err != nil {
		return "", fmt.Errorf("failed to create client: %w", err)
	}

	rec := &Record{
		SessionID: id,
		Status:    StatusInitializing,
		Adapter:   adapter,
	}
	if err := s.store.Put(rec); err != nil {
		adapter.Destroy()
		return "", err
	}

	metrics.SessionsCreated.Inc()
	s.hub.EmitBroadcast(realtime.EventSessionUpdate, realtime.SessionUpdate{
		SessionID: id,
		Status:    string(StatusInitializing),
	})
	s.app.Log.Info().Str("session", id).Msg("session created")

	// The handshake runs in the background; a failed start is reported the
	// same way as a failed pairing.
	go func() {
		if err := adapter.Initialize(); err != nil {
			s.handleAuthFailed(id, err.Error())
		}
	}()

	return id, nil
}

// DisconnectSession destroys a session's client and removes its record. Safe
// to call concurrently with adapter events for the same session; whichever
// teardown runs first wins and the loser sees ErrSessionNotFound or a
// rejected transition.
func (s *Service) DisconnectSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.store.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	if !s.transition(id, StatusDisconnected, nil) {
		return ErrSessionNotFound
	}

	s.teardown(rec, StatusDisconnected)
	s.app.Log.Info().Str("session", id).Msg("session disconnected by request")
	return nil
}

// SendMessage delivers a text message through a connected session. The
// recipient number is normalized to a full address before it reaches the
// adapter; sessions that are not connected never reach the adapter at all.
func (s *Service) SendMessage(ctx context.Context, id, number, text string) error {
	rec, ok := s.store.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	if rec.Status != StatusConnected {
		return ErrNotConnected
	}

	if err := rec.Adapter.SendText(ctx, NormalizeRecipient(number), text); err != nil {
		return err
	}
	metrics.MessagesSent.Inc()
	return nil
}

// SendMedia delivers a media payload through a connected session.
func (s *Service) SendMedia(ctx context.Context, id, number string, media client.Media) error {
	rec, ok := s.store.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	if rec.Status != StatusConnected {
		return ErrNotConnected
	}

	if err := rec.Adapter.SendMedia(ctx, NormalizeRecipient(number), media); err != nil {
		return err
	}
	metrics.MessagesSent.Inc()
	return nil
}

// Contacts returns the address book of a connected session.
func (s *Service) Contacts(ctx context.Context, id string) ([]client.Contact, error) {
	rec, ok := s.store.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if rec.Status != StatusConnected {
		return nil, ErrNotConnected
	}
	return rec.Adapter.Contacts(ctx)
}

// ListSessions returns a snapshot view of every live session.
func (s *Service) ListSessions() []Info {
	records := s.store.List()
	infos := make([]Info, 0, len(records))
	for _, rec := range records {
		info := Info{
			SessionID:   rec.SessionID,
			Status:      rec.Status,
			PhoneNumber: rec.PhoneNumber,
			Name:        rec.DisplayName,
		}
		if !rec.ConnectedAt.IsZero() {
			t := rec.ConnectedAt
			info.ConnectedAt = &t
		}
		infos = append(infos, info)
	}
	return infos
}

// LatestQR returns the pending QR image for a session.
func (s *Service) LatestQR(id string) (string, error) {
	rec, ok := s.store.Get(id)
	if !ok {
		return "", ErrSessionNotFound
	}
	if rec.LatestQR == "" {
		return "", ErrNoQR
	}
	return rec.LatestQR, nil
}

// Counts returns total and connected session counts for health reporting.
func (s *Service) Counts() (total, connected int) {
	for _, rec := range s.store.List() {
		total++
		if rec.Status == StatusConnected {
			connected++
		}
	}
	return total, connected
}

// ObserverBound records which observer currently receives a session's
// targeted events. The association is lookup-only; the observer's lifecycle
// belongs to the realtime hub.
func (s *Service) ObserverBound(sessionID, observerID string) {
	s.store.Update(sessionID, func(rec *Record) {
		rec.ObserverID = observerID
	})
}

// Shutdown destroys every live session's client. Used at process exit so no
// automation resource outlives the server.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.store.List() {
		rec.Adapter.Destroy()
		s.store.Remove(rec.SessionID)
	}
	metrics.SessionsConnected.Set(0)
	s.app.Log.Info().Msg("all sessions destroyed")
}

// NormalizeRecipient turns a bare phone number into a full user address.
// Values that already carry a server part pass through untouched.
func NormalizeRecipient(number string) string {
	if strings.Contains(number, "@") {
		return number
	}
	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String() + "@s.whatsapp.net"
}

// transition moves a session to next if the lifecycle allows it. Caller must
// hold s.mu.
func (s *Service) transition(id string, next Status, fn func(*Record)) bool {
	applied := false
	s.store.Update(id, func(rec *Record) {
		if !rec.Status.CanTransition(next) {
			return
		}
		rec.Status = next
		if fn != nil {
			fn(rec)
		}
		applied = true
	})
	return applied
}

// teardown finishes a terminal transition: the status change is broadcast
// before the record disappears so dashboards see why the row is going away.
// Caller must hold s.mu and have already applied the terminal transition.
func (s *Service) teardown(rec Record, terminal Status) {
	rec.Adapter.Destroy()

	s.hub.EmitBroadcast(realtime.EventSessionUpdate, realtime.SessionUpdate{
		SessionID:   rec.SessionID,
		Status:      string(terminal),
		PhoneNumber: rec.PhoneNumber,
		Name:        rec.DisplayName,
	})
	s.store.Remove(rec.SessionID)
	s.hub.EmitBroadcast(realtime.EventSessionRemoved, realtime.SessionRemoved{
		SessionID: rec.SessionID,
	})

	if rec.Status == StatusConnected {
		metrics.SessionsConnected.Dec()
	}
}

func (s *Service) handleQR(id, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, err := utils.QRImageDataURI(code, s.app.Config.QRImageSize)
	if err != nil {
		s.app.Log.Error().Err(err).Str("session", id).Msg("failed to encode QR code")
		return
	}

	if !s.transition(id, StatusWaitingQR, func(rec *Record) {
		rec.LatestQR = img
	}) {
		return
	}

	s.hub.EmitToSession(id, realtime.EventQRGenerated, realtime.QRGenerated{
		SessionID: id,
		QR:        img,
	})
	s.hub.EmitBroadcast(realtime.EventSessionUpdate, realtime.SessionUpdate{
		SessionID: id,
		Status:    string(StatusWaitingQR),
	})
	s.app.Log.Info().Str("session", id).Msg("QR code generated")
}

func (s *Service) handleAuthenticated(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.transition(id, StatusAuthenticated, func(rec *Record) {
		rec.LatestQR = ""
	}) {
		return
	}

	s.hub.EmitBroadcast(realtime.EventSessionUpdate, realtime.SessionUpdate{
		SessionID: id,
		Status:    string(StatusAuthenticated),
	})
	s.app.Log.Info().Str("session", id).Msg("session authenticated")
}

func (s *Service) handleReady(id, phone, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.transition(id, StatusConnected, func(rec *Record) {
		rec.PhoneNumber = phone
		rec.DisplayName = name
		rec.ConnectedAt = time.Now()
		rec.LatestQR = ""
	}) {
		return
	}

	metrics.SessionsConnected.Inc()
	s.hub.EmitToSession(id, realtime.EventClientReady, realtime.ClientReady{
		SessionID:   id,
		PhoneNumber: phone,
		Name:        name,
	})
	s.hub.EmitBroadcast(realtime.EventSessionUpdate, realtime.SessionUpdate{
		SessionID:   id,
		Status:      string(StatusConnected),
		PhoneNumber: phone,
		Name:        name,
	})
	s.app.Log.Info().Str("session", id).Str("phone", phone).Msg("session connected")
}

func (s *Service) handleAuthFailed(id, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.store.Get(id)
	if !ok {
		return
	}
	if !s.transition(id, StatusAuthFailed, nil) {
		return
	}

	s.hub.EmitToSession(id, realtime.EventAuthFailed, realtime.AuthFailed{
		SessionID: id,
		Error:     reason,
	})
	s.teardown(rec, StatusAuthFailed)
	s.app.Log.Warn().Str("session", id).Str("reason", reason).Msg("session authentication failed")
}

func (s *Service) handleDisconnected(id, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.store.Get(id)
	if !ok {
		return
	}
	if !s.transition(id, StatusDisconnected, nil) {
		return
	}

	s.teardown(rec, StatusDisconnected)
	s.app.Log.Info().Str("session", id).Str("reason", reason).Msg("session disconnected")
}

func (s *Service) handleMessage(id string, msg client.Message) {
	s.hub.EmitBroadcast(realtime.EventMessageReceived, realtime.MessageReceived{
		SessionID: id,
		From:      msg.From,
		Body:      msg.Body,
		Timestamp: msg.Timestamp,
	})
}
