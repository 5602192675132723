package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapline/whatsapp-server/internal/app"
	"github.com/zapline/whatsapp-server/internal/client"
	"github.com/zapline/whatsapp-server/internal/config"
	"github.com/zapline/whatsapp-server/internal/session"
)

type stubAdapter struct {
	mu         sync.Mutex
	sendErr    error
	recipients []string
	texts      []string
}

func (a *stubAdapter) Initialize() error { return nil }

func (a *stubAdapter) SendText(_ context.Context, recipient, text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sendErr != nil {
		return a.sendErr
	}
	a.recipients = append(a.recipients, recipient)
	a.texts = append(a.texts, text)
	return nil
}

func (a *stubAdapter) SendMedia(context.Context, string, client.Media) error { return nil }
func (a *stubAdapter) Contacts(context.Context) ([]client.Contact, error)   { return nil, nil }
func (a *stubAdapter) Destroy()                                             {}

type nopBroadcaster struct{}

func (nopBroadcaster) EmitToSession(string, string, any) {}
func (nopBroadcaster) EmitBroadcast(string, any)         {}

type env struct {
	app     *app.App
	service *session.Service
	adapter *stubAdapter
	events  client.Events
	router  *gin.Engine
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	e := &env{
		app:     app.NewApp(config.NewConfig(), zerolog.Nop()),
		adapter: &stubAdapter{},
	}
	factory := func(_ string, ev client.Events) (client.Adapter, error) {
		e.events = ev
		return e.adapter, nil
	}
	e.service = session.NewService(e.app, session.NewStore(), nopBroadcaster{}, factory)

	e.router = gin.New()
	e.router.POST("/api/send-message", NewHandlers(e.app, e.service).SendMessageHandler)
	return e
}

// connectedSession creates a session and walks it to connected.
func (e *env) connectedSession(t *testing.T) string {
	t.Helper()
	id, err := e.service.CreateSession()
	require.NoError(t, err)
	e.events.QR("1@handshake")
	e.events.Authenticated()
	e.events.Ready("5511999999999", "Sales Desk")
	return id
}

func (e *env) post(t *testing.T, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/send-message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return w, payload
}

func TestSendMessageHandler(t *testing.T) {
	e := newEnv(t)
	id := e.connectedSession(t)

	w, payload := e.post(t, `{"sessionId":"`+id+`","number":"+55 11 88888-8888","message":"hello"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, payload["success"])

	require.Len(t, e.adapter.recipients, 1)
	assert.Equal(t, "5511888888888@s.whatsapp.net", e.adapter.recipients[0])
	assert.Equal(t, "hello", e.adapter.texts[0])
}

func TestSendMessageHandlerUnknownSession(t *testing.T) {
	e := newEnv(t)

	w, payload := e.post(t, `{"sessionId":"session_000","number":"5511888888888","message":"hello"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Session not found", payload["message"])
}

func TestSendMessageHandlerNotConnected(t *testing.T) {
	e := newEnv(t)
	id, err := e.service.CreateSession()
	require.NoError(t, err)

	w, payload := e.post(t, `{"sessionId":"`+id+`","number":"5511888888888","message":"hello"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Session is not connected", payload["message"])
	assert.Empty(t, e.adapter.recipients)
}

func TestSendMessageHandlerAdapterError(t *testing.T) {
	e := newEnv(t)
	id := e.connectedSession(t)
	e.adapter.sendErr = errors.New("rate limited")

	w, payload := e.post(t, `{"sessionId":"`+id+`","number":"5511888888888","message":"hello"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "rate limited", payload["message"])
}

func TestSendMessageHandlerValidation(t *testing.T) {
	e := newEnv(t)

	for _, body := range []string{
		"{",
		`{"number":"5511888888888","message":"hello"}`,
		`{"sessionId":"session_000","message":"hello"}`,
		`{"sessionId":"session_000","number":"5511888888888"}`,
	} {
		w, payload := e.post(t, body)
		assert.Equalf(t, http.StatusBadRequest, w.Code, "body %q", body)
		assert.Equal(t, "Invalid request", payload["message"])
	}
}
