package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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
	contacts []client.Contact
}

func (a *stubAdapter) Initialize() error                                     { return nil }
func (a *stubAdapter) SendText(context.Context, string, string) error        { return nil }
func (a *stubAdapter) SendMedia(context.Context, string, client.Media) error { return nil }
func (a *stubAdapter) Destroy()                                              {}

func (a *stubAdapter) Contacts(context.Context) ([]client.Contact, error) {
	return a.contacts, nil
}

type nopBroadcaster struct{}

func (nopBroadcaster) EmitToSession(string, string, any) {}
func (nopBroadcaster) EmitBroadcast(string, any)         {}

type env struct {
	service *session.Service
	adapter *stubAdapter
	events  client.Events
	router  *gin.Engine
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	e := &env{adapter: &stubAdapter{}}
	application := app.NewApp(config.NewConfig(), zerolog.Nop())
	factory := func(_ string, ev client.Events) (client.Adapter, error) {
		e.events = ev
		return e.adapter, nil
	}
	e.service = session.NewService(application, session.NewStore(), nopBroadcaster{}, factory)

	e.router = gin.New()
	e.router.GET("/api/contacts/:sessionId", NewHandlers(application, e.service).ContactsHandler)
	return e
}

func (e *env) get(t *testing.T, sessionID string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/contacts/"+sessionID, nil))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return w, payload
}

func TestContactsHandler(t *testing.T) {
	e := newEnv(t)
	id, err := e.service.CreateSession()
	require.NoError(t, err)
	e.events.QR("1@handshake")
	e.events.Authenticated()
	e.events.Ready("5511999999999", "Sales Desk")

	e.adapter.contacts = []client.Contact{
		{ID: "5511777777777@s.whatsapp.net", Name: "Alice", Number: "5511777777777"},
		{ID: "5511666666666@s.whatsapp.net", Name: "Bob", Number: "5511666666666"},
	}

	w, payload := e.get(t, id)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, float64(2), payload["total"])

	contacts, ok := payload["contacts"].([]any)
	require.True(t, ok)
	require.Len(t, contacts, 2)
	first := contacts[0].(map[string]any)
	assert.Equal(t, "Alice", first["name"])
	assert.Equal(t, "5511777777777", first["number"])
	assert.Equal(t, false, first["isGroup"])
}

func TestContactsHandlerUnknownSession(t *testing.T) {
	e := newEnv(t)

	w, payload := e.get(t, "session_000")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, payload["success"])
}

func TestContactsHandlerNotConnected(t *testing.T) {
	e := newEnv(t)
	id, err := e.service.CreateSession()
	require.NoError(t, err)

	// No address book exists before the handshake completes.
	w, _ := e.get(t, id)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
