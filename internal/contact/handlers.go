package contact

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zapline/whatsapp-server/internal/app"
	"github.com/zapline/whatsapp-server/internal/session"
)

const listTimeout = 30 * time.Second

// Handlers contains HTTP handlers for contact retrieval
type Handlers struct {
	app      *app.App
	sessions *session.Service
}

// NewHandlers creates a new contact handlers instance
func NewHandlers(app *app.App, sessions *session.Service) *Handlers {
	return &Handlers{app: app, sessions: sessions}
}

// ContactsHandler lists the contacts synced by a connected session. Unknown
// and not-yet-connected sessions both report 404: there is no address book to
// serve either way.
func (h *Handlers) ContactsHandler(c *gin.Context) {
	sessionID := c.Param("sessionId")

	ctx, cancel := context.WithTimeout(c.Request.Context(), listTimeout)
	defer cancel()

	contacts, err := h.sessions.Contacts(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) || errors.Is(err, session.ErrNotConnected) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
			return
		}
		h.app.Log.Error().Err(err).Str("session", sessionID).Msg("contact listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ContactsResponse{
		Success:  true,
		Contacts: contacts,
		Total:    len(contacts),
	})
}
