package messaging

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zapline/whatsapp-server/internal/app"
	"github.com/zapline/whatsapp-server/internal/session"
)

// sendTimeout bounds how long a send may suspend the request on the
// underlying client.
const sendTimeout = 60 * time.Second

// Handlers contains HTTP handlers for messaging
type Handlers struct {
	app     *app.App
	service *session.Service
}

// NewHandlers creates a new messaging handlers instance
func NewHandlers(app *app.App, service *session.Service) *Handlers {
	return &Handlers{app: app, service: service}
}

// SendMessageHandler handles sending a text message
func (h *Handlers) SendMessageHandler(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), sendTimeout)
	defer cancel()

	if err := h.service.SendMessage(ctx, req.SessionID, req.Number, req.Message); err != nil {
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Session not found"})
		case errors.Is(err, session.ErrNotConnected):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Session is not connected"})
		default:
			h.app.Log.Error().Err(err).Str("session", req.SessionID).Msg("message send failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message sent successfully"})
}
