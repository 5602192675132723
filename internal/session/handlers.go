package session

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zapline/whatsapp-server/internal/app"
)

// Handlers contains HTTP handlers for session management
type Handlers struct {
	app     *app.App
	service *Service
}

// NewHandlers creates a new session handlers instance
func NewHandlers(app *app.App, service *Service) *Handlers {
	return &Handlers{app: app, service: service}
}

// CreateSessionHandler registers a new session and starts its handshake. The
// QR code arrives over the realtime channel once the observer binds.
func (h *Handlers) CreateSessionHandler(c *gin.Context) {
	sessionID, err := h.service.CreateSession()
	if err != nil {
		h.app.Log.Error().Err(err).Msg("failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to create session: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"sessionId": sessionID,
		"message":   "Session created. Bind to it on the realtime channel to receive the QR code.",
	})
}

// DisconnectSessionHandler destroys a session's client and removes it.
func (h *Handlers) DisconnectSessionHandler(c *gin.Context) {
	var req DisconnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	if err := h.service.DisconnectSession(req.SessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Session disconnected"})
}

// ActiveSessionsHandler lists every live session.
func (h *Handlers) ActiveSessionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.service.ListSessions()})
}
