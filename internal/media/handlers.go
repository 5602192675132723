package media

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zapline/whatsapp-server/internal/app"
	"github.com/zapline/whatsapp-server/internal/client"
	"github.com/zapline/whatsapp-server/internal/session"
)

// sendTimeout bounds upload plus delivery of one media message.
const sendTimeout = 120 * time.Second

// Handlers contains HTTP handlers for media sending
type Handlers struct {
	app      *app.App
	service  *Service
	sessions *session.Service
}

// NewHandlers creates a new media handlers instance
func NewHandlers(app *app.App, sessions *session.Service) *Handlers {
	return &Handlers{
		app:      app,
		service:  NewService(app),
		sessions: sessions,
	}
}

// SendImageHandler handles sending an image message
func (h *Handlers) SendImageHandler(c *gin.Context) {
	h.send(c, client.MediaKindImage)
}

// SendVideoHandler handles sending a video message
func (h *Handlers) SendVideoHandler(c *gin.Context) {
	h.send(c, client.MediaKindVideo)
}

// SendFileHandler handles sending a document message
func (h *Handlers) SendFileHandler(c *gin.Context) {
	h.send(c, client.MediaKindFile)
}

func (h *Handlers) send(c *gin.Context, kind string) {
	var req SendMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	media, err := h.service.Resolve(kind, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), sendTimeout)
	defer cancel()

	if err := h.sessions.SendMedia(ctx, req.SessionID, req.Number, media); err != nil {
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Session not found"})
		case errors.Is(err, session.ErrNotConnected):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Session is not connected"})
		default:
			h.app.Log.Error().Err(err).Str("session", req.SessionID).Msg("media send failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": kind + " sent successfully"})
}
