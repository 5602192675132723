package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zapline/whatsapp-server/internal/app"
	"github.com/zapline/whatsapp-server/internal/session"
)

// QRSource exposes the most recent QR image for a session.
type QRSource interface {
	LatestQR(sessionID string) (string, error)
}

// Handlers contains HTTP handlers for authentication
type Handlers struct {
	app *app.App
	qr  QRSource
}

// NewHandlers creates a new authentication handlers instance
func NewHandlers(app *app.App, qr QRSource) *Handlers {
	return &Handlers{app: app, qr: qr}
}

// QRImageHandler returns the pending QR image for a session. The primary QR
// delivery path is the realtime channel; this endpoint serves late joiners
// and plain HTTP clients.
func (h *Handlers) QRImageHandler(c *gin.Context) {
	sessionID := c.Param("sessionId")

	qr, err := h.qr.LatestQR(sessionID)
	if err != nil {
		status := http.StatusNotFound
		if !errors.Is(err, session.ErrSessionNotFound) && !errors.Is(err, session.ErrNoQR) {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sessionId": sessionID, "qr": qr})
}
