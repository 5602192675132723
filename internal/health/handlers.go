package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zapline/whatsapp-server/internal/app"
	"github.com/zapline/whatsapp-server/internal/session"
)

const version = "1.0.0"

// Handlers contains HTTP handlers for health checks
type Handlers struct {
	app      *app.App
	sessions *session.Service
}

// NewHandlers creates a new health handlers instance
func NewHandlers(app *app.App, sessions *session.Service) *Handlers {
	return &Handlers{app: app, sessions: sessions}
}

// RootHandler handles the root endpoint for container health checks
func (h *Handlers) RootHandler(c *gin.Context) {
	total, _ := h.sessions.Counts()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"uptime":        time.Since(h.app.StartTime).String(),
		"session_count": total,
		"version":       version,
	})
}

// HealthCheckHandler handles the health check endpoint
func (h *Handlers) HealthCheckHandler(c *gin.Context) {
	total, connected := h.sessions.Counts()

	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"uptime":             time.Since(h.app.StartTime).String(),
		"total_sessions":     total,
		"connected_sessions": connected,
		"timestamp":          time.Now().Format(time.RFC3339),
	})
}
