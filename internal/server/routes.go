package server

import (
	"github.com/gin-gonic/gin"

	"github.com/zapline/whatsapp-server/internal/auth"
	"github.com/zapline/whatsapp-server/internal/contact"
	"github.com/zapline/whatsapp-server/internal/health"
	"github.com/zapline/whatsapp-server/internal/media"
	"github.com/zapline/whatsapp-server/internal/messaging"
	"github.com/zapline/whatsapp-server/internal/metrics"
	"github.com/zapline/whatsapp-server/internal/realtime"
	"github.com/zapline/whatsapp-server/internal/session"
)

// SetupRoutes configures all the routes for the application
func (s *Server) SetupRoutes(sessions *session.Service, hub *realtime.Hub) {
	// Health check handlers
	healthHandlers := health.NewHandlers(s.app, sessions)
	s.router.GET("/", healthHandlers.RootHandler)
	s.router.GET("/health", healthHandlers.HealthCheckHandler)

	// Realtime observer channel
	s.router.GET("/ws", realtime.ServeWS(hub))

	// Prometheus exposition
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := s.router.Group("/api")

	// Session lifecycle
	sessionHandlers := session.NewHandlers(s.app, sessions)
	api.POST("/create-session", sessionHandlers.CreateSessionHandler)
	api.POST("/disconnect-session", sessionHandlers.DisconnectSessionHandler)
	api.GET("/active-sessions", sessionHandlers.ActiveSessionsHandler)

	// QR retrieval for plain HTTP clients
	authHandlers := auth.NewHandlers(s.app, sessions)
	api.GET("/qr/:sessionId", authHandlers.QRImageHandler)

	// Messaging
	messagingHandlers := messaging.NewHandlers(s.app, sessions)
	api.POST("/send-message", messagingHandlers.SendMessageHandler)

	// Media
	mediaHandlers := media.NewHandlers(s.app, sessions)
	api.POST("/send-media/image", mediaHandlers.SendImageHandler)
	api.POST("/send-media/video", mediaHandlers.SendVideoHandler)
	api.POST("/send-media/file", mediaHandlers.SendFileHandler)

	// Contacts
	contactHandlers := contact.NewHandlers(s.app, sessions)
	api.GET("/contacts/:sessionId", contactHandlers.ContactsHandler)
}
