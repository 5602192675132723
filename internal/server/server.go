package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/zapline/whatsapp-server/internal/app"
	"github.com/zapline/whatsapp-server/internal/config"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	app    *app.App
	config *config.Config
	srv    *http.Server
}

// NewServer creates a new server instance
func NewServer(app *app.App, config *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	// Route gin's own output through the structured logger.
	gin.DefaultWriter = app.Log
	gin.DefaultErrorWriter = app.Log

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(config.GetCorsConfig()))

	return &Server{
		router: r,
		app:    app,
		config: config,
		srv: &http.Server{
			Addr:    ":" + config.ServerPort,
			Handler: r,
		},
	}
}

// Router returns the gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() {
	go func() {
		s.app.Log.Info().Str("port", s.config.ServerPort).Msg("WhatsApp server listening")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.app.Log.Error().Err(err).Msg("server error")
		}
	}()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Log.Info().Msg("shutting down server")
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.app.Log.Info().Msg("server exited")
	return nil
}
