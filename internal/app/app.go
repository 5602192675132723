package app

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/zapline/whatsapp-server/internal/config"
)

// App holds shared application state and resources
type App struct {
	Config    *config.Config
	Log       zerolog.Logger
	StartTime time.Time // Track startup time for health checks
}

// NewApp creates a new App instance
func NewApp(cfg *config.Config, log zerolog.Logger) *App {
	return &App{
		Config:    cfg,
		Log:       log,
		StartTime: time.Now(),
	}
}
