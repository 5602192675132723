package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/zapline/whatsapp-server/internal/app"
	"github.com/zapline/whatsapp-server/internal/client"
	"github.com/zapline/whatsapp-server/internal/config"
	"github.com/zapline/whatsapp-server/internal/realtime"
	"github.com/zapline/whatsapp-server/internal/server"
	"github.com/zapline/whatsapp-server/internal/session"
	"github.com/zapline/whatsapp-server/pkg/logger"
)

func main() {
	cfg := config.NewConfig()

	log, closeLogger, err := logger.Setup(cfg.LogDir)
	if err != nil {
		log = logger.SetupFallback()
		log.Warn().Err(err).Msg("file logging unavailable, using console only")
	} else {
		defer closeLogger()
	}

	if err := cfg.EnsureDataDir(); err != nil {
		log.Fatal().Err(err).Msg("failed to create data directory")
	}

	application := app.NewApp(cfg, log)

	store := session.NewStore()
	hub := realtime.NewHub(log.With().Str("component", "realtime").Logger())
	factory := client.NewWhatsmeowFactory(cfg.DataDir, log.With().Str("component", "client").Logger())
	sessions := session.NewService(application, store, hub, factory)
	hub.OnBind = sessions.ObserverBound

	srv := server.NewServer(application, cfg)
	srv.SetupRoutes(sessions, hub)
	srv.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	sessions.Shutdown()
}
