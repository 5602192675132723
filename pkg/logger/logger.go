package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup configures application logging: human-readable console output plus a
// daily rotating file under logDir. The returned closer releases the active
// log file and must be called on shutdown.
func Setup(logDir string) (zerolog.Logger, func() error, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	fileWriter, err := NewDailyRotatingWriter(logDir, "whatsapp-server-%s.log")
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create log writer: %w", err)
	}

	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log := zerolog.New(zerolog.MultiLevelWriter(console, fileWriter)).
		With().Timestamp().Logger()

	return log, fileWriter.Close, nil
}

// SetupFallback creates a console-only logger for when file logging cannot be
// initialized.
func SetupFallback() zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(console).With().Timestamp().Logger()
}
