package config

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
)

// Config holds application configuration
type Config struct {
	ServerPort string
	DataDir    string
	LogDir     string
	// QRImageSize is the pixel width of generated QR code images.
	QRImageSize int
}

// NewConfig creates a new configuration with default values, overridable via
// the PORT and DATA_DIR environment variables.
func NewConfig() *Config {
	cfg := &Config{
		ServerPort:  "3000",
		DataDir:     "data",
		LogDir:      "logs",
		QRImageSize: 256,
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.ServerPort = port
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	return cfg
}

// EnsureDataDir ensures the session data directory exists
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}

// GetCorsConfig returns CORS configuration for the application
func (c *Config) GetCorsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Type"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowWebSockets = true
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}
