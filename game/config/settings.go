package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Settings holds the server configuration read from the environment
type Settings struct {
	Host  string `env:"C4_HOST" envDefault:"localhost"`
	Port  int    `env:"C4_PORT" envDefault:"8080"`
	Debug bool   `env:"C4_DEBUG"`

	// BaseURL is the API the MCP tools call. Empty means the local server.
	BaseURL string `env:"C4_BASE_URL"`

	WaitingTTL      time.Duration `env:"C4_WAITING_TTL" envDefault:"30m"`
	IdleTTL         time.Duration `env:"C4_IDLE_TTL" envDefault:"24h"`
	CleanupInterval time.Duration `env:"C4_CLEANUP_INTERVAL" envDefault:"5m"`

	Ngrok Ngrok

	OTelEndpoint string `env:"C4_OTEL_ENDPOINT"`
	ServiceName  string `env:"C4_SERVICE_NAME" envDefault:"connectfour"`
}

// Ngrok configures the optional public tunnel
type Ngrok struct {
	Enabled   bool   `env:"NGROK_ENABLED"`
	AuthToken string `env:"NGROK_AUTHTOKEN"`
	Domain    string `env:"NGROK_DOMAIN"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the given .env files (".env" when none are given), then parses
// and validates the settings. Missing .env files are not an error and never
// override variables already set.
func Load(files ...string) (*Settings, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	var s Settings
	if err := ParseEnv(&s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the settings for values the server cannot run with
func (s *Settings) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, s.Port)
	}
	if s.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	if s.WaitingTTL <= 0 || s.IdleTTL <= 0 {
		return fmt.Errorf("%w: session TTLs must be positive", ErrInvalidConfig)
	}
	if s.CleanupInterval <= 0 {
		return fmt.Errorf("%w: cleanup interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// Addr returns the host:port the HTTP server listens on
func (s *Settings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// APIBaseURL returns the URL MCP tools send requests to
func (s *Settings) APIBaseURL() string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	return "http://" + s.Addr()
}
