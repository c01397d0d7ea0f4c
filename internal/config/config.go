// Package config loads client and server configuration from the
// environment, optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// ClientConfig holds settings for the terminal client.
type ClientConfig struct {
	// ServerURL is the base URL of the storage backend.
	ServerURL string `env:"SERVER_URL" env-default:"http://localhost:8080"`
	// CSRFCookie is the cookie the anti-forgery token is read from.
	CSRFCookie string `env:"CSRF_COOKIE" env-default:"csrftoken"`
	// MaxUploadSize is the client-side upload ceiling in bytes.
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" env-default:"1048576"`
}

// ServerConfig holds settings for the reference server.
type ServerConfig struct {
	// Address is the listen address (ip:port).
	Address string `env:"SERVER_ADDRESS" env-default:"localhost:8080"`
	// DatabaseDSN is the Postgres connection string; empty selects the
	// in-memory store.
	DatabaseDSN string `env:"DATABASE_DSN"`
	// SessionSecret keys the session cookie store.
	SessionSecret string `env:"SESSION_SECRET" env-default:"dev-secret-change-me"`
	// MaxUploadSize is the server-side upload ceiling in bytes.
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" env-default:"1048576"`
}

// LoadClientConfig reads the client configuration, preferring .env when
// present and falling back to the process environment.
func LoadClientConfig() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := read(&cfg); err != nil {
		return nil, fmt.Errorf("read client config: %w", err)
	}
	return &cfg, nil
}

// LoadServerConfig reads the reference server configuration.
func LoadServerConfig() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := read(&cfg); err != nil {
		return nil, fmt.Errorf("read server config: %w", err)
	}
	return &cfg, nil
}

func read(cfg interface{}) error {
	if _, err := os.Stat(".env"); err == nil {
		return cleanenv.ReadConfig(".env", cfg)
	}
	return cleanenv.ReadEnv(cfg)
}
