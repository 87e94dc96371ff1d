// Package config loads the engine's environment knobs into a plain
// struct populated from os.Getenv, with godotenv supporting a local .env
// file for development.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	defaultRedisURL   = "redis://127.0.0.1:6379/0"
	defaultListenAddr = ":8080"
	envRedisURL       = "REDIS_URL"
	envListenAddr     = "LISTEN_ADDR"
)

// Config is the engine's complete external configuration.
type Config struct {
	// RedisURL is the bus connection string.
	RedisURL string
	// ListenAddr is the local address the snapshot websocket hub and
	// health endpoint listen on.
	ListenAddr string
}

// Load reads configuration from the environment, applying a local .env
// file first if one is present (errors loading it are not fatal — it is
// a development convenience, not a requirement).
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to load .env file")
	}

	cfg := Config{
		RedisURL:   getenv(envRedisURL, defaultRedisURL),
		ListenAddr: getenv(envListenAddr, defaultListenAddr),
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c Config) String() string {
	return fmt.Sprintf("Config{redis=%s listen=%s}", c.RedisURL, c.ListenAddr)
}
