// Package config provides configuration management for the ledger
// service. It loads configuration from environment variables and .env
// files.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Server ServerConfig
	DBPath string
	Seed   SeedConfig
	Debug  bool
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Host string
	Port int
}

// SeedConfig points at the optional YAML bootstrap file.
type SeedConfig struct {
	Path string
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	port, err := parseIntEnv("LEDGER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_PORT: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Host: getEnvOrDefault("LEDGER_HOST", "127.0.0.1"),
			Port: port,
		},
		DBPath: getEnvOrDefault("LEDGER_DB_PATH", "./ledger.db"),
		Seed: SeedConfig{
			Path: os.Getenv("LEDGER_SEED_PATH"),
		},
		Debug: os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv parses an int from an environment variable.
// Returns defaultValue if the environment variable is not set.
func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}

	return parsed, nil
}
