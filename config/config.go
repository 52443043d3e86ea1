/*
Package config loads server configuration from the environment.

PURPOSE:
  One flat Config struct populated from environment variables, with a
  .env file loaded first when present. Command-line flags in
  cmd/server override individual fields after loading.

VARIABLES (prefix TV_):
  TV_PORT          HTTP server port (default 8080)
  TV_DB            SQLite database path (default timeverify.db)
  TV_CORS_ORIGINS  Comma-separated allowed origins
*/
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the server configuration.
type Config struct {
	Port        int      `envconfig:"PORT" default:"8080"`
	DBPath      string   `envconfig:"DB" default:"timeverify.db"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://localhost:8080"`
}

// Load reads the configuration from the environment. A missing .env
// file is not an error; a malformed one is.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("tv", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return &cfg, nil
}
