package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Upstream struct {
		BaseURL string
		Token   string
	}
	API struct {
		Port     string
		BasePath string
	}
	Import struct {
		ChunkSize int
	}
	Prefs struct {
		Path string
	}
	Log struct {
		Path  string
		Level string
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	// Upstream platform API
	cfg.Upstream.BaseURL = os.Getenv("UPSTREAM_BASE_URL")
	cfg.Upstream.Token = os.Getenv("UPSTREAM_TOKEN")

	// API settings
	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")

	// Batch settings
	if cs, err := strconv.Atoi(os.Getenv("IMPORT_CHUNK_SIZE")); err == nil {
		cfg.Import.ChunkSize = cs
	}

	// Local state and logging
	cfg.Prefs.Path = os.Getenv("PREFS_DB_PATH")
	cfg.Log.Path = os.Getenv("LOG_PATH")
	cfg.Log.Level = os.Getenv("LOG_LEVEL")

	// Validate required settings
	missing := []string{}
	if cfg.Upstream.BaseURL == "" {
		missing = append(missing, "UPSTREAM_BASE_URL")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	// Apply defaults
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api/v0"
	}
	if cfg.Import.ChunkSize == 0 {
		cfg.Import.ChunkSize = 25
	}
	if cfg.Prefs.Path == "" {
		cfg.Prefs.Path = "data/console.db"
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = "logs/console.log"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}
