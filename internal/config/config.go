// Package config loads application configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	ProjectsRoot     string
	APIPort          string
	LogLevel         string
	LogFormat        string
	MaxMapImageBytes int64
	MaxPhotoBytes    int64
	MaxNoteBytes     int64
}

// Load reads configuration from environment variables, applying defaults for
// everything optional. A .env file in the working directory is loaded first;
// variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ProjectsRoot: getEnv("PROJECTS_ROOT", ""),
		APIPort:      getEnv("API_PORT", "9000"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
	}

	if cfg.ProjectsRoot == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("PROJECTS_ROOT is required when no home directory is available: %w", err)
		}
		cfg.ProjectsRoot = filepath.Join(home, "Documents", "CampaignSmith")
	}
	root, err := filepath.Abs(cfg.ProjectsRoot)
	if err != nil {
		return nil, fmt.Errorf("PROJECTS_ROOT must be a resolvable path: %w", err)
	}
	cfg.ProjectsRoot = root

	if cfg.MaxMapImageBytes, err = getEnvBytes("MAX_MAP_IMAGE_BYTES", 40<<20); err != nil {
		return nil, err
	}
	if cfg.MaxPhotoBytes, err = getEnvBytes("MAX_PHOTO_BYTES", 10<<20); err != nil {
		return nil, err
	}
	if cfg.MaxNoteBytes, err = getEnvBytes("MAX_NOTE_BYTES", 300<<10); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.ProjectsRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create projects root: %w", err)
	}
	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBytes(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}
