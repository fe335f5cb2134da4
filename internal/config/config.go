// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds everything main needs to wire the assistant together.
type Config struct {
	// DBPath is the SQLite database file. The parent directory is
	// created on startup if missing.
	DBPath string
	// StaticPath is the directory of the chat UI assets.
	StaticPath string
	// Port is the HTTP listen port.
	Port string

	// ModelType selects the generator: "api" for a remote
	// OpenAI-compatible endpoint, anything else falls back to the
	// offline rule engine.
	ModelType string
	// ModelName, ModelAPIURL and ModelAPIKey configure the remote
	// endpoint. An empty key forces the rule fallback.
	ModelName   string
	ModelAPIURL string
	ModelAPIKey string

	// UserName labels the single local user.
	UserName string
}

// Load reads configuration from a .env file (if present) and the
// environment. Every field has a working default; only a real model
// endpoint needs explicit settings.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	return &Config{
		DBPath:      getEnv("DB_PATH", defaultDBPath()),
		StaticPath:  getEnv("STATIC_PATH", "./web/static"),
		Port:        getEnv("PORT", "7860"),
		ModelType:   getEnv("MODEL_TYPE", "api"),
		ModelName:   getEnv("MODEL_NAME", "Qwen/Qwen2.5-72B-Instruct"),
		ModelAPIURL: getEnv("MODEL_API_URL", "https://api-inference.modelscope.cn/v1"),
		ModelAPIKey: os.Getenv("MODEL_API_KEY"),
		UserName:    getEnv("USER_NAME", "默认用户"),
	}
}

// UseRuleFallback reports whether the offline rule generator should be
// used instead of a remote model.
func (c *Config) UseRuleFallback() bool {
	return c.ModelType != "api" || c.ModelAPIKey == ""
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("finance_assistant", "finance.db")
	}
	return filepath.Join(home, "finance_assistant", "finance.db")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
