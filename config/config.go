package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP server
	ListenAddr string

	// Admin gate password; exchanging it yields an admin capability token
	AdminPassword string

	// Game settings
	StartingCredits int64

	// Environment: "development", "production" or "test"
	Environment string
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from the environment, with .env as a fallback
func load() (*Config, error) {
	// .env is optional; real env vars take precedence
	_ = godotenv.Load()

	config := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		ListenAddr:      os.Getenv("LISTEN_ADDR"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		StartingCredits: 1000,
		Environment:     os.Getenv("ENVIRONMENT"),
	}

	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}
	if config.AdminPassword == "" {
		config.AdminPassword = "admin123"
	}
	if credits := os.Getenv("STARTING_CREDITS"); credits != "" {
		if parsed, err := strconv.ParseInt(credits, 10, 64); err == nil {
			config.StartingCredits = parsed
		}
	}
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
