package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"aurora/pkg/session"

	"github.com/joho/godotenv"
)

type appConfig struct {
	DSN           string
	ListenAddr    string
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	AutoMigrate   bool
}

// loadConfig reads configuration from the environment. A local .env file is
// loaded first if present; variables already set win.
func loadConfig() appConfig {
	_ = godotenv.Load()

	cfg := appConfig{
		DSN:           os.Getenv("DB_DSN"),
		ListenAddr:    getEnvOrDefault("LISTEN_ADDR", ":8081"),
		AccessSecret:  []byte(secretEnv("JWT_ACCESS_SECRET", "dev-insecure-access-secret-change")),
		RefreshSecret: []byte(secretEnv("JWT_REFRESH_SECRET", "dev-insecure-refresh-secret-change")),
		AccessTTL:     getDurationEnv("ACCESS_TOKEN_TTL", 15, time.Minute),
		RefreshTTL:    getDurationEnv("REFRESH_TOKEN_TTL", 7, 24*time.Hour),
		AutoMigrate:   true,
	}
	if v := strings.ToLower(os.Getenv("DB_AUTO_MIGRATE")); v == "false" || v == "0" || v == "no" {
		cfg.AutoMigrate = false
	}
	return cfg
}

// accessContext and refreshContext hand the two signing contexts to the
// session package. They are built once at startup and never mutated.
func (c appConfig) accessContext() session.SigningContext {
	return session.SigningContext{Secret: c.AccessSecret, TTL: c.AccessTTL}
}

func (c appConfig) refreshContext() session.SigningContext {
	return session.SigningContext{Secret: c.RefreshSecret, TTL: c.RefreshTTL}
}

func getEnvOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func secretEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	log.Printf("%s not set, using development fallback", key)
	return fallback
}

func getDurationEnv(key string, fallback int, unit time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(fallback) * unit
}
