package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port       string
	DBPath     string
	CacheTTL   time.Duration
	SessionTTL time.Duration

	// Seed credentials for a fresh database with no users yet.
	AdminUser string
	AdminName string
	AdminPass string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func Load() *Config {
	return &Config{
		Port:       getenv("PORT", "8080"),
		DBPath:     getenv("DB_PATH", "collect.db"),
		CacheTTL:   time.Duration(atoi("CACHE_TTL_SECONDS", 60)) * time.Second,
		SessionTTL: time.Duration(atoi("SESSION_TTL_MINUTES", 720)) * time.Minute,
		AdminUser:  getenv("ADMIN_USERNAME", "admin"),
		AdminName:  getenv("ADMIN_NAME", "Administrator"),
		AdminPass:  getenv("ADMIN_PASSWORD", "admin123"),
	}
}
