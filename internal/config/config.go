// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	HTTPAddr       string
	StorageBackend string
	DatabasePath   string
	LogLevel       string
	SeedSampleData bool
	AllowedOrigins []string

	TelegramBotToken string
	AllowedUsers     []int64
	DigestChatIDs    []int64
	DigestInterval   time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	backend := envOrDefault("STORAGE_BACKEND", BackendMemory)
	if backend != BackendMemory && backend != BackendSQLite {
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q, use: %s, %s", backend, BackendMemory, BackendSQLite)
	}

	seed := true
	if raw := os.Getenv("SEED_SAMPLE_DATA"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SEED_SAMPLE_DATA %q: %w", raw, err)
		}
		seed = v
	}

	interval := 24 * time.Hour
	if raw := os.Getenv("DIGEST_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid DIGEST_INTERVAL %q: %w", raw, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("DIGEST_INTERVAL must be positive, got %s", d)
		}
		interval = d
	}

	allowedUsers, err := parseIDList("ALLOWED_USERS")
	if err != nil {
		return nil, err
	}
	digestChats, err := parseIDList("DIGEST_CHAT_IDS")
	if err != nil {
		return nil, err
	}

	origins := []string{"*"}
	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		origins = splitList(raw)
	}

	return &Config{
		HTTPAddr:         envOrDefault("HTTP_ADDR", ":8080"),
		StorageBackend:   backend,
		DatabasePath:     envOrDefault("DATABASE_PATH", ":memory:"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		SeedSampleData:   seed,
		AllowedOrigins:   origins,
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		AllowedUsers:     allowedUsers,
		DigestChatIDs:    digestChats,
		DigestInterval:   interval,
	}, nil
}

// BotEnabled reports whether a Telegram token was configured.
func (c *Config) BotEnabled() bool {
	return c.TelegramBotToken != ""
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseIDList(key string) ([]int64, error) {
	var ids []int64
	for _, s := range splitList(os.Getenv(key)) {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ID %q in %s: %w", s, key, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
