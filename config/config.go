package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	SessionStorePostgres = "postgres"
	SessionStoreSQLite   = "sqlite"
)

type Config struct {
	DB       DBConfig
	Telegram TelegramConfig
	Backend  BackendConfig
	Session  SessionConfig
	Health   HealthConfig
	LogLevel string
	// AdminRole is the user role allowed to publish menu items.
	AdminRole   string
	DefaultLang string
	AutoMigrate bool
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type TelegramConfig struct {
	Token string
}

type BackendConfig struct {
	URL string
}

type SessionConfig struct {
	Store      string // "postgres" or "sqlite"
	SQLitePath string
}

type HealthConfig struct {
	Addr string // empty disables the health listener
}

// Load reads .env files (when present) and the environment. envFiles are
// passed to godotenv; missing files are not an error.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))

	cfg := &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "lunch"),
		},
		Telegram: TelegramConfig{
			Token: getEnv("TOKEN", ""),
		},
		Backend: BackendConfig{
			URL: strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8000"), "/"),
		},
		Session: SessionConfig{
			Store:      strings.ToLower(getEnv("SESSION_STORE", SessionStorePostgres)),
			SQLitePath: getEnv("SQLITE_PATH", "lunch-sessions.db"),
		},
		Health: HealthConfig{
			Addr: getEnv("HEALTH_ADDR", ""),
		},
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		AdminRole:   getEnv("ADMIN_ROLE", "admin"),
		DefaultLang: getEnv("DEFAULT_LANG", "ru"),
		AutoMigrate: getEnvAsBool("AUTO_MIGRATE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks values that have a fixed set of options. The Telegram
// token is checked by the serve command only, so migrate runs without it.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	switch c.Session.Store {
	case SessionStorePostgres:
	case SessionStoreSQLite:
		if c.Session.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when SESSION_STORE=sqlite")
		}
	default:
		return fmt.Errorf("invalid SESSION_STORE: %s (must be postgres or sqlite)", c.Session.Store)
	}
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	if c.AdminRole == "" {
		return fmt.Errorf("ADMIN_ROLE must not be empty")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v == "1" || strings.EqualFold(v, "true")
}
