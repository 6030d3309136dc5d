// Package config loads runtime settings from the environment (and an
// optional .env file). Load fails fast when a required value is missing.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port            string
	DBDriver        string
	DatabaseURL     string
	AutoMigrate     bool
	RedisURL        string
	JWTSecret       string
	TokenTTL        time.Duration
	BodyLimit       int64
	CORSOrigins     []string
	StrictOwnership bool
	LogLevel        slog.Level
}

// LoadEnvFile reads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the environment. It only rejects values it cannot parse; the
// result still needs Validate.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getenv("PORT", "8080"),
		DBDriver:        strings.ToLower(getenv("DB_DRIVER", DriverPostgres)),
		RedisURL:        os.Getenv("REDIS_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		CORSOrigins:     splitList(getenv("CORS_ORIGINS", "*")),
		TokenTTL:        30 * 24 * time.Hour,
		BodyLimit:       10 << 20,
		AutoMigrate:     true,
		StrictOwnership: false,
		LogLevel:        slog.LevelInfo,
	}

	var err error
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if cfg.TokenTTL, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("TOKEN_TTL: %w", err)
		}
	}
	if v := os.Getenv("BODY_LIMIT_MB"); v != "" {
		mb, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("BODY_LIMIT_MB: %w", err)
		}
		cfg.BodyLimit = int64(mb) << 20
	}
	if cfg.AutoMigrate, err = getbool("AUTO_MIGRATE", cfg.AutoMigrate); err != nil {
		return nil, err
	}
	if cfg.StrictOwnership, err = getbool("STRICT_OWNERSHIP", cfg.StrictOwnership); err != nil {
		return nil, err
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if cfg.LogLevel, err = ParseLogLevel(v); err != nil {
			return nil, err
		}
	}
	cfg.DatabaseURL = databaseURL()
	return cfg, nil
}

// Validate checks the settings that Load cannot default. Call it once, after
// command-line overrides are applied.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL or DB_HOST/DB_USER/DB_NAME is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.BodyLimit <= 0 {
		return fmt.Errorf("BODY_LIMIT_MB must be positive")
	}
	return nil
}

// ParseLogLevel accepts debug, info, warn and error.
func ParseLogLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return l, nil
}

// databaseURL prefers DATABASE_URL and falls back to the DB_* parts.
func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	host, user, name := os.Getenv("DB_HOST"), os.Getenv("DB_USER"), os.Getenv("DB_NAME")
	if host == "" || user == "" || name == "" {
		return ""
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host,
		getenv("DB_PORT", "5432"),
		user,
		os.Getenv("DB_PASSWORD"),
		name,
		getenv("DB_SSLMODE", "disable"))
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
