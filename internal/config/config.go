package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"fintrack/internal/logger"
)

// Config holds application configuration
type Config struct {
	// Server
	Env  string
	Port string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Login throttling
	LoginRateLimit  int
	LoginRateWindow time.Duration

	// Dashboard
	DefaultTimezone string
}

var appConfig *Config

var defaults = map[string]any{
	"PORT":              "8080",
	"ENV":               "development",
	"DB_DRIVER":         "postgres",
	"DB_HOST":           "localhost",
	"DB_PORT":           "5432",
	"DB_USER":           "fintrack",
	"DB_PASSWORD":       "fintrack",
	"DB_NAME":           "fintrack",
	"DB_SSLMODE":        "disable",
	"SQLITE_PATH":       "fintrack.db",
	"JWT_SECRET":        "fallback-secret-key-for-dev-only",
	"JWT_EXPIRES_IN":    "24h",
	"LOGIN_RATE_LIMIT":  10,
	"LOGIN_RATE_WINDOW": "1m",
	"DEFAULT_TIMEZONE":  "UTC",
}

// Load reads configuration from a .env file (if present) and the
// environment, falling back to development defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Get().Debug(".env file not found, using environment only")
	}

	cfg, err := FromViper(newViper())
	if err != nil {
		return nil, err
	}
	appConfig = cfg
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	return v
}

// FromViper builds a Config from v. Invalid durations fall back to their
// defaults with a warning; an unknown timezone or database driver is an error.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:  v.GetString("ENV"),
		Port: v.GetString("PORT"),

		DBDriver:   v.GetString("DB_DRIVER"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),
		SQLitePath: v.GetString("SQLITE_PATH"),

		JWTSecret:      v.GetString("JWT_SECRET"),
		LoginRateLimit: v.GetInt("LOGIN_RATE_LIMIT"),

		DefaultTimezone: v.GetString("DEFAULT_TIMEZONE"),
	}

	cfg.JWTExpirationDur = durationOr(v, "JWT_EXPIRES_IN", 24*time.Hour)
	cfg.LoginRateWindow = durationOr(v, "LOGIN_RATE_WINDOW", time.Minute)
	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 10
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_TIMEZONE %q: %w", cfg.DefaultTimezone, err)
	}
	return cfg, nil
}

func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logger.Get().Warnw("invalid duration, using fallback", "key", key, "value", raw, "fallback", fallback)
		return fallback
	}
	return d
}

// Location returns the configured default dashboard timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			logger.Get().Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}
