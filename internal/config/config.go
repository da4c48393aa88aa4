package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

var ErrMisconfigured = errors.New("config invalid")

type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Auth     AuthConfig
	Store    StoreConfig
	Redis    RedisConfig
	Postgres PostgresConfig
}

type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	LogLevel       string
}

// BackendConfig - 외부 인증 백엔드 (API_URL)
type BackendConfig struct {
	BaseURL string
	Timeout string
}

type AuthConfig struct {
	JWTSecret      string
	SessionSecret  string
	SessionTTL     string
	CookieName     string
	CookiePath     string
	CookieDomain   string
	CookieSecure   string
	CookieSameSite string
}

type StoreConfig struct {
	Driver string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

// LoadDotEnv loads .env (or the given files) into the process environment
// without overriding variables that are already set. It reports whether a
// file was loaded; callers log the miss once their logger exists.
func LoadDotEnv(filenames ...string) bool {
	return godotenv.Load(filenames...) == nil
}

// Load reads the configuration from the process environment. Call LoadDotEnv first
// when a .env file should be honored.
func Load() Config {
	return Config{
		Server: ServerConfig{
			Addr:           getenv("SERVER_ADDR", ":8080"),
			AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
			LogLevel:       getenv("LOG_LEVEL", "info"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(os.Getenv("API_URL"), "/"),
			Timeout: getenv("API_TIMEOUT", "10s"),
		},
		Auth: AuthConfig{
			JWTSecret:      os.Getenv("JWT_SECRET"),
			SessionSecret:  os.Getenv("NEXTAUTH_SECRET"),
			SessionTTL:     getenv("SESSION_TTL", "720h"),
			CookieName:     getenv("SESSION_COOKIE_NAME", "session_token"),
			CookiePath:     getenv("AUTH_COOKIE_PATH", "/"),
			CookieDomain:   os.Getenv("AUTH_COOKIE_DOMAIN"),
			CookieSecure:   os.Getenv("AUTH_COOKIE_SECURE"),
			CookieSameSite: os.Getenv("AUTH_COOKIE_SAMESITE"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getenv("SESSION_STORE", "memory")),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getenv("REDIS_DB", "0"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
	}
}

// Validate checks the settings the server cannot start without.
// API_URL is deliberately absent: it is checked when a login is attempted.
func (c Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}
	if c.Auth.SessionSecret == "" {
		return fmt.Errorf("%w: NEXTAUTH_SECRET is required", ErrMisconfigured)
	}
	switch c.Store.Driver {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("%w: unknown SESSION_STORE %q", ErrMisconfigured, c.Store.Driver)
	}
	return nil
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
