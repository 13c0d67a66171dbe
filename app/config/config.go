package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

const (
	DefaultBaseURL   = "https://api.chess.com/pub/"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:94.0) Gecko/20100101 Firefox/94.0"
	DefaultTimeout   = 15 * time.Second
	DefaultAddr      = "0.0.0.0:8080"
)

type Config struct {
	Logs     LogConfig
	DB       PostgresConfig
	Chess    ChessConfig
	Auth     AuthConfig
	QueueURL string
	RedisURL string
	Addr     string
}

type LogConfig struct {
	Style string // compact, text or json
	Level string
}

type PostgresConfig struct {
	Username string
	Password string
	URL      string
	Port     string
	Name     string
}

// Enabled reports whether a database host was configured.
func (p PostgresConfig) Enabled() bool {
	return p.URL != ""
}

// DSN builds the lib/pq connection URL with credentials escaped.
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.Username, p.Password),
		Host:   net.JoinHostPort(p.URL, p.Port),
	}
	if p.Name != "" {
		u.Path = "/" + p.Name
	}
	return u.String()
}

type ChessConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

type AuthConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string
	Disabled bool
}

func LoadConfig() (*Config, error) {
	timeout := DefaultTimeout
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse HTTP_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", d)
		}
		timeout = d
	}

	authDisabled := false
	if v := os.Getenv("AUTH_DISABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("parse AUTH_DISABLED: %w", err)
		}
		authDisabled = b
	}

	baseURL := getEnv("CHESS_API_URL", DefaultBaseURL)
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	cfg := &Config{
		QueueURL: os.Getenv("QUEUE_URL"),
		RedisURL: os.Getenv("REDIS_URL"),
		Addr:     getEnv("ADDR", DefaultAddr),
		Logs: LogConfig{
			Style: getEnv("LOG_STYLE", "compact"),
			Level: getEnv("LOG_LEVEL", "info"),
		},
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			Name:     os.Getenv("POSTGRES_DB"),
		},
		Chess: ChessConfig{
			BaseURL:   baseURL,
			UserAgent: getEnv("CHESS_USER_AGENT", DefaultUserAgent),
			Timeout:   timeout,
		},
		Auth: AuthConfig{
			Issuer:   strings.TrimSpace(os.Getenv("AUTH_ISSUER")),
			Audience: strings.TrimSpace(os.Getenv("AUTH_AUDIENCE")),
			JWKSURL:  strings.TrimSpace(os.Getenv("AUTH_JWKS_URL")),
			Disabled: authDisabled,
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
