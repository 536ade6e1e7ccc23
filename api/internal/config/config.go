package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramBotToken string
	WebhookURL       string
	Port             string

	DatabaseURL string

	AppEnv      string
	LogFilePath string

	// SessionTTL of 0 keeps sessions until they are finished or cancelled.
	SessionTTL time.Duration

	NATSURL  string
	RedisURL string
}

func (c *Config) IsProd() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// Load reads the environment, after loading .env when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      resolveDSN(),
		AppEnv:           getEnv("APP_ENV", "development"),
		LogFilePath:      getEnv("LOG_FILE_PATH", ""),
		NATSURL:          getEnv("NATS_URL", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
	}
	if cfg.TelegramBotToken == "" {
		return nil, fmt.Errorf("missing required env TELEGRAM_BOT_TOKEN")
	}

	ttl, err := parseTTL(getEnv("SESSION_TTL", "0"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	cfg.SessionTTL = ttl
	return cfg, nil
}

// parseTTL accepts Go durations ("30m") or bare minutes ("30").
func parseTTL(s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("negative duration %q", s)
		}
		return d, nil
	}
	d, err := time.ParseDuration(s + "m")
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func resolveDSN() string {
	if v := getEnv("DATABASE_URL", ""); v != "" {
		return v
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("POSTGRES_USER", "pedidos"), os.Getenv("POSTGRES_PASSWORD")),
		Host:     net.JoinHostPort(getEnv("PGHOST", "db"), getEnv("PGPORT", "5432")),
		Path:     "/" + getEnv("POSTGRES_DB", "pedidos"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SafeDSNSummary describes dsn without the password.
func SafeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	user := u.User.Username()
	host := u.Host
	port := ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, db, user)
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, db, user)
}
