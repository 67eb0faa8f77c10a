package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	Port      string
	Store     string
	DBConn    string
	LogLevel  string
	JWTSecret string
	TokenTTL  time.Duration
	Location  *time.Location

	CORSOrigins   []string
	AuthRateLimit int

	DigestEnabled  bool
	DigestSchedule string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SenderEmail    string
}

// NewConfig loads configuration from environment variables.
// A .env file in the working directory is loaded first if present.
func NewConfig() (*Config, error) {
	// Missing .env is not an error; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "5000"),
		Store:          strings.ToLower(getEnv("STORE", StorePostgres)),
		DBConn:         getEnv("DB_CONN", "host=localhost port=5432 user=fitgrow password=fitgrow dbname=fitgrow sslmode=disable"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		TokenTTL:       7 * 24 * time.Hour,
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
		DigestEnabled:  getEnv("DIGEST_ENABLED", "false") == "true",
		DigestSchedule: getEnv("DIGEST_SCHEDULE", "0 21 * * *"),
		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SenderEmail:    getEnv("SENDER_EMAIL", "noreply@fitgrow.app"),
	}

	limit, err := strconv.Atoi(getEnv("AUTH_RATE_LIMIT", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_RATE_LIMIT: %w", err)
	}
	cfg.AuthRateLimit = limit

	cfg.Location = time.Local
	if name := getEnv("TZ_NAME", ""); name != "" {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("invalid TZ_NAME: %w", err)
		}
		cfg.Location = loc
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.Store {
	case StorePostgres:
		if c.DBConn == "" {
			return fmt.Errorf("DB_CONN is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}
	if c.DigestEnabled && c.DigestSchedule == "" {
		return fmt.Errorf("DIGEST_SCHEDULE is required when DIGEST_ENABLED is set")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
