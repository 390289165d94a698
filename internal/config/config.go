// Package config holds the process-wide configuration struct, populated once
// in main from flags with environment fallbacks. Nothing in the service reads
// os.Getenv directly and no secret lives in source.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// HTTP sidecar (health, metrics, admin triggers).
	HTTPAddr string

	// Database.
	DBHost string
	DBPort int
	DBUser string
	DBPass string
	DBName string

	// Redis cache. Empty disables caching.
	RedisAddr string

	// AES-256 key for PII at rest, 32 bytes.
	EncryptionKey string

	// SMTP transport.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool
	SMTPTimeout  time.Duration

	// Email delivery defaults.
	FromEmail     string
	FromName      string
	AdminEmail    string
	MaxRetries    int
	RetryDelay    time.Duration
	SweepInterval time.Duration
	SweepLimit    int

	// Resume storage.
	UploadDir      string
	MaxUploadBytes int64
}

// DSN renders the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPass, c.DBName)
}

// Load parses flags, with defaults taken from the environment where set.
func Load() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.HTTPAddr, "http-addr", envStr("HTTP_ADDR", ":8081"), "HTTP sidecar listen address")
	flag.StringVar(&cfg.DBHost, "db-host", envStr("DB_HOST", "localhost"), "Database host")
	flag.IntVar(&cfg.DBPort, "db-port", envInt("DB_PORT", 5432), "Database port")
	flag.StringVar(&cfg.DBUser, "db-user", envStr("DB_USER", "admin"), "Database user")
	flag.StringVar(&cfg.DBPass, "db-pass", envStr("DB_PASS", ""), "Database password")
	flag.StringVar(&cfg.DBName, "db-name", envStr("DB_NAME", "meta_portal"), "Database name")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", envStr("REDIS_ADDR", "localhost:6379"), "Redis address (empty disables cache)")
	flag.StringVar(&cfg.EncryptionKey, "encryption-key", envStr("ENCRYPTION_KEY", ""), "32-byte AES key for PII at rest")

	flag.StringVar(&cfg.SMTPHost, "smtp-host", envStr("SMTP_SERVER", "smtp.gmail.com"), "SMTP server host")
	flag.IntVar(&cfg.SMTPPort, "smtp-port", envInt("SMTP_PORT", 587), "SMTP server port")
	flag.StringVar(&cfg.SMTPUsername, "smtp-username", envStr("SMTP_USERNAME", ""), "SMTP username")
	flag.StringVar(&cfg.SMTPPassword, "smtp-password", envStr("SMTP_PASSWORD", ""), "SMTP password")
	flag.BoolVar(&cfg.SMTPUseTLS, "smtp-tls", envBool("USE_TLS", true), "Use STARTTLS")
	flag.DurationVar(&cfg.SMTPTimeout, "smtp-timeout", envDuration("SMTP_TIMEOUT", 15*time.Second), "SMTP connect/send timeout")

	flag.StringVar(&cfg.FromEmail, "from-email", envStr("DEFAULT_FROM_EMAIL", "noreply@metaportal.com"), "Default sender address")
	flag.StringVar(&cfg.FromName, "from-name", envStr("DEFAULT_FROM_NAME", "Meta Portal"), "Default sender name")
	flag.StringVar(&cfg.AdminEmail, "admin-email", envStr("ADMIN_EMAIL", "admin@metaportal.com"), "Operator address")
	flag.IntVar(&cfg.MaxRetries, "email-max-retries", envInt("EMAIL_MAX_RETRIES", 3), "Delivery retry ceiling")
	flag.DurationVar(&cfg.RetryDelay, "email-retry-delay", envDuration("EMAIL_RETRY_DELAY", 30*time.Minute), "Fixed delay before a retry")
	flag.DurationVar(&cfg.SweepInterval, "queue-sweep-interval", envDuration("QUEUE_SWEEP_INTERVAL", time.Minute), "Queue sweep interval")
	flag.IntVar(&cfg.SweepLimit, "queue-sweep-limit", envInt("QUEUE_SWEEP_LIMIT", 50), "Max entries per queue sweep")

	flag.StringVar(&cfg.UploadDir, "upload-dir", envStr("UPLOAD_DIR", "uploads"), "Base directory for stored files")
	flag.Int64Var(&cfg.MaxUploadBytes, "max-upload-bytes", int64(envInt("MAX_UPLOAD_BYTES", 5<<20)), "Max resume size in bytes")

	flag.Parse()
	return cfg
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
