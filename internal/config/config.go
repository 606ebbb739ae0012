// Package config loads process configuration from the environment.
//
// A .env file in the working directory is loaded first when present; real
// environment variables always win.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrMissingSecret = errors.New("missing required secret")
	ErrSecretReuse   = errors.New("webhook secret must differ from the API key secret")
)

type Config struct {
	Addr     string
	DBDSN    string
	LogLevel string

	// Admin endpoints refuse every request while AdminToken is empty.
	AdminToken string

	Gateway GatewayConfig

	// GrantOnWebhook lets a captured webhook grant the course on its own.
	// Off by default: entitlement is granted on client confirmation.
	GrantOnWebhook bool

	RabbitURL      string
	EventsExchange string

	Storage StorageConfig

	// Receipts are emailed only when Mail.SMTP.Host is set.
	Mail MailConfig
}

type GatewayConfig struct {
	BaseURL       string
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Currency      string
	Timeout       time.Duration
}

type StorageConfig struct {
	Driver          string // local|s3
	LocalDir        string
	LocalURLPrefix  string
	S3Region        string
	S3Bucket        string
	S3Prefix        string
	S3PublicBaseURL string
}

type MailConfig struct {
	From     string
	FromName string
	SMTP     SMTPConfig
}

type SMTPConfig struct {
	Host          string
	Port          string
	User          string
	Pass          string
	TLSMode       string // none|tls|starttls
	SkipVerifyTLS bool
}

func (m MailConfig) Enabled() bool { return m.SMTP.Host != "" }

// Load reads .env (if any) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	cfg := FromEnv()
	return cfg, cfg.Validate()
}

func FromEnv() Config {
	return Config{
		Addr:       envOr("HTTP_ADDR", ":8080"),
		DBDSN:      os.Getenv("DB_DSN"),
		LogLevel:   envOr("LOG_LEVEL", "info"),
		AdminToken: os.Getenv("ADMIN_TOKEN"),
		Gateway: GatewayConfig{
			BaseURL:       envOr("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
			KeyID:         os.Getenv("RAZORPAY_KEY_ID"),
			KeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
			WebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
			Currency:      envOr("PAYMENT_CURRENCY", "INR"),
			Timeout:       envDuration("GATEWAY_TIMEOUT", 10*time.Second),
		},
		GrantOnWebhook: envBool("WEBHOOK_GRANTS_ENTITLEMENT", false),
		RabbitURL:      os.Getenv("RABBITMQ_URL"),
		EventsExchange: envOr("EVENTS_EXCHANGE", "learnora.events"),
		Storage: StorageConfig{
			Driver:          envOr("STORAGE_DRIVER", "local"),
			LocalDir:        envOr("LOCAL_UPLOAD_DIR", "./storage/uploads"),
			LocalURLPrefix:  envOr("LOCAL_UPLOAD_URL_PREFIX", "/uploads"),
			S3Region:        os.Getenv("S3_REGION"),
			S3Bucket:        os.Getenv("S3_BUCKET"),
			S3Prefix:        envOr("S3_PREFIX", "uploads"),
			S3PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		},
		Mail: MailConfig{
			From:     envOr("MAIL_FROM", "receipts@learnora.local"),
			FromName: envOr("MAIL_FROM_NAME", "Learnora"),
			SMTP: SMTPConfig{
				Host:          os.Getenv("SMTP_HOST"),
				Port:          envOr("SMTP_PORT", "1025"),
				User:          os.Getenv("SMTP_USER"),
				Pass:          os.Getenv("SMTP_PASS"),
				TLSMode:       envOr("SMTP_TLS_MODE", "none"),
				SkipVerifyTLS: envBool("SMTP_SKIP_VERIFY", false),
			},
		},
	}
}

func (c Config) Validate() error {
	if c.DBDSN == "" {
		return errors.New("DB_DSN environment variable is required")
	}
	return c.Gateway.Validate()
}

func (g GatewayConfig) Validate() error {
	if g.KeyID == "" || g.KeySecret == "" {
		return fmt.Errorf("%w: RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET", ErrMissingSecret)
	}
	if g.WebhookSecret == "" {
		return fmt.Errorf("%w: RAZORPAY_WEBHOOK_SECRET", ErrMissingSecret)
	}
	if g.WebhookSecret == g.KeySecret {
		return ErrSecretReuse
	}
	if g.Timeout <= 0 {
		return errors.New("GATEWAY_TIMEOUT must be positive")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto slog; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
