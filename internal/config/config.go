package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds everything the server and CLI read from the environment
type Config struct {
	Env     string `validate:"oneof=development production test"`
	Port    string `validate:"required,numeric"`
	BaseURL string `validate:"required,url"`

	DatabaseURL string `validate:"required"`

	JWTSecret string        `validate:"required,min=16"`
	JWTExpiry time.Duration `validate:"required"`

	Email EmailConfig

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string `validate:"omitempty,url"`

	GoogleMapsAPIKey string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	RedisURL         string
	RevalidateSecret string

	CORSOrigins      []string `validate:"min=1,dive,required"`
	HospitalsFile    string
	ReminderInterval time.Duration `validate:"required"`
}

// EmailConfig selects and configures the outbound email provider
type EmailConfig struct {
	Provider       string `validate:"oneof=sendgrid smtp log"`
	From           string `validate:"required,email"`
	FromName       string `validate:"required"`
	SendGridAPIKey string `validate:"required_if=Provider sendgrid"`
	SMTPHost       string `validate:"required_if=Provider smtp"`
	SMTPPort       int    `validate:"required_if=Provider smtp"`
	SMTPUsername   string
	SMTPPassword   string
}

var validate = validator.New()

// Load reads .env (if present) and the process environment into a validated Config
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Env:                 get("APP_ENV", "development"),
		Port:                get("PORT", "8080"),
		BaseURL:             strings.TrimRight(get("APP_BASE_URL", "http://localhost:3000"), "/"),
		JWTSecret:           getenv("JWT_SECRET"),
		GoogleClientID:      getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:   getenv("GOOGLE_REDIRECT_URL"),
		GoogleMapsAPIKey:    getenv("GOOGLE_MAPS_API_KEY"),
		CloudinaryCloudName: getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: getenv("CLOUDINARY_API_SECRET"),
		RedisURL:            getenv("REDIS_URL"),
		RevalidateSecret:    getenv("REVALIDATE_SECRET"),
		HospitalsFile:       getenv("HOSPITALS_FILE"),
		CORSOrigins:         splitList(get("CORS_ORIGINS", "http://localhost:3000")),
	}

	cfg.DatabaseURL = DatabaseURLFromEnv(getenv)

	var err error
	if cfg.JWTExpiry, err = time.ParseDuration(get("JWT_EXPIRY", "168h")); err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY: %w", err)
	}
	if cfg.ReminderInterval, err = time.ParseDuration(get("REMINDER_INTERVAL", "15m")); err != nil {
		return nil, fmt.Errorf("invalid REMINDER_INTERVAL: %w", err)
	}

	cfg.Email = EmailConfig{
		Provider:       get("EMAIL_PROVIDER", "sendgrid"),
		From:           getenv("EMAIL_FROM"),
		FromName:       get("EMAIL_FROM_NAME", "BloodLink"),
		SendGridAPIKey: getenv("SENDGRID_API_KEY"),
		SMTPHost:       getenv("SMTP_HOST"),
		SMTPUsername:   getenv("SMTP_USERNAME"),
		SMTPPassword:   getenv("SMTP_PASSWORD"),
	}
	if port := getenv("SMTP_PORT"); port != "" {
		if cfg.Email.SMTPPort, err = strconv.Atoi(port); err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// DatabaseURLFromEnv returns DATABASE_URL, or a DSN assembled from the DB_*
// variables when only those are set
func DatabaseURLFromEnv(getenv func(string) string) string {
	if dsn := getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	if getenv("DB_HOST") == "" {
		return ""
	}
	port, sslMode := getenv("DB_PORT"), getenv("DB_SSL_MODE")
	if port == "" {
		port = "5432"
	}
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC connect_timeout=10",
		getenv("DB_HOST"), getenv("DB_USER"), getenv("DB_PASSWORD"), getenv("DB_NAME"), port, sslMode)
}

// IsProduction reports whether the server runs in release mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// GoogleSignInEnabled reports whether OAuth credentials are configured
func (c *Config) GoogleSignInEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
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
