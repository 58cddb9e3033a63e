package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(LevelForEnv(GetEnvWithDefault("APP_ENV", "development")))
}

// LevelForEnv maps APP_ENV to the default log level.
func LevelForEnv(environment string) logrus.Level {
	switch environment {
	case "development":
		return logrus.DebugLevel
	case "production":
		return logrus.ErrorLevel
	default:
		// Default to info level for other environments
		return logrus.InfoLevel
	}
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Env  string `json:"env"`
	Port int    `json:"port"`
	Host string `json:"host"`

	// Database configuration
	DBDriver    string `json:"db_driver"`
	DatabaseURL string `json:"database_url"`
	DBPath      string `json:"db_path"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret     string `json:"jwt_secret"`
	SessionSecret string `json:"session_secret"`
	CookieSecure  bool   `json:"cookie_secure"`
	ClientOrigin  string `json:"client_origin"`

	// Payment configuration
	StripeSecretKey      string `json:"stripe_secret_key"`
	StripePublishableKey string `json:"stripe_publishable_key"`
	StripeWebhookSecret  string `json:"stripe_webhook_secret"`
	PublicBaseURL        string `json:"public_base_url"`

	// Store configuration
	StoreCurrency     string `json:"store_currency"`
	DeliveryFeeCents  int64  `json:"delivery_fee_cents"`
	PaymentWindowDays int    `json:"payment_window_days"`
	SummaryWindowDays int    `json:"summary_window_days"`
	SeedCatalog       bool   `json:"seed_catalog"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Port: %d, Host: %s, DBDriver: %s, DatabaseURL: %s, DBPath: %s, LogLevel: %s, "+
		"JWTSecret: [REDACTED], SessionSecret: [REDACTED], CookieSecure: %t, ClientOrigin: %s, "+
		"StripeSecretKey: %s, StripePublishableKey: %s, StripeWebhookSecret: %s, PublicBaseURL: %s, "+
		"StoreCurrency: %s, DeliveryFeeCents: %d, PaymentWindowDays: %d, SummaryWindowDays: %d, SeedCatalog: %t}",
		c.Env, c.Port, c.Host, c.DBDriver, maskDatabaseURL(c.DatabaseURL), c.DBPath, c.LogLevel,
		c.CookieSecure, c.ClientOrigin,
		maskSecret(c.StripeSecretKey), c.StripePublishableKey, maskSecret(c.StripeWebhookSecret), c.PublicBaseURL,
		c.StoreCurrency, c.DeliveryFeeCents, c.PaymentWindowDays, c.SummaryWindowDays, c.SeedCatalog)
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// maskSecret tells whether a secret is set without revealing it
func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	return "[REDACTED]"
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It also validates formats like DatabaseURL and the payment windows
// Returns an error if any required environment variable is missing or invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, err
	}

	driver := strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite"))
	dbURL := GetEnvWithDefault("DATABASE_URL", "")
	switch driver {
	case "postgres", "postgresql":
		if dbURL == "" {
			return nil, errors.New("DATABASE_URL environment variable is required for the postgres driver")
		}
		// validate URL with net/url
		if _, err := url.ParseRequestURI(dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	case "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: postgres, sqlite)", driver)
	}

	config := &Config{
		Env:                  GetEnvWithDefault("APP_ENV", "development"),
		Port:                 port,
		Host:                 GetEnvWithDefault("APP_HOST", "localhost"),
		DBDriver:             driver,
		DatabaseURL:          dbURL,
		DBPath:               GetEnvWithDefault("DB_PATH", "pizza.sqlite"),
		LogLevel:             GetEnvWithDefault("LOG_LEVEL", "info"),
		JWTSecret:            GetEnvWithDefault("JWT_SECRET", "secret"),
		SessionSecret:        GetEnvWithDefault("SESSION_SECRET", "change-me-session-secret"),
		CookieSecure:         GetEnvAsType("COOKIE_SECURE", false),
		ClientOrigin:         GetEnvWithDefault("CLIENT_ORIGIN", ""),
		StripeSecretKey:      GetEnvWithDefault("STRIPE_SECRET_KEY", ""),
		StripePublishableKey: GetEnvWithDefault("STRIPE_PUBLISHABLE_KEY", ""),
		StripeWebhookSecret:  GetEnvWithDefault("STRIPE_WEBHOOK_SECRET", ""),
		PublicBaseURL:        strings.TrimRight(GetEnvWithDefault("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		StoreCurrency:        strings.ToLower(GetEnvWithDefault("STORE_CURRENCY", "aud")),
		DeliveryFeeCents:     GetEnvAsType[int64]("DELIVERY_FEE_CENTS", 500),
		PaymentWindowDays:    GetEnvAsType("PAYMENT_WINDOW_DAYS", 5),
		SummaryWindowDays:    GetEnvAsType("SUMMARY_WINDOW_DAYS", 6),
		SeedCatalog:          GetEnvAsType("SEED_CATALOG", true),
	}

	if config.DeliveryFeeCents < 0 {
		return nil, errors.New("DELIVERY_FEE_CENTS must not be negative")
	}
	if config.PaymentWindowDays < 1 || config.SummaryWindowDays < 1 {
		return nil, errors.New("PAYMENT_WINDOW_DAYS and SUMMARY_WINDOW_DAYS must be at least 1")
	}
	if config.PaymentWindowDays != config.SummaryWindowDays {
		log.WithFields(logrus.Fields{
			"payment_window_days": config.PaymentWindowDays,
			"summary_window_days": config.SummaryWindowDays,
		}).Warn("Payment and summary windows differ; an order may show as payable but be refused at payment")
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
