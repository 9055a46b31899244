package config

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port     string `validate:"required,numeric"`
	Mode     string `validate:"required,oneof=debug release test"`
	LogLevel string `validate:"required,oneof=debug info warn error"`

	// Database configuration
	DatabaseURL string
	SQLitePath  string

	// Redis configuration
	RedisURL string

	// Admin action surface
	AdminAPIKey         string
	ActionLockSeconds   int `validate:"min=1"`
	RenewalLimitMinutes int `validate:"min=0"`

	// Webhook notification of subscription changes
	WebhookCallbackURL string `validate:"omitempty,url"`
	WebhookSecret      string

	// Brevo email configuration
	BrevoAPIKey      string
	BrevoFromEmail   string `validate:"omitempty,email"`
	BrevoFromName    string
	AdminNotifyEmail string `validate:"omitempty,email"`

	ServiceName string
}

var AppConfig *Config

func InitConfig() error {
	// .env is optional, the process environment still applies
	_ = godotenv.Load()

	cfg := Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	AppConfig = cfg
	return nil
}

// Load reads the configuration from the environment without validating it.
func Load() *Config {
	return &Config{
		Port:                getEnv("PORT", "8080"),
		Mode:                getEnv("GIN_MODE", "debug"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		SQLitePath:          getEnv("SQLITE_PATH", "provider-subscription.db"),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		AdminAPIKey:         getEnv("ADMIN_API_KEY", ""),
		ActionLockSeconds:   getEnvInt("ACTION_LOCK_SECONDS", 10),
		RenewalLimitMinutes: getEnvInt("RENEWAL_REQUEST_LIMIT_MINUTES", 60),
		WebhookCallbackURL:  getEnv("WEBHOOK_CALLBACK_URL", ""),
		WebhookSecret:       getEnv("WEBHOOK_SECRET", ""),
		BrevoAPIKey:         getEnv("BREVO_API_KEY", ""),
		BrevoFromEmail:      getEnv("BREVO_FROM_EMAIL", ""),
		BrevoFromName:       getEnv("BREVO_FROM_NAME", "Provider Subscriptions"),
		AdminNotifyEmail:    getEnv("ADMIN_NOTIFY_EMAIL", ""),
		ServiceName:         getEnv("SERVICE_NAME", "Provider Subscription Service"),
	}
}

func (c Config) Validate() error {
	return validator.New().Struct(c)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
