package util

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	AllowedOrigins           []string      `mapstructure:"ALLOWED_ORIGINS"`
	HTTPServerAddress        string        `mapstructure:"HTTP_SERVER_ADDRESS"`
	JWTSecret                string        `mapstructure:"JWT_SECRET"`
	AccessTokenDuration      time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	PartnerAPIBaseURL        string        `mapstructure:"PARTNER_API_BASE_URL"`
	PartnerRequestTimeout    time.Duration `mapstructure:"PARTNER_REQUEST_TIMEOUT"`
	FirebaseProjectID        string        `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile  string        `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	RedisServerAddress       string        `mapstructure:"REDIS_SERVER_ADDRESS"`
	BlacklistCleanupInterval time.Duration `mapstructure:"BLACKLIST_CLEANUP_INTERVAL"`
	SMTPHost                 string        `mapstructure:"SMTP_HOST"`
	SMTPPort                 int           `mapstructure:"SMTP_PORT"`
	SMTPUsername             string        `mapstructure:"SMTP_USERNAME"`
	SMTPPassword             string        `mapstructure:"SMTP_PASSWORD"`
	EmailSenderName          string        `mapstructure:"EMAIL_SENDER_NAME"`
	EmailSenderAddress       string        `mapstructure:"EMAIL_SENDER_ADDRESS"`
	EmailDeliveryMode        string        `mapstructure:"EMAIL_DELIVERY_MODE"`
	NotifierWorkers          int           `mapstructure:"NOTIFIER_WORKERS"`
	NotifierQueueSize        int           `mapstructure:"NOTIFIER_QUEUE_SIZE"`
	MaxRequestBodyBytes      int64         `mapstructure:"MAX_REQUEST_BODY_BYTES"`
}

const (
	EmailDeliveryDirect = "direct"
	EmailDeliveryQueue  = "queue"
)

var configKeys = []string{
	"ALLOWED_ORIGINS",
	"HTTP_SERVER_ADDRESS",
	"JWT_SECRET",
	"ACCESS_TOKEN_DURATION",
	"PARTNER_API_BASE_URL",
	"PARTNER_REQUEST_TIMEOUT",
	"FIREBASE_PROJECT_ID",
	"FIREBASE_CREDENTIALS_FILE",
	"REDIS_SERVER_ADDRESS",
	"BLACKLIST_CLEANUP_INTERVAL",
	"SMTP_HOST",
	"SMTP_PORT",
	"SMTP_USERNAME",
	"SMTP_PASSWORD",
	"EMAIL_SENDER_NAME",
	"EMAIL_SENDER_ADDRESS",
	"EMAIL_DELIVERY_MODE",
	"NOTIFIER_WORKERS",
	"NOTIFIER_QUEUE_SIZE",
	"MAX_REQUEST_BODY_BYTES",
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error; environment variables alone are enough.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()

	// Set defaults for non-sensitive config
	v.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	v.SetDefault("HTTP_SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("ACCESS_TOKEN_DURATION", "24h")
	v.SetDefault("PARTNER_REQUEST_TIMEOUT", "30s")
	v.SetDefault("BLACKLIST_CLEANUP_INTERVAL", "1m")
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("EMAIL_SENDER_NAME", "Complaint Desk")
	v.SetDefault("EMAIL_DELIVERY_MODE", EmailDeliveryDirect)
	v.SetDefault("NOTIFIER_WORKERS", 4)
	v.SetDefault("NOTIFIER_QUEUE_SIZE", 256)
	v.SetDefault("MAX_REQUEST_BODY_BYTES", 10<<20)

	// Prefer environment variables over config file
	v.AutomaticEnv()
	for _, key := range configKeys {
		if err = v.BindEnv(key); err != nil {
			return
		}
	}

	// Load config file
	if _, statErr := os.Stat(path); statErr == nil {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err = v.ReadInConfig(); err != nil {
			return
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		err = statErr
		return
	}

	// Unmarshal config into struct
	err = v.Unmarshal(&config)
	if err != nil {
		return
	}

	// Validate required configuration
	err = validateConfig(config)
	return
}

func validateConfig(config Config) error {
	if config.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if config.EmailDeliveryMode != EmailDeliveryDirect && config.EmailDeliveryMode != EmailDeliveryQueue {
		return fmt.Errorf("EMAIL_DELIVERY_MODE must be %q or %q", EmailDeliveryDirect, EmailDeliveryQueue)
	}
	if config.EmailDeliveryMode == EmailDeliveryQueue && config.RedisServerAddress == "" {
		return fmt.Errorf("REDIS_SERVER_ADDRESS is required when EMAIL_DELIVERY_MODE is %q", EmailDeliveryQueue)
	}
	if config.NotifierWorkers <= 0 {
		return fmt.Errorf("NOTIFIER_WORKERS must be positive")
	}
	if config.NotifierQueueSize <= 0 {
		return fmt.Errorf("NOTIFIER_QUEUE_SIZE must be positive")
	}
	if config.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_BYTES must be positive")
	}

	return nil
}

// PartnerEnabled reports whether the partner proxy can be mounted.
func (config Config) PartnerEnabled() bool {
	return config.PartnerAPIBaseURL != ""
}
