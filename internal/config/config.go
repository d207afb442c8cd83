package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseURL string
	Timezone    string

	// PublicURL is the externally visible base URL, used to reconstruct
	// the exact URL Twilio signed.
	PublicURL string

	// Twilio inbound/outbound SMS. The auth token doubles as the webhook
	// signature secret.
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// Default business used when the destination number is not mapped.
	DefaultBusinessID string

	// Session storage. When RedisAddr is empty, sessions live in process memory.
	RedisAddr      string
	RedisPassword  string
	SessionTimeout time.Duration

	// Reminder queue (SQS or in-memory for development).
	UseMemoryQueue      bool
	ReminderQueueURL    string
	ReminderWorkers     int
	ReminderLeadTime    time.Duration
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	AdminJWTSecret string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Timezone:    getEnv("TIMEZONE", "America/Argentina/Buenos_Aires"),
		PublicURL:   getEnv("PUBLIC_URL", ""),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),

		DefaultBusinessID: getEnv("DEFAULT_BUSINESS_ID", ""),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		SessionTimeout: getEnvAsDuration("SESSION_TIMEOUT", 30*time.Minute),

		UseMemoryQueue:      getEnvAsBool("USE_MEMORY_QUEUE", false),
		ReminderQueueURL:    getEnv("REMINDER_QUEUE_URL", ""),
		ReminderWorkers:     getEnvAsInt("REMINDER_WORKERS", 2),
		ReminderLeadTime:    getEnvAsDuration("REMINDER_LEAD_TIME", 24*time.Hour),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
