package config

import (
	"os"
	"time"
)

// Config holds the application configuration
type Config struct {
	// Server
	ServerPort string

	// Database; empty means the in-memory store
	DatabaseURL string

	// SMS provider: "textmagic" or "sns"
	SMSProvider       string
	TextMagicUsername string
	TextMagicAPIKey   string
	TextMagicNumber   string

	// Provider directory (Google Sheets)
	SpreadsheetID string
	SheetsAPIKey  string

	// Intake form field mapping; empty means built-in defaults
	FieldMapPath string

	// Retention of finished jobs; zero disables the sweep
	RetentionTTL      time.Duration
	RetentionSchedule string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		SMSProvider:       getEnv("SMS_PROVIDER", "textmagic"),
		TextMagicUsername: getEnv("TEXTMAGIC_USERNAME", ""),
		TextMagicAPIKey:   getEnv("TEXTMAGIC_API_KEY", ""),
		TextMagicNumber:   getEnv("TEXTMAGIC_PHONE_NUMBER", ""),
		SpreadsheetID:     getEnv("SPREADSHEET_ID", ""),
		SheetsAPIKey:      getEnv("SHEETS_API_KEY", ""),
		FieldMapPath:      getEnv("FIELD_MAP_PATH", ""),
		RetentionTTL:      getDuration("RETENTION_TTL", 0),
		RetentionSchedule: getEnv("RETENTION_SCHEDULE", "@hourly"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
