// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion   string
	LogLevel     string
	HistoryLimit int

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Recognition
	GeminiAPIKey       string
	GeminiModel        string
	RecognitionTimeout time.Duration

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL
	PostgresURI string

	// Gmail
	GmailClientID        string
	GmailClientSecret    string
	GmailRefreshToken    string
	GmailPollInterval    time.Duration
	GmailSubjectPatterns []string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		HistoryLimit: getEnvAsInt("HISTORY_LIMIT", 50),

		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 60)) * time.Second,

		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		RecognitionTimeout: time.Duration(getEnvAsInt("RECOGNITION_TIMEOUT", 60)) * time.Second,

		MongoURI:      getEnv("MONGODB_DSN", ""),
		MongoDB:       getEnv("MONGO_DB", "manifest"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresURI: getEnv("POSTGRES_DSN", ""),

		GmailClientID:        getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret:    getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken:    getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailPollInterval:    time.Duration(getEnvAsInt("GMAIL_POLL_INTERVAL", 60)) * time.Second,
		GmailSubjectPatterns: getEnvAsList("GMAIL_SUBJECT_PATTERNS", []string{"PASSPORT", "MANIFEST"}),
	}

	return config, nil
}

// MongoEnabled reports whether a MongoDB DSN is configured
func (c *Config) MongoEnabled() bool {
	return c.MongoURI != ""
}

// PostgresEnabled reports whether a PostgreSQL DSN is configured
func (c *Config) PostgresEnabled() bool {
	return c.PostgresURI != ""
}

// GmailEnabled reports whether Gmail polling can run. It also needs MongoDB
// to remember which messages were seen.
func (c *Config) GmailEnabled() bool {
	return c.GmailClientID != "" && c.GmailClientSecret != "" && c.GmailRefreshToken != "" && c.MongoEnabled()
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping empty items
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			values = append(values, item)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
