package config

import (
	"os"
	"strings"
	"time"
)

// Credential is one entry of the fixed safety-user list. The list is a login
// gate for a factory floor tool, not a security boundary.
type Credential struct {
	Name     string
	Password string
}

// Config holds all configuration for the violation log service.
type Config struct {
	// Server configuration
	Port string

	// Record store (the spreadsheet-backed endpoint)
	StoreURL     string
	StoreTimeout time.Duration
	CacheTTL     time.Duration

	// Inference
	InferenceProvider string // "gemini" or "stub"
	InferenceTimeout  time.Duration
	GeminiAPIKey      string
	GeminiModel       string

	// Sessions
	JWTSecret string
	TokenTTL  time.Duration

	// Safety users allowed to submit violations
	SafetyUsers []Credential
	GuestName   string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		StoreURL:     getEnv("STORE_URL", ""),
		StoreTimeout: getDurationEnv("STORE_TIMEOUT", 30*time.Second),
		CacheTTL:     getDurationEnv("STORE_CACHE_TTL", 15*time.Second),

		InferenceProvider: getEnv("INFERENCE_PROVIDER", "gemini"),
		InferenceTimeout:  getDurationEnv("INFERENCE_TIMEOUT", 60*time.Second),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-3-pro-preview"),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:  getDurationEnv("TOKEN_TTL", 24*time.Hour),

		SafetyUsers: getCredentialsEnv("SAFETY_USERS", defaultSafetyUsers()),
		GuestName:   getEnv("GUEST_NAME", "زائر المصنع"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// defaultSafetyUsers is the credential list the system ships with.
func defaultSafetyUsers() []Credential {
	return []Credential{
		{Name: "فواز الرويلي", Password: "fawaz@2026"},
		{Name: "فيصل القوصي", Password: "faisal@2026"},
	}
}

// getCredentialsEnv parses a "name:password,name:password" environment
// variable. Malformed entries are skipped; an empty result falls back to the
// default list.
func getCredentialsEnv(key string, defaultValue []Credential) []Credential {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var creds []Credential
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		creds = append(creds, Credential{Name: parts[0], Password: parts[1]})
	}
	if len(creds) == 0 {
		return defaultValue
	}
	return creds
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
