package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process-wide settings.  It is populated once in main and
// passed read-only into the adapters and the orchestrator so tests can
// substitute their own values without touching global state.
type Config struct {
	Port int

	// AI provider (required; the service refuses to start without it)
	OpenAIAPIKey  string
	OpenAIModel   string
	AITimeout     time.Duration
	AITemperature float32

	// Translation provider (optional)
	SarvamAPIKey     string
	SarvamAPIURL     string
	TranslateTimeout time.Duration

	// Messaging provider (optional)
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioWhatsAppNumber string

	// Audit ledger: when DatabaseURL is empty the in-memory backend is used.
	DatabaseURL string

	// Compliance policy
	ConsentRequired   bool
	DataRetentionDays int
}

// Load reads configuration from the environment, loading a local .env file
// first when one exists.  Missing optional credentials leave the matching
// feature disabled; they are not an error.
func Load() *Config {
	// .env values never override variables already set in the environment.
	_ = godotenv.Load()

	return &Config{
		Port: GetInt("PORT", 8080),

		OpenAIAPIKey:  Get("OPENAI_API_KEY", ""),
		OpenAIModel:   Get("OPENAI_MODEL", "gpt-4o-mini"),
		AITimeout:     time.Duration(GetInt("AI_TIMEOUT_SECONDS", 60)) * time.Second,
		AITemperature: 0.2,

		SarvamAPIKey:     Get("SARVAM_API_KEY", ""),
		SarvamAPIURL:     Get("SARVAM_API_URL", "https://api.sarvam.ai/translate"),
		TranslateTimeout: time.Duration(GetInt("TRANSLATE_TIMEOUT_SECONDS", 30)) * time.Second,

		TwilioAccountSID:     Get("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:      Get("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppNumber: Get("TWILIO_WHATSAPP_NUMBER", ""),

		DatabaseURL: Get("DATABASE_URL", ""),

		ConsentRequired:   GetBool("CONSENT_REQUIRED", true),
		DataRetentionDays: GetInt("DATA_RETENTION_DAYS", 90),
	}
}

// Validate checks the fatal startup requirements.  Only the AI credential is
// mandatory; every other provider degrades to a disabled feature.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY must be set")
	}
	return nil
}

// TranslationEnabled reports whether the translation provider is configured.
func (c *Config) TranslationEnabled() bool { return c.SarvamAPIKey != "" }

// MessagingEnabled reports whether the WhatsApp provider is configured.
func (c *Config) MessagingEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioWhatsAppNumber != ""
}

// Get retrieves an environment variable with a fallback value.
func Get(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// GetInt retrieves an integer environment variable with a fallback value.
func GetInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return v
		}
	}
	return fallback
}

// GetBool retrieves a boolean environment variable with a fallback value.
func GetBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "y":
			return true
		case "false", "0", "no", "n":
			return false
		}
	}
	return fallback
}
