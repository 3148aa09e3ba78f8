package config

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"moneymate/internal/core"
)

type Config struct {
	// Remote API
	APIURL      string
	HTTPTimeout time.Duration

	// Device-local storage
	DBPath      string
	TokenSecret string // optional hex-encoded 32-byte key

	// Display preferences (process lifetime only)
	Currency    string
	BudgetCycle string

	// Profile cache
	ProfileTTL time.Duration

	// Logging
	LogLevel string

	// AMQP mutation events (optional)
	AMQPURL      string
	AMQPExchange string

	// Google Sheets export (optional)
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Prometheus textfile with API call metrics (optional)
	MetricsFile string
}

func Load() *Config {
	cfg := &Config{
		APIURL:      getEnv("MONEYMATE_API_URL", "http://localhost:3000/api"),
		HTTPTimeout: getEnvDuration("MONEYMATE_HTTP_TIMEOUT", 30*time.Second),

		DBPath:      getEnv("MONEYMATE_DB_PATH", defaultDBPath()),
		TokenSecret: getEnv("MONEYMATE_TOKEN_SECRET", ""),

		Currency:    getEnv("MONEYMATE_CURRENCY", string(core.DefaultCurrency)),
		BudgetCycle: getEnv("MONEYMATE_BUDGET_CYCLE", string(core.DefaultBudgetCycle)),

		ProfileTTL: getEnvDuration("MONEYMATE_PROFILE_TTL", 30*time.Second),

		LogLevel: getEnv("LOG_LEVEL", "warn"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "moneymate"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Expenses"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		MetricsFile: getEnv("MONEYMATE_METRICS_FILE", ""),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate API URL
	if c.APIURL == "" {
		errors = append(errors, "API URL cannot be empty")
	} else if parsedURL, err := url.Parse(c.APIURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid API URL '%s': %v", c.APIURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	} else if parsedURL.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid API URL '%s': missing host", c.APIURL))
	}

	if c.HTTPTimeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must not be negative", c.HTTPTimeout))
	} else if c.HTTPTimeout > 10*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at most 10 minutes", c.HTTPTimeout))
	}

	// Validate local storage
	if c.DBPath == "" {
		errors = append(errors, "database path cannot be empty")
	}

	if c.TokenSecret != "" {
		key, err := hex.DecodeString(c.TokenSecret)
		if err != nil || len(key) != 32 {
			errors = append(errors, "token secret must be 64 hex characters (32 bytes)")
		}
	}

	// Validate display preferences
	if _, err := core.ParseCurrency(c.Currency); err != nil {
		errors = append(errors, err.Error())
	}
	if _, err := core.ParseBudgetCycle(c.BudgetCycle); err != nil {
		errors = append(errors, err.Error())
	}

	if c.ProfileTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid profile TTL %v: must not be negative", c.ProfileTTL))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate Google Sheets export if configured
	if c.GoogleSpreadsheetID != "" {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet ID is set")
		}
		if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets export")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Preferences returns the display preferences described by the config.
// Call Validate first; invalid values fall back to the defaults.
func (c *Config) Preferences() core.Preferences {
	prefs := core.DefaultPreferences()
	if cur, err := core.ParseCurrency(c.Currency); err == nil {
		prefs.Currency = cur
	}
	if cycle, err := core.ParseBudgetCycle(c.BudgetCycle); err == nil {
		prefs.BudgetCycle = cycle
	}
	return prefs
}

// TokenKey decodes TokenSecret. ok is false when no secret is configured.
func (c *Config) TokenKey() (key [32]byte, ok bool) {
	if c.TokenSecret == "" {
		return key, false
	}
	b, err := hex.DecodeString(c.TokenSecret)
	if err != nil || len(b) != 32 {
		return key, false
	}
	copy(key[:], b)
	return key, true
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".moneymate", "moneymate.db")
	}
	return filepath.Join(home, ".moneymate", "moneymate.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
