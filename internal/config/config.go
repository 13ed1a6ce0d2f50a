package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const devSessionSecret = "finweb-dev-secret-change-me"

type Config struct {
	// HTTP Server
	Port               string `koanf:"PORT"`
	RateLimitPerMinute int    `koanf:"RATE_LIMIT_PER_MINUTE"`

	// Backend REST API
	APIBaseURL string        `koanf:"API_BASE_URL"`
	APITimeout time.Duration `koanf:"API_TIMEOUT"`

	// Sessions
	SessionBackend string        `koanf:"SESSION_BACKEND"`
	SessionSecret  string        `koanf:"SESSION_SECRET"`
	SessionTTL     time.Duration `koanf:"SESSION_TTL"`
	SQLiteDBPath   string        `koanf:"SQLITE_DB_PATH"`
	RedisAddr      string        `koanf:"REDIS_ADDR"`
	RedisPassword  string        `koanf:"REDIS_PASSWORD"`

	// AMQP, optional
	AMQPURL      string `koanf:"AMQP_URL"`
	AMQPExchange string `koanf:"AMQP_EXCHANGE"`

	// Worker
	RecurringTriggerInterval time.Duration `koanf:"RECURRING_TRIGGER_INTERVAL"`

	// Google Sheets export, optional
	GoogleSpreadsheetID      string `koanf:"GOOGLE_SPREADSHEET_ID"`
	GoogleSheetName          string `koanf:"GOOGLE_SHEET_NAME"`
	GoogleServiceAccountFile string `koanf:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	GoogleServiceAccountJSON string `koanf:"GOOGLE_SERVICE_ACCOUNT_JSON"`

	// Logging
	LogLevel  string `koanf:"LOG_LEVEL"`
	LogFormat string `koanf:"LOG_FORMAT"`
}

// Defaults returns the configuration used when no environment is set.
func Defaults() Config {
	return Config{
		Port:                     "8081",
		RateLimitPerMinute:       60,
		APIBaseURL:               "http://localhost:8080",
		APITimeout:               15 * time.Second,
		SessionBackend:           "memory",
		SessionSecret:            devSessionSecret,
		SessionTTL:               24 * time.Hour,
		SQLiteDBPath:             "./data/finweb.db",
		RedisAddr:                "localhost:6379",
		AMQPExchange:             "finweb.events",
		RecurringTriggerInterval: 24 * time.Hour,
		GoogleSheetName:          "Expenses",
		LogLevel:                 "info",
		LogFormat:                "text",
	}
}

// Load reads the process environment on top of Defaults.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	cfg := Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	return &cfg, nil
}

// APIRoot is the backend origin with the /api prefix every endpoint lives under.
func (c *Config) APIRoot() string {
	return strings.TrimRight(c.APIBaseURL, "/") + "/api"
}

// SheetsEnabled reports whether the Google Sheets export is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != "" && (c.GoogleServiceAccountFile != "" || c.GoogleServiceAccountJSON != "")
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.APIBaseURL == "" {
		errors = append(errors, "API base URL cannot be empty")
	} else if u, err := url.Parse(c.APIBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid API base URL '%s': %v", c.APIBaseURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", u.Scheme))
	}

	if c.APITimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid API timeout %v: must be at least 1 second", c.APITimeout))
	}

	validBackends := []string{"memory", "sqlite", "redis"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.SessionBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid session backend '%s': must be one of %v", c.SessionBackend, validBackends))
	}

	if len(c.SessionSecret) < 16 {
		errors = append(errors, "session secret must be at least 16 characters")
	}
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	if c.SessionBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.SessionBackend == "redis" && c.RedisAddr == "" {
		errors = append(errors, "Redis address cannot be empty when using redis backend")
	}

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

	if c.RecurringTriggerInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid recurring trigger interval %v: must be at least 1 minute", c.RecurringTriggerInterval))
	}

	if c.GoogleSpreadsheetID != "" {
		if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets export")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitPerMinute))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}
