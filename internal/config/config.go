package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"lexify/internal/calendar"
	"lexify/internal/log"
)

const (
	MirrorMemory = "memory"
	MirrorSheets = "sheets"
)

type Config struct {
	// Database
	DBPath string

	// Calendar
	Timezone string
	Locale   string

	// State holders
	Workers      int
	DayCacheSize int
	DayCacheTTL  time.Duration

	LogLevel string

	// AMQP (optional, disabled when URL is empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Mirror
	MirrorBackend            string
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	SheetTasks               string
	SheetIncome              string
	SheetExpenses            string

	// Worker
	ResyncInterval time.Duration
}

func Load() *Config {
	return &Config{
		DBPath: getEnv("LEXIFY_DB_PATH", "./data/lexify_database.db"),

		Timezone: getEnv("LEXIFY_TIMEZONE", "Local"),
		Locale:   getEnv("LEXIFY_LOCALE", "en"),

		Workers:      getEnvInt("LEXIFY_WORKERS", 4),
		DayCacheSize: getEnvInt("LEXIFY_DAY_CACHE_SIZE", 64),
		DayCacheTTL:  getEnvDuration("LEXIFY_DAY_CACHE_TTL", 5*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "lexify"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "record_changes"),

		MirrorBackend:            getEnv("MIRROR_BACKEND", MirrorMemory),
		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		SheetTasks:               getEnv("SHEET_TASKS", "Tasks"),
		SheetIncome:              getEnv("SHEET_INCOME", "Income"),
		SheetExpenses:            getEnv("SHEET_EXPENSES", "Expenses"),

		ResyncInterval: getEnvDuration("WORKER_RESYNC_INTERVAL", time.Hour),
	}
}

// Validate validates the configuration and returns an error listing every
// problem found.
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.DBPath) == "" {
		errors = append(errors, "database path cannot be empty")
	}

	if _, err := c.Location(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}
	if _, err := c.Labels(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid locale '%s': must be 'en' or 'ru'", c.Locale))
	}

	if c.Workers < 1 || c.Workers > 64 {
		errors = append(errors, fmt.Sprintf("invalid worker count %d: must be between 1 and 64", c.Workers))
	}
	if c.DayCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid day cache size %d: must be at least 1", c.DayCacheSize))
	}
	if c.DayCacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid day cache TTL %v: must be positive", c.DayCacheTTL))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
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
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch c.MirrorBackend {
	case MirrorMemory:
	case MirrorSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets mirror")
		}
		hasJSON := c.GoogleServiceAccountJSON != ""
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasJSON && !hasFile {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets mirror")
		}
		if !hasJSON && hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid mirror backend '%s': must be one of [%s %s]", c.MirrorBackend, MirrorMemory, MirrorSheets))
	}

	if c.SheetTasks == "" && c.SheetIncome == "" && c.SheetExpenses == "" {
		errors = append(errors, "at least one sheet name must be set")
	}

	if c.ResyncInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid resync interval %v: must be at least 1 minute", c.ResyncInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Location resolves the configured timezone. "Local" and "" mean the
// process time zone.
func (c *Config) Location() (*time.Location, error) {
	switch strings.TrimSpace(c.Timezone) {
	case "", "Local":
		return time.Local, nil
	default:
		return time.LoadLocation(c.Timezone)
	}
}

func (c *Config) Labels() (calendar.Labels, error) {
	return calendar.LabelsFor(c.Locale)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
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
