package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"expenses/internal/core"
	"expenses/internal/log"
)

type Config struct {
	// Expense file
	ExpensesFile  string
	MonthlyBudget string
	BudgetsFile   string
	ReadCacheTTL  time.Duration

	// Logging
	LogLevel string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Worker
	LedgerDBPath     string
	MirrorRetryDelay time.Duration
}

func Load() *Config {
	cfg := &Config{
		ExpensesFile:  getEnv("EXPENSES_FILE", "expenses.csv"),
		MonthlyBudget: getEnv("MONTHLY_BUDGET", ""),
		BudgetsFile:   getEnv("BUDGETS_FILE", ""),
		ReadCacheTTL:  getEnvDuration("READ_CACHE_TTL", 30*time.Second),

		LogLevel: getEnv("LOG_LEVEL", "warn"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "expenses"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "mirror_expenses"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Expenses"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		LedgerDBPath:     getEnv("LEDGER_DB_PATH", "./data/mirror.db"),
		MirrorRetryDelay: getEnvDuration("MIRROR_RETRY_DELAY", 5*time.Second),
	}

	return cfg
}

// PublishingEnabled reports whether recorded expenses should be announced
// on the broker.
func (c *Config) PublishingEnabled() bool {
	return c.AMQPURL != ""
}

// Budget parses MonthlyBudget. ok is false when no budget is configured.
func (c *Config) Budget() (m core.Money, ok bool, err error) {
	if strings.TrimSpace(c.MonthlyBudget) == "" {
		return core.Money{}, false, nil
	}
	m, err = core.ParseBudget(c.MonthlyBudget)
	if err != nil {
		return core.Money{}, false, err
	}
	return m, true, nil
}

// Validate validates the settings used by the interactive tracker and returns
// every problem found in one error.
func (c *Config) Validate() error {
	errors := c.validateCommon()
	return combine(errors)
}

// ValidateWorker validates the settings used by the mirror worker. The broker
// and the spreadsheet are mandatory there.
func (c *Config) ValidateWorker() error {
	errors := c.validateCommon()

	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required for the mirror worker")
	}

	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required for the mirror worker")
	}
	if c.GoogleSheetName == "" {
		errors = append(errors, "Google Sheet name is required for the mirror worker")
	}

	hasFile := c.GoogleServiceAccountFile != ""
	hasJSON := c.GoogleServiceAccountJSON != ""
	if !hasFile && !hasJSON {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for the mirror worker")
	}
	if hasFile {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if c.LedgerDBPath == "" {
		errors = append(errors, "ledger database path cannot be empty")
	} else {
		// Check if directory exists or can be created
		dir := filepath.Dir(c.LedgerDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create ledger database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.MirrorRetryDelay < 0 {
		errors = append(errors, fmt.Sprintf("invalid mirror retry delay %v: must not be negative", c.MirrorRetryDelay))
	} else if c.MirrorRetryDelay > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid mirror retry delay %v: must be at most 1 hour", c.MirrorRetryDelay))
	}

	return combine(errors)
}

func (c *Config) validateCommon() []string {
	var errors []string

	if strings.TrimSpace(c.ExpensesFile) == "" {
		errors = append(errors, "expenses file path cannot be empty")
	}

	if _, _, err := c.Budget(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid monthly budget '%s': %v", c.MonthlyBudget, err))
	}

	if c.BudgetsFile != "" {
		if _, err := os.Stat(c.BudgetsFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("budgets file does not exist: %s", c.BudgetsFile))
		}
	}

	if c.ReadCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid read cache TTL %v: must not be negative", c.ReadCacheTTL))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
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

	return errors
}

func combine(errors []string) error {
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
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
