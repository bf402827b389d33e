// Package config provides configuration for splitsettle.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the application configuration, threaded explicitly through
// constructors. There is no global settings state.
type Config struct {
	// Expense source API
	SplitwiseAPIKey  string
	SplitwiseGroupID int64

	// Ledger API
	LedgerAccessToken string
	LedgerBudgetID    string
	ClearingAccountID string

	// Classifier API
	ClassifierAPIKey string
	ClassifierModel  string

	// ClearingPayeeName is the payee shown on clearing transactions.
	ClearingPayeeName string

	// ConfidenceThreshold flags classifications below it for review.
	ConfidenceThreshold float64

	// DatabasePath is the local SQLite store location.
	DatabasePath string
}

// Load loads configuration from environment variables.
// It loads a .env file first when one is present; envPath overrides the
// default .env location.
func Load(envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envPath, err)
		}
	} else {
		// Missing default .env is fine; plain environment variables work too
		_ = godotenv.Load()
	}

	groupID, err := parseInt64Env("SPLITWISE_GROUP_ID", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid SPLITWISE_GROUP_ID: %w", err)
	}

	threshold := 0.9
	if raw := os.Getenv("CONFIDENCE_THRESHOLD"); raw != "" {
		threshold, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid CONFIDENCE_THRESHOLD: %w", err)
		}
	}

	cfg := &Config{
		SplitwiseAPIKey:     os.Getenv("SPLITWISE_API_KEY"),
		SplitwiseGroupID:    groupID,
		LedgerAccessToken:   os.Getenv("LEDGER_ACCESS_TOKEN"),
		LedgerBudgetID:      os.Getenv("LEDGER_BUDGET_ID"),
		ClearingAccountID:   os.Getenv("LEDGER_CLEARING_ACCOUNT_ID"),
		ClassifierAPIKey:    os.Getenv("CLASSIFIER_API_KEY"),
		ClassifierModel:     getEnvOrDefault("CLASSIFIER_MODEL", "gpt-4o-mini"),
		ClearingPayeeName:   getEnvOrDefault("CLEARING_PAYEE_NAME", "Venmo"),
		ConfidenceThreshold: threshold,
		DatabasePath:        os.Getenv("DATABASE_PATH"),
	}

	if cfg.DatabasePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.DatabasePath = filepath.Join(home, ".splitsettle", "splitsettle.db")
	}

	return cfg, nil
}

// Validate checks that all fields required for a settlement run are set.
func (c *Config) Validate() error {
	required := map[string]string{
		"SPLITWISE_API_KEY":          c.SplitwiseAPIKey,
		"LEDGER_ACCESS_TOKEN":        c.LedgerAccessToken,
		"LEDGER_BUDGET_ID":           c.LedgerBudgetID,
		"LEDGER_CLEARING_ACCOUNT_ID": c.ClearingAccountID,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("required configuration %s is not set", name)
		}
	}
	if c.SplitwiseGroupID == 0 {
		return fmt.Errorf("required configuration SPLITWISE_GROUP_ID is not set")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseInt64Env(key string, fallback int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
