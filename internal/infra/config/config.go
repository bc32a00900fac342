package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bin_collection_notifier/internal/domain/notification"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	CollectionURL       string
	Addresses           []notification.AddressConfig
	Timezone            *time.Location
	StateStoreURL       string // postgres:// or redis://
	MessageSuffix       string
	GmailSender         string
	TelegramToken       string // optional run-summary reporter
	TelegramAdminChatID int64
	CronSpec            string
	LogLevel            string
	Environment         string
}

// Load reads configuration from environment variables and .env file (if
// present). A malformed address list is fatal: there is no sensible run
// without knowing who to notify.
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.CollectionURL = os.Getenv("COLLECTION_URL")
	if cfg.CollectionURL == "" {
		return nil, fmt.Errorf("COLLECTION_URL is not set")
	}

	addressesJSON := os.Getenv("ADDRESSES")
	if addressesJSON == "" {
		return nil, fmt.Errorf("ADDRESSES is not set")
	}
	if err := json.Unmarshal([]byte(addressesJSON), &cfg.Addresses); err != nil {
		return nil, fmt.Errorf("invalid ADDRESSES: %w", err)
	}
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("ADDRESSES is empty")
	}
	for i, a := range cfg.Addresses {
		if strings.TrimSpace(a.Label) == "" {
			return nil, fmt.Errorf("ADDRESSES[%d]: label is empty", i)
		}
		if len(a.Recipients) == 0 {
			return nil, fmt.Errorf("ADDRESSES[%d] (%s): no recipients", i, a.Label)
		}
	}

	tzName := os.Getenv("TIMEZONE")
	if tzName == "" {
		tzName = "Europe/London"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err)
	}
	cfg.Timezone = loc

	cfg.StateStoreURL = os.Getenv("STATE_STORE")
	if cfg.StateStoreURL == "" {
		return nil, fmt.Errorf("STATE_STORE is not set")
	}

	cfg.MessageSuffix = os.Getenv("MESSAGE_SUFFIX")

	cfg.GmailSender = os.Getenv("GMAIL_SENDER")
	if cfg.GmailSender == "" {
		return nil, fmt.Errorf("GMAIL_SENDER is not set")
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	chatIDStr := os.Getenv("TELEGRAM_ADMIN_CHAT_ID")
	if cfg.TelegramToken != "" {
		if chatIDStr == "" {
			return nil, fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID is not set but TELEGRAM_TOKEN is")
		}
		cfg.TelegramAdminChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_CHAT_ID: %w", err)
		}
	}

	cfg.CronSpec = os.Getenv("CRON_SPEC")
	if cfg.CronSpec == "" {
		cfg.CronSpec = "0 19 * * *" // Default: 7 PM daily, ahead of next-day collections
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	return cfg, nil
}
