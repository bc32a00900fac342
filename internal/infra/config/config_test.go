package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("COLLECTION_URL", "https://example.gov.uk/collections")
	t.Setenv("ADDRESSES", `[{"label":"12 High Street","recipients":["me@example.com"]}]`)
	t.Setenv("STATE_STORE", "redis://localhost:6379/0")
	t.Setenv("GMAIL_SENDER", "bins@example.com")
	// Clear the optional surface so host env cannot leak in.
	t.Setenv("TIMEZONE", "")
	t.Setenv("MESSAGE_SUFFIX", "")
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("TELEGRAM_ADMIN_CHAT_ID", "")
	t.Setenv("CRON_SPEC", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ENVIRONMENT", "")
}

func TestLoad(t *testing.T) {
	t.Run("Should load with defaults applied", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "https://example.gov.uk/collections", cfg.CollectionURL)
		require.Len(t, cfg.Addresses, 1)
		assert.Equal(t, "12 High Street", cfg.Addresses[0].Label)
		assert.Equal(t, "Europe/London", cfg.Timezone.String())
		assert.Equal(t, "0 19 * * *", cfg.CronSpec)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "development", cfg.Environment)
	})

	t.Run("Should fail without a collection URL", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("COLLECTION_URL", "")

		_, err := Load()
		assert.ErrorContains(t, err, "COLLECTION_URL")
	})

	t.Run("Should reject malformed address JSON", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ADDRESSES", "{not json")

		_, err := Load()
		assert.ErrorContains(t, err, "invalid ADDRESSES")
	})

	t.Run("Should reject an address without recipients", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ADDRESSES", `[{"label":"12 High Street","recipients":[]}]`)

		_, err := Load()
		assert.ErrorContains(t, err, "no recipients")
	})

	t.Run("Should reject an unknown timezone", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TIMEZONE", "Mars/Olympus_Mons")

		_, err := Load()
		assert.ErrorContains(t, err, "invalid TIMEZONE")
	})

	t.Run("Should require a chat id once a telegram token is set", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TELEGRAM_TOKEN", "123:abc")

		_, err := Load()
		assert.ErrorContains(t, err, "TELEGRAM_ADMIN_CHAT_ID")
	})

	t.Run("Should parse the telegram chat id", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TELEGRAM_TOKEN", "123:abc")
		t.Setenv("TELEGRAM_ADMIN_CHAT_ID", "-100200300")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, int64(-100200300), cfg.TelegramAdminChatID)
	})
}
