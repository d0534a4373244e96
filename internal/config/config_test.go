package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/pocket-ledger/internal/common"
	"github.com/Veraticus/pocket-ledger/internal/sheets"
)

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LEDGER_TEST_DIR", "/data")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"tilde", "~", home},
		{"tilde prefix", "~/ledger.db", filepath.Join(home, "ledger.db")},
		{"env var", "$LEDGER_TEST_DIR/ledger.db", "/data/ledger.db"},
		{"plain", "/tmp/ledger.db", "/tmp/ledger.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestDatabasePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	v := viper.New()
	SetDefaults(v)
	assert.Equal(t, filepath.Join(home, ".local/share/ledger/ledger.db"), DatabasePath(v))

	v.Set(KeyDatabasePath, "~/custom.db")
	assert.Equal(t, filepath.Join(home, "custom.db"), DatabasePath(v))
}

func TestDefaultCurrencyCode(t *testing.T) {
	v := viper.New()
	code, err := DefaultCurrencyCode(v)
	require.NoError(t, err)
	assert.Equal(t, "USD", code)

	v.Set(KeyDefaultCurrency, " eur ")
	code, err = DefaultCurrencyCode(v)
	require.NoError(t, err)
	assert.Equal(t, "EUR", code)

	v.Set(KeyDefaultCurrency, "euro")
	_, err = DefaultCurrencyCode(v)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoadSheetsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, env := range []string{
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
		"GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SPREADSHEET_ID",
		"GOOGLE_SHEETS_SPREADSHEET_NAME",
		"GOOGLE_SHEETS_TOKEN_FILE",
	} {
		t.Setenv(env, "")
	}

	t.Run("defaults", func(t *testing.T) {
		cfg := LoadSheetsConfig(viper.New())
		assert.Equal(t, sheets.DefaultSpreadsheetName, cfg.SpreadsheetName)
		assert.Equal(t, "UTC", cfg.TimeZone)
		assert.Equal(t, filepath.Join(home, ".config/ledger/sheets-token.json"), cfg.TokenFile)
		assert.Error(t, cfg.Validate())
	})

	t.Run("viper wins over environment", func(t *testing.T) {
		t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "env-id")
		t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "env-secret")

		v := viper.New()
		v.Set(KeySheetsClientID, "viper-id")
		v.Set(KeySheetsSpreadsheetID, "sheet-1")
		v.Set(KeySheetsTimeZone, "Europe/Berlin")

		cfg := LoadSheetsConfig(v)
		assert.Equal(t, "viper-id", cfg.ClientID)
		assert.Equal(t, "env-secret", cfg.ClientSecret)
		assert.Equal(t, "sheet-1", cfg.SpreadsheetID)
		assert.Equal(t, "Europe/Berlin", cfg.TimeZone)
		assert.True(t, cfg.HasOAuth())
		assert.NoError(t, cfg.Validate())
	})

	t.Run("service account skips token file", func(t *testing.T) {
		t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "~/sa.json")

		cfg := LoadSheetsConfig(viper.New())
		assert.Equal(t, filepath.Join(home, "sa.json"), cfg.ServiceAccountPath)
		assert.Empty(t, cfg.TokenFile)
		assert.NoError(t, cfg.Validate())
	})
}
