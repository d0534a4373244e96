package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/pocket-ledger/internal/sheets"
)

// Sheets configuration keys.
const (
	KeySheetsServiceAccount = "sheets.service_account_path"
	KeySheetsClientID       = "sheets.client_id"
	KeySheetsClientSecret   = "sheets.client_secret"
	KeySheetsRefreshToken   = "sheets.refresh_token"
	KeySheetsTokenFile      = "sheets.token_file"
	KeySheetsSpreadsheetID  = "sheets.spreadsheet_id"
	KeySheetsName           = "sheets.spreadsheet_name"
	KeySheetsTimeZone       = "sheets.timezone"
)

// DefaultSheetsTokenFile is where the interactive OAuth flow stores its token.
const DefaultSheetsTokenFile = "$HOME/.config/ledger/sheets-token.json"

// LoadSheetsConfig builds the export configuration. Values come from v first
// (config file or LEDGER_ env vars), then the GOOGLE_SHEETS_* variables, then
// defaults. The result is not validated; the writer does that.
func LoadSheetsConfig(v *viper.Viper) *sheets.Config {
	config := sheets.DefaultConfig()

	pick := func(key, env string) string {
		if s := v.GetString(key); s != "" {
			return s
		}
		return os.Getenv(env)
	}

	if p := pick(KeySheetsServiceAccount, "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"); p != "" {
		config.ServiceAccountPath = ExpandPath(p)
	}
	config.ClientID = pick(KeySheetsClientID, "GOOGLE_SHEETS_CLIENT_ID")
	config.ClientSecret = pick(KeySheetsClientSecret, "GOOGLE_SHEETS_CLIENT_SECRET")
	config.RefreshToken = pick(KeySheetsRefreshToken, "GOOGLE_SHEETS_REFRESH_TOKEN")
	config.SpreadsheetID = pick(KeySheetsSpreadsheetID, "GOOGLE_SHEETS_SPREADSHEET_ID")
	if name := pick(KeySheetsName, "GOOGLE_SHEETS_SPREADSHEET_NAME"); name != "" {
		config.SpreadsheetName = name
	}
	if tz := v.GetString(KeySheetsTimeZone); tz != "" {
		config.TimeZone = tz
	}

	// A token file only matters for OAuth; leaving it empty otherwise keeps
	// service-account setups from looking like they configured both.
	if config.ServiceAccountPath == "" {
		tokenFile := pick(KeySheetsTokenFile, "GOOGLE_SHEETS_TOKEN_FILE")
		if tokenFile == "" {
			tokenFile = DefaultSheetsTokenFile
		}
		config.TokenFile = ExpandPath(tokenFile)
	}

	return &config
}
