package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Veraticus/pocket-ledger/internal/common"
	"github.com/Veraticus/pocket-ledger/internal/model"
)

// Configuration keys.
const (
	KeyDatabasePath    = "database.path"
	KeyDefaultCurrency = "ledger.default_currency"
	KeyLogLevel        = "logging.level"
	KeyLogFormat       = "logging.format"
	KeyAutoCheckpoint  = "checkpoint.auto"
	KeyKeepCheckpoints = "checkpoint.keep"
	KeyImportAccount   = "import.default_account"
	KeyImportExpense   = "import.expense_category"
	KeyImportIncome    = "import.income_category"
)

// Default values.
const (
	DefaultDatabasePath    = "$HOME/.local/share/ledger/ledger.db"
	DefaultCurrency        = "USD"
	DefaultKeepCheckpoints = 5
)

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyDefaultCurrency, DefaultCurrency)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyAutoCheckpoint, true)
	v.SetDefault(KeyKeepCheckpoints, DefaultKeepCheckpoints)
}

// DatabasePath returns the expanded database location.
func DatabasePath(v *viper.Viper) string {
	path := v.GetString(KeyDatabasePath)
	if path == "" {
		path = DefaultDatabasePath
	}
	return ExpandPath(path)
}

// DefaultCurrencyCode returns the configured currency for new accounts and records.
func DefaultCurrencyCode(v *viper.Viper) (string, error) {
	code := model.NormalizeCurrency(v.GetString(KeyDefaultCurrency))
	if code == "" {
		code = DefaultCurrency
	}
	if err := model.ValidateCurrency(code); err != nil {
		return "", fmt.Errorf("%w: %s: %v", common.ErrInvalidConfig, KeyDefaultCurrency, err)
	}
	return code, nil
}
