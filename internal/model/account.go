package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Account is a named money container with a running balance.
type Account struct {
	ID       string
	Name     string
	Currency string
	Balance  decimal.Decimal
}

// Validate performs the form-level checks an account must pass before it is added.
// Balances may be negative (overdrafts, credit cards).
func (a Account) Validate() error {
	if err := validateName(a.Name); err != nil {
		return err
	}
	return ValidateCurrency(a.Currency)
}

// WithBalance returns a copy of the account carrying the given balance.
func (a Account) WithBalance(balance decimal.Decimal) Account {
	a.Balance = balance
	return a
}

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCurrency checks for a three-letter ISO-4217 style code.
func ValidateCurrency(code string) error {
	if len(code) != 3 {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
		}
	}
	return nil
}
