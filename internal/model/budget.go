package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// BudgetPeriod is the window a budget's spending ceiling applies to.
type BudgetPeriod string

const (
	// PeriodWeekly resets every Sunday.
	PeriodWeekly BudgetPeriod = "weekly"
	// PeriodMonthly resets on the first day of each month.
	PeriodMonthly BudgetPeriod = "monthly"
)

// IsValid reports whether p is a known period.
func (p BudgetPeriod) IsValid() bool {
	return p == PeriodWeekly || p == PeriodMonthly
}

// ParseBudgetPeriod converts user input into a BudgetPeriod.
func ParseBudgetPeriod(s string) (BudgetPeriod, error) {
	p := BudgetPeriod(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return p, nil
}

// Budget is a spending ceiling for one expense category over a period.
type Budget struct {
	ID         string
	CategoryID string
	Period     BudgetPeriod
	Amount     decimal.Decimal
}

// Validate checks the budget's own fields. Whether CategoryID names an
// expense category is checked by the caller against live state.
func (b Budget) Validate() error {
	if strings.TrimSpace(b.CategoryID) == "" {
		return fmt.Errorf("%w: category", ErrMissingReference)
	}
	if !b.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !b.Period.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, b.Period)
	}
	return nil
}
