package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxNotesLength bounds the free-text notes on a record.
const MaxNotesLength = 500

// Record is a single income or expense transaction tied to one account and one category.
type Record struct {
	Date       time.Time
	ID         string
	Type       Direction
	Currency   string
	AccountID  string
	CategoryID string
	Notes      string
	Amount     decimal.Decimal // always positive; Type carries the sign
}

// SignedAmount returns the record's effect on its account balance.
func (r Record) SignedAmount() decimal.Decimal {
	if r.Type == DirectionExpense {
		return r.Amount.Neg()
	}
	return r.Amount
}

// IsExpense reports whether the record is an expense.
func (r Record) IsExpense() bool {
	return r.Type == DirectionExpense
}

// Validate performs field-level checks. Foreign keys are checked by the caller.
func (r Record) Validate() error {
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, r.Type)
	}
	if r.Date.IsZero() {
		return ErrMissingDate
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := ValidateCurrency(r.Currency); err != nil {
		return err
	}
	if strings.TrimSpace(r.AccountID) == "" {
		return fmt.Errorf("%w: account", ErrMissingReference)
	}
	if strings.TrimSpace(r.CategoryID) == "" {
		return fmt.Errorf("%w: category", ErrMissingReference)
	}
	if len(r.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}
