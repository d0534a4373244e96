package model

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxNameLength bounds account and category names.
const MaxNameLength = 100

// Validation errors.
var (
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrNameTooLong      = errors.New("name too long")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrInvalidDirection = errors.New("type must be expense or income")
	ErrInvalidPeriod    = errors.New("period must be weekly or monthly")
	ErrMissingDate      = errors.New("date is required")
	ErrMissingReference = errors.New("missing reference")
	ErrNotesTooLong     = errors.New("notes too long")
)

// IsValidationError reports whether err comes from entity validation.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrEmptyName, ErrNameTooLong, ErrInvalidAmount, ErrInvalidCurrency, ErrInvalidDirection,
		ErrInvalidPeriod, ErrMissingDate, ErrMissingReference, ErrNotesTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// NewID returns a fresh identifier for any entity.
func NewID() string {
	return uuid.NewString()
}

// ParseAmount parses user input such as "12.50" or "12,50" into a decimal.
// Only positive amounts are accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseBalance parses a signed balance such as "-40.25".
func ParseBalance(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
