package model

import (
	"fmt"
	"strings"
)

// Direction indicates whether money flows into or out of an account.
type Direction string

const (
	// DirectionExpense represents money leaving an account.
	DirectionExpense Direction = "expense"
	// DirectionIncome represents money entering an account.
	DirectionIncome Direction = "income"
)

// IsValid reports whether d is a known direction.
func (d Direction) IsValid() bool {
	switch d {
	case DirectionExpense, DirectionIncome:
		return true
	default:
		return false
	}
}

// ParseDirection converts user input such as "Expense" into a Direction.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
	return d, nil
}

// Category classifies records as a kind of expense or income.
type Category struct {
	ID   string
	Name string
	Type Direction
}

// Validate performs the form-level checks a category must pass before it is added.
func (c Category) Validate() error {
	if err := validateName(c.Name); err != nil {
		return err
	}
	if !c.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, c.Type)
	}
	return nil
}
