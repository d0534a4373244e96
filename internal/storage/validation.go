// Package storage persists the ledger in SQLite and manages database checkpoints.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/pocket-ledger/internal/ledger"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrInvalidState = errors.New("invalid ledger state")
	ErrDuplicateID  = errors.New("duplicate id")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

type validatable interface {
	Validate() error
}

// validateState checks every entity before it is written. Referential
// integrity is not checked here; the database stores whatever snapshot the
// ledger holds.
func validateState(state ledger.State) error {
	if err := validateEntities("account", state.Accounts, func(i int) string { return state.Accounts[i].ID }); err != nil {
		return err
	}
	if err := validateEntities("category", state.Categories, func(i int) string { return state.Categories[i].ID }); err != nil {
		return err
	}
	if err := validateEntities("budget", state.Budgets, func(i int) string { return state.Budgets[i].ID }); err != nil {
		return err
	}
	return validateEntities("record", state.Records, func(i int) string { return state.Records[i].ID })
}

func validateEntities[T validatable](kind string, items []T, idOf func(int) string) error {
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		id := idOf(i)
		if err := validateString(id, kind+" id"); err != nil {
			return fmt.Errorf("%w: %s at index %d: %w", ErrInvalidState, kind, i, err)
		}
		if seen[id] {
			return fmt.Errorf("%w: %w: %s %s", ErrInvalidState, ErrDuplicateID, kind, id)
		}
		seen[id] = true
		if err := item.Validate(); err != nil {
			return fmt.Errorf("%w: %s %s: %w", ErrInvalidState, kind, id, err)
		}
	}
	return nil
}
