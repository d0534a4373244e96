// Package testutil builds ledger fixtures for tests.
//
// Entities get readable IDs: accounts and categories use their lower-cased
// name, budgets and records a running "b1", "r1", ... counter.
//
//	state := testutil.NewBuilder(t).
//		Account("Checking", "USD", "1000").
//		Category("Food", model.DirectionExpense).
//		Record(model.DirectionExpense, day, "12.50", "Checking", "Food", "market").
//		State()
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/pocket-ledger/internal/ledger"
	"github.com/Veraticus/pocket-ledger/internal/model"
)

// Builder accumulates entities into a ledger state. It does not validate
// references, so tests can build deliberately broken states too.
type Builder struct {
	t     testing.TB
	state ledger.State
}

// NewBuilder starts an empty state.
func NewBuilder(t testing.TB) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// ID returns the identifier the builder assigns to a named account or category.
func ID(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}

// Account adds an account with the given opening balance.
func (b *Builder) Account(name, currency, balance string) *Builder {
	b.t.Helper()
	b.state.Accounts = append(b.state.Accounts, model.Account{
		ID:       ID(name),
		Name:     name,
		Currency: currency,
		Balance:  b.decimal(balance),
	})
	return b
}

// Category adds a category.
func (b *Builder) Category(name string, direction model.Direction) *Builder {
	b.state.Categories = append(b.state.Categories, model.Category{
		ID:   ID(name),
		Name: name,
		Type: direction,
	})
	return b
}

// Budget adds a budget on the named category.
func (b *Builder) Budget(category string, period model.BudgetPeriod, amount string) *Builder {
	b.t.Helper()
	b.state.Budgets = append(b.state.Budgets, model.Budget{
		ID:         fmt.Sprintf("b%d", len(b.state.Budgets)+1),
		CategoryID: ID(category),
		Period:     period,
		Amount:     b.decimal(amount),
	})
	return b
}

// Record adds a record. The account balance is not adjusted; pass the
// balance the test expects to Account instead.
func (b *Builder) Record(direction model.Direction, date time.Time, amount, account, category, notes string) *Builder {
	b.t.Helper()
	currency := "USD"
	for _, a := range b.state.Accounts {
		if a.ID == ID(account) {
			currency = a.Currency
		}
	}
	b.state.Records = append(b.state.Records, model.Record{
		ID:         fmt.Sprintf("r%d", len(b.state.Records)+1),
		Type:       direction,
		Date:       date,
		Amount:     b.decimal(amount),
		Currency:   currency,
		AccountID:  ID(account),
		CategoryID: ID(category),
		Notes:      notes,
	})
	return b
}

// State returns a copy of the accumulated state.
func (b *Builder) State() ledger.State {
	return b.state.Clone()
}

// Store wraps the accumulated state in a new state owner.
func (b *Builder) Store() *ledger.Store {
	return ledger.NewStore(b.State())
}

func (b *Builder) decimal(s string) decimal.Decimal {
	b.t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		b.t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}
