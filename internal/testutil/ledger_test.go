package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/pocket-ledger/internal/model"
)

func TestBuilder(t *testing.T) {
	day := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	b := NewBuilder(t).
		Account("Travel Card", "EUR", "-40.25").
		Category("Food", model.DirectionExpense).
		Budget("Food", model.PeriodWeekly, "100").
		Record(model.DirectionExpense, day, "12.50", "Travel Card", "Food", "market")

	state := b.State()
	require.Len(t, state.Accounts, 1)
	assert.Equal(t, "travel-card", state.Accounts[0].ID)
	assert.Equal(t, "-40.25", state.Accounts[0].Balance.String())

	require.Len(t, state.Budgets, 1)
	assert.Equal(t, "b1", state.Budgets[0].ID)
	assert.Equal(t, "food", state.Budgets[0].CategoryID)

	require.Len(t, state.Records, 1)
	rec := state.Records[0]
	assert.Equal(t, "r1", rec.ID)
	assert.Equal(t, "EUR", rec.Currency, "currency follows the account")
	assert.NoError(t, rec.Validate())

	// Snapshots are independent of the builder.
	state.Records[0].Notes = "changed"
	assert.Equal(t, "market", b.State().Records[0].Notes)
	assert.Len(t, b.Store().State().Records, 1)
}
