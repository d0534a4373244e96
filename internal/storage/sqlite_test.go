package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/pocket-ledger/internal/ledger"
	"github.com/Veraticus/pocket-ledger/internal/model"
)

func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func sampleState() ledger.State {
	est := time.FixedZone("EST", -5*60*60)
	return ledger.State{
		Accounts: []model.Account{
			{ID: "acct-2", Name: "Wallet", Currency: "EUR", Balance: decimal.RequireFromString("-12.50")},
			{ID: "acct-1", Name: "Checking", Currency: "USD", Balance: decimal.RequireFromString("950.00")},
		},
		Categories: []model.Category{
			{ID: "cat-food", Name: "Food", Type: model.DirectionExpense},
			{ID: "cat-pay", Name: "Salary", Type: model.DirectionIncome},
		},
		Budgets: []model.Budget{
			{ID: "bud-1", CategoryID: "cat-food", Amount: decimal.NewFromInt(500), Period: model.PeriodMonthly},
		},
		Records: []model.Record{
			{
				ID: "rec-1", Type: model.DirectionExpense, Date: time.Date(2024, 3, 10, 23, 30, 0, 0, est),
				Amount: decimal.RequireFromString("50.00"), Currency: "USD",
				AccountID: "acct-1", CategoryID: "cat-food", Notes: "groceries",
			},
			{
				ID: "rec-2", Type: model.DirectionIncome, Date: time.Date(2024, 3, 1, 9, 0, 0, 123456789, time.UTC),
				Amount: decimal.RequireFromString("1000.01"), Currency: "USD",
				AccountID: "acct-1", CategoryID: "cat-pay",
			},
		},
	}
}

func assertStatesEqual(t *testing.T, want, got ledger.State) {
	t.Helper()

	require.Len(t, got.Accounts, len(want.Accounts))
	for i := range want.Accounts {
		assert.Equal(t, want.Accounts[i].ID, got.Accounts[i].ID)
		assert.Equal(t, want.Accounts[i].Name, got.Accounts[i].Name)
		assert.Equal(t, want.Accounts[i].Currency, got.Accounts[i].Currency)
		assert.True(t, want.Accounts[i].Balance.Equal(got.Accounts[i].Balance), "balance of %s", want.Accounts[i].ID)
	}

	assert.Equal(t, want.Categories, got.Categories)

	require.Len(t, got.Budgets, len(want.Budgets))
	for i := range want.Budgets {
		assert.Equal(t, want.Budgets[i].ID, got.Budgets[i].ID)
		assert.Equal(t, want.Budgets[i].CategoryID, got.Budgets[i].CategoryID)
		assert.Equal(t, want.Budgets[i].Period, got.Budgets[i].Period)
		assert.True(t, want.Budgets[i].Amount.Equal(got.Budgets[i].Amount))
	}

	require.Len(t, got.Records, len(want.Records))
	for i := range want.Records {
		w, g := want.Records[i], got.Records[i]
		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.Type, g.Type)
		assert.True(t, w.Date.Equal(g.Date), "date of %s: want %v got %v", w.ID, w.Date, g.Date)
		_, wantOffset := w.Date.Zone()
		_, gotOffset := g.Date.Zone()
		assert.Equal(t, wantOffset, gotOffset)
		assert.True(t, w.Amount.Equal(g.Amount))
		assert.Equal(t, w.Currency, g.Currency)
		assert.Equal(t, w.AccountID, g.AccountID)
		assert.Equal(t, w.CategoryID, g.CategoryID)
		assert.Equal(t, w.Notes, g.Notes)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	want := sampleState()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assertStatesEqual(t, want, got)

	count, err := store.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleState()))

	next := ledger.Reduce(sampleState(), ledger.DeleteCategory{CategoryID: "cat-food"})
	require.NoError(t, store.Save(ctx, next))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assertStatesEqual(t, next, got)
	assert.Empty(t, got.Budgets)
	assert.Len(t, got.Records, 1)
}

func TestLoadEmptyDatabase(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	state, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.Accounts)
	assert.Empty(t, state.Categories)
	assert.Empty(t, state.Budgets)
	assert.Empty(t, state.Records)
}

func TestSaveRejectsInvalidState(t *testing.T) {
	tests := []struct {
		mutate  func(*ledger.State)
		name    string
		wantErr error
	}{
		{
			name:    "duplicate account id",
			mutate:  func(s *ledger.State) { s.Accounts[1].ID = s.Accounts[0].ID },
			wantErr: ErrDuplicateID,
		},
		{
			name:    "missing record id",
			mutate:  func(s *ledger.State) { s.Records[0].ID = "" },
			wantErr: ErrEmptyString,
		},
		{
			name:    "non-positive record amount",
			mutate:  func(s *ledger.State) { s.Records[0].Amount = decimal.Zero },
			wantErr: model.ErrInvalidAmount,
		},
		{
			name:    "bad budget period",
			mutate:  func(s *ledger.State) { s.Budgets[0].Period = "daily" },
			wantErr: model.ErrInvalidPeriod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, cleanup := createTestStorage(t)
			defer cleanup()
			ctx := context.Background()

			require.NoError(t, store.Save(ctx, sampleState()))

			bad := sampleState()
			tt.mutate(&bad)
			err := store.Save(ctx, bad)
			require.ErrorIs(t, err, ErrInvalidState)
			require.ErrorIs(t, err, tt.wantErr)

			// The previous snapshot is untouched.
			got, err := store.Load(ctx)
			require.NoError(t, err)
			assertStatesEqual(t, sampleState(), got)
		})
	}
}

func TestInMemoryStorage(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Save(ctx, sampleState()))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assertStatesEqual(t, sampleState(), got)

	_, err = store.NewCheckpointManager()
	assert.Error(t, err)
}

func TestStoreDrivesPersistence(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	s := ledger.NewStore(ledger.State{})
	s.Subscribe(func(_, next ledger.State, _ ledger.Action) {
		require.NoError(t, store.Save(ctx, next))
	})

	acct := model.Account{ID: "a", Name: "Cash", Currency: "USD", Balance: decimal.NewFromInt(20)}
	s.Dispatch(ledger.AddAccount{Account: acct})
	s.Dispatch(ledger.UpdateAccount{Account: acct.WithBalance(decimal.NewFromInt(15))})

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Accounts, 1)
	assert.True(t, got.Accounts[0].Balance.Equal(decimal.NewFromInt(15)))
}

func TestNewSQLiteStorageRejectsEmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}
