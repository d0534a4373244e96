package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/pocket-ledger/internal/common"
	"github.com/Veraticus/pocket-ledger/internal/ledger"
	"github.com/Veraticus/pocket-ledger/internal/model"
)

// Referential errors.
var (
	ErrAccountNotFound          = fmt.Errorf("account %w", common.ErrNotFound)
	ErrCategoryNotFound         = fmt.Errorf("category %w", common.ErrNotFound)
	ErrCategoryTypeMismatch     = errors.New("category type does not match record type")
	ErrBudgetCategoryNotExpense = errors.New("budgets can only track expense categories")
	ErrDuplicateName            = fmt.Errorf("name already in use: %w", common.ErrDuplicateEntry)
	ErrAmbiguousCategory        = errors.New("category name exists as both expense and income")
)

// IsInputError reports whether err was caused by what the caller asked for
// rather than by storage or the environment.
func IsInputError(err error) bool {
	switch {
	case errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrCategoryNotFound),
		errors.Is(err, ErrCategoryTypeMismatch),
		errors.Is(err, ErrBudgetCategoryNotExpense),
		errors.Is(err, ErrDuplicateName),
		errors.Is(err, ErrAmbiguousCategory):
		return true
	}
	return model.IsValidationError(err)
}

// AccountInput is the data needed to open an account.
type AccountInput struct {
	Balance  decimal.Decimal
	Name     string
	Currency string
}

// CategoryInput is the data needed to create a category.
type CategoryInput struct {
	Name string
	Type model.Direction
}

// BudgetInput is the data needed to create a budget.
type BudgetInput struct {
	CategoryID string
	Period     model.BudgetPeriod
	Amount     decimal.Decimal
}

// RecordInput is the data needed to record a transaction. A zero Date means
// now; an empty Currency means the account's currency.
type RecordInput struct {
	Date       time.Time
	Type       model.Direction
	AccountID  string
	CategoryID string
	Currency   string
	Notes      string
	Amount     decimal.Decimal
}

// DeleteSummary reports what a category deletion removed.
type DeleteSummary struct {
	Category model.Category
	Records  int
	Budgets  int
}

// ImportSummary reports the outcome of a bulk record import.
type ImportSummary struct {
	BalanceChanges map[string]decimal.Decimal
	Added          int
	Duplicates     int
}

// LedgerService validates requests and turns them into ledger actions.
type LedgerService struct {
	store        *ledger.Store
	persist      StateStore
	checkpointer Checkpointer
	now          func() time.Time
}

// NewLedgerService wires a service to the state owner. persist may be nil for
// purely in-memory use.
func NewLedgerService(store *ledger.Store, persist StateStore) *LedgerService {
	return &LedgerService{
		store:   store,
		persist: persist,
		now:     time.Now,
	}
}

// WithCheckpointer enables automatic backups before destructive operations.
func (s *LedgerService) WithCheckpointer(cp Checkpointer) *LedgerService {
	s.checkpointer = cp
	return s
}

// WithClock overrides the time source used for default record dates.
func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

// State returns a snapshot of the current ledger.
func (s *LedgerService) State() ledger.State {
	return s.store.State()
}

// AddAccount opens a new account.
func (s *LedgerService) AddAccount(ctx context.Context, in AccountInput) (model.Account, error) {
	acct := model.Account{
		ID:       model.NewID(),
		Name:     strings.TrimSpace(in.Name),
		Currency: model.NormalizeCurrency(in.Currency),
		Balance:  in.Balance,
	}
	if err := acct.Validate(); err != nil {
		return model.Account{}, fmt.Errorf("invalid account: %w", err)
	}

	state := s.store.State()
	if _, err := findAccount(state, acct.Name); err == nil {
		return model.Account{}, fmt.Errorf("%w: %q", ErrDuplicateName, acct.Name)
	}

	s.store.Dispatch(ledger.AddAccount{Account: acct})
	slog.Info("added account", "id", acct.ID, "name", acct.Name, "currency", acct.Currency)

	return acct, s.save(ctx)
}

// SetBalance corrects an account's balance directly.
func (s *LedgerService) SetBalance(ctx context.Context, accountRef string, balance decimal.Decimal) (model.Account, error) {
	acct, err := findAccount(s.store.State(), accountRef)
	if err != nil {
		return model.Account{}, err
	}

	updated := acct.WithBalance(balance)
	s.store.Dispatch(ledger.UpdateAccount{Account: updated})
	slog.Info("corrected account balance",
		"id", acct.ID,
		"from", acct.Balance.String(),
		"to", balance.String())

	return updated, s.save(ctx)
}

// AddCategory creates a category.
func (s *LedgerService) AddCategory(ctx context.Context, in CategoryInput) (model.Category, error) {
	cat := model.Category{
		ID:   model.NewID(),
		Name: strings.TrimSpace(in.Name),
		Type: in.Type,
	}
	if err := cat.Validate(); err != nil {
		return model.Category{}, fmt.Errorf("invalid category: %w", err)
	}

	state := s.store.State()
	for _, existing := range state.Categories {
		if strings.EqualFold(existing.Name, cat.Name) && existing.Type == cat.Type {
			return model.Category{}, fmt.Errorf("%w: %s category %q", ErrDuplicateName, cat.Type, cat.Name)
		}
	}

	s.store.Dispatch(ledger.AddCategory{Category: cat})
	slog.Info("added category", "id", cat.ID, "name", cat.Name, "type", cat.Type)

	return cat, s.save(ctx)
}

// DeleteCategory removes a category together with its records and budgets.
// Account balances are left untouched. want narrows a name reference to one
// direction; a name shared by both directions needs it.
func (s *LedgerService) DeleteCategory(ctx context.Context, categoryRef string, want model.Direction) (DeleteSummary, error) {
	state := s.store.State()
	cat, err := findCategory(state, categoryRef, want)
	if err != nil {
		return DeleteSummary{}, err
	}
	if want != "" && cat.Type != want {
		return DeleteSummary{}, fmt.Errorf("%w: %q is an %s category", ErrCategoryNotFound, cat.Name, cat.Type)
	}

	summary := DeleteSummary{Category: cat}
	for _, r := range state.Records {
		if r.CategoryID == cat.ID {
			summary.Records++
		}
	}
	for _, b := range state.Budgets {
		if b.CategoryID == cat.ID {
			summary.Budgets++
		}
	}

	if summary.Records > 0 {
		s.checkpoint(ctx, "delete-category")
	}

	s.store.Dispatch(ledger.DeleteCategory{CategoryID: cat.ID})
	slog.Info("deleted category",
		"id", cat.ID,
		"name", cat.Name,
		"records_removed", summary.Records,
		"budgets_removed", summary.Budgets)

	return summary, s.save(ctx)
}

// AddBudget creates a spending ceiling for an expense category.
func (s *LedgerService) AddBudget(ctx context.Context, in BudgetInput) (model.Budget, error) {
	state := s.store.State()
	cat, err := findCategory(state, in.CategoryID, model.DirectionExpense)
	if err != nil {
		return model.Budget{}, err
	}
	if cat.Type != model.DirectionExpense {
		return model.Budget{}, fmt.Errorf("%w: %q is an %s category", ErrBudgetCategoryNotExpense, cat.Name, cat.Type)
	}

	budget := model.Budget{
		ID:         model.NewID(),
		CategoryID: cat.ID,
		Amount:     in.Amount,
		Period:     in.Period,
	}
	if err := budget.Validate(); err != nil {
		return model.Budget{}, fmt.Errorf("invalid budget: %w", err)
	}

	s.store.Dispatch(ledger.AddBudget{Budget: budget})
	slog.Info("added budget",
		"id", budget.ID,
		"category", cat.Name,
		"amount", budget.Amount.String(),
		"period", budget.Period)

	return budget, s.save(ctx)
}

// AddRecord records a transaction and then applies its effect to the account
// balance. The two dispatches mirror the record-then-balance protocol callers
// of the reducer are expected to follow.
func (s *LedgerService) AddRecord(ctx context.Context, in RecordInput) (model.Record, error) {
	state := s.store.State()

	acct, err := findAccount(state, in.AccountID)
	if err != nil {
		return model.Record{}, err
	}
	cat, err := findCategory(state, in.CategoryID, in.Type)
	if err != nil {
		return model.Record{}, err
	}
	if cat.Type != in.Type {
		return model.Record{}, fmt.Errorf("%w: %q is %s, record is %s", ErrCategoryTypeMismatch, cat.Name, cat.Type, in.Type)
	}

	rec := model.Record{
		ID:         model.NewID(),
		Type:       in.Type,
		Date:       in.Date,
		Amount:     in.Amount,
		Currency:   model.NormalizeCurrency(in.Currency),
		AccountID:  acct.ID,
		CategoryID: cat.ID,
		Notes:      strings.TrimSpace(in.Notes),
	}
	if rec.Date.IsZero() {
		rec.Date = s.now()
	}
	if rec.Currency == "" {
		rec.Currency = acct.Currency
	}
	if err := rec.Validate(); err != nil {
		return model.Record{}, fmt.Errorf("invalid record: %w", err)
	}

	s.store.Dispatch(ledger.AddRecord{Record: rec})
	s.store.Dispatch(ledger.UpdateAccount{Account: acct.WithBalance(acct.Balance.Add(rec.SignedAmount()))})

	slog.Info("added record",
		"id", rec.ID,
		"type", rec.Type,
		"amount", rec.Amount.String(),
		"account", acct.Name,
		"category", cat.Name)

	return rec, s.save(ctx)
}

// ImportRecords appends externally sourced records in one UPDATE_RECORDS
// dispatch, skipping IDs already present, then adjusts each affected account
// balance once. Every record must reference live, type-compatible entities.
func (s *LedgerService) ImportRecords(ctx context.Context, records []model.Record) (ImportSummary, error) {
	summary := ImportSummary{BalanceChanges: make(map[string]decimal.Decimal)}
	if len(records) == 0 {
		return summary, common.ErrNoRecords
	}

	state := s.store.State()
	seen := make(map[string]bool, len(state.Records)+len(records))
	for _, r := range state.Records {
		seen[r.ID] = true
	}

	merged := make([]model.Record, 0, len(state.Records)+len(records))
	merged = append(merged, state.Records...)

	for i, rec := range records {
		if rec.ID == "" {
			rec.ID = model.NewID()
		}
		if seen[rec.ID] {
			summary.Duplicates++
			continue
		}
		if err := s.checkRecord(state, rec); err != nil {
			return ImportSummary{}, fmt.Errorf("record at index %d: %w", i, err)
		}
		seen[rec.ID] = true
		merged = append(merged, rec)
		summary.Added++
		summary.BalanceChanges[rec.AccountID] = summary.BalanceChanges[rec.AccountID].Add(rec.SignedAmount())
	}

	if summary.Added == 0 {
		slog.Info("nothing to import", "duplicates", summary.Duplicates)
		return summary, nil
	}

	s.checkpoint(ctx, "import")

	s.store.Dispatch(ledger.UpdateRecords{Records: merged})

	accountIDs := make([]string, 0, len(summary.BalanceChanges))
	for id := range summary.BalanceChanges {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)
	for _, id := range accountIDs {
		acct, _ := state.Account(id)
		s.store.Dispatch(ledger.UpdateAccount{Account: acct.WithBalance(acct.Balance.Add(summary.BalanceChanges[id]))})
	}

	common.LogInfo("imported records", common.Fields{
		"added":      summary.Added,
		"duplicates": summary.Duplicates,
		"accounts":   len(accountIDs),
	})

	return summary, s.save(ctx)
}

// ResolveAccount finds an account by ID or case-insensitive name.
func (s *LedgerService) ResolveAccount(ref string) (model.Account, error) {
	return findAccount(s.store.State(), ref)
}

// ResolveCategory finds a category by ID or case-insensitive name. When the
// same name exists for both directions, want picks one; with want empty such a
// name is rejected with ErrAmbiguousCategory.
func (s *LedgerService) ResolveCategory(ref string, want model.Direction) (model.Category, error) {
	return findCategory(s.store.State(), ref, want)
}

func (s *LedgerService) checkRecord(state ledger.State, rec model.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if _, ok := state.Account(rec.AccountID); !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, rec.AccountID)
	}
	cat, ok := state.Category(rec.CategoryID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, rec.CategoryID)
	}
	if cat.Type != rec.Type {
		return fmt.Errorf("%w: %q is %s, record is %s", ErrCategoryTypeMismatch, cat.Name, cat.Type, rec.Type)
	}
	return nil
}

func (s *LedgerService) checkpoint(ctx context.Context, prefix string) {
	if s.checkpointer == nil {
		return
	}
	if err := s.checkpointer.AutoCheckpoint(ctx, prefix); err != nil {
		slog.Warn("automatic checkpoint failed", "operation", prefix, "error", err)
	}
}

func (s *LedgerService) save(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	state := s.store.State()
	if err := s.persist.Save(ctx, state); err != nil {
		common.LogError(err, "failed to persist ledger", common.Fields{
			"accounts": len(state.Accounts),
			"records":  len(state.Records),
		})
		return fmt.Errorf("failed to persist ledger: %w", err)
	}
	return nil
}

func findAccount(state ledger.State, ref string) (model.Account, error) {
	ref = strings.TrimSpace(ref)
	if acct, ok := state.Account(ref); ok {
		return acct, nil
	}
	for _, acct := range state.Accounts {
		if strings.EqualFold(acct.Name, ref) {
			return acct, nil
		}
	}
	return model.Account{}, fmt.Errorf("%w: %q", ErrAccountNotFound, ref)
}

func findCategory(state ledger.State, ref string, want model.Direction) (model.Category, error) {
	ref = strings.TrimSpace(ref)
	if cat, ok := state.Category(ref); ok {
		return cat, nil
	}

	var matches []model.Category
	for _, cat := range state.Categories {
		if !strings.EqualFold(cat.Name, ref) {
			continue
		}
		if want != "" && cat.Type == want {
			return cat, nil
		}
		matches = append(matches, cat)
	}

	switch len(matches) {
	case 0:
		return model.Category{}, fmt.Errorf("%w: %q", ErrCategoryNotFound, ref)
	case 1:
		// Possibly the other direction; the caller reports the mismatch.
		return matches[0], nil
	default:
		return model.Category{}, fmt.Errorf("%w: %q, pass a type to choose", ErrAmbiguousCategory, ref)
	}
}
