package sheets

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/pocket-ledger/internal/common"
	"github.com/Veraticus/pocket-ledger/internal/ledger"
	"github.com/Veraticus/pocket-ledger/internal/model"
	"github.com/Veraticus/pocket-ledger/internal/report"
	"github.com/Veraticus/pocket-ledger/internal/testutil"
)

type updateCall struct {
	rangeStr string
	values   [][]any
}

type fakeAPI struct {
	existing   *sheets.Spreadsheet
	updateErrs []error
	created    *sheets.Spreadsheet
	cleared    []string
	updates    []updateCall
	batches    [][]*sheets.Request
	mu         sync.Mutex
}

func (f *fakeAPI) Get(_ context.Context, id string) (*sheets.Spreadsheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existing == nil || f.existing.SpreadsheetId != id {
		return nil, classify(&googleapi.Error{Code: http.StatusNotFound, Message: "not found"})
	}
	return f.existing, nil
}

func (f *fakeAPI) Create(_ context.Context, s *sheets.Spreadsheet) (*sheets.Spreadsheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.SpreadsheetId = "new-sheet"
	for i, sh := range s.Sheets {
		sh.Properties.SheetId = int64(100 + i)
	}
	f.created = s
	return s, nil
}

func (f *fakeAPI) BatchUpdate(_ context.Context, _ string, requests []*sheets.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, requests)
	for _, r := range requests {
		if r.AddSheet != nil && f.existing != nil {
			props := *r.AddSheet.Properties
			props.SheetId = int64(200 + len(f.existing.Sheets))
			f.existing.Sheets = append(f.existing.Sheets, &sheets.Sheet{Properties: &props})
		}
	}
	return nil
}

func (f *fakeAPI) Clear(_ context.Context, _ string, rangeStr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, rangeStr)
	return nil
}

func (f *fakeAPI) Update(_ context.Context, _ string, rangeStr string, values [][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updateErrs) > 0 {
		err := f.updateErrs[0]
		f.updateErrs = f.updateErrs[1:]
		if err != nil {
			return err
		}
	}
	f.updates = append(f.updates, updateCall{rangeStr: rangeStr, values: values})
	return nil
}

func (f *fakeAPI) rowsFor(tab string) [][]any {
	var rows [][]any
	for _, u := range f.updates {
		if strings.HasPrefix(u.rangeStr, "'"+tab+"'!") {
			rows = append(rows, u.values...)
		}
	}
	return rows
}

var testNow = time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

func testState(t *testing.T) ledger.State {
	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }
	return testutil.NewBuilder(t).
		Account("Checking", "USD", "1234.5").
		Category("Food", model.DirectionExpense).
		Category("Rent", model.DirectionExpense).
		Category("Salary", model.DirectionIncome).
		Budget("Food", model.PeriodMonthly, "100").
		Record(model.DirectionExpense, day(3, 2), "60", "Checking", "Food", "market").
		Record(model.DirectionExpense, day(3, 5), "70", "Checking", "Food", "").
		Record(model.DirectionExpense, day(3, 1), "900", "Checking", "Rent", "").
		Record(model.DirectionIncome, day(3, 15), "2000", "Checking", "Salary", "").
		Record(model.DirectionExpense, day(2, 28), "5", "Checking", "Food", "").
		State()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestBuildReport(t *testing.T) {
	rep := BuildReport(testState(t), report.MonthRange(testNow), testNow)

	require.Len(t, rep.Records, 4, "february record is outside the range")
	assert.Equal(t, "Salary", rep.Records[0].Category, "newest first")
	assert.True(t, rep.Records[0].Amount.Equal(decimal.NewFromInt(2000)))
	assert.True(t, rep.Records[3].Amount.Equal(decimal.NewFromInt(-900)), "expenses are signed")
	assert.Equal(t, "Checking", rep.Records[3].Account)

	assert.True(t, rep.CashFlow.TotalExpenses.Equal(decimal.NewFromInt(1030)))
	assert.True(t, rep.CashFlow.NetCashFlow.Equal(decimal.NewFromInt(970)))

	require.Len(t, rep.Budgets, 1)
	assert.Equal(t, "Food", rep.Budgets[0].Category)
	assert.True(t, rep.Budgets[0].Spent.Equal(decimal.NewFromInt(130)))
	assert.True(t, rep.Budgets[0].Over)

	require.Len(t, rep.Accounts, 1)
	assert.Equal(t, "Checking", rep.Accounts[0].Name)
}

func TestWriterCreatesSpreadsheet(t *testing.T) {
	api := &fakeAPI{}
	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	w := NewWriterWithAPI(api, cfg, testLogger())

	id, err := w.Write(context.Background(), BuildReport(testState(t), report.MonthRange(testNow), testNow))
	require.NoError(t, err)
	assert.Equal(t, "new-sheet", id)

	require.NotNil(t, api.created)
	assert.Equal(t, DefaultSpreadsheetName, api.created.Properties.Title)
	require.Len(t, api.created.Sheets, 4)

	assert.Equal(t, []string{"'Summary'!A:Z", "'Records'!A:Z", "'Accounts'!A:Z", "'Budgets'!A:Z"}, api.cleared)

	summary := api.rowsFor(TabSummary)
	assert.Equal(t, []any{"Total Income", "2000.00"}, summary[3])
	assert.Equal(t, []any{"Total Expenses", "1030.00"}, summary[4])
	assert.Equal(t, []any{"Net Cash Flow", "970.00"}, summary[5])
	assert.Contains(t, summary, []any{"Rent", 1, "900.00"})
	assert.Contains(t, summary, []any{"Food", 2, "130.00"})

	records := api.rowsFor(TabRecords)
	require.Len(t, records, 5)
	assert.Equal(t, "Date", records[0][0])
	assert.Equal(t, []any{"2024-03-15", "income", "Checking", "Salary", "2000.00", "USD", ""}, records[1])

	budgets := api.rowsFor(TabBudgets)
	require.Len(t, budgets, 2)
	assert.Equal(t, []any{"Food", "monthly", "100.00", "130.00", "-30.00", "130.00", "yes"}, budgets[1])

	require.Len(t, api.batches, 1, "formatting batch")
	assert.NotEmpty(t, api.batches[0])
}

func TestWriterAddsMissingTabsToExistingSpreadsheet(t *testing.T) {
	api := &fakeAPI{existing: &sheets.Spreadsheet{
		SpreadsheetId: "existing",
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: TabSummary, SheetId: 0}},
		},
	}}
	cfg := DefaultConfig()
	cfg.SpreadsheetID = "existing"
	cfg.EnableFormatting = false
	w := NewWriterWithAPI(api, cfg, testLogger())

	id, err := w.Write(context.Background(), BuildReport(testState(t), report.MonthRange(testNow), testNow))
	require.NoError(t, err)
	assert.Equal(t, "existing", id)
	assert.Nil(t, api.created)

	require.Len(t, api.batches, 1)
	added := make([]string, 0, len(api.batches[0]))
	for _, r := range api.batches[0] {
		require.NotNil(t, r.AddSheet)
		added = append(added, r.AddSheet.Properties.Title)
	}
	assert.Equal(t, []string{TabRecords, TabAccounts, TabBudgets}, added)
	assert.Len(t, api.existing.Sheets, 4)
}

func TestWriterBatchesRows(t *testing.T) {
	api := &fakeAPI{}
	cfg := DefaultConfig()
	cfg.BatchSize = 2
	cfg.EnableFormatting = false
	w := NewWriterWithAPI(api, cfg, testLogger())

	_, err := w.Write(context.Background(), BuildReport(testState(t), report.MonthRange(testNow), testNow))
	require.NoError(t, err)

	var ranges []string
	for _, u := range api.updates {
		if strings.HasPrefix(u.rangeStr, "'Records'!") {
			ranges = append(ranges, u.rangeStr)
			assert.LessOrEqual(t, len(u.values), 2)
		}
	}
	assert.Equal(t, []string{"'Records'!A1", "'Records'!A3", "'Records'!A5"}, ranges)
}

func TestWriterRetriesServerErrors(t *testing.T) {
	api := &fakeAPI{updateErrs: []error{classify(&googleapi.Error{Code: http.StatusServiceUnavailable})}}
	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	cfg.EnableFormatting = false
	w := NewWriterWithAPI(api, cfg, testLogger())

	_, err := w.Write(context.Background(), BuildReport(testState(t), report.MonthRange(testNow), testNow))
	require.NoError(t, err)
	assert.Len(t, api.rowsFor(TabSummary), len(summaryValues(BuildReport(testState(t), report.MonthRange(testNow), testNow))))
}

func TestWriterStopsOnClientErrors(t *testing.T) {
	api := &fakeAPI{updateErrs: []error{classify(&googleapi.Error{Code: http.StatusForbidden, Message: "denied"})}}
	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	w := NewWriterWithAPI(api, cfg, testLogger())

	_, err := w.Write(context.Background(), BuildReport(testState(t), report.MonthRange(testNow), testNow))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExportFailed)
	assert.NotErrorIs(t, err, common.ErrMaxRetries)
}

func TestWriterMissingSpreadsheet(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpreadsheetID = "gone"
	cfg.RetryDelay = time.Millisecond
	w := NewWriterWithAPI(&fakeAPI{}, cfg, testLogger())

	_, err := w.Write(context.Background(), Report{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to access spreadsheet gone")
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	plain := errors.New("network down")
	assert.Equal(t, plain, classify(plain))

	assert.ErrorIs(t, classify(&googleapi.Error{Code: http.StatusTooManyRequests}), common.ErrRateLimit)

	var re *common.RetryableError
	require.ErrorAs(t, classify(&googleapi.Error{Code: http.StatusBadGateway}), &re)
	assert.True(t, re.Retryable)
	require.ErrorAs(t, classify(&googleapi.Error{Code: http.StatusBadRequest}), &re)
	assert.False(t, re.Retryable)
}

func TestFormattingRequestsSkipUnknownTabs(t *testing.T) {
	reqs := formattingRequests(map[string]int64{TabSummary: 1, TabRecords: 2})
	// Summary: bold + resize; Records: bold + resize + freeze.
	assert.Len(t, reqs, 5)
}
