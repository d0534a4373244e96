package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/pocket-ledger/internal/common"
	"github.com/Veraticus/pocket-ledger/internal/report"
)

var tabs = []string{TabSummary, TabRecords, TabAccounts, TabBudgets}

// Writer exports ledger reports to a Google spreadsheet.
type Writer struct {
	api    API
	logger *slog.Logger
	config Config
}

// NewWriter creates a writer backed by the live Sheets API.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewWriterWithAPI(&serviceAPI{srv: srv}, config, logger), nil
}

// NewWriterWithAPI creates a writer over any API implementation.
func NewWriterWithAPI(api API, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	return &Writer{api: api, config: config, logger: logger}
}

// Write replaces the contents of every tab with rep and returns the
// spreadsheet ID.
func (w *Writer) Write(ctx context.Context, rep Report) (string, error) {
	w.logger.Info("starting export",
		"records", len(rep.Records),
		"date_range", fmt.Sprintf("%s to %s", rep.CashFlow.DateRange.Start.Format("2006-01-02"), lastDay(rep.CashFlow.DateRange).Format("2006-01-02")))

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var spreadsheetID string
	var sheetIDs map[string]int64
	err := common.WithRetry(ctx, func() error {
		var ensureErr error
		spreadsheetID, sheetIDs, ensureErr = w.ensureSpreadsheet(ctx)
		return ensureErr
	}, retryOpts)
	if err != nil {
		return "", fmt.Errorf("%w: failed to get spreadsheet: %w", common.ErrExportFailed, err)
	}

	rowsWritten := 0
	for _, tab := range tabs {
		values := tabValues(tab, rep)

		err := common.WithRetry(ctx, func() error {
			return w.api.Clear(ctx, spreadsheetID, quoteRange(tab, "A:Z"))
		}, retryOpts)
		if err != nil {
			return "", fmt.Errorf("%w: failed to clear %s: %w", common.ErrExportFailed, tab, err)
		}

		err = common.WithRetry(ctx, func() error {
			return w.writeData(ctx, spreadsheetID, tab, values)
		}, retryOpts)
		if err != nil {
			return "", fmt.Errorf("%w: failed to write %s: %w", common.ErrExportFailed, tab, err)
		}
		rowsWritten += len(values)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.api.BatchUpdate(ctx, spreadsheetID, formattingRequests(sheetIDs))
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", rowsWritten)

	return spreadsheetID, nil
}

// ensureSpreadsheet opens the configured spreadsheet, adding any missing
// tabs, or creates a new one. It returns the sheet ID of every tab.
func (w *Writer) ensureSpreadsheet(ctx context.Context) (string, map[string]int64, error) {
	if w.config.SpreadsheetID == "" {
		spreadsheet := &sheets.Spreadsheet{
			Properties: &sheets.SpreadsheetProperties{
				Title:    w.config.SpreadsheetName,
				TimeZone: w.config.TimeZone,
			},
		}
		for _, tab := range tabs {
			spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
				Properties: &sheets.SheetProperties{Title: tab},
			})
		}

		created, err := w.api.Create(ctx, spreadsheet)
		if err != nil {
			return "", nil, fmt.Errorf("unable to create spreadsheet: %w", err)
		}
		w.logger.Info("created new spreadsheet",
			"id", created.SpreadsheetId,
			"url", created.SpreadsheetUrl)

		// Later calls in this run reuse it.
		w.config.SpreadsheetID = created.SpreadsheetId
		return created.SpreadsheetId, sheetIDsOf(created), nil
	}

	existing, err := w.api.Get(ctx, w.config.SpreadsheetID)
	if err != nil {
		return "", nil, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
	}

	ids := sheetIDsOf(existing)
	var requests []*sheets.Request
	for _, tab := range tabs {
		if _, ok := ids[tab]; !ok {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: tab}},
			})
		}
	}
	if len(requests) == 0 {
		return w.config.SpreadsheetID, ids, nil
	}

	if err := w.api.BatchUpdate(ctx, w.config.SpreadsheetID, requests); err != nil {
		return "", nil, fmt.Errorf("unable to add tabs: %w", err)
	}
	refreshed, err := w.api.Get(ctx, w.config.SpreadsheetID)
	if err != nil {
		return "", nil, fmt.Errorf("unable to reload spreadsheet: %w", err)
	}
	return w.config.SpreadsheetID, sheetIDsOf(refreshed), nil
}

func sheetIDsOf(spreadsheet *sheets.Spreadsheet) map[string]int64 {
	ids := make(map[string]int64, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}
	return ids
}

// writeData writes values to a tab in batches to stay under API limits.
func (w *Writer) writeData(ctx context.Context, spreadsheetID, tab string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		rangeStr := quoteRange(tab, fmt.Sprintf("A%d", i+1))
		if err := w.api.Update(ctx, spreadsheetID, rangeStr, values[i:end]); err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "tab", tab, "start_row", i+1, "rows", end-i)
	}
	return nil
}

func quoteRange(tab, cells string) string {
	return fmt.Sprintf("'%s'!%s", tab, cells)
}

func lastDay(r report.DateRange) time.Time {
	if r.End.IsZero() {
		return r.End
	}
	return r.End.Add(-time.Nanosecond)
}

func tabValues(tab string, rep Report) [][]any {
	switch tab {
	case TabSummary:
		return summaryValues(rep)
	case TabRecords:
		return recordValues(rep.Records)
	case TabAccounts:
		return accountValues(rep.Accounts)
	case TabBudgets:
		return budgetValues(rep.Budgets)
	}
	return nil
}

func summaryValues(rep Report) [][]any {
	cf := rep.CashFlow
	values := [][]any{
		{"Ledger Export", rep.Generated.Format("Jan 2, 2006 15:04")},
		{},
		{"Period", fmt.Sprintf("%s - %s", cf.DateRange.Start.Format("Jan 2, 2006"), lastDay(cf.DateRange).Format("Jan 2, 2006"))},
		{"Total Income", cf.TotalIncome.StringFixed(2)},
		{"Total Expenses", cf.TotalExpenses.StringFixed(2)},
		{"Net Cash Flow", cf.NetCashFlow.StringFixed(2)},
		{"Records", cf.Count},
	}

	section := func(title string, rows []report.CategorySummary) {
		values = append(values, []any{}, []any{title}, []any{"Category", "Count", "Amount"})
		for _, cs := range rows {
			values = append(values, []any{cs.Name, cs.Count, cs.Amount.StringFixed(2)})
		}
	}
	section("Expenses by Category", report.Sorted(cf.ExpensesByCategory))
	section("Income by Category", report.Sorted(cf.IncomeByCategory))

	return values
}

func recordValues(rows []RecordRow) [][]any {
	values := make([][]any, 0, len(rows)+1)
	values = append(values, []any{"Date", "Type", "Account", "Category", "Amount", "Currency", "Notes"})
	for _, r := range rows {
		values = append(values, []any{
			r.Date.Format("2006-01-02"),
			r.Type,
			r.Account,
			r.Category,
			r.Amount.StringFixed(2),
			r.Currency,
			r.Notes,
		})
	}
	return values
}

func accountValues(rows []AccountRow) [][]any {
	values := make([][]any, 0, len(rows)+1)
	values = append(values, []any{"Account", "Currency", "Balance"})
	for _, a := range rows {
		values = append(values, []any{a.Name, a.Currency, a.Balance.StringFixed(2)})
	}
	return values
}

func budgetValues(rows []BudgetRow) [][]any {
	values := make([][]any, 0, len(rows)+1)
	values = append(values, []any{"Category", "Period", "Budget", "Spent", "Remaining", "Used %", "Over Budget"})
	for _, b := range rows {
		over := "no"
		if b.Over {
			over = "yes"
		}
		values = append(values, []any{
			b.Category,
			b.Period,
			b.Amount.StringFixed(2),
			b.Spent.StringFixed(2),
			b.Remaining.StringFixed(2),
			b.Percent.StringFixed(2),
			over,
		})
	}
	return values
}

// formattingRequests bolds the first row of every tab, freezes it on the
// tabular tabs and auto-sizes columns.
func formattingRequests(sheetIDs map[string]int64) []*sheets.Request {
	var requests []*sheets.Request
	for _, tab := range tabs {
		id, ok := sheetIDs[tab]
		if !ok {
			continue
		}

		requests = append(requests,
			&sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:       id,
						StartRowIndex: 0,
						EndRowIndex:   1,
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							TextFormat: &sheets.TextFormat{Bold: true},
						},
					},
					Fields: "userEnteredFormat.textFormat",
				},
			},
			&sheets.Request{
				AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
					Dimensions: &sheets.DimensionRange{
						SheetId:    id,
						Dimension:  "COLUMNS",
						StartIndex: 0,
						EndIndex:   7,
					},
				},
			},
		)

		if tab != TabSummary {
			requests = append(requests, &sheets.Request{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId:        id,
						GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			})
		}
	}
	return requests
}
