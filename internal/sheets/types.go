package sheets

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/pocket-ledger/internal/ledger"
	"github.com/Veraticus/pocket-ledger/internal/report"
)

// Tab names, in the order they appear in the spreadsheet.
const (
	TabSummary  = "Summary"
	TabRecords  = "Records"
	TabAccounts = "Accounts"
	TabBudgets  = "Budgets"
)

// RecordRow represents a single row in the Records tab.
type RecordRow struct {
	Date     time.Time
	Type     string
	Account  string
	Category string
	Currency string
	Notes    string
	Amount   decimal.Decimal
}

// AccountRow represents a single row in the Accounts tab.
type AccountRow struct {
	Name     string
	Currency string
	Balance  decimal.Decimal
}

// BudgetRow represents a single row in the Budgets tab.
type BudgetRow struct {
	Category  string
	Period    string
	Amount    decimal.Decimal
	Spent     decimal.Decimal
	Remaining decimal.Decimal
	Percent   decimal.Decimal
	Over      bool
}

// Report holds everything written in one export.
type Report struct {
	Generated time.Time
	CashFlow  report.CashFlowSummary
	Records   []RecordRow
	Accounts  []AccountRow
	Budgets   []BudgetRow
}

// BuildReport assembles an export from a ledger snapshot. Records and cash
// flow are limited to r; accounts and budgets reflect now.
func BuildReport(state ledger.State, r report.DateRange, now time.Time) Report {
	names := state.CategoryNames()
	accountNames := make(map[string]string, len(state.Accounts))
	for _, a := range state.Accounts {
		accountNames[a.ID] = a.Name
	}

	out := Report{
		Generated: now,
		CashFlow:  report.CashFlow(state.Records, r, names),
	}

	for _, rec := range state.Records {
		if !r.Contains(rec.Date) {
			continue
		}
		out.Records = append(out.Records, RecordRow{
			Date:     rec.Date,
			Type:     string(rec.Type),
			Account:  accountNames[rec.AccountID],
			Category: names[rec.CategoryID],
			Currency: rec.Currency,
			Notes:    rec.Notes,
			Amount:   rec.SignedAmount(),
		})
	}
	sort.SliceStable(out.Records, func(i, j int) bool {
		return out.Records[i].Date.After(out.Records[j].Date)
	})

	for _, a := range state.Accounts {
		out.Accounts = append(out.Accounts, AccountRow{Name: a.Name, Currency: a.Currency, Balance: a.Balance})
	}

	for _, u := range report.AllBudgetUtilization(state, now) {
		out.Budgets = append(out.Budgets, BudgetRow{
			Category:  names[u.Budget.CategoryID],
			Period:    string(u.Budget.Period),
			Amount:    u.Budget.Amount,
			Spent:     u.Spent,
			Remaining: u.Remaining,
			Percent:   u.Percent,
			Over:      u.IsOverBudget,
		})
	}

	return out
}
