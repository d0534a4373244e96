package report

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/pocket-ledger/internal/model"
)

// CashFlowSummary contains income, expense and net flow for a date range.
type CashFlowSummary struct {
	DateRange          DateRange
	IncomeByCategory   map[string]CategorySummary
	ExpensesByCategory map[string]CategorySummary
	TotalIncome        decimal.Decimal
	TotalExpenses      decimal.Decimal
	NetCashFlow        decimal.Decimal
	Count              int
}

// CashFlow summarises the records dated inside r. names maps category IDs to
// display names and may be nil.
func CashFlow(records []model.Record, r DateRange, names map[string]string) CashFlowSummary {
	summary := CashFlowSummary{
		DateRange:          r,
		IncomeByCategory:   make(map[string]CategorySummary),
		ExpensesByCategory: make(map[string]CategorySummary),
	}

	for _, rec := range records {
		if !r.Contains(rec.Date) {
			continue
		}
		summary.Count++

		bucket := summary.IncomeByCategory
		if rec.IsExpense() {
			bucket = summary.ExpensesByCategory
			summary.TotalExpenses = summary.TotalExpenses.Add(rec.Amount)
		} else {
			summary.TotalIncome = summary.TotalIncome.Add(rec.Amount)
		}

		cs := bucket[rec.CategoryID]
		cs.CategoryID = rec.CategoryID
		cs.Name = names[rec.CategoryID]
		cs.Amount = cs.Amount.Add(rec.Amount)
		cs.Count++
		bucket[rec.CategoryID] = cs
	}

	summary.NetCashFlow = summary.TotalIncome.Sub(summary.TotalExpenses)
	return summary
}
