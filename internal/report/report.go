// Package report computes read-only views over a ledger state.
//
// Every function here is a plain filter/reduce pass over the in-memory lists;
// nothing is cached and nothing is written back to the state.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/pocket-ledger/internal/ledger"
	"github.com/Veraticus/pocket-ledger/internal/model"
)

// DateRange is a half-open interval [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// MonthRange returns the calendar month containing t, in t's location.
func MonthRange(t time.Time) DateRange {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return DateRange{Start: start, End: start.AddDate(0, 1, 0)}
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// CategorySummary aggregates the records of one category.
type CategorySummary struct {
	CategoryID string
	Name       string
	Amount     decimal.Decimal
	Count      int
}

// TotalBalance sums the balances of all accounts regardless of currency.
func TotalBalance(accounts []model.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// BalanceByCurrency sums account balances per currency code.
func BalanceByCurrency(accounts []model.Account) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, a := range accounts {
		totals[a.Currency] = totals[a.Currency].Add(a.Balance)
	}
	return totals
}

// CategorySpendTotals sums expense amounts per category ID. Income records are ignored.
func CategorySpendTotals(records []model.Record) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, r := range records {
		if !r.IsExpense() {
			continue
		}
		totals[r.CategoryID] = totals[r.CategoryID].Add(r.Amount)
	}
	return totals
}

// CategoryBreakdown joins expense totals with category names, largest first.
// Categories without spending are omitted.
func CategoryBreakdown(state ledger.State) []CategorySummary {
	names := state.CategoryNames()
	byID := make(map[string]*CategorySummary)
	for _, r := range state.Records {
		if !r.IsExpense() {
			continue
		}
		sum, ok := byID[r.CategoryID]
		if !ok {
			sum = &CategorySummary{CategoryID: r.CategoryID, Name: names[r.CategoryID]}
			byID[r.CategoryID] = sum
		}
		sum.Amount = sum.Amount.Add(r.Amount)
		sum.Count++
	}

	out := make([]CategorySummary, 0, len(byID))
	for _, sum := range byID {
		out = append(out, *sum)
	}
	sortSummaries(out)
	return out
}

// Sorted flattens a per-category map, largest amount first.
func Sorted(byCategory map[string]CategorySummary) []CategorySummary {
	out := make([]CategorySummary, 0, len(byCategory))
	for _, sum := range byCategory {
		out = append(out, sum)
	}
	sortSummaries(out)
	return out
}

func sortSummaries(out []CategorySummary) {
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].CategoryID < out[j].CategoryID
	})
}

// RecordsOnDate returns the records whose date falls on the same calendar day
// as day, comparing in day's location. Time of day is ignored.
func RecordsOnDate(records []model.Record, day time.Time) []model.Record {
	y, m, d := day.Date()
	var out []model.Record
	for _, r := range records {
		ry, rm, rd := r.Date.In(day.Location()).Date()
		if ry == y && rm == m && rd == d {
			out = append(out, r)
		}
	}
	return out
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
