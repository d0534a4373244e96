package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/pocket-ledger/internal/ledger"
	"github.com/Veraticus/pocket-ledger/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Utilization describes how much of a budget the current period has used.
type Utilization struct {
	PeriodStart  time.Time
	Budget       model.Budget
	Spent        decimal.Decimal
	Remaining    decimal.Decimal // negative once over budget
	Percent      decimal.Decimal // Spent / Amount * 100, rounded to 2 places
	IsOverBudget bool
}

// PeriodStart returns the start of the budget window containing now, in now's location.
// Weekly windows start on the most recent Sunday (today, if today is Sunday);
// monthly windows start on the first of the month.
func PeriodStart(period model.BudgetPeriod, now time.Time) time.Time {
	today := StartOfDay(now)
	switch period {
	case model.PeriodWeekly:
		return today.AddDate(0, 0, -int(today.Weekday()))
	default:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	}
}

// BudgetUtilization sums the expense records of the budget's category dated on
// or after the current period start and compares them with the budget amount.
func BudgetUtilization(budget model.Budget, records []model.Record, now time.Time) Utilization {
	start := PeriodStart(budget.Period, now)

	spent := decimal.Zero
	for _, r := range records {
		if !r.IsExpense() || r.CategoryID != budget.CategoryID {
			continue
		}
		if r.Date.Before(start) {
			continue
		}
		spent = spent.Add(r.Amount)
	}

	percent := decimal.Zero
	if budget.Amount.IsPositive() {
		percent = spent.Div(budget.Amount).Mul(hundred).Round(2)
	}

	return Utilization{
		Budget:       budget,
		PeriodStart:  start,
		Spent:        spent,
		Remaining:    budget.Amount.Sub(spent),
		Percent:      percent,
		IsOverBudget: spent.GreaterThan(budget.Amount),
	}
}

// AllBudgetUtilization computes utilization for every budget, in budget order.
func AllBudgetUtilization(state ledger.State, now time.Time) []Utilization {
	out := make([]Utilization, 0, len(state.Budgets))
	for _, b := range state.Budgets {
		out = append(out, BudgetUtilization(b, state.Records, now))
	}
	return out
}
