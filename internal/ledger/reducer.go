package ledger

import "github.com/Veraticus/pocket-ledger/internal/model"

// Reduce returns the state that results from applying action to state.
//
// The input state is never modified: every list the action touches is rebuilt
// into a fresh slice, untouched lists are carried over as-is. Unknown actions,
// including a nil action, return state unchanged.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case AddRecord:
		state.Records = appendCopy(state.Records, a.Record)
	case AddAccount:
		state.Accounts = appendCopy(state.Accounts, a.Account)
	case UpdateAccount:
		state.Accounts = replaceAccount(state.Accounts, a.Account)
	case AddCategory:
		state.Categories = appendCopy(state.Categories, a.Category)
	case AddBudget:
		state.Budgets = appendCopy(state.Budgets, a.Budget)
	case DeleteCategory:
		state.Categories = filter(state.Categories, func(c model.Category) bool { return c.ID != a.CategoryID })
		state.Records = filter(state.Records, func(r model.Record) bool { return r.CategoryID != a.CategoryID })
		state.Budgets = filter(state.Budgets, func(b model.Budget) bool { return b.CategoryID != a.CategoryID })
	case UpdateRecords:
		state.Records = cloneSlice(a.Records)
	}
	return state
}

func appendCopy[T any](in []T, item T) []T {
	out := make([]T, len(in), len(in)+1)
	copy(out, in)
	return append(out, item)
}

func replaceAccount(accounts []model.Account, updated model.Account) []model.Account {
	out := make([]model.Account, len(accounts))
	for i, acct := range accounts {
		if acct.ID == updated.ID {
			out[i] = updated
			continue
		}
		out[i] = acct
	}
	return out
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, item := range in {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
