package ledger

import "github.com/Veraticus/pocket-ledger/internal/model"

// State is the complete in-memory ledger.
type State struct {
	Records    []model.Record
	Accounts   []model.Account
	Categories []model.Category
	Budgets    []model.Budget
}

// Clone returns a deep copy whose slices share no backing arrays with s.
func (s State) Clone() State {
	return State{
		Records:    cloneSlice(s.Records),
		Accounts:   cloneSlice(s.Accounts),
		Categories: cloneSlice(s.Categories),
		Budgets:    cloneSlice(s.Budgets),
	}
}

// Account returns the account with the given ID.
func (s State) Account(id string) (model.Account, bool) {
	for _, a := range s.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return model.Account{}, false
}

// Category returns the category with the given ID.
func (s State) Category(id string) (model.Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return model.Category{}, false
}

// CategoryNames maps category IDs to display names.
func (s State) CategoryNames() map[string]string {
	names := make(map[string]string, len(s.Categories))
	for _, c := range s.Categories {
		names[c.ID] = c.Name
	}
	return names
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
