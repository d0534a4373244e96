// Package ledger holds the expense-tracker state and its single mutation funnel.
//
// Reduce is a pure, total function from (State, Action) to a new State. Store
// owns the one live State value, serialises Dispatch calls and hands out
// snapshots. Neither validates referential integrity: callers check their
// input before dispatching.
package ledger
