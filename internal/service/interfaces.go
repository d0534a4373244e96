// Package service is the validating caller in front of the ledger reducer.
//
// The reducer trusts its input, so every check a form would perform (non-empty
// names, positive amounts, existing and type-compatible references) happens
// here before anything is dispatched.
package service

import (
	"context"

	"github.com/Veraticus/pocket-ledger/internal/ledger"
)

// StateStore persists complete ledger snapshots.
type StateStore interface {
	Load(ctx context.Context) (ledger.State, error)
	Save(ctx context.Context, state ledger.State) error
}

// Checkpointer takes a restorable backup before destructive operations.
type Checkpointer interface {
	AutoCheckpoint(ctx context.Context, prefix string) error
}
