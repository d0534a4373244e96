package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/pocket-ledger/internal/ledger"
	"github.com/Veraticus/pocket-ledger/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

var _ service.StateStore = (*SQLiteStorage)(nil)

// SQLiteStorage persists ledger snapshots in a SQLite database.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dsn := dbPath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps :memory: databases alive and serialises writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// NewCheckpointManager creates a checkpoint manager for this storage instance.
func (s *SQLiteStorage) NewCheckpointManager() (*CheckpointManager, error) {
	if s.dbPath == ":memory:" {
		return nil, fmt.Errorf("checkpoints require a database file")
	}
	return NewCheckpointManager(s.db, s.dbPath)
}

// Load reads the full ledger. An empty database yields an empty state.
func (s *SQLiteStorage) Load(ctx context.Context) (ledger.State, error) {
	if err := validateContext(ctx); err != nil {
		return ledger.State{}, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return ledger.State{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var state ledger.State
	if state.Accounts, err = loadAccounts(ctx, tx); err != nil {
		return ledger.State{}, err
	}
	if state.Categories, err = loadCategories(ctx, tx); err != nil {
		return ledger.State{}, err
	}
	if state.Budgets, err = loadBudgets(ctx, tx); err != nil {
		return ledger.State{}, err
	}
	if state.Records, err = loadRecords(ctx, tx); err != nil {
		return ledger.State{}, err
	}

	slog.Debug("loaded ledger",
		"accounts", len(state.Accounts),
		"categories", len(state.Categories),
		"budgets", len(state.Budgets),
		"records", len(state.Records))

	return state, nil
}

// Save replaces the stored ledger with state in a single transaction.
// Slice order is preserved through a position column.
func (s *SQLiteStorage) Save(ctx context.Context, state ledger.State) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateState(state); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"records", "budgets", "categories", "accounts"} {
		// #nosec G202 - table names come from the fixed list above
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := saveAccounts(ctx, tx, state.Accounts); err != nil {
		return err
	}
	if err := saveCategories(ctx, tx, state.Categories); err != nil {
		return err
	}
	if err := saveBudgets(ctx, tx, state.Budgets); err != nil {
		return err
	}
	if err := saveRecords(ctx, tx, state.Records); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger: %w", err)
	}
	return nil
}

// insertAll prepares query once and executes it for each argument row.
func insertAll(ctx context.Context, tx *sql.Tx, what, query string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare %s insert: %w", what, err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			slog.Debug("failed to close statement", "error", closeErr)
		}
	}()

	for _, args := range rows {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to save %s: %w", what, err)
		}
	}
	return nil
}
