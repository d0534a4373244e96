package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/pocket-ledger/internal/model"
)

// Dates are stored as text so the recorded UTC offset survives a round trip.
const dateLayout = time.RFC3339Nano

func loadRecords(ctx context.Context, tx *sql.Tx) ([]model.Record, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, type, date, amount, currency, account_id, category_id, notes
		FROM records
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.Record
	for rows.Next() {
		var r model.Record
		var typ, date string
		var notes sql.NullString
		if err := rows.Scan(&r.ID, &typ, &date, &r.Amount, &r.Currency, &r.AccountID, &r.CategoryID, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Type = model.Direction(typ)
		r.Notes = notes.String
		if r.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("record %s has invalid date %q: %w", r.ID, date, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func saveRecords(ctx context.Context, tx *sql.Tx, records []model.Record) error {
	rows := make([][]any, len(records))
	for i, r := range records {
		var notes sql.NullString
		if r.Notes != "" {
			notes = sql.NullString{String: r.Notes, Valid: true}
		}
		rows[i] = []any{
			r.ID, string(r.Type), r.Date.Format(dateLayout), r.Amount.String(),
			r.Currency, r.AccountID, r.CategoryID, notes, i,
		}
	}
	return insertAll(ctx, tx, "record", `
		INSERT INTO records (id, type, date, amount, currency, account_id, category_id, notes, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rows)
}

// CountRecords returns the number of stored records.
func (s *SQLiteStorage) CountRecords(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}
