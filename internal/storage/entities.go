package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/pocket-ledger/internal/model"
)

func loadCategories(ctx context.Context, tx *sql.Tx) ([]model.Category, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name, type FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.Type = model.Direction(typ)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func saveCategories(ctx context.Context, tx *sql.Tx, categories []model.Category) error {
	rows := make([][]any, len(categories))
	for i, c := range categories {
		rows[i] = []any{c.ID, c.Name, string(c.Type), i}
	}
	return insertAll(ctx, tx, "category",
		`INSERT INTO categories (id, name, type, position) VALUES (?, ?, ?, ?)`, rows)
}

func loadAccounts(ctx context.Context, tx *sql.Tx) ([]model.Account, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name, currency, balance FROM accounts ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Currency, &a.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func saveAccounts(ctx context.Context, tx *sql.Tx, accounts []model.Account) error {
	rows := make([][]any, len(accounts))
	for i, a := range accounts {
		rows[i] = []any{a.ID, a.Name, a.Currency, a.Balance.String(), i}
	}
	return insertAll(ctx, tx, "account",
		`INSERT INTO accounts (id, name, currency, balance, position) VALUES (?, ?, ?, ?, ?)`, rows)
}

func loadBudgets(ctx context.Context, tx *sql.Tx) ([]model.Budget, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, category_id, amount, period FROM budgets ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		var b model.Budget
		var amount decimal.Decimal
		var period string
		if err := rows.Scan(&b.ID, &b.CategoryID, &amount, &period); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		b.Amount = amount
		b.Period = model.BudgetPeriod(period)
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func saveBudgets(ctx context.Context, tx *sql.Tx, budgets []model.Budget) error {
	rows := make([][]any, len(budgets))
	for i, b := range budgets {
		rows[i] = []any{b.ID, b.CategoryID, b.Amount.String(), string(b.Period), i}
	}
	return insertAll(ctx, tx, "budget",
		`INSERT INTO budgets (id, category_id, amount, period, position) VALUES (?, ?, ?, ?, ?)`, rows)
}
