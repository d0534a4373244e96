package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/pocket-ledger/internal/common"
	"github.com/Veraticus/pocket-ledger/internal/config"
	"github.com/Veraticus/pocket-ledger/internal/ledger"
	"github.com/Veraticus/pocket-ledger/internal/model"
	"github.com/Veraticus/pocket-ledger/internal/service"
	"github.com/Veraticus/pocket-ledger/internal/storage"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

const dateLayout = "2006-01-02"

// app bundles everything a command needs to read or change the ledger.
type app struct {
	storage     *storage.SQLiteStorage
	checkpoints *storage.CheckpointManager
	ledger      *service.LedgerService
	currency    string
}

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath(viper.GetViper()))
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// openApp loads the persisted ledger into a fresh store and wires the
// service that validates and saves every change.
func openApp(ctx context.Context) (*app, error) {
	currency, err := config.DefaultCurrencyCode(viper.GetViper())
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}

	state, err := store.Load(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := &app{
		storage:  store,
		ledger:   service.NewLedgerService(ledger.NewStore(state), store),
		currency: currency,
	}

	cm, err := store.NewCheckpointManager()
	if err != nil {
		slog.Warn("checkpoints unavailable", "error", err)
		return a, nil
	}
	cm.SetKeepAuto(viper.GetInt(config.KeyKeepCheckpoints))
	a.checkpoints = cm
	if viper.GetBool(config.KeyAutoCheckpoint) {
		a.ledger.WithCheckpointer(cm)
	}

	return a, nil
}

func (a *app) Close() {
	if err := a.storage.Close(); err != nil {
		slog.Warn("failed to close database", "error", err)
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// parseTypeFlag reads an optional --type value; "" means any direction.
func parseTypeFlag(s string) (model.Direction, error) {
	if s == "" {
		return "", nil
	}
	d, err := model.ParseDirection(s)
	if err != nil {
		return "", common.NewUserError("invalid --type", err)
	}
	return d, nil
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t time.Time, now time.Time) string {
	duration := now.Sub(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		return plural(int(duration.Minutes()), "minute") + " ago"
	case duration < 24*time.Hour:
		return plural(int(duration.Hours()), "hour") + " ago"
	case duration < 7*24*time.Hour:
		return plural(int(duration.Hours()/24), "day") + " ago"
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
