package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/pocket-ledger/internal/cli"
	"github.com/Veraticus/pocket-ledger/internal/common"
	"github.com/Veraticus/pocket-ledger/internal/config"
	"github.com/Veraticus/pocket-ledger/internal/model"
	"github.com/Veraticus/pocket-ledger/internal/ofx"
)

func importOFXCmd() *cobra.Command {
	var (
		account         string
		expenseCategory string
		incomeCategory  string
		bankAccount     string
		dryRun          bool
	)

	cmd := &cobra.Command{
		Use:   "import-ofx <files...>",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import bank or credit card statements exported as OFX or QFX (Quicken) files.

Debits become expense records and credits become income records, filed under the
given categories. Re-importing the same statement is safe: lines already in the
ledger are skipped. An automatic checkpoint is taken before anything is added.`,
		Example: `  # Import a single statement
  ledger records import-ofx ~/Downloads/chase_jan_2024.qfx --account Checking \
    --expense-category Uncategorized --income-category Deposits

  # Import every statement in a directory, previewing first
  ledger records import-ofx ~/Downloads/*.qfx --account Checking --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if account == "" {
				account = viper.GetString(config.KeyImportAccount)
			}
			if expenseCategory == "" {
				expenseCategory = viper.GetString(config.KeyImportExpense)
			}
			if incomeCategory == "" {
				incomeCategory = viper.GetString(config.KeyImportIncome)
			}
			if account == "" {
				return common.NewUserError("no target account: pass --account or set "+config.KeyImportAccount, nil)
			}

			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			return runImportOFX(cmd, importOptions{
				files:           files,
				account:         account,
				expenseCategory: expenseCategory,
				incomeCategory:  incomeCategory,
				bankAccount:     bankAccount,
				dryRun:          dryRun,
			})
		},
	}

	cmd.Flags().StringVarP(&account, "account", "a", "", "Ledger account the statement lines belong to")
	cmd.Flags().StringVar(&expenseCategory, "expense-category", "", "Category for debits")
	cmd.Flags().StringVar(&incomeCategory, "income-category", "", "Category for credits")
	cmd.Flags().StringVar(&bankAccount, "bank-account", "", "Only import lines of this bank account number")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview import without saving")

	return cmd
}

type importOptions struct {
	account         string
	expenseCategory string
	incomeCategory  string
	bankAccount     string
	files           []string
	dryRun          bool
}

// expandFiles resolves glob patterns; arguments that match nothing are kept
// only when they name an existing file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}

	if len(files) == 0 {
		return nil, common.NewUserError("no files found to import", common.ErrNoRecords)
	}
	return files, nil
}

func runImportOFX(cmd *cobra.Command, opts importOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	acct, err := a.ledger.ResolveAccount(opts.account)
	if err != nil {
		return err
	}
	target := ofx.Target{AccountID: acct.ID, Currency: acct.Currency}
	if opts.expenseCategory != "" {
		cat, err := a.ledger.ResolveCategory(opts.expenseCategory, model.DirectionExpense)
		if err != nil {
			return err
		}
		target.ExpenseCategoryID = cat.ID
	}
	if opts.incomeCategory != "" {
		cat, err := a.ledger.ResolveCategory(opts.incomeCategory, model.DirectionIncome)
		if err != nil {
			return err
		}
		target.IncomeCategoryID = cat.ID
	}

	slog.Info("Importing OFX files", "file_count", len(opts.files), "dry_run", opts.dryRun)

	parser := ofx.NewParser()
	progress := cli.NewProgress(cmd.ErrOrStderr(), len(opts.files), "Reading statements...")

	var records []model.Record
	perFile := make(map[string]int, len(opts.files))
	bankAccounts := make(map[string]bool)
	for _, path := range opts.files {
		txns, err := parseStatement(ctx, parser, path)
		if err == nil && (opts.dryRun || opts.bankAccount != "") {
			var numbers []string
			numbers, err = statementAccounts(ctx, parser, path)
			for _, n := range numbers {
				bankAccounts[n] = true
			}
		}
		progress.Step()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		if opts.bankAccount != "" {
			txns = filterBankAccount(txns, opts.bankAccount)
		}
		converted := ofx.ToRecords(txns, target)
		perFile[filepath.Base(path)] = len(converted)
		records = append(records, converted...)
	}
	progress.Done()

	if opts.bankAccount != "" && !bankAccounts[opts.bankAccount] {
		return common.NewUserError(fmt.Sprintf("bank account %s is not in the statements (found: %s)",
			opts.bankAccount, strings.Join(sortedKeys(bankAccounts), ", ")), common.ErrNoRecords)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No transactions found in any file."))
		return nil
	}

	if err := checkTargets(records, target); err != nil {
		return err
	}

	fmt.Fprintln(out, cli.FormatTitle("Statement summary"))
	for _, name := range sortedKeys(perFile) {
		fmt.Fprintf(out, "  %s %s: %d transactions\n", cli.FolderIcon, name, perFile[name])
	}

	if opts.dryRun {
		fmt.Fprintf(out, "  Bank accounts: %s\n", strings.Join(sortedKeys(bankAccounts), ", "))
		printImportPreview(cmd, records)
		fmt.Fprintln(out, cli.FormatInfo("Dry run complete - no data saved."))
		return nil
	}

	summary, err := a.ledger.ImportRecords(ctx, records)
	if err != nil {
		if errors.Is(err, common.ErrNoRecords) {
			fmt.Fprintln(out, cli.FormatWarning("Nothing to import."))
			return nil
		}
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d records (%d already in the ledger)", summary.Added, summary.Duplicates)))
	if change, ok := summary.BalanceChanges[acct.ID]; ok {
		updated, _ := a.ledger.State().Account(acct.ID)
		fmt.Fprintf(out, "  %s balance: %s (%s)\n", updated.Name,
			cli.FormatAmount(updated.Balance, updated.Currency), signed(change))
	}
	return nil
}

func parseStatement(ctx context.Context, parser *ofx.Parser, path string) ([]ofx.Transaction, error) {
	f, err := os.Open(path) // #nosec G304 -- user-supplied statement file
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parser.ParseFile(ctx, f)
}

// statementAccounts lists the bank account numbers a statement file covers.
func statementAccounts(ctx context.Context, parser *ofx.Parser, path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- user-supplied statement file
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parser.GetAccounts(ctx, f)
}

func filterBankAccount(txns []ofx.Transaction, bankAccount string) []ofx.Transaction {
	kept := txns[:0:0]
	for _, tx := range txns {
		if tx.BankAccount == bankAccount {
			kept = append(kept, tx)
		}
	}
	return kept
}

// checkTargets fails early, with a hint, when a statement contains debits or
// credits but no category was given for them.
func checkTargets(records []model.Record, target ofx.Target) error {
	for _, r := range records {
		if r.IsExpense() && target.ExpenseCategoryID == "" {
			return common.NewUserError("statement contains debits: pass --expense-category or set "+config.KeyImportExpense, nil)
		}
		if !r.IsExpense() && target.IncomeCategoryID == "" {
			return common.NewUserError("statement contains credits: pass --income-category or set "+config.KeyImportIncome, nil)
		}
	}
	return nil
}

func printImportPreview(cmd *cobra.Command, records []model.Record) {
	out := cmd.OutOrStdout()

	sorted := make([]model.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	net := decimal.Zero
	for _, r := range sorted {
		net = net.Add(r.SignedAmount())
	}

	fmt.Fprintf(out, "\n%d records from %s to %s, net %s\n\n",
		len(sorted),
		sorted[0].Date.Format(dateLayout),
		sorted[len(sorted)-1].Date.Format(dateLayout),
		signed(net))

	rows := make([][]string, 0, min(len(sorted), 10))
	for i, r := range sorted {
		if i >= 10 {
			break
		}
		rows = append(rows, []string{r.Date.Format(dateLayout), string(r.Type), cli.FormatAmount(r.SignedAmount(), r.Currency), r.Notes})
	}
	fmt.Fprintln(out, cli.RenderTable([]string{"DATE", "TYPE", "AMOUNT", "NOTES"}, rows))
	if len(sorted) > 10 {
		fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("... and %d more", len(sorted)-10)))
	}
}

func signed(d decimal.Decimal) string {
	if d.IsNegative() {
		return d.StringFixed(2)
	}
	return "+" + d.StringFixed(2)
}
