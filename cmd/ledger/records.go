package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/pocket-ledger/internal/cli"
	"github.com/Veraticus/pocket-ledger/internal/common"
	"github.com/Veraticus/pocket-ledger/internal/ledger"
	"github.com/Veraticus/pocket-ledger/internal/model"
	"github.com/Veraticus/pocket-ledger/internal/report"
	"github.com/Veraticus/pocket-ledger/internal/service"
)

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "records",
		Aliases: []string{"record", "rec"},
		Short:   "Add, list and import income and expense records",
		Example: `  ledger records add expense 12.50 --account Checking --category Groceries --notes "market"
  ledger records add income 3000 --account Checking --category Salary --date 2024-03-01
  ledger records on 2024-03-01
  ledger records import-ofx ~/Downloads/*.qfx --account Checking`,
	}

	cmd.AddCommand(listRecordsCmd())
	cmd.AddCommand(addRecordCmd())
	cmd.AddCommand(recordsOnCmd())
	cmd.AddCommand(importOFXCmd())

	return cmd
}

func listRecordsCmd() *cobra.Command {
	var (
		from, to          string
		account, category string
		typeName          string
		limit             int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := parseDate(from)
			if err != nil {
				return common.NewUserError("invalid --from", err)
			}
			end, err := parseDate(to)
			if err != nil {
				return common.NewUserError("invalid --to", err)
			}
			want, err := parseTypeFlag(typeName)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var accountID, categoryID string
			if account != "" {
				acct, err := a.ledger.ResolveAccount(account)
				if err != nil {
					return err
				}
				accountID = acct.ID
			}
			if category != "" {
				cat, err := a.ledger.ResolveCategory(category, want)
				if err != nil {
					return err
				}
				if want != "" && cat.Type != want {
					return common.NewUserError(fmt.Sprintf("%s is an %s category", cat.Name, cat.Type), service.ErrCategoryNotFound)
				}
				categoryID = cat.ID
			}

			state := a.ledger.State()
			var records []model.Record
			for _, r := range state.Records {
				switch {
				case !start.IsZero() && r.Date.Before(start):
				case !end.IsZero() && !r.Date.Before(end.AddDate(0, 0, 1)):
				case accountID != "" && r.AccountID != accountID:
				case categoryID != "" && r.CategoryID != categoryID:
				case want != "" && r.Type != want:
				default:
					records = append(records, r)
				}
			}
			sort.SliceStable(records, func(i, j int) bool {
				return records[i].Date.After(records[j].Date)
			})
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}

			printRecords(cmd, state, records)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Only records on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Only records on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&account, "account", "a", "", "Only records of this account")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only records of this category")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Only expense or income records; also picks between same-named categories")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of records to show (0 for all)")

	return cmd
}

func addRecordCmd() *cobra.Command {
	var (
		account, category string
		date, notes       string
		currency          string
	)

	cmd := &cobra.Command{
		Use:   "add <expense|income> <amount>",
		Short: "Record a transaction and update the account balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			direction, err := model.ParseDirection(args[0])
			if err != nil {
				return common.NewUserError("invalid record type", err)
			}
			amount, err := model.ParseAmount(args[1])
			if err != nil {
				return common.NewUserError("invalid amount", err)
			}
			when, err := parseDate(date)
			if err != nil {
				return common.NewUserError("invalid --date", err)
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.ledger.AddRecord(cmd.Context(), service.RecordInput{
				Type:       direction,
				Amount:     amount,
				AccountID:  account,
				CategoryID: category,
				Date:       when,
				Currency:   currency,
				Notes:      notes,
			})
			if err != nil {
				return err
			}

			acct, _ := a.ledger.State().Account(rec.AccountID)
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s of %s; %s balance is now %s",
				rec.Type, cli.FormatAmount(rec.Amount, rec.Currency), acct.Name, cli.FormatAmount(acct.Balance, acct.Currency))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&account, "account", "a", "", "Account name or ID")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category name or ID")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date (YYYY-MM-DD, default: now)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-text notes")
	cmd.Flags().StringVar(&currency, "currency", "", "Currency code (default: the account's)")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func recordsOnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "on <YYYY-MM-DD>",
		Short: "List the records of one day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDate(args[0])
			if err != nil {
				return common.NewUserError("invalid date", err)
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			state := a.ledger.State()
			printRecords(cmd, state, report.RecordsOnDate(state.Records, day))
			return nil
		},
	}
}

func printRecords(cmd *cobra.Command, state ledger.State, records []model.Record) {
	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, cli.SubtleStyle.Render("No records found."))
		return
	}

	names := state.CategoryNames()
	accounts := make(map[string]string, len(state.Accounts))
	for _, acct := range state.Accounts {
		accounts[acct.ID] = acct.Name
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Date.In(time.Local).Format(dateLayout),
			string(r.Type),
			cli.FormatAmount(r.SignedAmount(), r.Currency),
			accounts[r.AccountID],
			names[r.CategoryID],
			r.Notes,
		})
	}
	fmt.Fprintln(out, cli.RenderTable([]string{"DATE", "TYPE", "AMOUNT", "ACCOUNT", "CATEGORY", "NOTES"}, rows))
}
