package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/pocket-ledger/internal/cli"
	"github.com/Veraticus/pocket-ledger/internal/common"
	"github.com/Veraticus/pocket-ledger/internal/report"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show balances, spending and cash flow",
		Example: `  ledger report balance
  ledger report spending
  ledger report cashflow --month 2024-03`,
	}

	cmd.AddCommand(balanceReportCmd())
	cmd.AddCommand(spendingReportCmd())
	cmd.AddCommand(cashFlowReportCmd())

	return cmd
}

func balanceReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Total balance across all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			accounts := a.ledger.State().Accounts
			byCurrency := report.BalanceByCurrency(accounts)

			fmt.Fprintf(out, "Total balance: %s\n", cli.FormatAmount(report.TotalBalance(accounts), ""))
			if len(byCurrency) > 1 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("Accounts hold more than one currency; the total adds them as-is."))
				for _, code := range sortedKeys(byCurrency) {
					fmt.Fprintf(out, "  %s\n", cli.FormatAmount(byCurrency[code], code))
				}
			}
			return nil
		},
	}
}

func spendingReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spending",
		Short: "All-time spending per expense category, largest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			breakdown := report.CategoryBreakdown(a.ledger.State())
			if len(breakdown) == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("No expenses recorded."))
				return nil
			}

			rows := make([][]string, 0, len(breakdown))
			for _, cs := range breakdown {
				rows = append(rows, []string{cs.Name, fmt.Sprintf("%d", cs.Count), cs.Amount.StringFixed(2)})
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"CATEGORY", "RECORDS", "SPENT"}, rows))
			return nil
		},
	}
}

func cashFlowReportCmd() *cobra.Command {
	var month, from, to string

	cmd := &cobra.Command{
		Use:   "cashflow",
		Short: "Income, expenses and net flow for a period",
		Long: `Summarise income and expenses per category for a period. The default period
is the current calendar month.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := resolveRange(month, from, to, time.Now())
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			state := a.ledger.State()
			summary := report.CashFlow(state.Records, r, state.CategoryNames())
			printCashFlow(cmd, summary)
			return nil
		},
	}

	addRangeFlags(cmd, &month, &from, &to)

	return cmd
}

func addRangeFlags(cmd *cobra.Command, month, from, to *string) {
	cmd.Flags().StringVarP(month, "month", "m", "", "Calendar month (YYYY-MM)")
	cmd.Flags().StringVar(from, "from", "", "Start date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(to, "to", "", "End date, inclusive (YYYY-MM-DD)")
	cmd.MarkFlagsMutuallyExclusive("month", "from")
	cmd.MarkFlagsMutuallyExclusive("month", "to")
}

// resolveRange turns the period flags into a half-open range. With no flags
// it is the calendar month containing now.
func resolveRange(month, from, to string, now time.Time) (report.DateRange, error) {
	if month != "" {
		t, err := time.ParseInLocation("2006-01", month, time.Local)
		if err != nil {
			return report.DateRange{}, common.NewUserError("invalid --month (want YYYY-MM)", err)
		}
		return report.MonthRange(t), nil
	}
	if from == "" && to == "" {
		return report.MonthRange(now), nil
	}

	// An open end runs through today; an open start begins at the first of
	// the end date's month.
	r := report.DateRange{End: report.StartOfDay(now).AddDate(0, 0, 1)}
	if to != "" {
		end, err := parseDate(to)
		if err != nil {
			return report.DateRange{}, common.NewUserError("invalid --to", err)
		}
		r.End = end.AddDate(0, 0, 1)
	}
	r.Start = report.MonthRange(r.End.AddDate(0, 0, -1)).Start
	if from != "" {
		start, err := parseDate(from)
		if err != nil {
			return report.DateRange{}, common.NewUserError("invalid --from", err)
		}
		r.Start = start
	}
	if !r.End.After(r.Start) {
		last := r.End.AddDate(0, 0, -1).Format(dateLayout)
		if to == "" {
			return report.DateRange{}, common.NewUserError(
				fmt.Sprintf("--from %s is after today (%s); pass --to to report on future dates", from, last), nil)
		}
		return report.DateRange{}, common.NewUserError(
			fmt.Sprintf("--to %s is before --from %s", last, r.Start.Format(dateLayout)), nil)
	}
	return r, nil
}

func printCashFlow(cmd *cobra.Command, summary report.CashFlowSummary) {
	out := cmd.OutOrStdout()

	last := summary.DateRange.End.AddDate(0, 0, -1)
	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Cash flow %s to %s",
		summary.DateRange.Start.Format(dateLayout), last.Format(dateLayout))))

	fmt.Fprintf(out, "Income:   %s\n", summary.TotalIncome.StringFixed(2))
	fmt.Fprintf(out, "Expenses: %s\n", summary.TotalExpenses.StringFixed(2))
	fmt.Fprintf(out, "Net:      %s\n", cli.FormatAmount(summary.NetCashFlow, ""))
	fmt.Fprintf(out, "Records:  %d\n", summary.Count)

	section := func(title string, rows []report.CategorySummary) {
		if len(rows) == 0 {
			return
		}
		table := make([][]string, 0, len(rows))
		for _, cs := range rows {
			table = append(table, []string{cs.Name, fmt.Sprintf("%d", cs.Count), cs.Amount.StringFixed(2)})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.TitleStyle.UnsetMargins().Render(title))
		fmt.Fprintln(out, cli.RenderTable([]string{"CATEGORY", "RECORDS", "AMOUNT"}, table))
	}
	section("Income", report.Sorted(summary.IncomeByCategory))
	section("Expenses", report.Sorted(summary.ExpensesByCategory))
}
