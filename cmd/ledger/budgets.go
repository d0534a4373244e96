package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/pocket-ledger/internal/cli"
	"github.com/Veraticus/pocket-ledger/internal/common"
	"github.com/Veraticus/pocket-ledger/internal/model"
	"github.com/Veraticus/pocket-ledger/internal/report"
	"github.com/Veraticus/pocket-ledger/internal/service"
)

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budgets",
		Aliases: []string{"budget"},
		Short:   "Manage spending budgets",
		Long: `Set weekly or monthly spending ceilings on expense categories and see how much
of each the current period has used. Weekly periods start on Sunday.`,
		Example: `  ledger budgets add Groceries 400 --period monthly
  ledger budgets status`,
	}

	cmd.AddCommand(listBudgetsCmd())
	cmd.AddCommand(addBudgetCmd())
	cmd.AddCommand(budgetStatusCmd())

	return cmd
}

func listBudgetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List budgets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			state := a.ledger.State()
			if len(state.Budgets) == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("No budgets yet."))
				return nil
			}

			names := state.CategoryNames()
			rows := make([][]string, 0, len(state.Budgets))
			for _, b := range state.Budgets {
				rows = append(rows, []string{names[b.CategoryID], string(b.Period), b.Amount.StringFixed(2)})
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"CATEGORY", "PERIOD", "AMOUNT"}, rows))
			return nil
		},
	}
}

func addBudgetCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "add <category> <amount>",
		Short: "Add a budget for an expense category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := model.ParseAmount(args[1])
			if err != nil {
				return common.NewUserError("invalid amount", err)
			}
			p, err := model.ParseBudgetPeriod(period)
			if err != nil {
				return common.NewUserError("invalid --period", err)
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			budget, err := a.ledger.AddBudget(cmd.Context(), service.BudgetInput{
				CategoryID: args[0],
				Period:     p,
				Amount:     amount,
			})
			if err != nil {
				return err
			}

			cat, _ := a.ledger.State().Category(budget.CategoryID)
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s budget of %s for %s",
				budget.Period, budget.Amount.StringFixed(2), cat.Name)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", string(model.PeriodMonthly), "Budget period: weekly or monthly")

	return cmd
}

func budgetStatusCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show how much of each budget the current period has used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			if at != "" {
				day, err := parseDate(at)
				if err != nil {
					return common.NewUserError("invalid --at", err)
				}
				now = day
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			state := a.ledger.State()
			if len(state.Budgets) == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("No budgets yet."))
				return nil
			}

			names := state.CategoryNames()
			rows := make([][]string, 0, len(state.Budgets))
			for _, u := range report.AllBudgetUtilization(state, now) {
				status := cli.SuccessStyle.Render("ok")
				if u.IsOverBudget {
					status = cli.ErrorStyle.Render("over")
				}
				rows = append(rows, []string{
					names[u.Budget.CategoryID],
					string(u.Budget.Period),
					u.PeriodStart.Format(dateLayout),
					u.Spent.StringFixed(2),
					u.Budget.Amount.StringFixed(2),
					cli.FormatAmount(u.Remaining, ""),
					u.Percent.StringFixed(1) + "%",
					status,
				})
			}
			fmt.Fprintln(out, cli.RenderTable(
				[]string{"CATEGORY", "PERIOD", "SINCE", "SPENT", "BUDGET", "REMAINING", "USED", "STATUS"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Evaluate as of this date (YYYY-MM-DD) instead of today")

	return cmd
}
