package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/pocket-ledger/internal/cli"
	"github.com/Veraticus/pocket-ledger/internal/common"
	"github.com/Veraticus/pocket-ledger/internal/model"
	"github.com/Veraticus/pocket-ledger/internal/report"
	"github.com/Veraticus/pocket-ledger/internal/service"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Manage accounts",
		Long: `Open accounts and correct their balances.

Balances otherwise change only when records are added or imported.`,
		Example: `  ledger accounts add Checking --balance 1500 --currency USD
  ledger accounts set-balance Checking 1432.17
  ledger accounts list`,
	}

	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(addAccountCmd())
	cmd.AddCommand(setBalanceCmd())

	return cmd
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts and balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			state := a.ledger.State()
			if len(state.Accounts) == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("No accounts yet. Add one with: ledger accounts add <name>"))
				return nil
			}

			rows := make([][]string, 0, len(state.Accounts))
			for _, acct := range state.Accounts {
				rows = append(rows, []string{acct.Name, acct.Currency, cli.FormatAmount(acct.Balance, "")})
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"NAME", "CURRENCY", "BALANCE"}, rows))

			totals := report.BalanceByCurrency(state.Accounts)
			fmt.Fprintln(out)
			for _, code := range sortedKeys(totals) {
				fmt.Fprintf(out, "Total %s: %s\n", code, cli.FormatAmount(totals[code], ""))
			}
			return nil
		},
	}
}

func addAccountCmd() *cobra.Command {
	var (
		balance  string
		currency string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Open a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opening, err := model.ParseBalance(balance)
			if err != nil {
				return common.NewUserError("invalid --balance", err)
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if currency == "" {
				currency = a.currency
			}

			acct, err := a.ledger.AddAccount(cmd.Context(), service.AccountInput{
				Name:     args[0],
				Currency: currency,
				Balance:  opening,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added account %s (%s)", acct.Name, cli.FormatAmount(acct.Balance, acct.Currency))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&balance, "balance", "b", "0", "Opening balance (may be negative)")
	cmd.Flags().StringVarP(&currency, "currency", "c", "", "Currency code (default: ledger.default_currency)")

	return cmd
}

func setBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-balance <account> <amount>",
		Short: "Correct an account balance",
		Long: `Overwrite the balance of an account, for example after reconciling with a bank
statement. No record is created for the difference.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			balance, err := model.ParseBalance(args[1])
			if err != nil {
				return common.NewUserError("invalid amount", err)
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			acct, err := a.ledger.SetBalance(cmd.Context(), args[0], balance)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s balance is now %s", acct.Name, cli.FormatAmount(acct.Balance, acct.Currency))))
			return nil
		},
	}
}
