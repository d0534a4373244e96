package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Veraticus/pocket-ledger/internal/cli"
	"github.com/Veraticus/pocket-ledger/internal/common"
	"github.com/Veraticus/pocket-ledger/internal/model"
	"github.com/Veraticus/pocket-ledger/internal/service"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage categories",
		Long: `Create, list and delete the expense and income categories records are filed under.

Deleting a category also deletes every record and budget that uses it.`,
		Example: `  ledger categories add Groceries --type expense
  ledger categories add Salary --type income
  ledger categories delete Groceries --yes`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	var typeFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			want, err := parseTypeFlag(typeFilter)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			state := a.ledger.State()
			counts := make(map[string]int, len(state.Categories))
			for _, r := range state.Records {
				counts[r.CategoryID]++
			}

			cats := make([]model.Category, 0, len(state.Categories))
			for _, c := range state.Categories {
				if want == "" || c.Type == want {
					cats = append(cats, c)
				}
			}
			sort.SliceStable(cats, func(i, j int) bool {
				if cats[i].Type != cats[j].Type {
					return cats[i].Type < cats[j].Type
				}
				return cats[i].Name < cats[j].Name
			})

			out := cmd.OutOrStdout()
			if len(cats) == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("No categories found."))
				return nil
			}

			rows := make([][]string, 0, len(cats))
			for _, c := range cats {
				rows = append(rows, []string{c.Name, string(c.Type), fmt.Sprintf("%d", counts[c.ID])})
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"NAME", "TYPE", "RECORDS"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFilter, "type", "t", "", "Only show expense or income categories")

	return cmd
}

func addCategoryCmd() *cobra.Command {
	var typeName string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			direction, err := model.ParseDirection(typeName)
			if err != nil {
				return common.NewUserError("invalid --type", err)
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			cat, err := a.ledger.AddCategory(cmd.Context(), service.CategoryInput{Name: args[0], Type: direction})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s category %s", cat.Type, cat.Name)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", string(model.DirectionExpense), "Category type: expense or income")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	var (
		yes      bool
		typeName string
	)

	cmd := &cobra.Command{
		Use:   "delete <category>",
		Short: "Delete a category with its records and budgets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			want, err := parseTypeFlag(typeName)
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			cat, err := a.ledger.ResolveCategory(args[0], want)
			if err != nil {
				return err
			}
			if want != "" && cat.Type != want {
				return common.NewUserError(fmt.Sprintf("%s is an %s category", cat.Name, cat.Type), service.ErrCategoryNotFound)
			}

			out := cmd.OutOrStdout()
			if !yes {
				state := a.ledger.State()
				records := 0
				for _, r := range state.Records {
					if r.CategoryID == cat.ID {
						records++
					}
				}
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Deleting %s category %s also deletes %d record(s) and its budgets.", cat.Type, cat.Name, records)))

				ok, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), out, "Continue?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, cli.SubtleStyle.Render("Deletion cancelled."))
					return nil
				}
			}

			summary, err := a.ledger.DeleteCategory(ctx, cat.ID, cat.Type)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted %s category %s (%d records, %d budgets)",
				summary.Category.Type, summary.Category.Name, summary.Records, summary.Budgets)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Category type, required when the name exists as both expense and income")

	return cmd
}
