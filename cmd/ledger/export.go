package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/pocket-ledger/internal/cli"
	"github.com/Veraticus/pocket-ledger/internal/common"
	"github.com/Veraticus/pocket-ledger/internal/config"
	"github.com/Veraticus/pocket-ledger/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger to Google Sheets",
		Long: `Write the records, accounts, budgets and a cash flow summary of a period to a
Google spreadsheet.

Authenticate with either a service account key (sheets.service_account_path) or
OAuth client credentials (sheets.client_id, sheets.client_secret) plus a token
obtained once with 'ledger export auth'.`,
		Example: `  ledger export auth
  ledger export sheets --month 2024-03`,
	}

	cmd.AddCommand(exportSheetsCmd())
	cmd.AddCommand(exportAuthCmd())

	return cmd
}

func exportSheetsCmd() *cobra.Command {
	var month, from, to, spreadsheetID string

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Export a period to Google Sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			now := time.Now()

			r, err := resolveRange(month, from, to, now)
			if err != nil {
				return err
			}

			sheetsConfig := config.LoadSheetsConfig(viper.GetViper())
			if spreadsheetID != "" {
				sheetsConfig.SpreadsheetID = spreadsheetID
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
			if err != nil {
				return common.NewUserError("Google Sheets is not configured", err)
			}

			rep := sheets.BuildReport(a.ledger.State(), r, now)
			id, err := writer.Write(ctx, rep)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Exported %d records", len(rep.Records))))
			fmt.Fprintf(out, "  https://docs.google.com/spreadsheets/d/%s\n", id)
			if sheetsConfig.SpreadsheetID == "" {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Set %s: %s to keep exporting to this spreadsheet.", config.KeySheetsSpreadsheetID, id)))
			}
			return nil
		},
	}

	addRangeFlags(cmd, &month, &from, &to)
	cmd.Flags().StringVar(&spreadsheetID, "spreadsheet-id", "", "Spreadsheet to write to (default: sheets.spreadsheet_id, or a new one)")

	return cmd
}

func exportAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Sheets access with OAuth",
		Long: `Open the Google consent flow in a browser and store the resulting token in
sheets.token_file. Requires sheets.client_id and sheets.client_secret.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sheetsConfig := config.LoadSheetsConfig(viper.GetViper())
			if sheetsConfig.ServiceAccountPath != "" {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("A service account is configured; no interactive authorization needed."))
				return nil
			}

			_, err := sheets.AuthenticateOAuth2Interactive(cmd.Context(), sheets.OAuth2Config{
				ClientID:     sheetsConfig.ClientID,
				ClientSecret: sheetsConfig.ClientSecret,
				TokenFile:    sheetsConfig.TokenFile,
			})
			if err != nil {
				return common.NewUserError("authorization failed", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Google Sheets access authorized; token saved to "+sheetsConfig.TokenFile))
			return nil
		},
	}
}
