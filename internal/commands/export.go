package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ledger/internal/sheets"
	gsheet "ledger/internal/sheets/google"
	"ledger/internal/sheets/memory"
	"ledger/internal/worker"
)

func newSheetsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Google Sheets export",
	}
	cmd.AddCommand(newSheetsExportCommand(opts))
	return cmd
}

func newSheetsExportCommand(opts *options) *cobra.Command {
	var (
		month  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Append every transaction of a month to the configured sheet",
		Long: "Append every transaction of a month to the configured sheet, oldest first.\n" +
			"Without GOOGLE_SPREADSHEET_ID, or with --dry-run, the rows are printed instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if month == "" {
				month = currentMonth()
			}
			s, err := openLedger(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			var (
				appender sheets.TransactionAppender
				rows     *memory.Store
			)
			if dryRun || !opts.cfg.SheetsEnabled() {
				rows = memory.New()
				appender = rows
			} else {
				client, err := gsheet.New(cmd.Context(), gsheet.Options{
					SpreadsheetID:   opts.cfg.GoogleSpreadsheetID,
					SheetName:       opts.cfg.GoogleSheetName,
					CredentialsJSON: opts.cfg.GoogleServiceAccountJSON,
					CredentialsFile: opts.cfg.GoogleServiceAccountFile,
				})
				if err != nil {
					return err
				}
				appender = client
			}

			n, err := worker.NewExportWorker(s.ledger, appender).ExportMonth(cmd.Context(), month)
			if rows != nil {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				for _, row := range rows.Rows() {
					fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", row...)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}
			if err != nil {
				return fmt.Errorf("exported %d row(s) before failing: %w", n, err)
			}

			verb := "Exported"
			if rows != nil {
				verb = "Would export"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d transaction(s) for %s\n", verb, n, month)
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default current month)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print rows instead of writing to the sheet")
	return cmd
}
