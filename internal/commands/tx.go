package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ledger/internal/core"
	"ledger/internal/services"
)

func newTxCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Record, list and search transactions",
	}
	cmd.AddCommand(newTxAddCommand(opts), newTxListCommand(opts), newTxSearchCommand(opts))
	return cmd
}

func newTxAddCommand(opts *options) *cobra.Command {
	var (
		category    string
		amount      float64
		description string
		date        string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense; the amount is always stored as negative",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseDate(date)
			if err != nil {
				return err
			}
			s, err := openLedger(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			tx, err := addTransaction(cmd, s.ledger, at, category, amount, description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded transaction %d: %s %.2f on %s\n",
				tx.ID, tx.Category, tx.Amount, tx.Date.Format(core.TimestampLayout))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "transaction category")
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount; the sign is ignored")
	cmd.Flags().StringVar(&description, "description", "", "free-text description")
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD or \"YYYY-MM-DD HH:MM:SS\" (default now)")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func addTransaction(cmd *cobra.Command, l *services.Ledger, at time.Time, category string, amount float64, description string) (core.Transaction, error) {
	if at.IsZero() {
		return l.AddTransaction(cmd.Context(), category, amount, description)
	}
	return l.AddTransactionAt(cmd.Context(), at, category, amount, description)
}

// currentMonth is the default --month. Stored dates are UTC.
func currentMonth() string {
	return core.CurrentMonth(time.Now().UTC())
}

// parseDate accepts a full timestamp or a bare date at midnight UTC. An empty
// string is the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(core.TimestampLayout, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return time.Time{}, core.Invalid("date", core.ErrInvalidDate)
	}
	return t, nil
}

func newTxListCommand(opts *options) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the transactions of a month, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if month == "" {
				month = currentMonth()
			}
			s, err := openLedger(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			txs, err := s.ledger.ListTransactions(cmd.Context(), month)
			if err != nil {
				return err
			}
			return printTransactions(cmd.OutOrStdout(), txs)
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default current month)")
	return cmd
}

func newTxSearchCommand(opts *options) *cobra.Command {
	var (
		f      core.TransactionFilter
		amount string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find transactions by description, category or amount, newest first",
		Long: "Find transactions by description, category or amount, newest first.\n" +
			"Text matches are case-insensitive substrings. A transaction matches when\n" +
			"any given criterion does, or every one with --all. No criteria lists everything.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("amount") {
				v, err := core.ParseAmount(amount)
				if err != nil {
					return core.Invalid("amount", err)
				}
				f.Amount = &v
			}
			s, err := openLedger(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			txs, err := s.ledger.SearchTransactions(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printTransactions(cmd.OutOrStdout(), txs)
		},
	}

	cmd.Flags().StringVar(&f.Description, "description", "", "description substring")
	cmd.Flags().StringVar(&f.Category, "category", "", "category substring")
	cmd.Flags().StringVar(&amount, "amount", "", "amount; the sign is ignored")
	cmd.Flags().BoolVar(&f.MatchAll, "all", false, "require every given criterion to match")
	return cmd
}

func printTransactions(out io.Writer, txs []core.Transaction) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	for _, tx := range txs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\n",
			tx.ID, tx.Date.Format(core.TimestampLayout), tx.Category, tx.Amount, tx.Description)
	}
	return w.Flush()
}
