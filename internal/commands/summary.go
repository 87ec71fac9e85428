package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ledger/internal/core"
)

func newSummaryCommand(opts *options) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the monthly summary",
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

			summary, err := s.ledger.ComputeMonthlySummary(cmd.Context(), month)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default current month)")
	return cmd
}

func printSummary(out io.Writer, s core.MonthlySummary) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Month\t%s\t(prev %s, next %s)\n", s.Month, s.PrevMonth, s.NextMonth)
	fmt.Fprintf(w, "Transactions\t%d\n", len(s.Transactions))
	fmt.Fprintf(w, "Net total\t%.2f\n", s.MonthTotal)
	if s.Income != nil {
		fmt.Fprintf(w, "Income\t%.2f\n", *s.Income)
	} else {
		fmt.Fprintln(w, "Income\tnot set")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "BUDGET\tPLANNED\tACTUAL\tREMAINING")
	for _, line := range s.MetaSummary {
		fmt.Fprintf(w, "%s (%.0f%%)\t%.2f\t%.2f\t%.2f\n",
			line.Name, s.Targets.Percent(line.Name), line.Planned, line.Actual, line.Remaining)
	}
	if v := s.MetaTotals[core.Uncategorized]; v != 0 {
		fmt.Fprintf(w, "%s\t\t%.2f\t\n", core.Uncategorized, v)
	}

	if len(s.SpendByCategory) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "CATEGORY\tSPEND")
		for _, c := range s.SpendByCategory {
			fmt.Fprintf(w, "%s\t%.2f\n", c.Category, c.Amount)
		}
	}

	if len(s.Buckets) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Buckets\t%.2f of %.2f\n", s.BucketTotals.Current, s.BucketTotals.Goal)
	}
	if s.PayrollSummary.Count > 0 {
		fmt.Fprintf(w, "Payroll\t%d entries, net %.2f\n", s.PayrollSummary.Count, s.PayrollSummary.Net)
	}

	return w.Flush()
}
