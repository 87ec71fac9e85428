package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSubsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subs",
		Short: "Manage recurring subscriptions",
	}
	cmd.AddCommand(newSubsApplyCommand(opts), newSubsListCommand(opts))
	return cmd
}

func newSubsApplyCommand(opts *options) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Materialize active subscriptions as transactions for a month",
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

			n, err := s.ledger.ApplySubscriptions(cmd.Context(), month)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d subscription(s) for %s\n", n, month)
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default current month)")
	return cmd
}

func newSubsListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openLedger(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			subs, err := s.ledger.ListSubscriptions(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tAMOUNT\tDAY\tACTIVE")
			for _, sub := range subs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%d\t%t\n",
					sub.ID, sub.Name, sub.Category, sub.Amount, sub.DayOfMonth, sub.Active)
			}
			return w.Flush()
		},
	}
}
