package commands

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ledger/internal/core"
)

func newBucketCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bucket",
		Short: "Inspect and fund savings buckets",
	}
	cmd.AddCommand(
		newBucketListCommand(opts),
		newBucketContributeCommand(opts),
		newBucketSpendCommand(opts),
	)
	return cmd
}

func newBucketListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List buckets with their meta and progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openLedger(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			views, err := s.ledger.ListBuckets(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tMETA\tCURRENT\tGOAL\tPROGRESS\tSTATUS")
			for _, v := range views {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%.2f\t%.1f%%\t%s\n",
					v.ID, v.Name, v.Category, v.Meta, v.Current, v.Goal, v.ProgressPct, v.Status)
			}
			return w.Flush()
		},
	}
}

func newBucketContributeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "contribute <id> <amount>",
		Short: "Add money to a bucket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := core.ParseAmount(args[1])
			if err != nil {
				return core.Invalid("amount", core.ErrInvalidAmount)
			}
			s, err := openLedger(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			b, err := s.ledger.ContributeBucket(cmd.Context(), id, amount)
			if err != nil {
				return err
			}
			printBucket(cmd.OutOrStdout(), b)
			return nil
		},
	}
}

func newBucketSpendCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "spend <id>",
		Short: "Mark a bucket spent: its balance resets and it is archived",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := openLedger(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			b, err := s.ledger.SpendBucket(cmd.Context(), id)
			if err != nil {
				return err
			}
			printBucket(cmd.OutOrStdout(), b)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func printBucket(out io.Writer, b core.Bucket) {
	fmt.Fprintf(out, "Bucket %d %s: %.2f of %.2f (%.1f%%), %s\n",
		b.ID, b.Name, b.Current, b.Goal, b.ProgressPct(), b.Status)
}
