package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledger/internal/amqp"
	"ledger/internal/config"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/storage"
)

// Version is set at build time.
var Version = "dev"

// options are the persistent flags shared by every subcommand.
type options struct {
	cfg      *config.Config
	dbPath   string
	logLevel string
	noEvents bool
}

// NewRootCommand builds the ledgerctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{cfg: config.Load()}

	rootCmd := &cobra.Command{
		Use:     "ledgerctl",
		Short:   "Operate the personal finance ledger from the terminal",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetDefault(log.New(log.Config{
				Level:     log.ParseLevel(opts.logLevel),
				Component: log.ComponentCLI,
				Format:    opts.cfg.LogFormat,
				Output:    cmd.ErrOrStderr(),
			}))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dbPath, "db", opts.cfg.SQLiteDBPath, "SQLite database path")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.noEvents, "no-events", false, "do not publish ledger events even when AMQP_URL is set")

	rootCmd.AddCommand(
		newSummaryCommand(opts),
		newSubsCommand(opts),
		newTxCommand(opts),
		newBucketCommand(opts),
		newSheetsCommand(opts),
	)

	return rootCmd
}

// session is an open ledger plus whatever it holds open.
type session struct {
	ledger *services.Ledger
	repo   *storage.SQLiteRepository
	events *amqp.Client
}

func (s *session) Close() {
	if s.events != nil {
		_ = s.events.Close()
	}
	_ = s.repo.Close()
}

// openLedger opens the store at --db. When AMQP is configured the ledger
// publishes events like the server does; a broker that cannot be reached is
// logged and skipped so the command still runs.
func openLedger(opts *options) (*session, error) {
	repo, err := storage.NewSQLiteRepository(opts.dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", opts.dbPath, err)
	}
	s := &session{repo: repo}

	var events services.EventPublisher
	if opts.cfg.EventsEnabled() && !opts.noEvents {
		client, err := amqp.NewClient(opts.cfg.AMQPURL, opts.cfg.AMQPExchange, opts.cfg.AMQPQueue)
		if err != nil {
			log.Default().WithComponent(log.ComponentAMQP).Warn("Events disabled, broker unreachable", log.FieldError, err)
		} else {
			s.events = client
			events = client
		}
	}

	s.ledger = services.NewLedger(repo, events)
	return s, nil
}
