package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mheller/vsmoke/internal/trace"
)

// TraceOptions holds flags for the trace commands.
type TraceOptions struct {
	*RootOptions
	DB string
}

// NewTraceCommand creates the trace command group.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded runs",
		Long: `Inspect the trace database the run command writes with --db.

Examples:
  vsmoke trace runs --db runs.db
  vsmoke trace events <run-id> --db runs.db`,
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "trace database (required)")

	cmd.AddCommand(newTraceRunsCommand(opts))
	cmd.AddCommand(newTraceEventsCommand(opts))

	return cmd
}

func newTraceRunsCommand(opts *TraceOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "runs",
		Short:         "List recorded runs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openTraceDB(opts)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.Runs(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list runs", err)
			}

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if opts.Format == "json" {
				return f.JSON(runs)
			}
			if len(runs) == 0 {
				f.Textf("No runs recorded.\n")
				return nil
			}
			for _, r := range runs {
				f.Textf("%s  %s  %d cycles  %s\n", r.ID, r.Component, r.Cycles, r.CreatedAt)
			}
			return nil
		},
	}
}

func newTraceEventsCommand(opts *TraceOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "events <run-id>",
		Short:         "Dump the events of one run",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openTraceDB(opts)
			if err != nil {
				return err
			}
			defer st.Close()

			events, err := st.Events(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read events", err)
			}
			if len(events) == 0 {
				return NewExitError(ExitCommandError, fmt.Sprintf("no events for run %s", args[0]))
			}

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if opts.Format == "json" {
				return f.JSON(events)
			}
			for _, e := range events {
				switch e.Kind {
				case trace.KindEval:
					f.Textf("[%d] eval cycle=%d\n", e.Seq, e.Cycle)
				case trace.KindReset:
					f.Textf("[%d] reset value=%d\n", e.Seq, e.Value)
				default:
					f.Textf("[%d] %s\n", e.Seq, e.Kind)
				}
			}
			return nil
		},
	}
}

func openTraceDB(opts *TraceOptions) (*trace.Store, error) {
	if opts.DB == "" {
		return nil, NewExitError(ExitCommandError, "--db is required")
	}
	if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("trace database not found: %s", opts.DB))
	}
	st, err := trace.Open(opts.DB)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open trace database", err)
	}
	return st, nil
}
