package cli

import (
	"github.com/spf13/cobra"

	"github.com/mheller/vsmoke/internal/driver"
	"github.com/mheller/vsmoke/internal/model"
	"github.com/mheller/vsmoke/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Lib       string
	Reference bool
	Width     int
	Cycles    int
	Reset     int
	DB        string
}

// RunResult is what the run command reports.
type RunResult struct {
	Component string `json:"component"`
	Cycles    int    `json:"cycles"`
	Status    int    `json:"status"`
	RunID     string `json:"run_id,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive a model through the smoke lifecycle",
		Long: `Construct a simulation model, drive its reset input once, evaluate
it for a fixed number of cycles, and finalize it. The run inspects
nothing; over a constructed model it always succeeds with status 0.

The model is either a shared library from the build command (--lib)
or the built-in reference register (--reference).

Exit codes:
  0 - Run completed
  2 - Command error (model failed to load or construct)

Examples:
  vsmoke run --lib build/verilator-<fp>/libaxis_copy_reg-<fp>.so
  vsmoke run --reference --width 8
  vsmoke run --reference --cycles 1000 --db runs.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmoke(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Lib, "lib", "", "shared-library model to load")
	cmd.Flags().BoolVar(&opts.Reference, "reference", false, "run the built-in reference register model")
	cmd.Flags().IntVar(&opts.Width, "width", 8, "data width of the reference model in bits")
	cmd.Flags().IntVar(&opts.Cycles, "cycles", 0, "evaluation cycles (default 100)")
	cmd.Flags().IntVar(&opts.Reset, "reset", 0, "value driven on the reset line (0 or 1)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "record the trace into this SQLite database")

	return cmd
}

func runSmoke(opts *RunOptions, cmd *cobra.Command) error {
	if (opts.Lib == "") == !opts.Reference {
		return NewExitError(ExitCommandError, "exactly one of --lib or --reference is required")
	}
	if opts.Reset != 0 && opts.Reset != 1 {
		return NewExitError(ExitCommandError, "reset must be 0 or 1")
	}

	var (
		m         driver.Model
		component string
	)
	if opts.Lib != "" {
		sh, err := model.Load(opts.Lib)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load model", err)
		}
		defer sh.Close()
		m = sh
		component = sh.Component()
	} else {
		reg, err := model.NewRegister(opts.Width)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create reference model", err)
		}
		m = reg
		component = "register"
	}

	cycles := opts.Cycles
	if cycles <= 0 {
		cycles = driver.DefaultCycles
	}

	var (
		obs   driver.Observer
		runID string
	)
	if opts.DB != "" {
		st, err := trace.Open(opts.DB)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open trace database", err)
		}
		defer st.Close()

		rec, err := trace.NewRecorder(cmd.Context(), st, trace.UUIDv7Source{}, trace.Run{
			Component: component,
			Cycles:    cycles,
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to begin trace run", err)
		}
		obs = rec
		runID = rec.RunID()
	}

	d := driver.New(
		func() (driver.Model, error) { return m, nil },
		driver.Options{
			Cycles:   cycles,
			Reset:    uint8(opts.Reset),
			Observer: obs,
		},
	)
	status, err := d.Run()
	if err != nil {
		return WrapExitError(ExitCommandError, "run failed", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	result := RunResult{
		Component: component,
		Cycles:    cycles,
		Status:    status,
		RunID:     runID,
	}
	if opts.Format == "json" {
		return f.JSON(result)
	}
	f.Textf("%s: %d cycles, status %d\n", component, cycles, status)
	if runID != "" {
		f.Textf("  trace run %s\n", runID)
	}
	return nil
}
