package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mheller/vsmoke/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern on the scenario name)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run every scenario file in a directory against the reference model,
checking trace and stream-output assertions.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  vsmoke test ./scenarios
  vsmoke test ./scenarios --filter "copy_reg_*"
  vsmoke test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	files, err := harness.Discover(scenariosDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	result := TestResult{Scenarios: []ScenarioResult{}}
	for _, file := range files {
		sr, skipped, err := runScenarioFile(file, opts.Filter, f)
		if err != nil {
			return err
		}
		if skipped {
			continue
		}
		result.Scenarios = append(result.Scenarios, sr)
		result.Total++
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if result.Total == 0 {
		if opts.Format == "json" {
			return f.JSON(result)
		}
		f.Textf("No scenarios found.\n")
		return nil
	}

	if opts.Format == "json" {
		if err := f.JSON(result); err != nil {
			return err
		}
	} else {
		f.Textf("\n%d/%d scenarios passed\n", result.Passed, result.Total)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// runScenarioFile loads and executes one scenario file. A load
// failure is reported as a failing scenario rather than aborting the
// whole sweep. Skipped means the filter excluded it.
func runScenarioFile(file, filter string, f *OutputFormatter) (ScenarioResult, bool, error) {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		if skip, ferr := filteredOut(name, filter); ferr != nil {
			return ScenarioResult{}, false, ferr
		} else if skip {
			return ScenarioResult{}, true, nil
		}
		f.Textf("FAIL %s\n  load error: %v\n", name, err)
		return ScenarioResult{
			Name:   name,
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}, false, nil
	}

	if skip, ferr := filteredOut(scenario.Name, filter); ferr != nil {
		return ScenarioResult{}, false, ferr
	} else if skip {
		return ScenarioResult{}, true, nil
	}

	result, err := harness.Run(scenario)
	if err != nil {
		f.Textf("FAIL %s\n  execution error: %v\n", scenario.Name, err)
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}, false, nil
	}

	if result.Pass {
		f.Textf("ok   %s\n", scenario.Name)
	} else {
		f.Textf("FAIL %s\n", scenario.Name)
		for _, msg := range result.Errors {
			f.Textf("  %s\n", msg)
		}
	}
	return ScenarioResult{
		Name:   scenario.Name,
		Pass:   result.Pass,
		Errors: result.Errors,
	}, false, nil
}

func filteredOut(name, filter string) (bool, error) {
	if filter == "" {
		return false, nil
	}
	matched, err := filepath.Match(filter, name)
	if err != nil {
		return false, WrapExitError(ExitCommandError, "invalid filter pattern", err)
	}
	return !matched, nil
}
