package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mheller/vsmoke/internal/builder"
	"github.com/mheller/vsmoke/internal/config"
	"github.com/mheller/vsmoke/internal/hdl"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Params  []string // K=V parameter overrides
	Sources []string // explicit source files instead of a library lookup
	Force   bool
}

// BuildResult is what the build command reports.
type BuildResult struct {
	Component   string `json:"component"`
	Fingerprint string `json:"fingerprint"`
	LibPath     string `json:"lib_path"`
	Cached      bool   `json:"cached"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <component>",
		Short: "Build a component into a shared-library model",
		Long: `Verilate a component, generate its wrapper, and compile everything
into a shared library the run command can load.

Artifacts are cached by a fingerprint of the sources and parameters;
an unchanged component builds once.

Exit codes:
  0 - Build succeeded (or was already up to date)
  2 - Command error (component not found, toolchain failure)

Examples:
  vsmoke build axis_copy_reg
  vsmoke build axis_copy_reg --param DATA_WIDTH=64
  vsmoke build axis_copy_reg --source rtl/axis_copy_reg.v --force`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "parameter override (K=V, repeatable)")
	cmd.Flags().StringArrayVar(&opts.Sources, "source", nil, "source file (repeatable, overrides library lookup)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "rebuild even when the artifact is up to date")

	return cmd
}

func runBuild(opts *BuildOptions, component string, cmd *cobra.Command) error {
	cfg, err := config.LoadOrDefault(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	comp, err := resolveComponent(cfg, component, opts.Sources)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve component", err)
	}

	params, err := parseParams(opts.Params)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid parameter override", err)
	}

	bopts := cfg.BuilderOptions()
	bopts.Force = opts.Force
	b := builder.New(bopts)

	res, err := b.Build(cmd.Context(), builder.Job{
		Component: comp,
		Params:    params,
		BuildDir:  cfg.BuildDir,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "build failed", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	result := BuildResult{
		Component:   comp.Name,
		Fingerprint: res.Fingerprint,
		LibPath:     res.LibPath,
		Cached:      res.Cached,
	}
	if opts.Format == "json" {
		return f.JSON(result)
	}
	if res.Cached {
		f.Textf("%s up to date (%s)\n", comp.Name, res.Fingerprint)
	} else {
		f.Textf("built %s (%s)\n", comp.Name, res.Fingerprint)
	}
	f.Textf("  %s\n", res.LibPath)
	return nil
}

// resolveComponent finds the component either from explicit sources
// or from the configured library directory.
func resolveComponent(cfg config.Config, name string, sources []string) (hdl.Component, error) {
	if len(sources) > 0 {
		comp, err := hdl.FromSources(sources)
		if err != nil {
			return hdl.Component{}, err
		}
		// The flag names the top module; the file name only sets the
		// default.
		comp.Name = name
		return comp, nil
	}
	return hdl.Resolve(cfg.Library, name)
}

// parseParams converts K=V flags into parameter overrides. Values
// that read as integers or booleans become typed; everything else
// stays a string.
func parseParams(pairs []string) (hdl.Params, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := hdl.Params{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("parameter must be K=V, got %q", pair)
		}
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			params[key] = int(n)
		} else if b, err := strconv.ParseBool(value); err == nil {
			params[key] = b
		} else {
			params[key] = value
		}
	}
	return params, nil
}
