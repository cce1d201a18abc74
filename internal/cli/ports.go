package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mheller/vsmoke/internal/canon"
	"github.com/mheller/vsmoke/internal/ports"
)

// PortsOptions holds flags for the ports command.
type PortsOptions struct {
	*RootOptions
}

// NewPortsCommand creates the ports command.
func NewPortsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PortsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ports <header>",
		Short: "Show the port map of a verilated header",
		Long: `Parse the VL_IN/VL_OUT declarations of a Verilator-generated header
and print the grouped interface: clocks, resets, and stream buses
with their packed widths.

Exit codes:
  0 - Header parsed
  2 - Command error (missing file, unclassifiable port)

Examples:
  vsmoke ports build/verilator-<fp>/axis_copy_reg.h
  vsmoke ports build/verilator-<fp>/axis_copy_reg.h --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPorts(opts, args[0], cmd)
		},
	}
	return cmd
}

func runPorts(opts *PortsOptions, path string, cmd *cobra.Command) error {
	f, err := os.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open header", err)
	}
	defer f.Close()

	all, err := ports.ParseHeader(f)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to parse header", err)
	}
	ifc, err := ports.Group(all)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to group ports", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		data, err := canon.Marshal(ifc.Canonical())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to encode interface", err)
		}
		fmt.Fprintln(out.Writer, string(data))
		return nil
	}

	for _, c := range ifc.Clocks {
		out.Textf("clock  %s\n", c)
	}
	for _, r := range ifc.Resets {
		out.Textf("reset  %s\n", r)
	}
	for _, r := range ifc.ResetNs {
		out.Textf("resetn %s\n", r)
	}
	for _, b := range ifc.Inputs {
		out.Textf("in     %s\n", describeBus(b))
	}
	for _, b := range ifc.Outputs {
		out.Textf("out    %s\n", describeBus(b))
	}
	for _, r := range ifc.Registers {
		out.Textf("reg    %s\n", describeRegister(r))
	}
	return nil
}

func describeBus(b ports.Bus) string {
	desc := fmt.Sprintf("%s tdata=%d", b.Name, b.TData)
	if b.TUser > 0 {
		desc += fmt.Sprintf(" tuser=%d", b.TUser)
	}
	if b.TLast > 0 {
		desc += fmt.Sprintf(" tlast=%d", b.TLast)
	}
	return fmt.Sprintf("%s (%d words/item)", desc, b.Words())
}

func describeRegister(r ports.Register) string {
	var taps []string
	if r.DOut {
		taps = append(taps, "dout")
	}
	if r.DIn {
		taps = append(taps, "din")
	}
	if r.DSet {
		taps = append(taps, "dset")
	}
	return fmt.Sprintf("%s width=%d taps=%s", r.Name, r.Width, strings.Join(taps, ","))
}
