// Package builder turns a Verilog component into a loadable shared
// library: verilate, parse the generated header, generate the C++
// wrapper, make.
//
// Artifacts are cached under the component's build directory in an
// object directory named by the build fingerprint, so parameter
// changes and source edits always land in fresh directories and an
// up-to-date artifact is never rebuilt. Builds of the same object
// directory are serialized.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mheller/vsmoke/internal/hdl"
	"github.com/mheller/vsmoke/internal/ports"
	"github.com/mheller/vsmoke/internal/wrapper"
)

// Options configure the external toolchain.
type Options struct {
	// Verilator is the verilator binary; "verilator" when empty.
	Verilator string
	// Make is the make binary; "make" when empty.
	Make string
	// Jobs is make's parallelism; 4 when zero.
	Jobs int
	// ExtraFlags are appended to the verilator command line.
	ExtraFlags []string
	// Force rebuilds even when the cached artifact is fresh.
	Force bool
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

func (o Options) verilator() string {
	if o.Verilator == "" {
		return "verilator"
	}
	return o.Verilator
}

func (o Options) make() string {
	if o.Make == "" {
		return "make"
	}
	return o.Make
}

func (o Options) jobs() int {
	if o.Jobs <= 0 {
		return 4
	}
	return o.Jobs
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Job names one build: a component with parameter overrides.
type Job struct {
	Component hdl.Component
	Params    hdl.Params
	// BuildDir holds the object directories; defaults to
	// <component dir>/build.
	BuildDir string
}

func (j Job) buildDir() string {
	if j.BuildDir != "" {
		return j.BuildDir
	}
	return filepath.Join(j.Component.Dir, "build")
}

// Result describes a finished build.
type Result struct {
	Fingerprint string
	ObjDir      string
	Header      string
	LibPath     string
	Interface   ports.Interface
	// Cached is true when the artifact was already up to date and
	// nothing ran.
	Cached bool
}

// Builder runs build jobs.
type Builder struct {
	opts   Options
	flight *flight
}

// New creates a builder.
func New(opts Options) *Builder {
	return &Builder{opts: opts, flight: newFlight()}
}

// Build runs the full pipeline for a job, or returns the cached
// artifact when it is newer than every source.
func (b *Builder) Build(ctx context.Context, job Job) (*Result, error) {
	fp, err := hdl.Fingerprint(job.Component, job.Params)
	if err != nil {
		return nil, err
	}

	buildDir := job.buildDir()
	objDir := filepath.Join(buildDir, hdl.ObjDir(fp))
	libName := hdl.LibName(job.Component.Name, fp)

	res := &Result{
		Fingerprint: fp,
		ObjDir:      objDir,
		Header:      filepath.Join(objDir, job.Component.Name+".h"),
		LibPath:     filepath.Join(objDir, libName),
	}

	err = b.flight.do(objDir, func() error {
		if !b.opts.Force && fresh(res.LibPath, job.Component.Sources) {
			res.Cached = true
			ifc, err := parseHeaderFile(res.Header)
			if err != nil {
				return err
			}
			res.Interface = ifc
			return nil
		}

		if err := cleanDir(objDir); err != nil {
			return err
		}
		if err := b.runVerilator(ctx, job, buildDir, objDir, libName); err != nil {
			return err
		}

		ifc, err := parseHeaderFile(res.Header)
		if err != nil {
			return err
		}
		res.Interface = ifc

		shim, err := wrapper.Generate(wrapper.Spec{
			Component: job.Component.Name,
			Params:    job.Params,
			Interface: ifc,
		})
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(objDir, "wrapper.cpp"), shim, 0o644); err != nil {
			return fmt.Errorf("failed to write wrapper: %w", err)
		}

		if err := b.runMake(ctx, job, objDir); err != nil {
			return err
		}
		if _, err := os.Stat(res.LibPath); err != nil {
			return fmt.Errorf("build produced no artifact: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// VerilatorArgs is the verilator command line for a job. Exposed for
// inspection and tests; the flag order is stable.
func VerilatorArgs(job Job, objDir, libName string, extra []string) []string {
	args := []string{
		"-cc",
		"--exe",
		"--threads", "1",
		"-CFLAGS", "-fPIC",
		"-LDFLAGS", "-shared",
		"-Wno-lint",
		"--prefix", job.Component.Name,
		"--Mdir", objDir,
		"-o", libName,
	}
	args = append(args, extra...)
	args = append(args, job.Params.Flags()...)
	args = append(args, job.Component.Sources...)
	args = append(args, "wrapper.cpp")
	return args
}

func (b *Builder) runVerilator(ctx context.Context, job Job, buildDir, objDir, libName string) error {
	args := VerilatorArgs(job, objDir, libName, b.opts.ExtraFlags)
	return b.runCommand(ctx, buildDir, b.opts.verilator(), args)
}

func (b *Builder) runMake(ctx context.Context, job Job, objDir string) error {
	args := []string{
		fmt.Sprintf("-j%d", b.opts.jobs()),
		"-f", job.Component.Name + ".mk",
	}
	return b.runCommand(ctx, objDir, b.opts.make(), args)
}

func (b *Builder) runCommand(ctx context.Context, dir, bin string, args []string) error {
	b.opts.logger().Info("running build command",
		"dir", dir,
		"command", bin+" "+strings.Join(args, " "),
	)
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w\n%s", bin, err, out)
	}
	return nil
}

// fresh reports whether the artifact exists and is at least as new as
// every source.
func fresh(libPath string, sources []string) bool {
	info, err := os.Stat(libPath)
	if err != nil {
		return false
	}
	var newest time.Time
	for _, src := range sources {
		si, err := os.Stat(src)
		if err != nil {
			return false
		}
		if si.ModTime().After(newest) {
			newest = si.ModTime()
		}
	}
	return !info.ModTime().Before(newest)
}

// cleanDir empties and recreates an object directory.
func cleanDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clean %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}

func parseHeaderFile(path string) (ports.Interface, error) {
	f, err := os.Open(path)
	if err != nil {
		return ports.Interface{}, fmt.Errorf("failed to open generated header: %w", err)
	}
	defer f.Close()

	all, err := ports.ParseHeader(f)
	if err != nil {
		return ports.Interface{}, err
	}
	return ports.Group(all)
}
