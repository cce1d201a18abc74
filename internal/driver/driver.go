// Package driver implements the simulation smoke driver.
//
// The driver owns one simulation model for the duration of a run and
// takes it through the fixed lifecycle: construct, drive reset, a
// fixed number of evaluation steps, finalize. It performs no
// assertions and inspects no model outputs; a run over a constructed
// model always reports success. Anything stronger: waveforms, timing,
// assertion checking, belongs to the external simulation toolchain,
// not here.
//
// The loop is strictly sequential. There is no concurrency, no
// cancellation and no timeout; the model is exclusively owned by the
// driver until finalize.
package driver

import "fmt"

// DefaultCycles is the number of evaluation steps per run.
const DefaultCycles = 100

// ExitSuccess is the status a completed run reports.
const ExitSuccess = 0

// Model is the surface the driver needs from a simulation model.
// Both model.Shared and model.Register satisfy it.
type Model interface {
	SetReset(v uint8)
	Eval()
	Final()
}

// Factory constructs the model a run will own.
type Factory func() (Model, error)

// Observer receives lifecycle callbacks during a run. Implementations
// must not retain the model; they see events, not state.
type Observer interface {
	ModelConstructed()
	ResetDriven(value uint8)
	Evaluated(cycle int)
	Finalized()
}

type nopObserver struct{}

func (nopObserver) ModelConstructed()  {}
func (nopObserver) ResetDriven(uint8)  {}
func (nopObserver) Evaluated(int)      {}
func (nopObserver) Finalized()         {}

// Options configure a run.
type Options struct {
	// Cycles is the number of Eval steps; DefaultCycles when zero.
	Cycles int
	// Reset is the value driven on the reset line before the first
	// Eval. The zero value matches the harness convention: reset
	// de-asserted.
	Reset uint8
	// Observer, when set, receives lifecycle events.
	Observer Observer
}

// Driver owns a model factory and runs the smoke lifecycle.
type Driver struct {
	newModel Factory
	opts     Options
}

// New creates a driver over the given factory.
func New(f Factory, opts Options) *Driver {
	return &Driver{newModel: f, opts: opts}
}

// Run executes one smoke run:
//
//  1. Construct the model.
//  2. Drive the reset input once.
//  3. Eval exactly Cycles times, without inspecting anything.
//  4. Finalize exactly once, after the last Eval (guaranteed by defer
//     even if an observer panics).
//
// The only failure mode is model construction; after that the run is
// infallible and status is always ExitSuccess. When err is non-nil
// the status is meaningless.
func (d *Driver) Run() (status int, err error) {
	cycles := d.opts.Cycles
	if cycles <= 0 {
		cycles = DefaultCycles
	}
	obs := d.opts.Observer
	if obs == nil {
		obs = nopObserver{}
	}

	m, err := d.newModel()
	if err != nil {
		return ExitSuccess, fmt.Errorf("failed to construct model: %w", err)
	}
	obs.ModelConstructed()
	defer func() {
		m.Final()
		obs.Finalized()
	}()

	m.SetReset(d.opts.Reset)
	obs.ResetDriven(d.opts.Reset)

	for i := 0; i < cycles; i++ {
		m.Eval()
		obs.Evaluated(i)
	}

	return ExitSuccess, nil
}
