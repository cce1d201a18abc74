// Package harness executes conformance scenarios against the pure-Go
// reference register model.
//
// A scenario is a YAML file validated against an embedded CUE schema.
// Running one has two phases. The stream phase pushes the scenario's
// input items through the register stage and captures the output bus.
// The smoke phase hands the same model to the driver, which takes it
// through the full lifecycle while an in-memory recorder collects the
// trace. Assertions then run over the trace and the captured output,
// and golden files pin the canonical snapshot of both.
//
// A fixed run token and a logical clock keep every execution of the
// same scenario byte-identical, which is what makes the golden files
// meaningful.
package harness

import (
	"fmt"

	"github.com/mheller/vsmoke/internal/driver"
	"github.com/mheller/vsmoke/internal/model"
	"github.com/mheller/vsmoke/internal/stream"
	"github.com/mheller/vsmoke/internal/trace"
)

// Run executes a scenario and returns the result, with assertion
// failures collected in Result.Errors. The returned error covers
// execution problems only, never assertion outcomes.
func Run(scenario *Scenario) (*Result, error) {
	reg, err := model.NewRegister(scenario.DataWidth)
	if err != nil {
		return nil, fmt.Errorf("failed to create reference model: %w", err)
	}

	result := NewResult(scenario)

	// Stream phase. This must happen before the smoke phase because
	// the driver finalizes the model and a finalized stage refuses to
	// transfer.
	if scenario.Input != nil {
		reg.SetReset(scenario.Reset)
		output, err := pushItems(reg, scenario.Input.Items)
		if err != nil {
			return nil, err
		}
		result.Output = output
	}

	// Smoke phase: the driver owns the model from here on.
	rec := trace.NewMemory()
	d := driver.New(
		func() (driver.Model, error) { return reg, nil },
		driver.Options{
			Cycles:   scenario.Cycles,
			Reset:    scenario.Reset,
			Observer: rec,
		},
	)
	status, err := d.Run()
	if err != nil {
		return nil, fmt.Errorf("run failed: %w", err)
	}
	result.Status = status
	result.Trace = rec.Events()

	for _, msg := range evaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// pushItems offers items on the model's input bus and returns what
// came out on the output bus. One word per item since the reference
// model caps the width at 32 bits.
func pushItems(reg *model.Register, items []int64) ([]int64, error) {
	ifc := reg.Interface()
	in := stream.NewEmpty(ifc.Inputs[0].Words())
	for _, v := range items {
		if err := in.Append(int32(v)); err != nil {
			return nil, fmt.Errorf("failed to stage input item: %w", err)
		}
	}
	out := stream.NewBuffer(ifc.Outputs[0].Words(), len(items))

	_, produced := reg.Work([]*stream.Buffer{in}, []*stream.Buffer{out})

	output := make([]int64, produced[0])
	for i := range output {
		output[i] = int64(out.Item(i)[0])
	}
	return output, nil
}
