// Package model provides simulation model implementations: a loaded
// Verilated shared library and a pure-Go reference model.
//
// A model is opaque external state. Callers drive its lifecycle
// (construct, reset, evaluate, finalize) and optionally move stream
// items through it; nothing about its internal logic is visible here.
package model

import (
	"github.com/mheller/vsmoke/internal/ports"
	"github.com/mheller/vsmoke/internal/stream"
)

// Model is the driveable surface of a simulation model.
type Model interface {
	// SetReset drives the model's reset inputs.
	SetReset(v uint8)
	// SetClocks drives the model's clock inputs.
	SetClocks(v uint8)
	// Eval advances the model's internal logic one step.
	Eval()
	// Final runs the model's end-of-simulation cleanup. Must be
	// called exactly once, after the last Eval.
	Final()
}

// Streamer is a model that moves AXI-stream items.
type Streamer interface {
	Model

	// Interface returns the model's grouped port map.
	Interface() ports.Interface

	// Work runs one work quantum: offer the input buffers, collect
	// into the output buffers, and report items consumed and produced
	// per bus. Output buffers bound how much the model may produce.
	Work(in, out []*stream.Buffer) (consumed, produced []int)
}
