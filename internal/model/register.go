package model

import (
	"fmt"

	"github.com/mheller/vsmoke/internal/ports"
	"github.com/mheller/vsmoke/internal/stream"
)

// Register is a pure-Go reference model: a one-deep register stage
// that copies its input bus to its output bus, truncating data to the
// configured width. It mirrors the axis_copy_reg design the original
// toolchain shipped as its example component, and lets the harness
// exercise the full driver and trace path without a Verilator install.
type Register struct {
	width  int
	mask   int32
	reset  uint8
	clocks uint8

	// skid register
	full bool
	held int32

	evals  int
	closed bool
}

// NewRegister creates a reference model with the given data width in
// bits (1 to 32, one packed word per item).
func NewRegister(width int) (*Register, error) {
	if width < 1 || width > 32 {
		return nil, fmt.Errorf("data width must be between 1 and 32, got %d", width)
	}
	var mask int32
	if width == 32 {
		mask = -1
	} else {
		mask = int32(1<<width) - 1
	}
	return &Register{width: width, mask: mask}, nil
}

// Interface reports the copy-reg port map: one clock, one reset, one
// input bus and one output bus of the configured width.
func (m *Register) Interface() ports.Interface {
	return ports.Interface{
		Clocks: []string{"clock"},
		Resets: []string{"reset"},
		Inputs: []ports.Bus{
			{Name: "s_axis", TData: m.width},
		},
		Outputs: []ports.Bus{
			{Name: "m_axis", TData: m.width},
		},
	}
}

// SetReset drives the reset input. Asserting reset drops the held item.
func (m *Register) SetReset(v uint8) {
	m.reset = v
	if v != 0 {
		m.full = false
		m.held = 0
	}
}

// SetClocks drives the clock input.
func (m *Register) SetClocks(v uint8) {
	m.clocks = v
}

// Eval advances the model one step. With no pending stream transfer
// this settles combinational state only; the step count is kept so
// tests and traces can observe the evaluation history.
func (m *Register) Eval() {
	m.evals++
}

// Evals returns the number of Eval calls so far.
func (m *Register) Evals() int { return m.evals }

// Final releases the model. Further lifecycle calls panic, which is
// how a finalized Verilated model behaves.
func (m *Register) Final() {
	if m.closed {
		panic("model finalized twice")
	}
	m.closed = true
}

// Closed reports whether Final has run.
func (m *Register) Closed() bool { return m.closed }

// Work copies items from the single input bus to the single output
// bus through the register stage.
//
// Data is truncated to the configured width. Production is bounded by
// the output buffer's item count; the stage consumes exactly as many
// items as it produces, so a full copy requires an output buffer at
// least as large as the input. While reset is asserted the stage is
// held and nothing transfers.
func (m *Register) Work(in, out []*stream.Buffer) (consumed, produced []int) {
	consumed = make([]int, len(in))
	produced = make([]int, len(out))
	if len(in) != 1 || len(out) != 1 {
		return consumed, produced
	}
	if m.reset != 0 || m.closed {
		return consumed, produced
	}

	src, dst := in[0], out[0]
	n := 0
	for i := 0; i < src.Items() && n < dst.Items(); i++ {
		// One clock edge per item through the register stage.
		m.held = src.Item(i)[0] & m.mask
		m.full = true
		m.Eval()
		dst.Item(n)[0] = m.held
		m.full = false
		n++
	}

	consumed[0] = n
	produced[0] = n
	dst.Truncate(n)
	return consumed, produced
}
