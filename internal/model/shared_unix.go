//go:build darwin || freebsd || linux

package model

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/mheller/vsmoke/internal/ports"
	"github.com/mheller/vsmoke/internal/stream"
)

// Shared is a simulation model loaded from a wrapper-built shared
// library. The wrapper exposes a flat C ABI over the Verilated model;
// Shared binds it with purego so no cgo is involved.
type Shared struct {
	lib    uintptr
	handle uintptr

	component string
	ifc       ports.Interface

	configFn  func() string
	createFn  func() uintptr
	destroyFn func(uintptr)
	resetFn   func(uintptr, int32)
	clocksFn  func(uintptr, int32)
	cycleFn   func(uintptr)
	evalFn    func(uintptr)
	finalFn   func(uintptr)
	workFn    func(uintptr, unsafe.Pointer, unsafe.Pointer, unsafe.Pointer, unsafe.Pointer)
	readRegFn func(uintptr, uint32) uint64

	finaled bool
	closed  bool
}

// Load opens the shared artifact at path, binds the wrapper ABI,
// reads the embedded config and constructs one model instance.
func Load(path string) (*Shared, error) {
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("failed to load model library: %w", err)
	}

	m := &Shared{lib: lib}
	purego.RegisterLibFunc(&m.configFn, lib, "model_config")
	purego.RegisterLibFunc(&m.createFn, lib, "model_create")
	purego.RegisterLibFunc(&m.destroyFn, lib, "model_destroy")
	purego.RegisterLibFunc(&m.resetFn, lib, "model_set_reset")
	purego.RegisterLibFunc(&m.clocksFn, lib, "model_set_clocks")
	purego.RegisterLibFunc(&m.cycleFn, lib, "model_reset")
	purego.RegisterLibFunc(&m.evalFn, lib, "model_eval")
	purego.RegisterLibFunc(&m.finalFn, lib, "model_final")
	purego.RegisterLibFunc(&m.workFn, lib, "model_work")
	purego.RegisterLibFunc(&m.readRegFn, lib, "model_read_register")

	component, ifc, err := parseSharedConfig(m.configFn())
	if err != nil {
		_ = purego.Dlclose(lib)
		return nil, err
	}
	m.component = component
	m.ifc = ifc

	m.handle = m.createFn()
	if m.handle == 0 {
		_ = purego.Dlclose(lib)
		return nil, fmt.Errorf("model_create returned a null model")
	}
	return m, nil
}

// Component returns the name of the design the library was built from.
func (m *Shared) Component() string { return m.component }

// Interface returns the model's grouped port map.
func (m *Shared) Interface() ports.Interface { return m.ifc }

// SetReset drives all of the model's reset inputs.
func (m *Shared) SetReset(v uint8) { m.resetFn(m.handle, int32(v)) }

// SetClocks drives all of the model's clock inputs.
func (m *Shared) SetClocks(v uint8) { m.clocksFn(m.handle, int32(v)) }

// ResetCycle runs the wrapper's canned reset sequence: reset asserted
// across four clock edges, then de-asserted, with stream buses held
// quiet.
func (m *Shared) ResetCycle() { m.cycleFn(m.handle) }

// Eval advances the model one step.
func (m *Shared) Eval() { m.evalFn(m.handle) }

// Final runs the Verilated model's end-of-simulation cleanup.
// Panics on a second call, as the underlying model would.
func (m *Shared) Final() {
	if m.finaled {
		panic("model finalized twice")
	}
	m.finaled = true
	m.finalFn(m.handle)
}

// ReadReg returns the current value of a named register's dout tap.
func (m *Shared) ReadReg(name string) (uint64, error) {
	for i, reg := range m.ifc.Registers {
		if reg.Name != name {
			continue
		}
		if !reg.DOut {
			return 0, fmt.Errorf("register %s has no dout tap", name)
		}
		return m.readRegFn(m.handle, uint32(i)), nil
	}
	return 0, fmt.Errorf("unknown register: %s", name)
}

// Work runs one work quantum through the wrapper. Buffer counts must
// match the model's bus counts.
func (m *Shared) Work(in, out []*stream.Buffer) (consumed, produced []int) {
	consumed = make([]int, len(in))
	produced = make([]int, len(out))
	if len(in) != len(m.ifc.Inputs) || len(out) != len(m.ifc.Outputs) {
		return consumed, produced
	}

	inSizes := make([]int64, len(in))
	inItems := make([]uintptr, len(in))
	for i, b := range in {
		inSizes[i] = int64(b.Items())
		if d := b.Data(); len(d) > 0 {
			inItems[i] = uintptr(unsafe.Pointer(&d[0]))
		}
	}
	outSizes := make([]int64, len(out))
	outItems := make([]uintptr, len(out))
	for i, b := range out {
		outSizes[i] = int64(b.Items())
		if d := b.Data(); len(d) > 0 {
			outItems[i] = uintptr(unsafe.Pointer(&d[0]))
		}
	}

	// The wrapper rewrites the size arrays in place with the counts
	// actually consumed and produced.
	m.workFn(m.handle,
		sliceBase(inSizes),
		sliceBase(outSizes),
		sliceBase(inItems),
		sliceBase(outItems),
	)
	runtime.KeepAlive(in)
	runtime.KeepAlive(out)

	for i := range consumed {
		consumed[i] = int(inSizes[i])
	}
	for i := range produced {
		produced[i] = int(outSizes[i])
		out[i].Truncate(produced[i])
	}
	return consumed, produced
}

// sliceBase returns the address of the first element, or nil for an
// empty slice.
func sliceBase[T any](s []T) unsafe.Pointer {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Pointer(&s[0])
}

// Close destroys the model instance and unloads the library.
func (m *Shared) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	if m.handle != 0 {
		m.destroyFn(m.handle)
		m.handle = 0
	}
	if err := purego.Dlclose(m.lib); err != nil {
		return fmt.Errorf("failed to unload model library: %w", err)
	}
	return nil
}
