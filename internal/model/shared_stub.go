//go:build !(darwin || freebsd || linux)

package model

import (
	"fmt"

	"github.com/mheller/vsmoke/internal/ports"
	"github.com/mheller/vsmoke/internal/stream"
)

// Shared is unavailable without dlopen support; Verilator artifacts
// are only built on unix hosts anyway. Load always fails here, so the
// methods below are never reached.
type Shared struct{}

// Load always fails on platforms without dlopen.
func Load(path string) (*Shared, error) {
	return nil, fmt.Errorf("shared models are not supported on this platform")
}

func (m *Shared) Component() string          { panic("shared model unavailable") }
func (m *Shared) Interface() ports.Interface { panic("shared model unavailable") }
func (m *Shared) SetReset(v uint8)           { panic("shared model unavailable") }
func (m *Shared) SetClocks(v uint8)          { panic("shared model unavailable") }
func (m *Shared) ResetCycle()                { panic("shared model unavailable") }
func (m *Shared) Eval()                      { panic("shared model unavailable") }
func (m *Shared) Final()                     { panic("shared model unavailable") }
func (m *Shared) Close() error               { panic("shared model unavailable") }

func (m *Shared) Work(in, out []*stream.Buffer) (consumed, produced []int) {
	panic("shared model unavailable")
}

func (m *Shared) ReadReg(name string) (uint64, error) {
	panic("shared model unavailable")
}
