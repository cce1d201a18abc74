package hdl

import (
	"fmt"
	"sort"

	"github.com/mheller/vsmoke/internal/canon"
)

// Params holds Verilog parameter overrides for a build, keyed by
// parameter name. Values are integers, booleans or strings.
type Params map[string]any

// Canonical returns the deterministic JSON encoding of the parameter
// set. Used for fingerprinting and for the config blob embedded in the
// generated wrapper.
func (p Params) Canonical() ([]byte, error) {
	m := make(map[string]any, len(p))
	for k, v := range p {
		m[k] = v
	}
	return canon.Marshal(m)
}

// Flags renders the parameter set as verilator -G overrides, sorted by
// name so the generated command line is stable.
func (p Params) Flags() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	flags := make([]string, 0, len(p))
	for _, k := range keys {
		flags = append(flags, fmt.Sprintf("-G%s=%v", k, p[k]))
	}
	return flags
}
