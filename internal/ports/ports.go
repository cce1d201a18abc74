// Package ports extracts the port map of a Verilated model from its
// generated C++ header.
//
// Verilator emits one VL_IN/VL_OUT declaration per top-level port. The
// harness only understands four kinds of signal, classified by name
// suffix: clocks (clk/clock), resets (rst/reset, plus active-low
// rstn/resetn), AXI-stream bus members (tvalid/tready/tdata/tuser/
// tlast), and register taps (dout/din/dset). Any other port name is
// rejected so that a misdeclared design fails at parse time rather
// than silently dropping a signal.
package ports

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Dir is the port direction as seen from the model.
type Dir uint8

const (
	In Dir = iota + 1
	Out
)

func (d Dir) String() string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	default:
		return "invalid"
	}
}

// Role classifies a port within the harness's signal model.
type Role uint8

const (
	Clock Role = iota + 1
	Reset
	ResetN
	TValid
	TReady
	TData
	TUser
	TLast
	DOut
	DIn
	DSet
)

func (r Role) String() string {
	switch r {
	case Clock:
		return "clock"
	case Reset:
		return "reset"
	case ResetN:
		return "resetn"
	case TValid:
		return "tvalid"
	case TReady:
		return "tready"
	case TData:
		return "tdata"
	case TUser:
		return "tuser"
	case TLast:
		return "tlast"
	case DOut:
		return "dout"
	case DIn:
		return "din"
	case DSet:
		return "dset"
	default:
		return "invalid"
	}
}

// Port is a single classified top-level port.
type Port struct {
	Dir   Dir
	Name  string
	Width int
	// Bus is the AXI-stream bus or register prefix; empty for clocks
	// and resets.
	Bus  string
	Role Role
}

// portLine matches Verilator port declarations such as
// VL_IN8(reset,0,0) or VL_OUT(m_axis_tdata,31,0). The width suffix is
// absent for 32-bit ports in some Verilator versions; ports wider than
// 64 bits use the W form with a trailing word count, VL_INW(x,95,0,3).
var portLine = regexp.MustCompile(`^\s*VL_(IN|OUT)(|8|16|32|64|W)\((\w+),(\d+),(\d+)(,\d+)?\)`)

// ParseHeader scans a generated header and returns all classified
// ports in declaration order.
func ParseHeader(r io.Reader) ([]Port, error) {
	var out []Port
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := portLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		dir := In
		if m[1] == "OUT" {
			dir = Out
		}
		msb, err := strconv.Atoi(m[4])
		if err != nil {
			return nil, fmt.Errorf("port %s: bad msb: %w", m[3], err)
		}
		lsb, err := strconv.Atoi(m[5])
		if err != nil {
			return nil, fmt.Errorf("port %s: bad lsb: %w", m[3], err)
		}
		if lsb != 0 {
			return nil, fmt.Errorf("port %s: non-zero lsb %d is not supported", m[3], lsb)
		}
		p, err := Classify(dir, m[3], msb+1)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan header: %w", err)
	}
	return out, nil
}

// Classify assigns a role to a raw port by its name suffix.
//
// Clocks and resets must be single-bit inputs. Active-low resets
// (rstn/resetn) get their own role so the wrapper can drive them
// inverted. AXI-stream members keep the raw direction here; Group
// resolves the bus direction, flipping tready which runs against the
// bus.
func Classify(dir Dir, name string, width int) (Port, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "clock") || strings.HasSuffix(lower, "clk"):
		if dir != In || width != 1 {
			return Port{}, fmt.Errorf("clock %s must be a single-bit input", name)
		}
		return Port{Dir: dir, Name: name, Width: width, Role: Clock}, nil
	case strings.HasSuffix(lower, "reset") || strings.HasSuffix(lower, "rst"):
		if dir != In || width != 1 {
			return Port{}, fmt.Errorf("reset %s must be a single-bit input", name)
		}
		return Port{Dir: dir, Name: name, Width: width, Role: Reset}, nil
	case strings.HasSuffix(lower, "resetn") || strings.HasSuffix(lower, "rstn"):
		if dir != In || width != 1 {
			return Port{}, fmt.Errorf("reset %s must be a single-bit input", name)
		}
		return Port{Dir: dir, Name: name, Width: width, Role: ResetN}, nil
	}

	for suffix, role := range map[string]Role{
		"_tvalid": TValid,
		"_tready": TReady,
		"_tdata":  TData,
		"_tuser":  TUser,
		"_tlast":  TLast,
	} {
		if strings.HasSuffix(lower, suffix) {
			bus := name[:len(name)-len(suffix)]
			if role == TValid || role == TReady || role == TLast {
				if width != 1 {
					return Port{}, fmt.Errorf("port %s: %s must be single-bit", name, role)
				}
			}
			return Port{Dir: dir, Name: name, Width: width, Bus: bus, Role: role}, nil
		}
	}

	for suffix, role := range map[string]Role{
		"_dout": DOut,
		"_din":  DIn,
		"_dset": DSet,
	} {
		if strings.HasSuffix(lower, suffix) {
			bus := name[:len(name)-len(suffix)]
			if role == DOut && dir != Out {
				return Port{}, fmt.Errorf("register tap %s must be an output", name)
			}
			if role != DOut && dir != In {
				return Port{}, fmt.Errorf("register tap %s must be an input", name)
			}
			if role == DSet && width != 1 {
				return Port{}, fmt.Errorf("register tap %s must be single-bit", name)
			}
			if role != DSet && width > 64 {
				return Port{}, fmt.Errorf("register tap %s: width %d exceeds 64 bits", name, width)
			}
			return Port{Dir: dir, Name: name, Width: width, Bus: bus, Role: role}, nil
		}
	}

	return Port{}, fmt.Errorf("unknown port name: %s", name)
}
