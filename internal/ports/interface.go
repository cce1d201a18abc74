package ports

import (
	"fmt"
	"sort"
)

// Bus describes one AXI-stream bus on the model boundary. Widths are
// in bits; zero means the member is absent.
type Bus struct {
	Name  string `json:"name"`
	TData int    `json:"tdata"`
	TUser int    `json:"tuser"`
	TLast int    `json:"tlast"`
}

// ceil32 returns the number of int32 words needed for width bits.
func ceil32(width int) int {
	return (width + 31) / 32
}

// Words is the number of int32 words one item on this bus occupies in
// packed form: tdata words, then tuser words, then tlast words.
func (b Bus) Words() int {
	return ceil32(b.TData) + ceil32(b.TUser) + ceil32(b.TLast)
}

// Register describes one register access point on the model boundary.
// DOut, DIn and DSet record which taps the design declares; Width is
// the tap width in bits, at most 64.
type Register struct {
	Name  string `json:"name"`
	Width int    `json:"width"`
	DOut  bool   `json:"dout"`
	DIn   bool   `json:"din"`
	DSet  bool   `json:"dset"`
}

// Interface is the grouped port map of a model. ResetNs are active-low
// and driven inverted relative to Resets.
type Interface struct {
	Clocks    []string   `json:"clocks"`
	Resets    []string   `json:"resets"`
	ResetNs   []string   `json:"resetns"`
	Inputs    []Bus      `json:"inputs"`
	Outputs   []Bus      `json:"outputs"`
	Registers []Register `json:"registers"`
}

// InputWords returns the packed item width of each input bus.
func (ifc Interface) InputWords() []int {
	out := make([]int, len(ifc.Inputs))
	for i, b := range ifc.Inputs {
		out[i] = b.Words()
	}
	return out
}

// OutputWords returns the packed item width of each output bus.
func (ifc Interface) OutputWords() []int {
	out := make([]int, len(ifc.Outputs))
	for i, b := range ifc.Outputs {
		out[i] = b.Words()
	}
	return out
}

// Canonical returns the interface as a plain map for canonical JSON
// encoding (the wrapper embeds it, golden files compare it).
func (ifc Interface) Canonical() map[string]any {
	clocks := make([]any, len(ifc.Clocks))
	for i, c := range ifc.Clocks {
		clocks[i] = c
	}
	resets := make([]any, len(ifc.Resets))
	for i, r := range ifc.Resets {
		resets[i] = r
	}
	resetns := make([]any, len(ifc.ResetNs))
	for i, r := range ifc.ResetNs {
		resetns[i] = r
	}
	busList := func(buses []Bus) []any {
		out := make([]any, len(buses))
		for i, b := range buses {
			out[i] = map[string]any{
				"name":  b.Name,
				"tdata": b.TData,
				"tuser": b.TUser,
				"tlast": b.TLast,
			}
		}
		return out
	}
	registers := make([]any, len(ifc.Registers))
	for i, r := range ifc.Registers {
		registers[i] = map[string]any{
			"name":  r.Name,
			"width": r.Width,
			"dout":  r.DOut,
			"din":   r.DIn,
			"dset":  r.DSet,
		}
	}
	return map[string]any{
		"clocks":    clocks,
		"resets":    resets,
		"resetns":   resetns,
		"inputs":    busList(ifc.Inputs),
		"outputs":   busList(ifc.Outputs),
		"registers": registers,
	}
}

// Group folds classified ports into an Interface.
//
// The direction of a bus is the direction of its tvalid/tdata/tuser/
// tlast members; tready always runs against the bus and is flipped
// before the direction check. Every bus must carry both tvalid and
// tready, and a register with a din tap must also carry dset. Results
// are sorted by name for deterministic output.
func Group(all []Port) (Interface, error) {
	type busAcc struct {
		dir   Dir
		roles map[Role]int
	}
	type regAcc struct {
		width int
		taps  map[Role]bool
	}
	var ifc Interface
	buses := map[string]*busAcc{}
	regs := map[string]*regAcc{}

	for _, p := range all {
		switch p.Role {
		case Clock:
			ifc.Clocks = append(ifc.Clocks, p.Name)
		case Reset:
			ifc.Resets = append(ifc.Resets, p.Name)
		case ResetN:
			ifc.ResetNs = append(ifc.ResetNs, p.Name)
		case DOut, DIn, DSet:
			acc, ok := regs[p.Bus]
			if !ok {
				acc = &regAcc{taps: map[Role]bool{}}
				regs[p.Bus] = acc
			}
			if acc.taps[p.Role] {
				return Interface{}, fmt.Errorf("register %s: duplicate %s", p.Bus, p.Role)
			}
			acc.taps[p.Role] = true
			if p.Role != DSet {
				if acc.width != 0 && acc.width != p.Width {
					return Interface{}, fmt.Errorf("register %s: tap widths disagree", p.Bus)
				}
				acc.width = p.Width
			}
		default:
			dir := p.Dir
			if p.Role == TReady {
				if dir == In {
					dir = Out
				} else {
					dir = In
				}
			}
			acc, ok := buses[p.Bus]
			if !ok {
				acc = &busAcc{dir: dir, roles: map[Role]int{}}
				buses[p.Bus] = acc
			}
			if acc.dir != dir {
				return Interface{}, fmt.Errorf("bus %s: inconsistent direction", p.Bus)
			}
			if _, dup := acc.roles[p.Role]; dup {
				return Interface{}, fmt.Errorf("bus %s: duplicate %s", p.Bus, p.Role)
			}
			acc.roles[p.Role] = p.Width
		}
	}

	names := make([]string, 0, len(buses))
	for name := range buses {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		acc := buses[name]
		if _, ok := acc.roles[TValid]; !ok {
			return Interface{}, fmt.Errorf("bus %s: missing tvalid", name)
		}
		if _, ok := acc.roles[TReady]; !ok {
			return Interface{}, fmt.Errorf("bus %s: missing tready", name)
		}
		b := Bus{
			Name:  name,
			TData: acc.roles[TData],
			TUser: acc.roles[TUser],
			TLast: acc.roles[TLast],
		}
		if acc.dir == In {
			ifc.Inputs = append(ifc.Inputs, b)
		} else {
			ifc.Outputs = append(ifc.Outputs, b)
		}
	}

	regNames := make([]string, 0, len(regs))
	for name := range regs {
		regNames = append(regNames, name)
	}
	sort.Strings(regNames)

	for _, name := range regNames {
		acc := regs[name]
		if acc.taps[DIn] && !acc.taps[DSet] {
			return Interface{}, fmt.Errorf("register %s: din requires dset", name)
		}
		ifc.Registers = append(ifc.Registers, Register{
			Name:  name,
			Width: acc.width,
			DOut:  acc.taps[DOut],
			DIn:   acc.taps[DIn],
			DSet:  acc.taps[DSet],
		})
	}

	sort.Strings(ifc.Clocks)
	sort.Strings(ifc.Resets)
	sort.Strings(ifc.ResetNs)
	return ifc, nil
}
