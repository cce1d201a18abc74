package trace

// Event kinds recorded during a run.
const (
	KindConstruct = "construct"
	KindReset     = "reset"
	KindEval      = "eval"
	KindFinal     = "final"
)

// Event is one recorded lifecycle step.
type Event struct {
	Seq  int64  `json:"seq"`
	Kind string `json:"kind"`
	// Cycle is the evaluation cycle for eval events; -1 otherwise.
	Cycle int `json:"cycle"`
	// Value is the driven value for reset events; 0 otherwise.
	Value int `json:"value"`
}

// Memory collects events in process. It implements driver.Observer
// together with a Clock and is the recorder the harness runs under.
type Memory struct {
	clock  *Clock
	events []Event
}

// NewMemory returns an empty in-memory recorder with its own clock.
func NewMemory() *Memory {
	return &Memory{clock: NewClock()}
}

// Events returns the recorded events in seq order.
func (m *Memory) Events() []Event { return m.events }

// CountKind returns how many events of the given kind were recorded.
func (m *Memory) CountKind(kind string) int {
	n := 0
	for _, e := range m.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (m *Memory) append(kind string, cycle, value int) {
	m.events = append(m.events, Event{
		Seq:   m.clock.Next(),
		Kind:  kind,
		Cycle: cycle,
		Value: value,
	})
}

// ModelConstructed implements driver.Observer.
func (m *Memory) ModelConstructed() { m.append(KindConstruct, -1, 0) }

// ResetDriven implements driver.Observer.
func (m *Memory) ResetDriven(v uint8) { m.append(KindReset, -1, int(v)) }

// Evaluated implements driver.Observer.
func (m *Memory) Evaluated(cycle int) { m.append(KindEval, cycle, 0) }

// Finalized implements driver.Observer.
func (m *Memory) Finalized() { m.append(KindFinal, -1, 0) }

// Canonical renders the events for canonical JSON encoding, the form
// golden snapshots compare.
func (m *Memory) Canonical() []any {
	return CanonicalEvents(m.events)
}

// CanonicalEvents renders events as plain values for canonical JSON
// encoding. Cycle appears only on eval events, value only on resets.
func CanonicalEvents(events []Event) []any {
	out := make([]any, len(events))
	for i, e := range events {
		ev := map[string]any{
			"seq":  e.Seq,
			"kind": e.Kind,
		}
		if e.Kind == KindEval {
			ev["cycle"] = e.Cycle
		}
		if e.Kind == KindReset {
			ev["value"] = e.Value
		}
		out[i] = ev
	}
	return out
}
