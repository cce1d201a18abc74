package harness

import (
	"fmt"
	"strings"

	"github.com/mheller/vsmoke/internal/trace"
)

// AssertionError is returned when an assertion fails. It carries the
// full trace so a failure message is debuggable on its own.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []trace.Event
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		switch ev.Kind {
		case trace.KindEval:
			fmt.Fprintf(&buf, "  [%d] eval cycle=%d\n", ev.Seq, ev.Cycle)
		case trace.KindReset:
			fmt.Fprintf(&buf, "  [%d] reset value=%d\n", ev.Seq, ev.Value)
		default:
			fmt.Fprintf(&buf, "  [%d] %s\n", ev.Seq, ev.Kind)
		}
	}
	return buf.String()
}

// evaluateAssertions runs every assertion against a finished result
// and returns the failure messages. All assertions run even after a
// failure so one bad run reports everything wrong with it.
func evaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertOutputItems:
			err = assertOutputItems(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

// assertTraceCount checks that the event kind appears exactly the
// expected number of times.
func assertTraceCount(events []trace.Event, a Assertion) error {
	count := 0
	for _, ev := range events {
		if ev.Kind == a.Kind {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Kind),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    events,
		}
	}
	return nil
}

// assertTraceOrder checks that the kinds first appear in the given
// order. Kinds need not be consecutive; intervening events are fine.
func assertTraceOrder(events []trace.Event, a Assertion) error {
	positions := make(map[string]int)
	for i, ev := range events {
		if positions[ev.Kind] == 0 {
			positions[ev.Kind] = i + 1
		}
	}

	for _, kind := range a.Kinds {
		if positions[kind] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all kinds present: %v", a.Kinds),
				Actual:   fmt.Sprintf("missing kind: %s", kind),
				Trace:    events,
			}
		}
	}

	for i := 1; i < len(a.Kinds); i++ {
		prev, curr := a.Kinds[i-1], a.Kinds[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("kinds in order: %v", a.Kinds),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: events,
			}
		}
	}
	return nil
}

// assertOutputItems checks the stream output exactly, order and all.
func assertOutputItems(result *Result, a Assertion) error {
	if result.Output == nil {
		return &AssertionError{
			Type:     AssertOutputItems,
			Expected: fmt.Sprintf("output items %v", a.Items),
			Actual:   "scenario has no input section, nothing was streamed",
			Trace:    result.Trace,
		}
	}
	match := len(result.Output) == len(a.Items)
	if match {
		for i, v := range a.Items {
			if result.Output[i] != v {
				match = false
				break
			}
		}
	}
	if !match {
		return &AssertionError{
			Type:     AssertOutputItems,
			Expected: fmt.Sprintf("output items %v", a.Items),
			Actual:   fmt.Sprintf("output items %v", result.Output),
			Trace:    result.Trace,
		}
	}
	return nil
}
