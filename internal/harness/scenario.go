package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario: a smoke run over the
// pure-Go reference register model with assertions on the resulting
// trace and stream output.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// DataWidth is the register model's data width in bits (1 to 32).
	DataWidth int `yaml:"data_width"`

	// Cycles is the number of evaluation steps; the driver default
	// when zero.
	Cycles int `yaml:"cycles,omitempty"`

	// Reset is the value driven on the reset line. The register model
	// is held while reset is asserted, so reset: 1 scenarios expect
	// no stream output.
	Reset uint8 `yaml:"reset,omitempty"`

	// RunToken is a fixed run identifier for deterministic golden
	// comparison. Defaults to a stable token when empty.
	RunToken string `yaml:"run_token,omitempty"`

	// Input, when present, lists items to push through the register
	// stage before the smoke run.
	Input *InputSpec `yaml:"input,omitempty"`

	// Assertions validate the trace and stream output.
	// Supported types: trace_count, trace_order, output_items.
	Assertions []Assertion `yaml:"assertions"`
}

// InputSpec lists the items offered on the model's input bus.
type InputSpec struct {
	Items []int64 `yaml:"items"`
}

// Assertion validates one property of a finished run.
type Assertion struct {
	// Type selects the assertion:
	// - "trace_count": Kind appears exactly Count times in the trace
	// - "trace_order": Kinds first appear in the given order
	// - "output_items": stream output equals Items exactly
	Type string `yaml:"type"`

	// Kind is the trace event kind (used by trace_count).
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected number of occurrences (used by trace_count).
	Count int `yaml:"count,omitempty"`

	// Kinds is the expected first-occurrence order (used by trace_order).
	Kinds []string `yaml:"kinds,omitempty"`

	// Items is the expected stream output (used by output_items).
	Items []int64 `yaml:"items,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceCount  = "trace_count"
	AssertTraceOrder  = "trace_order"
	AssertOutputItems = "output_items"
)

var validKinds = map[string]bool{
	"construct": true,
	"reset":     true,
	"eval":      true,
	"final":     true,
}

// LoadScenario reads and parses a scenario YAML file. The raw
// document is checked against the embedded CUE schema first, then
// decoded with strict field validation so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	if err := validateShape(filepath.Base(path), data); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// Discover lists the scenario files under dir, sorted by name.
func Discover(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// validateScenario checks cross-field requirements the schema cannot
// express.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.DataWidth < 1 || s.DataWidth > 32 {
		return fmt.Errorf("data_width must be between 1 and 32, got %d", s.DataWidth)
	}
	if s.Cycles < 0 {
		return fmt.Errorf("cycles must be non-negative, got %d", s.Cycles)
	}
	if s.Reset > 1 {
		return fmt.Errorf("reset must be 0 or 1, got %d", s.Reset)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceCount:
		if !validKinds[a.Kind] {
			return fmt.Errorf("assertions[%d]: unknown event kind %q for trace_count", index, a.Kind)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertTraceOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for trace_order", index)
		}
		for _, k := range a.Kinds {
			if !validKinds[k] {
				return fmt.Errorf("assertions[%d]: unknown event kind %q for trace_order", index, k)
			}
		}
	case AssertOutputItems:
		// An empty items list is valid and means no output expected.
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
