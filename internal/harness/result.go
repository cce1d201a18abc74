package harness

import "github.com/mheller/vsmoke/internal/trace"

// Result is the outcome of one scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool

	// Status is what the driver reported.
	Status int

	// RunToken is the deterministic run identifier the scenario ran
	// under.
	RunToken string

	// Trace holds all lifecycle events in seq order.
	Trace []trace.Event

	// Output holds the items produced on the model's output bus, in
	// order. Nil when the scenario had no input section.
	Output []int64

	// Errors lists assertion failures. Empty when Pass is true.
	Errors []string
}

// NewResult creates a passing result for a scenario.
func NewResult(scenario *Scenario) *Result {
	return &Result{
		Pass:     true,
		RunToken: trace.FixedSource{ID: scenario.RunToken}.NewRunID(),
	}
}

// AddError records an assertion failure and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// Snapshot renders the result for canonical JSON encoding. Golden
// files compare these bytes, so everything in here must be
// deterministic across runs.
func (r *Result) Snapshot(scenarioName string) map[string]any {
	snap := map[string]any{
		"scenario_name": scenarioName,
		"run_token":     r.RunToken,
		"status":        r.Status,
		"trace":         trace.CanonicalEvents(r.Trace),
	}
	if r.Output != nil {
		items := make([]any, len(r.Output))
		for i, v := range r.Output {
			items[i] = v
		}
		snap["output"] = items
	}
	return snap
}
