package driver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingModel logs every lifecycle call in order.
type recordingModel struct {
	calls []string
}

func (m *recordingModel) SetReset(v uint8) {
	if v == 0 {
		m.calls = append(m.calls, "reset=0")
	} else {
		m.calls = append(m.calls, "reset=1")
	}
}
func (m *recordingModel) Eval()  { m.calls = append(m.calls, "eval") }
func (m *recordingModel) Final() { m.calls = append(m.calls, "final") }

func (m *recordingModel) count(call string) int {
	n := 0
	for _, c := range m.calls {
		if c == call {
			n++
		}
	}
	return n
}

func TestRun_LifecycleSequence(t *testing.T) {
	m := &recordingModel{}
	d := New(func() (Model, error) { return m, nil }, Options{})

	status, err := d.Run()
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, status)

	// Reset exactly once, before any eval.
	assert.Equal(t, 1, m.count("reset=0"))
	assert.Equal(t, "reset=0", m.calls[0])

	// Exactly 100 evaluation steps by default.
	assert.Equal(t, DefaultCycles, m.count("eval"))

	// Finalize exactly once, after the last eval.
	assert.Equal(t, 1, m.count("final"))
	assert.Equal(t, "final", m.calls[len(m.calls)-1])

	// Nothing else touched the model.
	assert.Len(t, m.calls, 1+DefaultCycles+1)
}

func TestRun_CustomCyclesAndReset(t *testing.T) {
	m := &recordingModel{}
	d := New(func() (Model, error) { return m, nil }, Options{Cycles: 7, Reset: 1})

	status, err := d.Run()
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, status)
	assert.Equal(t, 7, m.count("eval"))
	assert.Equal(t, "reset=1", m.calls[0])
}

func TestRun_ConstructionFailure(t *testing.T) {
	boom := errors.New("no artifact")
	d := New(func() (Model, error) { return nil, boom }, Options{})

	_, err := d.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

// countingObserver tracks the events a run reports.
type countingObserver struct {
	constructed int
	resets      []uint8
	evals       int
	lastCycle   int
	finalized   int
}

func (o *countingObserver) ModelConstructed()   { o.constructed++ }
func (o *countingObserver) ResetDriven(v uint8) { o.resets = append(o.resets, v) }
func (o *countingObserver) Evaluated(cycle int) { o.evals++; o.lastCycle = cycle }
func (o *countingObserver) Finalized()          { o.finalized++ }

func TestRun_ObserverSeesEveryEvent(t *testing.T) {
	m := &recordingModel{}
	obs := &countingObserver{}
	d := New(func() (Model, error) { return m, nil }, Options{Observer: obs})

	_, err := d.Run()
	require.NoError(t, err)

	assert.Equal(t, 1, obs.constructed)
	assert.Equal(t, []uint8{0}, obs.resets)
	assert.Equal(t, DefaultCycles, obs.evals)
	assert.Equal(t, DefaultCycles-1, obs.lastCycle)
	assert.Equal(t, 1, obs.finalized)
}

// panickyObserver blows up partway through the evaluation loop.
type panickyObserver struct {
	countingObserver
	panicAt int
}

func (o *panickyObserver) Evaluated(cycle int) {
	o.countingObserver.Evaluated(cycle)
	if cycle == o.panicAt {
		panic("observer failure")
	}
}

func TestRun_FinalizeGuaranteedOnPanic(t *testing.T) {
	m := &recordingModel{}
	obs := &panickyObserver{panicAt: 3}
	d := New(func() (Model, error) { return m, nil }, Options{Observer: obs})

	assert.Panics(t, func() { _, _ = d.Run() })

	// The model is still finalized, exactly once, after its last eval.
	assert.Equal(t, 1, m.count("final"))
	assert.Equal(t, "final", m.calls[len(m.calls)-1])
}
