package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mheller/vsmoke/internal/trace"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
	require.NoError(t, err)
	return s
}

func TestRun_SmokeDefault(t *testing.T) {
	s := loadTestScenario(t, "smoke_default")

	result, err := Run(s)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, 0, result.Status)
	assert.Equal(t, "smoke-default", result.RunToken)

	// construct + reset + 100 evals + final
	require.Len(t, result.Trace, 103)
	assert.Equal(t, trace.KindConstruct, result.Trace[0].Kind)
	assert.Equal(t, trace.KindReset, result.Trace[1].Kind)
	assert.Equal(t, 0, result.Trace[1].Value)
	assert.Equal(t, trace.KindFinal, result.Trace[102].Kind)

	// No input section, so no stream output at all.
	assert.Nil(t, result.Output)
}

func TestRun_StreamCopy(t *testing.T) {
	s := loadTestScenario(t, "copy_reg_smoke")

	result, err := Run(s)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []int64{1, 2, 3}, result.Output)
}

func TestRun_Truncation(t *testing.T) {
	s := loadTestScenario(t, "copy_reg_truncate")

	result, err := Run(s)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []int64{1, 9, 2, 15}, result.Output)
}

func TestRun_HeldInReset(t *testing.T) {
	s := loadTestScenario(t, "held_in_reset")

	result, err := Run(s)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.NotNil(t, result.Output)
	assert.Empty(t, result.Output)

	// Reset value 1 made it into the trace.
	assert.Equal(t, 1, result.Trace[1].Value)
}

func TestRun_FailingAssertionCollected(t *testing.T) {
	s := loadTestScenario(t, "copy_reg_smoke")
	s.Assertions = append(s.Assertions, Assertion{
		Type:  AssertTraceCount,
		Kind:  trace.KindEval,
		Count: 99,
	})

	result, err := Run(s)
	require.NoError(t, err, "assertion failures are collected, not returned")

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "trace_count")
}

func TestRun_BadWidth(t *testing.T) {
	s := loadTestScenario(t, "smoke_default")
	s.DataWidth = 0

	_, err := Run(s)
	assert.Error(t, err)
}

func TestRun_Deterministic(t *testing.T) {
	s := loadTestScenario(t, "copy_reg_smoke")

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, first.Snapshot(s.Name), second.Snapshot(s.Name))
}
