package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mheller/vsmoke/internal/canon"
)

func TestRunWithGolden_CopyReg(t *testing.T) {
	s := loadTestScenario(t, "copy_reg_smoke")
	require.NoError(t, RunWithGolden(t, s))
}

func TestRunWithGolden_Truncate(t *testing.T) {
	s := loadTestScenario(t, "copy_reg_truncate")
	require.NoError(t, RunWithGolden(t, s))
}

func TestRunWithGolden_HeldInReset(t *testing.T) {
	s := loadTestScenario(t, "held_in_reset")
	require.NoError(t, RunWithGolden(t, s))
}

func TestSnapshot_Shape(t *testing.T) {
	s := loadTestScenario(t, "copy_reg_smoke")
	result, err := Run(s)
	require.NoError(t, err)

	snap := result.Snapshot(s.Name)
	assert.Equal(t, "copy_reg_smoke", snap["scenario_name"])
	assert.Equal(t, "golden-copy-reg", snap["run_token"])
	assert.Equal(t, 0, snap["status"])
	assert.Len(t, snap["trace"], 7)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, snap["output"])
}

func TestSnapshot_OmitsOutputWithoutInput(t *testing.T) {
	s := loadTestScenario(t, "smoke_default")
	result, err := Run(s)
	require.NoError(t, err)

	snap := result.Snapshot(s.Name)
	_, ok := snap["output"]
	assert.False(t, ok)

	// The snapshot stays canonically encodable.
	_, err = canon.Marshal(snap)
	assert.NoError(t, err)
}
