package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_SortsObjectKeys(t *testing.T) {
	b, err := Marshal(map[string]any{
		"zeta":  1,
		"alpha": 2,
		"mid":   3,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mid":3,"zeta":1}`, string(b))
}

func TestMarshal_NestedStructures(t *testing.T) {
	b, err := Marshal(map[string]any{
		"buses": []any{
			map[string]any{"name": "s_axis", "tdata": 32},
		},
		"component": "axis_copy_reg",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"buses":[{"name":"s_axis","tdata":32}],"component":"axis_copy_reg"}`, string(b))
}

func TestMarshal_NoHTMLEscaping(t *testing.T) {
	b, err := Marshal("a<b&c>d")
	require.NoError(t, err)
	assert.Equal(t, `"a<b&c>d"`, string(b))
}

func TestMarshal_IntegralFloatAccepted(t *testing.T) {
	// YAML and JSON decoders hand back float64 for whole numbers.
	b, err := Marshal(map[string]any{"DATA_WIDTH": float64(64)})
	require.NoError(t, err)
	assert.Equal(t, `{"DATA_WIDTH":64}`, string(b))
}

func TestMarshal_RejectsFractionalFloat(t *testing.T) {
	_, err := Marshal(1.5)
	assert.Error(t, err)
}

func TestMarshal_RejectsNull(t *testing.T) {
	_, err := Marshal(nil)
	assert.Error(t, err)

	_, err = Marshal(map[string]any{"x": nil})
	assert.Error(t, err)
}

func TestMarshal_Deterministic(t *testing.T) {
	v := map[string]any{"b": 1, "a": []any{true, "s"}, "c": map[string]any{"y": 2, "x": 3}}

	first, err := Marshal(v)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}
