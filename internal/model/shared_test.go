package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mheller/vsmoke/internal/ports"
)

func TestParseSharedConfig(t *testing.T) {
	raw := `{
		"component": "axis_copy_reg",
		"params": {"DATA_WIDTH": 8},
		"clocks": ["clock"],
		"resets": ["reset"],
		"inputs": [{"name": "s_axis", "tdata": 8, "tuser": 0, "tlast": 0}],
		"outputs": [{"name": "m_axis", "tdata": 8, "tuser": 0, "tlast": 0}]
	}`

	component, ifc, err := parseSharedConfig(raw)
	require.NoError(t, err)

	assert.Equal(t, "axis_copy_reg", component)
	assert.Equal(t, []string{"clock"}, ifc.Clocks)
	assert.Equal(t, []string{"reset"}, ifc.Resets)
	require.Len(t, ifc.Inputs, 1)
	assert.Equal(t, "s_axis", ifc.Inputs[0].Name)
	assert.Equal(t, 8, ifc.Inputs[0].TData)
	assert.Equal(t, []int{1}, ifc.InputWords())
}

func TestParseSharedConfig_RegistersAndResetNs(t *testing.T) {
	raw := `{
		"component": "axis_regaccess",
		"params": {},
		"clocks": ["clk"],
		"resets": [],
		"resetns": ["aresetn"],
		"inputs": [],
		"outputs": [],
		"registers": [{"name": "count", "width": 16, "dout": true, "din": false, "dset": false}]
	}`

	component, ifc, err := parseSharedConfig(raw)
	require.NoError(t, err)

	assert.Equal(t, "axis_regaccess", component)
	assert.Equal(t, []string{"aresetn"}, ifc.ResetNs)
	require.Len(t, ifc.Registers, 1)
	assert.Equal(t, ports.Register{Name: "count", Width: 16, DOut: true}, ifc.Registers[0])
}

func TestParseSharedConfig_Invalid(t *testing.T) {
	_, _, err := parseSharedConfig("not json")
	assert.Error(t, err)

	_, _, err = parseSharedConfig(`{"params": {}}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no component name")
}
