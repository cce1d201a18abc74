package wrapper

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mheller/vsmoke/internal/ports"
)

func copyRegSpec() Spec {
	return Spec{
		Component: "axis_copy_reg",
		Params:    map[string]any{"DATA_WIDTH": 8},
		Interface: ports.Interface{
			Clocks:  []string{"clock"},
			Resets:  []string{"reset"},
			Inputs:  []ports.Bus{{Name: "s_axis", TData: 8}},
			Outputs: []ports.Bus{{Name: "m_axis", TData: 8}},
		},
	}
}

func TestGenerate_Golden(t *testing.T) {
	out, err := Generate(copyRegSpec())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "copy_reg", out)
}

func TestGenerate_Deterministic(t *testing.T) {
	first, err := Generate(copyRegSpec())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Generate(copyRegSpec())
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestGenerate_Sections(t *testing.T) {
	out, err := Generate(copyRegSpec())
	require.NoError(t, err)
	text := string(out)

	// The ABI every loader binds.
	for _, symbol := range []string{
		"model_config", "model_create", "model_destroy",
		"model_set_reset", "model_set_clocks",
		"model_reset", "model_eval", "model_final", "model_work",
		"model_read_register",
	} {
		assert.Contains(t, text, symbol)
	}

	// Clock and reset drivers cover the declared signals.
	assert.Contains(t, text, "m->impl.clock = value;")
	assert.Contains(t, text, "m->impl.reset = value;")

	// Reset quiesces both stream buses.
	assert.Contains(t, text, "m->impl.s_axis_tvalid = 0;")
	assert.Contains(t, text, "m->impl.m_axis_tready = 0;")

	// The embedded config is an escaped JSON literal.
	assert.Contains(t, text, `\"component\":\"axis_copy_reg\"`)
	assert.Contains(t, text, `\"DATA_WIDTH\":8`)
}

func TestGenerate_ActiveLowResets(t *testing.T) {
	spec := copyRegSpec()
	spec.Interface.Resets = nil
	spec.Interface.ResetNs = []string{"aresetn"}

	out, err := Generate(spec)
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "m->impl.aresetn = value == 0 ? 1 : 0;")
	assert.NotContains(t, text, "m->impl.aresetn = value;")
	assert.Contains(t, text, `\"resetns\":[\"aresetn\"]`)
}

func TestGenerate_RegisterReads(t *testing.T) {
	spec := copyRegSpec()
	spec.Interface.Registers = []ports.Register{
		{Name: "count", Width: 16, DOut: true},
		{Name: "mode", Width: 8, DIn: true, DSet: true},
		{Name: "status", Width: 32, DOut: true},
	}

	out, err := Generate(spec)
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, `extern "C" uint64_t model_read_register`)
	assert.Contains(t, text, "if (reg == 0)\n        value = m->impl.count_dout;")
	assert.Contains(t, text, "if (reg == 2)\n        value = m->impl.status_dout;")
	// mode has no dout tap; its index reads as zero.
	assert.NotContains(t, text, "mode_dout")
}

func TestGenerate_MultiBusCursors(t *testing.T) {
	spec := Spec{
		Component: "axis_join",
		Interface: ports.Interface{
			Clocks: []string{"clk"},
			Resets: []string{"rst"},
			Inputs: []ports.Bus{
				{Name: "a_axis", TData: 64},
				{Name: "b_axis", TData: 32, TLast: 1},
			},
			Outputs: []ports.Bus{{Name: "m_axis", TData: 64}},
		},
	}
	out, err := Generate(spec)
	require.NoError(t, err)
	text := string(out)

	// 64-bit data packs into two words, so the cursor stride is 2.
	assert.Contains(t, text, "a_axis_data + a_axis_done * 2;")
	// 32-bit data plus tlast is also two words.
	assert.Contains(t, text, "b_axis_data + b_axis_done * 2;")
	// tlast present means a second write on that bus.
	assert.Contains(t, text, "write_port(m->impl.b_axis_tlast, src);")
	// Second input bus reads from slot 1.
	assert.Contains(t, text, "input_sizes[1]")
}

func TestGenerate_RequiresComponent(t *testing.T) {
	_, err := Generate(Spec{})
	assert.Error(t, err)
}

func TestEscapeCString(t *testing.T) {
	assert.Equal(t, `{\"a\":1}`, escapeCString(`{"a":1}`))
	assert.Equal(t, `a\\b`, escapeCString(`a\b`))
}

func TestGenerate_NoTemplateResidue(t *testing.T) {
	out, err := Generate(copyRegSpec())
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(out), "{{"))
}
