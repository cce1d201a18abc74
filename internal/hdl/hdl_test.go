package hdl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeComponent lays out <library>/<name>/<name>.v with the given body.
func writeComponent(t *testing.T, library, name, body string) string {
	t.Helper()
	dir := filepath.Join(library, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	src := filepath.Join(dir, name+".v")
	require.NoError(t, os.WriteFile(src, []byte(body), 0o644))
	return src
}

func TestResolve(t *testing.T) {
	library := t.TempDir()
	src := writeComponent(t, library, "axis_copy_reg", "module axis_copy_reg; endmodule\n")

	c, err := Resolve(library, "axis_copy_reg")
	require.NoError(t, err)
	assert.Equal(t, "axis_copy_reg", c.Name)
	assert.Equal(t, []string{src}, c.Sources)
}

func TestResolve_Missing(t *testing.T) {
	_, err := Resolve(t.TempDir(), "no_such_component")
	assert.Error(t, err)
}

func TestFromSources_NameFromBasename(t *testing.T) {
	library := t.TempDir()
	src := writeComponent(t, library, "axis_vector_sum", "module axis_vector_sum; endmodule\n")

	c, err := FromSources([]string{src})
	require.NoError(t, err)
	assert.Equal(t, "axis_vector_sum", c.Name)
}

func TestFromSources_Empty(t *testing.T) {
	_, err := FromSources(nil)
	assert.Error(t, err)
}

func TestDiscover(t *testing.T) {
	library := t.TempDir()
	writeComponent(t, library, "beta_block", "module beta_block; endmodule\n")
	writeComponent(t, library, "alpha_block", "module alpha_block; endmodule\n")
	// A directory without a matching .v is not a component.
	require.NoError(t, os.MkdirAll(filepath.Join(library, "not_a_component"), 0o755))

	names, err := Discover(library)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha_block", "beta_block"}, names)
}

func TestFingerprint_Deterministic(t *testing.T) {
	library := t.TempDir()
	writeComponent(t, library, "dut", "module dut; endmodule\n")
	c, err := Resolve(library, "dut")
	require.NoError(t, err)

	params := Params{"DATA_WIDTH": 64, "DEPTH": 4}

	first, err := Fingerprint(c, params)
	require.NoError(t, err)
	again, err := Fingerprint(c, params)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Len(t, first, 32) // hex md5
}

func TestFingerprint_SensitiveToParamsAndSource(t *testing.T) {
	library := t.TempDir()
	writeComponent(t, library, "dut", "module dut; endmodule\n")
	c, err := Resolve(library, "dut")
	require.NoError(t, err)

	base, err := Fingerprint(c, Params{"DATA_WIDTH": 32})
	require.NoError(t, err)

	changedParams, err := Fingerprint(c, Params{"DATA_WIDTH": 64})
	require.NoError(t, err)
	assert.NotEqual(t, base, changedParams)

	writeComponent(t, library, "dut", "module dut; /* edited */ endmodule\n")
	changedSource, err := Fingerprint(c, Params{"DATA_WIDTH": 32})
	require.NoError(t, err)
	assert.NotEqual(t, base, changedSource)
}

func TestParams_FlagsSorted(t *testing.T) {
	p := Params{"WIDTH": 8, "DEPTH": 2, "ASYNC": true}
	assert.Equal(t, []string{"-GASYNC=true", "-GDEPTH=2", "-GWIDTH=8"}, p.Flags())
}

func TestObjDirAndLibName(t *testing.T) {
	assert.Equal(t, "verilator-abc123", ObjDir("abc123"))
	assert.Equal(t, "libaxis_copy_reg-abc123.so", LibName("axis_copy_reg", "abc123"))
}
