package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mheller/vsmoke/internal/config"
	"github.com/mheller/vsmoke/internal/hdl"
)

const fakeVerilator = `#!/bin/sh
dir=""
prefix=""
out=""
while [ $# -gt 0 ]; do
    case "$1" in
        --Mdir) dir="$2"; shift ;;
        --prefix) prefix="$2"; shift ;;
        -o) out="$2"; shift ;;
    esac
    shift
done
mkdir -p "$dir"
cat > "$dir/$prefix.h" <<'EOF'
VL_IN8(clock,0,0);
VL_IN8(reset,0,0);
VL_IN8(s_axis_tvalid,0,0);
VL_OUT8(s_axis_tready,0,0);
VL_IN8(s_axis_tdata,7,0);
VL_OUT8(m_axis_tvalid,0,0);
VL_IN8(m_axis_tready,0,0);
VL_OUT8(m_axis_tdata,7,0);
EOF
printf '%s\n' "$out" > "$dir/$prefix.mk"
`

const fakeMake = `#!/bin/sh
mk=""
while [ $# -gt 0 ]; do
    case "$1" in
        -f) mk="$2"; shift ;;
    esac
    shift
done
touch "$(cat "$mk")"
`

// testConfigFile writes a config pointing at fake toolchain scripts
// and a library containing one copy-reg component.
func testConfigFile(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	verilator := filepath.Join(dir, "verilator")
	require.NoError(t, os.WriteFile(verilator, []byte(fakeVerilator), 0o755))
	makeBin := filepath.Join(dir, "make")
	require.NoError(t, os.WriteFile(makeBin, []byte(fakeMake), 0o755))

	library := filepath.Join(dir, "library")
	compDir := filepath.Join(library, "axis_copy_reg")
	require.NoError(t, os.MkdirAll(compDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(compDir, "axis_copy_reg.v"),
		[]byte("module axis_copy_reg; endmodule\n"), 0o644))

	cfgPath := filepath.Join(dir, "vsmoke.yaml")
	cfg := fmt.Sprintf("verilator: %s\nmake: %s\nlibrary: %s\nbuild_dir: %s\n",
		verilator, makeBin, library, filepath.Join(dir, "build"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath
}

func TestBuildCommand(t *testing.T) {
	cfgPath := testConfigFile(t)

	out, err := execute(t, "--config", cfgPath, "build", "axis_copy_reg", "--param", "DATA_WIDTH=8")
	require.NoError(t, err)
	assert.Contains(t, out, "built axis_copy_reg")

	// Second build hits the cache.
	out, err = execute(t, "--config", cfgPath, "build", "axis_copy_reg", "--param", "DATA_WIDTH=8")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

func TestBuildCommand_JSON(t *testing.T) {
	cfgPath := testConfigFile(t)

	out, err := execute(t, "--config", cfgPath, "--format", "json", "build", "axis_copy_reg")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "axis_copy_reg", data["component"])
	assert.NotEmpty(t, data["fingerprint"])
	assert.FileExists(t, data["lib_path"].(string))
}

func TestBuildCommand_UnknownComponent(t *testing.T) {
	cfgPath := testConfigFile(t)

	_, err := execute(t, "--config", cfgPath, "build", "missing_component")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"DATA_WIDTH=64", "NAME=fifo", "ENABLE=true"})
	require.NoError(t, err)
	assert.Equal(t, hdl.Params{
		"DATA_WIDTH": 64,
		"NAME":       "fifo",
		"ENABLE":     true,
	}, params)

	_, err = parseParams([]string{"NOEQUALS"})
	assert.Error(t, err)

	_, err = parseParams([]string{"=5"})
	assert.Error(t, err)

	params, err = parseParams(nil)
	require.NoError(t, err)
	assert.Nil(t, params)
}

func TestResolveComponent_ExplicitSources(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "dut.v")
	require.NoError(t, os.WriteFile(src, []byte("module top; endmodule\n"), 0o644))

	comp, err := resolveComponent(config.Default(), "top", []string{src})
	require.NoError(t, err)
	assert.Equal(t, "top", comp.Name)
	assert.Equal(t, []string{src}, comp.Sources)
}
