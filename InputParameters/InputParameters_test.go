package InputParameters

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/blockmhd/grid"
	"github.com/notargets/blockmhd/types"
)

var yamlInput = []byte(`
Title: Test Case
Nx1: 64
Nx2: 32
BlockNx1: 16
BlockNx2: 16
Ranks: 2
Cycles: 10
CFL: 0.5
IsoSoundSpeed: 1.
FluxType: Exact
InitType: ShockTube # Can be Wave
MagneticFields: true
BCs:
  ix1: reflect
  ox1: outflow
`)

var tomlInput = []byte(`
Title = "Test Case"
Nx1 = 64
Nx2 = 32
BlockNx1 = 16
BlockNx2 = 16
Ranks = 2
Cycles = 10
CFL = 0.5
IsoSoundSpeed = 1.0
FluxType = "Exact"
InitType = "ShockTube"
MagneticFields = true

[BCs]
ix1 = "reflect"
ox1 = "outflow"
`)

func TestInputParameters(t *testing.T) {
	var fromYAML, fromTOML InputParameters
	require.NoError(t, fromYAML.Parse(yamlInput))
	require.NoError(t, fromTOML.ParseTOML(tomlInput))
	assert.Equal(t, fromYAML, fromTOML)
	assert.Equal(t, "Test Case", fromYAML.Title)
	assert.Equal(t, "outflow", fromYAML.BCs["ox1"])
	assert.Equal(t, 0.25, fromYAML.TimeStep())
	require.NoError(t, fromYAML.Validate())
	fromYAML.Print()

	cfg, err := fromYAML.MeshConfig()
	require.NoError(t, err)
	assert.Equal(t, [3]int{64, 32, 1}, cfg.Nx)
	assert.Equal(t, [3]int{16, 16, 1}, cfg.BlockNx)
	assert.Equal(t, grid.NGhost, cfg.NGhost)
	assert.Equal(t, types.BC_Reflect, cfg.BCs[types.InnerX1])
	assert.Equal(t, types.BC_Outflow, cfg.BCs[types.OuterX1])
	assert.Equal(t, types.BC_Periodic, cfg.BCs[types.InnerX2])
	assert.True(t, cfg.MagneticFields)
	m, err := grid.NewMesh(cfg)
	require.NoError(t, err)
	assert.Equal(t, 8, m.NumBlocks())
}

func TestValidate(t *testing.T) {
	base := func() *InputParameters {
		ip := &InputParameters{}
		require.NoError(t, ip.Parse(yamlInput))
		return ip
	}
	for name, breakIt := range map[string]func(ip *InputParameters){
		"no cells":      func(ip *InputParameters) { ip.Nx1 = 0 },
		"sound speed":   func(ip *InputParameters) { ip.IsoSoundSpeed = 0 },
		"cfl":           func(ip *InputParameters) { ip.CFL = 2 },
		"cycles":        func(ip *InputParameters) { ip.Cycles = -1 },
		"flux":          func(ip *InputParameters) { ip.FluxType = "roe" },
		"init":          func(ip *InputParameters) { ip.InitType = "" },
		"direction":     func(ip *InputParameters) { ip.BCs["ix4"] = "reflect" },
		"boundary flag": func(ip *InputParameters) { ip.BCs["ix1"] = "inflow" },
	} {
		ip := base()
		breakIt(ip)
		err := ip.Validate()
		assert.Truef(t, errors.Is(err, ErrInvalidInput), "%s: %v", name, err)
	}
	{ // Defaults for a minimal 1D deck
		ip := &InputParameters{Nx1: 32, IsoSoundSpeed: 1, FluxType: "lax", InitType: "wave"}
		require.NoError(t, ip.Validate())
		cfg, err := ip.MeshConfig()
		require.NoError(t, err)
		assert.Equal(t, [3]int{32, 1, 1}, cfg.Nx)
		assert.Equal(t, [3]int{32, 1, 1}, cfg.BlockNx)
		assert.Equal(t, 1, cfg.Ranks)
	}
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	for name, data := range map[string][]byte{"input.yaml": yamlInput, "input.TOML": tomlInput} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0o644))
		ip, err := Read(path)
		require.NoError(t, err)
		assert.Equal(t, 64, ip.Nx1)
		assert.Equal(t, "reflect", ip.BCs["ix1"])
	}
	{ // Malformed TOML names the file
		path := filepath.Join(dir, "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("Nx1 = [oops"), 0o644))
		_, err := Read(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad.toml")
	}
	_, err := Read(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
