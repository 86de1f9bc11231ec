package InputParameters

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ghodss/yaml"

	"github.com/notargets/blockmhd/grid"
	"github.com/notargets/blockmhd/riemann"
	"github.com/notargets/blockmhd/runner"
	"github.com/notargets/blockmhd/types"
)

var ErrInvalidInput = errors.New("invalid input parameters")

// Parameters obtained from the YAML or TOML input file
type InputParameters struct {
	Title          string            `yaml:"Title" toml:"Title"`
	Nx1            int               `yaml:"Nx1" toml:"Nx1"` // Mesh cells
	Nx2            int               `yaml:"Nx2" toml:"Nx2"`
	Nx3            int               `yaml:"Nx3" toml:"Nx3"`
	BlockNx1       int               `yaml:"BlockNx1" toml:"BlockNx1"` // Block cells, default is the whole mesh
	BlockNx2       int               `yaml:"BlockNx2" toml:"BlockNx2"`
	BlockNx3       int               `yaml:"BlockNx3" toml:"BlockNx3"`
	NGhost         int               `yaml:"NGhost" toml:"NGhost"`
	Ranks          int               `yaml:"Ranks" toml:"Ranks"`
	Cycles         int               `yaml:"Cycles" toml:"Cycles"`
	CFL            float64           `yaml:"CFL" toml:"CFL"`
	IsoSoundSpeed  float64           `yaml:"IsoSoundSpeed" toml:"IsoSoundSpeed"`
	FluxType       string            `yaml:"FluxType" toml:"FluxType"`
	InitType       string            `yaml:"InitType" toml:"InitType"`
	MagneticFields bool              `yaml:"MagneticFields" toml:"MagneticFields"`
	BCs            map[string]string `yaml:"BCs" toml:"BCs"` // Direction name (ix1..ox3) to boundary flag name
}

func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters) ParseTOML(data []byte) (err error) {
	_, err = toml.Decode(string(data), ip)
	return
}

// Read parses a TOML file when the extension is .toml and YAML otherwise.
func Read(path string) (ip *InputParameters, err error) {
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	ip = &InputParameters{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = ip.ParseTOML(data)
	} else {
		err = ip.Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d,%d,%d]\t\t= Mesh Cells\n", ip.Nx1, ip.Nx2, ip.Nx3)
	fmt.Printf("[%d,%d,%d]\t\t= Block Cells\n", ip.BlockNx1, ip.BlockNx2, ip.BlockNx3)
	fmt.Printf("[%d]\t\t\t= Ranks\n", ip.Ranks)
	fmt.Printf("[%d]\t\t\t= Cycles\n", ip.Cycles)
	fmt.Printf("%8.5f\t\t= CFL\n", ip.CFL)
	fmt.Printf("%8.5f\t\t= Isothermal Sound Speed\n", ip.IsoSoundSpeed)
	fmt.Printf("[%s]\t\t\t= Flux Type\n", ip.FluxType)
	fmt.Printf("[%s]\t= InitType\n", ip.InitType)
	fmt.Printf("[%v]\t\t\t= Magnetic Fields\n", ip.MagneticFields)
	keys := make([]string, len(ip.BCs))
	i := 0
	for k := range ip.BCs {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, ip.BCs[key])
	}
}

func orDefault(val, def int) int {
	if val == 0 {
		return def
	}
	return val
}

// MeshConfig converts the parameters to a mesh description. Unset cell
// counts default to a collapsed axis, unset block sizes to the whole mesh
// and unset boundaries to periodic.
func (ip *InputParameters) MeshConfig() (cfg grid.MeshConfig, err error) {
	cfg.Nx = [3]int{ip.Nx1, orDefault(ip.Nx2, 1), orDefault(ip.Nx3, 1)}
	cfg.BlockNx = [3]int{
		orDefault(ip.BlockNx1, cfg.Nx[0]),
		orDefault(ip.BlockNx2, cfg.Nx[1]),
		orDefault(ip.BlockNx3, cfg.Nx[2]),
	}
	cfg.NGhost = orDefault(ip.NGhost, grid.NGhost)
	cfg.Ranks = orDefault(ip.Ranks, 1)
	cfg.MagneticFields = ip.MagneticFields
	for d := range cfg.BCs {
		cfg.BCs[d] = types.BC_Periodic
	}
	for label, flagName := range ip.BCs {
		var (
			d    types.Direction
			flag types.BCFLAG
		)
		if d, err = types.ParseDirection(label); err != nil {
			return cfg, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if flag, err = types.NewBCFLAG(flagName); err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidInput, label, err)
		}
		cfg.BCs[d] = flag
	}
	return
}

// Validate reports the first missing or unusable parameter.
func (ip *InputParameters) Validate() (err error) {
	switch {
	case ip.Nx1 < 1:
		return fmt.Errorf("%w: Nx1 must be set", ErrInvalidInput)
	case ip.Cycles < 0:
		return fmt.Errorf("%w: negative cycle count %d", ErrInvalidInput, ip.Cycles)
	case ip.IsoSoundSpeed <= 0:
		return fmt.Errorf("%w: IsoSoundSpeed must be positive, have %g", ErrInvalidInput, ip.IsoSoundSpeed)
	case ip.CFL < 0 || ip.CFL > 1:
		return fmt.Errorf("%w: CFL %g outside [0,1]", ErrInvalidInput, ip.CFL)
	}
	if _, err = riemann.ParseFluxType(ip.FluxType); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err = runner.ParseInitType(ip.InitType); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	_, err = ip.MeshConfig()
	return
}

// TimeStep is the time step over cell width for the configured CFL, taking
// the fastest signal as the sound speed plus a unit flow speed.
func (ip *InputParameters) TimeStep() float64 {
	return ip.CFL / (ip.IsoSoundSpeed + 1)
}
