package runner

import (
	"fmt"
	"math"
	"strings"

	"github.com/notargets/blockmhd/grid"
)

// GlobalField gives the value of variable n at global index (gi, gj, gk) of
// the mesh, indices already wrapped into the mesh. Variables 0..NHydro-1 are
// the conserved hydro variables, NHydro+f is face field f.
type GlobalField func(n, gi, gj, gk int) float64

type InitType uint

const (
	SHOCKTUBE InitType = iota
	WAVE
)

var (
	InitNames = map[string]InitType{
		"shocktube": SHOCKTUBE,
		"wave":      WAVE,
	}
	InitPrintNames = []string{"Shock Tube", "Density Wave"}
)

func (it InitType) Print() (txt string) {
	txt = InitPrintNames[it]
	return
}

func NewInitType(label string) (it InitType) {
	var err error
	if it, err = ParseInitType(label); err != nil {
		panic(err)
	}
	return
}

func ParseInitType(label string) (it InitType, err error) {
	var ok bool
	if len(label) == 0 {
		err = fmt.Errorf("empty init type, must be one of %v", InitPrintNames)
		return
	}
	if it, ok = InitNames[strings.ToLower(label)]; !ok {
		err = fmt.Errorf("unable to use init type named %s", label)
	}
	return
}

// Field returns the initial condition on a mesh of nx cells.
func (it InitType) Field(nx [3]int) GlobalField {
	center := func(g, n int) float64 { return (float64(g) + 0.5) / float64(n) }
	switch it {
	case WAVE:
		return func(n, gi, gj, gk int) float64 {
			var (
				x   = center(gi, nx[0])
				rho = 1 + 0.1*math.Sin(2*math.Pi*x)
			)
			switch n {
			case grid.IDN:
				return rho
			case grid.IM1:
				return rho
			case grid.NHydro:
				return 1
			}
			return 0
		}
	}
	return func(n, gi, gj, gk int) float64 {
		x := center(gi, nx[0])
		switch n {
		case grid.IDN:
			if x < 0.5 {
				return 1
			}
			return 0.125
		case grid.NHydro:
			return 0.75
		}
		return 0
	}
}
