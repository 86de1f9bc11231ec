package riemann

import (
	"fmt"
	"math"
	"strings"
)

// Components of State and Flux
const (
	IDN = iota
	IVX
	IVY
	IVZ
)

var epsilon = math.Nextafter(1, 2) - 1

// State is density and the three velocity components.
type State [4]float64

// Flux is the mass flux and the three momentum fluxes.
type Flux [4]float64

type EquationOfState interface {
	IsoSoundSpeed() float64
}

type Isothermal struct {
	Cs float64
}

func (eos Isothermal) IsoSoundSpeed() float64 { return eos.Cs }

// Solver computes numerical fluxes between left and right primitive states.
type Solver interface {
	InterfaceFlux(ivx int, wl, wr State) Flux
	Sweep(ivx, il, iu int, wl, wr, flx [4][]float64)
}

type FluxType uint

const (
	FLUX_Exact FluxType = iota
	FLUX_LaxFriedrichs
)

var (
	FluxNames = map[string]FluxType{
		"exact": FLUX_Exact,
		"lax":   FLUX_LaxFriedrichs,
		"llf":   FLUX_LaxFriedrichs,
	}
	FluxPrintNames = []string{"Exact Isothermal", "Lax Friedrichs"}
)

func (ft FluxType) Print() (txt string) {
	txt = FluxPrintNames[ft]
	return
}

func NewFluxType(label string) (ft FluxType) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if ft, ok = FluxNames[label]; !ok {
		err = fmt.Errorf("unable to use flux named %s", label)
		panic(err)
	}
	return
}

// ParseFluxType is NewFluxType for callers holding user input.
func ParseFluxType(label string) (ft FluxType, err error) {
	var ok bool
	if ft, ok = FluxNames[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unable to use flux named %s", label)
	}
	return
}

func NewSolver(ft FluxType, eos EquationOfState) Solver {
	switch ft {
	case FLUX_LaxFriedrichs:
		return NewLaxFriedrichs(eos)
	}
	return NewExactIsothermal(eos)
}

func sweep(s Solver, ivx, il, iu int, wl, wr, flx [4][]float64) {
	for i := il; i <= iu; i++ {
		var (
			l = State{wl[0][i], wl[1][i], wl[2][i], wl[3][i]}
			r = State{wr[0][i], wr[1][i], wr[2][i], wr[3][i]}
		)
		f := s.InterfaceFlux(ivx, l, r)
		for n := 0; n < 4; n++ {
			flx[n][i] = f[n]
		}
	}
}

// LaxFriedrichs is the local Lax-Friedrichs (Rusanov) isothermal flux.
type LaxFriedrichs struct {
	cs float64
}

func NewLaxFriedrichs(eos EquationOfState) *LaxFriedrichs {
	return &LaxFriedrichs{cs: eos.IsoSoundSpeed()}
}

func (lf *LaxFriedrichs) physicalFlux(ivx int, w State) (f, u Flux) {
	var (
		d   = w[IDN]
		vn  = w[ivx]
		cs2 = lf.cs * lf.cs
	)
	u = Flux{d, d * w[IVX], d * w[IVY], d * w[IVZ]}
	f = Flux{d * vn, d * vn * w[IVX], d * vn * w[IVY], d * vn * w[IVZ]}
	f[ivx] += d * cs2
	return
}

func (lf *LaxFriedrichs) InterfaceFlux(ivx int, wl, wr State) (flx Flux) {
	var (
		fl, ul = lf.physicalFlux(ivx, wl)
		fr, ur = lf.physicalFlux(ivx, wr)
		smax   = math.Max(math.Abs(wl[ivx]), math.Abs(wr[ivx])) + lf.cs
	)
	for n := 0; n < 4; n++ {
		flx[n] = 0.5*(fl[n]+fr[n]) - 0.5*smax*(ur[n]-ul[n])
	}
	return
}

func (lf *LaxFriedrichs) Sweep(ivx, il, iu int, wl, wr, flx [4][]float64) {
	sweep(lf, ivx, il, iu, wl, wr, flx)
}
