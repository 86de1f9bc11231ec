package sod_shock_tube

import (
	"math"

	"github.com/notargets/blockmhd/riemann"
)

// Sample returns the exact isothermal Riemann solution at the similarity
// coordinate xi = (x-x0)/t. The normal velocity is component IVX.
func Sample(cs float64, wl, wr riemann.State, xi float64) (w riemann.State) {
	var (
		rs      = riemann.NewExactIsothermal(riemann.Isothermal{Cs: cs})
		_, star = rs.Flux(riemann.IVX, wl, wr)
		dl, ul  = wl[riemann.IDN], wl[riemann.IVX]
		dr, ur  = wr[riemann.IDN], wr[riemann.IVX]
		dm, vxm = star.Density, star.Velocity
	)
	// Left of the left wave
	if star.Pattern.LeftRarefaction() {
		head, tail := ul-cs, vxm-cs
		switch {
		case xi < head:
			return wl
		case xi <= tail:
			w = wl
			w[riemann.IVX] = xi + cs
			w[riemann.IDN] = dl * math.Exp((ul-xi-cs)/cs)
			return
		}
	} else if xi < ul-cs*math.Sqrt(dm/dl) {
		return wl
	}
	// Right of the right wave
	if star.Pattern.RightRarefaction() {
		head, tail := ur+cs, vxm+cs
		switch {
		case xi > head:
			return wr
		case xi >= tail:
			w = wr
			w[riemann.IVX] = xi - cs
			w[riemann.IDN] = dr * math.Exp((xi-cs-ur)/cs)
			return
		}
	} else if xi > ur+cs*math.Sqrt(dm/dr) {
		return wr
	}
	// Between the waves, transverse velocities jump at the contact
	if xi < vxm {
		w = wl
	} else {
		w = wr
	}
	w[riemann.IDN], w[riemann.IVX] = dm, vxm
	return
}

// Isothermal_calc samples the isothermal shock tube on [0,1], diaphragm at
// 0.5, at time t with N points.
func Isothermal_calc(t, cs float64, wl, wr riemann.State, N int) (X, Rho, U []float64) {
	var (
		x0 = 0.5
		dx = 1. / float64(N-1)
	)
	X, Rho, U = make([]float64, N), make([]float64, N), make([]float64, N)
	for i := range X {
		X[i] = float64(i) * dx
		var w riemann.State
		switch {
		case t == 0 && X[i] < x0:
			w = wl
		case t == 0:
			w = wr
		default:
			w = Sample(cs, wl, wr, (X[i]-x0)/t)
		}
		Rho[i], U[i] = w[riemann.IDN], w[riemann.IVX]
	}
	return
}
