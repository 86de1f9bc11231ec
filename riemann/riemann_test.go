package riemann

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRtSafe(t *testing.T) {
	sq := func(x float64) (f, dfdx float64) { return x*x - 2, 2 * x }
	{ // Bracketed root, either orientation
		assert.InDelta(t, math.Sqrt2, RtSafe(sq, 1, 2, 1.e-14), 1.e-12)
		assert.InDelta(t, math.Sqrt2, RtSafe(sq, 2, 1, 1.e-14), 1.e-12)
	}
	{ // No sign change gives exactly zero
		noRoot := func(x float64) (f, dfdx float64) { return x*x + 1, 2 * x }
		assert.Equal(t, 0., RtSafe(noRoot, 1, 2, 1.e-14))
		assert.Equal(t, 0., RtSafe(sq, 2, 3, 1.e-14))
	}
	{ // Roots on the endpoints are returned as given
		lin := func(x float64) (f, dfdx float64) { return x - 1, 1 }
		assert.Equal(t, 1., RtSafe(lin, 1, 3, 1.e-14))
		assert.Equal(t, 1., RtSafe(lin, -2, 1, 1.e-14))
	}
	{ // Flat derivative forces bisection and still converges
		cube := func(x float64) (f, dfdx float64) { return x * x * x, 3 * x * x }
		assert.InDelta(t, 0., RtSafe(cube, -1, 2, 1.e-12), 1.e-6)
	}
}

func TestExactIsothermal(t *testing.T) {
	var (
		rs  = NewExactIsothermal(Isothermal{Cs: 1})
		tol = 1.e-12
	)
	inDelta := func(expected, actual Flux) {
		for n := 0; n < 4; n++ {
			assert.InDeltaf(t, expected[n], actual[n], tol, "component %d", n)
		}
	}
	{ // Equal states reduce to the physical flux
		w := State{1, 0.5, 0.3, 0.2}
		f, star := rs.Flux(IVX, w, w)
		inDelta(Flux{0.5, 1.25, 0.15, 0.1}, f)
		assert.Equal(t, ShockShock, star.Pattern)
		assert.InDelta(t, 1., star.Density, tol)

		w = State{1, 0, 0, 0}
		f, _ = rs.Flux(IVX, w, w)
		inDelta(Flux{0, 1, 0, 0}, f)
	}
	{ // Supersonic flow takes the upwind state
		w := State{1, 2, 0.5, 0}
		f, _ := rs.Flux(IVX, w, w)
		inDelta(Flux{2, 5, 1, 0}, f)
		w = State{1, -2, 0.5, 0}
		f, _ = rs.Flux(IVX, w, w)
		inDelta(Flux{-2, 5, -1, 0}, f)
	}
	{ // Density jump at rest: left rarefaction through the sonic point
		wl, wr := State{1, 0, 0, 0}, State{0.125, 0, 0, 0}
		f, star := rs.Flux(IVX, wl, wr)
		assert.Equal(t, RarefactionShock, star.Pattern)
		assert.True(t, star.Density > 0.125 && star.Density <= 1)
		y, _ := ShockRarefactionResidual(1, 0, 0, 0.125, 1)(star.Density)
		assert.InDelta(t, 0., y, 1.e-10)
		inDelta(Flux{1 / math.E, 2 / math.E, 0, 0}, f)
		// Deterministic
		f2, star2 := rs.Flux(IVX, wl, wr)
		assert.Equal(t, f, f2)
		assert.Equal(t, star, star2)

		// Mirror image
		f, star = rs.Flux(IVX, wr, wl)
		assert.Equal(t, ShockRarefaction, star.Pattern)
		inDelta(Flux{-1 / math.E, 2 / math.E, 0, 0}, f)
	}
	{ // Diverging flow: two rarefactions
		wl, wr := State{1, -1, 0, 0}, State{1, 1, 0, 0}
		f, star := rs.Flux(IVX, wl, wr)
		assert.Equal(t, RarefactionRarefaction, star.Pattern)
		assert.InDelta(t, math.Exp(-1), star.Density, tol)
		inDelta(Flux{0, math.Exp(-1), 0, 0}, f)
	}
	{ // Converging flow: two shocks
		wl, wr := State{1, 1, 0, 0}, State{1, -1, 0, 0}
		f, star := rs.Flux(IVX, wl, wr)
		phi := 0.5 * (1 + math.Sqrt(5))
		assert.Equal(t, ShockShock, star.Pattern)
		assert.InDelta(t, phi*phi, star.Density, tol)
		inDelta(Flux{0, phi * phi, 0, 0}, f)
	}
	{ // Transverse velocities follow the contact
		wl, wr := State{1, 0.2, 3, 4}, State{1, 0.2, -3, -4}
		f, _ := rs.Flux(IVX, wl, wr)
		assert.InDelta(t, f[IDN]*3, f[IVY], tol)
		assert.InDelta(t, f[IDN]*4, f[IVZ], tol)
		wl[IVX], wr[IVX] = -0.2, -0.2
		f, _ = rs.Flux(IVX, wl, wr)
		assert.InDelta(t, f[IDN]*-3, f[IVY], tol)
	}
	{ // Sweeps along x2 and x3 permute the components
		wl, wr := State{1, 0.1, 0.4, -0.3}, State{0.5, -0.2, 0.1, 0.2}
		f1, _ := rs.Flux(IVX, wl, wr)
		perm := func(w State) State { return State{w[IDN], w[IVZ], w[IVX], w[IVY]} }
		f2, _ := rs.Flux(IVY, perm(wl), perm(wr))
		inDelta(Flux(perm(State(f1))), f2)
		perm3 := func(w State) State { return State{w[IDN], w[IVY], w[IVZ], w[IVX]} }
		f3, _ := rs.Flux(IVZ, perm3(wl), perm3(wr))
		inDelta(Flux(perm3(State(f1))), f3)
	}
}

func TestExactIsothermalFallback(t *testing.T) {
	var (
		rs     = NewExactIsothermal(Isothermal{Cs: 1})
		wl, wr = State{1, 0, 0, 0}, State{0.125, 0, 0, 0}
		zlzr   = math.Sqrt(0.125)
	)
	for _, root := range []float64{0, 0.125, 1.5} {
		r := root
		rs.RootFinder = func(fn func(x float64) (f, dfdx float64), x1, x2, xacc float64) float64 {
			return r
		}
		f, star := rs.Flux(IVX, wl, wr)
		assert.Equal(t, RarefactionRarefaction, star.Pattern)
		assert.InDelta(t, zlzr, star.Density, 1.e-15)
		assert.InDelta(t, -math.Log(zlzr), star.Velocity, 1.e-15)
		assert.False(t, math.IsNaN(f[IDN]))
	}
	{ // A root on dmax is accepted
		rs.RootFinder = func(fn func(x float64) (f, dfdx float64), x1, x2, xacc float64) float64 {
			return x2
		}
		_, star := rs.Flux(IVX, wl, wr)
		assert.Equal(t, RarefactionShock, star.Pattern)
		assert.Equal(t, 1., star.Density)
	}
	assert.Equal(t, 0., fanVelocity(0, 3))
	assert.Equal(t, 1.5, fanVelocity(2, 3))
}

func TestSweepAndSelection(t *testing.T) {
	var (
		n      = 6
		wl, wr [4][]float64
		f1, f2 [4][]float64
	)
	for c := 0; c < 4; c++ {
		wl[c], wr[c] = make([]float64, n), make([]float64, n)
		f1[c], f2[c] = make([]float64, n), make([]float64, n)
	}
	for i := 0; i < n; i++ {
		wl[IDN][i], wr[IDN][i] = 1+0.1*float64(i), 1
		wl[IVX][i], wr[IVX][i] = 0.1, -0.1*float64(i)
	}
	eos := Isothermal{Cs: 0.7}
	exact := NewSolver(NewFluxType("Exact"), eos)
	exact.Sweep(IVX, 1, 4, wl, wr, f1)
	for i := 1; i <= 4; i++ {
		f := exact.InterfaceFlux(IVX,
			State{wl[0][i], wl[1][i], wl[2][i], wl[3][i]},
			State{wr[0][i], wr[1][i], wr[2][i], wr[3][i]})
		for c := 0; c < 4; c++ {
			assert.Equal(t, f[c], f1[c][i])
		}
	}
	assert.Equal(t, 0., f1[IDN][0])
	assert.Equal(t, 0., f1[IDN][5])

	lax := NewSolver(NewFluxType("lax"), eos)
	_, isLax := lax.(*LaxFriedrichs)
	require.True(t, isLax)
	lax.Sweep(IVX, 0, n-1, wl, wr, f2)
	{ // Consistency: equal states give the physical flux
		w := State{1, 0.5, 0.3, 0.2}
		f := lax.InterfaceFlux(IVX, w, w)
		for c, v := range []float64{0.5, 0.5*0.5 + 0.49, 0.15, 0.1} {
			assert.InDelta(t, v, f[c], 1.e-15)
		}
	}
	assert.Panics(t, func() { NewFluxType("roe") })
	_, err := ParseFluxType("roe")
	assert.Error(t, err)
	ft, err := ParseFluxType(" LLF ")
	require.NoError(t, err)
	assert.Equal(t, FLUX_LaxFriedrichs, ft)
	assert.Equal(t, "Lax Friedrichs", ft.Print())
}
