package riemann

import (
	"math"
)

// WavePattern records which waves bound the intermediate state. Bit 2 set
// means the left wave is a rarefaction, bit 1 set means the right wave is.
type WavePattern uint8

const (
	ShockShock             WavePattern = 0
	ShockRarefaction       WavePattern = 1
	RarefactionShock       WavePattern = 2
	RarefactionRarefaction WavePattern = 3
)

func (wp WavePattern) LeftRarefaction() bool  { return wp&2 != 0 }
func (wp WavePattern) RightRarefaction() bool { return wp&1 != 0 }

func (wp WavePattern) String() string {
	switch wp {
	case ShockShock:
		return "ShockShock"
	case ShockRarefaction:
		return "ShockRarefaction"
	case RarefactionShock:
		return "RarefactionShock"
	}
	return "RarefactionRarefaction"
}

// Star is the resolved intermediate state of one interface.
type Star struct {
	Density, Velocity float64
	Pattern           WavePattern
}

// ExactIsothermal computes interface fluxes from the exact solution of the
// isothermal Riemann problem.
type ExactIsothermal struct {
	cs         float64
	RootFinder RootFinder // Defaults to RtSafe
}

func NewExactIsothermal(eos EquationOfState) (rs *ExactIsothermal) {
	rs = &ExactIsothermal{
		cs:         eos.IsoSoundSpeed(),
		RootFinder: RtSafe,
	}
	return
}

func (rs *ExactIsothermal) SoundSpeed() float64 { return rs.cs }

// ShockRarefactionResidual is the velocity matching condition across a shock
// on the low density side and a rarefaction on the high density side, as a
// function of the intermediate density dm.
func ShockRarefactionResidual(cs, vl, vr, dmin, dmax float64) func(dm float64) (y, dydx float64) {
	return func(dm float64) (y, dydx float64) {
		sq := math.Sqrt(dm * dmin)
		y = (vr - vl) + cs*(math.Log(dm/dmax)+(dm-dmin)/sq)
		dydx = cs / dm * (1 + 0.5*(dm+dmin)/sq)
		return
	}
}

func (rs *ExactIsothermal) InterfaceFlux(ivx int, wl, wr State) (flx Flux) {
	flx, _ = rs.Flux(ivx, wl, wr)
	return
}

// Flux returns the flux through one interface with normal velocity component
// ivx (IVX, IVY or IVZ). Transverse momenta are upwinded by the contact.
func (rs *ExactIsothermal) Flux(ivx int, wl, wr State) (flx Flux, star Star) {
	var (
		cs         = rs.cs
		cs2        = cs * cs
		ivy        = IVX + ivx%3
		ivz        = IVX + (ivx+1)%3
		dl, ul     = wl[IDN], wl[ivx]
		dr, ur     = wr[IDN], wr[ivx]
		zl, zr     = math.Sqrt(dl), math.Sqrt(dr)
		dmin, dmax = math.Min(dl, dr), math.Max(dl, dr)
		soln       = ShockShock
		assigned   bool
		dm, vxm    float64
	)
	doubleRarefaction := func() {
		soln = RarefactionRarefaction
		dm = zl * zr * math.Exp((ul-ur)/(2*cs))
		vxm = ul - cs*math.Log(dm/dl)
	}
	sideFlux := func(w State) {
		flx[IDN] = w[IDN] * w[ivx]
		flx[ivx] = w[IDN]*w[ivx]*w[ivx] + w[IDN]*cs2
		flx[ivy] = w[IDN] * w[ivy] * w[ivx]
		flx[ivz] = w[IDN] * w[ivz] * w[ivx]
		assigned = true
	}
	// Inside a fan the sampled state replaces dm and vxm for the later tests
	fanFlux := func(d, mx float64, w State) {
		dm, vxm = d, fanVelocity(d, mx)
		flx[IDN] = mx
		flx[ivx] = mx*vxm + d*cs2
		flx[ivy] = mx * w[ivy]
		flx[ivz] = mx * w[ivz]
		assigned = true
	}

	// Two shock estimate, valid when dm exceeds both side densities
	tmp := zl * zr * (ul - ur) / (2 * cs * (zl + zr))
	zm := tmp + math.Sqrt(tmp*tmp+zl*zr)
	dm = zm * zm
	vxm = ul - cs*(dm-dl)/(zm*zl)
	if dm < dmax {
		doubleRarefaction()
		if dm > dmin {
			if dl > dr {
				soln = RarefactionShock
			} else {
				soln = ShockRarefaction
			}
			dm = rs.RootFinder(ShockRarefactionResidual(cs, ul, ur, dmin, dmax),
				dmin, dmax, 2*epsilon)
			if dm > dmin && dm <= dmax {
				if dl > dr {
					vxm = ul - cs*math.Log(dm/dl)
				} else {
					vxm = ur + cs*math.Log(dm/dr)
				}
			} else {
				// No usable root, which only happens when dl and dr nearly agree
				doubleRarefaction()
			}
		}
	}
	star = Star{Density: dm, Velocity: vxm, Pattern: soln}

	if soln.LeftRarefaction() {
		hdl, tll := ul-cs, vxm-cs
		if hdl >= 0 {
			sideFlux(wl)
		} else if tll >= 0 {
			e := math.Exp(hdl / cs)
			fanFlux(dl*e, dl*cs*e, wl)
		}
	} else if ul-cs*math.Sqrt(dm)/zl >= 0 {
		sideFlux(wl)
	}
	if soln.RightRarefaction() {
		hdr, tlr := ur+cs, vxm+cs
		if hdr <= 0 {
			sideFlux(wr)
		} else if tlr <= 0 {
			e := math.Exp(-tlr / cs)
			fanFlux(dm*e, -dm*cs*e, wr)
		}
	} else if ur+cs*math.Sqrt(dm)/zr <= 0 {
		sideFlux(wr)
	}

	if !assigned {
		vt := wl
		if vxm < 0 {
			vt = wr
		}
		flx[IDN] = dm * vxm
		flx[ivx] = dm*vxm*vxm + dm*cs2
		flx[ivy] = dm * vxm * vt[ivy]
		flx[ivz] = dm * vxm * vt[ivz]
	}
	return
}

// fanVelocity is the sampled fan velocity, zero where the fan has emptied.
func fanVelocity(d, mx float64) float64 {
	if d == 0 {
		return 0
	}
	return mx / d
}

// Sweep evaluates interfaces il..iu. wl and wr hold primitive states by
// component, flx receives the fluxes in the same component slots.
func (rs *ExactIsothermal) Sweep(ivx, il, iu int, wl, wr, flx [4][]float64) {
	sweep(rs, ivx, il, iu, wl, wr, flx)
}
