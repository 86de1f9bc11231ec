package riemann

import (
	"math"
)

// MaxIterations bounds the hybrid Newton/bisection iteration.
const MaxIterations = 100

// RootFinder solves fn(x) = 0 on [x1, x2] to absolute accuracy xacc. fn
// returns the function value and its derivative.
type RootFinder func(fn func(x float64) (f, dfdx float64), x1, x2, xacc float64) float64

// RtSafe is a Newton-Raphson iteration safeguarded by bisection. The root
// must be bracketed by [x1, x2]; when it is not, RtSafe returns exactly 0,
// which callers treat as "no root in range". Hitting the iteration limit
// returns the current iterate.
func RtSafe(fn func(x float64) (f, dfdx float64), x1, x2, xacc float64) (rts float64) {
	var (
		xl, xh, fl, fh float64
		dx, dxold      float64
		f, df          float64
	)
	fl, _ = fn(x1)
	fh, _ = fn(x2)
	if (fl > 0 && fh > 0) || (fl < 0 && fh < 0) {
		return 0
	}
	if fl == 0 {
		return x1
	}
	if fh == 0 {
		return x2
	}
	// Orient the search so that f(xl) < 0
	if fl < 0 {
		xl, xh = x1, x2
	} else {
		xh, xl = x1, x2
	}
	rts = 0.5 * (x1 + x2)
	dxold = math.Abs(x2 - x1)
	dx = dxold
	f, df = fn(rts)
	for j := 0; j < MaxIterations; j++ {
		if (((rts-xh)*df-f)*((rts-xl)*df-f) > 0) || (math.Abs(2*f) > math.Abs(dxold*df)) {
			// Newton would leave the bracket or is converging too slowly
			dxold = dx
			dx = 0.5 * (xh - xl)
			rts = xl + dx
			if xl == rts {
				return
			}
		} else {
			dxold = dx
			dx = f / df
			temp := rts
			rts -= dx
			if temp == rts {
				return
			}
		}
		if math.Abs(dx) < xacc {
			return
		}
		f, df = fn(rts)
		if f < 0 {
			xl = rts
		} else {
			xh = rts
		}
	}
	return
}
