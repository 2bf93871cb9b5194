// Package minimize implements the Brent unbounded minimizer: golden-
// ratio bracket construction with parabolic-interpolation acceleration,
// followed by Brent's classic combined golden-section / inverse-
// parabolic descent. rootfind's Brent-inverse solver reuses the same
// descent core directly on a caller-supplied bounded domain.
package minimize

import (
	"fmt"
	"math"

	kitlog "github.com/go-kit/kit/log"

	"github.com/ChristopherRabotin/scicxx/serr"
)

const (
	goldenRatio   = 1.618033988749895  // phi, used to extend the bracket
	goldenSection = 0.3819660112501051 // 1 - 1/phi, used to bisect a bracket
)

func logOrNop(l kitlog.Logger) kitlog.Logger {
	if l == nil {
		return kitlog.NewNopLogger()
	}
	return l
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// Brent is a reusable Brent minimizer. Zero-value fields take the
// spec-mandated defaults on first use.
type Brent struct {
	F                 func(float64) float64
	GrowLimit         float64 // default 110
	BracketMaxIterLog float64 // default 3, i.e. 10^3 iterations
	AbsTolNLog        float64 // default 11
	RelTolNLog        float64 // default 7.83
	MaxIterLog        float64 // default 2.7, i.e. ~500 iterations
	Logger            kitlog.Logger
}

func (b *Brent) fillDefaults() {
	if b.GrowLimit == 0 {
		b.GrowLimit = 110
	}
	if b.BracketMaxIterLog == 0 {
		b.BracketMaxIterLog = 3
	}
	if b.AbsTolNLog == 0 {
		b.AbsTolNLog = 11
	}
	if b.RelTolNLog == 0 {
		b.RelTolNLog = 7.83
	}
	if b.MaxIterLog == 0 {
		b.MaxIterLog = 2.7
	}
}

// Bracket builds a three-point bracket (xa,xb,xc) with f(xb) lower
// than both f(xa) and f(xc), starting from the two seeds x1,x2 and
// extending downhill by the golden ratio. Parabolic interpolation
// through the running triple accelerates the search; extension is
// capped at GrowLimit*(xc-xb) and at 10^BracketMaxIterLog iterations.
func (b *Brent) Bracket(x1, x2 float64) (xa, xb, xc, fa, fb, fc float64, err error) {
	b.fillDefaults()
	const verySmall = 1e-21
	xa, xb = x1, x2
	fa, fb = b.F(xa), b.F(xb)
	if fa < fb {
		xa, xb = xb, xa
		fa, fb = fb, fa
	}
	xc = xb + goldenRatio*(xb-xa)
	fc = b.F(xc)
	maxIter := int(math.Pow(10, b.BracketMaxIterLog))
	logger := logOrNop(b.Logger)

	iter := 0
	for fc < fb {
		if iter > maxIter {
			logger.Log("level", "warning", "subsys", "minimize", "msg", "bracket search iteration cap reached", "xa", xa, "xb", xb, "xc", xc)
			return 0, 0, 0, 0, 0, 0, fmt.Errorf("%w: bracket search did not find an uphill point within %d iterations", serr.ErrConvergenceFailed, maxIter)
		}
		t1 := (xb - xa) * (fb - fc)
		t2 := (xb - xc) * (fb - fa)
		val := t2 - t1
		denom := 2 * verySmall
		if math.Abs(val) >= verySmall {
			denom = 2 * val
		}
		w := xb - ((xb-xc)*t2-(xb-xa)*t1)/denom
		wLimit := xb + b.GrowLimit*(xc-xb)
		var fw float64
		switch {
		case (w-xc)*(xb-w) > 0:
			fw = b.F(w)
			if fw < fc {
				xa, xb, fa, fb = xb, w, fb, fw
				iter++
				continue
			} else if fw > fb {
				xc, fc = w, fw
				iter++
				continue
			}
			w = xc + goldenRatio*(xc-xb)
			fw = b.F(w)
		case (w-wLimit)*(wLimit-xc) >= 0:
			w = wLimit
			fw = b.F(w)
		case (w-wLimit)*(xc-w) > 0:
			fw = b.F(w)
			if fw < fc {
				xb, xc = xc, w
				fb, fc = fc, fw
				w = xc + goldenRatio*(xc-xb)
				fw = b.F(w)
			}
		default:
			w = xc + goldenRatio*(xc-xb)
			fw = b.F(w)
		}
		xa, xb, xc = xb, xc, w
		fa, fb, fc = fb, fc, fw
		iter++
	}
	return xa, xb, xc, fa, fb, fc, nil
}

// core runs Brent's combined golden-section/inverse-parabolic descent
// given an outer bound [a,c] and a starting interior point x (with the
// two "runner-up" points w,v initialized to x as well).
func (b *Brent) core(lo, hi, x0, fx0 float64) (float64, float64, error) {
	atol := math.Pow(10, -b.AbsTolNLog)
	rtol := math.Pow(10, -b.RelTolNLog)
	maxIter := int(math.Pow(10, b.MaxIterLog))
	logger := logOrNop(b.Logger)

	a, c := lo, hi
	x, w, v := x0, x0, x0
	fx, fw, fv := fx0, fx0, fx0
	var deltaX, rat float64

	for iter := 0; iter < maxIter; iter++ {
		tol := atol + rtol*math.Abs(x)
		if c-a < tol {
			return x, fx, nil
		}
		mid := 0.5 * (a + c)
		useGolden := true
		var u float64
		if math.Abs(deltaX) > atol {
			t1 := (x - w) * (fx - fv)
			t2 := (x - v) * (fx - fw)
			p := (x-v)*t2 - (x-w)*t1
			q := 2 * (t2 - t1)
			if q > 0 {
				p = -p
			}
			q = math.Abs(q)
			prevDelta := deltaX
			if q != 0 && p > q*(a-x) && p < q*(c-x) && math.Abs(p) < math.Abs(0.5*q*prevDelta) {
				rat = p / q
				u = x + rat
				if u-a < atol+rtol*math.Abs(x) || c-u < atol+rtol*math.Abs(x) {
					if mid >= x {
						rat = tol / 4
					} else {
						rat = -tol / 4
					}
					u = x + rat
				}
				useGolden = false
			}
		}
		if useGolden {
			if x >= mid {
				deltaX = a - x
			} else {
				deltaX = c - x
			}
			rat = goldenSection * deltaX
			u = x + rat
		}
		if math.Abs(u-x) < tol/4 {
			u = x + tol/4*sign(rat)
		}
		fu := b.F(u)
		if fu > fx {
			if u < x {
				a = u
			} else {
				c = u
			}
			if fu <= fw || w == x {
				v, w = w, u
				fv, fw = fw, fu
			} else if fu <= fv || v == x || v == w {
				v, fv = u, fu
			}
		} else {
			if u >= x {
				a = x
			} else {
				c = x
			}
			v, w, x = w, x, u
			fv, fw, fx = fw, fx, fu
		}
	}
	logger.Log("level", "warning", "subsys", "minimize", "msg", "Brent descent iteration cap reached", "x", x)
	return x, fx, fmt.Errorf("%w: Brent minimization did not converge within %d iterations", serr.ErrConvergenceFailed, maxIter)
}

// Minimize brackets from the two seeds (x1,x2) and descends to the
// unbounded minimum.
func (b *Brent) Minimize(x1, x2 float64) (x, fx float64, err error) {
	b.fillDefaults()
	xa, xb, xc, _, fb, _, err := b.Bracket(x1, x2)
	if err != nil {
		return 0, 0, err
	}
	lo, hi := xa, xc
	if lo > hi {
		lo, hi = hi, lo
	}
	return b.core(lo, hi, xb, fb)
}

// MinimizeBracketed descends directly within a caller-supplied bound
// [lo,hi], without the golden-ratio extension phase; used when the
// search domain is already known (e.g. rootfind.BrentInverse).
func (b *Brent) MinimizeBracketed(lo, hi float64) (x, fx float64, err error) {
	b.fillDefaults()
	if hi <= lo {
		return 0, 0, fmt.Errorf("%w: bracket [%f,%f] is empty", serr.ErrInvalidArgument, lo, hi)
	}
	x0 := lo + goldenSection*(hi-lo)
	fx0 := b.F(x0)
	return b.core(lo, hi, x0, fx0)
}
