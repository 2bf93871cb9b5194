// Package rootfind implements scalar root-finders: bracket bisection,
// the Householder family (Newton, Halley, and general order d via Faa
// di Bruno / incomplete Bell polynomials), and a Brent-inverse-via-
// minimization solver for domain-bounded functions. The Householder
// derivative bookkeeping follows the same closure-over-stencil idiom
// deriv.FiniteDifference uses to drive iterator.Run.
package rootfind

import (
	"fmt"
	"math"

	kitlog "github.com/go-kit/kit/log"

	"github.com/ChristopherRabotin/scicxx/minimize"
	"github.com/ChristopherRabotin/scicxx/serr"
	"github.com/ChristopherRabotin/scicxx/specfunc"
)

func logOrNop(l kitlog.Logger) kitlog.Logger {
	if l == nil {
		return kitlog.NewNopLogger()
	}
	return l
}

// Bisection brackets [a,b] with f(a)*f(b) < 0 and halves until the
// bracket width is within tolerance or the iteration cap is reached.
type Bisection struct {
	F          func(float64) float64
	AbsTolNLog float64 // default 11.7
	RelTolNLog float64 // default 15
	MaxIterLog float64 // default 2, i.e. 100 iterations
	Logger     kitlog.Logger
}

func (b *Bisection) fillDefaults() {
	if b.AbsTolNLog == 0 {
		b.AbsTolNLog = 11.7
	}
	if b.RelTolNLog == 0 {
		b.RelTolNLog = 15
	}
	if b.MaxIterLog == 0 {
		b.MaxIterLog = 2
	}
}

// Solve returns a root of F within [a,b]. F(a) and F(b) must carry
// opposite signs.
func (b *Bisection) Solve(a, bHi float64) (float64, error) {
	b.fillDefaults()
	fa, fb := b.F(a), b.F(bHi)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return bHi, nil
	}
	if math.Signbit(fa) == math.Signbit(fb) {
		return 0, fmt.Errorf("%w: bisection bracket [%f,%f] is not signed", serr.ErrInvalidArgument, a, bHi)
	}
	atol := math.Pow(10, -b.AbsTolNLog)
	rtol := math.Pow(10, -b.RelTolNLog)
	maxIter := int(math.Pow(10, b.MaxIterLog))
	logger := logOrNop(b.Logger)

	lo, hi := a, bHi
	flo := fa
	for i := 0; i < maxIter; i++ {
		mid := 0.5 * (lo + hi)
		fmid := b.F(mid)
		if fmid == 0 {
			return mid, nil
		}
		if math.Signbit(fmid) == math.Signbit(flo) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
		if hi-lo < atol+rtol*math.Abs(mid) {
			return mid, nil
		}
	}
	logger.Log("level", "warning", "subsys", "rootfind", "msg", "bisection iteration cap reached", "a", a, "b", bHi)
	return 0, fmt.Errorf("%w: bisection did not converge within %d iterations", serr.ErrConvergenceFailed, maxIter)
}

// Householder is the order-d Householder iteration. Derivs must supply
// F and its first d derivatives (d+1 functions total): order 1 is
// Newton, order 2 is Halley. The n-th derivative of 1/F is obtained
// from Faa di Bruno's formula expressed through the incomplete Bell
// polynomial triangle specfunc.IncompleteBellTriangle builds over the
// supplied derivatives of F.
type Householder struct {
	Order      int
	Derivs     []func(float64) float64 // len == Order+1: F, F', F'', ...
	AbsTolNLog float64                  // default 7.83
	RelTolNLog float64                  // default +Inf (disabled)
	MaxIterLog float64                  // default 1.7
	Logger     kitlog.Logger
}

func (h *Householder) fillDefaults() {
	if h.AbsTolNLog == 0 {
		h.AbsTolNLog = 7.83
	}
	if h.RelTolNLog == 0 {
		h.RelTolNLog = math.Inf(1)
	}
	if h.MaxIterLog == 0 {
		h.MaxIterLog = 1.7
	}
}

// reciprocalDerivatives returns the 1st..n-th derivatives of 1/F at a
// point, given F's 0th..n-th derivatives there, via
//
//	(1/f)^(n) = sum_{k=1}^{n} (-1)^k k! / f^(k+1) * B_{n,k}(f', f'', ..., f^(n-k+1))
func reciprocalDerivatives(fvals []float64, n int) ([]float64, error) {
	if fvals[0] == 0 {
		return nil, fmt.Errorf("%w: Householder iteration hit f(x)=0", serr.ErrDomainError)
	}
	// B_{n,k} needs the derivatives f',...,f^(n-k+1); the Bell triangle
	// is built once over f',...,f^(n) (indices 1..n of fvals).
	bell := specfunc.IncompleteBellTriangle(fvals[1:])
	out := make([]float64, n+1)
	for order := 1; order <= n; order++ {
		var sum float64
		for k := 1; k <= order; k++ {
			sign := 1.0
			if k%2 == 1 {
				sign = -1.0
			}
			kFact := 1.0
			for i := 2; i <= k; i++ {
				kFact *= float64(i)
			}
			sum += sign * kFact / math.Pow(fvals[0], float64(k+1)) * bell.At(k, order)
		}
		out[order] = sum
	}
	return out, nil
}

// Solve runs the Householder iteration from x0 to convergence.
func (h *Householder) Solve(x0 float64) (float64, error) {
	h.fillDefaults()
	if len(h.Derivs) < 2 {
		return 0, fmt.Errorf("%w: Householder order %d needs %d derivatives, got %d", serr.ErrInsufficientDerivatives, h.Order, h.Order+1, len(h.Derivs))
	}
	d := h.Order
	atol := math.Pow(10, -h.AbsTolNLog)
	var rtol float64
	if !math.IsInf(h.RelTolNLog, 1) {
		rtol = math.Pow(10, -h.RelTolNLog)
	}
	maxIter := int(math.Pow(10, h.MaxIterLog))
	logger := logOrNop(h.Logger)

	x := x0
	for i := 0; i < maxIter; i++ {
		fvals := make([]float64, d+1)
		for j := range fvals {
			fvals[j] = h.Derivs[j](x)
		}
		if fvals[0] == 0 {
			return x, nil
		}
		recip, err := reciprocalDerivatives(fvals, d)
		if err != nil {
			return 0, err
		}
		// order 1: Newton -> x - f/f' ; the general formula uses the
		// (d-1)-th and d-th derivative of 1/f, with the 0th "derivative"
		// being 1/f itself.
		var num, den float64
		if d == 1 {
			num, den = 1.0/fvals[0], recip[1]
		} else {
			num, den = recip[d-1], recip[d]
		}
		step := float64(d) * num / den
		xNext := x + step
		if math.Abs(xNext-x) < atol+rtol*math.Abs(xNext) {
			return xNext, nil
		}
		x = xNext
	}
	logger.Log("level", "warning", "subsys", "rootfind", "msg", "Householder iteration cap reached", "order", d, "x", x)
	return 0, fmt.Errorf("%w: Householder order %d did not converge within %d iterations", serr.ErrConvergenceFailed, d, maxIter)
}

// Domain describes a (possibly one- or two-sided) interval with
// open/closed endpoint flags, used to bracket BrentInverse's search.
type Domain struct {
	Lo, Hi         float64
	LoInf, HiInf   bool
	LoOpen, HiOpen bool
}

// BrentInverse finds y in the function's stated domain such that
// F(y) == x, by minimizing (F(y)-x)^2 with minimize.Brent. Open
// endpoints are pushed inward by Epsilon before being handed to the
// minimizer; monotonicity is inferred from two probes inside the
// domain and used only to pick a sane bracket order.
type BrentInverse struct {
	F       func(float64) float64
	Domain  Domain
	Epsilon float64 // default 1e-9
	Brent   minimize.Brent
}

func (bi *BrentInverse) bounds() (lo, hi float64) {
	eps := bi.Epsilon
	if eps == 0 {
		eps = 1e-9
	}
	lo, hi = bi.Domain.Lo, bi.Domain.Hi
	if bi.Domain.LoInf {
		lo = -1e6
	} else if bi.Domain.LoOpen {
		lo += eps
	}
	if bi.Domain.HiInf {
		hi = 1e6
	} else if bi.Domain.HiOpen {
		hi -= eps
	}
	return lo, hi
}

// Solve returns y such that F(y) ~= x.
func (bi *BrentInverse) Solve(x float64) (float64, error) {
	lo, hi := bi.bounds()
	if hi <= lo {
		return 0, fmt.Errorf("%w: domain [%f,%f] is empty after endpoint adjustment", serr.ErrInvalidArgument, lo, hi)
	}
	objective := func(y float64) float64 {
		d := bi.F(y) - x
		return d * d
	}
	bi.Brent.F = objective
	y, _, err := bi.Brent.MinimizeBracketed(lo, hi)
	if err != nil {
		return 0, err
	}
	return y, nil
}
