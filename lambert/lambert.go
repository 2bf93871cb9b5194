// Package lambert implements the non-dimensionalized, multi-revolution
// Lambert boundary-value solver (Izzo/PyKep formulation): chord/
// semi-perimeter non-dimensionalization, a piecewise Battin/Lancaster/
// Lagrange time-of-flight evaluation, and a fused-derivative Householder
// iteration to recover x (and from it, the transfer velocities) for
// every admissible revolution count.
package lambert

import (
	"fmt"
	"math"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"

	"github.com/ChristopherRabotin/scicxx/serr"
)

func logOrNop(l kitlog.Logger) kitlog.Logger {
	if l == nil {
		return kitlog.NewNopLogger()
	}
	return l
}

func pow10(log float64) int {
	n := int(math.Pow(10, log))
	if n < 1 {
		n = 1
	}
	return n
}

// unitVec returns the unit vector of a, or the zero vector if a is
// (numerically) the zero vector.
func unitVec(a *mat64.Vector) *mat64.Vector {
	b := mat64.NewVector(a.Len(), nil)
	n := mat64.Norm(a, 2)
	if floats.EqualWithinAbs(n, 0, 1e-12) {
		return b
	}
	b.ScaleVec(1/n, a)
	return b
}

// crossVec performs the 3x1 cross product of two mat64.Vectors.
func crossVec(a, b *mat64.Vector) *mat64.Vector {
	r := mat64.NewVector(3, nil)
	r.SetVec(0, a.At(1, 0)*b.At(2, 0)-a.At(2, 0)*b.At(1, 0))
	r.SetVec(1, a.At(2, 0)*b.At(0, 0)-a.At(0, 0)*b.At(2, 0))
	r.SetVec(2, a.At(0, 0)*b.At(1, 0)-a.At(1, 0)*b.At(0, 0))
	return r
}

func combine(ra float64, a *mat64.Vector, rb float64, b *mat64.Vector) *mat64.Vector {
	r := mat64.NewVector(a.Len(), nil)
	for i := 0; i < a.Len(); i++ {
		r.SetVec(i, ra*a.At(i, 0)+rb*b.At(i, 0))
	}
	return r
}

// Solver holds the tunables for one Lambert boundary-value problem.
// GM is the gravitational parameter of the attracting body; Retrograde
// selects the clockwise (as seen from the transfer plane's positive
// normal) family of solutions; MaxRevolutions caps how many multi-
// revolution solution pairs Solve searches for (0 means "0-rev only").
type Solver struct {
	GM             float64
	Retrograde     bool
	MaxRevolutions int
	TolXNLog       float64
	Logger         kitlog.Logger
}

const (
	xIterLog    = 1.18 // ~15 iterations
	tMinIterLog = 1.08 // ~12 iterations
)

func (s *Solver) fillDefaults() {
	if s.TolXNLog == 0 {
		s.TolXNLog = 10
	}
}

// Solution is one root (x, v1, v2) of Lambert's equation, tagged with
// the revolution count and branch that produced it.
type Solution struct {
	Revolutions int
	LongPeriod  bool // the "right" multi-rev branch (longer period of the two at this N)
	Retrograde  bool // the sign of lambda actually used for this solution's transfer-angle branch
	X           float64
	V1, V2      *mat64.Vector
}

// Solve returns every Lambert solution (v1, v2) connecting r1 to r2 in
// time tof, up to 2*MaxRevolutions+1 of them. r1 and r2 must be 3x1 and
// non-collinear-through-the-origin is not required (an exactly 180
// degree transfer angle is under-determined and rejected).
func (s *Solver) Solve(r1, r2 *mat64.Vector, tof float64) ([]Solution, error) {
	s.fillDefaults()
	if r1.Len() != 3 || r2.Len() != 3 {
		return nil, fmt.Errorf("%w: r1, r2 must be 3x1 vectors", serr.ErrInvalidArgument)
	}
	if s.GM <= 0 {
		return nil, fmt.Errorf("%w: GM must be positive", serr.ErrInvalidArgument)
	}
	if tof <= 0 {
		return nil, fmt.Errorf("%w: time of flight must be positive", serr.ErrInvalidArgument)
	}
	r1n, r2n := mat64.Norm(r1, 2), mat64.Norm(r2, 2)
	if floats.EqualWithinAbs(r1n, 0, 1e-12) || floats.EqualWithinAbs(r2n, 0, 1e-12) {
		return nil, fmt.Errorf("%w: r1, r2 must be non-zero", serr.ErrInvalidArgument)
	}
	dr := mat64.NewVector(3, nil)
	dr.SubVec(r2, r1)
	c := mat64.Norm(dr, 2)
	semiPerim := (r1n + r2n + c) / 2
	if floats.EqualWithinAbs(semiPerim-c, 0, 1e-12) {
		return nil, fmt.Errorf("%w: transfer angle too close to 180 degrees", serr.ErrInvalidArgument)
	}

	lam2 := 1 - c/semiPerim
	lam := math.Sqrt(math.Max(0, lam2))

	h := crossVec(r1, r2)
	prograde := h.At(2, 0) >= 0
	if prograde == s.Retrograde {
		lam = -lam
	}
	ih := unitVec(h)
	if s.Retrograde {
		ih.ScaleVec(-1, ih)
	}
	ir1, ir2 := unitVec(r1), unitVec(r2)
	it1, it2 := crossVec(ih, ir1), crossVec(ih, ir2)

	tNon := math.Sqrt(2*s.GM/(semiPerim*semiPerim*semiPerim)) * tof

	maxRev := s.achievableRevolutions(lam, tNon)

	type candidate struct {
		n    int
		long bool
	}
	candidates := []candidate{{0, false}}
	for n := 1; n <= maxRev; n++ {
		candidates = append(candidates, candidate{n, false}, candidate{n, true})
	}

	gamma := math.Sqrt(s.GM * semiPerim / 2)
	rho := (r1n - r2n) / c
	sigma := math.Sqrt(math.Max(0, 1-rho*rho))

	solutions := make([]Solution, 0, len(candidates))
	for _, cand := range candidates {
		x0 := initialGuess(lam, tNon, cand.n, cand.long)
		x, err := s.solveForX(lam, tNon, cand.n, x0)
		if err != nil {
			logOrNop(s.Logger).Log("level", "warning", "subsys", "lambert", "branch", fmt.Sprintf("N=%d long=%v", cand.n, cand.long), "msg", "no solution", "err", err)
			continue
		}
		y := computeY(x, lam)
		vr1 := gamma * ((lam*y - x) - rho*(lam*y+x)) / r1n
		vr2 := -gamma * ((lam*y - x) + rho*(lam*y+x)) / r2n
		vt1 := gamma * sigma * (y + lam*x) / r1n
		vt2 := gamma * sigma * (y + lam*x) / r2n
		v1 := combine(vr1, ir1, vt1, it1)
		v2 := combine(vr2, ir2, vt2, it2)
		solutions = append(solutions, Solution{Revolutions: cand.n, LongPeriod: cand.long, Retrograde: lam < 0, X: x, V1: v1, V2: v2})
	}
	if len(solutions) == 0 {
		return nil, fmt.Errorf("%w: no Lambert solution converged for the requested geometry/time", serr.ErrConvergenceFailed)
	}
	return solutions, nil
}

// computeY is the universal-variable y = sqrt(1 - lam^2*(1-x^2)) shared
// by every time-of-flight branch.
func computeY(x, lam float64) float64 {
	return math.Sqrt(math.Max(0, 1-lam*lam*(1-x*x)))
}

// tofEquation evaluates the non-dimensional time of flight T(x) for the
// given lambda and revolution count, dispatching to whichever of the
// three closed forms (Battin near-parabolic, Lancaster, or Lagrange) is
// numerically well-conditioned for x's neighborhood.
func tofEquation(x, lam float64, n int) float64 {
	y := computeY(x, lam)
	switch {
	case math.Abs(x-1) < 0.01:
		return battinTOF(x, y, lam)
	case lam*lam > 0.2 && x > 0:
		return lancasterTOF(x, y, lam, n)
	default:
		return lagrangeTOF(x, y, lam, n)
	}
}

// battinTOF is Battin's hypergeometric-series time-of-flight equation,
// the form that stays well-conditioned in the parabolic neighborhood
// where the Lagrange/Lancaster arccos terms lose precision.
func battinTOF(x, y, lam float64) float64 {
	eta := y - lam*x
	s1 := 0.5 * (1 - lam - x*eta)
	q := (4.0 / 3.0) * hyp2f1b(s1)
	return 0.5 * (eta*eta*eta*q + 4*lam*eta)
}

// hyp2f1b sums the Gauss hypergeometric series 2F1(3,1,5/2;x) term by
// term; Battin's time-of-flight equation needs exactly this series and
// no gonum/pack library exposes a hypergeometric function.
func hyp2f1b(x float64) float64 {
	if x >= 1 {
		return math.Inf(1)
	}
	res, term := 1.0, 1.0
	for i := 0; i < 1000; i++ {
		term = term * (3 + float64(i)) * (1 + float64(i)) / (2.5 + float64(i)) * x / (float64(i) + 1)
		next := res + term
		if next == res {
			return next
		}
		res = next
	}
	return res
}

// lancasterTOF is the universal psi-based time-of-flight form, numerically
// well-conditioned away from the parabolic neighborhood when lambda^2 is
// large and x is positive (elliptic via arccos, hyperbolic via arcsinh).
func lancasterTOF(x, y, lam float64, n int) float64 {
	psi := computePsi(x, y, lam)
	return ((psi+float64(n)*math.Pi)/math.Sqrt(math.Abs(1-x*x)) - x + lam*y) / (1 - x*x)
}

func computePsi(x, y, lam float64) float64 {
	switch {
	case x >= -1 && x < 1:
		return math.Acos(x*y + lam*(1-x*x))
	case x > 1:
		return math.Asinh((y - x*lam) * math.Sqrt(x*x-1))
	default:
		return 0
	}
}

// lagrangeTOF is the classical Lagrange alpha/beta closed form, used
// everywhere lancasterTOF's conditioning assumption (lambda^2 > 0.2,
// x > 0) does not hold.
func lagrangeTOF(x, y, lam float64, n int) float64 {
	a := 1 / (1 - x*x)
	if a > 0 {
		alpha := 2 * math.Acos(x)
		beta := math.Copysign(2*math.Asin(math.Sqrt(lam*lam/a)), lam)
		return a * math.Sqrt(a) * ((alpha - math.Sin(alpha)) - (beta - math.Sin(beta)) + 2*math.Pi*float64(n)) / 2
	}
	alpha := 2 * math.Acosh(x)
	beta := math.Copysign(2*math.Asinh(math.Sqrt(-lam*lam/a)), lam)
	return math.Pow(-a, 1.5) * ((beta - math.Sinh(beta)) - (alpha - math.Sinh(alpha))) / 2
}

// tofDerivatives computes dT/dx, d2T/dx2, d3T/dx3 together from the
// already-evaluated T(x), per Izzo's fused derivative relations (they
// hold regardless of which of the three tofEquation branches produced
// t, since all three compute the same underlying function).
func tofDerivatives(x, y, lam, t float64) (d1, d2, d3 float64) {
	denom := 1 - x*x
	lam3 := lam * lam * lam
	d1 = (3*t*x - 2 + 2*lam3*x/y) / denom
	d2 = (3*t + 5*x*d1 + 2*(1-lam*lam)*lam3/(y*y*y)) / denom
	d3 = (7*x*d2 + 8*d1 - 6*(1-lam*lam)*math.Pow(lam, 5)*x/math.Pow(y, 5)) / denom
	return
}

// householder3 applies one third-order Householder step to the root of
// f given its value and first three derivatives, via the same
// reciprocal-derivative construction as rootfind.Householder (order 3),
// specialized to a closed form since the derivative triple here always
// arrives fused from tofDerivatives rather than three callbacks.
func householder3(x, f, f1, f2, f3 float64) float64 {
	g2 := (2*f1*f1 - f*f2) / (f * f * f)
	g3 := (6*f*f1*f2 - f*f*f3 - 6*f1*f1*f1) / (f * f * f * f)
	if g3 == 0 {
		return x - f/f1
	}
	return x + 3*g2/g3
}

// initialGuess builds the starting point for the Householder iteration:
// a linear-interpolation-in-(T,logT) formula for the 0-rev case, and
// Izzo's standard left/right explicit seeds for N-rev cases.
func initialGuess(lam, tNon float64, n int, longPeriod bool) float64 {
	if n == 0 {
		t0 := tofEquation(0, lam, 0)
		t1 := 2 * (1 - lam*lam*lam) / 3
		switch {
		case tNon >= t0:
			return math.Pow(t0/tNon, 2.0/3.0) - 1
		case tNon < t1:
			return 2.5*t1/tNon*(t1-tNon)/(1-math.Pow(lam, 5)) + 1
		default:
			return math.Pow(t0/tNon, math.Log2(t1/t0)) - 1
		}
	}
	mPi := float64(n) * math.Pi
	if longPeriod {
		base := math.Pow(8*tNon/mPi, 2.0/3.0)
		return (base - 1) / (base + 1)
	}
	base := math.Pow((mPi+math.Pi)/(8*tNon), 2.0/3.0)
	return (base - 1) / (base + 1)
}

// solveForX refines x0 to the root of tofEquation(x,lam,n) - tNon via
// fixed-iteration third-order Householder.
func (s *Solver) solveForX(lam, tNon float64, n int, x0 float64) (float64, error) {
	x := x0
	tol := math.Pow(10, -s.TolXNLog)
	maxIter := pow10(xIterLog)
	for i := 0; i < maxIter; i++ {
		y := computeY(x, lam)
		t := tofEquation(x, lam, n)
		f := t - tNon
		if math.Abs(f) <= tol {
			return x, nil
		}
		d1, d2, d3 := tofDerivatives(x, y, lam, t)
		if d1 == 0 {
			return 0, fmt.Errorf("%w: stationary time-of-flight derivative at x=%.6f", serr.ErrSingularSolve, x)
		}
		next := householder3(x, f, d1, d2, d3)
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return 0, fmt.Errorf("%w: non-finite Householder step at x=%.6f", serr.ErrConvergenceFailed, x)
		}
		if math.Abs(next-x) < tol {
			return next, nil
		}
		x = next
	}
	return 0, fmt.Errorf("%w: Householder iteration cap reached for N=%d", serr.ErrConvergenceFailed, n)
}

// tMin locates the interior minimum of T(x) for the N-revolution curve
// (N>=1; 0-rev T(x) is monotonic and has no interior minimum) via fixed-
// iteration Newton on dT/dx=0.
func tMin(lam float64, n int) (xMin, tMinVal float64) {
	x := 0.1
	maxIter := pow10(tMinIterLog)
	for i := 0; i < maxIter; i++ {
		y := computeY(x, lam)
		t := tofEquation(x, lam, n)
		d1, d2, _ := tofDerivatives(x, y, lam, t)
		if d2 == 0 {
			break
		}
		next := x - d1/d2
		if math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		if math.Abs(next-x) < 1e-12 {
			x = next
			break
		}
		x = next
	}
	return x, tofEquation(x, lam, n)
}

// achievableRevolutions caps the multi-revolution search at whichever N
// first has an interior minimum T(x) exceeding the requested transfer
// time: no root can exist for that N or any higher one.
func (s *Solver) achievableRevolutions(lam, tNon float64) int {
	capN := s.MaxRevolutions
	if capN <= 0 {
		return 0
	}
	n := 0
	for cand := 1; cand <= capN; cand++ {
		_, tMinVal := tMin(lam, cand)
		if tMinVal > tNon {
			break
		}
		n = cand
	}
	return n
}
