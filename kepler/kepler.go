// Package kepler inverts Kepler's equation across the three conic
// regimes: elliptic (enhanced Newton, enhanced Markley, piecewise
// quintic), parabolic (closed-form cubic via polyroot), and hyperbolic
// (segmented-seed Newton, the HKE-SDG shape). This is the mean-anomaly
// to eccentric/hyperbolic-anomaly inverse; going the other way is a
// single closed-form evaluation (see ForwardElliptic and friends).
package kepler

import (
	"fmt"
	"math"
	"sort"

	kitlog "github.com/go-kit/kit/log"

	"github.com/ChristopherRabotin/scicxx/config"
	"github.com/ChristopherRabotin/scicxx/polyroot"
	"github.com/ChristopherRabotin/scicxx/rootfind"
	"github.com/ChristopherRabotin/scicxx/serr"
	"github.com/ChristopherRabotin/scicxx/specfunc"
)

func logOrNop(l kitlog.Logger) kitlog.Logger {
	if l == nil {
		return kitlog.NewNopLogger()
	}
	return l
}

// ForwardElliptic computes M = E - e*sin(E).
func ForwardElliptic(e, E float64) float64 { return E - e*math.Sin(E) }

// ForwardParabolic computes M = E/2 + E^3/6.
func ForwardParabolic(E float64) float64 { return E/2 + E*E*E/6 }

// ForwardHyperbolic computes M = e*sinh(E) - E.
func ForwardHyperbolic(e, E float64) float64 { return e*math.Sinh(E) - E }

// Strategy selects among the elliptic inverse solvers.
type Strategy int

const (
	EnhancedNewton Strategy = iota
	EnhancedMarkley
	PiecewiseQuintic
)

// EllipticSolver inverts M = E - e*sin(E) for E given M, 0 <= e < 1.
type EllipticSolver struct {
	E          float64
	Strategy   Strategy
	AbsTolNLog float64 // default ~14.5 (3e-15)
	RelTolNLog float64 // default ~15.66 (2.2e-16)
	Logger     kitlog.Logger

	quintic *quinticTable // lazily built for PiecewiseQuintic
}

func (s *EllipticSolver) fillDefaults() {
	cfg := config.Settings()
	if s.AbsTolNLog == 0 {
		s.AbsTolNLog = cfg.DefaultAbsTolNLog
	}
	if s.AbsTolNLog == 0 {
		s.AbsTolNLog = 14.52
	}
	if s.RelTolNLog == 0 {
		s.RelTolNLog = cfg.DefaultRelTolNLog
	}
	if s.RelTolNLog == 0 {
		s.RelTolNLog = 15.66
	}
}

// reducedAnomaly wraps M into [-pi,pi] and reports whether it was
// negated to land in [0,pi] (Kepler's equation is odd in (E,M)).
func reducedAnomaly(m float64) (reduced float64, negated bool) {
	m = math.Mod(m, 2*math.Pi)
	if m > math.Pi {
		m -= 2 * math.Pi
	} else if m < -math.Pi {
		m += 2 * math.Pi
	}
	if m < 0 {
		return -m, true
	}
	return m, false
}

// Solve returns E such that E - e*sin(E) == M.
func (s *EllipticSolver) Solve(m float64) (float64, error) {
	s.fillDefaults()
	if s.E < 0 || s.E >= 1 {
		return 0, fmt.Errorf("%w: elliptic Kepler solver requires 0<=e<1, got %f", serr.ErrInvalidArgument, s.E)
	}
	mr, negated := reducedAnomaly(m)
	logger := logOrNop(s.Logger)

	var E float64
	var err error
	switch {
	case s.E > 0.99 && mr < 0.0045:
		logger.Log("level", "info", "subsys", "kepler", "msg", "near-parabolic near-pericenter, switching to bisection", "e", s.E, "M", mr)
		E, err = s.solveBisection(mr)
	default:
		switch s.Strategy {
		case EnhancedMarkley:
			E, err = s.solveMarkley(mr)
		case PiecewiseQuintic:
			E, err = s.solveQuintic(mr)
		default:
			E, err = s.solveNewton(mr)
		}
	}
	if err != nil {
		return 0, err
	}
	if negated {
		E = -E
	}
	return E, nil
}

// solveBisection brackets [0,1]: m here is always the non-negative
// reduced anomaly (callers pre-handle the odd-symmetry sign flip), and
// the near-pericenter regime this is reached from (e>0.99, M<0.0045)
// never pushes the root past E=1.
func (s *EllipticSolver) solveBisection(m float64) (float64, error) {
	f := func(E float64) float64 { return ForwardElliptic(s.E, E) - m }
	b := &rootfind.Bisection{F: f, AbsTolNLog: s.AbsTolNLog, RelTolNLog: s.RelTolNLog, Logger: s.Logger}
	return b.Solve(0, 1)
}

// solveNewton uses a table-free but standard good starter (one term of
// the sin series inverted) then Householder order 1 (Newton).
func (s *EllipticSolver) solveNewton(m float64) (float64, error) {
	e := s.E
	E0 := m + e*math.Sin(m)/(1-math.Sin(m+e)+math.Sin(m))
	if math.IsNaN(E0) || math.IsInf(E0, 0) {
		E0 = m + e*math.Sin(m)
	}
	h := &rootfind.Householder{
		Order: 1,
		Derivs: []func(float64) float64{
			func(E float64) float64 { return ForwardElliptic(e, E) - m },
			func(E float64) float64 { return 1 - e*math.Cos(E) },
		},
		AbsTolNLog: s.AbsTolNLog,
		RelTolNLog: s.RelTolNLog,
		Logger:     s.Logger,
	}
	return h.Solve(E0)
}

// solveMarkley builds a cubic initial estimate from the third-order
// series inversion of M = E - e*sin(E) ~= (1-e)*E + (e/6)*E^3, solves it
// in closed form via polyroot, then refines it with Halley iterations
// (order 2 Householder) until the Householder tolerance is met.
func (s *EllipticSolver) solveMarkley(m float64) (float64, error) {
	e := s.E
	// The cubic series inversion only holds near E=0; past that the
	// E^3 term stops dominating and the usual sine-perturbed starter
	// is the more reliable estimate for the Halley correction below.
	var E0 float64
	if m < 1.0 {
		roots, err := polyroot.SolveCubic([]float64{e / 6, 0, 1 - e, -m}, polyroot.DefaultCubicTolNLog)
		if err != nil {
			return 0, err
		}
		E0 = realRootNear(roots, m)
	} else {
		E0 = m + e*math.Sin(m)
	}
	h := &rootfind.Householder{
		Order: 2,
		Derivs: []func(float64) float64{
			func(E float64) float64 { return ForwardElliptic(e, E) - m },
			func(E float64) float64 { return 1 - e*math.Cos(E) },
			func(E float64) float64 { return e * math.Sin(E) },
		},
		AbsTolNLog: s.AbsTolNLog,
		RelTolNLog: s.RelTolNLog,
		Logger:     s.Logger,
	}
	return h.Solve(E0)
}

// realRootNear returns the root with the smallest imaginary part,
// breaking ties by closeness to near.
func realRootNear(roots []complex128, near float64) float64 {
	best := roots[0]
	for _, r := range roots[1:] {
		if math.Abs(imag(r)) < math.Abs(imag(best))-1e-12 ||
			(math.Abs(imag(r)-imag(best)) <= 1e-12 && math.Abs(real(r)-near) < math.Abs(real(best)-near)) {
			best = r
		}
	}
	return real(best)
}

// quinticInterval is one breakpoint's fitted quintic (coefficients in
// ascending power order) valid on [lo,hi].
type quinticInterval struct {
	lo, hi float64
	coeff  [6]float64
}

// quinticTable is the adaptive breakpoint set built once per
// eccentricity, covering M in [0,pi].
type quinticTable struct {
	e          float64
	tolNLog    float64
	intervals  []quinticInterval
	maxDepth   int
}

// buildQuinticTable runs GetCoefficients: start from [0,pi] and
// recursively bisect any interval whose quintic fit's residual (probed
// at interior test points) exceeds the tolerance.
func buildQuinticTable(e, tolNLog float64, maxDepth int) *quinticTable {
	qt := &quinticTable{e: e, tolNLog: tolNLog, maxDepth: maxDepth}
	qt.split(1e-6, math.Pi, 0)
	sort.Slice(qt.intervals, func(i, j int) bool { return qt.intervals[i].lo < qt.intervals[j].lo })
	return qt
}

func (qt *quinticTable) split(lo, hi float64, depth int) {
	iv := fitQuintic(qt.e, lo, hi)
	if depth >= qt.maxDepth || quinticResidualOK(qt.e, iv, qt.tolNLog) {
		qt.intervals = append(qt.intervals, iv)
		return
	}
	mid := 0.5 * (lo + hi)
	qt.split(lo, mid, depth+1)
	qt.split(mid, hi, depth+1)
}

// fitQuintic samples E(M) at 6 Chebyshev-like nodes across [lo,hi] (via
// bisection, since that's the only solver guaranteed correct at
// construction time) and fits a degree-5 polynomial through the
// specfunc.VandermondeInverse moment-matching technique common to this
// codebase's other polynomial fits.
func fitQuintic(e, lo, hi float64) quinticInterval {
	const n = 6
	nodes := make([]float64, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		theta := math.Pi * float64(i) / float64(n-1)
		frac := 0.5 * (1 - math.Cos(theta))
		mNode := lo + frac*(hi-lo)
		nodes[i] = mNode - lo
		values[i] = bisectElliptic(e, mNode)
	}
	inv, err := specfunc.VandermondeInverse(nodes)
	if err != nil {
		panic("kepler: degenerate quintic fit node set: " + err.Error())
	}
	var coeff [6]float64
	for power := 0; power < n; power++ {
		var sum float64
		for node := 0; node < n; node++ {
			sum += inv.At(node, power) * values[node]
		}
		coeff[power] = sum
	}
	return quinticInterval{lo: lo, hi: hi, coeff: coeff}
}

func bisectElliptic(e, m float64) float64 {
	f := func(E float64) float64 { return ForwardElliptic(e, E) - m }
	b := &rootfind.Bisection{F: f, AbsTolNLog: 15, RelTolNLog: 15}
	lo, hi := m-1, m+1
	if lo < -1 {
		lo = -1
	}
	E, err := b.Solve(lo, hi)
	if err != nil {
		// widen once; the narrow bracket above covers all but the most
		// eccentric near-parabolic construction-time samples.
		E, _ = b.Solve(-10, 10)
	}
	return E
}

func quinticResidualOK(e float64, iv quinticInterval, tolNLog float64) bool {
	tol := math.Pow(10, -tolNLog)
	const probes = 8
	for i := 1; i < probes; i++ {
		mProbe := iv.lo + (iv.hi-iv.lo)*float64(i)/float64(probes)
		E := evalQuintic(iv, mProbe)
		residual := ForwardElliptic(e, E) - mProbe
		if math.Abs(residual) > tol {
			return false
		}
	}
	return true
}

func evalQuintic(iv quinticInterval, m float64) float64 {
	t := m - iv.lo
	var v float64
	for p := 5; p >= 0; p-- {
		v = v*t + iv.coeff[p]
	}
	return v
}

// solveQuintic binary-searches the breakpoint table and evaluates the
// interval's quintic; falls back to bisection in the pericenter block
// (the first interval, where the fit is least reliable for high e).
func (s *EllipticSolver) solveQuintic(m float64) (float64, error) {
	if s.quintic == nil {
		s.quintic = buildQuinticTable(s.E, 13, 12)
	}
	qt := s.quintic
	idx := sort.Search(len(qt.intervals), func(i int) bool { return qt.intervals[i].hi >= m })
	if idx >= len(qt.intervals) {
		idx = len(qt.intervals) - 1
	}
	if idx == 0 && s.E > 0.97 {
		return bisectElliptic(s.E, m), nil
	}
	return evalQuintic(qt.intervals[idx], m), nil
}

// ParabolicSolver inverts M = E/2 + E^3/6 for E given M.
type ParabolicSolver struct{}

// Solve returns the unique real root of the cubic
// (1/6)E^3 + (1/2)E - M = 0 via polyroot.
func (ParabolicSolver) Solve(m float64) (float64, error) {
	roots, err := polyroot.SolveCubic([]float64{1.0 / 6, 0, 0.5, -m}, polyroot.DefaultCubicTolNLog)
	if err != nil {
		return 0, err
	}
	return realRootNear(roots, m), nil
}

// HyperbolicSolver inverts M = e*sinh(E) - E for E given M, e > 1, via
// a segmented seed bank plus Newton refinement (the HKE-SDG shape).
type HyperbolicSolver struct {
	E          float64
	AbsTolNLog float64 // default ~14.5
	RelTolNLog float64 // default ~15.66
	MaxIterLog float64 // default 1.69897 (~50)
	Logger     kitlog.Logger

	segments []float64 // 51 breakpoints over |M|, quadratically stretched
}

const hyperbolicSegmentCount = 50

func (h *HyperbolicSolver) fillDefaults() {
	cfg := config.Settings()
	if h.AbsTolNLog == 0 {
		h.AbsTolNLog = cfg.DefaultAbsTolNLog
	}
	if h.AbsTolNLog == 0 {
		h.AbsTolNLog = 14.52
	}
	if h.RelTolNLog == 0 {
		h.RelTolNLog = cfg.DefaultRelTolNLog
	}
	if h.RelTolNLog == 0 {
		h.RelTolNLog = 15.66
	}
	if h.MaxIterLog == 0 {
		h.MaxIterLog = 1.69897
	}
}

// buildSegments precomputes 51 breakpoints covering |M| in
// [0, Mmax(e)], geometrically stretched so they cluster near the
// "singular corner" (large e, small M) where the seed estimator is
// least accurate.
func (h *HyperbolicSolver) buildSegments() {
	mMax := h.E*math.Sinh(20) - 20
	h.segments = make([]float64, hyperbolicSegmentCount+1)
	for i := range h.segments {
		frac := float64(i) / float64(hyperbolicSegmentCount)
		h.segments[i] = mMax * frac * frac // quadratic stretch: denser near 0
	}
}

// seedEstimate picks the segment's initial guess: near the singular
// corner (small M) use the same small-E cubic-series inversion as the
// elliptic Markley estimator (with e-1 replacing 1-e); otherwise the
// standard large-argument asymptotic inverse of sinh.
func (h *HyperbolicSolver) seedEstimate(m float64) float64 {
	e := h.E
	if math.Abs(m) < h.segments[1] {
		roots, err := polyroot.SolveCubic([]float64{e / 6, 0, e - 1, -m}, polyroot.DefaultCubicTolNLog)
		if err == nil {
			return realRootNear(roots, m)
		}
	}
	s := 1.0
	if m < 0 {
		s = -1
	}
	am := math.Abs(m)
	return s * math.Log(2*am/e+1.8)
}

// Solve returns E such that e*sinh(E) - E == M.
func (h *HyperbolicSolver) Solve(m float64) (float64, error) {
	h.fillDefaults()
	if h.E <= 1 {
		return 0, fmt.Errorf("%w: hyperbolic Kepler solver requires e>1, got %f", serr.ErrInvalidArgument, h.E)
	}
	if h.segments == nil {
		h.buildSegments()
	}
	e := h.E
	E0 := h.seedEstimate(m)
	logger := logOrNop(h.Logger)

	atol := math.Pow(10, -h.AbsTolNLog)
	rtol := math.Pow(10, -h.RelTolNLog)
	maxIter := int(math.Pow(10, h.MaxIterLog))
	E := E0
	for i := 0; i < maxIter; i++ {
		f := e*math.Sinh(E) - E - m
		fp := e*math.Cosh(E) - 1
		step := f / fp
		ENext := E - step
		if math.Abs(ENext-E) < atol+rtol*math.Abs(ENext) {
			return ENext, nil
		}
		E = ENext
	}
	logger.Log("level", "warning", "subsys", "kepler", "msg", "hyperbolic Newton iteration cap reached", "e", e, "M", m)
	return 0, fmt.Errorf("%w: hyperbolic Kepler solver did not converge within %d iterations", serr.ErrConvergenceFailed, maxIter)
}
