// Package polyroot implements the unified degree 1..N polynomial root
// solver: closed forms for degrees 1-4 and Durand-Kerner simultaneous
// iteration for degree 5 and above.
package polyroot

import (
	"fmt"
	"math"
	"math/cmplx"

	kitlog "github.com/go-kit/kit/log"

	"github.com/ChristopherRabotin/scicxx/serr"
)

func logOrNop(l kitlog.Logger) kitlog.Logger {
	if l == nil {
		return kitlog.NewNopLogger()
	}
	return l
}

// DefaultCubicTolNLog is the default negative-log discriminant-zero
// threshold for the cubic solver.
const DefaultCubicTolNLog = 10.0

// Solve finds all n roots of the degree-n polynomial whose coefficients
// are given in descending order [a_n, a_{n-1}, ..., a_0]. Dispatches to a
// closed form for n = 1..4 and to Durand-Kerner for n >= 5. The ordering
// of roots within tolerance of each other is unspecified.
func Solve(coeffs []float64) ([]complex128, error) {
	n := len(coeffs) - 1
	if n < 1 {
		return nil, fmt.Errorf("%w: need at least a degree-1 polynomial, got %d coefficients", serr.ErrInvalidArgument, len(coeffs))
	}
	if coeffs[0] == 0 {
		return nil, fmt.Errorf("%w: leading coefficient must be non-zero", serr.ErrInvalidArgument)
	}
	switch n {
	case 1:
		return SolveLinear(coeffs)
	case 2:
		return SolveQuadratic(coeffs)
	case 3:
		return SolveCubic(coeffs, DefaultCubicTolNLog)
	case 4:
		return SolveQuartic(coeffs)
	default:
		return SolveDurandKerner(coeffs, DefaultDurandKernerOptions())
	}
}

// SolveLinear solves a0*x + a1 = 0.
func SolveLinear(coeffs []float64) ([]complex128, error) {
	if len(coeffs) != 2 {
		return nil, fmt.Errorf("%w: linear solver needs exactly 2 coefficients", serr.ErrInvalidArgument)
	}
	return []complex128{complex(-coeffs[1]/coeffs[0], 0)}, nil
}

// SolveQuadratic solves a0*x^2 + a1*x + a2 = 0 via the standard formula
// over complex floats.
func SolveQuadratic(coeffs []float64) ([]complex128, error) {
	if len(coeffs) != 3 {
		return nil, fmt.Errorf("%w: quadratic solver needs exactly 3 coefficients", serr.ErrInvalidArgument)
	}
	a, b, c := complex(coeffs[0], 0), complex(coeffs[1], 0), complex(coeffs[2], 0)
	disc := cmplx.Sqrt(b*b - 4*a*c)
	return []complex128{
		(-b + disc) / (2 * a),
		(-b - disc) / (2 * a),
	}, nil
}

// SolveCubic solves a0*x^3 + a1*x^2 + a2*x + a3 = 0 via the corrected
// Fan-Shengjin scheme: compute A = b^2-3ac, B = bc-9ad, C = c^2-3bd,
// Delta = B^2-4AC, then branch on the signs of A and Delta (treating
// |Delta| < 10^-tolNLog as zero).
func SolveCubic(coeffs []float64, tolNLog float64) ([]complex128, error) {
	if len(coeffs) != 4 {
		return nil, fmt.Errorf("%w: cubic solver needs exactly 4 coefficients", serr.ErrInvalidArgument)
	}
	a, b, c, d := coeffs[0], coeffs[1], coeffs[2], coeffs[3]
	A := b*b - 3*a*c
	B := b*c - 9*a*d
	C := c*c - 3*b*d
	Delta := B*B - 4*A*C
	zeroThresh := math.Pow(10, -tolNLog)

	roots := make([]complex128, 3)
	switch {
	case math.Abs(A) < zeroThresh && math.Abs(B) < zeroThresh:
		// Triple root.
		r := complex(-b/(3*a), 0)
		roots[0], roots[1], roots[2] = r, r, r
	case Delta > zeroThresh:
		// One real root, one conjugate complex pair.
		sqrtDelta := math.Sqrt(Delta)
		Y1 := A*b + 1.5*a*(-B+sqrtDelta)
		Y2 := A*b + 1.5*a*(-B-sqrtDelta)
		cb1, cb2 := math.Cbrt(Y1), math.Cbrt(Y2)
		sum, diff := cb1+cb2, cb1-cb2
		roots[0] = complex((-b-sum)/(3*a), 0)
		re := (-2*b + sum) / (6 * a)
		im := math.Sqrt(3) * diff / (6 * a)
		roots[1] = complex(re, im)
		roots[2] = complex(re, -im)
	case math.Abs(Delta) <= zeroThresh:
		// Delta == 0, A != 0: two distinct real roots, one doubled.
		K := B / A
		x1 := -b/a + K
		x2 := -K / 2
		roots[0] = complex(x1, 0)
		roots[1] = complex(x2, 0)
		roots[2] = complex(x2, 0)
	default:
		// Delta < 0, A > 0: three distinct real roots (trigonometric form).
		sqrtA := math.Sqrt(A)
		theta := math.Acos((2*A*b - 3*a*B) / (2 * A * sqrtA))
		roots[0] = complex((-b-2*sqrtA*math.Cos(theta/3))/(3*a), 0)
		roots[1] = complex((-b+sqrtA*(math.Cos(theta/3)+math.Sqrt(3)*math.Sin(theta/3)))/(3*a), 0)
		roots[2] = complex((-b+sqrtA*(math.Cos(theta/3)-math.Sqrt(3)*math.Sin(theta/3)))/(3*a), 0)
	}
	return roots, nil
}

// SolveQuartic solves a0*x^4 + a1*x^3 + a2*x^2 + a3*x + a4 = 0 by
// reducing to the depressed quartic, then a resolvent cubic (solved with
// SolveCubic), then a pair of quadratics -- the same reduce-to-cubic-
// then-pair-of-quadratics shape as the Shen-Tianheng decomposition.
func SolveQuartic(coeffs []float64) ([]complex128, error) {
	if len(coeffs) != 5 {
		return nil, fmt.Errorf("%w: quartic solver needs exactly 5 coefficients", serr.ErrInvalidArgument)
	}
	a, b, c, d, e := coeffs[0], coeffs[1], coeffs[2], coeffs[3], coeffs[4]
	Bc, Cc, Dc, Ec := b/a, c/a, d/a, e/a
	p := Cc - 3*Bc*Bc/8
	q := Dc - Bc*Cc/2 + Bc*Bc*Bc/8
	r := Ec - Bc*Dc/4 + Bc*Bc*Cc/16 - 3*Bc*Bc*Bc*Bc/256

	resolvent, err := SolveCubic([]float64{1, 2 * p, p*p - 4*r, -q * q}, DefaultCubicTolNLog)
	if err != nil {
		return nil, err
	}
	m := pickResolventRoot(resolvent) / 2

	sqrt2m := cmplx.Sqrt(2 * m)
	if cmplx.Abs(sqrt2m) < 1e-14 {
		// m is (numerically) zero: perturb minutely so the division below
		// stays well-defined; the depressed quartic is then biquadratic
		// in this neighborhood so the perturbation does not move the
		// roots appreciably.
		sqrt2m = complex(1e-14, 0)
	}
	term1 := complex(p/2, 0) + m - complex(q, 0)/(2*sqrt2m)
	term2 := complex(p/2, 0) + m + complex(q, 0)/(2*sqrt2m)

	y1, y2 := solveQuadraticComplex(complex(1, 0), sqrt2m, term1)
	y3, y4 := solveQuadraticComplex(complex(1, 0), -sqrt2m, term2)

	shift := complex(-Bc/4, 0)
	return []complex128{y1 + shift, y2 + shift, y3 + shift, y4 + shift}, nil
}

// pickResolventRoot chooses the resolvent-cubic root with the largest
// real part, the conventional choice for numerical stability
// of Ferrari's construction (keeps sqrt(2m) away from 0 whenever the
// quartic isn't itself biquadratic).
func pickResolventRoot(roots []complex128) complex128 {
	best := roots[0]
	for _, r := range roots[1:] {
		if real(r) > real(best) {
			best = r
		}
	}
	return best
}

func solveQuadraticComplex(a, b, c complex128) (complex128, complex128) {
	disc := cmplx.Sqrt(b*b - 4*a*c)
	return (-b + disc) / (2 * a), (-b - disc) / (2 * a)
}

// SeedStrategy selects how SolveDurandKerner picks its initial guesses.
type SeedStrategy int

const (
	// SeedPower seeds z_k = c^(k+1) * r, rotating around the origin by
	// arg(c) each step.
	SeedPower SeedStrategy = iota
	// SeedCircular places n seeds evenly on a circle whose radius is
	// derived from the coefficient norm (a Cauchy-style root bound).
	SeedCircular
	// SeedHomotopic seeds from the roots of a simple polynomial x^n-R^n,
	// the starting point of the homotopy (1-alpha)*p_simple + alpha*p.
	SeedHomotopic
)

// DurandKernerOptions bundles the Durand-Kerner tunables.
type DurandKernerOptions struct {
	Strategy   SeedStrategy
	C          complex128 // power-strategy rotation seed, default 0.4+0.9i
	R          float64    // power/homotopic-strategy radius scale, default ~1
	Alpha      float64    // homotopic-strategy continuation step size, (0,1]
	AbsTolNLog float64    // default 14
	RelTolNLog float64    // default 14
	MaxIterLog float64    // default 3 (10^3 iterations)
	Logger     kitlog.Logger
}

// DefaultDurandKernerOptions returns the package's standard tuning.
func DefaultDurandKernerOptions() DurandKernerOptions {
	return DurandKernerOptions{
		Strategy:   SeedPower,
		C:          complex(0.4, 0.9),
		R:          1.01,
		Alpha:      0.1,
		AbsTolNLog: 14,
		RelTolNLog: 14,
		MaxIterLog: 3,
	}
}

// durandKernerStep runs one simultaneous-iteration sweep
// z_i <- z_i - p(z_i)/prod_{j!=i}(z_i - z_j) and reports the largest
// correction and the largest resulting magnitude, for convergence checks.
func durandKernerStep(c, z []complex128) (newZ []complex128, maxDelta, maxAbsZ float64) {
	n := len(z)
	newZ = make([]complex128, n)
	copy(newZ, z)
	for i := 0; i < n; i++ {
		num := evalPoly(c, z[i])
		denom := complex(1, 0)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			denom *= z[i] - z[j]
		}
		delta := num / denom
		newZ[i] = z[i] - delta
		if d := cmplx.Abs(delta); d > maxDelta {
			maxDelta = d
		}
		if av := cmplx.Abs(newZ[i]); av > maxAbsZ {
			maxAbsZ = av
		}
	}
	return newZ, maxDelta, maxAbsZ
}

// SolveDurandKerner finds all n roots of a degree-n (n>=1) polynomial by
// simultaneous iteration z_i <- z_i - p(z_i)/prod_{j!=i}(z_i - z_j).
func SolveDurandKerner(coeffsDesc []float64, opts DurandKernerOptions) ([]complex128, error) {
	n := len(coeffsDesc) - 1
	if n < 1 {
		return nil, fmt.Errorf("%w: need at least a degree-1 polynomial", serr.ErrInvalidArgument)
	}
	if coeffsDesc[0] == 0 {
		return nil, fmt.Errorf("%w: leading coefficient must be non-zero", serr.ErrInvalidArgument)
	}
	c := make([]complex128, n+1)
	for i, v := range coeffsDesc {
		c[i] = complex(v/coeffsDesc[0], 0)
	}
	z := seedRoots(n, c, opts)

	maxIter := uint64(math.Round(math.Pow(10, opts.MaxIterLog)))
	absTol := math.Pow(10, -opts.AbsTolNLog)
	relTol := math.Pow(10, -opts.RelTolNLog)
	logger := logOrNop(opts.Logger)

	for iter := uint64(0); iter < maxIter; iter++ {
		newZ, maxDelta, maxAbsZ := durandKernerStep(c, z)
		z = newZ
		if maxDelta < absTol && maxDelta < relTol*math.Max(maxAbsZ, 1) {
			return z, nil
		}
	}
	logger.Log("level", "warning", "subsys", "polyroot", "msg", "Durand-Kerner iteration cap reached", "degree", n)
	return z, fmt.Errorf("%w: Durand-Kerner did not converge within %d iterations", serr.ErrConvergenceFailed, maxIter)
}

func evalPoly(coeffsDesc []complex128, x complex128) complex128 {
	var v complex128
	for _, c := range coeffsDesc {
		v = v*x + c
	}
	return v
}

func seedRoots(n int, coeffsDesc []complex128, opts DurandKernerOptions) []complex128 {
	z := make([]complex128, n)
	switch opts.Strategy {
	case SeedCircular:
		radius := cauchyBound(coeffsDesc)
		for k := 0; k < n; k++ {
			theta := 2 * math.Pi * float64(k) / float64(n)
			z[k] = complex(radius*math.Cos(theta), radius*math.Sin(theta))
		}
	case SeedHomotopic:
		z = homotopyContinuation(n, coeffsDesc, opts)
	default: // SeedPower
		c := opts.C
		if c == 0 {
			c = complex(0.4, 0.9)
		}
		r := opts.R
		if r == 0 {
			r = 1.01
		}
		pow := c
		for k := 0; k < n; k++ {
			z[k] = pow * complex(r, 0)
			pow *= c
		}
	}
	return z
}

// homotopyContinuationSteps caps how many alpha increments a malformed
// Alpha (<=0 or >1) falls back to.
const homotopyContinuationSteps = 10

// homotopyContinuationCorrectorIters is how many Durand-Kerner sweeps
// run at each intermediate alpha before advancing the homotopy.
const homotopyContinuationCorrectorIters = 4

// homotopyContinuation tracks the n roots of x^n - R^n (alpha=0, evenly
// spaced on a circle of radius R) through the straight-line homotopy
// H(x,alpha) = (1-alpha)*(x^n - R^n) + alpha*p(x) as alpha walks from 0
// to 1 in opts.Alpha-sized steps, running a few corrector sweeps of
// Durand-Kerner's simultaneous iteration at each intermediate polynomial
// so the roots track continuously instead of jumping straight to p's
// (generally very different) root set.
func homotopyContinuation(n int, p []complex128, opts DurandKernerOptions) []complex128 {
	r := opts.R
	if r == 0 {
		r = 1.01
	}
	z := make([]complex128, n)
	for k := 0; k < n; k++ {
		theta := 2 * math.Pi * float64(k) / float64(n)
		z[k] = complex(r*math.Cos(theta), r*math.Sin(theta))
	}

	simple := make([]complex128, n+1)
	simple[0] = 1
	simple[n] = complex(-math.Pow(r, float64(n)), 0)

	step := opts.Alpha
	if step <= 0 || step > 1 {
		step = 1.0 / float64(homotopyContinuationSteps)
	}
	for alpha := step; ; alpha += step {
		if alpha > 1 {
			alpha = 1
		}
		blended := make([]complex128, n+1)
		for i := range blended {
			blended[i] = complex(1-alpha, 0)*simple[i] + complex(alpha, 0)*p[i]
		}
		for iter := 0; iter < homotopyContinuationCorrectorIters; iter++ {
			z, _, _ = durandKernerStep(blended, z)
		}
		if alpha >= 1 {
			break
		}
	}
	return z
}

// cauchyBound returns 1 + max_i |a_i/a_n| for a monic-normalized
// descending coefficient vector (a_n is coeffsDesc[0] == 1).
func cauchyBound(coeffsDesc []complex128) float64 {
	maxRatio := 0.0
	for _, a := range coeffsDesc[1:] {
		if r := cmplx.Abs(a); r > maxRatio {
			maxRatio = r
		}
	}
	return 1 + maxRatio
}
