package rootfind

import (
	"math"
	"testing"

	"github.com/gonum/floats"

	"github.com/ChristopherRabotin/scicxx/minimize"
)

func TestBisectionFindsRootOfCubic(t *testing.T) {
	f := func(x float64) float64 { return x*x*x - x - 2 }
	b := &Bisection{F: f}
	x, err := b.Solve(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(f(x), 0, 1e-9) {
		t.Fatalf("f(%.9f) = %.9f, want ~0", x, f(x))
	}
}

func TestBisectionRejectsUnsignedBracket(t *testing.T) {
	f := func(x float64) float64 { return x * x }
	b := &Bisection{F: f}
	if _, err := b.Solve(1, 2); err == nil {
		t.Fatal("expected error for an unsigned bracket")
	}
}

func TestHouseholderNewtonSquareRoot(t *testing.T) {
	// f(x) = x^2 - 2, f'(x) = 2x; Newton converges to sqrt(2).
	h := &Householder{
		Order: 1,
		Derivs: []func(float64) float64{
			func(x float64) float64 { return x*x - 2 },
			func(x float64) float64 { return 2 * x },
		},
	}
	x, err := h.Solve(1.5)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(x, math.Sqrt2, 1e-9) {
		t.Fatalf("got %.9f want %.9f", x, math.Sqrt2)
	}
}

func TestHouseholderHalleyCubeRoot(t *testing.T) {
	// f(x) = x^3 - 8, root at x=2; Halley (order 2) needs f,f',f''.
	h := &Householder{
		Order: 2,
		Derivs: []func(float64) float64{
			func(x float64) float64 { return x*x*x - 8 },
			func(x float64) float64 { return 3 * x * x },
			func(x float64) float64 { return 6 * x },
		},
	}
	x, err := h.Solve(1.8)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(x, 2, 1e-8) {
		t.Fatalf("got %.9f want 2", x)
	}
}

func TestHouseholderRejectsTooFewDerivatives(t *testing.T) {
	h := &Householder{
		Order:  1,
		Derivs: []func(float64) float64{func(x float64) float64 { return x }},
	}
	if _, err := h.Solve(1); err == nil {
		t.Fatal("expected ErrInsufficientDerivatives")
	}
}

func TestBrentInverseSolvesWithinBoundedDomain(t *testing.T) {
	// F(y) = sin(y) is monotonic on [0, pi/2]; invert F(y)=0.5.
	f := math.Sin
	bi := &BrentInverse{
		F:      f,
		Domain: Domain{Lo: 0, Hi: math.Pi / 2},
		Brent:  minimize.Brent{AbsTolNLog: 10, RelTolNLog: 10},
	}
	y, err := bi.Solve(0.5)
	if err != nil {
		t.Fatal(err)
	}
	want := math.Asin(0.5)
	if !floats.EqualWithinAbs(y, want, 1e-4) {
		t.Fatalf("got y=%.9f want %.9f", y, want)
	}
}

func TestBrentInverseRejectsEmptyDomain(t *testing.T) {
	bi := &BrentInverse{
		F:      math.Sin,
		Domain: Domain{Lo: 1, Hi: 1, LoOpen: true, HiOpen: true},
	}
	if _, err := bi.Solve(0.1); err == nil {
		t.Fatal("expected error for an empty domain")
	}
}
