package minimize

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestBracketFindsUphillPoint(t *testing.T) {
	f := func(x float64) float64 { return (x - 3) * (x - 3) }
	b := &Brent{F: f}
	xa, xb, xc, fa, fb, fc, err := b.Bracket(0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !(fb < fa && fb < fc) {
		t.Fatalf("xb=%f is not a valid bracket minimum: fa=%f fb=%f fc=%f", xb, fa, fb, fc)
	}
	lo, hi := xa, xc
	if lo > hi {
		lo, hi = hi, lo
	}
	if !(lo <= 3 && 3 <= hi) {
		t.Fatalf("true minimum 3 not inside bracket [%f,%f]", lo, hi)
	}
}

func TestMinimizeQuadratic(t *testing.T) {
	f := func(x float64) float64 { return (x-2)*(x-2) + 1 }
	b := &Brent{F: f}
	x, fx, err := b.Minimize(0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(x, 2, 1e-6) {
		t.Fatalf("got x=%.9f want 2", x)
	}
	if !floats.EqualWithinAbs(fx, 1, 1e-6) {
		t.Fatalf("got fx=%.9f want 1", fx)
	}
}

func TestMinimizeBracketedWithinDomain(t *testing.T) {
	f := func(x float64) float64 { return math.Abs(x - 0.3) }
	b := &Brent{F: f, AbsTolNLog: 8, RelTolNLog: 8}
	x, _, err := b.MinimizeBracketed(0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(x, 0.3, 1e-4) {
		t.Fatalf("got x=%.9f want 0.3", x)
	}
}

func TestMinimizeBracketedRejectsEmptyBracket(t *testing.T) {
	b := &Brent{F: func(x float64) float64 { return x }}
	if _, _, err := b.MinimizeBracketed(2, 1); err == nil {
		t.Fatal("expected error for inverted bracket")
	}
}

func TestMinimizeNonQuadraticMatchesKnownMinimum(t *testing.T) {
	// f(x) = x^4 - 3x^2, minima at x = +-sqrt(1.5)
	f := func(x float64) float64 { return x*x*x*x - 3*x*x }
	b := &Brent{F: f}
	x, _, err := b.Minimize(2, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	want := math.Sqrt(1.5)
	if !floats.EqualWithinAbs(math.Abs(x), want, 1e-4) {
		t.Fatalf("got x=%.9f want +-%.9f", x, want)
	}
}
