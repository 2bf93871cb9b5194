package integrate

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestFractionalIntegralIntegerOrderMatchesOrdinary(t *testing.T) {
	// I^1 f(x) for f=1 over [0,x] is just x.
	fi := &FractionalIntegral{F: func(float64) float64 { return 1 }, Order: 1, C: 0}
	got, err := fi.Evaluate(3.0)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(got, 3, 1e-9) {
		t.Fatalf("got %.9f want 3", got)
	}
}

func TestFractionalIntegralHalfOrderOfConstant(t *testing.T) {
	// I^0.5 of f=1 from 0 is 2*sqrt(x/pi) (classical closed form).
	fi := &FractionalIntegral{F: func(float64) float64 { return 1 }, Order: 0.5, C: 0}
	got, err := fi.Evaluate(4.0)
	if err != nil {
		t.Fatal(err)
	}
	want := 2 * math.Sqrt(4.0/math.Pi)
	if !floats.EqualWithinAbs(got, want, 1e-4) {
		t.Fatalf("got %.9f want %.9f", got, want)
	}
}

func TestFractionalIntegralRejectsNonPositiveOrder(t *testing.T) {
	fi := &FractionalIntegral{F: func(float64) float64 { return 1 }, Order: 0, C: 0}
	if _, err := fi.Evaluate(1.0); err == nil {
		t.Fatal("expected error for zero order")
	}
}

func TestFractionalIntegralRejectsXBelowBase(t *testing.T) {
	fi := &FractionalIntegral{F: func(float64) float64 { return 1 }, Order: 1, C: 5}
	if _, err := fi.Evaluate(1.0); err == nil {
		t.Fatal("expected error for x <= C")
	}
}
