package smd

import (
	"fmt"
	"math"
	"testing"

	"github.com/gonum/floats"
)

// vectorsEqual reports whether a and b agree componentwise within a
// fixed relative tolerance; vectors of different lengths are never equal.
func vectorsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i, av := range a {
		if !floats.EqualWithinRel(av, b[i], 1e-3) {
			return false
		}
	}
	return true
}

// anglesEqual reports whether two angles in radians are equal modulo
// a full turn, within angleε.
func anglesEqual(a, b float64) (bool, error) {
	diff := math.Mod(math.Abs(a-b), 2*math.Pi)
	if diff >= angleε {
		return false, fmt.Errorf("difference of %3.10f degrees", Rad2deg(diff))
	}
	return true, nil
}

// assertPanic fails the test unless f panics.
func assertPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("code did not panic")
		}
	}()
	f()
}
