package smd

import (
	"math"

	"github.com/gonum/floats"

	"github.com/ChristopherRabotin/scicxx/matrix"
)

const (
	deg2rad = math.Pi / 180
)

// vec3 wraps a 3x1 caller slice in a matrix.M so the Cartesian vector
// helpers below share their indexing with the rest of the numerical
// core instead of reaching into the slice directly.
func vec3(v []float64) *matrix.M {
	return matrix.NewFromVector(v)
}

// norm returns the norm of a given vector which is supposed to be 3x1.
func norm(v []float64) float64 {
	m := vec3(v)
	return math.Sqrt(m.At(0, 0)*m.At(0, 0) + m.At(0, 1)*m.At(0, 1) + m.At(0, 2)*m.At(0, 2))
}

// unit returns the unit vector of a given vector.
func unit(a []float64) (b []float64) {
	n := norm(a)
	if floats.EqualWithinAbs(n, 0, 1e-12) {
		return []float64{0, 0, 0}
	}
	b = make([]float64, len(a))
	for i, val := range a {
		b[i] = val / n
	}
	return
}

// sign returns the sign of a given number.
func sign(v float64) float64 {
	if floats.EqualWithinAbs(v, 0, 1e-12) {
		return 1
	}
	return v / math.Abs(v)
}

// dot performs the inner product of two 3x1 vectors.
func dot(a, b []float64) float64 {
	ma, mb := vec3(a), vec3(b)
	sum := 0.0
	for i := 0; i < 3; i++ {
		sum += ma.At(0, i) * mb.At(0, i)
	}
	return sum
}

// cross performs the cross product of two 3x1 vectors.
func cross(a, b []float64) []float64 {
	ma, mb := vec3(a), vec3(b)
	return []float64{
		ma.At(0, 1)*mb.At(0, 2) - ma.At(0, 2)*mb.At(0, 1),
		ma.At(0, 2)*mb.At(0, 0) - ma.At(0, 0)*mb.At(0, 2),
		ma.At(0, 0)*mb.At(0, 1) - ma.At(0, 1)*mb.At(0, 0),
	}
}

// Spherical2Cartesian returns the provided spherical coordinates vector in Cartesian.
func Spherical2Cartesian(a []float64) (b []float64) {
	b = make([]float64, 3)
	sθ, cθ := math.Sincos(a[1])
	sφ, cφ := math.Sincos(a[2])
	b[0] = a[0] * sθ * cφ
	b[1] = a[0] * sθ * sφ
	b[2] = a[0] * cθ
	return
}

// Cartesian2Spherical returns the provided Cartesian coordinates vector in spherical.
func Cartesian2Spherical(a []float64) (b []float64) {
	b = make([]float64, 3)
	if norm(a) == 0 {
		return []float64{0, 0, 0}
	}
	b[0] = norm(a)
	b[1] = math.Acos(a[2] / b[0])
	b[2] = math.Atan2(a[1], a[0])
	return
}

// Deg2rad converts degrees to radians, and enforced only positive numbers.
func Deg2rad(a float64) float64 {
	if a < 0 {
		a += 360
	}
	return math.Mod(a*deg2rad, 2*math.Pi)
}

// Rad2deg converts radians to degrees, and enforced only positive numbers.
func Rad2deg(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	return math.Mod(a/deg2rad, 360)
}
