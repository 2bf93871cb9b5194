package specfunc

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestElementarySymmetricBaseCases(t *testing.T) {
	e := ElementarySymmetric([]float64{2, 3, 5})
	if e[0] != 1 {
		t.Fatalf("e0 must be 1, got %f", e[0])
	}
	if !floats.EqualWithinAbs(e[len(e)-1], 2*3*5, 1e-12) {
		t.Fatalf("e_n must be the product, got %f", e[len(e)-1])
	}
	// e1 is the sum.
	if !floats.EqualWithinAbs(e[1], 10, 1e-12) {
		t.Fatalf("e1 mismatch: got %f", e[1])
	}
}

func TestVandermondeInverseRoundTrip(t *testing.T) {
	nodes := []float64{1, 2, 3, 4}
	inv, err := VandermondeInverse(nodes)
	if err != nil {
		t.Fatal(err)
	}
	n := len(nodes)
	// V[i][j] = nodes[j]^i; V * inv should be the identity within 1e-9.
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var sum float64
			for k := 0; k < n; k++ {
				sum += math.Pow(nodes[k], float64(i)) * inv.At(k, j)
			}
			want := 0.0
			if i == j {
				want = 1.0
			}
			if !floats.EqualWithinAbs(sum, want, 1e-9) {
				t.Fatalf("V*Vinv != I at (%d,%d): got %f", i, j, sum)
			}
		}
	}
}

func TestVandermondeInverseDuplicateNode(t *testing.T) {
	if _, err := VandermondeInverse([]float64{1, 1, 2}); err == nil {
		t.Fatal("expected error for duplicate node")
	}
}

func TestLegendreCoefficientsLowDegrees(t *testing.T) {
	// P0 = 1, P1 = x, P2 = (3x^2-1)/2, P3 = (5x^3-3x)/2
	if got := LegendreCoefficients(0); !floats.Equal(got, []float64{1}) {
		t.Fatalf("P0 mismatch: %v", got)
	}
	if got := LegendreCoefficients(1); !floats.Equal(got, []float64{1, 0}) {
		t.Fatalf("P1 mismatch: %v", got)
	}
	got2 := LegendreCoefficients(2)
	want2 := []float64{1.5, 0, -0.5}
	for i := range want2 {
		if !floats.EqualWithinAbs(got2[i], want2[i], 1e-12) {
			t.Fatalf("P2 mismatch: got %v want %v", got2, want2)
		}
	}
	got3 := LegendreCoefficients(3)
	want3 := []float64{2.5, 0, -1.5, 0}
	for i := range want3 {
		if !floats.EqualWithinAbs(got3[i], want3[i], 1e-12) {
			t.Fatalf("P3 mismatch: got %v want %v", got3, want3)
		}
	}
}

func evalPoly(coeffsDesc []float64, x float64) float64 {
	v := 0.0
	for _, c := range coeffsDesc {
		v = v*x + c
	}
	return v
}

func TestLegendreOrthogonalityAtGaussNodes(t *testing.T) {
	// Legendre[2] evaluated at the 3 roots of Legendre[3] (a degree-3
	// Gauss rule is exact to degree 5, enough to test orthogonality of
	// a degree-2 polynomial against a degree-3 one over [-1,1]).
	roots := []float64{-math.Sqrt(3.0 / 5.0), 0, math.Sqrt(3.0 / 5.0)}
	weights := []float64{5.0 / 9.0, 8.0 / 9.0, 5.0 / 9.0}
	p2 := LegendreCoefficients(2)
	var integral float64
	for i, r := range roots {
		integral += weights[i] * evalPoly(p2, r)
	}
	if !floats.EqualWithinAbs(integral, 0, 1e-12) {
		t.Fatalf("expected orthogonality integral ~0, got %f", integral)
	}
}

func TestBinomial(t *testing.T) {
	cases := []struct{ n, k int; want float64 }{
		{5, 0, 1}, {5, 5, 1}, {5, 2, 10}, {5, 6, 0}, {5, -1, 0}, {10, 3, 120},
	}
	for _, c := range cases {
		if got := Binomial(c.n, c.k); !floats.EqualWithinAbs(got, c.want, 1e-9) {
			t.Fatalf("Binomial(%d,%d): got %f want %f", c.n, c.k, got, c.want)
		}
	}
}

func TestIncompleteBellTriangleBaseCases(t *testing.T) {
	x := []float64{1, 2, 3}
	B := IncompleteBellTriangle(x)
	if B.At(0, 0) != 1 {
		t.Fatalf("B_0,0 must be 1")
	}
	if B.At(0, 1) != 0 {
		t.Fatalf("B_1,0 must be 0")
	}
	// B_{1,1} = C(0,0)*x1*B_{0,0} = x1 = 1.
	if !floats.EqualWithinAbs(B.At(1, 1), 1, 1e-12) {
		t.Fatalf("B_1,1 mismatch: got %f", B.At(1, 1))
	}
	// Outside the triangle (k>n) must be NaN.
	if !math.IsNaN(B.At(2, 1)) {
		t.Fatalf("expected NaN outside triangle at (k=2,n=1), got %f", B.At(2, 1))
	}
}
