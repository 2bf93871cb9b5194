package lambert

import (
	"testing"
	"time"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

const earthGM = 3.98600433e5 // km^3/s^2

func vecClose(t *testing.T, got, want *mat64.Vector, tol float64, msg string) {
	t.Helper()
	for i := 0; i < want.Len(); i++ {
		if !floats.EqualWithinAbs(got.At(i, 0), want.At(i, 0), tol) {
			t.Fatalf("%s: component %d: got %.6f want %.6f", msg, i, got.At(i, 0), want.At(i, 0))
		}
	}
}

// TestSolveVallado reproduces the worked Vallado (4th ed., p.497)
// short-way transfer example.
func TestSolveVallado(t *testing.T) {
	r1 := mat64.NewVector(3, []float64{15945.34, 0, 0})
	r2 := mat64.NewVector(3, []float64{12214.83899, 10249.46731, 0})
	wantV1 := mat64.NewVector(3, []float64{2.058913, 2.915965, 0})
	wantV2 := mat64.NewVector(3, []float64{-3.451565, 0.910315, 0})

	s := &Solver{GM: earthGM}
	sols, err := s.Solve(r1, r2, 76*time.Minute.Seconds())
	if err != nil {
		t.Fatal(err)
	}
	if len(sols) == 0 {
		t.Fatal("expected at least one solution")
	}
	zeroRev := sols[0]
	if zeroRev.Revolutions != 0 {
		t.Fatalf("expected the 0-rev solution first, got N=%d", zeroRev.Revolutions)
	}
	vecClose(t, zeroRev.V1, wantV1, 1e-3, "v1")
	vecClose(t, zeroRev.V2, wantV2, 1e-3, "v2")
}

// TestSolveRetrogradeDiffersFromPrograde checks that flipping Retrograde
// changes which family of solutions comes back (opposite lambda sign,
// so a different transfer-plane normal and a different velocity set).
func TestSolveRetrogradeDiffersFromPrograde(t *testing.T) {
	r1 := mat64.NewVector(3, []float64{15945.34, 0, 0})
	r2 := mat64.NewVector(3, []float64{12214.83899, 10249.46731, 0})

	pro := &Solver{GM: earthGM}
	proSols, err := pro.Solve(r1, r2, 76*time.Minute.Seconds())
	if err != nil {
		t.Fatal(err)
	}
	retro := &Solver{GM: earthGM, Retrograde: true}
	retroSols, err := retro.Solve(r1, r2, 76*time.Minute.Seconds())
	if err != nil {
		t.Fatal(err)
	}
	if mat64.Norm(proSols[0].V1, 2) == mat64.Norm(retroSols[0].V1, 2) &&
		floats.EqualWithinAbs(proSols[0].V1.At(1, 0), retroSols[0].V1.At(1, 0), 1e-9) {
		t.Fatal("expected retrograde and prograde solutions to differ")
	}
	if proSols[0].Retrograde == retroSols[0].Retrograde {
		t.Fatal("expected Solution.Retrograde to record the branch sign actually used, differing between the two solves")
	}
}

func TestSolveRejectsNonPositiveTOF(t *testing.T) {
	r1 := mat64.NewVector(3, []float64{15945.34, 0, 0})
	r2 := mat64.NewVector(3, []float64{12214.83899, 10249.46731, 0})
	s := &Solver{GM: earthGM}
	if _, err := s.Solve(r1, r2, 0); err == nil {
		t.Fatal("expected error for non-positive time of flight")
	}
}

func TestSolveRejectsNonPositiveGM(t *testing.T) {
	r1 := mat64.NewVector(3, []float64{15945.34, 0, 0})
	r2 := mat64.NewVector(3, []float64{12214.83899, 10249.46731, 0})
	s := &Solver{GM: 0}
	if _, err := s.Solve(r1, r2, 4560); err == nil {
		t.Fatal("expected error for non-positive GM")
	}
}

func TestSolveRejectsWrongSizedVectors(t *testing.T) {
	r1 := mat64.NewVector(2, []float64{1, 0})
	r2 := mat64.NewVector(3, []float64{0, 1, 0})
	s := &Solver{GM: earthGM}
	if _, err := s.Solve(r1, r2, 4560); err == nil {
		t.Fatal("expected error for non-3x1 vector")
	}
}

// TestMultiRevRequiresMaxRevolutions confirms that no multi-revolution
// solutions are returned unless the caller opts in via MaxRevolutions.
func TestMultiRevRequiresMaxRevolutions(t *testing.T) {
	r1 := mat64.NewVector(3, []float64{15945.34, 0, 0})
	r2 := mat64.NewVector(3, []float64{12214.83899, 10249.46731, 0})
	s := &Solver{GM: earthGM}
	sols, err := s.Solve(r1, r2, 76*time.Minute.Seconds())
	if err != nil {
		t.Fatal(err)
	}
	for _, sol := range sols {
		if sol.Revolutions != 0 {
			t.Fatalf("did not expect a multi-rev solution with MaxRevolutions=0, got N=%d", sol.Revolutions)
		}
	}
}

func TestTofDerivativesAgreeWithFiniteDifference(t *testing.T) {
	lam := 0.4
	n := 0
	x := 0.2
	h := 1e-5
	y := computeY(x, lam)
	t0 := tofEquation(x, lam, n)
	d1, _, _ := tofDerivatives(x, y, lam, t0)
	tPlus := tofEquation(x+h, lam, n)
	tMinus := tofEquation(x-h, lam, n)
	fd := (tPlus - tMinus) / (2 * h)
	if !floats.EqualWithinAbs(d1, fd, 1e-4) {
		t.Fatalf("analytic dT/dx=%.9f, finite-difference=%.9f", d1, fd)
	}
}
