package ode

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestRK45ExponentialGrowth(t *testing.T) {
	f := func(_ float64, y []float64) []float64 { return []float64{y[0]} }
	s := &Solver{F: f, Tab: RK45, AbsTolNLog: 10, RelTolNLog: 10}
	s.Init([]float64{1}, 0, 1)
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if s.CurrentState() != Succeeded {
		t.Fatalf("expected Succeeded, got %v", s.CurrentState())
	}
	last := s.History()[len(s.History())-1]
	if !floats.EqualWithinAbs(last[1], math.E, 1e-6) {
		t.Fatalf("y(1) mismatch: got %.9f want %.9f", last[1], math.E)
	}
}

func TestRK23ExponentialGrowth(t *testing.T) {
	f := func(_ float64, y []float64) []float64 { return []float64{y[0]} }
	s := &Solver{F: f, Tab: RK23, AbsTolNLog: 9, RelTolNLog: 9}
	s.Init([]float64{1}, 0, 1)
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	last := s.History()[len(s.History())-1]
	if !floats.EqualWithinAbs(last[1], math.E, 1e-4) {
		t.Fatalf("y(1) mismatch: got %.9f want %.9f", last[1], math.E)
	}
}

func TestDenseOutputAgreesWithHistory(t *testing.T) {
	f := func(_ float64, y []float64) []float64 { return []float64{y[0]} }
	s := &Solver{F: f, Tab: RK45, AbsTolNLog: 10, RelTolNLog: 10}
	s.Init([]float64{1}, 0, 1)
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	hist := s.History()
	mid := hist[len(hist)/2]
	got, err := s.Evaluate(mid[0])
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(got[0], mid[1], 1e-6) {
		t.Fatalf("dense output at a saved time mismatch: got %.9f want %.9f", got[0], mid[1])
	}
}

func TestEvaluateRejectsOutsideRange(t *testing.T) {
	f := func(_ float64, y []float64) []float64 { return []float64{y[0]} }
	s := &Solver{F: f, Tab: RK45}
	s.Init([]float64{1}, 0, 1)
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Evaluate(2.0); err == nil {
		t.Fatal("expected error for x outside integration range")
	}
}

func TestBackwardIntegration(t *testing.T) {
	f := func(_ float64, y []float64) []float64 { return []float64{y[0]} }
	s := &Solver{F: f, Tab: RK45, AbsTolNLog: 9, RelTolNLog: 9}
	s.Init([]float64{math.E}, 1, 0)
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	last := s.History()[len(s.History())-1]
	if !floats.EqualWithinAbs(last[1], 1, 1e-5) {
		t.Fatalf("backward integration mismatch: got %.9f want 1", last[1])
	}
}
