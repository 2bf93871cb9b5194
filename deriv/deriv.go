// Package deriv implements the adaptive finite-difference derivative and
// the fractional (Riemann-Liouville/Caputo) derivative, both driven by
// the generic scicxx/iterator refinement loop.
package deriv

import (
	"fmt"
	"math"

	kitlog "github.com/go-kit/kit/log"

	"github.com/ChristopherRabotin/scicxx/iterator"
	"github.com/ChristopherRabotin/scicxx/matrix"
	"github.com/ChristopherRabotin/scicxx/serr"
	"github.com/ChristopherRabotin/scicxx/specfunc"
)

func logOrNop(l kitlog.Logger) kitlog.Logger {
	if l == nil {
		return kitlog.NewNopLogger()
	}
	return l
}

// Direction selects the finite-difference stencil's placement relative
// to the evaluation point.
type Direction int

const (
	Center Direction = iota
	Forward
	Backward
)

// Func is the scalar function being differentiated.
type Func func(x float64) float64

// FiniteDifference computes f'(x) by repeatedly halving the sample step,
// evaluating an order-FDMOrder stencil, and tracking the estimated
// error until it stops improving.
type FiniteDifference struct {
	F          Func
	Dir        Direction
	FDMOrder   int // stencil width, must be even
	InitStep   float64
	StepFactor float64 // sigma > 1
	AbsTolNLog float64
	RelTolNLog float64
	MaxIterLog float64
	Logger     kitlog.Logger // optional, nil defaults to a no-op
}

// NewFiniteDifference builds a FiniteDifference with standard defaults
// (sigma=2, AbsTol=RelTol=12, MaxIterLog=2) for any zero-valued tunable.
func NewFiniteDifference(f Func, dir Direction, fdmOrder int, initStep float64) *FiniteDifference {
	return &FiniteDifference{
		F:          f,
		Dir:        dir,
		FDMOrder:   fdmOrder,
		InitStep:   initStep,
		StepFactor: 2,
		AbsTolNLog: 12,
		RelTolNLog: 12,
		MaxIterLog: 2,
	}
}

// stencilNodes returns the FDMOrder+1 integer offsets (in units of the
// current step) sampled around x for the given direction.
func stencilNodes(dir Direction, order int) []float64 {
	np := order + 1
	nodes := make([]float64, np)
	switch dir {
	case Forward:
		for i := 0; i < np; i++ {
			nodes[i] = float64(i)
		}
	case Backward:
		for i := 0; i < np; i++ {
			nodes[i] = float64(i - order)
		}
	default: // Center
		half := order / 2
		for i := 0; i < np; i++ {
			nodes[i] = float64(i - half)
		}
	}
	return nodes
}

// firstDerivativeWeights solves V*c = e1 (e1 = [0,1,0,...]) via
// specfunc.VandermondeInverse, returning the stencil coefficients c such
// that f'(x) ~= (1/h) * sum_k c_k*f(x+nodes[k]*h).
func firstDerivativeWeights(nodes []float64) ([]float64, error) {
	inv, err := specfunc.VandermondeInverse(nodes)
	if err != nil {
		return nil, err
	}
	np := len(nodes)
	c := make([]float64, np)
	for k := 0; k < np; k++ {
		c[k] = inv.At(k, 1)
	}
	return c, nil
}

type fdState struct {
	step     float64
	nodes    []float64
	weights  []float64
	best     float64
	bestErr  float64
}

// Evaluate drives the adaptive halving loop and returns the best
// estimate of f'(x) recorded before termination.
func (fd *FiniteDifference) Evaluate(x float64) (float64, error) {
	if fd.FDMOrder < 1 || fd.FDMOrder%2 != 0 {
		return 0, fmt.Errorf("%w: FDMOrder must be a positive even integer, got %d", serr.ErrInvalidArgument, fd.FDMOrder)
	}
	sigma := fd.StepFactor
	if sigma <= 1 {
		sigma = 2
	}
	nodes := stencilNodes(fd.Dir, fd.FDMOrder)
	weights, err := firstDerivativeWeights(nodes)
	if err != nil {
		return 0, err
	}

	fst := &fdState{step: fd.InitStep, nodes: nodes, weights: weights, bestErr: math.Inf(1)}
	hooks := iterator.Hooks{
		PreEvaluate: func(s *iterator.State) *matrix.M {
			xs := matrix.NewFromVector(make([]float64, len(nodes)))
			for i, n := range nodes {
				xs.Set(0, i, x+n*fst.step)
			}
			return xs
		},
		PostEvaluate: func(s *iterator.State, xsamp, fsamp *matrix.M) {
			var acc float64
			for i, w := range weights {
				acc += w * fsamp.At(0, i)
			}
			estimate := acc / fst.step
			if s.Iteration == 0 {
				s.Output = estimate
				s.AbsError = math.Inf(1)
			} else {
				s.LastOutput = s.Output
				s.LastAbsError = s.AbsError
				s.Output = estimate
				s.AbsError = math.Abs(estimate - s.LastOutput)
			}
			if s.AbsError <= fst.bestErr {
				fst.best = s.Output
				fst.bestErr = s.AbsError
			}
			fst.step /= sigma
		},
		CheckTerminate: func(s *iterator.State) iterator.Code {
			if math.IsNaN(s.Output) || math.IsInf(s.Output, 0) {
				return iterator.ValueError
			}
			if s.Iteration < 2 {
				return iterator.InProgress
			}
			absTol := math.Pow(10, -fd.AbsTolNLog)
			relTol := math.Pow(10, -fd.RelTolNLog)
			if s.AbsError <= math.Max(absTol, relTol*math.Abs(s.Output)) {
				return iterator.Finished
			}
			if s.AbsError > s.LastAbsError {
				return iterator.ErrorIncrease
			}
			return iterator.InProgress
		},
	}
	s := iterator.Run(iterator.Func(fd.F), hooks, fd.MaxIterLog)
	if s.Code == iterator.ValueError {
		return 0, fmt.Errorf("%w: finite-difference sample was not finite", serr.ErrDomainError)
	}
	logger := logOrNop(fd.Logger)
	if s.Code == iterator.ErrorIncrease {
		logger.Log("level", "warning", "subsys", "deriv", "branch", "finite-difference", "iter", s.Iteration, "residual", s.AbsError)
	} else if s.Code == iterator.InProgress {
		logger.Log("level", "warning", "subsys", "deriv", "branch", "finite-difference", "msg", "iteration cap reached", "iter", s.Iteration, "residual", s.AbsError)
	}
	return fst.best, nil
}
