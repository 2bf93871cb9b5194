// Package iterator provides the generic elementwise-refinement driver
// shared by the adaptive derivative engines in scicxx/deriv. It is a
// plain driver function parameterized by four callables plus a shared
// state struct, rather than a polymorphic base type.
package iterator

import (
	"math"

	"github.com/ChristopherRabotin/scicxx/matrix"
)

// State is the per-iteration transient state shared by the pre/post/
// terminate hooks. Callers embed it in their own state struct.
type State struct {
	Input            float64
	Output           float64
	LastOutput       float64
	AbsError         float64
	LastAbsError     float64
	Step             float64
	Direction        float64
	Iteration        uint64
	FuncEvals        uint64
	Code             Code
}

// Code is the iterator state machine's status.
type Code int

const (
	// InProgress means the loop has not yet converged or diverged.
	InProgress Code = 1
	// Finished means CheckTerminate reported convergence.
	Finished Code = 0
	// ErrorIncrease means the tracked error started growing between
	// iterations; the driver should stop and report its best estimate.
	ErrorIncrease Code = -2
	// ValueError means the user function returned a non-finite value.
	ValueError Code = -3
)

// Func is the user callable sampled at the points PreEvaluate requests.
type Func func(x float64) float64

// Hooks bundles the four extension points of the adaptive-refinement
// driver.
type Hooks struct {
	// PreEvaluate returns the matrix of x values the driver must sample
	// f at this iteration (a single column for scalar schemes, several
	// for e.g. a multi-point stencil).
	PreEvaluate func(s *State) *matrix.M
	// PostEvaluate consumes the (x, f(x)) pairs just sampled and updates
	// the shared state (new Output, new AbsError, ...).
	PostEvaluate func(s *State, x, fx *matrix.M)
	// CheckTerminate inspects the state and returns the terminal Code,
	// or InProgress to keep iterating.
	CheckTerminate func(s *State) Code
	// Finalize runs once after the loop exits, for any cleanup/best-
	// estimate selection. May be nil.
	Finalize func(s *State)
}

// Run drives the iteration: pre-evaluate, sample f at every requested
// point, post-evaluate, bump counters, check termination, repeat; until
// CheckTerminate reports non-InProgress or maxIter (given as a power of
// ten, maxIterLog, so the cap is 10^maxIterLog) is reached. Returns the
// final state.
func Run(f Func, hooks Hooks, maxIterLog float64) *State {
	s := &State{Code: InProgress, Direction: 1}
	maxIter := pow10(maxIterLog)
	for s.Iteration < maxIter {
		xs := hooks.PreEvaluate(s)
		cols, rows := xs.Dims()
		fxs := matrix.NewSized(cols, rows)
		for c := 0; c < cols; c++ {
			for r := 0; r < rows; r++ {
				fxs.Set(c, r, f(xs.At(c, r)))
			}
			s.FuncEvals++
		}
		hooks.PostEvaluate(s, xs, fxs)
		s.Iteration++
		if code := hooks.CheckTerminate(s); code != InProgress {
			s.Code = code
			break
		}
	}
	if hooks.Finalize != nil {
		hooks.Finalize(s)
	}
	return s
}

func pow10(nLog float64) uint64 {
	if nLog <= 0 {
		return 1
	}
	return uint64(math.Round(math.Pow(10, nLog)))
}
