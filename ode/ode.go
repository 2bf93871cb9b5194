// Package ode implements the embedded adaptive Runge-Kutta solver
// (Bogacki-Shampine RK23, Dormand-Prince RK45) with dense output,
// driven by Init/InvokeRun/CurrentState plus an interpolating
// Evaluate for dense output between accepted steps.
package ode

import (
	"fmt"
	"math"

	kitlog "github.com/go-kit/kit/log"

	"github.com/ChristopherRabotin/scicxx/serr"
)

// RHS is the right-hand side of y' = f(t, y); the output length must
// match the input.
type RHS func(t float64, y []float64) []float64

// State is the solver's run state.
type State int

const (
	Processing State = iota
	Succeeded
	Failed
)

// denseSegment freezes the interpolant for one accepted step.
type denseSegment struct {
	tStart, tEnd float64
	h            float64
	yStart       []float64
	q            [][]float64 // dim(y) x DenseOrder
}

// Solver is an OrdinaryDifferentialEquation instance: an embedded RK
// method plus the adaptive step-size controller and dense-output
// archive.
type Solver struct {
	F   RHS
	Tab Tableau

	AbsTolNLog float64 // default 6
	RelTolNLog float64 // default 3
	MaxStep    float64 // default +Inf
	MinFactor  float64 // default 0.2
	MaxFactor  float64 // default 10
	FactorSafe float64 // default 0.9
	MaxRejects int     // per-step retry cap before Failed, default 50
	Logger     kitlog.Logger

	t0, t1    float64
	direction float64
	t, tPrev  float64
	y         []float64
	h         float64
	dense     []denseSegment
	history   [][]float64 // [t, y...] rows
	state     State
}

func logOrNop(l kitlog.Logger) kitlog.Logger {
	if l == nil {
		return kitlog.NewNopLogger()
	}
	return l
}

func (s *Solver) fillDefaults() {
	if s.AbsTolNLog == 0 {
		s.AbsTolNLog = 6
	}
	if s.RelTolNLog == 0 {
		s.RelTolNLog = 3
	}
	if s.MaxStep == 0 {
		s.MaxStep = math.Inf(1)
	}
	if s.MinFactor == 0 {
		s.MinFactor = 0.2
	}
	if s.MaxFactor == 0 {
		s.MaxFactor = 10
	}
	if s.FactorSafe == 0 {
		s.FactorSafe = 0.9
	}
	if s.MaxRejects == 0 {
		s.MaxRejects = 50
	}
}

// Init sets the initial state, determines the integration direction,
// and clears the dense-output and history buffers.
func (s *Solver) Init(y0 []float64, t0, t1 float64) {
	s.fillDefaults()
	s.t0, s.t1 = t0, t1
	if t1 >= t0 {
		s.direction = 1
	} else {
		s.direction = -1
	}
	s.t, s.tPrev = t0, t0
	s.y = append([]float64{}, y0...)
	s.h = math.NaN()
	s.dense = nil
	s.history = [][]float64{append([]float64{t0}, y0...)}
	s.state = Processing
}

// CurrentState reports Processing, Succeeded, or Failed.
func (s *Solver) CurrentState() State { return s.state }

// size returns the absolute distance between the current and previous
// integration points.
func (s *Solver) Size() float64 { return math.Abs(s.t - s.tPrev) }

func rmsErrorNorm(e, y0, y1 []float64, atol, rtol float64) float64 {
	var sum float64
	for i := range e {
		scale := atol + rtol*math.Max(math.Abs(y0[i]), math.Abs(y1[i]))
		v := e[i] / scale
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(e)))
}

func vecNorm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// selectInitialStep follows the Hairer/scipy heuristic: estimate from
// the local Lipschitz behavior of f around (t0,y0), scaled by tolerance,
// bounded above by MaxStep.
func (s *Solver) selectInitialStep() float64 {
	atol := math.Pow(10, -s.AbsTolNLog)
	rtol := math.Pow(10, -s.RelTolNLog)
	f0 := s.F(s.t, s.y)
	scale := make([]float64, len(s.y))
	for i := range scale {
		scale[i] = atol + rtol*math.Abs(s.y[i])
	}
	d0 := 0.0
	d1 := 0.0
	for i := range s.y {
		d0 += (s.y[i] / scale[i]) * (s.y[i] / scale[i])
		d1 += (f0[i] / scale[i]) * (f0[i] / scale[i])
	}
	d0, d1 = math.Sqrt(d0/float64(len(s.y))), math.Sqrt(d1/float64(len(s.y)))
	var h0 float64
	if d0 < 1e-5 || d1 < 1e-5 {
		h0 = 1e-6
	} else {
		h0 = 0.01 * d0 / d1
	}
	y1 := make([]float64, len(s.y))
	for i := range y1 {
		y1[i] = s.y[i] + s.direction*h0*f0[i]
	}
	f1 := s.F(s.t+s.direction*h0, y1)
	d2 := 0.0
	for i := range s.y {
		v := (f1[i] - f0[i]) / scale[i]
		d2 += v * v
	}
	d2 = math.Sqrt(d2/float64(len(s.y))) / h0
	var h1 float64
	if d1 <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1.0/float64(s.Tab.StepOrder+1))
	}
	h := math.Min(100*h0, h1)
	return math.Min(h, s.MaxStep)
}

// stepOnce evaluates all stages (plus the FSAL endpoint evaluation) and
// returns the candidate new state, the scaled error vector, and the
// full stage table (Stages+1 rows) for dense-output assembly.
func (s *Solver) stepOnce(h float64) (yNew, errVec []float64, k [][]float64) {
	n := len(s.y)
	N := s.Tab.Stages
	k = make([][]float64, N+1)
	k[0] = s.F(s.t, s.y)
	for i := 1; i < N; i++ {
		ySum := make([]float64, n)
		copy(ySum, s.y)
		for j := 0; j < i; j++ {
			a := s.Tab.A[i][j]
			if a == 0 {
				continue
			}
			for d := 0; d < n; d++ {
				ySum[d] += h * a * k[j][d]
			}
		}
		k[i] = s.F(s.t+s.Tab.C[i]*h, ySum)
	}
	yNew = make([]float64, n)
	copy(yNew, s.y)
	for i := 0; i < N; i++ {
		b := s.Tab.B[i]
		if b == 0 {
			continue
		}
		for d := 0; d < n; d++ {
			yNew[d] += h * b * k[i][d]
		}
	}
	k[N] = s.F(s.t+h, yNew)

	errVec = make([]float64, n)
	for i := 0; i <= N; i++ {
		e := s.Tab.E[i]
		if e == 0 {
			continue
		}
		for d := 0; d < n; d++ {
			errVec[d] += h * e * k[i][d]
		}
	}
	return yNew, errVec, k
}

// InvokeRun advances one accepted step (retrying internally on
// rejection) and appends the new state to the history buffer.
func (s *Solver) InvokeRun() error {
	if s.state != Processing {
		return nil
	}
	if math.IsNaN(s.h) {
		s.h = s.selectInitialStep()
	}
	atol := math.Pow(10, -s.AbsTolNLog)
	rtol := math.Pow(10, -s.RelTolNLog)
	logger := logOrNop(s.Logger)

	h := s.direction * math.Min(math.Abs(s.h), s.MaxStep)
	remaining := s.t1 - s.t
	if math.Abs(h) > math.Abs(remaining) {
		h = remaining
	}

	for reject := 0; ; reject++ {
		if reject > s.MaxRejects {
			s.state = Failed
			logger.Log("level", "warning", "subsys", "ode", "msg", "step rejection cap reached", "t", s.t, "h", h)
			return fmt.Errorf("%w: ODE step rejected %d times at t=%f", serr.ErrConvergenceFailed, reject, s.t)
		}
		yNew, errVec, k := s.stepOnce(h)
		norm := rmsErrorNorm(errVec, s.y, yNew, atol, rtol)
		if norm <= 1 {
			factor := s.MaxFactor
			if norm > 0 {
				factor = math.Min(s.MaxFactor, math.Max(s.MinFactor, s.FactorSafe*math.Pow(norm, -1.0/float64(s.Tab.ErrorOrder+1))))
			}
			tNew := s.t + h
			s.saveDenseOutput(h, s.y, k)
			s.tPrev = s.t
			s.t = tNew
			s.y = yNew
			s.h = math.Abs(h) * factor
			s.history = append(s.history, append([]float64{s.t}, s.y...))
			if math.Abs(s.t-s.t1) < 1e-13*math.Max(1, math.Abs(s.t1)) || (s.direction > 0 && s.t >= s.t1) || (s.direction < 0 && s.t <= s.t1) {
				s.state = Succeeded
			}
			return nil
		}
		factor := math.Max(s.MinFactor, s.FactorSafe*math.Pow(norm, -1.0/float64(s.Tab.ErrorOrder+1)))
		logger.Log("level", "warning", "subsys", "ode", "msg", "step rejected", "t", s.t, "h", h, "norm", norm)
		h *= factor
	}
}

// Run drives InvokeRun until the solver reaches Succeeded or Failed.
func (s *Solver) Run() error {
	for s.state == Processing {
		if err := s.InvokeRun(); err != nil {
			return err
		}
	}
	if s.state == Failed {
		return fmt.Errorf("%w: ODE integration did not reach t1", serr.ErrConvergenceFailed)
	}
	return nil
}

// saveDenseOutput freezes Q = K^T * P for the step just taken.
func (s *Solver) saveDenseOutput(h float64, yStart []float64, k [][]float64) {
	n := len(yStart)
	order := s.Tab.DenseOrder
	q := make([][]float64, n)
	for d := 0; d < n; d++ {
		q[d] = make([]float64, order)
		for m := 0; m < order; m++ {
			var sum float64
			for i := range k {
				sum += k[i][d] * s.Tab.P[i][m]
			}
			q[d][m] = sum
		}
	}
	s.dense = append(s.dense, denseSegment{
		tStart: s.t,
		tEnd:   s.t + h,
		h:      h,
		yStart: append([]float64{}, yStart...),
		q:      q,
	})
}

// Evaluate is operator()(x): locate the bracketing dense-output segment
// and return the interpolated y-vector. Rejects x outside the range
// actually covered by accepted steps.
func (s *Solver) Evaluate(x float64) ([]float64, error) {
	for _, seg := range s.dense {
		lo, hi := seg.tStart, seg.tEnd
		if lo > hi {
			lo, hi = hi, lo
		}
		if x < lo-1e-12 || x > hi+1e-12 {
			continue
		}
		sVal := (x - seg.tStart) / seg.h
		y := make([]float64, len(seg.yStart))
		for d := range y {
			y[d] = seg.yStart[d]
			sp := sVal
			for m := 0; m < len(seg.q[d]); m++ {
				y[d] += seg.h * seg.q[d][m] * sp
				sp *= sVal
			}
		}
		return y, nil
	}
	return nil, fmt.Errorf("%w: x=%f is outside the integrated dense-output range", serr.ErrDomainError, x)
}

// History returns the accepted-step buffer as rows of [t, y...].
func (s *Solver) History() [][]float64 { return s.history }
