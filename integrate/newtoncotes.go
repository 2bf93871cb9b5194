package integrate

import (
	"fmt"

	"github.com/ChristopherRabotin/scicxx/serr"
	"github.com/ChristopherRabotin/scicxx/specfunc"
)

// ncWeightTable bundles the even-spaced Newton-Cotes closed-rule weights
// (as fractions of the step h, summing the block's contribution to
// step*sum(w_i*y_i)) for degree n = 1..4; higher degrees are not in the
// table and go through the Vandermonde solve below instead.
var ncWeightTable = map[int][]float64{
	1: {0.5, 0.5},
	2: {1.0 / 3, 4.0 / 3, 1.0 / 3},
	3: {3.0 / 8, 9.0 / 8, 9.0 / 8, 3.0 / 8},
	4: {14.0 / 45, 64.0 / 45, 24.0 / 45, 64.0 / 45, 14.0 / 45},
}

// Block bundles a set of evenly-spaced samples, the Newton-Cotes weight
// vector for its degree, and the step size.
type Block struct {
	Y       []float64
	Weights []float64
	Step    float64
}

// Integrate returns step * sum(w_i * y_i).
func (b Block) Integrate() float64 {
	var sum float64
	for i, w := range b.Weights {
		sum += w * b.Y[i]
	}
	return b.Step * sum
}

// NewtonCotesWeights returns the degree-n closed Newton-Cotes weights on
// the even-spaced nodes [0,1,...,n], from the bundled table for n<=4 or
// else by solving the Vandermonde moment-matching system V*w = b with
// b_k = n^(k+1)/(k+1).
func NewtonCotesWeights(n int) ([]float64, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: Newton-Cotes degree must be >=1, got %d", serr.ErrInvalidArgument, n)
	}
	if w, ok := ncWeightTable[n]; ok {
		return w, nil
	}
	nodes := make([]float64, n+1)
	for i := range nodes {
		nodes[i] = float64(i)
	}
	inv, err := specfunc.VandermondeInverse(nodes)
	if err != nil {
		return nil, err
	}
	b := make([]float64, n+1)
	for k := 0; k <= n; k++ {
		b[k] = pow(float64(n), k+1) / float64(k+1)
	}
	w := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		var sum float64
		for k := 0; k <= n; k++ {
			sum += inv.At(i, k) * b[k]
		}
		w[i] = sum
	}
	return w, nil
}

func pow(x float64, n int) float64 {
	v := 1.0
	for i := 0; i < n; i++ {
		v *= x
	}
	return v
}

// UnevenWeights solves the Vandermonde system for an arbitrary
// (possibly unevenly spaced) node set, used for DiscreteIntegrate's
// non-uniform blocks.
func UnevenWeights(nodes []float64) ([]float64, error) {
	n := len(nodes) - 1
	inv, err := specfunc.VandermondeInverse(nodes)
	if err != nil {
		return nil, err
	}
	lo, hi := nodes[0], nodes[n]
	b := make([]float64, n+1)
	for k := 0; k <= n; k++ {
		b[k] = (pow(hi, k+1) - pow(lo, k+1)) / float64(k+1)
	}
	w := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		var sum float64
		for k := 0; k <= n; k++ {
			sum += inv.At(i, k) * b[k]
		}
		w[i] = sum
	}
	return w, nil
}

// SingleIntegrate applies the degree-(len(y)-1) Newton-Cotes block once
// over y sampled at step h.
func SingleIntegrate(y []float64, h float64) (float64, error) {
	w, err := NewtonCotesWeights(len(y) - 1)
	if err != nil {
		return 0, err
	}
	return Block{Y: y, Weights: w, Step: h}.Integrate(), nil
}

// CompositeIntegrate slices y (evenly spaced with step h) into
// stride-level blocks of a degree-level Newton-Cotes rule and sums them.
// len(y)-1 must be a multiple of level.
func CompositeIntegrate(y []float64, h float64, level int) (float64, error) {
	if level < 1 || (len(y)-1)%level != 0 {
		return 0, fmt.Errorf("%w: sample count-1 (%d) must be a multiple of level %d", serr.ErrInvalidArgument, len(y)-1, level)
	}
	w, err := NewtonCotesWeights(level)
	if err != nil {
		return 0, err
	}
	var total float64
	for start := 0; start+level < len(y); start += level {
		total += Block{Y: y[start : start+level+1], Weights: w, Step: h}.Integrate()
	}
	return total, nil
}

// DiscreteIntegrate splits arbitrarily-spaced (x,y) samples into
// degree-level blocks of consecutive points and sums each block's
// Vandermonde-solved contribution; used when IsEvenlySized is false.
func DiscreteIntegrate(x, y []float64, level int) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("%w: x and y must have equal length", serr.ErrIncompatibleShape)
	}
	if level < 1 || (len(y)-1)%level != 0 {
		return 0, fmt.Errorf("%w: sample count-1 (%d) must be a multiple of level %d", serr.ErrInvalidArgument, len(y)-1, level)
	}
	var total float64
	for start := 0; start+level < len(y); start += level {
		nodes := x[start : start+level+1]
		w, err := UnevenWeights(nodes)
		if err != nil {
			return 0, err
		}
		var sum float64
		for i, wi := range w {
			sum += wi * y[start+i]
		}
		total += sum
	}
	return total, nil
}

// Trapezoid integrates evenly-spaced samples y (step h) via the
// composite trapezoidal rule (Newton-Cotes level 1).
func Trapezoid(y []float64, h float64) (float64, error) {
	return CompositeIntegrate(y, h, 1)
}

// Simpson integrates evenly-spaced samples y (step h). An even sample
// count (odd number of intervals) is handled by applying ordinary
// Simpson to the first len(y)-1 points and a closed-form 3-point
// correction on the final interval, h*(alpha*f_N + beta*f_{N-1} -
// eta*f_{N-2}) with alpha=5/12, beta=8/12, eta=1/12 (the integral of
// the quadratic through the last three samples over the last interval);
// an odd sample count uses plain composite Simpson throughout.
func Simpson(y []float64, h float64) (float64, error) {
	n := len(y) - 1
	if n < 2 {
		return 0, fmt.Errorf("%w: Simpson's rule needs at least 3 samples", serr.ErrInvalidArgument)
	}
	if n%2 == 0 {
		return CompositeIntegrate(y, h, 2)
	}
	// Odd n: Simpson over the first n-1 (even) intervals, then a
	// quadratic-correction 3-point tail for the last interval.
	head, err := CompositeIntegrate(y[:n], h, 2)
	if err != nil {
		return 0, err
	}
	fN, fN1, fN2 := y[n], y[n-1], y[n-2]
	// Closed-form tail over [x_{n-1}, x_n] only: the quadratic through
	// x_{n-2}, x_{n-1}, x_n integrated over the last interval gives
	// alpha*f_N + beta*f_{N-1} - eta*f_{N-2} with alpha=5/12, beta=8/12,
	// eta=1/12 (times h).
	tail := h * (5.0/12*fN + 8.0/12*fN1 - 1.0/12*fN2)
	return head + tail, nil
}

// Romberg requires 2^k+1 evenly-spaced samples (step h over the whole
// interval) and returns the Richardson-extrapolated estimate T_{k,k}.
func Romberg(y []float64, totalInterval float64) (float64, error) {
	n := len(y) - 1
	k := 0
	for (1 << uint(k)) < n {
		k++
	}
	if (1 << uint(k)) != n {
		return 0, fmt.Errorf("%w: Romberg needs 2^k+1 samples, got %d", serr.ErrInvalidArgument, len(y))
	}
	T := make([][]float64, k+1)
	for i := range T {
		T[i] = make([]float64, k+1)
	}
	for i := 0; i <= k; i++ {
		stride := n >> uint(i)
		h := totalInterval / float64(int(1)<<uint(i))
		var sum float64
		for j := 0; j+stride <= n; j += stride {
			sum += (y[j] + y[j+stride]) / 2
		}
		T[i][0] = h * sum
	}
	for j := 1; j <= k; j++ {
		for i := j; i <= k; i++ {
			fourJ := pow(4, j)
			T[i][j] = (fourJ*T[i][j-1] - T[i-1][j-1]) / (fourJ - 1)
		}
	}
	return T[k][k], nil
}

// Level dispatches on rule degree: 0 -> Romberg, 1 -> trapezoid,
// 2 -> Simpson, >=3 -> composite Newton-Cotes of that degree.
func Level(level int, y []float64, h float64) (float64, error) {
	switch level {
	case 0:
		return Romberg(y, h*float64(len(y)-1))
	case 1:
		return Trapezoid(y, h)
	case 2:
		return Simpson(y, h)
	default:
		return CompositeIntegrate(y, h, level)
	}
}
