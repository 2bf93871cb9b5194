// Package specfunc implements the elementary special functions consumed
// by the polynomial root solver, the derivative and integration engines:
// elementary symmetric polynomials, the closed-form Vandermonde inverse,
// Legendre and Stieltjes polynomial coefficients, the incomplete Bell
// polynomial triangle, and binomial coefficients.
package specfunc

import (
	"fmt"
	"math"

	"github.com/ChristopherRabotin/scicxx/matrix"
	"github.com/ChristopherRabotin/scicxx/serr"
)

// ElementarySymmetric returns [e0, e1, ..., en] for the elementary
// symmetric polynomials of x1..xn, via the O(n^2) DP recurrence
// e_k = sum_j x_j * e_{k-1}(x1..x_{j-1}).
func ElementarySymmetric(x []float64) []float64 {
	n := len(x)
	e := make([]float64, n+1)
	e[0] = 1
	for _, xj := range x {
		for k := len(e) - 1; k >= 1; k-- {
			e[k] += xj * e[k-1]
		}
	}
	return e
}

// VandermondeInverse returns the closed-form inverse of the Vandermonde
// matrix V built from nodes, where V[i][j] = nodes[j]^i (i,j = 0..n-1).
// The result is a matrix whose column j, row i holds
//
//	(-1)^(n-1-i) * e_{n-1-i}(nodes without nodes[j]) / prod_{k!=j}(nodes[j]-nodes[k])
//
// Fails with serr.ErrInvalidArgument if two nodes coincide (singular V).
func VandermondeInverse(nodes []float64) (*matrix.M, error) {
	n := len(nodes)
	if n == 0 {
		return nil, fmt.Errorf("%w: no nodes given", serr.ErrInvalidArgument)
	}
	out := matrix.NewSized(n, n)
	for j, xj := range nodes {
		others := make([]float64, 0, n-1)
		for k, xk := range nodes {
			if k == j {
				continue
			}
			others = append(others, xk)
		}
		denom := 1.0
		for _, xk := range others {
			if xk == xj {
				return nil, fmt.Errorf("%w: duplicate Vandermonde node %v", serr.ErrInvalidArgument, xj)
			}
			denom *= xj - xk
		}
		esp := ElementarySymmetric(others) // length n (indices 0..n-1)
		for i := 0; i < n; i++ {
			ek := esp[n-1-i]
			sign := 1.0
			if (n-1-i)%2 == 1 {
				sign = -1
			}
			out.Set(j, i, sign*ek/denom)
		}
	}
	return out, nil
}

// LegendreCoefficients returns the degree-n Legendre polynomial's
// coefficients in descending order, missing even/odd powers filled with
// 0, computed via the standard three-term recurrence
// (k+1)P_{k+1} = (2k+1) x P_k - k P_{k-1}.
func LegendreCoefficients(n int) []float64 {
	if n < 0 {
		panic("specfunc: negative Legendre degree")
	}
	if n == 0 {
		return []float64{1}
	}
	// Ascending-power coefficient arrays, fixed length n+1.
	p0 := make([]float64, n+1)
	p0[0] = 1
	p1 := make([]float64, n+1)
	p1[1] = 1
	for k := 1; k < n; k++ {
		next := make([]float64, n+1)
		for i := n - 1; i >= 0; i-- {
			if p1[i] != 0 {
				next[i+1] += float64(2*k+1) * p1[i]
			}
		}
		for i := 0; i <= n; i++ {
			next[i] -= float64(k) * p0[i]
			next[i] /= float64(k + 1)
		}
		p0, p1 = p1, next
	}
	return reverse(p1)
}

// StieltjesCoefficients returns the Stieltjes (Kronrod-extension)
// polynomial E_{n+1}'s coefficients in descending order (length n+2),
// expressed as E_{n+1} = P_{n+1} + sum_{k=1}^{m} a_k P_{n+1-2k}, m =
// floor((n+1)/2), with the a_k obtained from Patterson's backward ratio
// recurrence a_k = -a_{k-1}*(n-2k+2)(n-2k+1) / (2k*(2(n-k)+3)), a_0=1.
func StieltjesCoefficients(n int) []float64 {
	if n < 0 {
		panic("specfunc: negative Stieltjes base degree")
	}
	m := (n + 1) / 2
	a := make([]float64, m+1)
	a[0] = 1
	for k := 1; k <= m; k++ {
		num := float64((n - 2*k + 2) * (n - 2*k + 1))
		den := float64(2*k) * float64(2*(n-k)+3)
		a[k] = -a[k-1] * num / den
	}
	out := make([]float64, n+2) // ascending, degree n+1
	for k := 0; k <= m; k++ {
		deg := n + 1 - 2*k
		legAsc := reverse(LegendreCoefficients(deg)) // ascending, length deg+1
		for i, c := range legAsc {
			out[i] += a[k] * c
		}
	}
	return reverse(out)
}

// reverse returns a reversed copy of v (ascending<->descending power order).
func reverse(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[len(v)-1-i] = x
	}
	return out
}

// Binomial returns C(n,k), the binomial coefficient, 0 if k<0 or k>n.
func Binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1.0
	for i := 0; i < k; i++ {
		result *= float64(n-i) / float64(i+1)
	}
	return result
}

// IncompleteBellTriangle returns the lower-triangular matrix of
// incomplete Bell polynomials B_{n,k}(x1..xN) for n,k = 0..N (N =
// len(x)), filled by
//
//	B_{n+1,k+1} = sum_{i=0}^{n-k} C(n,i) x_{i+1} B_{n-i,k}
//
// with B_{0,0}=1, B_{n,0}=0 for n>0. Cells outside the triangle (k>n)
// are NaN. Column index is k, row index is n.
func IncompleteBellTriangle(x []float64) *matrix.M {
	N := len(x)
	size := N + 1
	B := matrix.NewSized(size, size)
	for c := 0; c < size; c++ {
		for r := 0; r < size; r++ {
			B.Set(c, r, math.NaN())
		}
	}
	B.Set(0, 0, 1)
	for n := 1; n < size; n++ {
		B.Set(0, n, 0)
	}
	for n := 0; n < N; n++ {
		for k := 0; k <= n; k++ {
			var sum float64
			for i := 0; i <= n-k; i++ {
				sum += Binomial(n, i) * x[i] * B.At(k, n-i)
			}
			B.Set(k+1, n+1, sum)
		}
	}
	return B
}
