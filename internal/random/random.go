// Package random generates the seeded test cases the experiment driver runs:
// normal vectors and matrices, an ill-conditioned variant, and symmetric
// positive definite systems for the gradient descent experiments. Everything
// is deterministic in the seed so runs reproduce exactly.
package random

import (
	"math/rand"
)

// Source wraps a seeded generator.
type Source struct {
	rng *rand.Rand
}

// New returns a Source seeded with seed.
func New(seed uint32) *Source {
	return &Source{rng: rand.New(rand.NewSource(int64(seed)))}
}

// NormalVector draws n values from N(0, scale²).
func (s *Source) NormalVector(n int, scale float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = s.rng.NormFloat64() * scale
	}
	return out
}

// UniformVector draws n values uniformly from [min, max).
func (s *Source) UniformVector(n int, min, max float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = min + s.rng.Float64()*(max-min)
	}
	return out
}

// Matrix draws a rows×cols row-major matrix from N(0,1). When
// illConditioned is set the first column is scaled down by 1e-6, which
// drives the condition number up without changing the sparsity pattern.
func (s *Source) Matrix(rows, cols int, illConditioned bool) []float64 {
	mat := make([]float64, rows*cols)
	for i := range mat {
		mat[i] = s.rng.NormFloat64()
	}
	if illConditioned && cols > 0 {
		for r := 0; r < rows; r++ {
			mat[r*cols] *= 1e-6
		}
	}
	return mat
}

// SPDMatrix builds a dim×dim symmetric positive definite matrix as
// MᵀM + 0.1·dim·I from a random M, the standard recipe for a well-posed
// quadratic objective.
func (s *Source) SPDMatrix(dim int, illConditioned bool) []float64 {
	m := s.Matrix(dim, dim, illConditioned)
	q := make([]float64, dim*dim)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			acc := 0.0
			for k := 0; k < dim; k++ {
				acc += m[k*dim+i] * m[k*dim+j]
			}
			if i == j {
				acc += float64(dim) * 0.1
			}
			q[i*dim+j] = acc
		}
	}
	return q
}
