package kernels

import (
	"fmt"
	"math"

	"github.com/quarterbit/fpstudy/internal/num"
)

// DescentOptions parameterizes GradientDescent.
type DescentOptions struct {
	StepSize float64
	Tol      float64
	MaxIters int
}

// DescentResult is the terminal snapshot of a gradient descent run. X is
// owned by the caller; the kernel retains nothing.
type DescentResult[T any] struct {
	X          []T
	Iterations int
	Outcome    Outcome
}

// GradientDescent minimizes ½xᵀQx + bᵀx by repeated steps
// x ← x − step·(Qx + b). q is a dim×dim row-major matrix. The matrix-vector
// product inside the loop uses direct summation in T, but the gradient norm
// for the convergence test is computed in float64 regardless of T so that a
// coarse representation cannot fake convergence. Terminates with
// OutcomeMaxIterations when the budget runs out; that is an outcome, not an
// error.
func GradientDescent[T num.Num[T]](q, b, x0 []T, dim int, opts DescentOptions) (DescentResult[T], error) {
	if len(q) != dim*dim {
		return DescentResult[T]{}, fmt.Errorf("gradient descent: matrix has %d elements, want %d (dim=%d)", len(q), dim*dim, dim)
	}
	if len(b) != dim {
		return DescentResult[T]{}, fmt.Errorf("gradient descent: b has %d elements, want %d", len(b), dim)
	}
	if len(x0) != dim {
		return DescentResult[T]{}, fmt.Errorf("gradient descent: x0 has %d elements, want %d", len(x0), dim)
	}

	var zero T
	step := zero.FromFloat64(opts.StepSize)
	x := append([]T(nil), x0...)
	gradient := make([]T, dim)
	for iter := 0; iter < opts.MaxIters; iter++ {
		for i := 0; i < dim; i++ {
			acc := zero
			for j := 0; j < dim; j++ {
				acc = acc.Add(q[i*dim+j].Mul(x[j]))
			}
			gradient[i] = acc.Add(b[i])
		}

		gradNorm := 0.0
		for _, g := range gradient {
			gd := g.Float64()
			gradNorm += gd * gd
		}
		if math.Sqrt(gradNorm) < opts.Tol {
			return DescentResult[T]{X: x, Iterations: iter, Outcome: OutcomeConverged}, nil
		}

		for i := 0; i < dim; i++ {
			x[i] = x[i].Sub(step.Mul(gradient[i]))
		}
	}
	return DescentResult[T]{X: x, Iterations: opts.MaxIters, Outcome: OutcomeMaxIterations}, nil
}
