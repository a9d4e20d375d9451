package kernels

import (
	"math"

	"github.com/quarterbit/fpstudy/internal/num"
)

// NewtonOptions parameterizes Newton.
type NewtonOptions struct {
	Tol      float64
	MaxIters int
}

// NewtonResult is the terminal snapshot of a root-finding run.
type NewtonResult[T any] struct {
	Root       T
	Iterations int
	Outcome    Outcome
}

// Newton iterates x ← x − f(x)/f'(x) from x0, with f and df evaluated in T.
// The |f(x)| convergence test runs in float64. An exactly zero derivative
// terminates the run with OutcomeZeroDerivative before the division is
// attempted; the division-by-zero is detected, never masked.
func Newton[T num.Num[T]](x0 T, f, df func(T) T, opts NewtonOptions) NewtonResult[T] {
	x := x0
	for iter := 0; iter < opts.MaxIters; iter++ {
		fx := f(x)
		if math.Abs(fx.Float64()) < opts.Tol {
			return NewtonResult[T]{Root: x, Iterations: iter, Outcome: OutcomeConverged}
		}
		dfx := df(x)
		if dfx.Float64() == 0 {
			return NewtonResult[T]{Root: x, Iterations: iter, Outcome: OutcomeZeroDerivative}
		}
		x = x.Sub(fx.Div(dfx))
	}
	return NewtonResult[T]{Root: x, Iterations: opts.MaxIters, Outcome: OutcomeMaxIterations}
}
