// Package kernels holds the four numeric kernels the precision experiments
// run: dense matrix product, FIR filter, quadratic gradient descent, and
// Newton-Raphson root finding. Each kernel is written once against the
// num.Num capability interface and instantiated per representation.
//
// Accumulation behavior is controlled per call through Options; kernels keep
// no state between calls, so concurrent invocations with different policies
// never interfere. All index sweeps run in ascending order, keeping the
// floating-point association order fixed across runs.
package kernels

// Options selects the accumulation discipline for the summation kernels.
type Options struct {
	// Kahan enables compensated summation: a running compensation term with
	// the two-sum correction applied on every addition.
	Kahan bool
	// AccumulateInFP32 keeps the running sum in a single-precision scratch
	// value and converts back to the element representation only at the end.
	// When false the sum stays in the element representation, so a reduced
	// format re-quantizes after every addition.
	AccumulateInFP32 bool
}

// Outcome is the terminal state of an iterative kernel. All outcomes are
// results to inspect, not errors.
type Outcome int

const (
	// OutcomeConverged means the convergence test passed within the
	// iteration budget.
	OutcomeConverged Outcome = iota
	// OutcomeMaxIterations means the iteration budget ran out first.
	OutcomeMaxIterations
	// OutcomeZeroDerivative means Newton's method hit an exactly zero
	// derivative and stopped without converging.
	OutcomeZeroDerivative
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConverged:
		return "converged"
	case OutcomeMaxIterations:
		return "max_iterations"
	case OutcomeZeroDerivative:
		return "zero_derivative"
	}
	return "unknown"
}

// Converged reports whether the outcome is the successful terminal state.
func (o Outcome) Converged() bool { return o == OutcomeConverged }
