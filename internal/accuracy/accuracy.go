// Package accuracy compares a kernel's reduced-precision output against its
// double-precision truth run and produces the per-run metrics snapshot.
package accuracy

import (
	"fmt"
	"math"
	"time"
)

// epsilon guards the relative-error denominator when the reference is the
// zero vector.
const epsilon = 1e-12

// RunMetrics is the read-only result of comparing one kernel invocation to
// its truth run. It is never mutated after construction.
type RunMetrics struct {
	RelativeError float64
	Iterations    int
	Converged     bool
	NaNCount      int
	InfCount      int
	Elapsed       time.Duration
}

// Norm returns the Euclidean norm of v.
func Norm(v []float64) float64 {
	acc := 0.0
	for _, x := range v {
		acc += x * x
	}
	return math.Sqrt(acc)
}

// RelativeError returns ‖truth − got‖₂ / max(‖truth‖₂, ε). Mismatched
// lengths are a usage error.
func RelativeError(truth, got []float64) (float64, error) {
	if len(truth) != len(got) {
		return 0, fmt.Errorf("accuracy: length mismatch: truth has %d elements, candidate has %d", len(truth), len(got))
	}
	diff := make([]float64, len(truth))
	for i := range truth {
		diff[i] = truth[i] - got[i]
	}
	return Norm(diff) / math.Max(Norm(truth), epsilon), nil
}

// CountSpecials tallies NaN and ±Inf elements separately.
func CountSpecials(v []float64) (nans, infs int) {
	for _, x := range v {
		switch {
		case math.IsNaN(x):
			nans++
		case math.IsInf(x, 0):
			infs++
		}
	}
	return nans, infs
}

// Compare builds the RunMetrics for one kernel invocation. got is the
// candidate output already converted to float64; iterations and converged
// come from the kernel's own outcome.
func Compare(truth, got []float64, iterations int, converged bool, elapsed time.Duration) (RunMetrics, error) {
	relErr, err := RelativeError(truth, got)
	if err != nil {
		return RunMetrics{}, err
	}
	nans, infs := CountSpecials(got)
	return RunMetrics{
		RelativeError: relErr,
		Iterations:    iterations,
		Converged:     converged,
		NaNCount:      nans,
		InfCount:      infs,
		Elapsed:       elapsed,
	}, nil
}
