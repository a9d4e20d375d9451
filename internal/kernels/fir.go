package kernels

import "github.com/quarterbit/fpstudy/internal/num"

// FIR applies a causal finite impulse response filter: for each output
// sample n it accumulates taps[k]*x[n-k] over every k with a valid input
// index, treating negative indices as zero padding. The output has the same
// length as x. Accumulation follows opts exactly as in MatMul.
func FIR[T num.Num[T]](taps, x []T, opts Options) []T {
	var zero T
	y := make([]T, len(x))
	for n := range x {
		if opts.AccumulateInFP32 {
			var sum, comp float32
			for k := range taps {
				if n < k {
					break
				}
				prod := float32(taps[k].Float64()) * float32(x[n-k].Float64())
				if opts.Kahan {
					yv := prod - comp
					t := sum + yv
					comp = (t - sum) - yv
					sum = t
				} else {
					sum += prod
				}
			}
			y[n] = zero.FromFloat64(float64(sum))
		} else {
			sum, comp := zero, zero
			for k := range taps {
				if n < k {
					break
				}
				prod := taps[k].Mul(x[n-k])
				if opts.Kahan {
					yv := prod.Sub(comp)
					t := sum.Add(yv)
					comp = t.Sub(sum).Sub(yv)
					sum = t
				} else {
					sum = sum.Add(prod)
				}
			}
			y[n] = sum
		}
	}
	return y
}
