package kernels

import (
	"fmt"

	"github.com/quarterbit/fpstudy/internal/num"
)

// MatMul multiplies two n×n row-major matrices. Each output cell accumulates
// the dot product of a row of a and a column of b under the accumulation
// policy in opts. The k index always sweeps in ascending order.
func MatMul[T num.Num[T]](a, b []T, n int, opts Options) ([]T, error) {
	if len(a) != n*n {
		return nil, fmt.Errorf("matmul: left matrix has %d elements, want %d (n=%d)", len(a), n*n, n)
	}
	if len(b) != n*n {
		return nil, fmt.Errorf("matmul: right matrix has %d elements, want %d (n=%d)", len(b), n*n, n)
	}

	var zero T
	c := make([]T, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if opts.AccumulateInFP32 {
				var sum, comp float32
				for k := 0; k < n; k++ {
					prod := float32(a[i*n+k].Float64()) * float32(b[k*n+j].Float64())
					if opts.Kahan {
						y := prod - comp
						t := sum + y
						comp = (t - sum) - y
						sum = t
					} else {
						sum += prod
					}
				}
				c[i*n+j] = zero.FromFloat64(float64(sum))
			} else {
				sum, comp := zero, zero
				for k := 0; k < n; k++ {
					prod := a[i*n+k].Mul(b[k*n+j])
					if opts.Kahan {
						y := prod.Sub(comp)
						t := sum.Add(y)
						comp = t.Sub(sum).Sub(y)
						sum = t
					} else {
						sum = sum.Add(prod)
					}
				}
				c[i*n+j] = sum
			}
		}
	}
	return c, nil
}
