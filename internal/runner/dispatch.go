package runner

import (
	"fmt"

	"github.com/quarterbit/fpstudy/internal/kernels"
	"github.com/quarterbit/fpstudy/internal/num"
)

// The kernels are generic over the representation; the plan names precisions
// as strings. These helpers bridge the two: convert float64 inputs into T,
// run the kernel, and convert the output back for comparison.

func matMulAt[T num.Num[T]](a, b []float64, n int, opts kernels.Options) ([]float64, error) {
	out, err := kernels.MatMul(num.FromFloat64s[T](a), num.FromFloat64s[T](b), n, opts)
	if err != nil {
		return nil, err
	}
	return num.ToFloat64s(out), nil
}

func runMatMul(p num.Precision, a, b []float64, n int, opts kernels.Options) ([]float64, error) {
	switch p {
	case num.PrecisionFP64:
		return matMulAt[num.F64](a, b, n, opts)
	case num.PrecisionFP32:
		return matMulAt[num.F32](a, b, n, opts)
	case num.PrecisionTF32:
		return matMulAt[num.TF32](a, b, n, opts)
	case num.PrecisionBF16:
		return matMulAt[num.BF16](a, b, n, opts)
	case num.PrecisionP3109:
		return matMulAt[num.P3109](a, b, n, opts)
	}
	return nil, fmt.Errorf("unsupported precision: %v", p)
}

func firAt[T num.Num[T]](taps, x []float64, opts kernels.Options) []float64 {
	return num.ToFloat64s(kernels.FIR(num.FromFloat64s[T](taps), num.FromFloat64s[T](x), opts))
}

func runFIR(p num.Precision, taps, x []float64, opts kernels.Options) ([]float64, error) {
	switch p {
	case num.PrecisionFP64:
		return firAt[num.F64](taps, x, opts), nil
	case num.PrecisionFP32:
		return firAt[num.F32](taps, x, opts), nil
	case num.PrecisionTF32:
		return firAt[num.TF32](taps, x, opts), nil
	case num.PrecisionBF16:
		return firAt[num.BF16](taps, x, opts), nil
	case num.PrecisionP3109:
		return firAt[num.P3109](taps, x, opts), nil
	}
	return nil, fmt.Errorf("unsupported precision: %v", p)
}

type descentOutcome struct {
	X          []float64
	Iterations int
	Converged  bool
}

func descentAt[T num.Num[T]](q, b, x0 []float64, dim int, opts kernels.DescentOptions) (descentOutcome, error) {
	res, err := kernels.GradientDescent(
		num.FromFloat64s[T](q), num.FromFloat64s[T](b), num.FromFloat64s[T](x0), dim, opts)
	if err != nil {
		return descentOutcome{}, err
	}
	return descentOutcome{
		X:          num.ToFloat64s(res.X),
		Iterations: res.Iterations,
		Converged:  res.Outcome.Converged(),
	}, nil
}

func runDescent(p num.Precision, q, b, x0 []float64, dim int, opts kernels.DescentOptions) (descentOutcome, error) {
	switch p {
	case num.PrecisionFP64:
		return descentAt[num.F64](q, b, x0, dim, opts)
	case num.PrecisionFP32:
		return descentAt[num.F32](q, b, x0, dim, opts)
	case num.PrecisionTF32:
		return descentAt[num.TF32](q, b, x0, dim, opts)
	case num.PrecisionBF16:
		return descentAt[num.BF16](q, b, x0, dim, opts)
	case num.PrecisionP3109:
		return descentAt[num.P3109](q, b, x0, dim, opts)
	}
	return descentOutcome{}, fmt.Errorf("unsupported precision: %v", p)
}

type newtonOutcome struct {
	Root       float64
	Iterations int
	Converged  bool
}

func newtonAt[T num.Num[T]](initial float64, fn Function, opts kernels.NewtonOptions) newtonOutcome {
	var z T
	f := func(x T) T { return z.FromFloat64(fn.Eval(x.Float64())) }
	df := func(x T) T { return z.FromFloat64(fn.Deriv(x.Float64())) }
	res := kernels.Newton(z.FromFloat64(initial), f, df, opts)
	return newtonOutcome{
		Root:       res.Root.Float64(),
		Iterations: res.Iterations,
		Converged:  res.Outcome.Converged(),
	}
}

func runNewton(p num.Precision, initial float64, fn Function, opts kernels.NewtonOptions) (newtonOutcome, error) {
	switch p {
	case num.PrecisionFP64:
		return newtonAt[num.F64](initial, fn, opts), nil
	case num.PrecisionFP32:
		return newtonAt[num.F32](initial, fn, opts), nil
	case num.PrecisionTF32:
		return newtonAt[num.TF32](initial, fn, opts), nil
	case num.PrecisionBF16:
		return newtonAt[num.BF16](initial, fn, opts), nil
	case num.PrecisionP3109:
		return newtonAt[num.P3109](initial, fn, opts), nil
	}
	return newtonOutcome{}, fmt.Errorf("unsupported precision: %v", p)
}
