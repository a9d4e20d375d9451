// Package num provides the numeric representations the precision experiments
// run over. Each representation is a defined type implementing the Num
// capability interface, so a kernel written once against Num[T] instantiates
// for every precision.
package num

import (
	"math"

	"github.com/quarterbit/fpstudy/internal/minifloat"
)

// Num is the capability set shared by all representations: field arithmetic,
// negation, total conversions to and from float64, and the special-value
// tests. FromFloat64 is callable on the zero value of T.
type Num[T any] interface {
	Add(T) T
	Sub(T) T
	Mul(T) T
	Div(T) T
	Neg() T
	FromFloat64(float64) T
	Float64() float64
	IsNaN() bool
	IsInf() bool
}

// FromFloat64s converts a float64 buffer into the representation T.
func FromFloat64s[T Num[T]](src []float64) []T {
	var zero T
	out := make([]T, len(src))
	for i, v := range src {
		out[i] = zero.FromFloat64(v)
	}
	return out
}

// ToFloat64s converts a buffer of T back to float64.
func ToFloat64s[T Num[T]](src []T) []float64 {
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = v.Float64()
	}
	return out
}

// F64 is native double precision, the reference representation.
type F64 float64

func (x F64) Add(y F64) F64 { return x + y }
func (x F64) Sub(y F64) F64 { return x - y }
func (x F64) Mul(y F64) F64 { return x * y }
func (x F64) Div(y F64) F64 { return x / y }
func (x F64) Neg() F64 { return -x }
func (F64) FromFloat64(v float64) F64 { return F64(v) }
func (x F64) Float64() float64 { return float64(x) }
func (x F64) IsNaN() bool { return math.IsNaN(float64(x)) }
func (x F64) IsInf() bool { return math.IsInf(float64(x), 0) }

// F32 is native single precision.
type F32 float32

func (x F32) Add(y F32) F32 { return x + y }
func (x F32) Sub(y F32) F32 { return x - y }
func (x F32) Mul(y F32) F32 { return x * y }
func (x F32) Div(y F32) F32 { return x / y }
func (x F32) Neg() F32 { return -x }
func (F32) FromFloat64(v float64) F32 { return F32(v) }
func (x F32) Float64() float64 { return float64(x) }
func (x F32) IsNaN() bool { return math.IsNaN(float64(x)) }
func (x F32) IsInf() bool { return math.IsInf(float64(x), 0) }

const (
	tf32MantissaBits = 10
	bf16MantissaBits = 7
)

// roundMantissa rounds a float32 to nearest-even at the given explicit
// mantissa width and zeroes the dropped bits. NaN and Inf pass through. A
// finite value whose rounding carries past the largest exponent becomes an
// infinity, matching IEEE overflow for these wide-exponent formats.
func roundMantissa(f float32, bits uint) float32 {
	u := math.Float32bits(f)
	if u&0x7F800000 == 0x7F800000 {
		return f
	}
	shift := 23 - bits
	u += 1<<(shift-1) - 1 + u>>shift&1
	u &^= 1<<shift - 1
	return math.Float32frombits(u)
}

// TF32 shares float32's exponent range but keeps only 10 explicit mantissa
// bits. Every operation widens to float32, computes there, and re-rounds
// the result to the reduced mantissa.
type TF32 float32

func tf32(f float32) TF32 { return TF32(roundMantissa(f, tf32MantissaBits)) }

func (x TF32) Add(y TF32) TF32 { return tf32(float32(x) + float32(y)) }
func (x TF32) Sub(y TF32) TF32 { return tf32(float32(x) - float32(y)) }
func (x TF32) Mul(y TF32) TF32 { return tf32(float32(x) * float32(y)) }
func (x TF32) Div(y TF32) TF32 { return tf32(float32(x) / float32(y)) }
func (x TF32) Neg() TF32 { return -x }
func (TF32) FromFloat64(v float64) TF32 { return tf32(float32(v)) }
func (x TF32) Float64() float64 { return float64(x) }
func (x TF32) IsNaN() bool { return math.IsNaN(float64(x)) }
func (x TF32) IsInf() bool { return math.IsInf(float64(x), 0) }

// BF16 is the 16-bit truncation of float32: same exponent range, 7 explicit
// mantissa bits, stored as the high half of the float32 bit pattern.
type BF16 uint16

func bf16(f float32) BF16 {
	u := math.Float32bits(f)
	if u&0x7F800000 == 0x7F800000 {
		if u&0x007FFFFF != 0 {
			// Keep NaN quiet: the truncated mantissa must stay nonzero.
			return BF16(u>>16 | 0x0040)
		}
		return BF16(u >> 16)
	}
	u += 0x7FFF + u>>16&1
	return BF16(u >> 16)
}

func (x BF16) float32() float32 { return math.Float32frombits(uint32(x) << 16) }

func (x BF16) Add(y BF16) BF16 { return bf16(x.float32() + y.float32()) }
func (x BF16) Sub(y BF16) BF16 { return bf16(x.float32() - y.float32()) }
func (x BF16) Mul(y BF16) BF16 { return bf16(x.float32() * y.float32()) }
func (x BF16) Div(y BF16) BF16 { return bf16(x.float32() / y.float32()) }
func (x BF16) Neg() BF16 { return x ^ 0x8000 }
func (BF16) FromFloat64(v float64) BF16 { return bf16(float32(v)) }
func (x BF16) Float64() float64 { return float64(x.float32()) }
func (x BF16) IsNaN() bool { return x&0x7F80 == 0x7F80 && x&0x007F != 0 }
func (x BF16) IsInf() bool { return x&0x7FFF == 0x7F80 }

// P3109 is the 8-bit minifloat representation. The stored byte is a code in
// the default minifloat layout; arithmetic decodes both operands into a
// float32 scratch value, operates there, and re-encodes, so every operation
// is subject to the codec's saturation and flush policies.
type P3109 uint8

func p3109(f float32) P3109 {
	return P3109(minifloat.Encode(f, minifloat.DefaultLayout))
}

func (x P3109) float32() float32 {
	return minifloat.Decode[float32](uint8(x), minifloat.DefaultLayout)
}

func (x P3109) Add(y P3109) P3109 { return p3109(x.float32() + y.float32()) }
func (x P3109) Sub(y P3109) P3109 { return p3109(x.float32() - y.float32()) }
func (x P3109) Mul(y P3109) P3109 { return p3109(x.float32() * y.float32()) }
func (x P3109) Div(y P3109) P3109 { return p3109(x.float32() / y.float32()) }
func (x P3109) Neg() P3109 { return p3109(-x.float32()) }
func (P3109) FromFloat64(v float64) P3109 {
	return P3109(minifloat.Encode(v, minifloat.DefaultLayout))
}
func (x P3109) Float64() float64 { return float64(x.float32()) }
func (x P3109) IsNaN() bool { return uint8(x) == minifloat.DefaultLayout.NaNCode() }
func (x P3109) IsInf() bool {
	c := uint8(x)
	return c == minifloat.DefaultLayout.PosInfCode() || c == minifloat.DefaultLayout.NegInfCode()
}
