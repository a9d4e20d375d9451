package num

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecialValuesAreTotal(t *testing.T) {
	// Conversions to and from float64 must be defined for NaN and the
	// infinities in every representation.
	t.Run("fp32", func(t *testing.T) {
		var z F32
		assert.True(t, z.FromFloat64(math.NaN()).IsNaN())
		assert.True(t, z.FromFloat64(math.Inf(1)).IsInf())
		assert.True(t, z.FromFloat64(math.Inf(-1)).IsInf())
	})
	t.Run("tf32", func(t *testing.T) {
		var z TF32
		assert.True(t, z.FromFloat64(math.NaN()).IsNaN())
		assert.True(t, z.FromFloat64(math.Inf(1)).IsInf())
		assert.True(t, math.IsInf(z.FromFloat64(math.Inf(-1)).Float64(), -1))
	})
	t.Run("bf16", func(t *testing.T) {
		var z BF16
		assert.True(t, z.FromFloat64(math.NaN()).IsNaN())
		assert.True(t, math.IsNaN(z.FromFloat64(math.NaN()).Float64()))
		assert.True(t, z.FromFloat64(math.Inf(1)).IsInf())
		assert.True(t, math.IsInf(z.FromFloat64(math.Inf(-1)).Float64(), -1))
	})
	t.Run("p3109_8", func(t *testing.T) {
		var z P3109
		assert.True(t, z.FromFloat64(math.NaN()).IsNaN())
		assert.True(t, math.IsNaN(z.FromFloat64(math.NaN()).Float64()))
		assert.True(t, z.FromFloat64(math.Inf(1)).IsInf())
		assert.True(t, math.IsInf(z.FromFloat64(math.Inf(-1)).Float64(), -1))
	})
}

func TestTF32Truncation(t *testing.T) {
	var z TF32

	// 2^-11 is representable on its own but vanishes against 1.0 when the
	// sum is re-truncated to 10 mantissa bits (tie rounds to even).
	one := z.FromFloat64(1)
	tiny := z.FromFloat64(math.Ldexp(1, -11))
	assert.Equal(t, math.Ldexp(1, -11), tiny.Float64())
	assert.Equal(t, 1.0, one.Add(tiny).Float64())

	// 2^-10 is the last mantissa bit and survives.
	ulp := z.FromFloat64(math.Ldexp(1, -10))
	assert.Equal(t, 1.0+math.Ldexp(1, -10), one.Add(ulp).Float64())
}

func TestBF16Truncation(t *testing.T) {
	var z BF16

	one := z.FromFloat64(1)
	assert.Equal(t, 1.0, one.Float64())

	// 7 mantissa bits: 1 + 2^-8 ties back to 1.0, 1 + 2^-7 is exact.
	assert.Equal(t, 1.0, z.FromFloat64(1+math.Ldexp(1, -8)).Float64())
	assert.Equal(t, 1.0078125, z.FromFloat64(1+math.Ldexp(1, -7)).Float64())

	// Storage really is the high half of the float32 pattern.
	assert.Equal(t, BF16(0x3F80), one)
	assert.Equal(t, BF16(0xBF80), one.Neg())
}

func TestP3109Saturation(t *testing.T) {
	var z P3109

	// Products beyond the 8-bit range clamp to the maximum finite magnitude
	// instead of overflowing to infinity.
	big := z.FromFloat64(10)
	prod := big.Mul(big)
	assert.Equal(t, 15.5, prod.Float64())
	assert.False(t, prod.IsInf())

	neg := z.FromFloat64(-10).Mul(big)
	assert.Equal(t, -15.5, neg.Float64())
	assert.False(t, neg.IsNaN())

	// Division by a flushed zero produces the infinity sentinel.
	inf := big.Div(z.FromFloat64(0))
	assert.True(t, inf.IsInf())
}

func TestP3109Requantization(t *testing.T) {
	var z P3109

	// Every operation re-encodes. One ULP at 8.0 is 0.5, so adding a
	// quarter is a half-ULP tie and rounds away from zero.
	sum := z.FromFloat64(8)
	small := z.FromFloat64(0.25)
	assert.Equal(t, 8.5, sum.Add(small).Float64())

	// At the top of the range the same carry saturates instead.
	top := z.FromFloat64(15.5)
	assert.Equal(t, 15.5, top.Add(small).Float64())
}

func TestSliceConversions(t *testing.T) {
	in := []float64{0, 1, -2.5, 0.375}

	out64 := ToFloat64s(FromFloat64s[F64](in))
	assert.Equal(t, in, out64)

	out32 := ToFloat64s(FromFloat64s[F32](in))
	assert.Equal(t, in, out32)

	// All chosen values are exactly representable at 8 bits.
	out8 := ToFloat64s(FromFloat64s[P3109]([]float64{0, 1, -2.5, 0.375}))
	assert.Equal(t, []float64{0, 1, -2.5, 0.375}, out8)
}

func TestParsePrecision(t *testing.T) {
	for _, p := range AllPrecisions() {
		got, err := ParsePrecision(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	aliases := map[string]Precision{
		"float64":       PrecisionFP64,
		"Float32":       PrecisionFP32,
		"tensorfloat32": PrecisionTF32,
		"BFLOAT16":      PrecisionBF16,
		"p3109":         PrecisionP3109,
	}
	for name, want := range aliases {
		got, err := ParsePrecision(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParsePrecision("fp8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fp8")
}

func TestMantissaBitsOrdering(t *testing.T) {
	ps := AllPrecisions()
	for i := 1; i < len(ps); i++ {
		assert.Greater(t, ps[i-1].MantissaBits(), ps[i].MantissaBits(),
			"%s should carry more mantissa bits than %s", ps[i-1], ps[i])
	}
}
