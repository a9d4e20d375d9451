// Package minifloat implements a small floating-point codec between native
// floats and codes of at most 8 bits. The layout (exponent width, mantissa
// width, bias) is a parameter; the default is the 1-3-4 split used by the
// 8-bit precision experiments.
//
// The format has no subnormals: magnitudes below the smallest normal flush to
// signed zero. Overflow saturates to the largest finite code rather than
// producing an infinity. Three codes are reserved for NaN and the two signed
// infinities.
package minifloat

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// Layout describes the bit split of a code: 1 sign bit, ExponentBits exponent
// bits, MantissaBits mantissa bits. The exponent field is stored with
// ExponentBias added; an exponent field of zero means signed zero, and the
// all-ones exponent field is reserved for the NaN/Inf sentinel codes.
type Layout struct {
	ExponentBits uint8
	MantissaBits uint8
	ExponentBias int8
}

// DefaultLayout is the 8-bit layout used by the P3109 precision: 3 exponent
// bits with bias 3 and 4 mantissa bits.
var DefaultLayout = Layout{ExponentBits: 3, MantissaBits: 4, ExponentBias: 3}

// Validate reports whether the layout fits in a uint8 code and leaves room
// for the sentinel codes and at least one normal exponent.
func (l Layout) Validate() error {
	width := 1 + uint(l.ExponentBits) + uint(l.MantissaBits)
	if width > 8 {
		return fmt.Errorf("minifloat: layout needs %d bits, max is 8", width)
	}
	if l.ExponentBits < 2 {
		return fmt.Errorf("minifloat: need at least 2 exponent bits, got %d", l.ExponentBits)
	}
	if l.MantissaBits < 1 {
		return fmt.Errorf("minifloat: need at least 1 mantissa bit, got %d", l.MantissaBits)
	}
	return nil
}

func (l Layout) width() uint {
	return 1 + uint(l.ExponentBits) + uint(l.MantissaBits)
}

func (l Layout) signMask() uint8 {
	return 1 << (uint(l.ExponentBits) + uint(l.MantissaBits))
}

// NaNCode is the all-ones code.
func (l Layout) NaNCode() uint8 {
	return uint8(1<<l.width() - 1)
}

// PosInfCode is the largest positive code.
func (l Layout) PosInfCode() uint8 {
	return uint8(1<<(l.width()-1) - 1)
}

// NegInfCode is the all-ones code minus one.
func (l Layout) NegInfCode() uint8 {
	return l.NaNCode() - 1
}

// maxExp is the largest usable biased exponent. The field value above it is
// where the sentinel codes live, so saturated finite values stay below it
// and can never collide with NaN or the infinities.
func (l Layout) maxExp() int {
	return 1<<uint(l.ExponentBits) - 2
}

func (l Layout) mantissaMask() int {
	return 1<<uint(l.MantissaBits) - 1
}

// maxFiniteBits is the magnitude part of the saturation code: maximum usable
// exponent field, all mantissa bits set.
func (l Layout) maxFiniteBits() uint8 {
	return uint8(l.maxExp())<<uint(l.MantissaBits) | uint8(l.mantissaMask())
}

// MaxFinite returns the largest finite magnitude the layout can represent.
func (l Layout) MaxFinite() float64 {
	return Decode[float64](l.maxFiniteBits(), l)
}

// MinNormal returns the smallest positive magnitude that does not flush to
// zero.
func (l Layout) MinNormal() float64 {
	return math.Ldexp(1, 1-int(l.ExponentBias))
}

// Encode quantizes v into a code. NaN and the infinities map to the reserved
// sentinel codes. Values whose exponent exceeds the layout's range saturate
// to the largest finite magnitude with the sign preserved; values below the
// normal range flush to signed zero. The mantissa rounds half away from zero.
func Encode[T constraints.Float](v T, l Layout) uint8 {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return l.NaNCode()
	case math.IsInf(f, 1):
		return l.PosInfCode()
	case math.IsInf(f, -1):
		return l.NegInfCode()
	}

	var signBit uint8
	if math.Signbit(f) {
		signBit = l.signMask()
	}
	abs := math.Abs(f)
	if abs == 0 {
		return signBit
	}

	// abs = frac * 2^exp with frac in [0.5, 1).
	frac, exp := math.Frexp(abs)
	expVal := exp + int(l.ExponentBias) - 1
	const minExp = 1
	if expVal > l.maxExp() {
		return signBit | l.maxFiniteBits()
	}
	if expVal < minExp {
		return signBit
	}

	scaled := frac*2 - 1 // [0.5,1) -> [0,1)
	mant := int(math.Round(scaled * float64(l.mantissaMask()+1)))
	if mant > l.mantissaMask() {
		// Rounding carried out of the mantissa field.
		mant = 0
		expVal++
		if expVal > l.maxExp() {
			return signBit | l.maxFiniteBits()
		}
	}
	return signBit | uint8(expVal)<<uint(l.MantissaBits) | uint8(mant)
}

// Decode is the inverse of Encode up to quantization. The three sentinel
// codes decode to NaN and the signed infinities; a zero exponent field
// decodes to signed zero regardless of the mantissa bits.
func Decode[T constraints.Float](code uint8, l Layout) T {
	switch code {
	case l.NaNCode():
		return T(math.NaN())
	case l.PosInfCode():
		return T(math.Inf(1))
	case l.NegInfCode():
		return T(math.Inf(-1))
	}

	negative := code&l.signMask() != 0
	exp := int(code>>uint(l.MantissaBits)) & (1<<uint(l.ExponentBits) - 1)
	mant := int(code) & l.mantissaMask()

	if exp == 0 {
		if negative {
			return T(math.Copysign(0, -1))
		}
		return 0
	}

	m := 1 + float64(mant)/float64(l.mantissaMask()+1)
	value := math.Ldexp(m, exp-int(l.ExponentBias))
	if negative {
		value = -value
	}
	return T(value)
}
