package num

import (
	"fmt"
	"strings"
)

// Precision selects which representation a kernel instantiation uses.
type Precision int

const (
	PrecisionFP64 Precision = iota
	PrecisionFP32
	PrecisionTF32
	PrecisionBF16
	PrecisionP3109
)

// AllPrecisions returns every supported precision, widest first.
func AllPrecisions() []Precision {
	return []Precision{
		PrecisionFP64,
		PrecisionFP32,
		PrecisionTF32,
		PrecisionBF16,
		PrecisionP3109,
	}
}

// String returns the stable configuration name of the precision.
func (p Precision) String() string {
	switch p {
	case PrecisionFP64:
		return "fp64"
	case PrecisionFP32:
		return "fp32"
	case PrecisionTF32:
		return "tf32"
	case PrecisionBF16:
		return "bf16"
	case PrecisionP3109:
		return "p3109_8"
	}
	return fmt.Sprintf("precision(%d)", int(p))
}

// MantissaBits returns the number of explicit mantissa bits the
// representation keeps.
func (p Precision) MantissaBits() int {
	switch p {
	case PrecisionFP64:
		return 52
	case PrecisionFP32:
		return 23
	case PrecisionTF32:
		return tf32MantissaBits
	case PrecisionBF16:
		return bf16MantissaBits
	case PrecisionP3109:
		return 4
	}
	return 0
}

var precisionNames = map[string]Precision{
	"fp64":          PrecisionFP64,
	"float64":       PrecisionFP64,
	"fp32":          PrecisionFP32,
	"float32":       PrecisionFP32,
	"tf32":          PrecisionTF32,
	"tensorfloat32": PrecisionTF32,
	"bf16":          PrecisionBF16,
	"bfloat16":      PrecisionBF16,
	"p3109":         PrecisionP3109,
	"p3109_8":       PrecisionP3109,
}

// ParsePrecision resolves a configuration name (case-insensitive, aliases
// accepted) to a Precision. Unknown names are a configuration error.
func ParsePrecision(name string) (Precision, error) {
	p, ok := precisionNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown precision %q", name)
	}
	return p, nil
}
