// Package config loads and validates the JSON experiment plan the driver
// executes. A plan names a base seed, an output CSV path, and a list of
// experiments, each selecting an algorithm, the problem sizes to sweep, the
// precisions to run at, and the per-algorithm parameters.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/quarterbit/fpstudy/internal/num"
)

// Algorithm names accepted in an experiment's "algo" field.
const (
	AlgoMatMul      = "matmul"
	AlgoFIR         = "fir"
	AlgoGDQuadratic = "gd_quadratic"
	AlgoNewton      = "newton"
)

// Experiment is one row-generating sweep in the plan.
type Experiment struct {
	Algo       string   `json:"algo"`
	Sizes      []int    `json:"sizes,omitempty"`
	Dim        int      `json:"dim,omitempty"`
	Precisions []string `json:"precisions"`
	Trials     int      `json:"trials"`

	// Accumulation policy axis. Each listed value produces a full sweep,
	// so [false, true] runs everything twice for a direct comparison.
	AccumulateInFP32 []bool `json:"accumulate_in_fp32,omitempty"`
	Kahan            bool   `json:"kahan,omitempty"`

	// Iterative solver parameters.
	StepSize float64 `json:"step_size,omitempty"`
	Tol      float64 `json:"tol,omitempty"`
	MaxIters int     `json:"max_iters,omitempty"`

	IllConditioned bool `json:"ill_conditioned,omitempty"`

	// Newton parameters.
	Function string    `json:"function,omitempty"`
	Initials []float64 `json:"initials,omitempty"`

	// FIR parameters.
	Taps int `json:"taps,omitempty"`
}

// Config is the top-level experiment plan.
type Config struct {
	Seed        uint32       `json:"seed"`
	OutCSV      string       `json:"out_csv"`
	Experiments []Experiment `json:"experiments"`
}

// Load reads and validates a plan from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a plan from raw JSON.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Experiments) == 0 {
		return fmt.Errorf("no experiments defined")
	}
	for i := range c.Experiments {
		if err := c.Experiments[i].Validate(); err != nil {
			return fmt.Errorf("experiment %d: %w", i, err)
		}
	}
	return nil
}

func (e *Experiment) Validate() error {
	if len(e.Precisions) == 0 {
		return fmt.Errorf("no precisions listed")
	}
	for _, p := range e.Precisions {
		if _, err := num.ParsePrecision(p); err != nil {
			return err
		}
	}
	if e.Trials <= 0 {
		return fmt.Errorf("invalid trials: %d (must be positive)", e.Trials)
	}

	switch strings.ToLower(e.Algo) {
	case AlgoMatMul:
		if len(e.Sizes) == 0 {
			return fmt.Errorf("matmul: no sizes listed")
		}
		for _, n := range e.Sizes {
			if n <= 0 {
				return fmt.Errorf("matmul: invalid size: %d (must be positive)", n)
			}
		}
	case AlgoFIR:
		if len(e.Sizes) == 0 {
			return fmt.Errorf("fir: no sizes listed")
		}
		for _, n := range e.Sizes {
			if n <= 0 {
				return fmt.Errorf("fir: invalid size: %d (must be positive)", n)
			}
		}
		if e.Taps <= 0 {
			return fmt.Errorf("fir: invalid taps: %d (must be positive)", e.Taps)
		}
	case AlgoGDQuadratic:
		if e.Dim <= 0 {
			return fmt.Errorf("gd_quadratic: invalid dim: %d (must be positive)", e.Dim)
		}
		if e.StepSize <= 0 {
			return fmt.Errorf("gd_quadratic: invalid step_size: %f (must be positive)", e.StepSize)
		}
		if e.Tol <= 0 {
			return fmt.Errorf("gd_quadratic: invalid tol: %g (must be positive)", e.Tol)
		}
		if e.MaxIters <= 0 {
			return fmt.Errorf("gd_quadratic: invalid max_iters: %d (must be positive)", e.MaxIters)
		}
	case AlgoNewton:
		if e.Function == "" {
			return fmt.Errorf("newton: no function named")
		}
		if len(e.Initials) == 0 {
			return fmt.Errorf("newton: no initial points listed")
		}
		if e.Tol <= 0 {
			return fmt.Errorf("newton: invalid tol: %g (must be positive)", e.Tol)
		}
		if e.MaxIters <= 0 {
			return fmt.Errorf("newton: invalid max_iters: %d (must be positive)", e.MaxIters)
		}
	default:
		return fmt.Errorf("unknown algo: %q", e.Algo)
	}
	return nil
}

// Normalized returns the algo name lowercased for dispatch.
func (e *Experiment) Normalized() string {
	return strings.ToLower(e.Algo)
}

// Policies returns the accumulation policy axis, defaulting to a single
// element-precision sweep when the field is absent.
func (e *Experiment) Policies() []bool {
	if len(e.AccumulateInFP32) == 0 {
		return []bool{false}
	}
	return e.AccumulateInFP32
}

// ParsedPrecisions resolves the precision names. Validate has already
// checked them, so errors here indicate a plan mutated after validation.
func (e *Experiment) ParsedPrecisions() ([]num.Precision, error) {
	out := make([]num.Precision, 0, len(e.Precisions))
	for _, name := range e.Precisions {
		p, err := num.ParsePrecision(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Default returns a plan exercising every algorithm at every precision,
// used when no config file is given.
func Default() Config {
	return Config{
		Seed:   12345,
		OutCSV: "results.csv",
		Experiments: []Experiment{
			{
				Algo:             AlgoMatMul,
				Sizes:            []int{8, 16, 32, 64},
				Precisions:       []string{"fp64", "fp32", "tf32", "bf16", "p3109_8"},
				Trials:           5,
				AccumulateInFP32: []bool{false, true},
			},
			{
				Algo:       AlgoFIR,
				Sizes:      []int{64, 256},
				Taps:       16,
				Precisions: []string{"fp64", "fp32", "tf32", "bf16", "p3109_8"},
				Trials:     5,
			},
			{
				Algo:       AlgoGDQuadratic,
				Dim:        16,
				Precisions: []string{"fp64", "fp32", "tf32", "bf16", "p3109_8"},
				Trials:     5,
				StepSize:   0.01,
				Tol:        1e-6,
				MaxIters:   500,
			},
			{
				Algo:       AlgoNewton,
				Function:   "x3_minus_2",
				Initials:   []float64{1.0, 2.0, 10.0},
				Precisions: []string{"fp64", "fp32", "tf32", "bf16", "p3109_8"},
				Trials:     1,
				Tol:        1e-10,
				MaxIters:   100,
			},
		},
	}
}
