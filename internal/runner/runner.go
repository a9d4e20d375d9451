// Package runner executes an experiment plan: it expands each experiment's
// grid of sizes, trials, accumulation policies, and precisions into kernel
// runs, computes the float64 truth for every case, and emits one results row
// per invocation. Trials run concurrently; row order is deterministic.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/quarterbit/fpstudy/internal/accuracy"
	"github.com/quarterbit/fpstudy/internal/config"
	"github.com/quarterbit/fpstudy/internal/kernels"
	"github.com/quarterbit/fpstudy/internal/logger"
	"github.com/quarterbit/fpstudy/internal/metrics"
	"github.com/quarterbit/fpstudy/internal/num"
	"github.com/quarterbit/fpstudy/internal/random"
	"github.com/quarterbit/fpstudy/internal/results"
)

// Runner drives a validated experiment plan to completion.
type Runner struct {
	cfg  *config.Config
	jobs int
	log  *logger.Logger
}

// New returns a Runner executing at most jobs trials concurrently.
func New(cfg *config.Config, jobs int) *Runner {
	if jobs <= 0 {
		jobs = 1
	}
	return &Runner{cfg: cfg, jobs: jobs, log: logger.Log.Component("runner")}
}

// A unit is one trial's worth of work: a shared truth run plus one row per
// accumulation policy and precision. Units are independent of each other.
type unit func() ([]results.Row, error)

// Run executes the whole plan and returns the rows in plan order.
func (r *Runner) Run(ctx context.Context) ([]results.Row, error) {
	var units []unit
	for i := range r.cfg.Experiments {
		us, err := r.expand(&r.cfg.Experiments[i])
		if err != nil {
			return nil, fmt.Errorf("experiment %d: %w", i, err)
		}
		units = append(units, us...)
	}

	start := time.Now()
	out := make([][]results.Row, len(units))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs)
	for i, u := range units {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := u()
			if err != nil {
				return err
			}
			out[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rows []results.Row
	for _, batch := range out {
		rows = append(rows, batch...)
	}
	r.log.Info("plan complete",
		"experiments", len(r.cfg.Experiments),
		"trials", len(units),
		"rows", len(rows),
		"elapsed", time.Since(start).String())
	return rows, nil
}

func (r *Runner) expand(e *config.Experiment) ([]unit, error) {
	precisions, err := e.ParsedPrecisions()
	if err != nil {
		return nil, err
	}

	var units []unit
	switch e.Normalized() {
	case config.AlgoMatMul:
		for _, size := range e.Sizes {
			for trial := 0; trial < e.Trials; trial++ {
				units = append(units, func() ([]results.Row, error) {
					return r.runMatMulTrial(e, precisions, size, trial)
				})
			}
		}
	case config.AlgoFIR:
		for _, size := range e.Sizes {
			for trial := 0; trial < e.Trials; trial++ {
				units = append(units, func() ([]results.Row, error) {
					return r.runFIRTrial(e, precisions, size, trial)
				})
			}
		}
	case config.AlgoGDQuadratic:
		for trial := 0; trial < e.Trials; trial++ {
			units = append(units, func() ([]results.Row, error) {
				return r.runDescentTrial(e, precisions, trial)
			})
		}
	case config.AlgoNewton:
		fn, err := LookupFunction(e.Function)
		if err != nil {
			return nil, err
		}
		for _, initial := range e.Initials {
			units = append(units, func() ([]results.Row, error) {
				return r.runNewtonCase(e, precisions, fn, initial)
			})
		}
	default:
		return nil, fmt.Errorf("unsupported algo: %q", e.Algo)
	}
	return units, nil
}

type matmulParams struct {
	Size             int  `json:"size"`
	Trial            int  `json:"trial"`
	AccumulateInFP32 bool `json:"accumulate_in_fp32"`
	Kahan            bool `json:"kahan"`
}

func (r *Runner) runMatMulTrial(e *config.Experiment, precisions []num.Precision, size, trial int) ([]results.Row, error) {
	seed := r.cfg.Seed + uint32(size*997+trial)
	src := random.New(seed)
	a := src.Matrix(size, size, e.IllConditioned)
	b := src.Matrix(size, size, e.IllConditioned)

	truth, err := matMulAt[num.F64](a, b, size, kernels.Options{Kahan: e.Kahan})
	if err != nil {
		return nil, err
	}

	var rows []results.Row
	for _, accumulate := range e.Policies() {
		for _, p := range precisions {
			opts := kernels.Options{Kahan: e.Kahan, AccumulateInFP32: accumulate}
			if p == num.PrecisionFP64 {
				// A float32 scratch would degrade the reference precision.
				opts.AccumulateInFP32 = false
			}
			start := time.Now()
			got, err := runMatMul(p, a, b, size, opts)
			elapsed := time.Since(start)
			if err != nil {
				return nil, err
			}
			m, err := accuracy.Compare(truth, got, 0, true, elapsed)
			if err != nil {
				return nil, err
			}
			params, err := marshalParams(matmulParams{
				Size:             size,
				Trial:            trial,
				AccumulateInFP32: accumulate,
				Kahan:            e.Kahan,
			})
			if err != nil {
				return nil, err
			}
			rows = append(rows, r.row(config.AlgoMatMul, size, p, seed, params, m))
		}
	}
	return rows, nil
}

type firParams struct {
	Size             int  `json:"size"`
	Taps             int  `json:"taps"`
	Trial            int  `json:"trial"`
	AccumulateInFP32 bool `json:"accumulate_in_fp32"`
	Kahan            bool `json:"kahan"`
}

func (r *Runner) runFIRTrial(e *config.Experiment, precisions []num.Precision, size, trial int) ([]results.Row, error) {
	seed := r.cfg.Seed + uint32(size*997+trial)
	src := random.New(seed)
	// Tap magnitudes scale with 1/taps so filter outputs stay in range even
	// for the 8-bit format.
	taps := src.NormalVector(e.Taps, 1.0/float64(e.Taps))
	signal := src.NormalVector(size, 1.0)

	truth := firAt[num.F64](taps, signal, kernels.Options{Kahan: e.Kahan})

	var rows []results.Row
	for _, accumulate := range e.Policies() {
		for _, p := range precisions {
			opts := kernels.Options{Kahan: e.Kahan, AccumulateInFP32: accumulate}
			if p == num.PrecisionFP64 {
				opts.AccumulateInFP32 = false
			}
			start := time.Now()
			got, err := runFIR(p, taps, signal, opts)
			elapsed := time.Since(start)
			if err != nil {
				return nil, err
			}
			m, err := accuracy.Compare(truth, got, 0, true, elapsed)
			if err != nil {
				return nil, err
			}
			params, err := marshalParams(firParams{
				Size:             size,
				Taps:             e.Taps,
				Trial:            trial,
				AccumulateInFP32: accumulate,
				Kahan:            e.Kahan,
			})
			if err != nil {
				return nil, err
			}
			rows = append(rows, r.row(config.AlgoFIR, size, p, seed, params, m))
		}
	}
	return rows, nil
}

type descentParams struct {
	Dim            int     `json:"dim"`
	Trial          int     `json:"trial"`
	StepSize       float64 `json:"step_size"`
	Tol            float64 `json:"tol"`
	MaxIters       int     `json:"max_iters"`
	IllConditioned bool    `json:"ill_conditioned"`
}

func (r *Runner) runDescentTrial(e *config.Experiment, precisions []num.Precision, trial int) ([]results.Row, error) {
	seed := r.cfg.Seed + uint32(e.Dim*577+trial*31)
	q := random.New(seed+uint32(e.Dim*13)).SPDMatrix(e.Dim, e.IllConditioned)
	b := random.New(seed).NormalVector(e.Dim, 1.0)
	x0 := make([]float64, e.Dim)

	opts := kernels.DescentOptions{StepSize: e.StepSize, Tol: e.Tol, MaxIters: e.MaxIters}

	truthStart := time.Now()
	truth, err := descentAt[num.F64](q, b, x0, e.Dim, opts)
	truthElapsed := time.Since(truthStart)
	if err != nil {
		return nil, err
	}

	params, err := marshalParams(descentParams{
		Dim:            e.Dim,
		Trial:          trial,
		StepSize:       e.StepSize,
		Tol:            e.Tol,
		MaxIters:       e.MaxIters,
		IllConditioned: e.IllConditioned,
	})
	if err != nil {
		return nil, err
	}

	var rows []results.Row
	for _, p := range precisions {
		var got descentOutcome
		var elapsed time.Duration
		if p == num.PrecisionFP64 {
			got, elapsed = truth, truthElapsed
		} else {
			start := time.Now()
			got, err = runDescent(p, q, b, x0, e.Dim, opts)
			elapsed = time.Since(start)
			if err != nil {
				return nil, err
			}
		}
		m, err := accuracy.Compare(truth.X, got.X, got.Iterations, got.Converged, elapsed)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r.row(config.AlgoGDQuadratic, e.Dim, p, seed, params, m))
	}
	return rows, nil
}

type newtonParams struct {
	Function string  `json:"function"`
	Initial  float64 `json:"initial"`
	Tol      float64 `json:"tol"`
	MaxIters int     `json:"max_iters"`
}

func (r *Runner) runNewtonCase(e *config.Experiment, precisions []num.Precision, fn Function, initial float64) ([]results.Row, error) {
	seed := r.cfg.Seed + uint32(int32(initial*101))
	opts := kernels.NewtonOptions{Tol: e.Tol, MaxIters: e.MaxIters}

	truthStart := time.Now()
	truth := newtonAt[num.F64](initial, fn, opts)
	truthElapsed := time.Since(truthStart)

	params, err := marshalParams(newtonParams{
		Function: fn.Name,
		Initial:  initial,
		Tol:      e.Tol,
		MaxIters: e.MaxIters,
	})
	if err != nil {
		return nil, err
	}

	var rows []results.Row
	for _, p := range precisions {
		var got newtonOutcome
		var elapsed time.Duration
		if p == num.PrecisionFP64 {
			got, elapsed = truth, truthElapsed
		} else {
			start := time.Now()
			got, err = runNewton(p, initial, fn, opts)
			elapsed = time.Since(start)
			if err != nil {
				return nil, err
			}
		}
		m, err := accuracy.Compare([]float64{truth.Root}, []float64{got.Root}, got.Iterations, got.Converged, elapsed)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r.row(config.AlgoNewton, 1, p, seed, params, m))
	}
	return rows, nil
}

// row converts one comparison into a results row and feeds the Prometheus
// recorders along the way.
func (r *Runner) row(algo string, size int, p num.Precision, seed uint32, params string, m accuracy.RunMetrics) results.Row {
	metrics.RecordRun(algo, p.String(), m.RelativeError, m.Elapsed)
	metrics.RecordInstability(algo, m.NaNCount, m.InfCount)
	if !m.Converged {
		metrics.RecordNonConverged(algo, p.String())
	}
	r.log.Debug("run complete",
		"algo", algo,
		"size", size,
		"precision", p.String(),
		"rel_error", m.RelativeError,
		"iters", m.Iterations,
		"converged", m.Converged)
	return results.Row{
		Algo:       algo,
		Size:       size,
		Precision:  p.String(),
		Seed:       seed,
		ParamsJSON: params,
		RelError:   m.RelativeError,
		Iters:      m.Iterations,
		Converged:  m.Converged,
		NaNCount:   m.NaNCount,
		InfCount:   m.InfCount,
		ElapsedMS:  float64(m.Elapsed) / float64(time.Millisecond),
	}
}

func marshalParams(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding params: %w", err)
	}
	return string(data), nil
}
