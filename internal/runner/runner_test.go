package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarterbit/fpstudy/internal/config"
	"github.com/quarterbit/fpstudy/internal/results"
)

func testPlan() *config.Config {
	return &config.Config{
		Seed:   4242,
		OutCSV: "unused.csv",
		Experiments: []config.Experiment{
			{
				Algo:             config.AlgoMatMul,
				Sizes:            []int{4, 8},
				Precisions:       []string{"fp64", "fp32", "bf16"},
				Trials:           2,
				AccumulateInFP32: []bool{false, true},
			},
			{
				Algo:       config.AlgoFIR,
				Sizes:      []int{32},
				Taps:       8,
				Precisions: []string{"fp64", "p3109_8"},
				Trials:     2,
			},
			{
				Algo:       config.AlgoGDQuadratic,
				Dim:        4,
				Precisions: []string{"fp64", "fp32"},
				Trials:     2,
				StepSize:   0.05,
				Tol:        1e-6,
				MaxIters:   5000,
			},
			{
				Algo:       config.AlgoNewton,
				Function:   "x3_minus_2",
				Initials:   []float64{1.0, 4.0},
				Precisions: []string{"fp64", "fp32", "bf16"},
				Trials:     1,
				Tol:        1e-10,
				MaxIters:   100,
			},
		},
	}
}

// stripTiming zeroes out the wall-clock column so runs can be compared.
func stripTiming(rows []results.Row) []results.Row {
	out := make([]results.Row, len(rows))
	copy(out, rows)
	for i := range out {
		out[i].ElapsedMS = 0
	}
	return out
}

func TestRunRowCount(t *testing.T) {
	cfg := testPlan()
	require.NoError(t, cfg.Validate())

	rows, err := New(cfg, 4).Run(context.Background())
	require.NoError(t, err)

	// matmul: 2 sizes x 2 trials x 2 policies x 3 precisions = 24
	// fir:    1 size x 2 trials x 1 policy x 2 precisions    = 4
	// gd:     2 trials x 2 precisions                         = 4
	// newton: 2 initials x 3 precisions                       = 6
	assert.Len(t, rows, 38)
}

func TestRunDeterministicAcrossJobCounts(t *testing.T) {
	cfg := testPlan()
	require.NoError(t, cfg.Validate())

	serial, err := New(cfg, 1).Run(context.Background())
	require.NoError(t, err)
	parallel, err := New(cfg, 8).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, stripTiming(serial), stripTiming(parallel))
}

func TestRunReferenceRowsAreExact(t *testing.T) {
	cfg := testPlan()
	require.NoError(t, cfg.Validate())

	rows, err := New(cfg, 2).Run(context.Background())
	require.NoError(t, err)

	var sawFP64, sawReduced bool
	for _, row := range rows {
		if row.Precision == "fp64" {
			sawFP64 = true
			assert.Zero(t, row.RelError, "fp64 row for %s should match its own truth run", row.Algo)
			assert.Zero(t, row.NaNCount)
			assert.Zero(t, row.InfCount)
			// Descent may hit its iteration cap even at full precision, so
			// convergence is only guaranteed for the one-shot kernels and Newton.
			if row.Algo != config.AlgoGDQuadratic {
				assert.True(t, row.Converged, "algo %s", row.Algo)
			}
		} else {
			sawReduced = true
		}
	}
	assert.True(t, sawFP64)
	assert.True(t, sawReduced)
}

func TestRunReducedPrecisionLosesAccuracy(t *testing.T) {
	cfg := &config.Config{
		Seed: 99,
		Experiments: []config.Experiment{
			{
				Algo:       config.AlgoMatMul,
				Sizes:      []int{16},
				Precisions: []string{"fp32", "bf16"},
				Trials:     3,
			},
		},
	}
	require.NoError(t, cfg.Validate())

	rows, err := New(cfg, 1).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 6)

	var fp32Sum, bf16Sum float64
	for _, row := range rows {
		switch row.Precision {
		case "fp32":
			fp32Sum += row.RelError
		case "bf16":
			bf16Sum += row.RelError
		}
	}
	assert.Greater(t, fp32Sum, 0.0)
	assert.Greater(t, bf16Sum, fp32Sum, "8 mantissa bits should lose more than 23")
}

func TestRunPlanOrderMatchesGrid(t *testing.T) {
	cfg := &config.Config{
		Seed: 1,
		Experiments: []config.Experiment{
			{
				Algo:             config.AlgoMatMul,
				Sizes:            []int{2},
				Precisions:       []string{"fp64", "bf16"},
				Trials:           1,
				AccumulateInFP32: []bool{false, true},
			},
		},
	}
	require.NoError(t, cfg.Validate())

	rows, err := New(cfg, 1).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 4)

	// Policy is the outer loop, precision the inner one.
	assert.Equal(t, "fp64", rows[0].Precision)
	assert.Equal(t, "bf16", rows[1].Precision)
	assert.Equal(t, "fp64", rows[2].Precision)
	assert.Equal(t, "bf16", rows[3].Precision)
	assert.Contains(t, rows[0].ParamsJSON, `"accumulate_in_fp32":false`)
	assert.Contains(t, rows[2].ParamsJSON, `"accumulate_in_fp32":true`)
}

func TestRunCancelledContext(t *testing.T) {
	cfg := testPlan()
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(cfg, 2).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLookupFunction(t *testing.T) {
	fn, err := LookupFunction("x3_minus_2")
	require.NoError(t, err)
	assert.InDelta(t, -1.0, fn.Eval(1.0), 1e-15)
	assert.InDelta(t, 3.0, fn.Deriv(1.0), 1e-15)

	_, err = LookupFunction("x2_plus_1")
	assert.Error(t, err)
}

func TestRunUnknownFunctionFails(t *testing.T) {
	cfg := &config.Config{
		Seed: 1,
		Experiments: []config.Experiment{
			{
				Algo:       config.AlgoNewton,
				Function:   "nope",
				Initials:   []float64{1},
				Precisions: []string{"fp64"},
				Trials:     1,
				Tol:        1e-8,
				MaxIters:   10,
			},
		},
	}
	// Validation only checks presence; the registry lookup happens at run
	// expansion.
	require.NoError(t, cfg.Validate())

	_, err := New(cfg, 1).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown newton function")
}
