package results

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []Row {
	return []Row{
		{
			Algo:       "matmul",
			Size:       8,
			Precision:  "fp32",
			Seed:       101,
			ParamsJSON: `{"n":8}`,
			RelError:   0.25,
			Iters:      0,
			Converged:  true,
			NaNCount:   0,
			InfCount:   0,
			ElapsedMS:  1.5,
		},
		{
			Algo:       "gd_quadratic",
			Size:       16,
			Precision:  "bf16",
			Seed:       202,
			ParamsJSON: `{"step_size":0.05}`,
			RelError:   0.015625,
			Iters:      200,
			Converged:  false,
			NaNCount:   2,
			InfCount:   1,
			ElapsedMS:  12.5,
		},
	}
}

func TestWriteAllGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAll(&buf, sampleRows()))

	g := goldie.New(t)
	g.Assert(t, "results", buf.Bytes())
}

func TestWriteAllHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAll(&buf, sampleRows()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t,
		"algo,size,precision,seed,params_json,rel_error,iters,converged,n_nan,n_inf,elapsed_ms",
		lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "matmul,8,fp32,101,"))
	assert.True(t, strings.HasPrefix(lines[2], "gd_quadratic,16,bf16,202,"))
}

func TestWriterFlushInBatches(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	rows := sampleRows()
	w.Append(rows[0])
	require.NoError(t, w.Flush())
	w.Append(rows[1])
	require.NoError(t, w.Close())

	var whole bytes.Buffer
	require.NoError(t, WriteAll(&whole, rows))
	assert.Equal(t, whole.String(), buf.String(), "batched output should match single-shot output")
}

func TestWriteAllEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAll(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteFile(path, sampleRows()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteAll(&buf, sampleRows()))
	assert.Equal(t, buf.Bytes(), data)
}
