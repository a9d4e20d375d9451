// Package results writes experiment outcomes as CSV through Arrow record
// batches, so downstream analysis tooling gets a typed schema rather than
// stringly-typed rows.
package results

import (
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Row is one completed run.
type Row struct {
	Algo       string
	Size       int
	Precision  string
	Seed       uint32
	ParamsJSON string
	RelError   float64
	Iters      int
	Converged  bool
	NaNCount   int
	InfCount   int
	ElapsedMS  float64
}

// Schema returns the Arrow schema every results file carries.
func Schema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "algo", Type: arrow.BinaryTypes.String},
		{Name: "size", Type: arrow.PrimitiveTypes.Int64},
		{Name: "precision", Type: arrow.BinaryTypes.String},
		{Name: "seed", Type: arrow.PrimitiveTypes.Int64},
		{Name: "params_json", Type: arrow.BinaryTypes.String},
		{Name: "rel_error", Type: arrow.PrimitiveTypes.Float64},
		{Name: "iters", Type: arrow.PrimitiveTypes.Int64},
		{Name: "converged", Type: arrow.PrimitiveTypes.Int64},
		{Name: "n_nan", Type: arrow.PrimitiveTypes.Int64},
		{Name: "n_inf", Type: arrow.PrimitiveTypes.Int64},
		{Name: "elapsed_ms", Type: arrow.PrimitiveTypes.Float64},
	}, nil)
}

// Writer batches rows into an Arrow record and flushes them as CSV.
type Writer struct {
	schema  *arrow.Schema
	builder *array.RecordBuilder
	csv     *csv.Writer
}

// NewWriter returns a Writer emitting CSV with a header line to w.
func NewWriter(w io.Writer) *Writer {
	schema := Schema()
	return &Writer{
		schema:  schema,
		builder: array.NewRecordBuilder(memory.DefaultAllocator, schema),
		csv:     csv.NewWriter(w, schema, csv.WithHeader(true)),
	}
}

// Append buffers one row. Call Flush to emit buffered rows.
func (w *Writer) Append(r Row) {
	w.builder.Field(0).(*array.StringBuilder).Append(r.Algo)
	w.builder.Field(1).(*array.Int64Builder).Append(int64(r.Size))
	w.builder.Field(2).(*array.StringBuilder).Append(r.Precision)
	w.builder.Field(3).(*array.Int64Builder).Append(int64(r.Seed))
	w.builder.Field(4).(*array.StringBuilder).Append(r.ParamsJSON)
	w.builder.Field(5).(*array.Float64Builder).Append(r.RelError)
	w.builder.Field(6).(*array.Int64Builder).Append(int64(r.Iters))
	converged := int64(0)
	if r.Converged {
		converged = 1
	}
	w.builder.Field(7).(*array.Int64Builder).Append(converged)
	w.builder.Field(8).(*array.Int64Builder).Append(int64(r.NaNCount))
	w.builder.Field(9).(*array.Int64Builder).Append(int64(r.InfCount))
	w.builder.Field(10).(*array.Float64Builder).Append(r.ElapsedMS)
}

// Flush writes all buffered rows and resets the batch.
func (w *Writer) Flush() error {
	rec := w.builder.NewRecord()
	defer rec.Release()
	if rec.NumRows() == 0 {
		return nil
	}
	if err := w.csv.Write(rec); err != nil {
		return fmt.Errorf("writing record batch: %w", err)
	}
	return w.csv.Flush()
}

// Close flushes remaining rows and releases the builder.
func (w *Writer) Close() error {
	err := w.Flush()
	w.builder.Release()
	if cerr := w.csv.Error(); err == nil {
		err = cerr
	}
	return err
}

// WriteAll emits rows to w as a single CSV document.
func WriteAll(w io.Writer, rows []Row) error {
	rw := NewWriter(w)
	for _, r := range rows {
		rw.Append(r)
	}
	return rw.Close()
}

// WriteFile writes rows to a CSV file at path, creating or truncating it.
func WriteFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating results file: %w", err)
	}
	if err := WriteAll(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
