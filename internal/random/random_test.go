package random

import (
	"math"
	"testing"
)

func TestDeterministicForSeed(t *testing.T) {
	a := New(42).NormalVector(16, 1.0)
	b := New(42).NormalVector(16, 1.0)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("index %d: %v != %v", i, a[i], b[i])
		}
	}
	c := New(43).NormalVector(16, 1.0)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical vectors")
	}
}

func TestNormalVectorScale(t *testing.T) {
	v := New(7).NormalVector(10000, 3.0)
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	sd := math.Sqrt(sumSq / float64(len(v)))
	if sd < 2.8 || sd > 3.2 {
		t.Fatalf("sample stddev %v, want about 3", sd)
	}
}

func TestUniformVectorRange(t *testing.T) {
	v := New(7).UniformVector(1000, 0.5, 2.0)
	for i, x := range v {
		if x < 0.5 || x >= 2.0 {
			t.Fatalf("index %d: %v out of [0.5, 2)", i, x)
		}
	}
}

func TestIllConditionedColumn(t *testing.T) {
	dim := 8
	well := New(11).Matrix(dim, dim, false)
	ill := New(11).Matrix(dim, dim, true)
	for r := 0; r < dim; r++ {
		want := well[r*dim] * 1e-6
		if ill[r*dim] != want {
			t.Fatalf("row %d first column: got %v, want %v", r, ill[r*dim], want)
		}
		for c := 1; c < dim; c++ {
			if ill[r*dim+c] != well[r*dim+c] {
				t.Fatalf("row %d col %d changed unexpectedly", r, c)
			}
		}
	}
}

func TestSPDMatrix(t *testing.T) {
	dim := 6
	q := New(3).SPDMatrix(dim, false)

	// Symmetry is exact by construction.
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			if q[i*dim+j] != q[j*dim+i] {
				t.Fatalf("asymmetric at (%d,%d)", i, j)
			}
		}
	}

	// Positive definiteness: xᵀQx > 0 for a handful of random directions.
	src := New(99)
	for trial := 0; trial < 10; trial++ {
		x := src.NormalVector(dim, 1.0)
		var quad float64
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				quad += x[i] * q[i*dim+j] * x[j]
			}
		}
		if quad <= 0 {
			t.Fatalf("trial %d: quadratic form %v not positive", trial, quad)
		}
	}
}
