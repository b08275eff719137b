// Package fractal computes escape-time iteration counts of the quadratic map
// z -> z*z + c over a rectangular window of the complex plane.
//
// The work is split by rows over a bounded set of goroutines. Every row is
// written by exactly one goroutine and no cell depends on another, so the
// result does not depend on the number of workers.
package fractal

import (
	"fmt"

	"github.com/gddickinson/fractal-music-generator/config"
	"golang.org/x/sync/errgroup"
)

// Field is a square matrix of iteration counts. A Field is never modified
// after it has been built; accessors hand out copies.
type Field struct {
	size    int
	maxIter int
	cells   []int // Row-major, size*size values.
}

// ComputeField samples the plane window of cfg on a Resolution x Resolution
// grid and records, for every seed c, the iteration at which z escapes.
//
// Row i has imaginary part ImagMin..ImagMax and column j has real part
// RealMin..RealMax, both inclusive. Iteration starts at z = c. A cell holds the
// 0-based index of the first iteration whose squared magnitude exceeds the
// squared divergence threshold, or MaxIter if that never happens.
func ComputeField(cfg config.Config) (*Field, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := cfg.Resolution
	f := &Field{
		size:    n,
		maxIter: cfg.MaxIter,
		cells:   make([]int, n*n),
	}
	limit := cfg.DivergenceThreshold * cfg.DivergenceThreshold

	var g errgroup.Group
	g.SetLimit(cfg.WorkerCount())
	for row := 0; row < n; row++ {
		row := row
		g.Go(func() error {
			im := axis(cfg.Bounds.ImagMin, cfg.Bounds.ImagMax, n, row)
			cells := f.cells[row*n : (row+1)*n]
			for col := range cells {
				re := axis(cfg.Bounds.RealMin, cfg.Bounds.RealMax, n, col)
				cells[col] = escapeTime(complex(re, im), cfg.MaxIter, limit)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return f, nil
}

// axis returns the i-th of n evenly spaced samples of [lo, hi]. A single
// sample sits at lo.
func axis(lo, hi float64, n, i int) float64 {
	if n == 1 {
		return lo
	}
	step := (hi - lo) / float64(n-1)
	return lo + float64(i)*step
}

// escapeTime iterates z -> z*z + c from z = c and returns the index of the
// first iteration with |z|^2 > limit, or maxIter. The loop stops at escape, so
// z never grows large enough to overflow.
func escapeTime(c complex128, maxIter int, limit float64) int {
	z := c
	for i := 0; i < maxIter; i++ {
		z = z*z + c
		if real(z)*real(z)+imag(z)*imag(z) > limit {
			return i
		}
	}
	return maxIter
}

// NewField builds a Field from explicit rows. The rows must form a square
// matrix with values in 0..maxIter.
func NewField(rows [][]int, maxIter int) (*Field, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("field must have at least one row")
	}
	if maxIter <= 0 {
		return nil, fmt.Errorf("max iterations must be positive, got %d", maxIter)
	}
	f := &Field{size: n, maxIter: maxIter, cells: make([]int, 0, n*n)}
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", i, len(row), n)
		}
		for j, v := range row {
			if v < 0 || v > maxIter {
				return nil, fmt.Errorf("cell (%d, %d) must be 0-%d, got %d", i, j, maxIter, v)
			}
		}
		f.cells = append(f.cells, row...)
	}
	return f, nil
}

// Size returns the width (and height) of the field.
func (f *Field) Size() int { return f.size }

// MaxIter returns the iteration cap the field was computed with.
func (f *Field) MaxIter() int { return f.maxIter }

// At returns the iteration count at the given row and column.
func (f *Field) At(row, col int) int {
	if row < 0 || row >= f.size || col < 0 || col >= f.size {
		panic(fmt.Sprintf("cell (%d, %d) out of range for %dx%d field", row, col, f.size, f.size))
	}
	return f.cells[row*f.size+col]
}

// Row returns a copy of row i.
func (f *Field) Row(i int) []int {
	if i < 0 || i >= f.size {
		panic(fmt.Sprintf("row %d out of range for %dx%d field", i, f.size, f.size))
	}
	out := make([]int, f.size)
	copy(out, f.cells[i*f.size:(i+1)*f.size])
	return out
}

// Rows returns a copy of the whole matrix.
func (f *Field) Rows() [][]int {
	out := make([][]int, f.size)
	for i := range out {
		out[i] = f.Row(i)
	}
	return out
}

// Bounds returns the smallest and largest iteration counts in the field.
func (f *Field) Bounds() (lo, hi int) {
	lo, hi = f.cells[0], f.cells[0]
	for _, v := range f.cells[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

// Escaped returns the number of cells whose orbit left the threshold.
func (f *Field) Escaped() int {
	count := 0
	for _, v := range f.cells {
		if v < f.maxIter {
			count++
		}
	}
	return count
}

// Histogram returns how many cells hold each iteration count 0..MaxIter.
func (f *Field) Histogram() []int {
	hist := make([]int, f.maxIter+1)
	for _, v := range f.cells {
		hist[v]++
	}
	return hist
}
