// Package melody turns an iteration field into a monophonic melody: rows are
// smoothed, quantized onto scale degrees and thinned out, then the accepted
// pitches are laid out on a timeline with a loudness contour.
package melody

import (
	"errors"
	"fmt"
	"math"

	"github.com/gddickinson/fractal-music-generator/config"
	"github.com/gddickinson/fractal-music-generator/fractal"
	"golang.org/x/sync/errgroup"
)

// ErrInsufficientResolution is returned (wrapped) when field rows are shorter
// than the smoothing window.
var ErrInsufficientResolution = errors.New("insufficient resolution")

// CheckResolution reports ErrInsufficientResolution if rows of the given
// length cannot be smoothed with the window of cfg.
func CheckResolution(rowLength int, cfg config.Config) error {
	if rowLength < cfg.SmoothWindow {
		return fmt.Errorf("%w: rows have %d samples, smoothing window is %d", ErrInsufficientResolution, rowLength, cfg.SmoothWindow)
	}
	return nil
}

// Extract derives the pitch sequence of a field.
//
// Each row, in increasing row order, is smoothed, every smoothed value v is
// mapped to BasePitch + floor(v mod 12), every Stride-th candidate starting at
// column 0 is kept, and a candidate survives only if its interval above
// BasePitch belongs to the scale. Surviving pitches are concatenated in row
// order. A row may contribute nothing.
func Extract(field *fractal.Field, cfg config.Config) ([]int, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := CheckResolution(field.Size(), cfg); err != nil {
		return nil, err
	}

	filter, err := NewSmoothingFilter(cfg.SmoothWindow, cfg.SmoothDegree)
	if err != nil {
		return nil, err
	}

	// Rows are smoothed concurrently into their own slots and merged in order.
	smoothed := make([][]float64, field.Size())
	var g errgroup.Group
	g.SetLimit(cfg.WorkerCount())
	for i := range smoothed {
		i := i
		g.Go(func() error {
			row, err := filter.Apply(toFloats(field.Row(i)))
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			smoothed[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var pitches []int
	for _, row := range smoothed {
		pitches = appendRowPitches(pitches, row, cfg)
	}
	return pitches, nil
}

// appendRowPitches quantizes, downsamples and filters one smoothed row.
func appendRowPitches(dst []int, row []float64, cfg config.Config) []int {
	for i := 0; i < len(row); i += cfg.Stride {
		pitch := Quantize(row[i], cfg.BasePitch)
		if cfg.Scale.Contains(pitch - cfg.BasePitch) {
			dst = append(dst, pitch)
		}
	}
	return dst
}

// Quantize maps a smoothed value onto the octave above base:
// base + floor(v mod 12), with the modulo taken towards negative infinity.
func Quantize(v float64, base int) int {
	r := math.Mod(v, 12)
	if r < 0 {
		r += 12
	}
	// -1e-17 + 12 rounds to 12.
	if r >= 12 {
		r = 0
	}
	return base + int(math.Floor(r))
}
