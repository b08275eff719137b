// Package config holds the settings shared by every stage of the
// fractal-to-melody pipeline. A Config is a plain value: stages receive a copy
// and never modify it.
package config

import (
	"errors"
	"fmt"
	"math"
	"runtime"
)

// ErrInvalidConfiguration is returned (wrapped) when a Config fails validation.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Bounds is the window of the complex plane sampled by the fractal field.
type Bounds struct {
	RealMin float64 `yaml:"real_min"`
	RealMax float64 `yaml:"real_max"`
	ImagMin float64 `yaml:"imag_min"`
	ImagMax float64 `yaml:"imag_max"`
}

// DefaultBounds frames the whole Mandelbrot set.
var DefaultBounds = Bounds{RealMin: -2, RealMax: 0.8, ImagMin: -1.4, ImagMax: 1.4}

const (
	maxBasePitch    = 127 - 11 // Highest base pitch that keeps base+11 inside the MIDI range.
	velocitySwing   = 20       // Must match the amplitude of the velocity contour.
	maxMIDIVelocity = 127
)

// Config describes one generation run.
type Config struct {
	MaxIter    int `yaml:"max_iter"`   // Iteration cap of the escape-time map.
	Resolution int `yaml:"resolution"` // Width and height of the iteration field.

	BasePitch    int           `yaml:"base_pitch"`    // MIDI note number of the tonic (60 is middle C).
	NoteDuration float64       `yaml:"note_duration"` // Length of every note, in beats.
	Scale        PitchClassSet `yaml:"scale"`         // Pitch classes, relative to BasePitch, that a note may use.
	BaseVelocity int           `yaml:"base_velocity"` // Centre of the loudness contour.

	// Escape radius. The squared magnitude of z is compared against its square.
	DivergenceThreshold float64 `yaml:"divergence_threshold"`
	Bounds              Bounds  `yaml:"bounds"`

	SmoothWindow int `yaml:"smooth_window"` // Savitzky-Golay window length (odd).
	SmoothDegree int `yaml:"smooth_degree"` // Savitzky-Golay polynomial degree.
	Stride       int `yaml:"stride"`        // Keep every Stride-th smoothed sample of a row.

	// Number of goroutines used for per-row work. 0 means runtime.GOMAXPROCS(0).
	Workers int `yaml:"workers"`
}

// Default returns the configuration of the reference generator.
func Default() Config {
	return Config{
		MaxIter:             100,
		Resolution:          200,
		BasePitch:           60,
		NoteDuration:        0.25,
		Scale:               DiatonicMajor,
		BaseVelocity:        70,
		DivergenceThreshold: 2,
		Bounds:              DefaultBounds,
		SmoothWindow:        15,
		SmoothDegree:        3,
		Stride:              4,
	}
}

// WorkerCount returns the effective number of goroutines for per-row work.
func (c Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// Validate reports the first problem found with c. Every returned error wraps
// ErrInvalidConfiguration.
func (c Config) Validate() error {
	if c.Resolution <= 0 {
		return invalidf("resolution must be positive, got %d", c.Resolution)
	}
	if c.MaxIter <= 0 {
		return invalidf("max iterations must be positive, got %d", c.MaxIter)
	}
	if c.BasePitch < 0 || c.BasePitch > maxBasePitch {
		return invalidf("base pitch must be 0-%d, got %d", maxBasePitch, c.BasePitch)
	}
	if !(c.NoteDuration > 0) || math.IsInf(c.NoteDuration, 0) {
		return invalidf("note duration must be positive and finite, got %g", c.NoteDuration)
	}
	if c.Scale.Len() == 0 {
		return invalidf("scale must contain at least one pitch class")
	}
	if c.Scale&^allPitchClasses != 0 {
		return invalidf("scale contains pitch classes outside 0-11")
	}
	if c.BaseVelocity < velocitySwing || c.BaseVelocity > maxMIDIVelocity-velocitySwing {
		return invalidf("base velocity must be %d-%d, got %d", velocitySwing, maxMIDIVelocity-velocitySwing, c.BaseVelocity)
	}
	if !(c.DivergenceThreshold > 0) || math.IsInf(c.DivergenceThreshold, 0) {
		return invalidf("divergence threshold must be positive and finite, got %g", c.DivergenceThreshold)
	}
	if !finite(c.Bounds.RealMin, c.Bounds.RealMax, c.Bounds.ImagMin, c.Bounds.ImagMax) {
		return invalidf("bounds must be finite, got %+v", c.Bounds)
	}
	if !(c.Bounds.RealMin < c.Bounds.RealMax) {
		return invalidf("real bounds must satisfy min < max, got [%g, %g]", c.Bounds.RealMin, c.Bounds.RealMax)
	}
	if !(c.Bounds.ImagMin < c.Bounds.ImagMax) {
		return invalidf("imaginary bounds must satisfy min < max, got [%g, %g]", c.Bounds.ImagMin, c.Bounds.ImagMax)
	}
	if c.SmoothWindow <= 0 || c.SmoothWindow%2 == 0 {
		return invalidf("smoothing window must be a positive odd number, got %d", c.SmoothWindow)
	}
	if c.SmoothDegree < 0 || c.SmoothDegree >= c.SmoothWindow {
		return invalidf("smoothing degree must be 0-%d, got %d", c.SmoothWindow-1, c.SmoothDegree)
	}
	if c.Stride <= 0 {
		return invalidf("stride must be positive, got %d", c.Stride)
	}
	if c.Workers < 0 {
		return invalidf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}
