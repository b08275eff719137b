// Package generator runs the whole fractal-to-melody pipeline: it validates
// the configuration, computes the iteration field, extracts the pitch
// sequence and lays it out on a timeline.
package generator

import (
	"log"

	"github.com/gddickinson/fractal-music-generator/config"
	"github.com/gddickinson/fractal-music-generator/fractal"
	"github.com/gddickinson/fractal-music-generator/melody"
)

// Result holds everything one run produces. Both values are read-only and
// can be handed to exporters independently.
type Result struct {
	Field  *fractal.Field
	Melody melody.Melody
}

// Generator runs the pipeline for one configuration.
type Generator struct {
	cfg    config.Config
	logger *log.Logger
}

// New creates a generator for cfg. A nil logger logs to log.Default().
func New(cfg config.Config, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{cfg: cfg, logger: logger}
}

// Config returns the configuration the generator was created with.
func (g *Generator) Config() config.Config {
	return g.cfg
}

// Generate runs the pipeline. Configuration problems are reported before any
// computation starts: config.ErrInvalidConfiguration first, then
// melody.ErrInsufficientResolution if the rows would be too short to smooth.
// On error no partial result is returned.
func (g *Generator) Generate() (*Result, error) {
	cfg := g.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := melody.CheckResolution(cfg.Resolution, cfg); err != nil {
		return nil, err
	}

	g.logger.Printf("Computing %dx%d field (%d iterations, %d workers)", cfg.Resolution, cfg.Resolution, cfg.MaxIter, cfg.WorkerCount())
	field, err := fractal.ComputeField(cfg)
	if err != nil {
		return nil, err
	}
	g.logger.Printf("%d of %d cells escaped", field.Escaped(), cfg.Resolution*cfg.Resolution)
	if it, count := mostCommonEscape(field.Histogram()); count > 0 {
		g.logger.Printf("Most cells escape after %d iterations (%d cells)", it, count)
	}

	pitches, err := melody.Extract(field, cfg)
	if err != nil {
		return nil, err
	}
	g.logger.Printf("Extracted %d pitches from %d rows", len(pitches), field.Size())

	m := melody.Assign(pitches, cfg)
	g.logger.Printf("Melody spans %.2f beats", m.End())

	return &Result{Field: field, Melody: m}, nil
}

// mostCommonEscape returns the escape iteration shared by the most cells,
// ignoring the last bucket (cells that never escaped).
func mostCommonEscape(hist []int) (iteration, count int) {
	for i, c := range hist[:len(hist)-1] {
		if c > count {
			iteration, count = i, c
		}
	}
	return iteration, count
}
