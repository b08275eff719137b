package main

import (
	"fmt"
	"io"

	"github.com/gddickinson/fractal-music-generator/config"
	"github.com/gddickinson/fractal-music-generator/render"
	"github.com/gddickinson/fractal-music-generator/score"
	"github.com/spf13/pflag"
)

// options is everything a run needs after flags, environment and the
// configuration file have been merged.
type options struct {
	cfg        config.Config
	configPath string
	midiPath   string
	imagePath  string
	imageScale int
	legend     bool
	tempo      float64
	saveDialog bool
	print      bool
	dump       bool
}

// flagValues mirrors the command-line flags before they are merged into
// the configuration.
type flagValues struct {
	maxIter    int
	resolution int
	baseNote   string
	duration   float64
	scale      []int
	threshold  float64
	velocity   int
	workers    int
}

func newFlagSet(out io.Writer, fv *flagValues, opts *options) *pflag.FlagSet {
	def := config.Default()

	fs := pflag.NewFlagSet("fractalmusic", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.IntVarP(&fv.maxIter, "max-iter", "m", def.MaxIter, "maximum escape-time iterations per cell")
	fs.IntVarP(&fv.resolution, "resolution", "r", def.Resolution, "width and height of the sampled grid")
	fs.StringVarP(&fv.baseNote, "base-note", "b", config.NoteName(def.BasePitch), "lowest pitch, as a MIDI number or note name (C-4, C#4, Bb3)")
	fs.Float64VarP(&fv.duration, "duration", "d", def.NoteDuration, "note duration in beats")
	fs.IntSliceVar(&fv.scale, "scale", def.Scale.Classes(), "pitch classes (0-11) relative to the base note")
	fs.Float64Var(&fv.threshold, "threshold", def.DivergenceThreshold, "divergence threshold (magnitude)")
	fs.IntVar(&fv.velocity, "velocity", def.BaseVelocity, "base note velocity (20-107)")
	fs.IntVarP(&fv.workers, "workers", "w", def.Workers, "parallel workers (0 = one per CPU)")

	fs.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	fs.StringVar(&opts.midiPath, "midi", "fractal_melody.mid", "output MIDI file")
	fs.StringVar(&opts.imagePath, "image", "fractal_visualization.png", "output PNG file (empty to skip)")
	fs.IntVar(&opts.imageScale, "image-scale", 1, "pixels per grid cell in the PNG")
	fs.BoolVar(&opts.legend, "legend", true, "draw a title and colour bar around the PNG")
	fs.Float64Var(&opts.tempo, "tempo", score.DefaultOptions().Tempo, "MIDI tempo in BPM")
	fs.BoolVar(&opts.saveDialog, "save-dialog", false, "choose the MIDI output path with a save dialog")
	fs.BoolVar(&opts.print, "print", false, "print the melody as a table")
	fs.BoolVar(&opts.dump, "dump", false, "dump the resolved configuration")
	return fs
}

// parseOptions resolves the run options. Later sources win: built-in
// defaults, FRACTAL_* variables from lookup, the --config file, then flags
// given explicitly on the command line.
func parseOptions(args []string, out io.Writer, lookup func(string) (string, bool)) (options, error) {
	var (
		fv   flagValues
		opts options
	)
	fs := newFlagSet(out, &fv, &opts)
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg, err := config.FromEnv(config.Default(), lookup)
	if err != nil {
		return options{}, err
	}
	if opts.configPath != "" {
		if cfg, err = config.LoadFile(opts.configPath, cfg); err != nil {
			return options{}, err
		}
	}

	if fs.Changed("max-iter") {
		cfg.MaxIter = fv.maxIter
	}
	if fs.Changed("resolution") {
		cfg.Resolution = fv.resolution
	}
	if fs.Changed("base-note") {
		if cfg.BasePitch, err = config.ParsePitch(fv.baseNote); err != nil {
			return options{}, fmt.Errorf("invalid --base-note: %w", err)
		}
	}
	if fs.Changed("duration") {
		cfg.NoteDuration = fv.duration
	}
	if fs.Changed("scale") {
		if cfg.Scale, err = config.NewPitchClassSet(fv.scale...); err != nil {
			return options{}, fmt.Errorf("invalid --scale: %w", err)
		}
	}
	if fs.Changed("threshold") {
		cfg.DivergenceThreshold = fv.threshold
	}
	if fs.Changed("velocity") {
		cfg.BaseVelocity = fv.velocity
	}
	if fs.Changed("workers") {
		cfg.Workers = fv.workers
	}

	if err := cfg.Validate(); err != nil {
		return options{}, err
	}
	if opts.imageScale < 1 {
		return options{}, fmt.Errorf("--image-scale must be at least 1, got %d", opts.imageScale)
	}
	opts.cfg = cfg
	return opts, nil
}

func (o options) renderOptions() render.Options {
	return render.Options{Scale: o.imageScale, Legend: o.legend}
}

func (o options) scoreOptions() score.Options {
	so := score.DefaultOptions()
	so.Tempo = o.tempo
	return so
}
