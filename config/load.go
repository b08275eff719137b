package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Decode reads YAML settings from r on top of base. Keys missing from the
// document keep the value they have in base; unknown keys are rejected.
// An empty document returns base unchanged.
func Decode(r io.Reader, base Config) (Config, error) {
	cfg := base
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return base, nil
		}
		return base, fmt.Errorf("error decoding configuration: %w", err)
	}
	return cfg, nil
}

// LoadFile reads a YAML configuration file on top of base.
func LoadFile(path string, base Config) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, fmt.Errorf("error opening configuration file: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f, base)
	if err != nil {
		return base, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Environment variables understood by FromEnv.
const (
	EnvMaxIter      = "FRACTAL_MAX_ITER"
	EnvResolution   = "FRACTAL_RESOLUTION"
	EnvBasePitch    = "FRACTAL_BASE_PITCH"
	EnvNoteDuration = "FRACTAL_NOTE_DURATION"
	EnvWorkers      = "FRACTAL_WORKERS"
)

// FromEnv overrides fields of base with the FRACTAL_* variables found through
// lookup (normally os.LookupEnv). Empty variables are ignored. FRACTAL_BASE_PITCH
// accepts a MIDI number or a note name such as "C-4".
func FromEnv(base Config, lookup func(string) (string, bool)) (Config, error) {
	cfg := base

	getEnv := func(key string) (string, bool) {
		value, ok := lookup(key)
		if !ok || value == "" {
			return "", false
		}
		return value, true
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvMaxIter, &cfg.MaxIter},
		{EnvResolution, &cfg.Resolution},
		{EnvWorkers, &cfg.Workers},
	}
	for _, e := range ints {
		value, ok := getEnv(e.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return base, fmt.Errorf("%s is not a valid integer: %w", e.key, err)
		}
		*e.dst = n
	}

	if value, ok := getEnv(EnvBasePitch); ok {
		pitch, err := ParsePitch(value)
		if err != nil {
			return base, fmt.Errorf("%s: %w", EnvBasePitch, err)
		}
		cfg.BasePitch = pitch
	}

	if value, ok := getEnv(EnvNoteDuration); ok {
		d, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return base, fmt.Errorf("%s is not a valid number: %w", EnvNoteDuration, err)
		}
		cfg.NoteDuration = d
	}

	return cfg, nil
}
