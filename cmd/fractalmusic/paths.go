package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sqweek/dialog"
)

// chooseMIDIPath returns the absolute MIDI output path, either the given
// one or the one picked in a save dialog starting at cwd.
func chooseMIDIPath(cwd, path string, useDialog bool) (string, error) {
	if useDialog {
		picked, err := dialog.
			File().
			Title("Save fractal melody").
			Filter("MIDI files (*.mid)", "mid").
			SetStartDir(cwd).
			SetStartFile(filepath.Base(path)).
			Save()
		if err != nil {
			// Caller checks for dialog.ErrCancelled.
			return "", err
		}
		if picked == "" {
			return "", dialog.ErrCancelled
		}
		path = picked
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot get absolute path: %w", err)
	}
	if err := validateOutputPath(absPath, ".mid", ".midi"); err != nil {
		return "", fmt.Errorf("invalid MIDI output path: %w", err)
	}
	return absPath, nil
}

// chooseImagePath returns the absolute PNG output path, or "" when image
// output is disabled.
func chooseImagePath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot get absolute path: %w", err)
	}
	if err := validateOutputPath(absPath, ".png"); err != nil {
		return "", fmt.Errorf("invalid image output path: %w", err)
	}
	return absPath, nil
}

// validateOutputPath checks the extension and that the parent directory
// exists.
func validateOutputPath(p string, exts ...string) error {
	ext := strings.ToLower(filepath.Ext(p))
	found := false
	for _, e := range exts {
		if ext == e {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("file must have %s extension", strings.Join(exts, " or "))
	}
	info, err := os.Stat(filepath.Dir(p))
	if err != nil {
		return fmt.Errorf("cannot stat output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(p))
	}
	return nil
}
