package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/gddickinson/fractal-music-generator/generator"
	"github.com/gddickinson/fractal-music-generator/render"
	"github.com/gddickinson/fractal-music-generator/score"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/sqweek/dialog"
)

var logger *log.Logger

func main() {
	runID := uuid.NewString()[:8]
	logger = log.New(os.Stdout, "["+runID+"] ", log.Ldate|log.Ltime)

	// A missing .env file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Fatalf("error loading .env: %v", err)
	}

	opts, err := parseOptions(os.Args[1:], os.Stderr, os.LookupEnv)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		logger.Fatalf("configuration error: %v", err)
	}
	if opts.dump {
		spew.Fdump(os.Stdout, opts.cfg)
	}

	cwd, err := os.Getwd()
	if err != nil {
		logger.Fatalf("failed to get current working directory: %v", err)
	}
	midiPath, err := chooseMIDIPath(cwd, opts.midiPath, opts.saveDialog)
	if err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			logger.Printf("User cancelled the save dialog")
			os.Exit(1)
		}
		logger.Fatalf("failed to determine MIDI path: %v", err)
	}
	imagePath, err := chooseImagePath(opts.imagePath)
	if err != nil {
		logger.Fatalf("failed to determine image path: %v", err)
	}

	result, err := generator.New(opts.cfg, logger).Generate()
	if err != nil {
		logger.Fatalf("generation error: %v", err)
	}
	if opts.print {
		fmt.Println(result.Melody)
	}

	if err := export(result, opts, midiPath, imagePath); err != nil {
		logger.Printf("%v", err)
		os.Exit(1)
	}
}

// export writes the MIDI file and the image. A failure of one does not
// prevent the other; all failures are returned joined.
func export(result *generator.Result, opts options, midiPath, imagePath string) error {
	var errs []error

	if err := score.WriteFile(midiPath, result.Melody, opts.scoreOptions()); err != nil {
		errs = append(errs, fmt.Errorf("MIDI export failed: %w", err))
	} else {
		logger.Printf("Wrote %d notes to %s", result.Melody.Len(), midiPath)
	}

	if imagePath != "" {
		if err := render.WriteFile(imagePath, result.Field, opts.renderOptions()); err != nil {
			errs = append(errs, fmt.Errorf("image export failed: %w", err))
		} else {
			logger.Printf("Wrote visualization to %s", imagePath)
		}
	}
	return errors.Join(errs...)
}
