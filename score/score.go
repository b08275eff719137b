// Package score writes a melody as a single-track Standard MIDI File.
package score

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/gddickinson/fractal-music-generator/melody"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

var (
	// ErrInvalidNote is returned (wrapped) for notes that cannot be encoded.
	ErrInvalidNote = errors.New("invalid note")
	// ErrInvalidOptions is returned (wrapped) for unusable export options.
	ErrInvalidOptions = errors.New("invalid score options")
)

const (
	maxChannel    = 15
	maxDataByte   = 127
	maxResolution = 1<<15 - 1 // Metric time division is a 15-bit value.
)

// Options controls the layout of the exported file.
type Options struct {
	Tempo      float64 // Beats per minute.
	TrackName  string
	Channel    uint8  // MIDI channel 0..15.
	Resolution uint16 // Ticks per quarter note.
}

// DefaultOptions returns a 120 BPM track named "Fractal Melody" on channel 0.
func DefaultOptions() Options {
	return Options{
		Tempo:      120,
		TrackName:  "Fractal Melody",
		Channel:    0,
		Resolution: 960,
	}
}

func (o Options) validate() error {
	if !(o.Tempo > 0) {
		return fmt.Errorf("%w: tempo must be positive, got %g", ErrInvalidOptions, o.Tempo)
	}
	if o.Channel > maxChannel {
		return fmt.Errorf("%w: channel must be 0-%d, got %d", ErrInvalidOptions, maxChannel, o.Channel)
	}
	if o.Resolution == 0 || o.Resolution > maxResolution {
		return fmt.Errorf("%w: resolution must be 1-%d, got %d", ErrInvalidOptions, maxResolution, o.Resolution)
	}
	return nil
}

// A note-on or note-off at an absolute tick.
type event struct {
	tick uint32
	off  bool
	msg  midi.Message
}

// Build converts the melody into an in-memory SMF with one track holding the
// track name, the tempo and a note-on/note-off pair per note. Beat times are
// rounded to the nearest tick; a note lasts at least one tick.
func Build(m melody.Melody, opts Options) (*smf.SMF, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	ticksPerBeat := float64(opts.Resolution)
	toTicks := func(beats float64) uint32 {
		return uint32(math.Round(beats * ticksPerBeat))
	}

	events := make([]event, 0, 2*len(m))
	for i, n := range m {
		if n.Pitch < 0 || n.Pitch > maxDataByte {
			return nil, fmt.Errorf("%w: note %d: pitch must be 0-%d, got %d", ErrInvalidNote, i, maxDataByte, n.Pitch)
		}
		if n.Velocity < 0 || n.Velocity > maxDataByte {
			return nil, fmt.Errorf("%w: note %d: velocity must be 0-%d, got %d", ErrInvalidNote, i, maxDataByte, n.Velocity)
		}
		if !(n.Start >= 0) || !(n.Duration > 0) || math.IsInf(n.End(), 0) {
			return nil, fmt.Errorf("%w: note %d: start %g and duration %g must be finite, non-negative and positive", ErrInvalidNote, i, n.Start, n.Duration)
		}

		start := toTicks(n.Start)
		end := max(toTicks(n.End()), start+1)
		key := uint8(n.Pitch)
		events = append(events,
			event{tick: start, msg: midi.NoteOn(opts.Channel, key, uint8(n.Velocity))},
			event{tick: end, off: true, msg: midi.NoteOff(opts.Channel, key)},
		)
	}

	// Release notes before starting the ones that begin on the same tick.
	sort.SliceStable(events, func(a, b int) bool {
		if events[a].tick != events[b].tick {
			return events[a].tick < events[b].tick
		}
		return events[a].off && !events[b].off
	})

	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(opts.TrackName))
	track.Add(0, smf.MetaTempo(opts.Tempo))
	var last uint32
	for _, ev := range events {
		track.Add(ev.tick-last, ev.msg)
		last = ev.tick
	}
	track.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(opts.Resolution)
	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("error adding track: %w", err)
	}
	return s, nil
}

// Write encodes the melody as a Standard MIDI File into w.
func Write(w io.Writer, m melody.Melody, opts Options) error {
	s, err := Build(m, opts)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("error writing MIDI data: %w", err)
	}
	return nil
}

// WriteFile writes the melody to a .mid file at path.
func WriteFile(path string, m melody.Melody, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating MIDI file: %w", err)
	}
	if err := Write(f, m, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error closing MIDI file: %w", err)
	}
	return nil
}
