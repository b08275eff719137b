package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidNoteName is returned (wrapped) for malformed note names.
var ErrInvalidNoteName = errors.New("invalid note name")

var noteBase = map[byte]int{
	'C': 0,
	'D': 2,
	'E': 4,
	'F': 5,
	'G': 7,
	'A': 9,
	'B': 11,
}

var sharpNames = [12]string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}

/*
NoteName formats a MIDI note number as a 3 character tracker-style name.

The first character is the note letter. The second character is:

- '#' if the pitch is sharp and the octave is >= 0,

- '+' if the pitch is sharp and the octave is < 0,

- '-' if the pitch is natural and the octave is >= 0, or

- '_' if the pitch is natural and the octave is < 0.

The third character is the absolute value of the octave, where middle C (60)
is in octave 4. Numbers outside 0..127 are formatted as "???".
*/
func NoteName(pitch int) string {
	if pitch < 0 || pitch > 127 {
		return "???"
	}
	name := sharpNames[pitch%12]
	octave := pitch/12 - 1
	if octave < 0 {
		// Only MIDI octave -1 exists below zero.
		marker := byte('_')
		if name[1] == '#' {
			marker = '+'
		}
		return fmt.Sprintf("%c%c%d", name[0], marker, -octave)
	}
	return fmt.Sprintf("%s%d", name, octave)
}

// ParseNoteName parses a note name and returns its MIDI note number.
//
// Tracker-style names produced by NoteName ("C-4", "F#3", "C_1") are accepted,
// as are scientific names with an optional accidental ("C4", "Eb3", "G#5").
// Flats are only recognised in the scientific form.
func ParseNoteName(name string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNoteName, name)
	}

	base, ok := noteBase[s[0]]
	if !ok {
		return 0, fmt.Errorf("%w: %q: note letter must be A-G", ErrInvalidNoteName, name)
	}

	rest := s[1:]
	accidental := 0
	negative := false
	switch rest[0] {
	case '#':
		accidental = 1
		rest = rest[1:]
	case '+':
		accidental = 1
		negative = true
		rest = rest[1:]
	case '-':
		rest = rest[1:]
	case '_':
		negative = true
		rest = rest[1:]
	case 'B':
		accidental = -1
		rest = rest[1:]
	}

	// The octave is always a single digit.
	if len(rest) != 1 || rest[0] < '0' || rest[0] > '9' {
		return 0, fmt.Errorf("%w: %q: octave must be a single digit", ErrInvalidNoteName, name)
	}
	octave := int(rest[0] - '0')
	if negative {
		if octave != 1 {
			return 0, fmt.Errorf("%w: %q: the only negative octave is -1", ErrInvalidNoteName, name)
		}
		octave = -octave
	}

	pitch := (octave+1)*12 + base + accidental
	if pitch < 0 || pitch > 127 {
		return 0, fmt.Errorf("%w: %q: pitch must be 0-127, got %d", ErrInvalidNoteName, name, pitch)
	}
	return pitch, nil
}

// ParsePitch accepts either a MIDI note number or a note name.
func ParsePitch(s string) (int, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		if n < 0 || n > 127 {
			return 0, fmt.Errorf("%w: pitch must be 0-127, got %d", ErrInvalidNoteName, n)
		}
		return n, nil
	}
	return ParseNoteName(s)
}
