package melody

import (
	"math"

	"github.com/gddickinson/fractal-music-generator/config"
)

const (
	velocitySwing  = 20 // Peak deviation of the loudness contour from the base velocity.
	velocityPeriod = 10 // The contour is sin(k / velocityPeriod).
	maxVelocity    = 127
)

// A single note of the melody. Times are in beats.
type NoteEvent struct {
	Pitch    int     // MIDI note number.
	Start    float64 // Onset, in beats from the start of the melody.
	Duration float64 // Length, in beats.
	Velocity int     // Loudness, 0..127.
}

// End returns the beat at which the note stops sounding.
func (n NoteEvent) End() float64 {
	return n.Start + n.Duration
}

// Melody is an ordered sequence of notes with strictly increasing start times.
type Melody []NoteEvent

// Velocity returns the loudness of the k-th note:
// base + floor(20 * sin(k / 10)), clamped to 0..127.
func Velocity(k, base int) int {
	v := base + int(math.Floor(velocitySwing*math.Sin(float64(k)/velocityPeriod)))
	return min(max(v, 0), maxVelocity)
}

// Assign places pitches on a timeline. Note k starts at k * NoteDuration,
// lasts NoteDuration and gets Velocity(k, BaseVelocity).
func Assign(pitches []int, cfg config.Config) Melody {
	m := make(Melody, len(pitches))
	for k, pitch := range pitches {
		m[k] = NoteEvent{
			Pitch:    pitch,
			Start:    float64(k) * cfg.NoteDuration,
			Duration: cfg.NoteDuration,
			Velocity: Velocity(k, cfg.BaseVelocity),
		}
	}
	return m
}

// Len returns the number of notes.
func (m Melody) Len() int { return len(m) }

// End returns the beat at which the last note stops, or 0 for an empty melody.
func (m Melody) End() float64 {
	if len(m) == 0 {
		return 0
	}
	return m[len(m)-1].End()
}

// Pitches returns the pitch of every note, in order.
func (m Melody) Pitches() []int {
	out := make([]int, len(m))
	for i, n := range m {
		out[i] = n.Pitch
	}
	return out
}
