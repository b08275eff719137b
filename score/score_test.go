package score

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gddickinson/fractal-music-generator/config"
	"github.com/gddickinson/fractal-music-generator/melody"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type noteOn struct {
	tick     uint32
	key      uint8
	velocity uint8
}

// readBack decodes an SMF and returns its note-ons with absolute ticks and
// the tempo of the first tempo event.
func readBack(t *testing.T, data []byte) (*smf.SMF, []noteOn, float64) {
	t.Helper()

	s, err := smf.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, s.Tracks, 1)

	var (
		notes []noteOn
		tempo float64
		tick  uint32
	)
	for _, ev := range s.Tracks[0] {
		tick += ev.Delta
		var bpm float64
		if tempo == 0 && ev.Message.GetMetaTempo(&bpm) {
			tempo = bpm
		}
		var ch, key, vel uint8
		if midi.Message(ev.Message).GetNoteOn(&ch, &key, &vel) {
			notes = append(notes, noteOn{tick: tick, key: key, velocity: vel})
		}
	}
	return s, notes, tempo
}

func TestWrite(t *testing.T) {
	m := melody.Assign([]int{60, 62, 64, 65}, config.Default())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, m, DefaultOptions()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("MThd")))
	assert.True(t, bytes.Contains(buf.Bytes(), []byte("Fractal Melody")))

	s, notes, tempo := readBack(t, buf.Bytes())
	assert.Equal(t, smf.MetricTicks(960), s.TimeFormat)
	assert.InDelta(t, 120, tempo, 0.01)

	require.Len(t, notes, 4)
	for k, n := range notes {
		assert.Equal(t, uint32(k*240), n.tick, "note %d", k)
		assert.Equal(t, uint8(m[k].Pitch), n.key, "note %d", k)
		assert.Equal(t, uint8(m[k].Velocity), n.velocity, "note %d", k)
	}
}

func TestBuildReleasesBeforeNextNote(t *testing.T) {
	m := melody.Assign([]int{60, 60}, config.Default())

	s, err := Build(m, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, s.Tracks, 1)

	// After the two meta events: on@0, off@240, on@240, off@480.
	var kinds []string
	for _, ev := range s.Tracks[0] {
		msg := midi.Message(ev.Message)
		var ch, key, vel uint8
		switch {
		case msg.GetNoteOn(&ch, &key, &vel):
			kinds = append(kinds, "on")
		case len(msg) > 0 && msg[0]&0xf0 == 0x80:
			kinds = append(kinds, "off")
		}
	}
	assert.Equal(t, []string{"on", "off", "on", "off"}, kinds)
}

func TestBuildEmptyMelody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, DefaultOptions()))

	_, notes, tempo := readBack(t, buf.Bytes())
	assert.Empty(t, notes)
	assert.InDelta(t, 120, tempo, 0.01)
}

func TestBuildCustomOptions(t *testing.T) {
	cfg := config.Default()
	cfg.NoteDuration = 0.5
	m := melody.Assign([]int{67, 69, 71}, cfg)

	opts := Options{Tempo: 90, TrackName: "Seahorse Valley", Channel: 3, Resolution: 480}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, m, opts))
	assert.True(t, bytes.Contains(buf.Bytes(), []byte("Seahorse Valley")))

	s, notes, tempo := readBack(t, buf.Bytes())
	assert.Equal(t, smf.MetricTicks(480), s.TimeFormat)
	assert.InDelta(t, 90, tempo, 0.01)
	require.Len(t, notes, 3)
	assert.Equal(t, uint32(480), notes[2].tick)
}

func TestBuildErrors(t *testing.T) {
	valid := melody.Melody{{Pitch: 60, Start: 0, Duration: 0.25, Velocity: 70}}

	tests := []struct {
		name    string
		melody  melody.Melody
		opts    func(*Options)
		wantErr error
	}{
		{"pitch too high", melody.Melody{{Pitch: 128, Duration: 1, Velocity: 70}}, nil, ErrInvalidNote},
		{"negative pitch", melody.Melody{{Pitch: -1, Duration: 1, Velocity: 70}}, nil, ErrInvalidNote},
		{"velocity too high", melody.Melody{{Pitch: 60, Duration: 1, Velocity: 128}}, nil, ErrInvalidNote},
		{"zero duration", melody.Melody{{Pitch: 60, Velocity: 70}}, nil, ErrInvalidNote},
		{"negative start", melody.Melody{{Pitch: 60, Start: -1, Duration: 1, Velocity: 70}}, nil, ErrInvalidNote},
		{"NaN start", melody.Melody{{Pitch: 60, Start: math.NaN(), Duration: 1, Velocity: 70}}, nil, ErrInvalidNote},
		{"infinite duration", melody.Melody{{Pitch: 60, Duration: math.Inf(1), Velocity: 70}}, nil, ErrInvalidNote},
		{"zero tempo", valid, func(o *Options) { o.Tempo = 0 }, ErrInvalidOptions},
		{"channel out of range", valid, func(o *Options) { o.Channel = 16 }, ErrInvalidOptions},
		{"zero resolution", valid, func(o *Options) { o.Resolution = 0 }, ErrInvalidOptions},
		{"resolution too high", valid, func(o *Options) { o.Resolution = 40000 }, ErrInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}
			_, err := Build(tt.melody, opts)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteFailure(t *testing.T) {
	m := melody.Assign([]int{60}, config.Default())
	err := Write(failingWriter{}, m, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error writing MIDI data")
}

func TestWriteFile(t *testing.T) {
	m := melody.Assign([]int{60, 64, 67}, config.Default())

	path := filepath.Join(t.TempDir(), "fractal_melody.mid")
	require.NoError(t, WriteFile(path, m, DefaultOptions()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, notes, _ := readBack(t, data)
	assert.Len(t, notes, 3)

	err = WriteFile(filepath.Join(t.TempDir(), "missing", "out.mid"), m, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error creating MIDI file")
}
