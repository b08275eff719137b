package melody

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmoothingFilterKernel(t *testing.T) {
	tests := []struct {
		name   string
		window int
		degree int
		norm   float64
		want   []float64
	}{
		{
			name:   "15 point cubic",
			window: 15,
			degree: 3,
			norm:   1105,
			want:   []float64{-78, -13, 42, 87, 122, 147, 162, 167, 162, 147, 122, 87, 42, -13, -78},
		},
		{
			name:   "5 point quadratic",
			window: 5,
			degree: 2,
			norm:   35,
			want:   []float64{-3, 12, 17, 12, -3},
		},
		{
			name:   "7 point cubic",
			window: 7,
			degree: 3,
			norm:   21,
			want:   []float64{-2, 3, 6, 7, 6, 3, -2},
		},
		{
			name:   "moving average",
			window: 3,
			degree: 0,
			norm:   3,
			want:   []float64{1, 1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewSmoothingFilter(tt.window, tt.degree)
			require.NoError(t, err)
			assert.Equal(t, tt.window, f.Window())
			assert.Equal(t, tt.degree, f.Degree())

			kernel := f.Kernel()
			require.Len(t, kernel, tt.window)
			for i, w := range tt.want {
				assert.InDelta(t, w/tt.norm, kernel[i], 1e-9, "coefficient %d", i)
			}
		})
	}
}

func TestSmoothingFilterReproducesCubics(t *testing.T) {
	f, err := NewSmoothingFilter(15, 3)
	require.NoError(t, err)

	cubic := func(x float64) float64 { return 0.01*x*x*x - 0.3*x*x + 2*x + 5 }
	samples := make([]float64, 40)
	for i := range samples {
		samples[i] = cubic(float64(i))
	}

	got, err := f.Apply(samples)
	require.NoError(t, err)
	require.Len(t, got, len(samples))
	// Edge samples are evaluated on the polynomial fitted to the first and
	// last windows, so they are exact too.
	for i := range samples {
		assert.InDelta(t, samples[i], got[i], 1e-6, "sample %d", i)
	}
}

func TestSmoothingFilterImpulse(t *testing.T) {
	f, err := NewSmoothingFilter(15, 3)
	require.NoError(t, err)

	samples := make([]float64, 31)
	samples[15] = 1105

	got, err := f.Apply(samples)
	require.NoError(t, err)
	assert.InDelta(t, 167, got[15], 1e-6)
	assert.InDelta(t, 162, got[14], 1e-6)
	assert.InDelta(t, -78, got[8], 1e-6)
	assert.InDelta(t, 0, got[7], 1e-6)
	assert.InDelta(t, 0, got[0], 1e-6)
	assert.InDelta(t, 0, got[30], 1e-6)
}

func TestSmoothingFilterExactWindow(t *testing.T) {
	// A row exactly one window long is fitted by a single polynomial.
	f, err := NewSmoothingFilter(5, 1)
	require.NoError(t, err)

	got, err := f.Apply([]float64{1, 3, 2, 5, 4})
	require.NoError(t, err)
	// Least-squares line through the points: 1.4 + 0.8x.
	want := []float64{1.4, 2.2, 3.0, 3.8, 4.6}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "sample %d", i)
	}
}

func TestSmoothingFilterErrors(t *testing.T) {
	tests := []struct {
		name   string
		window int
		degree int
	}{
		{"even window", 14, 3},
		{"zero window", 0, 0},
		{"negative degree", 15, -1},
		{"degree equals window", 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSmoothingFilter(tt.window, tt.degree)
			assert.ErrorIs(t, err, ErrInvalidFilter)
		})
	}
}

func TestSmoothShortRow(t *testing.T) {
	_, err := Smooth(make([]int, 10), 15, 3)
	assert.ErrorIs(t, err, ErrInsufficientResolution)
	assert.Contains(t, err.Error(), "row has 10 samples, smoothing window is 15")
}

func TestSmoothConstantRow(t *testing.T) {
	row := make([]int, 20)
	for i := range row {
		row[i] = 7
	}
	got, err := Smooth(row, 15, 3)
	require.NoError(t, err)
	for i, v := range got {
		assert.InDelta(t, 7, v, 1e-9, "sample %d", i)
	}
}
