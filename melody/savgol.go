package melody

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidFilter is returned (wrapped) for impossible smoothing parameters.
var ErrInvalidFilter = errors.New("invalid smoothing filter")

// SmoothingFilter is a Savitzky-Golay filter: every sample is replaced by the
// value, at that sample, of the least-squares polynomial fitted to the
// surrounding window.
//
// Samples closer than half a window to either end use the polynomial fitted
// to the first (or last) full window instead of a centred one.
type SmoothingFilter struct {
	window int
	degree int

	// coeffs[k] projects a window onto the fitted polynomial evaluated at
	// window position k. The centre row is the classic convolution kernel.
	coeffs [][]float64
}

// NewSmoothingFilter precomputes the filter for an odd window length and a
// polynomial degree below it.
func NewSmoothingFilter(window, degree int) (*SmoothingFilter, error) {
	if window <= 0 || window%2 == 0 {
		return nil, fmt.Errorf("%w: window must be a positive odd number, got %d", ErrInvalidFilter, window)
	}
	if degree < 0 || degree >= window {
		return nil, fmt.Errorf("%w: degree must be 0-%d, got %d", ErrInvalidFilter, window-1, degree)
	}

	half := window / 2
	scale := float64(max(half, 1))

	// Vandermonde matrix over window positions scaled to [-1, 1]. The scaling
	// keeps A^T A well conditioned and leaves the projection unchanged.
	a := mat.NewDense(window, degree+1, nil)
	for i := 0; i < window; i++ {
		t := float64(i-half) / scale
		p := 1.0
		for j := 0; j <= degree; j++ {
			a.Set(i, j, p)
			p *= t
		}
	}

	var normal mat.Dense
	normal.Mul(a.T(), a)
	var inv mat.Dense
	if err := inv.Inverse(&normal); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}

	// Hat matrix H = A (A^T A)^-1 A^T maps window samples to fitted values.
	var hat mat.Dense
	hat.Product(a, &inv, a.T())

	coeffs := make([][]float64, window)
	for k := range coeffs {
		coeffs[k] = mat.Row(nil, k, &hat)
	}
	return &SmoothingFilter{window: window, degree: degree, coeffs: coeffs}, nil
}

// Window returns the window length.
func (f *SmoothingFilter) Window() int { return f.window }

// Degree returns the polynomial degree.
func (f *SmoothingFilter) Degree() int { return f.degree }

// Kernel returns a copy of the coefficients applied to the window centred on
// an interior sample.
func (f *SmoothingFilter) Kernel() []float64 {
	return append([]float64(nil), f.coeffs[f.window/2]...)
}

// Apply smooths samples and returns a new slice of the same length. Inputs
// shorter than the window are rejected with ErrInsufficientResolution.
func (f *SmoothingFilter) Apply(samples []float64) ([]float64, error) {
	n := len(samples)
	if n < f.window {
		return nil, fmt.Errorf("%w: row has %d samples, smoothing window is %d", ErrInsufficientResolution, n, f.window)
	}

	half := f.window / 2
	out := make([]float64, n)

	centre := f.coeffs[half]
	for i := half; i < n-half; i++ {
		out[i] = dot(centre, samples[i-half:i+half+1])
	}

	head := samples[:f.window]
	tail := samples[n-f.window:]
	for k := 0; k < half; k++ {
		out[k] = dot(f.coeffs[k], head)
		out[n-half+k] = dot(f.coeffs[half+1+k], tail)
	}
	return out, nil
}

// Smooth applies a Savitzky-Golay filter with the given window and degree to
// an integer row.
func Smooth(row []int, window, degree int) ([]float64, error) {
	f, err := NewSmoothingFilter(window, degree)
	if err != nil {
		return nil, err
	}
	return f.Apply(toFloats(row))
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func toFloats(row []int) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = float64(v)
	}
	return out
}
