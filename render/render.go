// Package render draws an iteration field as a colour-mapped image.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/gddickinson/fractal-music-generator/fractal"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

// ErrInvalidColormap is returned (wrapped) by NewColormap.
var ErrInvalidColormap = errors.New("invalid colour map")

// defaultStops run from the interior colour of the set out to the fastest
// escaping cells.
var defaultStops = []string{
	"#00008b", // darkblue
	"#0000ff", // blue
	"#ee82ee", // violet
	"#ff00ff", // magenta
	"#ffa500", // orange
	"#ffff00", // yellow
}

const defaultBins = 100

// Colormap is a lookup table of evenly spaced colours interpolated between
// a list of stops.
type Colormap struct {
	table []color.RGBA
}

// NewColormap interpolates bins colours linearly in RGB between the given
// hex stops ("#rrggbb" or "#rgb").
func NewColormap(stops []string, bins int) (*Colormap, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 stops, got %d", ErrInvalidColormap, len(stops))
	}
	if bins < 2 {
		return nil, fmt.Errorf("%w: need at least 2 bins, got %d", ErrInvalidColormap, bins)
	}

	colors := make([]colorful.Color, len(stops))
	for i, s := range stops {
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, fmt.Errorf("%w: stop %d: %w", ErrInvalidColormap, i, err)
		}
		colors[i] = c
	}

	segments := float64(len(colors) - 1)
	table := make([]color.RGBA, bins)
	for i := range table {
		pos := float64(i) / float64(bins-1) * segments
		seg := min(int(pos), len(colors)-2)
		c := colors[seg].BlendRgb(colors[seg+1], pos-float64(seg)).Clamped()
		r, g, b := c.RGB255()
		table[i] = color.RGBA{R: r, G: g, B: b, A: 0xff}
	}
	return &Colormap{table: table}, nil
}

// DefaultColormap returns the dark blue to yellow map used for the field
// visualisation.
func DefaultColormap() *Colormap {
	cm, err := NewColormap(defaultStops, defaultBins)
	if err != nil {
		panic(err)
	}
	return cm
}

// Len returns the number of colours in the table.
func (cm *Colormap) Len() int { return len(cm.table) }

// At maps t in [0, 1] to a colour. Values outside the range are clamped.
func (cm *Colormap) At(t float64) color.RGBA {
	i := int(t * float64(len(cm.table)))
	i = max(0, min(i, len(cm.table)-1))
	return cm.table[i]
}

// Options controls image rendering.
type Options struct {
	Colormap *Colormap // nil selects DefaultColormap.
	Scale    int       // Pixels per cell; values below 1 mean 1.

	// Legend frames the field with a title and a labelled colour bar.
	Legend bool
	Title  string // Used with Legend; empty selects DefaultTitle.
}

// Image renders one pixel per cell with row 0 at the top, optionally framed
// by a legend. Each cell is coloured by its count divided by the field's
// MaxIter, so the interior of the set takes the last colour of the map.
func Image(field *fractal.Field, opts Options) *image.RGBA {
	cm := opts.Colormap
	if cm == nil {
		cm = DefaultColormap()
	}

	n := field.Size()
	maxIter := float64(field.MaxIter())
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			img.SetRGBA(x, y, cm.At(float64(field.At(y, x))/maxIter))
		}
	}

	if opts.Scale > 1 {
		scaled := image.NewRGBA(image.Rect(0, 0, n*opts.Scale, n*opts.Scale))
		draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = scaled
	}

	if !opts.Legend {
		return img
	}
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	return withLegend(img, cm, field.MaxIter(), title)
}

// WritePNG encodes the rendered field as PNG into w.
func WritePNG(w io.Writer, field *fractal.Field, opts Options) error {
	if err := png.Encode(w, Image(field, opts)); err != nil {
		return fmt.Errorf("error encoding PNG: %w", err)
	}
	return nil
}

// WriteFile writes the rendered field to a PNG file at path.
func WriteFile(path string, field *fractal.Field, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating image file: %w", err)
	}
	if err := WritePNG(f, field, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error closing image file: %w", err)
	}
	return nil
}
