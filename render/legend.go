package render

import (
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultTitle is drawn above the field when a legend is requested without
// a title.
const DefaultTitle = "Fractal Pattern Used for Music Generation"

const colorBarCaption = "Iteration count"

// Legend layout, in pixels.
const (
	legendPad    = 8
	titleHeight  = 24
	colorBarGap  = 12
	colorBarW    = 16
	tickLabelGap = 4
)

var legendFace = basicfont.Face7x13

// legend is the placement of every part of a framed image.
type legend struct {
	width, height int
	field         image.Rectangle
	bar           image.Rectangle
}

func layoutLegend(fieldSize int, title, maxLabel string) legend {
	titleW := font.MeasureString(legendFace, title).Ceil()
	labelW := font.MeasureString(legendFace, maxLabel).Ceil()
	captionW := font.MeasureString(legendFace, colorBarCaption).Ceil()

	content := fieldSize + colorBarGap + colorBarW + tickLabelGap + labelW
	width := 2*legendPad + max(content, titleW, captionW)
	height := legendPad + titleHeight + fieldSize + legendPad + legendFace.Height + legendPad

	top := legendPad + titleHeight
	barX := legendPad + fieldSize + colorBarGap
	return legend{
		width:  width,
		height: height,
		field:  image.Rect(legendPad, top, legendPad+fieldSize, top+fieldSize),
		bar:    image.Rect(barX, top, barX+colorBarW, top+fieldSize),
	}
}

// withLegend frames a rendered field with a title and a colour bar running
// from 0 at the bottom to maxIter at the top.
func withLegend(fieldImg *image.RGBA, cm *Colormap, maxIter int, title string) *image.RGBA {
	n := fieldImg.Bounds().Dx()
	maxLabel := strconv.Itoa(maxIter)
	l := layoutLegend(n, title, maxLabel)

	out := image.NewRGBA(image.Rect(0, 0, l.width, l.height))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, l.field, fieldImg, fieldImg.Bounds().Min, draw.Src)

	for y := 0; y < n; y++ {
		t := 1.0
		if n > 1 {
			t = float64(n-1-y) / float64(n-1)
		}
		c := cm.At(t)
		for x := l.bar.Min.X; x < l.bar.Max.X; x++ {
			out.SetRGBA(x, l.bar.Min.Y+y, c)
		}
	}

	ascent := legendFace.Ascent
	labelX := l.bar.Max.X + tickLabelGap
	drawText(out, title, (l.width-font.MeasureString(legendFace, title).Ceil())/2, legendPad+ascent)
	drawText(out, maxLabel, labelX, l.bar.Min.Y+ascent)
	drawText(out, "0", labelX, l.bar.Max.Y)
	captionX := l.width - legendPad - font.MeasureString(legendFace, colorBarCaption).Ceil()
	drawText(out, colorBarCaption, captionX, l.field.Max.Y+legendPad+ascent)
	return out
}

// drawText draws s in black with its baseline at y.
func drawText(dst draw.Image, s string, x, y int) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: legendFace,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
