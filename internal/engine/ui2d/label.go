package ui2d

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Label is the content of the overlay box.
type Label struct {
	Text       string
	Foreground Color
	Background Color
	Padding    int
}

// Rasterize renders the label with the 7x13 bitmap font into an image whose
// top row is row 0. An empty text yields nil.
func (l Label) Rasterize() *image.NRGBA {
	if l.Text == "" {
		return nil
	}
	face := basicfont.Face7x13
	metrics := face.Metrics()
	pad := max(l.Padding, 0)

	textW := font.MeasureString(face, l.Text).Ceil()
	textH := metrics.Height.Ceil()
	img := image.NewNRGBA(image.Rect(0, 0, textW+2*pad, textH+2*pad))

	draw.Draw(img, img.Bounds(), image.NewUniform(l.Background.NRGBA()), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(l.Foreground.NRGBA()),
		Face: face,
		Dot:  fixed.P(pad, pad+metrics.Ascent.Ceil()),
	}
	d.DrawString(l.Text)
	return img
}
