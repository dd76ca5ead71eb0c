package ui2d

import (
	"image/color"
	"testing"
)

func TestColorNRGBA(t *testing.T) {
	tests := []struct {
		name string
		in   Color
		want color.NRGBA
	}{
		{"half", Color{0, 0, 0, 0.5}, color.NRGBA{0, 0, 0, 128}},
		{"active", ColorButtonActive, color.NRGBA{0x25, 0x63, 0xeb, 255}},
		{"clamped", Color{2, -1, 0.5, 1}, color.NRGBA{255, 0, 128, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.NRGBA(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRasterize(t *testing.T) {
	l := Label{Text: "Hi", Foreground: ColorText, Background: ColorButtonIdle, Padding: 3}
	img := l.Rasterize()
	if img == nil {
		t.Fatal("expected an image")
	}
	// 7x13 font: two glyphs plus padding on both sides.
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 2*7+6 || h != 13+6 {
		t.Errorf("size: got %dx%d", w, h)
	}
	if got := img.NRGBAAt(0, 0); got != ColorButtonIdle.NRGBA() {
		t.Errorf("corner should be background, got %v", got)
	}

	white := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y) == ColorText.NRGBA() {
				white++
			}
		}
	}
	if white == 0 {
		t.Error("expected glyph pixels")
	}
}

func TestRasterizeEmpty(t *testing.T) {
	if img := (Label{}).Rasterize(); img != nil {
		t.Error("empty label should not rasterize")
	}
}

func TestQuadVertices(t *testing.T) {
	v := quadVertices(800, 600, 200, 60, 40)
	if len(v) != 24 {
		t.Fatalf("expected 24 floats, got %d", len(v))
	}
	const eps = 1e-5
	check := func(name string, got, want float32) {
		t.Helper()
		if d := got - want; d > eps || d < -eps {
			t.Errorf("%s: got %f, want %f", name, got, want)
		}
	}
	// Top-left vertex.
	check("x0", v[0], -0.25)
	check("y1", v[1], (100.0/600)*2-1)
	check("u", v[2], 0)
	check("v", v[3], 0)
	// Bottom-right vertex.
	check("x1", v[8], 0.25)
	check("y0", v[9], (40.0/600)*2-1)
	check("u", v[10], 1)
	check("v", v[11], 1)
}
