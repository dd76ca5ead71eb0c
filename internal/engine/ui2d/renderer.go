// Package ui2d draws the on-screen status label over the 3D scene.
package ui2d

import (
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/shader"
)

const (
	// Scale is the pixel magnification of the bitmap font.
	Scale = 2
	// BottomMargin is the gap between the label and the bottom edge, in pixels.
	BottomMargin = 40
	// Padding is the space around the text inside the panel, in font pixels.
	Padding = 6
)

const overlayVertexShader = `#version 410 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aUV;
out vec2 vUV;
void main() {
    vUV = aUV;
    gl_Position = vec4(aPos, 0.0, 1.0);
}
`

const overlayFragmentShader = `#version 410 core
in vec2 vUV;
out vec4 FragColor;
uniform sampler2D uTexture;
void main() {
    FragColor = texture(uTexture, vUV);
}
`

// Renderer draws a single textured label quad.
type Renderer struct {
	screenWidth  int
	screenHeight int

	program *shader.Program
	vao     uint32
	vbo     uint32
	texture uint32

	label      Label
	texWidth   int
	texHeight  int
	hasTexture bool
}

// New creates the overlay renderer. The GL context must be current.
func New(width, height int) (*Renderer, error) {
	program, err := shader.New("overlay", overlayVertexShader, overlayFragmentShader)
	if err != nil {
		return nil, err
	}
	r := &Renderer{screenWidth: width, screenHeight: height, program: program}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 6*4*4, nil, gl.DYNAMIC_DRAW)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 4*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(1)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.GenTextures(1, &r.texture)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return r, nil
}

// Resize updates the screen dimensions used for placement.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.screenWidth = width
	r.screenHeight = height
}

// SetLabel replaces the label. The texture is only rebuilt on change.
func (r *Renderer) SetLabel(l Label) {
	if l == r.label && (r.hasTexture || l.Text == "") {
		return
	}
	r.label = l
	img := l.Rasterize()
	if img == nil {
		r.hasTexture = false
		return
	}
	r.upload(img)
}

func (r *Renderer) upload(img *image.NRGBA) {
	b := img.Bounds()
	r.texWidth, r.texHeight = b.Dx(), b.Dy()

	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(r.texWidth), int32(r.texHeight), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	r.hasTexture = true
}

// Draw blends the label over the current frame.
func (r *Renderer) Draw() {
	if !r.hasTexture || r.screenWidth <= 0 || r.screenHeight <= 0 {
		return
	}
	vertices := quadVertices(r.screenWidth, r.screenHeight, r.texWidth*Scale, r.texHeight*Scale, BottomMargin)

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	r.program.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

// Close releases GL resources.
func (r *Renderer) Close() {
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		gl.DeleteBuffers(1, &r.vbo)
		r.vao, r.vbo = 0, 0
	}
	if r.texture != 0 {
		gl.DeleteTextures(1, &r.texture)
		r.texture = 0
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// quadVertices returns two triangles in NDC for a w x h pixel box centred
// horizontally, margin pixels above the bottom edge. Each vertex is x, y,
// u, v with v = 0 at the top row of the texture.
func quadVertices(screenW, screenH, w, h, margin int) []float32 {
	sw, sh := float32(screenW), float32(screenH)
	left := (sw - float32(w)) / 2
	bottom := float32(margin)

	x0 := left/sw*2 - 1
	x1 := (left+float32(w))/sw*2 - 1
	y0 := bottom/sh*2 - 1
	y1 := (bottom+float32(h))/sh*2 - 1

	return []float32{
		x0, y1, 0, 0,
		x0, y0, 0, 1,
		x1, y0, 1, 1,

		x0, y1, 0, 0,
		x1, y0, 1, 1,
		x1, y1, 1, 0,
	}
}
