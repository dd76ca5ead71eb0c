// Package renderer draws the avatar and its helpers with OpenGL.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/camera"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/model"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/shader"
	"github.com/Mohammad-Afzal123/web-avatar/internal/logger"
	"github.com/Mohammad-Afzal123/web-avatar/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int

	Background           [3]float32
	Color                [3]float32 // surface colour of every mesh
	AmbientIntensity     float32
	DirectionalIntensity float32
	LightPosition        [3]float32

	ShowAxes   bool
	AxesLength float32
}

// DefaultConfig returns the scene settings of the viewer.
func DefaultConfig() Config {
	return Config{
		Width:                1280,
		Height:               720,
		Background:           [3]float32{0x11 / 255.0, 0x11 / 255.0, 0x11 / 255.0},
		Color:                [3]float32{0.8, 0.8, 0.8},
		AmbientIntensity:     0.8,
		DirectionalIntensity: 1.0,
		LightPosition:        [3]float32{0, 5, 10},
		AxesLength:           2,
	}
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	lit   *shader.Program
	lines *shader.Program

	meshes    []*meshBuffers
	placement math.Mat4

	axesVAO uint32
	axesVBO uint32
}

// New creates a renderer.
// IMPORTANT: Must be called AFTER the OpenGL context is created.
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	r := &Renderer{config: cfg, placement: math.Identity()}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.MULTISAMPLE)
	bg := cfg.Background
	gl.ClearColor(bg[0], bg[1], bg[2], 1.0)

	var err error
	if r.lit, err = shader.New("lit", litVertexShader, litFragmentShader); err != nil {
		return nil, err
	}
	if r.lines, err = shader.New("lines", lineVertexShader, lineFragmentShader); err != nil {
		r.lit.Delete()
		return nil, err
	}
	r.createAxes()

	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

// Close releases every GL resource owned by the renderer.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	r.releaseModel()
	if r.axesVAO != 0 {
		gl.DeleteVertexArrays(1, &r.axesVAO)
		gl.DeleteBuffers(1, &r.axesVBO)
		r.axesVAO, r.axesVBO = 0, 0
	}
	if r.lit != nil {
		r.lit.Delete()
	}
	if r.lines != nil {
		r.lines.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the current viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// SetShowAxes toggles the axes helper.
func (r *Renderer) SetShowAxes(show bool) {
	r.config.ShowAxes = show
}

// SetModel uploads m and places it on the ground plane. A previous model is
// released. Passing nil only releases.
func (r *Renderer) SetModel(m *model.Model) {
	r.releaseModel()
	if m == nil {
		return
	}

	off := m.Bounds.GroundOffset()
	r.placement = math.Translate(off.X, off.Y, off.Z)

	for _, mm := range m.Meshes {
		for _, p := range mm.Primitives {
			r.meshes = append(r.meshes, newMeshBuffers(mm, p))
		}
	}
	logger.Debug("model uploaded",
		zap.Int("instances", len(m.Meshes)),
		zap.Int("draws", len(r.meshes)),
	)
}

// Draw renders one frame seen from cam.
func (r *Renderer) Draw(cam *camera.Camera) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()

	if len(r.meshes) > 0 {
		r.lit.Use()
		r.lit.SetMat4("uView", view)
		r.lit.SetMat4("uProjection", proj)
		r.lit.SetVec3("uColor", r.config.Color)
		r.lit.SetVec3("uLightDir", lightDirection(r.config.LightPosition))
		r.lit.SetFloat("uAmbient", r.config.AmbientIntensity)
		r.lit.SetFloat("uDirectional", r.config.DirectionalIntensity)

		for _, mb := range r.meshes {
			mb.sync()
			r.lit.SetMat4("uModel", r.placement.Mul(mb.instance.World))
			mb.draw()
		}
	}

	if r.config.ShowAxes {
		r.lines.Use()
		r.lines.SetMat4("uViewProjection", proj.Mul(view))
		gl.BindVertexArray(r.axesVAO)
		gl.DrawArrays(gl.LINES, 0, 6)
	}
	gl.BindVertexArray(0)
}

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&pixels[0]))
	return pixels, w, h
}

func (r *Renderer) releaseModel() {
	for _, mb := range r.meshes {
		mb.release()
	}
	r.meshes = nil
	r.placement = math.Identity()
}

func (r *Renderer) createAxes() {
	vertices := axesVertices(r.config.AxesLength)

	gl.GenVertexArrays(1, &r.axesVAO)
	gl.BindVertexArray(r.axesVAO)

	gl.GenBuffers(1, &r.axesVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.axesVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 6*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 6*4, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// axesVertices returns X, Y and Z lines from the origin coloured red, green
// and blue, as interleaved position/colour floats.
func axesVertices(length float32) []float32 {
	if length <= 0 {
		length = 2
	}
	return []float32{
		0, 0, 0, 1, 0, 0, length, 0, 0, 1, 0, 0,
		0, 0, 0, 0, 1, 0, 0, length, 0, 0, 1, 0,
		0, 0, 0, 0, 0, 1, 0, 0, length, 0, 0, 1,
	}
}

// lightDirection returns the unit vector pointing from the scene towards a
// directional light placed at pos.
func lightDirection(pos [3]float32) [3]float32 {
	d := math.V3(pos).Normalize()
	if d.Length() == 0 {
		return [3]float32{0, 0, 1}
	}
	return d.Array()
}
