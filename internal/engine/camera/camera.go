// Package camera provides the orbit camera used to frame the avatar.
package camera

import (
	gomath "math"

	"github.com/Mohammad-Afzal123/web-avatar/pkg/math"
)

// Framing factors: the eye sits at face height, a few model depths away.
const (
	FaceHeight    = 0.6
	DepthDistance = 3.5
)

// Camera orbits around a target point.
type Camera struct {
	Target math.Vec3

	// Spherical coordinates around Target.
	Distance float32
	Pitch    float32 // radians
	Yaw      float32 // radians

	// Projection. FOV is the vertical field of view in degrees.
	FOV    float32
	Near   float32
	Far    float32
	Aspect float32

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// New creates a camera with the given projection parameters.
func New(fov, near, far float32) *Camera {
	return &Camera{
		Distance:        5,
		FOV:             fov,
		Near:            near,
		Far:             far,
		Aspect:          4.0 / 3.0,
		MinDistance:     0.05,
		MaxDistance:     500,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Frame points the camera at a model of the given size that stands on the
// ground plane, centred on X/Z. Flat models fall back to their largest
// extent so the eye never lands on the target.
func (c *Camera) Frame(size math.Vec3) {
	faceY := size.Y * FaceHeight
	depth := size.Z
	if depth <= 0 {
		depth = max(size.X, size.Y) * 0.5
	}
	if depth <= 0 {
		depth = 1
	}

	c.Target = math.Vec3{X: 0, Y: faceY, Z: 0}
	c.Distance = depth * DepthDistance
	c.Pitch = 0
	c.Yaw = 0
	c.MinDistance = c.Distance * 0.05
	c.MaxDistance = max(c.Distance*20, c.MaxDistance)
}

// Position returns the eye position in world space.
func (c *Camera) Position() math.Vec3 {
	pitch, yaw := float64(c.Pitch), float64(c.Yaw)
	return c.Target.Add(math.Vec3{
		X: c.Distance * float32(gomath.Cos(pitch)*gomath.Sin(yaw)),
		Y: c.Distance * float32(gomath.Sin(pitch)),
		Z: c.Distance * float32(gomath.Cos(pitch)*gomath.Cos(yaw)),
	})
}

// ViewMatrix returns the view matrix for this camera.
func (c *Camera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Target, math.Vec3{Y: 1})
}

// ProjectionMatrix returns the perspective projection for the current aspect.
func (c *Camera) ProjectionMatrix() math.Mat4 {
	return math.Perspective(c.FOV*gomath.Pi/180, c.Aspect, c.Near, c.Far)
}

// SetViewport updates the aspect ratio. Degenerate sizes are ignored.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// HandleDrag rotates the camera around the target from a mouse drag delta.
func (c *Camera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity
	c.Pitch = min(max(c.Pitch, c.MinPitch), c.MaxPitch)
}

// HandleZoom moves the camera along its view ray from a wheel delta.
func (c *Camera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = min(max(c.Distance, c.MinDistance), c.MaxDistance)
}
