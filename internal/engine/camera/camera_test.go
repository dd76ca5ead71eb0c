package camera

import (
	gomath "math"
	"testing"

	"github.com/Mohammad-Afzal123/web-avatar/pkg/math"
)

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func TestFrame(t *testing.T) {
	c := New(40, 0.1, 1000)
	c.Frame(math.Vec3{X: 1, Y: 2, Z: 0.4})

	pos := c.Position()
	if !near(pos.X, 0) || !near(pos.Y, 1.2) || !near(pos.Z, 1.4) {
		t.Errorf("eye: got %+v, want (0, 1.2, 1.4)", pos)
	}
	if c.Target != (math.Vec3{Y: 1.2}) {
		t.Errorf("target: got %+v, want (0, 1.2, 0)", c.Target)
	}
}

func TestFrameFlatModel(t *testing.T) {
	tests := []struct {
		name string
		size math.Vec3
		want float32
	}{
		{"flat quad", math.Vec3{X: 2, Y: 2}, 3.5},
		{"point", math.Vec3{}, 3.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(40, 0.1, 1000)
			c.Frame(tt.size)
			if !near(c.Distance, tt.want) {
				t.Errorf("distance: got %f, want %f", c.Distance, tt.want)
			}
		})
	}
}

func TestViewMatrixMapsTargetOntoAxis(t *testing.T) {
	c := New(40, 0.1, 1000)
	c.Frame(math.Vec3{X: 1, Y: 2, Z: 1})

	p := c.ViewMatrix().TransformPoint(c.Target.Array())
	if !near(p[0], 0) || !near(p[1], 0) || !near(p[2], -3.5) {
		t.Errorf("target in view space: got %v, want (0, 0, -3.5)", p)
	}
}

func TestProjectionUsesDegrees(t *testing.T) {
	c := New(90, 0.1, 1000)
	c.SetViewport(200, 100)
	p := c.ProjectionMatrix()
	// f = 1/tan(45deg) = 1
	if !near(p[5], 1) || !near(p[0], 0.5) {
		t.Errorf("projection scale: got (%f, %f), want (0.5, 1)", p[0], p[5])
	}
}

func TestSetViewportIgnoresZero(t *testing.T) {
	c := New(40, 0.1, 1000)
	c.SetViewport(800, 600)
	c.SetViewport(0, 600)
	if !near(c.Aspect, 800.0/600.0) {
		t.Errorf("aspect: got %f", c.Aspect)
	}
}

func TestHandleDragClampsPitch(t *testing.T) {
	c := New(40, 0.1, 1000)
	c.HandleDrag(0, 10000)
	if c.Pitch != c.MaxPitch {
		t.Errorf("pitch: got %f, want %f", c.Pitch, c.MaxPitch)
	}
	c.HandleDrag(100, 0)
	if !near(c.Yaw, -0.5) {
		t.Errorf("yaw: got %f, want -0.5", c.Yaw)
	}
}

func TestHandleZoomClampsDistance(t *testing.T) {
	c := New(40, 0.1, 1000)
	c.Frame(math.Vec3{X: 1, Y: 1, Z: 1})
	for i := 0; i < 100; i++ {
		c.HandleZoom(1)
	}
	if c.Distance != c.MinDistance {
		t.Errorf("distance: got %f, want %f", c.Distance, c.MinDistance)
	}
}
