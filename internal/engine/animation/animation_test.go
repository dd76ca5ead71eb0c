package animation

import (
	"errors"
	"testing"

	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/model"
	"github.com/Mohammad-Afzal123/web-avatar/pkg/gltf"
	"github.com/Mohammad-Afzal123/web-avatar/pkg/gltf/gltftest"
)

func approx(a, b float32) bool {
	d := a - b
	return d < 1e-5 && d > -1e-5
}

func loadFace(t *testing.T, duration float32) (*Clip, *model.Model) {
	t.Helper()
	doc, err := gltf.Parse(gltftest.Face(duration).GLB(), "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	clip, err := ExtractClip(doc, 0)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	m, err := model.Build(doc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return clip, m
}

func TestExtractClip(t *testing.T) {
	clip, _ := loadFace(t, 2)

	if clip.Name != "Talk" {
		t.Errorf("expected name Talk, got %q", clip.Name)
	}
	if clip.Duration != 2 {
		t.Errorf("expected duration 2, got %f", clip.Duration)
	}
	if len(clip.Tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(clip.Tracks))
	}
	tr := clip.Tracks[0]
	if tr.Node != 1 || tr.Targets != 2 {
		t.Errorf("unexpected track node=%d targets=%d", tr.Node, tr.Targets)
	}
}

func TestExtractClip_NoAnimations(t *testing.T) {
	b := gltftest.New()
	b.AddNode("Empty", -1, nil)
	doc, err := gltf.Parse(b.GLB(), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ExtractClip(doc, 0); !errors.Is(err, ErrNoAnimations) {
		t.Errorf("expected ErrNoAnimations, got %v", err)
	}
}

func TestExtractClip_TargetWithoutMesh(t *testing.T) {
	b := gltftest.New()
	node := b.AddNode("Bone", -1, nil)
	b.AddWeightsAnimation("Bad", gltf.InterpolationLinear, []float32{0, 1}, map[int][]float32{node: {0, 1}})
	doc, err := gltf.Parse(b.GLB(), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ExtractClip(doc, 0); err == nil {
		t.Error("expected error for weights channel on a node without mesh")
	}
}

func TestWeightTrack_Sample(t *testing.T) {
	tests := []struct {
		name   string
		interp string
		values []float32
		t      float32
		want   [2]float32
	}{
		{"before start", gltf.InterpolationLinear, []float32{0, 0, 0.8, 0.2, 0, 0}, -1, [2]float32{0, 0}},
		{"linear midpoint", gltf.InterpolationLinear, []float32{0, 0, 0.8, 0.2, 0, 0}, 0.5, [2]float32{0.4, 0.1}},
		{"linear on key", gltf.InterpolationLinear, []float32{0, 0, 0.8, 0.2, 0, 0}, 1, [2]float32{0.8, 0.2}},
		{"linear falling", gltf.InterpolationLinear, []float32{0, 0, 0.8, 0.2, 0, 0}, 1.5, [2]float32{0.4, 0.1}},
		{"after end", gltf.InterpolationLinear, []float32{0, 0, 0.8, 0.2, 0.3, 0.3}, 5, [2]float32{0.3, 0.3}},
		{"step holds previous key", gltf.InterpolationStep, []float32{0, 0, 0.8, 0.2, 0, 0}, 0.9, [2]float32{0, 0}},
		{"step on key", gltf.InterpolationStep, []float32{0, 0, 0.8, 0.2, 0, 0}, 1.2, [2]float32{0.8, 0.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := WeightTrack{
				Targets:       2,
				Interpolation: tt.interp,
				Times:         []float32{0, 1, 2},
				Values:        tt.values,
			}
			var dst [2]float32
			tr.Sample(tt.t, dst[:])
			if !approx(dst[0], tt.want[0]) || !approx(dst[1], tt.want[1]) {
				t.Errorf("got %v, want %v", dst, tt.want)
			}
		})
	}
}

func TestWeightTrack_SampleCubicSpline(t *testing.T) {
	// Zero tangents make the Hermite curve a smoothstep between the keys.
	tr := WeightTrack{
		Targets:       1,
		Interpolation: gltf.InterpolationCubicSpline,
		Times:         []float32{0, 1},
		Values: []float32{
			0, 0, 0, // in, value, out at t=0
			0, 1, 0, // in, value, out at t=1
		},
	}
	dst := make([]float32, 1)

	tr.Sample(0.5, dst)
	if !approx(dst[0], 0.5) {
		t.Errorf("midpoint: got %f, want 0.5", dst[0])
	}
	tr.Sample(0.25, dst)
	if !approx(dst[0], 0.15625) {
		t.Errorf("quarter: got %f, want 0.15625", dst[0])
	}
	tr.Sample(1, dst)
	if dst[0] != 1 {
		t.Errorf("end: got %f, want 1", dst[0])
	}
}

func TestAction_NothingAppliedBeforePlay(t *testing.T) {
	clip, m := loadFace(t, 2)
	a := NewAction(clip, m)
	if a.Bound() != 1 {
		t.Fatalf("expected 1 bound track, got %d", a.Bound())
	}

	mouth := m.MeshForNode(1)
	mouth.Influences[0] = 0.7
	a.Update(1)
	if mouth.Influences[0] != 0.7 || a.Time() != 0 {
		t.Errorf("idle action should not touch influences or time")
	}
}

func TestAction_PlaysOnceAndClamps(t *testing.T) {
	clip, m := loadFace(t, 2)
	a := NewAction(clip, m)
	mouth := m.MeshForNode(1)

	a.Play()
	a.Update(1)
	if a.Time() != 1 || !approx(mouth.Influences[0], 0.8) {
		t.Errorf("at t=1: time=%f jawOpen=%f", a.Time(), mouth.Influences[0])
	}
	if a.Finished() {
		t.Error("should not be finished at t=1")
	}

	a.Update(5)
	if a.Time() != clip.Duration {
		t.Errorf("cursor should clamp at %f, got %f", clip.Duration, a.Time())
	}
	if !a.Finished() || a.running {
		t.Error("expected finished and stopped")
	}

	for i := 0; i < 3; i++ {
		mouth.Influences[0] = 0.42
		a.Update(0.5)
		if a.Time() != clip.Duration {
			t.Fatalf("cursor moved past duration: %f", a.Time())
		}
		if mouth.Influences[0] != 0 {
			t.Fatalf("clamped pose should be re-applied, got %f", mouth.Influences[0])
		}
	}
}

func TestAction_ZeroDt(t *testing.T) {
	clip, m := loadFace(t, 2)
	a := NewAction(clip, m)
	a.Play()
	a.Update(0.5)
	before := a.Time()
	a.Update(0)
	if a.Time() != before {
		t.Errorf("dt=0 moved the cursor from %f to %f", before, a.Time())
	}
}

func TestAction_TimeScale(t *testing.T) {
	clip, m := loadFace(t, 2)
	a := NewAction(clip, m)

	a.SetEffectiveTimeScale(0)
	if a.TimeScale() != 1 {
		t.Errorf("non-positive scale should be ignored, got %f", a.TimeScale())
	}
	a.SetEffectiveTimeScale(0.5)
	a.Play()
	a.Update(1)
	if a.Time() != 0.5 {
		t.Errorf("expected cursor 0.5 at scale 0.5, got %f", a.Time())
	}
}

func TestAction_ResetRestarts(t *testing.T) {
	clip, m := loadFace(t, 2)
	a := NewAction(clip, m)
	a.Play()
	a.Update(10)
	if !a.Finished() {
		t.Fatal("expected finished")
	}

	a.Reset()
	a.Play()
	if a.Time() != 0 || a.Finished() || !a.running {
		t.Errorf("reset: time=%f finished=%v running=%v", a.Time(), a.Finished(), a.running)
	}
}
