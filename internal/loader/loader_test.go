package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mohammad-Afzal123/web-avatar/internal/assets"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/audio"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/audio/audiotest"
	"github.com/Mohammad-Afzal123/web-avatar/pkg/gltf/gltftest"
)

func fixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "face.glb"), gltftest.Face(2).GLB(), 0644); err != nil {
		t.Fatal(err)
	}
	audiotest.WriteWAV(t, filepath.Join(dir, "voice.wav"),
		audiotest.Tone(audiotest.Format.SampleRate, 220, 0.8, time.Second))
	return dir
}

func TestIsModelFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"avatar.glb", true},
		{"scene.GLTF", true},
		{"voice.wav", false},
		{"glb", false},
	}
	for _, tt := range tests {
		if got := IsModelFile(tt.name); got != tt.want {
			t.Errorf("IsModelFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestModel(t *testing.T) {
	dir := fixtures(t)
	am := assets.NewManager(dir)

	// An out of range animation index falls back to the first clip.
	for _, idx := range []int{0, 5} {
		m, clip, path, err := Model(am, "face.glb", idx)
		if err != nil {
			t.Fatalf("index %d: %v", idx, err)
		}
		if path != filepath.Join(dir, "face.glb") {
			t.Errorf("path: got %q", path)
		}
		if len(m.MorphMeshes()) != 1 {
			t.Errorf("expected one morph mesh, got %d", len(m.MorphMeshes()))
		}
		if clip == nil || clip.Name != "Talk" || clip.Duration != 2 {
			t.Errorf("index %d: unexpected clip %+v", idx, clip)
		}
	}
}

func TestModelWithoutAnimation(t *testing.T) {
	dir := t.TempDir()
	b := gltftest.New()
	pos := b.AddVec3([][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	b.AddNode("Body", b.AddMesh("Body", pos, -1, nil, nil), nil)
	if err := os.WriteFile(filepath.Join(dir, "static.glb"), b.GLB(), 0644); err != nil {
		t.Fatal(err)
	}

	m, clip, _, err := Model(assets.NewManager(dir), "static.glb", 0)
	if err != nil {
		t.Fatal(err)
	}
	if clip != nil {
		t.Errorf("expected no clip, got %+v", clip)
	}
	if m.HasMorphTargets() {
		t.Error("static model should have no morph targets")
	}
}

func TestModelErrors(t *testing.T) {
	dir := fixtures(t)
	am := assets.NewManager(dir)

	if _, _, _, err := Model(am, "missing.glb", 0); !errors.Is(err, assets.ErrNotFound) {
		t.Errorf("missing file: got %v", err)
	}
	if _, _, _, err := Model(am, "voice.wav", 0); err == nil {
		t.Error("expected a parse error for a WAV file")
	}
}

func TestAudio(t *testing.T) {
	dir := fixtures(t)
	am := assets.NewManager(dir)

	clip, path, err := Audio(am, "voice.wav", 44100)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "voice.wav") {
		t.Errorf("path: got %q", path)
	}
	if d := clip.Duration(); d != time.Second {
		t.Errorf("duration: got %v, want 1s", d)
	}

	if _, _, err := Audio(am, "notes.txt", 44100); !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Errorf("unsupported extension: got %v", err)
	}
}
