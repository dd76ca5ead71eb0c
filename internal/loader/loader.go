// Package loader reads avatar models and voice clips through the asset
// manager.
package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"

	"github.com/Mohammad-Afzal123/web-avatar/internal/assets"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/animation"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/audio"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/model"
	"github.com/Mohammad-Afzal123/web-avatar/pkg/gltf"
)

// ModelExtensions lists the model file extensions the viewer accepts.
var ModelExtensions = []string{".glb", ".gltf"}

// IsModelFile reports whether name looks like a glTF model.
func IsModelFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range ModelExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Model reads, parses and builds a model. A model without animations
// loads with a nil clip.
func Model(am *assets.Manager, name string, animIndex int) (*model.Model, *animation.Clip, string, error) {
	data, path, err := am.Load(name)
	if err != nil {
		return nil, nil, "", err
	}
	doc, err := gltf.Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, nil, path, fmt.Errorf("parse %s: %w", path, err)
	}
	m, err := model.Build(doc)
	if err != nil {
		return nil, nil, path, fmt.Errorf("build %s: %w", path, err)
	}
	if len(doc.Animations) > 0 && animIndex >= len(doc.Animations) {
		animIndex = 0
	}
	clip, err := animation.ExtractClip(doc, animIndex)
	if err != nil && !errors.Is(err, animation.ErrNoAnimations) {
		return nil, nil, path, fmt.Errorf("animation of %s: %w", path, err)
	}
	return m, clip, path, nil
}

// Audio reads and decodes an audio file at the given output rate.
func Audio(am *assets.Manager, name string, rate beep.SampleRate) (*audio.Clip, string, error) {
	if !audio.Supported(name) {
		return nil, "", fmt.Errorf("%s: %w", name, audio.ErrUnsupportedFormat)
	}
	data, path, err := am.Load(name)
	if err != nil {
		return nil, "", err
	}
	clip, err := audio.Decode(data, path, rate)
	if err != nil {
		return nil, path, err
	}
	return clip, path, nil
}
