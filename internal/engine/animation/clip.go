// Package animation extracts morph weight clips from glTF and plays them
// back with a play-once, clamp-on-finish policy.
package animation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Mohammad-Afzal123/web-avatar/pkg/gltf"
)

// ErrNoAnimations is returned when a document carries no animation.
var ErrNoAnimations = errors.New("document has no animations")

// WeightTrack is the keyframed morph weight series of one node.
type WeightTrack struct {
	Node          int
	Targets       int
	Interpolation string
	Times         []float32
	// Values holds Targets floats per keyframe, or 3*Targets for cubic
	// splines laid out as in-tangents, values, out-tangents.
	Values []float32
}

// Clip is an immutable animation clip. Only weights tracks are kept; the
// duration still spans every channel of the source animation.
type Clip struct {
	Name     string
	Duration float32
	Tracks   []WeightTrack
}

// ExtractClip reads animation index from doc. The number of targets of a
// weights track is derived from the output count per keyframe.
func ExtractClip(doc *gltf.Document, index int) (*Clip, error) {
	if len(doc.Animations) == 0 {
		return nil, ErrNoAnimations
	}
	if index < 0 || index >= len(doc.Animations) {
		return nil, fmt.Errorf("animation index %d out of range", index)
	}
	anim := &doc.Animations[index]

	clip := &Clip{Name: anim.Name}
	if clip.Name == "" {
		clip.Name = fmt.Sprintf("animation_%d", index)
	}

	for i := range anim.Channels {
		ch := &anim.Channels[i]
		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return nil, fmt.Errorf("animation %q channel %d: invalid sampler index %d", clip.Name, i, ch.Sampler)
		}
		sampler := &anim.Samplers[ch.Sampler]

		times, err := doc.ReadScalars(sampler.Input)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: reading times: %w", clip.Name, i, err)
		}
		if len(times) > 0 {
			clip.Duration = max(clip.Duration, times[len(times)-1])
		}

		if ch.Target.Path != gltf.PathWeights || ch.Target.Node == nil || len(times) == 0 {
			continue
		}
		node := *ch.Target.Node
		if node < 0 || node >= len(doc.Nodes) || doc.Nodes[node].Mesh == nil {
			return nil, fmt.Errorf("animation %q channel %d: weights target node %d has no mesh", clip.Name, i, node)
		}

		values, err := doc.ReadFloats(sampler.Output)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: reading weights: %w", clip.Name, i, err)
		}

		interp := sampler.Interp()
		perKey := len(times)
		if interp == gltf.InterpolationCubicSpline {
			perKey *= 3
		}
		if len(values)%perKey != 0 {
			return nil, fmt.Errorf("animation %q channel %d: %d weights do not divide into %d keyframes", clip.Name, i, len(values), len(times))
		}

		clip.Tracks = append(clip.Tracks, WeightTrack{
			Node:          node,
			Targets:       len(values) / perKey,
			Interpolation: interp,
			Times:         times,
			Values:        values,
		})
	}

	return clip, nil
}

// Sample writes the track's weights at time t into dst (len >= Targets).
// Times before the first or after the last key hold the edge value.
func (tr *WeightTrack) Sample(t float32, dst []float32) {
	n := tr.Targets
	if n == 0 || len(tr.Times) == 0 {
		return
	}
	last := len(tr.Times) - 1

	if t <= tr.Times[0] {
		tr.copyKey(0, dst)
		return
	}
	if t >= tr.Times[last] {
		tr.copyKey(last, dst)
		return
	}

	// First key strictly after t; the interval is [k0, k1).
	k1 := sort.Search(len(tr.Times), func(i int) bool { return tr.Times[i] > t })
	k0 := k1 - 1
	t0, t1 := tr.Times[k0], tr.Times[k1]
	span := t1 - t0
	u := float32(0)
	if span > 0 {
		u = (t - t0) / span
	}

	switch tr.Interpolation {
	case gltf.InterpolationStep:
		tr.copyKey(k0, dst)

	case gltf.InterpolationCubicSpline:
		u2 := u * u
		u3 := u2 * u
		h00 := 2*u3 - 3*u2 + 1
		h10 := u3 - 2*u2 + u
		h01 := -2*u3 + 3*u2
		h11 := u3 - u2
		for i := 0; i < n; i++ {
			p0 := tr.Values[k0*3*n+n+i]
			m0 := tr.Values[k0*3*n+2*n+i] * span
			p1 := tr.Values[k1*3*n+n+i]
			m1 := tr.Values[k1*3*n+i] * span
			dst[i] = h00*p0 + h10*m0 + h01*p1 + h11*m1
		}

	default:
		for i := 0; i < n; i++ {
			a := tr.Values[k0*n+i]
			b := tr.Values[k1*n+i]
			dst[i] = a + (b-a)*u
		}
	}
}

func (tr *WeightTrack) copyKey(k int, dst []float32) {
	n := tr.Targets
	off := k * n
	if tr.Interpolation == gltf.InterpolationCubicSpline {
		off = k*3*n + n
	}
	copy(dst[:n], tr.Values[off:off+n])
}
