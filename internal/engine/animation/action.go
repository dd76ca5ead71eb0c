package animation

import (
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/model"
)

type binding struct {
	track      *WeightTrack
	influences []float32
}

// Action plays a clip on a model once. When the cursor reaches the end it is
// clamped there and the action stops advancing, but the clamped pose keeps
// being applied so later writers start from the authored values each frame.
type Action struct {
	clip      *Clip
	bindings  []binding
	time      float32
	timeScale float32
	running   bool
	finished  bool
	applied   bool
}

// NewAction binds the clip's weight tracks to the model's mesh instances.
// Tracks whose node has no morph mesh, or whose target count does not
// match, are dropped.
func NewAction(clip *Clip, m *model.Model) *Action {
	a := &Action{clip: clip, timeScale: 1}
	for i := range clip.Tracks {
		tr := &clip.Tracks[i]
		mm := m.MeshForNode(tr.Node)
		if mm == nil || len(mm.Influences) != tr.Targets {
			continue
		}
		a.bindings = append(a.bindings, binding{track: tr, influences: mm.Influences})
	}
	return a
}

// Bound returns the number of tracks bound to a mesh.
func (a *Action) Bound() int {
	return len(a.bindings)
}

// Time returns the clip cursor in clip seconds.
func (a *Action) Time() float32 {
	return a.time
}

// Active reports whether the action writes its pose on Update, which holds
// from Play until Stop.
func (a *Action) Active() bool {
	return a.applied
}

// Finished reports whether the cursor has been clamped at the clip end.
func (a *Action) Finished() bool {
	return a.finished
}

// TimeScale returns the effective time scale.
func (a *Action) TimeScale() float32 {
	return a.timeScale
}

// SetEffectiveTimeScale sets how many clip seconds pass per second of dt.
// Non-positive scales are ignored.
func (a *Action) SetEffectiveTimeScale(scale float32) {
	if scale > 0 {
		a.timeScale = scale
	}
}

// Reset rewinds the cursor to zero and clears the finished flag.
func (a *Action) Reset() {
	a.time = 0
	a.finished = false
}

// Play starts advancing the cursor.
func (a *Action) Play() {
	a.running = true
	a.applied = true
}

// Stop halts the action and stops applying its pose.
func (a *Action) Stop() {
	a.running = false
	a.applied = false
}

// Update advances the cursor by dt seconds and writes the sampled weights
// into the bound influences.
func (a *Action) Update(dt float32) {
	if !a.applied {
		return
	}
	if a.running && dt > 0 {
		a.time += dt * a.timeScale
	}
	if a.running && a.time >= a.clip.Duration {
		a.time = a.clip.Duration
		a.running = false
		a.finished = true
	}
	for _, b := range a.bindings {
		b.track.Sample(a.time, b.influences)
	}
}
