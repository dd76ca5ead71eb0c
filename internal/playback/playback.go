// Package playback runs the per-frame loop that advances the morph clip,
// modulates mouth influences from audio loudness and renders.
package playback

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/animation"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/model"
	"github.com/Mohammad-Afzal123/web-avatar/internal/lipsync"
	"github.com/Mohammad-Afzal123/web-avatar/internal/logger"
)

// State is the playback state.
type State int

const (
	Idle State = iota
	Ready
	Playing
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Ready:
		return "ready"
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrNotReady is returned when triggering before the model has loaded.
	ErrNotReady = errors.New("model not loaded")
	// ErrNoAudio is returned when triggering with no audio attached.
	ErrNoAudio = errors.New("no audio attached")
)

// AudioSource is the audio side of playback.
type AudioSource interface {
	// Restart plays from position 0.
	Restart() error
	Playing() bool
	// Amplitude returns the current loudness estimate, >= 0.
	Amplitude() float32
}

// Renderer draws one frame.
type Renderer interface {
	Render()
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func()

// Render calls f.
func (f RenderFunc) Render() { f() }

// Options configures a Loop.
type Options struct {
	Params lipsync.Params
	// SyncClipToAudio stretches the clip so it ends with the audio.
	SyncClipToAudio bool
}

// Loop owns the playback state. It is driven from a single goroutine.
type Loop struct {
	opts Options

	state  State
	model  *model.Model
	clip   *animation.Clip
	action *animation.Action

	audio         AudioSource
	audioDuration time.Duration

	// Influence slices of every morph mesh, gathered once per model.
	influences [][]float32
}

// New creates a loop in the Idle state.
func New(opts Options) *Loop {
	return &Loop{opts: opts}
}

// State returns the current state.
func (l *Loop) State() State {
	return l.state
}

// Model returns the loaded model, or nil.
func (l *Loop) Model() *model.Model {
	return l.model
}

// Action returns the clip action, or nil when the model has no clip.
func (l *Loop) Action() *animation.Action {
	return l.action
}

// ClipTime returns the clip cursor in clip seconds.
func (l *Loop) ClipTime() float32 {
	if l.action == nil {
		return 0
	}
	return l.action.Time()
}

// HasAudio reports whether an audio source is attached.
func (l *Loop) HasAudio() bool {
	return l.audio != nil
}

// CanTrigger reports whether Trigger would succeed.
func (l *Loop) CanTrigger() bool {
	return l.state != Idle && l.audio != nil
}

// OnModelLoaded installs the model and its clip, which may be nil, and moves
// Idle to Ready. Loading a new model while playing returns to Ready.
func (l *Loop) OnModelLoaded(m *model.Model, clip *animation.Clip) {
	l.model = m
	l.clip = clip
	l.action = nil
	l.influences = l.influences[:0]
	for _, mm := range m.MorphMeshes() {
		l.influences = append(l.influences, mm.Influences)
	}
	if clip != nil {
		l.action = animation.NewAction(clip, m)
		logger.Debug("clip bound",
			zap.String("clip", clip.Name),
			zap.Float32("duration", clip.Duration),
			zap.Int("tracks", l.action.Bound()))
	}
	l.applyTimeScale()
	l.setState(Ready)
}

// AttachAudio installs src as the audio to play on Trigger, replacing any
// previous source. duration is used to fit the clip to the audio.
func (l *Loop) AttachAudio(src AudioSource, duration time.Duration) {
	l.audio = src
	l.audioDuration = duration
	l.applyTimeScale()
}

func (l *Loop) applyTimeScale() {
	if !l.opts.SyncClipToAudio || l.action == nil || l.clip == nil {
		return
	}
	audio := float32(l.audioDuration.Seconds())
	if audio <= 0 || l.clip.Duration <= 0 {
		return
	}
	scale := l.clip.Duration / audio
	l.action.SetEffectiveTimeScale(scale)
	logger.Debug("clip fitted to audio",
		zap.Float32("clip", l.clip.Duration),
		zap.Float32("audio", audio),
		zap.Float32("scale", scale))
}

// Trigger restarts playback: the clip cursor and the audio both go back to 0
// within this call and the loop enters Playing.
func (l *Loop) Trigger() error {
	if l.state == Idle {
		return ErrNotReady
	}
	if l.audio == nil {
		return ErrNoAudio
	}
	if err := l.audio.Restart(); err != nil {
		return fmt.Errorf("restart audio: %w", err)
	}
	if l.action != nil {
		l.action.Reset()
		l.action.Play()
	}
	l.setState(Playing)
	return nil
}

// Advance moves the clip cursor by dt seconds, writes the clip pose and then,
// while audio is playing, scales the active influences by amplitude.
func (l *Loop) Advance(dt float32, audioPlaying bool, amplitude float32) {
	if dt < 0 {
		dt = 0
	}
	if l.model == nil {
		return
	}

	// Every frame starts from the rest pose so meshes the clip does not
	// drive are never modulated twice.
	l.model.ResetInfluences()
	if l.action != nil && l.action.Active() {
		l.action.Update(dt)
	}

	if l.state == Playing {
		switch {
		case l.action != nil && l.action.Finished():
			l.setState(Finished)
		case l.action == nil && !audioPlaying:
			l.setState(Finished)
		}
	}

	l.opts.Params.Apply(l.influences, audioPlaying, amplitude)
}

// Step samples the audio source, advances by dt and renders.
func (l *Loop) Step(dt float32, r Renderer) {
	playing, amp := false, float32(0)
	if l.audio != nil && l.audio.Playing() {
		playing = true
		amp = l.audio.Amplitude()
	}
	l.Advance(dt, playing, amp)
	if r != nil {
		r.Render()
	}
}

func (l *Loop) setState(s State) {
	if l.state == s {
		return
	}
	logger.Debug("playback state", zap.Stringer("from", l.state), zap.Stringer("to", s))
	l.state = s
}
