package viewer

import (
	"errors"

	"github.com/gopxl/beep/v2"
	"go.uber.org/zap"

	"github.com/Mohammad-Afzal123/web-avatar/internal/assets"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/animation"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/audio"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/model"
	"github.com/Mohammad-Afzal123/web-avatar/internal/loader"
	"github.com/Mohammad-Afzal123/web-avatar/internal/logger"
	"github.com/Mohammad-Afzal123/web-avatar/internal/playback"
)

// Readiness labels shown to the user.
const (
	LabelLoading = "Loading model..."
	LabelNoAudio = "Upload audio (MP3/WAV): press O or drop a file"
	LabelReady   = "Press SPACE to speak"
)

type modelResult struct {
	path  string
	model *model.Model
	clip  *animation.Clip
	err   error
}

type audioResult struct {
	path string
	clip *audio.Clip
	err  error
}

// SessionOptions configures a Session.
type SessionOptions struct {
	Assets    *assets.Manager
	Player    *audio.Player
	Playback  playback.Options
	Animation int
}

// Session owns the playback loop, the audio player and the pending
// asynchronous loads. Every method except the load goroutines runs on the
// frame loop.
type Session struct {
	assets    *assets.Manager
	player    *audio.Player
	loop      *playback.Loop
	animation int

	// Only the latest load per slot is kept; earlier results are dropped.
	modelCh chan modelResult
	audioCh chan audioResult
}

// NewSession creates a session with nothing loaded.
func NewSession(opts SessionOptions) *Session {
	if opts.Assets == nil {
		opts.Assets = assets.NewManager()
	}
	return &Session{
		assets:    opts.Assets,
		player:    opts.Player,
		loop:      playback.New(opts.Playback),
		animation: opts.Animation,
	}
}

// Loop returns the playback loop.
func (s *Session) Loop() *playback.Loop {
	return s.loop
}

// Player returns the audio player.
func (s *Session) Player() *audio.Player {
	return s.player
}

// LoadModel starts loading a model in the background.
func (s *Session) LoadModel(name string) {
	ch := make(chan modelResult, 1)
	s.modelCh = ch
	am, idx := s.assets, s.animation
	logger.Info("loading model", zap.String("name", name))
	go func() {
		m, clip, path, err := loader.Model(am, name, idx)
		ch <- modelResult{path: path, model: m, clip: clip, err: err}
	}()
}

// LoadAudio starts decoding an audio file in the background.
func (s *Session) LoadAudio(name string) {
	ch := make(chan audioResult, 1)
	s.audioCh = ch
	am, rate := s.assets, s.sampleRate()
	logger.Info("loading audio", zap.String("name", name))
	go func() {
		clip, path, err := loader.Audio(am, name, rate)
		ch <- audioResult{path: path, clip: clip, err: err}
	}()
}

// Open routes a user-chosen file to the model or audio slot by extension,
// re-reading it from disk. It reports false for files it does not handle.
func (s *Session) Open(path string) bool {
	if resolved, err := s.assets.Resolve(path); err == nil {
		s.assets.Forget(resolved)
	}
	switch {
	case loader.IsModelFile(path):
		s.LoadModel(path)
	case audio.Supported(path):
		s.LoadAudio(path)
	default:
		logger.Warn("ignoring unsupported file", zap.String("path", path))
		return false
	}
	return true
}

// Pending reports whether a load is still in flight.
func (s *Session) Pending() bool {
	return s.modelCh != nil || s.audioCh != nil
}

// Poll applies finished loads without blocking. It reports whether a new
// model was installed.
func (s *Session) Poll() bool {
	modelLoaded := false

	select {
	case res := <-s.modelCh:
		s.modelCh = nil
		if res.err != nil {
			logger.Error("model load failed", zap.String("path", res.path), zap.Error(res.err))
			break
		}
		fields := []zap.Field{
			zap.String("path", res.path),
			zap.Int("meshes", len(res.model.Meshes)),
			zap.Int("morph_meshes", len(res.model.MorphMeshes())),
		}
		if res.clip != nil {
			fields = append(fields, zap.String("clip", res.clip.Name), zap.Float32("duration", res.clip.Duration))
		}
		logger.Info("model loaded", fields...)
		if s.player != nil {
			s.player.Stop()
		}
		s.loop.OnModelLoaded(res.model, res.clip)
		modelLoaded = true
	default:
	}

	select {
	case res := <-s.audioCh:
		s.audioCh = nil
		if res.err != nil {
			logger.Error("audio decode failed", zap.String("path", res.path), zap.Error(res.err))
			break
		}
		if s.player == nil {
			logger.Warn("no audio output, dropping clip", zap.String("path", res.path))
			break
		}
		s.player.Attach(res.clip)
		s.loop.AttachAudio(s.player, res.clip.Duration())
		logger.Info("audio attached",
			zap.String("path", res.path),
			zap.Duration("duration", res.clip.Duration()))
	default:
	}

	return modelLoaded
}

// Trigger restarts clip and audio together. Rejections are logged and
// returned.
func (s *Session) Trigger() error {
	err := s.loop.Trigger()
	switch {
	case err == nil:
	case errors.Is(err, playback.ErrNotReady), errors.Is(err, playback.ErrNoAudio):
		logger.Debug("trigger ignored", zap.Error(err))
	default:
		logger.Error("trigger failed", zap.Error(err))
	}
	return err
}

// Step runs one frame of the playback loop.
func (s *Session) Step(dt float32, r playback.Renderer) {
	s.loop.Step(dt, r)
}

// Label returns the readiness text for the current state.
func (s *Session) Label() string {
	switch {
	case s.loop.State() == playback.Idle:
		return LabelLoading
	case !s.loop.HasAudio():
		return LabelNoAudio
	default:
		return LabelReady
	}
}

// Close stops audio. In-flight loads finish in the background and are
// dropped.
func (s *Session) Close() {
	if s.Pending() {
		logger.Debug("dropping in-flight loads")
	}
	s.modelCh = nil
	s.audioCh = nil
	if s.player != nil {
		s.player.Close()
	}
}

func (s *Session) sampleRate() beep.SampleRate {
	if s.player == nil {
		return audio.DefaultSampleRate
	}
	return s.player.SampleRate()
}
