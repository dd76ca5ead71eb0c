// Package viewer implements the interactive avatar viewer: window, frame
// loop, file picking and the trigger.
package viewer

import (
	"errors"
	"fmt"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Mohammad-Afzal123/web-avatar/internal/assets"
	"github.com/Mohammad-Afzal123/web-avatar/internal/config"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/audio"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/camera"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/debug"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/input"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/renderer"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/ui2d"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/window"
	"github.com/Mohammad-Afzal123/web-avatar/internal/logger"
	"github.com/Mohammad-Afzal123/web-avatar/internal/playback"
)

// Title is the window title prefix.
const Title = "Web Avatar"

const rightButtonMask = uint32(1) << (sdl.BUTTON_RIGHT - 1)

// Viewer is the interactive application.
type Viewer struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	overlay  *ui2d.Renderer
	input    *input.Input
	camera   *camera.Camera
	shots    *debug.ScreenshotCapture

	assets  *assets.Manager
	session *Session
	draw    playback.RenderFunc

	// Paths chosen in the native dialog, applied on the frame loop.
	picked   chan string
	label    string
	wantShot bool
}

// New creates the window, GL resources and audio player. Startup assets
// named in cfg begin loading immediately.
func New(cfg *config.Config) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
	)

	bg, err := config.ParseColor(cfg.Graphics.Background)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}

	v := &Viewer{
		cfg:    cfg,
		input:  input.New(),
		picked: make(chan string, 4),
	}

	// Window first: it creates the OpenGL context the renderer needs.
	v.window, err = window.New(window.Config{
		Title:      Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		Samples:    4,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	rcfg := renderer.DefaultConfig()
	rcfg.Width, rcfg.Height = v.window.GetDrawableSize()
	rcfg.Background = bg
	rcfg.AmbientIntensity = cfg.Graphics.AmbientIntensity
	rcfg.DirectionalIntensity = cfg.Graphics.DirectionalIntensity
	rcfg.LightPosition = cfg.Graphics.LightPosition
	rcfg.ShowAxes = cfg.Graphics.ShowAxes
	v.renderer, err = renderer.New(rcfg)
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.overlay, err = ui2d.New(rcfg.Width, rcfg.Height)
	if err != nil {
		v.renderer.Close()
		v.window.Close()
		return nil, fmt.Errorf("failed to create overlay: %w", err)
	}

	v.camera = camera.New(cfg.Graphics.FOV, cfg.Graphics.Near, cfg.Graphics.Far)
	v.camera.SetViewport(rcfg.Width, rcfg.Height)
	v.shots = debug.NewScreenshotCapture(cfg.Graphics.ScreenshotDir, "avatar", cfg.Graphics.ScreenshotFormat)
	v.draw = func() {
		v.renderer.Draw(v.camera)
		v.overlay.Draw()
	}

	v.assets = assets.NewManager(cfg.Assets.SearchPaths...)
	logger.Debug("asset search paths", zap.Strings("paths", v.assets.SearchPaths()))
	v.session = NewSession(SessionOptions{
		Assets:    v.assets,
		Player:    audio.New(audio.Speaker(), PlayerOptions(cfg.Audio)),
		Playback:  playback.Options{Params: cfg.LipSync, SyncClipToAudio: cfg.Playback.SyncClipToAudio},
		Animation: cfg.Playback.Animation,
	})

	if cfg.Assets.Model != "" {
		v.session.LoadModel(cfg.Assets.Model)
	}
	if cfg.Assets.Audio != "" {
		v.session.LoadAudio(cfg.Assets.Audio)
	}

	logger.Info("viewer initialized")
	return v, nil
}

// PlayerOptions converts the audio settings into player options.
func PlayerOptions(cfg config.AudioConfig) audio.Options {
	opts := audio.DefaultOptions()
	opts.SampleRate = beep.SampleRate(cfg.SampleRate)
	if cfg.BufferMS > 0 {
		opts.BufferLatency = time.Duration(cfg.BufferMS) * time.Millisecond
	}
	opts.Volume = Volume(cfg)
	opts.FFTSize = cfg.FFTSize
	return opts
}

// Volume returns the output volume for cfg: zero while muted.
func Volume(cfg config.AudioConfig) float64 {
	if cfg.Muted {
		return 0
	}
	return cfg.Volume
}

// Run runs the frame loop until the window is closed or ESC is pressed.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := lastTime

	var frameBudget time.Duration
	if v.cfg.Graphics.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(v.cfg.Graphics.FPSLimit)
	}

	logger.Info("starting frame loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()
		v.drainPicked()

		if v.session.Poll() {
			m := v.session.Loop().Model()
			v.renderer.SetModel(m)
			if !m.Bounds.Empty() {
				v.camera.Frame(m.Bounds.Size())
			}
		}
		v.updateTitle()

		v.session.Step(float32(dt), v.draw)
		if v.wantShot {
			v.wantShot = false
			v.screenshot()
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount), zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)))
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameBudget > 0 {
			if spent := time.Since(now); spent < frameBudget {
				time.Sleep(frameBudget - spent)
			}
		}
	}

	return nil
}

// Close stops audio and releases GL and window resources.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.session != nil {
		v.session.Close()
	}
	if v.assets != nil {
		v.assets.Close()
	}
	if v.overlay != nil {
		v.overlay.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}

func (v *Viewer) handleEvents() {
	for _, ev := range v.input.Events() {
		switch ev.Type {
		case input.EventWindowResize:
			w, h := v.window.GetDrawableSize()
			v.renderer.Resize(w, h)
			v.overlay.Resize(w, h)
			v.camera.SetViewport(w, h)

		case input.EventKeyDown:
			switch ev.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_SPACE:
				v.trigger()
			case sdl.SCANCODE_O:
				v.openDialog("Select audio", "Audio files", audioFilter())
			case sdl.SCANCODE_M:
				v.openDialog("Select model", "glTF models", []string{"glb", "gltf"})
			case sdl.SCANCODE_N:
				v.toggleMute()
			case sdl.SCANCODE_F5:
				v.saveSettings()
			case sdl.SCANCODE_F1:
				v.cfg.Graphics.ShowAxes = !v.cfg.Graphics.ShowAxes
				v.renderer.SetShowAxes(v.cfg.Graphics.ShowAxes)
			case sdl.SCANCODE_F12:
				v.wantShot = true
			}

		case input.EventMouseDown:
			if ev.Button == sdl.BUTTON_LEFT {
				v.trigger()
			}

		case input.EventMouseMove:
			if ev.Buttons&rightButtonMask != 0 {
				v.camera.HandleDrag(float32(ev.RelX), float32(ev.RelY))
			}

		case input.EventMouseWheel:
			v.camera.HandleZoom(float32(ev.Wheel))

		case input.EventDropFile:
			v.session.Open(ev.Path)
		}
	}
}

// trigger is ignored until a model and audio are loaded.
func (v *Viewer) trigger() {
	if !v.session.Loop().CanTrigger() {
		return
	}
	_ = v.session.Trigger()
}

func (v *Viewer) toggleMute() {
	v.cfg.Audio.Muted = !v.cfg.Audio.Muted
	v.session.Player().SetVolume(Volume(v.cfg.Audio))
	logger.Info("audio mute toggled", zap.Bool("muted", v.cfg.Audio.Muted))
}

// saveSettings persists the current settings, including toggles made with
// F1 and N.
func (v *Viewer) saveSettings() {
	if err := v.cfg.Save(); err != nil {
		logger.Error("failed to save settings", zap.Error(err))
		return
	}
	logger.Info("settings saved")
}

// openDialog shows a native file dialog without blocking the frame loop.
// The selection is queued and applied by drainPicked.
func (v *Viewer) openDialog(title, filterName string, extensions []string) {
	picked := v.picked
	go func() {
		filename, err := dialog.File().
			Filter(filterName, extensions...).
			Title(title).
			Load()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				logger.Error("file dialog failed", zap.Error(err))
			}
			return
		}
		select {
		case picked <- filename:
		default:
			logger.Warn("dropping file selection, queue full", zap.String("path", filename))
		}
	}()
}

func (v *Viewer) drainPicked() {
	for {
		select {
		case path := <-v.picked:
			v.session.Open(path)
		default:
			return
		}
	}
}

func (v *Viewer) updateTitle() {
	label := v.session.Label()
	if label == v.label {
		return
	}
	v.label = label
	v.window.SetTitle(Title + " - " + label)
	v.overlay.SetLabel(OverlayLabel(label))
}

// OverlayLabel styles a status text: dark while loading, grey while audio
// is missing and blue once the trigger is armed.
func OverlayLabel(text string) ui2d.Label {
	bg := ui2d.ColorPanelBg
	switch text {
	case LabelNoAudio:
		bg = ui2d.ColorButtonIdle
	case LabelReady:
		bg = ui2d.ColorButtonActive
	}
	return ui2d.Label{
		Text:       text,
		Foreground: ui2d.ColorText,
		Background: bg,
		Padding:    ui2d.Padding,
	}
}

// screenshot captures the back buffer; call it after drawing and before the swap.
func (v *Viewer) screenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

func audioFilter() []string {
	exts := make([]string, len(audio.Extensions))
	for i, e := range audio.Extensions {
		exts[i] = e[1:]
	}
	return exts
}
