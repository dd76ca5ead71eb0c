// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Mohammad-Afzal123/web-avatar/internal/lipsync"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics" envPrefix:"GRAPHICS_"`
	Audio    AudioConfig    `yaml:"audio" envPrefix:"AUDIO_"`
	Assets   AssetsConfig   `yaml:"assets" envPrefix:"ASSETS_"`
	LipSync  lipsync.Params `yaml:"lipsync" envPrefix:"LIPSYNC_"`
	Playback PlaybackConfig `yaml:"playback" envPrefix:"PLAYBACK_"`
	Logging  LoggingConfig  `yaml:"logging" envPrefix:"LOGGING_"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int    `yaml:"width" env:"WIDTH"`
	Height     int    `yaml:"height" env:"HEIGHT"`
	Fullscreen bool   `yaml:"fullscreen" env:"FULLSCREEN"`
	VSync      bool   `yaml:"vsync" env:"VSYNC"`
	FPSLimit   int    `yaml:"fps_limit" env:"FPS_LIMIT"`
	Background string `yaml:"background" env:"BACKGROUND"` // "#rrggbb"

	FOV  float32 `yaml:"fov" env:"FOV"` // vertical, degrees
	Near float32 `yaml:"near" env:"NEAR"`
	Far  float32 `yaml:"far" env:"FAR"`

	AmbientIntensity     float32    `yaml:"ambient_intensity" env:"AMBIENT_INTENSITY"`
	DirectionalIntensity float32    `yaml:"directional_intensity" env:"DIRECTIONAL_INTENSITY"`
	LightPosition        [3]float32 `yaml:"light_position"`

	ShowAxes         bool   `yaml:"show_axes" env:"SHOW_AXES"`
	ScreenshotDir    string `yaml:"screenshot_dir" env:"SCREENSHOT_DIR"`
	ScreenshotFormat string `yaml:"screenshot_format" env:"SCREENSHOT_FORMAT"` // png or bmp
}

// AudioConfig holds audio settings.
type AudioConfig struct {
	Volume     float64 `yaml:"volume" env:"VOLUME"`
	Muted      bool    `yaml:"muted" env:"MUTED"`
	SampleRate int     `yaml:"sample_rate" env:"SAMPLE_RATE"`
	BufferMS   int     `yaml:"buffer_ms" env:"BUFFER_MS"`
	FFTSize    int     `yaml:"fft_size" env:"FFT_SIZE"`
}

// AssetsConfig holds the initial model and audio, and where to look for them.
type AssetsConfig struct {
	Model       string   `yaml:"model" env:"MODEL"`
	Audio       string   `yaml:"audio" env:"AUDIO"`
	SearchPaths []string `yaml:"search_paths" env:"SEARCH_PATHS" envSeparator:","`
}

// PlaybackConfig holds clip playback settings.
type PlaybackConfig struct {
	// SyncClipToAudio stretches the clip to the audio duration.
	SyncClipToAudio bool `yaml:"sync_clip_to_audio" env:"SYNC_CLIP_TO_AUDIO"`
	// Animation selects which animation of the model is played.
	Animation int `yaml:"animation" env:"ANIMATION"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" env:"LEVEL"`
	LogFile string `yaml:"log_file" env:"FILE"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:                1280,
			Height:               720,
			Fullscreen:           false,
			VSync:                true,
			FPSLimit:             0,
			Background:           "#111111",
			FOV:                  40,
			Near:                 0.1,
			Far:                  1000,
			AmbientIntensity:     0.8,
			DirectionalIntensity: 1.0,
			LightPosition:        [3]float32{0, 5, 10},
			ShowAxes:             false,
			ScreenshotDir:        "screenshots",
			ScreenshotFormat:     "png",
		},
		Audio: AudioConfig{
			Volume:     1.0,
			Muted:      false,
			SampleRate: 44100,
			BufferMS:   33,
			FFTSize:    2048,
		},
		Assets: AssetsConfig{
			Model:       "avatar.glb",
			SearchPaths: []string{".", "assets"},
		},
		LipSync: lipsync.DefaultParams(),
		Playback: PlaybackConfig{
			SyncClipToAudio: true,
			Animation:       0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics: invalid size %dx%d", c.Graphics.Width, c.Graphics.Height))
	}
	if c.Graphics.FOV <= 0 || c.Graphics.FOV >= 180 {
		errs = append(errs, fmt.Errorf("graphics: fov %g out of range (0, 180)", c.Graphics.FOV))
	}
	if c.Graphics.Near <= 0 || c.Graphics.Far <= c.Graphics.Near {
		errs = append(errs, fmt.Errorf("graphics: invalid clip planes near=%g far=%g", c.Graphics.Near, c.Graphics.Far))
	}
	if _, err := ParseColor(c.Graphics.Background); err != nil {
		errs = append(errs, fmt.Errorf("graphics: background: %w", err))
	}
	if f := c.Graphics.ScreenshotFormat; f != "png" && f != "bmp" {
		errs = append(errs, fmt.Errorf("graphics: unknown screenshot format %q", f))
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio: volume %g out of range [0, 1]", c.Audio.Volume))
	}
	if c.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio: invalid sample rate %d", c.Audio.SampleRate))
	}
	if n := c.Audio.FFTSize; n < 32 || n&(n-1) != 0 {
		errs = append(errs, fmt.Errorf("audio: fft size %d is not a power of two >= 32", n))
	}
	if c.LipSync.Divisor <= 0 {
		errs = append(errs, fmt.Errorf("lipsync: divisor must be positive, got %g", c.LipSync.Divisor))
	}
	if c.Playback.Animation < 0 {
		errs = append(errs, fmt.Errorf("playback: negative animation index %d", c.Playback.Animation))
	}
	return errors.Join(errs...)
}

// ParseColor parses "#rrggbb" or "0xrrggbb" into RGB floats in [0, 1].
func ParseColor(s string) ([3]float32, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		hex, ok = strings.CutPrefix(strings.ToLower(s), "0x")
	}
	if !ok || len(hex) != 6 {
		return [3]float32{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return [3]float32{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return [3]float32{
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}
