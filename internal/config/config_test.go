package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if cfg.Graphics.FOV != 40 || cfg.Graphics.Near != 0.1 || cfg.Graphics.Far != 1000 {
		t.Errorf("unexpected camera defaults %+v", cfg.Graphics)
	}
	if cfg.Graphics.LightPosition != [3]float32{0, 5, 10} {
		t.Errorf("unexpected light position %v", cfg.Graphics.LightPosition)
	}

	if cfg.Audio.Volume != 1.0 {
		t.Errorf("expected volume 1.0, got %f", cfg.Audio.Volume)
	}
	if cfg.Audio.FFTSize != 2048 {
		t.Errorf("expected fft size 2048, got %d", cfg.Audio.FFTSize)
	}

	if cfg.LipSync.Threshold != 0.01 || cfg.LipSync.Offset != 0.5 || cfg.LipSync.Divisor != 140 {
		t.Errorf("unexpected lipsync defaults %+v", cfg.LipSync)
	}
	if !cfg.Playback.SyncClipToAudio {
		t.Error("expected clip to audio sync by default")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  background: "#202830"
  fov: 35
  show_axes: true

audio:
  volume: 0.5
  fft_size: 1024

assets:
  model: "models/host.glb"
  search_paths: ["/opt/avatars"]

lipsync:
  offset: 0.4
  divisor: 120

playback:
  sync_clip_to_audio: false

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen || !cfg.Graphics.ShowAxes {
		t.Error("expected fullscreen and axes enabled")
	}
	if cfg.Graphics.FOV != 35 {
		t.Errorf("expected fov 35, got %f", cfg.Graphics.FOV)
	}
	if cfg.Graphics.Near != 0.1 {
		t.Errorf("unset near plane should keep default, got %f", cfg.Graphics.Near)
	}
	if cfg.Audio.Volume != 0.5 || cfg.Audio.FFTSize != 1024 {
		t.Errorf("unexpected audio %+v", cfg.Audio)
	}
	if cfg.Assets.Model != "models/host.glb" || len(cfg.Assets.SearchPaths) != 1 {
		t.Errorf("unexpected assets %+v", cfg.Assets)
	}
	if cfg.LipSync.Offset != 0.4 || cfg.LipSync.Divisor != 120 || cfg.LipSync.Threshold != 0.01 {
		t.Errorf("unexpected lipsync %+v", cfg.LipSync)
	}
	if cfg.Playback.SyncClipToAudio {
		t.Error("expected sync disabled")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestParseEnv(t *testing.T) {
	cfg := Default()
	environ := map[string]string{
		"AVATAR_GRAPHICS_WIDTH":      "800",
		"AVATAR_GRAPHICS_SHOW_AXES":  "true",
		"AVATAR_GRAPHICS_BACKGROUND": "#000000",
		"AVATAR_GRAPHICS_FULLSCREEN": "false",
		"AVATAR_AUDIO_VOLUME":        "0.25",
		"AVATAR_AUDIO_SAMPLE_RATE":   "48000",
		"AVATAR_ASSETS_MODEL":        "face.glb",
		"AVATAR_ASSETS_SEARCH_PATHS": "a,b,c",
		"AVATAR_LIPSYNC_DIVISOR":     "200",
		"AVATAR_LIPSYNC_THRESHOLD":   "0.05",
		"AVATAR_PLAYBACK_ANIMATION":  "2",
		"AVATAR_LOGGING_LEVEL":       "warn",
		"UNRELATED_GRAPHICS_HEIGHT":  "1",
	}
	environ["AVATAR_PLAYBACK_SYNC_CLIP_TO_AUDIO"] = "false"
	if err := parseEnv(cfg, environ); err != nil {
		t.Fatalf("parse env: %v", err)
	}

	if cfg.Graphics.Width != 800 || !cfg.Graphics.ShowAxes {
		t.Errorf("graphics not overridden: %+v", cfg.Graphics)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("unprefixed variable leaked into config: height %d", cfg.Graphics.Height)
	}
	if cfg.Audio.Volume != 0.25 || cfg.Audio.SampleRate != 48000 {
		t.Errorf("audio not overridden: %+v", cfg.Audio)
	}
	if cfg.Assets.Model != "face.glb" || strings.Join(cfg.Assets.SearchPaths, "|") != "a|b|c" {
		t.Errorf("assets not overridden: %+v", cfg.Assets)
	}
	if cfg.LipSync.Divisor != 200 || cfg.LipSync.Threshold != 0.05 || cfg.LipSync.Offset != 0.5 {
		t.Errorf("lipsync not overridden: %+v", cfg.LipSync)
	}
	if cfg.Playback.Animation != 2 || cfg.Playback.SyncClipToAudio {
		t.Errorf("playback not overridden: %+v", cfg.Playback)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected warn, got %s", cfg.Logging.Level)
	}
}

func TestParseEnvError(t *testing.T) {
	cfg := Default()
	err := parseEnv(cfg, map[string]string{"AVATAR_GRAPHICS_WIDTH": "wide"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }, "invalid size"},
		{"fov", func(c *Config) { c.Graphics.FOV = 180 }, "fov"},
		{"clip planes", func(c *Config) { c.Graphics.Far = 0.05 }, "clip planes"},
		{"background", func(c *Config) { c.Graphics.Background = "dark" }, "background"},
		{"screenshot format", func(c *Config) { c.Graphics.ScreenshotFormat = "gif" }, "screenshot format"},
		{"volume", func(c *Config) { c.Audio.Volume = 1.5 }, "volume"},
		{"fft size", func(c *Config) { c.Audio.FFTSize = 1000 }, "fft size"},
		{"divisor", func(c *Config) { c.LipSync.Divisor = 0 }, "divisor"},
		{"animation", func(c *Config) { c.Playback.Animation = -1 }, "animation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %v", tt.want, err)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    [3]float32
		wantErr bool
	}{
		{"#111111", [3]float32{17.0 / 255, 17.0 / 255, 17.0 / 255}, false},
		{"0xFF0000", [3]float32{1, 0, 0}, false},
		{"#00ff80", [3]float32{0, 1, 128.0 / 255}, false},
		{"111111", [3]float32{}, true},
		{"#12345", [3]float32{}, true},
		{"#gggggg", [3]float32{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Graphics.ShowAxes {
					t.Error("expected axes helper with debug flag")
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "asset flags",
			setup: func() {
				*flagModel = "face.glb"
				*flagAudio = "hello.mp3"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Assets.Model != "face.glb" || cfg.Assets.Audio != "hello.mp3" {
					t.Errorf("unexpected assets %+v", cfg.Assets)
				}
			},
			teardown: func() {
				*flagModel = ""
				*flagAudio = ""
			},
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
  fov: 50
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("AVATAR_GRAPHICS_HEIGHT", "1000")
	t.Setenv("AVATAR_GRAPHICS_WIDTH", "1700")

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// flag > env > file
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 1000 {
		t.Errorf("expected height 1000 from env, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.FOV != 50 {
		t.Errorf("expected fov 50 from file, got %f", cfg.Graphics.FOV)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("AVATAR_AUDIO_FFT_SIZE", "100")
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(t.TempDir())

	if _, err := Load(); err == nil {
		t.Error("expected validation error")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Graphics.Width = 1024
	cfg.LipSync.Divisor = 99

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Graphics.Width != 1024 || loaded.LipSync.Divisor != 99 {
		t.Errorf("saved values not restored: width=%d divisor=%f", loaded.Graphics.Width, loaded.LipSync.Divisor)
	}
}

func TestSave(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		orig := *flagConfig
		*flagConfig = path
		defer func() { *flagConfig = orig }()

		cfg := Default()
		cfg.Audio.Muted = true
		if err := cfg.Save(); err != nil {
			t.Fatalf("Save: %v", err)
		}
		loaded := Default()
		if err := loadFromFile(loaded, path); err != nil {
			t.Fatalf("reload: %v", err)
		}
		if !loaded.Audio.Muted {
			t.Error("muted flag not persisted")
		}
	})

	t.Run("config dir", func(t *testing.T) {
		if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
			t.Skip("config dir is not redirectable on this platform")
		}
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		orig := *flagConfig
		*flagConfig = ""
		defer func() { *flagConfig = orig }()

		cfg := Default()
		cfg.Graphics.ShowAxes = true
		if err := cfg.Save(); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if _, err := os.Stat(filepath.Join(ConfigDir(), "config.yaml")); err != nil {
			t.Errorf("expected config file in %s: %v", ConfigDir(), err)
		}
	})
}
