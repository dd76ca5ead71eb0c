package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Mohammad-Afzal123/web-avatar/internal/assets"
	"github.com/Mohammad-Afzal123/web-avatar/internal/config"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/animation"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/audio"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/model"
	"github.com/Mohammad-Afzal123/web-avatar/internal/loader"
	"github.com/Mohammad-Afzal123/web-avatar/internal/playback"
)

// cmdSimulate loads a model and a voice clip in parallel, triggers playback at
// t=0 and steps the loop at fps against a headless audio output, printing the
// modulated influences of every frame.
func cmdSimulate(w io.Writer, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: avatartool simulate <model.glb> <audio> [fps]", errUsage)
	}
	fps, err := parseFPS(args, 2)
	if err != nil {
		return err
	}

	am := assets.NewManager(cfg.Assets.SearchPaths...)
	rate := beep.SampleRate(cfg.Audio.SampleRate)

	var (
		m     *model.Model
		clip  *animation.Clip
		voice *audio.Clip
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		m, clip, _, err = loader.Model(am, args[0], cfg.Playback.Animation)
		return err
	})
	g.Go(func() error {
		var err error
		voice, _, err = loader.Audio(am, args[1], rate)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	out := audio.NewManualOutput()
	player := audio.New(out, audio.Options{
		SampleRate: rate,
		Volume:     1,
		FFTSize:    cfg.Audio.FFTSize,
	})
	defer player.Close()
	player.Attach(voice)

	loop := playback.New(playback.Options{
		Params:          cfg.LipSync,
		SyncClipToAudio: cfg.Playback.SyncClipToAudio,
	})
	loop.OnModelLoaded(m, clip)
	loop.AttachAudio(player, voice.Duration())
	if err := loop.Trigger(); err != nil {
		return err
	}

	total := voice.Duration().Seconds()
	if a := loop.Action(); a != nil {
		total = max(total, float64(clip.Duration/a.TimeScale()))
	}
	frames := int(math.Ceil(total*fps)) + 1
	step := time.Duration(float64(time.Second) / fps)
	dt := float32(1 / fps)

	printSimHeader(w, m, clip, voice, loop, fps)

	for f := 0; f < frames; f++ {
		out.Advance(step)
		playing := player.Playing()
		var amp float32
		if playing {
			amp = player.Amplitude()
		}
		loop.Advance(dt, playing, amp)
		printSimFrame(w, f, float64(f+1)/fps, loop, playing, amp)

		if loop.State() == playback.Finished && !playing {
			break
		}
	}
	fmt.Fprintf(w, "# final state %s, clip time %.3f\n", loop.State(), loop.ClipTime())
	return nil
}

func printSimHeader(w io.Writer, m *model.Model, clip *animation.Clip, voice *audio.Clip, loop *playback.Loop, fps float64) {
	fmt.Fprintf(w, "# audio %s: %v\n", voice.Name, voice.Duration())
	if clip != nil {
		fmt.Fprintf(w, "# clip %s: %.3fs, %d bound tracks, time scale %.3f\n",
			clip.Name, clip.Duration, loop.Action().Bound(), loop.Action().TimeScale())
	} else {
		fmt.Fprintln(w, "# model has no animation clip")
	}
	names := make([]string, 0, len(m.MorphMeshes()))
	for _, mm := range m.MorphMeshes() {
		names = append(names, fmt.Sprintf("%s[%s]", mm.Name, strings.Join(mm.TargetNames, " ")))
	}
	fmt.Fprintf(w, "# %g fps, morph meshes: %s\n", fps, strings.Join(names, ", "))
	fmt.Fprintln(w, "# frame\ttime\tstate\taudio\tamplitude\tinfluences")
}

func printSimFrame(w io.Writer, frame int, t float64, loop *playback.Loop, playing bool, amp float32) {
	var sb strings.Builder
	for i, mm := range loop.Model().MorphMeshes() {
		if i > 0 {
			sb.WriteString(" | ")
		}
		for j, v := range mm.Influences {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%.4f", v)
		}
	}
	audioState := "stopped"
	if playing {
		audioState = "playing"
	}
	fmt.Fprintf(w, "%d\t%.3f\t%s\t%s\t%.1f\t%s\n", frame, t, loop.State(), audioState, amp, sb.String())
}
