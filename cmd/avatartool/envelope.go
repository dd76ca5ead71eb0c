package main

import (
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"

	"github.com/Mohammad-Afzal123/web-avatar/internal/assets"
	"github.com/Mohammad-Afzal123/web-avatar/internal/config"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/audio"
	"github.com/Mohammad-Afzal123/web-avatar/internal/loader"
)

// cmdEnvelope prints the amplitude a frame loop at fps would sample, with the
// gain the lip sync would apply to active influences.
func cmdEnvelope(w io.Writer, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: avatartool envelope <audio> [fps]", errUsage)
	}
	fps, err := parseFPS(args, 1)
	if err != nil {
		return err
	}

	am := assets.NewManager(cfg.Assets.SearchPaths...)
	clip, path, err := loader.Audio(am, args[0], beep.SampleRate(cfg.Audio.SampleRate))
	if err != nil {
		return err
	}

	env := audio.Envelope(clip, fps, cfg.Audio.FFTSize)

	fmt.Fprintf(w, "# %s: %v at %g fps, %d frames\n", path, clip.Duration(), fps, len(env))
	fmt.Fprintln(w, "# frame\ttime\tamplitude\tgain")

	var peak, sum float32
	for i, amp := range env {
		t := float64(i+1) / fps
		fmt.Fprintf(w, "%d\t%.3f\t%.1f\t%.3f\n", i, t, amp, cfg.LipSync.Gain(amp))
		peak = max(peak, amp)
		sum += amp
	}
	if len(env) > 0 {
		fmt.Fprintf(w, "# peak %.1f, mean %.1f\n", peak, sum/float32(len(env)))
	}
	return nil
}
