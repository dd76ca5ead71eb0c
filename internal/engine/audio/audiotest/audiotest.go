// Package audiotest builds audio fixtures for tests.
package audiotest

import (
	"math"
	"os"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// Format is 16-bit stereo at 44.1kHz.
var Format = beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}

// Tone returns d of a sine at freq Hz and peak amp.
func Tone(rate beep.SampleRate, freq, amp float64, d time.Duration) beep.Streamer {
	i := 0
	return beep.Take(rate.N(d), beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for j := range samples {
			v := amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
			samples[j] = [2]float64{v, v}
			i++
		}
		return len(samples), true
	}))
}

// WriteWAV encodes s to path as a WAV file in Format.
func WriteWAV(t testing.TB, path string, s beep.Streamer) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := wav.Encode(f, s, Format); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
}
