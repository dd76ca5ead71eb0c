package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Output is the sink a Player streams into.
type Output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
	Close()
}

// Speaker returns the system audio device output.
func Speaker() Output {
	return speakerOutput{}
}

type speakerOutput struct{}

func (speakerOutput) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}
func (speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerOutput) Clear() { speaker.Clear() }
func (speakerOutput) Lock() { speaker.Lock() }
func (speakerOutput) Unlock() { speaker.Unlock() }
func (speakerOutput) Close() { speaker.Close() }

// ManualOutput is a headless output that only consumes samples when Advance
// is called. Used by the CLI simulation and tests.
type ManualOutput struct {
	mu    sync.Mutex
	rate  beep.SampleRate
	mixer beep.Mixer
	buf   [][2]float64
}

// NewManualOutput creates a headless output.
func NewManualOutput() *ManualOutput {
	return &ManualOutput{}
}

func (o *ManualOutput) Init(rate beep.SampleRate, _ int) error {
	o.mu.Lock()
	o.rate = rate
	o.mu.Unlock()
	return nil
}

func (o *ManualOutput) Play(s beep.Streamer) {
	o.mu.Lock()
	o.mixer.Add(s)
	o.mu.Unlock()
}

func (o *ManualOutput) Clear() {
	o.mu.Lock()
	o.mixer.Clear()
	o.mu.Unlock()
}

func (o *ManualOutput) Lock() { o.mu.Lock() }
func (o *ManualOutput) Unlock() { o.mu.Unlock() }
func (o *ManualOutput) Close() { o.Clear() }

// Advance pulls d worth of samples through every playing stream.
func (o *ManualOutput) Advance(d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.rate == 0 {
		return
	}
	n := o.rate.N(d)
	if cap(o.buf) < n {
		o.buf = make([][2]float64, n)
	}
	o.mixer.Stream(o.buf[:n])
}
