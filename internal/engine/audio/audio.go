// Package audio decodes voice clips and plays them with a live loudness
// estimate for lip sync.
package audio

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
)

// DefaultSampleRate is the default output sample rate.
const DefaultSampleRate = beep.SampleRate(44100)

// ErrNoClip is returned when starting playback with nothing attached.
var ErrNoClip = errors.New("no audio clip attached")

// Options configures a Player.
type Options struct {
	SampleRate beep.SampleRate
	// BufferLatency is the speaker buffer length.
	BufferLatency time.Duration
	// Volume is the output volume in [0, 1].
	Volume  float64
	FFTSize int
}

// DefaultOptions returns options for a 44.1kHz output with a 2048 sample
// analyser.
func DefaultOptions() Options {
	return Options{
		SampleRate:    DefaultSampleRate,
		BufferLatency: time.Second / 30,
		Volume:        1.0,
		FFTSize:       DefaultFFTSize,
	}
}

// session is one run of a clip from position 0.
type session struct {
	stream beep.StreamSeeker
	ctrl   *beep.Ctrl
	volume *effects.Volume
	done   atomic.Bool
}

// Player plays one attached clip at a time. The output is opened lazily on
// the first Restart.
type Player struct {
	mu sync.RWMutex

	out  Output
	opts Options

	initialized bool
	clip        *Clip
	cur         *session
	masterVol   float64

	tap      *Tap
	analyser *Analyser
	scratch  []float64
}

// New creates a player writing to out.
func New(out Output, opts Options) *Player {
	if opts.SampleRate == 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.BufferLatency <= 0 {
		opts.BufferLatency = time.Second / 30
	}
	if opts.FFTSize <= 0 {
		opts.FFTSize = DefaultFFTSize
	}
	a := NewAnalyser(opts.FFTSize)
	return &Player{
		out:       out,
		opts:      opts,
		masterVol: clamp(opts.Volume, 0, 1),
		analyser:  a,
		tap:       NewTap(silence{}, a.Size()),
	}
}

// SampleRate returns the output sample rate clips should be decoded at.
func (p *Player) SampleRate() beep.SampleRate {
	return p.opts.SampleRate
}

// Init opens the output. It is a no-op when already open.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initLocked()
}

func (p *Player) initLocked() error {
	if p.initialized {
		return nil
	}
	rate := p.opts.SampleRate
	if err := p.out.Init(rate, rate.N(p.opts.BufferLatency)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	p.initialized = true
	return nil
}

// Close stops playback and releases the output.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	if p.initialized {
		p.out.Close()
	}
	p.initialized = false
}

// Attach replaces the current clip. Any running playback is stopped.
func (p *Player) Attach(clip *Clip) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.clip = clip
}

// Restart plays the attached clip from the beginning, opening the output on
// first use. A running playback is replaced.
func (p *Player) Restart() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.clip == nil {
		return ErrNoClip
	}
	if err := p.initLocked(); err != nil {
		return err
	}
	p.stopLocked()

	s := &session{stream: p.clip.Streamer()}
	p.tap = NewTap(s.stream, p.analyser.Size())
	s.ctrl = &beep.Ctrl{Streamer: p.tap}
	s.volume = &effects.Volume{Streamer: s.ctrl, Base: 2}
	applyVolume(s.volume, p.masterVol)
	p.analyser.Reset()
	p.cur = s

	// The callback runs on the output goroutine with its lock held, so it
	// must not take p.mu.
	p.out.Play(beep.Seq(s.volume, beep.Callback(func() {
		s.done.Store(true)
	})))
	return nil
}

// Stop halts playback.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.cur == nil {
		return
	}
	p.out.Lock()
	p.cur.ctrl.Paused = true
	p.out.Unlock()
	p.cur.done.Store(true)
	if p.initialized {
		p.out.Clear()
	}
	p.cur = nil
	p.tap.Reset()
	p.analyser.Reset()
}

// Playing reports whether a clip is currently being played.
func (p *Player) Playing() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cur != nil && !p.cur.done.Load()
}

// Position returns the playback position of the current run.
func (p *Player) Position() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cur == nil {
		return 0
	}
	p.out.Lock()
	pos := p.cur.stream.Position()
	p.out.Unlock()
	return p.clip.Format().SampleRate.D(pos)
}

// Amplitude returns the average byte frequency magnitude of the most recent
// samples, in [0, 255]. Call it once per frame from a single goroutine.
func (p *Player) Amplitude() float32 {
	p.mu.RLock()
	tap := p.tap
	p.mu.RUnlock()
	p.scratch = tap.Snapshot(p.scratch)
	return p.analyser.AverageFrequency(p.scratch)
}

// SetVolume sets the output volume (0.0 to 1.0).
func (p *Player) SetVolume(vol float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.masterVol = clamp(vol, 0, 1)
	if p.cur != nil {
		p.out.Lock()
		applyVolume(p.cur.volume, p.masterVol)
		p.out.Unlock()
	}
}

// Volume returns the output volume.
func (p *Player) Volume() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.masterVol
}

func applyVolume(v *effects.Volume, vol float64) {
	if vol <= 0 {
		v.Silent = true
		return
	}
	v.Silent = false
	// Base 2 volume: convert the dB figure into doublings.
	v.Volume = volumeToDb(vol) / (20 * math.Log10(2))
}

// volumeToDb converts a 0-1 volume to decibel scale.
func volumeToDb(vol float64) float64 {
	if vol <= 0 {
		return -100 // Effectively silent
	}
	// vol=1 -> 0dB, vol=0.5 -> -6dB, vol=0.25 -> -12dB
	return 20 * math.Log10(vol)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// silence is an endless stream of zeros, used as the tap source before
// anything plays.
type silence struct{}

func (silence) Stream(samples [][2]float64) (int, bool) {
	clear(samples)
	return len(samples), true
}

func (silence) Err() error { return nil }
