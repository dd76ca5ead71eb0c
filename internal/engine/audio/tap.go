package audio

import (
	"sync"

	"github.com/gopxl/beep/v2"
)

// Tap passes a stream through unchanged while keeping the most recent mono
// samples in a ring. Stream runs on the speaker goroutine; Snapshot may be
// called from any goroutine.
type Tap struct {
	s beep.Streamer

	mu   sync.Mutex
	ring []float64
	pos  int
}

// NewTap wraps s, remembering the last size samples.
func NewTap(s beep.Streamer, size int) *Tap {
	return &Tap{s: s, ring: make([]float64, size)}
}

// Stream implements beep.Streamer.
func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.s.Stream(samples)
	if n == 0 || len(t.ring) == 0 {
		return n, ok
	}
	t.mu.Lock()
	for _, s := range samples[:n] {
		t.ring[t.pos] = (s[0] + s[1]) / 2
		t.pos++
		if t.pos == len(t.ring) {
			t.pos = 0
		}
	}
	t.mu.Unlock()
	return n, ok
}

// Err implements beep.Streamer.
func (t *Tap) Err() error {
	return t.s.Err()
}

// Snapshot copies the remembered samples, oldest first, into dst.
func (t *Tap) Snapshot(dst []float64) []float64 {
	if cap(dst) < len(t.ring) {
		dst = make([]float64, len(t.ring))
	}
	dst = dst[:len(t.ring)]
	t.mu.Lock()
	n := copy(dst, t.ring[t.pos:])
	copy(dst[n:], t.ring[:t.pos])
	t.mu.Unlock()
	return dst
}

// Reset forgets all remembered samples.
func (t *Tap) Reset() {
	t.mu.Lock()
	clear(t.ring)
	t.pos = 0
	t.mu.Unlock()
}
