package audio

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Analyser defaults, matching a browser AnalyserNode.
const (
	DefaultFFTSize     = 2048
	DefaultSmoothing   = 0.8
	DefaultMinDecibels = -100
	DefaultMaxDecibels = -30
)

// Analyser turns a window of time-domain samples into byte-scaled frequency
// magnitudes. Magnitudes are smoothed across calls, so an Analyser should
// see consecutive frames of one stream. It is not safe for concurrent use.
type Analyser struct {
	Smoothing   float64
	MinDecibels float64
	MaxDecibels float64

	size     int
	fft      *fourier.FFT
	window   []float64
	frame    []float64
	coeff    []complex128
	smoothed []float64
	bytes    []uint8
}

// NewAnalyser creates an analyser for size samples. size must be a power of
// two; other values are rounded up.
func NewAnalyser(size int) *Analyser {
	n := 32
	for n < size {
		n <<= 1
	}
	a := &Analyser{
		Smoothing:   DefaultSmoothing,
		MinDecibels: DefaultMinDecibels,
		MaxDecibels: DefaultMaxDecibels,
		size:        n,
		fft:         fourier.NewFFT(n),
		window:      blackman(n),
		frame:       make([]float64, n),
		coeff:       make([]complex128, n/2+1),
		smoothed:    make([]float64, n/2),
		bytes:       make([]uint8, n/2),
	}
	return a
}

// Size returns the number of time-domain samples per analysis.
func (a *Analyser) Size() int {
	return a.size
}

// Reset clears the smoothing history.
func (a *Analyser) Reset() {
	clear(a.smoothed)
}

// ByteFrequencyData analyses samples (the most recent Size values, zero
// padded at the front when shorter) and returns one byte per bin. The
// returned slice is reused by the next call.
func (a *Analyser) ByteFrequencyData(samples []float64) []uint8 {
	if len(samples) > a.size {
		samples = samples[len(samples)-a.size:]
	}
	pad := a.size - len(samples)
	clear(a.frame[:pad])
	for i, s := range samples {
		a.frame[pad+i] = s * a.window[pad+i]
	}

	a.coeff = a.fft.Coefficients(a.coeff, a.frame)

	scale := 1 / float64(a.size)
	span := a.MaxDecibels - a.MinDecibels
	for k := range a.smoothed {
		c := a.coeff[k]
		mag := math.Hypot(real(c), imag(c)) * scale
		a.smoothed[k] = a.Smoothing*a.smoothed[k] + (1-a.Smoothing)*mag

		db := 20 * math.Log10(a.smoothed[k])
		v := 255 * (db - a.MinDecibels) / span
		switch {
		case math.IsNaN(v) || v <= 0:
			a.bytes[k] = 0
		case v >= 255:
			a.bytes[k] = 255
		default:
			a.bytes[k] = uint8(v)
		}
	}
	return a.bytes
}

// AverageFrequency returns the mean of ByteFrequencyData over all bins, in
// [0, 255].
func (a *Analyser) AverageFrequency(samples []float64) float32 {
	data := a.ByteFrequencyData(samples)
	sum := 0
	for _, v := range data {
		sum += int(v)
	}
	return float32(sum) / float32(len(data))
}

func blackman(n int) []float64 {
	const (
		a0 = 0.42
		a1 = 0.5
		a2 = 0.08
	)
	w := make([]float64, n)
	for i := range w {
		x := float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(2*math.Pi*x) + a2*math.Cos(4*math.Pi*x)
	}
	return w
}

// Envelope streams the whole clip in steps of 1/fps seconds and returns the
// AverageFrequency seen after each step, as a frame loop running at fps
// would observe it.
func Envelope(clip *Clip, fps float64, fftSize int) []float32 {
	if fps <= 0 {
		fps = 30
	}
	a := NewAnalyser(fftSize)
	tap := NewTap(clip.Streamer(), a.Size())

	hop := int(float64(clip.Format().SampleRate) / fps)
	if hop < 1 {
		hop = 1
	}
	buf := make([][2]float64, hop)

	var (
		out     []float32
		scratch []float64
	)
	for {
		n, ok := tap.Stream(buf)
		if n > 0 {
			scratch = tap.Snapshot(scratch)
			out = append(out, a.AverageFrequency(scratch))
		}
		if !ok || n < hop {
			break
		}
	}
	return out
}
