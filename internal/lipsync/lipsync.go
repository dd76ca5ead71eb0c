// Package lipsync scales authored mouth influences by the loudness of the
// playing audio.
package lipsync

// Default modulation constants. The divisor is an empirical scale for the
// analyser's 0-255 average magnitude.
const (
	DefaultThreshold = 0.01
	DefaultOffset    = 0.5
	DefaultDivisor   = 140
)

// Params controls the amplitude to influence mapping.
type Params struct {
	// Threshold is the influence value at or below which a target is
	// considered silent and left untouched.
	Threshold float32 `yaml:"threshold" env:"THRESHOLD"`
	// Offset is added to the normalized amplitude to form the gain.
	Offset float32 `yaml:"offset" env:"OFFSET"`
	// Divisor normalizes the raw amplitude.
	Divisor float32 `yaml:"divisor" env:"DIVISOR"`
}

// DefaultParams returns the stock constants.
func DefaultParams() Params {
	return Params{
		Threshold: DefaultThreshold,
		Offset:    DefaultOffset,
		Divisor:   DefaultDivisor,
	}
}

// Gain returns the multiplier applied to active influences for amplitude.
// A non-positive divisor falls back to the default.
func (p Params) Gain(amplitude float32) float32 {
	div := p.Divisor
	if div <= 0 {
		div = DefaultDivisor
	}
	return p.Offset + amplitude/div
}

// Modulate rewrites every influence above the threshold in place as
// influence * Gain(amplitude). Values at or below the threshold are not
// touched, so a closed mouth is never pushed into motion.
func (p Params) Modulate(influences []float32, amplitude float32) {
	if len(influences) == 0 {
		return
	}
	gain := p.Gain(amplitude)
	for i, v := range influences {
		if v > p.Threshold {
			influences[i] = v * gain
		}
	}
}

// Apply runs Modulate over each influence set when audio is playing. It is a
// no-op otherwise.
func (p Params) Apply(sets [][]float32, audioPlaying bool, amplitude float32) {
	if !audioPlaying {
		return
	}
	for _, inf := range sets {
		p.Modulate(inf, amplitude)
	}
}
