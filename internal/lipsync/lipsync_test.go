package lipsync

import (
	"testing"
)

func approx(a, b float32) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}

func TestModulate(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name      string
		in        []float32
		amplitude float32
		want      []float32
	}{
		{"half amplitude keeps value", []float32{0.5}, 70, []float32{0.5}},
		{"full amplitude scales by 1.5", []float32{0.2}, 140, []float32{0.3}},
		{"silence halves", []float32{0.4}, 0, []float32{0.2}},
		{"threshold is exclusive", []float32{0.01}, 255, []float32{0.01}},
		{"below threshold untouched", []float32{0, 0.005, -0.3}, 255, []float32{0, 0.005, -0.3}},
		{"mixed", []float32{0.8, 0, 0.02}, 140, []float32{1.2, 0, 0.03}},
		{"empty", nil, 100, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := append([]float32(nil), tt.in...)
			p.Modulate(got, tt.amplitude)
			for i := range tt.want {
				if !approx(got[i], tt.want[i]) {
					t.Errorf("influence %d: got %f, want %f", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestApply_NotPlaying(t *testing.T) {
	p := DefaultParams()
	for _, amp := range []float32{0, 70, 140, 255} {
		sets := [][]float32{{0.5, 0.9}, {0.3}}
		p.Apply(sets, false, amp)
		if sets[0][0] != 0.5 || sets[0][1] != 0.9 || sets[1][0] != 0.3 {
			t.Errorf("amplitude %f: influences changed while audio stopped: %v", amp, sets)
		}
	}
}

func TestApply_Playing(t *testing.T) {
	p := DefaultParams()
	sets := [][]float32{{0.2}, {0.4, 0}}
	p.Apply(sets, true, 140)
	if !approx(sets[0][0], 0.3) || !approx(sets[1][0], 0.6) || sets[1][1] != 0 {
		t.Errorf("unexpected influences %v", sets)
	}
}

func TestGain_CustomParams(t *testing.T) {
	p := Params{Threshold: 0.1, Offset: 1, Divisor: 100}
	if g := p.Gain(50); !approx(g, 1.5) {
		t.Errorf("gain: got %f, want 1.5", g)
	}

	inf := []float32{0.1, 0.2}
	p.Modulate(inf, 50)
	if inf[0] != 0.1 || !approx(inf[1], 0.3) {
		t.Errorf("custom threshold: got %v", inf)
	}

	zero := Params{Offset: 0.5}
	if g := zero.Gain(140); !approx(g, 1.5) {
		t.Errorf("zero divisor should fall back to default, got %f", g)
	}
}
