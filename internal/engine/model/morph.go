package model

// FloatsPerVertex is the interleaved layout written by Blend: position then normal.
const FloatsPerVertex = 6

// Blend writes morphed vertices into dst as interleaved position/normal
// floats and returns it, growing dst if needed. Targets with a zero weight
// are skipped.
func (p *Primitive) Blend(influences []float32, dst []float32) []float32 {
	n := len(p.Positions) * FloatsPerVertex
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]

	for v, pos := range p.Positions {
		o := v * FloatsPerVertex
		dst[o+0], dst[o+1], dst[o+2] = pos[0], pos[1], pos[2]
		nrm := p.Normals[v]
		dst[o+3], dst[o+4], dst[o+5] = nrm[0], nrm[1], nrm[2]
	}

	normalsMoved := false
	for t, w := range influences {
		if w == 0 || t >= len(p.PositionTargets) {
			continue
		}
		if deltas := p.PositionTargets[t]; deltas != nil {
			for v, d := range deltas {
				o := v * FloatsPerVertex
				dst[o+0] += w * d[0]
				dst[o+1] += w * d[1]
				dst[o+2] += w * d[2]
			}
		}
		if t < len(p.NormalTargets) && p.NormalTargets[t] != nil {
			normalsMoved = true
			for v, d := range p.NormalTargets[t] {
				o := v * FloatsPerVertex
				dst[o+3] += w * d[0]
				dst[o+4] += w * d[1]
				dst[o+5] += w * d[2]
			}
		}
	}

	if normalsMoved {
		for v := range p.Positions {
			o := v * FloatsPerVertex
			nrm := normalize([3]float32{dst[o+3], dst[o+4], dst[o+5]})
			dst[o+3], dst[o+4], dst[o+5] = nrm[0], nrm[1], nrm[2]
		}
	}
	return dst
}
