package model

import (
	gomath "math"
)

// cross computes the cross product of two 3D vectors.
func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// normalize returns a unit vector in the same direction as v, or +Y for
// degenerate input.
func normalize(v [3]float32) [3]float32 {
	length := sqrtf(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if length < 0.0001 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32{v[0] / length, v[1] / length, v[2] / length}
}

func sub(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func sqrtf(x float32) float32 {
	return float32(gomath.Sqrt(float64(x)))
}

// computeNormals derives smooth vertex normals by accumulating the area
// weighted face normals of every triangle touching a vertex.
func computeNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	acc := make([][3]float32, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(a) >= len(positions) || int(b) >= len(positions) || int(c) >= len(positions) {
			continue
		}
		n := cross(sub(positions[b], positions[a]), sub(positions[c], positions[a]))
		for _, v := range [3]uint32{a, b, c} {
			acc[v][0] += n[0]
			acc[v][1] += n[1]
			acc[v][2] += n[2]
		}
	}
	for i := range acc {
		acc[i] = normalize(acc[i])
	}
	return acc
}
