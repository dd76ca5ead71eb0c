// Package model builds morph-target meshes from a glTF document and blends
// their vertices on the CPU.
package model

import (
	"github.com/Mohammad-Afzal123/web-avatar/pkg/math"
)

// Primitive is a triangle list with optional morph target deltas.
type Primitive struct {
	Positions [][3]float32
	Normals   [][3]float32
	Indices   []uint32

	// PositionTargets[t][v] is the position delta of vertex v in target t.
	PositionTargets [][][3]float32
	// NormalTargets mirrors PositionTargets; a nil entry means no normal delta.
	NormalTargets [][][3]float32
}

// MorphMesh is one node's instance of a glTF mesh. Each instance owns its
// influence values, so two nodes sharing a mesh animate independently.
type MorphMesh struct {
	Name        string
	Node        int
	Mesh        int
	World       math.Mat4
	TargetNames []string
	Primitives  []*Primitive

	// Influences holds one weight per morph target. Clip sampling writes
	// them and lip-sync modulation rewrites them in place every frame.
	Influences []float32
	// Rest is the node/mesh default weight set restored on reset.
	Rest []float32
}

// HasMorphTargets reports whether the mesh carries any morph target.
func (m *MorphMesh) HasMorphTargets() bool {
	return len(m.Influences) > 0
}

// ResetInfluences restores the authored default weights.
func (m *MorphMesh) ResetInfluences() {
	copy(m.Influences, m.Rest)
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Size returns the box extent per axis.
func (b Bounds) Size() math.Vec3 {
	return math.V3(b.Max).Sub(math.V3(b.Min))
}

// Center returns the box midpoint.
func (b Bounds) Center() math.Vec3 {
	return math.V3(b.Min).Add(math.V3(b.Max)).Scale(0.5)
}

// GroundOffset returns the translation that centres the box on X/Z and
// lifts its minimum Y onto the ground plane.
func (b Bounds) GroundOffset() math.Vec3 {
	c := b.Center()
	return math.Vec3{X: -c.X, Y: -b.Min[1], Z: -c.Z}
}

// Empty reports whether nothing was added to the box.
func (b Bounds) Empty() bool {
	return b.Min[0] > b.Max[0]
}

func emptyBounds() Bounds {
	return Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
}

func (b *Bounds) add(p [3]float32) {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

// Model is a loaded avatar: every mesh instance reachable from the default
// scene plus its world-space bounds.
type Model struct {
	Meshes []*MorphMesh
	Bounds Bounds

	byNode map[int]*MorphMesh
	morph  []*MorphMesh
}

// MeshForNode returns the mesh instance created for a glTF node, or nil.
func (m *Model) MeshForNode(node int) *MorphMesh {
	return m.byNode[node]
}

// MorphMeshes returns the meshes that carry morph targets. The list is
// computed once at build time.
func (m *Model) MorphMeshes() []*MorphMesh {
	return m.morph
}

// HasMorphTargets reports whether any mesh carries morph targets.
func (m *Model) HasMorphTargets() bool {
	return len(m.morph) > 0
}

// ResetInfluences restores default weights on every morph mesh.
func (m *Model) ResetInfluences() {
	for _, mm := range m.morph {
		mm.ResetInfluences()
	}
}
