package model

import (
	"errors"
	"fmt"

	"github.com/Mohammad-Afzal123/web-avatar/pkg/gltf"
	"github.com/Mohammad-Afzal123/web-avatar/pkg/math"
)

// ErrNoMeshes is returned when the default scene instantiates no geometry.
var ErrNoMeshes = errors.New("model has no triangle meshes")

// Build walks the default scene of doc and creates one MorphMesh per node
// that references a mesh. Non-triangle primitives are skipped.
func Build(doc *gltf.Document) (*Model, error) {
	m := &Model{
		Bounds: emptyBounds(),
		byNode: make(map[int]*MorphMesh),
	}
	cache := make(map[int][]*Primitive)
	visited := make(map[int]bool)

	var walk func(node int, parent math.Mat4) error
	walk = func(node int, parent math.Mat4) error {
		if node < 0 || node >= len(doc.Nodes) {
			return fmt.Errorf("node index %d out of range", node)
		}
		if visited[node] {
			return fmt.Errorf("node %d appears twice in the hierarchy", node)
		}
		visited[node] = true

		n := &doc.Nodes[node]
		world := parent.Mul(localMatrix(n))

		if n.Mesh != nil {
			mm, err := buildInstance(doc, node, *n.Mesh, world, cache)
			if err != nil {
				return fmt.Errorf("node %d (%s): %w", node, n.Name, err)
			}
			if mm != nil {
				m.Meshes = append(m.Meshes, mm)
				m.byNode[node] = mm
				if mm.HasMorphTargets() {
					m.morph = append(m.morph, mm)
				}
				for _, p := range mm.Primitives {
					for _, v := range p.Positions {
						m.Bounds.add(world.TransformPoint(v))
					}
				}
			}
		}

		for _, c := range n.Children {
			if err := walk(c, world); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range doc.RootNodes() {
		if err := walk(root, math.Identity()); err != nil {
			return nil, err
		}
	}

	if len(m.Meshes) == 0 {
		return nil, ErrNoMeshes
	}
	return m, nil
}

// localMatrix returns the node's matrix, or T*R*S when no matrix is given.
func localMatrix(n *gltf.Node) math.Mat4 {
	if n.Matrix != nil {
		return math.Mat4(*n.Matrix)
	}
	t := math.Vec3{}
	r := math.QuatIdentity()
	s := math.Vec3{X: 1, Y: 1, Z: 1}
	if n.Translation != nil {
		t = math.V3(*n.Translation)
	}
	if n.Rotation != nil {
		r = math.Quat{X: n.Rotation[0], Y: n.Rotation[1], Z: n.Rotation[2], W: n.Rotation[3]}
	}
	if n.Scale != nil {
		s = math.V3(*n.Scale)
	}
	return math.FromTRS(t, r, s)
}

func buildInstance(doc *gltf.Document, node, meshIdx int, world math.Mat4, cache map[int][]*Primitive) (*MorphMesh, error) {
	if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIdx)
	}
	mesh := &doc.Meshes[meshIdx]

	prims, ok := cache[meshIdx]
	if !ok {
		var err error
		prims, err = buildPrimitives(doc, mesh)
		if err != nil {
			return nil, fmt.Errorf("mesh %d (%s): %w", meshIdx, mesh.Name, err)
		}
		cache[meshIdx] = prims
	}
	if len(prims) == 0 {
		return nil, nil
	}

	targets := mesh.MorphTargetCount()
	names := make([]string, targets)
	for i := range names {
		names[i] = mesh.TargetName(i)
	}

	rest := make([]float32, targets)
	switch {
	case len(doc.Nodes[node].Weights) == targets:
		copy(rest, doc.Nodes[node].Weights)
	case len(mesh.Weights) == targets:
		copy(rest, mesh.Weights)
	}
	influences := make([]float32, targets)
	copy(influences, rest)

	name := doc.Nodes[node].Name
	if name == "" {
		name = mesh.Name
	}

	return &MorphMesh{
		Name:        name,
		Node:        node,
		Mesh:        meshIdx,
		World:       world,
		TargetNames: names,
		Primitives:  prims,
		Influences:  influences,
		Rest:        rest,
	}, nil
}

func buildPrimitives(doc *gltf.Document, mesh *gltf.Mesh) ([]*Primitive, error) {
	targets := mesh.MorphTargetCount()
	var prims []*Primitive

	for pi := range mesh.Primitives {
		src := &mesh.Primitives[pi]
		if src.Mode != nil && *src.Mode != gltf.ModeTriangles {
			continue
		}
		if len(src.Targets) != targets {
			return nil, fmt.Errorf("primitive %d has %d morph targets, mesh has %d", pi, len(src.Targets), targets)
		}

		posIdx, ok := src.Attributes["POSITION"]
		if !ok {
			continue
		}
		positions, err := doc.ReadVec3(posIdx)
		if err != nil {
			return nil, fmt.Errorf("primitive %d positions: %w", pi, err)
		}

		var indices []uint32
		if src.Indices != nil {
			indices, err = doc.ReadIndices(*src.Indices)
			if err != nil {
				return nil, fmt.Errorf("primitive %d indices: %w", pi, err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		var normals [][3]float32
		if nIdx, ok := src.Attributes["NORMAL"]; ok {
			normals, err = doc.ReadVec3(nIdx)
			if err != nil {
				return nil, fmt.Errorf("primitive %d normals: %w", pi, err)
			}
		}
		if len(normals) != len(positions) {
			normals = computeNormals(positions, indices)
		}

		p := &Primitive{
			Positions:       positions,
			Normals:         normals,
			Indices:         indices,
			PositionTargets: make([][][3]float32, targets),
			NormalTargets:   make([][][3]float32, targets),
		}
		for ti, target := range src.Targets {
			if idx, ok := target["POSITION"]; ok {
				deltas, err := doc.ReadVec3(idx)
				if err != nil {
					return nil, fmt.Errorf("primitive %d target %d positions: %w", pi, ti, err)
				}
				if len(deltas) != len(positions) {
					return nil, fmt.Errorf("primitive %d target %d: %d deltas for %d vertices", pi, ti, len(deltas), len(positions))
				}
				p.PositionTargets[ti] = deltas
			}
			if idx, ok := target["NORMAL"]; ok {
				deltas, err := doc.ReadVec3(idx)
				if err == nil && len(deltas) == len(positions) {
					p.NormalTargets[ti] = deltas
				}
			}
		}
		prims = append(prims, p)
	}
	return prims, nil
}
