// Package gltf provides a parser for glTF 2.0 documents and GLB containers.
// Only the parts needed for morph-target animation are modelled: the node
// hierarchy, meshes with their morph targets, accessors and animations.
package gltf

import "fmt"

// GLB container constants.
const (
	GLBMagic     = 0x46546C67 // "glTF"
	GLBVersion   = 2
	GLBChunkJSON = 0x4E4F534A // "JSON"
	GLBChunkBIN  = 0x004E4942 // "BIN\0"
)

// Accessor component types.
const (
	ComponentByte          = 5120
	ComponentUnsignedByte  = 5121
	ComponentShort         = 5122
	ComponentUnsignedShort = 5123
	ComponentUnsignedInt   = 5125
	ComponentFloat         = 5126
)

// Accessor element types.
const (
	TypeScalar = "SCALAR"
	TypeVec2   = "VEC2"
	TypeVec3   = "VEC3"
	TypeVec4   = "VEC4"
	TypeMat2   = "MAT2"
	TypeMat3   = "MAT3"
	TypeMat4   = "MAT4"
)

// Animation channel target paths.
const (
	PathTranslation = "translation"
	PathRotation    = "rotation"
	PathScale       = "scale"
	PathWeights     = "weights"
)

// Sampler interpolation modes.
const (
	InterpolationLinear      = "LINEAR"
	InterpolationStep        = "STEP"
	InterpolationCubicSpline = "CUBICSPLINE"
)

// Primitive modes. Triangles is the default when Mode is absent.
const (
	ModePoints    = 0
	ModeLines     = 1
	ModeTriangles = 4
)

// Document is the root of a glTF document after buffers have been resolved.
type Document struct {
	Asset       Asset        `json:"asset"`
	Scene       *int         `json:"scene,omitempty"`
	Scenes      []Scene      `json:"scenes,omitempty"`
	Nodes       []Node       `json:"nodes,omitempty"`
	Meshes      []Mesh       `json:"meshes,omitempty"`
	Accessors   []Accessor   `json:"accessors,omitempty"`
	BufferViews []BufferView `json:"bufferViews,omitempty"`
	Buffers     []Buffer     `json:"buffers,omitempty"`
	Animations  []Animation  `json:"animations,omitempty"`
}

// Asset holds document metadata.
type Asset struct {
	Version   string `json:"version"`
	Generator string `json:"generator,omitempty"`
}

// Scene lists the root nodes of a scene.
type Scene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// Node is an element of the transform hierarchy.
type Node struct {
	Name        string       `json:"name,omitempty"`
	Children    []int        `json:"children,omitempty"`
	Mesh        *int         `json:"mesh,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"`
	Translation *[3]float32  `json:"translation,omitempty"`
	Rotation    *[4]float32  `json:"rotation,omitempty"`
	Scale       *[3]float32  `json:"scale,omitempty"`
	Weights     []float32    `json:"weights,omitempty"`
}

// Mesh is a set of primitives sharing morph target weights.
type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
	Weights    []float32   `json:"weights,omitempty"`
	Extras     *MeshExtras `json:"extras,omitempty"`
}

// MeshExtras carries the de-facto standard morph target names written by
// Blender and most exporters.
type MeshExtras struct {
	TargetNames []string `json:"targetNames,omitempty"`
}

// Primitive is a drawable piece of a mesh.
type Primitive struct {
	Attributes map[string]int   `json:"attributes"`
	Indices    *int             `json:"indices,omitempty"`
	Mode       *int             `json:"mode,omitempty"`
	Targets    []map[string]int `json:"targets,omitempty"`
}

// Accessor describes a typed view into a buffer view.
type Accessor struct {
	BufferView    *int      `json:"bufferView,omitempty"`
	ByteOffset    int       `json:"byteOffset,omitempty"`
	ComponentType int       `json:"componentType"`
	Normalized    bool      `json:"normalized,omitempty"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Min           []float32 `json:"min,omitempty"`
	Max           []float32 `json:"max,omitempty"`
	Sparse        *Sparse   `json:"sparse,omitempty"`
}

// Sparse stores displaced elements on top of an accessor's base data.
type Sparse struct {
	Count   int           `json:"count"`
	Indices SparseIndices `json:"indices"`
	Values  SparseValues  `json:"values"`
}

// SparseIndices locates the indices of displaced elements.
type SparseIndices struct {
	BufferView    int `json:"bufferView"`
	ByteOffset    int `json:"byteOffset,omitempty"`
	ComponentType int `json:"componentType"`
}

// SparseValues locates the displaced element values.
type SparseValues struct {
	BufferView int `json:"bufferView"`
	ByteOffset int `json:"byteOffset,omitempty"`
}

// BufferView is a slice of a buffer.
type BufferView struct {
	Buffer     int  `json:"buffer"`
	ByteOffset int  `json:"byteOffset,omitempty"`
	ByteLength int  `json:"byteLength"`
	ByteStride *int `json:"byteStride,omitempty"`
}

// Buffer is a block of binary data. Data is filled in by the parser.
type Buffer struct {
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`
	Data       []byte `json:"-"`
}

// Animation is a keyframed animation over node properties.
type Animation struct {
	Name     string             `json:"name,omitempty"`
	Channels []Channel          `json:"channels"`
	Samplers []AnimationSampler `json:"samplers"`
}

// Channel binds a sampler to a node property.
type Channel struct {
	Sampler int           `json:"sampler"`
	Target  ChannelTarget `json:"target"`
}

// ChannelTarget names the animated node and property.
type ChannelTarget struct {
	Node *int   `json:"node,omitempty"`
	Path string `json:"path"`
}

// AnimationSampler pairs keyframe times with output values.
type AnimationSampler struct {
	Input         int    `json:"input"`
	Output        int    `json:"output"`
	Interpolation string `json:"interpolation,omitempty"`
}

// Interp returns the sampler interpolation, defaulting to LINEAR.
func (s AnimationSampler) Interp() string {
	if s.Interpolation == "" {
		return InterpolationLinear
	}
	return s.Interpolation
}

// ComponentSize returns the byte size of a component type, or 0 if unknown.
func ComponentSize(componentType int) int {
	switch componentType {
	case ComponentByte, ComponentUnsignedByte:
		return 1
	case ComponentShort, ComponentUnsignedShort:
		return 2
	case ComponentUnsignedInt, ComponentFloat:
		return 4
	default:
		return 0
	}
}

// ComponentCount returns the number of components for an element type.
func ComponentCount(accessorType string) int {
	switch accessorType {
	case TypeScalar:
		return 1
	case TypeVec2:
		return 2
	case TypeVec3:
		return 3
	case TypeVec4, TypeMat2:
		return 4
	case TypeMat3:
		return 9
	case TypeMat4:
		return 16
	default:
		return 0
	}
}

// RootNodes returns the root nodes of the default scene. Documents without
// scenes are treated as having every parentless node as a root.
func (d *Document) RootNodes() []int {
	if len(d.Scenes) > 0 {
		idx := 0
		if d.Scene != nil && *d.Scene >= 0 && *d.Scene < len(d.Scenes) {
			idx = *d.Scene
		}
		return d.Scenes[idx].Nodes
	}

	hasParent := make([]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i, p := range hasParent {
		if !p {
			roots = append(roots, i)
		}
	}
	return roots
}

// MorphTargetCount returns the number of morph targets of a mesh, taken from
// its first primitive. All primitives of a mesh must agree on the count.
func (m *Mesh) MorphTargetCount() int {
	if len(m.Primitives) == 0 {
		return 0
	}
	return len(m.Primitives[0].Targets)
}

// TargetName returns the name of morph target i, or a generated one.
func (m *Mesh) TargetName(i int) string {
	if m.Extras != nil && i < len(m.Extras.TargetNames) && m.Extras.TargetNames[i] != "" {
		return m.Extras.TargetNames[i]
	}
	return fmt.Sprintf("target_%d", i)
}
