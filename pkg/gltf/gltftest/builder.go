// Package gltftest builds small glTF documents in memory for tests.
package gltftest

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/Mohammad-Afzal123/web-avatar/pkg/gltf"
)

// Builder accumulates accessors, meshes, nodes and animations into a single
// binary buffer.
type Builder struct {
	doc gltf.Document
	bin bytes.Buffer
}

// New creates an empty builder with one default scene.
func New() *Builder {
	zero := 0
	return &Builder{
		doc: gltf.Document{
			Asset:  gltf.Asset{Version: "2.0", Generator: "gltftest"},
			Scene:  &zero,
			Scenes: []gltf.Scene{{Name: "scene"}},
		},
	}
}

// AddFloats appends a float accessor of the given element type.
func (b *Builder) AddFloats(typ string, values []float32) int {
	view := b.appendView(func(buf *bytes.Buffer) {
		for _, v := range values {
			_ = binary.Write(buf, binary.LittleEndian, math.Float32bits(v))
		}
	})
	count := len(values) / gltf.ComponentCount(typ)
	acc := gltf.Accessor{
		BufferView:    &view,
		ComponentType: gltf.ComponentFloat,
		Count:         count,
		Type:          typ,
	}
	if typ == gltf.TypeScalar && count > 0 {
		lo, hi := values[0], values[0]
		for _, v := range values {
			lo = min(lo, v)
			hi = max(hi, v)
		}
		acc.Min = []float32{lo}
		acc.Max = []float32{hi}
	}
	b.doc.Accessors = append(b.doc.Accessors, acc)
	return len(b.doc.Accessors) - 1
}

// AddVec3 appends a VEC3 float accessor.
func (b *Builder) AddVec3(values [][3]float32) int {
	flat := make([]float32, 0, len(values)*3)
	for _, v := range values {
		flat = append(flat, v[0], v[1], v[2])
	}
	return b.AddFloats(gltf.TypeVec3, flat)
}

// AddIndices appends an unsigned short index accessor.
func (b *Builder) AddIndices(values []uint16) int {
	view := b.appendView(func(buf *bytes.Buffer) {
		_ = binary.Write(buf, binary.LittleEndian, values)
	})
	b.doc.Accessors = append(b.doc.Accessors, gltf.Accessor{
		BufferView:    &view,
		ComponentType: gltf.ComponentUnsignedShort,
		Count:         len(values),
		Type:          gltf.TypeScalar,
	})
	return len(b.doc.Accessors) - 1
}

// AddUnsignedBytes appends a normalized unsigned byte accessor.
func (b *Builder) AddUnsignedBytes(typ string, values []uint8) int {
	view := b.appendView(func(buf *bytes.Buffer) {
		buf.Write(values)
	})
	b.doc.Accessors = append(b.doc.Accessors, gltf.Accessor{
		BufferView:    &view,
		ComponentType: gltf.ComponentUnsignedByte,
		Normalized:    true,
		Count:         len(values) / gltf.ComponentCount(typ),
		Type:          typ,
	})
	return len(b.doc.Accessors) - 1
}

// AddMesh appends a single-primitive triangle mesh. targets holds one
// POSITION delta accessor per morph target.
func (b *Builder) AddMesh(name string, positions, indices int, targets []int, targetNames []string) int {
	prim := gltf.Primitive{
		Attributes: map[string]int{"POSITION": positions},
	}
	if indices >= 0 {
		prim.Indices = &indices
	}
	for _, t := range targets {
		prim.Targets = append(prim.Targets, map[string]int{"POSITION": t})
	}
	mesh := gltf.Mesh{Name: name, Primitives: []gltf.Primitive{prim}}
	if len(targets) > 0 {
		mesh.Weights = make([]float32, len(targets))
	}
	if len(targetNames) > 0 {
		mesh.Extras = &gltf.MeshExtras{TargetNames: targetNames}
	}
	b.doc.Meshes = append(b.doc.Meshes, mesh)
	return len(b.doc.Meshes) - 1
}

// SetWeights sets the default morph weights of mesh.
func (b *Builder) SetWeights(mesh int, weights []float32) {
	b.doc.Meshes[mesh].Weights = append([]float32(nil), weights...)
}

// AddNode appends a root node referencing mesh (or no mesh when mesh < 0).
func (b *Builder) AddNode(name string, mesh int, translation *[3]float32) int {
	node := gltf.Node{Name: name, Translation: translation}
	if mesh >= 0 {
		node.Mesh = &mesh
	}
	b.doc.Nodes = append(b.doc.Nodes, node)
	idx := len(b.doc.Nodes) - 1
	b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, idx)
	return idx
}

// AddChild appends a node as a child of parent.
func (b *Builder) AddChild(parent int, name string, mesh int, translation *[3]float32) int {
	node := gltf.Node{Name: name, Translation: translation}
	if mesh >= 0 {
		node.Mesh = &mesh
	}
	b.doc.Nodes = append(b.doc.Nodes, node)
	idx := len(b.doc.Nodes) - 1
	b.doc.Nodes[parent].Children = append(b.doc.Nodes[parent].Children, idx)
	return idx
}

// AddWeightsAnimation appends an animation with one weights channel per
// node in tracks, all sharing the same keyframe times.
func (b *Builder) AddWeightsAnimation(name string, interp string, times []float32, tracks map[int][]float32) int {
	anim := gltf.Animation{Name: name}
	input := b.AddFloats(gltf.TypeScalar, times)
	for node, values := range tracks {
		output := b.AddFloats(gltf.TypeScalar, values)
		anim.Samplers = append(anim.Samplers, gltf.AnimationSampler{
			Input:         input,
			Output:        output,
			Interpolation: interp,
		})
		n := node
		anim.Channels = append(anim.Channels, gltf.Channel{
			Sampler: len(anim.Samplers) - 1,
			Target:  gltf.ChannelTarget{Node: &n, Path: gltf.PathWeights},
		})
	}
	b.doc.Animations = append(b.doc.Animations, anim)
	return len(b.doc.Animations) - 1
}

// GLB encodes the document as a binary GLB container.
func (b *Builder) GLB() []byte {
	doc := b.document("")
	jsonData, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	jsonData = pad(jsonData, ' ')
	binData := pad(append([]byte(nil), b.bin.Bytes()...), 0)

	total := 12 + 8 + len(jsonData)
	if len(binData) > 0 {
		total += 8 + len(binData)
	}

	var out bytes.Buffer
	_ = binary.Write(&out, binary.LittleEndian, [3]uint32{gltf.GLBMagic, gltf.GLBVersion, uint32(total)})
	_ = binary.Write(&out, binary.LittleEndian, [2]uint32{uint32(len(jsonData)), gltf.GLBChunkJSON})
	out.Write(jsonData)
	if len(binData) > 0 {
		_ = binary.Write(&out, binary.LittleEndian, [2]uint32{uint32(len(binData)), gltf.GLBChunkBIN})
		out.Write(binData)
	}
	return out.Bytes()
}

// JSON encodes the document as glTF JSON with an embedded data URI buffer.
func (b *Builder) JSON() []byte {
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(b.bin.Bytes())
	data, err := json.Marshal(b.document(uri))
	if err != nil {
		panic(err)
	}
	return data
}

func (b *Builder) document(uri string) gltf.Document {
	doc := b.doc
	if b.bin.Len() > 0 {
		doc.Buffers = []gltf.Buffer{{URI: uri, ByteLength: b.bin.Len()}}
	}
	return doc
}

func (b *Builder) appendView(write func(*bytes.Buffer)) int {
	for b.bin.Len()%4 != 0 {
		b.bin.WriteByte(0)
	}
	offset := b.bin.Len()
	write(&b.bin)
	b.doc.BufferViews = append(b.doc.BufferViews, gltf.BufferView{
		Buffer:     0,
		ByteOffset: offset,
		ByteLength: b.bin.Len() - offset,
	})
	return len(b.doc.BufferViews) - 1
}

func pad(data []byte, fill byte) []byte {
	for len(data)%4 != 0 {
		data = append(data, fill)
	}
	return data
}

// Face builds a small talking-head fixture: a quad "Mouth" mesh with two
// morph targets (open, wide) under a "Head" node, and a weights animation
// of the given duration that opens the mouth halfway through.
func Face(duration float32) *Builder {
	b := New()
	pos := b.AddVec3([][3]float32{
		{-1, 0, 0}, {1, 0, 0}, {1, 2, 0}, {-1, 2, 0},
	})
	idx := b.AddIndices([]uint16{0, 1, 2, 0, 2, 3})
	open := b.AddVec3([][3]float32{
		{0, -0.5, 0}, {0, -0.5, 0}, {0, 0, 0}, {0, 0, 0},
	})
	wide := b.AddVec3([][3]float32{
		{-0.5, 0, 0}, {0.5, 0, 0}, {0.5, 0, 0}, {-0.5, 0, 0},
	})
	mesh := b.AddMesh("Mouth", pos, idx, []int{open, wide}, []string{"jawOpen", "mouthWide"})
	head := b.AddNode("Head", -1, &[3]float32{0, 1, 0})
	mouth := b.AddChild(head, "Mouth", mesh, nil)

	half := duration / 2
	b.AddWeightsAnimation("Talk", gltf.InterpolationLinear,
		[]float32{0, half, duration},
		map[int][]float32{mouth: {
			0, 0,
			0.8, 0.2,
			0, 0,
		}},
	)
	return b
}
