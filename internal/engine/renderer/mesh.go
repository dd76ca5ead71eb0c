package renderer

import (
	"slices"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/model"
)

// meshBuffers holds the GL objects of one primitive of a mesh instance.
// Morphing primitives are re-blended on the CPU whenever the instance's
// influences change.
type meshBuffers struct {
	instance *model.MorphMesh
	prim     *model.Primitive

	vao, vbo, ebo uint32
	count         int32

	vertices []float32
	uploaded []float32 // influences of the last upload
}

func newMeshBuffers(mm *model.MorphMesh, p *model.Primitive) *meshBuffers {
	mb := &meshBuffers{
		instance: mm,
		prim:     p,
		count:    int32(len(p.Indices)),
		uploaded: slices.Clone(mm.Influences),
	}
	mb.vertices = p.Blend(mm.Influences, nil)

	usage := uint32(gl.STATIC_DRAW)
	if mm.HasMorphTargets() {
		usage = gl.DYNAMIC_DRAW
	}

	gl.GenVertexArrays(1, &mb.vao)
	gl.BindVertexArray(mb.vao)

	gl.GenBuffers(1, &mb.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, mb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(mb.vertices)*4, gl.Ptr(mb.vertices), usage)

	stride := int32(model.FloatsPerVertex * 4)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)

	gl.GenBuffers(1, &mb.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mb.ebo)
	if len(p.Indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(p.Indices)*4, gl.Ptr(p.Indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return mb
}

// sync re-uploads the blended vertices if the influences moved since the
// last upload.
func (mb *meshBuffers) sync() {
	if !mb.instance.HasMorphTargets() || slices.Equal(mb.uploaded, mb.instance.Influences) {
		return
	}
	copy(mb.uploaded, mb.instance.Influences)
	mb.vertices = mb.prim.Blend(mb.instance.Influences, mb.vertices)

	gl.BindBuffer(gl.ARRAY_BUFFER, mb.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(mb.vertices)*4, gl.Ptr(mb.vertices))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (mb *meshBuffers) draw() {
	if mb.count == 0 {
		return
	}
	gl.BindVertexArray(mb.vao)
	gl.DrawElements(gl.TRIANGLES, mb.count, gl.UNSIGNED_INT, nil)
}

func (mb *meshBuffers) release() {
	gl.DeleteVertexArrays(1, &mb.vao)
	gl.DeleteBuffers(1, &mb.vbo)
	gl.DeleteBuffers(1, &mb.ebo)
	mb.vao, mb.vbo, mb.ebo = 0, 0, 0
}
