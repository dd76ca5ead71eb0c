package gltf

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ReadFloats reads an accessor as a flat slice of float32 components
// (Count * components). Integer components are converted, normalized ones are
// mapped to [0,1] or [-1,1]. Sparse accessors are supported.
func (d *Document) ReadFloats(index int) ([]float32, error) {
	acc, err := d.accessor(index)
	if err != nil {
		return nil, err
	}

	comps := ComponentCount(acc.Type)
	size := ComponentSize(acc.ComponentType)
	if comps == 0 || size == 0 {
		return nil, fmt.Errorf("accessor %d: unsupported type %s/%d", index, acc.Type, acc.ComponentType)
	}

	out := make([]float32, acc.Count*comps)

	if acc.BufferView != nil && acc.Count > 0 {
		data, stride, err := d.viewData(*acc.BufferView)
		if err != nil {
			return nil, fmt.Errorf("accessor %d: %w", index, err)
		}
		elemSize := comps * size
		if stride == 0 {
			stride = elemSize
		}
		if acc.ByteOffset+(acc.Count-1)*stride+elemSize > len(data) {
			return nil, fmt.Errorf("accessor %d: %w", index, ErrTruncatedData)
		}
		for i := 0; i < acc.Count; i++ {
			base := acc.ByteOffset + i*stride
			for c := 0; c < comps; c++ {
				out[i*comps+c] = readComponent(data[base+c*size:], acc.ComponentType, acc.Normalized)
			}
		}
	}

	if acc.Sparse != nil {
		if err := d.applySparse(acc, comps, size, out); err != nil {
			return nil, fmt.Errorf("accessor %d: sparse: %w", index, err)
		}
	}

	return out, nil
}

// ReadScalars reads a SCALAR accessor.
func (d *Document) ReadScalars(index int) ([]float32, error) {
	acc, err := d.accessor(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != TypeScalar {
		return nil, fmt.Errorf("accessor %d is not SCALAR: %s", index, acc.Type)
	}
	return d.ReadFloats(index)
}

// ReadVec3 reads a VEC3 accessor.
func (d *Document) ReadVec3(index int) ([][3]float32, error) {
	acc, err := d.accessor(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != TypeVec3 {
		return nil, fmt.Errorf("accessor %d is not VEC3: %s", index, acc.Type)
	}

	flat, err := d.ReadFloats(index)
	if err != nil {
		return nil, err
	}
	out := make([][3]float32, acc.Count)
	for i := range out {
		out[i] = [3]float32{flat[i*3], flat[i*3+1], flat[i*3+2]}
	}
	return out, nil
}

// ReadIndices reads an index accessor of unsigned byte, short or int.
func (d *Document) ReadIndices(index int) ([]uint32, error) {
	acc, err := d.accessor(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != TypeScalar {
		return nil, fmt.Errorf("index accessor %d is not SCALAR: %s", index, acc.Type)
	}
	switch acc.ComponentType {
	case ComponentUnsignedByte, ComponentUnsignedShort, ComponentUnsignedInt:
	default:
		return nil, fmt.Errorf("index accessor %d: unsupported component type %d", index, acc.ComponentType)
	}

	// Indices are never normalized, so the float path is exact up to 2^24.
	flat, err := d.ReadFloats(index)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(flat))
	for i, v := range flat {
		out[i] = uint32(v)
	}
	return out, nil
}

func (d *Document) accessor(index int) (*Accessor, error) {
	if index < 0 || index >= len(d.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", index)
	}
	return &d.Accessors[index], nil
}

// viewData returns the bytes of a buffer view and its stride (0 = packed).
func (d *Document) viewData(index int) ([]byte, int, error) {
	if index < 0 || index >= len(d.BufferViews) {
		return nil, 0, fmt.Errorf("buffer view index %d out of range", index)
	}
	view := &d.BufferViews[index]
	if view.Buffer < 0 || view.Buffer >= len(d.Buffers) {
		return nil, 0, fmt.Errorf("buffer index %d out of range", view.Buffer)
	}
	buf := d.Buffers[view.Buffer].Data
	end := view.ByteOffset + view.ByteLength
	if view.ByteOffset < 0 || end > len(buf) {
		return nil, 0, fmt.Errorf("buffer view %d: %w", index, ErrTruncatedData)
	}
	stride := 0
	if view.ByteStride != nil {
		stride = *view.ByteStride
	}
	return buf[view.ByteOffset:end], stride, nil
}

func (d *Document) applySparse(acc *Accessor, comps, size int, out []float32) error {
	sp := acc.Sparse

	idxData, _, err := d.viewData(sp.Indices.BufferView)
	if err != nil {
		return err
	}
	valData, _, err := d.viewData(sp.Values.BufferView)
	if err != nil {
		return err
	}

	idxSize := ComponentSize(sp.Indices.ComponentType)
	if idxSize == 0 || sp.Indices.ComponentType == ComponentByte || sp.Indices.ComponentType == ComponentShort {
		return fmt.Errorf("unsupported index component type %d", sp.Indices.ComponentType)
	}
	elemSize := comps * size
	if sp.Indices.ByteOffset+sp.Count*idxSize > len(idxData) || sp.Values.ByteOffset+sp.Count*elemSize > len(valData) {
		return ErrTruncatedData
	}

	for i := 0; i < sp.Count; i++ {
		target := int(readComponent(idxData[sp.Indices.ByteOffset+i*idxSize:], sp.Indices.ComponentType, false))
		if target >= acc.Count {
			return fmt.Errorf("index %d out of range (count %d)", target, acc.Count)
		}
		base := sp.Values.ByteOffset + i*elemSize
		for c := 0; c < comps; c++ {
			out[target*comps+c] = readComponent(valData[base+c*size:], acc.ComponentType, acc.Normalized)
		}
	}
	return nil
}

// readComponent decodes one little-endian component.
func readComponent(b []byte, componentType int, normalized bool) float32 {
	switch componentType {
	case ComponentFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case ComponentUnsignedInt:
		return float32(binary.LittleEndian.Uint32(b))
	case ComponentUnsignedShort:
		v := float32(binary.LittleEndian.Uint16(b))
		if normalized {
			return v / 65535
		}
		return v
	case ComponentShort:
		v := float32(int16(binary.LittleEndian.Uint16(b)))
		if normalized {
			return max(v/32767, -1)
		}
		return v
	case ComponentUnsignedByte:
		v := float32(b[0])
		if normalized {
			return v / 255
		}
		return v
	case ComponentByte:
		v := float32(int8(b[0]))
		if normalized {
			return max(v/127, -1)
		}
		return v
	}
	return 0
}
