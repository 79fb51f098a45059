package model

import (
	"encoding/binary"
	"math"
	"slices"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-sphere/common"
)

// GPUVertexSource is the WGSL definition of the VertexInput struct for the panorama pipeline.
// Matches GPUVertex layout exactly (20 bytes).
const GPUVertexSource = `struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) uv: vec2<f32>,
};
`

// GPUVertexStride is the byte distance between consecutive vertices in the vertex buffer.
const GPUVertexStride = 20

// GPUVertex is the GPU-aligned representation of a single panorama sphere vertex.
// Size: 20 bytes (tightly packed vertex attributes).
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	TexCoord [2]float32 // offset 12: equirectangular UV, v = 0 on the top row (8 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 20-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, GPUVertexStride)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.TexCoord[1]))
	return buf
}

// MarshalVertices packs a vertex slice into one contiguous buffer.
//
// Parameters:
//   - vertices: the vertices to pack
//
// Returns:
//   - []byte: len(vertices) * GPUVertexStride bytes
func MarshalVertices(vertices []GPUVertex) []byte {
	buf := make([]byte, 0, len(vertices)*GPUVertexStride)
	for i := range vertices {
		buf = append(buf, vertices[i].Marshal()...)
	}
	return buf
}

// MarshalIndices copies a uint32 index slice into a byte buffer in host order, which is what
// the GPU index buffer expects.
//
// Parameters:
//   - indices: the indices to pack
//
// Returns:
//   - []byte: len(indices) * 4 bytes
func MarshalIndices(indices []uint32) []byte {
	return slices.Clone(common.SliceToBytes(indices))
}
