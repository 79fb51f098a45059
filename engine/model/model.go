// Package model builds the panorama sphere mesh.
//
// The mesh is a UV sphere whose x axis is mirrored so the texture reads correctly from inside.
// Vertex u runs with the spherical theta of engine/spherical, so image column x lands on the same
// direction the overlay math computes for it.
package model

import (
	"math"
)

const (
	// DefaultWidthSegments is the number of segments around the equator.
	DefaultWidthSegments = 60
	// DefaultHeightSegments is the number of segments from pole to pole.
	DefaultHeightSegments = 40
)

// model is the implementation of the Model interface.
type model struct {
	name           string
	radius         float32
	widthSegments  int
	heightSegments int
	invertX        bool

	vertices []GPUVertex
	indices  []uint32

	vertexData, indexData []byte
}

// Model defines the interface for a GPU-ready sphere mesh.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Radius returns the sphere radius.
	//
	// Returns:
	//   - float32: the sphere radius
	Radius() float32

	// Segments returns the tessellation of the sphere.
	//
	// Returns:
	//   - width: segments around the equator
	//   - height: segments from pole to pole
	Segments() (width, height int)

	// Vertices returns the generated vertices.
	//
	// Returns:
	//   - []GPUVertex: the vertex list
	Vertices() []GPUVertex

	// Indices returns the triangle list indices.
	//
	// Returns:
	//   - []uint32: the index list
	Indices() []uint32

	// VertexData returns the packed vertex buffer contents.
	//
	// Returns:
	//   - []byte: the vertex data
	VertexData() []byte

	// IndexData returns the packed index buffer contents.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// IndexCount returns the number of indices in the mesh.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int
}

var _ Model = &model{}

// NewSphere generates a panorama sphere: radius 1, 60 x 40 segments, x mirrored.
//
// Parameters:
//   - options: functional options to configure the mesh
//
// Returns:
//   - Model: the generated mesh
func NewSphere(options ...ModelBuilderOption) Model {
	m := &model{
		name:           "panorama",
		radius:         1,
		widthSegments:  DefaultWidthSegments,
		heightSegments: DefaultHeightSegments,
		invertX:        true,
	}
	for _, option := range options {
		option(m)
	}
	m.widthSegments = max(m.widthSegments, 3)
	m.heightSegments = max(m.heightSegments, 2)

	m.build()
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Radius() float32 {
	return m.radius
}

func (m *model) Segments() (width, height int) {
	return m.widthSegments, m.heightSegments
}

func (m *model) Vertices() []GPUVertex {
	return m.vertices
}

func (m *model) Indices() []uint32 {
	return m.indices
}

func (m *model) VertexData() []byte {
	return m.vertexData
}

func (m *model) IndexData() []byte {
	return m.indexData
}

func (m *model) IndexCount() int {
	return len(m.indices)
}

// build generates the vertex grid and triangle indices. Pole rows emit a single triangle per
// segment so no degenerate triangles reach the index buffer.
func (m *model) build() {
	ws, hs := m.widthSegments, m.heightSegments
	r := float64(m.radius)
	sx := -1.0
	if m.invertX {
		sx = 1.0
	}

	grid := make([][]uint32, hs+1)
	m.vertices = make([]GPUVertex, 0, (ws+1)*(hs+1))
	for iy := 0; iy <= hs; iy++ {
		v := float64(iy) / float64(hs)
		phi := v * math.Pi
		row := make([]uint32, ws+1)
		for ix := 0; ix <= ws; ix++ {
			u := float64(ix) / float64(ws)
			theta := u * 2 * math.Pi
			m.vertices = append(m.vertices, GPUVertex{
				Position: [3]float32{
					float32(sx * r * math.Cos(theta) * math.Sin(phi)),
					float32(r * math.Cos(phi)),
					float32(r * math.Sin(theta) * math.Sin(phi)),
				},
				TexCoord: [2]float32{float32(u), float32(v)},
			})
			row[ix] = uint32(len(m.vertices) - 1)
		}
		grid[iy] = row
	}

	m.indices = make([]uint32, 0, ws*(hs-1)*6)
	for iy := range hs {
		for ix := range ws {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]
			if iy != 0 {
				m.indices = append(m.indices, a, b, d)
			}
			if iy != hs-1 {
				m.indices = append(m.indices, b, c, d)
			}
		}
	}

	m.vertexData = MarshalVertices(m.vertices)
	m.indexData = MarshalIndices(m.indices)
}
