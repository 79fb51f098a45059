package model

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-sphere/engine/spherical"
)

func TestNewSphereDefaults(t *testing.T) {
	m := NewSphere()
	w, h := m.Segments()
	if w != 60 || h != 40 {
		t.Fatalf("segments = %dx%d, want 60x40", w, h)
	}
	if m.Radius() != 1 {
		t.Fatalf("radius = %v, want 1", m.Radius())
	}
	if got, want := len(m.Vertices()), 61*41; got != want {
		t.Fatalf("vertex count = %d, want %d", got, want)
	}
	// two triangles per quad, one at each pole row
	if got, want := m.IndexCount(), 60*(40-1)*6; got != want {
		t.Fatalf("index count = %d, want %d", got, want)
	}
	if len(m.VertexData()) != len(m.Vertices())*GPUVertexStride {
		t.Fatalf("vertex data = %d bytes", len(m.VertexData()))
	}
	if len(m.IndexData()) != m.IndexCount()*4 {
		t.Fatalf("index data = %d bytes", len(m.IndexData()))
	}
}

func TestSphereVerticesOnRadius(t *testing.T) {
	m := NewSphere(WithRadius(2.5), WithSegments(12, 8))
	for i, v := range m.Vertices() {
		p := v.Position
		r := math.Sqrt(float64(p[0]*p[0] + p[1]*p[1] + p[2]*p[2]))
		if math.Abs(r-2.5) > 1e-5 {
			t.Fatalf("vertex %d at distance %v, want 2.5", i, r)
		}
	}
}

func TestSphereIndicesInRange(t *testing.T) {
	m := NewSphere(WithSegments(8, 4))
	n := uint32(len(m.Vertices()))
	for i, idx := range m.Indices() {
		if idx >= n {
			t.Fatalf("index %d = %d out of range %d", i, idx, n)
		}
	}
}

func TestSphereUVMatchesSphericalMapping(t *testing.T) {
	// A vertex with texcoord (u, v) must sit where the mapper puts pixel (u*w, v*h).
	m := NewSphere(WithSegments(16, 8))
	dim := spherical.Dimension{Width: 1600, Height: 800}
	for i, v := range m.Vertices() {
		pos := spherical.PixelPosition{X: float64(v.TexCoord[0]) * dim.Width, Y: float64(v.TexCoord[1]) * dim.Height}
		dir, err := spherical.PixelToDirection(1, pos, dim)
		if err != nil {
			t.Fatalf("PixelToDirection: %v", err)
		}
		if math.Abs(dir.X-float64(v.Position[0])) > 1e-5 ||
			math.Abs(dir.Y-float64(v.Position[1])) > 1e-5 ||
			math.Abs(dir.Z-float64(v.Position[2])) > 1e-5 {
			t.Fatalf("vertex %d at %v, mapper gives %+v", i, v.Position, dir)
		}
	}
}

func TestSphereWithoutInvert(t *testing.T) {
	a := NewSphere(WithSegments(8, 4))
	b := NewSphere(WithSegments(8, 4), WithInvertX(false))
	for i := range a.Vertices() {
		if a.Vertices()[i].Position[0] != -b.Vertices()[i].Position[0] {
			t.Fatalf("vertex %d x not mirrored", i)
		}
	}
}

func TestSegmentsFloor(t *testing.T) {
	w, h := NewSphere(WithSegments(0, 0)).Segments()
	if w != 3 || h != 2 {
		t.Fatalf("segments = %dx%d, want 3x2", w, h)
	}
}

func TestGPUVertexMarshal(t *testing.T) {
	v := GPUVertex{Position: [3]float32{1, 2, 3}, TexCoord: [2]float32{0.25, 0.75}}
	if v.Size() != GPUVertexStride {
		t.Fatalf("Size = %d, want %d", v.Size(), GPUVertexStride)
	}
	buf := v.Marshal()
	if len(buf) != GPUVertexStride {
		t.Fatalf("Marshal len = %d", len(buf))
	}
	if got := MarshalIndices([]uint32{1, 2}); len(got) != 8 || got[0] != 1 || got[4] != 2 {
		t.Fatalf("MarshalIndices = %v", got)
	}
}
