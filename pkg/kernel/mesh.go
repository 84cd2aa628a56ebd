package kernel

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a triangle mesh suitable for rendering or export.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices  []float32 `json:"vertices"`  // [x0,y0,z0, x1,y1,z1, ...]
	Normals   []float32 `json:"normals"`   // [nx0,ny0,nz0, ...]
	Indices   []uint32  `json:"indices"`   // [i0,i1,i2, ...] triangles
	SolidName string    `json:"solidName"` // which solid this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// AddTriangle appends a flat-shaded triangle. The winding a, b, c is
// counter-clockwise seen from outside, so the normal is (b-a)x(c-a).
func (m *Mesh) AddTriangle(a, b, c v3.Vec) {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	base := uint32(m.VertexCount())
	for _, v := range [3]v3.Vec{a, b, c} {
		m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
		m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	m.Indices = append(m.Indices, base, base+1, base+2)
}

// Triangle returns the three corners of triangle i.
func (m *Mesh) Triangle(i int) [3]v3.Vec {
	var t [3]v3.Vec
	for j := 0; j < 3; j++ {
		k := m.Indices[3*i+j] * 3
		t[j] = v3.Vec{
			X: float64(m.Vertices[k]),
			Y: float64(m.Vertices[k+1]),
			Z: float64(m.Vertices[k+2]),
		}
	}
	return t
}

// -----------------------------------------------------------------------
// Wireframes
// -----------------------------------------------------------------------

// VCmd is a pen command in a vector list.
type VCmd int

const (
	LineMove VCmd = iota // lift pen and move
	LineDraw             // draw from the previous point
)

func (c VCmd) String() string {
	switch c {
	case LineMove:
		return "move"
	case LineDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// VPoint is one entry of a vector list.
type VPoint struct {
	Cmd VCmd
	Pt  v3.Vec
}

// VList is a polyline wireframe.
type VList []VPoint

// Move starts a new polyline at p.
func (vl *VList) Move(p v3.Vec) {
	*vl = append(*vl, VPoint{Cmd: LineMove, Pt: p})
}

// Draw extends the current polyline to p.
func (vl *VList) Draw(p v3.Vec) {
	*vl = append(*vl, VPoint{Cmd: LineDraw, Pt: p})
}

// Strokes returns the number of polylines.
func (vl VList) Strokes() int {
	n := 0
	for _, p := range vl {
		if p.Cmd == LineMove {
			n++
		}
	}
	return n
}
