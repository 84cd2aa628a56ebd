// Package sdfx bridges kernel solids and meshes to the
// github.com/deadsy/sdfx SDF library: a prepared ARB becomes an sdf.SDF3
// that marching cubes can voxelize, and kernel meshes are written as STL.
package sdfx

import (
	"fmt"

	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/primitive/arb"
	"github.com/chazu/csgray/pkg/vmath"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultMeshCells controls marching cubes resolution along the longest
// bounding box axis.
const DefaultMeshCells = 200

// Compile-time interface check.
var _ sdf.SDF3 = (*Convex)(nil)

// Convex is the intersection of half-spaces. Its field is the largest
// signed plane distance, which is exact inside and on faces and a lower
// bound near edges and corners.
type Convex struct {
	planes []vmath.Plane
	bb     sdf.Box3
}

// NewConvex builds a convex SDF from outward planes. bb must contain the
// solid.
func NewConvex(planes []vmath.Plane, bb sdf.Box3) (*Convex, error) {
	if len(planes) < 4 {
		return nil, fmt.Errorf("sdfx: convex solid needs at least 4 planes, got %d", len(planes))
	}
	// Leave room around the surface so the outermost cells see a sign change.
	return &Convex{planes: planes, bb: bb.ScaleAboutCenter(1.05)}, nil
}

// FromARB returns the SDF of a prepared ARB.
func FromARB(s *arb.Solid) (*Convex, error) {
	c, err := NewConvex(s.Planes(), s.Bounds().Box)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}
	return c, nil
}

// Evaluate returns the signed distance estimate at p, negative inside.
func (c *Convex) Evaluate(p v3.Vec) float64 {
	d := c.planes[0].Dist(p)
	for _, pl := range c.planes[1:] {
		if dd := pl.Dist(p); dd > d {
			d = dd
		}
	}
	return d
}

// BoundingBox returns the box marching cubes samples.
func (c *Convex) BoundingBox() sdf.Box3 {
	return c.bb
}

// ToMesh converts an SDF to a triangle mesh using marching cubes.
func ToMesh(s sdf.SDF3, cells int) (*kernel.Mesh, error) {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	numVerts := len(triangles) * 3
	mesh := &kernel.Mesh{
		Vertices: make([]float32, 0, numVerts*3),
		Normals:  make([]float32, 0, numVerts*3),
		Indices:  make([]uint32, 0, numVerts),
	}

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			mesh.Vertices = append(mesh.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			mesh.Normals = append(mesh.Normals, nx, ny, nz)
			mesh.Indices = append(mesh.Indices, uint32(i*3+j))
		}
	}

	return mesh, nil
}

// Triangles converts a kernel mesh back to sdfx triangles.
func Triangles(m *kernel.Mesh) []*sdf.Triangle3 {
	n := m.TriangleCount()
	out := make([]*sdf.Triangle3, 0, n)
	for i := 0; i < n; i++ {
		t := m.Triangle(i)
		out = append(out, &sdf.Triangle3{t[0], t[1], t[2]})
	}
	return out
}

// SaveSTL writes the meshes as one binary STL file.
func SaveSTL(path string, meshes ...*kernel.Mesh) error {
	var tris []*sdf.Triangle3
	for _, m := range meshes {
		tris = append(tris, Triangles(m)...)
	}
	if len(tris) == 0 {
		return fmt.Errorf("sdfx: nothing to write to %s", path)
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("sdfx: save %s: %w", path, err)
	}
	return nil
}
