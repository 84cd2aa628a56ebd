package sdfx

import (
	"bytes"
	"log"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/primitive/arb"
	"github.com/chazu/csgray/pkg/vmath"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func prepCube(t *testing.T, half float64) *arb.Solid {
	t.Helper()
	h := half
	in := &arb.Internal{Pt: [8]v3.Vec{
		{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h},
		{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h},
	}}
	opts := kernel.DefaultOptions()
	opts.Logger = log.New(&bytes.Buffer{}, "", 0)
	s, err := arb.Prep("cube", in.Export("cube", 1), vmath.Identity(), opts)
	if err != nil {
		t.Fatalf("prep: %v", err)
	}
	return s
}

func TestConvexEvaluate(t *testing.T) {
	c, err := FromARB(prepCube(t, 0.5))
	if err != nil {
		t.Fatalf("FromARB: %v", err)
	}

	tests := []struct {
		p    v3.Vec
		want float64
	}{
		{v3.Vec{}, -0.5},
		{v3.Vec{X: 0.5}, 0},
		{v3.Vec{X: 2}, 1.5},
		{v3.Vec{Y: 0.25, Z: -0.4}, -0.1},
	}
	for _, tt := range tests {
		if got := c.Evaluate(tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Evaluate(%v) = %g, want %g", tt.p, got, tt.want)
		}
	}

	bb := c.BoundingBox()
	if bb.Min.X >= -0.5 || bb.Max.Z <= 0.5 {
		t.Errorf("bounding box %v does not enclose the cube with margin", bb)
	}
}

func TestNewConvexTooFewPlanes(t *testing.T) {
	planes := prepCube(t, 0.5).Planes()[:3]
	if _, err := NewConvex(planes, prepCube(t, 0.5).Bounds().Box); err == nil {
		t.Fatal("expected error for three planes")
	}
}

func TestToMeshCube(t *testing.T) {
	c, err := FromARB(prepCube(t, 0.5))
	if err != nil {
		t.Fatalf("FromARB: %v", err)
	}
	mesh, err := ToMesh(c, 20)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != mesh.TriangleCount()*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), mesh.TriangleCount()*3)
	}

	// Every vertex lies on the surface to within a cell.
	cell := 1.05 / 20
	for i := 0; i < mesh.VertexCount(); i++ {
		p := v3.Vec{
			X: float64(mesh.Vertices[3*i]),
			Y: float64(mesh.Vertices[3*i+1]),
			Z: float64(mesh.Vertices[3*i+2]),
		}
		if d := c.Evaluate(p); math.Abs(d) > cell {
			t.Fatalf("vertex %d at %v is %g from the surface", i, p, d)
		}
	}
	t.Logf("cube triangle count: %d", mesh.TriangleCount())
}

func TestTriangles(t *testing.T) {
	var m kernel.Mesh
	a, b, c := v3.Vec{}, v3.Vec{X: 1}, v3.Vec{Y: 1}
	m.AddTriangle(a, b, c)

	tris := Triangles(&m)
	if len(tris) != 1 {
		t.Fatalf("got %d triangles, want 1", len(tris))
	}
	if tris[0][0] != a || tris[0][1] != b || tris[0][2] != c {
		t.Errorf("triangle = %v", *tris[0])
	}
	if n := tris[0].Normal(); math.Abs(n.Z-1) > 1e-12 {
		t.Errorf("normal = %v, want +z", n)
	}
}

func TestSaveSTL(t *testing.T) {
	var m1, m2 kernel.Mesh
	m1.AddTriangle(v3.Vec{}, v3.Vec{X: 1}, v3.Vec{Y: 1})
	m2.AddTriangle(v3.Vec{Z: 1}, v3.Vec{X: 1, Z: 1}, v3.Vec{Y: 1, Z: 1})
	m2.AddTriangle(v3.Vec{Z: 2}, v3.Vec{X: 1, Z: 2}, v3.Vec{Y: 1, Z: 2})

	path := filepath.Join(t.TempDir(), "out.stl")
	if err := SaveSTL(path, &m1, &m2); err != nil {
		t.Fatalf("SaveSTL: %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	// Binary STL: 80 byte header, triangle count, 50 bytes per triangle.
	if want := int64(84 + 50*3); fi.Size() != want {
		t.Errorf("file size = %d, want %d", fi.Size(), want)
	}
}

func TestSaveSTLEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.stl")
	if err := SaveSTL(path, &kernel.Mesh{}); err == nil {
		t.Fatal("expected error for empty mesh")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no file, stat err = %v", err)
	}
}
