package ars

import (
	"fmt"
	"io"

	"github.com/chazu/csgray/pkg/db"
	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/vmath"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

// MaxHits caps the number of triangle hits recorded per ray.
const MaxHits = 12

// facet is one triangle A, B, C. WN = BA x CA points into the solid and is
// not unit length; N is the unit outward normal.
type facet struct {
	A  v3.Vec
	BA v3.Vec
	CA v3.Vec
	WN v3.Vec
	N  v3.Vec
}

// newFacet builds a facet, reporting false when any edge or the area is
// below tol.
func newFacet(a, b, c v3.Vec, tol float64) (facet, bool) {
	f := facet{
		A:  a,
		BA: b.Sub(a),
		CA: c.Sub(a),
	}
	f.WN = f.BA.Cross(f.CA)

	if vmath.NearZero(f.BA.Length(), tol) ||
		vmath.NearZero(f.CA.Length(), tol) ||
		vmath.NearZero(b.Sub(c).Length(), tol) ||
		vmath.NearZero(f.WN.Length(), tol) {
		return facet{}, false
	}
	f.N, _ = vmath.Unitize(f.WN.Neg())
	return f, true
}

// Compile-time interface checks.
var (
	_ kernel.Solid       = (*Solid)(nil)
	_ kernel.Tessellator = (*Solid)(nil)
)

// Solid is a prepared ARS: the list of non-degenerate triangles, newest
// first. A solid with no triangles is valid and misses every ray.
type Solid struct {
	name   string
	ext    db.External
	mat    mgl64.Mat4
	opts   kernel.Options
	tris   []facet
	bounds vmath.Bounds
}

// Prep imports an ARS and stitches adjacent curves into triangles with
// inward-facing WN.
func Prep(name string, ext db.External, mat mgl64.Mat4, opts kernel.Options) (*Solid, error) {
	in, err := Import(ext, mat)
	if err != nil {
		return nil, fmt.Errorf("ars(%s): %w", name, err)
	}

	var tris []facet
	add := func(a, b, c v3.Vec) {
		f, ok := newFacet(a, b, c, opts.Tol.Facet)
		if !ok {
			opts.Debugf("ars(%s): degenerate facet", name)
			return
		}
		tris = append(tris, f)
	}
	for i := 0; i < in.NCurves-1; i++ {
		c0, c1 := in.Curves[i], in.Curves[i+1]
		for j := 0; j < in.PtsPerCurve; j++ {
			add(c0[j], c1[j+1], c0[j+1])
			add(c1[j], c1[j+1], c0[j])
		}
	}
	// Newest first.
	for l, r := 0, len(tris)-1; l < r; l, r = l+1, r-1 {
		tris[l], tris[r] = tris[r], tris[l]
	}

	return &Solid{
		name:   name,
		ext:    append(db.External(nil), ext...),
		mat:    mat,
		opts:   opts,
		tris:   tris,
		bounds: in.Bounds(),
	}, nil
}

// Name returns the solid's name.
func (s *Solid) Name() string { return s.name }

// Bounds returns the bounding box and spheres of the curve points.
func (s *Solid) Bounds() vmath.Bounds { return s.bounds }

// NumTriangles returns the number of triangles kept at prep.
func (s *Solid) NumTriangles() int { return len(s.tris) }

// Internal re-imports the solid's curves.
func (s *Solid) Internal() (*Internal, error) {
	return Import(s.ext, s.mat)
}

// Free drops the triangles. Later shots miss.
func (s *Solid) Free() {
	s.tris = nil
}

// Print writes every triangle to w.
func (s *Solid) Print(w io.Writer) {
	if len(s.tris) == 0 {
		fmt.Fprintf(w, "ars(%s):  no faces\n", s.name)
		return
	}
	pv := func(label string, v v3.Vec) {
		fmt.Fprintf(w, "%s (%g, %g, %g)\n", label, v.X, v.Y, v.Z)
	}
	for _, f := range s.tris {
		pv("A", f.A)
		pv("B-A", f.BA)
		pv("C-A", f.CA)
		pv("BA x CA", f.WN)
		pv("Normal", f.N)
		fmt.Fprintln(w)
	}
}
