package ars

import (
	"fmt"

	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/vmath"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Norm fills in the hit point and the outward normal of the hit triangle.
func (s *Solid) Norm(hit *kernel.Hit, r kernel.Ray) {
	hit.Point = r.At(hit.Dist)
	hit.Normal = s.tris[hit.Surf].N
}

// Curve reports zero curvature.
func (s *Solid) Curve(hit *kernel.Hit) kernel.Curvature {
	return kernel.FlatCurve(hit.Normal)
}

// UV maps a hit onto the triangle's edges: u along B-A and v, flipped,
// along C-A. Negative values are mirrored.
func (s *Solid) UV(app kernel.Application, hit *kernel.Hit) (kernel.UVCoord, error) {
	if hit.Surf < 0 || hit.Surf >= len(s.tris) {
		return kernel.UVCoord{}, fmt.Errorf("ars(%s): uv: triangle %d out of range", s.name, hit.Surf)
	}
	f := &s.tris[hit.Surf]

	xxlen := f.BA.Length()
	yylen := f.CA.Length()

	pa := hit.Point.Sub(f.A)
	uv := kernel.UVCoord{
		U: pa.Dot(f.BA) * xxlen,
		V: 1.0 - pa.Dot(f.CA)*yylen,
	}
	if uv.U < 0 || uv.V < 0 {
		s.opts.Debugf("ars(%s): bad uv=%g,%g", s.name, uv.U, uv.V)
		if uv.U < 0 {
			uv.U = -uv.U
		}
		if uv.V < 0 {
			uv.V = -uv.V
		}
	}

	r := app.RBeam + app.Diverge*hit.Dist
	uv.DU = r * xxlen
	uv.DV = r * yylen
	return uv, nil
}

// Plot re-imports the curves and returns the wireframe.
func (s *Solid) Plot() kernel.VList {
	in, err := s.Internal()
	if err != nil {
		s.opts.Log().Printf("ars(%s): plot: %v", s.name, err)
		return nil
	}
	return in.Plot()
}

// Tess re-imports the curves and triangulates them.
func (s *Solid) Tess() (*kernel.Mesh, error) {
	in, err := s.Internal()
	if err != nil {
		return nil, err
	}
	return Tess(s.name, in, s.opts.Tol.DistSq), nil
}

// Tess stitches adjacent curves into triangles, dropping any whose corners
// are closer than sqrt(tolSq). Triangles are wound counter-clockwise seen
// from outside.
func Tess(name string, in *Internal, tolSq float64) *kernel.Mesh {
	m := &kernel.Mesh{SolidName: name}
	add := func(a, b, c v3.Vec) {
		if vmath.DistinctSq(a, b, c, tolSq) {
			// a, b, c run clockwise from outside.
			m.AddTriangle(a, c, b)
		}
	}
	for i := 0; i < in.NCurves-1; i++ {
		c0, c1 := in.Curves[i], in.Curves[i+1]
		for j := 0; j < in.PtsPerCurve; j++ {
			add(c0[j], c1[j+1], c0[j+1])
			add(c1[j], c1[j+1], c0[j])
		}
	}
	return m
}
