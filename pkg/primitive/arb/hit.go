package arb

import (
	"fmt"
	"io"

	"github.com/chazu/csgray/pkg/kernel"
)

// Norm fills in the hit point and the outward normal of the hit face.
func (s *Solid) Norm(hit *kernel.Hit, r kernel.Ray) {
	hit.Point = r.At(hit.Dist)
	hit.Normal = s.faces[hit.Surf].N
}

// Curve reports zero curvature; every ARB face is flat.
func (s *Solid) Curve(hit *kernel.Hit) kernel.Curvature {
	return kernel.FlatCurve(hit.Normal)
}

// UV maps a hit to face coordinates. U runs along the face's first edge
// and V across it, both 0..1 over the face's extent. Out of range values
// are logged, and negative ones are mirrored back to positive.
func (s *Solid) UV(app kernel.Application, hit *kernel.Hit) (kernel.UVCoord, error) {
	basis, err := s.uvBasis()
	if err != nil {
		return kernel.UVCoord{}, err
	}
	if hit.Surf < 0 || hit.Surf >= len(basis) {
		return kernel.UVCoord{}, fmt.Errorf("arb(%s): uv: face %d out of range", s.name, hit.Surf)
	}
	o := &basis[hit.Surf]

	pa := hit.Point.Sub(o.Orig)
	uv := kernel.UVCoord{
		U: pa.Dot(o.U),
		V: 1.0 - pa.Dot(o.V),
	}
	if uv.U < 0 || uv.V < 0 || uv.U > 1 || uv.V > 1 {
		s.opts.Log().Printf("arb(%s): bad uv=%g,%g", s.name, uv.U, uv.V)
		if uv.U < 0 {
			uv.U = -uv.U
		}
		if uv.V < 0 {
			uv.V = -uv.V
		}
	}

	r := app.RBeam + app.Diverge*hit.Dist
	uv.DU = r * o.ULen
	uv.DV = r * o.VLen
	return uv, nil
}

// uvBasis returns the per-face UV basis, building it on first use. The
// vertices are re-imported from the stored record because Prep does not
// keep them.
func (s *Solid) uvBasis() ([]uvFace, error) {
	if p := s.uv.Load(); p != nil {
		return *p, nil
	}
	if s.faces == nil {
		return nil, fmt.Errorf("arb(%s): uv on freed solid", s.name)
	}

	s.uvMu.Lock()
	defer s.uvMu.Unlock()

	// Another caller may have finished the setup while we waited.
	if p := s.uv.Load(); p != nil {
		return *p, nil
	}

	in, err := s.Internal()
	if err != nil {
		return nil, fmt.Errorf("arb(%s): uv setup: %w", s.name, err)
	}
	ps, err := makePlanes(s.name, in, true, &s.opts)
	if err != nil {
		return nil, fmt.Errorf("arb(%s): uv setup: %w", s.name, err)
	}
	if len(ps.uv) != len(s.faces) {
		return nil, fmt.Errorf("arb(%s): uv setup produced %d faces, prep had %d", s.name, len(ps.uv), len(s.faces))
	}

	s.uvSetups.Add(1)
	s.uv.Store(&ps.uv)
	return ps.uv, nil
}

// UVSetups returns how many times the UV basis has been built.
func (s *Solid) UVSetups() int64 {
	return s.uvSetups.Load()
}

// Plot re-imports the vertices and returns the wireframe.
func (s *Solid) Plot() kernel.VList {
	in, err := s.Internal()
	if err != nil {
		s.opts.Log().Printf("arb(%s): plot: %v", s.name, err)
		return nil
	}
	return in.Plot()
}

// Print writes the faces, and the UV basis if built, to w.
func (s *Solid) Print(w io.Writer) {
	if len(s.faces) == 0 {
		fmt.Fprintf(w, "arb(%s):  no faces\n", s.name)
		return
	}
	var basis []uvFace
	if p := s.uv.Load(); p != nil {
		basis = *p
	}

	fmt.Fprintf(w, "%d faces:\n", len(s.faces))
	for i, f := range s.faces {
		fmt.Fprintf(w, "A (%g, %g, %g)\n", f.A.X, f.A.Y, f.A.Z)
		fmt.Fprintf(w, "Peqn (%g, %g, %g, %g)\n", f.N.X, f.N.Y, f.N.Z, f.D)
		if basis != nil {
			o := basis[i]
			fmt.Fprintf(w, "UVorig (%g, %g, %g)\n", o.Orig.X, o.Orig.Y, o.Orig.Z)
			fmt.Fprintf(w, "U (%g, %g, %g)\n", o.U.X, o.U.Y, o.U.Z)
			fmt.Fprintf(w, "V (%g, %g, %g)\n", o.V.X, o.V.Y, o.V.Z)
			fmt.Fprintf(w, "Ulen = %g, Vlen = %g\n", o.ULen, o.VLen)
		}
	}
}

// Tess re-imports the vertices and triangulates each face. Faces are
// wound counter-clockwise seen from outside.
func (s *Solid) Tess() (*kernel.Mesh, error) {
	in, err := s.Internal()
	if err != nil {
		return nil, err
	}
	m, err := Tess(s.name, in, s.opts.Tol)
	if err != nil {
		return nil, err
	}
	m.SolidName = s.name
	return m, nil
}

// Tess triangulates an ARB as a fan per face.
func Tess(name string, in *Internal, tol kernel.Tol) (*kernel.Mesh, error) {
	opts := kernel.Options{Tol: tol, Logger: discard{}}
	ps, err := makePlanes(name, in, false, &opts)
	if err != nil {
		return nil, err
	}

	m := &kernel.Mesh{SolidName: name}
	for _, f := range ps.faces {
		idx := make([]int, f.npts)
		for k := 0; k < f.npts; k++ {
			if f.clockwise {
				idx[k] = f.pindex[k]
			} else {
				idx[k] = f.pindex[f.npts-1-k]
			}
		}
		for k := 1; k+1 < len(idx); k++ {
			m.AddTriangle(in.Pt[idx[0]], in.Pt[idx[k]], in.Pt[idx[k+1]])
		}
	}
	return m, nil
}

// discard drops tessellation-time diagnostics; Prep already reported them.
type discard struct{}

func (discard) Printf(string, ...interface{}) {}
