package arb

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/chazu/csgray/pkg/db"
	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/vmath"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

// faceTemplate lists the vertex indices of one candidate face. The
// indices run clockwise seen from outside.
type faceTemplate struct {
	title string
	sub   [4]int
}

var templates = [6]faceTemplate{
	{"1234", [4]int{3, 2, 1, 0}}, // bottom
	{"8765", [4]int{4, 5, 6, 7}}, // top
	{"1485", [4]int{4, 7, 3, 0}},
	{"2673", [4]int{2, 6, 5, 1}},
	{"1562", [4]int{1, 5, 4, 0}},
	{"4378", [4]int{7, 6, 2, 3}},
}

// face is one bounding plane, N·p = D with N the outward unit normal.
type face struct {
	A v3.Vec
	N v3.Vec
	D float64

	npts      int
	pindex    [4]int // accepted vertex indices, template order
	clockwise bool   // N was flipped to face away from the centroid
}

// uvFace is the texture basis of one face. After prep ULen and VLen hold
// the inverse extents, and U and V are scaled by them so that P·U runs
// 0..1 across the face.
type uvFace struct {
	Orig       v3.Vec
	U, V       v3.Vec
	ULen, VLen float64
}

// planeSet is the output of plane construction.
type planeSet struct {
	faces []face
	uv    []uvFace
}

// faceBuilder accumulates the points of one face.
type faceBuilder struct {
	f face
	o uvFace
	u v3.Vec // unit B-A, kept even when no UV basis is wanted
}

// planeMaker builds the faces of one ARB.
type planeMaker struct {
	name   string
	center v3.Vec
	doUV   bool
	opts   *kernel.Options
}

// extend grows a basis extent to include a point at signed offset f along
// axis, moving the origin when f is negative.
func extend(orig *v3.Vec, length *float64, axis v3.Vec, f float64) {
	if f > *length {
		*length = f
	} else if f < 0 {
		*orig = vmath.Join(*orig, f, axis)
		*length -= f
	}
}

// addPoint offers the ptno'th distinct point of a face. It reports whether
// the point was accepted. The first three accepted points define the
// plane; later ones are checked for coplanarity.
func (pm *planeMaker) addPoint(fb *faceBuilder, pt v3.Vec, title string, ptno int) bool {
	switch ptno {
	case 0:
		fb.f.A = pt
		if pm.doUV {
			fb.o.Orig = pt
		}
		return true

	case 1:
		u, f := vmath.Unitize(pt.Sub(fb.f.A))
		if vmath.NearZero(f, vmath.SqrtSmall) {
			return false
		}
		fb.u = u
		fb.o.U = u
		fb.o.ULen = f
		return true

	case 2:
		pa := pt.Sub(fb.f.A)
		// Points are given clockwise, so the cross product terms are
		// reversed.
		n, f := vmath.Unitize(pa.Cross(fb.u))
		if vmath.NearZero(f, pm.opts.Tol.Dot) {
			return false
		}
		fb.f.N = n

		if pm.doUV {
			work := n.Cross(fb.u).Normalize()
			f = work.Dot(pa)
			fb.o.V, fb.o.VLen = vmath.Unitize(work.MulScalar(f))

			pa = pt.Sub(fb.o.Orig)
			extend(&fb.o.Orig, &fb.o.ULen, fb.o.U, pa.Dot(fb.o.U))
		}

		// Flip the normal if it points toward the centroid.
		if fb.f.A.Sub(pm.center).Dot(fb.f.N) < 0 {
			fb.f.N = fb.f.N.Neg()
			fb.f.clockwise = true
		}
		fb.f.D = fb.f.N.Dot(fb.f.A)
		return true

	default:
		if pm.doUV {
			pa := pt.Sub(fb.o.Orig)
			extend(&fb.o.Orig, &fb.o.ULen, fb.o.U, pa.Dot(fb.o.U))
			extend(&fb.o.Orig, &fb.o.VLen, fb.o.V, pa.Dot(fb.o.V))
		}

		dir := pt.Sub(fb.f.A).Normalize()
		f := fb.f.N.Dot(dir)
		if !vmath.NearZero(f, pm.opts.Tol.Dot) {
			pm.opts.Log().Printf("arb(%s): face %s[%d] non-planar, dot=%g", pm.name, title, ptno, f)
			if pm.opts.Conservative {
				return false
			}
		}
		return true
	}
}

// makePlanes computes the faces of an ARB. Vertices closer than
// sqrt(Tol.DistSq) are merged first, then each face template contributes
// a face if at least three of its merged vertices are usable.
func makePlanes(name string, in *Internal, doUV bool, opts *kernel.Options) (*planeSet, error) {
	pm := &planeMaker{
		name:   name,
		center: in.Centroid(),
		doUV:   doUV,
		opts:   opts,
	}

	// equiv[i] is the representative of the closest-indexed earlier
	// vertex within tolerance of vertex i, or i itself.
	var equiv [8]int
	for i := 1; i < 8; i++ {
		equiv[i] = i
		for j := i - 1; j >= 0; j-- {
			if in.Pt[i].Sub(in.Pt[j]).Length2() < opts.Tol.DistSq {
				equiv[i] = equiv[j]
				break
			}
		}
	}
	opts.Debugf("arb(%s) equiv = %v", name, equiv)

	ps := &planeSet{}
	for _, tmpl := range templates {
		fb := &faceBuilder{}
		npts := 0
	points:
		for _, sub := range tmpl.sub {
			idx := equiv[sub]
			for k := npts - 1; k >= 0; k-- {
				if fb.f.pindex[k] == idx {
					continue points
				}
			}
			if pm.addPoint(fb, in.Pt[idx], tmpl.title, npts) {
				fb.f.pindex[npts] = idx
				npts++
			}
		}
		if npts < 3 {
			opts.Debugf("arb(%s): face %s dropped, %d points", name, tmpl.title, npts)
			continue
		}
		fb.f.npts = npts

		if doUV {
			fb.o.ULen = 1 / fb.o.ULen
			fb.o.VLen = 1 / fb.o.VLen
			fb.o.U = fb.o.U.MulScalar(fb.o.ULen)
			fb.o.V = fb.o.V.MulScalar(fb.o.VLen)
			ps.uv = append(ps.uv, fb.o)
		}
		ps.faces = append(ps.faces, fb.f)
	}

	if len(ps.faces) < 4 || len(ps.faces) > 6 {
		opts.Log().Printf("arb(%s): only %d faces present", name, len(ps.faces))
		return nil, &kernel.DegenerateSolidError{
			Name:   name,
			Reason: fmt.Sprintf("%d usable faces, need 4 to 6", len(ps.faces)),
		}
	}
	return ps, nil
}

// -----------------------------------------------------------------------
// Solid
// -----------------------------------------------------------------------

// Compile-time interface checks.
var (
	_ kernel.Solid       = (*Solid)(nil)
	_ kernel.Tessellator = (*Solid)(nil)
)

// Solid is a prepared ARB. The face list is fixed at Prep; the UV basis
// is built at most once, either during Prep or on the first UV query.
type Solid struct {
	name   string
	ext    db.External
	mat    mgl64.Mat4
	opts   kernel.Options
	faces  []face
	bounds vmath.Bounds

	uvMu     sync.Mutex
	uv       atomic.Pointer[[]uvFace]
	uvSetups atomic.Int64
}

// Prep imports an ARB record and builds its bounding planes. It returns an
// ImportError for an undecodable record and a DegenerateSolidError when
// fewer than four faces survive.
func Prep(name string, ext db.External, mat mgl64.Mat4, opts kernel.Options) (*Solid, error) {
	in, err := Import(ext, mat)
	if err != nil {
		return nil, fmt.Errorf("arb(%s): %w", name, err)
	}

	ps, err := makePlanes(name, in, opts.UVWanted, &opts)
	if err != nil {
		return nil, err
	}

	s := &Solid{
		name:   name,
		ext:    append(db.External(nil), ext...),
		mat:    mat,
		opts:   opts,
		faces:  ps.faces,
		bounds: vmath.BoundsOf(in.Pt[:]),
	}
	if opts.UVWanted {
		s.uvSetups.Add(1)
		s.uv.Store(&ps.uv)
	}
	return s, nil
}

// Name returns the solid's name.
func (s *Solid) Name() string { return s.name }

// Bounds returns the bounding box and spheres of the eight vertices.
func (s *Solid) Bounds() vmath.Bounds { return s.bounds }

// NumFaces returns the number of bounding planes.
func (s *Solid) NumFaces() int { return len(s.faces) }

// Internal re-imports the solid's vertices.
func (s *Solid) Internal() (*Internal, error) {
	return Import(s.ext, s.mat)
}

// Free drops the faces and UV basis. Later shots miss.
func (s *Solid) Free() {
	s.faces = nil
	s.uv.Store(nil)
}

// Planes returns the bounding planes in face order.
func (s *Solid) Planes() []vmath.Plane {
	pl := make([]vmath.Plane, len(s.faces))
	for i, f := range s.faces {
		pl[i] = vmath.Plane{N: f.N, D: f.D}
	}
	return pl
}
