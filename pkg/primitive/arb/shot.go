package arb

import (
	"math"

	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/vmath"
)

// Shot intersects a ray with the ARB. Each face either narrows the entry
// distance (ray heading into the plane) or the exit distance (heading out
// of it); the ray misses as soon as entry passes exit. Faces are visited
// from last to first, which fixes the face index reported on ties.
func (s *Solid) Shot(r kernel.Ray) (kernel.Seg, bool) {
	if len(s.faces) == 0 {
		return kernel.Seg{}, false
	}

	in := math.Inf(-1)
	out := math.Inf(1)
	iplane, oplane := -1, -1

	for j := len(s.faces) - 1; j >= 0; j-- {
		f := &s.faces[j]
		dxbdn := f.N.Dot(r.Origin) - f.D
		dn := -f.N.Dot(r.Dir)

		switch {
		case dn < -vmath.SqrtSmall:
			// Exit: out = min(out, t).
			if t := dxbdn / dn; out > t {
				out = t
				oplane = j
			}
		case dn > vmath.SqrtSmall:
			// Entry: in = max(in, t).
			if t := dxbdn / dn; in < t {
				in = t
				iplane = j
			}
		default:
			// Parallel to the plane; outside it means outside the solid.
			if dxbdn > vmath.SqrtSmall {
				return kernel.Seg{}, false
			}
		}
		if in > out {
			return kernel.Seg{}, false
		}
	}

	if iplane == -1 || oplane == -1 {
		s.opts.Log().Printf("arb(%s): 1 hit => MISS", s.name)
		return kernel.Seg{}, false
	}
	if in >= out || out >= math.Inf(1) {
		return kernel.Seg{}, false
	}

	return kernel.Seg{
		In:  kernel.Hit{Dist: in, Surf: iplane},
		Out: kernel.Hit{Dist: out, Surf: oplane},
	}, true
}

// Shoot is Shot in the form of kernel.Solid.
func (s *Solid) Shoot(r kernel.Ray) []kernel.Seg {
	seg, ok := s.Shot(r)
	if !ok {
		return nil
	}
	return []kernel.Seg{seg}
}

// VShot intersects rays[i] with solids[i] for every i, face by face across
// the whole batch. A nil solid skips its pair. The results match Shot for
// each pair: hit[i] reports whether segs[i] is valid.
func VShot(solids []*Solid, rays []kernel.Ray) (segs []kernel.Seg, hit []bool) {
	n := len(solids)
	if len(rays) < n {
		n = len(rays)
	}
	segs = make([]kernel.Seg, n)
	hit = make([]bool, n)

	maxFaces := 0
	for i := 0; i < n; i++ {
		if solids[i] == nil || len(solids[i].faces) == 0 {
			continue
		}
		hit[i] = true
		segs[i].In = kernel.Hit{Dist: math.Inf(-1), Surf: -1}
		segs[i].Out = kernel.Hit{Dist: math.Inf(1), Surf: -1}
		if nf := len(solids[i].faces); nf > maxFaces {
			maxFaces = nf
		}
	}

	for j := maxFaces - 1; j >= 0; j-- {
		for i := 0; i < n; i++ {
			if !hit[i] || len(solids[i].faces) <= j {
				continue
			}
			f := &solids[i].faces[j]
			r := &rays[i]
			seg := &segs[i]

			dxbdn := f.N.Dot(r.Origin) - f.D
			dn := -f.N.Dot(r.Dir)
			switch {
			case dn < -vmath.SqrtSmall:
				if t := dxbdn / dn; seg.Out.Dist > t {
					seg.Out.Dist = t
					seg.Out.Surf = j
				}
			case dn > vmath.SqrtSmall:
				if t := dxbdn / dn; seg.In.Dist < t {
					seg.In.Dist = t
					seg.In.Surf = j
				}
			default:
				if dxbdn > vmath.SqrtSmall {
					hit[i] = false
					continue
				}
			}
			if seg.In.Dist > seg.Out.Dist {
				hit[i] = false
			}
		}
	}

	for i := 0; i < n; i++ {
		if !hit[i] {
			segs[i] = kernel.Seg{}
			continue
		}
		seg := &segs[i]
		if seg.In.Surf == -1 || seg.Out.Surf == -1 ||
			seg.In.Dist >= seg.Out.Dist || seg.Out.Dist >= math.Inf(1) {
			hit[i] = false
			segs[i] = kernel.Seg{}
		}
	}
	return segs, hit
}
