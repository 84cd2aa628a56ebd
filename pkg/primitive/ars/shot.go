package ars

import (
	"cmp"
	"math"
	"slices"

	"github.com/chazu/csgray/pkg/kernel"
)

// Shot intersects a ray with every triangle and pairs the sorted hits into
// segments, near to far. An odd number of hits is a miss. A pair whose
// entry does not face the ray, or whose exit does, is logged; it becomes a
// miss only with Options.Conservative.
func (s *Solid) Shot(r kernel.Ray) ([]kernel.Seg, bool) {
	hits := make([]kernel.Hit, 0, MaxHits)

	for i := range s.tris {
		f := &s.tris[i]

		// WN points inward, so dn > 0 when entering.
		dn := f.WN.Dot(r.Dir)
		s.opts.Debugf("N.Dir=%g", dn)
		absDN := math.Abs(dn)
		if absDN < 1.0e-10 {
			continue
		}
		wxb := f.A.Sub(r.Origin)
		xp := wxb.Cross(r.Dir)

		alpha := f.CA.Dot(xp)
		if dn < 0 {
			alpha = -alpha
		}
		if alpha < 0 || alpha > absDN {
			continue
		}
		beta := f.BA.Dot(xp)
		if dn > 0 {
			beta = -beta
		}
		if beta < 0 || beta > absDN {
			continue
		}
		if alpha+beta > absDN {
			continue
		}

		ds := wxb.Dot(f.WN)
		k := ds / dn
		s.opts.Debugf("ars: dist k=%g, ds=%g, dn=%g", k, ds, dn)

		hits = append(hits, kernel.Hit{Dist: k, Surf: i, DN: dn})
		if len(hits) >= MaxHits {
			s.opts.Log().Printf("ars(%s): too many hits", s.name)
			break
		}
	}
	if len(hits) == 0 {
		return nil, false
	}

	slices.SortStableFunc(hits, func(a, b kernel.Hit) int {
		return cmp.Compare(a.Dist, b.Dist)
	})

	if len(hits)%2 != 0 {
		s.opts.Log().Printf("ars(%s): %d hits odd, skipping solid", s.name, len(hits))
		for _, h := range hits {
			s.opts.Log().Printf("k=%g dn=%g", h.Dist, h.DN)
		}
		return nil, false
	}

	for i := 0; i < len(hits); i += 2 {
		if hits[i].DN >= 0 && hits[i+1].DN <= 0 {
			continue
		}
		s.opts.Log().Printf("ars(%s): in/out error", s.name)
		for j := len(hits) - 1; j >= 0; j-- {
			dir := "Out"
			if hits[j].DN > 0 {
				dir = " In"
			}
			s.opts.Log().Printf("%d %s dist=%g dn=%g", j, dir, hits[j].Dist, hits[j].DN)
		}
		if s.opts.Conservative {
			return nil, false
		}
		break
	}

	segs := make([]kernel.Seg, 0, len(hits)/2)
	for i := 0; i < len(hits); i += 2 {
		segs = append(segs, kernel.Seg{In: hits[i], Out: hits[i+1]})
	}
	return segs, true
}

// Shoot is Shot in the form of kernel.Solid.
func (s *Solid) Shoot(r kernel.Ray) []kernel.Seg {
	segs, _ := s.Shot(r)
	return segs
}
