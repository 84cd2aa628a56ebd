// Package vmath holds the small amount of vector and matrix arithmetic the
// ray-intersection kernel needs on top of sdfx vectors and mathgl matrices.
package vmath

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const (
	// Small is the general "effectively zero" magnitude.
	Small = 1.0e-20
	// SqrtSmall is the smallest magnitude treated as non-parallel when
	// comparing a ray direction against a plane.
	SqrtSmall = 1.0e-39
)

// NearZero reports whether v lies strictly within (-tol, tol).
func NearZero(v, tol float64) bool {
	return v > -tol && v < tol
}

// Unitize scales v to unit length and returns the original magnitude.
// A zero vector is returned unchanged.
func Unitize(v v3.Vec) (v3.Vec, float64) {
	l := v.Length()
	if l == 0 {
		return v, 0
	}
	return v.MulScalar(1 / l), l
}

// Join returns a + s*b.
func Join(a v3.Vec, s float64, b v3.Vec) v3.Vec {
	return a.Add(b.MulScalar(s))
}

// Ortho returns a unit vector perpendicular to n. The component of n with
// the smallest magnitude is zeroed and the remaining two are swapped.
func Ortho(n v3.Vec) v3.Vec {
	c := [3]float64{n.X, n.Y, n.Z}

	i := 0
	f := math.Abs(c[0])
	if math.Abs(c[1]) < f {
		f = math.Abs(c[1])
		i = 1
	}
	if math.Abs(c[2]) < f {
		i = 2
	}
	j := (i + 1) % 3
	k := (i + 2) % 3

	f = math.Hypot(c[j], c[k])
	if NearZero(f, Small) {
		return v3.Vec{}
	}
	f = 1 / f

	var out [3]float64
	out[j] = -c[k] * f
	out[k] = c[j] * f
	return v3.Vec{X: out[0], Y: out[1], Z: out[2]}
}

// DistinctSq reports whether the three points are pairwise separated by at
// least sqrt(tolSq).
func DistinctSq(a, b, c v3.Vec, tolSq float64) bool {
	if a.Sub(b).Length2() < tolSq {
		return false
	}
	if b.Sub(c).Length2() < tolSq {
		return false
	}
	if a.Sub(c).Length2() < tolSq {
		return false
	}
	return true
}

// -----------------------------------------------------------------------
// Bounds
// -----------------------------------------------------------------------

// Bounds is an axis-aligned box with its bounding spheres. ARadius is the
// largest half extent and BRadius the half diagonal.
type Bounds struct {
	Box     sdf.Box3
	Center  v3.Vec
	ARadius float64
	BRadius float64
}

// BoundsOf computes the bounds of a point set. It returns the zero value
// for an empty set.
func BoundsOf(pts []v3.Vec) Bounds {
	if len(pts) == 0 {
		return Bounds{}
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}

	center := lo.Add(hi).MulScalar(0.5)
	half := hi.Sub(lo).MulScalar(0.5)

	f := half.X
	if half.Y > f {
		f = half.Y
	}
	if half.Z > f {
		f = half.Z
	}

	return Bounds{
		Box:     sdf.Box3{Min: lo, Max: hi},
		Center:  center,
		ARadius: f,
		BRadius: half.Length(),
	}
}

// Plane is the half-space boundary N·p = D with N unit length and pointing
// out of the half-space.
type Plane struct {
	N v3.Vec
	D float64
}

// Dist returns the signed distance of p from the plane, positive outside.
func (pl Plane) Dist(p v3.Vec) float64 {
	return pl.N.Dot(p) - pl.D
}

// Union returns the smallest bounds containing both a and b. The zero
// Bounds is treated as empty.
func Union(a, b Bounds) Bounds {
	if a == (Bounds{}) {
		return b
	}
	if b == (Bounds{}) {
		return a
	}
	return BoundsOf([]v3.Vec{a.Box.Min, a.Box.Max, b.Box.Min, b.Box.Max})
}
