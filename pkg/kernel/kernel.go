// Package kernel defines the shared vocabulary of the ray-intersection
// kernel: rays, hits, segments, tolerances and the Solid interface that
// every prepared primitive (arb, ars) implements. Scene code shoots rays
// through this interface without knowing the primitive kind.
package kernel

import (
	"github.com/chazu/csgray/pkg/vmath"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Ray is a half-line. Dir is expected to be unit length; hit distances
// are measured in multiples of Dir.
type Ray struct {
	Origin v3.Vec
	Dir    v3.Vec
}

// At returns the point at parametric distance t along the ray.
func (r Ray) At(t float64) v3.Vec {
	return vmath.Join(r.Origin, t, r.Dir)
}

// Hit is one ray/surface intersection. Point and Normal are only valid
// after the owning solid's Norm has been called.
type Hit struct {
	Dist   float64 // parametric distance along the ray
	Surf   int     // face or triangle index within the solid
	DN     float64 // direction dot inward normal (ARS only)
	Point  v3.Vec
	Normal v3.Vec
}

// Seg is the span of a ray inside a solid, In.Dist <= Out.Dist.
type Seg struct {
	In  Hit
	Out Hit
}

// Curvature describes the local surface curvature at a hit.
type Curvature struct {
	PDir v3.Vec // principal direction
	C1   float64
	C2   float64
}

// UVCoord is a surface parameterization of a hit with the footprint of
// the beam in parameter space.
type UVCoord struct {
	U, V   float64
	DU, DV float64
}

// Application carries per-shot beam information used by UV mapping.
type Application struct {
	RBeam   float64 // beam radius at the ray origin
	Diverge float64 // beam radius growth per unit distance
}

// Solid is a prepared primitive ready to be shot at. Implementations are
// immutable after Prep except for lazily built UV state, and are safe for
// concurrent Shoot/Norm/UV/Curve calls. Free must not race with shots.
type Solid interface {
	// Name returns the solid's name.
	Name() string

	// Bounds returns the bounding box and spheres.
	Bounds() vmath.Bounds

	// Shoot intersects r with the solid, returning segments near to far.
	// A miss returns nil.
	Shoot(r Ray) []Seg

	// Norm fills hit.Point and hit.Normal.
	Norm(hit *Hit, r Ray)

	// UV computes surface coordinates for a hit whose Point is set.
	UV(app Application, hit *Hit) (UVCoord, error)

	// Curve reports curvature at a hit whose Normal is set.
	Curve(hit *Hit) Curvature

	// Plot returns a wireframe of the solid.
	Plot() VList

	// Free releases the acceleration structure.
	Free()
}

// Tessellator is implemented by solids that can produce a triangle mesh
// of their surface.
type Tessellator interface {
	Tess() (*Mesh, error)
}

// FlatCurve is the curvature of any planar face: an arbitrary principal
// direction in the plane and zero curvature.
func FlatCurve(normal v3.Vec) Curvature {
	return Curvature{PDir: vmath.Ortho(normal)}
}
