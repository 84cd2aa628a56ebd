// Package arb implements the ARB8 primitive: a convex polyhedron given by
// eight vertices whose coincident vertices collapse it into the ARB7, ARB6,
// ARB5 and ARB4 variants. A prepared Solid holds up to six bounding planes
// and intersects rays with them by Cyrus-Beck clipping.
package arb

import (
	"fmt"
	"strings"

	"github.com/chazu/csgray/pkg/db"
	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/vmath"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

// Internal is the decoded form of an ARB8: eight vertices in model space.
// Vertices 0-3 form one end face and 4-7 the opposite one.
type Internal struct {
	Pt [8]v3.Vec
}

// Import decodes an ARB8 record. The first stored point is absolute and
// the other seven are offsets from it; all are transformed by mat.
func Import(ext db.External, mat mgl64.Mat4) (*Internal, error) {
	if len(ext) == 0 {
		return nil, &kernel.ImportError{Kind: "arb", Reason: "empty external"}
	}
	rec := &ext[0]
	if rec.ID != db.IDSolid {
		return nil, &kernel.ImportError{Kind: "arb", Reason: fmt.Sprintf("defective record, id=%s", rec.ID)}
	}
	if rec.Type != db.GenARB8 {
		return nil, &kernel.ImportError{Kind: "arb", Reason: fmt.Sprintf("solid type %d is not GENARB8", rec.Type)}
	}

	in := &Internal{}
	base := rec.Point(0)
	in.Pt[0] = vmath.MulPoint(mat, base)
	for i := 1; i < 8; i++ {
		in.Pt[i] = vmath.MulPoint(mat, base.Add(rec.Point(i)))
	}
	return in, nil
}

// Export encodes the ARB as a single record, scaling by local2mm.
func (in *Internal) Export(name string, local2mm float64) db.External {
	rec := db.Record{ID: db.IDSolid, Type: db.GenARB8, Name: name}
	rec.SetPoint(0, in.Pt[0].MulScalar(local2mm))
	for i := 1; i < 8; i++ {
		rec.SetPoint(i, in.Pt[i].Sub(in.Pt[0]).MulScalar(local2mm))
	}
	return db.External{rec}
}

// Describe returns a human-readable listing using 1-based vertex labels.
// Only the first vertex is listed unless verbose is set.
func (in *Internal) Describe(verbose bool, mm2local float64) string {
	var sb strings.Builder
	sb.WriteString("ARB8\n")
	n := 1
	if verbose {
		n = 8
	}
	for i := 0; i < n; i++ {
		p := in.Pt[i].MulScalar(mm2local)
		fmt.Fprintf(&sb, "\t%d (%g, %g, %g)\n", i+1, p.X, p.Y, p.Z)
	}
	return sb.String()
}

// Centroid returns the mean of the eight vertices. Coincident vertices are
// counted once per occurrence, so the result lies inside any valid ARB.
func (in *Internal) Centroid() v3.Vec {
	var sum v3.Vec
	for _, p := range in.Pt {
		sum = sum.Add(p)
	}
	return sum.MulScalar(0.125)
}

// Plot returns the wireframe as four "U" shaped contours which together
// cover all twelve edges.
func (in *Internal) Plot() kernel.VList {
	var vl kernel.VList
	for _, f := range [4][4]int{
		{0, 1, 2, 3},
		{4, 0, 3, 7},
		{5, 4, 7, 6},
		{1, 5, 6, 2},
	} {
		vl.Move(in.Pt[f[0]])
		vl.Draw(in.Pt[f[1]])
		vl.Draw(in.Pt[f[2]])
		vl.Draw(in.Pt[f[3]])
	}
	return vl
}
