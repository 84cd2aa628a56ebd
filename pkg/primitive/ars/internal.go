// Package ars implements the ARS primitive: a closed triangulated surface
// described as a stack of curves with the same number of points. Adjacent
// curves are stitched together with two triangles per point pair, and a
// ray is intersected with every triangle.
package ars

import (
	"fmt"
	"strings"

	"github.com/chazu/csgray/pkg/db"
	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/vmath"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

// Internal is the decoded form of an ARS. Each curve holds PtsPerCurve
// points followed by a copy of its first point, so curve[j+1] is always
// valid for j < PtsPerCurve.
type Internal struct {
	NCurves     int
	PtsPerCurve int
	Curves      [][]v3.Vec
}

// Import decodes an ARS header record and its point records. The first
// point of the first curve is absolute; every other point is an offset
// from it. Points are transformed by mat.
func Import(ext db.External, mat mgl64.Mat4) (*Internal, error) {
	if len(ext) == 0 {
		return nil, &kernel.ImportError{Kind: "ars", Reason: "empty external"}
	}
	hdr := &ext[0]
	if hdr.ID != db.IDArsA {
		return nil, &kernel.ImportError{Kind: "ars", Reason: fmt.Sprintf("defective header record, id=%s", hdr.ID)}
	}
	if hdr.M <= 0 || hdr.N <= 0 {
		return nil, &kernel.ImportError{Kind: "ars", Reason: fmt.Sprintf("bad dimensions %d curves x %d points", hdr.M, hdr.N)}
	}
	perCurve := db.RecordsPerCurve(hdr.N)
	if need := 1 + hdr.M*perCurve; len(ext) < need {
		return nil, &kernel.ImportError{Kind: "ars", Reason: fmt.Sprintf("truncated, %d records of %d", len(ext), need)}
	}

	in := &Internal{
		NCurves:     hdr.M,
		PtsPerCurve: hdr.N,
		Curves:      make([][]v3.Vec, hdr.M),
	}

	var base v3.Vec
	cur := 1
	for i := 0; i < hdr.M; i++ {
		curve, err := readCurve(ext[cur:cur+perCurve], hdr.N)
		if err != nil {
			return nil, err
		}
		cur += perCurve

		for j := 0; j < hdr.N; j++ {
			if i == 0 && j == 0 {
				base = vmath.MulPoint(mat, curve[0])
				curve[0] = base
				continue
			}
			curve[j] = base.Add(vmath.MulVec(mat, curve[j]))
		}
		curve[hdr.N] = curve[0]
		in.Curves[i] = curve
	}
	return in, nil
}

// readCurve copies npts raw points out of consecutive point records,
// leaving room for the closing point.
func readCurve(recs []db.Record, npts int) ([]v3.Vec, error) {
	curve := make([]v3.Vec, npts+1)
	k := 0
	for r := range recs {
		rec := &recs[r]
		if rec.ID != db.IDArsB {
			return nil, &kernel.ImportError{Kind: "ars", Reason: fmt.Sprintf("non-ARS_B record, id=%s", rec.ID)}
		}
		for i := 0; i < db.PointsPerRecord && k < npts; i++ {
			curve[k] = rec.Point(i)
			k++
		}
	}
	return curve, nil
}

// Export encodes the ARS as a header and point records, scaling by
// local2mm.
func (in *Internal) Export(name string, local2mm float64) db.External {
	ext := db.External{{ID: db.IDArsA, Name: name, M: in.NCurves, N: in.PtsPerCurve}}
	if in.NCurves == 0 || in.PtsPerCurve == 0 {
		return ext
	}

	base := in.Curves[0][0]
	for i := 0; i < in.NCurves; i++ {
		var rec db.Record
		for j := 0; j < in.PtsPerCurve; j++ {
			k := j % db.PointsPerRecord
			if k == 0 {
				rec = db.Record{ID: db.IDArsB}
			}
			p := in.Curves[i][j].Sub(base)
			if i == 0 && j == 0 {
				p = base
			}
			rec.SetPoint(k, p.MulScalar(local2mm))
			if k == db.PointsPerRecord-1 || j == in.PtsPerCurve-1 {
				ext = append(ext, rec)
			}
		}
	}
	return ext
}

// Describe returns a human-readable summary, listing every point when
// verbose is set.
func (in *Internal) Describe(verbose bool, mm2local float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ARS\n\t%d curves, %d points per curve\n", in.NCurves, in.PtsPerCurve)
	if !verbose {
		return sb.String()
	}
	for i, curve := range in.Curves {
		fmt.Fprintf(&sb, "\tcurve %d:\n", i)
		for j := 0; j < in.PtsPerCurve; j++ {
			p := curve[j].MulScalar(mm2local)
			fmt.Fprintf(&sb, "\t\t(%g, %g, %g)\n", p.X, p.Y, p.Z)
		}
	}
	return sb.String()
}

// Bounds returns the bounds of all stored points. The closing copies are
// skipped.
func (in *Internal) Bounds() vmath.Bounds {
	pts := make([]v3.Vec, 0, in.NCurves*in.PtsPerCurve)
	for _, curve := range in.Curves {
		pts = append(pts, curve[:in.PtsPerCurve]...)
	}
	return vmath.BoundsOf(pts)
}

// Plot returns the wireframe: each curve traced as a closed waterline,
// then the i'th points of all curves joined into a meridian.
func (in *Internal) Plot() kernel.VList {
	var vl kernel.VList
	for _, curve := range in.Curves {
		vl.Move(curve[0])
		for j := 1; j <= in.PtsPerCurve; j++ {
			vl.Draw(curve[j])
		}
	}
	for j := 0; j < in.PtsPerCurve; j++ {
		vl.Move(in.Curves[0][j])
		for i := 1; i < in.NCurves; i++ {
			vl.Draw(in.Curves[i][j])
		}
	}
	return vl
}
