// Package db defines the storage-level records solids are imported from.
// A stored object is an External: a sequence of fixed-size records whose
// first record identifies the solid kind.
package db

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// RecordID identifies the kind of a storage record.
type RecordID byte

const (
	IDSolid RecordID = 'S' // single-record solid (ARB8 and friends)
	IDArsA  RecordID = 'A' // ARS header
	IDArsB  RecordID = 'B' // ARS point continuation
)

func (id RecordID) String() string {
	switch id {
	case IDSolid:
		return "solid"
	case IDArsA:
		return "ars-header"
	case IDArsB:
		return "ars-points"
	default:
		return fmt.Sprintf("RecordID(%d)", byte(id))
	}
}

// SolidType is the solid sub-type carried by an IDSolid record.
type SolidType int

const (
	GenARB8 SolidType = 4 // general 8-vertex polyhedron
)

// PointsPerRecord is the number of points one record carries.
const PointsPerRecord = 8

// Record is one fixed-size storage record. Which fields are meaningful
// depends on ID.
type Record struct {
	ID   RecordID
	Type SolidType // IDSolid only
	Name string    // IDSolid and IDArsA

	// IDArsA: number of curves and points per curve.
	M, N int

	// IDSolid and IDArsB: up to eight (x, y, z) triples.
	Values [3 * PointsPerRecord]float32
}

// External is the stored form of one object.
type External []Record

// Point returns the i'th triple of r.Values as a vector.
func (r *Record) Point(i int) v3.Vec {
	return v3.Vec{
		X: float64(r.Values[3*i]),
		Y: float64(r.Values[3*i+1]),
		Z: float64(r.Values[3*i+2]),
	}
}

// SetPoint stores v as the i'th triple of r.Values.
func (r *Record) SetPoint(i int, v v3.Vec) {
	r.Values[3*i] = float32(v.X)
	r.Values[3*i+1] = float32(v.Y)
	r.Values[3*i+2] = float32(v.Z)
}

// RecordsPerCurve returns how many point records an ARS curve of n points
// occupies.
func RecordsPerCurve(n int) int {
	return (n + PointsPerRecord - 1) / PointsPerRecord
}
