package arb

import (
	"fmt"
	"math"

	"github.com/chazu/csgray/pkg/kernel"
)

// Type is the specific ARB variant, named after its distinct vertex count.
type Type int

const (
	ARB4 Type = 4
	ARB5 Type = 5
	ARB6 Type = 6
	ARB7 Type = 7
	ARB8 Type = 8
)

func (t Type) String() string {
	if t >= ARB4 && t <= ARB8 {
		return fmt.Sprintf("ARB%d", int(t))
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// StdType classifies the ARB by which vertices coincide. Two vertices
// coincide when every coordinate differs by at most tol.Dist.
//
// The first run of coincident vertices found fills the "like" list from
// slot 2, a second run from slot 6; the count of remaining unique
// vertices then selects the variant (8, 6, 4 or 2 unique vertices).
func (in *Internal) StdType(tol kernel.Tol) (Type, error) {
	// svec[0] and svec[1] hold the sizes of the two runs. Sized beyond the
	// eleven used slots so pathological inputs cannot index past the end.
	var svec [16]int
	done := false
	si := 2

	for i := 0; i < 7; i++ {
		unique := true
		if !done {
			svec[si] = i
		}
		for j := i + 1; j < 8; j++ {
			d := in.Pt[i].Sub(in.Pt[j])
			if math.Abs(d.X) > tol.Dist || math.Abs(d.Y) > tol.Dist || math.Abs(d.Z) > tol.Dist {
				continue
			}
			if !done && si < len(svec)-1 {
				si++
				svec[si] = j
			}
			unique = false
		}
		if !unique {
			if si > 2 && si < 6 {
				svec[0] = si - 1
				if si == 5 && svec[5] >= 6 {
					done = true
				}
				si = 6
			}
			if si > 6 {
				svec[1] = si - 5
				done = true
			}
		}
	}

	if si > 2 && si < 6 {
		svec[0] = si - 1
	}
	if si > 6 {
		svec[1] = si - 5
	}
	for i := 1; i <= svec[1]; i++ {
		svec[svec[0]+1+i] = svec[5+i]
	}
	for i := svec[0] + svec[1] + 2; i < 11; i++ {
		svec[i] = -1
	}

	nunique := 0
	for j := 0; j < 8; j++ {
		unique := true
		for i := 2; i < svec[0]+svec[1]+2; i++ {
			if j == svec[i] {
				unique = false
				break
			}
		}
		if unique {
			nunique++
		}
	}

	switch nunique {
	case 8:
		return ARB8, nil
	case 6:
		return ARB7, nil
	case 4:
		if svec[0] == 2 {
			return ARB6, nil
		}
		return ARB5, nil
	case 2:
		return ARB4, nil
	}
	return 0, fmt.Errorf("arb: bad number of unique vertices (%d)", nunique)
}
