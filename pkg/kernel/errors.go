package kernel

import "fmt"

// ImportError reports a stored record that cannot be decoded into a
// solid's internal form.
type ImportError struct {
	Kind   string // primitive kind, e.g. "arb"
	Reason string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%s import: %s", e.Kind, e.Reason)
}

// DegenerateSolidError reports a solid whose geometry does not enclose a
// volume, such as an ARB with fewer than four usable faces.
type DegenerateSolidError struct {
	Name   string
	Reason string
}

func (e *DegenerateSolidError) Error() string {
	return fmt.Sprintf("%s: degenerate solid: %s", e.Name, e.Reason)
}
