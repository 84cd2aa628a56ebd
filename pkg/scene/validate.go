package scene

import (
	"fmt"

	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/primitive/arb"
	"github.com/chazu/csgray/pkg/primitive/ars"
)

// ValidationSeverity indicates whether a validation finding blocks prep
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // entry cannot be prepared
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Name     string // which entry has the problem (empty if scene-level)
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Name, e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	Name    string
	Message string
}

// ValidationResult bundles blocking errors and advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether no blocking errors were found.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs every check on the scene and returns the findings. It is
// read-only.
func Validate(s *Scene, tol kernel.Tol) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateNames(s)...)
	errs = append(errs, validateRecords(s, tol)...)
	return errs
}

// ValidateAll runs Validate and separates errors from warnings.
func ValidateAll(s *Scene, tol kernel.Tol) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(s, tol) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Name:    e.Name,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// validateNames checks that every entry is named and that no two entries
// share a name.
func validateNames(s *Scene) []ValidationError {
	var errs []ValidationError

	counts := make(map[string]int)
	var order []string
	for i, e := range s.Entries {
		if e.Name == "" {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("entry %d has no name", i),
				Severity: SeverityError,
			})
			continue
		}
		if counts[e.Name] == 0 {
			order = append(order, e.Name)
		}
		counts[e.Name]++
	}
	for _, name := range order {
		if n := counts[name]; n > 1 {
			errs = append(errs, ValidationError{
				Name:     name,
				Message:  fmt.Sprintf("duplicate name assigned to %d solids", n),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateRecords decodes each entry and checks its shape: an ARB must
// match one of the ARB4..ARB8 vertex patterns, and an ARS must have at
// least two curves of three points to enclose anything.
func validateRecords(s *Scene, tol kernel.Tol) []ValidationError {
	var errs []ValidationError

	for _, e := range s.Entries {
		switch e.Kind {
		case KindARB:
			in, err := arb.Import(e.Ext, e.Mat)
			if err != nil {
				errs = append(errs, ValidationError{Name: e.Name, Message: err.Error(), Severity: SeverityError})
				continue
			}
			typ, err := in.StdType(tol)
			if err != nil {
				errs = append(errs, ValidationError{
					Name:     e.Name,
					Message:  fmt.Sprintf("vertices match no ARB type: %v", err),
					Severity: SeverityWarning,
				})
				continue
			}
			if typ != arb.ARB8 {
				errs = append(errs, ValidationError{
					Name:     e.Name,
					Message:  fmt.Sprintf("coincident vertices reduce it to %s", typ),
					Severity: SeverityWarning,
				})
			}

		case KindARS:
			in, err := ars.Import(e.Ext, e.Mat)
			if err != nil {
				errs = append(errs, ValidationError{Name: e.Name, Message: err.Error(), Severity: SeverityError})
				continue
			}
			if in.NCurves < 2 || in.PtsPerCurve < 3 {
				errs = append(errs, ValidationError{
					Name: e.Name,
					Message: fmt.Sprintf("%d curves of %d points encloses no volume",
						in.NCurves, in.PtsPerCurve),
					Severity: SeverityWarning,
				})
			}

		default:
			errs = append(errs, ValidationError{
				Name:     e.Name,
				Message:  fmt.Sprintf("unknown kind %v", e.Kind),
				Severity: SeverityError,
			})
		}
	}
	return errs
}
