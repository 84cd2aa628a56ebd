package kernel

import (
	"log"
	"math"
)

// Logger receives diagnostics. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...interface{})
}

// Tol holds the numeric tolerances used during prep and classification.
type Tol struct {
	Dist   float64 // points closer than this are the same point
	DistSq float64 // Dist squared
	Facet  float64 // ARS facet edge/area degeneracy threshold
	Dot    float64 // cosine slop for collinearity and coplanarity
}

// Legacy tolerance values.
const (
	DefaultDistSq = 0.005
	DefaultFacet  = 1.0e-4
	DefaultDot    = 0.0087
)

// DefaultTol returns the legacy tolerances.
func DefaultTol() Tol {
	return NewTol(math.Sqrt(DefaultDistSq))
}

// NewTol returns tolerances with the given distance and legacy values for
// the rest.
func NewTol(dist float64) Tol {
	return Tol{
		Dist:   dist,
		DistSq: dist * dist,
		Facet:  DefaultFacet,
		Dot:    DefaultDot,
	}
}

// Options controls prep and shot behavior of a solid.
type Options struct {
	Tol Tol

	// Conservative rejects non-planar ARB faces and turns ARS in/out
	// pairing mismatches into misses instead of logging and continuing.
	Conservative bool

	// UVWanted computes the ARB UV basis during prep rather than on the
	// first UV query.
	UVWanted bool

	// Debug logs per-face and per-hit detail.
	Debug bool

	Logger Logger
}

// DefaultOptions returns legacy tolerances with the standard logger.
func DefaultOptions() Options {
	return Options{Tol: DefaultTol()}
}

// Log returns the configured logger, falling back to the standard one.
func (o *Options) Log() Logger {
	if o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}

// Debugf logs only when Debug is set.
func (o *Options) Debugf(format string, args ...interface{}) {
	if o.Debug {
		o.Log().Printf(format, args...)
	}
}
