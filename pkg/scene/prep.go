package scene

import (
	"fmt"

	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/primitive/arb"
	"github.com/chazu/csgray/pkg/primitive/ars"
	"github.com/chazu/csgray/pkg/vmath"
)

// PrepError records an entry that could not be prepared.
type PrepError struct {
	Name string
	Err  error
}

func (e PrepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e PrepError) Unwrap() error { return e.Err }

// Prepared is a scene ready to be shot at. Solids keeps scene order,
// minus the entries listed in Errors.
type Prepared struct {
	Solids []kernel.Solid
	Errors []PrepError
	bounds vmath.Bounds
	byName map[string]kernel.Solid
}

// Prep prepares every entry. A failing entry is logged and skipped; it
// never stops the others.
func Prep(s *Scene, opts kernel.Options) *Prepared {
	p := &Prepared{byName: make(map[string]kernel.Solid)}
	for _, e := range s.Entries {
		solid, err := prepEntry(e, opts)
		if err != nil {
			opts.Log().Printf("scene: skipping %s: %v", e.Name, err)
			p.Errors = append(p.Errors, PrepError{Name: e.Name, Err: err})
			continue
		}
		p.Solids = append(p.Solids, solid)
		p.byName[e.Name] = solid
		p.bounds = vmath.Union(p.bounds, solid.Bounds())
	}
	return p
}

func prepEntry(e *Entry, opts kernel.Options) (kernel.Solid, error) {
	switch e.Kind {
	case KindARB:
		return arb.Prep(e.Name, e.Ext, e.Mat, opts)
	case KindARS:
		return ars.Prep(e.Name, e.Ext, e.Mat, opts)
	}
	return nil, fmt.Errorf("unknown kind %v", e.Kind)
}

// Lookup returns the prepared solid with the given name, or nil.
func (p *Prepared) Lookup(name string) kernel.Solid {
	return p.byName[name]
}

// Bounds returns the union of all solid bounds.
func (p *Prepared) Bounds() vmath.Bounds {
	return p.bounds
}

// Free releases every solid. No shots may be in flight.
func (p *Prepared) Free() {
	for _, s := range p.Solids {
		s.Free()
	}
}
