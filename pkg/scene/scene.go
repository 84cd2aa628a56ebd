// Package scene holds the named solids of one model. A Scene is a list of
// stored records awaiting prep; Prep turns it into kernel solids that can
// be shot at concurrently.
package scene

import (
	"fmt"

	"github.com/chazu/csgray/pkg/db"
	"github.com/chazu/csgray/pkg/primitive/arb"
	"github.com/chazu/csgray/pkg/primitive/ars"
	"github.com/chazu/csgray/pkg/vmath"
	"github.com/go-gl/mathgl/mgl64"
)

// Kind enumerates the primitive kinds a scene can hold.
type Kind int

const (
	KindARB Kind = iota // arbitrary convex polyhedron, 4 to 8 vertices
	KindARS             // triangulated curve stack
)

func (k Kind) String() string {
	switch k {
	case KindARB:
		return "arb"
	case KindARS:
		return "ars"
	default:
		return "unknown"
	}
}

// Entry is one stored solid and the matrix that places it.
type Entry struct {
	Name string
	Kind Kind
	Ext  db.External
	Mat  mgl64.Mat4
}

// Scene is an ordered collection of entries. It is built once, typically
// by evaluating a script, and not mutated afterwards.
type Scene struct {
	Entries   []*Entry
	NameIndex map[string]*Entry
	Version   uint64
}

// New creates an empty Scene.
func New() *Scene {
	return &Scene{NameIndex: make(map[string]*Entry)}
}

// Add appends an entry. It does not check for duplicate names; Validate
// reports them.
func (s *Scene) Add(e *Entry) {
	s.Entries = append(s.Entries, e)
	if e.Name != "" {
		s.NameIndex[e.Name] = e
	}
}

// AddARB stores an ARB under name.
func (s *Scene) AddARB(name string, in *arb.Internal, mat mgl64.Mat4) *Entry {
	e := &Entry{Name: name, Kind: KindARB, Ext: in.Export(name, 1), Mat: mat}
	s.Add(e)
	return e
}

// AddARS stores an ARS under name.
func (s *Scene) AddARS(name string, in *ars.Internal, mat mgl64.Mat4) *Entry {
	e := &Entry{Name: name, Kind: KindARS, Ext: in.Export(name, 1), Mat: mat}
	s.Add(e)
	return e
}

// Lookup returns the entry with the given name, or nil.
func (s *Scene) Lookup(name string) *Entry {
	return s.NameIndex[name]
}

// MustLookup returns the entry with the given name, or panics.
func (s *Scene) MustLookup(name string) *Entry {
	e := s.Lookup(name)
	if e == nil {
		panic(fmt.Sprintf("scene: no solid named %q", name))
	}
	return e
}

// Len returns the number of entries.
func (s *Scene) Len() int {
	return len(s.Entries)
}

// Describe returns the listing of one entry, as the primitive formats it.
func (e *Entry) Describe(verbose bool) (string, error) {
	switch e.Kind {
	case KindARB:
		in, err := arb.Import(e.Ext, e.Mat)
		if err != nil {
			return "", err
		}
		return in.Describe(verbose, 1), nil
	case KindARS:
		in, err := ars.Import(e.Ext, e.Mat)
		if err != nil {
			return "", err
		}
		return in.Describe(verbose, 1), nil
	}
	return "", fmt.Errorf("scene: %s has unknown kind %v", e.Name, e.Kind)
}

// Identity is the placement matrix of an untransformed entry.
func Identity() mgl64.Mat4 {
	return vmath.Identity()
}
