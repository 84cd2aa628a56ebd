package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/csgray/pkg/scene"
	"github.com/chazu/csgray/pkg/vmath"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
	zygo "github.com/glycerine/zygomys/zygo"
)

// Script values that zygomys carries between builtins without looking
// inside.

type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}

func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

type sexpMatrix struct {
	mat mgl64.Mat4
}

func (m *sexpMatrix) SexpString(ps *zygo.PrintState) string {
	t := m.mat.Col(3)
	return fmt.Sprintf("(matrix :at (vec3 %g %g %g))", t.X(), t.Y(), t.Z())
}

func (m *sexpMatrix) Type() *zygo.RegisteredType { return nil }

type sexpSolidRef struct {
	name string
	kind scene.Kind
}

func (r *sexpSolidRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(solid %q)", r.name)
}

func (r *sexpSolidRef) Type() *zygo.RegisteredType { return nil }

// call is one builtin invocation with its :keyword arguments split out.
// Errors it builds are prefixed with the builtin and, once known, the
// solid name.
type call struct {
	fn    string
	solid string
	pos   []zygo.Sexp
	kw    map[string]zygo.Sexp
}

func newCall(fn string, args []zygo.Sexp) *call {
	c := &call{fn: fn, kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		key, ok := keyword(args[i])
		if !ok {
			c.pos = append(c.pos, args[i])
			continue
		}
		// A trailing keyword is a flag.
		c.kw[key] = zygo.SexpNull
		if i+1 < len(args) {
			c.kw[key] = args[i+1]
			i++
		}
	}
	return c
}

func keyword(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	return strings.CutPrefix(str.S, kwPrefix)
}

func (c *call) errorf(format string, args ...any) error {
	prefix := c.fn + ": "
	if c.solid != "" {
		prefix += c.solid + ": "
	}
	return fmt.Errorf(prefix+format, args...)
}

// name takes the leading solid name argument.
func (c *call) name() error {
	if len(c.pos) == 0 {
		return c.errorf("requires a name argument")
	}
	name, err := asString(c.pos[0])
	if err != nil {
		return c.errorf("name: %w", err)
	}
	if name == "" {
		return c.errorf("name must not be empty")
	}
	c.solid = name
	c.pos = c.pos[1:]
	return nil
}

// vec returns keyword key as a vector; it must be present.
func (c *call) vec(key string) (v3.Vec, error) {
	s, ok := c.kw[key]
	if !ok {
		return v3.Vec{}, c.errorf("missing :%s", key)
	}
	v, err := asVec3(s)
	if err != nil {
		return v3.Vec{}, c.errorf("%s: %w", key, err)
	}
	return v, nil
}

// xform returns the :xform matrix, or the identity when absent.
func (c *call) xform() (mgl64.Mat4, error) {
	s, ok := c.kw["xform"]
	if !ok {
		return vmath.Identity(), nil
	}
	m, err := asMatrix(s)
	if err != nil {
		return mgl64.Mat4{}, c.errorf("xform: %w", err)
	}
	return m, nil
}

func asFloat(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, mismatch("number", s)
}

func asString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", mismatch("string", s)
}

func asVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, mismatch("vec3", s)
}

func asMatrix(s zygo.Sexp) (mgl64.Mat4, error) {
	if m, ok := s.(*sexpMatrix); ok {
		return m.mat, nil
	}
	return mgl64.Mat4{}, mismatch("matrix", s)
}

func asSolidRef(s zygo.Sexp) (*sexpSolidRef, error) {
	if r, ok := s.(*sexpSolidRef); ok {
		return r, nil
	}
	return nil, mismatch("solid reference", s)
}

// asList accepts a list, an array or the empty list.
func asList(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	}
	if s == zygo.SexpNull {
		return nil, nil
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

func mismatch(want string, got zygo.Sexp) error {
	return fmt.Errorf("expected %s, got %T (%s)", want, got, got.SexpString(nil))
}
