package engine

import (
	"fmt"

	"github.com/chazu/csgray/pkg/primitive/arb"
	"github.com/chazu/csgray/pkg/primitive/ars"
	"github.com/chazu/csgray/pkg/scene"
	"github.com/chazu/csgray/pkg/vmath"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// builtinFunc is the zygomys calling convention for Go functions.
type builtinFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// builder holds the scene a script is adding solids to.
type builder struct {
	sc *scene.Scene
}

// registerBuiltins installs the script vocabulary into env:
//
//	(vec3 x y z)
//	(translate v)  (rotate degrees)  (scale k)  (compose m1 m2 ...)
//	(arb8 "name" v1 ... v8 :xform m)
//	(rpp "name" :min v :max v :xform m)
//	(ars "name" (list curve ...) :xform m)
//	(solid "name")
//	(place "name" (solid "other") :xform m)
//
// Keywords only work on source that went through preprocessSource.
func registerBuiltins(env *zygo.Zlisp, sc *scene.Scene) {
	b := &builder{sc: sc}
	for name, fn := range map[string]builtinFunc{
		"vec3":      vec3Builtin,
		"translate": translateBuiltin,
		"rotate":    rotateBuiltin,
		"scale":     scaleBuiltin,
		"compose":   composeBuiltin,
		"arb8":      b.arb8,
		"rpp":       b.rpp,
		"ars":       b.ars,
		"solid":     b.solid,
		"place":     b.place,
	} {
		env.AddFunction(name, fn)
	}
}

func vec3Builtin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
	}
	var xyz [3]float64
	for i, a := range args {
		f, err := asFloat(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
		}
		xyz[i] = f
	}
	return &sexpVec3{vec: v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
}

// oneVec is the shape shared by translate and rotate.
func oneVec(fn string, args []zygo.Sexp) (v3.Vec, error) {
	if len(args) != 1 {
		return v3.Vec{}, fmt.Errorf("%s requires one vec3", fn)
	}
	v, err := asVec3(args[0])
	if err != nil {
		return v3.Vec{}, fmt.Errorf("%s: %w", fn, err)
	}
	return v, nil
}

func translateBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	v, err := oneVec(name, args)
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpMatrix{mat: vmath.Translate(v)}, nil
}

// rotateBuiltin takes angles in degrees, applied about X, then Y, then Z.
func rotateBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	v, err := oneVec(name, args)
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpMatrix{mat: vmath.Rotate(v)}, nil
}

func scaleBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("scale requires a factor")
	}
	k, err := asFloat(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("scale: %w", err)
	}
	if k == 0 {
		return zygo.SexpNull, fmt.Errorf("scale: factor must not be zero")
	}
	return &sexpMatrix{mat: vmath.Scale(k)}, nil
}

// composeBuiltin multiplies left to right, so the last matrix applies first.
func composeBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	m := vmath.Identity()
	for i, a := range args {
		mi, err := asMatrix(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("compose: argument %d: %w", i+1, err)
		}
		m = m.Mul4(mi)
	}
	return &sexpMatrix{mat: m}, nil
}

func (b *builder) arb8(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	c := newCall(name, args)
	if err := c.name(); err != nil {
		return zygo.SexpNull, err
	}
	if len(c.pos) != 8 {
		return zygo.SexpNull, c.errorf("requires 8 vertices, got %d", len(c.pos))
	}
	in := &arb.Internal{}
	for i, s := range c.pos {
		v, err := asVec3(s)
		if err != nil {
			return zygo.SexpNull, c.errorf("vertex %d: %w", i+1, err)
		}
		in.Pt[i] = v
	}
	mat, err := c.xform()
	if err != nil {
		return zygo.SexpNull, err
	}

	b.sc.AddARB(c.solid, in, mat)
	return &sexpSolidRef{name: c.solid, kind: scene.KindARB}, nil
}

// rpp is an axis-aligned box stored as an ARB8.
func (b *builder) rpp(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	c := newCall(name, args)
	if err := c.name(); err != nil {
		return zygo.SexpNull, err
	}
	lo, err := c.vec("min")
	if err != nil {
		return zygo.SexpNull, err
	}
	hi, err := c.vec("max")
	if err != nil {
		return zygo.SexpNull, err
	}
	if lo.X >= hi.X || lo.Y >= hi.Y || lo.Z >= hi.Z {
		return zygo.SexpNull, c.errorf("min must be below max on every axis")
	}
	mat, err := c.xform()
	if err != nil {
		return zygo.SexpNull, err
	}

	b.sc.AddARB(c.solid, &arb.Internal{Pt: rppPoints(lo, hi)}, mat)
	return &sexpSolidRef{name: c.solid, kind: scene.KindARB}, nil
}

// rppPoints orders a box's corners like an ARB8: the +X face first, then
// the -X face.
func rppPoints(lo, hi v3.Vec) [8]v3.Vec {
	return [8]v3.Vec{
		{X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z},
		{X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: lo.X, Y: lo.Y, Z: lo.Z},
		{X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: hi.Y, Z: hi.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z},
	}
}

// ars takes open curves of equal length and closes each one.
func (b *builder) ars(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	c := newCall(name, args)
	if err := c.name(); err != nil {
		return zygo.SexpNull, err
	}
	if len(c.pos) != 1 {
		return zygo.SexpNull, c.errorf("requires a list of curves")
	}
	curves, err := asList(c.pos[0])
	if err != nil {
		return zygo.SexpNull, c.errorf("curves: %w", err)
	}
	if len(curves) == 0 {
		return zygo.SexpNull, c.errorf("no curves")
	}

	in := &ars.Internal{NCurves: len(curves)}
	for i, cv := range curves {
		pts, err := asList(cv)
		if err != nil {
			return zygo.SexpNull, c.errorf("curve %d: %w", i, err)
		}
		if i == 0 {
			in.PtsPerCurve = len(pts)
		}
		if len(pts) == 0 || len(pts) != in.PtsPerCurve {
			return zygo.SexpNull, c.errorf("curve %d has %d points, want %d", i, len(pts), in.PtsPerCurve)
		}
		curve := make([]v3.Vec, len(pts), len(pts)+1)
		for j, p := range pts {
			if curve[j], err = asVec3(p); err != nil {
				return zygo.SexpNull, c.errorf("curve %d point %d: %w", i, j, err)
			}
		}
		in.Curves = append(in.Curves, append(curve, curve[0]))
	}
	mat, err := c.xform()
	if err != nil {
		return zygo.SexpNull, err
	}

	b.sc.AddARS(c.solid, in, mat)
	return &sexpSolidRef{name: c.solid, kind: scene.KindARS}, nil
}

func (b *builder) solid(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	c := newCall(name, args)
	if err := c.name(); err != nil {
		return zygo.SexpNull, err
	}
	e := b.sc.Lookup(c.solid)
	if e == nil {
		return zygo.SexpNull, fmt.Errorf("solid: no solid named %q", c.solid)
	}
	return &sexpSolidRef{name: e.Name, kind: e.Kind}, nil
}

// place adds another instance of an existing solid's record. Its matrix
// is :xform applied after the original placement.
func (b *builder) place(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	c := newCall(name, args)
	if err := c.name(); err != nil {
		return zygo.SexpNull, err
	}
	if len(c.pos) != 1 {
		return zygo.SexpNull, c.errorf("requires a solid reference")
	}
	ref, err := asSolidRef(c.pos[0])
	if err != nil {
		return zygo.SexpNull, c.errorf("%w", err)
	}
	src := b.sc.Lookup(ref.name)
	if src == nil {
		return zygo.SexpNull, c.errorf("no solid named %q", ref.name)
	}
	mat, err := c.xform()
	if err != nil {
		return zygo.SexpNull, err
	}

	b.sc.Add(&scene.Entry{
		Name: c.solid,
		Kind: src.Kind,
		Ext:  src.Ext,
		Mat:  mat.Mul4(src.Mat),
	})
	return &sexpSolidRef{name: c.solid, kind: src.Kind}, nil
}
