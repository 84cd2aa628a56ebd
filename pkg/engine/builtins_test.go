package engine

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/primitive/arb"
	"github.com/chazu/csgray/pkg/primitive/ars"
	"github.com/chazu/csgray/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(rpp "box" :min lo)`,
			expect: `(rpp "box" "__kw_min" lo)`,
		},
		{
			name:   "multiple keywords",
			input:  `(rpp "box" :min lo :max hi)`,
			expect: `(rpp "box" "__kw_min" lo "__kw_max" hi)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def base-plate (solid "base"))`,
			expect: `(def base_plate (solid "base"))`,
		},
		{
			name:   "minus operator preserved",
			input:  `(vec3 (- 10 5) -1 0)`,
			expect: `(vec3 (- 10 5) -1 0)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:x-form`,
			expect: `"__kw_x-form"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, preprocessSource(tt.input))
		})
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func mustEval(t *testing.T, source string) *scene.Scene {
	t.Helper()
	sc, evalErrs, err := NewEngine().Evaluate(source)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	require.NotNil(t, sc)
	return sc
}

func evalFails(t *testing.T, source, want string) {
	t.Helper()
	sc, evalErrs, err := NewEngine().Evaluate(source)
	require.NoError(t, err)
	assert.Nil(t, sc)
	require.NotEmpty(t, evalErrs)
	assert.Contains(t, evalErrs[0].Message, want)
}

func arbPoints(t *testing.T, e *scene.Entry) [8]v3.Vec {
	t.Helper()
	require.Equal(t, scene.KindARB, e.Kind)
	in, err := arb.Import(e.Ext, e.Mat)
	require.NoError(t, err)
	return in.Pt
}

func vecNear(t *testing.T, want, got v3.Vec) {
	t.Helper()
	assert.InDelta(t, 0, want.Sub(got).Length(), 1e-9, "want %v, got %v", want, got)
}

const unitCubeScript = `
(arb8 "cube"
  (vec3 -0.5 -0.5 -0.5) (vec3 0.5 -0.5 -0.5) (vec3 0.5 0.5 -0.5) (vec3 -0.5 0.5 -0.5)
  (vec3 -0.5 -0.5 0.5) (vec3 0.5 -0.5 0.5) (vec3 0.5 0.5 0.5) (vec3 -0.5 0.5 0.5))
`

// arsBoxScript is the cube [-1,1]^3 as four curves: a pole, two squares,
// and a pole.
const arsBoxScript = `
(ars "box"
  (list
    (list (vec3 0 0 -1) (vec3 0 0 -1) (vec3 0 0 -1) (vec3 0 0 -1))
    (list (vec3 1 -1 -1) (vec3 1 1 -1) (vec3 -1 1 -1) (vec3 -1 -1 -1))
    (list (vec3 1 -1 1) (vec3 1 1 1) (vec3 -1 1 1) (vec3 -1 -1 1))
    (list (vec3 0 0 1) (vec3 0 0 1) (vec3 0 0 1) (vec3 0 0 1))))
`

// ---------------------------------------------------------------------------
// Solid builtins
// ---------------------------------------------------------------------------

func TestVec3(t *testing.T) {
	mustEval(t, `(def v (vec3 1 2.5 -3))`)
	evalFails(t, `(vec3 1 2)`, "exactly 3 arguments")
	evalFails(t, `(vec3 1 "a" 3)`, "expected number")
}

func TestARB8(t *testing.T) {
	sc := mustEval(t, unitCubeScript)
	require.Equal(t, 1, sc.Len())

	pts := arbPoints(t, sc.MustLookup("cube"))
	vecNear(t, v3.Vec{X: -0.5, Y: -0.5, Z: -0.5}, pts[0])
	vecNear(t, v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, pts[6])

	text, err := sc.MustLookup("cube").Describe(false)
	require.NoError(t, err)
	assert.Equal(t, "ARB8\n\t1 (-0.5, -0.5, -0.5)\n", text)
}

func TestARB8Errors(t *testing.T) {
	evalFails(t, `(arb8 "short" (vec3 0 0 0))`, "requires 8 vertices")
	evalFails(t, `(arb8 (vec3 0 0 0))`, "name")
	evalFails(t, `(arb8 "" (vec3 0 0 0))`, "must not be empty")
}

func TestRPP(t *testing.T) {
	sc := mustEval(t, `(rpp "slab" :min (vec3 0 0 0) :max (vec3 1 2 3))`)
	pts := arbPoints(t, sc.MustLookup("slab"))
	vecNear(t, v3.Vec{X: 1}, pts[0])
	vecNear(t, v3.Vec{Y: 2, Z: 3}, pts[6])

	var buf bytes.Buffer
	opts := kernel.DefaultOptions()
	opts.Logger = log.New(&buf, "", 0)
	p := scene.Prep(sc, opts)
	require.Empty(t, p.Errors)
	solid := p.Lookup("slab").(*arb.Solid)
	assert.Len(t, solid.Planes(), 6)
	assert.Empty(t, buf.String())
}

func TestRPPErrors(t *testing.T) {
	evalFails(t, `(rpp "a" :max (vec3 1 1 1))`, "missing :min")
	evalFails(t, `(rpp "a" :min (vec3 0 0 0) :max (vec3 1 0 1))`, "below max")
	evalFails(t, `(rpp "a" :min 0 :max (vec3 1 1 1))`, "expected vec3")
}

func TestTransforms(t *testing.T) {
	sc := mustEval(t, `
(rpp "moved" :min (vec3 0 0 0) :max (vec3 1 1 1) :xform (translate (vec3 10 0 0)))
(rpp "both" :min (vec3 0 0 0) :max (vec3 1 1 1)
     :xform (compose (translate (vec3 10 0 0)) (scale 2)))
(rpp "turned" :min (vec3 0 0 0) :max (vec3 1 1 1) :xform (rotate (vec3 0 0 90)))
`)

	vecNear(t, v3.Vec{X: 11}, arbPoints(t, sc.MustLookup("moved"))[0])
	// compose applies its last argument first: scale, then translate.
	vecNear(t, v3.Vec{X: 12}, arbPoints(t, sc.MustLookup("both"))[0])
	vecNear(t, v3.Vec{Y: 1}, arbPoints(t, sc.MustLookup("turned"))[0])

	evalFails(t, `(rpp "a" :min (vec3 0 0 0) :max (vec3 1 1 1) :xform (vec3 1 0 0))`, "expected matrix")
	evalFails(t, `(scale 0)`, "must not be zero")
}

func TestARS(t *testing.T) {
	sc := mustEval(t, arsBoxScript)
	e := sc.MustLookup("box")
	require.Equal(t, scene.KindARS, e.Kind)

	in, err := ars.Import(e.Ext, e.Mat)
	require.NoError(t, err)
	assert.Equal(t, 4, in.NCurves)
	assert.Equal(t, 4, in.PtsPerCurve)
	require.Len(t, in.Curves[1], 5)
	assert.Equal(t, in.Curves[1][0], in.Curves[1][4], "curves are closed")

	opts := kernel.DefaultOptions()
	opts.Logger = log.New(&bytes.Buffer{}, "", 0)
	p := scene.Prep(sc, opts)
	require.Empty(t, p.Errors)

	segs := p.Lookup("box").Shoot(kernel.Ray{
		Origin: v3.Vec{X: -10, Y: 0.3, Z: 0.1},
		Dir:    v3.Vec{X: 1},
	})
	require.Len(t, segs, 1)
	assert.InDelta(t, 9, segs[0].In.Dist, 1e-9)
	assert.InDelta(t, 11, segs[0].Out.Dist, 1e-9)
}

func TestARSErrors(t *testing.T) {
	evalFails(t, `(ars "a" (list))`, "no curves")
	evalFails(t, `(ars "a" (list (list (vec3 0 0 0) (vec3 1 0 0)) (list (vec3 0 0 1))))`, "curve 1 has 1 points, want 2")
	evalFails(t, `(ars "a" (list (list 1 2 3)))`, "expected vec3")
	evalFails(t, `(ars "a")`, "requires a list of curves")
}

func TestSolidAndPlace(t *testing.T) {
	sc := mustEval(t, unitCubeScript+`
(place "copy" (solid "cube") :xform (translate (vec3 0 0 5)))
`)
	require.Equal(t, 2, sc.Len())

	orig := arbPoints(t, sc.MustLookup("cube"))
	moved := arbPoints(t, sc.MustLookup("copy"))
	for i := range orig {
		vecNear(t, orig[i].Add(v3.Vec{Z: 5}), moved[i])
	}
}

func TestSolidLookupError(t *testing.T) {
	evalFails(t, `(solid "missing")`, `no solid named "missing"`)
	evalFails(t, `(place "b" (vec3 0 0 0))`, "expected solid reference")
}

// ---------------------------------------------------------------------------
// Validation through EvaluateFull
// ---------------------------------------------------------------------------

func TestEvaluateFullReportsFindings(t *testing.T) {
	source := `
(rpp "a" :min (vec3 0 0 0) :max (vec3 1 1 1))
(rpp "a" :min (vec3 2 0 0) :max (vec3 3 1 1))
(arb8 "w"
  (vec3 -0.5 -0.5 -0.5) (vec3 0.5 -0.5 -0.5) (vec3 0.5 0.5 -0.5) (vec3 -0.5 0.5 -0.5)
  (vec3 -0.5 -0.5 0.5) (vec3 -0.5 -0.5 0.5) (vec3 -0.5 0.5 0.5) (vec3 -0.5 0.5 0.5))
`
	res, err := NewEngine().EvaluateFull(context.Background(), source, kernel.DefaultTol())
	require.NoError(t, err)
	require.NotNil(t, res.Scene)
	assert.Equal(t, 3, res.Scene.Len())

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "duplicate name assigned to 2 solids")

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "w", res.Warnings[0].Name)
	assert.Contains(t, res.Warnings[0].Message, "ARB6")
}

func TestEvaluateFullCleanScript(t *testing.T) {
	res, err := NewEngine().EvaluateFull(context.Background(), unitCubeScript+arsBoxScript, kernel.DefaultTol())
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 2, res.Scene.Len())
}

func TestEvaluateFullSyntaxError(t *testing.T) {
	res, err := NewEngine().EvaluateFull(context.Background(), "(rpp", kernel.DefaultTol())
	require.NoError(t, err)
	assert.Nil(t, res.Scene)
	assert.NotEmpty(t, res.Errors)
}

func TestPreprocessUnclosedString(t *testing.T) {
	assert.Equal(t, `(solid "abc :min`, preprocessSource(`(solid "abc :min`))
	assert.Equal(t, `"a\"b" "__kw_x"`, preprocessSource(`"a\"b" :x`))
}

func TestNewCallSplitsKeywords(t *testing.T) {
	lo := &sexpVec3{vec: v3.Vec{X: 1}}
	c := newCall("rpp", []zygo.Sexp{
		&zygo.SexpStr{S: "box"},
		&zygo.SexpStr{S: kwPrefix + "min"}, lo,
		&zygo.SexpStr{S: kwPrefix + "flag"},
	})
	require.NoError(t, c.name())
	assert.Equal(t, "box", c.solid)
	assert.Empty(t, c.pos)
	assert.Same(t, lo, c.kw["min"])
	assert.Equal(t, zygo.SexpNull, c.kw["flag"])

	v, err := c.vec("min")
	require.NoError(t, err)
	assert.Equal(t, v3.Vec{X: 1}, v)

	_, err = c.vec("max")
	assert.EqualError(t, err, "rpp: box: missing :max")
}
