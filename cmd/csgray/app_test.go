package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/csgray/pkg/config"
	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// testConfig shoots two rays along +X at y = 0.3: one at z = 0.5 through
// the ramp and the first column, one at z = -0.5 through the base.
func testConfig() *config.Config {
	con := config.Default()
	con.Grid.CenterX, con.Grid.CenterY, con.Grid.CenterZ = -100, 0.3, 0
	con.Grid.Cell = 1
	con.Grid.Cols = 2
	con.Grid.Rows = 1
	con.Shot.UV = true
	con.Shot.Workers = 2
	return con
}

func newTestApp(con *config.Config) *App {
	return NewApp(con, log.New(io.Discard, "", 0))
}

func readExample(t *testing.T) string {
	t.Helper()
	source, err := os.ReadFile("../../examples/scene.csg")
	if err != nil {
		t.Fatalf("failed to read scene.csg: %v", err)
	}
	return string(source)
}

// TestE2EExampleScene exercises the full pipeline: script -> engine ->
// scene -> prep -> shoot -> summary.
func TestE2EExampleScene(t *testing.T) {
	app := newTestApp(testConfig())

	report, err := app.Run(context.Background(), readExample(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Errors) > 0 {
		for _, e := range report.Errors {
			t.Errorf("eval error: %s", e.Error())
		}
		t.FailNow()
	}
	if len(report.PrepErrors) > 0 {
		t.Fatalf("prep errors: %v", report.PrepErrors)
	}
	if report.Scene.Len() != 4 {
		t.Fatalf("expected 4 solids, got %d", report.Scene.Len())
	}

	// The ramp is a wedge and says so.
	if len(report.Warnings) != 1 || report.Warnings[0].Name != "ramp" {
		t.Errorf("expected one warning for ramp, got %v", report.Warnings)
	}

	s := report.Summary
	if s.Rays != 2 || s.RaysHit != 2 || s.Segments != 3 || s.Errors != 0 {
		t.Errorf("summary = %+v", s)
	}
	want := map[string]int{"base": 1, "ramp": 1, "column": 1}
	for name, n := range want {
		if s.PerSolid[name] != n {
			t.Errorf("%s hit by %d rays, want %d", name, s.PerSolid[name], n)
		}
	}
	if s.PerSolid["column-2"] != 0 {
		t.Errorf("column-2 should be missed")
	}
	if report.Meshes != nil {
		t.Error("no STL configured, expected no meshes")
	}
}

func TestE2EEmptySource(t *testing.T) {
	app := newTestApp(testConfig())
	report, err := app.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", report.Errors)
	}
	if report.Summary.Rays != 2 || report.Summary.RaysHit != 0 {
		t.Errorf("summary = %+v", report.Summary)
	}
}

func TestE2ESyntaxError(t *testing.T) {
	app := newTestApp(testConfig())
	report, err := app.Run(context.Background(), `(rpp "a" :min (vec3 0 0 0)`)
	if err != nil {
		t.Fatalf("expected non-fatal error, got %v", err)
	}
	if len(report.Errors) == 0 {
		t.Fatal("expected eval errors")
	}
	if report.Summary.Rays != 0 {
		t.Error("nothing should be shot after an eval error")
	}
}

func TestE2EDuplicateNamesStopRun(t *testing.T) {
	app := newTestApp(testConfig())
	source := `
(rpp "a" :min (vec3 0 0 0) :max (vec3 1 1 1))
(rpp "a" :min (vec3 2 0 0) :max (vec3 3 1 1))
`
	report, err := app.Run(context.Background(), source)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Errors) != 1 || !strings.Contains(report.Errors[0].Message, "duplicate name") {
		t.Fatalf("expected duplicate name error, got %v", report.Errors)
	}

	var out bytes.Buffer
	report.Print(&out)
	if !strings.HasPrefix(out.String(), "error: [error] a: duplicate name") {
		t.Errorf("report = %q", out.String())
	}
}

func TestE2EWritesSTL(t *testing.T) {
	for _, voxel := range []bool{false, true} {
		con := testConfig()
		con.Output.STL = filepath.Join(t.TempDir(), "scene.stl")
		con.Output.Voxel = voxel
		con.Output.Cells = 64
		app := newTestApp(con)

		report, err := app.Run(context.Background(), readExample(t))
		if err != nil {
			t.Fatalf("voxel=%v: Run: %v", voxel, err)
		}
		if len(report.Meshes) != 4 {
			t.Fatalf("voxel=%v: expected 4 meshes, got %d", voxel, len(report.Meshes))
		}
		tris := 0
		for _, m := range report.Meshes {
			if m.IsEmpty() {
				t.Errorf("voxel=%v: %s has no geometry", voxel, m.SolidName)
			}
			tris += m.TriangleCount()
		}
		fi, err := os.Stat(con.Output.STL)
		if err != nil {
			t.Fatalf("voxel=%v: stat: %v", voxel, err)
		}
		if want := int64(84 + 50*tris); fi.Size() != want {
			t.Errorf("voxel=%v: STL size %d, want %d", voxel, fi.Size(), want)
		}
	}
}

func TestE2ECancelled(t *testing.T) {
	app := newTestApp(testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := app.Run(ctx, readExample(t)); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestReportPrint(t *testing.T) {
	app := newTestApp(testConfig())
	report, err := app.Run(context.Background(), readExample(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var out bytes.Buffer
	report.Print(&out)
	text := out.String()
	for _, want := range []string{
		"warning: ramp: coincident vertices reduce it to ARB6",
		"2 rays, 2 hit, 3 segments\n",
		"\tbase",
		"\tcolumn ",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
}

func TestNewAppDefaults(t *testing.T) {
	app := NewApp(nil, nil)
	if app.con == nil || app.engine == nil {
		t.Fatal("NewApp(nil, nil) left fields unset")
	}
}

func TestE2EUseRays(t *testing.T) {
	app := newTestApp(testConfig())
	// Straight down through the ramp into the base, then a miss.
	app.UseRays([]kernel.Ray{
		{Origin: v3.Vec{X: 2, Y: 0.3, Z: 20}, Dir: v3.Vec{Z: -1}},
		{Origin: v3.Vec{X: 50, Y: 50, Z: 20}, Dir: v3.Vec{Z: -1}},
	})
	report, err := app.Run(context.Background(), readExample(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	s := report.Summary
	if s.Rays != 2 || s.RaysHit != 1 || s.Segments != 2 {
		t.Errorf("summary = %+v", s)
	}
	if s.PerSolid["ramp"] != 1 || s.PerSolid["base"] != 1 {
		t.Errorf("per solid = %v", s.PerSolid)
	}
}

func TestE2EWireframes(t *testing.T) {
	app := newTestApp(testConfig())
	report, err := app.Run(context.Background(), readExample(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Wireframes) != 4 {
		t.Fatalf("expected 4 wireframes, got %d", len(report.Wireframes))
	}
	for i, name := range []string{"base", "ramp", "column", "column-2"} {
		w := report.Wireframes[i]
		if w.Name != name {
			t.Errorf("wireframe %d is %s, want %s", i, w.Name, name)
		}
		if w.VList.Strokes() == 0 {
			t.Errorf("%s has an empty wireframe", w.Name)
		}
	}
}

func TestProjectStrokes(t *testing.T) {
	g := scene.Grid{Center: v3.Vec{X: -100}, Dir: v3.Vec{X: 1}}
	u, v := g.Basis()

	var vl kernel.VList
	vl.Move(v3.Vec{X: 5})
	vl.Draw(v3.Vec{X: 5}.Add(u))
	vl.Draw(v3.Vec{X: 7}.Add(v.MulScalar(2)))
	vl.Move(v3.Vec{X: 1}.Sub(u))
	vl.Draw(v3.Vec{X: 1}.Sub(v))

	strokes := projectStrokes(vl, g)
	if len(strokes) != 2 {
		t.Fatalf("expected 2 strokes, got %d", len(strokes))
	}
	want := []stroke{
		{xs: []float64{0, 1, 0}, ys: []float64{0, 0, 2}},
		{xs: []float64{-1, 0}, ys: []float64{0, -1}},
	}
	for i, s := range strokes {
		for j := range want[i].xs {
			if math.Abs(s.xs[j]-want[i].xs[j]) > 1e-12 || math.Abs(s.ys[j]-want[i].ys[j]) > 1e-12 {
				t.Errorf("stroke %d point %d = (%g, %g), want (%g, %g)",
					i, j, s.xs[j], s.ys[j], want[i].xs[j], want[i].ys[j])
			}
		}
	}

	if got := projectStrokes(nil, g); got != nil {
		t.Errorf("empty list gave %v", got)
	}
}

func TestAbsMax(t *testing.T) {
	if m := absMax([]float64{1, -3, 2}); m != 3 {
		t.Errorf("absMax = %g", m)
	}
	if m := absMax(nil); m != 0 {
		t.Errorf("absMax(nil) = %g", m)
	}
}

func TestE2EDumpsPreparedSolids(t *testing.T) {
	app := newTestApp(testConfig())
	var dump bytes.Buffer
	app.DumpTo(&dump)

	if _, err := app.Run(context.Background(), readExample(t)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	text := dump.String()
	for _, want := range []string{
		"base:\n6 faces:\n",
		"ramp:\n5 faces:\n",
		"column:\nA (",
		"column-2:\nA (",
		"UVorig (", // base was hit with UV on
	} {
		if !strings.Contains(text, want) {
			t.Errorf("dump missing %q:\n%s", want, text)
		}
	}

	app.DumpTo(nil)
	dump.Reset()
	if _, err := app.Run(context.Background(), readExample(t)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if dump.Len() != 0 {
		t.Errorf("dump written after DumpTo(nil): %q", dump.String())
	}
}
