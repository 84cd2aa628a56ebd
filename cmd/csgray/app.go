package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/chazu/csgray/pkg/config"
	"github.com/chazu/csgray/pkg/engine"
	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/kernel/sdfx"
	"github.com/chazu/csgray/pkg/scene"
	"github.com/chazu/csgray/pkg/tessellate"
)

// App runs scene scripts through the whole pipeline.
type App struct {
	engine *engine.Engine
	con    *config.Config
	logger kernel.Logger
	rays   []kernel.Ray
	dump   io.Writer
}

// printer is implemented by solids that can dump their prepared state.
type printer interface {
	Print(w io.Writer)
}

// Report is everything one run produced. Errors stop the run before prep;
// PrepErrors only drop the failing solids.
type Report struct {
	Scene      *scene.Scene
	Errors     []engine.EvalError
	Warnings   []engine.EvalWarning
	PrepErrors []scene.PrepError
	Summary    scene.Summary
	Meshes     []*kernel.Mesh
	Wireframes []Wireframe
}

// NewApp creates an App. A nil logger logs through the standard logger.
func NewApp(con *config.Config, logger kernel.Logger) *App {
	if con == nil {
		con = config.Default()
	}
	return &App{
		engine: engine.NewEngine(),
		con:    con,
		logger: logger,
	}
}

// UseRays makes Run shoot rays instead of the configured grid. A nil
// slice restores the grid.
func (a *App) UseRays(rays []kernel.Ray) {
	a.rays = rays
}

// DumpTo makes Run write every prepared solid's faces or facets to w after
// shooting. A nil w turns the dump off.
func (a *App) DumpTo(w io.Writer) {
	a.dump = w
}

// Run evaluates source, preps the scene, shoots the configured grid and,
// when an STL path is configured, tessellates and writes it.
func (a *App) Run(ctx context.Context, source string) (*Report, error) {
	// Step 1: evaluate and validate the script.
	res, err := a.engine.EvaluateFull(ctx, source, a.con.Tol())
	if err != nil {
		return nil, err
	}
	report := &Report{Scene: res.Scene, Errors: res.Errors, Warnings: res.Warnings}
	if len(report.Errors) > 0 {
		return report, nil
	}

	// Step 2: prep every solid, skipping the ones that fail.
	opts := a.con.Options()
	opts.Logger = a.logger
	p := scene.Prep(res.Scene, opts)
	defer p.Free()
	report.PrepErrors = p.Errors
	for _, solid := range p.Solids {
		report.Wireframes = append(report.Wireframes, Wireframe{Name: solid.Name(), VList: solid.Plot()})
	}

	// Step 3: shoot the grid, or the rays we were handed.
	rays := a.rays
	if rays == nil {
		rays = a.con.RayGrid().Rays()
	}
	results, err := scene.Shoot(ctx, p, rays, a.con.ShotOptions())
	if err != nil {
		return nil, fmt.Errorf("shoot: %w", err)
	}
	report.Summary = scene.Summarize(results)
	if a.dump != nil {
		for _, solid := range p.Solids {
			if pr, ok := solid.(printer); ok {
				fmt.Fprintf(a.dump, "%s:\n", solid.Name())
				pr.Print(a.dump)
			}
		}
	}

	// Step 4: optional mesh output.
	if !a.con.Output.ValidSTL() {
		return report, nil
	}
	mode := tessellate.Exact
	if a.con.Output.Voxel {
		mode = tessellate.Voxel
	}
	report.Meshes, err = tessellate.Run(p, mode, a.con.Output.Cells)
	if err != nil {
		return nil, err
	}
	if err := sdfx.SaveSTL(a.con.Output.STL, report.Meshes...); err != nil {
		return nil, err
	}
	return report, nil
}

// Print writes a human-readable report.
func (r *Report) Print(w io.Writer) {
	for _, e := range r.Errors {
		fmt.Fprintf(w, "error: %s\n", e.Error())
	}
	for _, wn := range r.Warnings {
		fmt.Fprintf(w, "warning: %s: %s\n", wn.Name, wn.Message)
	}
	if len(r.Errors) > 0 {
		return
	}
	for _, e := range r.PrepErrors {
		fmt.Fprintf(w, "skipped: %s\n", e.Error())
	}

	s := r.Summary
	fmt.Fprintf(w, "%d rays, %d hit, %d segments", s.Rays, s.RaysHit, s.Segments)
	if s.Errors > 0 {
		fmt.Fprintf(w, ", %d errors", s.Errors)
	}
	fmt.Fprintln(w)
	for _, name := range slices.Sorted(maps.Keys(s.PerSolid)) {
		fmt.Fprintf(w, "\t%-16s %d\n", name, s.PerSolid[name])
	}

	if len(r.Meshes) > 0 {
		n := 0
		for _, m := range r.Meshes {
			n += m.TriangleCount()
		}
		fmt.Fprintf(w, "%d meshes, %d triangles\n", len(r.Meshes), n)
	}
}
