// Package config reads csgray run files. A run file is an INI-style gcfg
// file with [Tolerance], [Shot], [Grid] and [Output] sections; anything
// left out keeps the value from Default.
package config

import (
	"fmt"
	"strings"

	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gopkg.in/gcfg.v1"
)

const Example = `[Tolerance]

#######################
# Optional Parameters #
#######################

# Points closer than Dist are merged when building ARB faces and ARS
# tessellations. The default is sqrt(0.005).
# Dist = 0.0707

# ARS facets with an edge or normal shorter than Facet are dropped.
# Facet = 1e-4

# Cosine slop for collinear and coplanar tests.
# Dot = 0.0087

[Shot]

# Reject non-planar ARB faces and treat ARS in/out mismatches as misses.
Conservative = false

# Log per-face and per-hit detail.
Debug = false

# Compute UV coordinates for every entry hit.
UV = true

# Build the ARB UV basis at prep instead of on the first UV query.
# UVWanted = false

# Number of shooting goroutines. 0 uses every CPU.
Workers = 0

# Beam radius at the grid and its growth per unit distance, used for the
# UV footprint.
RBeam = 0.01
Diverge = 0

[Grid]

#######################
# Required Parameters #
#######################

# Center of the ray grid and the direction every ray travels.
CenterX = -100
CenterY = 0
CenterZ = 0
DirX = 1
DirY = 0
DirZ = 0

# Spacing between neighboring rays and the grid size.
Cell = 0.5
Cols = 64
Rows = 64

[Output]

#######################
# Optional Parameters #
#######################

# Write the tessellated scene here.
# STL = scene.stl

# Mesh ARBs with marching cubes over this many cells instead of exactly.
# Voxel = false
# Cells = 200`

type ToleranceConfig struct {
	Dist, Facet, Dot float64
}

func (con *ToleranceConfig) ValidDist() bool {
	return con.Dist > 0
}
func (con *ToleranceConfig) ValidFacet() bool {
	return con.Facet > 0
}
func (con *ToleranceConfig) ValidDot() bool {
	return con.Dot > 0 && con.Dot < 1
}

type ShotConfig struct {
	Conservative, Debug, UV, UVWanted bool
	Workers                           int
	RBeam, Diverge                    float64
}

func (con *ShotConfig) ValidWorkers() bool {
	return con.Workers >= 0
}
func (con *ShotConfig) ValidRBeam() bool {
	return con.RBeam >= 0
}
func (con *ShotConfig) ValidDiverge() bool {
	return con.Diverge >= 0
}

type GridConfig struct {
	// Required
	CenterX, CenterY, CenterZ float64
	DirX, DirY, DirZ          float64
	Cell                      float64
	Cols, Rows                int
}

func (con *GridConfig) ValidDir() bool {
	return con.DirX != 0 || con.DirY != 0 || con.DirZ != 0
}
func (con *GridConfig) ValidCell() bool {
	return con.Cell > 0
}
func (con *GridConfig) ValidCols() bool {
	return con.Cols > 0
}
func (con *GridConfig) ValidRows() bool {
	return con.Rows > 0
}

type OutputConfig struct {
	// Optional
	STL   string
	Voxel bool
	Cells int
}

func (con *OutputConfig) ValidSTL() bool {
	return con.STL != ""
}
func (con *OutputConfig) ValidCells() bool {
	return con.Cells > 0
}

// Config is one run file. Each field is a section.
type Config struct {
	Tolerance ToleranceConfig
	Shot      ShotConfig
	Grid      GridConfig
	Output    OutputConfig
}

// Default returns a Config with legacy tolerances, a 64x64 grid along +X
// and no output file.
func Default() *Config {
	tol := kernel.DefaultTol()
	con := &Config{}
	con.Tolerance.Dist = tol.Dist
	con.Tolerance.Facet = tol.Facet
	con.Tolerance.Dot = tol.Dot
	con.Shot.RBeam = 0.01
	con.Grid.CenterX = -100
	con.Grid.DirX = 1
	con.Grid.Cell = 0.5
	con.Grid.Cols = 64
	con.Grid.Rows = 64
	con.Output.Cells = 200
	return con
}

// ReadFile reads a run file over the defaults and checks it.
func ReadFile(path string) (*Config, error) {
	con := Default()
	if err := gcfg.ReadFileInto(con, path); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := con.Check(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return con, nil
}

// ReadString is ReadFile for in-memory text.
func ReadString(text string) (*Config, error) {
	con := Default()
	if err := gcfg.ReadStringInto(con, text); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := con.Check(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return con, nil
}

// Check reports every invalid value at once.
func (con *Config) Check() error {
	var bad []string
	check := func(ok bool, section, name string) {
		if !ok {
			bad = append(bad, section+"."+name)
		}
	}

	check(con.Tolerance.ValidDist(), "Tolerance", "Dist")
	check(con.Tolerance.ValidFacet(), "Tolerance", "Facet")
	check(con.Tolerance.ValidDot(), "Tolerance", "Dot")
	check(con.Shot.ValidWorkers(), "Shot", "Workers")
	check(con.Shot.ValidRBeam(), "Shot", "RBeam")
	check(con.Shot.ValidDiverge(), "Shot", "Diverge")
	check(con.Grid.ValidDir(), "Grid", "Dir")
	check(con.Grid.ValidCell(), "Grid", "Cell")
	check(con.Grid.ValidCols(), "Grid", "Cols")
	check(con.Grid.ValidRows(), "Grid", "Rows")
	if con.Output.Voxel {
		check(con.Output.ValidCells(), "Output", "Cells")
	}

	if len(bad) > 0 {
		return fmt.Errorf("invalid values for %s", strings.Join(bad, ", "))
	}
	return nil
}

// Tol returns the configured tolerances.
func (con *Config) Tol() kernel.Tol {
	tol := kernel.NewTol(con.Tolerance.Dist)
	tol.Facet = con.Tolerance.Facet
	tol.Dot = con.Tolerance.Dot
	return tol
}

// Options returns the prep and shot options. The logger is left nil, so
// solids log through the standard logger.
func (con *Config) Options() kernel.Options {
	return kernel.Options{
		Tol:          con.Tol(),
		Conservative: con.Shot.Conservative,
		UVWanted:     con.Shot.UVWanted,
		Debug:        con.Shot.Debug,
	}
}

// ShotOptions returns the worker pool settings.
func (con *Config) ShotOptions() scene.ShotOptions {
	return scene.ShotOptions{
		Workers: con.Shot.Workers,
		UV:      con.Shot.UV,
		App:     kernel.Application{RBeam: con.Shot.RBeam, Diverge: con.Shot.Diverge},
	}
}

// RayGrid returns the ray grid.
func (con *Config) RayGrid() scene.Grid {
	g := con.Grid
	return scene.Grid{
		Center: v3.Vec{X: g.CenterX, Y: g.CenterY, Z: g.CenterZ},
		Dir:    v3.Vec{X: g.DirX, Y: g.DirY, Z: g.DirZ},
		Cell:   g.Cell,
		Cols:   g.Cols,
		Rows:   g.Rows,
	}
}
