// Package tessellate turns a prepared scene into triangle meshes, one mesh
// per solid. Exact mode triangulates each solid's own faces; voxel mode
// renders ARBs through their signed distance field with marching cubes.
package tessellate

import (
	"fmt"

	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/kernel/sdfx"
	"github.com/chazu/csgray/pkg/primitive/arb"
	"github.com/chazu/csgray/pkg/scene"
)

// Mode selects how solids are meshed.
type Mode int

const (
	Exact Mode = iota // triangulate faces or facets
	Voxel             // marching cubes over the SDF where one exists
)

func (m Mode) String() string {
	switch m {
	case Exact:
		return "exact"
	case Voxel:
		return "voxel"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Tessellate produces one mesh per solid of p, in scene order, with exact
// triangulation. The tessellator is read-only.
func Tessellate(p *scene.Prepared) ([]*kernel.Mesh, error) {
	return Run(p, Exact, 0)
}

// Voxelize is Tessellate in voxel mode. Solids without an SDF fall back to
// exact triangulation. cells <= 0 uses sdfx.DefaultMeshCells.
func Voxelize(p *scene.Prepared, cells int) ([]*kernel.Mesh, error) {
	return Run(p, Voxel, cells)
}

// Run meshes every solid of p with the given mode.
func Run(p *scene.Prepared, mode Mode, cells int) ([]*kernel.Mesh, error) {
	if p == nil {
		return nil, nil
	}

	meshes := make([]*kernel.Mesh, 0, len(p.Solids))
	for _, s := range p.Solids {
		mesh, err := handleSolid(s, mode, cells)
		if err != nil {
			return nil, fmt.Errorf("tessellate: solid %s: %w", s.Name(), err)
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// handleSolid meshes one solid.
func handleSolid(s kernel.Solid, mode Mode, cells int) (*kernel.Mesh, error) {
	if mode == Voxel {
		if a, ok := s.(*arb.Solid); ok {
			return voxelARB(a, cells)
		}
	}

	t, ok := s.(kernel.Tessellator)
	if !ok {
		return nil, fmt.Errorf("%T cannot be tessellated", s)
	}
	return t.Tess()
}

func voxelARB(a *arb.Solid, cells int) (*kernel.Mesh, error) {
	c, err := sdfx.FromARB(a)
	if err != nil {
		return nil, err
	}
	mesh, err := sdfx.ToMesh(c, cells)
	if err != nil {
		return nil, err
	}
	mesh.SolidName = a.Name()
	return mesh, nil
}
