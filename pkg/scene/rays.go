package scene

import (
	"fmt"

	"github.com/chazu/csgray/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/phil-mansfield/table"
)

// rayColumns are the origin and direction columns of a ray file.
var rayColumns = []int{0, 1, 2, 3, 4, 5}

// ReadRays reads a whitespace-separated ray file with one ray per line:
// origin x y z, then direction x y z. Directions are normalized.
func ReadRays(path string) ([]kernel.Ray, error) {
	cols, err := table.ReadTable(path, rayColumns, nil)
	if err != nil {
		return nil, fmt.Errorf("scene: rays %s: %w", path, err)
	}

	n := len(cols[0])
	rays := make([]kernel.Ray, n)
	for i := 0; i < n; i++ {
		dir := v3.Vec{X: cols[3][i], Y: cols[4][i], Z: cols[5][i]}
		if dir.Length() == 0 {
			return nil, fmt.Errorf("scene: rays %s: ray %d has no direction", path, i+1)
		}
		rays[i] = kernel.Ray{
			Origin: v3.Vec{X: cols[0][i], Y: cols[1][i], Z: cols[2][i]},
			Dir:    dir.Normalize(),
		}
	}
	return rays, nil
}
