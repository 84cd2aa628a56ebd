package scene

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/primitive/arb"
	"github.com/chazu/csgray/pkg/vmath"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Grid is a rectangle of parallel rays. The rectangle is centered on
// Center, perpendicular to Dir, with Cols x Rows rays spaced Cell apart.
type Grid struct {
	Center v3.Vec
	Dir    v3.Vec
	Cell   float64
	Cols   int
	Rows   int
}

// Rays returns the grid's rays in row-major order.
func (g Grid) Rays() []kernel.Ray {
	if g.Cols <= 0 || g.Rows <= 0 {
		return nil
	}
	dir := g.Dir.Normalize()
	u, v := g.Basis()

	x0 := -0.5 * g.Cell * float64(g.Cols-1)
	y0 := -0.5 * g.Cell * float64(g.Rows-1)

	rays := make([]kernel.Ray, 0, g.Cols*g.Rows)
	for row := 0; row < g.Rows; row++ {
		y := y0 + g.Cell*float64(row)
		for col := 0; col < g.Cols; col++ {
			x := x0 + g.Cell*float64(col)
			o := vmath.Join(vmath.Join(g.Center, x, u), y, v)
			rays = append(rays, kernel.Ray{Origin: o, Dir: dir})
		}
	}
	return rays
}

// Basis returns the unit column and row directions of the grid plane.
// Together with the ray direction they form a right-handed frame.
func (g Grid) Basis() (u, v v3.Vec) {
	dir := g.Dir.Normalize()
	u = vmath.Ortho(dir)
	return u, dir.Cross(u)
}

// ShotOptions controls per-hit post-processing.
type ShotOptions struct {
	Workers int // <= 0 means runtime.NumCPU()
	UV      bool
	App     kernel.Application
}

// SolidHit is what one ray found in one solid. Hit points and normals are
// filled in. UV has one entry per segment entry hit when requested.
type SolidHit struct {
	Solid string
	Segs  []kernel.Seg
	UV    []kernel.UVCoord
}

// RayResult is the outcome of one ray against the whole scene.
type RayResult struct {
	Index int
	Ray   kernel.Ray
	Hits  []SolidHit
	Err   error
}

// rayTask is one ray queued for a worker.
type rayTask struct {
	Index int
	Ray   kernel.Ray
}

// WorkerPool shoots rays at a fixed set of solids in parallel.
type WorkerPool struct {
	taskQueue   chan rayTask
	resultQueue chan RayResult
	numWorkers  int
	solids      []kernel.Solid
	opts        ShotOptions
	wg          sync.WaitGroup

	// ARB solids are shot together through arb.VShot. arbSlot maps a solid
	// index to its place in arbs, or -1.
	arbs    []*arb.Solid
	arbSlot []int
}

// NewWorkerPool creates a pool whose queues hold capacity rays without
// blocking.
func NewWorkerPool(solids []kernel.Solid, opts ShotOptions, capacity int) *WorkerPool {
	n := opts.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	wp := &WorkerPool{
		taskQueue:   make(chan rayTask, capacity),
		resultQueue: make(chan RayResult, capacity),
		numWorkers:  n,
		solids:      solids,
		opts:        opts,
		arbSlot:     make([]int, len(solids)),
	}
	for i, s := range solids {
		wp.arbSlot[i] = -1
		if a, ok := s.(*arb.Solid); ok {
			wp.arbSlot[i] = len(wp.arbs)
			wp.arbs = append(wp.arbs, a)
		}
	}
	return wp
}

// Start begins all workers. A worker quits once ctx is done, leaving the
// rest of the queue unshot.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.run(ctx)
	}
}

// Stop closes the task queue, waits for the workers and closes the result
// queue. No worker touches a solid after Stop returns.
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// Submit queues one ray.
func (wp *WorkerPool) Submit(index int, r kernel.Ray) {
	wp.taskQueue <- rayTask{Index: index, Ray: r}
}

// Results returns the result channel. It is closed by Stop.
func (wp *WorkerPool) Results() <-chan RayResult {
	return wp.resultQueue
}

// NumWorkers returns the number of workers in the pool.
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

func (wp *WorkerPool) run(ctx context.Context) {
	defer wp.wg.Done()
	for ctx.Err() == nil {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-wp.taskQueue:
			if !ok {
				return
			}
			wp.resultQueue <- wp.shoot(task)
		}
	}
}

func (wp *WorkerPool) shoot(task rayTask) RayResult {
	res := RayResult{Index: task.Index, Ray: task.Ray}
	arbSegs, arbHit := wp.shootARBs(task.Ray)
	for i, s := range wp.solids {
		var segs []kernel.Seg
		if k := wp.arbSlot[i]; k >= 0 {
			if arbHit[k] {
				segs = []kernel.Seg{arbSegs[k]}
			}
		} else {
			segs = s.Shoot(task.Ray)
		}
		if len(segs) == 0 {
			continue
		}
		hit := SolidHit{Solid: s.Name(), Segs: segs}
		for i := range segs {
			s.Norm(&segs[i].In, task.Ray)
			s.Norm(&segs[i].Out, task.Ray)
			if wp.opts.UV {
				uv, err := s.UV(wp.opts.App, &segs[i].In)
				if err != nil {
					res.Err = fmt.Errorf("%s: %w", s.Name(), err)
				}
				hit.UV = append(hit.UV, uv)
			}
		}
		res.Hits = append(res.Hits, hit)
	}
	return res
}

// shootARBs pairs r with every ARB solid and runs them as one batch.
func (wp *WorkerPool) shootARBs(r kernel.Ray) ([]kernel.Seg, []bool) {
	if len(wp.arbs) == 0 {
		return nil, nil
	}
	rays := make([]kernel.Ray, len(wp.arbs))
	for i := range rays {
		rays[i] = r
	}
	return arb.VShot(wp.arbs, rays)
}

// Shoot fires every ray at the prepared scene and returns one result per
// ray, in ray order. Cancelling ctx stops the workers between rays; Shoot
// returns only after all of them have, so p may be freed right after.
func Shoot(ctx context.Context, p *Prepared, rays []kernel.Ray, opts ShotOptions) ([]RayResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Both queues hold every ray, so neither Submit nor a worker blocks.
	wp := NewWorkerPool(p.Solids, opts, len(rays))
	wp.Start(ctx)
	for i, r := range rays {
		wp.Submit(i, r)
	}
	wp.Stop()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]RayResult, len(rays))
	for res := range wp.Results() {
		results[res.Index] = res
	}
	return results, nil
}

// Summary counts what a batch of rays hit.
type Summary struct {
	Rays     int
	RaysHit  int
	Segments int
	PerSolid map[string]int // rays that hit each solid
	Errors   int
}

// Summarize tallies results.
func Summarize(results []RayResult) Summary {
	sum := Summary{Rays: len(results), PerSolid: make(map[string]int)}
	for _, r := range results {
		if r.Err != nil {
			sum.Errors++
		}
		if len(r.Hits) > 0 {
			sum.RaysHit++
		}
		for _, h := range r.Hits {
			sum.Segments += len(h.Segs)
			sum.PerSolid[h.Solid]++
		}
	}
	return sum
}
