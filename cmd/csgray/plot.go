package main

import (
	"fmt"

	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/scene"
	plt "github.com/phil-mansfield/pyplot"
)

// Wireframe is one solid's vector list, captured before the scene is freed.
type Wireframe struct {
	Name  string
	VList kernel.VList
}

// stroke is one polyline projected onto the grid plane.
type stroke struct {
	xs, ys []float64
}

var plotColors = []string{"k", "r", "b", "g", "m", "c", "y"}

// projectStrokes splits vl into polylines and projects them onto the plane
// spanned by the grid basis, with the grid center at the origin.
func projectStrokes(vl kernel.VList, g scene.Grid) []stroke {
	u, v := g.Basis()
	var out []stroke
	for _, p := range vl {
		d := p.Pt.Sub(g.Center)
		x, y := d.Dot(u), d.Dot(v)
		if p.Cmd == kernel.LineMove || len(out) == 0 {
			out = append(out, stroke{})
		}
		s := &out[len(out)-1]
		s.xs = append(s.xs, x)
		s.ys = append(s.ys, y)
	}
	return out
}

// plotWireframes queues a figure of every wireframe as seen along the grid
// direction and saves it to fname. Nothing is drawn until plt.Execute.
func plotWireframes(fname string, wires []Wireframe, g scene.Grid) {
	plt.Figure(plt.FigSize(8, 8))

	lim := 0.0
	for i, w := range wires {
		color := plotColors[i%len(plotColors)]
		for _, s := range projectStrokes(w.VList, g) {
			plt.Plot(s.xs, s.ys, plt.LW(1), plt.C(color))
			lim = max(lim, absMax(s.xs), absMax(s.ys))
		}
	}
	if lim == 0 {
		lim = 1
	}
	lim *= 1.1

	plt.Title(fmt.Sprintf("%d solids, viewed along (%g, %g, %g)",
		len(wires), g.Dir.X, g.Dir.Y, g.Dir.Z))
	plt.XLabel(`$u$`, plt.FontSize(16))
	plt.YLabel(`$v$`, plt.FontSize(16))
	plt.XLim(-lim, +lim)
	plt.YLim(-lim, +lim)
	plt.SaveFig(fname)
}

func absMax(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		if x < 0 {
			x = -x
		}
		m = max(m, x)
	}
	return m
}
