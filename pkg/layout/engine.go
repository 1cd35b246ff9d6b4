// Package layout provides flat layout engines for compound graphs.
//
// A flat engine assigns positions to every node and polyline points to
// every edge of a single [graph.Graph] view. It never descends into nested
// graphs of extracted clusters: those are sized by the caller beforehand and
// treated as plain nodes. Nodes that still have children in the view are
// fitted around their descendants after positioning.
//
// Two engines are available:
//
//   - [Layered]: a built-in Sugiyama-style layered layout (longest-path
//     ranking, barycenter ordering, rank packing)
//   - dot: Graphviz via the layout/dot subpackage
//
// Both report the graph's overall size through [graph.Attrs] Width/Height.
package layout

import (
	"context"

	"github.com/matzehuels/clusterflow/pkg/graph"
)

// Engine lays out one graph view in place.
type Engine interface {
	// Name identifies the engine in logs and cache keys.
	Name() string

	// Layout assigns X/Y to every node and Points to every edge of g.
	// Node Width/Height are inputs and are not changed, except for
	// compound nodes which are resized to enclose their descendants.
	Layout(ctx context.Context, g *graph.Graph) error
}

// DefaultClusterPadding is used for compound nodes without a padding.
const DefaultClusterPadding = 8

// FitClusters sizes every compound node of g to enclose its children plus
// padding and its title. Children are fitted before their parents.
func FitClusters(g *graph.Graph) {
	order := g.Hierarchy()
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		kids := g.Children(id)
		if len(kids) == 0 {
			continue
		}
		n, _ := g.Node(id)
		pad := n.Padding
		if pad == 0 {
			pad = DefaultClusterPadding
		}

		var minX, minY, maxX, maxY float64
		for j, k := range kids {
			c, _ := g.Node(k)
			b := c.Box()
			if j == 0 {
				minX, minY, maxX, maxY = b.X, b.Y, b.X+b.Width, b.Y+b.Height
				continue
			}
			minX = min(minX, b.X)
			minY = min(minY, b.Y)
			maxX = max(maxX, b.X+b.Width)
			maxY = max(maxY, b.Y+b.Height)
		}
		minX -= pad
		maxX += pad
		minY -= pad + n.LabelHeight
		maxY += pad

		n.Width = maxX - minX
		n.Height = maxY - minY
		n.X = minX + n.Width/2
		n.Y = minY + n.Height/2
	}
}

// ClipToBox returns the point where the segment from the centre of r to p
// leaves r. Points inside r's centre return the centre.
func ClipToBox(r graph.Rect, p graph.Point) graph.Point {
	cx, cy := r.X+r.Width/2, r.Y+r.Height/2
	dx, dy := p.X-cx, p.Y-cy
	if dx == 0 && dy == 0 {
		return graph.Point{X: cx, Y: cy}
	}
	hw, hh := r.Width/2, r.Height/2
	sx, sy := 1e300, 1e300
	if dx != 0 {
		sx = hw / abs(dx)
	}
	if dy != 0 {
		sy = hh / abs(dy)
	}
	s := min(sx, sy)
	return graph.Point{X: cx + dx*s, Y: cy + dy*s}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// RouteStraight gives every edge of g a three-point polyline from the
// border of its source through the midpoint to the border of its target,
// and centres the edge label on the midpoint.
func RouteStraight(g *graph.Graph) {
	for _, e := range g.Edges() {
		RouteEdge(g, e)
	}
}

// RouteEdge routes a single edge of g the way [RouteStraight] does.
func RouteEdge(g *graph.Graph, e *graph.Edge) {
	v, ok1 := g.Node(e.V)
	w, ok2 := g.Node(e.W)
	if !ok1 || !ok2 {
		return
	}
	vc := graph.Point{X: v.X, Y: v.Y}
	wc := graph.Point{X: w.X, Y: w.Y}
	start := ClipToBox(v.Box(), wc)
	end := ClipToBox(w.Box(), vc)
	mid := graph.Point{X: (start.X + end.X) / 2, Y: (start.Y + end.Y) / 2}
	e.Points = []graph.Point{start, mid, end}
	e.LabelPos = mid
}
