package layout

import (
	"context"
	"sort"

	"github.com/matzehuels/clusterflow/pkg/graph"
)

// Sweeps is the number of barycenter passes (down and up count separately).
const Sweeps = 4

// Layered is the built-in layered layout engine.
//
// It ranks leaf nodes by longest path, orders each rank with barycenter
// sweeps starting from hierarchy order (so cluster members start out
// adjacent) and packs ranks NodeSep apart across and RankSep apart along the
// rank direction. Compound nodes are fitted around their members afterwards.
type Layered struct{}

// NewLayered returns the built-in layered engine.
func NewLayered() *Layered { return &Layered{} }

// Name implements [Engine].
func (*Layered) Name() string { return "layered" }

type placement struct {
	rank  int
	order int
	cross float64 // centre across the rank direction
	along float64 // centre along the rank direction
}

// Layout implements [Engine].
func (l *Layered) Layout(ctx context.Context, g *graph.Graph) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	attrs := g.Attrs()
	dir := attrs.Dir.Normalize()

	var leaves []string
	index := make(map[string]int)
	for _, id := range g.Hierarchy() {
		if g.HasChildren(id) {
			continue
		}
		index[id] = len(leaves)
		leaves = append(leaves, id)
	}

	succ, pred := flatEdges(g, leaves, index)
	ranks := assignRanks(leaves, succ, pred)

	layers := make(map[int][]string)
	maxRank := 0
	for _, id := range leaves {
		r := ranks[id]
		layers[r] = append(layers[r], id)
		maxRank = max(maxRank, r)
	}
	orderLayers(layers, maxRank, succ, pred)

	if err := ctx.Err(); err != nil {
		return err
	}

	size := func(n *graph.Node) (cross, along float64) {
		if dir.Horizontal() {
			return n.Height, n.Width
		}
		return n.Width, n.Height
	}

	pos := make(map[string]*placement, len(leaves))
	top := 0.0
	for r := 0; r <= maxRank; r++ {
		layer := layers[r]
		thick := 0.0
		for _, id := range layer {
			n, _ := g.Node(id)
			_, a := size(n)
			thick = max(thick, a)
		}
		total := 0.0
		for i, id := range layer {
			n, _ := g.Node(id)
			c, _ := size(n)
			if i > 0 {
				total += attrs.NodeSep
			}
			total += c
		}
		x := -total / 2
		for i, id := range layer {
			n, _ := g.Node(id)
			c, _ := size(n)
			pos[id] = &placement{rank: r, order: i, cross: x + c/2, along: top + thick/2}
			x += c + attrs.NodeSep
		}
		if len(layer) > 0 {
			top += thick + attrs.RankSep
		}
	}

	for id, p := range pos {
		n, _ := g.Node(id)
		switch dir {
		case graph.DirBT:
			n.X, n.Y = p.cross, -p.along
		case graph.DirLR:
			n.X, n.Y = p.along, p.cross
		case graph.DirRL:
			n.X, n.Y = -p.along, p.cross
		default:
			n.X, n.Y = p.cross, p.along
		}
	}

	FitClusters(g)
	normalize(g)
	RouteStraight(g)
	return nil
}

// flatEdges collects leaf-to-leaf adjacency, dropping self-loops and
// reversing the back edges of a DFS so the result is acyclic.
func flatEdges(g *graph.Graph, leaves []string, index map[string]int) (succ, pred map[string][]string) {
	adj := make(map[string][]string)
	for _, e := range g.Edges() {
		if e.IsLoop() {
			continue
		}
		if _, ok := index[e.V]; !ok {
			continue
		}
		if _, ok := index[e.W]; !ok {
			continue
		}
		adj[e.V] = append(adj[e.V], e.W)
	}

	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int)
	back := make(map[[2]string]bool)
	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, w := range adj[id] {
			switch color[w] {
			case white:
				dfs(w)
			case gray:
				back[[2]string{id, w}] = true
			}
		}
		color[id] = black
	}
	for _, id := range leaves {
		if color[id] == white {
			dfs(id)
		}
	}

	succ = make(map[string][]string)
	pred = make(map[string][]string)
	for _, v := range leaves {
		for _, w := range adj[v] {
			from, to := v, w
			if back[[2]string{v, w}] {
				from, to = w, v
			}
			succ[from] = append(succ[from], to)
			pred[to] = append(pred[to], from)
		}
	}
	return succ, pred
}

// assignRanks places every node one rank below its deepest predecessor.
func assignRanks(leaves []string, succ, pred map[string][]string) map[string]int {
	inDegree := make(map[string]int, len(leaves))
	ranks := make(map[string]int, len(leaves))
	queue := make([]string, 0, len(leaves))
	for _, id := range leaves {
		inDegree[id] = len(pred[id])
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range succ[curr] {
			if r := ranks[curr] + 1; r > ranks[child] {
				ranks[child] = r
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return ranks
}

// orderLayers reorders each rank by the mean position of its neighbours in
// the adjacent rank, alternating downward and upward sweeps.
func orderLayers(layers map[int][]string, maxRank int, succ, pred map[string][]string) {
	position := make(map[string]float64)
	for _, layer := range layers {
		for i, id := range layer {
			position[id] = float64(i)
		}
	}

	sortLayer := func(layer []string, neighbours map[string][]string) {
		bary := make(map[string]float64, len(layer))
		for _, id := range layer {
			ns := neighbours[id]
			if len(ns) == 0 {
				bary[id] = position[id]
				continue
			}
			sum := 0.0
			for _, n := range ns {
				sum += position[n]
			}
			bary[id] = sum / float64(len(ns))
		}
		sort.SliceStable(layer, func(i, j int) bool { return bary[layer[i]] < bary[layer[j]] })
		for i, id := range layer {
			position[id] = float64(i)
		}
	}

	for s := 0; s < Sweeps; s++ {
		if s%2 == 0 {
			for r := 1; r <= maxRank; r++ {
				sortLayer(layers[r], pred)
			}
		} else {
			for r := maxRank - 1; r >= 0; r-- {
				sortLayer(layers[r], succ)
			}
		}
	}
}

// normalize shifts the nodes of g so their bounding box starts at the
// margins and records the overall size on the graph attributes. Nested
// graphs keep their own frame.
func normalize(g *graph.Graph) {
	attrs := g.Attrs()
	b := g.Bounds()
	dx, dy := attrs.MarginX-b.X, attrs.MarginY-b.Y
	for _, n := range g.Nodes() {
		n.X += dx
		n.Y += dy
	}
	attrs.Width = b.Width + 2*attrs.MarginX
	attrs.Height = b.Height + 2*attrs.MarginY
}
