package render

import (
	"maps"

	"github.com/matzehuels/clusterflow/pkg/diagram"
	"github.com/matzehuels/clusterflow/pkg/graph"
)

// Export converts the result into its serialized form.
func (r *Result) Export() *diagram.Layout {
	l := &diagram.Layout{
		ID:        r.ID,
		Type:      r.Type,
		Engine:    r.Engine,
		Direction: string(r.Graph.Attrs().Dir),
		Width:     r.Width,
		Height:    r.Height,
		Diff:      r.Diff,
		Nodes:     exportNodes(r.Graph, ""),
		Edges:     exportEdges(r.Graph),
	}
	for _, d := range r.Dropped {
		l.Dropped = append(l.Dropped, diagram.DroppedEdge{
			Cluster: d.Cluster,
			V:       d.V,
			W:       d.W,
			Name:    d.Name,
			Reason:  d.Reason,
		})
	}
	return l
}

// exportNodes lists the nodes of g in hierarchy order. Roots of a nested
// graph report the extracted cluster as their parent.
func exportNodes(g *graph.Graph, owner string) []diagram.LayoutNode {
	ids := g.Hierarchy()
	out := make([]diagram.LayoutNode, 0, len(ids))
	for _, id := range ids {
		n, _ := g.Node(id)
		parent := g.Parent(id)
		if parent == "" {
			parent = owner
		}
		ln := diagram.LayoutNode{
			ID:      id,
			Parent:  parent,
			Kind:    g.Kind(id).String(),
			Label:   n.Label,
			Shape:   n.Shape,
			X:       n.X,
			Y:       n.Y,
			Width:   n.Width,
			Height:  n.Height,
			OffsetY: n.OffsetY,
		}
		if len(n.Meta) > 0 {
			ln.Meta = maps.Clone(n.Meta)
		}
		if n.Sub != nil {
			ln.Graph = &diagram.SubLayout{
				Direction: string(n.Sub.Attrs().Dir),
				Diff:      n.Diff,
				Nodes:     exportNodes(n.Sub, id),
				Edges:     exportEdges(n.Sub),
			}
		}
		out = append(out, ln)
	}
	return out
}

func exportEdges(g *graph.Graph) []diagram.LayoutEdge {
	edges := g.Edges()
	out := make([]diagram.LayoutEdge, 0, len(edges))
	for _, e := range edges {
		le := diagram.LayoutEdge{
			ID:          e.ID,
			V:           e.V,
			W:           e.W,
			Name:        e.Name,
			Label:       e.Label,
			ArrowEnd:    e.ArrowEnd,
			FromCluster: e.FromCluster,
			ToCluster:   e.ToCluster,
			Points:      points(e.Points),
		}
		if e.Label != "" {
			le.LabelPos = &diagram.Point{X: e.LabelPos.X, Y: e.LabelPos.Y}
		}
		if e.Path != nil {
			le.Path = PathData(e.Path.Points)
		}
		out = append(out, le)
	}
	return out
}

func points(pts []graph.Point) []diagram.Point {
	out := make([]diagram.Point, len(pts))
	for i, p := range pts {
		out[i] = diagram.Point{X: p.X, Y: p.Y}
	}
	return out
}
