package render

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/clusterflow/pkg/cluster"
	"github.com/matzehuels/clusterflow/pkg/errors"
	"github.com/matzehuels/clusterflow/pkg/graph"
	"github.com/matzehuels/clusterflow/pkg/layout"
	"github.com/matzehuels/clusterflow/pkg/observability"
)

// TitleRankSep is added to the rank separation of every nested graph to
// leave room for the cluster title.
const TitleRankSep = 25

// Fragment is the rendered form of one graph level.
type Fragment struct {
	Root *Element
	Diff float64
}

// Renderer lays out a graph level by level, innermost extracted cluster
// first. A Renderer holds no per-render state and may be reused.
type Renderer struct {
	Engine layout.Engine
	Nodes  NodeDrawer
	Labels EdgeLabeler
	Paths  PathRouter
	Logger *log.Logger

	DiagramType string
	DiagramID   string

	// TitleMargin is the total margin reserved around subgraph titles.
	TitleMargin float64
}

// Render draws g into parent and lays it out. Nested graphs of extracted
// clusters are rendered first and their coordinates end up in g's frame.
//
// The phases are ordered: leaves are measured and nested graphs rendered
// concurrently, then edge labels are measured concurrently, then g is laid
// out once, then positions and paths are finalized in hierarchy order.
func (r *Renderer) Render(ctx context.Context, st *cluster.State, g *graph.Graph, parent *Element) (*Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := DrawOptions{Dir: g.Attrs().Dir.Normalize(), DiagramType: r.DiagramType}

	root := parent.Group("root")
	clusters := root.Group("clusters")
	paths := root.Group("edgePaths")
	labels := root.Group("edgeLabels")
	nodes := root.Group("nodes")

	ids := g.NodeIDs()
	slots := make(map[string]*Element, len(ids))
	for _, id := range ids {
		if g.Kind(id) == graph.NodeKindCluster {
			continue
		}
		slot := nodes.Append("g")
		slot.ID = id
		slots[id] = slot
	}

	eg, ectx := errgroup.WithContext(ctx)
	for _, id := range ids {
		n, _ := g.Node(id)
		switch g.Kind(id) {
		case graph.NodeKindExtracted:
			eg.Go(func() error { return r.renderExtracted(ectx, st, g, n, slots[id]) })
		case graph.NodeKindCluster:
			n.LabelHeight = r.Nodes.MeasureTitle(n).Height
			st.RecordNode(id, cluster.AnchorFor(g, id), n)
		default:
			eg.Go(func() error {
				size, err := r.Nodes.DrawNode(ectx, slots[id], n, opts)
				if err != nil {
					return errors.Wrap(errors.ErrCodeDraw, err, "draw node %q", id)
				}
				n.Width, n.Height = size.Width, size.Height
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	edges := g.Edges()
	labelSlots := make([]*Element, len(edges))
	for i, e := range edges {
		labelSlots[i] = labels.Append("g")
		labelSlots[i].ID = e.ID
	}
	lg, lctx := errgroup.WithContext(ctx)
	for i, e := range edges {
		lg.Go(func() error {
			if err := r.Labels.LabelEdge(lctx, labelSlots[i], e); err != nil {
				return errors.Wrap(errors.ErrCodeDraw, err, "label edge %s->%s", e.V, e.W)
			}
			return nil
		})
	}
	if err := lg.Wait(); err != nil {
		return nil, err
	}

	if err := r.layout(ctx, g); err != nil {
		return nil, err
	}

	tm := r.TitleMargin
	for _, id := range g.Hierarchy() {
		n, _ := g.Node(id)
		switch g.Kind(id) {
		case graph.NodeKindExtracted:
			n.Y += tm
			dx, dy := placeSub(n)
			slots[id].SetAttr("transform", translate(dx, dy))
			st.RecordNode(id, "", n)
			if err := r.Nodes.DrawCluster(ctx, clusters, n, opts); err != nil {
				return nil, errors.Wrap(errors.ErrCodeDraw, err, "draw cluster %q", id)
			}
		case graph.NodeKindCluster:
			n.Height += tm
			n.OffsetY = n.LabelHeight - n.Padding/2
			st.RecordNode(id, "", n)
			if err := r.Nodes.DrawCluster(ctx, clusters, n, opts); err != nil {
				return nil, errors.Wrap(errors.ErrCodeDraw, err, "draw cluster %q", id)
			}
		default:
			n.Y += tm / 2
			slots[id].SetAttr("transform", translate(n.X, n.Y))
		}
	}

	for i, e := range edges {
		for j := range e.Points {
			e.Points[j].Y += tm / 2
		}
		e.LabelPos.Y += tm / 2

		start, _ := g.Node(e.V)
		end, _ := g.Node(e.W)
		p, err := r.Paths.ComputePath(ctx, e, st, r.DiagramType, start, end, r.DiagramID)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDraw, err, "route edge %s->%s", e.V, e.W)
		}
		e.Path = p
		if err := r.Paths.DrawPath(ctx, paths, e, p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDraw, err, "draw edge %s->%s", e.V, e.W)
		}
		if e.LabelWidth > 0 {
			labelSlots[i].SetAttr("transform", translate(e.LabelPos.X, e.LabelPos.Y))
		}
	}

	diff := 0.0
	for _, n := range g.Nodes() {
		if n.IsGroup {
			diff = max(diff, n.Diff)
		}
	}

	r.Logger.Debug("rendered graph", "dir", opts.Dir, "nodes", g.NodeCount(), "edges", g.EdgeCount(), "diff", diff)
	return &Fragment{Root: root, Diff: diff}, nil
}

// renderExtracted renders the nested graph of n into slot and sizes n to
// hold it plus its title.
func (r *Renderer) renderExtracted(ctx context.Context, st *cluster.State, g *graph.Graph, n *graph.Node, slot *Element) error {
	sub := n.Sub
	sa := sub.Attrs()
	sa.RankSep = g.Attrs().RankSep + TitleRankSep
	sa.NodeSep = g.Attrs().NodeSep

	frag, err := r.Render(ctx, st, sub, slot)
	if err != nil {
		return err
	}
	slot.Class = "cluster-graph"

	title := r.Nodes.MeasureTitle(n)
	n.LabelHeight = title.Height
	n.Width = max(sa.Width, title.Width)
	n.Height = sa.Height + n.LabelHeight + r.TitleMargin
	n.Diff = frag.Diff + r.TitleMargin
	return nil
}

// placeSub moves the nested graph of n into n's frame: centred
// horizontally, aligned with the bottom of n's box below the title. It
// returns the offset applied. Elements drawn for the nested graph stay in
// its local frame and need the same offset as a transform.
func placeSub(n *graph.Node) (dx, dy float64) {
	sa := n.Sub.Attrs()
	dx = n.X - sa.Width/2
	dy = n.Y + n.Height/2 - sa.Height
	n.Sub.Translate(dx, dy)
	return dx, dy
}

func (r *Renderer) layout(ctx context.Context, g *graph.Graph) error {
	name := r.Engine.Name()
	hooks := observability.Pipeline()

	start := time.Now()
	hooks.OnLayoutStart(ctx, name, g.NodeCount())
	err := r.Engine.Layout(ctx, g)
	hooks.OnLayoutComplete(ctx, name, time.Since(start), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "%s layout", name)
	}

	if r.Logger.GetLevel() <= log.DebugLevel {
		r.Logger.Debug("graph after layout", "engine", name, "graph", g.Dump())
	}
	return nil
}
