package render

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"maps"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clusterflow/pkg/cluster"
	"github.com/matzehuels/clusterflow/pkg/diagram"
	"github.com/matzehuels/clusterflow/pkg/errors"
	"github.com/matzehuels/clusterflow/pkg/graph"
	"github.com/matzehuels/clusterflow/pkg/layout"
	"github.com/matzehuels/clusterflow/pkg/observability"
	"github.com/matzehuels/clusterflow/pkg/selfloop"
)

// Margin is the margin around the top-level graph.
const Margin = 8

// Options configures [Render]. Zero values select the defaults.
type Options struct {
	Engine layout.Engine
	Nodes  NodeDrawer
	Labels EdgeLabeler
	Paths  PathRouter
	Logger *log.Logger

	// NodeSpacing and RankSpacing are resolved values, see
	// config.Config.Spacing. Zero falls back to 50.
	NodeSpacing float64
	RankSpacing float64

	// TitleMargin is the total margin reserved around subgraph titles.
	TitleMargin float64
}

// SetDefaults fills unset collaborators and spacing.
func (o *Options) SetDefaults() {
	if o.Engine == nil {
		o.Engine = layout.NewLayered()
	}
	if o.Nodes == nil {
		o.Nodes = NewBoxDrawer()
	}
	if o.Labels == nil {
		o.Labels = NewTextLabeler()
	}
	if o.Paths == nil {
		o.Paths = NewClusterRouter()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.NodeSpacing == 0 {
		o.NodeSpacing = 50
	}
	if o.RankSpacing == 0 {
		o.RankSpacing = 50
	}
}

// Result is a rendered diagram.
type Result struct {
	ID     string
	Type   string
	Engine string

	// Graph is the laid out top-level graph. Extracted clusters carry their
	// nested graphs in absolute coordinates.
	Graph *graph.Graph
	Root  *Element

	// Diff is the extra title height the caller must reserve.
	Diff   float64
	Width  float64
	Height float64

	// Dropped lists edges lost while extracting clusters.
	Dropped []cluster.DroppedEdge
	Loops   selfloop.Stats
}

// Render lays out d. The diagram is validated first; d itself is not
// modified.
func Render(ctx context.Context, d *diagram.Diagram, opts Options) (*Result, error) {
	opts.SetDefaults()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	named := *d
	id := named.EnsureID()

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, id, len(d.Nodes), len(d.Edges))
	res, err := render(ctx, &named, id, opts)
	hooks.OnRenderComplete(ctx, id, time.Since(start), err)
	return res, err
}

func render(ctx context.Context, d *diagram.Diagram, id string, opts Options) (*Result, error) {
	logger := opts.Logger.With("diagram", id)
	st := cluster.NewState(logger)

	g, err := Build(d, opts.NodeSpacing, opts.RankSpacing)
	if err != nil {
		return nil, err
	}
	loops, err := selfloop.Rewrite(g)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "rewrite self-loops")
	}
	if loops.Loops > 0 {
		logger.Debug("rewrote self-loops", "loops", loops.Loops)
	}
	if err := cluster.Adjust(ctx, st, g); err != nil {
		return nil, err
	}

	r := &Renderer{
		Engine:      opts.Engine,
		Nodes:       opts.Nodes,
		Labels:      opts.Labels,
		Paths:       opts.Paths,
		Logger:      logger,
		DiagramType: d.Type,
		DiagramID:   id,
		TitleMargin: opts.TitleMargin,
	}
	root := NewElement("g")
	root.ID = id
	root.Class = "output"
	frag, err := r.Render(ctx, st, g, root)
	if err != nil {
		return nil, err
	}

	attrs := g.Attrs()
	return &Result{
		ID:      id,
		Type:    d.Type,
		Engine:  opts.Engine.Name(),
		Graph:   g,
		Root:    root,
		Diff:    frag.Diff,
		Width:   attrs.Width,
		Height:  attrs.Height,
		Dropped: st.Dropped(),
		Loops:   loops,
	}, nil
}

// Build converts a validated diagram into a compound graph. Edge names are
// the edge ids; edges without an id get "L-<start>-<end>-<n>".
func Build(d *diagram.Diagram, nodeSep, rankSep float64) (*graph.Graph, error) {
	g := graph.New(graph.Attrs{
		Dir:     graph.Direction(d.Direction).Normalize(),
		NodeSep: nodeSep,
		RankSep: rankSep,
		MarginX: Margin,
		MarginY: Margin,
	})

	for _, dn := range d.Nodes {
		n := &graph.Node{
			ID:      dn.ID,
			Label:   dn.Label,
			Shape:   dn.Shape,
			IsGroup: dn.IsGroup,
			Width:   dn.Width,
			Height:  dn.Height,
			Padding: dn.Padding,
			Meta:    graph.Metadata(maps.Clone(dn.Meta)),
		}
		if dn.Dir != "" {
			n.Dir = graph.Direction(dn.Dir).Normalize()
		}
		if err := g.SetNode(n); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q", dn.ID)
		}
	}
	for _, dn := range d.Nodes {
		if dn.ParentID == "" {
			continue
		}
		if err := g.SetParent(dn.ID, dn.ParentID); err != nil {
			if stderrors.Is(err, graph.ErrParentCycle) {
				return nil, errors.Wrap(errors.ErrCodeParentCycle, err, "node %q in %q", dn.ID, dn.ParentID)
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q in %q", dn.ID, dn.ParentID)
		}
	}

	used := make(map[string]bool, len(d.Edges))
	for _, de := range d.Edges {
		if de.ID != "" {
			used[de.ID] = true
		}
	}
	for i, de := range d.Edges {
		id := de.ID
		for k := i; id == ""; k++ {
			if cand := fmt.Sprintf("L-%s-%s-%d", de.Start, de.End, k); !used[cand] {
				id = cand
			}
		}
		used[id] = true
		e := &graph.Edge{
			V:        de.Start,
			W:        de.End,
			Name:     id,
			ID:       id,
			Label:    de.Label,
			ArrowEnd: de.ArrowTypeEnd,
			Meta:     graph.Metadata(maps.Clone(de.Meta)),
		}
		if err := g.SetEdge(e); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "edge %q", id)
		}
	}
	return g, nil
}
