// Package dot lays out compound graphs with Graphviz's dot algorithm.
//
// The engine writes a graph view as DOT with fixed-size box nodes, runs
// Graphviz in-process through [github.com/goccy/go-graphviz] and reads the
// computed positions back from the "dot" output format. Compound nodes become
// cluster subgraphs so Graphviz keeps their members together; their boxes are
// then fitted with [layout.FitClusters].
//
// Layout units are points: a 72 wide node is one inch wide in DOT.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/clusterflow/pkg/graph"
	"github.com/matzehuels/clusterflow/pkg/layout"
)

const pointsPerInch = 72.0

// Engine is the Graphviz layout engine.
type Engine struct{}

// New returns a Graphviz engine.
func New() *Engine { return &Engine{} }

// Name implements [layout.Engine].
func (*Engine) Name() string { return "dot" }

// Layout implements [layout.Engine].
func (e *Engine) Layout(ctx context.Context, g *graph.Graph) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, nm := build(g)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.Format("dot"), &buf); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	out, err := parseOutput(buf.String())
	if err != nil {
		return err
	}
	apply(g, nm, out)
	return nil
}

// names maps DOT identifiers back to graph ids and edges.
type names struct {
	nodes map[string]string
	edges []*graph.Edge
}

// ToDOT writes g as a DOT digraph. Nodes are renamed n0, n1, ... in
// insertion order and edges carry their index as id, so positions can be
// mapped back. Edges touching compound nodes are omitted.
func ToDOT(g *graph.Graph) string {
	s, _ := build(g)
	return s
}

func build(g *graph.Graph) (string, names) {
	attrs := g.Attrs()
	nm := names{nodes: make(map[string]string)}
	ids := make(map[string]string)
	for i, id := range g.NodeIDs() {
		name := fmt.Sprintf("n%d", i)
		ids[id] = name
		nm.nodes[name] = id
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", attrs.Dir.Normalize())
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(attrs.NodeSep))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(attrs.RankSep))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("\n")

	var write func(parent string, indent string)
	clusterIdx := 0
	write = func(parent, indent string) {
		for _, id := range g.Children(parent) {
			n, _ := g.Node(id)
			if g.HasChildren(id) {
				fmt.Fprintf(&buf, "%ssubgraph cluster_c%d {\n", indent, clusterIdx)
				clusterIdx++
				write(id, indent+"  ")
				fmt.Fprintf(&buf, "%s}\n", indent)
				continue
			}
			fmt.Fprintf(&buf, "%s%s [width=%s, height=%s];\n", indent, ids[id], inches(n.Width), inches(n.Height))
		}
	}
	write("", "  ")

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if g.HasChildren(e.V) || g.HasChildren(e.W) {
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [id=e%d];\n", ids[e.V], ids[e.W], len(nm.edges))
		nm.edges = append(nm.edges, e)
	}
	buf.WriteString("}\n")
	return buf.String(), nm
}

func inches(v float64) string {
	s := fmt.Sprintf("%.4f", v/pointsPerInch)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "" {
		return "0"
	}
	return s
}

// apply copies parsed positions onto g, flipping Graphviz's bottom-up y axis
// and offsetting by the graph margins.
func apply(g *graph.Graph, nm names, out *output) {
	attrs := g.Attrs()
	flip := func(p graph.Point) graph.Point {
		return graph.Point{X: p.X + attrs.MarginX, Y: out.height - p.Y + attrs.MarginY}
	}

	for name, p := range out.nodes {
		id, ok := nm.nodes[name]
		if !ok {
			continue
		}
		n, _ := g.Node(id)
		fp := flip(p)
		n.X, n.Y = fp.X, fp.Y
	}
	layout.FitClusters(g)

	for idx, pts := range out.edges {
		if idx < 0 || idx >= len(nm.edges) {
			continue
		}
		e := nm.edges[idx]
		e.Points = make([]graph.Point, 0, len(pts))
		for _, p := range pts {
			e.Points = append(e.Points, flip(p))
		}
		if len(e.Points) > 0 {
			e.LabelPos = e.Points[len(e.Points)/2]
		}
	}
	for _, e := range g.Edges() {
		if len(e.Points) == 0 {
			layout.RouteEdge(g, e)
		}
	}

	attrs.Width = out.width + 2*attrs.MarginX
	attrs.Height = out.height + 2*attrs.MarginY
}
