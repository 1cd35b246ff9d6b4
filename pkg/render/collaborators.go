package render

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/clusterflow/pkg/cluster"
	"github.com/matzehuels/clusterflow/pkg/graph"
)

// Size is a measured width and height.
type Size struct {
	Width  float64
	Height float64
}

// DrawOptions passes level-wide settings to a [NodeDrawer].
type DrawOptions struct {
	Dir         graph.Direction
	DiagramType string
}

// NodeDrawer draws nodes into the container tree.
type NodeDrawer interface {
	// DrawNode draws a leaf into its own slot before layout and returns the
	// size the layout must reserve for it.
	DrawNode(ctx context.Context, slot *Element, n *graph.Node, opts DrawOptions) (Size, error)

	// MeasureTitle returns the size of a cluster title.
	MeasureTitle(n *graph.Node) Size

	// DrawCluster draws the frame of a laid out cluster into c.
	DrawCluster(ctx context.Context, c *Element, n *graph.Node, opts DrawOptions) error
}

// EdgeLabeler draws edge labels before layout.
type EdgeLabeler interface {
	// LabelEdge draws the label of e into its own slot and writes the
	// measured size to e.LabelWidth and e.LabelHeight.
	LabelEdge(ctx context.Context, slot *Element, e *graph.Edge) error
}

// PathRouter turns routed points into drawn paths.
type PathRouter interface {
	// ComputePath derives the drawn path of e. start and end are the laid
	// out endpoint nodes; the state supplies cluster boxes for endpoints
	// that were substituted by an anchor.
	ComputePath(ctx context.Context, e *graph.Edge, st *cluster.State, diagramType string, start, end *graph.Node, diagramID string) (*graph.Path, error)

	// DrawPath draws p into c.
	DrawPath(ctx context.Context, c *Element, e *graph.Edge, p *graph.Path) error
}

// =============================================================================
// Text Metrics
// =============================================================================

const (
	// DefaultFontSize is the font size of labels in pixels.
	DefaultFontSize = 16.0

	charWidth  = 0.55
	lineHeight = 1.5
)

// TextSize estimates the rendered size of s. Lines are split on "\n".
func TextSize(s string, fontSize float64) Size {
	if s == "" {
		return Size{}
	}
	lines := strings.Split(s, "\n")
	widest := 0
	for _, l := range lines {
		widest = max(widest, utf8.RuneCountInString(l))
	}
	return Size{
		Width:  float64(widest) * fontSize * charWidth,
		Height: float64(len(lines)) * fontSize * lineHeight,
	}
}

// =============================================================================
// BoxDrawer
// =============================================================================

// BoxDrawer is the default [NodeDrawer]. Leaves become rectangles sized to
// their label plus padding unless the node already carries a size.
type BoxDrawer struct {
	FontSize float64
	PaddingX float64
	PaddingY float64
}

// NewBoxDrawer returns a BoxDrawer with default metrics.
func NewBoxDrawer() *BoxDrawer {
	return &BoxDrawer{FontSize: DefaultFontSize, PaddingX: 15, PaddingY: 8}
}

// DrawNode implements [NodeDrawer].
func (d *BoxDrawer) DrawNode(ctx context.Context, slot *Element, n *graph.Node, opts DrawOptions) (Size, error) {
	if err := ctx.Err(); err != nil {
		return Size{}, err
	}
	size := Size{Width: n.Width, Height: n.Height}
	if size.Width == 0 || size.Height == 0 {
		t := TextSize(n.DisplayLabel(), d.FontSize)
		if size.Width == 0 {
			size.Width = t.Width + 2*d.PaddingX
		}
		if size.Height == 0 {
			size.Height = t.Height + 2*d.PaddingY
		}
	}

	slot.Class = "node"
	if n.Shape == "labelRect" {
		slot.Class = "node labelRect"
		return size, nil
	}

	shape := slot.Append("rect")
	shape.Class = "basic label-container"
	shape.SetAttr("x", num(-size.Width/2))
	shape.SetAttr("y", num(-size.Height/2))
	shape.SetAttr("width", num(size.Width))
	shape.SetAttr("height", num(size.Height))
	switch n.Shape {
	case "round", "rounded":
		shape.SetAttr("rx", "5")
		shape.SetAttr("ry", "5")
	case "stadium":
		shape.SetAttr("rx", num(size.Height/2))
		shape.SetAttr("ry", num(size.Height/2))
	}

	label := slot.Append("text")
	label.Class = "nodeLabel"
	label.SetAttr("text-anchor", "middle")
	label.SetAttr("dominant-baseline", "central")
	label.SetText(n.DisplayLabel())
	return size, nil
}

// MeasureTitle implements [NodeDrawer].
func (d *BoxDrawer) MeasureTitle(n *graph.Node) Size {
	return TextSize(n.Label, d.FontSize)
}

// DrawCluster implements [NodeDrawer].
func (d *BoxDrawer) DrawCluster(ctx context.Context, c *Element, n *graph.Node, opts DrawOptions) error {
	g := c.Group("cluster")
	g.ID = n.ID
	b := n.Box()
	r := g.Append("rect")
	r.SetAttr("x", num(b.X))
	r.SetAttr("y", num(b.Y))
	r.SetAttr("width", num(b.Width))
	r.SetAttr("height", num(b.Height))
	if n.Label != "" {
		t := g.Append("text")
		t.Class = "cluster-label"
		t.SetAttr("x", num(n.X))
		t.SetAttr("y", num(b.Y+n.LabelHeight/2+max(n.OffsetY, 0)))
		t.SetAttr("text-anchor", "middle")
		t.SetAttr("dominant-baseline", "central")
		t.SetText(n.Label)
	}
	return nil
}

// =============================================================================
// TextLabeler
// =============================================================================

// TextLabeler is the default [EdgeLabeler].
type TextLabeler struct {
	FontSize float64
}

// NewTextLabeler returns a TextLabeler with the default font size.
func NewTextLabeler() *TextLabeler {
	return &TextLabeler{FontSize: DefaultFontSize}
}

// LabelEdge implements [EdgeLabeler]. Unlabelled edges get an empty slot
// and a zero size.
func (l *TextLabeler) LabelEdge(ctx context.Context, slot *Element, e *graph.Edge) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	slot.Class = "edgeLabel"
	size := TextSize(e.Label, l.FontSize)
	e.LabelWidth, e.LabelHeight = size.Width, size.Height
	if e.Label == "" {
		return nil
	}
	t := slot.Append("text")
	t.SetAttr("text-anchor", "middle")
	t.SetAttr("dominant-baseline", "central")
	t.SetText(e.Label)
	return nil
}

// =============================================================================
// ClusterRouter
// =============================================================================

// ClusterRouter is the default [PathRouter]. Edges whose endpoint was moved
// onto a cluster anchor are cut where they enter the cluster's box, so they
// visually end at the cluster rather than at the anchor.
type ClusterRouter struct{}

// NewClusterRouter returns the default router.
func NewClusterRouter() *ClusterRouter { return &ClusterRouter{} }

// ComputePath implements [PathRouter].
func (ClusterRouter) ComputePath(ctx context.Context, e *graph.Edge, st *cluster.State, diagramType string, start, end *graph.Node, diagramID string) (*graph.Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pts := append([]graph.Point(nil), e.Points...)
	if e.ToCluster != "" {
		if box, ok := clusterBox(st, e.ToCluster); ok {
			pts = cutAtBox(pts, box)
		}
	}
	if e.FromCluster != "" {
		if box, ok := clusterBox(st, e.FromCluster); ok {
			reverse(pts)
			pts = cutAtBox(pts, box)
			reverse(pts)
		}
	}

	curve := "linear"
	if c, ok := e.Meta["curve"].(string); ok && c != "" {
		curve = c
	}
	return &graph.Path{Points: pts, Curve: curve}, nil
}

// DrawPath implements [PathRouter].
func (ClusterRouter) DrawPath(ctx context.Context, c *Element, e *graph.Edge, p *graph.Path) error {
	path := c.Append("path")
	path.ID = e.ID
	path.Class = "flowchart-link"
	path.SetAttr("d", PathData(p.Points))
	path.SetAttr("fill", "none")
	if e.ArrowEnd != "none" {
		path.SetAttr("marker-end", "url(#arrowhead)")
	}
	return nil
}

func clusterBox(st *cluster.State, id string) (graph.Rect, bool) {
	entry, ok := st.Lookup(id)
	if !ok || entry.Node == nil {
		return graph.Rect{}, false
	}
	return entry.Node.Box(), true
}

// cutAtBox keeps pts up to the point where they first enter r and replaces
// the rest with the entry point. Paths starting inside r are kept as is.
func cutAtBox(pts []graph.Point, r graph.Rect) []graph.Point {
	if len(pts) == 0 || r.Contains(pts[0]) {
		return pts
	}
	out := []graph.Point{pts[0]}
	for i := 1; i < len(pts); i++ {
		if r.Contains(pts[i]) {
			return append(out, entry(r, pts[i-1], pts[i]))
		}
		out = append(out, pts[i])
	}
	return out
}

// entry returns where the segment from outside point a to inside point b
// crosses the border of r.
func entry(r graph.Rect, a, b graph.Point) graph.Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	t := 0.0
	clip := func(p, q float64) {
		if p < 0 {
			t = max(t, q/p)
		}
	}
	clip(-dx, a.X-r.X)
	clip(dx, r.X+r.Width-a.X)
	clip(-dy, a.Y-r.Y)
	clip(dy, r.Y+r.Height-a.Y)
	return graph.Point{X: a.X + t*dx, Y: a.Y + t*dy}
}

func reverse(pts []graph.Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

// PathData formats points as an SVG path.
func PathData(pts []graph.Point) string {
	var b strings.Builder
	for i, p := range pts {
		if i == 0 {
			b.WriteString("M")
		} else {
			b.WriteString(" L")
		}
		b.WriteString(num(p.X))
		b.WriteString(",")
		b.WriteString(num(p.Y))
	}
	return b.String()
}
