package graph

import "maps"

// Metadata stores arbitrary key-value pairs attached to nodes or edges.
// Diagram front-ends use it for styling hints the layout never reads.
// Metadata maps are never nil after the owning value is added to a graph.
type Metadata map[string]any

// Direction is the rank direction of a layout.
type Direction string

// Rank directions. TD is accepted from input as an alias of TB.
const (
	DirTB Direction = "TB"
	DirTD Direction = "TD"
	DirBT Direction = "BT"
	DirLR Direction = "LR"
	DirRL Direction = "RL"
)

// Normalize maps aliases onto their canonical direction and an empty value
// onto TB.
func (d Direction) Normalize() Direction {
	switch d {
	case "", DirTD:
		return DirTB
	}
	return d
}

// Horizontal reports whether ranks advance along the x axis.
func (d Direction) Horizontal() bool {
	d = d.Normalize()
	return d == DirLR || d == DirRL
}

// Point is a position in layout space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Attrs holds graph-level layout attributes. Width and Height are written
// by the layout engine and cover the whole laid out graph including margins.
type Attrs struct {
	Dir     Direction
	NodeSep float64
	RankSep float64
	MarginX float64
	MarginY float64

	Width  float64
	Height float64
}

// NodeKind distinguishes plain nodes from clusters and extracted clusters.
type NodeKind int

const (
	// NodeKindLeaf is a node without children.
	NodeKindLeaf NodeKind = iota
	// NodeKindCluster is a node with children in its owning view. The flat
	// layout treats it as a bounding box around its descendants.
	NodeKindCluster
	// NodeKindExtracted is a cluster that was pulled out into its own nested
	// graph and now behaves as an opaque leaf in the parent view.
	NodeKindExtracted
)

// String returns the kind name used in serialized layouts.
func (k NodeKind) String() string {
	switch k {
	case NodeKindCluster:
		return "cluster"
	case NodeKindExtracted:
		return "extracted"
	}
	return "leaf"
}

// Node is a vertex of a compound graph. X and Y are the centre of the node
// once laid out.
type Node struct {
	ID      string
	Label   string
	Shape   string
	Dir     Direction // direction override when the node is a cluster
	IsGroup bool      // declared as a group by the diagram source

	Width   float64
	Height  float64
	X       float64
	Y       float64
	Padding float64

	// LabelHeight and OffsetY apply to clusters: the measured title height
	// and the vertical correction labelHeight - padding/2.
	LabelHeight float64
	OffsetY     float64

	Meta Metadata

	// Sub, ClusterData and Diff are set once the node is extracted.
	Sub         *Graph
	ClusterData *Node
	Diff        float64
}

// Clone returns a copy of the node's attributes without the nested graph.
// Metadata is copied shallowly.
func (n *Node) Clone() *Node {
	c := *n
	c.Meta = maps.Clone(n.Meta)
	c.Sub = nil
	c.ClusterData = nil
	return &c
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Box returns the node's bounding rectangle.
func (n *Node) Box() Rect {
	return Rect{X: n.X - n.Width/2, Y: n.Y - n.Height/2, Width: n.Width, Height: n.Height}
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside or on the border of r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// EdgeKey identifies an edge of a multigraph.
type EdgeKey struct {
	V    string
	W    string
	Name string
}

// Path is the drawn form of a routed edge.
type Path struct {
	Points []Point
	Curve  string
}

// Edge is a directed connection. Several edges may join the same ordered
// pair of nodes as long as their names differ.
type Edge struct {
	V    string
	W    string
	Name string

	ID       string
	Label    string
	ArrowEnd string

	Points      []Point
	LabelPos    Point
	LabelWidth  float64
	LabelHeight float64

	// FromCluster and ToCluster record the original endpoint when boundary
	// rewriting substituted an anchor for a cluster.
	FromCluster string
	ToCluster   string

	Path *Path
	Meta Metadata
}

// Key returns the multigraph key of the edge.
func (e *Edge) Key() EdgeKey { return EdgeKey{V: e.V, W: e.W, Name: e.Name} }

// IsLoop reports whether the edge starts and ends at the same node.
func (e *Edge) IsLoop() bool { return e.V == e.W }

// Clone returns a copy of the edge. Points and metadata are copied.
func (e *Edge) Clone() *Edge {
	c := *e
	c.Points = append([]Point(nil), e.Points...)
	c.Meta = maps.Clone(e.Meta)
	if e.Path != nil {
		p := Path{Points: append([]Point(nil), e.Path.Points...), Curve: e.Path.Curve}
		c.Path = &p
	}
	return &c
}
