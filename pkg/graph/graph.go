package graph

import (
	"encoding/json"
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned when a node has an empty ID.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrUnknownNode is returned when an operation references a node the
	// view does not own.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownSourceNode is returned when an edge references a non-existent source node.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned when an edge references a non-existent target node.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrNodeOwned is returned when a node id is already owned by another
	// view of the same arena.
	ErrNodeOwned = errors.New("node owned by another view")

	// ErrParentCycle is returned when SetParent would make a node its own ancestor.
	ErrParentCycle = errors.New("parent relation would form a cycle")

	// ErrForeignArena is returned when MoveNode targets a view backed by a
	// different arena.
	ErrForeignArena = errors.New("views do not share an arena")
)

// Arena stores node data for a family of views. Each node id is owned by
// exactly one view.
type Arena struct {
	nodes map[string]*Node
	owner map[string]*Graph
}

// Graph is a compound directed multigraph view over an [Arena].
//
// Insertion order of nodes, children and edges is preserved. The zero value
// is not usable; create graphs with [New] or [Graph.NewView].
type Graph struct {
	arena *Arena
	attrs Attrs

	order    []string
	parent   map[string]string
	children map[string][]string

	edges   []*Edge
	edgeIdx map[EdgeKey]*Edge
}

// New creates an empty graph backed by a fresh arena.
func New(attrs Attrs) *Graph {
	a := &Arena{
		nodes: make(map[string]*Node),
		owner: make(map[string]*Graph),
	}
	return newView(a, attrs)
}

func newView(a *Arena, attrs Attrs) *Graph {
	return &Graph{
		arena:    a,
		attrs:    attrs,
		parent:   make(map[string]string),
		children: make(map[string][]string),
		edgeIdx:  make(map[EdgeKey]*Edge),
	}
}

// NewView creates an empty sibling view sharing g's arena.
func (g *Graph) NewView(attrs Attrs) *Graph {
	return newView(g.arena, attrs)
}

// Attrs returns the graph attributes. The returned pointer may be used to
// modify them in place.
func (g *Graph) Attrs() *Attrs { return &g.attrs }

// SetNode adds n to the view, or replaces the data of a node the view
// already owns. Replacing keeps the node's position in insertion order and
// its parent and children links.
func (g *Graph) SetNode(n *Node) error {
	if n == nil || n.ID == "" {
		return ErrInvalidNodeID
	}
	if owner, ok := g.arena.owner[n.ID]; ok && owner != g {
		return ErrNodeOwned
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	if _, ok := g.arena.owner[n.ID]; !ok {
		g.order = append(g.order, n.ID)
		g.arena.owner[n.ID] = g
	}
	g.arena.nodes[n.ID] = n
	return nil
}

// Node returns the node with the given ID if the view owns it.
func (g *Graph) Node(id string) (*Node, bool) {
	if !g.owns(id) {
		return nil, false
	}
	return g.arena.nodes[id], true
}

// HasNode reports whether the view owns id.
func (g *Graph) HasNode(id string) bool { return g.owns(id) }

func (g *Graph) owns(id string) bool { return g.arena.owner[id] == g }

// RemoveNode deletes a node and its incident edges. Children of the node
// become roots.
func (g *Graph) RemoveNode(id string) {
	if !g.owns(id) {
		return
	}
	g.detach(id)
	delete(g.arena.nodes, id)
	delete(g.arena.owner, id)
}

// detach drops id from the view's order, hierarchy and edge list without
// touching the arena.
func (g *Graph) detach(id string) {
	for _, e := range g.NodeEdges(id) {
		g.RemoveEdge(e.Key())
	}
	if p, ok := g.parent[id]; ok {
		g.children[p] = slices.DeleteFunc(g.children[p], func(c string) bool { return c == id })
		if len(g.children[p]) == 0 {
			delete(g.children, p)
		}
		delete(g.parent, id)
	}
	for _, c := range g.children[id] {
		delete(g.parent, c)
	}
	delete(g.children, id)
	g.order = slices.DeleteFunc(g.order, func(n string) bool { return n == id })
}

// Nodes returns a snapshot of the view's nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.arena.nodes[id])
	}
	return out
}

// NodeIDs returns a snapshot of the owned ids in insertion order.
func (g *Graph) NodeIDs() []string { return slices.Clone(g.order) }

// NodeCount returns the number of nodes owned by the view.
func (g *Graph) NodeCount() int { return len(g.order) }

// SetParent makes parent the parent of id. An empty parent clears the link.
func (g *Graph) SetParent(id, parent string) error {
	if !g.owns(id) {
		return ErrUnknownNode
	}
	if parent != "" {
		if !g.owns(parent) {
			return ErrUnknownNode
		}
		for p := parent; p != ""; p = g.parent[p] {
			if p == id {
				return ErrParentCycle
			}
		}
	}
	if old, ok := g.parent[id]; ok {
		if old == parent {
			return nil
		}
		g.children[old] = slices.DeleteFunc(g.children[old], func(c string) bool { return c == id })
		if len(g.children[old]) == 0 {
			delete(g.children, old)
		}
		delete(g.parent, id)
	}
	if parent == "" {
		return nil
	}
	g.parent[id] = parent
	g.children[parent] = append(g.children[parent], id)
	return nil
}

// Parent returns the parent of id, or "" for a root.
func (g *Graph) Parent(id string) string { return g.parent[id] }

// Children returns the direct children of id in insertion order. An empty
// id returns the root nodes.
func (g *Graph) Children(id string) []string {
	if id != "" {
		return slices.Clone(g.children[id])
	}
	var roots []string
	for _, n := range g.order {
		if _, ok := g.parent[n]; !ok {
			roots = append(roots, n)
		}
	}
	return roots
}

// HasChildren reports whether id has at least one child in this view.
func (g *Graph) HasChildren(id string) bool { return len(g.children[id]) > 0 }

// SetEdge adds e, replacing any edge with the same key in place. Both
// endpoints must be owned by the view.
func (g *Graph) SetEdge(e *Edge) error {
	if !g.owns(e.V) {
		return ErrUnknownSourceNode
	}
	if !g.owns(e.W) {
		return ErrUnknownTargetNode
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	k := e.Key()
	if old, ok := g.edgeIdx[k]; ok {
		i := slices.Index(g.edges, old)
		g.edges[i] = e
	} else {
		g.edges = append(g.edges, e)
	}
	g.edgeIdx[k] = e
	return nil
}

// Edge returns the edge keyed by (v, w, name).
func (g *Graph) Edge(v, w, name string) (*Edge, bool) {
	e, ok := g.edgeIdx[EdgeKey{V: v, W: w, Name: name}]
	return e, ok
}

// HasEdge reports whether an edge with key k exists.
func (g *Graph) HasEdge(k EdgeKey) bool {
	_, ok := g.edgeIdx[k]
	return ok
}

// RemoveEdge deletes the edge keyed by k and reports whether it existed.
func (g *Graph) RemoveEdge(k EdgeKey) bool {
	e, ok := g.edgeIdx[k]
	if !ok {
		return false
	}
	delete(g.edgeIdx, k)
	g.edges = slices.DeleteFunc(g.edges, func(x *Edge) bool { return x == e })
	return true
}

// Edges returns a snapshot of all edges in insertion order.
func (g *Graph) Edges() []*Edge { return slices.Clone(g.edges) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// NodeEdges returns the edges incident to id. Self-loops appear once.
func (g *Graph) NodeEdges(id string) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.V == id || e.W == id {
			out = append(out, e)
		}
	}
	return out
}

// MoveNode transfers ownership of id from g to dst. Incident edges and
// hierarchy links in g are dropped; the node becomes a root of dst. Node
// data is not copied.
func (g *Graph) MoveNode(id string, dst *Graph) error {
	if dst.arena != g.arena {
		return ErrForeignArena
	}
	if !g.owns(id) {
		return ErrUnknownNode
	}
	if dst == g {
		return nil
	}
	g.detach(id)
	g.arena.owner[id] = dst
	dst.order = append(dst.order, id)
	return nil
}

// Kind returns the kind of id as seen from this view.
func (g *Graph) Kind(id string) NodeKind {
	if n, ok := g.Node(id); ok && n.Sub != nil {
		return NodeKindExtracted
	}
	if g.HasChildren(id) {
		return NodeKindCluster
	}
	return NodeKindLeaf
}

// Hierarchy returns every node id with parents ahead of their children.
// Siblings are listed before any of their descendants.
func (g *Graph) Hierarchy() []string {
	out := make([]string, 0, len(g.order))
	var walk func(ids []string)
	walk = func(ids []string) {
		out = append(out, ids...)
		for _, id := range ids {
			if kids := g.children[id]; len(kids) > 0 {
				walk(kids)
			}
		}
	}
	walk(g.Children(""))
	return out
}

// Translate shifts every node, edge point and label position by (dx, dy),
// descending into nested graphs of extracted nodes.
func (g *Graph) Translate(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	for _, n := range g.Nodes() {
		n.X += dx
		n.Y += dy
		if n.Sub != nil {
			n.Sub.Translate(dx, dy)
		}
	}
	for _, e := range g.edges {
		for i := range e.Points {
			e.Points[i].X += dx
			e.Points[i].Y += dy
		}
		e.LabelPos.X += dx
		e.LabelPos.Y += dy
		if e.Path != nil {
			for i := range e.Path.Points {
				e.Path.Points[i].X += dx
				e.Path.Points[i].Y += dy
			}
		}
	}
}

// Bounds returns the rectangle enclosing every node of the view. An empty
// view has a zero rectangle.
func (g *Graph) Bounds() Rect {
	if len(g.order) == 0 {
		return Rect{}
	}
	first := true
	var minX, minY, maxX, maxY float64
	for _, n := range g.Nodes() {
		b := n.Box()
		if first {
			minX, minY, maxX, maxY = b.X, b.Y, b.X+b.Width, b.Y+b.Height
			first = false
			continue
		}
		minX = min(minX, b.X)
		minY = min(minY, b.Y)
		maxX = max(maxX, b.X+b.Width)
		maxY = max(maxY, b.Y+b.Height)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

type dumpNode struct {
	ID     string    `json:"id"`
	Parent string    `json:"parent,omitempty"`
	Kind   string    `json:"kind"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Graph  *dumpView `json:"graph,omitempty"`
}

type dumpEdge struct {
	V    string `json:"v"`
	W    string `json:"w"`
	Name string `json:"name,omitempty"`
}

type dumpView struct {
	Dir   Direction  `json:"dir"`
	Nodes []dumpNode `json:"nodes"`
	Edges []dumpEdge `json:"edges"`
}

func (g *Graph) dump() *dumpView {
	v := &dumpView{Dir: g.attrs.Dir, Nodes: []dumpNode{}, Edges: []dumpEdge{}}
	for _, n := range g.Nodes() {
		d := dumpNode{
			ID: n.ID, Parent: g.parent[n.ID], Kind: g.Kind(n.ID).String(),
			X: n.X, Y: n.Y, Width: n.Width, Height: n.Height,
		}
		if n.Sub != nil {
			d.Graph = n.Sub.dump()
		}
		v.Nodes = append(v.Nodes, d)
	}
	for _, e := range g.edges {
		v.Edges = append(v.Edges, dumpEdge{V: e.V, W: e.W, Name: e.Name})
	}
	return v
}

// Dump returns a compact JSON description of the view and its nested
// graphs, intended for debug logging.
func (g *Graph) Dump() string {
	b, err := json.Marshal(g.dump())
	if err != nil {
		return "{}"
	}
	return string(b)
}
