package diagram

// =============================================================================
// Layout - Render Output Format
// =============================================================================

// Layout is the serialized result of a render.
//
// Width and Height cover the whole diagram including margins. Diff is the
// extra title height the caller must reserve above the diagram. Dropped
// lists edges lost while extracting clusters; the render still succeeded.
type Layout struct {
	ID        string  `json:"id"`
	Type      string  `json:"type,omitempty"`
	Engine    string  `json:"engine"`
	Direction string  `json:"direction"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Diff      float64 `json:"diff,omitempty"`

	Nodes   []LayoutNode  `json:"nodes"`
	Edges   []LayoutEdge  `json:"edges"`
	Dropped []DroppedEdge `json:"dropped,omitempty"`
}

// NodeCount returns the number of nodes including nested graphs.
func (l *Layout) NodeCount() int { return countNodes(l.Nodes) }

func countNodes(nodes []LayoutNode) int {
	n := len(nodes)
	for _, ln := range nodes {
		if ln.Graph != nil {
			n += countNodes(ln.Graph.Nodes)
		}
	}
	return n
}

// FindNode searches nodes and nested graphs for id.
func (l *Layout) FindNode(id string) (LayoutNode, bool) { return findNode(l.Nodes, id) }

func findNode(nodes []LayoutNode, id string) (LayoutNode, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
		if n.Graph != nil {
			if found, ok := findNode(n.Graph.Nodes, id); ok {
				return found, true
			}
		}
	}
	return LayoutNode{}, false
}

// =============================================================================
// LayoutNode, LayoutEdge - Positioned Elements
// =============================================================================

// LayoutNode is a positioned node. X and Y are the absolute centre.
type LayoutNode struct {
	ID      string         `json:"id"`
	Parent  string         `json:"parent,omitempty"`
	Kind    string         `json:"kind"` // "leaf", "cluster" or "extracted"
	Label   string         `json:"label,omitempty"`
	Shape   string         `json:"shape,omitempty"`
	X       float64        `json:"x"`
	Y       float64        `json:"y"`
	Width   float64        `json:"width"`
	Height  float64        `json:"height"`
	OffsetY float64        `json:"offsetY,omitempty"`
	Graph   *SubLayout     `json:"graph,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// SubLayout is the nested graph of an extracted cluster.
type SubLayout struct {
	Direction string       `json:"direction"`
	Diff      float64      `json:"diff,omitempty"`
	Nodes     []LayoutNode `json:"nodes"`
	Edges     []LayoutEdge `json:"edges"`
}

// LayoutEdge is a routed edge.
type LayoutEdge struct {
	ID          string  `json:"id,omitempty"`
	V           string  `json:"v"`
	W           string  `json:"w"`
	Name        string  `json:"name,omitempty"`
	Label       string  `json:"label,omitempty"`
	ArrowEnd    string  `json:"arrowTypeEnd,omitempty"`
	FromCluster string  `json:"fromCluster,omitempty"`
	ToCluster   string  `json:"toCluster,omitempty"`
	Points      []Point `json:"points"`
	LabelPos    *Point  `json:"labelPos,omitempty"`
	Path        string  `json:"path,omitempty"`
}

// Point is an absolute position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DroppedEdge is an edge that did not survive cluster extraction.
type DroppedEdge struct {
	Cluster string `json:"cluster"`
	V       string `json:"v"`
	W       string `json:"w"`
	Name    string `json:"name,omitempty"`
	Reason  string `json:"reason"`
}
