// Package selfloop replaces self-loop edges with three-segment detours that
// a flat layout engine can route.
//
// A loop on node n becomes two small helper nodes and three edges:
//
//	n -> n---n---1 -> n---n---2 -> n
//
// The helpers share n's parent, so the detour stays inside the same cluster.
// The middle edge keeps the loop's label.
package selfloop

import (
	"fmt"

	"github.com/matzehuels/clusterflow/pkg/graph"
)

// Helper node geometry.
const (
	HelperSize  = 10
	HelperShape = "labelRect"
	NoArrow     = "none"
)

// Stats reports what Rewrite changed.
type Stats struct {
	Loops int // self-loops replaced
	Nodes int // helper nodes added
	Edges int // detour edges added
}

// HelperIDs returns the ids of the two helper nodes for the k-th loop on n.
// The first loop on a node has k == 0.
func HelperIDs(n string, k int) (string, string) {
	s := suffix(k)
	return n + "---" + n + "---1" + s, n + "---" + n + "---2" + s
}

func suffix(k int) string {
	if k == 0 {
		return ""
	}
	return fmt.Sprintf("#%d", k)
}

// IsHelper reports whether n was added by Rewrite.
func IsHelper(n *graph.Node) bool {
	_, ok := n.Meta["selfloop"]
	return ok
}

// Rewrite replaces every self-loop in g. Running it on a graph without
// self-loops changes nothing.
func Rewrite(g *graph.Graph) (Stats, error) {
	var st Stats
	seen := make(map[string]int)

	for _, e := range g.Edges() {
		if !e.IsLoop() {
			continue
		}
		n := e.V
		node, _ := g.Node(n)

		k := seen[n]
		t1, t2 := HelperIDs(n, k)
		for g.HasNode(t1) || g.HasNode(t2) {
			k++
			t1, t2 = HelperIDs(n, k)
		}
		seen[n] = k + 1

		parent := g.Parent(n)
		for _, id := range []string{t1, t2} {
			h := &graph.Node{
				ID:     id,
				Shape:  HelperShape,
				Width:  HelperSize,
				Height: HelperSize,
				Meta:   graph.Metadata{"selfloop": n},
			}
			if err := g.SetNode(h); err != nil {
				return st, fmt.Errorf("add loop helper %q: %w", id, err)
			}
			if parent != "" {
				if err := g.SetParent(id, parent); err != nil {
					return st, fmt.Errorf("parent loop helper %q: %w", id, err)
				}
			}
			st.Nodes++
		}

		g.RemoveEdge(e.Key())

		s := suffix(k)
		first := e.Clone()
		first.V, first.W = n, t1
		first.Name = n + "-cyclic-special-0" + s
		first.ID = n + "-cyclic-special-1" + s
		first.Label = ""
		first.ArrowEnd = NoArrow

		mid := e.Clone()
		mid.V, mid.W = t1, t2
		mid.Name = n + "-cyclic-special-1" + s
		mid.ID = n + "-cyclic-special-mid" + s
		mid.ArrowEnd = NoArrow

		last := e.Clone()
		last.V, last.W = t2, n
		last.Name = n + "-cyclic-special-2" + s
		last.ID = n + "-cyclic-special-2" + s
		last.Label = ""
		last.ArrowEnd = NoArrow

		if node.IsGroup || g.HasChildren(n) {
			first.FromCluster = n
			last.ToCluster = n
		}

		for _, x := range []*graph.Edge{first, mid, last} {
			if err := g.SetEdge(x); err != nil {
				return st, fmt.Errorf("add loop segment %s->%s: %w", x.V, x.W, err)
			}
			st.Edges++
		}
		st.Loops++
	}
	return st, nil
}
