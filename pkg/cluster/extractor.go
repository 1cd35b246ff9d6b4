package cluster

import (
	"context"

	"github.com/matzehuels/clusterflow/pkg/errors"
	"github.com/matzehuels/clusterflow/pkg/graph"
	"github.com/matzehuels/clusterflow/pkg/observability"
)

// Spacing and margins of extracted graphs.
const (
	SubgraphNodeSep = 50
	SubgraphRankSep = 50
	SubgraphMargin  = 8
)

// Extract moves every cluster of g without external connections into a
// nested graph attached to the cluster node, then recurses into the new
// graphs. depth is the nesting level of g; exceeding [MaxDepth] fails with
// LIMIT_EXCEEDED.
func Extract(ctx context.Context, st *State, g *graph.Graph, depth int) error {
	if depth > MaxDepth {
		return errors.New(errors.ErrCodeLimitExceeded, "cluster nesting exceeds depth %d", MaxDepth)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var subs []*graph.Graph
	for _, id := range g.Hierarchy() {
		if !g.HasNode(id) || !g.HasChildren(id) || st.IsExternal(id) {
			continue
		}
		n, _ := g.Node(id)

		dir := flip(g.Attrs().Dir)
		if n.Dir != "" {
			dir = n.Dir.Normalize()
		}
		sub := g.NewView(graph.Attrs{
			Dir:     dir,
			NodeSep: SubgraphNodeSep,
			RankSep: SubgraphRankSep,
			MarginX: SubgraphMargin,
			MarginY: SubgraphMargin,
		})
		if err := copyCluster(ctx, st, g, sub, id); err != nil {
			return err
		}

		data := n.Clone()
		if e, ok := st.Lookup(id); ok && e.Data != nil {
			data = e.Data
		}
		n.Sub = sub
		n.ClusterData = data
		subs = append(subs, sub)

		st.logger.Debug("extracted cluster", "id", id, "depth", depth, "dir", dir, "nodes", sub.NodeCount())
		observability.Cluster().OnClusterExtracted(ctx, id, depth, sub.NodeCount())
	}

	for _, sub := range subs {
		if err := Extract(ctx, st, sub, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// flip picks the direction of an extracted graph: TB parents get LR
// children, every other direction gets TB.
func flip(d graph.Direction) graph.Direction {
	if d.Normalize() == graph.DirTB {
		return graph.DirLR
	}
	return graph.DirTB
}

// copyCluster moves the descendants of rootID from g into sub. Parent links
// below rootID are kept; direct children of rootID become roots of sub.
// Edges with both ends inside rootID follow the nodes; any other incident
// edge is dropped and recorded on the state.
func copyCluster(ctx context.Context, st *State, g, sub *graph.Graph, rootID string) error {
	st.ComputeDescendants(g, rootID)

	var order []string
	var post func(id string)
	post = func(id string) {
		for _, k := range g.Children(id) {
			post(k)
			order = append(order, k)
		}
	}
	post(rootID)

	inside := make(map[string]bool, len(order))
	parents := make(map[string]string, len(order))
	for _, id := range order {
		inside[id] = true
		parents[id] = g.Parent(id)
	}
	var edges []*graph.Edge
	for _, e := range g.Edges() {
		if inside[e.V] || inside[e.W] {
			edges = append(edges, e)
		}
	}

	for _, id := range order {
		if err := g.MoveNode(id, sub); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "moving %q into cluster %q", id, rootID)
		}
	}
	for _, id := range order {
		if p := parents[id]; p != rootID {
			if err := sub.SetParent(id, p); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "restoring parent of %q", id)
			}
		}
	}

	for _, e := range edges {
		if !st.EdgeInCluster(e, rootID) {
			drop(ctx, st, rootID, e, "edge leaves the extracted cluster")
			continue
		}
		if err := sub.SetEdge(e); err != nil {
			drop(ctx, st, rootID, e, err.Error())
		}
	}
	return nil
}

func drop(ctx context.Context, st *State, clusterID string, e *graph.Edge, reason string) {
	st.logger.Error("dropped edge during extraction", "cluster", clusterID, "v", e.V, "w", e.W, "name", e.Name, "reason", reason)
	st.Drop(DroppedEdge{Cluster: clusterID, V: e.V, W: e.W, Name: e.Name, Reason: reason})
	observability.Cluster().OnEdgeDropped(ctx, clusterID, e.V, e.W, e.Name, errors.New(errors.ErrCodeInternal, "%s", reason))
}
