package cluster

import (
	"context"

	"github.com/matzehuels/clusterflow/pkg/errors"
	"github.com/matzehuels/clusterflow/pkg/graph"
)

// Adjust prepares g for flat layout: it resolves cluster anchors, rewrites
// boundary edges and extracts self-contained clusters. Graphs without
// clusters are left untouched.
func Adjust(ctx context.Context, st *State, g *graph.Graph) error {
	if !hasClusters(g) {
		st.logger.Debug("no clusters, skipping adjustment")
		return nil
	}
	if err := Resolve(ctx, st, g); err != nil {
		return err
	}
	return Extract(ctx, st, g, 0)
}

func hasClusters(g *graph.Graph) bool {
	for _, id := range g.NodeIDs() {
		if g.HasChildren(id) {
			return true
		}
	}
	return false
}

// Resolve registers every cluster of g with an anchor, flags clusters with
// boundary-crossing edges as external and rewrites edges that touch an
// external cluster onto its anchor.
func Resolve(ctx context.Context, st *State, g *graph.Graph) error {
	var clusters []string
	for _, id := range g.NodeIDs() {
		if !g.HasChildren(id) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		st.ComputeDescendants(g, id)
		anchor := findNonClusterChild(g, id, id)
		if anchor == "" {
			return errors.New(errors.ErrCodeAmbiguousAnchor, "cluster %q has no anchor candidate", id)
		}
		n, _ := g.Node(id)
		st.Register(id, anchor, n.Clone())
		clusters = append(clusters, id)
		st.logger.Debug("registered cluster", "id", id, "anchor", anchor)
	}

	edges := g.Edges()
	for _, id := range clusters {
		for _, e := range edges {
			if st.EdgeCrossesBoundary(e, id) {
				st.MarkExternal(id)
				st.logger.Debug("external connection", "cluster", id, "v", e.V, "w", e.W)
				break
			}
		}
	}

	for _, id := range clusters {
		if err := collapseAnchor(g, st, id); err != nil {
			return err
		}
	}

	return rewriteEdges(ctx, g, st)
}

// AnchorFor picks the leaf that stands in for cluster id in edges of g.
// It returns "" when every candidate conflicts and none can serve.
func AnchorFor(g *graph.Graph, id string) string {
	return findNonClusterChild(g, id, id)
}

// findNonClusterChild searches depth-first below id for a leaf that can
// represent clusterID. Candidates that would turn an edge of clusterID into
// a self-loop are rejected. Candidates that would duplicate an existing edge
// are only used when no clean candidate exists.
func findNonClusterChild(g *graph.Graph, id, clusterID string) string {
	kids := g.Children(id)
	if len(kids) == 0 {
		return id
	}
	var reserve string
	for _, k := range kids {
		cand := findNonClusterChild(g, k, clusterID)
		if cand == "" || closesLoop(g, clusterID, cand) {
			continue
		}
		if len(findCommonEdges(g, clusterID, cand)) > 0 {
			reserve = cand
			continue
		}
		return cand
	}
	return reserve
}

// closesLoop reports whether relabelling clusterID onto cand turns one of
// its edges into cand->cand.
func closesLoop(g *graph.Graph, clusterID, cand string) bool {
	for _, e := range g.NodeEdges(clusterID) {
		v, w := e.V, e.W
		if v == clusterID {
			v = cand
		}
		if w == clusterID {
			w = cand
		}
		if v == w {
			return true
		}
	}
	return false
}

// findCommonEdges relabels the edges incident to id1 onto id2 and returns
// those that id2 already has.
func findCommonEdges(g *graph.Graph, id1, id2 string) []graph.EdgeKey {
	have := make(map[[2]string]bool)
	for _, e := range g.NodeEdges(id2) {
		have[[2]string{e.V, e.W}] = true
	}
	var common []graph.EdgeKey
	for _, e := range g.NodeEdges(id1) {
		v, w := e.V, e.W
		if v == id1 {
			v = id2
		}
		if w == id1 {
			w = id2
		}
		if have[[2]string{v, w}] {
			common = append(common, graph.EdgeKey{V: v, W: w, Name: e.Name})
		}
	}
	return common
}

// collapseAnchor promotes the anchor of id to the outermost internal cluster
// between it and id. Running it twice yields the same anchor.
func collapseAnchor(g *graph.Graph, st *State, id string) error {
	e, _ := st.Lookup(id)
	anchor := e.Anchor
	for depth := 0; ; depth++ {
		if depth > MaxDepth {
			return errors.New(errors.ErrCodeLimitExceeded, "anchor of %q nested deeper than %d", id, MaxDepth)
		}
		p := g.Parent(anchor)
		if p == "" || p == id || !st.IsRegistered(p) || st.IsExternal(p) {
			break
		}
		anchor = p
	}
	if anchor != e.Anchor {
		st.logger.Debug("collapsed anchor", "cluster", id, "from", e.Anchor, "to", anchor)
		st.SetAnchor(id, anchor)
	}
	return nil
}

// anchorOf resolves an edge endpoint. External clusters resolve to their
// anchor; every other node resolves to itself.
func anchorOf(st *State, id string) (string, error) {
	for depth := 0; ; depth++ {
		if depth > MaxDepth {
			return "", errors.New(errors.ErrCodeLimitExceeded, "anchor resolution for %q exceeds depth %d", id, MaxDepth)
		}
		e, ok := st.Lookup(id)
		if !ok || !e.External || e.Anchor == id {
			return id, nil
		}
		if e.Anchor == "" {
			return "", errors.New(errors.ErrCodeAmbiguousAnchor, "cluster %q has no anchor", id)
		}
		id = e.Anchor
	}
}

func rewriteEdges(ctx context.Context, g *graph.Graph, st *State) error {
	for _, e := range g.Edges() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !st.IsRegistered(e.V) && !st.IsRegistered(e.W) {
			continue
		}
		v, err := anchorOf(st, e.V)
		if err != nil {
			return err
		}
		w, err := anchorOf(st, e.W)
		if err != nil {
			return err
		}
		if v == e.V && w == e.W {
			continue
		}

		key := e.Key()
		g.RemoveEdge(key)
		if v != e.V {
			st.MarkExternal(g.Parent(v))
			e.FromCluster = e.V
			e.V = v
		}
		if w != e.W {
			st.MarkExternal(g.Parent(w))
			e.ToCluster = e.W
			e.W = w
		}
		if g.HasEdge(e.Key()) {
			return errors.New(errors.ErrCodeAmbiguousAnchor,
				"edge %s->%s (%q) collides with an existing edge after anchoring onto %s->%s", key.V, key.W, key.Name, e.V, e.W)
		}
		if err := g.SetEdge(e); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "re-adding edge %s->%s", e.V, e.W)
		}
		st.logger.Debug("rewrote boundary edge", "from", key.V+"->"+key.W, "to", e.V+"->"+e.W)
	}
	return nil
}
