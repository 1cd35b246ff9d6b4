package cluster

import (
	"github.com/matzehuels/clusterflow/pkg/graph"
)

// ComputeDescendants indexes every node nested below clusterID in g and
// returns them, children ahead of grandchildren. Each visited node is mapped
// to the cluster it sits in directly; when several clusters are indexed the
// last write wins.
func (s *State) ComputeDescendants(g *graph.Graph, clusterID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var walk func(id string) []string
	walk = func(id string) []string {
		kids := g.Children(id)
		out := append([]string(nil), kids...)
		for _, k := range kids {
			s.enclosing[k] = id
			out = append(out, walk(k)...)
		}
		return out
	}
	desc := walk(clusterID)

	set := make(map[string]struct{}, len(desc))
	for _, d := range desc {
		set[d] = struct{}{}
	}
	s.descendants[clusterID] = desc
	s.descSet[clusterID] = set
	return desc
}

// Descendants returns the indexed descendants of clusterID.
func (s *State) Descendants(clusterID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.descendants[clusterID]...)
}

// EnclosingCluster returns the cluster that directly contains id, as seen
// by the last ComputeDescendants call that visited it.
func (s *State) EnclosingCluster(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.enclosing[id]
	return c, ok
}

// IsDescendant reports whether id is nested anywhere below clusterID. A
// cluster is never its own descendant.
func (s *State) IsDescendant(id, clusterID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.descSet[clusterID][id]
	return ok
}

// EdgeCrossesBoundary reports whether exactly one endpoint of e lies inside
// clusterID.
func (s *State) EdgeCrossesBoundary(e *graph.Edge, clusterID string) bool {
	return s.IsDescendant(e.V, clusterID) != s.IsDescendant(e.W, clusterID)
}

// EdgeInCluster reports whether both endpoints of e lie strictly inside
// rootID.
func (s *State) EdgeInCluster(e *graph.Edge, rootID string) bool {
	if e.V == rootID || e.W == rootID {
		return false
	}
	return s.IsDescendant(e.V, rootID) && s.IsDescendant(e.W, rootID)
}
