// Package cluster resolves and extracts clusters of a compound graph before
// flat layout.
//
// # Overview
//
// A flat layout engine cannot route an edge into a node that has children.
// This package prepares a compound [graph.Graph] for such an engine in two
// passes:
//
//  1. Resolve: every cluster gets an anchor, a representative leaf that
//     stands in for the cluster wherever an edge crosses its boundary.
//     Clusters with boundary-crossing edges are flagged external and their
//     incident edges are rewritten onto anchors.
//  2. Extract: clusters without external connections are pulled out into
//     their own nested graph, recursively, so the caller can lay them out
//     independently and treat them as opaque nodes.
//
// [Adjust] runs both passes.
//
// # State
//
// All per-render bookkeeping lives in a [State]: the cluster registry, the
// descendant index and the nearest-cluster reverse map. Create one State per
// top-level render; it is discarded with the render. State is safe for
// concurrent use.
package cluster

import (
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clusterflow/pkg/graph"
)

// MaxDepth bounds both anchor resolution and recursive extraction.
const MaxDepth = 10

// Entry is the registry record of one cluster.
type Entry struct {
	ID       string
	Anchor   string      // leaf (or collapsed internal cluster) standing in for the cluster
	External bool        // an edge crosses the cluster boundary
	Data     *graph.Node // attributes captured at registration
	Node     *graph.Node // laid out node, recorded by the renderer for clipping
}

// DroppedEdge describes an edge lost while copying a cluster into its
// extracted graph.
type DroppedEdge struct {
	Cluster string
	V       string
	W       string
	Name    string
	Reason  string
}

// State holds the cluster registry and descendant index for one render.
type State struct {
	mu sync.RWMutex

	entries map[string]*Entry
	order   []string

	descendants map[string][]string
	descSet     map[string]map[string]struct{}
	enclosing   map[string]string

	dropped []DroppedEdge
	logger  *log.Logger
}

// NewState returns an empty state. A nil logger discards output.
func NewState(logger *log.Logger) *State {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &State{
		entries:     make(map[string]*Entry),
		descendants: make(map[string][]string),
		descSet:     make(map[string]map[string]struct{}),
		enclosing:   make(map[string]string),
		logger:      logger,
	}
}

// Logger returns the logger the state was created with.
func (s *State) Logger() *log.Logger { return s.logger }

// Register records a cluster with its anchor. Registering an id again
// replaces the anchor and data but keeps the external flag.
func (s *State) Register(id, anchor string, data *graph.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		e.Anchor = anchor
		e.Data = data
		return
	}
	s.entries[id] = &Entry{ID: id, Anchor: anchor, Data: data}
	s.order = append(s.order, id)
}

// Lookup returns a copy of the entry for id.
func (s *State) Lookup(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// IsRegistered reports whether id is a registered cluster.
func (s *State) IsRegistered(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[id]
	return ok
}

// IsExternal reports whether id is a registered cluster with external
// connections.
func (s *State) IsExternal(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return ok && e.External
}

// MarkExternal flags id as externally connected. The flag never goes back
// to false. Unregistered ids are ignored.
func (s *State) MarkExternal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		e.External = true
	}
}

// SetAnchor replaces the anchor of a registered cluster.
func (s *State) SetAnchor(id, anchor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		e.Anchor = anchor
	}
}

// RecordNode attaches the laid out node to a cluster entry, registering the
// cluster if needed.
func (s *State) RecordNode(id, anchor string, n *graph.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		e = &Entry{ID: id, Anchor: anchor}
		s.entries[id] = e
		s.order = append(s.order, id)
	}
	if e.Anchor == "" {
		e.Anchor = anchor
	}
	e.Node = n
}

// Clusters returns registered cluster ids in registration order.
func (s *State) Clusters() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// Drop records an edge lost during extraction.
func (s *State) Drop(d DroppedEdge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropped = append(s.dropped, d)
}

// Dropped returns every edge recorded by [State.Drop].
func (s *State) Dropped() []DroppedEdge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.dropped)
}
