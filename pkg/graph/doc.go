// Package graph provides the compound directed multigraph used by the
// clusterflow layout pipeline.
//
// # Overview
//
// Diagrams nest nodes inside other nodes (subgraphs, groups, clusters) and
// may connect the same pair of nodes with several edges. This package models
// both: every edge is keyed by (v, w, name), and every node has at most one
// parent. A node with children is a cluster.
//
// # Arena and Views
//
// Node data lives in an [Arena] indexed by id. A [Graph] is a view over an
// arena: an ordered set of owned ids, the parent links between them and the
// edge list. The layout pipeline pulls self-contained clusters out into
// independent graphs; instead of copying node data it creates a sibling view
// with [Graph.NewView] and transfers ownership with [Graph.MoveNode]. A node
// id is owned by exactly one view at a time.
//
//	g := graph.New(graph.Attrs{Dir: graph.DirTB, NodeSep: 50, RankSep: 50})
//	g.SetNode(&graph.Node{ID: "C"})
//	g.SetNode(&graph.Node{ID: "X"})
//	g.SetParent("X", "C")
//
//	sub := g.NewView(graph.Attrs{Dir: graph.DirLR})
//	g.MoveNode("X", sub)
//
// # Node Kinds
//
// A node's kind is derived from its shape in the owning view:
//
//   - [NodeKindLeaf]: no children
//   - [NodeKindCluster]: one or more children in the same view
//   - [NodeKindExtracted]: replaced by an independently laid out nested graph
//
// # Concurrency
//
// Graph is not safe for concurrent mutation. Concurrent writes to distinct
// node or edge values obtained from a graph are fine; the renderer relies on
// this when it measures nodes in parallel.
package graph
