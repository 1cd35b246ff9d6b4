// Package pkg provides the core libraries for clusterflow compound graph
// layout.
//
// # Overview
//
// clusterflow lays out flowchart-style diagrams whose nodes may be grouped
// into nested clusters. A flat layout engine only understands one graph at a
// time; clusterflow decides which clusters can be laid out on their own,
// lays those out recursively as independent subgraphs, and composes the
// results into one positioned drawing.
//
// # Architecture
//
// The data flow for one diagram:
//
//	diagram.Diagram (JSON)
//	         ↓
//	    [render.Build] (compound graph)
//	         ↓
//	    [selfloop] (rewrite self-loops into helper paths)
//	         ↓
//	    [cluster] (resolve anchors, extract self-contained clusters)
//	         ↓
//	    [render] (recursive render: draw, lay out, position, route)
//	         ↓
//	    diagram.Layout (JSON) / SVG
//
// # Quick Start
//
//	d, _ := diagram.ReadDiagramFile("flow.json")
//	res, err := render.Render(ctx, d, render.Options{Engine: dot.New()})
//	if err != nil {
//	    return err
//	}
//	layout := res.Export()
//	svg := sink.RenderSVG(res)
//
// # Main Packages
//
// ## Core
//
// [graph] - Compound graph with parent/child hierarchy, multi-edges keyed by
// name, and nested graphs owned by extracted cluster nodes.
//
// [cluster] - Per-render cluster registry, anchor resolution for edges that
// touch clusters, and extraction of clusters without external edges.
//
// [selfloop] - Rewrites v→v edges into three-segment paths through two small
// helper nodes.
//
// [layout] - Flat layout engine interface with a built-in layered engine;
// [layout/dot] runs Graphviz.
//
// [render] - The recursive renderer and its collaborators (node drawer,
// edge labeler, path router).
//
// ## Serialization
//
// [diagram] - Input diagram and output layout documents.
//
// ## Infrastructure
//
// [pipeline] - Read → layout → serialize with caching, shared by the CLI and
// the HTTP server.
//
// [cache] - Content-addressed layout cache: file, redis and null backends.
//
// [config] - TOML configuration with per diagram type spacing.
//
// [observability] - Hook interfaces for metrics and tracing.
//
// [errors] - Coded errors shared by every package.
//
// # Testing
//
//	go test ./...                  # All tests
//	go test ./pkg/cluster/...      # Specific package
//	go test -run Example ./pkg/... # Examples only
package pkg
