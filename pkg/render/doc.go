// Package render lays out compound diagrams with nested clusters.
//
// # Overview
//
// A flat layout engine cannot place nodes inside clusters that have their
// own direction and spacing. Render therefore prepares the graph before
// handing it to an engine:
//
//  1. Self-loops are replaced by two helper nodes and three edges
//     (pkg/selfloop).
//  2. Clusters get anchors, boundary edges are rewritten onto anchors and
//     self-contained clusters are extracted into nested graphs
//     (pkg/cluster).
//  3. The [Renderer] walks the result bottom-up: nested graphs are laid out
//     first, then each level is laid out once with its extracted clusters
//     as opaque boxes, then nested coordinates are moved into the parent's
//     frame.
//
// # Collaborators
//
// Drawing is delegated to a [NodeDrawer], an [EdgeLabeler] and a
// [PathRouter]. The defaults ([BoxDrawer], [TextLabeler], [ClusterRouter])
// produce a plain SVG element tree, which the sink subpackage serializes.
//
//	res, err := render.Render(ctx, d, render.Options{})
//	if err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(res)
//	layout := res.Export()
//
// # Concurrency
//
// Within one level, leaves and nested graphs are rendered concurrently,
// then edge labels, then the level is laid out. Every call to [Render]
// works on its own graph and cluster state, so independent renders may run
// in parallel.
package render
