// Package diagram provides the wire format for diagrams and computed layouts.
//
// This package defines the JSON documents clusterflow reads and writes: the
// flat [Diagram] description handed in by a diagram front-end, and the
// [Layout] produced by a render. It sits at the serialization boundary:
//
//   - [Diagram], [Layout]: serialization types (this package)
//   - pkg/graph.Graph: internal compound graph
//   - pkg/render.Result: internal render result
//
// # Diagram Input
//
// Nodes are flat; nesting is expressed through parentId:
//
//	{
//	  "type": "flowchart",
//	  "direction": "TB",
//	  "config": {"nodeSpacing": 50, "rankSpacing": 50},
//	  "nodes": [
//	    {"id": "C", "label": "Cluster", "isGroup": true},
//	    {"id": "X", "parentId": "C", "width": 40, "height": 20},
//	    {"id": "Y", "parentId": "C", "width": 40, "height": 20}
//	  ],
//	  "edges": [{"id": "L-X-Y", "start": "X", "end": "Y", "label": "go"}]
//	}
//
// Common operations:
//
//	d, _ := diagram.ReadDiagramFile("flow.json")
//	if err := d.Validate(); err != nil { ... }
//	data, _ := diagram.MarshalLayout(layout)
//
// # Layout Output
//
// Every node carries its final absolute centre and size. Extracted clusters
// additionally carry the nested graph they were laid out in, with absolute
// coordinates as well. Edges carry routed points and an SVG path string.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package diagram
