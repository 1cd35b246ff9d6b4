// Package sink serializes rendered diagrams.
package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/clusterflow/pkg/render"
)

const arrowDefs = `  <defs>
    <marker id="arrowhead" viewBox="0 0 10 10" refX="9" refY="5" markerUnits="userSpaceOnUse" markerWidth="8" markerHeight="8" orient="auto">
      <path d="M 0 0 L 10 5 L 0 10 z"/>
    </marker>
  </defs>
`

const baseCSS = `  <style>
    .node rect { fill: #ECECFF; stroke: #9370DB; }
    .cluster rect { fill: #ffffde; stroke: #aaaa33; }
    .flowchart-link { stroke: #333; stroke-width: 1.5; }
    text { font-family: sans-serif; font-size: 16px; }
  </style>
`

// RenderSVG serializes the element tree of res as a standalone SVG
// document. The viewport includes the reserved title height.
func RenderSVG(res *render.Result) []byte {
	w, h := res.Width, res.Height+res.Diff

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n", w, h, w, h)
	buf.WriteString(arrowDefs)
	buf.WriteString(baseCSS)
	writeElement(&buf, res.Root, 1)
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writeElement(buf *bytes.Buffer, e *render.Element, depth int) {
	indent := strings.Repeat("  ", depth)
	buf.WriteString(indent)
	buf.WriteString("<" + e.Tag)
	if e.ID != "" {
		fmt.Fprintf(buf, ` id="%s"`, escape(e.ID))
	}
	if e.Class != "" {
		fmt.Fprintf(buf, ` class="%s"`, escape(e.Class))
	}
	attrs := e.Attrs()
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		fmt.Fprintf(buf, ` %s="%s"`, k, escape(attrs[k]))
	}

	kids := e.Children()
	text := e.Text()
	switch {
	case len(kids) == 0 && text == "":
		buf.WriteString("/>\n")
	case len(kids) == 0:
		buf.WriteString(">" + escape(text) + "</" + e.Tag + ">\n")
	default:
		buf.WriteString(">\n")
		if text != "" {
			buf.WriteString(indent + "  " + escape(text) + "\n")
		}
		for _, c := range kids {
			writeElement(buf, c, depth+1)
		}
		buf.WriteString(indent + "</" + e.Tag + ">\n")
	}
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
