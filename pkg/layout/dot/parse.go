package dot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/clusterflow/pkg/graph"
)

// output is the geometry read back from Graphviz.
type output struct {
	width  float64
	height float64
	nodes  map[string]graph.Point
	edges  map[int][]graph.Point
}

var (
	bbRe   = regexp.MustCompile(`bb="([-0-9.e]+),([-0-9.e]+),([-0-9.e]+),([-0-9.e]+)"`)
	stmtRe = regexp.MustCompile(`(?s)\b(n\d+)(?:\s*->\s*(n\d+))?\s*\[([^\]]*)\]`)
	attrRe = regexp.MustCompile(`(\w+)=("[^"]*"|[^,\s\]]+)`)
)

// parseOutput reads bounding box, node centres and edge splines from
// Graphviz "dot" format output.
func parseOutput(src string) (*output, error) {
	src = strings.ReplaceAll(src, "\\\r\n", "")
	src = strings.ReplaceAll(src, "\\\n", "")

	bb := bbRe.FindStringSubmatch(src)
	if bb == nil {
		return nil, fmt.Errorf("graphviz output has no bounding box")
	}
	var box [4]float64
	for i := range box {
		v, err := strconv.ParseFloat(bb[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("bounding box: %w", err)
		}
		box[i] = v
	}

	out := &output{
		width:  box[2] - box[0],
		height: box[3] - box[1],
		nodes:  make(map[string]graph.Point),
		edges:  make(map[int][]graph.Point),
	}

	for _, m := range stmtRe.FindAllStringSubmatch(src, -1) {
		attrs := parseAttrs(m[3])
		pos, ok := attrs["pos"]
		if !ok {
			continue
		}
		if m[2] == "" {
			p, err := parsePoint(pos)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", m[1], err)
			}
			out.nodes[m[1]] = graph.Point{X: p.X - box[0], Y: p.Y - box[1]}
			continue
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(attrs["id"], "e"))
		if err != nil {
			continue
		}
		pts, err := parseSpline(pos)
		if err != nil {
			return nil, fmt.Errorf("edge %s -> %s: %w", m[1], m[2], err)
		}
		for i := range pts {
			pts[i].X -= box[0]
			pts[i].Y -= box[1]
		}
		out.edges[idx] = pts
	}
	return out, nil
}

func parseAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrRe.FindAllStringSubmatch(s, -1) {
		attrs[m[1]] = strings.Trim(m[2], `"`)
	}
	return attrs
}

func parsePoint(s string) (graph.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return graph.Point{}, fmt.Errorf("malformed point %q", s)
	}
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return graph.Point{}, err
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return graph.Point{}, err
	}
	return graph.Point{X: x, Y: y}, nil
}

// parseSpline turns an edge pos attribute ("[s,x,y] [e,x,y] x,y x,y ...")
// into a polyline from start to end.
func parseSpline(s string) ([]graph.Point, error) {
	var start, end *graph.Point
	var pts []graph.Point
	for _, tok := range strings.Fields(s) {
		switch {
		case strings.HasPrefix(tok, "s,"):
			p, err := parsePoint(tok[2:])
			if err != nil {
				return nil, err
			}
			start = &p
		case strings.HasPrefix(tok, "e,"):
			p, err := parsePoint(tok[2:])
			if err != nil {
				return nil, err
			}
			end = &p
		default:
			p, err := parsePoint(tok)
			if err != nil {
				return nil, err
			}
			pts = append(pts, p)
		}
	}
	if start != nil {
		pts = append([]graph.Point{*start}, pts...)
	}
	if end != nil {
		pts = append(pts, *end)
	}
	return pts, nil
}
