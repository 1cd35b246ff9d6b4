package dot

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/clusterflow/pkg/graph"
)

func sample(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New(graph.Attrs{Dir: graph.DirTB, NodeSep: 50, RankSep: 50})
	for _, id := range []string{"a", "b", "c"} {
		if err := g.SetNode(&graph.Node{ID: id, Width: 72, Height: 36}); err != nil {
			t.Fatal(err)
		}
	}
	_ = g.SetEdge(&graph.Edge{V: "a", W: "b"})
	return g
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(sample(t))

	for _, want := range []string{
		"digraph G",
		"rankdir=TB;",
		"ranksep=0.6944;",
		"n0 [width=1, height=0.5];",
		"n0 -> n1 [id=e0];",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOT_Clusters(t *testing.T) {
	g := sample(t)
	_ = g.SetParent("a", "c")
	_ = g.SetNode(&graph.Node{ID: "x", Width: 10, Height: 10})
	_ = g.SetParent("x", "c")
	_ = g.SetEdge(&graph.Edge{V: "b", W: "c"})

	dot := ToDOT(g)
	if !strings.Contains(dot, "subgraph cluster_c0 {") {
		t.Errorf("ToDOT() missing cluster subgraph:\n%s", dot)
	}
	if strings.Contains(dot, "n1 -> n2") {
		t.Error("ToDOT() emitted an edge into a compound node")
	}
	if strings.Contains(dot, "n2 [") {
		t.Error("ToDOT() emitted the compound node as a box")
	}
}

const fixture = `digraph G {
	graph [bb="0,0,72,122",
		nodesep=0.6944,
		rankdir=TB,
		ranksep=0.6944
	];
	node [fixedsize=true,
		label="",
		shape=box
	];
	n0	[height=0.5,
		pos="36,104",
		width=1];
	n1	[height=0.5,
		pos="36,18",
		width=1];
	n0 -> n1	[id=e0,
		pos="e,36,36.104 36,85.697 36,77.983 36,68.712 \
36,60.112"];
}
`

func TestParseOutput(t *testing.T) {
	out, err := parseOutput(fixture)
	if err != nil {
		t.Fatalf("parseOutput: %v", err)
	}
	if out.width != 72 || out.height != 122 {
		t.Errorf("size = %vx%v, want 72x122", out.width, out.height)
	}
	if got := out.nodes["n0"]; got != (graph.Point{X: 36, Y: 104}) {
		t.Errorf("n0 = %v, want {36 104}", got)
	}
	pts := out.edges[0]
	if len(pts) != 5 {
		t.Fatalf("edge points = %v, want 5", pts)
	}
	if last := pts[4]; last != (graph.Point{X: 36, Y: 36.104}) {
		t.Errorf("end point = %v, want {36 36.104}", last)
	}
}

func TestParseOutputNoBoundingBox(t *testing.T) {
	if _, err := parseOutput("digraph G {}"); err == nil {
		t.Error("parseOutput() without bb returned nil error")
	}
}

func TestApply(t *testing.T) {
	g := sample(t)
	g.Attrs().MarginX, g.Attrs().MarginY = 8, 8
	_, nm := build(g)
	out, err := parseOutput(fixture)
	if err != nil {
		t.Fatal(err)
	}
	apply(g, nm, out)

	a, _ := g.Node("a")
	b, _ := g.Node("b")
	if a.X != 44 || a.Y != 26 {
		t.Errorf("a = (%v, %v), want (44, 26)", a.X, a.Y)
	}
	if !(a.Y < b.Y) {
		t.Errorf("a.Y = %v, b.Y = %v, want a above b", a.Y, b.Y)
	}
	e := g.Edges()[0]
	if len(e.Points) != 5 {
		t.Fatalf("Points = %v, want 5", e.Points)
	}
	if g.Attrs().Width != 88 || g.Attrs().Height != 138 {
		t.Errorf("size = %vx%v, want 88x138", g.Attrs().Width, g.Attrs().Height)
	}
}

func TestLayout(t *testing.T) {
	g := sample(t)
	if err := New().Layout(context.Background(), g); err != nil {
		t.Fatalf("Layout: %v", err)
	}
	a, _ := g.Node("a")
	b, _ := g.Node("b")
	if !(a.Y < b.Y) {
		t.Errorf("a.Y = %v, b.Y = %v, want a above b", a.Y, b.Y)
	}
	if len(g.Edges()[0].Points) == 0 {
		t.Error("edge has no points")
	}
	if g.Attrs().Width <= 0 || g.Attrs().Height <= 0 {
		t.Errorf("size = %vx%v, want positive", g.Attrs().Width, g.Attrs().Height)
	}
}

func TestInches(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{72, "1"},
		{36, "0.5"},
		{0, "0"},
		{50, "0.6944"},
	}
	for _, tt := range tests {
		if got := inches(tt.in); got != tt.want {
			t.Errorf("inches(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
