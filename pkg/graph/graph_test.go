package graph

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func build(t *testing.T, ids ...string) *Graph {
	t.Helper()
	g := New(Attrs{Dir: DirTB})
	for _, id := range ids {
		if err := g.SetNode(&Node{ID: id}); err != nil {
			t.Fatalf("SetNode(%q): %v", id, err)
		}
	}
	return g
}

func TestSetNode(t *testing.T) {
	g := build(t, "a", "b")

	if err := g.SetNode(&Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("SetNode(empty) = %v, want %v", err, ErrInvalidNodeID)
	}

	_ = g.SetParent("b", "a")
	if err := g.SetNode(&Node{ID: "a", Label: "A"}); err != nil {
		t.Fatalf("SetNode replace: %v", err)
	}
	n, _ := g.Node("a")
	if n.Label != "A" {
		t.Errorf("Label = %q, want A", n.Label)
	}
	if n.Meta == nil {
		t.Error("Meta is nil after SetNode")
	}
	if got := g.NodeIDs(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("NodeIDs = %v, want [a b]", got)
	}
	if got := g.Children("a"); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Children(a) = %v, want [b]", got)
	}
}

func TestSetNodeOwnedElsewhere(t *testing.T) {
	g := build(t, "a")
	v := g.NewView(Attrs{})
	if err := v.SetNode(&Node{ID: "a"}); !errors.Is(err, ErrNodeOwned) {
		t.Errorf("SetNode = %v, want %v", err, ErrNodeOwned)
	}
}

func TestSetParent(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		parent  string
		wantErr error
	}{
		{"Valid", "c", "b", nil},
		{"Unknown child", "x", "a", ErrUnknownNode},
		{"Unknown parent", "a", "x", ErrUnknownNode},
		{"Self", "a", "a", ErrParentCycle},
		{"Cycle", "a", "c", ErrParentCycle},
		{"Clear", "b", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, "a", "b", "c")
			_ = g.SetParent("b", "a")
			_ = g.SetParent("c", "b")
			err := g.SetParent(tt.id, tt.parent)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SetParent(%q, %q) = %v, want %v", tt.id, tt.parent, err, tt.wantErr)
			}
			if err == nil && g.Parent(tt.id) != tt.parent {
				t.Errorf("Parent(%q) = %q, want %q", tt.id, g.Parent(tt.id), tt.parent)
			}
		})
	}
}

func TestSetParentMovesChild(t *testing.T) {
	g := build(t, "a", "b", "x")
	_ = g.SetParent("x", "a")
	_ = g.SetParent("x", "b")

	if g.HasChildren("a") {
		t.Errorf("Children(a) = %v, want none", g.Children("a"))
	}
	if got := g.Children("b"); !slices.Equal(got, []string{"x"}) {
		t.Errorf("Children(b) = %v, want [x]", got)
	}
}

func TestChildrenRoots(t *testing.T) {
	g := build(t, "a", "b", "c", "d")
	_ = g.SetParent("b", "a")
	_ = g.SetParent("d", "c")

	if got := g.Children(""); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("Children(\"\") = %v, want [a c]", got)
	}
}

func TestEdges(t *testing.T) {
	g := build(t, "a", "b")

	if err := g.SetEdge(&Edge{V: "x", W: "b"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("SetEdge(x->b) = %v, want %v", err, ErrUnknownSourceNode)
	}
	if err := g.SetEdge(&Edge{V: "a", W: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("SetEdge(a->x) = %v, want %v", err, ErrUnknownTargetNode)
	}

	_ = g.SetEdge(&Edge{V: "a", W: "b", Name: "1"})
	_ = g.SetEdge(&Edge{V: "a", W: "b", Name: "2"})
	_ = g.SetEdge(&Edge{V: "b", W: "a", Name: "1"})
	if g.EdgeCount() != 3 {
		t.Fatalf("EdgeCount = %d, want 3", g.EdgeCount())
	}

	_ = g.SetEdge(&Edge{V: "a", W: "b", Name: "1", Label: "replaced"})
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount after replace = %d, want 3", g.EdgeCount())
	}
	e, ok := g.Edge("a", "b", "1")
	if !ok || e.Label != "replaced" {
		t.Errorf("Edge(a,b,1) = %+v, want label replaced", e)
	}
	if first := g.Edges()[0]; first.Label != "replaced" {
		t.Errorf("replaced edge moved from position 0")
	}

	if !g.RemoveEdge(EdgeKey{V: "a", W: "b", Name: "2"}) {
		t.Error("RemoveEdge returned false for existing edge")
	}
	if g.RemoveEdge(EdgeKey{V: "a", W: "b", Name: "2"}) {
		t.Error("RemoveEdge returned true for missing edge")
	}
	if got := len(g.NodeEdges("a")); got != 2 {
		t.Errorf("NodeEdges(a) = %d edges, want 2", got)
	}
}

func TestNodeEdgesSelfLoop(t *testing.T) {
	g := build(t, "a")
	_ = g.SetEdge(&Edge{V: "a", W: "a"})
	if got := len(g.NodeEdges("a")); got != 1 {
		t.Errorf("NodeEdges(a) = %d edges, want 1", got)
	}
	if !g.Edges()[0].IsLoop() {
		t.Error("IsLoop = false, want true")
	}
}

func TestRemoveNode(t *testing.T) {
	g := build(t, "c", "x", "y")
	_ = g.SetParent("x", "c")
	_ = g.SetParent("y", "c")
	_ = g.SetEdge(&Edge{V: "x", W: "y"})
	_ = g.SetEdge(&Edge{V: "c", W: "y"})

	g.RemoveNode("c")
	if g.HasNode("c") {
		t.Error("HasNode(c) = true after RemoveNode")
	}
	if got := g.Children(""); !slices.Equal(got, []string{"x", "y"}) {
		t.Errorf("roots = %v, want [x y]", got)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}
	if err := g.SetNode(&Node{ID: "c"}); err != nil {
		t.Errorf("SetNode after RemoveNode: %v", err)
	}
}

func TestMoveNode(t *testing.T) {
	g := build(t, "c", "x", "y", "z")
	_ = g.SetParent("x", "c")
	_ = g.SetParent("y", "c")
	_ = g.SetEdge(&Edge{V: "x", W: "y"})
	_ = g.SetEdge(&Edge{V: "z", W: "x"})
	x, _ := g.Node("x")

	sub := g.NewView(Attrs{Dir: DirLR})
	if err := g.MoveNode("x", sub); err != nil {
		t.Fatalf("MoveNode: %v", err)
	}

	if g.HasNode("x") {
		t.Error("source still owns x")
	}
	got, ok := sub.Node("x")
	if !ok || got != x {
		t.Error("moved node is not the same value")
	}
	if g.EdgeCount() != 0 {
		t.Errorf("source EdgeCount = %d, want 0", g.EdgeCount())
	}
	if gotKids := g.Children("c"); !slices.Equal(gotKids, []string{"y"}) {
		t.Errorf("Children(c) = %v, want [y]", gotKids)
	}
	if sub.Parent("x") != "" {
		t.Errorf("moved node parent = %q, want root", sub.Parent("x"))
	}
	if err := sub.SetNode(&Node{ID: "x"}); err != nil {
		t.Errorf("destination cannot update moved node: %v", err)
	}
	if err := g.SetNode(&Node{ID: "x"}); !errors.Is(err, ErrNodeOwned) {
		t.Errorf("source SetNode(x) = %v, want %v", err, ErrNodeOwned)
	}

	other := New(Attrs{})
	if err := sub.MoveNode("x", other); !errors.Is(err, ErrForeignArena) {
		t.Errorf("MoveNode to foreign arena = %v, want %v", err, ErrForeignArena)
	}
	if err := g.MoveNode("x", sub); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("MoveNode unowned = %v, want %v", err, ErrUnknownNode)
	}
}

func TestKind(t *testing.T) {
	g := build(t, "c", "x", "e")
	_ = g.SetParent("x", "c")
	e, _ := g.Node("e")
	e.Sub = g.NewView(Attrs{})

	tests := []struct {
		id   string
		want NodeKind
	}{
		{"c", NodeKindCluster},
		{"x", NodeKindLeaf},
		{"e", NodeKindExtracted},
	}
	for _, tt := range tests {
		if got := g.Kind(tt.id); got != tt.want {
			t.Errorf("Kind(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestHierarchy(t *testing.T) {
	g := build(t, "a1", "c", "b", "a", "c1", "b1")
	_ = g.SetParent("b", "a")
	_ = g.SetParent("c", "b")
	_ = g.SetParent("a1", "a")
	_ = g.SetParent("b1", "b")
	_ = g.SetParent("c1", "c")

	got := g.Hierarchy()
	want := []string{"a", "b", "a1", "c", "b1", "c1"}
	if !slices.Equal(got, want) {
		t.Errorf("Hierarchy = %v, want %v", got, want)
	}

	pos := make(map[string]int)
	for i, id := range got {
		pos[id] = i
	}
	for _, id := range got {
		if p := g.Parent(id); p != "" && pos[p] > pos[id] {
			t.Errorf("%s listed before its parent %s", id, p)
		}
	}
}

func TestTranslate(t *testing.T) {
	g := build(t, "a", "b")
	a, _ := g.Node("a")
	a.X, a.Y = 10, 20
	sub := g.NewView(Attrs{})
	_ = sub.SetNode(&Node{ID: "inner", X: 1, Y: 2})
	a.Sub = sub
	_ = g.SetEdge(&Edge{V: "a", W: "b", Points: []Point{{X: 0, Y: 0}}, Path: &Path{Points: []Point{{X: 1, Y: 1}}}})

	g.Translate(5, -5)

	if a.X != 15 || a.Y != 15 {
		t.Errorf("a = (%v, %v), want (15, 15)", a.X, a.Y)
	}
	inner, _ := sub.Node("inner")
	if inner.X != 6 || inner.Y != -3 {
		t.Errorf("inner = (%v, %v), want (6, -3)", inner.X, inner.Y)
	}
	e := g.Edges()[0]
	if e.Points[0] != (Point{X: 5, Y: -5}) {
		t.Errorf("edge point = %v, want {5 -5}", e.Points[0])
	}
	if e.Path.Points[0] != (Point{X: 6, Y: -4}) {
		t.Errorf("path point = %v, want {6 -4}", e.Path.Points[0])
	}
}

func TestBounds(t *testing.T) {
	g := New(Attrs{})
	if b := g.Bounds(); b != (Rect{}) {
		t.Errorf("empty Bounds = %v, want zero", b)
	}
	_ = g.SetNode(&Node{ID: "a", X: 10, Y: 10, Width: 20, Height: 10})
	_ = g.SetNode(&Node{ID: "b", X: 50, Y: 40, Width: 10, Height: 20})

	want := Rect{X: 0, Y: 5, Width: 55, Height: 45}
	if b := g.Bounds(); b != want {
		t.Errorf("Bounds = %v, want %v", b, want)
	}
}

func TestDump(t *testing.T) {
	g := build(t, "c", "x")
	_ = g.SetParent("x", "c")
	got := g.Dump()
	for _, want := range []string{`"id":"c"`, `"kind":"cluster"`, `"parent":"c"`} {
		if !strings.Contains(got, want) {
			t.Errorf("Dump() = %s, missing %s", got, want)
		}
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		dir        Direction
		normalized Direction
		horizontal bool
	}{
		{"", DirTB, false},
		{DirTD, DirTB, false},
		{DirBT, DirBT, false},
		{DirLR, DirLR, true},
		{DirRL, DirRL, true},
	}
	for _, tt := range tests {
		if got := tt.dir.Normalize(); got != tt.normalized {
			t.Errorf("%q.Normalize() = %q, want %q", tt.dir, got, tt.normalized)
		}
		if got := tt.dir.Horizontal(); got != tt.horizontal {
			t.Errorf("%q.Horizontal() = %v, want %v", tt.dir, got, tt.horizontal)
		}
	}
}
