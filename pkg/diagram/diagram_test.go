package diagram

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/clusterflow/pkg/errors"
)

const sampleJSON = `{
  "type": "flowchart",
  "direction": "LR",
  "config": {"nodeSpacing": 30},
  "nodes": [
    {"id": "C", "label": "Cluster", "isGroup": true, "dir": "TB"},
    {"id": "X", "parentId": "C", "width": 40, "height": 20},
    {"id": "Y", "parentId": "C", "width": 40, "height": 20}
  ],
  "edges": [{"id": "L-X-Y", "start": "X", "end": "Y", "label": "go"}]
}`

func TestReadDiagram(t *testing.T) {
	d, err := ReadDiagram(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("ReadDiagram: %v", err)
	}
	if d.Type != TypeFlowchart || d.Direction != "LR" {
		t.Errorf("header = %q %q, want flowchart LR", d.Type, d.Direction)
	}
	if d.Config.NodeSpacing != 30 || d.Config.RankSpacing != 0 {
		t.Errorf("Config = %+v, want nodeSpacing 30 only", d.Config)
	}
	if len(d.Nodes) != 3 || len(d.Edges) != 1 {
		t.Fatalf("got %d nodes, %d edges, want 3, 1", len(d.Nodes), len(d.Edges))
	}
	if d.Nodes[1].ParentID != "C" {
		t.Errorf("X parent = %q, want C", d.Nodes[1].ParentID)
	}
	if !d.Nodes[0].IsGroup {
		t.Error("C.IsGroup = false, want true")
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestReadDiagramInvalidJSON(t *testing.T) {
	if _, err := ReadDiagram(strings.NewReader("{nope")); err == nil {
		t.Error("ReadDiagram() on malformed input returned nil error")
	}
}

func TestReadDiagramFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := ReadDiagramFile(path)
	if err != nil {
		t.Fatalf("ReadDiagramFile: %v", err)
	}
	if len(d.Nodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(d.Nodes))
	}

	if _, err := ReadDiagramFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadDiagramFile() on missing file returned nil error")
	}
}

func TestMarshalDiagramRoundTrip(t *testing.T) {
	d, err := ReadDiagram(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}
	data, err := MarshalDiagram(d)
	if err != nil {
		t.Fatalf("MarshalDiagram: %v", err)
	}
	if !bytes.Contains(data, []byte(`"parentId": "C"`)) {
		t.Errorf("MarshalDiagram() lost parentId:\n%s", data)
	}
	back, err := ReadDiagram(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if back.Edges[0].ID != "L-X-Y" || back.Edges[0].Label != "go" {
		t.Errorf("edge = %+v, want L-X-Y labelled go", back.Edges[0])
	}
}

func TestValidate(t *testing.T) {
	node := func(id, parent string) Node { return Node{ID: id, ParentID: parent} }

	tests := []struct {
		name string
		d    Diagram
		code errors.Code
	}{
		{"empty", Diagram{}, ""},
		{"valid", Diagram{Nodes: []Node{node("a", ""), node("b", "a")}, Edges: []Edge{{Start: "a", End: "b"}}}, ""},
		{"bad direction", Diagram{Direction: "XY"}, errors.ErrCodeInvalidDirection},
		{"bad node dir", Diagram{Nodes: []Node{{ID: "a", Dir: "up"}}}, errors.ErrCodeInvalidDirection},
		{"negative spacing", Diagram{Config: Spacing{RankSpacing: -1}}, errors.ErrCodeInvalidConfig},
		{"empty id", Diagram{Nodes: []Node{node("", "")}}, errors.ErrCodeInvalidID},
		{"reserved id", Diagram{Nodes: []Node{node("a---1", "")}}, errors.ErrCodeInvalidID},
		{"duplicate node", Diagram{Nodes: []Node{node("a", ""), node("a", "")}}, errors.ErrCodeInvalidInput},
		{"unknown parent", Diagram{Nodes: []Node{node("a", "zz")}}, errors.ErrCodeInvalidInput},
		{"negative size", Diagram{Nodes: []Node{{ID: "a", Width: -3}}}, errors.ErrCodeInvalidInput},
		{"unknown start", Diagram{Nodes: []Node{node("a", "")}, Edges: []Edge{{Start: "q", End: "a"}}}, errors.ErrCodeInvalidInput},
		{"unknown end", Diagram{Nodes: []Node{node("a", "")}, Edges: []Edge{{Start: "a", End: "q"}}}, errors.ErrCodeInvalidInput},
		{
			"duplicate edge id",
			Diagram{Nodes: []Node{node("a", "")}, Edges: []Edge{{ID: "e", Start: "a", End: "a"}, {ID: "e", Start: "a", End: "a"}}},
			errors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestEnsureID(t *testing.T) {
	d := &Diagram{}
	id := d.EnsureID()
	if id == "" || d.ID != id {
		t.Errorf("EnsureID() = %q, ID = %q", id, d.ID)
	}
	if again := d.EnsureID(); again != id {
		t.Errorf("EnsureID() changed id from %q to %q", id, again)
	}

	named := &Diagram{ID: "flow"}
	if got := named.EnsureID(); got != "flow" {
		t.Errorf("EnsureID() = %q, want flow", got)
	}
}

func sampleLayout() *Layout {
	return &Layout{
		ID:        "flow",
		Engine:    "layered",
		Direction: "TB",
		Width:     100,
		Height:    80,
		Nodes: []LayoutNode{
			{ID: "a", Kind: "leaf", X: 20, Y: 20, Width: 40, Height: 20},
			{
				ID: "C", Kind: "extracted", X: 60, Y: 50, Width: 60, Height: 40,
				Graph: &SubLayout{
					Direction: "LR",
					Nodes:     []LayoutNode{{ID: "x", Parent: "C", Kind: "leaf"}},
				},
			},
		},
		Edges:   []LayoutEdge{{V: "a", W: "C", ToCluster: "C", Points: []Point{{X: 20, Y: 30}, {X: 60, Y: 30}}}},
		Dropped: []DroppedEdge{{Cluster: "C", V: "x", W: "a", Reason: "crosses cluster boundary"}},
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	data, err := MarshalLayout(sampleLayout())
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	l, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if l.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", l.NodeCount())
	}
	x, ok := l.FindNode("x")
	if !ok || x.Parent != "C" {
		t.Errorf("FindNode(x) = %+v, %v", x, ok)
	}
	if _, ok := l.FindNode("nope"); ok {
		t.Error("FindNode(nope) found a node")
	}
	if len(l.Dropped) != 1 || l.Dropped[0].Cluster != "C" {
		t.Errorf("Dropped = %+v", l.Dropped)
	}
	if l.Edges[0].ToCluster != "C" {
		t.Errorf("ToCluster = %q, want C", l.Edges[0].ToCluster)
	}
}

func TestUnmarshalLayoutInvalid(t *testing.T) {
	if _, err := UnmarshalLayout([]byte("[")); err == nil {
		t.Error("UnmarshalLayout() on malformed input returned nil error")
	}
}

func TestWriteLayoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(sampleLayout(), path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"engine": "layered"`)) {
		t.Errorf("file missing engine:\n%s", data)
	}
	if err := WriteLayoutFile(sampleLayout(), filepath.Join(t.TempDir(), "no", "such", "dir.json")); err == nil {
		t.Error("WriteLayoutFile() into missing dir returned nil error")
	}
}
