package diagram

import (
	"github.com/google/uuid"

	"github.com/matzehuels/clusterflow/pkg/errors"
)

// Diagram types with their own spacing defaults.
const (
	TypeFlowchart = "flowchart"
	TypeState     = "state"
	TypeClass     = "class"
)

// Diagram is the flat description of a compound graph.
type Diagram struct {
	Type      string  `json:"type,omitempty"`
	ID        string  `json:"id,omitempty"`
	Direction string  `json:"direction,omitempty"`
	Config    Spacing `json:"config,omitzero"`
	Nodes     []Node  `json:"nodes"`
	Edges     []Edge  `json:"edges"`
}

// Spacing holds per-diagram spacing overrides. Zero means unset.
type Spacing struct {
	NodeSpacing float64 `json:"nodeSpacing,omitempty"`
	RankSpacing float64 `json:"rankSpacing,omitempty"`
}

// Node describes one diagram node. Width and Height are the measured size
// of leaves; the layout computes cluster sizes.
type Node struct {
	ID       string         `json:"id"`
	ParentID string         `json:"parentId,omitempty"`
	Label    string         `json:"label,omitempty"`
	Shape    string         `json:"shape,omitempty"`
	Width    float64        `json:"width,omitempty"`
	Height   float64        `json:"height,omitempty"`
	Padding  float64        `json:"padding,omitempty"`
	Dir      string         `json:"dir,omitempty"`
	IsGroup  bool           `json:"isGroup,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// Edge describes one directed connection.
type Edge struct {
	ID           string         `json:"id,omitempty"`
	Start        string         `json:"start"`
	End          string         `json:"end"`
	Label        string         `json:"label,omitempty"`
	ArrowTypeEnd string         `json:"arrowTypeEnd,omitempty"`
	Meta         map[string]any `json:"meta,omitempty"`
}

// EnsureID assigns a random id to diagrams that have none and returns it.
func (d *Diagram) EnsureID() string {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return d.ID
}

// Validate checks ids, references and options. Parent cycles are detected
// when the graph is built.
func (d *Diagram) Validate() error {
	if err := errors.ValidateDirection(d.Direction); err != nil {
		return err
	}
	if err := errors.ValidateSpacing("nodeSpacing", d.Config.NodeSpacing); err != nil {
		return err
	}
	if err := errors.ValidateSpacing("rankSpacing", d.Config.RankSpacing); err != nil {
		return err
	}

	seen := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if err := errors.ValidateID("node", n.ID); err != nil {
			return err
		}
		if seen[n.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate node %q", n.ID)
		}
		seen[n.ID] = true
		if err := errors.ValidateDirection(n.Dir); err != nil {
			return err
		}
		if n.Width < 0 || n.Height < 0 || n.Padding < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "node %q has a negative size", n.ID)
		}
	}
	for _, n := range d.Nodes {
		if n.ParentID != "" && !seen[n.ParentID] {
			return errors.New(errors.ErrCodeInvalidInput, "node %q references unknown parent %q", n.ID, n.ParentID)
		}
	}

	edgeIDs := make(map[string]bool, len(d.Edges))
	for i, e := range d.Edges {
		if !seen[e.Start] {
			return errors.New(errors.ErrCodeInvalidInput, "edge %d references unknown start %q", i, e.Start)
		}
		if !seen[e.End] {
			return errors.New(errors.ErrCodeInvalidInput, "edge %d references unknown end %q", i, e.End)
		}
		if e.ID == "" {
			continue
		}
		if edgeIDs[e.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate edge %q", e.ID)
		}
		edgeIDs[e.ID] = true
	}
	return nil
}
