package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Diagram Serialization API
// =============================================================================

// ReadDiagram decodes a JSON diagram from an io.Reader.
// Use ReadDiagramFile for files or pass bytes.NewReader for in-memory data.
// The result is not validated; call [Diagram.Validate].
func ReadDiagram(r io.Reader) (*Diagram, error) {
	var d Diagram
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &d, nil
}

// ReadDiagramFile reads a JSON diagram file.
func ReadDiagramFile(path string) (*Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDiagram(f)
}

// MarshalDiagram converts a diagram to indented JSON bytes.
func MarshalDiagram(d *Diagram) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout converts a layout to indented JSON bytes.
func MarshalLayout(l *Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(l, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalLayout decodes a layout from JSON bytes.
func UnmarshalLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	return &l, nil
}

// WriteLayout writes a layout as indented JSON to an io.Writer.
func WriteLayout(l *Layout, w io.Writer) error {
	return writeJSON(l, w)
}

// WriteLayoutFile writes a layout to a JSON file.
// The file is created with 0644 permissions.
func WriteLayoutFile(l *Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeJSON(l, f)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
