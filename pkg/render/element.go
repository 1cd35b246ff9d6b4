package render

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"
)

// Element is a node of the visual container tree. Drawers append children
// and set attributes; sinks serialize the tree. All methods are safe for
// concurrent use.
type Element struct {
	Tag   string
	ID    string
	Class string

	mu       sync.Mutex
	text     string
	attrs    map[string]string
	children []*Element
}

// NewElement creates a detached element.
func NewElement(tag string) *Element {
	return &Element{Tag: tag, attrs: make(map[string]string)}
}

// Append adds a child element and returns it.
func (e *Element) Append(tag string) *Element {
	c := NewElement(tag)
	e.mu.Lock()
	e.children = append(e.children, c)
	e.mu.Unlock()
	return c
}

// Group appends a <g> element with the given class.
func (e *Element) Group(class string) *Element {
	g := e.Append("g")
	g.Class = class
	return g
}

// SetAttr sets an attribute.
func (e *Element) SetAttr(key, value string) {
	e.mu.Lock()
	e.attrs[key] = value
	e.mu.Unlock()
}

// SetAttrf sets an attribute from a format string.
func (e *Element) SetAttrf(key, format string, args ...any) {
	e.SetAttr(key, fmt.Sprintf(format, args...))
}

// Attr returns an attribute value.
func (e *Element) Attr(key string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.attrs[key]
	return v, ok
}

// Attrs returns a copy of the attributes.
func (e *Element) Attrs() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return maps.Clone(e.attrs)
}

// SetText sets the character data of the element.
func (e *Element) SetText(s string) {
	e.mu.Lock()
	e.text = s
	e.mu.Unlock()
}

// Text returns the character data of the element.
func (e *Element) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

// Children returns a snapshot of the child elements in insertion order.
func (e *Element) Children() []*Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.children)
}

// Find returns the first element in depth-first order with the given id.
func (e *Element) Find(id string) *Element {
	if e.ID == id {
		return e
	}
	for _, c := range e.Children() {
		if f := c.Find(id); f != nil {
			return f
		}
	}
	return nil
}

// FindClass returns every element below e, e included, with the given class.
func (e *Element) FindClass(class string) []*Element {
	var out []*Element
	if e.Class == class {
		out = append(out, e)
	}
	for _, c := range e.Children() {
		out = append(out, c.FindClass(class)...)
	}
	return out
}

// translate formats an SVG translate transform.
func translate(x, y float64) string {
	return "translate(" + num(x) + "," + num(y) + ")"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
