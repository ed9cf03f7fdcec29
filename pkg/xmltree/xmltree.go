// Package xmltree builds small XML element trees and renders them.
//
// Export documents are assembled incrementally: a section element is
// created early (e.g. gas definitions) and children are appended to it as
// dives are processed. Attribute and child order is preserved exactly, so
// rendering the same tree twice yields identical bytes.
//
// Elements hold either text or children, never interleaved character data;
// that is all the dive-log schemas need.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// Attr is a single attribute.
type Attr struct {
	Name  string
	Value string
}

// Field is a (tag, value) pair appended as a text-only child.
type Field struct {
	Tag   string
	Value any
}

// Element is a node of the tree.
type Element struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Element
}

// New creates a detached element.
func New(name string, attrs ...Attr) *Element {
	return &Element{Name: name, Attrs: attrs}
}

// Add appends an empty child element and returns it.
func (e *Element) Add(name string, attrs ...Attr) *Element {
	child := New(name, attrs...)
	e.Children = append(e.Children, child)
	return child
}

// AddText appends a child holding text and returns it.
func (e *Element) AddText(name string, v any) *Element {
	child := e.Add(name)
	child.Text = Format(v)
	return child
}

// AddFields appends one text child per field, in order, and returns e.
func (e *Element) AddFields(fields ...Field) *Element {
	for _, f := range fields {
		e.AddText(f.Tag, f.Value)
	}
	return e
}

// Append adopts existing elements as children.
func (e *Element) Append(children ...*Element) {
	e.Children = append(e.Children, children...)
}

// SetAttr sets or replaces an attribute and returns e.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// Attr returns the value of an attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Find returns the direct children named name.
func (e *Element) Find(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// First returns the first direct child named name, or nil.
func (e *Element) First(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Walk visits e and its descendants depth-first, in document order.
func (e *Element) Walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// Format renders a value as element text. Floats are rounded to 12
// significant digits and use the shortest decimal representation without
// exponent, so 19.4+273.15 renders as 292.55; nil renders as an empty string.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatFloat(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// formatFloat drops the binary rounding noise conversions leave behind.
func formatFloat(x float64) string {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'g', floatDigits, 64), 64)
	if err != nil {
		r = x
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

const floatDigits = 12

// =============================================================================
// Rendering
// =============================================================================

const declaration = `<?xml version="1.0" encoding="UTF-8"?>`

// Render writes root as a standalone XML document.
func Render(w io.Writer, root *Element, pretty bool) error {
	header := declaration
	if pretty {
		header += "\n"
	}
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	enc := xml.NewEncoder(w)
	if pretty {
		enc.Indent("", "  ")
	}
	if err := encode(enc, root); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if pretty {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

// Bytes renders root into a byte slice.
func Bytes(root *Element, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, root, pretty); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(enc *xml.Encoder, e *Element) error {
	start := xml.StartElement{Name: xml.Name{Local: e.Name}}
	for _, a := range e.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return fmt.Errorf("encode <%s>: %w", e.Name, err)
	}
	if e.Text != "" {
		if err := enc.EncodeToken(xml.CharData(e.Text)); err != nil {
			return fmt.Errorf("encode <%s> text: %w", e.Name, err)
		}
	}
	for _, c := range e.Children {
		if err := encode(enc, c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// Document is one complete export document.
type Document struct {
	// Seq is the 1-based position of the document in its run.
	Seq int
	// Dives is the number of dives the document holds.
	Dives int
	Root  *Element
}

// Render writes the document.
func (d *Document) Render(w io.Writer, pretty bool) error {
	return Render(w, d.Root, pretty)
}
