package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Parse reads a single well-formed XML element from s. Character data is
// trimmed and kept only on elements without child elements.
func Parse(s string) (*Element, error) {
	dec := xml.NewDecoder(strings.NewReader(s))
	dec.Strict = true

	var (
		root  *Element
		stack []*Element
		text  []strings.Builder
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse fragment: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, fmt.Errorf("parse fragment: multiple root elements")
			}
			e := New(t.Name.Local)
			for _, a := range t.Attr {
				e.Attrs = append(e.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) > 0 {
				stack[len(stack)-1].Append(e)
			} else {
				root = e
			}
			stack = append(stack, e)
			text = append(text, strings.Builder{})
		case xml.EndElement:
			e := stack[len(stack)-1]
			if len(e.Children) == 0 {
				e.Text = strings.TrimSpace(text[len(text)-1].String())
			}
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, fmt.Errorf("parse fragment: text outside root element")
				}
				continue
			}
			text[len(text)-1].Write(t)
		}
	}

	if root == nil {
		return nil, fmt.Errorf("parse fragment: no element")
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("parse fragment: unclosed <%s>", stack[len(stack)-1].Name)
	}
	return root, nil
}

// Notes is free text split into an optional embedded markup fragment and
// paragraphs.
type Notes struct {
	// Markup holds the element children of an embedded <xml>…</xml>
	// fragment, to be attached to the owning element.
	Markup []*Element
	// Paragraphs is the remaining text split on blank lines.
	Paragraphs []string
	// MarkupErr is set when an embedded fragment was present but malformed;
	// the fragment then stays in the paragraph text.
	MarkupErr error
}

const (
	markupOpen  = "<xml>"
	markupClose = "</xml>"
)

// ParseNotes splits free-text notes. An embedded <xml>…</xml> fragment is
// parsed and removed from the text; on failure it is left in place and
// MarkupErr is set.
func ParseNotes(text string) Notes {
	var n Notes
	if begin := strings.Index(text, markupOpen); begin >= 0 {
		if end := strings.Index(text[begin:], markupClose); end >= 0 {
			snippet := text[begin : begin+end+len(markupClose)]
			frag, err := Parse(snippet)
			if err != nil {
				n.MarkupErr = err
			} else {
				n.Markup = frag.Children
				text = strings.Replace(text, snippet, "", 1)
			}
		} else {
			n.MarkupErr = fmt.Errorf("parse fragment: missing %s", markupClose)
		}
	}

	if strings.TrimSpace(text) == "" {
		return n
	}
	n.Paragraphs = strings.Split(text, "\n\n")
	return n
}

// AddNotes attaches notes text to parent: embedded markup children first,
// then a tag element holding one <para> per paragraph. Nothing is added for
// blank text. The returned error reports malformed markup only; the text has
// still been attached literally.
func AddNotes(parent *Element, tag, text string) error {
	if text == "" {
		return nil
	}
	n := ParseNotes(text)
	parent.Append(n.Markup...)
	if len(n.Paragraphs) > 0 {
		group := parent.Add(tag)
		for _, p := range n.Paragraphs {
			group.AddText("para", p)
		}
	}
	return n.MarkupErr
}
