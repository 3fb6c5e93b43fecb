package element

import "strings"

// Node is one entry in an element's ordered child list.
// Only Element and Text implement it; processing instructions and
// comments are dropped during parsing.
type Node interface {
	isNode()
}

// Text is character data appearing between elements.
type Text struct {
	Data string
}

func (Text) isNode() {}

// Element is a single node in a parsed manifest document. The core
// traversal treats elements as read-only: attributes and children are
// populated once by the parser and never mutated afterwards.
type Element struct {
	// Name is the local (unprefixed) element name.
	Name string

	// Space is the namespace URI the element was declared in. An empty
	// string means the document carried no namespace declaration.
	Space string

	// Attrs maps attribute local names to their string values.
	// Namespace declarations (xmlns) are not included.
	Attrs map[string]string

	// Children holds the ordered mixed content of the element.
	Children []Node

	// Line is the approximate source line, for problem reports.
	Line int
}

func (*Element) isNode() {}

// Attr returns the value of the named attribute, or "" when absent.
func (e *Element) Attr(name string) string {
	return e.Attrs[name]
}

// HasAttr reports whether the named attribute is present, even if empty.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attrs[name]
	return ok
}

// ChildElements returns the direct element children in document order,
// skipping text nodes.
func (e *Element) ChildElements() []*Element {
	var out []*Element
	for _, n := range e.Children {
		if el, ok := n.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// ChildText returns the concatenated trimmed character data of the first
// direct child element with the given local name, or "" when no such
// child exists.
func (e *Element) ChildText(name string) string {
	for _, child := range e.ChildElements() {
		if child.Name == name {
			return child.Text()
		}
	}
	return ""
}

// Text returns the concatenated character data directly under the
// element, trimmed of surrounding whitespace.
func (e *Element) Text() string {
	var b strings.Builder
	for _, n := range e.Children {
		if t, ok := n.(Text); ok {
			b.WriteString(t.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

// Document is a parsed manifest document.
type Document struct {
	Root *Element
}
