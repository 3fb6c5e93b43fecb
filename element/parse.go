package element

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Parse reads an XML manifest document from r and returns its element
// tree. Comments, processing instructions, and directives are dropped;
// character data is preserved as Text nodes so mixed content survives
// in document order.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)

	var root *Element
	var stack []*Element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("element.Parse: document parsing failed: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{
				Name:  t.Name.Local,
				Space: t.Name.Space,
				Attrs: attrMap(t.Attr),
			}
			line, _ := dec.InputPos()
			el.Line = line
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("element.Parse: document parsing failed: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("element.Parse: document parsing failed: unbalanced end element %q", t.Name.Local)
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			data := string(t)
			if strings.TrimSpace(data) == "" {
				continue
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, Text{Data: data})
		}
	}

	if root == nil {
		return nil, fmt.Errorf("element.Parse: document parsing failed: no root element")
	}
	return &Document{Root: root}, nil
}

// attrMap converts decoder attributes to a local-name keyed map,
// dropping namespace declarations.
func attrMap(attrs []xml.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		m[a.Name.Local] = a.Value
	}
	return m
}
