// Package element provides the read-only element tree that manifest
// documents are parsed into before definition loading runs.
//
// # Overview
//
// A manifest document is hierarchical XML. Parse walks the token stream
// once and produces a Document whose Root is an Element tree: qualified
// name, namespace URI, attribute map, and ordered mixed children
// (elements and text). The reader package traverses this tree; nothing
// in the system mutates it after parsing.
//
// # Namespaces
//
// Elements record the namespace URI they were declared in. Membership
// decisions (default namespace vs. custom extension namespaces) are not
// made here; the reader's delegate owns that policy.
//
// # Usage
//
//	doc, err := element.Parse(file)
//	if err != nil {
//	    return err
//	}
//	for _, child := range doc.Root.ChildElements() {
//	    fmt.Println(child.Name, child.Attr("name"))
//	}
package element
