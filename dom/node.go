// Package dom wraps a parsed HTML tree behind a uniform node interface:
// tag name, attribute map, text, child/parent/ancestor traversal, and
// selector evaluation. It is the one place in the module that imports an
// HTML parser or a CSS-selector engine; everything above it only sees
// Page and Node.
package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// documentTag is the synthetic tag name reported for the parse tree's root
// document node, which has no element of its own.
const documentTag = "[document]"

// Node is a handle into a Page's DOM. Two Node values compare equal with
// == iff they reference the same underlying DOM element, because Node
// wraps the parser's *html.Node pointer directly rather than a copy.
type Node struct {
	n *html.Node
}

// wrap builds a Node from a parser node. A nil raw node wraps to the zero
// Node, whose methods all report absence.
func wrap(n *html.Node) Node {
	return Node{n: n}
}

// Raw returns the underlying parser node, for use by the dom package's own
// Select implementation and by tests. Other packages should not need it.
func (n Node) Raw() *html.Node {
	return n.n
}

// IsZero reports whether n wraps no element.
func (n Node) IsZero() bool {
	return n.n == nil
}

// IsElement reports whether n is an actual HTML element, as opposed to a
// text node or the synthetic document root.
func (n Node) IsElement() bool {
	return n.n != nil && n.n.Type == html.ElementNode
}

// IsText reports whether n is a text node.
func (n Node) IsText() bool {
	return n.n != nil && n.n.Type == html.TextNode
}

// Tag returns the element's tag name and true, or ("", false) for a text
// node. The synthetic document root reports "[document]".
func (n Node) Tag() (string, bool) {
	if n.n == nil {
		return "", false
	}
	switch n.n.Type {
	case html.ElementNode:
		return n.n.Data, true
	case html.DocumentNode:
		return documentTag, true
	default:
		return "", false
	}
}

// Attrs returns the element's attributes. The "class" attribute's value is
// a []string of whitespace-separated tokens, in source order; every other
// attribute's value is a string. Non-element nodes return an empty map.
func (n Node) Attrs() map[string]any {
	attrs := make(map[string]any)
	if n.n == nil || n.n.Type != html.ElementNode {
		return attrs
	}
	for _, a := range n.n.Attr {
		if a.Key == "class" {
			attrs[a.Key] = strings.Fields(a.Val)
		} else {
			attrs[a.Key] = a.Val
		}
	}
	return attrs
}

// Attr returns a single attribute's raw string value, exactly as written in
// the source (the class attribute is not split or normalized), and whether
// it was present.
func (n Node) Attr(name string) (string, bool) {
	if n.n == nil || n.n.Type != html.ElementNode {
		return "", false
	}
	for _, a := range n.n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Classes returns the node's class list in source order, or nil if it has
// none.
func (n Node) Classes() []string {
	if n.n == nil || n.n.Type != html.ElementNode {
		return nil
	}
	for _, a := range n.n.Attr {
		if a.Key == "class" {
			return strings.Fields(a.Val)
		}
	}
	return nil
}

// Children returns all direct children, including non-element children,
// in document order.
func (n Node) Children() []Node {
	if n.n == nil {
		return nil
	}
	var children []Node
	for c := n.n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, wrap(c))
	}
	return children
}

// ElementChildren returns only the element children, in document order.
func (n Node) ElementChildren() []Node {
	var out []Node
	for _, c := range n.Children() {
		if c.IsElement() {
			out = append(out, c)
		}
	}
	return out
}

// Parent returns the parent node and true, or the zero Node and false at
// the document root.
func (n Node) Parent() (Node, bool) {
	if n.n == nil || n.n.Parent == nil {
		return Node{}, false
	}
	return wrap(n.n.Parent), true
}

// Ancestors returns parent, grandparent, ... up to (and including) the
// document root, nearest first.
func (n Node) Ancestors() []Node {
	var out []Node
	cur := n
	for {
		p, ok := cur.Parent()
		if !ok {
			return out
		}
		out = append(out, p)
		cur = p
	}
}

// Text returns the concatenation of all descendant text in document order.
func (n Node) Text() string {
	if n.n == nil {
		return ""
	}
	var sb strings.Builder
	collectText(n.n, &sb)
	return sb.String()
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// Equal reports whether two nodes reference the same DOM element. Node
// values are also directly comparable with ==; Equal exists for callers
// that prefer a method.
func (n Node) Equal(other Node) bool {
	return n.n == other.n
}
