package dom

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Page is a parsed HTML document. It is immutable after construction.
type Page struct {
	root *html.Node

	mu       sync.Mutex
	compiled map[string]cascadia.Selector
}

// NewPage parses r as HTML and returns the resulting Page.
func NewPage(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("parsing HTML: empty document")
	}
	return &Page{root: doc.Nodes[0], compiled: make(map[string]cascadia.Selector)}, nil
}

// NewPageFromString parses s as HTML and returns the resulting Page.
func NewPageFromString(s string) (*Page, error) {
	return NewPage(strings.NewReader(s))
}

// Root returns the document's root node.
func (p *Page) Root() Node {
	return wrap(p.root)
}

// Select evaluates a CSS selector against the whole page, returning nodes
// in document order.
func (p *Page) Select(cssRule string) ([]Node, error) {
	sel, err := p.compile(cssRule)
	if err != nil {
		return nil, err
	}
	raw := sel.MatchAll(p.root)
	out := make([]Node, len(raw))
	for i, n := range raw {
		out[i] = wrap(n)
	}
	return out, nil
}

func (p *Page) compile(cssRule string) (cascadia.Selector, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sel, ok := p.compiled[cssRule]; ok {
		return sel, nil
	}
	sel, err := cascadia.Compile(cssRule)
	if err != nil {
		return nil, fmt.Errorf("compiling selector %q: %w", cssRule, err)
	}
	p.compiled[cssRule] = sel
	return sel, nil
}

// AllElements returns every element node on the page in document order.
// It is a convenience used by the match finder, equivalent to Select("*").
func (p *Page) AllElements() []Node {
	nodes, err := p.Select("*")
	if err != nil {
		// "*" always compiles; a failure here would be a cascadia bug.
		panic(err)
	}
	return nodes
}

// AllTextNodes returns every text node on the page in document order. The
// CSS selector engine only ever matches elements, so the match finder
// needs this separate tree walk to find text-node occurrences of a
// sample string.
func (p *Page) AllTextNodes() []Node {
	var out []Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			out = append(out, wrap(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(p.root)
	return out
}
