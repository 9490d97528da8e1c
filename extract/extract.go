// Package extract provides pure functions from a dom.Node to the string
// value a scraper should record for it: the node's text, or one of its
// attributes. Extractors are value-equal and interned so that set-
// membership tests across matches collapse to cheap handle equality.
package extract

import (
	"sync"

	"scrapegen/dom"
)

// Extractor extracts a string value from a node. Implementations must be
// comparable with == (interning relies on it).
type Extractor interface {
	// Extract returns the node's value and whether it was present.
	Extract(n dom.Node) (string, bool)

	// Kind names the extractor's family ("text" or "attr"), used for
	// persistence (scraper.ToDict) and deterministic ordering.
	Kind() string

	// Param is the extractor's parameter (the attribute name, or "" for
	// Text), used the same way as Kind.
	Param() string
}

// textExtractor extracts a node's concatenated descendant text.
type textExtractor struct{}

func (textExtractor) Extract(n dom.Node) (string, bool) { return n.Text(), true }
func (textExtractor) Kind() string                      { return "text" }
func (textExtractor) Param() string                     { return "" }

// attrExtractor extracts a single named attribute.
type attrExtractor struct {
	name string
}

func (a attrExtractor) Extract(n dom.Node) (string, bool) { return n.Attr(a.name) }
func (attrExtractor) Kind() string                        { return "attr" }
func (a attrExtractor) Param() string                     { return a.name }

var (
	mu     sync.Mutex
	text   Extractor
	byAttr = make(map[string]Extractor)
)

// Text returns the interned text extractor. Every call returns the same
// handle.
func Text() Extractor {
	mu.Lock()
	defer mu.Unlock()
	if text == nil {
		text = textExtractor{}
	}
	return text
}

// Attr returns the interned extractor for the given attribute name. Every
// call with the same name returns the same handle.
func Attr(name string) Extractor {
	mu.Lock()
	defer mu.Unlock()
	if e, ok := byAttr[name]; ok {
		return e
	}
	e := attrExtractor{name: name}
	byAttr[name] = e
	return e
}
