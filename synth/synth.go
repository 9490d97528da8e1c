// Package synth searches the selector space selectgen enumerates for one
// selector that generalizes across every training sample: applied to
// each sample's page, it must select exactly the node set of one legal
// match combination for that sample, and that combination's extractors
// must collapse to a single extractor shared across every sample.
package synth

import (
	"errors"

	"scrapegen/dom"
	"scrapegen/extract"
	"scrapegen/selectgen"
)

// Limits bounds the selector search: how many classes a descriptor may
// combine, and how many ancestors a path selector may anchor on. It is
// the one configuration surface this module exposes.
type Limits struct {
	ClassCombinationsMax int
	ParentNodeCountMax   int
}

// DefaultLimits returns the limits used when a caller supplies none.
func DefaultLimits() Limits {
	return Limits{ClassCombinationsMax: 2, ParentNodeCountMax: 2}
}

func (l Limits) toSelectgen() selectgen.Limits {
	return selectgen.Limits{ClassCombinationsMax: l.ClassCombinationsMax, ParentNodeCountMax: l.ParentNodeCountMax}
}

// ErrNoMatches is returned when a sample has no legal candidates at all -
// there is nothing for any selector to generalize to.
var ErrNoMatches = errors.New("no legal match candidates for a training sample")

// ErrNoSelector is returned when no generated selector satisfies the
// acceptance test across every sample.
var ErrNoSelector = errors.New("no selector generalizes across all training samples")

// NodeExtractor is one (node, extractor) pair that reproduces part of a
// sample's value.
type NodeExtractor struct {
	Node      dom.Node
	Extractor extract.Extractor
}

// Candidate is one legal way of realizing a sample's value on its page:
// for a single leaf value, exactly one NodeExtractor; for a value scraped
// across several nodes at once (e.g. every item in a list), one
// NodeExtractor per node.
type Candidate []NodeExtractor

func (c Candidate) nodeSet() map[dom.Node]bool {
	set := make(map[dom.Node]bool, len(c))
	for _, ne := range c {
		set[ne.Node] = true
	}
	return set
}

// collapsedExtractor returns c's single distinct extractor and true, or
// (nil, false) if c mixes more than one.
func (c Candidate) collapsedExtractor() (extract.Extractor, bool) {
	if len(c) == 0 {
		return nil, false
	}
	first := c[0].Extractor
	for _, ne := range c[1:] {
		if ne.Extractor != first {
			return nil, false
		}
	}
	return first, true
}

// Sample pairs a training page with every legal Candidate that
// reproduces its sample value there.
type Sample struct {
	Page       *dom.Page
	Candidates []Candidate
}

// Matcher is a trained (selector, extractor) pair: evaluating Selector
// against a page and extracting every matched node with Extractor
// reproduces the training value there, and is expected to generalize to
// unseen pages of the same shape.
type Matcher struct {
	Selector  string
	Extractor extract.Extractor
}

// Apply evaluates m against page, extracting every matched node in
// document order. Nodes the extractor cannot read (e.g. a missing
// attribute) are silently skipped, matching scrape-time semantics: a
// matcher describes how to read values that are present, not a guarantee
// every matched node carries one.
func (m Matcher) Apply(page *dom.Page) ([]string, error) {
	nodes, err := page.Select(m.Selector)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if v, ok := m.Extractor.Extract(n); ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// MakeMatcherForSamples searches for the first selector - generated from
// a node mentioned in any sample's candidates (samples in order, each
// sample's nodes in first-appearance order), per-node descriptors before
// path selectors, in selectgen's enumeration order - whose node-set
// matches a legal candidate on every sample with a single extractor
// shared across all of them.
func MakeMatcherForSamples(samples []Sample, limits Limits) (Matcher, error) {
	if len(samples) == 0 {
		return Matcher{}, ErrNoMatches
	}
	for _, s := range samples {
		if len(s.Candidates) == 0 {
			return Matcher{}, ErrNoMatches
		}
	}

	sgLimits := limits.toSelectgen()
	for _, seedSample := range samples {
		for _, seedNode := range seedNodes(seedSample) {
			nodeSeq, err := selectgen.NodeSelectors(seedNode, sgLimits)
			if err == nil {
				if m, ok := acceptFirst(nodeSeq, samples); ok {
					return m, nil
				}
			}
			pathSeq, err := selectgen.PathSelectors(seedNode, sgLimits)
			if err == nil {
				if m, ok := acceptFirst(pathSeq, samples); ok {
					return m, nil
				}
			}
		}
	}
	return Matcher{}, ErrNoSelector
}

// seedNodes returns every distinct node appearing in s's candidates, in
// the order they first appear.
func seedNodes(s Sample) []dom.Node {
	var out []dom.Node
	seen := make(map[dom.Node]bool)
	for _, c := range s.Candidates {
		for _, ne := range c {
			if !seen[ne.Node] {
				seen[ne.Node] = true
				out = append(out, ne.Node)
			}
		}
	}
	return out
}

func acceptFirst(selectors func(func(string) bool), samples []Sample) (Matcher, bool) {
	var accepted Matcher
	ok := false
	selectors(func(sel string) bool {
		ext, good := acceptableAcrossSamples(sel, samples)
		if good {
			accepted = Matcher{Selector: sel, Extractor: ext}
			ok = true
			return false
		}
		return true
	})
	return accepted, ok
}

// acceptableAcrossSamples reports whether sel, evaluated against every
// sample's page, selects exactly the node set of one legal candidate
// there, with a single extractor shared across all of them.
func acceptableAcrossSamples(sel string, samples []Sample) (extract.Extractor, bool) {
	var shared extract.Extractor
	for i, s := range samples {
		nodes, err := s.Page.Select(sel)
		if err != nil {
			return nil, false
		}
		selected := make(map[dom.Node]bool, len(nodes))
		for _, n := range nodes {
			selected[n] = true
		}

		matched := false
		for _, c := range s.Candidates {
			if !sameNodeSet(c.nodeSet(), selected) {
				continue
			}
			ext, ok := c.collapsedExtractor()
			if !ok {
				continue
			}
			if i == 0 {
				shared = ext
				matched = true
				break
			}
			if ext == shared {
				matched = true
				break
			}
		}
		if !matched {
			return nil, false
		}
	}
	return shared, true
}

func sameNodeSet(a map[dom.Node]bool, b map[dom.Node]bool) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	for n := range a {
		if !b[n] {
			return false
		}
	}
	return true
}
