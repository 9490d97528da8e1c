// Package scraper builds a tree of trained extractors mirroring an
// item.Item's shape: a ValueScraper reads a single leaf string, a
// ListScraper repeats its inner scraper over every matching node on the
// page, and a DictScraper combines one scraper per key. Build constructs
// this tree from an already-sampled item.Item; Train searches for the
// matcher each leaf needs; Scrape/ScrapeMany apply the trained tree to a
// new page.
package scraper

import (
	"errors"
	"fmt"

	"scrapegen/dom"
	"scrapegen/extract"
	"scrapegen/item"
	"scrapegen/match"
	"scrapegen/synth"
)

// ErrUntrained is returned by Scrape/ScrapeMany operations that require a
// matcher that Train has not yet produced. ToDict does not fail on an
// untrained scraper; it reports "trained": false instead.
var ErrUntrained = errors.New("scraper has not been trained")

// ErrNoSamples is returned by Train when a ValueScraper was never given a
// sample to generalize from.
var ErrNoSamples = errors.New("scraper has no training samples")

// ErrAmbiguousMatch is returned by Scrape when a singular matcher yields
// more or fewer than exactly one value on the page (selected nodes the
// extractor cannot read are not counted).
var ErrAmbiguousMatch = errors.New("matcher did not select exactly one node")

// ErrNotLeafValued is returned when scraping multiple records requires
// node-level access that only a leaf-valued (ValueScraper) key can give;
// a dict nested inside a list may not itself nest further composite
// values in a key scraped this way.
var ErrNotLeafValued = errors.New("dict key is not leaf-valued")

// ErrNestedListsUnsupported mirrors item.ErrUnsupportedShape: a list may
// not contain another list.
var ErrNestedListsUnsupported = errors.New("nested lists are not supported")

// ErrUnequalKeyMatchCounts is returned when scraping multiple dict
// records and two keys' matchers selected different numbers of nodes on
// the page - the page does not have the uniform repeated shape the
// scraper was trained on.
var ErrUnequalKeyMatchCounts = errors.New("dict keys matched different numbers of nodes")

// ErrNoCommonAncestor is returned when grouping per-key matches into
// records runs out of unused candidates for some key.
var ErrNoCommonAncestor = errors.New("could not pair a matched node into any record")

// Scraper extracts an item.Value from a page, after training on samples
// of the shape it was built for.
type Scraper interface {
	// AddSample folds one more training sample into the scraper. The
	// sample's Value must match the shape the scraper was built for.
	AddSample(sample item.Sample) error
	// Train searches for the matcher(s) needed to reproduce every
	// training sample.
	Train(limits synth.Limits) error
	// Scrape extracts a single item.Value from page.
	Scrape(page *dom.Page) (item.Value, error)
	// ScrapeMany extracts every value of this scraper's shape that
	// repeats on page - the building block ListScraper uses for its
	// inner scraper.
	ScrapeMany(page *dom.Page) ([]item.Value, error)
	// ToDict renders the trained scraper as a plain, JSON-marshalable
	// value for persistence.
	ToDict() map[string]any
}

// Build constructs a Scraper whose shape mirrors it, seeded with it's
// own training samples. Call Train on the result before scraping.
func Build(it item.Item) (Scraper, error) {
	switch v := it.(type) {
	case *item.ValueItem:
		s := NewValueScraper()
		for _, sample := range v.Samples() {
			if err := s.AddSample(sample); err != nil {
				return nil, err
			}
		}
		return s, nil

	case *item.ListItem:
		inner, err := Build(v.Inner())
		if err != nil {
			return nil, err
		}
		return &ListScraper{inner: inner}, nil

	case *item.DictItem:
		keyOrder := append([]string(nil), v.KeyOrder()...)
		perKey := make(map[string]Scraper, len(keyOrder))
		itemsPerKey := v.ItemsPerKey()
		for _, k := range keyOrder {
			child, err := Build(itemsPerKey[k])
			if err != nil {
				return nil, fmt.Errorf("building key %q: %w", k, err)
			}
			perKey[k] = child
		}
		return &DictScraper{keyOrder: keyOrder, perKey: perKey}, nil

	default:
		return nil, fmt.Errorf("unsupported item type %T", it)
	}
}

// ValueScraper extracts a single leaf string via one trained (selector,
// extractor) matcher.
type ValueScraper struct {
	samples []item.Sample
	trained bool
	matcher synth.Matcher
}

// NewValueScraper returns an untrained ValueScraper with no samples.
func NewValueScraper() *ValueScraper {
	return &ValueScraper{}
}

func (s *ValueScraper) AddSample(sample item.Sample) error {
	if _, ok := sample.Value.(item.Leaf); !ok {
		return fmt.Errorf("%w: expected a leaf value, got %T", item.ErrItemStructure, sample.Value)
	}
	s.samples = append(s.samples, sample)
	return nil
}

// Train groups samples by page before searching for a matcher: a dict
// key nested inside a list contributes one flattened Leaf sample per
// list element, so a page with three list items yields three same-page
// samples here. Those must be trained together as one page-level
// candidate set of three nodes, because the eventual matcher has to
// select all three at once (DictScraper.ScrapeMany relies on that to
// pair records back up by common ancestor) - a selector accepted against
// each element's single-node candidate in isolation would reject on the
// very first page that repeats the key.
func (s *ValueScraper) Train(limits synth.Limits) error {
	if len(s.samples) == 0 {
		return ErrNoSamples
	}

	var pageOrder []*dom.Page
	valuesByPage := make(map[*dom.Page][]item.Leaf)
	for _, sample := range s.samples {
		leaf, ok := sample.Value.(item.Leaf)
		if !ok {
			return fmt.Errorf("%w: expected a leaf value, got %T", item.ErrItemStructure, sample.Value)
		}
		if _, seen := valuesByPage[sample.Page]; !seen {
			pageOrder = append(pageOrder, sample.Page)
		}
		valuesByPage[sample.Page] = append(valuesByPage[sample.Page], leaf)
	}

	synthSamples := make([]synth.Sample, 0, len(pageOrder))
	for _, page := range pageOrder {
		candidates, err := leafGroupCandidates(page, valuesByPage[page])
		if err != nil {
			return err
		}
		synthSamples = append(synthSamples, synth.Sample{Page: page, Candidates: candidates})
	}

	m, err := synth.MakeMatcherForSamples(synthSamples, limits)
	if err != nil {
		return err
	}
	s.matcher = m
	s.trained = true
	return nil
}

// leafGroupCandidates builds the legal Candidate set for every value this
// key contributed from a single page. A page that contributed this key
// only once reduces to a single-node candidate per match.FindString hit;
// a page that contributed it several times (one per list element) widens
// to the uniqueness-filtered combinations match.FindValue computes for
// the equivalent list-of-leaves value.
func leafGroupCandidates(page *dom.Page, values []item.Leaf) ([]synth.Candidate, error) {
	if len(values) == 1 {
		matches := match.FindString(page, string(values[0]))
		out := make([]synth.Candidate, len(matches))
		for i, m := range matches {
			out[i] = synth.Candidate{{Node: m.Node, Extractor: m.Extractor}}
		}
		return out, nil
	}

	list := make(item.List, len(values))
	for i, v := range values {
		list[i] = v
	}
	matches, err := match.FindValue(page, list)
	if err != nil {
		return nil, err
	}
	out := make([]synth.Candidate, 0, len(matches))
	for _, m := range matches {
		lm, ok := m.(match.ListMatch)
		if !ok {
			continue
		}
		cand := make(synth.Candidate, 0, len(lm.Matches))
		for _, sub := range lm.Matches {
			vm, ok := sub.(match.ValueMatch)
			if !ok {
				return nil, fmt.Errorf("training a repeated value produced an unexpected nested match")
			}
			cand = append(cand, synth.NodeExtractor{Node: vm.Node, Extractor: vm.Extractor})
		}
		out = append(out, cand)
	}
	return out, nil
}

func (s *ValueScraper) Scrape(page *dom.Page) (item.Value, error) {
	if !s.trained {
		return nil, ErrUntrained
	}
	values, err := s.matcher.Apply(page)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: got %d", ErrAmbiguousMatch, len(values))
	}
	return item.Leaf(values[0]), nil
}

func (s *ValueScraper) ScrapeMany(page *dom.Page) ([]item.Value, error) {
	if !s.trained {
		return nil, ErrUntrained
	}
	values, err := s.matcher.Apply(page)
	if err != nil {
		return nil, err
	}
	out := make([]item.Value, len(values))
	for i, v := range values {
		out[i] = item.Leaf(v)
	}
	return out, nil
}

// matchedNodes exposes the raw (nodes, extractor) behind the trained
// matcher, for DictScraper.ScrapeMany's common-ancestor grouping.
func (s *ValueScraper) matchedNodes(page *dom.Page) ([]dom.Node, extract.Extractor, error) {
	if !s.trained {
		return nil, nil, ErrUntrained
	}
	nodes, err := page.Select(s.matcher.Selector)
	if err != nil {
		return nil, nil, err
	}
	return nodes, s.matcher.Extractor, nil
}

func (s *ValueScraper) ToDict() map[string]any {
	if !s.trained {
		return map[string]any{"type": "value", "trained": false}
	}
	return map[string]any{
		"type":     "value",
		"selector": s.matcher.Selector,
		"extractor": map[string]any{
			"kind":  s.matcher.Extractor.Kind(),
			"param": s.matcher.Extractor.Param(),
		},
	}
}

// ListScraper scrapes its inner scraper's shape once per matching node
// on the page, in document order.
type ListScraper struct {
	inner Scraper
}

func (s *ListScraper) AddSample(sample item.Sample) error {
	list, ok := sample.Value.(item.List)
	if !ok {
		return fmt.Errorf("%w: expected a list value, got %T", item.ErrItemStructure, sample.Value)
	}
	for _, elem := range list {
		if err := s.inner.AddSample(item.Sample{Page: sample.Page, Value: elem}); err != nil {
			return err
		}
	}
	return nil
}

func (s *ListScraper) Train(limits synth.Limits) error {
	return s.inner.Train(limits)
}

func (s *ListScraper) Scrape(page *dom.Page) (item.Value, error) {
	values, err := s.inner.ScrapeMany(page)
	if err != nil {
		return nil, err
	}
	return item.List(values), nil
}

func (s *ListScraper) ScrapeMany(page *dom.Page) ([]item.Value, error) {
	return nil, ErrNestedListsUnsupported
}

func (s *ListScraper) ToDict() map[string]any {
	return map[string]any{"type": "list", "inner": s.inner.ToDict()}
}

// DictScraper combines one scraper per key into a single dict value.
type DictScraper struct {
	keyOrder []string
	perKey   map[string]Scraper
}

func (s *DictScraper) AddSample(sample item.Sample) error {
	d, ok := sample.Value.(item.Dict)
	if !ok {
		return fmt.Errorf("%w: expected a dict value, got %T", item.ErrItemStructure, sample.Value)
	}
	for _, k := range s.keyOrder {
		v, ok := d[k]
		if !ok {
			return fmt.Errorf("%w: sample is missing key %q", item.ErrItemStructure, k)
		}
		if err := s.perKey[k].AddSample(item.Sample{Page: sample.Page, Value: v}); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
	}
	return nil
}

func (s *DictScraper) Train(limits synth.Limits) error {
	for _, k := range s.keyOrder {
		if err := s.perKey[k].Train(limits); err != nil {
			return fmt.Errorf("training key %q: %w", k, err)
		}
	}
	return nil
}

func (s *DictScraper) Scrape(page *dom.Page) (item.Value, error) {
	d := make(item.Dict, len(s.keyOrder))
	for _, k := range s.keyOrder {
		v, err := s.perKey[k].Scrape(page)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		d[k] = v
	}
	return d, nil
}

// ScrapeMany extracts every record of this dict's shape that repeats on
// page. Every key must be leaf-valued (a ValueScraper): the matched nodes
// for each key are paired into records by walking the first key's nodes
// in document order and greedily pairing each with the unclaimed node
// from every other key that shares the deepest common ancestor with it.
func (s *DictScraper) ScrapeMany(page *dom.Page) ([]item.Value, error) {
	nodesByKey := make(map[string][]dom.Node, len(s.keyOrder))
	extractorByKey := make(map[string]extract.Extractor, len(s.keyOrder))
	for _, k := range s.keyOrder {
		vs, ok := s.perKey[k].(*ValueScraper)
		if !ok {
			return nil, fmt.Errorf("key %q: %w", k, ErrNotLeafValued)
		}
		nodes, ext, err := vs.matchedNodes(page)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		nodesByKey[k] = nodes
		extractorByKey[k] = ext
	}

	records, err := groupIntoRecords(s.keyOrder, nodesByKey)
	if err != nil {
		return nil, err
	}

	out := make([]item.Value, len(records))
	for i, rec := range records {
		d := make(item.Dict, len(s.keyOrder))
		for _, k := range s.keyOrder {
			v, ok := extractorByKey[k].Extract(rec[k])
			if !ok {
				return nil, fmt.Errorf("key %q: node no longer yields a value", k)
			}
			d[k] = item.Leaf(v)
		}
		out[i] = d
	}
	return out, nil
}

func (s *DictScraper) ToDict() map[string]any {
	keys := make(map[string]any, len(s.keyOrder))
	for _, k := range s.keyOrder {
		keys[k] = s.perKey[k].ToDict()
	}
	return map[string]any{
		"type":      "dict",
		"key_order": append([]string(nil), s.keyOrder...),
		"keys":      keys,
	}
}

// groupIntoRecords pairs each key's matched nodes into records: it walks
// the first key's nodes in document order, and for every other key picks
// the unclaimed node with the greatest common-ancestor depth, removing it
// so it cannot be reused by a later record.
func groupIntoRecords(keyOrder []string, nodesByKey map[string][]dom.Node) ([]map[string]dom.Node, error) {
	n := -1
	for _, k := range keyOrder {
		if n == -1 {
			n = len(nodesByKey[k])
			continue
		}
		if len(nodesByKey[k]) != n {
			return nil, ErrUnequalKeyMatchCounts
		}
	}
	if n <= 0 {
		return nil, nil
	}

	pivot := keyOrder[0]
	remaining := make(map[string][]dom.Node, len(keyOrder))
	for _, k := range keyOrder[1:] {
		remaining[k] = append([]dom.Node(nil), nodesByKey[k]...)
	}

	records := make([]map[string]dom.Node, n)
	for i, pivotNode := range nodesByKey[pivot] {
		rec := map[string]dom.Node{pivot: pivotNode}
		for _, k := range keyOrder[1:] {
			cands := remaining[k]
			bestIdx, bestDepth := -1, -1
			for idx, cand := range cands {
				d := commonAncestorDepth(pivotNode, cand)
				if d > bestDepth {
					bestDepth, bestIdx = d, idx
				}
			}
			if bestIdx < 0 {
				return nil, ErrNoCommonAncestor
			}
			rec[k] = cands[bestIdx]
			remaining[k] = append(cands[:bestIdx:bestIdx], cands[bestIdx+1:]...)
		}
		records[i] = rec
	}
	return records, nil
}

// commonAncestorDepth returns the number of shared leading ancestors
// between a and b, walking both root-to-node chains in lockstep.
func commonAncestorDepth(a, b dom.Node) int {
	pa, pb := rootPath(a), rootPath(b)
	depth := 0
	for depth < len(pa) && depth < len(pb) && pa[depth].Equal(pb[depth]) {
		depth++
	}
	return depth
}

// rootPath returns n's ancestors from the document root down to (but not
// including) n itself.
func rootPath(n dom.Node) []dom.Node {
	ancestors := n.Ancestors()
	out := make([]dom.Node, len(ancestors))
	for i, a := range ancestors {
		out[len(ancestors)-1-i] = a
	}
	return out
}
