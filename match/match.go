// Package match enumerates every place a sample's expected value could
// have come from on its source page: for a leaf string, every (node,
// extractor) pair that reproduces it; for a list or dict, the Cartesian
// product of its elements' matches, composed into ListMatch/DictMatch.
package match

import (
	"fmt"
	"sort"

	"scrapegen/dom"
	"scrapegen/extract"
	"scrapegen/item"
)

// Match is a sum type mirroring item.Value: ValueMatch for a Leaf,
// ListMatch for a List, DictMatch for a Dict.
type Match interface {
	isMatch()
}

// ValueMatch records that applying Extractor to Node yields the sample's
// leaf string.
type ValueMatch struct {
	Node      dom.Node
	Extractor extract.Extractor
}

func (ValueMatch) isMatch() {}

// ListMatch is an ordered sequence of per-element matches, one per
// position in the sampled list, with no two positions sharing a node.
type ListMatch struct {
	Matches []Match
}

func (ListMatch) isMatch() {}

// DictMatch is a per-key set of matches. Two keys may legitimately share a
// node via different extractors, so no uniqueness filter applies here.
type DictMatch struct {
	MatchByKey map[string]Match
}

func (DictMatch) isMatch() {}

// FindString enumerates every (node, extractor) pair on page whose
// extractor, applied to the node, yields s. Enumeration order is document
// order for nodes, Text before Attr (attribute names in lexicographic
// order) for extractors.
func FindString(page *dom.Page, s string) []ValueMatch {
	var out []ValueMatch

	for _, tn := range page.AllTextNodes() {
		if tn.Text() != s {
			continue
		}
		parent, ok := tn.Parent()
		if !ok {
			continue
		}
		out = append(out, ValueMatch{Node: parent, Extractor: extract.Text()})
	}

	for _, el := range page.AllElements() {
		attrs := el.Attrs()
		names := make([]string, 0, len(attrs))
		for name, v := range attrs {
			if _, isString := v.(string); isString {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			val, _ := attrs[name].(string)
			if val == s {
				out = append(out, ValueMatch{Node: el, Extractor: extract.Attr(name)})
			}
		}
	}

	return out
}

// FindValue enumerates every match of a sample value (leaf, list, or
// dict) on page, recursing per item.Value's shape. List enumeration
// filters out combinations that reuse a node across positions; dict
// enumeration does not filter across keys.
func FindValue(page *dom.Page, v item.Value) ([]Match, error) {
	switch x := v.(type) {
	case item.Leaf:
		matches := FindString(page, string(x))
		out := make([]Match, len(matches))
		for i, m := range matches {
			out[i] = m
		}
		return out, nil

	case item.List:
		if len(x) == 0 {
			return nil, fmt.Errorf("empty list has no matches")
		}
		perPosition := make([][]Match, len(x))
		for i, elem := range x {
			m, err := FindValue(page, elem)
			if err != nil {
				return nil, err
			}
			perPosition[i] = m
		}
		var combos []Match
		cartesian(perPosition, nil, func(combo []Match) {
			if !usesDistinctNodes(combo) {
				return
			}
			cp := make([]Match, len(combo))
			copy(cp, combo)
			combos = append(combos, ListMatch{Matches: cp})
		})
		return combos, nil

	case item.Dict:
		keys := sortedKeys(x)
		perKey := make([][]Match, len(keys))
		for i, k := range keys {
			m, err := FindValue(page, x[k])
			if err != nil {
				return nil, err
			}
			perKey[i] = m
		}
		var combos []Match
		cartesian(perKey, nil, func(combo []Match) {
			byKey := make(map[string]Match, len(keys))
			for i, k := range keys {
				byKey[k] = combo[i]
			}
			combos = append(combos, DictMatch{MatchByKey: byKey})
		})
		return combos, nil

	default:
		return nil, fmt.Errorf("unsupported value: %T", v)
	}
}

// cartesian calls emit once per element of the Cartesian product of
// lists, in lists' given order (document order propagates naturally
// since each list is already document-ordered).
func cartesian(lists [][]Match, prefix []Match, emit func([]Match)) {
	if len(lists) == 0 {
		emit(prefix)
		return
	}
	for _, m := range lists[0] {
		cartesian(lists[1:], append(prefix, m), emit)
	}
}

// usesDistinctNodes reports whether combo's ValueMatch leaves all have
// distinct underlying nodes. Composite (List/Dict) entries are compared
// by their own leaf-node sets.
func usesDistinctNodes(combo []Match) bool {
	seen := make(map[dom.Node]bool)
	ok := true
	for _, m := range combo {
		for _, n := range leafNodes(m) {
			if seen[n] {
				ok = false
			}
			seen[n] = true
		}
	}
	return ok
}

// leafNodes returns every ValueMatch node reachable from m.
func leafNodes(m Match) []dom.Node {
	switch x := m.(type) {
	case ValueMatch:
		return []dom.Node{x.Node}
	case ListMatch:
		var out []dom.Node
		for _, sub := range x.Matches {
			out = append(out, leafNodes(sub)...)
		}
		return out
	case DictMatch:
		var out []dom.Node
		for _, sub := range x.MatchByKey {
			out = append(out, leafNodes(sub)...)
		}
		return out
	default:
		return nil
	}
}

func sortedKeys(d item.Dict) []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
