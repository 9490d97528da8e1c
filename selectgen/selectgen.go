// Package selectgen enumerates candidate CSS selectors for a node: first
// per-node descriptors (id, class subsets, positional pseudo-classes),
// then selectors that anchor the node to a bounded number of ancestors.
// Enumeration is lazy (iter.Seq[string]) so a caller can stop at the
// first selector that satisfies it without ever materializing the full
// combinatorial space.
package selectgen

import (
	"errors"
	"fmt"
	"iter"

	"scrapegen/dom"
)

// ErrNotATag is returned when selector generation is asked to describe a
// node that is not an HTML element (a text node, or the document root).
var ErrNotATag = errors.New("selector generation invoked on a non-element node")

// Limits bounds the selector search space. Both fields mirror the
// corresponding synth.Limits fields; selectgen takes its own copy so it
// has no import dependency on synth.
type Limits struct {
	// ClassCombinationsMax is the largest class subset size tried per
	// node (0 always tried: the bare tag name).
	ClassCombinationsMax int
	// ParentNodeCountMax is the largest number of ancestors a path
	// selector may anchor on.
	ParentNodeCountMax int
}

// DefaultLimits returns the limits used when no caller-supplied Limits is
// given: at most 2 classes combined, at most 2 ancestors anchored.
func DefaultLimits() Limits {
	return Limits{ClassCombinationsMax: 2, ParentNodeCountMax: 2}
}

// usefulAncestorTags are excluded from path selectors: they sit at the
// top of (almost) every page and narrow nothing.
var usefulAncestorTags = map[string]bool{
	"body":       true,
	"html":       true,
	"[document]": true,
}

// NodeSelectors enumerates descriptors for n alone, in order: #id (if
// present), tag+class subsets of increasing size up to
// limits.ClassCombinationsMax (class order as given in the source
// attribute), then :nth-child(k) and :nth-of-type(k) if n has an element
// parent. It returns ErrNotATag if n is not an element.
func NodeSelectors(n dom.Node, limits Limits) (iter.Seq[string], error) {
	tag, ok := n.Tag()
	if !ok || !n.IsElement() {
		return nil, ErrNotATag
	}
	return func(yield func(string) bool) {
		if id, ok := n.Attr("id"); ok && id != "" {
			if !yield("#" + id) {
				return
			}
		}

		classes := n.Classes()
		maxK := limits.ClassCombinationsMax
		if maxK > len(classes) {
			maxK = len(classes)
		}
		for k := 0; k <= maxK; k++ {
			for _, combo := range combinations(len(classes), k) {
				sel := tag
				for _, idx := range combo {
					sel += "." + classes[idx]
				}
				if !yield(sel) {
					return
				}
			}
		}

		if parent, ok := n.Parent(); ok && parent.IsElement() {
			siblings := parent.ElementChildren()
			if childIdx := indexOf(siblings, n); childIdx >= 0 {
				if !yield(fmt.Sprintf(":nth-child(%d)", childIdx+1)) {
					return
				}
			}
			if typeIdx := indexOfSameTag(siblings, n, tag); typeIdx >= 0 {
				if !yield(fmt.Sprintf(":nth-of-type(%d)", typeIdx+1)) {
					return
				}
			}
		}
	}, nil
}

// PathSelectors enumerates selectors that anchor n to between 0 and
// limits.ParentNodeCountMax ancestors (excluding body, html, and the
// document root), fewest ancestors first. For a chosen set of ancestors
// it enumerates the Cartesian product of each path position's
// NodeSelectors, joining the chosen descriptors with a single space in
// root-to-leaf order so the result is a valid descendant-combinator
// selector. It returns ErrNotATag if n is not an element.
func PathSelectors(n dom.Node, limits Limits) (iter.Seq[string], error) {
	if _, ok := n.Tag(); !ok || !n.IsElement() {
		return nil, ErrNotATag
	}
	useful := usefulAncestors(n)

	return func(yield func(string) bool) {
		maxK := limits.ParentNodeCountMax
		if maxK > len(useful) {
			maxK = len(useful)
		}
		for k := 0; k <= maxK; k++ {
			for _, combo := range combinations(len(useful), k) {
				path := make([]dom.Node, 0, k+1)
				path = append(path, n)
				for _, idx := range combo {
					path = append(path, useful[idx])
				}
				if !emitPathProducts(path, limits, yield) {
					return
				}
			}
		}
	}, nil
}

// usefulAncestors returns n's ancestors, nearest first, skipping the
// generic wrapper tags that narrow nothing.
func usefulAncestors(n dom.Node) []dom.Node {
	var out []dom.Node
	for _, a := range n.Ancestors() {
		tag, ok := a.Tag()
		if !ok || usefulAncestorTags[tag] {
			continue
		}
		out = append(out, a)
	}
	return out
}

// emitPathProducts yields one selector per combination of descriptors
// drawn from path's positions (path[0] is the target node, path[1:] its
// chosen ancestors, nearest first). Each path position's own descriptor
// list is collected up front - it is small and bounded - so the only
// thing generated lazily is the cross product across positions.
func emitPathProducts(path []dom.Node, limits Limits, yield func(string) bool) bool {
	perPosition := make([][]string, len(path))
	for i, node := range path {
		descs, err := NodeSelectors(node, limits)
		if err != nil {
			return true
		}
		for d := range descs {
			perPosition[i] = append(perPosition[i], d)
		}
	}
	return productReversed(perPosition, nil, yield)
}

// productReversed walks the Cartesian product of lists (one choice per
// position), and for each full choice joins the choices in reverse
// position order - ancestor descriptors first, target node descriptor
// last - which is the order CSS expects for a descendant combinator.
func productReversed(lists [][]string, chosen []string, yield func(string) bool) bool {
	if len(lists) == 0 {
		sel := ""
		for i := len(chosen) - 1; i >= 0; i-- {
			if sel != "" {
				sel += " "
			}
			sel += chosen[i]
		}
		return yield(sel)
	}
	for _, d := range lists[0] {
		if !productReversed(lists[1:], append(chosen, d), yield) {
			return false
		}
	}
	return true
}

// combinations returns every size-k subset of {0, ..., n-1}, as sorted
// index slices, in lexicographic order.
func combinations(n, k int) [][]int {
	if k < 0 || k > n {
		return nil
	}
	if k == 0 {
		return [][]int{{}}
	}
	var out [][]int
	combo := make([]int, k)
	for i := range combo {
		combo[i] = i
	}
	for {
		cp := make([]int, k)
		copy(cp, combo)
		out = append(out, cp)

		i := k - 1
		for i >= 0 && combo[i] == i+n-k {
			i--
		}
		if i < 0 {
			return out
		}
		combo[i]++
		for j := i + 1; j < k; j++ {
			combo[j] = combo[j-1] + 1
		}
	}
}

func indexOf(nodes []dom.Node, target dom.Node) int {
	for i, n := range nodes {
		if n.Equal(target) {
			return i
		}
	}
	return -1
}

func indexOfSameTag(nodes []dom.Node, target dom.Node, tag string) int {
	idx := -1
	count := 0
	for _, n := range nodes {
		t, ok := n.Tag()
		if !ok || t != tag {
			continue
		}
		if n.Equal(target) {
			idx = count
		}
		count++
	}
	return idx
}
