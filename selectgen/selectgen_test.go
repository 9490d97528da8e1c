package selectgen

import (
	"errors"
	"strings"
	"testing"

	"scrapegen/dom"
)

func collect(t *testing.T, seq func(func(string) bool)) []string {
	t.Helper()
	var out []string
	seq(func(s string) bool {
		out = append(out, s)
		return true
	})
	return out
}

func firstMatch(t *testing.T, page *dom.Page, cssRule string, selector string) []dom.Node {
	t.Helper()
	nodes, err := page.Select(selector)
	if err != nil {
		t.Fatalf("Select(%q): %v", selector, err)
	}
	return nodes
}

func TestNodeSelectorsRejectsNonElement(t *testing.T) {
	page, err := dom.NewPageFromString(`<p>hi</p>`)
	if err != nil {
		t.Fatalf("NewPageFromString: %v", err)
	}
	if _, err := NodeSelectors(page.Root(), DefaultLimits()); !errors.Is(err, ErrNotATag) {
		t.Errorf("expected ErrNotATag for the document root, got %v", err)
	}
}

func TestNodeSelectorsIncludesID(t *testing.T) {
	page, err := dom.NewPageFromString(`<html><body><p id="main">hi</p></body></html>`)
	if err != nil {
		t.Fatalf("NewPageFromString: %v", err)
	}
	ps, err := page.Select("p")
	if err != nil || len(ps) != 1 {
		t.Fatalf("Select(p): %v, %d", err, len(ps))
	}
	seq, err := NodeSelectors(ps[0], DefaultLimits())
	if err != nil {
		t.Fatalf("NodeSelectors: %v", err)
	}
	descs := collect(t, seq)
	if descs[0] != "#main" {
		t.Errorf("expected id descriptor first, got %v", descs)
	}
}

func TestNodeSelectorsClassSubsetsBoundedByLimit(t *testing.T) {
	page, err := dom.NewPageFromString(`<html><body><p class="a b c">hi</p></body></html>`)
	if err != nil {
		t.Fatalf("NewPageFromString: %v", err)
	}
	ps, _ := page.Select("p")
	seq, err := NodeSelectors(ps[0], Limits{ClassCombinationsMax: 2, ParentNodeCountMax: 0})
	if err != nil {
		t.Fatalf("NodeSelectors: %v", err)
	}
	for _, d := range collect(t, seq) {
		if d == "#main" {
			continue
		}
		classCount := strings.Count(d, ".")
		if classCount > 2 {
			t.Errorf("descriptor %q combines more than the configured 2 classes", d)
		}
	}
}

func TestNodeSelectorsNthChildAndOfType(t *testing.T) {
	page, err := dom.NewPageFromString(`<html><body><span>x</span><p>a</p><p id="target">b</p></body></html>`)
	if err != nil {
		t.Fatalf("NewPageFromString: %v", err)
	}
	ps, _ := page.Select("#target")
	if len(ps) != 1 {
		t.Fatalf("expected 1 node, got %d", len(ps))
	}
	seq, err := NodeSelectors(ps[0], DefaultLimits())
	if err != nil {
		t.Fatalf("NodeSelectors: %v", err)
	}
	descs := collect(t, seq)
	wantChild, wantType := false, false
	for _, d := range descs {
		if d == ":nth-child(3)" {
			wantChild = true
		}
		if d == ":nth-of-type(2)" {
			wantType = true
		}
	}
	if !wantChild {
		t.Errorf(":nth-child(3) not found in %v", descs)
	}
	if !wantType {
		t.Errorf(":nth-of-type(2) not found in %v", descs)
	}
}

func TestPathSelectorsExcludesWrapperAncestors(t *testing.T) {
	page, err := dom.NewPageFromString(`<html><body><div id="wrap"><p id="target">hi</p></div></body></html>`)
	if err != nil {
		t.Fatalf("NewPageFromString: %v", err)
	}
	ps, _ := page.Select("#target")
	seq, err := PathSelectors(ps[0], Limits{ClassCombinationsMax: 0, ParentNodeCountMax: 2})
	if err != nil {
		t.Fatalf("PathSelectors: %v", err)
	}
	for _, sel := range collect(t, seq) {
		if strings.Contains(sel, "body") || strings.Contains(sel, "html") {
			t.Errorf("selector %q should not reference body/html ancestors", sel)
		}
	}
}

func TestPathSelectorsBoundedByAncestorLimit(t *testing.T) {
	page, err := dom.NewPageFromString(`<html><body><div><section><article><p id="target">hi</p></article></section></div></body></html>`)
	if err != nil {
		t.Fatalf("NewPageFromString: %v", err)
	}
	ps, _ := page.Select("#target")
	limits := Limits{ClassCombinationsMax: 0, ParentNodeCountMax: 1}
	seq, err := PathSelectors(ps[0], limits)
	if err != nil {
		t.Fatalf("PathSelectors: %v", err)
	}
	for _, sel := range collect(t, seq) {
		tokens := strings.Fields(sel)
		if len(tokens) > limits.ParentNodeCountMax+1 {
			t.Errorf("selector %q anchors more ancestors than the configured limit of %d", sel, limits.ParentNodeCountMax)
		}
	}
}

func TestPathSelectorsResolveBackToTheNode(t *testing.T) {
	page, err := dom.NewPageFromString(`<html><body><div class="list"><p>a</p><p id="target" class="item">b</p></div></body></html>`)
	if err != nil {
		t.Fatalf("NewPageFromString: %v", err)
	}
	ps, _ := page.Select("#target")
	target := ps[0]
	seq, err := PathSelectors(target, DefaultLimits())
	if err != nil {
		t.Fatalf("PathSelectors: %v", err)
	}

	found := false
	for _, sel := range collect(t, seq) {
		matches := firstMatch(t, page, "#target", sel)
		_ = matches
		nodes, err := page.Select(sel)
		if err != nil {
			t.Fatalf("Select(%q): %v", sel, err)
		}
		if len(nodes) == 1 && nodes[0].Equal(target) {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("no generated path selector uniquely resolved back to the target node")
	}
}

func TestNodeSelectorsSkipsPositionalDescriptorsWithoutElementParent(t *testing.T) {
	page, err := dom.NewPageFromString(`<html></html>`)
	if err != nil {
		t.Fatalf("NewPageFromString: %v", err)
	}
	root := page.Root()
	children := root.ElementChildren()
	if len(children) != 1 {
		t.Fatalf("expected 1 element child of the document root, got %d", len(children))
	}
	seq, err := NodeSelectors(children[0], DefaultLimits())
	if err != nil {
		t.Fatalf("NodeSelectors: %v", err)
	}
	for _, d := range collect(t, seq) {
		if strings.HasPrefix(d, ":nth-") {
			t.Errorf("html element has no element parent, should not get positional descriptor %q", d)
		}
	}
}
