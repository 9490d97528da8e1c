package dom

import "testing"

func TestNodeIdentityStable(t *testing.T) {
	page, err := NewPageFromString(`<html><body><p class="test">test</p><p>bla</p></body></html>`)
	if err != nil {
		t.Fatalf("NewPageFromString: %v", err)
	}

	a, err := page.Select("p.test")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	b, err := page.Select(".test")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected 1 match each, got %d and %d", len(a), len(b))
	}
	if a[0] != b[0] {
		t.Errorf("expected the same node handle from two different selectors matching the same element")
	}
}

func TestAttrsSplitsClass(t *testing.T) {
	page, err := NewPageFromString(`<html><body><div class="foo bar"></div></body></html>`)
	if err != nil {
		t.Fatalf("NewPageFromString: %v", err)
	}
	nodes, err := page.Select("div")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 div, got %d", len(nodes))
	}
	classes, ok := nodes[0].Attrs()["class"].([]string)
	if !ok {
		t.Fatalf("expected class attribute to be []string")
	}
	if len(classes) != 2 || classes[0] != "foo" || classes[1] != "bar" {
		t.Errorf("expected [foo bar], got %v", classes)
	}
}

func TestAttrAbsentWithoutHref(t *testing.T) {
	page, err := NewPageFromString(`<html><body><a>no link</a></body></html>`)
	if err != nil {
		t.Fatalf("NewPageFromString: %v", err)
	}
	nodes, err := page.Select("a")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 anchor, got %d", len(nodes))
	}
	if _, ok := nodes[0].Attr("href"); ok {
		t.Errorf("expected no href attribute")
	}
}

func TestAttrPresent(t *testing.T) {
	page, err := NewPageFromString(`<html><body><a href="http://x">link</a></body></html>`)
	if err != nil {
		t.Fatalf("NewPageFromString: %v", err)
	}
	nodes, err := page.Select("a")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	href, ok := nodes[0].Attr("href")
	if !ok || href != "http://x" {
		t.Errorf("expected href=http://x, got %q (ok=%v)", href, ok)
	}
}

func TestTextConcatenatesDescendants(t *testing.T) {
	page, err := NewPageFromString(`<html><body><p>hello <strong>world</strong>!</p></body></html>`)
	if err != nil {
		t.Fatalf("NewPageFromString: %v", err)
	}
	nodes, err := page.Select("p")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := nodes[0].Text(); got != "hello world!" {
		t.Errorf("expected %q, got %q", "hello world!", got)
	}
}

func TestAncestorsIncludeSyntheticDocumentRoot(t *testing.T) {
	page, err := NewPageFromString(`<html><body><p>hi</p></body></html>`)
	if err != nil {
		t.Fatalf("NewPageFromString: %v", err)
	}
	nodes, err := page.Select("p")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	ancestors := nodes[0].Ancestors()
	if len(ancestors) == 0 {
		t.Fatal("expected at least one ancestor")
	}
	last := ancestors[len(ancestors)-1]
	tag, ok := last.Tag()
	if !ok || tag != documentTag {
		t.Errorf("expected last ancestor to be the synthetic document root, got %q", tag)
	}
}

func TestSelectPreservesDocumentOrder(t *testing.T) {
	page, err := NewPageFromString(`<html><body><p id="a">1</p><div><p id="b">2</p></div><p id="c">3</p></body></html>`)
	if err != nil {
		t.Fatalf("NewPageFromString: %v", err)
	}
	nodes, err := page.Select("p")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(nodes))
	}
	ids := make([]string, 3)
	for i, n := range nodes {
		ids[i], _ = n.Attr("id")
	}
	if ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("expected document order [a b c], got %v", ids)
	}
}
