package item

import (
	"errors"
	"testing"

	"scrapegen/dom"
)

func blankPage(t *testing.T) *dom.Page {
	t.Helper()
	p, err := dom.NewPageFromString("")
	if err != nil {
		t.Fatalf("NewPageFromString: %v", err)
	}
	return p
}

func TestBuildTrainingSetHomogeneous(t *testing.T) {
	p := blankPage(t)
	samples := []Sample{
		{Page: p, Value: Dict{"a": Leaf("1"), "b": Leaf("2")}},
		{Page: p, Value: Dict{"a": Leaf("3"), "b": Leaf("4")}},
	}
	if _, err := BuildTrainingSet(samples); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestBuildTrainingSetShapeMismatch(t *testing.T) {
	p := blankPage(t)
	samples := []Sample{
		{Page: p, Value: Dict{"a": Leaf("1"), "b": Leaf("2")}},
		{Page: p, Value: Dict{"a": Leaf("3"), "b": List{}}},
	}
	_, err := BuildTrainingSet(samples)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, ErrItemStructure) && !errors.Is(err, ErrUnsupportedShape) {
		t.Errorf("expected ErrItemStructure or ErrUnsupportedShape, got %v", err)
	}
}

func TestEmptyListRejected(t *testing.T) {
	p := blankPage(t)
	_, err := BuildTrainingSet([]Sample{{Page: p, Value: List{}}})
	if !errors.Is(err, ErrUnsupportedShape) {
		t.Errorf("expected ErrUnsupportedShape for empty list, got %v", err)
	}
}

func TestNestedListRejected(t *testing.T) {
	p := blankPage(t)
	nested := List{List{Leaf("a")}}
	_, err := BuildTrainingSet([]Sample{{Page: p, Value: nested}})
	if !errors.Is(err, ErrUnsupportedShape) {
		t.Errorf("expected ErrUnsupportedShape for list in list, got %v", err)
	}
}

func TestDictItemTracksKeyOrder(t *testing.T) {
	p := blankPage(t)
	root, err := BuildTrainingSet([]Sample{
		{Page: p, Value: Dict{"z": Leaf("1"), "a": Leaf("2")}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dictItem, ok := root.(*DictItem)
	if !ok {
		t.Fatalf("expected *DictItem, got %T", root)
	}
	if len(dictItem.KeyOrder()) != 2 {
		t.Errorf("expected 2 keys, got %v", dictItem.KeyOrder())
	}
}

func TestFromAnyRejectsUnsupportedType(t *testing.T) {
	if _, err := FromAny(42); !errors.Is(err, ErrUnsupportedShape) {
		t.Errorf("expected ErrUnsupportedShape, got %v", err)
	}
}

func TestFromAnyRoundTripsNestedShape(t *testing.T) {
	v, err := FromAny(map[string]any{
		"title": "hi",
		"tags":  []any{"a", "b"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dict, ok := v.(Dict)
	if !ok {
		t.Fatalf("expected Dict, got %T", v)
	}
	if dict["title"] != Leaf("hi") {
		t.Errorf("expected Leaf(hi), got %v", dict["title"])
	}
	tags, ok := dict["tags"].(List)
	if !ok || len(tags) != 2 {
		t.Errorf("expected List of 2, got %v", dict["tags"])
	}
}
