// Package item implements the recursive data model describing what to
// scrape: a leaf string, an ordered homogeneous list of items, or a keyed
// map of items. It also implements the shape-checked accumulation of
// Samples into an Item tree, used as training's early structure check.
package item

import (
	"errors"
	"fmt"
	"sort"

	"scrapegen/dom"
)

// ErrItemStructure is returned when a sample's shape does not match the
// shape already bound to an Item at the same position.
var ErrItemStructure = errors.New("item structure mismatch")

// ErrUnsupportedShape is returned for shapes this package never supports:
// a list inside a list, an empty list, or a non-string/list/map leaf.
var ErrUnsupportedShape = errors.New("unsupported item shape")

// Value is the recursive scrape-target type: a sum of Leaf, List, and
// Dict. It is a closed type; the only implementations are in this file.
type Value interface {
	isValue()
}

// Leaf is a single extracted string.
type Leaf string

func (Leaf) isValue() {}

// List is a homogeneous, non-empty ordered sequence of Values. Its
// element shape is fixed by its first element.
type List []Value

func (List) isValue() {}

// Dict is a keyed map of Values.
type Dict map[string]Value

func (Dict) isValue() {}

// FromAny converts a decoded-JSON value (string, []any, or map[string]any,
// possibly nested) into a Value. Any other Go type is rejected.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case string:
		return Leaf(x), nil
	case []any:
		list := make(List, 0, len(x))
		for _, elem := range x {
			ev, err := FromAny(elem)
			if err != nil {
				return nil, err
			}
			list = append(list, ev)
		}
		return list, nil
	case map[string]any:
		dict := make(Dict, len(x))
		for k, elem := range x {
			ev, err := FromAny(elem)
			if err != nil {
				return nil, err
			}
			dict[k] = ev
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedShape, v)
	}
}

// Sample is a pair (page, value): one example of a Value as found on one
// page.
type Sample struct {
	Page  *dom.Page
	Value Value
}

// Item is the structure to scrape: one or more Samples sharing a single
// shape, classified as ValueItem, ListItem, or DictItem on first sight.
type Item interface {
	// AddSample extends the item with another sample sharing its shape,
	// failing with ErrItemStructure on a shape mismatch.
	AddSample(s Sample) error

	// Samples returns every sample added so far.
	Samples() []Sample
}

// CreateFrom classifies a value and returns a fresh, empty Item of the
// matching variant.
func CreateFrom(v Value) (Item, error) {
	switch v.(type) {
	case Leaf:
		return &ValueItem{}, nil
	case List:
		return &ListItem{}, nil
	case Dict:
		return &DictItem{}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedShape, v)
	}
}

// ValueItem holds leaf-string samples.
type ValueItem struct {
	samples []Sample
}

func (it *ValueItem) Samples() []Sample { return it.samples }

func (it *ValueItem) AddSample(s Sample) error {
	if _, ok := s.Value.(Leaf); !ok {
		return fmt.Errorf("%w: expected a string, got %T", ErrItemStructure, s.Value)
	}
	it.samples = append(it.samples, s)
	return nil
}

// ListItem holds list samples; its single inner Item's shape is fixed by
// the first element of the first non-empty sample added.
type ListItem struct {
	samples []Sample
	inner   Item
}

func (it *ListItem) Samples() []Sample { return it.samples }

// Inner returns the item describing this list's elements, or nil if no
// sample has been added yet.
func (it *ListItem) Inner() Item { return it.inner }

func (it *ListItem) AddSample(s Sample) error {
	list, ok := s.Value.(List)
	if !ok {
		return fmt.Errorf("%w: expected a list, got %T", ErrItemStructure, s.Value)
	}
	if len(list) == 0 {
		return fmt.Errorf("%w: empty list", ErrUnsupportedShape)
	}

	if it.inner == nil {
		inner, err := CreateFrom(list[0])
		if err != nil {
			return err
		}
		if _, isList := inner.(*ListItem); isList {
			return fmt.Errorf("%w: list in list", ErrUnsupportedShape)
		}
		it.inner = inner
	}

	it.samples = append(it.samples, s)
	for _, elem := range list {
		if err := it.inner.AddSample(Sample{Page: s.Page, Value: elem}); err != nil {
			return err
		}
	}
	return nil
}

// DictItem holds dict samples, with one child Item per key.
type DictItem struct {
	samples     []Sample
	itemsPerKey map[string]Item
	keyOrder    []string
}

func (it *DictItem) Samples() []Sample { return it.samples }

// ItemsPerKey returns the per-key child items.
func (it *DictItem) ItemsPerKey() map[string]Item { return it.itemsPerKey }

// KeyOrder returns keys in first-sight order, matching Go map iteration
// determinism requirements elsewhere in the module.
func (it *DictItem) KeyOrder() []string { return it.keyOrder }

func (it *DictItem) AddSample(s Sample) error {
	dict, ok := s.Value.(Dict)
	if !ok {
		return fmt.Errorf("%w: expected a dict, got %T", ErrItemStructure, s.Value)
	}
	if it.itemsPerKey == nil {
		it.itemsPerKey = make(map[string]Item)
	}

	it.samples = append(it.samples, s)
	keys := make([]string, 0, len(dict))
	for key := range dict {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		v := dict[key]
		child, exists := it.itemsPerKey[key]
		if !exists {
			created, err := CreateFrom(v)
			if err != nil {
				return err
			}
			child = created
			it.itemsPerKey[key] = child
			it.keyOrder = append(it.keyOrder, key)
		}
		if err := child.AddSample(Sample{Page: s.Page, Value: v}); err != nil {
			return err
		}
	}
	return nil
}

// BuildTrainingSet folds samples into a single Item tree, failing fast on
// the first shape mismatch. It mirrors make_training_set: the first
// sample's value fixes the whole tree's shape.
func BuildTrainingSet(samples []Sample) (Item, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples given", ErrUnsupportedShape)
	}
	root, err := CreateFrom(samples[0].Value)
	if err != nil {
		return nil, err
	}
	for _, s := range samples {
		if err := root.AddSample(s); err != nil {
			return nil, err
		}
	}
	return root, nil
}
