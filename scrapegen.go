// Package scrapegen infers a reusable, CSS-selector-based extractor from
// a handful of (page, expected value) examples. Feed it Samples sharing
// one value shape via Build, call Train once, then Scrape as many new
// pages of that shape as you like.
package scrapegen

import (
	"scrapegen/dom"
	"scrapegen/item"
	"scrapegen/scraper"
	"scrapegen/synth"
)

// Sample pairs a page with the value a scraper should learn to read from
// it.
type Sample = item.Sample

// Value is the extracted shape: a Leaf string, a List, or a Dict.
type Value = item.Value

// Limits bounds the selector search Train performs.
type Limits = synth.Limits

// DefaultLimits returns the search bounds Train uses when none are given.
func DefaultLimits() Limits {
	return synth.DefaultLimits()
}

// Scraper is a trained extractor for one value shape.
type Scraper struct {
	inner scraper.Scraper
}

// Build folds samples into a shape-checked Item tree and constructs a
// Scraper mirroring that shape. Samples must all share one value shape -
// all Leaf, all List, or all Dict, with the same shape under each shared
// key - or Build returns item.ErrItemStructure (or
// item.ErrUnsupportedShape for shapes this module never supports, like an
// empty list). Dict samples need not carry identical key sets: a key is
// trained only on the samples that contain it. Call Train before Scrape.
func Build(samples []Sample) (*Scraper, error) {
	root, err := item.BuildTrainingSet(samples)
	if err != nil {
		return nil, err
	}
	s, err := scraper.Build(root)
	if err != nil {
		return nil, err
	}
	return &Scraper{inner: s}, nil
}

// Train searches for the matcher(s) this Scraper's shape needs, using
// DefaultLimits.
func (s *Scraper) Train() error {
	return s.inner.Train(synth.DefaultLimits())
}

// TrainWithLimits is Train with caller-supplied selector-search bounds.
func (s *Scraper) TrainWithLimits(limits Limits) error {
	return s.inner.Train(limits)
}

// Scrape extracts a value from page using the trained matcher(s).
func (s *Scraper) Scrape(page *dom.Page) (Value, error) {
	return s.inner.Scrape(page)
}

// ToDict renders the trained scraper as a plain, JSON-marshalable value
// for persistence.
func (s *Scraper) ToDict() map[string]any {
	return s.inner.ToDict()
}
