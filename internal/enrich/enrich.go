// Package enrich computes over-representation statistics for categories
// (terms, pathways, ...) in a selected set relative to a population.
package enrich

import (
	"fmt"
	"sort"
)

// Input holds the tallies for one category.
type Input struct {
	SetCount int    // members of the set carrying the category
	PopCount int    // members of the population carrying the category
	SetSize  int    // size of the set
	Name     string // display name
}

// Entry is the result for one category.
type Entry struct {
	ID         string
	Name       string
	SetCount   int
	PopCount   int
	SetSize    int
	PopSize    int
	PValue     float64 // one-sided hypergeometric p-value
	PCorrected float64
	Signif     bool
}

// Ratio is the fold enrichment of the category in the set.
func (e Entry) Ratio() float64 {
	if e.SetSize == 0 || e.PopCount == 0 || e.PopSize == 0 {
		return 0
	}
	return (float64(e.SetCount) / float64(e.SetSize)) / (float64(e.PopCount) / float64(e.PopSize))
}

// Set is a corrected collection of enrichment results.
type Set struct {
	PopSize int
	Alpha   float64
	Method  string

	entries map[string]*Entry
	ranked  []*Entry
}

// NewSet tests every category in data against the population and applies
// the multiple-testing correction named by method.
func NewSet(data map[string]Input, popSize int, alpha float64, method string) (*Set, error) {
	canonical, err := NormalizeMethod(method)
	if err != nil {
		return nil, err
	}
	if popSize < 0 {
		return nil, fmt.Errorf("negative population size %d", popSize)
	}

	s := &Set{
		PopSize: popSize,
		Alpha:   alpha,
		Method:  canonical,
		entries: make(map[string]*Entry, len(data)),
		ranked:  make([]*Entry, 0, len(data)),
	}

	for id, in := range data {
		e := &Entry{
			ID:       id,
			Name:     in.Name,
			SetCount: in.SetCount,
			PopCount: in.PopCount,
			SetSize:  in.SetSize,
			PopSize:  popSize,
			PValue:   HypergeomSF(in.SetCount, popSize, in.PopCount, in.SetSize),
		}
		s.entries[id] = e
		s.ranked = append(s.ranked, e)
	}
	// Deterministic input order for the correction.
	sort.Slice(s.ranked, func(i, j int) bool { return s.ranked[i].ID < s.ranked[j].ID })

	pvals := make([]float64, len(s.ranked))
	for i, e := range s.ranked {
		pvals[i] = e.PValue
	}
	reject, corrected, err := Correct(pvals, alpha, canonical)
	if err != nil {
		return nil, err
	}
	for i, e := range s.ranked {
		e.PCorrected = corrected[i]
		e.Signif = reject[i]
	}

	sort.SliceStable(s.ranked, func(i, j int) bool {
		a, b := s.ranked[i], s.ranked[j]
		if a.PCorrected != b.PCorrected {
			return a.PCorrected < b.PCorrected
		}
		if a.PValue != b.PValue {
			return a.PValue < b.PValue
		}
		return a.ID < b.ID
	})
	return s, nil
}

// Len returns the number of tested categories.
func (s *Set) Len() int { return len(s.ranked) }

// Entry returns the result for id.
func (s *Set) Entry(id string) (Entry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// TopList returns results ordered by corrected p-value. length <= 0 means
// no limit; significant restricts to rejected hypotheses.
func (s *Set) TopList(length int, significant bool) []Entry {
	out := make([]Entry, 0, len(s.ranked))
	for _, e := range s.ranked {
		if significant && !e.Signif {
			continue
		}
		out = append(out, *e)
		if length > 0 && len(out) == length {
			break
		}
	}
	return out
}

// TopNames returns the names of the top categories.
func (s *Set) TopNames(length int, significant bool) []string {
	top := s.TopList(length, significant)
	names := make([]string, len(top))
	for i, e := range top {
		names[i] = e.Name
	}
	return names
}

// TopIDs returns the ids of the top categories.
func (s *Set) TopIDs(length int, significant bool) []string {
	top := s.TopList(length, significant)
	ids := make([]string, len(top))
	for i, e := range top {
		ids[i] = e.ID
	}
	return ids
}
