// Package geneontology attaches Gene Ontology annotations to genes and
// graphs and runs GO term enrichment over gene sets.
package geneontology

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/juju/collections/set"
)

// DefaultOrganism is the NCBI taxonomy id of human.
const DefaultOrganism = 9606

// Annotation indexes the GO annotations of one organism. It is not
// modified after construction; returned sets must not be mutated.
type Annotation struct {
	organism int
	tables   Tables
	name     map[string]string // term id -> name
	term     map[string]string // name -> term id
}

// NewAnnotation fetches all three aspects of organism from src.
func NewAnnotation(ctx context.Context, src Source, organism int, logger *slog.Logger) (*Annotation, error) {
	if organism == 0 {
		organism = DefaultOrganism
	}
	terms, tables, err := src.GOAnnotations(ctx, organism, Aspects...)
	if err != nil {
		return nil, fmt.Errorf("fetching GO annotations for organism %d: %w", organism, err)
	}
	a := NewAnnotationFromTables(organism, terms, tables)
	logger.Info("GO annotation loaded",
		"organism", organism,
		"terms", len(a.name),
		"genes_c", len(a.tables[CellularComponent]),
		"genes_f", len(a.tables[MolecularFunction]),
		"genes_p", len(a.tables[BiologicalProcess]))
	return a, nil
}

// NewAnnotationFromTables builds the index from an already fetched result.
func NewAnnotationFromTables(organism int, terms Terms, tables Tables) *Annotation {
	a := &Annotation{
		organism: organism,
		tables:   make(Tables, len(Aspects)),
		name:     make(map[string]string),
		term:     make(map[string]string),
	}
	for _, asp := range Aspects {
		t := tables[asp]
		if t == nil {
			t = make(map[string]set.Strings)
		}
		a.tables[asp] = t

		for id, name := range terms[asp] {
			a.name[id] = name
		}
	}
	for id, name := range a.name {
		a.term[name] = id
	}
	return a
}

// Organism returns the taxonomy id the annotation was built for.
func (a *Annotation) Organism() int { return a.organism }

// Name returns the name of a GO term.
func (a *Annotation) Name(term string) (string, bool) {
	n, ok := a.name[term]
	return n, ok
}

// Term returns the GO term id carrying name.
func (a *Annotation) Term(name string) (string, bool) {
	t, ok := a.term[name]
	return t, ok
}

// Annot returns the terms of gene in one aspect, or an empty set.
func (a *Annotation) Annot(gene string, aspect Aspect) set.Strings {
	if terms, ok := a.tables[aspect][gene]; ok {
		return terms
	}
	return set.NewStrings()
}

// Annots returns the terms of gene in every aspect.
func (a *Annotation) Annots(gene string) map[Aspect]set.Strings {
	out := make(map[Aspect]set.Strings, len(Aspects))
	for _, asp := range Aspects {
		out[asp] = a.Annot(gene, asp)
	}
	return out
}

// Table returns the gene -> terms table of one aspect.
func (a *Annotation) Table(aspect Aspect) map[string]set.Strings {
	return a.tables[aspect]
}

// TermCount returns the number of named terms.
func (a *Annotation) TermCount() int { return len(a.name) }

// Genes returns the annotated genes of one aspect, sorted.
func (a *Annotation) Genes(aspect Aspect) []string {
	genes := make([]string, 0, len(a.tables[aspect]))
	for g := range a.tables[aspect] {
		genes = append(genes, g)
	}
	sort.Strings(genes)
	return genes
}
