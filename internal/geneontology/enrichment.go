package geneontology

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/juju/collections/set"

	"github.com/olehluchkiv/goenrich/internal/enrich"
)

const (
	DefaultAlpha            = 0.05
	DefaultCorrectionMethod = enrich.Hommel

	summaryLength = 10
)

// EnrichmentOptions configures an EnrichmentSet. Zero values select the
// defaults; Annotation and BasicSet are fetched when nil.
type EnrichmentOptions struct {
	Aspect           Aspect
	Organism         int
	Annotation       *Annotation
	BasicSet         map[string]set.Strings
	Alpha            float64
	CorrectionMethod string
}

// EnrichmentSet tests GO terms of one aspect for over-representation in a
// gene set against a background population.
type EnrichmentSet struct {
	aspect   Aspect
	organism int
	alpha    float64
	method   string

	annotation *Annotation
	basicSet   map[string]set.Strings
	countsPop  map[string]int
	popSize    int

	setAnnot  map[string]set.Strings
	setSize   int
	countsSet map[string]int
	result    *enrich.Set

	logger *slog.Logger
}

// NewEnrichmentSet prepares the background population and its term counts.
func NewEnrichmentSet(ctx context.Context, src Source, opts EnrichmentOptions, logger *slog.Logger) (*EnrichmentSet, error) {
	aspect, err := ParseAspect(string(opts.Aspect))
	if err != nil {
		return nil, err
	}
	method := opts.CorrectionMethod
	if method == "" {
		method = DefaultCorrectionMethod
	}
	if method, err = enrich.NormalizeMethod(method); err != nil {
		return nil, err
	}

	es := &EnrichmentSet{
		aspect:     aspect,
		organism:   opts.Organism,
		alpha:      opts.Alpha,
		method:     method,
		annotation: opts.Annotation,
		basicSet:   opts.BasicSet,
		logger:     logger.With("component", "go-enrichment", "aspect", string(aspect)),
	}
	if es.organism == 0 {
		es.organism = DefaultOrganism
	}
	if es.alpha == 0 {
		es.alpha = DefaultAlpha
	}

	if es.annotation == nil {
		if es.annotation, err = NewAnnotation(ctx, src, es.organism, logger); err != nil {
			return nil, err
		}
	}
	if es.basicSet == nil {
		if es.basicSet, err = es.BasicSet(ctx, src); err != nil {
			return nil, err
		}
	}

	es.countsPop = Count(es.basicSet)
	es.popSize = len(es.basicSet)
	es.logger.Info("background population ready", "genes", es.popSize, "terms", len(es.countsPop))
	return es, nil
}

// BasicSet returns the aspect's annotation restricted to reviewed UniProt
// accessions of the organism.
func (es *EnrichmentSet) BasicSet(ctx context.Context, src Source) (map[string]set.Strings, error) {
	swissprots, err := src.AllUniprots(ctx, es.organism, true)
	if err != nil {
		return nil, fmt.Errorf("fetching reviewed accessions for organism %d: %w", es.organism, err)
	}
	out := make(map[string]set.Strings)
	for gene, terms := range es.annotation.Table(es.aspect) {
		if swissprots.Contains(gene) {
			out[gene] = terms
		}
	}
	return out, nil
}

// GetAnnot restricts the background population to names.
func (es *EnrichmentSet) GetAnnot(names set.Strings) map[string]set.Strings {
	out := make(map[string]set.Strings)
	for gene, terms := range es.basicSet {
		if names.Contains(gene) {
			out[gene] = terms
		}
	}
	return out
}

// NewSet selects the genes in names from the background and recalculates.
func (es *EnrichmentSet) NewSet(names set.Strings) error {
	return es.NewSetAnnot(es.GetAnnot(names))
}

// NewSetAnnot uses annot as the gene set and recalculates.
func (es *EnrichmentSet) NewSetAnnot(annot map[string]set.Strings) error {
	if annot == nil {
		annot = make(map[string]set.Strings)
	}
	es.setAnnot = annot
	es.setSize = len(annot)
	es.countsSet = Count(annot)
	return es.Calculate()
}

// Calculate runs the enrichment tests over the current gene set.
func (es *EnrichmentSet) Calculate() error {
	if es.setAnnot == nil {
		return fmt.Errorf("no gene set selected")
	}
	data := make(map[string]enrich.Input, len(es.countsSet))
	for term, cnt := range es.countsSet {
		name, ok := es.annotation.Name(term)
		if !ok {
			name = term
		}
		data[term] = enrich.Input{
			SetCount: cnt,
			PopCount: es.countsPop[term],
			SetSize:  es.setSize,
			Name:     name,
		}
	}

	result, err := enrich.NewSet(data, es.popSize, es.alpha, es.method)
	if err != nil {
		return fmt.Errorf("calculating enrichment: %w", err)
	}
	es.result = result
	es.logger.Info("enrichment calculated",
		"set_size", es.setSize,
		"terms", result.Len(),
		"significant", len(result.TopIDs(0, true)),
		"method", es.method)
	return nil
}

// Count tallies term occurrences over all term sets of data.
func Count(data map[string]set.Strings) map[string]int {
	counts := make(map[string]int)
	for _, terms := range data {
		for term := range terms {
			counts[term]++
		}
	}
	return counts
}

// TopTerms returns the names of the most enriched terms.
func (es *EnrichmentSet) TopTerms(length int, significant bool) []string {
	if es.result == nil {
		return nil
	}
	return es.result.TopNames(length, significant)
}

// TopAccessions returns the ids of the most enriched terms.
func (es *EnrichmentSet) TopAccessions(length int, significant bool) []string {
	if es.result == nil {
		return nil
	}
	return es.result.TopIDs(length, significant)
}

// Result returns the enrichment results, nil before a gene set is selected.
func (es *EnrichmentSet) Result() *enrich.Set { return es.result }

func (es *EnrichmentSet) Aspect() Aspect                    { return es.aspect }
func (es *EnrichmentSet) Annotation() *Annotation           { return es.annotation }
func (es *EnrichmentSet) Background() map[string]set.Strings { return es.basicSet }
func (es *EnrichmentSet) CountsPop() map[string]int         { return es.countsPop }
func (es *EnrichmentSet) CountsSet() map[string]int         { return es.countsSet }
func (es *EnrichmentSet) PopSize() int                      { return es.popSize }
func (es *EnrichmentSet) SetSize() int                      { return es.setSize }

// String summarises the significant terms.
func (es *EnrichmentSet) String() string {
	if es.setAnnot == nil {
		return "\n\t:: No calculations performed yet. Please define " +
			"a set of genes with `NewSet()`.\n\n"
	}
	top := es.TopTerms(summaryLength, true)
	lines := make([]string, len(top))
	for i, t := range top {
		lines[i] = capitalize(t)
	}
	return "\n :: Top significantly enriched terms (max. 10):\n\n\t" +
		strings.Join(lines, "\n\t") + "\n"
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
