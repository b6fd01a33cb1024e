package geneontology

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/juju/collections/set"
)

// ErrUnknownAspect is returned when an aspect cannot be parsed.
var ErrUnknownAspect = errors.New("unknown GO aspect")

// Aspect is one of the three GO sub-ontologies.
type Aspect string

const (
	CellularComponent Aspect = "C"
	MolecularFunction Aspect = "F"
	BiologicalProcess Aspect = "P"
)

// Aspects lists all aspects in canonical order.
var Aspects = []Aspect{CellularComponent, MolecularFunction, BiologicalProcess}

// Namespace returns the OBO namespace of the aspect.
func (a Aspect) Namespace() string {
	switch a {
	case CellularComponent:
		return "cellular_component"
	case MolecularFunction:
		return "molecular_function"
	case BiologicalProcess:
		return "biological_process"
	}
	return ""
}

// ParseAspect accepts a one-letter code or an OBO namespace, in any case.
func ParseAspect(s string) (Aspect, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, a := range Aspects {
		if v == strings.ToLower(string(a)) || v == a.Namespace() {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAspect, s)
}

// ParseAspects parses a comma separated aspect list. An empty string means
// all aspects. Duplicates are dropped.
func ParseAspects(s string) ([]Aspect, error) {
	if strings.TrimSpace(s) == "" {
		return Aspects, nil
	}
	var out []Aspect
	seen := set.NewStrings()
	for _, part := range strings.Split(s, ",") {
		a, err := ParseAspect(part)
		if err != nil {
			return nil, err
		}
		if seen.Contains(string(a)) {
			continue
		}
		seen.Add(string(a))
		out = append(out, a)
	}
	return out, nil
}

// Terms maps each aspect to its term id -> name table.
type Terms map[Aspect]map[string]string

// Tables maps each aspect to its gene -> term id set table.
type Tables map[Aspect]map[string]set.Strings

// Source fetches annotation dictionaries.
type Source interface {
	// GOAnnotations returns term names and gene annotations of organism
	// for the requested aspects.
	GOAnnotations(ctx context.Context, organism int, aspects ...Aspect) (Terms, Tables, error)
	// AllUniprots returns the UniProt accessions of organism, restricted to
	// reviewed (SwissProt) entries when swissprot is set.
	AllUniprots(ctx context.Context, organism int, swissprot bool) (set.Strings, error)
}
