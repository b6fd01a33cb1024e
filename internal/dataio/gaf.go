package dataio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/juju/collections/set"

	"github.com/olehluchkiv/goenrich/internal/geneontology"
)

// GAF 2.x column indices.
const (
	gafDB        = 0
	gafObjectID  = 1
	gafQualifier = 3
	gafGOID      = 4
	gafAspect    = 8
	gafTaxon     = 12
	gafMinCols   = 9
)

// ParseGAF reads a GO Annotation File and returns UniProtKB accession ->
// term sets for the requested aspects. Negated annotations (NOT
// qualifier) are dropped, as are rows whose primary taxon differs from
// organism when organism is non-zero.
func ParseGAF(r io.Reader, organism int, aspects ...geneontology.Aspect) (geneontology.Tables, error) {
	if len(aspects) == 0 {
		aspects = geneontology.Aspects
	}
	tables := make(geneontology.Tables, len(aspects))
	for _, a := range aspects {
		tables[a] = make(map[string]set.Strings)
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if line == "" || line[0] == '!' {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < gafMinCols {
			return nil, fmt.Errorf("GAF line %d: %d columns, want at least %d", lineNo, len(cols), gafMinCols)
		}
		if cols[gafDB] != "UniProtKB" {
			continue
		}
		if negated(cols[gafQualifier]) {
			continue
		}
		if organism != 0 && len(cols) > gafTaxon && primaryTaxon(cols[gafTaxon]) != organism {
			continue
		}
		table, ok := tables[geneontology.Aspect(cols[gafAspect])]
		if !ok {
			continue
		}
		acc := cols[gafObjectID]
		terms, ok := table[acc]
		if !ok {
			terms = set.NewStrings()
			table[acc] = terms
		}
		terms.Add(cols[gafGOID])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading GAF (line %d): %w", lineNo, err)
	}
	return tables, nil
}

func negated(qualifier string) bool {
	for _, q := range strings.Split(qualifier, "|") {
		if q == "NOT" {
			return true
		}
	}
	return false
}

// primaryTaxon parses "taxon:9606" or "taxon:9606|taxon:11676".
func primaryTaxon(col string) int {
	first, _, _ := strings.Cut(col, "|")
	id, err := strconv.Atoi(strings.TrimPrefix(first, "taxon:"))
	if err != nil {
		return 0
	}
	return id
}
