package dataio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/olehluchkiv/goenrich/internal/geneontology"
)

// ParseOBO reads the [Term] stanzas of a GO OBO file and returns the term
// names grouped by aspect. Obsolete terms and terms outside the three GO
// namespaces are skipped.
func ParseOBO(r io.Reader) (geneontology.Terms, error) {
	terms := geneontology.Terms{
		geneontology.CellularComponent: {},
		geneontology.MolecularFunction: {},
		geneontology.BiologicalProcess: {},
	}

	var (
		inTerm       bool
		id, name, ns string
		obsolete     bool
	)
	flush := func() {
		if inTerm && id != "" && name != "" && !obsolete {
			if asp, err := geneontology.ParseAspect(ns); err == nil {
				terms[asp][id] = name
			}
		}
		id, name, ns, obsolete = "", "", "", false
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "[") {
			flush()
			inTerm = line == "[Term]"
			continue
		}
		if !inTerm {
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		val = strings.TrimSpace(val)
		switch key {
		case "id":
			id = val
		case "name":
			name = val
		case "namespace":
			ns = val
		case "is_obsolete":
			obsolete = val == "true"
		}
	}
	flush()
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading OBO: %w", err)
	}
	return terms, nil
}
