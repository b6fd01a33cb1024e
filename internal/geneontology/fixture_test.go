package geneontology

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/juju/collections/set"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// fakeSource serves fixed tables and records the calls made.
type fakeSource struct {
	terms     Terms
	tables    Tables
	reviewed  set.Strings
	err       error
	goCalls   int
	uniCalls  int
	asked     []Aspect
	organisms []int
}

func (f *fakeSource) GOAnnotations(_ context.Context, organism int, aspects ...Aspect) (Terms, Tables, error) {
	f.goCalls++
	f.asked = aspects
	f.organisms = append(f.organisms, organism)
	if f.err != nil {
		return nil, nil, f.err
	}
	terms := make(Terms)
	tables := make(Tables)
	for _, a := range aspects {
		terms[a] = f.terms[a]
		tables[a] = f.tables[a]
	}
	return terms, tables, nil
}

func (f *fakeSource) AllUniprots(_ context.Context, organism int, _ bool) (set.Strings, error) {
	f.uniCalls++
	f.organisms = append(f.organisms, organism)
	if f.err != nil {
		return nil, f.err
	}
	return f.reviewed, nil
}

func smallSource() *fakeSource {
	return &fakeSource{
		terms: Terms{
			CellularComponent: {"GO:0005634": "nucleus", "GO:0005737": "cytoplasm"},
			MolecularFunction: {"GO:0003677": "DNA binding", "GO:0005515": "protein binding"},
			BiologicalProcess: {
				"GO:0006915": "apoptotic process",
				"GO:0006281": "DNA repair",
				"GO:0007049": "cell cycle",
			},
		},
		tables: Tables{
			CellularComponent: {
				"P04637": set.NewStrings("GO:0005634", "GO:0005737"),
				"P38398": set.NewStrings("GO:0005634"),
			},
			MolecularFunction: {
				"P04637": set.NewStrings("GO:0003677", "GO:0005515"),
			},
			BiologicalProcess: {
				"P04637":     set.NewStrings("GO:0006915", "GO:0006281", "GO:0007049"),
				"P38398":     set.NewStrings("GO:0006281", "GO:0007049"),
				"Q00987":     set.NewStrings("GO:0006915"),
				"O15350":     set.NewStrings("GO:0006915", "GO:0007049"),
				"P00533":     set.NewStrings("GO:0007049"),
				"A0A024R161": set.NewStrings("GO:0006281"),
			},
		},
		reviewed: set.NewStrings("P04637", "P38398", "Q00987", "O15350", "P00533"),
	}
}

// enrichedSource has 100 background genes; fifteen "marker" terms are
// carried only by genes G000-G009 and a housekeeping term by every gene.
func enrichedSource() *fakeSource {
	f := &fakeSource{
		terms:    Terms{BiologicalProcess: {"GO:0008150": "biological_process"}},
		tables:   Tables{BiologicalProcess: {}},
		reviewed: set.NewStrings(),
	}
	for t := 0; t < 15; t++ {
		id := fmt.Sprintf("GO:%07d", 1000+t)
		f.terms[BiologicalProcess][id] = fmt.Sprintf("marker process %02d", t)
	}
	for g := 0; g < 100; g++ {
		gene := fmt.Sprintf("G%03d", g)
		terms := set.NewStrings("GO:0008150")
		if g < 10 {
			for t := 0; t < 15; t++ {
				terms.Add(fmt.Sprintf("GO:%07d", 1000+t))
			}
		}
		f.tables[BiologicalProcess][gene] = terms
		f.reviewed.Add(gene)
	}
	return f
}
