package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/juju/collections/set"

	"github.com/olehluchkiv/goenrich/internal/dataio"
	"github.com/olehluchkiv/goenrich/internal/geneontology"
	"github.com/olehluchkiv/goenrich/internal/graph"
)

// AnnotateCmd attaches GO annotations to a graph read from an edge list.
type AnnotateCmd struct {
	Edges  string `arg:"" help:"Edge list, two gene identifiers per line ('-' for stdin)."`
	Aspect string `short:"a" help:"Comma-separated aspects (C, F, P)." default:"C,F,P"`
	Output string `short:"o" help:"Write JSON lines to this file instead of stdout." type:"path"`
}

type nodeRecord struct {
	Name string              `json:"name"`
	GO   map[string][]string `json:"go"`
}

func (c *AnnotateCmd) Run(s *session) error {
	aspects, err := geneontology.ParseAspects(c.Aspect)
	if err != nil {
		return err
	}

	in, err := openInput(c.Edges)
	if err != nil {
		return err
	}
	g, err := graph.ReadEdgeList(in)
	_ = in.Close()
	if err != nil {
		return err
	}
	s.logger.Info("graph loaded", "nodes", g.VCount(), "edges", g.ECount())

	src, err := s.source()
	if err != nil {
		return err
	}
	opts := geneontology.AnnotateOptions{
		Organism: s.organism,
		Aspects:  aspects,
		Progress: s.progress,
	}
	if err := geneontology.Annotate(s.ctx, g, src, opts, s.logger); err != nil {
		return err
	}

	out := s.out
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return writeNodes(out, g)
}

func writeNodes(w io.Writer, g *graph.Graph) error {
	enc := json.NewEncoder(w)
	for _, n := range g.Nodes() {
		rec := nodeRecord{Name: n.Name, GO: make(map[string][]string, len(geneontology.Aspects))}
		if annots, ok := geneontology.NodeAnnotations(n); ok {
			for asp, terms := range annots {
				rec.GO[string(asp)] = terms.SortedValues()
			}
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("writing node %s: %w", n.Name, err)
		}
	}
	return nil
}

// EnrichCmd runs a GO term enrichment of a gene list.
type EnrichCmd struct {
	Genes      string  `arg:"" help:"File with one UniProt accession per line ('-' for stdin)."`
	Aspect     string  `short:"a" help:"Aspect to test (C, F or P)." default:"P"`
	Alpha      float64 `help:"Family-wise error rate or false discovery rate." default:"0.05"`
	Correction string  `short:"c" help:"Multiple testing correction (bonferroni, sidak, holm, holm-sidak, simes-hochberg, hommel, fdr_bh, fdr_by)." default:"hommel"`
	Top        int     `short:"n" help:"Rows to print; 0 prints every term." default:"10"`
	All        bool    `help:"Include terms that are not significant."`
}

func (c *EnrichCmd) Run(s *session) error {
	aspect, err := geneontology.ParseAspect(c.Aspect)
	if err != nil {
		return err
	}

	in, err := openInput(c.Genes)
	if err != nil {
		return err
	}
	genes, err := dataio.ParseAccessionList(in)
	_ = in.Close()
	if err != nil {
		return err
	}
	if genes.IsEmpty() {
		return fmt.Errorf("no genes in %s", c.Genes)
	}

	src, err := s.source()
	if err != nil {
		return err
	}
	es, err := geneontology.NewEnrichmentSet(s.ctx, src, geneontology.EnrichmentOptions{
		Aspect:           aspect,
		Organism:         s.organism,
		Alpha:            c.Alpha,
		CorrectionMethod: c.Correction,
	}, s.logger)
	if err != nil {
		return err
	}
	if err := es.NewSet(genes); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "%s of %s genes found in the %s background of %s genes\n\n",
		humanize.Comma(int64(es.SetSize())), humanize.Comma(int64(genes.Size())),
		aspect.Namespace(), humanize.Comma(int64(es.PopSize())))

	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true
	table.AddRow("TERM", "NAME", "SET", "POP", "P", "CORRECTED")
	for _, e := range es.Result().TopList(c.Top, !c.All) {
		table.AddRow(e.ID, e.Name,
			fmt.Sprintf("%d/%d", e.SetCount, e.SetSize),
			fmt.Sprintf("%d/%d", e.PopCount, e.PopSize),
			formatP(e.PValue), formatP(e.PCorrected))
	}
	fmt.Fprintln(s.out, table)
	fmt.Fprint(s.out, es.String())
	return nil
}

func formatP(p float64) string {
	return fmt.Sprintf("%.3g", p)
}

// LookupCmd groups the annotation lookups.
type LookupCmd struct {
	Name LookupNameCmd `cmd:"" help:"Print the name of a GO term."`
	Term LookupTermCmd `cmd:"" help:"Print the GO term carrying a name."`
	Gene LookupGeneCmd `cmd:"" help:"Print the GO terms of a UniProt accession."`
}

type LookupNameCmd struct {
	Term string `arg:"" help:"GO term id, e.g. GO:0006915."`
}

func (c *LookupNameCmd) Run(s *session) error {
	a, err := loadAnnotation(s)
	if err != nil {
		return err
	}
	name, ok := a.Name(c.Term)
	if !ok {
		return fmt.Errorf("unknown GO term %q", c.Term)
	}
	fmt.Fprintln(s.out, name)
	return nil
}

type LookupTermCmd struct {
	Name []string `arg:"" help:"Term name, e.g. apoptotic process."`
}

func (c *LookupTermCmd) Run(s *session) error {
	a, err := loadAnnotation(s)
	if err != nil {
		return err
	}
	name := strings.Join(c.Name, " ")
	term, ok := a.Term(name)
	if !ok {
		return fmt.Errorf("no GO term named %q", name)
	}
	fmt.Fprintln(s.out, term)
	return nil
}

type LookupGeneCmd struct {
	Accession string `arg:"" help:"UniProt accession, e.g. P04637."`
	Aspect    string `short:"a" help:"Comma-separated aspects (C, F, P)." default:"C,F,P"`
}

func (c *LookupGeneCmd) Run(s *session) error {
	aspects, err := geneontology.ParseAspects(c.Aspect)
	if err != nil {
		return err
	}
	a, err := loadAnnotation(s)
	if err != nil {
		return err
	}

	table := uitable.New()
	table.MaxColWidth = 80
	table.AddRow("ASPECT", "TERM", "NAME")
	found := set.NewStrings()
	for _, asp := range aspects {
		for _, term := range a.Annot(c.Accession, asp).SortedValues() {
			name, _ := a.Name(term)
			table.AddRow(string(asp), term, name)
			found.Add(term)
		}
	}
	if found.IsEmpty() {
		return fmt.Errorf("no GO annotations for %s", c.Accession)
	}
	fmt.Fprintln(s.out, table)
	return nil
}

func loadAnnotation(s *session) (*geneontology.Annotation, error) {
	src, err := s.source()
	if err != nil {
		return nil, err
	}
	return geneontology.NewAnnotation(s.ctx, src, s.organism, s.logger)
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(s *session) error {
	fmt.Fprintf(s.out, "goenrich %s\n", version)
	return nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	return f, nil
}
