package geneontology

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/juju/collections/set"

	"github.com/olehluchkiv/goenrich/internal/graph"
	"github.com/olehluchkiv/goenrich/internal/progress"
)

// AttrGO is the node attribute holding a map[Aspect]set.Strings.
const AttrGO = "go"

// AnnotateOptions controls Annotate.
type AnnotateOptions struct {
	Organism int      // 0 means DefaultOrganism
	Aspects  []Aspect // empty means all aspects
	Progress io.Writer
}

// Annotate attaches GO annotations to every node of g, keyed by node name.
// Nodes without annotations keep empty sets.
func Annotate(ctx context.Context, g *graph.Graph, src Source, opts AnnotateOptions, logger *slog.Logger) error {
	logger = logger.With("component", "annotate")

	aspects := opts.Aspects
	if len(aspects) == 0 {
		aspects = Aspects
	}
	organism := opts.Organism
	if organism == 0 {
		organism = DefaultOrganism
	}

	for _, n := range g.Nodes() {
		n.Attrs[AttrGO] = map[Aspect]set.Strings{
			CellularComponent: set.NewStrings(),
			MolecularFunction: set.NewStrings(),
			BiologicalProcess: set.NewStrings(),
		}
	}

	_, annot, err := src.GOAnnotations(ctx, organism, aspects...)
	if err != nil {
		return fmt.Errorf("fetching GO annotations: %w", err)
	}

	var prg progress.Reporter = progress.Nop{}
	if opts.Progress != nil {
		prg = progress.New(g.VCount(), "Loading GO annotations", 9, opts.Progress, logger)
	}

	annotated := 0
	for _, n := range g.Nodes() {
		prg.Step()

		goAttr := n.Attrs[AttrGO].(map[Aspect]set.Strings)
		hit := false
		for _, asp := range aspects {
			if terms, ok := annot[asp][n.Name]; ok {
				goAttr[asp] = terms
				hit = true
			}
		}
		if hit {
			annotated++
		}
	}

	prg.Terminate()

	logger.Info("graph annotated", "nodes", g.VCount(), "annotated", annotated, "aspects", len(aspects))
	return nil
}

// LoadGO is the former name of Annotate.
var LoadGO = Annotate

// NodeAnnotations returns the GO annotations attached to n by Annotate.
func NodeAnnotations(n *graph.Node) (map[Aspect]set.Strings, bool) {
	v, ok := n.Attrs[AttrGO].(map[Aspect]set.Strings)
	return v, ok
}
