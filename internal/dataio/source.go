package dataio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/juju/collections/set"

	"github.com/olehluchkiv/goenrich/internal/geneontology"
)

// ErrUnknownOrganism is returned when no GOA file is known for an organism
// and no GAF URL was configured.
var ErrUnknownOrganism = errors.New("no GOA annotation file known for organism")

// goaProteomes maps NCBI taxonomy ids to the EBI GOA directory names.
var goaProteomes = map[int]string{
	9606:   "human",
	10090:  "mouse",
	10116:  "rat",
	7955:   "zebrafish",
	9031:   "chicken",
	9913:   "cow",
	9823:   "pig",
	9615:   "dog",
	7227:   "fly",
	6239:   "worm",
	559292: "yeast",
	3702:   "arabidopsis",
}

var _ geneontology.Source = (*Client)(nil)

// GAFURL returns the GOA annotation file URL for organism.
func (c *Client) GAFURL(organism int) (string, error) {
	if c.cfg.GAFURL != "" {
		return c.cfg.GAFURL, nil
	}
	name, ok := goaProteomes[organism]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownOrganism, organism)
	}
	base := strings.TrimSuffix(c.cfg.GOABaseURL, "/")
	return fmt.Sprintf("%s/%s/goa_%s.gaf.gz", base, strings.ToUpper(name), name), nil
}

// UniProtURL returns the UniProt stream query listing the accessions of
// organism.
func (c *Client) UniProtURL(organism int, swissprot bool) string {
	query := fmt.Sprintf("(organism_id:%d)", organism)
	if swissprot {
		query += " AND (reviewed:true)"
	}
	v := url.Values{}
	v.Set("format", "list")
	v.Set("query", query)
	return c.cfg.UniProtURL + "?" + v.Encode()
}

// GOAnnotations downloads the GO ontology and the organism's GOA file.
func (c *Client) GOAnnotations(ctx context.Context, organism int, aspects ...geneontology.Aspect) (geneontology.Terms, geneontology.Tables, error) {
	if len(aspects) == 0 {
		aspects = geneontology.Aspects
	}
	gafURL, err := c.GAFURL(organism)
	if err != nil {
		return nil, nil, err
	}

	oboReader, err := c.Open(ctx, c.cfg.OBOURL)
	if err != nil {
		return nil, nil, fmt.Errorf("GO ontology: %w", err)
	}
	allTerms, err := ParseOBO(oboReader)
	_ = oboReader.Close()
	if err != nil {
		return nil, nil, err
	}

	gafReader, err := c.Open(ctx, gafURL)
	if err != nil {
		return nil, nil, fmt.Errorf("GO annotations: %w", err)
	}
	tables, err := ParseGAF(gafReader, organism, aspects...)
	_ = gafReader.Close()
	if err != nil {
		return nil, nil, err
	}

	terms := make(geneontology.Terms, len(aspects))
	for _, a := range aspects {
		terms[a] = allTerms[a]
	}

	for _, a := range aspects {
		c.logger.Info("GO annotations parsed", "organism", organism, "aspect", string(a),
			"terms", len(terms[a]), "genes", len(tables[a]))
	}
	return terms, tables, nil
}

// AllUniprots lists the UniProt accessions of organism.
func (c *Client) AllUniprots(ctx context.Context, organism int, swissprot bool) (set.Strings, error) {
	r, err := c.Open(ctx, c.UniProtURL(organism, swissprot))
	if err != nil {
		return nil, fmt.Errorf("UniProt accessions: %w", err)
	}
	defer r.Close()

	accs, err := ParseAccessionList(r)
	if err != nil {
		return nil, err
	}
	c.logger.Info("UniProt accessions loaded", "organism", organism, "swissprot", swissprot, "count", accs.Size())
	return accs, nil
}

// ParseAccessionList reads one accession per line.
func ParseAccessionList(r io.Reader) (set.Strings, error) {
	accs := set.NewStrings()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		accs.Add(line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading accession list: %w", err)
	}
	return accs, nil
}
