package dataio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olehluchkiv/goenrich/internal/geneontology"
)

const testOBO = `format-version: 1.2
ontology: go

[Term]
id: GO:0005634
name: nucleus
namespace: cellular_component

[Term]
id: GO:0003677
name: DNA binding
namespace: molecular_function
def: "Any molecular function by which a gene product interacts selectively with DNA." [GOC:dph]

[Term]
id: GO:0006915
name: apoptotic process
namespace: biological_process
is_a: GO:0012501 ! programmed cell death

[Term]
id: GO:0000005
name: obsolete ribosomal chaperone activity
namespace: molecular_function
is_obsolete: true

[Typedef]
id: part_of
name: part of
namespace: external
`

func TestParseOBO(t *testing.T) {
	terms, err := ParseOBO(strings.NewReader(testOBO))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"GO:0005634": "nucleus"}, terms[geneontology.CellularComponent])
	assert.Equal(t, map[string]string{"GO:0003677": "DNA binding"}, terms[geneontology.MolecularFunction])
	assert.Equal(t, map[string]string{"GO:0006915": "apoptotic process"}, terms[geneontology.BiologicalProcess])
}

func TestParseOBO_Empty(t *testing.T) {
	terms, err := ParseOBO(strings.NewReader(""))
	require.NoError(t, err)
	for _, a := range geneontology.Aspects {
		assert.Empty(t, terms[a])
	}
}

func gafLine(cols ...string) string {
	return strings.Join(cols, "\t")
}

func testGAF() string {
	lines := []string{
		"!gaf-version: 2.2",
		"!generated-by: GOC",
		gafLine("UniProtKB", "P04637", "TP53", "", "GO:0005634", "PMID:1", "IDA", "", "C", "Cellular tumor antigen p53", "", "protein", "taxon:9606", "20200101", "UniProt"),
		gafLine("UniProtKB", "P04637", "TP53", "", "GO:0006915", "PMID:1", "IDA", "", "P", "Cellular tumor antigen p53", "", "protein", "taxon:9606", "20200101", "UniProt"),
		gafLine("UniProtKB", "P04637", "TP53", "enables", "GO:0003677", "PMID:1", "IDA", "", "F", "Cellular tumor antigen p53", "", "protein", "taxon:9606", "20200101", "UniProt"),
		gafLine("UniProtKB", "P38398", "BRCA1", "NOT|located_in", "GO:0005737", "PMID:2", "IDA", "", "C", "BRCA1", "", "protein", "taxon:9606", "20200101", "UniProt"),
		gafLine("UniProtKB", "P38398", "BRCA1", "", "GO:0006281", "PMID:2", "IMP", "", "P", "BRCA1", "", "protein", "taxon:9606|taxon:10633", "20200101", "UniProt"),
		gafLine("UniProtKB", "P02340", "Tp53", "", "GO:0005634", "PMID:3", "IDA", "", "C", "p53", "", "protein", "taxon:10090", "20200101", "UniProt"),
		gafLine("ComplexPortal", "CPX-1", "complex", "", "GO:0005634", "PMID:4", "IDA", "", "C", "complex", "", "complex", "taxon:9606", "20200101", "ComplexPortal"),
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestParseGAF(t *testing.T) {
	tables, err := ParseGAF(strings.NewReader(testGAF()), 9606)
	require.NoError(t, err)

	cc := tables[geneontology.CellularComponent]
	require.Contains(t, cc, "P04637")
	assert.Equal(t, []string{"GO:0005634"}, cc["P04637"].SortedValues())
	assert.NotContains(t, cc, "P38398", "NOT annotations are dropped")
	assert.NotContains(t, cc, "P02340", "other organisms are dropped")
	assert.NotContains(t, cc, "CPX-1", "non-UniProtKB rows are dropped")

	bp := tables[geneontology.BiologicalProcess]
	assert.Equal(t, []string{"GO:0006915"}, bp["P04637"].SortedValues())
	assert.Equal(t, []string{"GO:0006281"}, bp["P38398"].SortedValues())

	mf := tables[geneontology.MolecularFunction]
	assert.Equal(t, []string{"GO:0003677"}, mf["P04637"].SortedValues())
}

func TestParseGAF_AspectSubset(t *testing.T) {
	tables, err := ParseGAF(strings.NewReader(testGAF()), 9606, geneontology.BiologicalProcess)
	require.NoError(t, err)
	assert.Len(t, tables, 1)
	assert.Len(t, tables[geneontology.BiologicalProcess], 2)
}

func TestParseGAF_AnyOrganism(t *testing.T) {
	tables, err := ParseGAF(strings.NewReader(testGAF()), 0, geneontology.CellularComponent)
	require.NoError(t, err)
	assert.Contains(t, tables[geneontology.CellularComponent], "P02340")
}

func TestParseGAF_ShortLine(t *testing.T) {
	_, err := ParseGAF(strings.NewReader("!header\nUniProtKB\tP1\tX\n"), 9606)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestPrimaryTaxon(t *testing.T) {
	assert.Equal(t, 9606, primaryTaxon("taxon:9606"))
	assert.Equal(t, 9606, primaryTaxon("taxon:9606|taxon:11676"))
	assert.Equal(t, 0, primaryTaxon(""))
}

func TestParseAccessionList(t *testing.T) {
	accs, err := ParseAccessionList(strings.NewReader("P04637\n\nP38398\r\nP04637\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"P04637", "P38398"}, accs.SortedValues())
}
