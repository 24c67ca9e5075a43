package ris

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `TI  - Deep learning for radiology reports
PY  - 2021/03/01
AB  - A study of transformer models
  applied to radiology.
AU  - Smith, Jane
AU  - Doe, John
DO  - 10.1000/xyz123
N1  - transformers, radiology
RN  - Radiology, Neuroscience
L1  - internal-pdf://1234/smith2021.pdf
T2  - Journal of Medical AI
VL  - 12
IS  - 3
SP  - 101-110
UR  - https://example.org/smith2021
KW  - deep learning
ID  - 42
ER
TI  - Untagged followup study
PY  - 2019
ER
AU  - Ghost, Writer
AB  - A record with no title is dropped
ER
`

func TestParseSampleExport(t *testing.T) {
	papers := Parse(sampleExport, "pubmed")
	require.Len(t, papers, 2, "titleless record must be dropped")

	p := papers[0]
	assert.Equal(t, "Deep learning for radiology reports", p.Title)
	require.NotNil(t, p.Year)
	assert.Equal(t, 2021, *p.Year)
	assert.Equal(t, "A study of transformer models\n  applied to radiology.", p.Abstract)
	assert.Equal(t, []string{"Smith, Jane", "Doe, John"}, p.Authors)
	assert.Equal(t, "10.1000/xyz123", p.DOI)
	assert.Equal(t, []string{"transformers", "radiology"}, p.UniqueSearchTerms)
	assert.Equal(t, []string{"Radiology", "Neuroscience"}, p.BranchTags)
	assert.Equal(t, "internal-pdf://1234/smith2021.pdf", p.Locator)
	assert.Equal(t, "Journal of Medical AI", p.Journal)
	assert.Equal(t, "12", p.Volume)
	assert.Equal(t, "3", p.Issue)
	assert.Equal(t, "101-110", p.Pages)
	assert.Equal(t, "https://example.org/smith2021", p.URL)
	assert.Equal(t, []string{"deep learning"}, p.Keywords)
	assert.Equal(t, 42, p.ID, "numeric ID field parses to int")
	assert.Equal(t, "pubmed", p.Collection)
}

func TestParseFallbackIdentifiers(t *testing.T) {
	content := "TI  - First\nER\nTI  - Second\nER\n"
	papers := Parse(content, "scopus")
	require.Len(t, papers, 2)
	assert.Equal(t, "paper_1", papers[0].ID)
	assert.Equal(t, "paper_2", papers[1].ID)
}

func TestParseEveryPaperHasTitle(t *testing.T) {
	papers := Parse(sampleExport, "pubmed")
	for _, p := range papers {
		assert.NotEmpty(t, p.Title)
	}
}

func TestParseIDTakesPriorityOverLB(t *testing.T) {
	content := "TI  - With both ids\nLB  - alt-77\nID  - 9\nER\n"
	papers := Parse(content, "x")
	require.Len(t, papers, 1)
	assert.Equal(t, 9, papers[0].ID)

	content = "TI  - With LB only\nLB  - alt-77\nER\n"
	papers = Parse(content, "x")
	require.Len(t, papers, 1)
	assert.Equal(t, "alt-77", papers[0].ID)
}

func TestParseStripsTrailingERArtifactFromTags(t *testing.T) {
	content := "TI  - Artifact\nRN  - oncology, imaging ER\nER\n"
	papers := Parse(content, "x")
	require.Len(t, papers, 1)
	assert.Equal(t, []string{"oncology", "imaging"}, papers[0].BranchTags)
}

func TestParseUnknownCodesIgnored(t *testing.T) {
	content := "TI  - Known\nZZ  - ignored value\nXQ9 - also ignored\nER\n"
	papers := Parse(content, "x")
	require.Len(t, papers, 1)
	assert.Equal(t, "Known", papers[0].Title)
}

func TestParseDuplicateAuthorsPreserved(t *testing.T) {
	content := "TI  - Dup authors\nAU  - Same, One\nAU  - Same, One\nER\n"
	papers := Parse(content, "x")
	require.Len(t, papers, 1)
	assert.Equal(t, []string{"Same, One", "Same, One"}, papers[0].Authors)
}

func TestCollectionFromFilename(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"pubmed_2024_01.txt", "pubmed"},
		{"/data/exports/arxiv_export.txt", "arxiv"},
		{"scopus.txt", "scopus"},
	}
	for _, tt := range tests {
		if got := CollectionFromFilename(tt.path); got != tt.want {
			t.Errorf("CollectionFromFilename(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestParseFileMissing(t *testing.T) {
	p := NewParser(filepath.Join(t.TempDir(), "nope_export.txt"))
	_, err := p.ParseFile()
	require.Error(t, err)
}

func TestParseFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pubmed_roundtrip.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleExport), 0o644))

	p := NewParser(path)
	assert.Equal(t, "pubmed", p.Collection)

	papers, err := p.ParseFile()
	require.NoError(t, err)
	assert.Len(t, papers, 2)
}

func TestIdentifierKey(t *testing.T) {
	withInt := &Paper{ID: 42}
	key, ok := withInt.IdentifierKey()
	assert.True(t, ok)
	assert.Equal(t, "42", key)

	withString := &Paper{ID: "paper_3"}
	key, ok = withString.IdentifierKey()
	assert.True(t, ok)
	assert.Equal(t, "paper_3", key)

	_, ok = (&Paper{}).IdentifierKey()
	assert.False(t, ok)
}
