package curation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bibgraph/bibgraph/ris"
	"github.com/bibgraph/bibgraph/taxonomy"
)

func testMatcher(t *testing.T, papers []*ris.Paper) (*Matcher, taxonomy.Hierarchy) {
	t.Helper()
	h := taxonomy.Build([]taxonomy.Query{{Name: "Q1"}}, map[string][]*ris.Paper{"Q1": papers})
	return NewMatcher(h, papers, zap.NewNop().Sugar()), h
}

func corpus() []*ris.Paper {
	return []*ris.Paper{
		{ID: 1, Title: "Alpha study", DOI: "10.1/alpha", Collection: "pubmed", BranchTags: []string{"CT", "MRI"}},
		{ID: 2, Title: "Beta study", DOI: "10.1/beta", Collection: "pubmed", BranchTags: []string{"CT"}},
		{ID: 3, Title: "Gamma study", DOI: "10.1/gamma", Collection: "pubmed", BranchTags: []string{"CT"}},
	}
}

func TestMatchByDOIPlacesIntoLeastPopulatedBucket(t *testing.T) {
	m, _ := testMatcher(t, corpus())

	// Title differs, DOI matches paper 1. Its tags resolve to CT (3 papers)
	// and MRI (1 paper); MRI has the fewest.
	curated := []*ris.Paper{{
		Title:      "A completely different title",
		DOI:        "10.1/ALPHA ",
		BranchTags: []string{"ct", "mri"},
	}}

	overlay := m.Match(curated)
	buckets := overlay.Buckets("pubmed", "Q1")
	require.NotNil(t, buckets)
	require.Len(t, buckets["MRI"], 1)
	assert.Equal(t, 1, buckets["MRI"][0].ID)
	assert.Empty(t, buckets["CT"])
}

func TestMatchByNormalizedTitle(t *testing.T) {
	m, _ := testMatcher(t, corpus())

	curated := []*ris.Paper{{
		Title:      "  BETA STUDY ",
		BranchTags: []string{"CT"},
	}}

	overlay := m.Match(curated)
	require.Len(t, overlay.Buckets("pubmed", "Q1")["CT"], 1)
	assert.Equal(t, 2, overlay.Buckets("pubmed", "Q1")["CT"][0].ID)
}

func TestMatchTieKeepsFirstCuratedTag(t *testing.T) {
	papers := []*ris.Paper{
		{ID: 1, Title: "One", Collection: "pubmed", BranchTags: []string{"PET", "MRI"}},
	}
	m, _ := testMatcher(t, papers)

	// Both buckets hold one paper; the curated item lists MRI first.
	curated := []*ris.Paper{{Title: "One", BranchTags: []string{"MRI", "PET"}}}

	overlay := m.Match(curated)
	buckets := overlay.Buckets("pubmed", "Q1")
	require.Len(t, buckets["MRI"], 1)
	assert.Empty(t, buckets["PET"])
}

func TestUnmatchedCuratedItemDropped(t *testing.T) {
	m, _ := testMatcher(t, corpus())

	overlay := m.Match([]*ris.Paper{{Title: "No such paper", DOI: "10.9/none", BranchTags: []string{"CT"}}})
	assert.Empty(t, overlay)
}

func TestUnresolvableTagsContributeNothing(t *testing.T) {
	m, _ := testMatcher(t, corpus())

	overlay := m.Match([]*ris.Paper{{Title: "Alpha study", BranchTags: []string{"Ultrasound"}}})
	assert.Empty(t, overlay)
}

func TestEmptyTitleAndDOINeverMatch(t *testing.T) {
	papers := []*ris.Paper{{ID: 1, Title: "Has title", Collection: "pubmed", BranchTags: []string{"CT"}}}
	m, _ := testMatcher(t, papers)

	// A curated item with neither title nor DOI must not match papers whose
	// DOI is also empty.
	overlay := m.Match([]*ris.Paper{{BranchTags: []string{"CT"}}})
	assert.Empty(t, overlay)
}

func TestPlacementCountsComeFromBaseHierarchy(t *testing.T) {
	m, _ := testMatcher(t, corpus())

	// Two curated items both resolve to MRI as the least-populated bucket:
	// placements must not feed back into the counts.
	curated := []*ris.Paper{
		{Title: "Alpha study", BranchTags: []string{"CT", "MRI"}},
		{Title: "Alpha study", BranchTags: []string{"CT", "MRI"}},
	}

	overlay := m.Match(curated)
	assert.Len(t, overlay.Buckets("pubmed", "Q1")["MRI"], 2)
}
