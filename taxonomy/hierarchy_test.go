package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibgraph/bibgraph/ris"
)

func paper(collection, title string, tags ...string) *ris.Paper {
	return &ris.Paper{ID: title, Title: title, Collection: collection, BranchTags: tags}
}

func TestBuildCaseVariantsShareOneBucket(t *testing.T) {
	papers := []*ris.Paper{
		paper("pubmed", "a", "Radiology"),
		paper("pubmed", "b", "radiology"),
	}
	h := Build([]Query{{Name: "Q1"}}, map[string][]*ris.Paper{"Q1": papers})

	buckets := h.Buckets("pubmed", "Q1")
	require.Len(t, buckets, 1)
	require.Contains(t, buckets, "Radiology")
	assert.Len(t, buckets["Radiology"], 2)
}

func TestBuildFanOutAcrossTags(t *testing.T) {
	papers := []*ris.Paper{paper("pubmed", "a", "CT", "MRI")}
	h := Build([]Query{{Name: "Q1"}}, map[string][]*ris.Paper{"Q1": papers})

	buckets := h.Buckets("pubmed", "Q1")
	assert.Len(t, buckets["CT"], 1)
	assert.Len(t, buckets["MRI"], 1)
}

func TestBuildUncategorized(t *testing.T) {
	papers := []*ris.Paper{
		paper("pubmed", "tagged", "CT"),
		paper("pubmed", "untagged"),
	}
	h := Build([]Query{{Name: "Q1"}}, map[string][]*ris.Paper{"Q1": papers})

	buckets := h.Buckets("pubmed", "Q1")
	require.Len(t, buckets[Uncategorized], 1)
	assert.Equal(t, "untagged", buckets[Uncategorized][0].Title)
	// The untagged paper appears nowhere else.
	assert.Len(t, buckets["CT"], 1)
	assert.Len(t, buckets, 2)
}

func TestBuildCanonicalTableIsPerQuery(t *testing.T) {
	byQuery := map[string][]*ris.Paper{
		"Q1": {paper("pubmed", "a", "CT"), paper("pubmed", "b", "ct")},
		"Q2": {paper("arxiv", "c", "ct")},
	}
	h := Build([]Query{{Name: "Q1"}, {Name: "Q2"}}, byQuery)

	require.Contains(t, h.Buckets("pubmed", "Q1"), "CT")
	// Q2 never saw the uppercase variant, so its key stays lowercase.
	require.Contains(t, h.Buckets("arxiv", "Q2"), "ct")
}

func TestTagsSortedCaseInsensitivelyExcludingUncategorized(t *testing.T) {
	papers := []*ris.Paper{
		paper("pubmed", "a", "zebra"),
		paper("pubmed", "b", "Alpha"),
		paper("pubmed", "c", "beta"),
		paper("pubmed", "d"),
	}
	h := Build([]Query{{Name: "Q1"}}, map[string][]*ris.Paper{"Q1": papers})

	assert.Equal(t, []string{"Alpha", "beta", "zebra"}, h.Tags("pubmed", "Q1"))
}

func TestBuildEmpty(t *testing.T) {
	h := Build(nil, nil)
	assert.Empty(t, h)
	assert.Empty(t, h.Collections())
	assert.Nil(t, h.Buckets("x", "y"))
}

func TestCollectionsAndQueriesSorted(t *testing.T) {
	byQuery := map[string][]*ris.Paper{
		"Zeta":  {paper("scopus", "a", "x")},
		"alpha": {paper("pubmed", "b", "y")},
	}
	h := Build([]Query{{Name: "Zeta"}, {Name: "alpha"}}, byQuery)

	assert.Equal(t, []string{"pubmed", "scopus"}, h.Collections())
	assert.Equal(t, []string{"alpha"}, h.Queries("pubmed"))
}
