package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibgraph/bibgraph/ris"
)

func tagged(tags ...string) *ris.Paper {
	return &ris.Paper{Title: "t", BranchTags: tags}
}

func TestCanonicalMostUppercaseWins(t *testing.T) {
	canon := NewCanonicalizer([]*ris.Paper{tagged("ct"), tagged("CT"), tagged("Ct")})
	got, ok := canon.Canonical("ct")
	require.True(t, ok)
	assert.Equal(t, "CT", got)
}

func TestCanonicalTieKeepsFirstSeen(t *testing.T) {
	// Equal uppercase counts: the first-seen variant wins.
	canon := NewCanonicalizer([]*ris.Paper{tagged("Ct"), tagged("cT")})
	got, ok := canon.Canonical("ct")
	require.True(t, ok)
	assert.Equal(t, "Ct", got)
}

func TestRewriteIdempotent(t *testing.T) {
	papers := []*ris.Paper{tagged("radiology"), tagged("Radiology"), tagged("MRI")}
	canon := NewCanonicalizer(papers)

	once := canon.Rewrite([]string{"radiology", "MRI"})
	assert.Equal(t, []string{"Radiology", "MRI"}, once)

	twice := canon.Rewrite(once)
	assert.Equal(t, once, twice)
}

func TestRewriteUnknownTagPassesThrough(t *testing.T) {
	canon := NewCanonicalizer([]*ris.Paper{tagged("CT")})
	assert.Equal(t, []string{"Ultrasound"}, canon.Rewrite([]string{"Ultrasound"}))
}

func TestRewriteEmpty(t *testing.T) {
	canon := NewCanonicalizer(nil)
	assert.Empty(t, canon.Rewrite(nil))
}
