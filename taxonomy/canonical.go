// Package taxonomy groups parsed papers into the collection → query →
// canonical-tag hierarchy used by the layout engine.
package taxonomy

import (
	"strings"
	"unicode"

	"github.com/bibgraph/bibgraph/ris"
)

// Canonicalizer collapses case variants of classification tags observed in one
// query into a single canonical display form per lowercased key. The table is
// local to one query: the same lowercased tag may canonicalize differently
// across queries.
type Canonicalizer struct {
	canonical map[string]string
}

// NewCanonicalizer builds the canonicalization table from every branch tag
// actually observed in the papers, in encounter order. For each lowercased
// form the variant with the most uppercase characters wins; ties keep the
// first-seen variant.
func NewCanonicalizer(papers []*ris.Paper) *Canonicalizer {
	variants := make(map[string][]string)
	var order []string

	for _, p := range papers {
		for _, tag := range p.BranchTags {
			key := strings.ToLower(tag)
			seen := false
			for _, v := range variants[key] {
				if v == tag {
					seen = true
					break
				}
			}
			if !seen {
				if len(variants[key]) == 0 {
					order = append(order, key)
				}
				variants[key] = append(variants[key], tag)
			}
		}
	}

	canonical := make(map[string]string, len(variants))
	for _, key := range order {
		canonical[key] = pickCanonical(variants[key])
	}
	return &Canonicalizer{canonical: canonical}
}

// pickCanonical selects the variant with the greatest uppercase count,
// preferring the earliest on ties.
func pickCanonical(variants []string) string {
	best := variants[0]
	bestCount := uppercaseCount(best)
	for _, v := range variants[1:] {
		if c := uppercaseCount(v); c > bestCount {
			best = v
			bestCount = c
		}
	}
	return best
}

func uppercaseCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsUpper(r) {
			n++
		}
	}
	return n
}

// Rewrite maps a tag list through the canonical table. Tags whose lowercased
// form is unknown pass through unchanged, which makes Rewrite idempotent.
func (c *Canonicalizer) Rewrite(tags []string) []string {
	if len(tags) == 0 {
		return tags
	}
	out := make([]string, len(tags))
	for i, tag := range tags {
		if canonical, ok := c.canonical[strings.ToLower(tag)]; ok {
			out[i] = canonical
		} else {
			out[i] = tag
		}
	}
	return out
}

// Canonical returns the canonical display form for a tag, matching
// case-insensitively.
func (c *Canonicalizer) Canonical(tag string) (string, bool) {
	v, ok := c.canonical[strings.ToLower(tag)]
	return v, ok
}
