// Package curation overlays curator-maintained record subsets onto an already
// built hierarchy by identity-matching curated items to parsed papers.
package curation

import (
	"strings"

	"go.uber.org/zap"

	"github.com/bibgraph/bibgraph/ris"
	"github.com/bibgraph/bibgraph/taxonomy"
)

// Overlay mirrors the hierarchy nesting but holds only the buckets populated
// by curated matching.
type Overlay = taxonomy.Hierarchy

// NewOverlay returns an empty overlay map.
func NewOverlay() Overlay {
	return make(Overlay)
}

// Matcher places curated items into overlay buckets of an existing hierarchy.
//
// Matching scans all parsed papers linearly for every curated item, an
// O(curated × total) cost that dominates the build. That is acceptable at the
// expected corpus sizes (tens of thousands of records); if corpora grow, the
// first rework is an index keyed by normalized title and DOI.
type Matcher struct {
	hierarchy taxonomy.Hierarchy
	papers    []*ris.Paper
	logger    *zap.SugaredLogger
}

// NewMatcher creates a matcher over the base hierarchy and the flat paper
// list in encounter order.
func NewMatcher(hierarchy taxonomy.Hierarchy, papers []*ris.Paper, logger *zap.SugaredLogger) *Matcher {
	return &Matcher{
		hierarchy: hierarchy,
		papers:    papers,
		logger:    logger.Named("curation"),
	}
}

// Match places each curated item into the overlay bucket of the matched
// paper's query whose base population is smallest among the item's own
// resolvable tags. Items that match no paper, or whose tags resolve to no
// existing bucket, contribute nothing.
func (m *Matcher) Match(curated []*ris.Paper) Overlay {
	overlay := NewOverlay()
	// Base bucket populations are read once per run; placements do not feed
	// back into the counts.
	counts := m.bucketCounts()

	matched := 0
	for _, item := range curated {
		paper := m.matchPaper(item)
		if paper == nil {
			m.logger.Debugw("Curated item matched no paper", "title", item.Title)
			continue
		}
		matched++

		if len(item.BranchTags) == 0 {
			continue
		}

		collection, query, ok := m.locate(paper)
		if !ok {
			continue
		}

		tag, ok := m.selectTag(item.BranchTags, counts[collection][query], m.hierarchy.Buckets(collection, query))
		if !ok {
			m.logger.Debugw("Curated item tags resolve to no bucket",
				"title", item.Title, "tags", item.BranchTags)
			continue
		}

		overlay.Add(collection, query, tag, paper)
	}

	m.logger.Infow("Matched curated items", "curated", len(curated), "matched", matched)
	return overlay
}

// matchPaper finds the first paper, in encounter order, whose normalized
// title or DOI equals the curated item's (both sides non-empty).
func (m *Matcher) matchPaper(item *ris.Paper) *ris.Paper {
	title := normalize(item.Title)
	doi := normalize(item.DOI)

	for _, p := range m.papers {
		if title != "" {
			if existing := normalize(p.Title); existing != "" && existing == title {
				return p
			}
		}
		if doi != "" {
			if existing := normalize(p.DOI); existing != "" && existing == doi {
				return p
			}
		}
	}
	return nil
}

// locate finds which (collection, query) holds the paper, by linear search
// over the hierarchy.
func (m *Matcher) locate(paper *ris.Paper) (collection, query string, ok bool) {
	for _, c := range m.hierarchy.Collections() {
		for _, q := range m.hierarchy.Queries(c) {
			for _, bucket := range m.hierarchy.Buckets(c, q) {
				for _, p := range bucket {
					if p == paper {
						return c, q, true
					}
				}
			}
		}
	}
	return "", "", false
}

// selectTag resolves the curated item's raw tags against existing bucket keys
// case-insensitively and picks the resolvable tag whose bucket holds the
// fewest papers. Ties keep the tag appearing first in the item's own list.
func (m *Matcher) selectTag(rawTags []string, counts map[string]int, buckets map[string][]*ris.Paper) (string, bool) {
	best := ""
	bestCount := -1

	for _, raw := range rawTags {
		canonical, ok := resolveTag(raw, buckets)
		if !ok {
			continue
		}
		count := counts[canonical]
		if bestCount == -1 || count < bestCount {
			best = canonical
			bestCount = count
		}
	}

	return best, bestCount != -1
}

// resolveTag matches a raw tag against bucket keys case-insensitively.
func resolveTag(raw string, buckets map[string][]*ris.Paper) (string, bool) {
	want := strings.ToLower(raw)
	for key := range buckets {
		if strings.ToLower(key) == want {
			return key, true
		}
	}
	return "", false
}

// bucketCounts snapshots the base hierarchy's bucket sizes.
func (m *Matcher) bucketCounts() map[string]map[string]map[string]int {
	counts := make(map[string]map[string]map[string]int, len(m.hierarchy))
	for collection, queries := range m.hierarchy {
		counts[collection] = make(map[string]map[string]int, len(queries))
		for query, buckets := range queries {
			counts[collection][query] = make(map[string]int, len(buckets))
			for tag, papers := range buckets {
				counts[collection][query][tag] = len(papers)
			}
		}
	}
	return counts
}

// normalize lowercases and trims text for identity comparison.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
