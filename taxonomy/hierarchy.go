package taxonomy

import (
	"sort"
	"strings"

	"github.com/bibgraph/bibgraph/ris"
)

// Uncategorized is the reserved tag key for papers with an empty tag list.
const Uncategorized = "uncategorized"

// Query is one named classification scope: a query string plus the export
// file it resolved to. Constructed once from configuration before parsing,
// immutable afterward.
type Query struct {
	Name       string `json:"name"`
	Query      string `json:"query"`
	SourceFile string `json:"source_file"`
}

// Hierarchy nests papers as collection → query → canonical tag → ordered
// papers (insertion order). Buckets intentionally fan out: a paper with N
// tags appears in N buckets.
type Hierarchy map[string]map[string]map[string][]*ris.Paper

// Add appends a paper to a bucket, creating intermediate maps as needed.
func (h Hierarchy) Add(collection, query, tag string, paper *ris.Paper) {
	queries, ok := h[collection]
	if !ok {
		queries = make(map[string]map[string][]*ris.Paper)
		h[collection] = queries
	}
	buckets, ok := queries[query]
	if !ok {
		buckets = make(map[string][]*ris.Paper)
		queries[query] = buckets
	}
	buckets[tag] = append(buckets[tag], paper)
}

// Buckets returns the tag buckets for a query, or nil when absent.
func (h Hierarchy) Buckets(collection, query string) map[string][]*ris.Paper {
	if queries, ok := h[collection]; ok {
		return queries[query]
	}
	return nil
}

// Collections returns the collection names sorted case-insensitively, so
// rendering is deterministic regardless of map iteration order.
func (h Hierarchy) Collections() []string {
	return sortedKeysFold(len(h), func(f func(string)) {
		for name := range h {
			f(name)
		}
	})
}

// Queries returns a collection's query names sorted case-insensitively.
func (h Hierarchy) Queries(collection string) []string {
	queries := h[collection]
	return sortedKeysFold(len(queries), func(f func(string)) {
		for name := range queries {
			f(name)
		}
	})
}

// Tags returns a query's tag keys sorted case-insensitively, excluding the
// reserved uncategorized bucket.
func (h Hierarchy) Tags(collection, query string) []string {
	buckets := h.Buckets(collection, query)
	tags := make([]string, 0, len(buckets))
	for tag := range buckets {
		if tag == Uncategorized {
			continue
		}
		tags = append(tags, tag)
	}
	sortFold(tags)
	return tags
}

// Build files each query's papers under their canonicalized tags. Tag
// canonicalization runs once per query before grouping; papers with an empty
// tag list go to the uncategorized bucket. Papers are also rewritten in place
// so downstream consumers see canonical tags.
func Build(queries []Query, papersByQuery map[string][]*ris.Paper) Hierarchy {
	h := make(Hierarchy)

	for _, q := range queries {
		papers := papersByQuery[q.Name]
		if len(papers) == 0 {
			continue
		}
		canon := NewCanonicalizer(papers)

		for _, paper := range papers {
			paper.BranchTags = canon.Rewrite(paper.BranchTags)
			if len(paper.BranchTags) == 0 {
				h.Add(paper.Collection, q.Name, Uncategorized, paper)
				continue
			}
			for _, tag := range paper.BranchTags {
				h.Add(paper.Collection, q.Name, tag, paper)
			}
		}
	}

	return h
}

func sortFold(names []string) {
	sort.Slice(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})
}

func sortedKeysFold(n int, each func(func(string))) []string {
	names := make([]string, 0, n)
	each(func(name string) { names = append(names, name) })
	sortFold(names)
	return names
}
