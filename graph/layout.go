package graph

import (
	"sort"
	"strings"

	"github.com/bibgraph/bibgraph/ris"
	"github.com/bibgraph/bibgraph/taxonomy"
)

// Layout materializes the full node and edge lists for a hierarchy plus its
// two overlays. Positions are a pure function of the hierarchy's structure
// and label text; an empty hierarchy yields empty (non-nil) lists.
func Layout(h taxonomy.Hierarchy, queries []taxonomy.Query, highlights, relevant taxonomy.Hierarchy) *Graph {
	l := &layouter{
		graph:     &Graph{Nodes: []Node{}, Edges: []Edge{}},
		ids:       newIDGenerator(),
		queryMeta: make(map[string]taxonomy.Query, len(queries)),
	}
	for _, q := range queries {
		l.queryMeta[q.Name] = q
	}

	for i, collection := range h.Collections() {
		l.placeCollection(h, highlights, relevant, collection,
			collectionStartX+float64(i)*collectionPitch)
	}

	return l.graph
}

type layouter struct {
	graph     *Graph
	ids       *idGenerator
	queryMeta map[string]taxonomy.Query
}

func (l *layouter) addNode(nodeType string, x, y float64, data NodeData) string {
	id := l.ids.next(nodeType)
	l.graph.Nodes = append(l.graph.Nodes, Node{
		ID:       id,
		Type:     nodeType,
		Position: Position{X: x, Y: y},
		Data:     data,
	})
	return id
}

func (l *layouter) addEdge(source, target string) {
	l.graph.Edges = append(l.graph.Edges, newEdge(source, target))
}

// placeCollection lays out one collection and everything hanging off it.
func (l *layouter) placeCollection(h, highlights, relevant taxonomy.Hierarchy, collection string, x float64) {
	collectionID := l.addNode(TypeCollection, x, collectionY, NodeData{
		Label:      strings.ToUpper(collection),
		Collection: collection,
	})

	queryNames := h.Queries(collection)
	queryY := collectionY + queryPitch
	queryStartX := x - float64(len(queryNames)-1)*querySpacing/2

	// Anchor for the aggregate nodes: the first query's x, or the collection
	// itself when the collection has no queries.
	anchorX := x
	maxColumnBottom := 0.0

	var highlightIDs []string
	var highlightPapers []*ris.Paper

	for qi, queryName := range queryNames {
		queryX := queryStartX + float64(qi)*querySpacing
		if qi == 0 {
			anchorX = queryX
		}

		meta := l.queryMeta[queryName]
		queryString := meta.Query
		if queryString == "" {
			queryString = queryName
		}
		queryID := l.addNode(TypeQuery, queryX, queryY, NodeData{
			Label: queryName,
			Query: queryString,
		})
		l.addEdge(collectionID, queryID)

		buckets := h.Buckets(collection, queryName)
		overlayBuckets := highlights.Buckets(collection, queryName)

		// Tag nodes form a vertical column under the query, spaced by each
		// label's estimated extent, the column centered on the query's x.
		tagY := queryY + tagPitch
		for _, tag := range h.Tags(collection, queryName) {
			papers := buckets[tag]
			tagID := l.addNode(TypeTag, queryX, tagY, NodeData{
				Label:      tag,
				Tag:        tag,
				Papers:     papers,
				PaperCount: len(papers),
			})
			l.addEdge(queryID, tagID)

			if curated := overlayBuckets[tag]; len(curated) > 0 {
				highlightID := l.addNode(TypeCuratedHighlight, queryX+highlightOffsetX, tagY, NodeData{
					Label:      "Curated highlights",
					Tag:        tag,
					Papers:     curated,
					PaperCount: len(curated),
				})
				l.addEdge(tagID, highlightID)
				highlightIDs = append(highlightIDs, highlightID)
				highlightPapers = append(highlightPapers, curated...)
			}

			extent := labelExtent(tag)
			if bottom := tagY + extent; bottom > maxColumnBottom {
				maxColumnBottom = bottom
			}
			tagY += extent + tagGap
		}
	}

	// One uncategorized node per collection, aggregating every query's
	// uncategorized bucket, placed as a sibling of the collection node.
	var uncategorized []*ris.Paper
	for _, queryName := range queryNames {
		uncategorized = append(uncategorized, h.Buckets(collection, queryName)[taxonomy.Uncategorized]...)
	}
	uncategorizedID := ""
	if len(uncategorized) > 0 {
		uncategorizedID = l.addNode(TypeUncategorized, x+uncategorizedOffsetX, collectionY, NodeData{
			Label:      "Found outside search",
			Collection: collection,
			Papers:     uncategorized,
			PaperCount: len(uncategorized),
		})
	}

	aggregateY := maxColumnBottom + aggregateOffsetY
	if maxColumnBottom == 0 {
		aggregateY = collectionY + queryPitch + tagPitch + aggregateOffsetY
	}

	// Aggregate-highlight: union of all curated-highlight payloads plus the
	// collection's uncategorized papers, deduplicated by identifier.
	aggregateID := ""
	if len(highlightIDs) > 0 || len(uncategorized) > 0 {
		combined := dedupeByIdentifier(append(append([]*ris.Paper{}, highlightPapers...), uncategorized...))
		if len(combined) > 0 {
			aggregateID = l.addNode(TypeAggregateHighlight, anchorX, aggregateY, NodeData{
				Label:      "Curated highlights",
				Papers:     combined,
				PaperCount: len(combined),
			})
			for _, id := range highlightIDs {
				l.addEdge(id, aggregateID)
			}
			if uncategorizedID != "" {
				l.addEdge(uncategorizedID, aggregateID)
			}
		}
	}

	// Aggregate-relevant: all relevance-overlay papers for the collection,
	// edged only from the aggregate-highlight node.
	var relevantPapers []*ris.Paper
	for _, queryName := range relevant.Queries(collection) {
		buckets := relevant.Buckets(collection, queryName)
		for _, tag := range sortedBucketTags(buckets) {
			relevantPapers = append(relevantPapers, buckets[tag]...)
		}
	}
	if deduped := dedupeByIdentifier(relevantPapers); len(deduped) > 0 {
		relevantX := anchorX + aggregateRelevantOffsetX
		if aggregateID != "" {
			relevantX = l.nodeX(aggregateID) + aggregateRelevantOffsetX
		}
		relevantID := l.addNode(TypeAggregateRelevant, relevantX, aggregateY, NodeData{
			Label:      "Most relevant",
			Papers:     deduped,
			PaperCount: len(deduped),
		})
		if aggregateID != "" {
			l.addEdge(aggregateID, relevantID)
		}
	}
}

// nodeX looks up a placed node's x coordinate.
func (l *layouter) nodeX(id string) float64 {
	for i := range l.graph.Nodes {
		if l.graph.Nodes[i].ID == id {
			return l.graph.Nodes[i].Position.X
		}
	}
	return 0
}

// labelExtent estimates a tag node's vertical extent from its label length:
// a simple wrap at tagCharsPerLine characters, tagLineHeight per line.
func labelExtent(label string) float64 {
	lines := (len(label) + tagCharsPerLine - 1) / tagCharsPerLine
	if lines < 1 {
		lines = 1
	}
	return float64(lines) * tagLineHeight
}

// dedupeByIdentifier drops duplicate papers sharing a non-null identifier,
// preserving order. Papers without an identifier are always kept.
func dedupeByIdentifier(papers []*ris.Paper) []*ris.Paper {
	if len(papers) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(papers))
	out := make([]*ris.Paper, 0, len(papers))
	for _, p := range papers {
		key, ok := p.IdentifierKey()
		if !ok {
			out = append(out, p)
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

func sortedBucketTags(buckets map[string][]*ris.Paper) []string {
	tags := make([]string, 0, len(buckets))
	for tag := range buckets {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		li, lj := strings.ToLower(tags[i]), strings.ToLower(tags[j])
		if li != lj {
			return li < lj
		}
		return tags[i] < tags[j]
	})
	return tags
}
