// Package graph turns the classification hierarchy and its curated overlays
// into a positioned node/edge graph for the visualization front end.
package graph

import (
	"fmt"

	"github.com/bibgraph/bibgraph/ris"
)

// Node types, a closed set. Node ids are "<type>_<ordinal>" with per-type
// ordinals scoped to one Layout call.
const (
	TypeCollection         = "collection"
	TypeQuery              = "query"
	TypeTag                = "tag"
	TypeCuratedHighlight   = "curated-highlight"
	TypeUncategorized      = "uncategorized"
	TypeAggregateHighlight = "aggregate-highlight"
	TypeAggregateRelevant  = "aggregate-relevant"
)

// Graph is the complete structure handed to the front end.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one positioned graph node.
type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// Position is a 2D layout coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is a node's payload: always a label, optionally the embedded
// papers with their count, and for query nodes the query string.
type NodeData struct {
	Label      string       `json:"label"`
	Query      string       `json:"query,omitempty"`
	Tag        string       `json:"tag,omitempty"`
	Collection string       `json:"collection,omitempty"`
	Papers     []*ris.Paper `json:"papers,omitempty"`
	PaperCount int          `json:"paper_count,omitempty"`
}

// Edge connects two nodes. Style is the rendering hint consumed by the front
// end's edge renderer.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Style  string `json:"type"`
}

// idGenerator hands out per-type ordinal ids. One generator is created per
// Layout call so builds stay independent and testable in isolation.
type idGenerator struct {
	counters map[string]int
}

func newIDGenerator() *idGenerator {
	return &idGenerator{counters: make(map[string]int)}
}

func (g *idGenerator) next(nodeType string) string {
	g.counters[nodeType]++
	return fmt.Sprintf("%s_%d", nodeType, g.counters[nodeType])
}

// newEdge builds an edge between two node ids with the default style.
func newEdge(source, target string) Edge {
	return Edge{
		ID:     fmt.Sprintf("%s-%s", source, target),
		Source: source,
		Target: target,
		Style:  edgeStyle,
	}
}
