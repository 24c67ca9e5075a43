// Package review orchestrates one full build of the literature review:
// parse the export files, canonicalize and group, overlay the curated files,
// and lay out the graph. A build is stateless; Cache owns the result between
// builds.
package review

import (
	"time"

	"github.com/bibgraph/bibgraph/config"
	"github.com/bibgraph/bibgraph/curation"
	"github.com/bibgraph/bibgraph/graph"
	"github.com/bibgraph/bibgraph/logger"
	"github.com/bibgraph/bibgraph/ris"
	"github.com/bibgraph/bibgraph/taxonomy"
)

// Result is everything one build produces. All fields are owned by the build
// invocation; nothing is shared across builds.
type Result struct {
	Papers     []*ris.Paper       `json:"papers"`
	Queries    []taxonomy.Query   `json:"queries"`
	Hierarchy  taxonomy.Hierarchy `json:"hierarchy"`
	Highlights curation.Overlay   `json:"highlights"`
	Relevant   curation.Overlay   `json:"relevant"`
	Graph      *graph.Graph       `json:"graph"`
}

// Build runs the full pipeline once: resolve queries, parse each export
// file, build the hierarchy, match both curated files, lay out the graph.
// Only an unavailable source directory fails; everything else degrades to
// empty sections.
func Build(cfg *config.Config) (*Result, error) {
	log := logger.Named("review")
	start := time.Now()

	queries, err := cfg.ResolveQueries()
	if err != nil {
		return nil, err
	}

	var papers []*ris.Paper
	papersByQuery := make(map[string][]*ris.Paper, len(queries))
	for _, q := range queries {
		if q.SourceFile == "" {
			continue
		}
		parsed, err := ris.NewParser(q.SourceFile).ParseFile()
		if err != nil {
			log.Warnw("Skipping unreadable export file",
				"query", q.Name,
				"file", q.SourceFile,
				"error", err)
			continue
		}
		papersByQuery[q.Name] = parsed
		papers = append(papers, parsed...)
	}

	hierarchy := taxonomy.Build(queries, papersByQuery)

	matcher := curation.NewMatcher(hierarchy, papers, logger.Logger)
	highlights, err := matchCurated(cfg.NewestHighlightFile, matcher)
	if err != nil {
		return nil, err
	}
	relevant, err := matchCurated(cfg.NewestRelevanceFile, matcher)
	if err != nil {
		return nil, err
	}

	g := graph.Layout(hierarchy, queries, highlights, relevant)

	log.Infow("Build complete",
		"papers", len(papers),
		"queries", len(queries),
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"duration", time.Since(start))

	return &Result{
		Papers:     papers,
		Queries:    queries,
		Hierarchy:  hierarchy,
		Highlights: highlights,
		Relevant:   relevant,
		Graph:      g,
	}, nil
}

// matchCurated resolves one curated file and matches it into an overlay.
// An absent file yields an empty overlay.
func matchCurated(resolve func() (string, error), matcher *curation.Matcher) (curation.Overlay, error) {
	path, err := resolve()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return curation.NewOverlay(), nil
	}
	curated, err := ris.NewParser(path).ParseFile()
	if err != nil {
		logger.Named("review").Warnw("Skipping unreadable curated file",
			"file", path,
			"error", err)
		return curation.NewOverlay(), nil
	}
	return matcher.Match(curated), nil
}
