package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bibgraph/bibgraph/errors"
	"github.com/bibgraph/bibgraph/logger"
	"github.com/bibgraph/bibgraph/taxonomy"
)

// NewestByPrefix finds the most recently modified "<prefix>*.txt" file in
// dir. A missing directory or no matching file is an empty-result condition,
// not an error: both return ("", nil).
func NewestByPrefix(dir, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, "reading directory %s", dir)
	}

	newest := ""
	var newestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".txt") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = name
			newestMod = info.ModTime()
		}
	}

	if newest == "" {
		return "", nil
	}
	return filepath.Join(dir, newest), nil
}

// ResolveQueries builds the immutable query table by resolving each
// configured prefix to its newest export file. A query whose prefix matches
// nothing is kept with an empty SourceFile so it still appears in the
// resolved table; only an unavailable source directory is fatal.
func (c *Config) ResolveQueries() ([]taxonomy.Query, error) {
	if _, err := os.Stat(c.Sources.Dir); err != nil {
		return nil, errors.Wrapf(errors.ErrNoSourceDir, "%s", c.Sources.Dir)
	}

	log := logger.Named("config")
	queries := make([]taxonomy.Query, 0, len(c.Queries))
	for _, name := range c.QueryNames() {
		qc := c.Queries[name]
		sourceFile, err := NewestByPrefix(c.Sources.Dir, qc.Prefix)
		if err != nil {
			return nil, err
		}
		if sourceFile == "" {
			log.Warnw("No export file found for query",
				"query", name,
				"prefix", qc.Prefix,
				"dir", c.Sources.Dir)
		}
		queries = append(queries, taxonomy.Query{
			Name:       name,
			Query:      qc.Query,
			SourceFile: sourceFile,
		})
	}

	return queries, nil
}

// NewestHighlightFile resolves the curated highlight file, or "" when absent.
func (c *Config) NewestHighlightFile() (string, error) {
	return NewestByPrefix(c.GetCuratedDir(), c.Sources.HighlightPrefix)
}

// NewestRelevanceFile resolves the curated relevance file, or "" when absent.
func (c *Config) NewestRelevanceFile() (string, error) {
	return NewestByPrefix(c.GetCuratedDir(), c.Sources.RelevancePrefix)
}
