package ris

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/bibgraph/bibgraph/errors"
)

var (
	// recordSentinel terminates a record: "ER" alone on its line, trailing
	// whitespace allowed.
	recordSentinel = regexp.MustCompile(`(?m)^ER[ \t]*$`)

	// fieldStart matches the first line of a field: 2-3 uppercase
	// alphanumerics, whitespace, dash, whitespace, value.
	fieldStart = regexp.MustCompile(`^([A-Z0-9]{2,3})[ \t]+-[ \t]+(.+)$`)

	yearRun = regexp.MustCompile(`\d{4}`)
)

// Parser reads one export file into Paper records. The source collection name
// is derived once from the file name and stamped onto every retained paper.
type Parser struct {
	path       string
	Collection string
}

// NewParser creates a parser for the given export file path.
func NewParser(path string) *Parser {
	return &Parser{
		path:       path,
		Collection: CollectionFromFilename(path),
	}
}

// CollectionFromFilename derives the source-collection name: the first
// underscore-delimited token of the file's base name, extension stripped.
func CollectionFromFilename(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.Split(stem, "_")
	if len(parts) == 0 || parts[0] == "" {
		return "unknown"
	}
	return parts[0]
}

// ParseFile reads and parses the export file. File access failures are
// surfaced to the caller; there is no partial recovery of a corrupt file.
func (p *Parser) ParseFile() ([]*Paper, error) {
	content, err := os.ReadFile(p.path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read export file %s", p.path)
	}
	return Parse(string(content), p.Collection), nil
}

// Parse splits raw export text into records and parses each one. Records
// without a title are dropped. Papers that did not carry an explicit
// identifier get a paper_<n> fallback scoped to this parse pass.
func Parse(content, collection string) []*Paper {
	var papers []*Paper
	idCounter := 1

	for _, record := range recordSentinel.Split(content, -1) {
		if strings.TrimSpace(record) == "" {
			continue
		}

		paper := parseRecord(record)
		if paper.Title == "" {
			// Malformed record, dropped by contract.
			continue
		}

		paper.Collection = collection
		if paper.ID == nil {
			paper.ID = fmt.Sprintf("paper_%d", idCounter)
			idCounter++
		}
		papers = append(papers, paper)
	}

	return papers
}

// parseRecord groups a record's lines into fields and applies each one.
func parseRecord(record string) *Paper {
	paper := &Paper{}

	var currentCode string
	var currentValue []string

	flush := func() {
		if currentCode != "" {
			setField(paper, currentCode, strings.Join(currentValue, "\n"))
		}
	}

	for _, line := range strings.Split(strings.TrimSpace(record), "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}

		if m := fieldStart.FindStringSubmatch(line); m != nil {
			flush()
			currentCode = m[1]
			currentValue = []string{m[2]}
			continue
		}

		// Continuation of the current field.
		if currentCode != "" {
			currentValue = append(currentValue, line)
		}
	}
	flush()

	return paper
}

// setField applies one field to the paper. The code table is closed:
// unrecognized codes are ignored by contract.
func setField(paper *Paper, code, value string) {
	value = strings.TrimSpace(value)

	switch code {
	case "TI":
		paper.Title = value
	case "PY":
		if m := yearRun.FindString(value); m != "" {
			if year, err := strconv.Atoi(m); err == nil {
				paper.Year = &year
			}
		}
	case "AB":
		paper.Abstract = value
	case "AU":
		paper.Authors = append(paper.Authors, value)
	case "DO":
		paper.DOI = value
	case "N1":
		paper.UniqueSearchTerms = splitTerms(value)
	case "RN":
		// Record splitting can leave a stray "ER" glued onto the last tag.
		clean := strings.TrimSpace(strings.TrimSuffix(value, "ER"))
		paper.BranchTags = splitTerms(clean)
	case "L1":
		paper.Locator = value
	case "T2":
		paper.Journal = value
	case "VL":
		paper.Volume = value
	case "IS":
		paper.Issue = value
	case "SP":
		paper.Pages = value
	case "UR":
		paper.URL = value
	case "KW":
		paper.Keywords = append(paper.Keywords, value)
	case "ID":
		paper.ID = parseIdentifier(value)
	case "LB":
		// Alternative identifier field; ID takes priority.
		if paper.ID == nil {
			paper.ID = parseIdentifier(value)
		}
	}
}

// splitTerms comma-splits a field value, trimming and dropping empty tokens.
func splitTerms(value string) []string {
	var terms []string
	for _, t := range strings.Split(value, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}
