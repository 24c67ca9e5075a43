// Package ris parses tag-based bibliographic export records.
//
// The format is line-oriented: each record is a sequence of fields, a field
// starts with a two- or three-character uppercase code followed by a dash
// ("TI  - Some title"), continuation lines belong to the preceding field, and
// a record ends at a sentinel line containing only "ER".
package ris

import (
	"strconv"
)

// Paper is one bibliographic record extracted from an export file.
//
// Identifier is an int when the source ID field was numeric, a string
// otherwise, and nil only transiently during parsing: every retained paper
// leaves Parse with an identifier (explicit or the paper_<n> fallback).
type Paper struct {
	ID                interface{} `json:"id"`
	Title             string      `json:"title"`
	Year              *int        `json:"year"`
	Abstract          string      `json:"abstract"`
	Authors           []string    `json:"authors"`
	DOI               string      `json:"doi"`
	UniqueSearchTerms []string    `json:"unique_search_terms"`
	BranchTags        []string    `json:"branch_tags"`
	Locator           string      `json:"locator"`
	Collection        string      `json:"collection"`
	Journal           string      `json:"journal"`
	Volume            string      `json:"volume"`
	Issue             string      `json:"issue"`
	Pages             string      `json:"pages"`
	URL               string      `json:"url"`
	Keywords          []string    `json:"keywords"`
}

// IdentifierKey returns the paper's identifier as a comparable string for
// deduplication, and false when the paper has no identifier. Papers without
// an identifier are never deduplicated.
func (p *Paper) IdentifierKey() (string, bool) {
	switch id := p.ID.(type) {
	case nil:
		return "", false
	case int:
		return strconv.Itoa(id), true
	case string:
		if id == "" {
			return "", false
		}
		return id, true
	default:
		return "", false
	}
}

// parseIdentifier converts an ID field value to int when it is numeric,
// keeping the raw string otherwise.
func parseIdentifier(value string) interface{} {
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return value
}
