// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared between the researchflow
// search client, its favorites stores, and the CLI.
package types

import "fmt"

// Article is one search hit as returned by the remote search service. The
// client treats it as opaque data; only URL is checked before saving.
type Article struct {
	// URL is the article landing page. It is also the favorites dedup key.
	URL string `json:"url" yaml:"url"`

	// Title is the article title.
	Title string `json:"title" yaml:"title"`

	// Authors lists author display names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year, zero when unknown.
	Year int `json:"year" yaml:"year"`

	// CitationCount is the number of citations reported by the service.
	CitationCount int `json:"citationCount" yaml:"citation_count"`

	// Abstract is the article abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Journal is the venue name when the service provides one.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`
}

// SortMode selects how the search service orders results.
type SortMode string

const (
	// SortDefault lets the service rank by its own relevance model.
	SortDefault SortMode = "default"
	// SortRelevance orders by citation count.
	SortRelevance SortMode = "relevance"
	// SortRecency orders by publication date, newest first.
	SortRecency SortMode = "recency"
)

// ParseSortMode validates s as a SortMode.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(s); m {
	case SortDefault, SortRelevance, SortRecency:
		return m, nil
	default:
		return "", fmt.Errorf("unknown sort mode %q: use default, relevance, or recency", s)
	}
}

// SearchRequest is the JSON body posted to the search endpoint.
type SearchRequest struct {
	Query        string   `json:"query"`
	SortBy       SortMode `json:"sort_by"`
	YearFrom     int      `json:"year_from"`
	YearTo       int      `json:"year_to"`
	Offset       int      `json:"offset"`
	IsOpenAccess bool     `json:"is_open_access"`
}

// SearchResponse is the JSON body returned by the search endpoint.
type SearchResponse struct {
	Message  string    `json:"message"`
	Articles []Article `json:"articles"`
}
