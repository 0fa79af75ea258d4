// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"fmt"
	"time"

	"github.com/pdiddy/researchflow/pkg/types"
)

const (
	// MinYear is the earliest selectable publication year.
	MinYear = 1980

	// DefaultYearFrom is the start of the year range for a fresh session.
	DefaultYearFrom = 1990
)

// FilterState holds the search filters applied to every fetch.
type FilterState struct {
	SortBy     types.SortMode `json:"sort_by" yaml:"sort_by"`
	YearFrom   int            `json:"year_from" yaml:"year_from"`
	YearTo     int            `json:"year_to" yaml:"year_to"`
	OpenAccess bool           `json:"open_access" yaml:"open_access"`
}

// DefaultFilters returns default sort, 1990 through the current year, and
// no open-access restriction.
func DefaultFilters(now time.Time) FilterState {
	return FilterState{
		SortBy:   types.SortDefault,
		YearFrom: DefaultYearFrom,
		YearTo:   now.Year(),
	}
}

// Validate checks the sort mode and that MinYear <= YearFrom < YearTo <=
// the current year.
func (f FilterState) Validate(now time.Time) error {
	if _, err := types.ParseSortMode(string(f.SortBy)); err != nil {
		return err
	}
	maxYear := now.Year()
	if f.YearFrom < MinYear || f.YearTo > maxYear {
		return fmt.Errorf("year range %d-%d outside %d-%d", f.YearFrom, f.YearTo, MinYear, maxYear)
	}
	if f.YearFrom >= f.YearTo {
		return fmt.Errorf("year range %d-%d: start must be before end", f.YearFrom, f.YearTo)
	}
	return nil
}

// request builds the search body for query at offset under f.
func (f FilterState) request(query string, offset int) types.SearchRequest {
	return types.SearchRequest{
		Query:        query,
		SortBy:       f.SortBy,
		YearFrom:     f.YearFrom,
		YearTo:       f.YearTo,
		Offset:       offset,
		IsOpenAccess: f.OpenAccess,
	}
}

// Pagination remembers the last query and the offset of the latest page.
type Pagination struct {
	LastQuery string `json:"last_query" yaml:"last_query"`
	Offset    int    `json:"offset" yaml:"offset"`
}
