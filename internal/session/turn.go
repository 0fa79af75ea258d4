// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import "github.com/pdiddy/researchflow/pkg/types"

// Turn is one entry in the conversation log: a UserTurn or an APITurn.
type Turn interface {
	turn()
}

// UserTurn is a query the user submitted.
type UserTurn struct {
	Text string
}

func (UserTurn) turn() {}

// APITurn is one response from the search service, possibly aggregated
// over several pages.
type APITurn struct {
	// Message is the service's reply text for the most recent page.
	Message string

	// Articles accumulates every page merged into this turn.
	Articles []types.Article

	// PageCount is the number of articles in the most recent page. A full
	// page (PageSize) means more results may exist.
	PageCount int

	// Failed marks the synthetic turn appended when a fetch fails.
	Failed bool
}

func (APITurn) turn() {}

// HasMore reports whether the last page merged into t was full.
func (t APITurn) HasMore() bool {
	return !t.Failed && t.PageCount == PageSize
}

// Merge returns a new turn with page's articles appended and its message
// replacing t's. t itself is left untouched.
func (t APITurn) Merge(page types.SearchResponse) APITurn {
	articles := make([]types.Article, 0, len(t.Articles)+len(page.Articles))
	articles = append(articles, t.Articles...)
	articles = append(articles, page.Articles...)
	return APITurn{
		Message:   page.Message,
		Articles:  articles,
		PageCount: len(page.Articles),
	}
}

func newAPITurn(page types.SearchResponse) APITurn {
	return APITurn{}.Merge(page)
}

func failedTurn() APITurn {
	return APITurn{
		Message:  FailureMessage,
		Articles: []types.Article{},
		Failed:   true,
	}
}
