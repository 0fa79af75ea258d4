// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/researchflow/internal/favorites"
	"github.com/pdiddy/researchflow/internal/session"
	"github.com/pdiddy/researchflow/internal/transcript"
	"github.com/pdiddy/researchflow/pkg/types"
)

// --- test helpers ---

type pagedSearcher struct {
	pages    []types.SearchResponse
	requests []types.SearchRequest
}

func (p *pagedSearcher) Search(_ context.Context, req types.SearchRequest) (types.SearchResponse, error) {
	p.requests = append(p.requests, req)
	if len(p.pages) == 0 {
		return types.SearchResponse{}, fmt.Errorf("no more pages scripted")
	}
	next := p.pages[0]
	p.pages = p.pages[1:]
	return next, nil
}

func makePage(prefix string, n int) types.SearchResponse {
	articles := make([]types.Article, n)
	for i := range articles {
		articles[i] = types.Article{
			URL:   fmt.Sprintf("https://example.org/%s/%d", prefix, i),
			Title: fmt.Sprintf("%s title %d", prefix, i),
			Year:  2020,
		}
	}
	return types.SearchResponse{Message: prefix + " message", Articles: articles}
}

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func runREPL(t *testing.T, s session.Searcher, input string) (string, *session.Controller, favorites.Repository) {
	t.Helper()
	repo, err := favorites.OpenBolt(filepath.Join(t.TempDir(), "fav.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	c := session.New(s, repo,
		session.WithLogger(zaptest.NewLogger(t)),
		session.WithClock(func() time.Time { return testNow }))

	var out bytes.Buffer
	r := &REPL{
		Controller: c,
		Favorites:  repo,
		In:         strings.NewReader(input),
		Out:        &out,
		Now:        func() time.Time { return testNow },
	}
	require.NoError(t, r.Run(context.Background()))
	return out.String(), c, repo
}

// --- tests ---

func TestGreetingAndQuit(t *testing.T) {
	out, c, _ := runREPL(t, &pagedSearcher{}, "/quit\n")
	assert.Contains(t, out, greeting)
	assert.Empty(t, c.Turns())
}

func TestQueryRendersResultsAndMoreHint(t *testing.T) {
	s := &pagedSearcher{pages: []types.SearchResponse{makePage("first", session.PageSize)}}
	out, c, _ := runREPL(t, s, "graph theory\n")

	assert.Contains(t, out, "researchflow> first message")
	assert.Contains(t, out, "[1] first title 0")
	assert.Contains(t, out, "[25] first title 24")
	assert.Contains(t, out, "/more")
	assert.Len(t, c.Turns(), 2)
}

func TestMoreAppendsContinuingNumbers(t *testing.T) {
	s := &pagedSearcher{pages: []types.SearchResponse{
		makePage("first", session.PageSize),
		makePage("second", 2),
	}}
	out, c, _ := runREPL(t, s, "graph theory\n/more\n")

	assert.Contains(t, out, "researchflow> second message")
	assert.Contains(t, out, "[26] second title 0")
	assert.Contains(t, out, "[27] second title 1")
	assert.Equal(t, 1, strings.Count(out, "[1] first title 0"), "earlier articles are not reprinted")
	assert.Len(t, c.Turns(), 2)
	assert.Equal(t, session.PageSize, s.requests[1].Offset)
}

func TestMoreWithoutFullPage(t *testing.T) {
	s := &pagedSearcher{pages: []types.SearchResponse{makePage("only", 3)}}
	out, _, _ := runREPL(t, s, "q\n/more\n")

	assert.NotContains(t, out, "More results available")
	assert.Contains(t, out, "error: "+session.ErrNoMoreResults.Error())
	assert.Len(t, s.requests, 1)
}

func TestFailureTurnShown(t *testing.T) {
	out, _, _ := runREPL(t, &pagedSearcher{}, "anything\n")
	assert.Contains(t, out, session.FailureMessage)
}

func TestSaveTwice(t *testing.T) {
	s := &pagedSearcher{pages: []types.SearchResponse{makePage("p", 2)}}
	out, _, repo := runREPL(t, s, "q\n/save 2\n/save 2\n/save 9\n")

	assert.Contains(t, out, `Saved "p title 1" to your favorites.`)
	assert.Contains(t, out, "already in your favorites")
	assert.Contains(t, out, "between 1 and 2")

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "https://example.org/p/1", list[0].URL)
}

func TestFavoritesListing(t *testing.T) {
	s := &pagedSearcher{pages: []types.SearchResponse{makePage("p", 1)}}
	out, _, _ := runREPL(t, s, "/favorites\nq\n/save 1\n/favorites\n")

	assert.Contains(t, out, "No articles.")
	assert.Contains(t, out, "1 articles")
}

func TestFilterCommands(t *testing.T) {
	s := &pagedSearcher{pages: []types.SearchResponse{makePage("p", 1)}}
	out, c, _ := runREPL(t, s, "/sort recency\n/years 2001 2010\n/open on\n/years 1900 2000\n/sort best\nq\n")

	assert.Contains(t, out, "sort: recency | years: 2001-2010 | open access: on")
	assert.Contains(t, out, "error: year range 1900-2000")
	assert.Contains(t, out, `error: unknown sort mode "best"`)

	f := c.Filters()
	assert.Equal(t, session.FilterState{SortBy: types.SortRecency, YearFrom: 2001, YearTo: 2010, OpenAccess: true}, f)
	require.Len(t, s.requests, 1)
	assert.Equal(t, 2001, s.requests[0].YearFrom)
	assert.True(t, s.requests[0].IsOpenAccess)
}

func TestUnknownCommand(t *testing.T) {
	out, _, _ := runREPL(t, &pagedSearcher{}, "/frobnicate\n")
	assert.Contains(t, out, "unknown command /frobnicate")
}

func TestWriteTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.yaml")
	s := &pagedSearcher{pages: []types.SearchResponse{makePage("p", 2)}}
	out, _, _ := runREPL(t, s, "q\n/write "+path+"\n")

	assert.Contains(t, out, "Transcript written to "+path)
	f, err := transcript.Read(path)
	require.NoError(t, err)
	st, err := f.State()
	require.NoError(t, err)
	require.Len(t, st.Turns, 2)
	assert.Equal(t, session.UserTurn{Text: "q"}, st.Turns[0])
}

func TestResumedSessionPrintsHistory(t *testing.T) {
	c := session.New(&pagedSearcher{}, nil, session.WithClock(func() time.Time { return testNow }))
	require.NoError(t, c.Restore(session.State{
		Filters:    session.DefaultFilters(testNow),
		Pagination: session.Pagination{LastQuery: "old"},
		Turns: []session.Turn{
			session.UserTurn{Text: "old"},
			session.APITurn{Message: "old reply", Articles: []types.Article{}},
		},
	}))

	var out bytes.Buffer
	r := &REPL{Controller: c, In: strings.NewReader(""), Out: &out, Now: func() time.Time { return testNow }}
	require.NoError(t, r.Run(context.Background()))

	assert.NotContains(t, out.String(), greeting)
	assert.Contains(t, out.String(), "you> old")
	assert.Contains(t, out.String(), "researchflow> old reply")
}

func TestRunTwiceRendersOnce(t *testing.T) {
	s := &pagedSearcher{pages: []types.SearchResponse{makePage("first", 1), makePage("second", 1)}}
	c := session.New(s, nil, session.WithClock(func() time.Time { return testNow }))

	var out bytes.Buffer
	r := &REPL{
		Controller: c,
		In:         strings.NewReader("one\n"),
		Out:        &out,
		Now:        func() time.Time { return testNow },
	}
	require.NoError(t, r.Run(context.Background()))

	out.Reset()
	r.In = strings.NewReader("two\n")
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, 1, strings.Count(out.String(), "researchflow> second message"))
}
