// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session implements the search session controller behind the chat
// interface. A Controller owns the conversation log, the filter state and
// the pagination cursor, runs fetches through a Searcher, and reconciles
// each result into the log.
//
// New searches append a UserTurn followed by an APITurn. Load-more
// re-issues the last query at the next offset and replaces the final
// APITurn with a merged copy. Failures of either kind append a synthetic
// APITurn carrying FailureMessage.
//
// The busy flag only rejects SubmitQuery. LoadMore is not serialized
// against in-flight fetches and responses carry no request identity, so a
// slow continuation can land after a newer one.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/researchflow/internal/favorites"
	"github.com/pdiddy/researchflow/pkg/types"
)

// PageSize is the number of articles the service returns per page. A page
// with fewer articles is the last one.
const PageSize = 25

// FailureMessage is the reply shown when a fetch fails for any reason.
const FailureMessage = "Sorry, I couldn't connect to the server."

var (
	// ErrBusy is returned by SubmitQuery while a fetch is in flight.
	ErrBusy = errors.New("a search is already running")

	// ErrNoMoreResults is returned by LoadMore when the last turn is not a
	// full page of results.
	ErrNoMoreResults = errors.New("no more results to load")

	// ErrMissingURL is returned by SaveArticle for articles without a URL.
	ErrMissingURL = favorites.ErrMissingURL
)

// Searcher fetches one page of results.
type Searcher interface {
	Search(ctx context.Context, req types.SearchRequest) (types.SearchResponse, error)
}

// FetchKind tags a fetch as a new search or a continuation of the last one.
type FetchKind int

const (
	NewSearch FetchKind = iota
	Continuation
)

func (k FetchKind) String() string {
	if k == Continuation {
		return "continuation"
	}
	return "new_search"
}

// SaveOutcome reports what SaveArticle did.
type SaveOutcome int

const (
	Saved SaveOutcome = iota
	AlreadySaved
)

// Listener is called after the log changes, with the turn and its index.
// A replaced turn is reported at its existing index.
type Listener func(turn Turn, index int)

// Controller is the search session state machine. It is safe for
// concurrent use.
type Controller struct {
	searcher  Searcher
	favorites favorites.Repository
	logger    *zap.Logger
	now       func() time.Time

	mu         sync.Mutex
	log        []Turn
	filters    FilterState
	pagination Pagination
	busy       bool
	listeners  []Listener
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithClock overrides time.Now, which drives the default year range.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New returns a Controller with default filters and an empty log. repo may
// be nil when saving is not needed.
func New(searcher Searcher, repo favorites.Repository, opts ...Option) *Controller {
	c := &Controller{
		searcher:  searcher,
		favorites: repo,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.filters = DefaultFilters(c.now())
	return c
}

// Subscribe registers fn to be called on every log change.
func (c *Controller) Subscribe(fn Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// SubmitQuery starts a new search for text. Whitespace-only text is
// ignored. The call blocks until the fetch completes and its turn is in
// the log; fetch failures are reported as a turn, not as an error.
func (c *Controller) SubmitQuery(ctx context.Context, text string) error {
	query := strings.TrimSpace(text)
	if query == "" {
		return nil
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.pagination = Pagination{LastQuery: query, Offset: 0}
	req := c.filters.request(query, 0)
	notify := c.appendLocked(UserTurn{Text: query})
	c.mu.Unlock()
	notify()

	c.fetch(ctx, NewSearch, req)
	return nil
}

// LoadMore fetches the next page of the last query and merges it into the
// last APITurn.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if !c.canLoadMoreLocked() {
		c.mu.Unlock()
		return ErrNoMoreResults
	}
	c.busy = true
	c.pagination.Offset += PageSize
	req := c.filters.request(c.pagination.LastQuery, c.pagination.Offset)
	c.mu.Unlock()

	c.fetch(ctx, Continuation, req)
	return nil
}

// fetch runs one request and reconciles the outcome. The lock is not held
// across the network call.
func (c *Controller) fetch(ctx context.Context, kind FetchKind, req types.SearchRequest) {
	c.logger.Info("fetching results",
		zap.Stringer("kind", kind),
		zap.String("query", req.Query),
		zap.Int("offset", req.Offset))

	resp, err := c.searcher.Search(ctx, req)

	c.mu.Lock()
	var notify func()
	if err != nil {
		c.logger.Error("fetch failed", zap.Stringer("kind", kind), zap.Error(err))
		notify = c.onFetchFailureLocked(kind)
	} else {
		notify = c.onFetchResultLocked(kind, resp)
	}
	c.busy = false
	c.mu.Unlock()
	notify()
}

func (c *Controller) onFetchResultLocked(kind FetchKind, resp types.SearchResponse) func() {
	if kind == NewSearch {
		return c.appendLocked(newAPITurn(resp))
	}

	idx := len(c.log) - 1
	last, ok := c.lastAPITurnLocked()
	if !ok {
		c.logger.Warn("dropping continuation page: last turn is not a response",
			zap.Int("articles", len(resp.Articles)))
		return func() {}
	}
	merged := last.Merge(resp)
	c.log[idx] = merged
	return c.notifyLocked(merged, idx)
}

// onFetchFailureLocked appends a failure turn for both fetch kinds; a
// failed continuation does not touch the turn it was extending.
func (c *Controller) onFetchFailureLocked(FetchKind) func() {
	return c.appendLocked(failedTurn())
}

func (c *Controller) appendLocked(t Turn) func() {
	c.log = append(c.log, t)
	return c.notifyLocked(t, len(c.log)-1)
}

// notifyLocked snapshots the listeners so they run after the lock is
// released.
func (c *Controller) notifyLocked(t Turn, idx int) func() {
	listeners := append([]Listener(nil), c.listeners...)
	return func() {
		for _, fn := range listeners {
			fn(t, idx)
		}
	}
}

func (c *Controller) lastAPITurnLocked() (APITurn, bool) {
	if len(c.log) == 0 {
		return APITurn{}, false
	}
	t, ok := c.log[len(c.log)-1].(APITurn)
	return t, ok
}

func (c *Controller) canLoadMoreLocked() bool {
	if c.pagination.LastQuery == "" {
		return false
	}
	last, ok := c.lastAPITurnLocked()
	return ok && last.HasMore()
}

// CanLoadMore reports whether load-more is on offer: the last turn is a
// full page of results.
func (c *Controller) CanLoadMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canLoadMoreLocked()
}

// Turns returns a copy of the conversation log.
func (c *Controller) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Turn(nil), c.log...)
}

// LastResponse returns the final turn when it is an APITurn.
func (c *Controller) LastResponse() (APITurn, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAPITurnLocked()
}

// Busy reports whether a fetch is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Filters returns the current filter state.
func (c *Controller) Filters() FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// SetFilters replaces the filter state after validating it. The new
// filters apply from the next fetch.
func (c *Controller) SetFilters(f FilterState) error {
	if err := f.Validate(c.now()); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = f
	return nil
}

// Pagination returns the pagination cursor.
func (c *Controller) Pagination() Pagination {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pagination
}

// SaveArticle stores a in the favorites repository. Saving an article
// whose URL is already stored is not an error; it returns AlreadySaved.
func (c *Controller) SaveArticle(ctx context.Context, a types.Article) (SaveOutcome, error) {
	if c.favorites == nil {
		return 0, errors.New("no favorites repository configured")
	}
	if a.URL == "" {
		return 0, ErrMissingURL
	}

	exists, err := c.favorites.Exists(ctx, a.URL)
	if err != nil {
		return 0, err
	}
	if exists {
		return AlreadySaved, nil
	}

	err = c.favorites.Add(ctx, a)
	if errors.Is(err, favorites.ErrAlreadyExists) {
		return AlreadySaved, nil
	}
	if err != nil {
		return 0, err
	}
	c.logger.Info("article saved", zap.String("url", a.URL))
	return Saved, nil
}
