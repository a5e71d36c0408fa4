package view

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/user/assetview/internal/cache"
	"github.com/user/assetview/internal/fetcher"
	"github.com/user/assetview/internal/model"
	"github.com/user/assetview/internal/sorter"
)

// DefaultLimit is the number of assets requested per page.
const DefaultLimit = 10

// PageFetcher retrieves one page of assets.
type PageFetcher interface {
	Fetch(ctx context.Context, page, limit int, query string) (model.Page, error)
}

// PageSorter orders a page of assets in the background.
type PageSorter interface {
	SortAsync(ctx context.Context, records []model.Asset) <-chan []model.Asset
}

// Stats counts what the coordinator has done since it was created.
type Stats struct {
	Requests  int
	CacheHits int
	Fetches   int
	Failures  int
	Discarded int
}

// request tags an in-flight load with the page query it was issued for.
type request struct {
	seq   uint64
	query model.PageQuery
}

// Coordinator keeps the displayed page consistent with the current page and
// query. Every change issues a new request; completions belonging to an older
// request are dropped so the last request issued always wins.
type Coordinator struct {
	fetcher PageFetcher
	sorter  PageSorter
	cache   *cache.ResultCache
	limit   int
	logger  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pages   PaginationState
	search  SearchState
	seq     uint64
	version uint64
	state   model.ViewState
	stats   Stats

	pubMu     sync.Mutex
	published uint64
	subs      []chan model.ViewState
	closed    bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithCache shares an existing result cache.
func WithCache(c *cache.ResultCache) Option {
	return func(co *Coordinator) {
		co.cache = c
	}
}

// WithSorter replaces the default sorter.
func WithSorter(s PageSorter) Option {
	return func(co *Coordinator) {
		co.sorter = s
	}
}

// WithLimit sets the page size.
func WithLimit(n int) Option {
	return func(co *Coordinator) {
		if n > 0 {
			co.limit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(co *Coordinator) {
		co.logger = l
	}
}

// New creates a coordinator on page one with an empty query. Nothing is
// loaded until Start is called.
func New(f PageFetcher, opts ...Option) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		fetcher: f,
		limit:   DefaultLimit,
		logger:  zerolog.Nop(),
		ctx:     ctx,
		cancel:  cancel,
		pages:   NewPaginationState(),
		state: model.ViewState{
			Phase:  model.PhaseIdle,
			Source: model.SourceNone,
		},
	}
	c.search = NewSearchState(&c.pages)

	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = cache.New()
	}
	if c.sorter == nil {
		c.sorter = sorter.New(language.English, sorter.DefaultDelay)
	}
	return c
}

// Cache returns the result cache owned by the coordinator.
func (c *Coordinator) Cache() *cache.ResultCache {
	return c.cache
}

// Limit returns the page size.
func (c *Coordinator) Limit() int {
	return c.limit
}

// Start loads the current page.
func (c *Coordinator) Start() {
	c.mu.Lock()
	c.issueLocked()
	s, v := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(s, v)
}

// Refresh reissues the current page query.
func (c *Coordinator) Refresh() {
	c.Start()
}

// SetPage moves to page n. Requests outside 1..TotalPages are ignored and
// report false. Moving to the page already shown does not reload it.
func (c *Coordinator) SetPage(n int) bool {
	c.mu.Lock()
	return c.movePageLocked(n)
}

// NextPage moves forward one page.
func (c *Coordinator) NextPage() bool {
	c.mu.Lock()
	return c.movePageLocked(c.pages.Current() + 1)
}

// PrevPage moves back one page.
func (c *Coordinator) PrevPage() bool {
	c.mu.Lock()
	return c.movePageLocked(c.pages.Current() - 1)
}

// movePageLocked is called with mu held and releases it.
func (c *Coordinator) movePageLocked(n int) bool {
	prev := c.pages.Current()
	if !c.pages.RequestPage(n) {
		total := c.pages.Total()
		c.mu.Unlock()
		c.logger.Debug().Int("page", n).Int("total", total).Msg("page request out of range")
		return false
	}
	if n == prev {
		c.mu.Unlock()
		return true
	}
	c.issueLocked()
	s, v := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(s, v)
	return true
}

// SetQuery replaces the search query and returns to page one.
func (c *Coordinator) SetQuery(q string) {
	c.mu.Lock()
	changed := q != c.search.Query() || c.pages.Current() != 1
	c.search.SetQuery(q)
	if !changed {
		c.mu.Unlock()
		return
	}
	c.issueLocked()
	s, v := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(s, v)
}

// State returns a snapshot of the view.
func (c *Coordinator) State() model.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, _ := c.snapshotLocked()
	return s
}

// Stats returns the coordinator's counters.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// HasNext reports whether a following page exists.
func (c *Coordinator) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pages.HasNext()
}

// HasPrev reports whether a preceding page exists.
func (c *Coordinator) HasPrev() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pages.HasPrev()
}

// Subscribe returns a channel that receives view snapshots. The channel holds
// at most one pending snapshot; a newer one replaces it.
func (c *Coordinator) Subscribe() <-chan model.ViewState {
	ch := make(chan model.ViewState, 1)
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	if c.closed {
		close(ch)
		return ch
	}
	c.subs = append(c.subs, ch)
	return ch
}

// Wait blocks until every fetch and sort started so far has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close cancels in-flight work, waits for it and closes subscriber channels.
func (c *Coordinator) Close() {
	c.cancel()
	c.wg.Wait()

	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for _, ch := range c.subs {
		close(ch)
	}
	c.subs = nil
}

// issueLocked starts a load for the current page query. Must be called with
// mu held.
func (c *Coordinator) issueLocked() {
	c.seq++
	c.stats.Requests++
	req := request{seq: c.seq, query: model.PageQuery{Page: c.pages.Current(), Query: c.search.Query()}}

	c.state.Err = nil
	c.state.Sorting = false
	c.state.Loading = false
	c.version++

	if entry, ok := c.cache.Get(req.query.Key()); ok {
		c.stats.CacheHits++
		c.logger.Debug().Str("key", req.query.Key()).Msg("cache hit")
		c.state.Source = model.SourceCache
		if c.pages.SetTotalPages(entry.TotalPages) {
			c.logger.Debug().Int("page", c.pages.Current()).Msg("page clamped to cached total")
			c.issueLocked()
			return
		}
		c.sortLocked(req, entry.Records)
		return
	}

	c.logger.Debug().Str("key", req.query.Key()).Int("limit", c.limit).Msg("cache miss, fetching")
	c.state.Loading = true
	c.state.Phase = model.PhaseLoading
	c.stats.Fetches++

	c.wg.Add(1)
	go c.fetch(req)
}

func (c *Coordinator) fetch(req request) {
	defer c.wg.Done()

	page, err := c.fetcher.Fetch(c.ctx, req.query.Page, c.limit, req.query.Query)

	c.mu.Lock()
	if err == nil {
		c.cache.Put(req.query.Key(), model.CacheEntry{
			Records:    page.Records,
			TotalPages: fetcher.TotalPages(page.TotalCount, c.limit),
		})
	}

	if req.seq != c.seq {
		c.stats.Discarded++
		c.mu.Unlock()
		c.logger.Debug().Str("key", req.query.Key()).Msg("discarding superseded fetch")
		return
	}

	if err != nil {
		c.stats.Failures++
		c.state.Loading = false
		c.state.Phase = model.PhaseError
		c.state.Err = err
		c.version++
		s, v := c.snapshotLocked()
		c.mu.Unlock()
		c.logger.Error().Err(err).Str("key", req.query.Key()).Msg("error fetching data")
		c.publish(s, v)
		return
	}

	c.state.Source = model.SourceNetwork
	if c.pages.SetTotalPages(fetcher.TotalPages(page.TotalCount, c.limit)) {
		c.logger.Debug().Int("page", c.pages.Current()).Msg("page clamped to fetched total")
		c.issueLocked()
	} else {
		c.sortLocked(req, page.Records)
	}
	s, v := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(s, v)
}

// sortLocked hands records to the sorter on behalf of req. Must be called with
// mu held.
func (c *Coordinator) sortLocked(req request, records []model.Asset) {
	c.state.Loading = false
	c.state.Sorting = true
	c.state.Phase = model.PhaseSorting
	c.version++

	out := c.sorter.SortAsync(c.ctx, records)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		sorted, ok := <-out

		c.mu.Lock()
		if !ok || req.seq != c.seq {
			c.stats.Discarded++
			c.mu.Unlock()
			c.logger.Debug().Str("key", req.query.Key()).Msg("discarding superseded sort")
			return
		}
		c.state.Records = sorted
		c.state.Sorting = false
		c.state.Phase = model.PhaseReady
		c.version++
		s, v := c.snapshotLocked()
		c.mu.Unlock()
		c.publish(s, v)
	}()
}

func (c *Coordinator) snapshotLocked() (model.ViewState, uint64) {
	s := c.state
	s.CurrentPage = c.pages.Current()
	s.TotalPages = c.pages.Total()
	s.Query = c.search.Query()
	return s, c.version
}

// publish delivers s to subscribers unless a newer snapshot already went out.
func (c *Coordinator) publish(s model.ViewState, version uint64) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	if c.closed || version <= c.published {
		return
	}
	c.published = version
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
