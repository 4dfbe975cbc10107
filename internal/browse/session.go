// Package browse implements the incremental-search and cursor-pagination
// coordinator behind the record browsing views. A Session owns the draft and
// applied search criteria, the pagination cursors, the addressable-location
// and durable-storage mirrors of that state, best-effort row enrichment, and
// the replayable descriptor of the last primary fetch.
//
// All state mutation is serialized behind one mutex. Collaborator calls run
// in goroutines holding no lock; their results re-enter under the lock and
// commit only if their generation is still the most recently issued one, so
// a stale response can never overwrite newer state regardless of arrival
// order.
package browse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/receiptdex/receiptdex/internal/location"
)

// defaultDebounce is the quiet window after a keystroke before a text search
// is issued.
const defaultDebounce = 300 * time.Millisecond

// PageInfo is the pagination state exposed to the UI.
type PageInfo struct {
	NextCursor string
	PrevCursor string
	HasNext    bool
	HasPrev    bool

	// PageIndex is a client-estimated 1-based page counter, maintained by
	// incrementing on next and decrementing on prev. It is advisory only:
	// records created or removed server-side between fetches shift page
	// boundaries, so the index can drift from the true position. It must not
	// be treated as authoritative; the collaborator's total count is optional
	// and no contract exists to anchor it.
	PageIndex int
}

// LinkEntry is the cached enrichment result for one item id. Its lifecycle is
// independent of the current page: once computed it is reused whenever the
// same id reappears.
type LinkEntry struct {
	Linked   bool
	LinkedID string
}

// Snapshot is a consistent copy of the session state for rendering.
type Snapshot struct {
	Scope      Scope
	Draft      Criteria
	Applied    Criteria
	Items      []Item
	Page       PageInfo
	TotalCount *int64
	Searching  bool
	Err        error
	Notice     string
	Links      map[string]LinkEntry
}

// Options configures a Session.
type Options struct {
	Scope    Scope
	PageSize int           // default page size, DefaultPageSize when zero
	Debounce time.Duration // text quiet window, defaultDebounce when zero

	// Location mirrors applied criteria and the pagination cursor into an
	// addressable view location. Optional.
	Location *location.History

	// Storage persists the view record across sessions. Optional.
	Storage Storage

	Logger *slog.Logger
}

// Session coordinates one browsing view. Create with NewSession, then call
// Hydrate to load persisted state and issue the initial fetch.
type Session struct {
	mu       sync.Mutex
	searcher Searcher
	links    LinkChecker
	loc      *location.History
	store    Storage
	logger   *slog.Logger
	scope    Scope
	debounce time.Duration

	draft   Criteria
	applied Criteria

	items     []Item
	page      PageInfo
	total     *int64
	searching bool
	err       error
	notice    string

	// gen guards latest-wins commits: a fetch result is applied only when its
	// generation still matches. cancel aborts the in-flight fetch when a new
	// one supersedes it.
	gen    uint64
	cancel context.CancelFunc

	// debounceGen invalidates pending debounce timers; a new keystroke bumps
	// it so the prior timer's callback becomes a no-op.
	debounceTimer *time.Timer
	debounceGen   uint64

	linkCache  map[string]LinkEntry
	linkFailed map[string]bool
	linkGroup  singleflight.Group

	lastAction *fetchAction

	updates chan struct{}
	closed  bool
}

// NewSession creates a session over the given collaborators. links may be nil
// when row enrichment is not wanted.
func NewSession(searcher Searcher, links LinkChecker, opts Options) *Session {
	if opts.Scope == "" {
		opts.Scope = ScopeReceipts
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	crit := DefaultCriteria(opts.PageSize)
	return &Session{
		searcher:   searcher,
		links:      links,
		loc:        opts.Location,
		store:      opts.Storage,
		logger:     logger,
		scope:      opts.Scope,
		debounce:   opts.Debounce,
		draft:      crit.clone(),
		applied:    crit,
		page:       PageInfo{PageIndex: 1},
		linkCache:  make(map[string]LinkEntry),
		linkFailed: make(map[string]bool),
		updates:    make(chan struct{}, 1),
	}
}

// Updates signals that the session state changed and a new Snapshot should be
// taken. The channel is never closed and coalesces bursts.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

// Snapshot returns a copy of the current state safe to read concurrently.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, len(s.items))
	copy(items, s.items)
	links := make(map[string]LinkEntry, len(s.linkCache))
	for id, e := range s.linkCache {
		links[id] = e
	}
	return Snapshot{
		Scope:      s.scope,
		Draft:      s.draft.clone(),
		Applied:    s.applied.clone(),
		Items:      items,
		Page:       s.page,
		TotalCount: clonePtr64(s.total),
		Searching:  s.searching,
		Err:        s.err,
		Notice:     s.notice,
		Links:      links,
	}
}

func clonePtr64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// DismissNotice clears the transient notice.
func (s *Session) DismissNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = ""
	s.notifyLocked()
}

// Close cancels any in-flight work. Results arriving afterwards are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}
}

// notifyLocked wakes the UI without blocking; a pending signal is enough.
func (s *Session) notifyLocked() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// startFetchLocked issues a primary fetch, cancelling any in-flight one.
// Every primary fetch is recorded as the retryable action regardless of
// outcome. Caller holds s.mu.
func (s *Session) startFetchLocked(a fetchAction) {
	if s.closed {
		return
	}
	rec := a.clone()
	s.lastAction = &rec

	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.searching = true
	s.err = nil

	go s.performFetch(ctx, gen, a.clone())
}

// performFetch runs the collaborator call outside the lock, then commits the
// result only if this request is still the most recently issued one.
func (s *Session) performFetch(ctx context.Context, gen uint64, a fetchAction) {
	var page *SearchPage
	var err error
	if a.criteria.IsDefaultListing() {
		page, err = s.searcher.List(ctx, ListRequest{
			Scope:    s.scope,
			Sort:     a.criteria.Sort,
			Order:    a.criteria.Order,
			PageSize: a.criteria.PageSize,
			Cursor:   a.cursor,
		})
	} else {
		page, err = s.searcher.Search(ctx, requestFromCriteria(s.scope, a.criteria, a.cursor))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Superseded: a newer request owns the visible state now. Whatever this
	// one resolved to is discarded silently.
	if gen != s.gen || ctx.Err() != nil {
		return
	}
	s.searching = false

	switch {
	case err == nil:
		s.commitPageLocked(page, a)
	case isCanceled(err):
		return
	case isInvalidCursor(err) && a.cursor != "":
		s.recoverExpiredPageLocked()
	default:
		s.logger.Debug("primary fetch failed", "scope", s.scope, "error", err)
		s.err = err
	}
	s.notifyLocked()
}

// commitPageLocked replaces the visible result set with the fetched page.
// There is no incremental merge across pages.
func (s *Session) commitPageLocked(page *SearchPage, a fetchAction) {
	s.items = page.Items
	s.total = page.TotalCount

	prevIndex := s.page.PageIndex
	s.page = PageInfo{
		NextCursor: page.Page.NextCursor,
		PrevCursor: page.Page.PrevCursor,
		HasNext:    page.Page.HasNext,
		HasPrev:    page.Page.HasPrev,
		PageIndex:  1,
	}
	switch a.dir {
	case dirNext:
		s.page.PageIndex = prevIndex + 1
	case dirPrev:
		if prevIndex > 1 {
			s.page.PageIndex = prevIndex - 1
		}
	}

	// Committed navigation addresses the new page by the cursor that fetched
	// it; criteria-driven fetches have their location handled by the
	// operation that initiated them.
	if a.dir != dirNone {
		s.serializeLocked(serializeCommitted, a.cursor)
		s.persistLocked(a.cursor)
	}

	s.reconcileLocked(s.items)
}

// resetPagingLocked discards both cursors and returns the estimate to page 1.
// Every applied-criteria change goes through here.
func (s *Session) resetPagingLocked() {
	s.page = PageInfo{PageIndex: 1}
	s.total = nil
}
