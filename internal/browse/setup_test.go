package browse

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a scripted search + link-check collaborator. Every call is
// recorded along with its context so tests can assert on cancellation and on
// exactly which requests were issued.
type fakeBackend struct {
	mu         sync.Mutex
	searchReqs []SearchRequest
	listReqs   []ListRequest
	searchCtxs []context.Context
	listCtxs   []context.Context
	linkIDs    []string

	searchFn func(ctx context.Context, req SearchRequest) (*SearchPage, error)
	listFn   func(ctx context.Context, req ListRequest) (*SearchPage, error)
	linkFn   func(ctx context.Context, id string) (LinkStatus, error)
}

func (f *fakeBackend) Search(ctx context.Context, req SearchRequest) (*SearchPage, error) {
	f.mu.Lock()
	f.searchReqs = append(f.searchReqs, req)
	f.searchCtxs = append(f.searchCtxs, ctx)
	fn := f.searchFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return pageOf(), nil
}

func (f *fakeBackend) List(ctx context.Context, req ListRequest) (*SearchPage, error) {
	f.mu.Lock()
	f.listReqs = append(f.listReqs, req)
	f.listCtxs = append(f.listCtxs, ctx)
	fn := f.listFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return pageOf(), nil
}

func (f *fakeBackend) CheckLink(ctx context.Context, id string) (LinkStatus, error) {
	f.mu.Lock()
	f.linkIDs = append(f.linkIDs, id)
	fn := f.linkFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, id)
	}
	return LinkStatus{}, nil
}

func (f *fakeBackend) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searchReqs)
}

func (f *fakeBackend) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listReqs)
}

func (f *fakeBackend) lastSearch() SearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchReqs[len(f.searchReqs)-1]
}

func (f *fakeBackend) searchCtx(i int) context.Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchCtxs[i]
}

func (f *fakeBackend) linkCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.linkIDs)
}

// pageOf builds a cursorless page with the given item ids.
func pageOf(ids ...string) *SearchPage {
	items := make([]Item, len(ids))
	for i, id := range ids {
		items[i] = Item{ID: id, Title: "item " + id}
	}
	return &SearchPage{Items: items}
}

// withCursors decorates a page with pagination tokens.
func withCursors(p *SearchPage, prev, next string) *SearchPage {
	p.Page = PageResult{
		NextCursor: next,
		PrevCursor: prev,
		HasNext:    next != "",
		HasPrev:    prev != "",
	}
	return p
}

func itemIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

// newTestSession creates a session over the fake with a short debounce so
// timing tests stay fast. Closed automatically at test end.
func newTestSession(t *testing.T, f *fakeBackend, opts Options) *Session {
	t.Helper()
	if opts.Debounce == 0 {
		opts.Debounce = 20 * time.Millisecond
	}
	s := NewSession(f, f, opts)
	t.Cleanup(s.Close)
	return s
}

// waitFor polls the session until cond holds or the deadline passes.
func waitFor(t *testing.T, s *Session, what string, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := s.Snapshot()
		if cond(snap) {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		select {
		case <-s.Updates():
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// settle waits long enough for any pending debounce or in-flight fetch
// against the fake to have run.
func settle() {
	time.Sleep(80 * time.Millisecond)
}

// applyText sets the draft text and applies it, bypassing the debounce.
func applyText(s *Session, text string) {
	s.SetDraftText(text)
	s.Apply()
}
