// Package location models an addressable view location with browser-style
// history semantics: a stack of URL-shaped entries, a position pointer, and
// push/replace update modes. The TUI binds back/forward navigation to it the
// way a web client binds the browser location bar.
package location

import (
	"net/url"
	"sync"
)

// Entry is one addressable view state: a path plus query parameters.
type Entry struct {
	Path   string
	Params url.Values
}

// String renders the entry as a URL reference, e.g. "/receipts?q=coffee".
func (e Entry) String() string {
	if len(e.Params) == 0 {
		return e.Path
	}
	return e.Path + "?" + e.Params.Encode()
}

// clone returns a deep copy so callers cannot mutate stored entries.
func (e Entry) clone() Entry {
	params := make(url.Values, len(e.Params))
	for k, vs := range e.Params {
		params[k] = append([]string(nil), vs...)
	}
	return Entry{Path: e.Path, Params: params}
}

// History is a navigable stack of entries. Push appends a new entry and
// truncates any forward entries, mirroring browser history. Replace rewrites
// the current entry in place without creating a new history step.
type History struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
}

// New creates a history with a single initial entry at the given path.
func New(path string) *History {
	return &History{
		entries: []Entry{{Path: path, Params: url.Values{}}},
	}
}

// Current returns a copy of the entry at the history position.
func (h *History) Current() Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.pos].clone()
}

// Push records a new entry after the current position and moves to it.
// Entries past the old position are discarded.
func (h *History) Push(path string, params url.Values) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := Entry{Path: path, Params: params}.clone()
	h.entries = append(h.entries[:h.pos+1], e)
	h.pos = len(h.entries) - 1
}

// Replace rewrites the current entry without adding a history step.
func (h *History) Replace(path string, params url.Values) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.pos] = Entry{Path: path, Params: params}.clone()
}

// SetParam sets a single parameter on the current entry in place.
// An empty value deletes the key. No history step is created.
func (h *History) SetParam(key, value string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := h.entries[h.pos].clone()
	if value == "" {
		e.Params.Del(key)
	} else {
		e.Params.Set(key, value)
	}
	h.entries[h.pos] = e
}

// Back moves one entry backward and returns it. Reports false when already
// at the oldest entry, leaving the position unchanged.
func (h *History) Back() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pos == 0 {
		return Entry{}, false
	}
	h.pos--
	return h.entries[h.pos].clone(), true
}

// Forward moves one entry forward and returns it. Reports false when already
// at the newest entry.
func (h *History) Forward() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pos >= len(h.entries)-1 {
		return Entry{}, false
	}
	h.pos++
	return h.entries[h.pos].clone(), true
}

// Len returns the number of entries currently retained.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
