package browse

import (
	"strings"
	"time"
	"unicode/utf8"
)

// minQueryLen is the shortest non-empty text that is actually sent. Shorter
// fragments are transient keystrokes and would only load the server.
const minQueryLen = 2

// SetDraftText updates the draft search text and schedules a fetch after the
// quiet window. A new keystroke before the window elapses cancels the pending
// schedule and reschedules.
//
// Emptying a previously applied text with no active filters skips the
// debounce entirely and restores the default listing immediately: that fetch
// takes the cheaper listing path, not the generic search path.
func (s *Session) SetDraftText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	// Re-submitting the text already in the draft is not an edit: any pending
	// timer keeps running, applied state and paging stay untouched.
	if text == s.draft.Text {
		return
	}

	s.draft.Text = text

	// Invalidate any pending debounce timer.
	s.debounceGen++
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}

	if strings.TrimSpace(text) == "" && s.applied.Text != "" && !s.applied.HasFilters() {
		s.applied.Text = ""
		s.resetPagingLocked()
		s.serializeLocked(serializeSilent, "")
		s.startFetchLocked(fetchAction{criteria: s.applied.clone()})
		s.notifyLocked()
		return
	}

	gen := s.debounceGen
	s.debounceTimer = time.AfterFunc(s.debounce, func() {
		s.debounceFire(gen)
	})
	s.notifyLocked()
}

// debounceFire runs when the quiet window elapses. The generation check drops
// timers that were superseded by a newer keystroke.
func (s *Session) debounceFire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.debounceGen {
		return
	}

	text := strings.TrimSpace(s.draft.Text)
	if text != "" && utf8.RuneCountInString(text) < minQueryLen {
		return
	}

	s.applied.Text = text
	s.resetPagingLocked()
	s.serializeLocked(serializeSilent, "")
	s.startFetchLocked(fetchAction{criteria: s.applied.clone()})
	s.notifyLocked()
}

// SetDraftStatuses stages a status filter. No fetch until Apply.
func (s *Session) SetDraftStatuses(vals ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Status = NewSet(vals...)
}

// SetDraftCurrencies stages a currency filter.
func (s *Session) SetDraftCurrencies(vals ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Currency = NewSet(vals...)
}

// SetDraftProviders stages a provider filter.
func (s *Session) SetDraftProviders(vals ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Provider = NewSet(vals...)
}

// SetDraftDateRange stages an inclusive date range; empty strings clear.
func (s *Session) SetDraftDateRange(from, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.DateFrom = from
	s.draft.DateTo = to
}

// SetDraftAmountRange stages an amount range; nil bounds clear.
func (s *Session) SetDraftAmountRange(min, max *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.AmountMin = clonePtr(min)
	s.draft.AmountMax = clonePtr(max)
}

// SetDraftConfidenceMin stages a minimum extraction confidence; nil clears.
func (s *Session) SetDraftConfidenceMin(min *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.ConfidenceMin = clonePtr(min)
}

// Apply promotes the draft criteria to applied and fetches immediately,
// bypassing the debounce. Any in-flight primary fetch is cancelled.
func (s *Session) Apply() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.debounceGen++
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}

	applied := s.draft.clone()
	applied.Text = strings.TrimSpace(applied.Text)
	s.applied = applied
	s.resetPagingLocked()
	s.serializeLocked(serializeCommitted, "")
	s.persistLocked("")
	s.startFetchLocked(fetchAction{criteria: s.applied.clone()})
	s.notifyLocked()
}

// Clear drops the search text and all filters, keeping sort and page size,
// and restores the default listing immediately.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.debounceGen++
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}

	base := DefaultCriteria(s.applied.PageSize)
	base.Sort = s.applied.Sort
	base.Order = s.applied.Order
	s.applied = base
	s.draft = base.clone()
	s.resetPagingLocked()
	s.serializeLocked(serializeCommitted, "")
	s.persistLocked("")
	s.startFetchLocked(fetchAction{criteria: s.applied.clone()})
	s.notifyLocked()
}

// SetSort changes the applied sort and fetches immediately.
func (s *Session) SetSort(field SortField, order SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.applied.Sort == field && s.applied.Order == order {
		return
	}
	s.applied.Sort = field
	s.applied.Order = order
	s.draft.Sort = field
	s.draft.Order = order
	s.resetPagingLocked()
	s.serializeLocked(serializeCommitted, "")
	s.persistLocked("")
	s.startFetchLocked(fetchAction{criteria: s.applied.clone()})
	s.notifyLocked()
}

// SetPageSize changes the page size and fetches immediately.
func (s *Session) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || n <= 0 || n == s.applied.PageSize {
		return
	}
	s.applied.PageSize = n
	s.draft.PageSize = n
	s.resetPagingLocked()
	s.serializeLocked(serializeCommitted, "")
	s.persistLocked("")
	s.startFetchLocked(fetchAction{criteria: s.applied.clone()})
	s.notifyLocked()
}
