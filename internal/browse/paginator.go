package browse

// Next fetches the following page using the stored next cursor and the
// current applied criteria. The token is replayed exactly as issued; it is
// never parsed, combined, or mutated. Reports false when no next page is
// available.
func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.page.HasNext || s.page.NextCursor == "" {
		return false
	}
	s.startFetchLocked(fetchAction{
		criteria: s.applied.clone(),
		cursor:   s.page.NextCursor,
		dir:      dirNext,
	})
	s.notifyLocked()
	return true
}

// Prev fetches the preceding page using the stored prev cursor. Reports
// false when already on the first available page.
func (s *Session) Prev() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.page.HasPrev || s.page.PrevCursor == "" {
		return false
	}
	s.startFetchLocked(fetchAction{
		criteria: s.applied.clone(),
		cursor:   s.page.PrevCursor,
		dir:      dirPrev,
	})
	s.notifyLocked()
	return true
}

// recoverExpiredPageLocked handles a rejected pagination token: reset to page
// one, drop both cursors, re-issue a fetch for the current criteria, and
// surface a transient notice instead of the error banner.
func (s *Session) recoverExpiredPageLocked() {
	s.resetPagingLocked()
	s.notice = "Page expired, reloaded from the start"
	s.serializeLocked(serializeSilent, "")
	s.startFetchLocked(fetchAction{criteria: s.applied.clone()})
}
