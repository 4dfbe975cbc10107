package browse

import "github.com/receiptdex/receiptdex/internal/location"

// serializeMode selects how a state change is mirrored into the addressable
// location.
type serializeMode int

const (
	// serializeSilent rewrites the current location entry in place. Used
	// while text is being actively typed so back/forward navigation is not
	// spammed with one entry per keystroke.
	serializeSilent serializeMode = iota

	// serializeCommitted pushes a new location entry. Used for explicit
	// filter apply, sort change, page-size change, and next/prev, so
	// back/forward steps through meaningful view states.
	serializeCommitted
)

// ViewRecord is the durable per-view record: the applied criteria plus the
// cursor of the last committed page.
type ViewRecord struct {
	Criteria Criteria `json:"criteria"`
	Cursor   string   `json:"cursor,omitempty"`
}

func (s *Session) viewKey() string {
	return string(s.scope)
}

func (s *Session) locationPath() string {
	return "/" + string(s.scope)
}

// Hydrate loads the initial view state and issues the first fetch.
// Precedence: addressable-location parameters, then the persisted view
// record, then hard-coded defaults. A cursor present in the hydrated
// location triggers a single page fetch for that cursor before any
// criteria-driven fetch, and is then cleared from the location so a refresh
// cannot replay a stale token.
func (s *Session) Hydrate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	crit := DefaultCriteria(s.applied.PageSize)
	cursor := ""
	hydrated := false

	if s.loc != nil {
		if e := s.loc.Current(); len(e.Params) > 0 {
			crit = criteriaFromValues(e.Params, crit)
			cursor = e.Params.Get(paramCursor)
			hydrated = true
		}
	}
	if !hydrated && s.store != nil {
		var rec ViewRecord
		if ok, err := s.store.Load(s.viewKey(), &rec); err == nil && ok {
			crit = rec.Criteria.clone()
			if crit.PageSize <= 0 {
				crit.PageSize = s.applied.PageSize
			}
			if crit.Sort == "" {
				crit.Sort = SortByDate
			}
			if crit.Order == "" {
				crit.Order = SortDesc
			}
			hydrated = true
		}
	}

	s.applied = crit
	s.draft = crit.clone()
	s.resetPagingLocked()

	if cursor != "" {
		s.startFetchLocked(fetchAction{criteria: s.applied.clone(), cursor: cursor})
		s.loc.SetParam(paramCursor, "")
		s.notifyLocked()
		return
	}
	s.startFetchLocked(fetchAction{criteria: s.applied.clone()})
	s.notifyLocked()
}

// serializeLocked mirrors the applied criteria (and, for committed
// navigation, the cursor of the addressed page) into the location.
// Caller holds s.mu.
func (s *Session) serializeLocked(mode serializeMode, cursor string) {
	if s.loc == nil {
		return
	}
	params := s.applied.queryValues()
	if cursor != "" {
		params.Set(paramCursor, cursor)
	}
	if mode == serializeCommitted {
		s.loc.Push(s.locationPath(), params)
	} else {
		s.loc.Replace(s.locationPath(), params)
	}
}

// persistLocked writes the view record to durable storage. Failures are
// logged and otherwise ignored: losing a resume point must not break
// browsing.
func (s *Session) persistLocked(cursor string) {
	if s.store == nil {
		return
	}
	rec := ViewRecord{Criteria: s.applied.clone(), Cursor: cursor}
	if err := s.store.Save(s.viewKey(), rec); err != nil {
		s.logger.Debug("persist view record failed", "view", s.viewKey(), "error", err)
	}
}

// NavigateBack steps one entry back in the location history and re-hydrates
// the view from it. Reports false when there is no older entry.
func (s *Session) NavigateBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.loc == nil {
		return false
	}
	e, ok := s.loc.Back()
	if !ok {
		return false
	}
	s.restoreEntryLocked(e)
	return true
}

// NavigateForward steps one entry forward in the location history.
func (s *Session) NavigateForward() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.loc == nil {
		return false
	}
	e, ok := s.loc.Forward()
	if !ok {
		return false
	}
	s.restoreEntryLocked(e)
	return true
}

// restoreEntryLocked applies a history entry's criteria and refetches,
// without writing the location (the history position already moved).
func (s *Session) restoreEntryLocked(e location.Entry) {
	s.debounceGen++
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}

	crit := criteriaFromValues(e.Params, DefaultCriteria(s.applied.PageSize))
	s.applied = crit
	s.draft = crit.clone()
	s.resetPagingLocked()

	cursor := e.Params.Get(paramCursor)
	s.startFetchLocked(fetchAction{criteria: s.applied.clone(), cursor: cursor})
	s.notifyLocked()
}
