package browse

// direction tags a fetch with the navigation that produced it, so the page
// index estimate knows whether to step.
type direction int

const (
	dirNone direction = iota
	dirNext
	dirPrev
)

// fetchAction captures exactly one primary fetch: the criteria it ran with,
// the cursor it supplied (if any), and the navigation direction. It is
// overwritten on every new primary fetch attempt and consumed, not cleared,
// by manual retry.
type fetchAction struct {
	criteria Criteria
	cursor   string
	dir      direction
}

func (a fetchAction) clone() fetchAction {
	out := a
	out.criteria = a.criteria.clone()
	return out
}

// Retry re-invokes the last recorded primary fetch verbatim. If nothing was
// ever recorded it falls back to the default listing. Cancelled attempts were
// recorded when issued, so retrying after a supersede replays the newest
// attempt, never an older one.
func (s *Session) Retry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastAction == nil {
		s.startFetchLocked(fetchAction{criteria: s.applied.clone()})
		s.notifyLocked()
		return
	}
	s.startFetchLocked(s.lastAction.clone())
	s.notifyLocked()
}
