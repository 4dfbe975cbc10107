package browse

import "context"

// Reconcile enriches the given rows with their linked-record flag. For each
// item id not already cached, one independent existence check is issued; the
// checks are not batched and are not cancelled when the page changes, so a
// response for an id that scrolled off screen is still cached for reuse.
//
// A failed check caches the safe negative default instead of retrying; the
// id stays eligible for a later reconciliation pass. Concurrent checks for
// the same id are collapsed into one request.
func (s *Session) Reconcile(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconcileLocked(items)
}

// reconcileLocked kicks off checks for uncached ids. Caller holds s.mu; the
// checks themselves run without the lock and never block rendering.
func (s *Session) reconcileLocked(items []Item) {
	if s.links == nil || s.closed {
		return
	}
	for _, it := range items {
		id := it.ID
		if id == "" {
			continue
		}
		if _, ok := s.linkCache[id]; ok && !s.linkFailed[id] {
			continue
		}
		go s.checkLink(id)
	}
}

func (s *Session) checkLink(id string) {
	v, err, _ := s.linkGroup.Do(id, func() (any, error) {
		return s.links.CheckLink(context.Background(), id)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err != nil {
		// Safe negative default; eligible for a later pass.
		if _, ok := s.linkCache[id]; !ok {
			s.linkCache[id] = LinkEntry{}
		}
		s.linkFailed[id] = true
		s.logger.Debug("link check failed", "id", id, "error", err)
		s.notifyLocked()
		return
	}
	status := v.(LinkStatus)
	s.linkCache[id] = LinkEntry{Linked: status.Exists, LinkedID: status.LinkedID}
	delete(s.linkFailed, id)
	s.notifyLocked()
}
