package browse

import "context"

// Item is a transport-only projection of one record row. The coordinator is
// agnostic to its domain meaning beyond the identifier.
type Item struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Date       string  `json:"date"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Status     string  `json:"status"`
	Provider   string  `json:"provider"`
	Confidence float64 `json:"confidence"`
}

// PageResult carries the collaborator's pagination tokens for one page.
// Cursors are opaque: stored and replayed, never parsed or combined.
type PageResult struct {
	NextCursor string `json:"next_cursor,omitempty"`
	PrevCursor string `json:"prev_cursor,omitempty"`
	HasNext    bool   `json:"has_next"`
	HasPrev    bool   `json:"has_prev"`
}

// SearchPage is one page of results from the search collaborator.
type SearchPage struct {
	Items      []Item     `json:"items"`
	Page       PageResult `json:"page_info"`
	TotalCount *int64     `json:"total_count,omitempty"`
}

// SearchRequest is the wire form of a criteria-driven page fetch.
type SearchRequest struct {
	Scope         Scope
	Text          string
	Status        []string
	Currency      []string
	Provider      []string
	DateFrom      string
	DateTo        string
	AmountMin     *float64
	AmountMax     *float64
	ConfidenceMin *float64
	Sort          SortField
	Order         SortOrder
	PageSize      int
	Cursor        string
}

// ListRequest fetches the default listing: no text, no filters. The server
// may serve this from a cheaper path than generic search, so it is a
// distinct operation rather than a degenerate SearchRequest.
type ListRequest struct {
	Scope    Scope
	Sort     SortField
	Order    SortOrder
	PageSize int
	Cursor   string
}

// Searcher is the remote search collaborator. Implementations must honor
// context cancellation and return ErrInvalidCursor (via errors.Is) when the
// supplied cursor is rejected as invalid or expired.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) (*SearchPage, error)
	List(ctx context.Context, req ListRequest) (*SearchPage, error)
}

// LinkStatus is the existence-check collaborator's answer for one item.
type LinkStatus struct {
	Exists   bool   `json:"exists"`
	LinkedID string `json:"linked_id,omitempty"`
}

// LinkChecker is the existence-check collaborator used for row enrichment.
type LinkChecker interface {
	CheckLink(ctx context.Context, itemID string) (LinkStatus, error)
}

// Storage persists view records under view-scoped keys.
type Storage interface {
	Save(key string, v any) error
	Load(key string, v any) (bool, error)
}

// requestFromCriteria builds the wire request for a criteria-driven fetch.
func requestFromCriteria(scope Scope, c Criteria, cursor string) SearchRequest {
	return SearchRequest{
		Scope:         scope,
		Text:          c.Text,
		Status:        c.Status.Values(),
		Currency:      c.Currency.Values(),
		Provider:      c.Provider.Values(),
		DateFrom:      c.DateFrom,
		DateTo:        c.DateTo,
		AmountMin:     clonePtr(c.AmountMin),
		AmountMax:     clonePtr(c.AmountMax),
		ConfidenceMin: clonePtr(c.ConfidenceMin),
		Sort:          c.Sort,
		Order:         c.Order,
		PageSize:      c.PageSize,
		Cursor:        cursor,
	}
}
