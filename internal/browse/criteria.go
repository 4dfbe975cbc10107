package browse

import (
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Scope identifies which record collection a session browses.
type Scope string

const (
	ScopeReceipts     Scope = "receipts"
	ScopeTransactions Scope = "transactions"
)

// SortField selects the column results are ordered by.
type SortField string

const (
	SortByDate       SortField = "date"
	SortByAmount     SortField = "amount"
	SortByTitle      SortField = "title"
	SortByConfidence SortField = "confidence"
)

// SortOrder is the direction of the active sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DefaultPageSize is used when neither config nor hydration provides one.
const DefaultPageSize = 20

// Set is an unordered, deduplicated collection of filter values.
// It marshals as a sorted JSON array so stored records are stable.
type Set map[string]struct{}

// NewSet builds a set from the given values, ignoring empties.
func NewSet(vals ...string) Set {
	s := make(Set, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

// Has reports whether v is in the set.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Values returns the members in sorted order.
func (s Set) Values() []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether two sets contain the same members.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if !other.Has(v) {
			return false
		}
	}
	return true
}

func (s Set) clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes a JSON array into the set.
func (s *Set) UnmarshalJSON(data []byte) error {
	var vals []string
	if err := json.Unmarshal(data, &vals); err != nil {
		return err
	}
	*s = NewSet(vals...)
	return nil
}

// Criteria is the full search/filter/sort state for a view. A session keeps
// two copies: a draft the user edits freely, and an applied copy that drives
// fetches. Draft edits never cause a fetch on their own.
type Criteria struct {
	Text          string    `json:"text,omitempty"`
	Status        Set       `json:"status,omitempty"`
	Currency      Set       `json:"currency,omitempty"`
	Provider      Set       `json:"provider,omitempty"`
	DateFrom      string    `json:"date_from,omitempty"`
	DateTo        string    `json:"date_to,omitempty"`
	AmountMin     *float64  `json:"amount_min,omitempty"`
	AmountMax     *float64  `json:"amount_max,omitempty"`
	ConfidenceMin *float64  `json:"confidence_min,omitempty"`
	Sort          SortField `json:"sort"`
	Order         SortOrder `json:"order"`
	PageSize      int       `json:"page_size"`
}

// DefaultCriteria returns the hard-coded default view state.
func DefaultCriteria(pageSize int) Criteria {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Criteria{
		Sort:     SortByDate,
		Order:    SortDesc,
		PageSize: pageSize,
	}
}

func (c Criteria) clone() Criteria {
	out := c
	out.Status = c.Status.clone()
	out.Currency = c.Currency.clone()
	out.Provider = c.Provider.clone()
	out.AmountMin = clonePtr(c.AmountMin)
	out.AmountMax = clonePtr(c.AmountMax)
	out.ConfidenceMin = clonePtr(c.ConfidenceMin)
	return out
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// HasFilters reports whether any non-text filter is active. Sort and page
// size are presentation state, not filters.
func (c Criteria) HasFilters() bool {
	return len(c.Status) > 0 || len(c.Currency) > 0 || len(c.Provider) > 0 ||
		c.DateFrom != "" || c.DateTo != "" ||
		c.AmountMin != nil || c.AmountMax != nil || c.ConfidenceMin != nil
}

// IsDefaultListing reports whether the criteria carry no search text and no
// filters, i.e. the view shows the default listing rather than search results.
func (c Criteria) IsDefaultListing() bool {
	return strings.TrimSpace(c.Text) == "" && !c.HasFilters()
}

// Addressable-location parameter keys. Multi-valued fields are comma-joined.
const (
	paramQuery         = "q"
	paramSort          = "sort"
	paramOrder         = "order"
	paramLimit         = "limit"
	paramStatus        = "status"
	paramCurrency      = "currency"
	paramProvider      = "provider"
	paramDateFrom      = "dateFrom"
	paramDateTo        = "dateTo"
	paramAmountMin     = "amountMin"
	paramAmountMax     = "amountMax"
	paramConfidenceMin = "confidenceMin"
	paramCursor        = "cursor"
)

// queryValues encodes the criteria as addressable-location parameters.
// Default values are omitted so the location stays shareable and short.
func (c Criteria) queryValues() url.Values {
	v := url.Values{}
	if t := strings.TrimSpace(c.Text); t != "" {
		v.Set(paramQuery, t)
	}
	setJoined := func(key string, s Set) {
		if len(s) > 0 {
			v.Set(key, strings.Join(s.Values(), ","))
		}
	}
	setJoined(paramStatus, c.Status)
	setJoined(paramCurrency, c.Currency)
	setJoined(paramProvider, c.Provider)
	if c.DateFrom != "" {
		v.Set(paramDateFrom, c.DateFrom)
	}
	if c.DateTo != "" {
		v.Set(paramDateTo, c.DateTo)
	}
	setFloat := func(key string, p *float64) {
		if p != nil {
			v.Set(key, strconv.FormatFloat(*p, 'f', -1, 64))
		}
	}
	setFloat(paramAmountMin, c.AmountMin)
	setFloat(paramAmountMax, c.AmountMax)
	setFloat(paramConfidenceMin, c.ConfidenceMin)
	if c.Sort != "" && c.Sort != SortByDate {
		v.Set(paramSort, string(c.Sort))
	}
	if c.Order != "" && c.Order != SortDesc {
		v.Set(paramOrder, string(c.Order))
	}
	if c.PageSize > 0 && c.PageSize != DefaultPageSize {
		v.Set(paramLimit, strconv.Itoa(c.PageSize))
	}
	return v
}

// criteriaFromValues decodes addressable-location parameters over a base
// criteria. Unknown keys are ignored; malformed numbers fall back to the base.
func criteriaFromValues(v url.Values, base Criteria) Criteria {
	c := base.clone()
	if v.Has(paramQuery) {
		c.Text = v.Get(paramQuery)
	}
	getSet := func(key string) Set {
		if raw := v.Get(key); raw != "" {
			return NewSet(strings.Split(raw, ",")...)
		}
		return nil
	}
	if s := getSet(paramStatus); s != nil {
		c.Status = s
	}
	if s := getSet(paramCurrency); s != nil {
		c.Currency = s
	}
	if s := getSet(paramProvider); s != nil {
		c.Provider = s
	}
	if d := v.Get(paramDateFrom); d != "" {
		c.DateFrom = d
	}
	if d := v.Get(paramDateTo); d != "" {
		c.DateTo = d
	}
	getFloat := func(key string) *float64 {
		if raw := v.Get(key); raw != "" {
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				return &f
			}
		}
		return nil
	}
	if f := getFloat(paramAmountMin); f != nil {
		c.AmountMin = f
	}
	if f := getFloat(paramAmountMax); f != nil {
		c.AmountMax = f
	}
	if f := getFloat(paramConfidenceMin); f != nil {
		c.ConfidenceMin = f
	}
	if s := v.Get(paramSort); s != "" {
		c.Sort = SortField(s)
	}
	if o := v.Get(paramOrder); o != "" {
		c.Order = SortOrder(o)
	}
	if l := v.Get(paramLimit); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			c.PageSize = n
		}
	}
	return c
}
