package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/receiptdex/receiptdex/internal/browse"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, err string, message string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: message})
}

// query holds the parsed filter, sort and paging parameters of one request.
type query struct {
	scope         browse.Scope
	text          string
	status        map[string]bool
	currency      map[string]bool
	provider      map[string]bool
	dateFrom      string
	dateTo        string
	amountMin     *float64
	amountMax     *float64
	confidenceMin *float64
	sortBy        browse.SortField
	order         browse.SortOrder
	limit         int
	cursor        string
}

func parseSetParam(v url.Values, key string) map[string]bool {
	raw := v.Get(key)
	if raw == "" {
		return nil
	}
	set := make(map[string]bool)
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			set[s] = true
		}
	}
	return set
}

func parseFloatParam(v url.Values, key string) *float64 {
	raw := v.Get(key)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseQuery(r *http.Request, scope browse.Scope) query {
	v := r.URL.Query()
	q := query{
		scope:         scope,
		text:          strings.TrimSpace(v.Get("q")),
		status:        parseSetParam(v, "status"),
		currency:      parseSetParam(v, "currency"),
		provider:      parseSetParam(v, "provider"),
		dateFrom:      v.Get("dateFrom"),
		dateTo:        v.Get("dateTo"),
		amountMin:     parseFloatParam(v, "amountMin"),
		amountMax:     parseFloatParam(v, "amountMax"),
		confidenceMin: parseFloatParam(v, "confidenceMin"),
		sortBy:        browse.SortField(v.Get("sort")),
		order:         browse.SortOrder(v.Get("order")),
		cursor:        v.Get("cursor"),
	}
	if q.sortBy == "" {
		q.sortBy = browse.SortByDate
	}
	if q.order == "" {
		q.order = browse.SortDesc
	}
	q.limit, _ = strconv.Atoi(v.Get("limit"))
	if q.limit < 1 || q.limit > 100 {
		q.limit = 20
	}
	return q
}

// fingerprint is a stable digest of everything that affects page
// composition. Cursors are only honored for the criteria they were
// issued under.
func (q query) fingerprint() string {
	var b strings.Builder
	b.WriteString(string(q.scope))
	b.WriteByte('\n')
	b.WriteString(strings.ToLower(q.text))
	b.WriteByte('\n')
	writeSet := func(set map[string]bool) {
		keys := make([]string, 0, len(set))
		for k := range set {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(strings.Join(keys, ","))
		b.WriteByte('\n')
	}
	writeSet(q.status)
	writeSet(q.currency)
	writeSet(q.provider)
	b.WriteString(q.dateFrom + "\n" + q.dateTo + "\n")
	writeFloat := func(p *float64) {
		if p != nil {
			b.WriteString(strconv.FormatFloat(*p, 'f', -1, 64))
		}
		b.WriteByte('\n')
	}
	writeFloat(q.amountMin)
	writeFloat(q.amountMax)
	writeFloat(q.confidenceMin)
	b.WriteString(string(q.sortBy) + "\n" + string(q.order) + "\n" + strconv.Itoa(q.limit))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}

func (q query) matches(it browse.Item) bool {
	if q.text != "" && !strings.Contains(strings.ToLower(it.Title), strings.ToLower(q.text)) &&
		!strings.Contains(strings.ToLower(it.ID), strings.ToLower(q.text)) {
		return false
	}
	if q.status != nil && !q.status[it.Status] {
		return false
	}
	if q.currency != nil && !q.currency[it.Currency] {
		return false
	}
	if q.provider != nil && !q.provider[it.Provider] {
		return false
	}
	// ISO dates compare correctly as strings.
	if q.dateFrom != "" && it.Date < q.dateFrom {
		return false
	}
	if q.dateTo != "" && it.Date > q.dateTo {
		return false
	}
	if q.amountMin != nil && it.Amount < *q.amountMin {
		return false
	}
	if q.amountMax != nil && it.Amount > *q.amountMax {
		return false
	}
	if q.confidenceMin != nil && it.Confidence < *q.confidenceMin {
		return false
	}
	return true
}

func (q query) sortItems(items []browse.Item) {
	less := func(a, b browse.Item) bool {
		switch q.sortBy {
		case browse.SortByAmount:
			if a.Amount != b.Amount {
				return a.Amount < b.Amount
			}
		case browse.SortByTitle:
			if a.Title != b.Title {
				return a.Title < b.Title
			}
		case browse.SortByConfidence:
			if a.Confidence != b.Confidence {
				return a.Confidence < b.Confidence
			}
		default:
			if a.Date != b.Date {
				return a.Date < b.Date
			}
		}
		return a.ID < b.ID
	}
	sort.SliceStable(items, func(i, j int) bool {
		if q.order == browse.SortAsc {
			return less(items[i], items[j])
		}
		return less(items[j], items[i])
	})
}

// handleSearch serves one page of filtered, sorted results for a scope.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	scope := browse.Scope(chi.URLParam(r, "scope"))
	items, ok := s.catalog.items(scope)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_scope", "Unknown collection: "+string(scope))
		return
	}
	s.servePage(w, parseQuery(r, scope), items)
}

// handleList serves the default listing for a scope: no text, no filters,
// paging and sort only.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	scope := browse.Scope(chi.URLParam(r, "scope"))
	items, ok := s.catalog.items(scope)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_scope", "Unknown collection: "+string(scope))
		return
	}

	q := parseQuery(r, scope)
	q.text = ""
	q.status, q.currency, q.provider = nil, nil, nil
	q.dateFrom, q.dateTo = "", ""
	q.amountMin, q.amountMax, q.confidenceMin = nil, nil, nil
	s.servePage(w, q, items)
}

func (s *Server) servePage(w http.ResponseWriter, q query, items []browse.Item) {
	fp := q.fingerprint()

	offset := 0
	if q.cursor != "" {
		payload, err := s.cursors.decode(q.cursor, fp)
		if err != nil {
			writeError(w, http.StatusGone, "invalid_cursor", "Cursor is invalid or was issued for different criteria")
			return
		}
		offset = payload.Offset
	}

	matched := make([]browse.Item, 0, len(items))
	for _, it := range items {
		if q.matches(it) {
			matched = append(matched, it)
		}
	}
	q.sortItems(matched)

	total := int64(len(matched))
	if offset > len(matched) {
		// The data set shrank under the token.
		writeError(w, http.StatusGone, "invalid_cursor", "Cursor points past the end of the result set")
		return
	}

	end := offset + q.limit
	if end > len(matched) {
		end = len(matched)
	}

	page := browse.SearchPage{
		Items:      matched[offset:end],
		TotalCount: &total,
	}
	if end < len(matched) {
		page.Page.HasNext = true
		page.Page.NextCursor = s.cursors.encode(cursorPayload{Fingerprint: fp, Offset: end})
	}
	if offset > 0 {
		prev := offset - q.limit
		if prev < 0 {
			prev = 0
		}
		page.Page.HasPrev = true
		page.Page.PrevCursor = s.cursors.encode(cursorPayload{Fingerprint: fp, Offset: prev})
	}

	writeJSON(w, http.StatusOK, page)
}

// handleLink answers whether an item has a linked counterpart record.
func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if linked, ok := s.catalog.Links[id]; ok {
		writeJSON(w, http.StatusOK, browse.LinkStatus{Exists: true, LinkedID: linked})
		return
	}
	if !s.catalog.contains(id) {
		writeError(w, http.StatusNotFound, "not_found", "Unknown item: "+id)
		return
	}
	writeJSON(w, http.StatusOK, browse.LinkStatus{})
}
