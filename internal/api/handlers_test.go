package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/receiptdex/receiptdex/internal/browse"
)

func pageIDs(page browse.SearchPage) []string {
	ids := make([]string, len(page.Items))
	for i, it := range page.Items {
		ids[i] = it.ID
	}
	return ids
}

func TestListDefaultSortIsDateDescending(t *testing.T) {
	srv := newTestServer(t, Config{}, nil)

	w := doGet(t, srv, "/api/v1/receipts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	page := decodePage(t, w)

	want := []string{"R4", "R3", "R2", "R1"}
	if diff := cmp.Diff(want, pageIDs(page)); diff != "" {
		t.Errorf("default listing order (-want +got):\n%s", diff)
	}
	if page.TotalCount == nil || *page.TotalCount != 4 {
		t.Errorf("TotalCount = %v, want 4", page.TotalCount)
	}
	if page.Page.HasNext || page.Page.HasPrev {
		t.Errorf("page info = %+v, want single page", page.Page)
	}
}

func TestListIgnoresFilterParams(t *testing.T) {
	srv := newTestServer(t, Config{}, nil)

	w := doGet(t, srv, "/api/v1/receipts?q=coffee&status=failed", nil)
	page := decodePage(t, w)
	if len(page.Items) != 4 {
		t.Errorf("listing returned %d items, want all 4 (filters belong to /search)", len(page.Items))
	}
}

func TestSearchFiltersByText(t *testing.T) {
	srv := newTestServer(t, Config{}, nil)

	w := doGet(t, srv, "/api/v1/receipts/search?q=coffee", nil)
	page := decodePage(t, w)

	want := []string{"R4", "R1"}
	if diff := cmp.Diff(want, pageIDs(page)); diff != "" {
		t.Errorf("text search results (-want +got):\n%s", diff)
	}
}

func TestSearchCombinesFilters(t *testing.T) {
	srv := newTestServer(t, Config{}, nil)

	w := doGet(t, srv, "/api/v1/receipts/search?status=processed,pending&currency=USD&amountMax=50", nil)
	page := decodePage(t, w)

	if diff := cmp.Diff([]string{"R1"}, pageIDs(page)); diff != "" {
		t.Errorf("combined filter results (-want +got):\n%s", diff)
	}
}

func TestSearchDateRange(t *testing.T) {
	srv := newTestServer(t, Config{}, nil)

	w := doGet(t, srv, "/api/v1/receipts/search?dateFrom=2026-01-11&dateTo=2026-01-15&order=asc", nil)
	page := decodePage(t, w)

	want := []string{"R2", "R3"}
	if diff := cmp.Diff(want, pageIDs(page)); diff != "" {
		t.Errorf("date range results (-want +got):\n%s", diff)
	}
}

func TestSearchSortByAmount(t *testing.T) {
	srv := newTestServer(t, Config{}, nil)

	w := doGet(t, srv, "/api/v1/receipts/search?sort=amount&order=asc", nil)
	page := decodePage(t, w)

	want := []string{"R1", "R3", "R2", "R4"}
	if diff := cmp.Diff(want, pageIDs(page)); diff != "" {
		t.Errorf("amount ascending (-want +got):\n%s", diff)
	}
}

func TestSearchConfidenceFloor(t *testing.T) {
	srv := newTestServer(t, Config{}, nil)

	w := doGet(t, srv, "/api/v1/receipts/search?confidenceMin=0.75", nil)
	page := decodePage(t, w)

	want := []string{"R2", "R1"}
	if diff := cmp.Diff(want, pageIDs(page)); diff != "" {
		t.Errorf("confidence floor results (-want +got):\n%s", diff)
	}
}

func TestCursorPagingWalksForwardAndBack(t *testing.T) {
	srv := newTestServer(t, Config{}, DemoCatalog())

	w := doGet(t, srv, "/api/v1/receipts/search?q=coffee&limit=5", nil)
	first := decodePage(t, w)
	if len(first.Items) != 5 || !first.Page.HasNext || first.Page.HasPrev {
		t.Fatalf("first page = %d items, %+v; want 5 items with next only", len(first.Items), first.Page)
	}

	w = doGet(t, srv, "/api/v1/receipts/search?q=coffee&limit=5&cursor="+url.QueryEscape(first.Page.NextCursor), nil)
	second := decodePage(t, w)
	if !second.Page.HasPrev {
		t.Fatal("second page reports HasPrev = false")
	}
	if cmp.Equal(pageIDs(first), pageIDs(second)) {
		t.Error("second page repeats the first page")
	}

	w = doGet(t, srv, "/api/v1/receipts/search?q=coffee&limit=5&cursor="+url.QueryEscape(second.Page.PrevCursor), nil)
	back := decodePage(t, w)
	if diff := cmp.Diff(pageIDs(first), pageIDs(back)); diff != "" {
		t.Errorf("prev cursor did not return to the first page (-first +back):\n%s", diff)
	}
}

func TestCursorWalkTerminates(t *testing.T) {
	srv := newTestServer(t, Config{}, DemoCatalog())

	seen := 0
	cursor := ""
	for hops := 0; ; hops++ {
		if hops > 50 {
			t.Fatal("cursor walk did not terminate")
		}
		path := "/api/v1/transactions?limit=20"
		if cursor != "" {
			path += "&cursor=" + url.QueryEscape(cursor)
		}
		page := decodePage(t, doGet(t, srv, path, nil))
		seen += len(page.Items)
		if !page.Page.HasNext {
			break
		}
		cursor = page.Page.NextCursor
	}
	if seen != 90 {
		t.Errorf("walked %d transactions, want 90", seen)
	}
}

func TestGarbageCursorReturns410(t *testing.T) {
	srv := newTestServer(t, Config{}, nil)

	w := doGet(t, srv, "/api/v1/receipts/search?cursor=not-a-token", nil)
	if w.Code != http.StatusGone {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusGone)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error != "invalid_cursor" {
		t.Errorf("error code = %q, want invalid_cursor", resp.Error)
	}
}

func TestCursorBoundToCriteria(t *testing.T) {
	srv := newTestServer(t, Config{}, DemoCatalog())

	w := doGet(t, srv, "/api/v1/receipts/search?q=coffee&limit=5", nil)
	first := decodePage(t, w)
	if first.Page.NextCursor == "" {
		t.Fatal("no next cursor on first page")
	}

	// Presenting the token under different criteria must be rejected, not
	// silently reinterpreted.
	w = doGet(t, srv, "/api/v1/receipts/search?q=shell&limit=5&cursor="+url.QueryEscape(first.Page.NextCursor), nil)
	if w.Code != http.StatusGone {
		t.Errorf("status = %d for criteria-mismatched cursor, want %d", w.Code, http.StatusGone)
	}
}

func TestCursorFromOtherServerRejected(t *testing.T) {
	a := newTestServer(t, Config{}, DemoCatalog())
	b := newTestServer(t, Config{}, DemoCatalog())

	first := decodePage(t, doGet(t, a, "/api/v1/receipts?limit=5", nil))
	if first.Page.NextCursor == "" {
		t.Fatal("no next cursor on first page")
	}

	// Keys are per-process, so a restart invalidates outstanding tokens.
	w := doGet(t, b, "/api/v1/receipts?limit=5&cursor="+url.QueryEscape(first.Page.NextCursor), nil)
	if w.Code != http.StatusGone {
		t.Errorf("status = %d for foreign cursor, want %d", w.Code, http.StatusGone)
	}
}

func TestLinkEndpoint(t *testing.T) {
	srv := newTestServer(t, Config{}, nil)

	w := doGet(t, srv, "/api/v1/links/R1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var ls browse.LinkStatus
	if err := json.NewDecoder(w.Body).Decode(&ls); err != nil {
		t.Fatal(err)
	}
	if !ls.Exists || ls.LinkedID != "T1" {
		t.Errorf("link = %+v, want R1 linked to T1", ls)
	}

	w = doGet(t, srv, "/api/v1/links/R3", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d for unlinked item, want 200", w.Code)
	}
	if err := json.NewDecoder(w.Body).Decode(&ls); err != nil {
		t.Fatal(err)
	}
	if ls.Exists {
		t.Errorf("link = %+v for unlinked item, want exists=false", ls)
	}

	w = doGet(t, srv, "/api/v1/links/R999", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d for unknown item, want 404", w.Code)
	}
}

func TestLimitClamped(t *testing.T) {
	srv := newTestServer(t, Config{}, DemoCatalog())

	page := decodePage(t, doGet(t, srv, "/api/v1/receipts?limit=9999", nil))
	if len(page.Items) != 20 {
		t.Errorf("items = %d with absurd limit, want clamped default of 20", len(page.Items))
	}

	page = decodePage(t, doGet(t, srv, "/api/v1/receipts?limit=0", nil))
	if len(page.Items) != 20 {
		t.Errorf("items = %d with zero limit, want default of 20", len(page.Items))
	}
}
