package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/receiptdex/receiptdex/internal/browse"
)

// testLogger returns a logger for tests that discards non-error output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestServer builds a server over a small fixed catalog.
func newTestServer(t *testing.T, cfg Config, catalog *Catalog) *Server {
	t.Helper()
	if catalog == nil {
		catalog = smallCatalog()
	}
	srv, err := NewServer(cfg, catalog, testLogger())
	if err != nil {
		t.Fatalf("NewServer error = %v", err)
	}
	return srv
}

func smallCatalog() *Catalog {
	return &Catalog{
		Receipts: []browse.Item{
			{ID: "R1", Title: "Blue Bottle Coffee", Date: "2026-01-10", Amount: 4.50, Currency: "USD", Status: "processed", Provider: "textract", Confidence: 0.95},
			{ID: "R2", Title: "Office Depot", Date: "2026-01-12", Amount: 89.99, Currency: "USD", Status: "pending", Provider: "textract", Confidence: 0.80},
			{ID: "R3", Title: "Cafe Roma", Date: "2026-01-14", Amount: 12.00, Currency: "EUR", Status: "processed", Provider: "tesseract", Confidence: 0.60},
			{ID: "R4", Title: "Coffee Supplies Ltd", Date: "2026-01-16", Amount: 140.25, Currency: "GBP", Status: "failed", Provider: "manual", Confidence: 0.40},
		},
		Transactions: []browse.Item{
			{ID: "T1", Title: "BLUE BOTTLE 042", Date: "2026-01-10", Amount: 4.50, Currency: "USD", Status: "settled"},
			{ID: "T2", Title: "OFFICE DEPOT #11", Date: "2026-01-13", Amount: 89.99, Currency: "USD", Status: "settled"},
		},
		Links: map[string]string{"R1": "T1", "T1": "R1", "R2": "T2", "T2": "R2"},
	}
}

func doGet(t *testing.T, srv *Server, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func decodePage(t *testing.T, w *httptest.ResponseRecorder) browse.SearchPage {
	t.Helper()
	var page browse.SearchPage
	if err := json.NewDecoder(w.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v (body: %s)", err, w.Body.String())
	}
	return page
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, Config{}, nil)

	w := doGet(t, srv, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("health status = %q, want 'ok'", resp["status"])
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(t, Config{APIKey: "secret-key"}, nil)

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
	}{
		{"no key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "wrong"}, http.StatusUnauthorized},
		{"x-api-key header", map[string]string{"X-API-Key": "secret-key"}, http.StatusOK},
		{"bearer token", map[string]string{"Authorization": "Bearer secret-key"}, http.StatusOK},
		{"raw authorization", map[string]string{"Authorization": "secret-key"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(t, srv, "/api/v1/receipts", tt.headers)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestAuthNotRequiredWhenNoKeyConfigured(t *testing.T) {
	srv := newTestServer(t, Config{}, nil)

	w := doGet(t, srv, "/api/v1/receipts", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d without configured key", w.Code, http.StatusOK)
	}
}

func TestHealthSkipsAuth(t *testing.T) {
	srv := newTestServer(t, Config{APIKey: "secret-key"}, nil)

	w := doGet(t, srv, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want %d without credentials", w.Code, http.StatusOK)
	}
}

func TestUnknownScopeReturns404(t *testing.T) {
	srv := newTestServer(t, Config{}, nil)

	w := doGet(t, srv, "/api/v1/invoices", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d for unknown scope", w.Code, http.StatusNotFound)
	}
}
