// Package remote provides an HTTP client for accessing a receiptdex server.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/receiptdex/receiptdex/internal/browse"
)

// Client provides remote API access to a receiptdex server. It implements
// browse.Searcher and browse.LinkChecker.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config holds configuration for creating a remote client.
type Config struct {
	URL           string
	APIKey        string
	AllowInsecure bool
	Timeout       time.Duration
}

// New creates a new remote client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("remote URL is required")
	}

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	// Enforce HTTPS unless AllowInsecure is set
	if parsedURL.Scheme == "http" && !cfg.AllowInsecure {
		return nil, fmt.Errorf("HTTPS required for remote connections\n\n" +
			"Options:\n" +
			"  1. Use HTTPS: [remote] url = \"https://host:8080\"\n" +
			"  2. For trusted networks: add 'allow_insecure = true' to [remote] in config.toml")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("URL scheme must be http or https, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return nil, fmt.Errorf("remote URL must include a host (e.g., http://host:8080)")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Close is a no-op for HTTP client.
func (c *Client) Close() error {
	return nil
}

// doRequest performs an authenticated HTTP GET against path with the given
// query parameters.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// apiError represents an error response from the API.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

const codeInvalidCursor = "invalid_cursor"

// handleErrorResponse reads an error response and returns an appropriate
// error. A 410 or an invalid_cursor code maps to browse.ErrInvalidCursor so
// the session can recover instead of surfacing a banner.
func handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if resp.StatusCode == http.StatusGone || apiErr.Error == codeInvalidCursor {
			return fmt.Errorf("API error (%d): %w", resp.StatusCode, browse.ErrInvalidCursor)
		}
		if apiErr.Message != "" {
			return fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
	}
	if resp.StatusCode == http.StatusGone {
		return fmt.Errorf("API error (%d): %w", resp.StatusCode, browse.ErrInvalidCursor)
	}

	return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
}

func setJoined(v url.Values, key string, vals []string) {
	if len(vals) > 0 {
		v.Set(key, strings.Join(vals, ","))
	}
}

func setFloat(v url.Values, key string, p *float64) {
	if p != nil {
		v.Set(key, strconv.FormatFloat(*p, 'f', -1, 64))
	}
}

func pagingValues(v url.Values, sort browse.SortField, order browse.SortOrder, pageSize int, cursor string) {
	if sort != "" {
		v.Set("sort", string(sort))
	}
	if order != "" {
		v.Set("order", string(order))
	}
	if pageSize > 0 {
		v.Set("limit", strconv.Itoa(pageSize))
	}
	if cursor != "" {
		v.Set("cursor", cursor)
	}
}

// Search fetches one page of criteria-driven search results.
func (c *Client) Search(ctx context.Context, req browse.SearchRequest) (*browse.SearchPage, error) {
	params := url.Values{}
	if req.Text != "" {
		params.Set("q", req.Text)
	}
	setJoined(params, "status", req.Status)
	setJoined(params, "currency", req.Currency)
	setJoined(params, "provider", req.Provider)
	if req.DateFrom != "" {
		params.Set("dateFrom", req.DateFrom)
	}
	if req.DateTo != "" {
		params.Set("dateTo", req.DateTo)
	}
	setFloat(params, "amountMin", req.AmountMin)
	setFloat(params, "amountMax", req.AmountMax)
	setFloat(params, "confidenceMin", req.ConfidenceMin)
	pagingValues(params, req.Sort, req.Order, req.PageSize, req.Cursor)

	page, err := c.fetchPage(ctx, "/api/v1/"+string(req.Scope)+"/search", params)
	if err != nil {
		return nil, eris.Wrap(err, "remote search")
	}
	return page, nil
}

// List fetches one page of the default listing.
func (c *Client) List(ctx context.Context, req browse.ListRequest) (*browse.SearchPage, error) {
	params := url.Values{}
	pagingValues(params, req.Sort, req.Order, req.PageSize, req.Cursor)

	page, err := c.fetchPage(ctx, "/api/v1/"+string(req.Scope), params)
	if err != nil {
		return nil, eris.Wrap(err, "remote list")
	}
	return page, nil
}

func (c *Client) fetchPage(ctx context.Context, path string, params url.Values) (*browse.SearchPage, error) {
	resp, err := c.doRequest(ctx, path, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, handleErrorResponse(resp)
	}

	var page browse.SearchPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode page response: %w", err)
	}
	return &page, nil
}

// CheckLink asks the server whether itemID has a linked counterpart record.
func (c *Client) CheckLink(ctx context.Context, itemID string) (browse.LinkStatus, error) {
	resp, err := c.doRequest(ctx, "/api/v1/links/"+url.PathEscape(itemID), nil)
	if err != nil {
		return browse.LinkStatus{}, eris.Wrap(err, "check link")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return browse.LinkStatus{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return browse.LinkStatus{}, eris.Wrap(handleErrorResponse(resp), "check link")
	}

	var ls browse.LinkStatus
	if err := json.NewDecoder(resp.Body).Decode(&ls); err != nil {
		return browse.LinkStatus{}, fmt.Errorf("decode link response: %w", err)
	}
	return ls, nil
}
