// Package jina provides a client for the Jina AI search and reader APIs.
package jina

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the Jina AI operations used for deal research.
type Client interface {
	// Search performs a web search via s.jina.ai.
	Search(ctx context.Context, query string, opts ...SearchOption) ([]SearchResult, error)
	// Read fetches a URL via r.jina.ai and returns its markdown content.
	Read(ctx context.Context, targetURL string) (*Page, error)
}

// SearchResult is a single web search hit.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	Description string `json:"description"`
}

// Page is the readable content of a single URL.
type Page struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type searchResponse struct {
	Code int            `json:"code"`
	Data []SearchResult `json:"data"`
}

type readResponse struct {
	Code int  `json:"code"`
	Data Page `json:"data"`
}

// SearchOption configures a search request.
type SearchOption func(*searchOpts)

type searchOpts struct {
	siteFilter string
}

// WithSiteFilter restricts search results to a specific domain.
func WithSiteFilter(domain string) SearchOption {
	return func(o *searchOpts) {
		o.siteFilter = domain
	}
}

// Option configures the Jina client.
type Option func(*httpClient)

// WithReaderBaseURL sets a custom reader base URL (for testing).
func WithReaderBaseURL(url string) Option {
	return func(c *httpClient) {
		c.readerBaseURL = url
	}
}

// WithSearchBaseURL sets a custom search base URL (for testing).
func WithSearchBaseURL(url string) Option {
	return func(c *httpClient) {
		c.searchBaseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey        string
	readerBaseURL string
	searchBaseURL string
	http          *http.Client
}

// NewClient creates a new Jina AI client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:        apiKey,
		readerBaseURL: "https://r.jina.ai",
		searchBaseURL: "https://s.jina.ai",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string, opts ...SearchOption) ([]SearchResult, error) {
	so := &searchOpts{}
	for _, opt := range opts {
		opt(so)
	}

	reqURL := fmt.Sprintf("%s/%s", c.searchBaseURL, url.QueryEscape(query))
	if so.siteFilter != "" {
		reqURL += "?site=" + url.QueryEscape(so.siteFilter)
	}

	body, statusCode, err := c.getJSON(ctx, reqURL)
	if err != nil {
		return nil, eris.Wrap(err, "jina: search request failed")
	}

	// Jina returns 422 when no results exist for the query. Empty results,
	// not an error.
	if statusCode == http.StatusUnprocessableEntity {
		return nil, nil
	}
	if statusCode != http.StatusOK {
		return nil, eris.Errorf("jina: search unexpected status %d: %s", statusCode, string(body))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "jina: unmarshal search response")
	}
	return result.Data, nil
}

func (c *httpClient) Read(ctx context.Context, targetURL string) (*Page, error) {
	reqURL := fmt.Sprintf("%s/%s", c.readerBaseURL, targetURL)

	body, statusCode, err := c.getJSON(ctx, reqURL, "X-Return-Format", "markdown")
	if err != nil {
		return nil, eris.Wrap(err, "jina: read request failed")
	}
	if statusCode != http.StatusOK {
		return nil, eris.Errorf("jina: read unexpected status %d: %s", statusCode, string(body))
	}

	var result readResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "jina: unmarshal read response")
	}
	return &result.Data, nil
}

// getJSON issues an authenticated GET with retries on transient failures
// (429, 500, 502, 503). Extra headers are passed as key/value pairs.
func (c *httpClient) getJSON(ctx context.Context, reqURL string, headers ...string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, eris.Wrap(err, "jina: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := c.http.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if readErr != nil {
				return nil, resp.StatusCode, eris.Wrap(readErr, "jina: read response body")
			}
			if !retryableStatusCode(resp.StatusCode) {
				return body, resp.StatusCode, nil
			}
			lastErr = eris.Errorf("jina: status %d: %s", resp.StatusCode, string(body))
		}

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, 0, lastErr
}

func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}
