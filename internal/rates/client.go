// Package rates looks up exchange rates and caches the last known quote.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultBaseURL is the public Frankfurter endpoint.
	DefaultBaseURL = "https://api.frankfurter.app"
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("rates: rate limited")
	// ErrUnsupportedPair indicates the API does not know one of the currencies.
	ErrUnsupportedPair = errors.New("rates: unsupported currency pair")
	// ErrNoRate indicates a response without a usable rate.
	ErrNoRate = errors.New("rates: no rate in response")
)

// Client fetches rates from a Frankfurter-compatible API.
// Each call makes exactly one request.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL. Empty means DefaultBaseURL.
func NewClient(baseURL string, hc *http.Client) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{baseURL: baseURL, http: hc}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Fetch returns the rate converting one unit of from into to.
func (c *Client) Fetch(ctx context.Context, from, to string) (decimal.Decimal, error) {
	resp, err := c.Latest(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	rate, ok := resp.Rates[to]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s/%s", ErrNoRate, from, to)
	}
	// Rates are quoted for resp.Amount units of the base.
	if resp.Amount.IsPositive() && !resp.Amount.Equal(decimal.NewFromInt(1)) {
		rate = rate.Div(resp.Amount)
	}
	return rate, nil
}

// Latest fetches the latest quote of from against to.
func (c *Client) Latest(ctx context.Context, from, to string) (*LatestResponse, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)

	body, err := c.get(ctx, "/latest?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var lr LatestResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, fmt.Errorf("rates: parsing latest: %w", err)
	}
	return &lr, nil
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("rates: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/fxtrip/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("rates: reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && er.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedPair, er.Message)
		}
		return nil, ErrUnsupportedPair
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rates: unexpected status %d", resp.StatusCode)
	}
	return body, nil
}
