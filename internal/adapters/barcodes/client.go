// Package barcodes is the HTTP client for the barcode-issuing service.
package barcodes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const maxAttempts = 3

// Client talks to the barcode-issuing service. Transient connection
// failures are retried a bounded number of times; service-side rejections
// are not.
type Client struct {
	baseURL string
	http    *http.Client
	backoff time.Duration
}

// New constructs a client for the given base URL.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient, backoff: 500 * time.Millisecond}
}

// IssueBarcodes asks for count newly issued barcodes under the centre
// prefix.
func (c *Client) IssueBarcodes(ctx context.Context, centrePrefix string, count int) ([]string, error) {
	if count <= 0 {
		return nil, fmt.Errorf("barcodes: count must be positive, got %d", count)
	}
	path := fmt.Sprintf("%s/barcodes/%s/new?count=%d", c.baseURL, url.PathEscape(centrePrefix), count)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, path, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			// Connection-level failure: retry.
			lastErr = err
			continue
		}
		barcodes, err := decodeBarcodes(resp, centrePrefix, count)
		if err != nil {
			return nil, fmt.Errorf("barcodes: %w", err)
		}
		return barcodes, nil
	}
	return nil, fmt.Errorf("barcodes: centre %s unreachable after %d attempts: %w", centrePrefix, maxAttempts, lastErr)
}

func decodeBarcodes(resp *http.Response, centrePrefix string, count int) ([]string, error) {
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("centre %s returned %d: %s", centrePrefix, resp.StatusCode, excerpt)
	}
	var out struct {
		Barcodes []string `json:"barcodes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode centre %s response: %w", centrePrefix, err)
	}
	if len(out.Barcodes) != count {
		return nil, fmt.Errorf("centre %s issued %d barcodes, requested %d", centrePrefix, len(out.Barcodes), count)
	}
	return out.Barcodes, nil
}
