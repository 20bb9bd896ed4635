// Package platelookup is the HTTP client for the source/destination plate
// lookup service.
package platelookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"plateops/pkg/domain"
)

// Client talks to the plate lookup service.
type Client struct {
	baseURL string
	http    *http.Client
}

// New constructs a client for the given base URL.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// SourcePlateRecords fetches the raw sample records picked from a source
// plate, including the per-record picked flag and run id.
func (c *Client) SourcePlateRecords(ctx context.Context, barcode string) ([]domain.LookupRecord, error) {
	return c.records(ctx, fmt.Sprintf("/plates/source/%s/records", url.PathEscape(barcode)))
}

// DestinationPlateWells fetches the well records of a destination plate,
// each carrying a destination coordinate.
func (c *Client) DestinationPlateWells(ctx context.Context, barcode string) ([]domain.LookupRecord, error) {
	return c.records(ctx, fmt.Sprintf("/plates/destination/%s/wells", url.PathEscape(barcode)))
}

func (c *Client) records(ctx context.Context, path string) ([]domain.LookupRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("plate lookup: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("plate lookup: %s returned %d: %s", path, resp.StatusCode, excerpt)
	}
	var out struct {
		Records []domain.LookupRecord `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("plate lookup: decode %s: %w", path, err)
	}
	return out.Records, nil
}
