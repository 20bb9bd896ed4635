// Package locations is the HTTP client for the location-tracking service.
package locations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the location-tracking service.
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

// RecordTransfer records a move of the given labware to a named location,
// attributed to the robot rather than the human operator.
func (c *Client) RecordTransfer(ctx context.Context, labwareBarcodes []string, location, robotSerial string) error {
	body := map[string]any{
		"labware_barcodes": labwareBarcodes,
		"location":         location,
		"user":             robotSerial,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("locations: encode transfer: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/labware/transfers", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("locations: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("locations: transfer to %s returned %d: %s", location, resp.StatusCode, excerpt)
	}
	return nil
}
