// Package samplestore is the HTTP client for the sample-tracking system.
package samplestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"plateops/pkg/domain"
)

// Client talks to the sample store's REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New constructs a client for the given base URL. A nil httpClient falls
// back to a default with a 10s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// SamplesByUUID resolves full sample records for the given UUIDs.
func (c *Client) SamplesByUUID(ctx context.Context, uuids []string) ([]domain.SampleRecord, error) {
	body := map[string][]string{"uuids": uuids}
	var out struct {
		Samples []domain.SampleRecord `json:"samples"`
	}
	if err := c.post(ctx, "/samples/search", body, &out); err != nil {
		return nil, fmt.Errorf("sample store: %w", err)
	}
	return out.Samples, nil
}

// PositiveSamplesForPlate returns the positive samples on a source plate.
func (c *Client) PositiveSamplesForPlate(ctx context.Context, plateUUID string) ([]domain.SampleRecord, error) {
	var out struct {
		Samples []domain.SampleRecord `json:"samples"`
	}
	path := fmt.Sprintf("/plates/%s/samples?result=positive", url.PathEscape(plateUUID))
	if err := c.get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("sample store: %w", err)
	}
	return out.Samples, nil
}

// PlateUUIDForBarcode resolves a source plate UUID from its barcode.
func (c *Client) PlateUUIDForBarcode(ctx context.Context, barcode string) (string, error) {
	var out struct {
		UUID string `json:"uuid"`
	}
	path := fmt.Sprintf("/plates/lookup/%s", url.PathEscape(barcode))
	if err := c.get(ctx, path, &out); err != nil {
		return "", fmt.Errorf("sample store: %w", err)
	}
	if out.UUID == "" {
		return "", fmt.Errorf("sample store: no plate registered for barcode %s", barcode)
	}
	return out.UUID, nil
}

// UpdateSampleBarcodes writes issued barcodes back onto sample records.
func (c *Client) UpdateSampleBarcodes(ctx context.Context, samples []domain.SampleRecord) error {
	updates := make([]map[string]string, 0, len(samples))
	for _, sample := range samples {
		updates = append(updates, map[string]string{
			"uuid":    sample.UUID,
			"barcode": sample.Barcode,
		})
	}
	body := map[string]any{"samples": updates}
	if err := c.post(ctx, "/samples/barcodes", body, nil); err != nil {
		return fmt.Errorf("sample store: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s returned %d: %s", req.Method, req.URL.Path, resp.StatusCode, excerpt)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
