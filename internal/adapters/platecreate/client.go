// Package platecreate is the HTTP client for the plate-creation service.
package platecreate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"plateops/pkg/domain"
)

// Client talks to the plate-creation service.
type Client struct {
	baseURL string
	http    *http.Client
}

// New constructs a client for the given base URL.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// CreatePlate submits a plate creation request. Service-side rejections
// carry a structured error payload which is proxied into the returned error.
func (c *Client) CreatePlate(ctx context.Context, payload domain.PlateCreationPayload) (domain.CreatedPlate, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return domain.CreatedPlate{}, fmt.Errorf("plate creation: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/plates", bytes.NewReader(raw))
	if err != nil {
		return domain.CreatedPlate{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.CreatedPlate{}, fmt.Errorf("plate creation: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		var structured struct {
			Errors []string `json:"errors"`
		}
		if err := json.Unmarshal(body, &structured); err == nil && len(structured.Errors) > 0 {
			return domain.CreatedPlate{}, fmt.Errorf("plate creation: plate %s rejected: %s",
				payload.Barcode, strings.Join(structured.Errors, "; "))
		}
		return domain.CreatedPlate{}, fmt.Errorf("plate creation: plate %s returned %d: %s",
			payload.Barcode, resp.StatusCode, body)
	}
	var created domain.CreatedPlate
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return domain.CreatedPlate{}, fmt.Errorf("plate creation: decode response: %w", err)
	}
	return created, nil
}
