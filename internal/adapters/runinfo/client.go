// Package runinfo is the HTTP client for the automation-run-info service.
package runinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"plateops/pkg/domain"
)

// Client talks to the automation-run-info service.
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

// RunInfo fetches metadata for one automation run. Unknown run ids fail
// loudly with the service's status code.
func (c *Client) RunInfo(ctx context.Context, runID int) (domain.RunInfo, error) {
	url := fmt.Sprintf("%s/automation-systems/runs/%d", c.baseURL, runID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.RunInfo{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.RunInfo{}, fmt.Errorf("run info: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.RunInfo{}, fmt.Errorf("run info: run %d returned %d: %s", runID, resp.StatusCode, excerpt)
	}
	var out domain.RunInfo
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.RunInfo{}, fmt.Errorf("run info: decode run %d: %w", runID, err)
	}
	return out, nil
}
