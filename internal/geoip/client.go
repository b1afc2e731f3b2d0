package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client resolves an IP address to a country name using the ip-api.com
// JSON endpoint (or any service speaking the same format).
type Client struct {
	baseURL string
	httpc   *http.Client
}

type lookupResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	Message string `json:"message"`
}

// NewClient builds a geo lookup client. httpc may be nil, in which case
// a client with a 5 second timeout is used.
func NewClient(baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
	}
}

// Country returns the country name for ip, or an error when the service
// cannot resolve it. Private addresses typically resolve with a "fail"
// status.
func (c *Client) Country(ctx context.Context, ip string) (string, error) {
	url := fmt.Sprintf("%s/json/%s", c.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build geoip request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("geoip request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geoip request: unexpected status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode geoip response: %w", err)
	}
	if body.Status != "success" {
		return "", fmt.Errorf("geoip lookup failed: %s", body.Message)
	}
	return body.Country, nil
}
