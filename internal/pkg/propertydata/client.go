package propertydata

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
)

var (
	// ErrUnavailable is returned for timeouts and 5xx responses from the
	// provider; the caller decides whether the search is refunded
	ErrUnavailable = errors.New("property data provider unavailable")

	// ErrNotFound is returned when the provider has no record for the query
	ErrNotFound = errors.New("property not found")
)

// Config holds property data provider configuration
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client calls the upstream property data API (RapidAPI-style host).
type Client struct {
	httpClient *http.Client
	config     Config
}

// Report is the provider's property payload. Smart-tier fields are nil on
// basic lookups.
type Report struct {
	Address    string   `json:"address"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	ParcelID   string   `json:"parcel_id,omitempty"`
	LastSale   *Sale    `json:"last_sale,omitempty"`
	Valuation  *int64   `json:"valuation,omitempty"`
	Comparable []Sale   `json:"comparables,omitempty"`
	TaxHistory []TaxRow `json:"tax_history,omitempty"`
}

// Sale is one recorded transfer
type Sale struct {
	Address string `json:"address,omitempty"`
	Price   int64  `json:"price"`
	Date    string `json:"date"`
}

// TaxRow is one assessment year
type TaxRow struct {
	Year     int   `json:"year"`
	Assessed int64 `json:"assessed"`
	Tax      int64 `json:"tax"`
}

// NewClient creates a property data API client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
	}
}

// Lookup fetches property data for an address or lat/lng query. enriched
// requests the smart-tier payload (valuation, comps, tax history).
func (c *Client) Lookup(ctx context.Context, query string, enriched bool) (*Report, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("validation error: query must be non-empty")
	}
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("property data client is not initialized")
	}
	if strings.TrimSpace(c.config.BaseURL) == "" {
		return nil, fmt.Errorf("property data config error: base_url is empty")
	}

	base := strings.TrimRight(c.config.BaseURL, "/")
	endpoint := base + "/v1/properties"

	params := url.Values{}
	params.Set("query", query)
	if enriched {
		params.Set("detail", "full")
	}

	timeout := c.config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("property data api call failed: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-API-Key", c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("property data api returned non-2xx status: %d, body: %s", resp.StatusCode, string(body))
	}

	var report Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to parse property data response: %w", err)
	}

	return &report, nil
}
