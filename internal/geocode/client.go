// Package geocode resolves hub pin coordinates to a display address through
// the Nominatim reverse geocoding API. Lookups are best effort: callers keep
// their prior address fields when a lookup fails.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nexwaste/nexwaste-backend/pkg/config"
	pkgerrors "github.com/nexwaste/nexwaste-backend/pkg/errors"
)

const (
	defaultBaseURL            = "https://nominatim.openstreetmap.org"
	defaultUserAgent          = "nexwaste-backend"
	responseReadLimit   int64 = 1024
)

// Address is the normalized reverse geocoding result.
type Address struct {
	Street   string
	Suburb   string
	City     string
	State    string
	Postcode string
	Label    string
}

// Client calls the Nominatim reverse endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the Nominatim base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the reverse geocoding client from configuration.
func NewClient(cfg config.GeocodeConfig, opts ...Option) *Client {
	client := &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	if client.userAgent == "" {
		client.userAgent = defaultUserAgent
	}
	if client.httpClient.Timeout <= 0 {
		client.httpClient.Timeout = 5 * time.Second
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Reverse resolves a coordinate pair to an address.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (*Address, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "geocode client not configured")
	}

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	endpoint := strings.TrimRight(c.baseURL, "/") + "/reverse?" + query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build reverse geocode request")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute reverse geocode request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"reverse geocode request failed")
	}

	var apiResp struct {
		DisplayName string `json:"display_name"`
		Address     struct {
			Road     string `json:"road"`
			Suburb   string `json:"suburb"`
			City     string `json:"city"`
			Town     string `json:"town"`
			Village  string `json:"village"`
			State    string `json:"state"`
			Postcode string `json:"postcode"`
		} `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode reverse geocode response")
	}

	city := apiResp.Address.City
	if city == "" {
		city = apiResp.Address.Town
	}
	if city == "" {
		city = apiResp.Address.Village
	}

	return &Address{
		Street:   apiResp.Address.Road,
		Suburb:   apiResp.Address.Suburb,
		City:     city,
		State:    apiResp.Address.State,
		Postcode: apiResp.Address.Postcode,
		Label:    apiResp.DisplayName,
	}, nil
}
