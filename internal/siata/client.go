// Package siata is a client for the SIATA (Medellín early-warning network)
// current-precipitation feed. The feed is a single JSON document carrying
// every station in the network with its latest reading.
package siata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultFeedURL is the public current-precipitation feed.
const DefaultFeedURL = "https://siata.gov.co/data/siata_app/Pluviometrica.json"

// DefaultTimeout bounds feed requests when no per-call override is given.
const DefaultTimeout = 30 * time.Second

// CurrentResponse models the JSON payload returned by the current feed.
type CurrentResponse struct {
	Stations []Station `json:"estaciones"`
	Network  string    `json:"red"`
}

// Station is a single station entry from the current feed. Value is the
// latest precipitation reading and may be null.
type Station struct {
	Barrio    string   `json:"barrio"`
	City      string   `json:"ciudad"`
	Code      int      `json:"codigo"`
	Comuna    string   `json:"comuna"`
	Latitude  float64  `json:"latitud"`
	Longitude float64  `json:"longitud"`
	Name      string   `json:"nombre"`
	Subbasin  string   `json:"subcuenca"`
	Value     *float64 `json:"valor"`
}

// Client fetches the SIATA current feed. The HTTP client and its connection
// pool are reused across calls.
type Client struct {
	httpClient *http.Client
	feedURL    string
	timeout    time.Duration
}

// NewClient creates a SIATA client. feedURL may be empty for the public
// feed, timeout <= 0 selects the 30s default.
func NewClient(httpClient *http.Client, feedURL string, timeout time.Duration) *Client {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: httpClient,
		feedURL:    feedURL,
		timeout:    timeout,
	}
}

// CurrentStations retrieves the current stations payload.
func (c *Client) CurrentStations(ctx context.Context) (CurrentResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return CurrentResponse{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return CurrentResponse{}, fmt.Errorf("request current feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return CurrentResponse{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var payload CurrentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return CurrentResponse{}, fmt.Errorf("decode payload: %w", err)
	}

	return payload, nil
}

// Ping reports whether the feed is reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.feedURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
