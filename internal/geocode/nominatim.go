package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const defaultNominatimURL = "https://nominatim.openstreetmap.org/search"

// NominatimGeocoder resolves addresses against an OSM Nominatim instance.
// Nominatim requires a descriptive User-Agent on every request.
type NominatimGeocoder struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewNominatim creates a Nominatim geocoder. baseURL may be empty to use the
// public OSM instance.
func NewNominatim(client *http.Client, baseURL, userAgent string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = defaultNominatimURL
	}
	if userAgent == "" {
		userAgent = "water-data-aggregation"
	}
	return &NominatimGeocoder{
		client:    client,
		baseURL:   baseURL,
		userAgent: userAgent,
	}
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (Location, error) {
	values := url.Values{}
	values.Set("q", address)
	values.Set("format", "json")
	values.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return Location{}, err
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("nominatim status %d", resp.StatusCode)
	}

	var results []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Location{}, fmt.Errorf("nominatim decode: %w", err)
	}

	if len(results) == 0 {
		return Location{}, ErrAddressNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Location{}, fmt.Errorf("nominatim latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Location{}, fmt.Errorf("nominatim longitude %q: %w", results[0].Lon, err)
	}

	return Location{
		Latitude:    lat,
		Longitude:   lon,
		DisplayName: results[0].DisplayName,
	}, nil
}
