package geocode

import (
	"context"

	"github.com/kelvins/geocoder"
)

// GoogleGeocoder resolves addresses through the Google Maps geocoding API.
// The kelvins/geocoder package holds the API key in package state, so only
// one GoogleGeocoder should be constructed per process.
type GoogleGeocoder struct{}

// NewGoogle configures the Google geocoding backend with the given API key.
func NewGoogle(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{}
}

func (g *GoogleGeocoder) Geocode(_ context.Context, address string) (Location, error) {
	addr := geocoder.Address{Street: address}

	loc, err := geocoder.Geocoding(addr)
	if err != nil {
		return Location{}, err
	}

	return Location{
		Latitude:    loc.Latitude,
		Longitude:   loc.Longitude,
		DisplayName: address,
	}, nil
}
