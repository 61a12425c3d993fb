// Package geocode resolves free-form addresses to coordinates. Geocoding is
// used only as an input transform feeding the coordinate search path; the
// rest of the system never sees addresses.
package geocode

import (
	"context"
	"errors"
)

// ErrAddressNotFound is returned when the geocoding service has no result
// for the address.
var ErrAddressNotFound = errors.New("address not found")

// Location is a resolved geocoding result.
type Location struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
}

// Geocoder converts an address string to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Location, error)
}
