package hydro

import (
	"fmt"
	"strings"
	"time"
)

// ParameterType is a normalized category of physical quantity, independent of
// any provider's native parameter codes.
type ParameterType string

const (
	ParameterPrecipitation    ParameterType = "precipitation"
	ParameterStreamflow       ParameterType = "streamflow"
	ParameterTemperatureWater ParameterType = "temperature_water"
	ParameterTemperatureAir   ParameterType = "temperature_air"
	ParameterGageHeight       ParameterType = "gage_height"
)

// TimeInterval is a normalized reporting interval for series requests. It is
// carried through to response metadata; providers report at their native
// resolution.
type TimeInterval string

const (
	IntervalFifteenMins TimeInterval = "15mins"
	IntervalHour        TimeInterval = "hour"
	IntervalDay         TimeInterval = "day"
	IntervalMonth       TimeInterval = "month"
	IntervalYear        TimeInterval = "year"
)

// Station is a monitoring location normalized across providers. Stations are
// built fresh from upstream data on every request and never persisted.
type Station struct {
	// StationID is "{source}:{vendorID}", constructed only by a connector.
	StationID string `json:"station_id"`
	Source    string `json:"source"`
	VendorID  string `json:"vendor_id"`

	Name     string `json:"name"`
	SiteType string `json:"site_type"`

	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	ElevationFt *float64 `json:"elevation_ft,omitempty"`

	State  string `json:"state,omitempty"`
	County string `json:"county,omitempty"`

	AvailableParameters []ParameterType `json:"available_parameters"`

	// DistanceMiles is populated only in the context of a spatial search.
	DistanceMiles *float64 `json:"distance_miles,omitempty"`

	// Metadata carries provider-specific fields through unmodified.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Measurement is one parameter reading at one station at one instant.
type Measurement struct {
	StationID   string        `json:"station_id"`
	Source      string        `json:"source"`
	VendorID    string        `json:"vendor_id"`
	StationName string        `json:"station_name"`
	Parameter   ParameterType `json:"parameter_type"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	Timestamp time.Time `json:"timestamp"` // always carries an explicit offset

	// Value is nil when the provider reported a no-data sentinel, an empty
	// string, or a non-numeric payload. nil is distinct from the record being
	// absent from the result list.
	Value *float64 `json:"value"`
	Unit  string   `json:"unit"`

	QualityFlags []string       `json:"quality_flags"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// SearchRequest describes a station search. At least one of coordinates or
// address must be present.
type SearchRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   string   `json:"address,omitempty"`

	RadiusMiles    float64         `json:"radius_miles"`
	ParameterTypes []ParameterType `json:"parameter_types,omitempty"`
	Sources        []string        `json:"sources,omitempty"`
	SiteTypes      []string        `json:"site_types,omitempty"`

	MaxResults int `json:"max_results"`
}

// HasCoordinates reports whether both coordinates are present.
func (r SearchRequest) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// SearchLocation echoes the resolved search center back to the caller. For
// address searches it carries the geocoded point and display name.
type SearchLocation struct {
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	Address         string   `json:"address,omitempty"`
	ResolvedAddress string   `json:"resolved_address,omitempty"`
}

// SearchResponse is the aggregated, deduplicated station search result.
// ErrorsBySource records per-source failures so partial results stay visible.
type SearchResponse struct {
	Stations       []Station         `json:"stations"`
	TotalCount     int               `json:"total_count"` // post-dedup, pre-cap
	SearchLocation SearchLocation    `json:"search_location"`
	RadiusMiles    float64           `json:"radius_miles"`
	ErrorsBySource map[string]string `json:"errors_by_source"`
}

// DateRange bounds a series request, rendered in responses as strings.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DataResponse wraps the measurements returned for one station and parameter.
type DataResponse struct {
	StationID    string         `json:"station_id"`
	Parameter    ParameterType  `json:"parameter_type"`
	Measurements []Measurement  `json:"measurements"`
	TotalCount   int            `json:"total_count"`
	DateRange    DateRange      `json:"date_range"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// SeriesOptions selects the time window for a series request. Exactly one of
// (Start,End) or Period should be set; when neither is, providers apply their
// default window.
type SeriesOptions struct {
	Start    time.Time
	End      time.Time
	Period   string // ISO-8601 duration token, e.g. "P7D"
	Interval TimeInterval
}

// EncodeStationID builds the globally unique station identifier.
func EncodeStationID(source, vendorID string) string {
	return source + ":" + vendorID
}

// DecodeStationID splits a station identifier on the first colon. The vendor
// part may itself contain colons.
func DecodeStationID(stationID string) (source, vendorID string, err error) {
	source, vendorID, ok := strings.Cut(stationID, ":")
	if !ok || source == "" {
		return "", "", &InvalidRequestError{
			Msg: fmt.Sprintf("invalid station ID %q: expected \"source:id\"", stationID),
		}
	}
	return source, vendorID, nil
}
