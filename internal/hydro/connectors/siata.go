package connectors

import (
	"context"
	"sort"
	"strconv"

	"github.com/i474232898/water-data-aggregation/internal/geo"
	"github.com/i474232898/water-data-aggregation/internal/hydro"
	"github.com/i474232898/water-data-aggregation/internal/siata"
)

// SourceSIATA is the canonical source tag for the SIATA connector.
const SourceSIATA = "siata"

// SIATAConnector adapts the SIATA pluviometric network to the normalized
// capability set. The network is precipitation-only and its public feed
// carries current values, not history, so the series capabilities report
// unsupported.
type SIATAConnector struct {
	client *siata.Client
}

// NewSIATA creates the SIATA connector.
func NewSIATA(client *siata.Client) *SIATAConnector {
	return &SIATAConnector{client: client}
}

func (c *SIATAConnector) Name() string { return SourceSIATA }

func (c *SIATAConnector) FindByCoordinates(ctx context.Context, lat, lon, radiusMiles float64, params []hydro.ParameterType) ([]hydro.Station, error) {
	if !filterAllowsPrecipitation(params) {
		return []hydro.Station{}, nil
	}

	feed, err := c.client.CurrentStations(ctx)
	if err != nil {
		return nil, &hydro.DataSourceError{Source: SourceSIATA, Err: err}
	}

	var stations []hydro.Station
	for _, s := range feed.Stations {
		if s.Latitude == 0 || s.Longitude == 0 {
			continue
		}

		d := geo.DistanceMiles(lat, lon, s.Latitude, s.Longitude)
		if d > radiusMiles {
			continue
		}
		distance := d

		station := c.station(s)
		station.DistanceMiles = &distance
		stations = append(stations, station)
	}

	sort.SliceStable(stations, func(i, j int) bool {
		return *stations[i].DistanceMiles < *stations[j].DistanceMiles
	})

	return stations, nil
}

func (c *SIATAConnector) FindByAddress(ctx context.Context, address string, radiusMiles float64, params []hydro.ParameterType) ([]hydro.Station, error) {
	return nil, hydro.Unsupported(SourceSIATA, "address search")
}

func (c *SIATAConnector) GetStation(ctx context.Context, vendorID string) (hydro.Station, error) {
	code, err := strconv.Atoi(vendorID)
	if err != nil {
		return hydro.Station{}, &hydro.StationNotFoundError{
			StationID: hydro.EncodeStationID(SourceSIATA, vendorID),
			Reason:    "SIATA station codes are numeric",
		}
	}

	feed, err := c.client.CurrentStations(ctx)
	if err != nil {
		return hydro.Station{}, &hydro.DataSourceError{Source: SourceSIATA, Err: err}
	}

	for _, s := range feed.Stations {
		if s.Code == code {
			return c.station(s), nil
		}
	}

	return hydro.Station{}, &hydro.StationNotFoundError{
		StationID: hydro.EncodeStationID(SourceSIATA, vendorID),
		Reason:    "no matching station in the current feed",
	}
}

func (c *SIATAConnector) PrecipitationSeries(ctx context.Context, vendorID string, opts hydro.SeriesOptions) ([]hydro.Measurement, error) {
	return nil, hydro.Unsupported(SourceSIATA, "precipitation series retrieval")
}

func (c *SIATAConnector) StreamflowSeries(ctx context.Context, vendorID string, opts hydro.SeriesOptions) ([]hydro.Measurement, error) {
	return nil, hydro.Unsupported(SourceSIATA, "streamflow series retrieval")
}

func (c *SIATAConnector) station(s siata.Station) hydro.Station {
	vendorID := strconv.Itoa(s.Code)

	metadata := map[string]any{
		"city":     s.City,
		"comuna":   s.Comuna,
		"barrio":   s.Barrio,
		"subbasin": s.Subbasin,
	}
	if s.Value != nil {
		metadata["latest_value_mm"] = *s.Value
	}

	return hydro.Station{
		StationID:           hydro.EncodeStationID(SourceSIATA, vendorID),
		Source:              SourceSIATA,
		VendorID:            vendorID,
		Name:                s.Name,
		SiteType:            "pluviometric",
		Latitude:            s.Latitude,
		Longitude:           s.Longitude,
		AvailableParameters: []hydro.ParameterType{hydro.ParameterPrecipitation},
		Metadata:            metadata,
	}
}

func filterAllowsPrecipitation(params []hydro.ParameterType) bool {
	if len(params) == 0 {
		return true
	}
	for _, p := range params {
		if p == hydro.ParameterPrecipitation {
			return true
		}
	}
	return false
}
