// Package connectors holds the concrete hydro.Connector implementations, one
// per upstream provider.
package connectors

import (
	"context"
	"errors"
	"fmt"

	"github.com/i474232898/water-data-aggregation/internal/geocode"
	"github.com/i474232898/water-data-aggregation/internal/hydro"
	"github.com/i474232898/water-data-aggregation/internal/usgs"
)

// SourceUSGS is the canonical source tag for the USGS connector.
const SourceUSGS = "usgs"

// usgsParamToType maps NWIS parameter codes to normalized parameter types.
var usgsParamToType = map[string]hydro.ParameterType{
	usgs.ParamPrecipitation:      hydro.ParameterPrecipitation,
	usgs.ParamPrecipitationAccum: hydro.ParameterPrecipitation,
	usgs.ParamStreamflow:         hydro.ParameterStreamflow,
	usgs.ParamGageHeight:         hydro.ParameterGageHeight,
	usgs.ParamTemperatureWater:   hydro.ParameterTemperatureWater,
	usgs.ParamTemperatureAir:     hydro.ParameterTemperatureAir,
}

// USGSConnector adapts the USGS NWIS client to the normalized capability set.
type USGSConnector struct {
	client   *usgs.Client
	geocoder geocode.Geocoder
}

// NewUSGS creates the USGS connector. geocoder may be nil, in which case
// address search reports unsupported.
func NewUSGS(client *usgs.Client, geocoder geocode.Geocoder) *USGSConnector {
	return &USGSConnector{client: client, geocoder: geocoder}
}

func (c *USGSConnector) Name() string { return SourceUSGS }

func (c *USGSConnector) FindByCoordinates(ctx context.Context, lat, lon, radiusMiles float64, params []hydro.ParameterType) ([]hydro.Station, error) {
	sites, err := c.client.Sites(ctx, usgs.SiteQuery{
		Latitude:    lat,
		Longitude:   lon,
		RadiusMiles: radiusMiles,
		SiteTypes:   siteTypesForFilter(params),
	})
	if err != nil {
		return nil, c.wrap(err)
	}

	// The site query is bounded by a rectangular box; enforce the circular
	// radius here. The parser already sorted ascending by distance.
	stations := make([]hydro.Station, 0, len(sites))
	for _, site := range sites {
		if site.DistanceMiles != nil && *site.DistanceMiles > radiusMiles {
			continue
		}
		stations = append(stations, c.station(site, params))
	}

	return stations, nil
}

func (c *USGSConnector) FindByAddress(ctx context.Context, address string, radiusMiles float64, params []hydro.ParameterType) ([]hydro.Station, error) {
	if c.geocoder == nil {
		return nil, hydro.Unsupported(SourceUSGS, "address search")
	}

	loc, err := c.geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, geocode.ErrAddressNotFound) {
			return nil, &hydro.InvalidRequestError{Msg: fmt.Sprintf("address not found: %s", address)}
		}
		return nil, c.wrap(err)
	}

	return c.FindByCoordinates(ctx, loc.Latitude, loc.Longitude, radiusMiles, params)
}

func (c *USGSConnector) GetStation(ctx context.Context, vendorID string) (hydro.Station, error) {
	site, err := c.client.Site(ctx, vendorID, 0)
	if err != nil {
		if errors.Is(err, usgs.ErrNotFound) {
			return hydro.Station{}, &hydro.StationNotFoundError{
				StationID: hydro.EncodeStationID(SourceUSGS, vendorID),
				Reason:    "no matching USGS site",
			}
		}
		return hydro.Station{}, c.wrap(err)
	}
	return c.station(site, nil), nil
}

func (c *USGSConnector) PrecipitationSeries(ctx context.Context, vendorID string, opts hydro.SeriesOptions) ([]hydro.Measurement, error) {
	return c.series(ctx, vendorID, usgs.ParamPrecipitation, hydro.ParameterPrecipitation, opts)
}

func (c *USGSConnector) StreamflowSeries(ctx context.Context, vendorID string, opts hydro.SeriesOptions) ([]hydro.Measurement, error) {
	return c.series(ctx, vendorID, usgs.ParamStreamflow, hydro.ParameterStreamflow, opts)
}

func (c *USGSConnector) series(ctx context.Context, vendorID, paramCode string, paramType hydro.ParameterType, opts hydro.SeriesOptions) ([]hydro.Measurement, error) {
	if !opts.Start.IsZero() && !opts.End.IsZero() && !opts.Start.Before(opts.End) {
		return nil, &hydro.InvalidRequestError{Msg: "start date must be before end date"}
	}

	readings, err := c.client.InstantaneousValues(ctx, usgs.SeriesQuery{
		Sites:          []string{vendorID},
		ParameterCodes: []string{paramCode},
		Start:          opts.Start,
		End:            opts.End,
		Period:         opts.Period,
	})
	if err != nil {
		return nil, c.wrap(err)
	}

	measurements := make([]hydro.Measurement, 0, len(readings))
	for _, r := range readings {
		flags := r.Qualifiers
		if flags == nil {
			flags = []string{}
		}
		measurements = append(measurements, hydro.Measurement{
			StationID:    hydro.EncodeStationID(SourceUSGS, r.SiteNo),
			Source:       SourceUSGS,
			VendorID:     r.SiteNo,
			StationName:  r.SiteName,
			Parameter:    paramType,
			Latitude:     r.Latitude,
			Longitude:    r.Longitude,
			Timestamp:    r.Timestamp,
			Value:        r.Value,
			Unit:         r.Unit,
			QualityFlags: flags,
			Metadata: map[string]any{
				"usgs_qualifiers": flags,
				"variable_name":   r.VariableName,
			},
		})
	}

	return measurements, nil
}

func (c *USGSConnector) station(s usgs.SiteSummary, params []hydro.ParameterType) hydro.Station {
	available := make([]hydro.ParameterType, 0, len(params))
	// The expanded site listing does not carry per-site parameter
	// availability; echo back the filter the site matched, if any.
	available = append(available, params...)

	return hydro.Station{
		StationID:           hydro.EncodeStationID(SourceUSGS, s.SiteNo),
		Source:              SourceUSGS,
		VendorID:            s.SiteNo,
		Name:                s.SiteName,
		SiteType:            s.SiteType,
		Latitude:            s.Latitude,
		Longitude:           s.Longitude,
		ElevationFt:         s.ElevationFt,
		State:               s.StateCd,
		County:              s.CountyCd,
		AvailableParameters: available,
		DistanceMiles:       s.DistanceMiles,
		Metadata: map[string]any{
			"huc_cd":         s.HucCd,
			"usgs_site_type": s.SiteType,
		},
	}
}

func (c *USGSConnector) wrap(err error) error {
	return &hydro.DataSourceError{Source: SourceUSGS, Err: err}
}

// siteTypesForFilter restricts the site query for single-parameter filters.
// This is a coarse heuristic: a streamflow search only makes sense against
// stream sites, a precipitation search against precipitation gages. Mixed
// filters fall through to an unrestricted query.
func siteTypesForFilter(params []hydro.ParameterType) []string {
	if len(params) != 1 {
		return nil
	}
	switch params[0] {
	case hydro.ParameterStreamflow, hydro.ParameterGageHeight:
		return []string{usgs.SiteTypeStream}
	case hydro.ParameterPrecipitation:
		return []string{usgs.SiteTypePrecipitation, usgs.SiteTypeAtmospheric}
	default:
		return nil
	}
}

// NormalizeParameterCode converts an NWIS parameter code to the normalized
// type, reporting false for codes this system does not track.
func NormalizeParameterCode(code string) (hydro.ParameterType, bool) {
	t, ok := usgsParamToType[code]
	return t, ok
}
