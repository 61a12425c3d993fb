package hydro

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/water-data-aggregation/internal/geocode"
)

// Aggregator fans station searches out across the active connectors and
// routes single-station requests to the connector that owns the station's
// source prefix.
//
// Construction is best-effort: sources whose connector cannot be built are
// recorded in an initialization-error map and the aggregator stays usable
// with the remaining set.
type Aggregator struct {
	connectors map[string]Connector
	initErrors map[string]string
	geocoder   geocode.Geocoder
}

// NewAggregator builds connectors for the requested sources from the
// registry. sources == nil enables every registered source. geocoder may be
// nil when address search is not needed.
func NewAggregator(registry Registry, sources []string, geocoder geocode.Geocoder) *Aggregator {
	if sources == nil {
		sources = make([]string, 0, len(registry))
		for tag := range registry {
			sources = append(sources, tag)
		}
	}

	a := &Aggregator{
		connectors: make(map[string]Connector),
		initErrors: make(map[string]string),
		geocoder:   geocoder,
	}

	for _, tag := range sources {
		factory, ok := registry[tag]
		if !ok {
			a.initErrors[tag] = fmt.Sprintf("connector for %s not available", tag)
			continue
		}
		conn, err := factory()
		if err != nil {
			a.initErrors[tag] = fmt.Sprintf("failed to initialize %s: %v", tag, err)
			continue
		}
		a.connectors[tag] = conn
	}

	return a
}

// Sources returns the active source tags.
func (a *Aggregator) Sources() []string {
	tags := make([]string, 0, len(a.connectors))
	for tag := range a.connectors {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// InitErrors returns the initialization-error map keyed by source name.
func (a *Aggregator) InitErrors() map[string]string {
	return a.initErrors
}

// FindStations searches all (or the requested subset of) active connectors
// concurrently and returns the merged, deduplicated, distance-sorted result.
// Individual connector failures become entries in the response's error map;
// the search itself fails only on invalid input or an unresolvable address.
func (a *Aggregator) FindStations(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	if !req.HasCoordinates() && req.Address == "" {
		return SearchResponse{}, &InvalidRequestError{
			Msg: "either latitude/longitude or address must be provided",
		}
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return SearchResponse{}, &InvalidRequestError{
			Msg: "latitude and longitude must be provided together",
		}
	}

	radius := req.RadiusMiles
	if radius <= 0 {
		radius = 25
	}

	location := SearchLocation{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   req.Address,
	}

	// Geocoding is an input transform: resolve the address to a point once,
	// then every connector searches by coordinates.
	lat, lon := 0.0, 0.0
	if req.HasCoordinates() {
		lat, lon = *req.Latitude, *req.Longitude
	} else {
		if a.geocoder == nil {
			return SearchResponse{}, &InvalidRequestError{Msg: "address search is not configured"}
		}
		resolved, err := a.geocoder.Geocode(ctx, req.Address)
		if err != nil {
			if errors.Is(err, geocode.ErrAddressNotFound) {
				return SearchResponse{}, &InvalidRequestError{Msg: fmt.Sprintf("address not found: %s", req.Address)}
			}
			return SearchResponse{}, &DataSourceError{Source: "geocoder", Err: err}
		}
		lat, lon = resolved.Latitude, resolved.Longitude
		location.Latitude = &resolved.Latitude
		location.Longitude = &resolved.Longitude
		location.ResolvedAddress = resolved.DisplayName
	}

	active := a.activeSubset(req.Sources)

	type sourceResult struct {
		source   string
		stations []Station
		err      error
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []sourceResult
	)

	for tag, conn := range active {
		tag, conn := tag, conn
		wg.Add(1)
		go func() {
			defer wg.Done()

			var (
				stations []Station
				err      error
			)
			func() {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("connector panic: %v", r)
					}
				}()
				stations, err = conn.FindByCoordinates(ctx, lat, lon, radius, req.ParameterTypes)
			}()

			mu.Lock()
			results = append(results, sourceResult{source: tag, stations: stations, err: err})
			mu.Unlock()
		}()
	}

	wg.Wait()

	errorsBySource := make(map[string]string, len(a.initErrors))
	for tag, msg := range a.initErrors {
		errorsBySource[tag] = msg
	}

	// Merge in fan-out completion order; the first occurrence of a duplicate
	// station wins.
	var merged []Station
	for _, r := range results {
		if r.err != nil {
			errorsBySource[r.source] = r.err.Error()
			continue
		}
		merged = append(merged, r.stations...)
	}

	unique := deduplicateStations(merged)
	sortStations(unique)

	total := len(unique)
	if req.MaxResults > 0 && len(unique) > req.MaxResults {
		unique = unique[:req.MaxResults]
	}

	return SearchResponse{
		Stations:       unique,
		TotalCount:     total,
		SearchLocation: location,
		RadiusMiles:    radius,
		ErrorsBySource: errorsBySource,
	}, nil
}

// GetStation decodes the unified station ID and delegates to the owning
// connector.
func (a *Aggregator) GetStation(ctx context.Context, stationID string) (Station, error) {
	conn, vendorID, err := a.route(stationID)
	if err != nil {
		return Station{}, err
	}
	return conn.GetStation(ctx, vendorID)
}

// GetPrecipitationData fetches a precipitation series for the station.
func (a *Aggregator) GetPrecipitationData(ctx context.Context, stationID string, opts SeriesOptions) (DataResponse, error) {
	conn, vendorID, err := a.route(stationID)
	if err != nil {
		return DataResponse{}, err
	}

	measurements, err := conn.PrecipitationSeries(ctx, vendorID, opts)
	if err != nil {
		return DataResponse{}, err
	}

	return a.dataResponse(stationID, ParameterPrecipitation, conn.Name(), measurements, opts), nil
}

// GetStreamflowData fetches a streamflow series for the station.
func (a *Aggregator) GetStreamflowData(ctx context.Context, stationID string, opts SeriesOptions) (DataResponse, error) {
	conn, vendorID, err := a.route(stationID)
	if err != nil {
		return DataResponse{}, err
	}

	measurements, err := conn.StreamflowSeries(ctx, vendorID, opts)
	if err != nil {
		return DataResponse{}, err
	}

	return a.dataResponse(stationID, ParameterStreamflow, conn.Name(), measurements, opts), nil
}

func (a *Aggregator) dataResponse(stationID string, param ParameterType, source string, measurements []Measurement, opts SeriesOptions) DataResponse {
	interval := opts.Interval
	if interval == "" {
		interval = IntervalDay
	}

	var dateRange DateRange
	if !opts.Start.IsZero() && !opts.End.IsZero() {
		dateRange = DateRange{
			Start: opts.Start.Format(time.RFC3339),
			End:   opts.End.Format(time.RFC3339),
		}
	}

	metadata := map[string]any{
		"interval": string(interval),
		"source":   source,
	}
	if opts.Period != "" {
		metadata["period"] = opts.Period
	}

	if measurements == nil {
		measurements = []Measurement{}
	}

	return DataResponse{
		StationID:    stationID,
		Parameter:    param,
		Measurements: measurements,
		TotalCount:   len(measurements),
		DateRange:    dateRange,
		Metadata:     metadata,
	}
}

func (a *Aggregator) route(stationID string) (Connector, string, error) {
	source, vendorID, err := DecodeStationID(stationID)
	if err != nil {
		return nil, "", err
	}

	conn, ok := a.connectors[source]
	if !ok {
		return nil, "", &StationNotFoundError{
			StationID: stationID,
			Reason:    fmt.Sprintf("data source %s not available", source),
		}
	}
	return conn, vendorID, nil
}

func (a *Aggregator) activeSubset(sources []string) map[string]Connector {
	if len(sources) == 0 {
		return a.connectors
	}
	subset := make(map[string]Connector, len(sources))
	for _, tag := range sources {
		if conn, ok := a.connectors[tag]; ok {
			subset[tag] = conn
		}
	}
	return subset
}

// dedupKey collapses stations that different sources list at effectively the
// same point under effectively the same name.
type dedupKey struct {
	lat  float64
	lon  float64
	name string
}

func deduplicateStations(stations []Station) []Station {
	seen := make(map[dedupKey]struct{}, len(stations))
	unique := make([]Station, 0, len(stations))

	for _, s := range stations {
		key := dedupKey{
			lat:  round4(s.Latitude),
			lon:  round4(s.Longitude),
			name: strings.ToLower(strings.TrimSpace(s.Name)),
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, s)
	}

	return unique
}

// sortStations orders by distance ascending with missing distances last,
// ties broken by name.
func sortStations(stations []Station) {
	sort.SliceStable(stations, func(i, j int) bool {
		di, dj := math.Inf(1), math.Inf(1)
		if stations[i].DistanceMiles != nil {
			di = *stations[i].DistanceMiles
		}
		if stations[j].DistanceMiles != nil {
			dj = *stations[j].DistanceMiles
		}
		if di != dj {
			return di < dj
		}
		return stations[i].Name < stations[j].Name
	})
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
