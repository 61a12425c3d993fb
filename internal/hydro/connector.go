package hydro

import "context"

// Connector adapts one upstream provider to the normalized capability set.
// Required capabilities are FindByCoordinates and GetStation; the rest may
// return an UnsupportedOperationError via Unsupported.
//
// A connector owns its provider client and session; instances must not share
// sessions with each other, but a single instance may reuse its session
// across calls.
type Connector interface {
	// Name is the stable source discriminator and station-ID prefix.
	Name() string

	// FindByCoordinates returns stations within radiusMiles of the point,
	// sorted ascending by distance. Implementations must post-filter by true
	// great-circle distance, not just the provider's bounding box.
	FindByCoordinates(ctx context.Context, lat, lon, radiusMiles float64, params []ParameterType) ([]Station, error)

	// FindByAddress searches near a free-form address. Optional.
	FindByAddress(ctx context.Context, address string, radiusMiles float64, params []ParameterType) ([]Station, error)

	// GetStation looks up a single station by its provider-native ID.
	GetStation(ctx context.Context, vendorID string) (Station, error)

	// PrecipitationSeries returns precipitation measurements. Optional.
	PrecipitationSeries(ctx context.Context, vendorID string, opts SeriesOptions) ([]Measurement, error)

	// StreamflowSeries returns streamflow measurements. Optional.
	StreamflowSeries(ctx context.Context, vendorID string, opts SeriesOptions) ([]Measurement, error)
}

// ConnectorFactory builds a live connector. Factories that fail are recorded
// as initialization errors by the aggregator instead of aborting startup.
type ConnectorFactory func() (Connector, error)

// Registry maps source tags to connector factories. It is passed explicitly
// to NewAggregator; there is no process-wide registry.
type Registry map[string]ConnectorFactory
