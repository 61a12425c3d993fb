package connectors

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/i474232898/water-data-aggregation/internal/hydro"
	"github.com/i474232898/water-data-aggregation/internal/siata"
)

const siataFeed = `{
  "red": "pluviometrica",
  "estaciones": [
    {"codigo": 25, "nombre": "Estación El Poblado", "ciudad": "Medellín", "comuna": "14", "barrio": "El Poblado", "subcuenca": "La Presidenta", "latitud": 6.2088, "longitud": -75.5679, "valor": 1.2},
    {"codigo": 31, "nombre": "Estación Bello", "ciudad": "Bello", "comuna": "", "barrio": "", "subcuenca": "", "latitud": 6.3352, "longitud": -75.5586, "valor": null},
    {"codigo": 40, "nombre": "Estación Sin Coordenadas", "ciudad": "Medellín", "comuna": "", "barrio": "", "subcuenca": "", "latitud": 0, "longitud": 0, "valor": 0.4}
  ]
}`

func newSIATAConnector(t *testing.T, handler http.HandlerFunc) *SIATAConnector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSIATA(siata.NewClient(srv.Client(), srv.URL, 5*time.Second))
}

func TestSIATAFindByCoordinates(t *testing.T) {
	conn := newSIATAConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(siataFeed))
	})

	// Search near central Medellín with a radius that covers El Poblado but
	// not Bello.
	stations, err := conn.FindByCoordinates(context.Background(), 6.2442, -75.5812, 4, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stations) != 1 {
		t.Fatalf("expected 1 station inside the radius, got %d", len(stations))
	}

	st := stations[0]
	if st.StationID != "siata:25" || st.VendorID != "25" || st.Source != SourceSIATA {
		t.Fatalf("unexpected identity: %+v", st)
	}
	if st.DistanceMiles == nil {
		t.Fatal("spatial search must annotate distance")
	}
	if len(st.AvailableParameters) != 1 || st.AvailableParameters[0] != hydro.ParameterPrecipitation {
		t.Fatalf("unexpected parameters: %v", st.AvailableParameters)
	}
	if st.Metadata["city"] != "Medellín" || st.Metadata["latest_value_mm"] != 1.2 {
		t.Fatalf("unexpected metadata: %v", st.Metadata)
	}
}

func TestSIATAZeroCoordinateStationsDiscarded(t *testing.T) {
	conn := newSIATAConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(siataFeed))
	})

	stations, err := conn.FindByCoordinates(context.Background(), 6.2442, -75.5812, 10000, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, st := range stations {
		if st.VendorID == "40" {
			t.Fatal("station with (0,0) coordinates must be discarded")
		}
	}
	if len(stations) != 2 {
		t.Fatalf("expected 2 stations, got %d", len(stations))
	}
}

func TestSIATAParameterFilter(t *testing.T) {
	conn := newSIATAConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(siataFeed))
	})

	// SIATA is precipitation-only; a streamflow filter yields nothing.
	stations, err := conn.FindByCoordinates(context.Background(), 6.2442, -75.5812, 10,
		[]hydro.ParameterType{hydro.ParameterStreamflow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stations) != 0 {
		t.Fatalf("expected no stations for a streamflow filter, got %d", len(stations))
	}
}

func TestSIATAGetStation(t *testing.T) {
	conn := newSIATAConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(siataFeed))
	})

	st, err := conn.GetStation(context.Background(), "31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Name != "Estación Bello" {
		t.Fatalf("unexpected station: %+v", st)
	}
	// Direct lookup carries no search context.
	if st.DistanceMiles != nil {
		t.Fatalf("distance must be nil for direct lookup, got %v", *st.DistanceMiles)
	}

	var notFound *hydro.StationNotFoundError
	if _, err := conn.GetStation(context.Background(), "9999"); !errors.As(err, &notFound) {
		t.Fatalf("expected StationNotFoundError for unknown code, got %v", err)
	}
	if _, err := conn.GetStation(context.Background(), "not-a-number"); !errors.As(err, &notFound) {
		t.Fatalf("expected StationNotFoundError for non-numeric code, got %v", err)
	}
}

func TestSIATAFeedErrorBecomesDataSourceError(t *testing.T) {
	conn := newSIATAConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := conn.FindByCoordinates(context.Background(), 6.2442, -75.5812, 10, nil)
	var dsErr *hydro.DataSourceError
	if !errors.As(err, &dsErr) || dsErr.Source != SourceSIATA {
		t.Fatalf("expected DataSourceError from siata, got %v", err)
	}
}

func TestSIATAUnsupportedCapabilities(t *testing.T) {
	conn := newSIATAConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(siataFeed))
	})

	var unsupported *hydro.UnsupportedOperationError

	if _, err := conn.FindByAddress(context.Background(), "Medellín", 10, nil); !errors.As(err, &unsupported) {
		t.Fatalf("expected unsupported address search, got %v", err)
	}
	if _, err := conn.PrecipitationSeries(context.Background(), "25", hydro.SeriesOptions{}); !errors.As(err, &unsupported) {
		t.Fatalf("expected unsupported precipitation series, got %v", err)
	}
	if _, err := conn.StreamflowSeries(context.Background(), "25", hydro.SeriesOptions{}); !errors.As(err, &unsupported) {
		t.Fatalf("expected unsupported streamflow series, got %v", err)
	}
}
