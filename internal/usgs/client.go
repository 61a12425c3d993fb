package usgs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/water-data-aggregation/internal/geo"
)

// Failure taxonomy. Every error returned by the client wraps exactly one of
// these sentinels (or comes from the circuit breaker).
var (
	ErrTimeout   = errors.New("request timed out")
	ErrNotFound  = errors.New("resource not found")
	ErrServer    = errors.New("server error")
	ErrClient    = errors.New("client error")
	ErrMalformed = errors.New("malformed response")
)

// Client talks to one NWIS deployment. The underlying HTTP client and its
// connection pool are reused across calls; separate Client instances are
// fully independent.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	circuit    *gobreaker.CircuitBreaker
}

// NewClient creates a USGS client. baseURL may be empty for the public NWIS
// service, timeout <= 0 selects the 30s default.
func NewClient(httpClient *http.Client, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "usgs",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		timeout:    timeout,
		circuit:    cb,
	}
}

// SeriesQuery selects instantaneous values for a set of sites and parameters.
// Exactly one of (Start,End) or Period should be set; when neither is, the
// default period (last 7 days) applies.
type SeriesQuery struct {
	Sites          []string
	ParameterCodes []string
	Start          time.Time
	End            time.Time
	Period         string
	Timeout        time.Duration // overrides the client default when > 0
}

// SiteQuery selects sites by bounding box or by center and radius. When BBox
// is nil the box is derived from the center and radius, and results are
// annotated with the distance from the center.
type SiteQuery struct {
	BBox        *BBox
	Latitude    float64
	Longitude   float64
	RadiusMiles float64

	SiteTypes     []string
	HasDataTypeCd string

	Timeout time.Duration
}

// BBox is a geographic bounding box in decimal degrees.
type BBox struct {
	West  float64
	South float64
	East  float64
	North float64
}

func (b BBox) queryString() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return f(b.West) + "," + f(b.South) + "," + f(b.East) + "," + f(b.North)
}

// InstantaneousValues fetches and flattens time-series data for the query.
// Each (timeSeries, valueGroup, value) combination yields one Reading; value
// entries whose timestamp cannot be parsed with an explicit offset are
// dropped individually.
func (c *Client) InstantaneousValues(ctx context.Context, q SeriesQuery) ([]Reading, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("sites", strings.Join(q.Sites, ","))
	params.Set("parameterCd", strings.Join(q.ParameterCodes, ","))

	switch {
	case q.Period != "":
		params.Set("period", q.Period)
	case !q.Start.IsZero() && !q.End.IsZero():
		params.Set("startDT", q.Start.Format("2006-01-02T15:04"))
		params.Set("endDT", q.End.Format("2006-01-02T15:04"))
	default:
		params.Set("period", DefaultPeriod)
	}

	body, err := c.get(ctx, "/iv/", params, q.Timeout)
	if err != nil {
		return nil, err
	}

	var envelope ivEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if envelope.Value == nil {
		return nil, fmt.Errorf("%w: missing value object", ErrMalformed)
	}

	var readings []Reading
	for _, ts := range envelope.Value.TimeSeries {
		site := ts.SourceInfo
		variable := ts.Variable

		for _, group := range ts.Values {
			for _, pt := range group.Value {
				when, err := parseUSGSTime(pt.DateTime)
				if err != nil {
					// Drop this record only; siblings are unaffected.
					continue
				}

				readings = append(readings, Reading{
					SiteNo:        site.siteNo(),
					SiteName:      site.SiteName,
					Latitude:      site.GeoLoc.GeogLocation.Latitude,
					Longitude:     site.GeoLoc.GeogLocation.Longitude,
					ParameterCode: variable.parameterCode(),
					VariableName:  variable.VariableName,
					Unit:          variable.Unit.UnitCode,
					Timestamp:     when,
					Value:         parseOptionalFloat(pt.Value),
					Qualifiers:    pt.Qualifiers,
				})
			}
		}
	}

	return readings, nil
}

// Sites fetches an RDB site listing for the query area.
func (c *Client) Sites(ctx context.Context, q SiteQuery) ([]SiteSummary, error) {
	params := url.Values{}
	params.Set("format", "rdb")
	params.Set("siteOutput", "expanded")
	params.Set("siteStatus", "active")

	var ref *refPoint
	if q.BBox != nil {
		params.Set("bBox", q.BBox.queryString())
	} else {
		west, south, east, north := geo.BoundingBox(q.Latitude, q.Longitude, q.RadiusMiles)
		params.Set("bBox", BBox{West: west, South: south, East: east, North: north}.queryString())
		ref = &refPoint{Lat: q.Latitude, Lon: q.Longitude}
	}

	if len(q.SiteTypes) > 0 {
		params.Set("siteType", strings.Join(q.SiteTypes, ","))
	}
	if q.HasDataTypeCd != "" {
		params.Set("hasDataTypeCd", q.HasDataTypeCd)
	}

	body, err := c.get(ctx, "/site/", params, q.Timeout)
	if err != nil {
		return nil, err
	}

	return parseRDB(string(body), ref), nil
}

// Site looks up one site by number.
func (c *Client) Site(ctx context.Context, siteNo string, timeout time.Duration) (SiteSummary, error) {
	params := url.Values{}
	params.Set("format", "rdb")
	params.Set("sites", siteNo)
	params.Set("siteOutput", "expanded")

	body, err := c.get(ctx, "/site/", params, timeout)
	if err != nil {
		return SiteSummary{}, err
	}

	sites := parseRDB(string(body), nil)
	if len(sites) == 0 {
		return SiteSummary{}, fmt.Errorf("%w: site %s", ErrNotFound, siteNo)
	}
	return sites[0], nil
}

// Ping reports whether the service is reachable. Any HTTP response counts as
// reachable; only transport failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/site/", nil)
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

// get executes a request through the circuit breaker with an explicit
// per-call timeout and classifies failures into the sentinel taxonomy.
func (c *Client) get(ctx context.Context, path string, params url.Values, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = c.timeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.httpClient.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w %d: %s", ErrServer, resp.StatusCode, u)
		case resp.StatusCode >= 400:
			return nil, fmt.Errorf("%w %d: %s", ErrClient, resp.StatusCode, u)
		}

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}
		return body, nil
	})

	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w after %s: %s", ErrTimeout, timeout, u)
		}
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// parseUSGSTime accepts RFC3339 timestamps; a trailing Z means UTC and any
// other form must carry an explicit offset.
func parseUSGSTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
