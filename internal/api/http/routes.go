package httpapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/water-data-aggregation/internal/hydro"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, agg *hydro.Aggregator) {
	v1 := app.Group("/api/v1/water")

	v1.Get("/stations", func(c *fiber.Ctx) error {
		var q stationsQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		resp, err := agg.FindStations(c.UserContext(), q.toRequest())
		if err != nil {
			return mapError(err)
		}

		return c.JSON(resp)
	})

	v1.Get("/stations/:id", func(c *fiber.Ctx) error {
		station, err := agg.GetStation(c.UserContext(), c.Params("id"))
		if err != nil {
			return mapError(err)
		}
		return c.JSON(station)
	})

	v1.Get("/stations/:id/precipitation", func(c *fiber.Ctx) error {
		var q seriesQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		resp, err := agg.GetPrecipitationData(c.UserContext(), c.Params("id"), q.toOptions())
		if err != nil {
			return mapError(err)
		}
		return c.JSON(resp)
	})

	v1.Get("/stations/:id/streamflow", func(c *fiber.Ctx) error {
		var q seriesQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		resp, err := agg.GetStreamflowData(c.UserContext(), c.Params("id"), q.toOptions())
		if err != nil {
			return mapError(err)
		}
		return c.JSON(resp)
	})
}

// mapError translates the core error taxonomy to HTTP status codes.
func mapError(err error) error {
	var (
		invalid     *hydro.InvalidRequestError
		notFound    *hydro.StationNotFoundError
		unsupported *hydro.UnsupportedOperationError
		dataSource  *hydro.DataSourceError
	)

	switch {
	case errors.As(err, &invalid):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.As(err, &unsupported):
		return fiber.NewError(fiber.StatusNotImplemented, err.Error())
	case errors.As(err, &dataSource):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// stationsQuery holds query parameters for the station search endpoint.
type stationsQuery struct {
	Latitude  *float64 `validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `validate:"omitempty,gte=-180,lte=180"`
	Address   string

	RadiusMiles    float64 `validate:"gte=0,lte=500"`
	ParameterTypes []string
	Sources        []string
	MaxResults     int `validate:"gte=0,lte=1000"`
}

func (q *stationsQuery) bind(c *fiber.Ctx) error {
	var err error

	if q.Latitude, err = optionalFloat(c, "latitude"); err != nil {
		return err
	}
	if q.Longitude, err = optionalFloat(c, "longitude"); err != nil {
		return err
	}
	q.Address = c.Query("address")

	q.RadiusMiles = c.QueryFloat("radius_miles", 25)
	q.MaxResults = c.QueryInt("max_results", 100)
	q.ParameterTypes = splitCSV(c.Query("parameter_types"))
	q.Sources = splitCSV(c.Query("sources"))

	return nil
}

func (q stationsQuery) toRequest() hydro.SearchRequest {
	params := make([]hydro.ParameterType, 0, len(q.ParameterTypes))
	for _, p := range q.ParameterTypes {
		params = append(params, hydro.ParameterType(p))
	}

	return hydro.SearchRequest{
		Latitude:       q.Latitude,
		Longitude:      q.Longitude,
		Address:        q.Address,
		RadiusMiles:    q.RadiusMiles,
		ParameterTypes: params,
		Sources:        q.Sources,
		MaxResults:     q.MaxResults,
	}
}

// seriesQuery holds query parameters for the series endpoints. Either an
// explicit start/end pair or a period token selects the window; neither means
// the provider default.
type seriesQuery struct {
	Start    time.Time
	End      time.Time
	Period   string
	Interval string `validate:"omitempty,oneof=15mins hour day month year"`
}

func (q *seriesQuery) bind(c *fiber.Ctx) error {
	startStr := c.Query("start")
	endStr := c.Query("end")
	if (startStr == "") != (endStr == "") {
		return errors.New("start and end must be provided together")
	}

	if startStr != "" {
		start, err := parseTime(startStr)
		if err != nil {
			return err
		}
		end, err := parseTime(endStr)
		if err != nil {
			return err
		}
		q.Start = start
		q.End = end
	}

	q.Period = c.Query("period")
	q.Interval = c.Query("interval")
	return nil
}

func (q seriesQuery) toOptions() hydro.SeriesOptions {
	return hydro.SeriesOptions{
		Start:    q.Start,
		End:      q.End,
		Period:   q.Period,
		Interval: hydro.TimeInterval(q.Interval),
	}
}

func optionalFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New("invalid " + key + ": " + raw)
	}
	return &v, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
