package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/water-data-aggregation/internal/api/http"
	"github.com/i474232898/water-data-aggregation/internal/config"
	"github.com/i474232898/water-data-aggregation/internal/geocode"
	"github.com/i474232898/water-data-aggregation/internal/health"
	"github.com/i474232898/water-data-aggregation/internal/hydro"
	"github.com/i474232898/water-data-aggregation/internal/hydro/connectors"
	"github.com/i474232898/water-data-aggregation/internal/siata"
	"github.com/i474232898/water-data-aggregation/internal/usgs"
)

func main() {
	// Load configuration (reads .env when present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Provider clients.
	usgsClient := usgs.NewClient(httpClient, cfg.USGSBaseURL, cfg.HTTPTimeout)
	siataClient := siata.NewClient(httpClient, cfg.SIATAFeedURL, cfg.HTTPTimeout)

	// Geocoding backend: Google when an API key is configured, Nominatim
	// otherwise.
	var geocoder geocode.Geocoder
	if cfg.GoogleAPIKey != "" {
		geocoder = geocode.NewGoogle(cfg.GoogleAPIKey)
	} else {
		geocoder = geocode.NewNominatim(httpClient, cfg.NominatimBaseURL, cfg.NominatimUserAgent)
	}

	// Connector registry; the aggregator instantiates only the configured
	// sources.
	registry := hydro.Registry{
		connectors.SourceUSGS: func() (hydro.Connector, error) {
			return connectors.NewUSGS(usgsClient, geocoder), nil
		},
		connectors.SourceSIATA: func() (hydro.Connector, error) {
			return connectors.NewSIATA(siataClient), nil
		},
	}

	agg := hydro.NewAggregator(registry, cfg.Sources, geocoder)
	for source, reason := range agg.InitErrors() {
		log.Printf("WARN: source %s disabled: %s", source, reason)
	}

	// Periodic reachability probes feeding the health endpoint.
	monitor := health.New([]health.Probe{
		namedProbe{name: connectors.SourceUSGS, ping: usgsClient.Ping},
		namedProbe{name: connectors.SourceSIATA, ping: siataClient.Ping},
	}, cfg.ProbeInterval)
	if err := monitor.Start(); err != nil {
		log.Fatalf("failed to start health monitor: %v", err)
	}
	defer monitor.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "water-data-aggregation",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "water-data-aggregation",
			"sources": monitor.Snapshot(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, agg)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

// namedProbe adapts a provider client's Ping to the health.Probe interface.
type namedProbe struct {
	name string
	ping func(ctx context.Context) error
}

func (p namedProbe) Name() string                   { return p.name }
func (p namedProbe) Ping(ctx context.Context) error { return p.ping(ctx) }
