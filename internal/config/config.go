package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	// HTTPTimeout bounds every outbound provider request.
	HTTPTimeout time.Duration

	// Sources to enable, by canonical tag.
	Sources []string

	// Provider endpoints; empty selects each client's public default.
	USGSBaseURL  string
	SIATAFeedURL string

	// Geocoding: the Google backend is used when an API key is present,
	// otherwise Nominatim.
	GoogleAPIKey       string
	NominatimBaseURL   string
	NominatimUserAgent string

	// ProbeInterval controls how often provider reachability is checked.
	ProbeInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")

	timeout, err := getenvDuration("HTTP_TIMEOUT", "30s")
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.Sources = splitCSV(getenvDefault("WATER_SOURCES", "usgs,siata"))

	cfg.USGSBaseURL = os.Getenv("USGS_BASE_URL")
	cfg.SIATAFeedURL = os.Getenv("SIATA_FEED_URL")

	cfg.GoogleAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	cfg.NominatimBaseURL = os.Getenv("NOMINATIM_BASE_URL")
	cfg.NominatimUserAgent = getenvDefault("NOMINATIM_USER_AGENT", "water-data-aggregation")

	probe, err := getenvDuration("PROBE_INTERVAL", "5m")
	if err != nil {
		return nil, fmt.Errorf("invalid PROBE_INTERVAL: %w", err)
	}
	cfg.ProbeInterval = probe

	return cfg, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	return time.ParseDuration(getenvDefault(key, def))
}
