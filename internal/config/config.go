// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr        string
	DBPath            string
	StremioAPIURL     string
	StremioWebURL     string
	AddonURL          string
	PreferredProvider string
	TMDBAPIKey        string
	CookieMaxAge      time.Duration
}

// HasTMDBKey returns true when a TMDB API key is configured. The metadata
// proxy endpoints respond with 503 until one is provided.
func (c *Config) HasTMDBKey() bool {
	return c.TMDBAPIKey != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// The TMDB key (STREAMFINDER_TMDB_API_KEY) is optional; if absent, the app starts
// but the metadata search endpoints are disabled. Optional variables with defaults:
// STREAMFINDER_LISTEN_ADDR (127.0.0.1:3000), STREAMFINDER_DB_PATH (streamfinder.db),
// STREAMFINDER_STREMIO_API_URL, STREAMFINDER_WEB_URL, STREAMFINDER_ADDON_URL,
// STREAMFINDER_PREFERRED_PROVIDER (VixSrc), STREAMFINDER_COOKIE_MAX_AGE (720h).
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:3000"
	if v, ok := os.LookupEnv("STREAMFINDER_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "streamfinder.db"
	if v, ok := os.LookupEnv("STREAMFINDER_DB_PATH"); ok {
		dbPath = v
	}

	apiURL := "https://api.strem.io/api"
	if v, ok := os.LookupEnv("STREAMFINDER_STREMIO_API_URL"); ok {
		apiURL = v
	}

	webURL := "https://web.stremio.com"
	if v, ok := os.LookupEnv("STREAMFINDER_WEB_URL"); ok {
		webURL = v
	}

	addonURL := "https://webstreamr.hayd.uk"
	if v, ok := os.LookupEnv("STREAMFINDER_ADDON_URL"); ok {
		addonURL = v
	}

	provider := "VixSrc"
	if v, ok := os.LookupEnv("STREAMFINDER_PREFERRED_PROVIDER"); ok && v != "" {
		provider = v
	}

	cookieMaxAge := 30 * 24 * time.Hour
	if v, ok := os.LookupEnv("STREAMFINDER_COOKIE_MAX_AGE"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("STREAMFINDER_COOKIE_MAX_AGE has invalid duration %q: %w", v, err)
		}
		cookieMaxAge = parsed
	}

	return &Config{
		ListenAddr:        listenAddr,
		DBPath:            dbPath,
		StremioAPIURL:     apiURL,
		StremioWebURL:     webURL,
		AddonURL:          addonURL,
		PreferredProvider: provider,
		TMDBAPIKey:        os.Getenv("STREAMFINDER_TMDB_API_KEY"),
		CookieMaxAge:      cookieMaxAge,
	}, nil
}
