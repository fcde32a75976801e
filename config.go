package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds the settings of the evac-planner binary
type Config struct {
	HTTPAddr          string    `toml:"http_addr"`
	NATSURL           string    `toml:"nats_url"`
	PickRadius        float64   `toml:"pick_radius"`
	EdgePickTolerance float64   `toml:"edge_pick_tolerance"`
	PathMode          string    `toml:"path_mode"`
	Log               LogConfig `toml:"log"`
}

// DefaultConfig returns the built-in settings
func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:          ":8080",
		PickRadius:        DefaultPickRadius,
		EdgePickTolerance: DefaultEdgePickTolerance,
		PathMode:          PathGreedy.String(),
	}
}

// LoadConfig reads the TOML file at path (skipped when path is empty) over
// the defaults, then applies EVAC_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	if path != "" {
		if _, err := toml.DecodeFile(path, c); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	c.HTTPAddr = envOrDefault("EVAC_HTTP_ADDR", c.HTTPAddr)
	c.NATSURL = envOrDefault("EVAC_NATS_URL", c.NATSURL)
	c.PathMode = envOrDefault("EVAC_PATH_MODE", c.PathMode)
	c.Log.Logfile = envOrDefault("EVAC_LOGFILE", c.Log.Logfile)

	var err error
	if c.PickRadius, err = envFloat("EVAC_PICK_RADIUS", c.PickRadius); err != nil {
		return nil, err
	}
	if c.EdgePickTolerance, err = envFloat("EVAC_EDGE_PICK_TOLERANCE", c.EdgePickTolerance); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks values that cannot be caught by decoding
func (c *Config) Validate() error {
	if c.PickRadius <= 0 {
		return fmt.Errorf("pick_radius must be positive, got %g", c.PickRadius)
	}
	if c.EdgePickTolerance <= 0 {
		return fmt.Errorf("edge_pick_tolerance must be positive, got %g", c.EdgePickTolerance)
	}
	if _, err := ParsePathMode(c.PathMode); err != nil {
		return fmt.Errorf("path_mode: %w", err)
	}
	return nil
}

// CommandOptions derives the edit command settings
func (c *Config) CommandOptions() CommandOptions {
	mode, _ := ParsePathMode(c.PathMode)
	return CommandOptions{
		PickRadius:        c.PickRadius,
		EdgePickTolerance: c.EdgePickTolerance,
		Route:             RouteOptions{Mode: mode},
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
