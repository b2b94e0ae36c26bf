// Package config reads process settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/goliatone/go-dosimetry/pkg/submit"
)

// Prefix is prepended to every variable name, e.g. DOSIMETRY_API_URL.
const Prefix = "DOSIMETRY"

// APIPath is appended to the site origin in production, where the backend is
// served from the same origin.
const APIPath = "/api"

// Config holds every setting the CLI reads from the environment.
type Config struct {
	Env    string `envconfig:"ENV" default:"development"`
	APIURL string `envconfig:"API_URL"`
	DevURL string `envconfig:"DEV_URL" default:"http://localhost:8000"`
	Origin string `envconfig:"ORIGIN" default:"http://localhost"`

	Strategy       string        `envconfig:"STRATEGY" default:"atomic"`
	RetryAttempts  int           `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryBaseDelay time.Duration `envconfig:"RETRY_BASE_DELAY" default:"1s"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"0"`
	StrictContract bool          `envconfig:"STRICT_CONTRACT" default:"false"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	MetricsFile string `envconfig:"METRICS_FILE"`
}

// Load reads the environment after applying .env files. Without arguments an
// optional ./.env is loaded; files named explicitly must exist. Variables
// already set in the environment are never overwritten by a file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("config: load %s: %w", strings.Join(envFiles, ", "), err)
	}

	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values envconfig cannot check by type.
func (c *Config) Validate() error {
	if _, err := submit.ParseStrategy(c.Strategy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("config: retry attempts must be at least 1, got %d", c.RetryAttempts)
	}
	if c.RetryBaseDelay < 0 || c.RequestTimeout < 0 {
		return errors.New("config: durations must not be negative")
	}
	if _, err := url.Parse(c.BaseURL()); err != nil {
		return fmt.Errorf("config: base url: %w", err)
	}
	return nil
}

// Production reports whether the same-origin deployment is selected.
func (c *Config) Production() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

// BaseURL picks the backend origin: an explicit API URL wins, otherwise the
// site origin plus /api in production and the development URL elsewhere.
func (c *Config) BaseURL() string {
	if u := strings.TrimSpace(c.APIURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	if c.Production() {
		return strings.TrimRight(strings.TrimSpace(c.Origin), "/") + APIPath
	}
	return strings.TrimRight(strings.TrimSpace(c.DevURL), "/")
}

// StrategyValue returns the parsed submission strategy.
func (c *Config) StrategyValue() submit.Strategy {
	s, _ := submit.ParseStrategy(c.Strategy)
	return s
}

// Policy returns the retry policy.
func (c *Config) Policy() submit.Policy {
	return submit.Policy{MaxAttempts: c.RetryAttempts, BaseDelay: c.RetryBaseDelay}
}
