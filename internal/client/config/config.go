package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the clipshare CLI.
//
// Fields:
//   - ServerURL: base URL of the clipboard service API.
//   - PollInterval: cadence of clipboard polling while a session is joined.
//   - RequestTimeout: upper bound for any single HTTP request.
//   - DBPath: location of the local SQLite state database.
//   - LogFormat, LogLevel: see logging.New.
type Config struct {
	ServerURL      string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	DBPath         string
	LogFormat      string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.PollInterval = time.Second
	c.RequestTimeout = 10 * time.Second
	c.DBPath = "clipshare.db"
	c.LogFormat = "json"
	c.LogLevel = "warn"
}

// LoadConfig builds a Config from defaults, then the JSON file named by
// -c/-config, then the environment, then command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	parseEnv(cfg, os.Getenv)
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server url is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}
