package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/clipshare/internal/flagx"
	"github.com/dmitrijs2005/clipshare/internal/timex"
)

// JSONConfig is the on-disk form of Config. Durations accept "1s" style
// strings or integer nanoseconds. Absent fields keep their previous value.
type JSONConfig struct {
	ServerURL      string          `json:"server_url"`
	PollInterval   *timex.Duration `json:"poll_interval"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	DBPath         string          `json:"db_path"`
	LogFormat      string          `json:"log_format"`
	LogLevel       string          `json:"log_level"`
}

// parseJSON overlays cfg with the JSON file named by -c/-config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.PollInterval != nil {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DBPath != "" {
		cfg.DBPath = jc.DBPath
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	return nil
}
