package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/clipshare/internal/flagx"
)

var ownFlags = []string{"-a", "-i", "-t", "-d", "-log", "-log-level"}

// parseFlags overlays cfg with command-line flags.
//
//	-a string        base URL of the API server
//	-i int           clipboard poll interval (milliseconds)
//	-t int           request timeout (seconds)
//	-d string        path of the local state database
//	-log string      log format: json or text
//	-log-level str   debug, info, warn or error
//
// Only the flags above are parsed; see flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("clipshare", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the API server")
	pollMillis := fs.Int("i", int(cfg.PollInterval.Milliseconds()), "clipboard poll interval (in milliseconds)")
	timeoutSeconds := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path of the local state database")
	fs.StringVar(&cfg.LogFormat, "log", cfg.LogFormat, "log format: json or text")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, ownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	cfg.PollInterval = time.Duration(*pollMillis) * time.Millisecond
	cfg.RequestTimeout = time.Duration(*timeoutSeconds) * time.Second
	return nil
}
