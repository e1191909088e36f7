// Package config loads runtime configuration for the clipshare CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. The CLIPSHARE_SERVER environment variable.
//  4. Command-line flags, which override everything above.
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "poll_interval": "1s",
//	  "request_timeout": "10s",
//	  "db_path": "clipshare.db",
//	  "log_format": "json",
//	  "log_level": "warn"
//	}
package config
