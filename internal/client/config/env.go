package config

import "strings"

// ServerEnvVar overrides the server URL, like the -a flag.
const ServerEnvVar = "CLIPSHARE_SERVER"

func parseEnv(cfg *Config, getenv func(string) string) {
	if v := strings.TrimSpace(getenv(ServerEnvVar)); v != "" {
		cfg.ServerURL = strings.TrimRight(v, "/")
	}
}
