package config

import "github.com/caarlos0/env/v11"

// envPrefix namespaces every variable read by parseEnv.
const envPrefix = "YAMDB_"

// parseEnv overlays YAMDB_* environment variables. Unset variables leave
// the current value in place.
func parseEnv(config *Config) error {
	return env.ParseWithOptions(config, env.Options{Prefix: envPrefix})
}
