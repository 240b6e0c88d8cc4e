package config

import "github.com/dmitrijs2005/fleetadmin/internal/flagx"

// Environment variable names read by parseEnv.
const (
	EnvAPIBaseURL   = "FLEETADMIN_API_URL"
	EnvDatabasePath = "FLEETADMIN_DB"
)

func parseEnv(cfg *Config) {
	cfg.APIBaseURL = flagx.EnvOr(EnvAPIBaseURL, cfg.APIBaseURL)
	cfg.DatabasePath = flagx.EnvOr(EnvDatabasePath, cfg.DatabasePath)
}
