// Package config loads runtime configuration for the fleetadmin console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .yaml or .yml are read as YAML, everything else as JSON.
//  3. Environment variables FLEETADMIN_API_URL and FLEETADMIN_DB.
//  4. Command-line flags, which override everything above.
//
// Supported flags
//
//	-u string   base URL of the fleet backend API
//	-d string   path to the local SQLite state file
//	-t int      request timeout (seconds)
//	-log-level  debug | info | warn | error
//	-log-file   log destination ("-" for stderr)
//
// # File schema
//
// Durations use timex.Duration, so "20m" and integer nanoseconds both work:
//
//	api_base_url: http://127.0.0.1:8000/api
//	request_timeout: 15s
//	cache_ttl:
//	  groups: 20m
//	  permissions: 60m
//	  group_permissions: 5m
//
// The merged result is checked with Validate before it is returned.
package config
