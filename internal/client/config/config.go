package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/fleetadmin/internal/flagx"
)

// Config holds runtime settings for the console.
type Config struct {
	APIBaseURL     string        `validate:"required,url"`
	DatabasePath   string        `validate:"required"`
	RequestTimeout time.Duration `validate:"gt=0"`
	ProgressDelay  time.Duration `validate:"gte=0"`

	LogBackend string `validate:"oneof=slog zap"`
	LogLevel   string `validate:"oneof=debug info warn error"`
	LogFormat  string `validate:"oneof=json text"`
	LogFile    string

	CacheTTL CacheTTL
}

// CacheTTL overrides the default lifetime of each cached resource.
type CacheTTL struct {
	Groups           time.Duration `validate:"gt=0"`
	Permissions      time.Duration `validate:"gt=0"`
	GroupPermissions time.Duration `validate:"gt=0"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000/api"
	c.DatabasePath = "fleetadmin.db"
	c.RequestTimeout = 15 * time.Second
	c.ProgressDelay = 300 * time.Millisecond

	c.LogBackend = "slog"
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.LogFile = "fleetadmin.log"

	c.CacheTTL = CacheTTL{
		Groups:           20 * time.Minute,
		Permissions:      60 * time.Minute,
		GroupPermissions: 5 * time.Minute,
	}
}

// Load builds a Config from defaults, the optional config file, environment
// and the given command-line arguments, in that order.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigFileFlags(args); path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	parseEnv(cfg)

	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args. It panics on invalid configuration,
// which is only ever called from main.
func LoadConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}
