package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/fleetadmin/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the DTO for config files. Empty fields leave the current
// value untouched, so a file may set only what it cares about.
type FileConfig struct {
	APIBaseURL     string         `json:"api_base_url" yaml:"api_base_url"`
	DatabasePath   string         `json:"database_path" yaml:"database_path"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	ProgressDelay  timex.Duration `json:"progress_delay" yaml:"progress_delay"`

	Log struct {
		Backend string `json:"backend" yaml:"backend"`
		Level   string `json:"level" yaml:"level"`
		Format  string `json:"format" yaml:"format"`
		File    string `json:"file" yaml:"file"`
	} `json:"log" yaml:"log"`

	CacheTTL struct {
		Groups           timex.Duration `json:"groups" yaml:"groups"`
		Permissions      timex.Duration `json:"permissions" yaml:"permissions"`
		GroupPermissions timex.Duration `json:"group_permissions" yaml:"group_permissions"`
	} `json:"cache_ttl" yaml:"cache_ttl"`
}

func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return err
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.APIBaseURL, fc.APIBaseURL)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setDuration(&cfg.RequestTimeout, fc.RequestTimeout)
	setDuration(&cfg.ProgressDelay, fc.ProgressDelay)

	setString(&cfg.LogBackend, fc.Log.Backend)
	setString(&cfg.LogLevel, fc.Log.Level)
	setString(&cfg.LogFormat, fc.Log.Format)
	setString(&cfg.LogFile, fc.Log.File)

	setDuration(&cfg.CacheTTL.Groups, fc.CacheTTL.Groups)
	setDuration(&cfg.CacheTTL.Permissions, fc.CacheTTL.Permissions)
	setDuration(&cfg.CacheTTL.GroupPermissions, fc.CacheTTL.GroupPermissions)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
