package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/fleetadmin/internal/flagx"
)

var knownFlags = []string{"-u", "-d", "-t", "-log-level", "-log-backend", "-log-file"}

// parseFlags overlays cfg with command-line flags. Arguments this function
// does not know (for example -c) are filtered out first with flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("fleetadmin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "u", cfg.APIBaseURL, "base URL of the fleet backend API")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local state database")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogBackend, "log-backend", cfg.LogBackend, "log backend: slog or zap")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log file, - for stderr")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
