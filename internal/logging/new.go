package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Backend names accepted by New.
const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// Options select and tune a Logger backend.
type Options struct {
	Backend string // "slog" (default) or "zap"
	Level   string // debug, info, warn, error
	Format  string // json (default) or text; slog only
	Output  io.Writer
}

// New builds a Logger for the given options.
func New(o Options) (Logger, error) {
	switch strings.ToLower(o.Backend) {
	case "", BackendSlog:
		return newSlog(o)
	case BackendZap:
		return newZap(o)
	default:
		return nil, fmt.Errorf("unknown log backend %q", o.Backend)
	}
}

func newSlog(o Options) (Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(levelOrDefault(o.Level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", o.Level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	switch strings.ToLower(o.Format) {
	case "", "json":
		h = slog.NewJSONHandler(o.Output, opts)
	case "text":
		h = slog.NewTextHandler(o.Output, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", o.Format)
	}

	return NewSlogLogger(slog.New(h)), nil
}

func newZap(o Options) (Logger, error) {
	lvl, err := zapcore.ParseLevel(levelOrDefault(o.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", o.Level, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(o.Output), lvl)
	return NewZapLogger(zap.New(core)), nil
}

func levelOrDefault(l string) string {
	if l == "" {
		return "info"
	}
	return l
}
