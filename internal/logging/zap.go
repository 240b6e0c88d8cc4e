package logging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ZapLogger adapts a *zap.Logger to Logger. Key–value pairs are passed
// through zap's SugaredLogger so the call sites stay identical to slog.
type ZapLogger struct {
	l *zap.SugaredLogger
}

func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{l: l.Sugar()}
}

func (z *ZapLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.l.Debugw(msg, normalize(withContextArgs(ctx, args))...)
}

func (z *ZapLogger) Info(ctx context.Context, msg string, args ...any) {
	z.l.Infow(msg, normalize(withContextArgs(ctx, args))...)
}

func (z *ZapLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.l.Warnw(msg, normalize(withContextArgs(ctx, args))...)
}

func (z *ZapLogger) Error(ctx context.Context, msg string, args ...any) {
	z.l.Errorw(msg, normalize(withContextArgs(ctx, args))...)
}

func (z *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{l: z.l.With(normalize(args)...)}
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.l.Sync()
}

// normalize turns error values into zap.Error fields and guards against an
// odd number of arguments, which zap would otherwise report as DPANIC.
func normalize(args []any) []any {
	out := make([]any, 0, len(args)+1)
	for i := 0; i < len(args); i++ {
		if i+1 >= len(args) {
			out = append(out, "!BADKEY", fmt.Sprint(args[i]))
			break
		}
		key, val := args[i], args[i+1]
		i++
		if err, ok := val.(error); ok {
			out = append(out, zap.NamedError(fmt.Sprint(key), err))
			continue
		}
		out = append(out, key, val)
	}
	return out
}
