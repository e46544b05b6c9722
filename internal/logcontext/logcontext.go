package logcontext

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

var fieldsKey ctxKey

// AppendCtx returns a context carrying the given attrs in addition to any
// attrs already present. Handlers emit them on every record logged with the
// returned context, which is how a correlation id set once rides a whole
// call chain.
func AppendCtx(parent context.Context, attrs ...slog.Attr) context.Context {
	existing := Fields(parent)
	combined := make([]slog.Attr, 0, len(existing)+len(attrs))
	combined = append(combined, existing...)
	combined = append(combined, attrs...)
	return context.WithValue(parent, fieldsKey, combined)
}

func Fields(ctx context.Context) []slog.Attr {
	if attrs, ok := ctx.Value(fieldsKey).([]slog.Attr); ok {
		return attrs
	}
	return nil
}
