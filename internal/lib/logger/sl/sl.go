// Package sl holds small slog helpers shared by all components.
package sl

import (
	"log/slog"
)

// Err creates a slog.Attr with the given error. A nil error logs as "<nil>".
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Op derives a logger tagged with the operation and the division it belongs to.
func Op(log *slog.Logger, division, opn string) *slog.Logger {
	return log.With(
		slog.String("op", opn),
		slog.String("division", division),
	)
}
