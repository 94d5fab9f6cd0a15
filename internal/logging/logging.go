// Package logging builds the diagnostic logger. Diagnostics go to stderr so
// they never mix with command output.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/twiced-technology-gmbh/planwatch/internal/clierr"
)

// Options configures New.
type Options struct {
	Level  string // debug, info, warn or error
	Format string // text or json
}

// ParseLevel maps a level name to a slog.Level. Unknown names yield warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Err returns attributes describing err, including the code of a
// structured CLI error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	if code := clierr.CodeOf(err); code != "" {
		return slog.Group("error", slog.String("code", code), slog.String("message", err.Error()))
	}
	return slog.String("error", err.Error())
}
