package drawing

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discard drops every record. Enabled is false, so callers skip building
// attributes.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }

var silent = slog.New(discard{})

var current atomic.Pointer[slog.Logger]

func init() { current.Store(silent) }

// SetLogger sets the logger used by nodes, and by renderers created
// without WithLogger. A nil logger silences the package again.
//
// Levels:
//   - [slog.LevelDebug]: buffer uploads, shader variants, skipped passes
//   - [slog.LevelInfo]: renderer creation and release
//   - [slog.LevelWarn]: promotion history overflow, downscaled textures
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)
}

// Logger returns the package logger. It is safe for concurrent use.
func Logger() *slog.Logger { return current.Load() }
