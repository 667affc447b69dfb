package gfx

import (
	"log/slog"
	"sync/atomic"
)

var (
	silent = slog.New(slog.DiscardHandler)
	logger atomic.Pointer[slog.Logger]
)

// SetLogger routes the log output of the gfx, stream, composer and opengl
// packages to l. A nil l silences them again, which is also the initial
// state.
//
// Debug records cover page allocation and device setup, Info the driver
// and context, Warn programmer errors the composer recovered from.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	logger.Store(l)
}

// Logger returns the logger installed with SetLogger.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return silent
}
