package wad

import (
	"log/slog"

	"github.com/stuarthighley/wadmap/internal/logging"
)

// SetLogger sets the logger used by wad and the map packages built on it
// (binmap, udmf, sectorgraph). Logging is off by default; nil turns it off again.
//
// Levels: Debug for per-lump progress, Warn for recoverable oddities such as
// an unclosed sector boundary.
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

func logger() *slog.Logger {
	return logging.Logger()
}
