// Package obslog provides the structured logger used across the pool
// packages, following the component-scoped zerolog pattern from the
// corpus's off-chain AVM service (console writer for local/dev runs,
// one component field per subsystem).
package obslog

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var base zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}).
		With().
		Timestamp().
		Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// SetLevel adjusts the global minimum log level ("debug", "info", "warn", "error").
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return
	}
	zerolog.SetGlobalLevel(lvl)
}

// ForComponent returns a logger scoped to a named subsystem, e.g.
// "operation-engine" or "volatility-tracker".
func ForComponent(component string) zerolog.Logger {
	return base.With().Str("component", component).Logger()
}
