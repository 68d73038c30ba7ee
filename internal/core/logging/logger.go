// Package logging provides component loggers and context-aware log fields.
package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component creates a child of the global logger tagged with a component name
// under the "cmp" key.
func Component(name string) zerolog.Logger {
	return Named(log.Logger, name)
}

// Named tags an explicit base logger with a component name. The ContextHook is
// attached so request and task ids flow from context into events.
func Named(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("cmp", name).Logger().Hook(ContextHook{})
}
