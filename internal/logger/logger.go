// Package logger configures the application's structured logging.
//
// It uses zerolog everywhere: a console writer in the local environment for
// readability, JSON output elsewhere. It also provides the level plumbing the
// database package needs to route pgx query tracing through zerolog.
package logger

import (
	"os"
	"strings"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// New builds the application's root logger.
//
// In the "local" environment logs go through a human-friendly console writer
// at debug level; in any other environment they are JSON at info level so log
// shippers can parse them.
func New(env string) zerolog.Logger {
	// Render pkg/errors stack traces when an event calls Stack().
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	level := zerolog.InfoLevel
	if env == "local" {
		level = zerolog.DebugLevel
	}

	if lvl, ok := levelFromEnv(); ok {
		level = lvl
	}

	if env == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).
		Level(level).
		With().Timestamp().Logger()
}

// levelFromEnv lets FPLSYNC_LOG_LEVEL override the environment default.
func levelFromEnv() (zerolog.Level, bool) {
	raw := strings.ToLower(os.Getenv("FPLSYNC_LOG_LEVEL"))
	if raw == "" {
		return zerolog.NoLevel, false
	}
	lvl, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.NoLevel, false
	}
	return lvl, true
}

// NewPgxLogger derives a logger for pgx query tracing from the given level.
// SQL logging is noisy, so it only ever emits at debug.
func NewPgxLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Str("component", "pgx").Logger()
}

// PgxTraceLogLevel maps a zerolog level onto the pgx tracelog level so the
// query tracer honours the app's verbosity setting.
func PgxTraceLogLevel(level zerolog.Level) tracelog.LogLevel {
	switch {
	case level <= zerolog.DebugLevel:
		return tracelog.LogLevelDebug
	case level == zerolog.InfoLevel:
		return tracelog.LogLevelInfo
	case level == zerolog.WarnLevel:
		return tracelog.LogLevelWarn
	default:
		return tracelog.LogLevelError
	}
}
