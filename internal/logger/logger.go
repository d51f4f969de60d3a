// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The pgdb2 Authors

// Package logger provides a thin wrapper around zerolog.Logger shared
// by the pgdb2 library and its command line tool.
//
// The Logger type embeds zerolog.Logger, so the full zerolog API is
// available on *Logger. Library code never constructs output loggers
// on its own: the default is Nop, and callers opt in by handing their
// zerolog.Logger to Wrap. NewLogger and Console are for process entry
// points such as cmd/pgdb2.
package logger

import (
	"os"
	"runtime"

	"github.com/rs/zerolog"
)

// Logger is a thin wrapper around zerolog.Logger. Embedding exposes
// the zerolog API while leaving room for helper methods.
type Logger struct {
	zerolog.Logger
}

// Wrap adopts a caller-owned zerolog.Logger. This is how library
// users route pgdb2's logging into their own sink.
func Wrap(zl zerolog.Logger) *Logger {
	return &Logger{zl}
}

// Nop returns a *Logger that discards everything. It is the library
// default and keeps tests quiet.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// NewLogger constructs a JSON logger on stdout for the given
// component label. Every entry carries the component, a timestamp and
// a "func" caller field holding the fully-qualified function name.
//
// It adjusts zerolog's package-level caller settings, so it belongs
// in process entry points, not in library code.
func NewLogger(component string) *Logger {
	callerByFunction()

	zl := zerolog.New(os.Stdout).With().
		Str("component", component).
		Timestamp().
		Caller().
		Logger()

	return &Logger{zl}
}

// Console constructs a human-readable logger on stderr for the given
// component label. verbose lowers the level from info to debug. Like
// NewLogger it is meant for process entry points.
func Console(component string, verbose bool) *Logger {
	callerByFunction()

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Str("component", component).
		Timestamp().
		Logger()

	return &Logger{zl}
}

// WithComponent returns a child logger tagged with a component field.
// The child inherits every field of the receiver.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{l.With().Str("component", name).Logger()}
}

func callerByFunction() {
	zerolog.CallerFieldName = "func"
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}
}
