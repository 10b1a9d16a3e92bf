// Package logger provides component-tagged structured logging for lineclaw.
//
// Every log line carries a "component" field so gateway output can be
// filtered per subsystem (webhook, linebot, bus, echo).
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level mirrors zerolog levels for callers that don't import zerolog.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	Level(zerolog.InfoLevel).
	With().Timestamp().Logger()

// SetLevel adjusts the global log level.
func SetLevel(level Level) {
	switch level {
	case DEBUG:
		log = log.Level(zerolog.DebugLevel)
	case INFO:
		log = log.Level(zerolog.InfoLevel)
	case WARN:
		log = log.Level(zerolog.WarnLevel)
	case ERROR:
		log = log.Level(zerolog.ErrorLevel)
	}
}

// InfoC logs an info message for a component.
func InfoC(component, msg string) {
	log.Info().Str("component", component).Msg(msg)
}

// InfoCF logs an info message for a component with structured fields.
func InfoCF(component, msg string, fields map[string]any) {
	log.Info().Str("component", component).Fields(fields).Msg(msg)
}

// WarnC logs a warning message for a component.
func WarnC(component, msg string) {
	log.Warn().Str("component", component).Msg(msg)
}

// WarnCF logs a warning message for a component with structured fields.
func WarnCF(component, msg string, fields map[string]any) {
	log.Warn().Str("component", component).Fields(fields).Msg(msg)
}

// ErrorC logs an error message for a component.
func ErrorC(component, msg string) {
	log.Error().Str("component", component).Msg(msg)
}

// ErrorCF logs an error message for a component with structured fields.
func ErrorCF(component, msg string, fields map[string]any) {
	log.Error().Str("component", component).Fields(fields).Msg(msg)
}

// DebugCF logs a debug message for a component with structured fields.
func DebugCF(component, msg string, fields map[string]any) {
	log.Debug().Str("component", component).Fields(fields).Msg(msg)
}
