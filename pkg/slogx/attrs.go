// Package slogx holds small helpers for building log/slog attributes.
package slogx

import (
	"fmt"
	"log/slog"
)

const (
	// KeyLoggerName is the key for the logger name attribute.
	KeyLoggerName = "logger"
	// KeyError is the key for the error attribute.
	KeyError = "error"
)

// Error returns a slog.Attr representing the provided error.
// A nil error is rendered as "<nil>" rather than panicking.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "<nil>")
	}
	return slog.String(KeyError, err.Error())
}

// Stringer creates a slog.Attr with the string representation of value.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

// LoggerName creates a slog.Attr carrying the logger name.
func LoggerName(name string) slog.Attr {
	return slog.String(KeyLoggerName, name)
}

// Any renders an arbitrary value with %v. Stream payloads are untyped, so
// this keeps log output readable without relying on slog's reflection.
func Any(key string, value any) slog.Attr {
	return slog.String(key, fmt.Sprintf("%v", value))
}
