// Package logging defines the Logger interface used across Shelfmark
// components and provides an slog-backed implementation.
package logging

import "context"

// Logger is the minimal structured logging contract used by services and
// HTTP handlers. args are alternating key/value pairs, slog-style.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}
