package logger

import "context"

// Logger is the printf-style logger shared by every package.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})

	// With returns a logger that attaches the given key/value pairs to every entry.
	With(keysAndValues ...interface{}) Logger
	Sync() error
}
