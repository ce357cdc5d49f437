package logger

import "context"

// Logger is a leveled, printf-style logger. The context is passed through to
// the backend so request-scoped fields can be attached later.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
}
