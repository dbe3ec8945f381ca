// internal/logging/logger.go

// Package logging defines the structured logger used across the tracker.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// alternating key/value pairs, following slog conventions:
//
//	log.Info(ctx, "food log created", "id", id, "meal_type", mealType)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}

// NopLogger discards everything. Use in tests.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (*NopLogger) Debug(context.Context, string, ...any) {}
func (*NopLogger) Info(context.Context, string, ...any)  {}
func (*NopLogger) Warn(context.Context, string, ...any)  {}
func (*NopLogger) Error(context.Context, string, ...any) {}
func (n *NopLogger) With(...any) Logger                  { return n }
