package interfaces

import "context"

// Logger is the leveled logging contract the setup engine writes to. It
// matches github.com/goliatone/go-logger, so hosts already using that
// package can hand their logger over without an adapter.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out named loggers. An implementation may return one
// shared instance or scope a child logger per wizard area.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is an optional extension: providers that support it return a
// logger carrying the given structured fields on every entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
