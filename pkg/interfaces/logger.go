package interfaces

import "context"

// Logger is the leveled logger used across the module. go-logger loggers
// satisfy it directly; see internal/logging/gologger for the adapter that
// also carries fields.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out loggers by dotted module name such as
// "variants.engine" or "variants.store".
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is implemented by loggers that can return a child with
// fields attached to every entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
