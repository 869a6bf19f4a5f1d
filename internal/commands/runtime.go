package commands

import (
	"context"
	"time"

	"github.com/goliatone/go-cms-variants/internal/logging"
	"github.com/goliatone/go-cms-variants/pkg/interfaces"
)

// DefaultCommandTimeout bounds a command when no timeout is configured.
const DefaultCommandTimeout = 30 * time.Second

// ResolveTimeout returns configured, or DefaultCommandTimeout when configured
// is zero or negative.
func ResolveTimeout(configured time.Duration) time.Duration {
	if configured <= 0 {
		return DefaultCommandTimeout
	}
	return configured
}

// EnsureLogger returns logger, or a no-op logger when it is nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}

// withDeadline bounds ctx by timeout. A nil ctx starts from Background and a
// non-positive timeout leaves the context unbounded.
func withDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
