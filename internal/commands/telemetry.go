package commands

import (
	"context"
	"time"

	"github.com/goliatone/go-cms-variants/internal/logging"
	"github.com/goliatone/go-cms-variants/pkg/interfaces"
	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
)

// TelemetryStatus is the outcome class of one command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes a finished execution. Error is already categorised.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked once per execution, after the wrapped function returns.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// reportedCategories are checked in order; the first match is logged.
var reportedCategories = []goerrors.Category{
	goerrors.CategoryValidation,
	goerrors.CategoryNotFound,
	goerrors.CategoryAuthz,
	goerrors.CategoryConflict,
	goerrors.CategoryInternal,
	goerrors.CategoryCommand,
}

// ErrorCategory returns the go-errors category attached to err, or "" when
// err carries none of the categories the command layer produces.
func ErrorCategory(err error) goerrors.Category {
	if err == nil {
		return ""
	}
	for _, category := range reportedCategories {
		if goerrors.IsCategory(err, category) {
			return category
		}
	}
	return ""
}

// DefaultTelemetry logs the outcome with its duration. Successes log at
// info, rejected input and missing records at warn, everything else at error.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	logger = EnsureLogger(logger)
	return func(ctx context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logger.WithContext(ctx), info.Fields)
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		if info.Status == TelemetryStatusSuccess {
			entry.Info("command.execute.success", args...)
			return
		}

		category := ErrorCategory(info.Error)
		args = append(args, "error", info.Error, "error_category", string(category))
		switch {
		case info.Status == TelemetryStatusContextError:
			entry.Error("command.execute.context_error", args...)
		case category == goerrors.CategoryValidation || category == goerrors.CategoryNotFound:
			entry.Warn("command.execute.rejected", args...)
		default:
			entry.Error("command.execute.failed", args...)
		}
	}
}
