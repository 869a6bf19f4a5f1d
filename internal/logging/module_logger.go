package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-cms-variants/pkg/interfaces"
)

const (
	rootModule     = "variants"
	engineModule   = "variants.engine"
	storeModule    = "variants.store"
	commandsModule = "variants.commands"
)

const (
	fieldOperation  = "operation"
	fieldObjectType = "object_type"
	fieldObjectID   = "object_id"
)

// ModuleLogger asks provider for the logger named module and tags it with a
// "module" field. A nil provider, or one that returns nil, yields NoOp.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module = strings.TrimSpace(module); module == "" {
		module = rootModule
	}
	var logger interfaces.Logger
	if provider != nil {
		logger = provider.GetLogger(module)
	}
	if logger == nil {
		return NoOp()
	}
	return WithFields(logger, map[string]any{"module": module})
}

// EngineLogger returns the logger namespace reserved for the variant engine.
func EngineLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, engineModule)
}

// StoreLogger returns the logger namespace reserved for storage setup.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// CommandsLogger returns the logger namespace reserved for command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// WithOperationContext enriches the logger with the operation name and the
// object it targets. Empty values are ignored.
func WithOperationContext(logger interfaces.Logger, operation, objectType, objectID string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(operation); trimmed != "" {
		fields[fieldOperation] = trimmed
	}
	if trimmed := strings.TrimSpace(objectType); trimmed != "" {
		fields[fieldObjectType] = trimmed
	}
	if trimmed := strings.TrimSpace(objectID); trimmed != "" {
		fields[fieldObjectID] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp discards every entry.
func NoOp() interfaces.Logger { return noopLogger{} }

type noopLogger struct{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger { return n }

func (n noopLogger) WithContext(context.Context) interfaces.Logger { return n }
