package visibility

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Scope selects which records a query returns with respect to the wastebin.
type Scope uint8

const (
	// ExcludeDeleted hides soft-deleted records. It is the ambient default.
	ExcludeDeleted Scope = iota
	// IncludeDeleted returns live and soft-deleted records.
	IncludeDeleted
	// OnlyDeleted returns soft-deleted records exclusively.
	OnlyDeleted
)

var scopeNames = map[Scope]string{
	ExcludeDeleted: "exclude_deleted",
	IncludeDeleted: "include_deleted",
	OnlyDeleted:    "only_deleted",
}

// String renders the scope label used in logs and configuration.
func (s Scope) String() string {
	if name, ok := scopeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("scope(%d)", uint8(s))
}

// Valid reports whether s is one of the declared scopes.
func (s Scope) Valid() bool {
	_, ok := scopeNames[s]
	return ok
}

// Admits reports whether a record with the supplied deletion timestamp is
// visible under the scope.
func (s Scope) Admits(deletedAt *time.Time) bool {
	deleted := deletedAt != nil
	switch s {
	case IncludeDeleted:
		return true
	case OnlyDeleted:
		return deleted
	default:
		return !deleted
	}
}

// Parse resolves a scope label. Empty input yields ExcludeDeleted.
func Parse(value string) (Scope, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return ExcludeDeleted, nil
	}
	normalized = strings.ReplaceAll(normalized, "-", "_")
	for scope, name := range scopeNames {
		if name == normalized {
			return scope, nil
		}
	}
	return ExcludeDeleted, fmt.Errorf("visibility: unknown scope %q", value)
}

type contextKey string

const scopeKey contextKey = "variants.visibility.scope"

// WithScope returns a context carrying scope. Contexts are immutable, so the
// override only applies to work performed with the returned context; callers
// holding the parent context keep observing the previous scope.
func WithScope(ctx context.Context, scope Scope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if !scope.Valid() {
		return ctx
	}
	return context.WithValue(ctx, scopeKey, scope)
}

// FromContext returns the active scope, defaulting to ExcludeDeleted.
func FromContext(ctx context.Context) Scope {
	if ctx == nil {
		return ExcludeDeleted
	}
	if scope, ok := ctx.Value(scopeKey).(Scope); ok && scope.Valid() {
		return scope
	}
	return ExcludeDeleted
}

// Run executes fn with scope entered. The caller's context is untouched, so
// the previous scope is in effect again on every exit path, panics included.
func Run(ctx context.Context, scope Scope, fn func(ctx context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(WithScope(ctx, scope))
}
