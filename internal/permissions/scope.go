package permissions

import (
	"context"
	"strings"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/google/uuid"
)

// Strategy orders the candidate tokens checked for an object scoped
// permission.
type Strategy interface {
	Resolve(permission, objectKey string) []string
}

// StrategyFunc adapts a function into a Strategy.
type StrategyFunc func(permission, objectKey string) []string

func (fn StrategyFunc) Resolve(permission, objectKey string) []string {
	if fn == nil {
		return nil
	}
	return fn(permission, objectKey)
}

const (
	StrategyObjectFirst = "object_first"
	StrategyGlobalFirst = "global_first"
)

var (
	ObjectFirstStrategy Strategy = StrategyFunc(func(permission, objectKey string) []string {
		if permission == "" {
			return nil
		}
		scoped := scope(permission, objectKey)
		if scoped == permission {
			return []string{permission}
		}
		return []string{scoped, permission}
	})
	GlobalFirstStrategy Strategy = StrategyFunc(func(permission, objectKey string) []string {
		if permission == "" {
			return nil
		}
		scoped := scope(permission, objectKey)
		if scoped == permission {
			return []string{permission}
		}
		return []string{permission, scoped}
	})
)

// StrategyByName resolves a configured strategy label.
func StrategyByName(name string) Strategy {
	if strings.EqualFold(strings.TrimSpace(name), StrategyGlobalFirst) {
		return GlobalFirstStrategy
	}
	return ObjectFirstStrategy
}

// Authorizer answers object scoped permission checks against the checker
// stored on the context. It satisfies interfaces.PermissionChecker.
type Authorizer struct {
	strategy       Strategy
	requireChecker bool
}

// AuthorizerOption customises an Authorizer.
type AuthorizerOption func(*Authorizer)

// WithStrategy overrides the candidate ordering.
func WithStrategy(strategy Strategy) AuthorizerOption {
	return func(a *Authorizer) {
		if strategy != nil {
			a.strategy = strategy
		}
	}
}

// WithRequireChecker denies every request that carries no checker.
func WithRequireChecker(required bool) AuthorizerOption {
	return func(a *Authorizer) {
		a.requireChecker = required
	}
}

func NewAuthorizer(opts ...AuthorizerOption) *Authorizer {
	a := &Authorizer{strategy: ObjectFirstStrategy}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// HasPermission checks permission (an action such as "delete" or a full
// "resource:action" token) for the identified object.
func (a *Authorizer) HasPermission(ctx context.Context, objectType string, objectID uuid.UUID, permission string) (bool, error) {
	token := Token(objectType, permission)
	if token == "" {
		return true, nil
	}
	checker := CheckerFromContext(ctx)
	if checker == nil {
		return !a.requireChecker, nil
	}
	objectKey := ""
	if objectID != uuid.Nil {
		objectKey = objectID.String()
	}
	for _, candidate := range a.strategy.Resolve(token, objectKey) {
		normalized := normalizeToken(candidate)
		if normalized == "" {
			continue
		}
		if checker.Allowed(normalized) {
			return true, nil
		}
	}
	return false, nil
}

// Token maps an object type and action onto a permission token.
func Token(objectType, permission string) string {
	normalized := normalizeToken(permission)
	if normalized == "" {
		return ""
	}
	if strings.Contains(normalized, ":") {
		return normalized
	}
	return Join(ResourceFor(objectType), Action(normalized))
}

// ResourceFor returns the permission resource guarding an object type.
func ResourceFor(objectType string) string {
	switch normalizeToken(objectType) {
	case domain.ObjectTypePage, domain.ObjectTypeContent:
		return ResourcePages
	case domain.ObjectTypeFolder:
		return ResourceFolders
	case domain.ObjectTypeDefinition:
		return ResourceDefinitions
	default:
		return normalizeToken(objectType)
	}
}
