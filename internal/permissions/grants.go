// Package permissions resolves page, folder and definition permission tokens
// against grants carried on the request context.
package permissions

import (
	"context"
	"strings"
)

// Action is the verb half of a "resource:action" token.
type Action string

const (
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionRestore Action = "restore"
	ActionPurge   Action = "purge"
)

const (
	ResourcePages       = "pages"
	ResourceFolders     = "folders"
	ResourceDefinitions = "definitions"
)

const (
	PagesRead    = ResourcePages + ":" + string(ActionRead)
	PagesCreate  = ResourcePages + ":" + string(ActionCreate)
	PagesUpdate  = ResourcePages + ":" + string(ActionUpdate)
	PagesDelete  = ResourcePages + ":" + string(ActionDelete)
	PagesRestore = ResourcePages + ":" + string(ActionRestore)
	PagesPurge   = ResourcePages + ":" + string(ActionPurge)

	FoldersCreate  = ResourceFolders + ":" + string(ActionCreate)
	FoldersDelete  = ResourceFolders + ":" + string(ActionDelete)
	FoldersRestore = ResourceFolders + ":" + string(ActionRestore)

	DefinitionsCreate = ResourceDefinitions + ":" + string(ActionCreate)
)

// Join builds "resource:action", or "" when either half is blank.
func Join(resource string, action Action) string {
	res, act := normalizeToken(resource), normalizeToken(string(action))
	if res == "" || act == "" {
		return ""
	}
	return res + ":" + act
}

// Checker answers whether a single normalized token is granted.
type Checker interface {
	Allowed(permission string) bool
}

type CheckerFunc func(permission string) bool

func (fn CheckerFunc) Allowed(permission string) bool {
	return fn(permission)
}

// Set is a static grant list. "*" grants everything, "pages:*" every page
// action, and "pages:delete@<id>" a single object. An unscoped grant covers
// every object.
type Set map[string]struct{}

func NewSet(grants ...string) Set {
	set := make(Set, len(grants))
	for _, grant := range grants {
		if normalized := normalizeToken(grant); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}

func (s Set) Allowed(permission string) bool {
	permission = normalizeToken(permission)
	if permission == "" || len(s) == 0 {
		return false
	}
	base, object := splitScope(permission)
	resource, _, _ := strings.Cut(base, ":")

	candidates := []string{permission, "*", resource + ":*"}
	if object != "" {
		candidates = append(candidates, scope(resource+":*", object))
	}
	for _, candidate := range candidates {
		if _, ok := s[candidate]; ok {
			return true
		}
	}
	return false
}

// Permissioner is implemented by host user types, e.g. go-users actors.
type Permissioner interface {
	HasPermission(permission string) bool
}

type checkerKey struct{}

// WithChecker stores checker on ctx for the Authorizer to consult.
func WithChecker(ctx context.Context, checker Checker) context.Context {
	if ctx == nil || checker == nil {
		return ctx
	}
	return context.WithValue(ctx, checkerKey{}, checker)
}

// WithPermissions stores a static grant Set on ctx.
func WithPermissions(ctx context.Context, grants ...string) context.Context {
	return WithChecker(ctx, NewSet(grants...))
}

// WithPermissioner adapts a host user onto ctx.
func WithPermissioner(ctx context.Context, p Permissioner) context.Context {
	if p == nil {
		return ctx
	}
	return WithChecker(ctx, CheckerFunc(p.HasPermission))
}

// CheckerFromContext returns the checker stored on ctx, or nil.
func CheckerFromContext(ctx context.Context) Checker {
	if ctx == nil {
		return nil
	}
	checker, _ := ctx.Value(checkerKey{}).(Checker)
	return checker
}

func splitScope(permission string) (string, string) {
	base, object, found := strings.Cut(permission, "@")
	if !found || strings.TrimSpace(object) == "" {
		return permission, ""
	}
	return base, strings.TrimSpace(object)
}

func scope(permission, objectKey string) string {
	if permission == "" || objectKey == "" || strings.Contains(permission, "@") {
		return permission
	}
	return permission + "@" + strings.ToLower(objectKey)
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
