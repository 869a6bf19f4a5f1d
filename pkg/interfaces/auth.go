package interfaces

import (
	"context"

	"github.com/google/uuid"
)

// PermissionChecker answers whether the current actor may perform permission
// on the identified object. The engine consults it before every mutation.
type PermissionChecker interface {
	HasPermission(ctx context.Context, objectType string, objectID uuid.UUID, permission string) (bool, error)
}

// PermissionCheckerFunc adapts a function into a PermissionChecker.
type PermissionCheckerFunc func(ctx context.Context, objectType string, objectID uuid.UUID, permission string) (bool, error)

func (f PermissionCheckerFunc) HasPermission(ctx context.Context, objectType string, objectID uuid.UUID, permission string) (bool, error) {
	return f(ctx, objectType, objectID, permission)
}
