package folders

import (
	"context"

	"github.com/goliatone/go-cms-variants/internal/visibility"
	"github.com/google/uuid"
)

// Repository persists folders.
type Repository interface {
	Create(ctx context.Context, record *Folder) (*Folder, error)
	GetByID(ctx context.Context, id uuid.UUID, scope visibility.Scope) (*Folder, error)
	ListChildren(ctx context.Context, motherID uuid.UUID, scope visibility.Scope) ([]*Folder, error)
	Update(ctx context.Context, record *Folder) (*Folder, error)
	Purge(ctx context.Context, id uuid.UUID) error
}
