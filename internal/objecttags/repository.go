package objecttags

import (
	"context"

	"github.com/google/uuid"
)

// DefinitionRepository persists attribute definitions.
type DefinitionRepository interface {
	Create(ctx context.Context, record *Definition) (*Definition, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Definition, error)
	GetByKeyword(ctx context.Context, keyword string) (*Definition, error)
	List(ctx context.Context) ([]*Definition, error)
}

// TagRepository persists attribute instances. Owner visibility is decided by
// the owner repositories, so tag queries are not scoped.
type TagRepository interface {
	Create(ctx context.Context, record *ObjectTag) (*ObjectTag, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ObjectTag, error)
	GetByOwner(ctx context.Context, definitionID uuid.UUID, ownerType string, ownerID uuid.UUID) (*ObjectTag, error)
	ListByOwner(ctx context.Context, ownerType string, ownerID uuid.UUID) ([]*ObjectTag, error)
	ListByOwners(ctx context.Context, definitionID uuid.UUID, ownerType string, ownerIDs []uuid.UUID) ([]*ObjectTag, error)
	// Update writes the value when record.Version matches the stored version.
	Update(ctx context.Context, record *ObjectTag) (*ObjectTag, error)
	DeleteByOwner(ctx context.Context, ownerType string, ownerID uuid.UUID) error
}
