package pages

import (
	"context"

	"github.com/goliatone/go-cms-variants/internal/visibility"
	"github.com/google/uuid"
)

// Repository persists pages and their content bodies. Every read takes the
// visibility scope explicitly; soft-deleted rows are filtered by the scope and
// never by the caller.
type Repository interface {
	Create(ctx context.Context, record *Page) (*Page, error)
	GetByID(ctx context.Context, id uuid.UUID, scope visibility.Scope) (*Page, error)
	ListByContentBody(ctx context.Context, bodyID uuid.UUID, scope visibility.Scope) ([]*Page, error)
	ListByFolder(ctx context.Context, folderID uuid.UUID, scope visibility.Scope) ([]*Page, error)
	ListBySource(ctx context.Context, sourceID uuid.UUID, scope visibility.Scope) ([]*Page, error)
	// Update writes mutable columns when record.Version matches the stored
	// version and bumps it. A mismatch yields a ConcurrencyConflictError.
	Update(ctx context.Context, record *Page) (*Page, error)
	Purge(ctx context.Context, id uuid.UUID) error

	CreateContentBody(ctx context.Context, record *ContentBody) (*ContentBody, error)
	GetContentBody(ctx context.Context, id uuid.UUID) (*ContentBody, error)
	PurgeContentBody(ctx context.Context, id uuid.UUID) error
}
