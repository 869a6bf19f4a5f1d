package pages

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/goliatone/go-cms-variants/internal/visibility"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewPageRepository builds the generic repository for pages.
func NewPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord: func() *Page { return &Page{} },
		GetID: func(p *Page) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Page, id uuid.UUID) {
			p.ID = id
		},
	})
}

// NewContentBodyRepository builds the generic repository for content bodies.
func NewContentBodyRepository(db *bun.DB) repository.Repository[*ContentBody] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ContentBody]{
		NewRecord: func() *ContentBody { return &ContentBody{} },
		GetID: func(b *ContentBody) uuid.UUID {
			return b.ID
		},
		SetID: func(b *ContentBody, id uuid.UUID) {
			b.ID = id
		},
	})
}

// BunRepository implements Repository on top of the generic repositories.
// Every call runs against idb, the connection or the transaction the
// repository is bound to.
type BunRepository struct {
	idb    bun.IDB
	pages  repository.Repository[*Page]
	bodies repository.Repository[*ContentBody]
}

// NewBunRepository constructs a repository bound to db.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{
		idb:    db,
		pages:  NewPageRepository(db),
		bodies: NewContentBodyRepository(db),
	}
}

// WithTx returns a copy bound to tx. The generic repositories are shared.
func (r *BunRepository) WithTx(tx bun.IDB) *BunRepository {
	clone := *r
	clone.idb = tx
	return &clone
}

func (r *BunRepository) Create(ctx context.Context, record *Page) (*Page, error) {
	if record.Version <= 0 {
		record.Version = 1
	}
	created, err := r.pages.CreateTx(ctx, r.idb, record)
	if err != nil {
		return nil, fmt.Errorf("insert page: %w", err)
	}
	return created, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID, scope visibility.Scope) (*Page, error) {
	record, err := r.pages.GetTx(ctx, r.idb,
		repository.SelectByID(id.String()),
		visible(scope),
	)
	if err != nil {
		return nil, domain.MapRepositoryError(err, "page", id.String())
	}
	return record, nil
}

func (r *BunRepository) ListByContentBody(ctx context.Context, bodyID uuid.UUID, scope visibility.Scope) ([]*Page, error) {
	return r.list(ctx, scope, repository.SelectBy("content_body_id", "=", bodyID.String()))
}

func (r *BunRepository) ListByFolder(ctx context.Context, folderID uuid.UUID, scope visibility.Scope) ([]*Page, error) {
	return r.list(ctx, scope, repository.SelectBy("folder_id", "=", folderID.String()))
}

func (r *BunRepository) ListBySource(ctx context.Context, sourceID uuid.UUID, scope visibility.Scope) ([]*Page, error) {
	return r.list(ctx, scope, repository.SelectBy("source_page_id", "=", sourceID.String()))
}

// Update writes record when its version still matches the stored one. The
// conditional UPDATE is issued directly since the generic repository has no
// compare-and-swap criteria.
func (r *BunRepository) Update(ctx context.Context, record *Page) (*Page, error) {
	expected := record.Version
	updated := *record
	updated.Version = expected + 1

	result, err := r.idb.NewUpdate().
		Model(&updated).
		Column(
			"folder_id",
			"source_page_id",
			"language",
			"name",
			"deleted_at",
			"deleted_by",
			"updated_by",
			"updated_at",
			"version",
		).
		Where("?TableAlias.id = ?", record.ID).
		Where("?TableAlias.version = ?", expected).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update page: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("page update rows affected: %w", err)
	}
	if affected == 0 {
		if _, lookupErr := r.GetByID(ctx, record.ID, visibility.IncludeDeleted); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, &domain.ConcurrencyConflictError{Resource: "page", Key: record.ID.String(), Version: expected}
	}
	return &updated, nil
}

func (r *BunRepository) Purge(ctx context.Context, id uuid.UUID) error {
	result, err := r.idb.NewDelete().
		Model((*Page)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return requireAffected(result, "page", id)
}

func (r *BunRepository) CreateContentBody(ctx context.Context, record *ContentBody) (*ContentBody, error) {
	created, err := r.bodies.CreateTx(ctx, r.idb, record)
	if err != nil {
		return nil, fmt.Errorf("insert content body: %w", err)
	}
	return created, nil
}

func (r *BunRepository) GetContentBody(ctx context.Context, id uuid.UUID) (*ContentBody, error) {
	record, err := r.bodies.GetByIDTx(ctx, r.idb, id.String())
	if err != nil {
		return nil, domain.MapRepositoryError(err, "content_body", id.String())
	}
	return record, nil
}

func (r *BunRepository) PurgeContentBody(ctx context.Context, id uuid.UUID) error {
	result, err := r.idb.NewDelete().
		Model((*ContentBody)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete content body: %w", err)
	}
	return requireAffected(result, "content_body", id)
}

func (r *BunRepository) list(ctx context.Context, scope visibility.Scope, filter repository.SelectCriteria) ([]*Page, error) {
	records, _, err := r.pages.ListTx(ctx, r.idb,
		filter,
		visible(scope),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.language ASC").OrderExpr("?TableAlias.created_at ASC")
		}),
		repository.SelectPaginate(0, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	SortPages(records)
	return records, nil
}

func visible(scope visibility.Scope) repository.SelectCriteria {
	return repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return visibility.Apply(q, scope)
	})
}

func requireAffected(result sql.Result, resource string, id uuid.UUID) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s delete rows affected: %w", resource, err)
	}
	if affected == 0 {
		return domain.NewNotFound(resource, id)
	}
	return nil
}
