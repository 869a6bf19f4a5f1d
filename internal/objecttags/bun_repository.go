package objecttags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewDefinitionRepository builds the generic repository for definitions,
// keyed by keyword.
func NewDefinitionRepository(db *bun.DB) repository.Repository[*Definition] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Definition]{
		NewRecord: func() *Definition { return &Definition{} },
		GetID: func(d *Definition) uuid.UUID {
			return d.ID
		},
		SetID: func(d *Definition, id uuid.UUID) {
			d.ID = id
		},
		GetIdentifier: func() string {
			return "keyword"
		},
		GetIdentifierValue: func(d *Definition) string {
			return d.Keyword
		},
	})
}

// BunDefinitionRepository reads and registers definitions outside of a unit
// of work. Lookups go through the repository cache when one is configured.
type BunDefinitionRepository struct {
	db   *bun.DB
	repo repository.Repository[*Definition]
}

func NewBunDefinitionRepository(db *bun.DB) *BunDefinitionRepository {
	return NewBunDefinitionRepositoryWithCache(db, nil, nil)
}

func NewBunDefinitionRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunDefinitionRepository {
	base := NewDefinitionRepository(db)
	return &BunDefinitionRepository{
		db:   db,
		repo: wrapWithCache(base, cacheService, keySerializer),
	}
}

func (r *BunDefinitionRepository) Create(ctx context.Context, record *Definition) (*Definition, error) {
	exists, err := r.db.NewSelect().
		Model((*Definition)(nil)).
		Where("?TableAlias.keyword = ?", record.Keyword).
		Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("object_tag_definition lookup: %w", err)
	}
	if exists {
		return nil, ErrDefinitionExists
	}
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, domain.MapRepositoryError(err, "object_tag_definition", record.Keyword)
	}
	return created, nil
}

func (r *BunDefinitionRepository) GetByID(ctx context.Context, id uuid.UUID) (*Definition, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, domain.MapRepositoryError(err, "object_tag_definition", id.String())
	}
	return result, nil
}

func (r *BunDefinitionRepository) GetByKeyword(ctx context.Context, keyword string) (*Definition, error) {
	result, err := r.repo.GetByIdentifier(ctx, keyword)
	if err != nil {
		return nil, domain.MapRepositoryError(err, "object_tag_definition", keyword)
	}
	return result, nil
}

func (r *BunDefinitionRepository) List(ctx context.Context) ([]*Definition, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.keyword ASC")
	}))
	if err != nil {
		return nil, domain.MapRepositoryError(err, "object_tag_definition", "")
	}
	return records, nil
}

// BunTagRepository implements TagRepository over a bun connection or
// transaction.
type BunTagRepository struct {
	db bun.IDB
}

func NewBunTagRepository(db bun.IDB) *BunTagRepository {
	return &BunTagRepository{db: db}
}

func (r *BunTagRepository) Create(ctx context.Context, record *ObjectTag) (*ObjectTag, error) {
	exists, err := r.db.NewSelect().
		Model((*ObjectTag)(nil)).
		Where("?TableAlias.definition_id = ?", record.DefinitionID).
		Where("?TableAlias.owner_type = ?", record.OwnerType).
		Where("?TableAlias.owner_id = ?", record.OwnerID).
		Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("object_tag lookup: %w", err)
	}
	if exists {
		return nil, ErrDuplicateInstance
	}
	if record.Version <= 0 {
		record.Version = 1
	}
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert object_tag: %w", err)
	}
	return record, nil
}

func (r *BunTagRepository) GetByID(ctx context.Context, id uuid.UUID) (*ObjectTag, error) {
	record := new(ObjectTag)
	if err := r.db.NewSelect().Model(record).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("object_tag", id)
		}
		return nil, fmt.Errorf("get object_tag: %w", err)
	}
	return record, nil
}

func (r *BunTagRepository) GetByOwner(ctx context.Context, definitionID uuid.UUID, ownerType string, ownerID uuid.UUID) (*ObjectTag, error) {
	record := new(ObjectTag)
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.definition_id = ?", definitionID).
		Where("?TableAlias.owner_type = ?", ownerType).
		Where("?TableAlias.owner_id = ?", ownerID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "object_tag", Key: ownerKey(definitionID, ownerID)}
		}
		return nil, fmt.Errorf("get object_tag by owner: %w", err)
	}
	return record, nil
}

func (r *BunTagRepository) ListByOwner(ctx context.Context, ownerType string, ownerID uuid.UUID) ([]*ObjectTag, error) {
	var records []*ObjectTag
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.owner_type = ?", ownerType).
		Where("?TableAlias.owner_id = ?", ownerID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list object_tags by owner: %w", err)
	}
	sortTags(records)
	return records, nil
}

func (r *BunTagRepository) ListByOwners(ctx context.Context, definitionID uuid.UUID, ownerType string, ownerIDs []uuid.UUID) ([]*ObjectTag, error) {
	records := make([]*ObjectTag, 0)
	if len(ownerIDs) == 0 {
		return records, nil
	}
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.definition_id = ?", definitionID).
		Where("?TableAlias.owner_type = ?", ownerType).
		Where("?TableAlias.owner_id IN (?)", bun.In(ownerIDs)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list object_tags by owners: %w", err)
	}
	sortTags(records)
	return records, nil
}

func (r *BunTagRepository) Update(ctx context.Context, record *ObjectTag) (*ObjectTag, error) {
	expected := record.Version
	updated := *record
	updated.Version = expected + 1

	result, err := r.db.NewUpdate().
		Model(&updated).
		Column("value", "updated_by", "updated_at", "version").
		Where("?TableAlias.id = ?", record.ID).
		Where("?TableAlias.version = ?", expected).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update object_tag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("object_tag update rows affected: %w", err)
	}
	if affected == 0 {
		if _, lookupErr := r.GetByID(ctx, record.ID); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, &domain.ConcurrencyConflictError{Resource: "object_tag", Key: record.ID.String(), Version: expected}
	}
	return &updated, nil
}

func (r *BunTagRepository) DeleteByOwner(ctx context.Context, ownerType string, ownerID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*ObjectTag)(nil)).
		Where("?TableAlias.owner_type = ?", ownerType).
		Where("?TableAlias.owner_id = ?", ownerID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete object_tags by owner: %w", err)
	}
	return nil
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
