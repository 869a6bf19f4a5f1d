package objecttags_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/goliatone/go-cms-variants/internal/objecttags"
	"github.com/goliatone/go-cms-variants/pkg/testsupport"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestMemoryTagRepository_VersionedUpdate(t *testing.T) {
	ctx := context.Background()
	repo := objecttags.NewMemoryTagRepository()
	exerciseTagRepository(t, ctx, repo)
}

func TestBunTagRepository_VersionedUpdate(t *testing.T) {
	ctx := context.Background()
	db := newObjectTagsDB(t)
	exerciseTagRepository(t, ctx, objecttags.NewBunTagRepository(db))
}

func exerciseTagRepository(t *testing.T, ctx context.Context, repo objecttags.TagRepository) {
	t.Helper()
	definitionID := uuid.New()
	owner := uuid.New()
	other := uuid.New()

	first, err := repo.Create(ctx, &objecttags.ObjectTag{
		ID:           uuid.New(),
		DefinitionID: definitionID,
		OwnerType:    domain.ObjectTypePage,
		OwnerID:      owner,
		Value:        objecttags.NullPayload(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, &objecttags.ObjectTag{
		ID:           uuid.New(),
		DefinitionID: definitionID,
		OwnerType:    domain.ObjectTypePage,
		OwnerID:      owner,
	}); !errors.Is(err, objecttags.ErrDuplicateInstance) {
		t.Fatalf("expected duplicate instance error, got %v", err)
	}
	if _, err := repo.Create(ctx, &objecttags.ObjectTag{
		ID:           uuid.New(),
		DefinitionID: definitionID,
		OwnerType:    domain.ObjectTypePage,
		OwnerID:      other,
		Value:        objecttags.MustPayload("other"),
	}); err != nil {
		t.Fatalf("create other: %v", err)
	}

	stored, err := repo.GetByOwner(ctx, definitionID, domain.ObjectTypePage, owner)
	if err != nil {
		t.Fatalf("get by owner: %v", err)
	}
	if !stored.Value.IsNull() {
		t.Fatalf("expected explicit null, got %s", stored.Value)
	}

	stale := *stored
	stored.Value = objecttags.MustPayload(map[string]any{"number": 1, "string": "two"})
	stored.UpdatedAt = time.Now().UTC()
	updated, err := repo.Update(ctx, stored)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version != first.Version+1 {
		t.Fatalf("expected version bump, got %d", updated.Version)
	}

	stale.Value = objecttags.MustPayload("lost")
	var conflict *domain.ConcurrencyConflictError
	if _, err := repo.Update(ctx, &stale); !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	both, err := repo.ListByOwners(ctx, definitionID, domain.ObjectTypePage, []uuid.UUID{owner, other})
	if err != nil {
		t.Fatalf("list by owners: %v", err)
	}
	if len(both) != 2 {
		t.Fatalf("expected two instances, got %d", len(both))
	}

	if err := repo.DeleteByOwner(ctx, domain.ObjectTypePage, owner); err != nil {
		t.Fatalf("delete by owner: %v", err)
	}
	if _, err := repo.GetByOwner(ctx, definitionID, domain.ObjectTypePage, owner); !domain.IsNotFound(err) {
		t.Fatalf("expected deleted instance to be not found, got %v", err)
	}
	remaining, err := repo.ListByOwner(ctx, domain.ObjectTypePage, other)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(remaining) != 1 || !remaining[0].Value.Equal(objecttags.MustPayload("other")) {
		t.Fatalf("expected other owner untouched, got %+v", remaining)
	}
}

func TestBunDefinitionRepository_WithCache(t *testing.T) {
	ctx := context.Background()
	db := newObjectTagsDB(t)

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheService, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	repo := objecttags.NewBunDefinitionRepositoryWithCache(db, cacheService, repocache.NewDefaultKeySerializer())

	keyword := "note-" + uuid.NewString()
	created, err := repo.Create(ctx, &objecttags.Definition{
		ID:         uuid.New(),
		Keyword:    keyword,
		TargetType: domain.ObjectTypePage,
		Sync:       objecttags.SyncContentset | objecttags.SyncVariants,
		Schema:     map[string]any{"type": "string"},
	})
	if err != nil {
		t.Fatalf("create definition: %v", err)
	}

	for i := 0; i < 2; i++ {
		found, err := repo.GetByKeyword(ctx, keyword)
		if err != nil {
			t.Fatalf("get by keyword: %v", err)
		}
		if found.ID != created.ID || !found.Sync.Has(objecttags.SyncVariants) {
			t.Fatalf("unexpected definition %+v", found)
		}
	}

	if _, err := repo.Create(ctx, &objecttags.Definition{ID: uuid.New(), Keyword: keyword, TargetType: domain.ObjectTypePage}); !errors.Is(err, objecttags.ErrDefinitionExists) {
		t.Fatalf("expected duplicate keyword error, got %v", err)
	}
	if _, err := repo.GetByID(ctx, uuid.New()); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func newObjectTagsDB(t *testing.T) *bun.DB {
	t.Helper()
	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)

	for _, model := range []any{(*objecttags.Definition)(nil), (*objecttags.ObjectTag)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(context.Background()); err != nil {
			t.Fatalf("create table %T: %v", model, err)
		}
	}
	return db
}
