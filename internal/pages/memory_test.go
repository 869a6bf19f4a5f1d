package pages_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/goliatone/go-cms-variants/internal/pages"
	"github.com/goliatone/go-cms-variants/internal/visibility"
	"github.com/google/uuid"
)

func TestMemoryRepository_ScopedQueries(t *testing.T) {
	ctx := context.Background()
	repo := pages.NewMemoryRepository()

	body := uuid.New()
	folder := uuid.New()
	deletedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	live := seedPage(t, repo, body, folder, "en", nil)
	hidden := seedPage(t, repo, body, folder, "de", &deletedAt)

	cases := []struct {
		scope visibility.Scope
		want  []uuid.UUID
	}{
		{visibility.ExcludeDeleted, []uuid.UUID{live.ID}},
		{visibility.IncludeDeleted, []uuid.UUID{hidden.ID, live.ID}},
		{visibility.OnlyDeleted, []uuid.UUID{hidden.ID}},
	}
	for _, tc := range cases {
		t.Run(tc.scope.String(), func(t *testing.T) {
			records, err := repo.ListByContentBody(ctx, body, tc.scope)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(records) != len(tc.want) {
				t.Fatalf("expected %d records, got %d", len(tc.want), len(records))
			}
			for i, id := range tc.want {
				if records[i].ID != id {
					t.Fatalf("record %d: expected %s, got %s", i, id, records[i].ID)
				}
			}
		})
	}

	if _, err := repo.GetByID(ctx, hidden.ID, visibility.ExcludeDeleted); !domain.IsNotFound(err) {
		t.Fatalf("expected hidden page to be not found, got %v", err)
	}
	if _, err := repo.GetByID(ctx, hidden.ID, visibility.OnlyDeleted); err != nil {
		t.Fatalf("get hidden under only deleted: %v", err)
	}
	if _, err := repo.GetByID(ctx, live.ID, visibility.OnlyDeleted); !domain.IsNotFound(err) {
		t.Fatalf("expected live page to be hidden under only deleted, got %v", err)
	}
}

func TestMemoryRepository_UpdateChecksVersion(t *testing.T) {
	ctx := context.Background()
	repo := pages.NewMemoryRepository()
	page := seedPage(t, repo, uuid.New(), uuid.New(), "en", nil)

	stale := *page
	page.Name = "renamed"
	updated, err := repo.Update(ctx, page)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version != page.Version+1 {
		t.Fatalf("expected version %d, got %d", page.Version+1, updated.Version)
	}

	stale.Name = "lost"
	_, err = repo.Update(ctx, &stale)
	var conflict *domain.ConcurrencyConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected concurrency conflict, got %v", err)
	}

	current, err := repo.GetByID(ctx, page.ID, visibility.ExcludeDeleted)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.Name != "renamed" {
		t.Fatalf("expected stale write to be rejected, got name %q", current.Name)
	}
}

func TestMemoryRepository_CloneIsIsolated(t *testing.T) {
	ctx := context.Background()
	repo := pages.NewMemoryRepository()
	page := seedPage(t, repo, uuid.New(), uuid.New(), "en", nil)

	snapshot := repo.Clone()
	if err := snapshot.Purge(ctx, page.ID); err != nil {
		t.Fatalf("purge on snapshot: %v", err)
	}
	if _, err := repo.GetByID(ctx, page.ID, visibility.IncludeDeleted); err != nil {
		t.Fatalf("expected original to keep page: %v", err)
	}
	if err := snapshot.Purge(ctx, page.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected second purge to be not found, got %v", err)
	}
}

func TestMemoryRepository_ListBySource(t *testing.T) {
	ctx := context.Background()
	repo := pages.NewMemoryRepository()
	origin := seedPage(t, repo, uuid.New(), uuid.New(), "en", nil)

	variant := &pages.Page{
		ID:            uuid.New(),
		ContentBodyID: uuid.New(),
		FolderID:      uuid.New(),
		SourcePageID:  &origin.ID,
		Language:      "en",
		Name:          "copy",
	}
	if _, err := repo.Create(ctx, variant); err != nil {
		t.Fatalf("create variant: %v", err)
	}

	records, err := repo.ListBySource(ctx, origin.ID, visibility.ExcludeDeleted)
	if err != nil {
		t.Fatalf("list by source: %v", err)
	}
	if len(records) != 1 || records[0].ID != variant.ID {
		t.Fatalf("expected variant %s, got %+v", variant.ID, records)
	}
	if !records[0].IsVariant() {
		t.Fatalf("expected page to report variant")
	}
}

func seedPage(t *testing.T, repo pages.Repository, body, folder uuid.UUID, language string, deletedAt *time.Time) *pages.Page {
	t.Helper()
	record := &pages.Page{
		ID:            uuid.New(),
		ContentBodyID: body,
		FolderID:      folder,
		Language:      language,
		Name:          "page-" + language,
		DeletedAt:     deletedAt,
		CreatedAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	created, err := repo.Create(context.Background(), record)
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	return created
}
