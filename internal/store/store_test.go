package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/goliatone/go-cms-variants/internal/folders"
	"github.com/goliatone/go-cms-variants/internal/pages"
	"github.com/goliatone/go-cms-variants/internal/store"
	"github.com/goliatone/go-cms-variants/internal/visibility"
	"github.com/goliatone/go-cms-variants/pkg/storage"
	"github.com/google/uuid"
)

var errAbort = errors.New("abort unit of work")

func TestMemoryStore_RollsBackOnError(t *testing.T) {
	exerciseRollback(t, store.NewMemoryStore())
}

func TestBunStore_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(ctx, storage.Config{Driver: "sqlite"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := store.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := store.Migrate(ctx, db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	exerciseRollback(t, store.NewBunStore(db))
}

func exerciseRollback(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()
	folderID := uuid.New()
	pageID := uuid.New()
	now := time.Now().UTC()

	err := s.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.Folders().Create(ctx, &folders.Folder{ID: folderID, Name: "root", CreatedAt: now, UpdatedAt: now}); err != nil {
			return err
		}
		body := &pages.ContentBody{ID: uuid.New(), CreatedAt: now}
		if _, err := tx.Pages().CreateContentBody(ctx, body); err != nil {
			return err
		}
		_, err := tx.Pages().Create(ctx, &pages.Page{
			ID:            pageID,
			ContentBodyID: body.ID,
			FolderID:      folderID,
			Language:      "en",
			Name:          "index",
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		return err
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	err = s.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		page, err := tx.Pages().GetByID(ctx, pageID, visibility.ExcludeDeleted)
		if err != nil {
			return err
		}
		deletedAt := time.Now().UTC()
		page.DeletedAt = &deletedAt
		if _, err := tx.Pages().Update(ctx, page); err != nil {
			return err
		}
		if _, err := tx.Pages().GetByID(ctx, pageID, visibility.ExcludeDeleted); !domain.IsNotFound(err) {
			t.Errorf("expected page hidden inside the unit of work, got %v", err)
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("expected abort error, got %v", err)
	}

	err = s.View(ctx, func(ctx context.Context, tx store.Tx) error {
		page, err := tx.Pages().GetByID(ctx, pageID, visibility.ExcludeDeleted)
		if err != nil {
			return err
		}
		if page.IsDeleted() || page.Version != 1 {
			t.Errorf("expected untouched page after rollback, got %+v", page)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	if _, err := store.Open(context.Background(), storage.Config{Driver: "oracle"}); !errors.Is(err, store.ErrUnsupportedDriver) {
		t.Fatalf("expected unsupported driver error, got %v", err)
	}
}

func TestStore_NilCallback(t *testing.T) {
	if err := store.NewMemoryStore().RunInTx(context.Background(), nil); !errors.Is(err, store.ErrNilCallback) {
		t.Fatalf("expected nil callback error, got %v", err)
	}
}
