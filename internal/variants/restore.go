package variants

import (
	"context"
	"time"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/goliatone/go-cms-variants/internal/folders"
	"github.com/goliatone/go-cms-variants/internal/pages"
	"github.com/goliatone/go-cms-variants/internal/store"
	"github.com/goliatone/go-cms-variants/internal/visibility"
	"github.com/google/uuid"
)

// Restorer brings wastebin entries back. Restoring never writes attribute
// values: a restored page keeps the values it had when it was deleted, and
// divergence from its group is reported by the tracker, not repaired.
type Restorer struct{}

func NewRestorer() *Restorer {
	return &Restorer{}
}

// RestoreResult lists what a restore brought back besides the target.
type RestoreResult struct {
	Pages   []uuid.UUID
	Folders []uuid.UUID
}

// RestorePage clears the deletion marker of page and of every deleted folder
// above it. Restoring a live page is a no-op.
func (r *Restorer) RestorePage(ctx context.Context, tx store.Tx, page *pages.Page, actor uuid.UUID, now time.Time) (*pages.Page, *RestoreResult, error) {
	result := &RestoreResult{}
	if !page.IsDeleted() {
		return page, result, nil
	}
	if err := r.restoreAncestors(ctx, tx, &page.FolderID, actor, now, result); err != nil {
		return nil, nil, err
	}
	page.DeletedAt = nil
	page.DeletedBy = nil
	page.UpdatedAt = now
	page.UpdatedBy = actor
	restored, err := tx.Pages().Update(ctx, page)
	if err != nil {
		return nil, nil, err
	}
	result.Pages = append(result.Pages, restored.ID)
	return restored, result, nil
}

// RestoreFolder clears the deletion marker of folder and its deleted
// ancestors, then brings back the subfolders and pages that were removed by
// the same delete, recognised by an identical deletion timestamp.
func (r *Restorer) RestoreFolder(ctx context.Context, tx store.Tx, folder *folders.Folder, actor uuid.UUID, now time.Time) (*folders.Folder, *RestoreResult, error) {
	result := &RestoreResult{}
	if !folder.IsDeleted() {
		return folder, result, nil
	}
	stamp := *folder.DeletedAt

	if err := r.restoreAncestors(ctx, tx, folder.MotherID, actor, now, result); err != nil {
		return nil, nil, err
	}
	restored, err := r.clearFolder(ctx, tx, folder, actor, now)
	if err != nil {
		return nil, nil, err
	}
	result.Folders = append(result.Folders, restored.ID)

	queue := []uuid.UUID{restored.ID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		contained, err := tx.Pages().ListByFolder(ctx, current, visibility.OnlyDeleted)
		if err != nil {
			return nil, nil, err
		}
		for _, page := range contained {
			if !sameInstant(page.DeletedAt, stamp) {
				continue
			}
			page.DeletedAt = nil
			page.DeletedBy = nil
			page.UpdatedAt = now
			page.UpdatedBy = actor
			if _, err := tx.Pages().Update(ctx, page); err != nil {
				return nil, nil, err
			}
			result.Pages = append(result.Pages, page.ID)
		}

		children, err := tx.Folders().ListChildren(ctx, current, visibility.OnlyDeleted)
		if err != nil {
			return nil, nil, err
		}
		for _, child := range children {
			if !sameInstant(child.DeletedAt, stamp) {
				continue
			}
			if _, err := r.clearFolder(ctx, tx, child, actor, now); err != nil {
				return nil, nil, err
			}
			result.Folders = append(result.Folders, child.ID)
			queue = append(queue, child.ID)
		}
	}
	return restored, result, nil
}

func (r *Restorer) restoreAncestors(ctx context.Context, tx store.Tx, folderID *uuid.UUID, actor uuid.UUID, now time.Time, result *RestoreResult) error {
	seen := map[uuid.UUID]struct{}{}
	for folderID != nil && *folderID != uuid.Nil {
		if _, ok := seen[*folderID]; ok {
			return &domain.IntegrityError{Resource: "folder", Key: folderID.String(), Message: ErrFolderCycle.Error()}
		}
		seen[*folderID] = struct{}{}

		folder, err := tx.Folders().GetByID(ctx, *folderID, visibility.IncludeDeleted)
		if err != nil {
			if domain.IsNotFound(err) {
				return &domain.IntegrityError{Resource: "folder", Key: folderID.String(), Message: "folder does not exist"}
			}
			return err
		}
		if folder.IsDeleted() {
			if _, err := r.clearFolder(ctx, tx, folder, actor, now); err != nil {
				return err
			}
			result.Folders = append(result.Folders, folder.ID)
		}
		folderID = folder.MotherID
	}
	return nil
}

func (r *Restorer) clearFolder(ctx context.Context, tx store.Tx, folder *folders.Folder, actor uuid.UUID, now time.Time) (*folders.Folder, error) {
	folder.DeletedAt = nil
	folder.DeletedBy = nil
	folder.UpdatedAt = now
	folder.UpdatedBy = actor
	return tx.Folders().Update(ctx, folder)
}

func sameInstant(value *time.Time, stamp time.Time) bool {
	return value != nil && value.Equal(stamp)
}
