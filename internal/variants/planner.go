package variants

import (
	"context"
	"time"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/goliatone/go-cms-variants/internal/folders"
	"github.com/goliatone/go-cms-variants/internal/pages"
	"github.com/goliatone/go-cms-variants/internal/permissions"
	"github.com/goliatone/go-cms-variants/internal/store"
	"github.com/goliatone/go-cms-variants/internal/visibility"
	"github.com/google/uuid"
)

// Planner applies the removals a delete implies inside one unit of work.
//
// With the wastebin enabled a deleted page is soft-deleted. When it was the
// last visible member of its language variant group, every hidden sibling is
// purged along with it. With the wastebin disabled pages are purged outright
// and the same cascade applies. A content body is purged once no page
// references it.
type Planner struct {
	resolver *Resolver
	wastebin bool
}

func NewPlanner(resolver *Resolver, wastebin bool) *Planner {
	if resolver == nil {
		resolver = NewResolver()
	}
	return &Planner{resolver: resolver, wastebin: wastebin}
}

// Wastebin reports whether deletes are soft.
func (p *Planner) Wastebin() bool {
	return p.wastebin
}

// Guard authorizes permission on one object, returning an error to refuse.
type Guard func(ctx context.Context, objectType string, objectID uuid.UUID, permission string) error

// DeleteRun carries the state shared by every removal of one operation.
type DeleteRun struct {
	Report *DeletionReport
	actor  uuid.UUID
	now    time.Time
	batch  map[uuid.UUID]struct{}
	target uuid.UUID
	guard  Guard
}

func NewDeleteRun(actor uuid.UUID, now time.Time) *DeleteRun {
	return &DeleteRun{
		Report: &DeletionReport{DeletedIDs: []uuid.UUID{}},
		actor:  actor,
		now:    now,
		batch:  map[uuid.UUID]struct{}{},
	}
}

// Guarded makes every page or folder the run removes besides target pass
// guard first: soft deletes need the delete action, purges the purge action.
func (r *DeleteRun) Guarded(target uuid.UUID, guard Guard) *DeleteRun {
	r.target = target
	r.guard = guard
	return r
}

func (r *DeleteRun) allow(ctx context.Context, objectType string, id uuid.UUID, action permissions.Action) error {
	if r.guard == nil || id == r.target {
		return nil
	}
	return r.guard(ctx, objectType, id, string(action))
}

func (r *DeleteRun) inBatch(id uuid.UUID) bool {
	_, ok := r.batch[id]
	return ok
}

// DeleteLanguageVariant removes page from its language variant group. A page
// already in the wastebin is purged.
func (p *Planner) DeleteLanguageVariant(ctx context.Context, tx store.Tx, page *pages.Page, run *DeleteRun) error {
	if page.IsDeleted() {
		return p.purge(ctx, tx, page.ID, run)
	}

	live, err := p.resolver.LanguageVariants(ctx, tx, page, visibility.ExcludeDeleted)
	if err != nil {
		return err
	}
	lastVisible := true
	for _, sibling := range live {
		if sibling.ID != page.ID {
			lastVisible = false
			break
		}
	}

	if p.wastebin {
		if err := p.softDelete(ctx, tx, page, run); err != nil {
			return err
		}
	} else if err := p.purge(ctx, tx, page.ID, run); err != nil {
		return err
	}
	if !lastVisible {
		return nil
	}

	hidden, err := p.resolver.LanguageVariants(ctx, tx, page, visibility.OnlyDeleted)
	if err != nil {
		return err
	}
	for _, sibling := range hidden {
		if sibling.ID == page.ID || run.inBatch(sibling.ID) {
			continue
		}
		if err := p.purge(ctx, tx, sibling.ID, run); err != nil {
			return err
		}
		run.Report.Cascaded = true
	}
	return nil
}

// PurgePage hard-removes a page sitting in the wastebin.
func (p *Planner) PurgePage(ctx context.Context, tx store.Tx, page *pages.Page, run *DeleteRun) error {
	if !page.IsDeleted() {
		return ErrPageNotDeleted
	}
	return p.purge(ctx, tx, page.ID, run)
}

// DeleteFolder removes folder, its subfolders and the pages they contain. The
// pages removed here form one batch: the last-visible cascade of one page
// never purges another page of the same batch, so the whole folder stays
// restorable.
func (p *Planner) DeleteFolder(ctx context.Context, tx store.Tx, folder *folders.Folder, run *DeleteRun) error {
	scope := visibility.ExcludeDeleted
	if !p.wastebin {
		scope = visibility.IncludeDeleted
	}
	tree, err := p.subtree(ctx, tx, folder, scope)
	if err != nil {
		return err
	}

	var contained []*pages.Page
	for _, node := range tree {
		records, err := tx.Pages().ListByFolder(ctx, node.ID, scope)
		if err != nil {
			return err
		}
		contained = append(contained, records...)
	}
	for _, record := range contained {
		run.batch[record.ID] = struct{}{}
	}
	for _, record := range contained {
		current, err := tx.Pages().GetByID(ctx, record.ID, visibility.IncludeDeleted)
		if err != nil {
			if domain.IsNotFound(err) {
				continue
			}
			return err
		}
		if p.wastebin && current.IsDeleted() {
			continue
		}
		if err := p.DeleteLanguageVariant(ctx, tx, current, run); err != nil {
			return err
		}
	}

	if !p.wastebin {
		for i := len(tree) - 1; i >= 0; i-- {
			if err := run.allow(ctx, domain.ObjectTypeFolder, tree[i].ID, permissions.ActionDelete); err != nil {
				return err
			}
			if err := tx.Folders().Purge(ctx, tree[i].ID); err != nil {
				return err
			}
			run.Report.Folders = append(run.Report.Folders, tree[i].ID)
		}
		return nil
	}
	for _, node := range tree {
		if err := run.allow(ctx, domain.ObjectTypeFolder, node.ID, permissions.ActionDelete); err != nil {
			return err
		}
		node.DeletedAt = &run.now
		node.DeletedBy = &run.actor
		node.UpdatedAt = run.now
		node.UpdatedBy = run.actor
		if _, err := tx.Folders().Update(ctx, node); err != nil {
			return err
		}
		run.Report.Folders = append(run.Report.Folders, node.ID)
	}
	return nil
}

// subtree lists root and its descendants visible under scope, parents first.
func (p *Planner) subtree(ctx context.Context, tx store.Tx, root *folders.Folder, scope visibility.Scope) ([]*folders.Folder, error) {
	seen := map[uuid.UUID]struct{}{root.ID: {}}
	out := []*folders.Folder{root}
	for i := 0; i < len(out); i++ {
		children, err := tx.Folders().ListChildren(ctx, out[i].ID, scope)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if _, ok := seen[child.ID]; ok {
				return nil, &domain.IntegrityError{Resource: "folder", Key: child.ID.String(), Message: ErrFolderCycle.Error()}
			}
			seen[child.ID] = struct{}{}
			out = append(out, child)
		}
	}
	return out, nil
}

// siblingHeir picks the page that takes over page's dependents within its
// language variant group. Live siblings win over hidden ones.
func (p *Planner) siblingHeir(ctx context.Context, tx store.Tx, page *pages.Page) (*uuid.UUID, error) {
	siblings, err := tx.Pages().ListByContentBody(ctx, page.ContentBodyID, visibility.IncludeDeleted)
	if err != nil {
		return nil, err
	}
	var hidden *uuid.UUID
	for _, sibling := range siblings {
		if sibling.ID == page.ID {
			continue
		}
		id := sibling.ID
		if !sibling.IsDeleted() {
			return &id, nil
		}
		if hidden == nil {
			hidden = &id
		}
	}
	return hidden, nil
}

func (p *Planner) softDelete(ctx context.Context, tx store.Tx, page *pages.Page, run *DeleteRun) error {
	if err := run.allow(ctx, domain.ObjectTypePage, page.ID, permissions.ActionDelete); err != nil {
		return err
	}
	page.DeletedAt = &run.now
	page.DeletedBy = &run.actor
	page.UpdatedAt = run.now
	page.UpdatedBy = run.actor
	if _, err := tx.Pages().Update(ctx, page); err != nil {
		return err
	}
	run.Report.softDeleted(page.ID)
	return nil
}

// purge hard-removes a page with its attribute instances. Page variants that
// named the page as their origin are relinked so they keep the content body
// they copied: to a language sibling of the page when one survives, else to
// the page's own origin, else to the first of them.
func (p *Planner) purge(ctx context.Context, tx store.Tx, id uuid.UUID, run *DeleteRun) error {
	if err := run.allow(ctx, domain.ObjectTypePage, id, permissions.ActionPurge); err != nil {
		return err
	}
	page, err := tx.Pages().GetByID(ctx, id, visibility.IncludeDeleted)
	if err != nil {
		return err
	}

	dependents, err := tx.Pages().ListBySource(ctx, page.ID, visibility.IncludeDeleted)
	if err != nil {
		return err
	}
	var heir *uuid.UUID
	if len(dependents) > 0 {
		if heir, err = p.siblingHeir(ctx, tx, page); err != nil {
			return err
		}
	}
	if heir == nil && page.IsVariant() {
		origin := *page.SourcePageID
		heir = &origin
	}
	for _, dependent := range dependents {
		if heir == nil {
			promoted := dependent.ID
			heir = &promoted
			dependent.SourcePageID = nil
		} else {
			origin := *heir
			dependent.SourcePageID = &origin
		}
		dependent.UpdatedAt = run.now
		dependent.UpdatedBy = run.actor
		if _, err := tx.Pages().Update(ctx, dependent); err != nil {
			return err
		}
	}

	if err := tx.Tags().DeleteByOwner(ctx, domain.ObjectTypePage, page.ID); err != nil {
		return err
	}
	if err := tx.Pages().Purge(ctx, page.ID); err != nil {
		return err
	}
	run.Report.purged(page.ID)

	remaining, err := tx.Pages().ListByContentBody(ctx, page.ContentBodyID, visibility.IncludeDeleted)
	if err != nil {
		return err
	}
	if len(remaining) > 0 {
		return nil
	}
	if err := tx.Pages().PurgeContentBody(ctx, page.ContentBodyID); err != nil && !domain.IsNotFound(err) {
		return err
	}
	return nil
}
