package variants

import (
	"context"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/goliatone/go-cms-variants/internal/objecttags"
	"github.com/goliatone/go-cms-variants/internal/pages"
	"github.com/goliatone/go-cms-variants/internal/store"
	"github.com/goliatone/go-cms-variants/internal/visibility"
	"github.com/google/uuid"
)

// Resolver answers variant group membership questions. Groups are always
// traversed with hidden members included, so a soft-deleted page never splits
// a group, and only the final membership is filtered by the caller's scope.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// LanguageVariants returns the pages sharing page's content body that are
// visible under scope. page itself is included when the scope admits it.
func (r *Resolver) LanguageVariants(ctx context.Context, tx store.Tx, page *pages.Page, scope visibility.Scope) ([]*pages.Page, error) {
	return tx.Pages().ListByContentBody(ctx, page.ContentBodyID, scope)
}

// PageVariants returns the page-variant family of page: every page connected
// to it through content origin links, across content bodies and folders.
func (r *Resolver) PageVariants(ctx context.Context, tx store.Tx, page *pages.Page, scope visibility.Scope) ([]*pages.Page, error) {
	return r.group(ctx, tx, page, objecttags.SyncVariants, scope)
}

// SyncGroup returns the owners whose instances of an attribute with the given
// sync scope must hold equal values, page included when the scope admits it.
// With both relations enabled the group is their transitive closure.
func (r *Resolver) SyncGroup(ctx context.Context, tx store.Tx, page *pages.Page, sync objecttags.SyncScope, scope visibility.Scope) ([]*pages.Page, error) {
	if !sync.Synchronized() {
		if scope.Admits(page.DeletedAt) {
			return []*pages.Page{page}, nil
		}
		return []*pages.Page{}, nil
	}
	return r.group(ctx, tx, page, sync, scope)
}

// SyncTargets resolves the instances an attribute write on tag must reach.
// The owner and every target owner are checked for existence; a dangling
// definition or owner is an integrity failure.
func (r *Resolver) SyncTargets(ctx context.Context, tx store.Tx, defs DefinitionSet, tag *objecttags.ObjectTag, scope visibility.Scope) (*Resolution, error) {
	definition, ok := defs[tag.DefinitionID]
	if !ok {
		return nil, &domain.IntegrityError{
			Resource: "object_tag",
			Key:      tag.ID.String(),
			Message:  "definition " + tag.DefinitionID.String() + " does not exist",
		}
	}
	if tag.OwnerType != domain.ObjectTypePage {
		return nil, &domain.IntegrityError{
			Resource: "object_tag",
			Key:      tag.ID.String(),
			Message:  "owner type " + tag.OwnerType + " cannot join a variant group",
		}
	}
	owner, err := tx.Pages().GetByID(ctx, tag.OwnerID, visibility.IncludeDeleted)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, &domain.IntegrityError{
				Resource: "object_tag",
				Key:      tag.ID.String(),
				Message:  "owner page " + tag.OwnerID.String() + " does not exist",
			}
		}
		return nil, err
	}

	members, err := r.SyncGroup(ctx, tx, owner, definition.Sync, scope)
	if err != nil {
		return nil, err
	}
	resolution := &Resolution{Definition: definition, Owner: owner, Owners: make([]*pages.Page, 0, len(members))}
	ids := make([]uuid.UUID, 0, len(members))
	for _, member := range members {
		if member.ID == owner.ID {
			continue
		}
		resolution.Owners = append(resolution.Owners, member)
		ids = append(ids, member.ID)
	}
	if len(ids) == 0 {
		return resolution, nil
	}
	targets, err := tx.Tags().ListByOwners(ctx, definition.ID, domain.ObjectTypePage, ids)
	if err != nil {
		return nil, err
	}
	resolution.Targets = make(map[uuid.UUID]*objecttags.ObjectTag, len(targets))
	for _, target := range targets {
		resolution.Targets[target.OwnerID] = target
	}
	return resolution, nil
}

// Resolution is the sync target set of one attribute instance. Owners lists
// the other group members in stable order; Targets maps the members that
// already hold an instance to that instance.
type Resolution struct {
	Definition *objecttags.Definition
	Owner      *pages.Page
	Owners     []*pages.Page
	Targets    map[uuid.UUID]*objecttags.ObjectTag
}

// Target returns the instance held by ownerID, if any.
func (r *Resolution) Target(ownerID uuid.UUID) (*objecttags.ObjectTag, bool) {
	if r == nil || r.Targets == nil {
		return nil, false
	}
	tag, ok := r.Targets[ownerID]
	return tag, ok
}

// DefinitionSet indexes definitions by id. It is loaded before a unit of work
// starts because definitions live outside the unit of work snapshot.
type DefinitionSet map[uuid.UUID]*objecttags.Definition

// NewDefinitionSet indexes records.
func NewDefinitionSet(records ...*objecttags.Definition) DefinitionSet {
	set := make(DefinitionSet, len(records))
	for _, record := range records {
		if record != nil {
			set[record.ID] = record
		}
	}
	return set
}

func (r *Resolver) group(ctx context.Context, tx store.Tx, start *pages.Page, relations objecttags.SyncScope, scope visibility.Scope) ([]*pages.Page, error) {
	seen := map[uuid.UUID]*pages.Page{start.ID: start}
	queue := []*pages.Page{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		neighbours, err := r.neighbours(ctx, tx, current, relations)
		if err != nil {
			return nil, err
		}
		for _, neighbour := range neighbours {
			if _, ok := seen[neighbour.ID]; ok {
				continue
			}
			seen[neighbour.ID] = neighbour
			queue = append(queue, neighbour)
		}
	}

	out := make([]*pages.Page, 0, len(seen))
	for _, member := range seen {
		if scope.Admits(member.DeletedAt) {
			out = append(out, member)
		}
	}
	pages.SortPages(out)
	return out, nil
}

func (r *Resolver) neighbours(ctx context.Context, tx store.Tx, page *pages.Page, relations objecttags.SyncScope) ([]*pages.Page, error) {
	var out []*pages.Page
	if relations.Has(objecttags.SyncContentset) {
		siblings, err := tx.Pages().ListByContentBody(ctx, page.ContentBodyID, visibility.IncludeDeleted)
		if err != nil {
			return nil, err
		}
		out = append(out, siblings...)
	}
	if relations.Has(objecttags.SyncVariants) {
		if page.IsVariant() {
			source, err := tx.Pages().GetByID(ctx, *page.SourcePageID, visibility.IncludeDeleted)
			switch {
			case err == nil:
				out = append(out, source)
			case !domain.IsNotFound(err):
				return nil, err
			}
		}
		dependents, err := tx.Pages().ListBySource(ctx, page.ID, visibility.IncludeDeleted)
		if err != nil {
			return nil, err
		}
		out = append(out, dependents...)
	}
	return out, nil
}
