package variants

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/goliatone/go-cms-variants/internal/identity"
	"github.com/goliatone/go-cms-variants/internal/objecttags"
	"github.com/goliatone/go-cms-variants/internal/pages"
	"github.com/goliatone/go-cms-variants/internal/store"
	"github.com/goliatone/go-cms-variants/internal/validation"
	"github.com/goliatone/go-cms-variants/internal/visibility"
	"github.com/google/uuid"
)

var ErrValueUnset = errors.New("variants: attribute value must be set, use an explicit null to clear it")

// Tracker keeps synchronized attribute values equal across sync groups.
type Tracker struct {
	resolver *Resolver
}

func NewTracker(resolver *Resolver) *Tracker {
	if resolver == nil {
		resolver = NewResolver()
	}
	return &Tracker{resolver: resolver}
}

// WriteResult describes the instances touched by a write.
type WriteResult struct {
	Tag *objecttags.ObjectTag
	// Written lists the sync target owners whose value changed.
	Written []uuid.UUID
	// Unchanged counts sync targets that already held the value.
	Unchanged int
}

// Write stores value on page and, for synchronized definitions, on every live
// member of the page's sync group. Members that lack an instance get one;
// soft-deleted members are never written.
func (t *Tracker) Write(ctx context.Context, tx store.Tx, definition *objecttags.Definition, page *pages.Page, value objecttags.Payload, actor uuid.UUID, now time.Time) (*WriteResult, error) {
	if !value.IsSet() {
		return nil, ErrValueUnset
	}
	decoded, err := value.Decode()
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateValue(definition.Schema, decoded); err != nil {
		return nil, err
	}

	existing, err := t.instance(ctx, tx, definition, page.ID)
	if err != nil {
		return nil, err
	}
	tag := existing
	if tag == nil || !tag.Value.Equal(value) {
		if tag, err = t.put(ctx, tx, definition, page.ID, existing, value, actor, now); err != nil {
			return nil, err
		}
	}
	result := &WriteResult{Tag: tag, Written: []uuid.UUID{}}
	if !definition.Synchronized() {
		return result, nil
	}

	resolution, err := t.resolver.SyncTargets(ctx, tx, NewDefinitionSet(definition), tag, visibility.ExcludeDeleted)
	if err != nil {
		return nil, err
	}
	for _, owner := range resolution.Owners {
		target, ok := resolution.Target(owner.ID)
		if ok && target.Value.Equal(value) {
			result.Unchanged++
			continue
		}
		if _, err := t.put(ctx, tx, definition, owner.ID, target, value, actor, now); err != nil {
			return nil, err
		}
		result.Written = append(result.Written, owner.ID)
	}
	return result, nil
}

// Reconcile writes the page's current value again so every live member of its
// sync group matches it.
func (t *Tracker) Reconcile(ctx context.Context, tx store.Tx, definition *objecttags.Definition, page *pages.Page, actor uuid.UUID, now time.Time) (*WriteResult, error) {
	tag, err := tx.Tags().GetByOwner(ctx, definition.ID, domain.ObjectTypePage, page.ID)
	if err != nil {
		return nil, err
	}
	return t.Write(ctx, tx, definition, page, tag.Value, actor, now)
}

// Check compares the page's value, the reference, with every other member of
// its sync group visible under scope. A member without an instance holds the
// unset value.
func (t *Tracker) Check(ctx context.Context, tx store.Tx, definition *objecttags.Definition, page *pages.Page, scope visibility.Scope) (*SyncReport, error) {
	tag, err := t.instance(ctx, tx, definition, page.ID)
	if err != nil {
		return nil, err
	}
	report := &SyncReport{
		PageID:    page.ID,
		Attribute: definition.Keyword,
		Divergent: []uuid.UUID{},
		State:     SyncStateInSync,
	}
	if tag == nil {
		tag = &objecttags.ObjectTag{
			ID:           identity.TagUUID(definition.ID, domain.ObjectTypePage, page.ID),
			DefinitionID: definition.ID,
			OwnerType:    domain.ObjectTypePage,
			OwnerID:      page.ID,
		}
	}
	report.Reference = tag.Value

	resolution, err := t.resolver.SyncTargets(ctx, tx, NewDefinitionSet(definition), tag, scope)
	if err != nil {
		return nil, err
	}
	var distinct []objecttags.Payload
	for _, owner := range resolution.Owners {
		var value objecttags.Payload
		if target, ok := resolution.Target(owner.ID); ok {
			value = target.Value
		}
		report.Checked++
		if value.Equal(report.Reference) {
			continue
		}
		report.Divergent = append(report.Divergent, owner.ID)
		if !containsPayload(distinct, value) {
			distinct = append(distinct, value)
		}
	}
	switch {
	case len(distinct) > 1:
		report.State = SyncStateAmbiguous
	case len(distinct) == 1:
		report.State = SyncStateDiverged
	}
	return report, nil
}

// Inherit gives a freshly created page the values its live sync group already
// agrees on, one per synchronized page definition. The first group member
// holding an instance supplies the value.
func (t *Tracker) Inherit(ctx context.Context, tx store.Tx, defs DefinitionSet, page *pages.Page, actor uuid.UUID, now time.Time) (int, error) {
	ordered := make([]*objecttags.Definition, 0, len(defs))
	for _, definition := range defs {
		if definition.Synchronized() && definition.TargetType == domain.ObjectTypePage {
			ordered = append(ordered, definition)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Keyword < ordered[j].Keyword })

	inherited := 0
	for _, definition := range ordered {
		group, err := t.resolver.SyncGroup(ctx, tx, page, definition.Sync, visibility.ExcludeDeleted)
		if err != nil {
			return inherited, err
		}
		ids := make([]uuid.UUID, 0, len(group))
		for _, member := range group {
			if member.ID != page.ID {
				ids = append(ids, member.ID)
			}
		}
		if len(ids) == 0 {
			continue
		}
		instances, err := tx.Tags().ListByOwners(ctx, definition.ID, domain.ObjectTypePage, ids)
		if err != nil {
			return inherited, err
		}
		byOwner := make(map[uuid.UUID]*objecttags.ObjectTag, len(instances))
		for _, instance := range instances {
			byOwner[instance.OwnerID] = instance
		}
		for _, id := range ids {
			source, ok := byOwner[id]
			if !ok {
				continue
			}
			existing, err := t.instance(ctx, tx, definition, page.ID)
			if err != nil {
				return inherited, err
			}
			if _, err := t.put(ctx, tx, definition, page.ID, existing, source.Value, actor, now); err != nil {
				return inherited, err
			}
			inherited++
			break
		}
	}
	return inherited, nil
}

// Read returns the page's value, unset when it holds no instance.
func (t *Tracker) Read(ctx context.Context, tx store.Tx, definition *objecttags.Definition, page *pages.Page) (objecttags.Payload, error) {
	tag, err := t.instance(ctx, tx, definition, page.ID)
	if err != nil || tag == nil {
		return objecttags.Payload{}, err
	}
	return tag.Value, nil
}

func (t *Tracker) instance(ctx context.Context, tx store.Tx, definition *objecttags.Definition, ownerID uuid.UUID) (*objecttags.ObjectTag, error) {
	tag, err := tx.Tags().GetByOwner(ctx, definition.ID, domain.ObjectTypePage, ownerID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return tag, nil
}

func (t *Tracker) put(ctx context.Context, tx store.Tx, definition *objecttags.Definition, ownerID uuid.UUID, existing *objecttags.ObjectTag, value objecttags.Payload, actor uuid.UUID, now time.Time) (*objecttags.ObjectTag, error) {
	if existing == nil {
		return tx.Tags().Create(ctx, &objecttags.ObjectTag{
			ID:           identity.TagUUID(definition.ID, domain.ObjectTypePage, ownerID),
			DefinitionID: definition.ID,
			OwnerType:    domain.ObjectTypePage,
			OwnerID:      ownerID,
			Value:        value,
			Version:      1,
			UpdatedBy:    actor,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	updated := *existing
	updated.Value = value
	updated.UpdatedBy = actor
	updated.UpdatedAt = now
	return tx.Tags().Update(ctx, &updated)
}

func containsPayload(values []objecttags.Payload, candidate objecttags.Payload) bool {
	for _, value := range values {
		if value.Equal(candidate) {
			return true
		}
	}
	return false
}
