package objecttags

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/google/uuid"
)

// MemoryDefinitionRepository keeps definitions in process memory.
type MemoryDefinitionRepository struct {
	mu        sync.RWMutex
	byID      map[uuid.UUID]*Definition
	byKeyword map[string]uuid.UUID
}

func NewMemoryDefinitionRepository() *MemoryDefinitionRepository {
	return &MemoryDefinitionRepository{
		byID:      make(map[uuid.UUID]*Definition),
		byKeyword: make(map[string]uuid.UUID),
	}
}

func (m *MemoryDefinitionRepository) Create(_ context.Context, record *Definition) (*Definition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(record.Keyword)
	if _, exists := m.byKeyword[key]; exists {
		return nil, ErrDefinitionExists
	}
	copied := cloneDefinition(record)
	m.byID[copied.ID] = copied
	m.byKeyword[key] = copied.ID
	return cloneDefinition(copied), nil
}

func (m *MemoryDefinitionRepository) GetByID(_ context.Context, id uuid.UUID) (*Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.byID[id]
	if !ok {
		return nil, domain.NewNotFound("object_tag_definition", id)
	}
	return cloneDefinition(record), nil
}

func (m *MemoryDefinitionRepository) GetByKeyword(_ context.Context, keyword string) (*Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byKeyword[strings.ToLower(keyword)]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "object_tag_definition", Key: keyword}
	}
	return cloneDefinition(m.byID[id]), nil
}

func (m *MemoryDefinitionRepository) List(_ context.Context) ([]*Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Definition, 0, len(m.byID))
	for _, record := range m.byID {
		out = append(out, cloneDefinition(record))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Keyword < out[j].Keyword })
	return out, nil
}

// MemoryTagRepository keeps attribute instances in process memory.
type MemoryTagRepository struct {
	mu   sync.RWMutex
	tags map[uuid.UUID]*ObjectTag
}

func NewMemoryTagRepository() *MemoryTagRepository {
	return &MemoryTagRepository{tags: make(map[uuid.UUID]*ObjectTag)}
}

// Clone returns a deep copy used as a transaction snapshot.
func (m *MemoryTagRepository) Clone() *MemoryTagRepository {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := NewMemoryTagRepository()
	for id, tag := range m.tags {
		out.tags[id] = cloneTag(tag)
	}
	return out
}

func (m *MemoryTagRepository) Create(_ context.Context, record *ObjectTag) (*ObjectTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tags {
		if existing.DefinitionID == record.DefinitionID && existing.OwnerType == record.OwnerType && existing.OwnerID == record.OwnerID {
			return nil, ErrDuplicateInstance
		}
	}
	copied := cloneTag(record)
	if copied.Version <= 0 {
		copied.Version = 1
	}
	m.tags[copied.ID] = copied
	return cloneTag(copied), nil
}

func (m *MemoryTagRepository) GetByID(_ context.Context, id uuid.UUID) (*ObjectTag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.tags[id]
	if !ok {
		return nil, domain.NewNotFound("object_tag", id)
	}
	return cloneTag(record), nil
}

func (m *MemoryTagRepository) GetByOwner(_ context.Context, definitionID uuid.UUID, ownerType string, ownerID uuid.UUID) (*ObjectTag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.tags {
		if record.DefinitionID == definitionID && record.OwnerType == ownerType && record.OwnerID == ownerID {
			return cloneTag(record), nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "object_tag", Key: ownerKey(definitionID, ownerID)}
}

func (m *MemoryTagRepository) ListByOwner(_ context.Context, ownerType string, ownerID uuid.UUID) ([]*ObjectTag, error) {
	return m.filter(func(record *ObjectTag) bool {
		return record.OwnerType == ownerType && record.OwnerID == ownerID
	}), nil
}

func (m *MemoryTagRepository) ListByOwners(_ context.Context, definitionID uuid.UUID, ownerType string, ownerIDs []uuid.UUID) ([]*ObjectTag, error) {
	wanted := make(map[uuid.UUID]struct{}, len(ownerIDs))
	for _, id := range ownerIDs {
		wanted[id] = struct{}{}
	}
	return m.filter(func(record *ObjectTag) bool {
		if record.DefinitionID != definitionID || record.OwnerType != ownerType {
			return false
		}
		_, ok := wanted[record.OwnerID]
		return ok
	}), nil
}

func (m *MemoryTagRepository) Update(_ context.Context, record *ObjectTag) (*ObjectTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.tags[record.ID]
	if !ok {
		return nil, domain.NewNotFound("object_tag", record.ID)
	}
	if current.Version != record.Version {
		return nil, &domain.ConcurrencyConflictError{Resource: "object_tag", Key: record.ID.String(), Version: record.Version}
	}
	updated := cloneTag(current)
	updated.Value = record.Value.clone()
	updated.UpdatedBy = record.UpdatedBy
	updated.UpdatedAt = record.UpdatedAt
	updated.Version = current.Version + 1
	m.tags[record.ID] = updated
	return cloneTag(updated), nil
}

func (m *MemoryTagRepository) DeleteByOwner(_ context.Context, ownerType string, ownerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, record := range m.tags {
		if record.OwnerType == ownerType && record.OwnerID == ownerID {
			delete(m.tags, id)
		}
	}
	return nil
}

func (m *MemoryTagRepository) filter(match func(*ObjectTag) bool) []*ObjectTag {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*ObjectTag, 0)
	for _, record := range m.tags {
		if match(record) {
			out = append(out, cloneTag(record))
		}
	}
	sortTags(out)
	return out
}

func sortTags(records []*ObjectTag) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].OwnerID != records[j].OwnerID {
			return records[i].OwnerID.String() < records[j].OwnerID.String()
		}
		return records[i].DefinitionID.String() < records[j].DefinitionID.String()
	})
}

func ownerKey(definitionID, ownerID uuid.UUID) string {
	return definitionID.String() + "@" + ownerID.String()
}
