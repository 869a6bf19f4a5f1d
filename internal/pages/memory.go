package pages

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/goliatone/go-cms-variants/internal/visibility"
	"github.com/google/uuid"
)

// MemoryRepository is an in-memory page store for scaffolding/tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	pages  map[uuid.UUID]*Page
	bodies map[uuid.UUID]*ContentBody
}

// NewMemoryRepository constructs the repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		pages:  make(map[uuid.UUID]*Page),
		bodies: make(map[uuid.UUID]*ContentBody),
	}
}

// Clone returns a deep copy used as a transaction snapshot.
func (m *MemoryRepository) Clone() *MemoryRepository {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := NewMemoryRepository()
	for id, page := range m.pages {
		out.pages[id] = clonePage(page)
	}
	for id, body := range m.bodies {
		copied := *body
		out.bodies[id] = &copied
	}
	return out
}

// Create inserts the supplied page.
func (m *MemoryRepository) Create(_ context.Context, record *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := clonePage(record)
	if copied.Version <= 0 {
		copied.Version = 1
	}
	m.pages[copied.ID] = copied
	return clonePage(copied), nil
}

// GetByID retrieves a page visible under scope.
func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID, scope visibility.Scope) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	page, ok := m.pages[id]
	if !ok || !scope.Admits(page.DeletedAt) {
		return nil, domain.NewNotFound("page", id)
	}
	return clonePage(page), nil
}

// ListByContentBody returns the language variants sharing bodyID.
func (m *MemoryRepository) ListByContentBody(_ context.Context, bodyID uuid.UUID, scope visibility.Scope) ([]*Page, error) {
	return m.filter(scope, func(p *Page) bool { return p.ContentBodyID == bodyID }), nil
}

// ListByFolder returns pages placed directly inside folderID.
func (m *MemoryRepository) ListByFolder(_ context.Context, folderID uuid.UUID, scope visibility.Scope) ([]*Page, error) {
	return m.filter(scope, func(p *Page) bool { return p.FolderID == folderID }), nil
}

// ListBySource returns the page variants that name sourceID as content origin.
func (m *MemoryRepository) ListBySource(_ context.Context, sourceID uuid.UUID, scope visibility.Scope) ([]*Page, error) {
	return m.filter(scope, func(p *Page) bool {
		return p.SourcePageID != nil && *p.SourcePageID == sourceID
	}), nil
}

// Update persists mutable page fields guarded by the version column.
func (m *MemoryRepository) Update(_ context.Context, record *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.pages[record.ID]
	if !ok {
		return nil, domain.NewNotFound("page", record.ID)
	}
	if current.Version != record.Version {
		return nil, &domain.ConcurrencyConflictError{Resource: "page", Key: record.ID.String(), Version: record.Version}
	}

	updated := clonePage(current)
	updated.FolderID = record.FolderID
	updated.SourcePageID = cloneUUIDPointer(record.SourcePageID)
	updated.Language = record.Language
	updated.Name = record.Name
	updated.DeletedAt = cloneTimePointer(record.DeletedAt)
	updated.DeletedBy = cloneUUIDPointer(record.DeletedBy)
	updated.UpdatedBy = record.UpdatedBy
	updated.UpdatedAt = record.UpdatedAt
	updated.Version = current.Version + 1

	m.pages[record.ID] = updated
	return clonePage(updated), nil
}

// Purge hard-removes the page.
func (m *MemoryRepository) Purge(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pages[id]; !ok {
		return domain.NewNotFound("page", id)
	}
	delete(m.pages, id)
	return nil
}

// CreateContentBody inserts a content body.
func (m *MemoryRepository) CreateContentBody(_ context.Context, record *ContentBody) (*ContentBody, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.bodies[copied.ID] = &copied
	out := copied
	return &out, nil
}

// GetContentBody retrieves a content body.
func (m *MemoryRepository) GetContentBody(_ context.Context, id uuid.UUID) (*ContentBody, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	body, ok := m.bodies[id]
	if !ok {
		return nil, domain.NewNotFound("content_body", id)
	}
	out := *body
	return &out, nil
}

// PurgeContentBody removes a content body.
func (m *MemoryRepository) PurgeContentBody(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bodies[id]; !ok {
		return domain.NewNotFound("content_body", id)
	}
	delete(m.bodies, id)
	return nil
}

func (m *MemoryRepository) filter(scope visibility.Scope, match func(*Page) bool) []*Page {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Page, 0)
	for _, page := range m.pages {
		if page == nil || !match(page) || !scope.Admits(page.DeletedAt) {
			continue
		}
		out = append(out, clonePage(page))
	}
	SortPages(out)
	return out
}

// SortPages orders pages by language, creation time and id so variant groups
// have a stable order regardless of the backing store.
func SortPages(records []*Page) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Language != b.Language {
			return a.Language < b.Language
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

func clonePage(src *Page) *Page {
	if src == nil {
		return nil
	}
	copied := *src
	copied.SourcePageID = cloneUUIDPointer(src.SourcePageID)
	copied.DeletedAt = cloneTimePointer(src.DeletedAt)
	copied.DeletedBy = cloneUUIDPointer(src.DeletedBy)
	return &copied
}

func cloneTimePointer(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func cloneUUIDPointer(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
