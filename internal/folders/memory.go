package folders

import (
	"context"
	"sort"
	"sync"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/goliatone/go-cms-variants/internal/visibility"
	"github.com/google/uuid"
)

// MemoryRepository keeps folders in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	folders map[uuid.UUID]*Folder
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{folders: make(map[uuid.UUID]*Folder)}
}

// Clone returns a deep copy used as a transaction snapshot.
func (m *MemoryRepository) Clone() *MemoryRepository {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := NewMemoryRepository()
	for id, folder := range m.folders {
		out.folders[id] = cloneFolder(folder)
	}
	return out
}

func (m *MemoryRepository) Create(_ context.Context, record *Folder) (*Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := cloneFolder(record)
	if copied.Version <= 0 {
		copied.Version = 1
	}
	m.folders[copied.ID] = copied
	return cloneFolder(copied), nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID, scope visibility.Scope) (*Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	folder, ok := m.folders[id]
	if !ok || !scope.Admits(folder.DeletedAt) {
		return nil, domain.NewNotFound("folder", id)
	}
	return cloneFolder(folder), nil
}

func (m *MemoryRepository) ListChildren(_ context.Context, motherID uuid.UUID, scope visibility.Scope) ([]*Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Folder, 0)
	for _, folder := range m.folders {
		if folder.MotherID == nil || *folder.MotherID != motherID {
			continue
		}
		if !scope.Admits(folder.DeletedAt) {
			continue
		}
		out = append(out, cloneFolder(folder))
	}
	sortFolders(out)
	return out, nil
}

func (m *MemoryRepository) Update(_ context.Context, record *Folder) (*Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.folders[record.ID]
	if !ok {
		return nil, domain.NewNotFound("folder", record.ID)
	}
	if current.Version != record.Version {
		return nil, &domain.ConcurrencyConflictError{Resource: "folder", Key: record.ID.String(), Version: record.Version}
	}
	updated := cloneFolder(record)
	updated.CreatedAt = current.CreatedAt
	updated.CreatedBy = current.CreatedBy
	updated.Version = current.Version + 1
	m.folders[record.ID] = updated
	return cloneFolder(updated), nil
}

func (m *MemoryRepository) Purge(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.folders[id]; !ok {
		return domain.NewNotFound("folder", id)
	}
	delete(m.folders, id)
	return nil
}

func sortFolders(records []*Folder) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		return records[i].ID.String() < records[j].ID.String()
	})
}

func cloneFolder(src *Folder) *Folder {
	if src == nil {
		return nil
	}
	copied := *src
	if src.MotherID != nil {
		mother := *src.MotherID
		copied.MotherID = &mother
	}
	if src.DeletedAt != nil {
		deletedAt := *src.DeletedAt
		copied.DeletedAt = &deletedAt
	}
	if src.DeletedBy != nil {
		deletedBy := *src.DeletedBy
		copied.DeletedBy = &deletedBy
	}
	return &copied
}
