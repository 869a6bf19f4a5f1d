package store

import (
	"context"
	"sync"

	"github.com/goliatone/go-cms-variants/internal/folders"
	"github.com/goliatone/go-cms-variants/internal/objecttags"
	"github.com/goliatone/go-cms-variants/internal/pages"
)

// MemoryStore keeps all entities in process memory. Units of work run
// serially against a cloned snapshot that replaces the committed state only
// when the callback succeeds.
type MemoryStore struct {
	mu          sync.RWMutex
	pages       *pages.MemoryRepository
	folders     *folders.MemoryRepository
	tags        *objecttags.MemoryTagRepository
	definitions *objecttags.MemoryDefinitionRepository
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pages:       pages.NewMemoryRepository(),
		folders:     folders.NewMemoryRepository(),
		tags:        objecttags.NewMemoryTagRepository(),
		definitions: objecttags.NewMemoryDefinitionRepository(),
	}
}

// RunInTx is not reentrant; fn must not start another unit of work on the
// same store.
func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if fn == nil {
		return ErrNilCallback
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := &memoryTx{
		pages:   s.pages.Clone(),
		folders: s.folders.Clone(),
		tags:    s.tags.Clone(),
	}
	if err := fn(ctx, snapshot); err != nil {
		return err
	}
	s.pages = snapshot.pages
	s.folders = snapshot.folders
	s.tags = snapshot.tags
	return nil
}

func (s *MemoryStore) View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if fn == nil {
		return ErrNilCallback
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(ctx, &memoryTx{pages: s.pages, folders: s.folders, tags: s.tags})
}

func (s *MemoryStore) Definitions() objecttags.DefinitionRepository {
	return s.definitions
}

type memoryTx struct {
	pages   *pages.MemoryRepository
	folders *folders.MemoryRepository
	tags    *objecttags.MemoryTagRepository
}

func (t *memoryTx) Pages() pages.Repository {
	return t.pages
}

func (t *memoryTx) Folders() folders.Repository {
	return t.folders
}

func (t *memoryTx) Tags() objecttags.TagRepository {
	return t.tags
}
