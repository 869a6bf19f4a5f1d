package store

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-cms-variants/internal/folders"
	"github.com/goliatone/go-cms-variants/internal/objecttags"
	"github.com/goliatone/go-cms-variants/internal/pages"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// BunStore runs units of work as database transactions.
type BunStore struct {
	db          *bun.DB
	pages       *pages.BunRepository
	folders     *folders.BunRepository
	definitions *objecttags.BunDefinitionRepository
	txOptions   *sql.TxOptions
}

// BunOption customises the bun store.
type BunOption func(*BunStore)

// WithDefinitionCache routes definition lookups through the repository cache.
func WithDefinitionCache(cacheService cache.CacheService, keySerializer cache.KeySerializer) BunOption {
	return func(s *BunStore) {
		s.definitions = objecttags.NewBunDefinitionRepositoryWithCache(s.db, cacheService, keySerializer)
	}
}

// WithTxOptions overrides the isolation settings used for units of work.
func WithTxOptions(opts *sql.TxOptions) BunOption {
	return func(s *BunStore) {
		s.txOptions = opts
	}
}

func NewBunStore(db *bun.DB, opts ...BunOption) *BunStore {
	s := &BunStore{
		db:          db,
		pages:       pages.NewBunRepository(db),
		folders:     folders.NewBunRepository(db),
		definitions: objecttags.NewBunDefinitionRepository(db),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// DB exposes the underlying connection.
func (s *BunStore) DB() *bun.DB {
	return s.db
}

func (s *BunStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if fn == nil {
		return ErrNilCallback
	}
	return s.db.RunInTx(ctx, s.txOptions, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, s.bind(tx))
	})
}

func (s *BunStore) View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if fn == nil {
		return ErrNilCallback
	}
	return fn(ctx, s.bind(s.db))
}

func (s *BunStore) Definitions() objecttags.DefinitionRepository {
	return s.definitions
}

type bunTx struct {
	pages   *pages.BunRepository
	folders *folders.BunRepository
	tags    *objecttags.BunTagRepository
}

func (s *BunStore) bind(db bun.IDB) *bunTx {
	return &bunTx{
		pages:   s.pages.WithTx(db),
		folders: s.folders.WithTx(db),
		tags:    objecttags.NewBunTagRepository(db),
	}
}

func (t *bunTx) Pages() pages.Repository {
	return t.pages
}

func (t *bunTx) Folders() folders.Repository {
	return t.folders
}

func (t *bunTx) Tags() objecttags.TagRepository {
	return t.tags
}
