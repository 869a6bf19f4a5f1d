package store

import (
	"context"
	"errors"

	"github.com/goliatone/go-cms-variants/internal/folders"
	"github.com/goliatone/go-cms-variants/internal/objecttags"
	"github.com/goliatone/go-cms-variants/internal/pages"
)

var (
	ErrNilCallback       = errors.New("store: unit of work callback required")
	ErrUnsupportedDriver = errors.New("store: unsupported driver")
)

// Tx exposes the repositories bound to one unit of work. Every read and write
// performed through a Tx observes the same snapshot and commits or rolls back
// together.
type Tx interface {
	Pages() pages.Repository
	Folders() folders.Repository
	Tags() objecttags.TagRepository
}

// Store runs units of work over the entity repositories.
type Store interface {
	// RunInTx executes fn in a read-write unit of work. A non-nil error
	// discards every change made through tx.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// View executes fn against committed state without write isolation.
	View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// Definitions returns the attribute definition repository. Definitions are
	// read before a unit of work starts and are not part of its snapshot.
	Definitions() objecttags.DefinitionRepository
}
