package folders

import (
	"context"
	"fmt"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/goliatone/go-cms-variants/internal/visibility"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewFolderRepository builds the generic repository for folders.
func NewFolderRepository(db *bun.DB) repository.Repository[*Folder] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Folder]{
		NewRecord: func() *Folder { return &Folder{} },
		GetID: func(f *Folder) uuid.UUID {
			return f.ID
		},
		SetID: func(f *Folder, id uuid.UUID) {
			f.ID = id
		},
	})
}

// BunRepository implements Repository over the generic folder repository,
// running every call against the connection or transaction it is bound to.
type BunRepository struct {
	idb     bun.IDB
	folders repository.Repository[*Folder]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{idb: db, folders: NewFolderRepository(db)}
}

// WithTx returns a copy bound to tx.
func (r *BunRepository) WithTx(tx bun.IDB) *BunRepository {
	clone := *r
	clone.idb = tx
	return &clone
}

func (r *BunRepository) Create(ctx context.Context, record *Folder) (*Folder, error) {
	if record.Version <= 0 {
		record.Version = 1
	}
	created, err := r.folders.CreateTx(ctx, r.idb, record)
	if err != nil {
		return nil, fmt.Errorf("insert folder: %w", err)
	}
	return created, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID, scope visibility.Scope) (*Folder, error) {
	record, err := r.folders.GetByIDTx(ctx, r.idb, id.String(), visible(scope))
	if err != nil {
		return nil, domain.MapRepositoryError(err, "folder", id.String())
	}
	return record, nil
}

func (r *BunRepository) ListChildren(ctx context.Context, motherID uuid.UUID, scope visibility.Scope) ([]*Folder, error) {
	records, _, err := r.folders.ListTx(ctx, r.idb,
		repository.SelectBy("mother_id", "=", motherID.String()),
		visible(scope),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.name ASC").OrderExpr("?TableAlias.id ASC")
		}),
		repository.SelectPaginate(0, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	sortFolders(records)
	return records, nil
}

func (r *BunRepository) Update(ctx context.Context, record *Folder) (*Folder, error) {
	expected := record.Version
	updated := *record
	updated.Version = expected + 1

	result, err := r.idb.NewUpdate().
		Model(&updated).
		Column("mother_id", "name", "deleted_at", "deleted_by", "updated_by", "updated_at", "version").
		Where("?TableAlias.id = ?", record.ID).
		Where("?TableAlias.version = ?", expected).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update folder: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("folder update rows affected: %w", err)
	}
	if affected == 0 {
		if _, lookupErr := r.GetByID(ctx, record.ID, visibility.IncludeDeleted); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, &domain.ConcurrencyConflictError{Resource: "folder", Key: record.ID.String(), Version: expected}
	}
	return &updated, nil
}

func (r *BunRepository) Purge(ctx context.Context, id uuid.UUID) error {
	result, err := r.idb.NewDelete().
		Model((*Folder)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("folder delete rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NewNotFound("folder", id)
	}
	return nil
}

func visible(scope visibility.Scope) repository.SelectCriteria {
	return repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return visibility.Apply(q, scope)
	})
}
