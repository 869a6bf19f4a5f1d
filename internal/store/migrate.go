package store

import (
	"context"
	"fmt"

	"github.com/goliatone/go-cms-variants/internal/folders"
	"github.com/goliatone/go-cms-variants/internal/objecttags"
	"github.com/goliatone/go-cms-variants/internal/pages"
	"github.com/uptrace/bun"
)

type indexSpec struct {
	model   any
	name    string
	columns []string
	unique  bool
}

var models = []any{
	(*folders.Folder)(nil),
	(*pages.ContentBody)(nil),
	(*pages.Page)(nil),
	(*objecttags.Definition)(nil),
	(*objecttags.ObjectTag)(nil),
}

var indexes = []indexSpec{
	{model: (*folders.Folder)(nil), name: "idx_folders_mother", columns: []string{"mother_id"}},
	{model: (*pages.Page)(nil), name: "idx_pages_content_body", columns: []string{"content_body_id"}},
	{model: (*pages.Page)(nil), name: "idx_pages_folder", columns: []string{"folder_id"}},
	{model: (*pages.Page)(nil), name: "idx_pages_source", columns: []string{"source_page_id"}},
	{model: (*objecttags.ObjectTag)(nil), name: "idx_object_tags_owner", columns: []string{"definition_id", "owner_type", "owner_id"}, unique: true},
}

// Migrate creates the tables and indexes used by the engine. It is safe to
// run repeatedly.
func Migrate(ctx context.Context, db bun.IDB) error {
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("store: create table %T: %w", model, err)
		}
	}
	for _, spec := range indexes {
		q := db.NewCreateIndex().
			Model(spec.model).
			Index(spec.name).
			Column(spec.columns...).
			IfNotExists()
		if spec.unique {
			q = q.Unique()
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("store: create index %s: %w", spec.name, err)
		}
	}
	return nil
}
