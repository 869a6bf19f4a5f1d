package pages

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ContentBody is the shared identity of a language variant group. Every page
// pointing at the same body is a translation of the same logical content.
type ContentBody struct {
	bun.BaseModel `bun:"table:content_bodies,alias:cb"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	CreatedBy uuid.UUID `bun:"created_by,type:uuid" json:"created_by"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Page is a placed instance of a content body inside a folder.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID            uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	ContentBodyID uuid.UUID  `bun:"content_body_id,notnull,type:uuid" json:"content_body_id"`
	FolderID      uuid.UUID  `bun:"folder_id,notnull,type:uuid" json:"folder_id"`
	SourcePageID  *uuid.UUID `bun:"source_page_id,type:uuid" json:"source_page_id,omitempty"`
	Language      string     `bun:"language,notnull" json:"language"`
	Name          string     `bun:"name,notnull" json:"name"`
	Version       int        `bun:"version,notnull,default:1" json:"version"`
	DeletedAt     *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	DeletedBy     *uuid.UUID `bun:"deleted_by,type:uuid" json:"deleted_by,omitempty"`
	CreatedBy     uuid.UUID  `bun:"created_by,type:uuid" json:"created_by"`
	UpdatedBy     uuid.UUID  `bun:"updated_by,type:uuid" json:"updated_by"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// IsDeleted reports whether the page sits in the wastebin.
func (p *Page) IsDeleted() bool {
	return p != nil && p.DeletedAt != nil
}

// IsVariant reports whether the page was created as a page variant of another page.
func (p *Page) IsVariant() bool {
	return p != nil && p.SourcePageID != nil && *p.SourcePageID != uuid.Nil
}
