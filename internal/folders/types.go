package folders

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Folder is a container of pages. Folders nest through MotherID.
type Folder struct {
	bun.BaseModel `bun:"table:folders,alias:f"`

	ID        uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	MotherID  *uuid.UUID `bun:"mother_id,type:uuid" json:"mother_id,omitempty"`
	Name      string     `bun:"name,notnull" json:"name"`
	Version   int        `bun:"version,notnull,default:1" json:"version"`
	DeletedAt *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	DeletedBy *uuid.UUID `bun:"deleted_by,type:uuid" json:"deleted_by,omitempty"`
	CreatedBy uuid.UUID  `bun:"created_by,type:uuid" json:"created_by"`
	CreatedAt time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedBy uuid.UUID  `bun:"updated_by,type:uuid" json:"updated_by"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// IsDeleted reports whether the folder sits in the wastebin.
func (f *Folder) IsDeleted() bool {
	return f != nil && f.DeletedAt != nil
}

// IsRoot reports whether the folder has no mother.
func (f *Folder) IsRoot() bool {
	return f != nil && (f.MotherID == nil || *f.MotherID == uuid.Nil)
}
