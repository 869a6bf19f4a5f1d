package objecttags

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Definition declares an attribute that can be attached to entities of
// TargetType. Sync selects the groups across which values are kept equal.
type Definition struct {
	bun.BaseModel `bun:"table:object_tag_definitions,alias:otd"`

	ID         uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Keyword    string         `bun:"keyword,notnull,unique" json:"keyword"`
	TargetType string         `bun:"target_type,notnull" json:"target_type"`
	Sync       SyncScope      `bun:"sync,notnull,default:0" json:"sync"`
	Schema     map[string]any `bun:"schema,type:jsonb" json:"schema,omitempty"`
	CreatedAt  time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Synchronized reports whether instances of the definition propagate writes.
func (d *Definition) Synchronized() bool {
	return d != nil && d.Sync.Synchronized()
}

// ObjectTag is one attribute instance attached to one owner.
type ObjectTag struct {
	bun.BaseModel `bun:"table:object_tags,alias:ot"`

	ID           uuid.UUID `bun:",pk,type:uuid" json:"id"`
	DefinitionID uuid.UUID `bun:"definition_id,notnull,type:uuid" json:"definition_id"`
	OwnerType    string    `bun:"owner_type,notnull" json:"owner_type"`
	OwnerID      uuid.UUID `bun:"owner_id,notnull,type:uuid" json:"owner_id"`
	Value        Payload   `bun:"value,type:text" json:"value"`
	Version      int       `bun:"version,notnull,default:1" json:"version"`
	UpdatedBy    uuid.UUID `bun:"updated_by,type:uuid" json:"updated_by"`
	CreatedAt    time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

func cloneDefinition(src *Definition) *Definition {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Schema = cloneMap(src.Schema)
	return &copied
}

func cloneTag(src *ObjectTag) *ObjectTag {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Value = src.Value.clone()
	return &copied
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		switch typed := value.(type) {
		case map[string]any:
			out[key] = cloneMap(typed)
		case []any:
			items := make([]any, len(typed))
			for i, item := range typed {
				if nested, ok := item.(map[string]any); ok {
					items[i] = cloneMap(nested)
					continue
				}
				items[i] = item
			}
			out[key] = items
		default:
			out[key] = value
		}
	}
	return out
}
