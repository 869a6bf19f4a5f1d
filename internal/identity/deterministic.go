package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-cms-variants"

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// DefinitionUUID derives the id of an attribute definition from its keyword.
func DefinitionUUID(keyword string) uuid.UUID {
	normalized := strings.ToLower(strings.TrimSpace(keyword))
	if normalized == "" {
		return uuid.Nil
	}
	return UUID(namespace + ":object_tag_definition:" + normalized)
}

// TagUUID derives the id of the attribute instance a definition attaches to an owner.
func TagUUID(definitionID uuid.UUID, ownerType string, ownerID uuid.UUID) uuid.UUID {
	return UUID(namespace + ":object_tag:" + definitionID.String() + ":" + strings.ToLower(strings.TrimSpace(ownerType)) + ":" + ownerID.String())
}
