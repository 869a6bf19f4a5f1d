package variants

import (
	"errors"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/goliatone/go-cms-variants/internal/objecttags"
	"github.com/goliatone/go-cms-variants/internal/validation"
)

// Error categories reported in metrics and used by the command layer.
const (
	CategoryNotFound      = "not_found"
	CategoryAuthorization = "authorization"
	CategoryIntegrity     = "integrity"
	CategoryConflict      = "conflict"
	CategoryValidation    = "validation"
	CategoryInternal      = "internal"
)

var validationErrors = []error{
	ErrPageIDRequired,
	ErrFolderIDRequired,
	ErrAttributeRequired,
	ErrLanguageRequired,
	ErrNameInvalid,
	ErrDuplicateLanguage,
	ErrPageNotDeleted,
	ErrTargetTypeMismatch,
	ErrValueUnset,
	objecttags.ErrDefinitionExists,
	objecttags.ErrDuplicateInstance,
	objecttags.ErrKeywordRequired,
	objecttags.ErrTargetTypeInvalid,
	objecttags.ErrSyncScopeInvalid,
	validation.ErrSchemaInvalid,
	validation.ErrSchemaValidation,
	validation.ErrRemoteReference,
}

// ErrorCategory classifies err into one of the engine error categories.
func ErrorCategory(err error) string {
	switch {
	case err == nil:
		return ""
	case domain.IsNotFound(err):
		return CategoryNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return CategoryAuthorization
	case errors.Is(err, domain.ErrIntegrity):
		return CategoryIntegrity
	case domain.IsConflict(err):
		return CategoryConflict
	}
	var payloadErr *validation.PayloadValidationError
	if errors.As(err, &payloadErr) {
		return CategoryValidation
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return CategoryValidation
		}
	}
	return CategoryInternal
}
