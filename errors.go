package variants

import (
	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/goliatone/go-cms-variants/internal/objecttags"
	"github.com/goliatone/go-cms-variants/internal/variants"
)

var (
	ErrNotFound            = domain.ErrNotFound
	ErrUnauthorized        = domain.ErrUnauthorized
	ErrIntegrity           = domain.ErrIntegrity
	ErrConcurrencyConflict = domain.ErrConcurrencyConflict

	ErrPageIDRequired     = variants.ErrPageIDRequired
	ErrFolderIDRequired   = variants.ErrFolderIDRequired
	ErrAttributeRequired  = variants.ErrAttributeRequired
	ErrLanguageRequired   = variants.ErrLanguageRequired
	ErrNameInvalid        = variants.ErrNameInvalid
	ErrDuplicateLanguage  = variants.ErrDuplicateLanguage
	ErrPageNotDeleted     = variants.ErrPageNotDeleted
	ErrFolderCycle        = variants.ErrFolderCycle
	ErrTargetTypeMismatch = variants.ErrTargetTypeMismatch
	ErrValueUnset         = variants.ErrValueUnset

	ErrDefinitionExists  = objecttags.ErrDefinitionExists
	ErrDuplicateInstance = objecttags.ErrDuplicateInstance
	ErrSyncScopeInvalid  = objecttags.ErrSyncScopeInvalid
)

type (
	NotFoundError            = domain.NotFoundError
	AuthorizationError       = domain.AuthorizationError
	IntegrityError           = domain.IntegrityError
	ConcurrencyConflictError = domain.ConcurrencyConflictError
)

const (
	CategoryNotFound      = variants.CategoryNotFound
	CategoryAuthorization = variants.CategoryAuthorization
	CategoryIntegrity     = variants.CategoryIntegrity
	CategoryConflict      = variants.CategoryConflict
	CategoryValidation    = variants.CategoryValidation
	CategoryInternal      = variants.CategoryInternal
)

// ErrorCategory classifies an engine error for callers mapping failures onto
// transport status codes.
func ErrorCategory(err error) string {
	return variants.ErrorCategory(err)
}
