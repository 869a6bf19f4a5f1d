package variantscmd

import (
	"github.com/goliatone/go-cms-variants/internal/commands"
	"github.com/goliatone/go-cms-variants/internal/variants"
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeNotFound     = "VARIANTS_NOT_FOUND"
	TextCodeUnauthorized = "VARIANTS_UNAUTHORIZED"
	TextCodeConflict     = "VARIANTS_CONFLICT"
	TextCodeIntegrity    = "VARIANTS_INTEGRITY"
	TextCodeValidation   = "VARIANTS_VALIDATION"
)

// Classify maps engine failures onto go-errors categories. Internal failures
// are left to the command layer default.
func Classify(err error) commands.Classification {
	switch variants.ErrorCategory(err) {
	case variants.CategoryNotFound:
		return commands.Classification{Category: goerrors.CategoryNotFound, TextCode: TextCodeNotFound, Message: "variants: record not found"}
	case variants.CategoryAuthorization:
		return commands.Classification{Category: goerrors.CategoryAuthz, TextCode: TextCodeUnauthorized, Message: "variants: permission denied"}
	case variants.CategoryConflict:
		return commands.Classification{Category: goerrors.CategoryConflict, TextCode: TextCodeConflict, Message: "variants: concurrent modification"}
	case variants.CategoryIntegrity:
		return commands.Classification{Category: goerrors.CategoryInternal, TextCode: TextCodeIntegrity, Message: "variants: integrity violation"}
	case variants.CategoryValidation:
		return commands.Classification{Category: goerrors.CategoryValidation, TextCode: TextCodeValidation, Message: "variants: invalid request"}
	default:
		return commands.Classification{}
	}
}
