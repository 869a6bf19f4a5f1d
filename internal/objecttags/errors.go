package objecttags

import "errors"

var (
	ErrDefinitionExists  = errors.New("objecttags: definition keyword already registered")
	ErrDuplicateInstance = errors.New("objecttags: owner already holds an instance of the definition")
	ErrKeywordRequired   = errors.New("objecttags: keyword required")
	ErrTargetTypeInvalid = errors.New("objecttags: target type invalid")
	ErrSyncScopeInvalid  = errors.New("objecttags: sync scope invalid")
)
