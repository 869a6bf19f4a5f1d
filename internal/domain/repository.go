package domain

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// MapRepositoryError turns a missing-record failure reported by
// go-repository-bun or database/sql into a NotFoundError for resource.
// Other failures are wrapped with the resource name.
func MapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{
			Resource: resource,
			Key:      strings.TrimSpace(key),
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
