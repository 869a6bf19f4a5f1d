package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound            = errors.New("variants: record not found")
	ErrUnauthorized        = errors.New("variants: permission denied")
	ErrIntegrity           = errors.New("variants: integrity violation")
	ErrConcurrencyConflict = errors.New("variants: concurrent modification")
)

// NotFoundError reports a record that does not exist under the active
// visibility scope.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ErrNotFound.Error()
	}
	if strings.TrimSpace(e.Key) == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFound is a shorthand for id keyed lookups.
func NewNotFound(resource string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: id.String()}
}

// AuthorizationError reports a failed permission check.
type AuthorizationError struct {
	ObjectType string
	ObjectID   uuid.UUID
	Permission string
}

func (e *AuthorizationError) Error() string {
	if e == nil {
		return ErrUnauthorized.Error()
	}
	return fmt.Sprintf("%s: %s on %s %s", ErrUnauthorized.Error(), e.Permission, e.ObjectType, e.ObjectID)
}

func (e *AuthorizationError) Unwrap() error {
	return ErrUnauthorized
}

// IntegrityError signals a broken structural invariant, such as an attribute
// instance pointing at a definition or owner that does not exist.
type IntegrityError struct {
	Resource string
	Key      string
	Message  string
}

func (e *IntegrityError) Error() string {
	if e == nil {
		return ErrIntegrity.Error()
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "invariant violated"
	}
	if e.Key == "" {
		return fmt.Sprintf("%s: %s: %s", ErrIntegrity.Error(), e.Resource, msg)
	}
	return fmt.Sprintf("%s: %s %s: %s", ErrIntegrity.Error(), e.Resource, e.Key, msg)
}

func (e *IntegrityError) Unwrap() error {
	return ErrIntegrity
}

// ConcurrencyConflictError reports a versioned write that lost a race.
type ConcurrencyConflictError struct {
	Resource string
	Key      string
	Version  int
}

func (e *ConcurrencyConflictError) Error() string {
	if e == nil {
		return ErrConcurrencyConflict.Error()
	}
	return fmt.Sprintf("%s: %s %s at version %d", ErrConcurrencyConflict.Error(), e.Resource, e.Key, e.Version)
}

func (e *ConcurrencyConflictError) Unwrap() error {
	return ErrConcurrencyConflict
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err carries a ConcurrencyConflictError.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}
