// Package validation checks object tag payloads against the JSON schema
// attached to their definition.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
	ErrRemoteReference  = errors.New("schema references must be local")
)

const resourceName = "definition.json"

// Issue is one failed keyword, located by JSON pointer into the payload.
type Issue struct {
	Pointer string
	Message string
}

func (i Issue) String() string {
	pointer := "#" + strings.TrimPrefix(strings.TrimSpace(i.Pointer), "#")
	if i.Message == "" {
		return pointer
	}
	return pointer + ": " + i.Message
}

// PayloadValidationError reports a payload that does not satisfy its
// definition schema. It unwraps to ErrSchemaValidation.
type PayloadValidationError struct {
	Issues []Issue
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return ErrSchemaValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error { return ErrSchemaValidation }

// compiled schemas keyed by their canonical JSON encoding. Definitions are
// immutable once registered, so entries never go stale.
var compiled sync.Map

// ValidateSchema reports whether schema compiles and only uses "#" refs.
// An empty schema is valid and accepts every payload.
func ValidateSchema(schema map[string]any) error {
	_, err := compile(schema)
	return err
}

// ValidateValue checks a decoded payload (nil, bool, float64, string,
// []any or map[string]any) against schema.
func ValidateValue(schema map[string]any, value any) error {
	s, err := compile(schema)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaValidation, err)
	}
	if s == nil {
		return nil
	}
	if err := s.Validate(value); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &PayloadValidationError{Issues: leafIssues(verr, nil)}
		}
		return &PayloadValidationError{Issues: []Issue{{Message: err.Error()}}}
	}
	return nil
}

func compile(schema map[string]any) (*jsonschema.Schema, error) {
	if len(schema) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaInvalid, err)
	}
	key := string(encoded)
	if cached, ok := compiled.Load(key); ok {
		return cached.(*jsonschema.Schema), nil
	}
	if err := localRefsOnly(schema); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaInvalid, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(resourceName, bytes.NewReader(encoded)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	s, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	actual, _ := compiled.LoadOrStore(key, s)
	return actual.(*jsonschema.Schema), nil
}

func localRefsOnly(node any) error {
	switch typed := node.(type) {
	case map[string]any:
		for key, value := range typed {
			if ref, ok := value.(string); ok && key == "$ref" {
				if !strings.HasPrefix(strings.TrimSpace(ref), "#") {
					return fmt.Errorf("%w: %q", ErrRemoteReference, ref)
				}
				continue
			}
			if err := localRefsOnly(value); err != nil {
				return err
			}
		}
	case []any:
		for _, item := range typed {
			if err := localRefsOnly(item); err != nil {
				return err
			}
		}
	}
	return nil
}

func leafIssues(node *jsonschema.ValidationError, out []Issue) []Issue {
	if len(node.Causes) == 0 {
		return append(out, Issue{
			Pointer: node.InstanceLocation,
			Message: strings.TrimSpace(node.Message),
		})
	}
	for _, cause := range node.Causes {
		out = leafIssues(cause, out)
	}
	return out
}
