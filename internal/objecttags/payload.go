package objecttags

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
)

var nullLiteral = []byte("null")

// Payload is an attribute value stored as JSON. An unset payload (absent) is
// distinct from a payload holding an explicit JSON null.
type Payload struct {
	raw json.RawMessage
}

// NewPayload encodes value. A nil value becomes an explicit null.
func NewPayload(value any) (Payload, error) {
	if existing, ok := value.(Payload); ok {
		return existing.clone(), nil
	}
	if raw, ok := value.(json.RawMessage); ok {
		return ParsePayload(raw)
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return Payload{}, fmt.Errorf("objecttags: encode payload: %w", err)
	}
	return Payload{raw: encoded}, nil
}

// MustPayload is NewPayload for values known to be encodable.
func MustPayload(value any) Payload {
	payload, err := NewPayload(value)
	if err != nil {
		panic(err)
	}
	return payload
}

// NullPayload returns a payload holding an explicit JSON null.
func NullPayload() Payload {
	return Payload{raw: append(json.RawMessage(nil), nullLiteral...)}
}

// ParsePayload wraps raw JSON after checking it is well formed.
func ParsePayload(raw []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Payload{}, nil
	}
	if !json.Valid(trimmed) {
		return Payload{}, fmt.Errorf("objecttags: invalid json payload")
	}
	return Payload{raw: append(json.RawMessage(nil), trimmed...)}, nil
}

// IsSet reports whether a value, explicit null included, is stored.
func (p Payload) IsSet() bool {
	return p.raw != nil
}

// IsNull reports whether the payload holds an explicit null.
func (p Payload) IsNull() bool {
	return p.IsSet() && bytes.Equal(bytes.TrimSpace(p.raw), nullLiteral)
}

// Raw returns a copy of the encoded JSON, nil when unset.
func (p Payload) Raw() json.RawMessage {
	if p.raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), p.raw...)
}

// Decode returns the payload as generic JSON values (float64, bool, string,
// nil, []any, map[string]any).
func (p Payload) Decode() (any, error) {
	if !p.IsSet() {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(p.raw, &out); err != nil {
		return nil, fmt.Errorf("objecttags: decode payload: %w", err)
	}
	return out, nil
}

// Equal compares payloads structurally. Unset only equals unset, and an
// explicit null only equals another explicit null.
func (p Payload) Equal(other Payload) bool {
	if p.IsSet() != other.IsSet() {
		return false
	}
	if !p.IsSet() {
		return true
	}
	if bytes.Equal(p.raw, other.raw) {
		return true
	}
	left, err := p.Decode()
	if err != nil {
		return false
	}
	right, err := other.Decode()
	if err != nil {
		return false
	}
	return reflect.DeepEqual(left, right)
}

func (p Payload) String() string {
	if !p.IsSet() {
		return "<unset>"
	}
	return string(p.raw)
}

// Value implements driver.Valuer. Unset payloads are stored as SQL NULL.
func (p Payload) Value() (driver.Value, error) {
	if !p.IsSet() {
		return nil, nil
	}
	return string(p.raw), nil
}

// Scan implements sql.Scanner.
func (p *Payload) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		p.raw = nil
		return nil
	case []byte:
		parsed, err := ParsePayload(v)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	case string:
		parsed, err := ParsePayload([]byte(v))
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	default:
		parsed, err := NewPayload(v)
		if err != nil {
			return fmt.Errorf("objecttags: scan payload from %T: %w", src, err)
		}
		*p = parsed
		return nil
	}
}

func (p Payload) MarshalJSON() ([]byte, error) {
	if !p.IsSet() {
		return append([]byte(nil), nullLiteral...), nil
	}
	return p.Raw(), nil
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	parsed, err := ParsePayload(data)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Payload) clone() Payload {
	return Payload{raw: p.Raw()}
}
