package objecttags

import (
	"fmt"
	"strings"
)

// SyncScope is the set of synchronization groups a definition participates
// in. The zero value means the attribute is not synchronized.
type SyncScope uint8

const (
	// SyncContentset keeps the value equal across pages sharing a content body.
	SyncContentset SyncScope = 1 << iota
	// SyncVariants keeps the value equal across page variants in other folders.
	SyncVariants
)

const syncScopeMask = SyncContentset | SyncVariants

var syncScopeNames = []struct {
	flag SyncScope
	name string
}{
	{SyncContentset, "contentset"},
	{SyncVariants, "variants"},
}

// Has reports whether every flag in other is part of s.
func (s SyncScope) Has(other SyncScope) bool {
	return other != 0 && s&other == other
}

// Union widens s with other.
func (s SyncScope) Union(other SyncScope) SyncScope {
	return (s | other) & syncScopeMask
}

// Synchronized reports whether any group is selected.
func (s SyncScope) Synchronized() bool {
	return s&syncScopeMask != 0
}

// Valid reports whether s only carries known flags.
func (s SyncScope) Valid() bool {
	return s&^syncScopeMask == 0
}

func (s SyncScope) String() string {
	if !s.Synchronized() {
		return "none"
	}
	parts := make([]string, 0, len(syncScopeNames))
	for _, entry := range syncScopeNames {
		if s.Has(entry.flag) {
			parts = append(parts, entry.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseSyncScope resolves labels such as "contentset", "variants" or
// "contentset|variants". Empty input and "none" yield the zero scope.
func ParseSyncScope(value string) (SyncScope, error) {
	var scope SyncScope
	for _, raw := range strings.FieldsFunc(value, func(r rune) bool { return r == '|' || r == ',' }) {
		label := strings.ToLower(strings.TrimSpace(raw))
		if label == "" || label == "none" {
			continue
		}
		matched := false
		for _, entry := range syncScopeNames {
			if entry.name == label {
				scope = scope.Union(entry.flag)
				matched = true
				break
			}
		}
		if !matched {
			return 0, fmt.Errorf("objecttags: unknown sync scope %q", raw)
		}
	}
	return scope, nil
}
