package permission

import (
	"encoding/json"
	"sort"
)

// Set is an immutable-by-convention set of permission names. The zero value
// is an empty set; Has on it always returns false.
type Set struct {
	names map[string]struct{}
}

// NewSet describes the newset operation and its observable behavior.
//
// NewSet does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewSet(names ...string) Set {
	s := Set{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n == "" {
			continue
		}
		s.names[n] = struct{}{}
	}
	return s
}

// Has reports whether the named permission is in the set.
func (s Set) Has(name string) bool {
	if s.names == nil {
		return false
	}
	_, ok := s.names[name]
	return ok
}

// Len describes the len operation and its observable behavior.
//
// Len does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s Set) Len() int {
	return len(s.names)
}

// List returns the permission names in sorted order.
func (s Set) List() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted JSON string array, keeping the
// persisted user snapshot deterministic.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

// UnmarshalJSON describes the unmarshaljson operation and its observable behavior.
//
// UnmarshalJSON may return an error when input validation, dependency calls, or security checks fail.
func (s *Set) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewSet(names...)
	return nil
}
