// Package propstore holds the named values of a dynamic object.
//
// A Store keeps its entries in insertion order. Overwriting a name keeps its
// position; removing it and setting it again appends it at the end. Lookups
// compare interned names by identity with a linear scan, which beats hashing
// for the handful of properties a typical object carries.
//
// The store owns one reference to every value it holds (see values.Value.Retain):
// Set retains the incoming value, and Set, Remove and Clear release whatever
// they displace.
package propstore

import (
	"iter"
	"slices"

	"github.com/nooga/dynvar/pkg/ident"
	"github.com/nooga/dynvar/pkg/values"
)

type entry struct {
	name  ident.Name
	value values.Value
}

// Store is an insertion-ordered map from interned names to values.
// The zero Store is empty and ready to use.
type Store struct {
	entries []entry
}

func New() *Store { return &Store{} }

func (s *Store) Len() int { return len(s.entries) }

// IndexOf returns the position of name, or -1.
func (s *Store) IndexOf(name ident.Name) int {
	for i := range s.entries {
		if s.entries[i].name == name {
			return i
		}
	}
	return -1
}

func (s *Store) Contains(name ident.Name) bool { return s.IndexOf(name) >= 0 }

// Get looks up name. It never inserts.
func (s *Store) Get(name ident.Name) (values.Value, bool) {
	if i := s.IndexOf(name); i >= 0 {
		return s.entries[i].value, true
	}
	return values.Void, false
}

// GetOr returns the value stored under name, or def.
func (s *Store) GetOr(name ident.Name, def values.Value) values.Value {
	if v, ok := s.Get(name); ok {
		return v
	}
	return def
}

// Pointer returns the slot holding name's value, or nil. The slot is valid
// until the next Set, Remove or Clear.
func (s *Store) Pointer(name ident.Name) *values.Value {
	if i := s.IndexOf(name); i >= 0 {
		return &s.entries[i].value
	}
	return nil
}

// NameAt returns the name at position i, or ident.Null when out of range.
func (s *Store) NameAt(i int) ident.Name {
	if i < 0 || i >= len(s.entries) {
		return ident.Null
	}
	return s.entries[i].name
}

// ValueAt returns the value at position i, or Void when out of range.
func (s *Store) ValueAt(i int) values.Value {
	if i < 0 || i >= len(s.entries) {
		return values.Void
	}
	return s.entries[i].value
}

// PointerAt returns the slot at position i, or nil when out of range.
func (s *Store) PointerAt(i int) *values.Value {
	if i < 0 || i >= len(s.entries) {
		return nil
	}
	return &s.entries[i].value
}

// Set inserts or overwrites name. It reports false, leaving the store as it
// was, when an equal value of the same type is already stored under name.
func (s *Store) Set(name ident.Name, v values.Value) bool {
	if i := s.IndexOf(name); i >= 0 {
		old := s.entries[i].value
		if old.EqualsWithSameType(v) {
			return false
		}
		s.entries[i].value = v.Retain()
		old.Release()
		return true
	}
	s.entries = append(s.entries, entry{name: name, value: v.Retain()})
	return true
}

// Remove deletes name and reports whether it was present.
func (s *Store) Remove(name ident.Name) bool {
	i := s.IndexOf(name)
	if i < 0 {
		return false
	}
	old := s.entries[i].value
	s.entries = slices.Delete(s.entries, i, i+1)
	old.Release()
	return true
}

// Clear removes every entry.
func (s *Store) Clear() {
	old := s.entries
	s.entries = nil
	for _, e := range old {
		e.value.Release()
	}
}

// Copy returns a store with the same entries. Values are shared, not cloned;
// the copy takes its own reference to each.
func (s *Store) Copy() *Store {
	c := &Store{entries: make([]entry, len(s.entries))}
	for i, e := range s.entries {
		c.entries[i] = entry{name: e.name, value: e.value.Retain()}
	}
	return c
}

// Names returns the names in iteration order.
func (s *Store) Names() []ident.Name {
	out := make([]ident.Name, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.name
	}
	return out
}

// All iterates entries in order.
func (s *Store) All() iter.Seq2[ident.Name, values.Value] {
	return func(yield func(ident.Name, values.Value) bool) {
		for _, e := range s.entries {
			if !yield(e.name, e.value) {
				return
			}
		}
	}
}
