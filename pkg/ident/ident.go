// Package ident provides interned property names.
//
// A Name is a handle to a canonical copy of its string, so two names made from
// equal strings compare equal with == without touching their characters.
package ident

import "unique"

// Name is an interned identifier. The zero Name is the null identifier.
type Name struct {
	h unique.Handle[string]
}

// Null is the unset identifier.
var Null Name

// New interns s. The empty string yields Null.
func New(s string) Name {
	if s == "" {
		return Null
	}
	return Name{h: unique.Make(s)}
}

// Names interns each string in order.
func Names(ss ...string) []Name {
	out := make([]Name, len(ss))
	for i, s := range ss {
		out[i] = New(s)
	}
	return out
}

func (n Name) String() string {
	if n == Null {
		return ""
	}
	return n.h.Value()
}

// IsValid reports whether n is a non-null identifier.
func (n Name) IsValid() bool { return n != Null }
