package values

import "unsafe"

// Retain adds a reference to the object or array v points at and returns v.
// Other variants are returned untouched.
func (v Value) Retain() Value {
	switch v.typ {
	case TypeObject:
		v.AsObject().Retain()
	case TypeArray:
		v.AsArray().retain()
	}
	return v
}

// Release drops a reference taken with Retain.
func (v Value) Release() {
	switch v.typ {
	case TypeObject:
		v.AsObject().Release()
	case TypeArray:
		v.AsArray().release()
	}
}

// Clone returns a value with independent ownership of any mutable contents.
// Scalars, strings and methods are returned as is; binary data is copied;
// arrays are rebuilt from cloned elements; objects are copied by their own
// CloneObject. Cloned arrays and objects are not held by anything yet.
func (v Value) Clone() Value {
	switch v.typ {
	case TypeBinary:
		data := v.AsBinary()
		cp := make([]byte, len(data))
		copy(cp, data)
		return Binary(cp)
	case TypeArray:
		return Value{typ: TypeArray, obj: unsafe.Pointer(v.AsArray().clone())}
	case TypeObject:
		return FromObject(v.AsObject().CloneObject())
	default:
		return v
	}
}
