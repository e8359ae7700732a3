package values

import "unsafe"

// Object is the payload of an object value. Implementations are reference
// counted: containers holding an object value own one reference each.
type Object interface {
	Retain()
	Release()
	RefCount() int32
	// CloneObject returns an independent copy that nothing holds yet.
	CloneObject() Object
}

type objectRef struct {
	o Object
}

// FromObject makes a value referring to o without taking a reference.
// A nil o yields Void.
func FromObject(o Object) Value {
	if o == nil {
		return Void
	}
	return Value{typ: TypeObject, obj: unsafe.Pointer(&objectRef{o: o})}
}

func (v Value) AsObject() Object {
	if v.typ != TypeObject {
		panic("value is not an object")
	}
	return (*objectRef)(v.obj).o
}

// ObjectOrNil returns the object payload, or nil for every other variant.
func (v Value) ObjectOrNil() Object {
	if v.typ != TypeObject {
		return nil
	}
	return (*objectRef)(v.obj).o
}
