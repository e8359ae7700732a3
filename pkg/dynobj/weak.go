package dynobj

import "weak"

// WeakRef observes an object without holding a reference to it.
type WeakRef struct {
	p weak.Pointer[Object]
}

// MakeWeak returns a weak reference to o. A nil o yields a reference that
// always resolves to nil.
func MakeWeak(o *Object) WeakRef {
	if o == nil {
		return WeakRef{}
	}
	return WeakRef{p: weak.Make(o)}
}

// Get resolves the reference. While the object is still held by someone, Get
// takes a new reference on the caller's behalf, which the caller must
// Release. An object nobody holds, or one already torn down, resolves to nil.
func (w WeakRef) Get() *Object {
	o := w.p.Value()
	if o == nil || !o.tryRetain() {
		return nil
	}
	return o
}
