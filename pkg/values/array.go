package values

import (
	"sync/atomic"
	"unsafe"
)

// ArrayObject is a counted, ordered list of values. It owns a reference to
// every element and gives them up when its own count drops to zero.
type ArrayObject struct {
	refs     atomic.Int32
	elements []Value
}

// NewArray returns an array value that nothing holds yet.
func NewArray(elems ...Value) Value {
	arr := &ArrayObject{elements: make([]Value, 0, len(elems))}
	for _, el := range elems {
		arr.elements = append(arr.elements, el.Retain())
	}
	return Value{typ: TypeArray, obj: unsafe.Pointer(arr)}
}

func (v Value) AsArray() *ArrayObject {
	if v.typ != TypeArray {
		panic("value is not an array")
	}
	return (*ArrayObject)(v.obj)
}

func (a *ArrayObject) Len() int { return len(a.elements) }

// Get returns element i, or Void when out of range.
func (a *ArrayObject) Get(i int) Value {
	if i < 0 || i >= len(a.elements) {
		return Void
	}
	return a.elements[i]
}

// Set replaces element i, growing the array with Void when i is past the end.
func (a *ArrayObject) Set(i int, v Value) {
	if i < 0 {
		return
	}
	for len(a.elements) <= i {
		a.elements = append(a.elements, Void)
	}
	old := a.elements[i]
	a.elements[i] = v.Retain()
	old.Release()
}

func (a *ArrayObject) Append(v Value) {
	a.elements = append(a.elements, v.Retain())
}

// Values returns a copy of the element slice.
func (a *ArrayObject) Values() []Value {
	out := make([]Value, len(a.elements))
	copy(out, a.elements)
	return out
}

func (a *ArrayObject) RefCount() int32 { return a.refs.Load() }

func (a *ArrayObject) retain() { a.refs.Add(1) }

func (a *ArrayObject) release() {
	for {
		n := a.refs.Load()
		if n <= 0 {
			panic("values: array release without a matching retain")
		}
		if a.refs.CompareAndSwap(n, n-1) {
			if n > 1 {
				return
			}
			break
		}
	}
	elems := a.elements
	a.elements = nil
	for _, el := range elems {
		el.Release()
	}
}

func (a *ArrayObject) clone() *ArrayObject {
	c := &ArrayObject{elements: make([]Value, len(a.elements))}
	for i, el := range a.elements {
		c.elements[i] = el.Clone().Retain()
	}
	return c
}
