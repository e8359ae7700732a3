// Package dynobj implements dynamic objects: reference-counted bags of named
// values whose keys are decided at run time.
//
// Properties and methods share one ordered store. A name is a method when the
// value stored under it is callable, which is why HasProperty skips callable
// entries while GetProperty returns whatever is there.
//
// # Ownership
//
// An Object starts with no holders (RefCount 0). Each holder takes a reference
// with Retain and gives it back with Release; stores and arrays do this for
// the values they contain. When the last reference is released the object
// tears down at once: it releases every value it holds and empties itself.
// An object that is never retained is simply left to the garbage collector.
// Using an object after its last Release is a programming error.
//
// Objects are not safe for concurrent mutation. Serialize access externally
// or wrap the object in a Guarded.
package dynobj

import (
	"strings"
	"sync/atomic"

	"github.com/nooga/dynvar/pkg/ident"
	"github.com/nooga/dynvar/pkg/jsonfmt"
	"github.com/nooga/dynvar/pkg/log"
	"github.com/nooga/dynvar/pkg/propstore"
	"github.com/nooga/dynvar/pkg/values"
)

// Object is a dynamic object.
type Object struct {
	refs       atomic.Int32
	released   atomic.Bool
	properties propstore.Store
}

// New returns an empty, floating object: RefCount is 0 until the first
// holder, a caller's Retain or a container it is stored in, takes a
// reference. A floating object stored in a container is torn down when the
// container lets go of it, so Retain first to keep a handle of your own.
func New() *Object { return &Object{} }

// NewCopy returns a floating object holding the same entries as other. Values
// are shared, not cloned: arrays and objects they point at are aliased.
func NewCopy(other *Object) *Object {
	o := &Object{}
	o.properties = *other.properties.Copy()
	return o
}

// Retain takes a reference. It panics on an object that has been torn down.
func (o *Object) Retain() {
	if o.released.Load() {
		panic("dynobj: retain of a released object")
	}
	o.refs.Add(1)
}

// tryRetain takes a reference only while someone else still holds one.
func (o *Object) tryRetain() bool {
	for {
		n := o.refs.Load()
		if n <= 0 || o.released.Load() {
			return false
		}
		if o.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release gives back a reference, tearing the object down when it was the last.
// A release without a matching retain panics and leaves the count as it was.
func (o *Object) Release() {
	for {
		n := o.refs.Load()
		if n <= 0 {
			panic("dynobj: release without a matching retain")
		}
		if o.refs.CompareAndSwap(n, n-1) {
			if n > 1 {
				return
			}
			break
		}
	}
	o.released.Store(true)
	log.T.F("releasing object with %d entries", o.properties.Len())
	o.properties.Clear()
}

func (o *Object) RefCount() int32 { return o.refs.Load() }

// Released reports whether the object has been torn down.
func (o *Object) Released() bool { return o.released.Load() }

// Properties exposes the underlying store.
func (o *Object) Properties() *propstore.Store { return &o.properties }

// HasProperty reports whether name holds a value that is not a method.
func (o *Object) HasProperty(name ident.Name) bool {
	v := o.properties.Pointer(name)
	return v != nil && !v.IsMethod()
}

// GetProperty returns the value under name, or Void. It never inserts. The
// value is borrowed: Retain it to keep an object or array past this object's
// next mutation.
func (o *Object) GetProperty(name ident.Name) values.Value {
	v, _ := o.properties.Get(name)
	return v
}

// SetProperty inserts or overwrites name. An overwritten name keeps its position.
func (o *Object) SetProperty(name ident.Name, v values.Value) {
	o.properties.Set(name, v)
}

// RemoveProperty deletes name if present.
func (o *Object) RemoveProperty(name ident.Name) {
	o.properties.Remove(name)
}

// HasMethod reports whether name holds a callable value.
func (o *Object) HasMethod(name ident.Name) bool {
	return o.GetProperty(name).IsMethod()
}

// InvokeMethod calls the method stored under name with args and returns its
// result. A missing name or a non-callable value yields Void and nothing else.
func (o *Object) InvokeMethod(name ident.Name, args values.Args) values.Value {
	if fn := o.GetProperty(name).NativeFunction(); fn != nil {
		return fn(args)
	}
	log.T.F("no method %q to invoke", name)
	return values.Void
}

// Call invokes name with o as the receiver.
func (o *Object) Call(name ident.Name, arguments ...values.Value) values.Value {
	return o.InvokeMethod(name, values.NewArgs(o, arguments...))
}

// SetMethod stores fn as a method under name. A nil fn stores Void.
func (o *Object) SetMethod(name ident.Name, fn values.NativeFunction) {
	o.properties.Set(name, values.NamedMethod(name.String(), fn))
}

// Clear removes every property and method.
func (o *Object) Clear() {
	o.properties.Clear()
}

// CloneAllProperties replaces every value with its Clone, so this object no
// longer shares arrays, binary data or objects with anyone.
func (o *Object) CloneAllProperties() {
	for i := o.properties.Len() - 1; i >= 0; i-- {
		if p := o.properties.PointerAt(i); p != nil {
			old := *p
			*p = old.Clone().Retain()
			old.Release()
		}
	}
}

// Clone returns a deep copy holding one reference, owned by the caller.
func (o *Object) Clone() *Object {
	d := o.cloneUnowned()
	d.Retain()
	return d
}

// CloneObject is Clone for values.Value: the copy has no holders yet.
func (o *Object) CloneObject() values.Object {
	return o.cloneUnowned()
}

func (o *Object) cloneUnowned() *Object {
	d := NewCopy(o)
	d.CloneAllProperties()
	log.T.F("cloned object with %d entries", d.properties.Len())
	return d
}

// WriteAsJSON writes the entries as a JSON object, methods included; the
// value formatter decides how each value reads. Pretty output has one member
// per line at indentLevel plus one indent step, and the closing brace at
// indentLevel. An empty object is always written as {}.
func (o *Object) WriteAsJSON(out *jsonfmt.Sink, indentLevel int, allOnOneLine bool) error {
	out.WriteByte('{')
	if n := o.properties.Len(); n > 0 {
		if !allOnOneLine {
			out.NewLine()
		}
		for i := 0; i < n; i++ {
			if !allOnOneLine {
				out.WriteSpaces(indentLevel + out.IndentSize())
			}
			out.WriteByte('"')
			out.WriteEscaped(o.properties.NameAt(i).String())
			out.WriteString(`": `)
			if err := jsonfmt.Write(out, o.properties.ValueAt(i), indentLevel+out.IndentSize(), allOnOneLine); err != nil {
				return err
			}
			if i < n-1 {
				if allOnOneLine {
					out.WriteString(", ")
				} else {
					out.WriteByte(',')
					out.NewLine()
				}
			} else if !allOnOneLine {
				out.NewLine()
			}
		}
		if !allOnOneLine {
			out.WriteSpaces(indentLevel)
		}
	}
	out.WriteByte('}')
	return out.Err()
}

// ToJSON renders the object with default formatting options.
func (o *Object) ToJSON(allOnOneLine bool) string {
	return jsonfmt.ToString(values.FromObject(o), allOnOneLine)
}

// Inspect returns a developer-friendly representation, similar to a REPL.
func (o *Object) Inspect() string {
	var b strings.Builder
	b.WriteString("{")
	for i := 0; i < o.properties.Len(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(o.properties.NameAt(i).String())
		b.WriteString(": ")
		b.WriteString(o.properties.ValueAt(i).Inspect())
	}
	b.WriteString("}")
	return b.String()
}
