package dynobj

import (
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/nooga/dynvar/pkg/ident"
	"github.com/nooga/dynvar/pkg/jsonfmt"
	"github.com/nooga/dynvar/pkg/values"
)

// Guarded serializes access to an object shared between goroutines. Reads
// take a reader-biased lock; anything that can change the store, including
// method calls, takes the write lock.
//
// A Guarded holds one reference to its object until Close.
type Guarded struct {
	mu  *xsync.RBMutex
	obj *Object
}

func NewGuarded(o *Object) *Guarded {
	o.Retain()
	return &Guarded{mu: xsync.NewRBMutex(), obj: o}
}

// Close drops the guard's reference.
func (g *Guarded) Close() { g.obj.Release() }

// Read runs fn with shared access. fn must not mutate the object.
func (g *Guarded) Read(fn func(o *Object)) {
	t := g.mu.RLock()
	defer g.mu.RUnlock(t)
	fn(g.obj)
}

// Update runs fn with exclusive access.
func (g *Guarded) Update(fn func(o *Object)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.obj)
}

func (g *Guarded) HasProperty(name ident.Name) (ok bool) {
	g.Read(func(o *Object) { ok = o.HasProperty(name) })
	return
}

func (g *Guarded) HasMethod(name ident.Name) (ok bool) {
	g.Read(func(o *Object) { ok = o.HasMethod(name) })
	return
}

// GetProperty returns the value under name with a reference taken, so that
// objects and arrays stay alive after the lock is dropped. Release it when done.
func (g *Guarded) GetProperty(name ident.Name) (v values.Value) {
	g.Read(func(o *Object) { v = o.GetProperty(name).Retain() })
	return
}

func (g *Guarded) SetProperty(name ident.Name, v values.Value) {
	g.Update(func(o *Object) { o.SetProperty(name, v) })
}

func (g *Guarded) RemoveProperty(name ident.Name) {
	g.Update(func(o *Object) { o.RemoveProperty(name) })
}

func (g *Guarded) SetMethod(name ident.Name, fn values.NativeFunction) {
	g.Update(func(o *Object) { o.SetMethod(name, fn) })
}

// Call invokes name under the write lock. The method must not call back
// into the guard.
func (g *Guarded) Call(name ident.Name, arguments ...values.Value) (v values.Value) {
	g.Update(func(o *Object) { v = o.Call(name, arguments...) })
	return
}

func (g *Guarded) Clear() {
	g.Update(func(o *Object) { o.Clear() })
}

// Snapshot returns a deep copy owned by the caller.
func (g *Guarded) Snapshot() (c *Object) {
	g.Read(func(o *Object) { c = o.Clone() })
	return
}

func (g *Guarded) WriteAsJSON(out *jsonfmt.Sink, indentLevel int, allOnOneLine bool) (err error) {
	g.Read(func(o *Object) { err = o.WriteAsJSON(out, indentLevel, allOnOneLine) })
	return
}
