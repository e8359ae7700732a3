package dynobj

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/nooga/dynvar/pkg/ident"
	"github.com/nooga/dynvar/pkg/jsonfmt"
	"github.com/nooga/dynvar/pkg/values"
)

func TestWeakRef(t *testing.T) {
	o := New()
	o.Retain()
	w := MakeWeak(o)

	got := w.Get()
	require.Same(t, o, got)
	assert.Equal(t, int32(2), o.RefCount())
	got.Release()

	o.Release()
	assert.Nil(t, w.Get())
	assert.Nil(t, MakeWeak(nil).Get())
	assert.Nil(t, WeakRef{}.Get())

	// nobody holds it, so there is nothing to share
	assert.Nil(t, MakeWeak(New()).Get())
}

func TestGuardedConcurrentUse(t *testing.T) {
	counter := ident.New("counter")
	inc := ident.New("inc")
	o := New()
	o.SetProperty(counter, values.Int(0))
	o.SetMethod(inc, func(a values.Args) values.Value {
		self := a.This.(*Object)
		n := self.GetProperty(counter).AsInt() + 1
		self.SetProperty(counter, values.Int(n))
		return values.Int(n)
	})
	g := NewGuarded(o)
	defer g.Close()
	assert.Equal(t, int32(1), o.RefCount())

	var eg errgroup.Group
	for w := 0; w < 8; w++ {
		eg.Go(func() error {
			for i := 0; i < 100; i++ {
				name := ident.New(fmt.Sprintf("w%d_%d", w, i))
				g.SetProperty(name, values.Int(int32(i)))
				if !g.HasProperty(name) {
					return fmt.Errorf("lost %s", name)
				}
				g.Call(inc)
				g.Read(func(o *Object) { _ = o.ToJSON(true) })
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	v := g.GetProperty(counter)
	assert.Equal(t, int32(800), v.AsInt())
	assert.True(t, g.HasMethod(inc))
	g.Read(func(o *Object) { assert.Equal(t, 802, o.Properties().Len()) })
}

func TestGuardedSnapshotAndClear(t *testing.T) {
	g := NewGuarded(abc())
	defer g.Close()

	snap := g.Snapshot()
	defer snap.Release()
	g.RemoveProperty(ident.New("a"))
	g.Clear()

	var buf bytes.Buffer
	out := jsonfmt.NewSink(&buf, jsonfmt.Options{})
	require.NoError(t, g.WriteAsJSON(out, 0, true))
	require.NoError(t, out.Flush())
	assert.Equal(t, "{}", buf.String())
	assert.Equal(t, `{"a": 1, "b": "s", "c": true}`, snap.ToJSON(true))
}
