package propstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nooga/dynvar/pkg/ident"
	"github.com/nooga/dynvar/pkg/values"
)

var a, b, c = ident.New("a"), ident.New("b"), ident.New("c")

type tracked struct{ refs int32 }

func (o *tracked) Retain()                    { o.refs++ }
func (o *tracked) Release()                   { o.refs-- }
func (o *tracked) RefCount() int32            { return o.refs }
func (o *tracked) CloneObject() values.Object { return &tracked{} }

func TestStoreOrder(t *testing.T) {
	s := New()
	s.Set(a, values.Int(1))
	s.Set(b, values.Int(2))
	s.Set(c, values.Int(3))
	assert.Equal(t, []ident.Name{a, b, c}, s.Names())

	// overwrite keeps the slot
	require.True(t, s.Set(a, values.String("x")))
	assert.Equal(t, []ident.Name{a, b, c}, s.Names())
	assert.Equal(t, "x", s.ValueAt(0).AsString())

	// remove then set appends
	require.True(t, s.Remove(b))
	s.Set(b, values.Int(2))
	assert.Equal(t, []ident.Name{a, c, b}, s.Names())
}

func TestStoreGetDoesNotInsert(t *testing.T) {
	s := New()
	v, ok := s.Get(a)
	assert.False(t, ok)
	assert.True(t, v.IsVoid())
	assert.Nil(t, s.Pointer(a))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, int32(5), s.GetOr(a, values.Int(5)).AsInt())
}

func TestStoreSetSameValue(t *testing.T) {
	s := New()
	assert.True(t, s.Set(a, values.Int(1)))
	assert.False(t, s.Set(a, values.Int(1)))
	assert.True(t, s.Set(a, values.Int64(1)))
}

func TestStoreIndexAccess(t *testing.T) {
	var s Store
	s.Set(a, values.Int(1))
	assert.Equal(t, a, s.NameAt(0))
	assert.Equal(t, ident.Null, s.NameAt(1))
	assert.True(t, s.ValueAt(-1).IsVoid())
	assert.Nil(t, s.PointerAt(3))

	*s.PointerAt(0) = values.Int(9)
	v, _ := s.Get(a)
	assert.Equal(t, int32(9), v.AsInt())
	assert.Equal(t, 0, s.IndexOf(a))
	assert.Equal(t, -1, s.IndexOf(b))
}

func TestStoreOwnsReferences(t *testing.T) {
	o := &tracked{}
	s := New()
	s.Set(a, values.FromObject(o))
	s.Set(b, values.FromObject(o))
	assert.Equal(t, int32(2), o.refs)

	s.Set(a, values.FromObject(o)) // unchanged
	assert.Equal(t, int32(2), o.refs)

	cp := s.Copy()
	assert.Equal(t, int32(4), o.refs)

	s.Set(a, values.Int(0))
	assert.Equal(t, int32(3), o.refs)
	s.Remove(b)
	assert.Equal(t, int32(2), o.refs)
	assert.False(t, s.Remove(b))

	cp.Clear()
	assert.Equal(t, int32(0), o.refs)
	assert.Equal(t, 0, cp.Len())
}

func TestStoreAll(t *testing.T) {
	s := New()
	s.Set(a, values.Int(1))
	s.Set(b, values.Int(2))
	var names []string
	for n, v := range s.All() {
		names = append(names, n.String())
		if v.AsInt() == 1 {
			continue
		}
		break
	}
	assert.Equal(t, []string{"a", "b"}, names)
}
