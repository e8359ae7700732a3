package dynobj

import (
	"bytes"
	"crypto/sha256"
	stderrors "errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"github.com/nooga/dynvar/pkg/errors"
	"github.com/nooga/dynvar/pkg/ident"
	"github.com/nooga/dynvar/pkg/jsonfmt"
	"github.com/nooga/dynvar/pkg/values"
)

var seed = sha256.Sum256([]byte("dynamic objects keep their keys in order"))

func noop(values.Args) values.Value { return values.Void }

func TestHasPropertyTracksLastOperation(t *testing.T) {
	rng := frand.NewCustom(seed[:], 32, 12)
	names := ident.Names("a", "b", "c", "d", "e")
	o := New()
	model := map[ident.Name]bool{}
	for i := 0; i < 5000; i++ {
		name := names[rng.Intn(len(names))]
		switch rng.Intn(4) {
		case 0, 1:
			o.SetProperty(name, values.Int(int32(i)))
			model[name] = true
		case 2:
			o.RemoveProperty(name)
			model[name] = false
		case 3:
			o.SetMethod(name, noop)
			model[name] = false
		}
		for _, n := range names {
			require.Equal(t, model[n], o.HasProperty(n), "step %d name %s", i, n)
		}
	}
}

func TestMethodsShareTheStore(t *testing.T) {
	o := New()
	greet := ident.New("greet")
	o.SetMethod(greet, func(a values.Args) values.Value {
		return values.String("hi " + a.Arg(0).ToString())
	})
	assert.False(t, o.HasProperty(greet))
	assert.True(t, o.HasMethod(greet))
	assert.True(t, o.GetProperty(greet).IsMethod())
	assert.Equal(t, "hi bob", o.Call(greet, values.String("bob")).AsString())

	// a plain value under the same name replaces the method
	o.SetProperty(greet, values.Int(1))
	assert.True(t, o.HasProperty(greet))
	assert.False(t, o.HasMethod(greet))
}

func TestCallPassesReceiver(t *testing.T) {
	o := New()
	count := ident.New("count")
	bump := ident.New("bump")
	o.SetProperty(count, values.Int(0))
	o.SetMethod(bump, func(a values.Args) values.Value {
		self := a.This.(*Object)
		n := self.GetProperty(count).AsInt() + a.Arg(0).AsInt()
		self.SetProperty(count, values.Int(n))
		return values.Int(n)
	})
	o.Call(bump, values.Int(2))
	assert.Equal(t, int32(5), o.Call(bump, values.Int(3)).AsInt())
	assert.Equal(t, int32(5), o.GetProperty(count).AsInt())
}

func TestInvokeMissIsSilent(t *testing.T) {
	o := New()
	x := ident.New("x")
	o.SetProperty(x, values.String("not callable"))
	before := o.ToJSON(true)

	assert.True(t, o.InvokeMethod(x, values.NewArgs(o)).IsVoid())
	assert.True(t, o.InvokeMethod(ident.New("missing"), values.NewArgs(o)).IsVoid())
	assert.Equal(t, before, o.ToJSON(true))
	assert.Equal(t, 1, o.Properties().Len())
	assert.False(t, o.HasProperty(ident.New("missing")))
}

func TestGetPropertyMissing(t *testing.T) {
	o := New()
	assert.True(t, o.GetProperty(ident.New("nope")).IsVoid())
	assert.Equal(t, 0, o.Properties().Len())
	o.RemoveProperty(ident.New("nope"))
	assert.Equal(t, 0, o.Properties().Len())
}

func TestClearIsIdempotent(t *testing.T) {
	o := New()
	o.SetProperty(ident.New("a"), values.Int(1))
	o.SetMethod(ident.New("m"), noop)
	o.Clear()
	assert.Equal(t, 0, o.Properties().Len())
	o.Clear()
	assert.Equal(t, 0, o.Properties().Len())
	assert.Equal(t, "{}", o.ToJSON(false))
}

func TestCloneIndependence(t *testing.T) {
	x, y := ident.New("x"), ident.New("y")
	a := New()
	a.Retain()
	defer a.Release()
	a.SetProperty(x, values.NewArray(values.Int(1)))

	b := a.Clone()
	defer b.Release()
	assert.Equal(t, int32(1), b.RefCount())

	a.GetProperty(x).AsArray().Append(values.Int(2))
	assert.Equal(t, 1, b.GetProperty(x).AsArray().Len())
	b.GetProperty(x).AsArray().Set(0, values.Int(9))
	assert.Equal(t, int32(1), a.GetProperty(x).AsArray().Get(0).AsInt())

	a.SetProperty(y, values.True)
	a.RemoveProperty(x)
	assert.False(t, b.HasProperty(y))
	assert.True(t, b.HasProperty(x))
}

func TestCloneIsDeepForNestedObjects(t *testing.T) {
	inner := New()
	inner.SetProperty(ident.New("v"), values.Int(1))
	outer := New()
	outer.SetProperty(ident.New("inner"), values.FromObject(inner))

	c := outer.Clone()
	defer c.Release()
	inner.SetProperty(ident.New("v"), values.Int(2))

	got := c.GetProperty(ident.New("inner")).AsObject().(*Object)
	assert.NotSame(t, inner, got)
	assert.Equal(t, int32(1), got.GetProperty(ident.New("v")).AsInt())
	assert.Equal(t, int32(1), got.RefCount())
}

func TestNewCopyAliasesValues(t *testing.T) {
	x := ident.New("x")
	a := New()
	a.SetProperty(x, values.NewArray())
	b := NewCopy(a)
	a.GetProperty(x).AsArray().Append(values.Int(1))
	assert.Equal(t, 1, b.GetProperty(x).AsArray().Len())
	assert.Equal(t, int32(2), a.GetProperty(x).AsArray().RefCount())
}

func abc() *Object {
	o := New()
	o.SetProperty(ident.New("a"), values.Int(1))
	o.SetProperty(ident.New("b"), values.String("s"))
	o.SetProperty(ident.New("c"), values.True)
	return o
}

func TestWriteAsJSON(t *testing.T) {
	o := abc()
	assert.Equal(t, `{"a": 1, "b": "s", "c": true}`, o.ToJSON(true))
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": \"s\",\n  \"c\": true\n}", o.ToJSON(false))
}

func TestWriteAsJSONEmpty(t *testing.T) {
	assert.Equal(t, "{}", New().ToJSON(true))
	assert.Equal(t, "{}", New().ToJSON(false))

	var buf bytes.Buffer
	out := jsonfmt.NewSink(&buf, jsonfmt.Options{})
	require.NoError(t, New().WriteAsJSON(out, 6, false))
	require.NoError(t, out.Flush())
	assert.Equal(t, "{}", buf.String())
}

func TestWriteAsJSONNested(t *testing.T) {
	o := New()
	inner := abc()
	o.SetProperty(ident.New("inner"), values.FromObject(inner))
	o.SetProperty(ident.New("list"), values.NewArray(values.Int(1), values.FromObject(New())))
	o.SetMethod(ident.New("m"), noop)
	o.SetProperty(ident.New("key \"q\""), values.Double(0.5))

	assert.Equal(t,
		`{"inner": {"a": 1, "b": "s", "c": true}, "list": [1, {}], "m": null, "key \"q\"": 0.5}`,
		o.ToJSON(true))

	want := `{
  "inner": {
    "a": 1,
    "b": "s",
    "c": true
  },
  "list": [
    1,
    {}
  ],
  "m": null,
  "key \"q\"": 0.5
}`
	assert.Equal(t, want, o.ToJSON(false))
}

func TestWriteAsJSONIndentLevel(t *testing.T) {
	var buf bytes.Buffer
	out := jsonfmt.NewSink(&buf, jsonfmt.Options{IndentSize: 4})
	o := New()
	o.SetProperty(ident.New("a"), values.Int(1))
	require.NoError(t, o.WriteAsJSON(out, 2, false))
	require.NoError(t, out.Flush())
	assert.Equal(t, "{\n      \"a\": 1\n  }", buf.String())
}

func TestReaddMovesToEnd(t *testing.T) {
	o := abc()
	b := ident.New("b")
	o.RemoveProperty(b)
	o.SetProperty(b, values.String("s"))
	assert.Equal(t, `{"a": 1, "c": true, "b": "s"}`, o.ToJSON(true))

	// overwriting in place does not move it
	o.SetProperty(ident.New("a"), values.Int(2))
	assert.Equal(t, `{"a": 2, "c": true, "b": "s"}`, o.ToJSON(true))
}

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) { return 0, io.ErrShortWrite }

func TestWriteAsJSONPropagatesSinkFailure(t *testing.T) {
	o := New()
	o.SetProperty(ident.New("blob"), values.String(string(make([]byte, 10000))))
	out := jsonfmt.NewSink(brokenWriter{}, jsonfmt.Options{})
	err := o.WriteAsJSON(out, 0, true)
	require.Error(t, err)
	var se *errors.SinkError
	assert.True(t, stderrors.As(err, &se))
	assert.True(t, stderrors.Is(err, io.ErrShortWrite))
}

func TestReleaseTearsDown(t *testing.T) {
	child := New()
	child.Retain()
	parent := New()
	parent.Retain()
	parent.SetProperty(ident.New("child"), values.FromObject(child))
	assert.Equal(t, int32(2), child.RefCount())

	parent.Release()
	assert.True(t, parent.Released())
	assert.Equal(t, 0, parent.Properties().Len())
	assert.Equal(t, int32(1), child.RefCount())
	assert.False(t, child.Released())

	child.Release()
	assert.True(t, child.Released())
	assert.Panics(t, func() { child.Retain() })
	assert.Panics(t, func() { New().Release() })
}

func TestUnmatchedReleaseKeepsCount(t *testing.T) {
	o := New()
	assert.Panics(t, func() { o.Release() })
	assert.Equal(t, int32(0), o.RefCount())
	assert.False(t, o.Released())

	// still usable after the recovered misuse
	o.Retain()
	o.SetProperty(ident.New("a"), values.Int(1))
	assert.Equal(t, int32(1), o.RefCount())
	o.Release()
	assert.True(t, o.Released())
	assert.Panics(t, func() { o.Release() })
	assert.Equal(t, int32(0), o.RefCount())
}

func TestFloatingObjectsStartAtZero(t *testing.T) {
	x := ident.New("x")
	child := New()
	assert.Equal(t, int32(0), child.RefCount())
	assert.Equal(t, int32(0), NewCopy(child).RefCount())

	parent := New()
	parent.SetProperty(x, values.FromObject(child))
	assert.Equal(t, int32(1), child.RefCount())

	// the store held the only reference
	parent.SetProperty(x, values.Int(0))
	assert.True(t, child.Released())

	kept := New()
	kept.Retain()
	defer kept.Release()
	parent.SetProperty(x, values.FromObject(kept))
	parent.SetProperty(x, values.Int(1))
	assert.False(t, kept.Released())
	assert.Equal(t, int32(1), kept.RefCount())
}

func TestCloneAllPropertiesReleasesOldValues(t *testing.T) {
	shared := New()
	shared.Retain()
	defer shared.Release()
	o := New()
	o.SetProperty(ident.New("s"), values.FromObject(shared))
	assert.Equal(t, int32(2), shared.RefCount())

	o.CloneAllProperties()
	assert.Equal(t, int32(1), shared.RefCount())
	assert.NotSame(t, shared, o.GetProperty(ident.New("s")).AsObject())
}

func TestInspect(t *testing.T) {
	assert.Equal(t, `{a: 1, b: "s", c: true}`, abc().Inspect())
	assert.Equal(t, `{a: 1, b: "s", c: true}`, values.FromObject(abc()).Inspect())
}
