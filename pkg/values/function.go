package values

import "unsafe"

// NativeFunction is a Go function stored as a method value.
type NativeFunction func(args Args) Value

// Args is what a native function receives when invoked.
type Args struct {
	This      Object // receiver, nil for a bare call
	Arguments []Value
}

// NewArgs builds Args for a call on this.
func NewArgs(this Object, arguments ...Value) Args {
	return Args{This: this, Arguments: arguments}
}

func (a Args) Len() int { return len(a.Arguments) }

// Arg returns argument i, or Void when the caller passed fewer.
func (a Args) Arg(i int) Value {
	if i < 0 || i >= len(a.Arguments) {
		return Void
	}
	return a.Arguments[i]
}

// NativeFunctionObject represents a native Go function held by a method value.
type NativeFunctionObject struct {
	name string
	fn   NativeFunction
}

func (f *NativeFunctionObject) Name() string { return f.name }

// Method wraps fn as the callable variant. A nil fn yields Void.
func Method(fn NativeFunction) Value {
	return NamedMethod("", fn)
}

// NamedMethod is Method with a name used by Inspect.
func NamedMethod(name string, fn NativeFunction) Value {
	if fn == nil {
		return Void
	}
	return Value{typ: TypeMethod, obj: unsafe.Pointer(&NativeFunctionObject{name: name, fn: fn})}
}

func (v Value) AsMethod() *NativeFunctionObject {
	if v.typ != TypeMethod {
		panic("value is not a method")
	}
	return (*NativeFunctionObject)(v.obj)
}

// NativeFunction returns the wrapped function, or nil when v is not a method.
func (v Value) NativeFunction() NativeFunction {
	if v.typ != TypeMethod {
		return nil
	}
	return v.AsMethod().fn
}

// Invoke calls the method held by v. Anything else returns Void.
func (v Value) Invoke(args Args) Value {
	if fn := v.NativeFunction(); fn != nil {
		return fn(args)
	}
	return Void
}
