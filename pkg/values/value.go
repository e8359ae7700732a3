package values

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unsafe"
)

type Type uint8

const (
	TypeVoid Type = iota // absence of a value, the zero Value
	TypeUndefined

	TypeBool
	TypeInt
	TypeInt64
	TypeDouble

	TypeString
	TypeArray
	TypeBinary
	TypeObject

	TypeMethod
)

// String returns a human-readable name for the type.
func (t Type) String() string {
	switch t {
	case TypeVoid:
		return "void"
	case TypeUndefined:
		return "undefined"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeInt64:
		return "int64"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeBinary:
		return "binary"
	case TypeObject:
		return "object"
	case TypeMethod:
		return "method"
	default:
		return fmt.Sprintf("<unknown type: %d>", t)
	}
}

type StringObject struct {
	value string
}

type BinaryObject struct {
	data []byte
}

// Value is a tagged union. Scalars live in payload, everything else behind obj.
// A Value does not own the object or array it points at; containers that
// store a Value take their own reference (see Retain).
type Value struct {
	typ     Type
	payload uint64
	obj     unsafe.Pointer
}

var (
	Void      = Value{typ: TypeVoid}
	Undefined = Value{typ: TypeUndefined}
	True      = Value{typ: TypeBool, payload: 1}
	False     = Value{typ: TypeBool, payload: 0}
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func Int(i int32) Value {
	return Value{typ: TypeInt, payload: uint64(int64(i))}
}

func Int64(i int64) Value {
	return Value{typ: TypeInt64, payload: uint64(i)}
}

func Double(f float64) Value {
	return Value{typ: TypeDouble, payload: math.Float64bits(f)}
}

func String(s string) Value {
	return Value{typ: TypeString, obj: unsafe.Pointer(&StringObject{value: s})}
}

// Binary wraps b without copying it.
func Binary(b []byte) Value {
	return Value{typ: TypeBinary, obj: unsafe.Pointer(&BinaryObject{data: b})}
}

func (v Value) Type() Type { return v.typ }

func (v Value) IsVoid() bool      { return v.typ == TypeVoid }
func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsBool() bool      { return v.typ == TypeBool }
func (v Value) IsInt() bool       { return v.typ == TypeInt }
func (v Value) IsInt64() bool     { return v.typ == TypeInt64 }
func (v Value) IsDouble() bool    { return v.typ == TypeDouble }
func (v Value) IsString() bool    { return v.typ == TypeString }
func (v Value) IsArray() bool     { return v.typ == TypeArray }
func (v Value) IsBinary() bool    { return v.typ == TypeBinary }
func (v Value) IsObject() bool    { return v.typ == TypeObject }
func (v Value) IsMethod() bool    { return v.typ == TypeMethod }

func (v Value) IsNumber() bool {
	return v.typ == TypeInt || v.typ == TypeInt64 || v.typ == TypeDouble
}

// IsCallable is the same predicate as IsMethod: methods are the only callable variant.
func (v Value) IsCallable() bool { return v.IsMethod() }

func (v Value) AsBool() bool {
	if v.typ != TypeBool {
		panic("value is not a bool")
	}
	return v.payload == 1
}

func (v Value) AsInt() int32 {
	if v.typ != TypeInt {
		panic("value is not an int")
	}
	return int32(v.payload)
}

func (v Value) AsInt64() int64 {
	if v.typ != TypeInt64 {
		panic("value is not an int64")
	}
	return int64(v.payload)
}

func (v Value) AsDouble() float64 {
	if v.typ != TypeDouble {
		panic("value is not a double")
	}
	return math.Float64frombits(v.payload)
}

func (v Value) AsString() string {
	if v.typ != TypeString {
		panic("value is not a string")
	}
	return (*StringObject)(v.obj).value
}

// AsBinary returns the wrapped bytes. They are shared with every copy of v.
func (v Value) AsBinary() []byte {
	if v.typ != TypeBinary {
		panic("value is not binary")
	}
	return (*BinaryObject)(v.obj).data
}

func (v Value) ToString() string {
	switch v.typ {
	case TypeVoid, TypeUndefined:
		return ""
	case TypeBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case TypeInt:
		return strconv.FormatInt(int64(v.AsInt()), 10)
	case TypeInt64:
		return strconv.FormatInt(v.AsInt64(), 10)
	case TypeDouble:
		return strconv.FormatFloat(v.AsDouble(), 'f', -1, 64)
	case TypeString:
		return v.AsString()
	case TypeBinary:
		return fmt.Sprintf("%x", v.AsBinary())
	case TypeObject:
		return "[object]"
	case TypeArray:
		arr := v.AsArray()
		parts := make([]string, len(arr.elements))
		for i, el := range arr.elements {
			parts[i] = el.ToString()
		}
		return strings.Join(parts, ",")
	case TypeMethod:
		return ""
	}
	return fmt.Sprintf("<unknown type %d>", v.typ)
}

func (v Value) ToInt64() int64 {
	switch v.typ {
	case TypeInt:
		return int64(v.AsInt())
	case TypeInt64:
		return v.AsInt64()
	case TypeDouble:
		f := v.AsDouble()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return int64(f)
	case TypeBool:
		if v.AsBool() {
			return 1
		}
		return 0
	case TypeString:
		str := strings.TrimSpace(v.AsString())
		if i, err := strconv.ParseInt(str, 0, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(str, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(f)
		}
		return 0
	default:
		return 0
	}
}

func (v Value) ToFloat() float64 {
	switch v.typ {
	case TypeInt:
		return float64(v.AsInt())
	case TypeInt64:
		return float64(v.AsInt64())
	case TypeDouble:
		return v.AsDouble()
	case TypeBool:
		if v.AsBool() {
			return 1
		}
		return 0
	case TypeString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.AsString()), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// ToBool is false for void, undefined, false, zero numbers, "", "0" and
// "false"; true for everything else.
func (v Value) ToBool() bool {
	switch v.typ {
	case TypeVoid, TypeUndefined:
		return false
	case TypeBool:
		return v.AsBool()
	case TypeInt, TypeInt64:
		return v.ToInt64() != 0
	case TypeDouble:
		return v.AsDouble() != 0
	case TypeString:
		s := v.AsString()
		return s != "" && s != "0" && !strings.EqualFold(s, "false")
	default:
		return true
	}
}

// Inspect returns a developer-friendly representation of Value, similar to a REPL.
func (v Value) Inspect() string {
	switch v.typ {
	case TypeVoid:
		return "void"
	case TypeUndefined:
		return "undefined"
	case TypeString:
		return strconv.Quote(v.AsString())
	case TypeBinary:
		return fmt.Sprintf("<binary %d bytes>", len(v.AsBinary()))
	case TypeMethod:
		fn := v.AsMethod()
		if fn.name != "" {
			return fmt.Sprintf("[Method: %s]", fn.name)
		}
		return "[Method (anonymous)]"
	case TypeObject:
		if in, ok := v.AsObject().(interface{ Inspect() string }); ok {
			return in.Inspect()
		}
		return "[object]"
	case TypeArray:
		arr := v.AsArray()
		elems := make([]string, len(arr.elements))
		for i, el := range arr.elements {
			elems[i] = el.Inspect()
		}
		return "[" + strings.Join(elems, ", ") + "]"
	default:
		return v.ToString()
	}
}

// --- Equality ---

// Equals compares two values. Numbers compare across int/int64/double;
// objects, arrays and methods compare by identity; strings and binary by content.
func (v Value) Equals(other Value) bool {
	if v.typ != other.typ {
		if v.IsNumber() && other.IsNumber() {
			if v.typ != TypeDouble && other.typ != TypeDouble {
				return v.ToInt64() == other.ToInt64()
			}
			return v.ToFloat() == other.ToFloat()
		}
		return false
	}
	return v.equalsSameType(other)
}

// EqualsWithSameType is Equals without numeric cross-type coercion.
func (v Value) EqualsWithSameType(other Value) bool {
	return v.typ == other.typ && v.equalsSameType(other)
}

func (v Value) equalsSameType(other Value) bool {
	switch v.typ {
	case TypeVoid, TypeUndefined:
		return true
	case TypeBool, TypeInt, TypeInt64:
		return v.payload == other.payload
	case TypeDouble:
		return v.AsDouble() == other.AsDouble()
	case TypeString:
		return v.AsString() == other.AsString()
	case TypeBinary:
		return string(v.AsBinary()) == string(other.AsBinary())
	case TypeObject:
		return v.AsObject() == other.AsObject()
	case TypeArray, TypeMethod:
		return v.obj == other.obj
	default:
		panic(fmt.Sprintf("Unhandled type in Equals comparison: %v", v.typ))
	}
}
