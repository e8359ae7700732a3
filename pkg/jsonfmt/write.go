// Package jsonfmt writes values as JSON text.
//
// Write handles every variant itself except objects: an object payload that
// implements ObjectWriter lays out its own members and calls back into Write
// for each member value, so nested documents alternate between the two.
// Pretty output puts one member per line, indented by IndentSize spaces per
// level; one-line output separates members with ", ".
package jsonfmt

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/nooga/dynvar/pkg/log"
	"github.com/nooga/dynvar/pkg/values"
)

// ObjectWriter is implemented by object payloads that know their JSON form.
type ObjectWriter interface {
	WriteAsJSON(out *Sink, indentLevel int, allOnOneLine bool) error
}

// Write emits v at the given indent level. indentLevel is where the value's
// closing bracket lines up; nested members go IndentSize further in.
func Write(out *Sink, v values.Value, indentLevel int, allOnOneLine bool) error {
	switch v.Type() {
	case values.TypeVoid, values.TypeUndefined:
		out.WriteString("null")
	case values.TypeBool:
		if v.AsBool() {
			out.WriteString("true")
		} else {
			out.WriteString("false")
		}
	case values.TypeInt, values.TypeInt64:
		out.Write(strconv.AppendInt(out.scratch[:0], v.ToInt64(), 10))
	case values.TypeDouble:
		out.WriteString(formatDouble(v.AsDouble(), out.opts.MaxDecimalPlaces))
	case values.TypeString:
		out.WriteByte('"')
		out.WriteEscaped(v.AsString())
		out.WriteByte('"')
	case values.TypeBinary:
		out.WriteByte('"')
		out.Write(AppendHex(out.scratch[:0], v.AsBinary()))
		out.WriteByte('"')
	case values.TypeArray:
		return writeArray(out, v.AsArray(), indentLevel, allOnOneLine)
	case values.TypeObject:
		if w, ok := v.AsObject().(ObjectWriter); ok {
			return w.WriteAsJSON(out, indentLevel, allOnOneLine)
		}
		log.D.F("object %T has no JSON form, writing null", v.AsObject())
		out.WriteString("null")
	case values.TypeMethod:
		log.D.F("method %s has no JSON form, writing null", v.Inspect())
		out.WriteString("null")
	}
	return out.Err()
}

func writeArray(out *Sink, arr *values.ArrayObject, indentLevel int, allOnOneLine bool) error {
	out.WriteByte('[')
	if n := arr.Len(); n > 0 {
		if !allOnOneLine {
			out.NewLine()
		}
		for i := 0; i < n; i++ {
			if !allOnOneLine {
				out.WriteSpaces(indentLevel + out.IndentSize())
			}
			if err := Write(out, arr.Get(i), indentLevel+out.IndentSize(), allOnOneLine); err != nil {
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
	out.WriteByte(']')
	return out.Err()
}

// formatDouble keeps a decimal point on integral values so they read back as
// doubles, and switches to exponent form outside [1e-6, 1e21) like JavaScript.
// JSON has no NaN or infinity; those become null.
func formatDouble(f float64, places int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}
	if f == 0 {
		return "0.0"
	}
	var s string
	abs := math.Abs(f)
	switch {
	case abs < 1e-6 || abs >= 1e21:
		s = cleanExponent(strconv.FormatFloat(f, 'e', -1, 64))
	case places > 0:
		s = strconv.FormatFloat(f, 'f', places, 64)
		if strings.IndexByte(s, '.') >= 0 {
			s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
		}
	default:
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}
	if s == "-0" {
		s = "0"
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// cleanExponent drops leading zeros from the exponent: "1e-07" -> "1e-7".
func cleanExponent(s string) string {
	i := strings.IndexAny(s, "eE")
	if i < 0 || i+2 >= len(s) {
		return s
	}
	j := i + 2
	for j < len(s)-1 && s[j] == '0' {
		j++
	}
	return s[:i+2] + s[j:]
}

// ToString renders v with default options.
func ToString(v values.Value, allOnOneLine bool) string {
	return ToStringWith(v, allOnOneLine, Options{})
}

// ToStringWith renders v with opts.
func ToStringWith(v values.Value, allOnOneLine bool, opts Options) string {
	var buf bytes.Buffer
	out := NewSink(&buf, opts)
	Write(out, v, 0, allOnOneLine)
	out.Flush()
	return buf.String()
}
