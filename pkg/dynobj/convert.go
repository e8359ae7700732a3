package dynobj

import (
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"io"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nooga/dynvar/pkg/errors"
	"github.com/nooga/dynvar/pkg/ident"
	"github.com/nooga/dynvar/pkg/source"
	"github.com/nooga/dynvar/pkg/values"
)

// Objects built here have no holders; the containers they land in take the
// references. Retain the returned value to own it.

// FromJSON reads one JSON document from r. Object members keep their order;
// a repeated key overwrites the earlier value in place. src, if not nil, is
// the document r reads and is used to turn byte offsets into line and column.
func FromJSON(r io.Reader, src *source.SourceFile) (values.Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := jsonValue(dec)
	if err != nil {
		return values.Void, jsonError(dec, src, err)
	}
	// exactly one value per document
	offset := int(dec.InputOffset())
	if src != nil && offset <= len(src.Content) {
		rest := src.Content[offset:]
		offset += len(rest) - len(strings.TrimLeft(rest, " \t\r\n"))
	}
	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return values.Void, jsonError(dec, src, err)
		}
		return values.Void, errors.NewParseError(errors.At(src, offset), "unexpected data after JSON value")
	}
	return v, nil
}

// ParseJSON parses text as a JSON document.
func ParseJSON(text string) (values.Value, error) {
	return FromJSON(strings.NewReader(text), source.NewStringSource(text))
}

func jsonError(dec *json.Decoder, src *source.SourceFile, err error) error {
	var pe *errors.ParseError
	if stderrors.As(err, &pe) {
		return pe
	}
	offset := int(dec.InputOffset())
	msg := err.Error()
	var syntax *json.SyntaxError
	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		msg = "unexpected end of input"
		if src != nil {
			offset = len(src.Content)
		}
	case stderrors.As(err, &syntax):
		offset, msg = syntaxOffset(src, offset, syntax.Error())
	}
	return errors.NewParseError(errors.At(src, offset), "%s", msg).CausedBy(err)
}

// syntaxOffset finds the byte where src stops being valid JSON. Offsets from
// the streaming decoder only count bytes scanned inside values, so the whole
// document is checked again from its first byte.
func syntaxOffset(src *source.SourceFile, fallback int, msg string) (int, string) {
	if src == nil {
		return fallback, msg
	}
	var raw json.RawMessage
	var syntax *json.SyntaxError
	if err := json.Unmarshal([]byte(src.Content), &raw); stderrors.As(err, &syntax) {
		return max(int(syntax.Offset)-1, 0), syntax.Error()
	}
	return fallback, msg
}

func jsonValue(dec *json.Decoder) (values.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return values.Void, err
	}
	switch t := tok.(type) {
	case nil:
		return values.Void, nil
	case bool:
		return values.Bool(t), nil
	case json.Number:
		return jsonNumber(t), nil
	case string:
		return values.String(t), nil
	case json.Delim:
		switch t {
		case '{':
			obj := New()
			for dec.More() {
				key, err := dec.Token()
				if err != nil {
					return values.Void, err
				}
				name, ok := key.(string)
				if !ok {
					return values.Void, stderrors.New("expected string key in object")
				}
				v, err := jsonValue(dec)
				if err != nil {
					obj.Clear()
					return values.Void, err
				}
				obj.SetProperty(ident.New(name), v)
			}
			if _, err := dec.Token(); err != nil {
				return values.Void, err
			}
			return values.FromObject(obj), nil
		case '[':
			arr := values.NewArray()
			for dec.More() {
				el, err := jsonValue(dec)
				if err != nil {
					return values.Void, err
				}
				arr.AsArray().Append(el)
			}
			if _, err := dec.Token(); err != nil {
				return values.Void, err
			}
			return arr, nil
		}
	}
	return values.Void, stderrors.New("unexpected JSON token")
}

// jsonNumber keeps integers integral: they become int or int64 by range.
// Anything with a fraction or exponent, or too large for int64, is a double.
func jsonNumber(n json.Number) values.Value {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return values.Number(i)
		}
	}
	f, err := n.Float64()
	if err != nil {
		// out of float64 range; the decoder already validated the syntax
		return values.Double(math.Copysign(math.Inf(1), f))
	}
	return values.Double(f)
}

// FromYAML reads one YAML document from r. Mapping keys keep their order and
// must be scalars. An empty document yields Void.
func FromYAML(r io.Reader, src *source.SourceFile) (values.Value, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return values.Void, nil
		}
		return values.Void, errors.NewParseError(errors.Position{Source: src}, "%s", strings.TrimPrefix(err.Error(), "yaml: ")).CausedBy(err)
	}
	return yamlValue(&doc, src)
}

func yamlPos(n *yaml.Node, src *source.SourceFile) errors.Position {
	return errors.Position{Line: n.Line, Column: n.Column, Source: src}
}

func yamlValue(n *yaml.Node, src *source.SourceFile) (values.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return values.Void, nil
		}
		return yamlValue(n.Content[0], src)
	case yaml.AliasNode:
		return yamlValue(n.Alias, src)
	case yaml.MappingNode:
		obj := New()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				obj.Clear()
				return values.Void, errors.NewConversionError(yamlPos(k, src), "mapping key must be a scalar")
			}
			val, err := yamlValue(v, src)
			if err != nil {
				obj.Clear()
				return values.Void, err
			}
			obj.SetProperty(ident.New(k.Value), val)
		}
		return values.FromObject(obj), nil
	case yaml.SequenceNode:
		arr := values.NewArray()
		for _, c := range n.Content {
			el, err := yamlValue(c, src)
			if err != nil {
				return values.Void, err
			}
			arr.AsArray().Append(el)
		}
		return arr, nil
	case yaml.ScalarNode:
		return yamlScalar(n, src)
	}
	return values.Void, errors.NewConversionError(yamlPos(n, src), "unsupported YAML node")
}

func yamlScalar(n *yaml.Node, src *source.SourceFile) (values.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return values.Void, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return values.Void, errors.NewConversionError(yamlPos(n, src), "bad boolean %q", n.Value).CausedBy(err)
		}
		return values.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return values.Number(i), nil
		}
		// too large for int64
		var f float64
		if err := n.Decode(&f); err != nil {
			return values.Void, errors.NewConversionError(yamlPos(n, src), "bad integer %q", n.Value).CausedBy(err)
		}
		return values.Double(f), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return values.Void, errors.NewConversionError(yamlPos(n, src), "bad float %q", n.Value).CausedBy(err)
		}
		return values.Double(f), nil
	case "!!binary":
		b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			return values.Void, errors.NewConversionError(yamlPos(n, src), "bad binary data").CausedBy(err)
		}
		return values.Binary(b), nil
	}
	return values.String(n.Value), nil
}

var (
	valueType  = reflect.TypeFor[values.Value]()
	objectType = reflect.TypeFor[*Object]()
	methodType = reflect.TypeFor[values.NativeFunction]()
)

// FromGo converts a Go value. Maps need string keys and become objects with
// their keys sorted; struct fields keep declaration order and honor json tag
// names. Slices and arrays become arrays, except []byte which is binary.
// Pointers are followed, nil pointers and interfaces give Void.
func FromGo(v any) (values.Value, error) {
	if v == nil {
		return values.Void, nil
	}
	switch t := v.(type) {
	case values.Value:
		return t, nil
	case *Object:
		return values.FromObject(t), nil
	case values.NativeFunction:
		return values.Method(t), nil
	case func(values.Args) values.Value:
		return values.Method(t), nil
	}
	return fromReflect(reflect.ValueOf(v))
}

func fromReflect(rv reflect.Value) (values.Value, error) {
	switch rv.Type() {
	case valueType:
		return rv.Interface().(values.Value), nil
	case objectType:
		return values.FromObject(rv.Interface().(*Object)), nil
	case methodType:
		return values.Method(rv.Interface().(values.NativeFunction)), nil
	}
	switch rv.Kind() {
	case reflect.Bool:
		return values.Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return values.Number(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return values.Number(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return values.Double(rv.Float()), nil
	case reflect.String:
		return values.String(rv.String()), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return values.Void, nil
		}
		return fromReflect(rv.Elem())
	case reflect.Slice:
		if rv.IsNil() {
			return values.Void, nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return values.Binary(slices.Clone(rv.Bytes())), nil
		}
		return goArray(rv)
	case reflect.Array:
		return goArray(rv)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return values.Void, errors.NewConversionError(errors.Position{}, "map key type %s is not a string", rv.Type().Key())
		}
		if rv.IsNil() {
			return values.Void, nil
		}
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int { return strings.Compare(a.String(), b.String()) })
		obj := New()
		for _, k := range keys {
			v, err := fromReflect(rv.MapIndex(k))
			if err != nil {
				obj.Clear()
				return values.Void, err
			}
			obj.SetProperty(ident.New(k.String()), v)
		}
		return values.FromObject(obj), nil
	case reflect.Struct:
		obj := New()
		for _, f := range reflect.VisibleFields(rv.Type()) {
			if !f.IsExported() || f.Anonymous {
				continue
			}
			name := f.Name
			if tag, ok := f.Tag.Lookup("json"); ok {
				tagName, _, _ := strings.Cut(tag, ",")
				if tagName == "-" {
					continue
				}
				if tagName != "" {
					name = tagName
				}
			}
			fv, err := rv.FieldByIndexErr(f.Index)
			if err != nil {
				// promoted through a nil embedded pointer
				continue
			}
			v, err := fromReflect(fv)
			if err != nil {
				obj.Clear()
				return values.Void, err
			}
			obj.SetProperty(ident.New(name), v)
		}
		return values.FromObject(obj), nil
	}
	return values.Void, errors.NewConversionError(errors.Position{}, "cannot convert %s", rv.Type())
}

func goArray(rv reflect.Value) (values.Value, error) {
	arr := values.NewArray()
	for i := 0; i < rv.Len(); i++ {
		el, err := fromReflect(rv.Index(i))
		if err != nil {
			arr.Retain()
			arr.Release()
			return values.Void, err
		}
		arr.AsArray().Append(el)
	}
	return arr, nil
}
