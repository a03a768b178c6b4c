package tmpl

import (
	"cmp"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Fielder is implemented by binding values that resolve names themselves.
// A Fielder is treated as mapping-like: it takes precedence over map and
// struct access.
type Fielder interface {
	Field(name string) (any, bool)
}

// Iterable is implemented by binding values that can be iterated by a for
// loop in an order of their own choosing.
type Iterable interface {
	Iter() iter.Seq[any]
}

// lookup resolves one path segment in v. Mapping-like values (Fielders and
// maps with string keys) are indexed by key; other values are searched for
// an exported struct field with the given name or json tag.
func lookup(v any, name string) (any, bool) {
	if isNil(v) {
		return nil, false
	}

	switch m := v.(type) {
	case Fielder:
		return m.Field(name)

	case map[string]any:
		e, ok := m[name]

		return e, ok
	}

	rv, ok := indirect(reflect.ValueOf(v))
	if !ok {
		return nil, false
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}

		e := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !e.IsValid() {
			return nil, false
		}

		return e.Interface(), true

	case reflect.Struct:
		return structField(rv, name)

	default:
		return nil, false
	}
}

// structField returns the exported field of struct rv named name, or else
// the first exported field whose json tag names it.
func structField(rv reflect.Value, name string) (any, bool) {
	t := rv.Type()

	if f, ok := t.FieldByName(name); ok && f.IsExported() {
		// A promoted field is unreachable through a nil embedded pointer.
		fv, err := rv.FieldByIndexErr(f.Index)
		if err != nil {
			return nil, false
		}

		return fv.Interface(), true
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag == name && tag != "-" {
			return rv.Field(i).Interface(), true
		}
	}

	return nil, false
}

// isNil reports whether v is nil or a nil pointer. Methods with value
// receivers panic when called through a nil pointer, so such values are
// treated as nil before any interface is consulted.
func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// indirect dereferences pointers and interfaces. It returns false if a nil
// pointer or interface is encountered.
func indirect(rv reflect.Value) (reflect.Value, bool) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return rv, false
		}

		rv = rv.Elem()
	}

	return rv, rv.IsValid()
}

// Truthy reports whether v counts as true in an if block.
//
// A value is false if it is nil (including nil pointers, maps, and slices),
// the boolean false, numeric zero, the empty string, an empty slice, array,
// or map, or an [Iterable] or iter.Seq[any] that yields nothing. Every other
// value is true.
func Truthy(v any) bool {
	if isNil(v) {
		return false
	}

	switch t := v.(type) {
	case bool:
		return t

	case string:
		return t != ""

	case int:
		return t != 0

	case int64:
		return t != 0

	case float64:
		return t != 0

	case []any:
		return len(t) > 0

	case map[string]any:
		return len(t) > 0

	case Iterable:
		return nonEmpty(t.Iter())

	case iter.Seq[any]:
		return nonEmpty(t)
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}

		return Truthy(rv.Elem().Interface())

	case reflect.Bool:
		return rv.Bool()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0

	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0

	case reflect.Complex64, reflect.Complex128:
		return rv.Complex() != 0

	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0

	default:
		return true
	}
}

// nonEmpty reports whether seq yields at least one element. Only the first
// element is requested.
func nonEmpty(seq iter.Seq[any]) bool {
	if seq == nil {
		return false
	}

	for range seq {
		return true
	}

	return false
}

// Elements returns an iterator over the elements of v and true, or nil and
// false if v cannot be iterated.
//
// Slices and arrays yield elements in index order, maps yield their keys in
// sorted order, and strings yield each rune as a string.
func Elements(v any) (iter.Seq[any], bool) {
	if isNil(v) {
		return nil, false
	}

	switch t := v.(type) {
	case Iterable:
		return t.Iter(), true

	case iter.Seq[any]:
		return t, t != nil

	case []any:
		return slices.Values(t), true

	case string:
		return runes(t), true
	}

	rv, ok := indirect(reflect.ValueOf(v))
	if !ok {
		return nil, false
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return func(yield func(any) bool) {
			for i := range rv.Len() {
				if !yield(rv.Index(i).Interface()) {
					return
				}
			}
		}, true

	case reflect.Map:
		keys := rv.MapKeys()
		slices.SortFunc(keys, compareKeys)

		return func(yield func(any) bool) {
			for _, k := range keys {
				if !yield(k.Interface()) {
					return
				}
			}
		}, true

	case reflect.String:
		return runes(rv.String()), true

	default:
		return nil, false
	}
}

func runes(s string) iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, r := range s {
			if !yield(string(r)) {
				return
			}
		}
	}
}

// compareKeys orders map keys of the same kind: strings lexically, numbers
// numerically, and anything else by formatted text.
func compareKeys(a, b reflect.Value) int {
	switch a.Kind() {
	case reflect.String:
		return cmp.Compare(a.String(), b.String())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(a.Uint(), b.Uint())

	case reflect.Float32, reflect.Float64:
		return cmp.Compare(a.Float(), b.Float())

	default:
		return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
	}
}

// Text returns the output text of a value substituted by a placeholder.
func Text(v any) string {
	if isNil(v) {
		return ""
	}

	switch t := v.(type) {
	case string:
		return t

	case []byte:
		return string(t)

	case fmt.Stringer:
		return t.String()

	case error:
		return t.Error()

	case bool:
		return strconv.FormatBool(t)

	case int:
		return strconv.Itoa(t)

	case int64:
		return strconv.FormatInt(t, 10)

	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ""
		}

		return Text(rv.Elem().Interface())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)

	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32)

	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)

	case reflect.String:
		return rv.String()

	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())

	default:
		return fmt.Sprint(v)
	}
}
