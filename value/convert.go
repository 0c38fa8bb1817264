package value

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// ConversionError is raised if an argument is not acceptable for a parameter.
type ConversionError struct {
	Pos  int // 0-based
	Want reflect.Type
	Got  any
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("arg %d must be of type %s, %s given", e.Pos+1, e.Want, Describe(e.Got))
}

// Convert tries to turn v into a value of type t. Assignable values are taken
// as they are. Integers convert to other integer types and floats to other
// float types if the value is representable. Nil converts to nillable types.
// There is no conversion between kinds, i.e. an int will never become a float.
func Convert(v any, t reflect.Type) (reflect.Value, bool) {
	if v == nil {
		switch t.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, true
	}
	switch KindOf(v) {
	case Int:
		if !rv.CanConvert(t) || !isIntType(t.Kind()) {
			return reflect.Value{}, false
		}
		c := rv.Convert(t)
		if !intEqual(rv, c) {
			return reflect.Value{}, false // overflow
		}
		return c, true
	case Float:
		if t.Kind() != reflect.Float32 && t.Kind() != reflect.Float64 {
			return reflect.Value{}, false
		}
		c := rv.Convert(t)
		if f := rv.Float(); !math.IsInf(f, 0) && math.IsInf(c.Float(), 0) {
			return reflect.Value{}, false
		}
		return c, true
	}
	return reflect.Value{}, false
}

func isIntType(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Uintptr
}

// ConvertArgs prepares args for a call of a function of type ft.
func ConvertArgs(ft reflect.Type, args []any) ([]reflect.Value, error) {
	n := ft.NumIn()
	fixed := n
	if ft.IsVariadic() {
		fixed--
	}
	if len(args) < fixed || (!ft.IsVariadic() && len(args) > n) {
		return nil, errors.Errorf("expects %d arguments, %d given", n, len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var t reflect.Type
		if i < fixed {
			t = ft.In(i)
		} else {
			t = ft.In(n - 1).Elem()
		}
		c, ok := Convert(arg, t)
		if !ok {
			return nil, &ConversionError{Pos: i, Want: t, Got: arg}
		}
		in[i] = c
	}
	return in, nil
}

// SplitResults interprets the return values of a reflective call. A trailing
// error result is split off; the first result, if any, is the value.
func SplitResults(out []reflect.Value) (any, error) {
	if len(out) == 0 {
		return nil, nil
	}
	last := out[len(out)-1]
	if last.Type() == errorType {
		var err error
		if !last.IsNil() {
			err = last.Interface().(error)
		}
		if len(out) == 1 {
			return nil, err
		}
		return out[0].Interface(), err
	}
	return out[0].Interface(), nil
}

// --- Descriptions ----------------------------------------------------------

// Describe renders a value together with its type, for diagnostics:
// int(99), string('foo'), null.
func Describe(v any) string {
	switch KindOf(v) {
	case Null:
		return "null"
	case String:
		return fmt.Sprintf("%s(%s)", reflect.TypeOf(v), quote(reflect.ValueOf(v).String()))
	case Callable:
		return reflect.TypeOf(v).String()
	}
	return fmt.Sprintf("%T(%v)", v, v)
}

// Repr renders a value the way it would be written down in a case,
// e.g. 1, 'foo' or null.
func Repr(v any) string {
	switch KindOf(v) {
	case Null:
		return "null"
	case String:
		return quote(reflect.ValueOf(v).String())
	case Callable:
		return reflect.TypeOf(v).String()
	case Sequence:
		elems, _ := Elements(v)
		r := make([]string, len(elems))
		for i, e := range elems {
			r[i] = Repr(e)
		}
		return "[" + strings.Join(r, ", ") + "]"
	case Map:
		entries, _ := Entries(v)
		r := make([]string, len(entries))
		for i, e := range entries {
			r[i] = Repr(e.Key) + ": " + Repr(e.Value)
		}
		return "{" + strings.Join(r, ", ") + "}"
	}
	return fmt.Sprintf("%v", v)
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}
