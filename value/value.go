package value

import (
	"reflect"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Kind is the closed set of value categories a pattern may distinguish.
type Kind uint8

// Kinds of values. Every Go value falls into exactly one of them.
const (
	Null Kind = iota
	Bool
	Int
	Float
	String
	Sequence
	Map
	Object
	Callable
)

var kindNames = [...]string{"null", "bool", "int", "float", "string", "sequence", "map", "object", "callable"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "<invalid kind>"
}

// KindOf classifies v. Nil interfaces, nil pointers, nil funcs and nil channels
// are Null. Nil slices and nil maps are empty, but still sequences and maps.
func KindOf(v any) Kind {
	if v == nil {
		return Null
	}
	if _, ok := v.(Dict); ok {
		return Map
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return Bool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Int
	case reflect.Float32, reflect.Float64:
		return Float
	case reflect.String:
		return String
	case reflect.Slice, reflect.Array:
		return Sequence
	case reflect.Map:
		return Map
	case reflect.Func:
		if rv.IsNil() {
			return Null
		}
		return Callable
	case reflect.Ptr, reflect.Interface, reflect.Chan, reflect.UnsafePointer:
		if rv.IsNil() {
			return Null
		}
	}
	return Object
}

// IsScalar is true for null, booleans, numbers and strings.
func IsScalar(v any) bool {
	return KindOf(v) <= String
}

// Equal compares two values strictly: values of different kinds are never equal,
// so 1 ≠ "1", 1 ≠ 1.0 and 0 ≠ false. Integers compare by numeric value across
// Go integer types, floats likewise. Sequences and maps compare element-wise.
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case Null:
		return true
	case Bool:
		return reflect.ValueOf(a).Bool() == reflect.ValueOf(b).Bool()
	case Int:
		return intEqual(reflect.ValueOf(a), reflect.ValueOf(b))
	case Float:
		return reflect.ValueOf(a).Float() == reflect.ValueOf(b).Float()
	case String:
		return reflect.ValueOf(a).String() == reflect.ValueOf(b).String()
	case Sequence:
		ea, _ := Elements(a)
		eb, _ := Elements(b)
		if len(ea) != len(eb) {
			return false
		}
		for i := range ea {
			if !Equal(ea[i], eb[i]) {
				return false
			}
		}
		return true
	case Map:
		ea, _ := Entries(a)
		eb, _ := Entries(b)
		if len(ea) != len(eb) {
			return false
		}
		for _, e := range ea {
			v, ok := Dict(eb).Lookup(e.Key)
			if !ok || !Equal(e.Value, v) {
				return false
			}
		}
		return true
	case Callable:
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}
	return reflect.DeepEqual(a, b)
}

func intEqual(a, b reflect.Value) bool {
	as, bs := isSigned(a.Kind()), isSigned(b.Kind())
	switch {
	case as && bs:
		return a.Int() == b.Int()
	case !as && !bs:
		return a.Uint() == b.Uint()
	case as:
		return a.Int() >= 0 && uint64(a.Int()) == b.Uint()
	}
	return b.Int() >= 0 && uint64(b.Int()) == a.Uint()
}

func isSigned(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

// Truthy interprets the result of a predicate. Null, false, zero numbers and
// empty strings, sequences and maps are false; everything else is true.
func Truthy(v any) bool {
	switch KindOf(v) {
	case Null:
		return false
	case Bool:
		return reflect.ValueOf(v).Bool()
	case Int:
		rv := reflect.ValueOf(v)
		if isSigned(rv.Kind()) {
			return rv.Int() != 0
		}
		return rv.Uint() != 0
	case Float:
		return reflect.ValueOf(v).Float() != 0
	case String:
		return reflect.ValueOf(v).Len() > 0
	case Sequence:
		return reflect.ValueOf(v).Len() > 0
	case Map:
		if d, ok := v.(Dict); ok {
			return len(d) > 0
		}
		return reflect.ValueOf(v).Len() > 0
	}
	return true
}

// --- Sequences and maps ----------------------------------------------------

// Elements returns the elements of a sequence. It is false for all other kinds.
func Elements(v any) ([]any, bool) {
	if KindOf(v) != Sequence {
		return nil, false
	}
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	elems := make([]any, rv.Len())
	for i := range elems {
		elems[i] = rv.Index(i).Interface()
	}
	return elems, true
}

// Entry is a key/value pair of a map-like value.
type Entry struct {
	Key   any
	Value any
}

// Dict is an insertion-ordered associative array.
type Dict []Entry

// D is a shortcut to build a Dict from alternating keys and values.
//
//     d := value.D("name", "Frank", "age", 42)
//
func D(kv ...any) Dict {
	assertThat(len(kv)%2 == 0, "odd number of arguments to D: %d", len(kv))
	d := make(Dict, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		d = append(d, Entry{Key: kv[i], Value: kv[i+1]})
	}
	return d
}

// Lookup finds the first entry with a key equal to key.
func (d Dict) Lookup(key any) (any, bool) {
	for _, e := range d {
		if Equal(e.Key, key) {
			return e.Value, true
		}
	}
	return nil, false
}

// Entries lists the key/value pairs of a map-like value. Dicts keep their
// order, Go maps are sorted by key, sequences are keyed by index and structs
// list their exported fields in declaration order.
func Entries(v any) ([]Entry, bool) {
	switch KindOf(v) {
	case Map:
		if d, ok := v.(Dict); ok {
			return append([]Entry(nil), d...), true
		}
		rv := reflect.ValueOf(v)
		entries := make([]Entry, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			entries = append(entries, Entry{Key: iter.Key().Interface(), Value: iter.Value().Interface()})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return Less(entries[i].Key, entries[j].Key)
		})
		return entries, true
	case Sequence:
		elems, _ := Elements(v)
		entries := make([]Entry, len(elems))
		for i, e := range elems {
			entries[i] = Entry{Key: i, Value: e}
		}
		return entries, true
	case Object:
		rv := reflect.Indirect(reflect.ValueOf(v))
		if rv.Kind() != reflect.Struct {
			return nil, false
		}
		var entries []Entry
		for i := 0; i < rv.NumField(); i++ {
			if f := rv.Type().Field(i); f.IsExported() {
				entries = append(entries, Entry{Key: f.Name, Value: rv.Field(i).Interface()})
			}
		}
		return entries, true
	}
	return nil, false
}

// Less orders keys: first by kind, then numerically or lexically.
func Less(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return ka < kb
	}
	switch ka {
	case Int:
		ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
		if isSigned(ra.Kind()) && isSigned(rb.Kind()) {
			return ra.Int() < rb.Int()
		}
		return toFloat(ra) < toFloat(rb)
	case Float:
		return reflect.ValueOf(a).Float() < reflect.ValueOf(b).Float()
	case String:
		return reflect.ValueOf(a).String() < reflect.ValueOf(b).String()
	case Bool:
		return !reflect.ValueOf(a).Bool() && reflect.ValueOf(b).Bool()
	}
	return Repr(a) < Repr(b)
}

func toFloat(rv reflect.Value) float64 {
	if isSigned(rv.Kind()) {
		return float64(rv.Int())
	}
	return float64(rv.Uint())
}

// Lookup resolves key within v: map membership for maps, index access for
// sequences and property access for objects with string keys.
func Lookup(v any, key any) (any, bool) {
	switch KindOf(v) {
	case Map:
		if d, ok := v.(Dict); ok {
			return d.Lookup(key)
		}
		rv := reflect.ValueOf(v)
		if key != nil && reflect.TypeOf(key).Comparable() && reflect.TypeOf(key).AssignableTo(rv.Type().Key()) {
			if x := rv.MapIndex(reflect.ValueOf(key)); x.IsValid() {
				return x.Interface(), true
			}
			return nil, false
		}
		iter := rv.MapRange()
		for iter.Next() {
			if Equal(iter.Key().Interface(), key) {
				return iter.Value().Interface(), true
			}
		}
		return nil, false
	case Sequence:
		if KindOf(key) != Int {
			return nil, false
		}
		rv, rk := reflect.ValueOf(v), reflect.ValueOf(key)
		if isSigned(rk.Kind()) && rk.Int() < 0 {
			return nil, false
		}
		i := int(toFloat(rk))
		if i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	case Object:
		if name, ok := key.(string); ok {
			return Field(v, name)
		}
	}
	return nil, false
}

// --- Objects ---------------------------------------------------------------

// Fielder is implemented by types which want to control property access
// during matching, e.g. for computed or unexported state.
type Fielder interface {
	Field(name string) (any, bool)
}

// Field reads property name from v. Fielder implementations take precedence,
// then exported struct fields (name as given, then with an upper-case first
// letter), then string keys of map-like values. Pointers are dereferenced.
func Field(v any, name string) (any, bool) {
	if f, ok := v.(Fielder); ok {
		return f.Field(name)
	}
	switch KindOf(v) {
	case Map:
		return Lookup(v, name)
	case Object:
		rv := reflect.Indirect(reflect.ValueOf(v))
		if rv.Kind() != reflect.Struct {
			return nil, false
		}
		for _, n := range candidateNames(name) {
			if sf, ok := rv.Type().FieldByName(n); ok && sf.IsExported() {
				return rv.FieldByIndex(sf.Index).Interface(), true
			}
		}
	}
	return nil, false
}

// HasMethod checks if v carries an exported method called name.
func HasMethod(v any, name string) bool {
	_, ok := method(v, name)
	return ok
}

// Method calls method name of v with args. It returns false if no such method
// exists. A method may return nothing, a single value, or a value plus an error.
// A panic inside the method is returned as an error.
func Method(v any, name string, args []any) (r any, found bool, err error) {
	m, ok := method(v, name)
	if !ok {
		return nil, false, nil
	}
	in, err := ConvertArgs(m.Type(), args)
	if err != nil {
		return nil, true, err
	}
	defer func() {
		if x := recover(); x != nil {
			r, found, err = nil, true, errors.Errorf("method %s panicked: %v", name, x)
		}
	}()
	r, err = SplitResults(m.Call(in))
	return r, true, err
}

func method(v any, name string) (reflect.Value, bool) {
	if v == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	for _, n := range candidateNames(name) {
		if m := rv.MethodByName(n); m.IsValid() {
			return m, true
		}
	}
	return reflect.Value{}, false
}

func candidateNames(name string) []string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return []string{name}
	}
	return []string{name, string(unicode.ToUpper(r)) + name[size:]}
}
