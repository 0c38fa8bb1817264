/*
Package bind feeds captures to callables.

Go does not expose parameter names at runtime, so a Callable pairs a function
with the names of its parameters, as declared by the client:

    c := bind.Func(func(h, t string) bool { return h == t }, "h", "t")

Parameters without a name are bound positionally. Binding follows a fixed
procedure: walking the parameters in order, a parameter takes the capture
of its name if there is one, otherwise the next positional capture not yet
used. The first parameter that can be satisfied by neither ends the walk;
the remaining parameters stay unbound. If nothing could be bound from an
empty capture set, the matched value itself becomes the single argument.

Predicates inside patterns bind differently (see PredicateArgs): they test
the value at hand, so the matched value is always passed, in place of the
first parameter not named after a capture.

A Reflection capability may supply parameter names for plain functions,
e.g. from generated metadata.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package bind

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/pkg/errors"

	"github.com/npillmayer/fpmatch/capture"
	"github.com/npillmayer/fpmatch/value"
)

// tracer traces with key 'fpmatch.bind'.
func tracer() tracing.Trace {
	return tracing.Select("fpmatch.bind")
}

// Callable is a function together with the names of its parameters.
type Callable struct {
	fn    reflect.Value
	names []string
}

// New wraps fn, which must be a func. names are assigned to the parameters
// from left to right; there may be fewer names than parameters.
func New(fn any, names ...string) (Callable, error) {
	if c, ok := fn.(Callable); ok {
		return c.Named(names...), nil
	}
	if value.KindOf(fn) != value.Callable {
		return Callable{}, errors.Errorf("cannot use %s as a callable", value.Describe(fn))
	}
	rv := reflect.ValueOf(fn)
	n := rv.Type().NumIn()
	if len(names) > n {
		return Callable{}, errors.Errorf("%d parameter names given for %s", len(names), rv.Type())
	}
	c := Callable{fn: rv, names: make([]string, n)}
	copy(c.names, names)
	return c, nil
}

// Func is like New, but panics on errors. It is meant for case tables
// written as literals.
func Func(fn any, names ...string) Callable {
	c, err := New(fn, names...)
	if err != nil {
		panic(err.Error())
	}
	return c
}

// Named returns a copy of c with parameter names replaced, if names are given.
func (c Callable) Named(names ...string) Callable {
	if len(names) == 0 {
		return c
	}
	n := make([]string, len(c.names))
	copy(n, names)
	return Callable{fn: c.fn, names: n}
}

// IsValid is false for the zero Callable.
func (c Callable) IsValid() bool {
	return c.fn.IsValid()
}

// Params lists the parameter names; unnamed parameters are empty strings.
func (c Callable) Params() []string {
	return append([]string(nil), c.names...)
}

// NumIn is the number of parameters.
func (c Callable) NumIn() int {
	return len(c.names)
}

// Func returns the wrapped function.
func (c Callable) Func() any {
	return c.fn.Interface()
}

// String renders the signature, e.g. "func(n int) bool".
func (c Callable) String() string {
	if !c.IsValid() {
		return "func()"
	}
	t := c.fn.Type()
	var b strings.Builder
	b.WriteString("func(")
	for i, name := range c.names {
		if i > 0 {
			b.WriteString(", ")
		}
		if name != "" {
			b.WriteString(name)
			b.WriteByte(' ')
		}
		if t.IsVariadic() && i == len(c.names)-1 {
			b.WriteString("..." + t.In(i).Elem().String())
		} else {
			b.WriteString(t.In(i).String())
		}
	}
	b.WriteString(")")
	switch t.NumOut() {
	case 0:
	case 1:
		b.WriteString(" " + t.Out(0).String())
	default:
		outs := make([]string, t.NumOut())
		for i := range outs {
			outs[i] = t.Out(i).String()
		}
		b.WriteString(" (" + strings.Join(outs, ", ") + ")")
	}
	return b.String()
}

// Call calls the function with args. Arguments are converted to the parameter
// types where this is lossless; otherwise an *ArgumentError is returned.
// A trailing error result is returned as the error, and a panic inside the
// function is recovered and returned as an error.
func (c Callable) Call(args []any) (res any, err error) {
	t := c.fn.Type()
	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
	}
	if len(args) < fixed || (!t.IsVariadic() && len(args) > t.NumIn()) {
		return nil, &ArgumentError{Callable: c, Expected: fixed, Given: len(args)}
	}
	in, err := value.ConvertArgs(t, args)
	if err != nil {
		var conv *value.ConversionError
		if errors.As(err, &conv) {
			aerr := &ArgumentError{Callable: c, Pos: conv.Pos, Want: conv.Want, Got: conv.Got}
			if conv.Pos < len(c.names) {
				aerr.Name = c.names[conv.Pos]
			}
			return nil, aerr
		}
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			tracer().Errorf("%s panicked: %v", c, r)
			res, err = nil, errors.Errorf("%s panicked: %v", c, r)
		}
	}()
	return value.SplitResults(c.fn.Call(in))
}

// ArgumentError is returned if arguments do not fit a callable.
type ArgumentError struct {
	Callable Callable
	Pos      int // 0-based
	Name     string
	Want     reflect.Type
	Got      any
	Expected int // arity mismatch, if Want is nil
	Given    int
}

func (e *ArgumentError) Error() string {
	if e.Want == nil {
		return fmt.Sprintf("%s expects %d arguments, %d given", e.Callable, e.Expected, e.Given)
	}
	if e.Name != "" {
		return fmt.Sprintf("arg %d (%s) must be of type %s, %s given", e.Pos+1, e.Name, e.Want, value.Describe(e.Got))
	}
	return fmt.Sprintf("arg %d must be of type %s, %s given", e.Pos+1, e.Want, value.Describe(e.Got))
}

// --- Binding ---------------------------------------------------------------

// Args computes the arguments for a call of c from the captures. v is the
// matched value, used as the single argument if no capture applies and caps is
// empty.
func Args(c Callable, caps capture.Set, v any) []any {
	var args []any
	next := 0
	for _, name := range c.names {
		if name != "" {
			if x, ok := caps.Named(name); ok {
				args = append(args, x)
				continue
			}
		}
		if x, ok := caps.At(next); ok {
			args = append(args, x)
			next++
			continue
		}
		break
	}
	if len(args) == 0 && caps.IsEmpty() && c.NumIn() > 0 {
		args = []any{v}
	}
	return args
}

// PredicateArgs computes the arguments for a predicate testing v. Parameters
// named after a capture take that capture. The first other parameter takes v,
// and the walk ends at the parameter after it.
func PredicateArgs(c Callable, caps capture.Set, v any) []any {
	var args []any
	tested := false
	for _, name := range c.names {
		if name != "" {
			if x, ok := caps.Named(name); ok {
				args = append(args, x)
				continue
			}
		}
		if tested {
			break
		}
		args = append(args, v)
		tested = true
	}
	return args
}

// Check calls the predicate c for the matched value v.
func Check(c Callable, caps capture.Set, v any) (any, error) {
	args := PredicateArgs(c, caps, v)
	tracer().Debugf("testing %s with %d argument(s)", c, len(args))
	return c.Call(args)
}

// Invoke binds the captures to c and calls it.
func Invoke(c Callable, caps capture.Set, v any) (any, error) {
	args := Args(c, caps, v)
	tracer().Debugf("calling %s with %d argument(s)", c, len(args))
	return c.Call(args)
}

// --- Reflection ------------------------------------------------------------

// Reflection supplies the parameter names of a function. It may return
// fewer names than parameters, or none at all.
type Reflection interface {
	ParameterNames(fn any) []string
}

// ReflectionFunc adapts a function to the Reflection interface.
type ReflectionFunc func(fn any) []string

// ParameterNames calls f.
func (f ReflectionFunc) ParameterNames(fn any) []string {
	return f(fn)
}

// NoReflection knows no parameter names: plain functions bind positionally.
var NoReflection Reflection = ReflectionFunc(func(any) []string { return nil })

// Wrap turns fn into a Callable. Callables are returned as they are; plain
// functions get their parameter names from r.
func Wrap(fn any, r Reflection) (Callable, error) {
	if c, ok := fn.(Callable); ok {
		return c, nil
	}
	if r == nil {
		r = NoReflection
	}
	var names []string
	if value.KindOf(fn) == value.Callable {
		names = r.ParameterNames(fn)
	}
	return New(fn, names...)
}
