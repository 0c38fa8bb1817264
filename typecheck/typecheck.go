/*
Package typecheck provides type specifications for type-check patterns.

A Spec decides whether a value belongs to a type and describes that type for
diagnostics. The matching engine treats specs as an opaque capability: clients
may implement Spec themselves, e.g. for domain-specific refinement types.

    typecheck.Int                 // any Go integer
    typecheck.Of[time.Duration]() // values assignable to time.Duration
    typecheck.Named("Point")      // values with a type named Point

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package typecheck

import (
	"reflect"
	"strings"

	"github.com/npillmayer/fpmatch/value"
)

// Spec is a type specification.
type Spec interface {
	Check(v any) bool
	Describe() string
}

// Predefined specs for the kinds of values.
var (
	Null     = Kind(value.Null)
	Bool     = Kind(value.Bool)
	Int      = Kind(value.Int)
	Float    = Kind(value.Float)
	String   = Kind(value.String)
	Sequence = Kind(value.Sequence)
	Map      = Kind(value.Map)
	Object   = Kind(value.Object)
	Callable = Kind(value.Callable)
)

type kindSpec value.Kind

// Kind matches all values of kind k.
func Kind(k value.Kind) Spec {
	return kindSpec(k)
}

func (k kindSpec) Check(v any) bool {
	return value.KindOf(v) == value.Kind(k)
}

func (k kindSpec) Describe() string {
	return value.Kind(k).String()
}

type goType struct {
	t reflect.Type
}

// Of matches values assignable to T. For interface types this means values
// implementing the interface.
func Of[T any]() Spec {
	return goType{t: reflect.TypeOf((*T)(nil)).Elem()}
}

// Type matches values assignable to t.
func Type(t reflect.Type) Spec {
	return goType{t: t}
}

func (g goType) Check(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).AssignableTo(g.t)
}

func (g goType) Describe() string {
	return g.t.String()
}

type named string

// Named matches values whose type has the given name. The name is compared
// against the unqualified type name and the package-qualified name, with
// pointers dereferenced, so "Point", "geo.Point" and "*geo.Point" are all
// accepted for a *geo.Point value. Kind names ("int", "string", …) match
// the corresponding kind.
func Named(name string) Spec {
	return named(name)
}

func (n named) Check(v any) bool {
	if v == nil {
		return string(n) == "null"
	}
	name := strings.TrimPrefix(string(n), "*")
	t := reflect.TypeOf(v)
	for _, t := range []reflect.Type{t, deref(t)} {
		if t.Name() == name || t.String() == name {
			return true
		}
	}
	return value.KindOf(v).String() == name
}

func (n named) Describe() string {
	return string(n)
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

type predicate struct {
	desc string
	f    func(any) bool
}

// Func creates a spec from a predicate.
func Func(desc string, f func(any) bool) Spec {
	return predicate{desc: desc, f: f}
}

func (p predicate) Check(v any) bool {
	return p.f(v)
}

func (p predicate) Describe() string {
	return p.desc
}

type nullable struct {
	inner Spec
}

// Nullable matches nil or values matching inner.
func Nullable(inner Spec) Spec {
	return nullable{inner: inner}
}

func (n nullable) Check(v any) bool {
	return value.KindOf(v) == value.Null || n.inner.Check(v)
}

func (n nullable) Describe() string {
	return "?" + n.inner.Describe()
}
