/*
Package maybe implements an optional value.

A Maybe either holds a value (Just) or it doesn't (Nothing). Clients unpack
it with a match on its variants:

    var v int
    switch m := x.Match(); m {
    case m.Just(&v):
        …
    case m.Nothing():
        …
    }

The matching engine uses Maybe wherever a component is optional, e.g. an
else-result of a case or the groups of a regular expression match.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package maybe

// Maybe is an optional value of type T.
type Maybe[T any] interface {
	Match() Matcher[T]
	Get() (T, bool)
	IsJust() bool
	WithDefault(T) T
	Map(func(T) T) Maybe[T]
}

type maybe[T any] struct {
	value T
	tag   bool
}

// Just wraps x.
func Just[T any](x T) Maybe[T] {
	return maybe[T]{value: x, tag: true}
}

// Nothing is the absent value.
func Nothing[T any]() Maybe[T] {
	return maybe[T]{tag: false}
}

// Of is Just(x) if ok, Nothing otherwise. It adapts Go's comma-ok idiom.
func Of[T any](x T, ok bool) Maybe[T] {
	if ok {
		return Just(x)
	}
	return Nothing[T]()
}

func (m maybe[T]) Match() Matcher[T] {
	return matcher[T]{m: m}
}

func (m maybe[T]) Get() (T, bool) {
	return m.value, m.tag
}

func (m maybe[T]) IsJust() bool {
	return m.tag
}

func (m maybe[T]) WithDefault(def T) T {
	if m.tag {
		return m.value
	}
	return def
}

func (m maybe[T]) Map(f func(T) T) Maybe[T] {
	if m.tag {
		return Just(f(m.value))
	}
	return m
}

// AndThen chains a computation which may fail onto x.
func AndThen[T, S any](f func(T) Maybe[S], x Maybe[T]) Maybe[S] {
	var v T
	switch m := x.Match(); m {
	case m.Just(&v):
		return f(v)
	case m.Nothing():
	}
	return Nothing[S]()
}

// Map applies f to the value of x, if present.
func Map[T, S any](f func(T) S, x Maybe[T]) Maybe[S] {
	var v T
	switch m := x.Match(); m {
	case m.Just(&v):
		return Just(f(v))
	case m.Nothing():
	}
	return Nothing[S]()
}

// OneOf returns the first Just of a list of maybes.
func OneOf[T any](xs ...Maybe[T]) Maybe[T] {
	for _, x := range xs {
		if x.IsJust() {
			return x
		}
	}
	return Nothing[T]()
}

// --- Matching --------------------------------------------------------------

// Matcher unpacks a Maybe in a switch statement.
type Matcher[T any] interface {
	Just(*T) Matcher[T]
	Nothing() Matcher[T]
}

type matcher[T any] struct {
	m maybe[T]
}

func (mm matcher[T]) Just(v *T) Matcher[T] {
	if mm.m.tag {
		*v = mm.m.value
		return mm
	}
	return nil
}

func (mm matcher[T]) Nothing() Matcher[T] {
	if !mm.m.tag {
		return mm
	}
	return nil
}
