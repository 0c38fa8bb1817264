/*
Package result implements the outcome of a computation that may fail.

A Result is either Ok, carrying a value, or Err, carrying an error. Like
package maybe it is unpacked with a switch over its variants:

    var v T
    var err error
    switch m := r.Match(); m {
    case m.Ok(&v):
        …
    case m.Err(&err):
        …
    }

Replaying a recorded access path returns a Result.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package result

import "github.com/npillmayer/fpmatch/maybe"

// Result is either a value of type T or an error.
type Result[T any] interface {
	Match() Matcher[T]
	Get() (T, error)
	IsOk() bool
}

type result[T any] struct {
	value T
	err   error
}

// Ok wraps a value.
func Ok[T any](x T) Result[T] {
	return result[T]{value: x}
}

// Err wraps an error. err must not be nil.
func Err[T any](err error) Result[T] {
	if err == nil {
		panic("result: Err called with nil error")
	}
	return result[T]{err: err}
}

// From adapts Go's (value, error) return convention.
func From[T any](x T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(x)
}

func (r result[T]) Match() Matcher[T] {
	return matcher[T]{r: r}
}

func (r result[T]) Get() (T, error) {
	return r.value, r.err
}

func (r result[T]) IsOk() bool {
	return r.err == nil
}

// AndThen chains a computation which may fail onto r.
func AndThen[T, S any](f func(T) Result[S], r Result[T]) Result[S] {
	v, err := r.Get()
	if err != nil {
		return Err[S](err)
	}
	return f(v)
}

// ToMaybe forgets the error.
func ToMaybe[T any](r Result[T]) maybe.Maybe[T] {
	v, err := r.Get()
	return maybe.Of(v, err == nil)
}

// WithDefault returns the value of r, or def on error.
func WithDefault[T any](r Result[T], def T) T {
	if v, err := r.Get(); err == nil {
		return v
	}
	return def
}

// --- Matching --------------------------------------------------------------

// Matcher unpacks a Result in a switch statement.
type Matcher[T any] interface {
	Ok(*T) Matcher[T]
	Err(*error) Matcher[T]
}

type matcher[T any] struct {
	r result[T]
}

func (rm matcher[T]) Ok(v *T) Matcher[T] {
	if rm.r.err == nil {
		*v = rm.r.value
		return rm
	}
	return nil
}

func (rm matcher[T]) Err(err *error) Matcher[T] {
	if rm.r.err != nil {
		*err = rm.r.err
		return rm
	}
	return nil
}
