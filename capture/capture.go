/*
Package capture holds the bindings a successful match produces.

A capture set is an ordered mapping from keys to values. A key is either a
name or a position. Sets are immutable: every modification returns a new set
and leaves the receiver untouched, so sets may be shared freely between
cases, nested matchers and concurrent match calls.

Merging two sets follows one rule: named keys of the right operand overwrite
those of the left operand (keeping the original position in the order),
positional entries of the right operand are appended and renumbered.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package capture

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/fpmatch/value"
)

// Key identifies a capture, either by name or by position.
type Key struct {
	name string
	pos  int
}

// Name creates a named key.
func Name(n string) Key {
	return Key{name: n}
}

// Pos creates a positional key.
func Pos(i int) Key {
	return Key{pos: i}
}

// IsPositional is true for keys without a name.
func (k Key) IsPositional() bool {
	return k.name == ""
}

// Name returns the name of a named key.
func (k Key) Name() string {
	return k.name
}

// Pos returns the index of a positional key.
func (k Key) Pos() int {
	return k.pos
}

func (k Key) String() string {
	if k.IsPositional() {
		return strconv.Itoa(k.pos)
	}
	return k.name
}

type entry struct {
	key Key
	val any
}

// Set is an immutable, ordered set of captures. The zero value is an empty set.
type Set struct {
	entries []entry
	npos    int // number of positional entries
}

// Empty returns a set without captures.
func Empty() Set {
	return Set{}
}

// Of creates a set of named captures from alternating names and values.
func Of(kv ...any) Set {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("capture: odd number of arguments to Of: %d", len(kv)))
	}
	s := Set{}
	for i := 0; i < len(kv); i += 2 {
		s = s.Bind(kv[i].(string), kv[i+1])
	}
	return s
}

// Len is the number of captures.
func (s Set) Len() int {
	return len(s.entries)
}

// IsEmpty is true for a set without captures.
func (s Set) IsEmpty() bool {
	return len(s.entries) == 0
}

// Positionals is the number of positional captures.
func (s Set) Positionals() int {
	return s.npos
}

// Get looks up a capture.
func (s Set) Get(k Key) (any, bool) {
	for _, e := range s.entries {
		if e.key == k {
			return e.val, true
		}
	}
	return nil, false
}

// Named looks up a named capture.
func (s Set) Named(name string) (any, bool) {
	return s.Get(Name(name))
}

// At looks up a positional capture.
func (s Set) At(i int) (any, bool) {
	return s.Get(Pos(i))
}

// Bind returns a set with name bound to v. An existing binding of name is
// replaced in place.
func (s Set) Bind(name string, v any) Set {
	if name == "" {
		return s.Append(v)
	}
	k := Name(name)
	for i, e := range s.entries {
		if e.key == k {
			entries := make([]entry, len(s.entries))
			copy(entries, s.entries)
			entries[i].val = v
			return Set{entries: entries, npos: s.npos}
		}
	}
	return s.add(entry{key: k, val: v}, s.npos)
}

// Append returns a set with v added at the next free position.
func (s Set) Append(v any) Set {
	return s.add(entry{key: Pos(s.npos), val: v}, s.npos+1)
}

func (s Set) add(e entry, npos int) Set {
	entries := make([]entry, len(s.entries), len(s.entries)+1)
	copy(entries, s.entries)
	return Set{entries: append(entries, e), npos: npos}
}

// Merge combines s with other: named captures of other overwrite those of s,
// positional captures of other are appended after the ones of s.
func (s Set) Merge(other Set) Set {
	if other.IsEmpty() {
		return s
	}
	if s.IsEmpty() {
		return other
	}
	r := s
	for _, e := range other.entries {
		if e.key.IsPositional() {
			r = r.Append(e.val)
		} else {
			r = r.Bind(e.key.name, e.val)
		}
	}
	return r
}

// Keys lists the keys in order.
func (s Set) Keys() []Key {
	keys := make([]Key, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.key
	}
	return keys
}

// Each calls f for every capture, in order.
func (s Set) Each(f func(Key, any)) {
	for _, e := range s.entries {
		f(e.key, e.val)
	}
}

// Values lists the captured values in order.
func (s Set) Values() []any {
	vals := make([]any, len(s.entries))
	for i, e := range s.entries {
		vals[i] = e.val
	}
	return vals
}

func (s Set) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, e := range s.entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.key.String())
		b.WriteString(": ")
		b.WriteString(value.Repr(e.val))
	}
	b.WriteString("}")
	return b.String()
}
