/*
Package regex adapts regular expression engines for regex patterns.

Patterns consume regular expressions through the Compiled interface only.
The default implementation is backed by Go's RE2 engine and accepts
expressions in delimited form, as they are commonly written down in case
tables:

    /^(\d+)-(\d+)$/
    /^(?P<user>\w+)@(?P<host>[\w.]+)$/i

Supported flags are i (case-insensitive), m (multi-line), s (dot matches
newline) and U (ungreedy). The flag u is accepted and ignored, as RE2 is
always UTF-8 aware.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package regex

import (
	"regexp"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/pkg/errors"

	"github.com/npillmayer/fpmatch/maybe"
)

// tracer traces with key 'fpmatch.regex'.
func tracer() tracing.Trace {
	return tracing.Select("fpmatch.regex")
}

// NamedGroup is the text captured by a named group.
type NamedGroup struct {
	Name  string
	Value string
}

// Groups are the sub-matches of a successful match. If the expression
// contains named groups, only those are reported, in order of appearance.
// Otherwise all groups are reported positionally, without the full match.
type Groups struct {
	Named      []NamedGroup
	Positional []string
}

// Compiled is a compiled regular expression.
type Compiled interface {
	Match(s string) maybe.Maybe[Groups]
	HasNamedGroups() bool
	String() string
}

// Compiler compiles an expression, in delimited form or plain.
type Compiler func(expr string) (Compiled, error)

const validFlags = "imsUu"

// IsRegexString checks if s is written in delimited form /…/flags.
func IsRegexString(s string) bool {
	_, _, ok := split(s)
	return ok
}

func split(s string) (expr string, flags string, ok bool) {
	if len(s) < 2 || s[0] != '/' {
		return "", "", false
	}
	end := strings.LastIndexByte(s, '/')
	if end == 0 {
		return "", "", false
	}
	flags = s[end+1:]
	for _, f := range flags {
		if !strings.ContainsRune(validFlags, f) {
			return "", "", false
		}
	}
	return s[1:end], flags, true
}

// Compile is the default Compiler, using Go's regexp package.
func Compile(expr string) (Compiled, error) {
	src := expr
	if e, flags, ok := split(expr); ok {
		flags = strings.ReplaceAll(flags, "u", "")
		if flags != "" {
			e = "(?" + flags + ")" + e
		}
		src = e
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid regular expression %s", expr)
	}
	named := false
	for _, n := range re.SubexpNames() {
		named = named || n != ""
	}
	tracer().Debugf("compiled regular expression %s (named groups: %v)", expr, named)
	return re2{re: re, expr: expr, named: named}, nil
}

// MustCompile is like Compile, but panics on errors.
func MustCompile(expr string) Compiled {
	c, err := Compile(expr)
	if err != nil {
		panic(err.Error())
	}
	return c
}

type re2 struct {
	re    *regexp.Regexp
	expr  string
	named bool
}

func (r re2) Match(s string) maybe.Maybe[Groups] {
	m := r.re.FindStringSubmatch(s)
	if m == nil {
		return maybe.Nothing[Groups]()
	}
	g := Groups{}
	if r.named {
		for i, n := range r.re.SubexpNames() {
			if n != "" {
				g.Named = append(g.Named, NamedGroup{Name: n, Value: m[i]})
			}
		}
	} else {
		g.Positional = append([]string{}, m[1:]...)
	}
	return maybe.Just(g)
}

func (r re2) HasNamedGroups() bool {
	return r.named
}

func (r re2) String() string {
	return r.expr
}
