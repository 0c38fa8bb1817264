package fpmatch

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/npillmayer/fpmatch/access"
	"github.com/npillmayer/fpmatch/bind"
	"github.com/npillmayer/fpmatch/capture"
	"github.com/npillmayer/fpmatch/compile"
	"github.com/npillmayer/fpmatch/value"
)

// ResultSpec describes how a matching case computes its result.
// It is one of Value, Call, Nested, Delegate, Ret, Continue or Extract.
type ResultSpec interface {
	String() string
	names(ctx *compile.BuildContext) []string
	prepare(m *Matcher) (producer, error)
}

// producer computes the result of a case. m is the matcher running the case,
// v the matched value and caps the captures visible to the case.
type producer func(m *Matcher, v any, caps capture.Set) (any, error)

// toResult interprets the Result or Else field of a case.
func toResult(r any) ResultSpec {
	switch x := r.(type) {
	case ResultSpec:
		return x
	case *Matcher:
		return Delegate(x)
	case []Case:
		return Nested(x...)
	case bind.Callable:
		return Call(x)
	}
	if value.KindOf(r) == value.Callable {
		return Call(r)
	}
	return Value(r)
}

// --- Value -----------------------------------------------------------------

type constant struct {
	v any
}

// Value is a constant result.
func Value(v any) ResultSpec {
	return constant{v: v}
}

func (r constant) String() string                        { return value.Repr(r.v) }
func (r constant) names(*compile.BuildContext) []string { return nil }

func (r constant) prepare(*Matcher) (producer, error) {
	return func(*Matcher, any, capture.Set) (any, error) {
		return r.v, nil
	}, nil
}

// --- Call ------------------------------------------------------------------

type call struct {
	fn     any
	pnames []string
}

// Call computes the result by calling fn with the captures. names, if given,
// replace the parameter names of fn.
func Call(fn any, names ...string) ResultSpec {
	return call{fn: fn, pnames: names}
}

func (r call) callable(ctx *compile.BuildContext) (bind.Callable, error) {
	c, err := ctx.Callable(r.fn)
	if err != nil {
		return c, &BuildError{Msg: "invalid result", Cause: err}
	}
	return c.Named(r.pnames...), nil
}

func (r call) String() string {
	if c, ok := r.fn.(bind.Callable); ok {
		return c.Named(r.pnames...).String()
	}
	if c, err := bind.New(r.fn, r.pnames...); err == nil {
		return c.String()
	}
	return value.Describe(r.fn)
}

func (r call) names(ctx *compile.BuildContext) []string {
	c, err := r.callable(ctx)
	if err != nil {
		return nil
	}
	return params(c)
}

func (r call) prepare(m *Matcher) (producer, error) {
	c, err := r.callable(m.cfg.ctx)
	if err != nil {
		return nil, err
	}
	return func(_ *Matcher, v any, caps capture.Set) (any, error) {
		return bind.Invoke(c, caps, v)
	}, nil
}

// --- Nested matchers -------------------------------------------------------

type nested struct {
	m     *Matcher
	cases []Case
}

// Nested computes the result by matching the same value against cases.
// The cases see the captures of the enclosing case. They are compiled with
// the options of the enclosing matcher.
func Nested(cases ...Case) ResultSpec {
	return nested{cases: cases}
}

// Delegate computes the result by matching the same value with m, which sees
// the captures of the enclosing case.
func Delegate(m *Matcher) ResultSpec {
	return nested{m: m}
}

func (r nested) String() string {
	n := len(r.cases)
	if r.m != nil {
		n = len(r.m.cases)
	}
	return "match(" + strconv.Itoa(n) + " cases)"
}

// names collects the bind names of the nested cases, as their guards and
// results may consume captures of the enclosing case.
func (r nested) names(ctx *compile.BuildContext) []string {
	var names []string
	for _, c := range r.cases {
		names = append(names, bindNames(ctx, c)...)
	}
	return names
}

func (r nested) prepare(m *Matcher) (producer, error) {
	sub := r.m
	if sub == nil {
		var err error
		if sub, err = newMatcher(r.cases, m.cfg); err != nil {
			return nil, err
		}
	}
	return func(_ *Matcher, v any, caps capture.Set) (any, error) {
		return sub.Match(v, caps)
	}, nil
}

// --- Ret and Continue ------------------------------------------------------

type retrieve struct {
	spec     string
	bindings []binding
	err      error
	cont     bool
}

// Ret returns captures. bindings is a comma separated list of capture names
// or positions, each optionally followed by subscripts:
//
//     "x"            capture x
//     "0"            first positional capture
//     "m[0]"         first element of capture m
//     "rec[name]"    entry "name" of capture rec
//     "rec[$k]"      entry of capture rec for the key captured as k
//
// A single binding yields its value. Several bindings yield a []any of the
// values, with sequences spliced in.
func Ret(bindings string) ResultSpec {
	bs, err := parseBindings(bindings)
	return retrieve{spec: bindings, bindings: bs, err: err}
}

// Continue matches the value resolved from bindings (see Ret) against the
// cases of the running matcher, and returns the result of that match.
func Continue(bindings string) ResultSpec {
	bs, err := parseBindings(bindings)
	return retrieve{spec: bindings, bindings: bs, err: err, cont: true}
}

func (r retrieve) String() string {
	if r.cont {
		return "continue(" + r.spec + ")"
	}
	return "ret(" + r.spec + ")"
}

func (r retrieve) names(*compile.BuildContext) []string {
	var names []string
	for _, b := range r.bindings {
		if b.name != "" {
			names = append(names, b.name)
		}
		for _, s := range b.subs {
			if s.ref != "" {
				names = append(names, s.ref)
			}
		}
	}
	return names
}

func (r retrieve) prepare(*Matcher) (producer, error) {
	if r.err != nil {
		return nil, &BuildError{Msg: "invalid bindings '" + r.spec + "'", Cause: r.err}
	}
	return func(m *Matcher, _ any, caps capture.Set) (any, error) {
		x, err := resolve(r.bindings, caps)
		if err != nil || !r.cont {
			return x, err
		}
		tracer().Debugf("continue with %s", value.Describe(x))
		return m.Match(x)
	}, nil
}

type binding struct {
	name string // "" for positional captures
	pos  int
	subs []subscript
}

type subscript struct {
	key any
	ref string // the key is the capture named ref
}

func (b binding) String() string {
	if b.name == "" {
		return strconv.Itoa(b.pos)
	}
	return b.name
}

func parseBindings(spec string) ([]binding, error) {
	var bs []binding
	for _, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		name, rest := item, ""
		if i := strings.IndexByte(item, '['); i >= 0 {
			name, rest = item[:i], item[i:]
		}
		b := binding{name: name, pos: -1}
		if n, err := strconv.Atoi(name); err == nil && n >= 0 {
			b.name, b.pos = "", n
		} else if !isIdent(name) {
			return nil, errors.Errorf("malformed binding %q", item)
		}
		for rest != "" {
			j := strings.IndexByte(rest, ']')
			if rest[0] != '[' || j < 2 {
				return nil, errors.Errorf("malformed subscript in binding %q", item)
			}
			b.subs = append(b.subs, parseSubscript(rest[1:j]))
			rest = rest[j+1:]
		}
		bs = append(bs, b)
	}
	return bs, nil
}

func parseSubscript(s string) subscript {
	if strings.HasPrefix(s, "$") && len(s) > 1 {
		return subscript{ref: s[1:]}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return subscript{key: n}
	}
	return subscript{key: s}
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !(r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r))) {
			return false
		}
	}
	return true
}

func resolve(bs []binding, caps capture.Set) (any, error) {
	vals := make([]any, len(bs))
	for i, b := range bs {
		x, err := b.resolve(caps)
		if err != nil {
			return nil, err
		}
		vals[i] = x
	}
	if len(vals) == 1 {
		return vals[0], nil
	}
	list := []any{}
	for _, x := range vals {
		if elems, ok := value.Elements(x); ok {
			list = append(list, elems...)
		} else {
			list = append(list, x)
		}
	}
	return list, nil
}

func (b binding) resolve(caps capture.Set) (any, error) {
	var x any
	var ok bool
	if b.name == "" {
		x, ok = caps.At(b.pos)
	} else {
		x, ok = caps.Named(b.name)
	}
	if !ok {
		return nil, errors.Errorf("no capture %s in %s", b, caps)
	}
	for _, s := range b.subs {
		key := s.key
		if s.ref != "" {
			if key, ok = caps.Named(s.ref); !ok {
				return nil, errors.Errorf("no capture %s to subscript %s", s.ref, b)
			}
		}
		next, ok := value.Lookup(x, key)
		if !ok {
			return nil, errors.Errorf("cannot subscript %s with %s", value.Describe(x), value.Repr(key))
		}
		x = next
	}
	return x, nil
}

// --- Extract ---------------------------------------------------------------

type extract struct {
	from string
	path access.Path
}

// Extract replays path on the capture named from, or on the matched value
// if from is empty. Replay uses the destructuring policy of the matcher.
func Extract(from string, path access.Path) ResultSpec {
	return extract{from: from, path: path}
}

func (r extract) String() string {
	return "extract(" + r.from + r.path.String() + ")"
}

func (r extract) names(*compile.BuildContext) []string {
	if r.from == "" {
		return nil
	}
	return []string{r.from}
}

func (r extract) prepare(*Matcher) (producer, error) {
	return func(m *Matcher, v any, caps capture.Set) (any, error) {
		if r.from != "" {
			var ok bool
			if v, ok = caps.Named(r.from); !ok {
				return nil, errors.Errorf("no capture %s in %s", r.from, caps)
			}
		}
		return r.path.Replay(v, m.cfg.policy).Get()
	}, nil
}
