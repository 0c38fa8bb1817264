package compile

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/npillmayer/fpmatch/access"
	"github.com/npillmayer/fpmatch/bind"
	"github.com/npillmayer/fpmatch/pattern"
	"github.com/npillmayer/fpmatch/regex"
	"github.com/npillmayer/fpmatch/typecheck"
	"github.com/npillmayer/fpmatch/value"
)

// BuildError is raised for malformed pattern specs.
type BuildError struct {
	Msg   string
	Cause error
}

func (e *BuildError) Error() string {
	if e.Cause != nil {
		return "cannot build pattern: " + e.Msg + ": " + e.Cause.Error()
	}
	return "cannot build pattern: " + e.Msg
}

func (e *BuildError) Unwrap() error {
	return e.Cause
}

func buildErrorf(format string, args ...any) *BuildError {
	return &BuildError{Msg: fmt.Sprintf(format, args...)}
}

// --- Spec tokens -----------------------------------------------------------

// Placeholder is a spec token standing for a sub-pattern with a bind name.
type Placeholder struct {
	Name string
	Args []any
}

// Any is the wildcard token.
var Any = Placeholder{}

// As binds the pattern built from args to name. Without args it is a wildcard
// capturing as name.
func As(name string, args ...any) Placeholder {
	return Placeholder{Name: name, Args: args}
}

// Var is a wildcard capturing as name.
func Var(name string) Placeholder {
	return Placeholder{Name: name}
}

// Choice is a spec token for a disjunction.
type Choice []any

// OneOf builds a disjunction of the patterns built from args.
func OneOf(args ...any) Choice {
	return Choice(args)
}

// PropSpec is a spec token for a property of an object pattern.
type PropSpec struct {
	Name string
	Args []any
}

// Prop specifies a property which has to match the pattern built from args.
// Without args the property only has to exist.
func Prop(name string, args ...any) PropSpec {
	return PropSpec{Name: name, Args: args}
}

// --- Compiler --------------------------------------------------------------

// Compile builds a pattern from a pattern spec. bindNames are the names known
// to be bind names in the context of the spec. If exact is set, the single
// argument is taken as a literal for strict comparison.
func (ctx *BuildContext) Compile(args []any, bindNames []string, exact bool) (pattern.Pattern, error) {
	b := &builder{ctx: ctx, binds: make(map[string]bool, len(bindNames))}
	for _, n := range bindNames {
		b.binds[n] = true
	}
	if exact {
		if len(args) != 1 {
			return nil, buildErrorf("exact pattern needs exactly one argument, have %d", len(args))
		}
		return pattern.Exact(args[0]), nil
	}
	p, err := b.build(args)
	if err != nil {
		tracer().Debugf("building pattern failed: %v", err)
		return nil, err
	}
	tracer().Debugf("built pattern %s", p)
	return p, nil
}

type builder struct {
	ctx   *BuildContext
	binds map[string]bool
}

func (b *builder) build(args []any) (pattern.Pattern, error) {
	switch {
	case len(args) == 0:
		return nil, buildErrorf("no arguments to build pattern")
	case len(args) == 1:
		return b.arg(args[0])
	case len(args) == 2 && b.isType(args[0]) && isStructure(args[1]):
		return b.object(args[0], args[1])
	}
	ps := make([]pattern.Pattern, len(args))
	literals := true
	for i, a := range args {
		p, err := b.arg(a)
		if err != nil {
			return nil, err
		}
		ps[i] = p
		if e, ok := p.(pattern.ExactPattern); !ok || e.BindName() != "" || !value.IsScalar(a) {
			literals = false
		}
	}
	if literals {
		return pattern.OneOf(ps...), nil
	}
	return pattern.All(ps...), nil
}

func (b *builder) arg(a any) (pattern.Pattern, error) {
	switch x := a.(type) {
	case pattern.RestPattern:
		return nil, buildErrorf("rest pattern %s used outside of a list", x)
	case pattern.Pattern:
		return x, nil
	case Placeholder:
		if len(x.Args) == 0 {
			return pattern.Wildcard().Bound(x.Name), nil
		}
		p, err := b.build(x.Args)
		if err != nil {
			return nil, err
		}
		return p.Bound(x.Name), nil
	case Choice:
		if len(x) == 0 {
			return nil, buildErrorf("empty choice")
		}
		ps := make([]pattern.Pattern, len(x))
		for i, alt := range x {
			p, err := b.arg(alt)
			if err != nil {
				return nil, err
			}
			ps[i] = p
		}
		return pattern.OneOf(ps...), nil
	case WhenHandle:
		return b.ctx.resolveWhen(x, b)
	case KeyHandle:
		return nil, buildErrorf("key handle %d used outside of a keyed structure", x.id)
	case PropSpec:
		return nil, buildErrorf("property %q used outside of an object pattern", x.Name)
	case access.Path:
		return pattern.Destructure(x), nil
	case typecheck.Spec:
		return pattern.Type(x), nil
	case regex.Compiled:
		return pattern.Regex(x), nil
	case bind.Callable:
		return pattern.Callback(x), nil
	case string:
		return b.str(x)
	}
	switch value.KindOf(a) {
	case value.Sequence:
		return b.list(a)
	case value.Map:
		return b.keyed(a)
	case value.Callable:
		c, err := b.ctx.Callable(a)
		if err != nil {
			return nil, &BuildError{Msg: "invalid predicate", Cause: err}
		}
		return pattern.Callback(c), nil
	}
	// scalars of any Go type and objects compare by value
	return pattern.Exact(a), nil
}

func (b *builder) str(s string) (pattern.Pattern, error) {
	switch {
	case s == "":
		return pattern.Exact(s), nil
	case s == "_":
		return pattern.Wildcard(), nil
	case b.binds[s]:
		return pattern.Wildcard().Bound(s), nil
	case strings.HasSuffix(s, "@_") && isIdent(s[:len(s)-2]):
		return pattern.Wildcard().Bound(s[:len(s)-2]), nil
	case isRestSpec(s):
		return nil, buildErrorf("rest pattern %s used outside of a list", s)
	case regex.IsRegexString(s):
		re, err := b.ctx.regex(s)
		if err != nil {
			return nil, &BuildError{Msg: "invalid regular expression " + s, Cause: err}
		}
		return pattern.Regex(re), nil
	}
	return pattern.Exact(s), nil
}

func (b *builder) list(a any) (pattern.Pattern, error) {
	elems, _ := value.Elements(a)
	ps := make([]pattern.Pattern, len(elems))
	for i, e := range elems {
		p, err := b.elem(e)
		if err != nil {
			return nil, err
		}
		ps[i] = p
	}
	l, err := pattern.List(ps...)
	if err != nil {
		return nil, &BuildError{Msg: "malformed list", Cause: err}
	}
	return l, nil
}

// elem builds an element of a list, the only position where a rest pattern
// may occur.
func (b *builder) elem(e any) (pattern.Pattern, error) {
	switch x := e.(type) {
	case pattern.RestPattern:
		return x, nil
	case string:
		if isRestSpec(x) {
			if x == "*" {
				return pattern.Rest(), nil
			}
			return pattern.Rest().Bound(x[1:]), nil
		}
	}
	return b.arg(e)
}

// isRestSpec is true for "*" and "*name".
func isRestSpec(s string) bool {
	return s == "*" || (len(s) > 1 && s[0] == '*' && isIdent(s[1:]))
}

// keyed builds a mapped list of entry patterns. Keys which are bind names
// capture the value of their entry.
func (b *builder) keyed(a any) (pattern.Pattern, error) {
	entries, _ := value.Entries(a)
	assocs := make([]pattern.Pattern, 0, len(entries))
	for _, e := range entries {
		if h, ok := e.Key.(KeyHandle); ok {
			p, err := b.ctx.resolveKey(h, e.Value, b)
			if err != nil {
				return nil, err
			}
			assocs = append(assocs, p)
			continue
		}
		vp, err := b.arg(e.Value)
		if err != nil {
			return nil, err
		}
		var p pattern.Pattern = pattern.Assoc(pattern.Exact(e.Key), vp)
		if name, ok := e.Key.(string); ok && b.binds[name] {
			p = p.Bound(name)
		}
		assocs = append(assocs, p)
	}
	return pattern.Mapped(assocs...), nil
}

func (b *builder) isType(a any) bool {
	switch x := a.(type) {
	case typecheck.Spec:
		return true
	case string:
		return isTypeName(x) && !b.binds[x]
	}
	return false
}

func isStructure(a any) bool {
	switch a.(type) {
	case Placeholder, Choice:
		return false
	}
	k := value.KindOf(a)
	return k == value.Sequence || k == value.Map
}

func (b *builder) object(typ any, structure any) (pattern.Pattern, error) {
	spec, ok := typ.(typecheck.Spec)
	if !ok {
		spec = typecheck.Named(typ.(string))
	}
	var props []pattern.Property
	if elems, ok := value.Elements(structure); ok {
		for _, e := range elems {
			switch x := e.(type) {
			case string:
				props = append(props, pattern.Property{Name: x, Capture: b.binds[x]})
			case PropSpec:
				prop := pattern.Property{Name: x.Name, Capture: b.binds[x.Name]}
				if len(x.Args) > 0 {
					p, err := b.build(x.Args)
					if err != nil {
						return nil, err
					}
					prop.Pattern = p
				}
				props = append(props, prop)
			default:
				return nil, buildErrorf("cannot use %s as a property of %s", value.Describe(e), spec.Describe())
			}
		}
	} else {
		entries, _ := value.Entries(structure)
		for _, e := range entries {
			name, ok := e.Key.(string)
			if !ok {
				return nil, buildErrorf("property names must be strings, have %s", value.Describe(e.Key))
			}
			p, err := b.arg(e.Value)
			if err != nil {
				return nil, err
			}
			props = append(props, pattern.Property{Name: name, Pattern: p, Capture: b.binds[name]})
		}
	}
	if len(props) == 0 {
		return pattern.Type(spec), nil
	}
	return pattern.Object(spec, props...), nil
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

// isTypeName accepts exported Go type names, optionally qualified and with
// pointer indirection, e.g. "Point", "geo.Point" or "*geo.Point", and the
// names of value kinds ("int", "map", …).
func isTypeName(s string) bool {
	s = strings.TrimLeft(s, "*")
	parts := strings.Split(s, ".")
	for _, part := range parts {
		if !isIdent(part) {
			return false
		}
	}
	last := parts[len(parts)-1]
	if unicode.IsUpper([]rune(last)[0]) {
		return true
	}
	for k := value.Null; k <= value.Callable; k++ {
		if k.String() == s {
			return true
		}
	}
	return false
}

// IsBuildError is true for errors raised by the compiler.
func IsBuildError(err error) bool {
	var berr *BuildError
	return errors.As(err, &berr)
}
