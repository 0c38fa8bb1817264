package pattern

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/npillmayer/fpmatch/access"
	"github.com/npillmayer/fpmatch/bind"
	"github.com/npillmayer/fpmatch/regex"
	"github.com/npillmayer/fpmatch/typecheck"
	"github.com/npillmayer/fpmatch/value"
)

// Pattern is the common interface of all pattern variants.
type Pattern interface {
	BindName() string
	Bound(name string) Pattern // copy with bind name set
	Variant() string
	String() string
	isPattern()
}

type base struct {
	bind string
}

func (b base) BindName() string { return b.bind }
func (base) isPattern()         {}

// --- Leaf patterns ---------------------------------------------------------

// ExactPattern matches values strictly equal to a literal.
type ExactPattern struct {
	base
	value any
}

// Exact creates a pattern for literal v.
func Exact(v any) ExactPattern {
	return ExactPattern{value: v}
}

// Value is the literal.
func (p ExactPattern) Value() any { return p.value }

func (p ExactPattern) Bound(name string) Pattern {
	p.bind = name
	return p
}

func (p ExactPattern) Variant() string { return "exact" }
func (p ExactPattern) String() string  { return value.Repr(p.value) }

// WildcardPattern matches anything.
type WildcardPattern struct {
	base
}

// Wildcard creates a wildcard, which may be bound later.
func Wildcard() WildcardPattern {
	return WildcardPattern{}
}

func (p WildcardPattern) Bound(name string) Pattern {
	p.bind = name
	return p
}

func (p WildcardPattern) Variant() string { return "wildcard" }

func (p WildcardPattern) String() string {
	if p.bind != "" {
		return p.bind
	}
	return "_"
}

// TypePattern matches values belonging to a type.
type TypePattern struct {
	base
	spec typecheck.Spec
}

// Type creates a type-check pattern.
func Type(spec typecheck.Spec) TypePattern {
	assertThat(spec != nil, "type pattern without type spec")
	return TypePattern{spec: spec}
}

// Spec is the type specification.
func (p TypePattern) Spec() typecheck.Spec { return p.spec }

func (p TypePattern) Bound(name string) Pattern {
	p.bind = name
	return p
}

func (p TypePattern) Variant() string { return "type" }
func (p TypePattern) String() string  { return p.spec.Describe() }

// RegexPattern matches strings against a regular expression.
type RegexPattern struct {
	base
	re regex.Compiled
}

// Regex creates a regex pattern.
func Regex(re regex.Compiled) RegexPattern {
	assertThat(re != nil, "regex pattern without expression")
	return RegexPattern{re: re}
}

func (p RegexPattern) Bound(name string) Pattern {
	p.bind = name
	return p
}

func (p RegexPattern) Variant() string { return "regex" }
func (p RegexPattern) String() string  { return p.re.String() }

// CallbackPattern matches if a predicate returns a truthy value.
type CallbackPattern struct {
	base
	fn bind.Callable
}

// Callback creates a predicate pattern.
func Callback(fn bind.Callable) CallbackPattern {
	assertThat(fn.IsValid(), "callback pattern without function")
	return CallbackPattern{fn: fn}
}

// Func is the predicate.
func (p CallbackPattern) Func() bind.Callable { return p.fn }

func (p CallbackPattern) Bound(name string) Pattern {
	p.bind = name
	return p
}

func (p CallbackPattern) Variant() string { return "callback" }
func (p CallbackPattern) String() string  { return p.fn.String() }

// RestPattern is the variable-length part of a list pattern.
type RestPattern struct {
	base
}

// Rest creates an unbound rest element. Bind it to capture the elements.
func Rest() RestPattern {
	return RestPattern{}
}

func (p RestPattern) Bound(name string) Pattern {
	p.bind = name
	return p
}

func (p RestPattern) Variant() string { return "rest" }
func (p RestPattern) String() string  { return "*" + p.bind }

// DestructurePattern replays an access path on the value. An optional inner
// pattern is matched against the value found at the end of the path.
type DestructurePattern struct {
	base
	path  access.Path
	inner Pattern
}

// Destructure creates a pattern for path.
func Destructure(path access.Path, inner ...Pattern) DestructurePattern {
	d := DestructurePattern{path: path}
	if len(inner) > 0 {
		d.inner = inner[0]
	}
	return d
}

// Path is the recorded access path.
func (p DestructurePattern) Path() access.Path { return p.path }

// Inner is the pattern for the destructured value, or nil.
func (p DestructurePattern) Inner() Pattern { return p.inner }

// BindName is the explicit bind name or the bind name of the path.
func (p DestructurePattern) BindName() string {
	if p.bind != "" {
		return p.bind
	}
	return p.path.BindName()
}

func (p DestructurePattern) Bound(name string) Pattern {
	p.bind = name
	return p
}

func (p DestructurePattern) Variant() string { return "destructure" }

func (p DestructurePattern) String() string {
	s := "at" + p.path.String()
	if p.inner != nil {
		s += "(" + p.inner.String() + ")"
	}
	return s
}

// --- Composite patterns ----------------------------------------------------

// Connective combines the patterns of a group.
type Connective uint8

const (
	And Connective = iota
	Or
)

// GroupPattern is a conjunction or disjunction of patterns.
type GroupPattern struct {
	base
	conn     Connective
	patterns []Pattern
	literals bool // Or over unbound exact patterns only
}

// All creates a conjunction: every pattern has to match.
func All(ps ...Pattern) GroupPattern {
	return group(And, ps)
}

// OneOf creates a disjunction: the first matching pattern wins.
func OneOf(ps ...Pattern) GroupPattern {
	return group(Or, ps)
}

func group(conn Connective, ps []Pattern) GroupPattern {
	assertThat(len(ps) > 0, "empty pattern group")
	g := GroupPattern{conn: conn, patterns: append([]Pattern(nil), ps...)}
	if conn == Or {
		g.literals = true
		for _, p := range ps {
			if e, ok := p.(ExactPattern); !ok || e.bind != "" {
				g.literals = false
				break
			}
		}
	}
	return g
}

// Connective tells if the group is a conjunction or disjunction.
func (p GroupPattern) Connective() Connective { return p.conn }

// Patterns returns the grouped patterns.
func (p GroupPattern) Patterns() []Pattern { return append([]Pattern(nil), p.patterns...) }

func (p GroupPattern) Bound(name string) Pattern {
	p.bind = name
	return p
}

func (p GroupPattern) Variant() string { return "group" }

func (p GroupPattern) String() string {
	conn := "all"
	if p.conn == Or {
		conn = "any"
	}
	return conn + "(" + join(p.patterns) + ")"
}

// ListPattern matches sequences element by element. At most one element may
// be a rest pattern. In mapped mode the sub-patterns are applied to the whole
// value, one after the other, and the value is expected to be map-like.
type ListPattern struct {
	base
	patterns []Pattern
	rest     int // index of the rest pattern or -1
	after    int // number of patterns after the rest pattern
	mapped   bool
}

// ErrMultipleRest is returned for list patterns with more than one rest element.
var ErrMultipleRest = errors.New("only one rest pattern allowed in a list")

// List creates a list pattern.
func List(ps ...Pattern) (ListPattern, error) {
	l := ListPattern{patterns: append([]Pattern(nil), ps...), rest: -1}
	for i, p := range ps {
		if _, ok := p.(RestPattern); ok {
			if l.rest >= 0 {
				return ListPattern{}, ErrMultipleRest
			}
			l.rest = i
			l.after = len(ps) - i - 1
		}
	}
	return l, nil
}

// MustList is like List, but panics on errors.
func MustList(ps ...Pattern) ListPattern {
	l, err := List(ps...)
	if err != nil {
		panic(err.Error())
	}
	return l
}

// Mapped creates a list pattern in mapped mode.
func Mapped(entries ...Pattern) ListPattern {
	return ListPattern{patterns: append([]Pattern(nil), entries...), rest: -1, mapped: true}
}

// Patterns returns the element patterns.
func (p ListPattern) Patterns() []Pattern { return append([]Pattern(nil), p.patterns...) }

// RestIndex is the position of the rest pattern, or -1.
func (p ListPattern) RestIndex() int { return p.rest }

// LeaveAfterRest is the number of elements the rest pattern leaves for the
// patterns following it.
func (p ListPattern) LeaveAfterRest() int { return p.after }

// IsMapped tells if the list is in mapped mode.
func (p ListPattern) IsMapped() bool { return p.mapped }

func (p ListPattern) Bound(name string) Pattern {
	p.bind = name
	return p
}

func (p ListPattern) Variant() string { return "list" }

func (p ListPattern) String() string {
	if p.mapped {
		return "{" + join(p.patterns) + "}"
	}
	return "[" + join(p.patterns) + "]"
}

// AssocPattern matches an entry of a map-like value. An exact key pattern
// is looked up directly. A wildcard key pattern makes the pattern search by
// value. Any other key pattern searches the keys. The value pattern may be nil.
type AssocPattern struct {
	base
	key Pattern
	val Pattern
}

// Assoc creates an entry pattern.
func Assoc(key, val Pattern) AssocPattern {
	assertThat(key != nil, "entry pattern without key")
	return AssocPattern{key: key, val: val}
}

// Key is the key pattern.
func (p AssocPattern) Key() Pattern { return p.key }

// Value is the value pattern, or nil.
func (p AssocPattern) Value() Pattern { return p.val }

func (p AssocPattern) Bound(name string) Pattern {
	p.bind = name
	return p
}

func (p AssocPattern) Variant() string { return "assoc" }

func (p AssocPattern) String() string {
	if p.val == nil {
		return p.key.String()
	}
	return p.key.String() + ": " + p.val.String()
}

// Property is a named property of an object pattern. Pattern may be nil, in
// which case the property only has to exist. If Capture is set, the value of
// the property is captured under its name.
type Property struct {
	Name    string
	Pattern Pattern
	Capture bool
}

// ObjectPattern matches objects of a type by their properties.
type ObjectPattern struct {
	base
	spec  typecheck.Spec
	props []Property
}

// Object creates an object pattern. spec may be nil to accept any type.
func Object(spec typecheck.Spec, props ...Property) ObjectPattern {
	return ObjectPattern{spec: spec, props: append([]Property(nil), props...)}
}

// Spec is the type of the object, or nil.
func (p ObjectPattern) Spec() typecheck.Spec { return p.spec }

// Properties returns the property patterns.
func (p ObjectPattern) Properties() []Property { return append([]Property(nil), p.props...) }

func (p ObjectPattern) Bound(name string) Pattern {
	p.bind = name
	return p
}

func (p ObjectPattern) Variant() string { return "object" }

func (p ObjectPattern) String() string {
	props := make([]string, len(p.props))
	for i, prop := range p.props {
		props[i] = prop.Name
		if prop.Pattern != nil {
			props[i] += ": " + prop.Pattern.String()
		}
	}
	name := "object"
	if p.spec != nil {
		name = p.spec.Describe()
	}
	return name + "{" + strings.Join(props, ", ") + "}"
}

func join(ps []Pattern) string {
	s := make([]string, len(ps))
	for i, p := range ps {
		s[i] = p.String()
	}
	return strings.Join(s, ", ")
}
