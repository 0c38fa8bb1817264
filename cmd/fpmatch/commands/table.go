package commands

import (
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/npillmayer/fpmatch"
	"github.com/npillmayer/fpmatch/access"
	"github.com/npillmayer/fpmatch/bind"
	"github.com/npillmayer/fpmatch/compile"
	"github.com/npillmayer/fpmatch/typecheck"
	"github.com/npillmayer/fpmatch/value"
)

// Table is a case table as read from YAML.
//
// Pattern specs are plain YAML values, with a few mappings standing for
// spec tokens:
//
//     {type: int}                 type check, by kind or type name
//     {as: n, when: [...]}        sub-pattern captured as n
//     {oneOf: [...]}              alternatives
//     {prop: y, when: [...]}      property of an object pattern
//
// Guards compare two captures, e.g. {equal: [h, t]}. Results are YAML values,
// or one of {ret: "a, b"}, {continue: m}, {cases: [...]} and {value: x}.
type Table struct {
	Binds  []string   `yaml:"binds"`
	Policy string     `yaml:"policy"`
	Cases  []CaseSpec `yaml:"cases"`
}

// CaseSpec is a single case of a table.
type CaseSpec struct {
	When    []any                 `yaml:"when"`
	Exact   yaml.Node             `yaml:"exact"`
	Default bool                  `yaml:"default"`
	If      []map[string][]string `yaml:"if"`
	Then    yaml.Node             `yaml:"then"`
	Else    yaml.Node             `yaml:"else"`
	Binds   []string              `yaml:"binds"`
}

// ParseTable reads a case table.
func ParseTable(src []byte) (*Table, error) {
	t := &Table{}
	if err := yaml.Unmarshal(src, t); err != nil {
		return nil, errors.Wrap(err, "cannot parse case table")
	}
	if len(t.Cases) == 0 {
		return nil, errors.New("case table has no cases")
	}
	return t, nil
}

// Matcher compiles the table.
func (t *Table) Matcher() (*fpmatch.Matcher, error) {
	policy := access.Strict
	switch t.Policy {
	case "", "strict":
	case "soft":
		policy = access.Soft
	default:
		return nil, errors.Errorf("unknown destructure policy %q", t.Policy)
	}
	cases, err := buildCases(t.Cases, t.Binds)
	if err != nil {
		return nil, err
	}
	return fpmatch.New(cases, fpmatch.DestructurePolicy(policy))
}

func buildCases(specs []CaseSpec, binds []string) ([]fpmatch.Case, error) {
	cases := make([]fpmatch.Case, len(specs))
	for i, spec := range specs {
		c, err := spec.build(binds)
		if err != nil {
			return nil, errors.Wrapf(err, "case %d", i+1)
		}
		cases[i] = c
	}
	return cases, nil
}

func (spec CaseSpec) build(binds []string) (fpmatch.Case, error) {
	var c fpmatch.Case
	switch {
	case spec.Exact.Kind != 0:
		var v any
		if err := spec.Exact.Decode(&v); err != nil {
			return c, err
		}
		c = fpmatch.Is(v)
	case len(spec.When) > 0:
		args, err := patternArgs(spec.When)
		if err != nil {
			return c, err
		}
		c = fpmatch.When(args...)
	case !spec.Default:
		return c, errors.New("case needs one of 'when', 'exact' or 'default'")
	}
	c = c.Bind(binds...).Bind(spec.Binds...)
	for _, g := range spec.If {
		guard, err := buildGuard(g)
		if err != nil {
			return c, err
		}
		c = c.If(guard)
	}
	res, err := buildResult(&spec.Then)
	if err != nil {
		return c, err
	}
	c = c.Then(res)
	if spec.Else.Kind != 0 {
		els, err := buildResult(&spec.Else)
		if err != nil {
			return c, err
		}
		c = c.Otherwise(els)
	}
	return c, nil
}

// --- Patterns --------------------------------------------------------------

func patternArgs(xs []any) ([]any, error) {
	args := make([]any, len(xs))
	for i, x := range xs {
		a, err := patternArg(x)
		if err != nil {
			return nil, err
		}
		args[i] = a
	}
	return args, nil
}

func patternArg(x any) (any, error) {
	switch x := x.(type) {
	case []any:
		return patternArgs(x)
	case map[string]any:
		return token(x)
	}
	return x, nil
}

func token(m map[string]any) (any, error) {
	when := func() ([]any, error) {
		args, ok := m["when"].([]any)
		if !ok {
			return nil, nil
		}
		return patternArgs(args)
	}
	switch {
	case len(m) == 1 && m["type"] != nil:
		name, ok := m["type"].(string)
		if !ok {
			return nil, errors.Errorf("type name must be a string, is %s", value.Describe(m["type"]))
		}
		return typecheck.Named(name), nil
	case len(m) == 1 && m["oneOf"] != nil:
		alts, ok := m["oneOf"].([]any)
		if !ok {
			return nil, errors.New("oneOf needs a list of alternatives")
		}
		args, err := patternArgs(alts)
		return compile.OneOf(args...), err
	case m["as"] != nil && len(m) <= 2:
		name, _ := m["as"].(string)
		args, err := when()
		return compile.As(name, args...), err
	case m["prop"] != nil && len(m) <= 2:
		name, _ := m["prop"].(string)
		args, err := when()
		return compile.Prop(name, args...), err
	}
	// a keyed structure
	out := make(map[string]any, len(m))
	for k, v := range m {
		a, err := patternArg(v)
		if err != nil {
			return nil, err
		}
		out[k] = a
	}
	return out, nil
}

// --- Guards ----------------------------------------------------------------

var comparisons = map[string]func(a, b any) bool{
	"equal":    value.Equal,
	"notEqual": func(a, b any) bool { return !value.Equal(a, b) },
	"less":     value.Less,
	"greater":  func(a, b any) bool { return value.Less(b, a) },
}

func buildGuard(g map[string][]string) (bind.Callable, error) {
	if len(g) != 1 {
		return bind.Callable{}, errors.Errorf("guard needs exactly one comparison, has %d", len(g))
	}
	for op, operands := range g {
		cmp, ok := comparisons[op]
		if !ok {
			return bind.Callable{}, errors.Errorf("unknown comparison %q, use one of %v", op, comparisonNames())
		}
		if len(operands) != 2 {
			return bind.Callable{}, errors.Errorf("%s compares 2 captures, %d given", op, len(operands))
		}
		return bind.New(func(a, b any) bool { return cmp(a, b) }, operands...)
	}
	panic("unreachable")
}

func comparisonNames() []string {
	names := make([]string, 0, len(comparisons))
	for n := range comparisons {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// --- Results ---------------------------------------------------------------

func buildResult(n *yaml.Node) (any, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind == yaml.MappingNode && len(n.Content) == 2 {
		key, val := n.Content[0].Value, n.Content[1]
		switch key {
		case "ret":
			return fpmatch.Ret(val.Value), nil
		case "continue":
			return fpmatch.Continue(val.Value), nil
		case "cases":
			var specs []CaseSpec
			if err := val.Decode(&specs); err != nil {
				return nil, err
			}
			cases, err := buildCases(specs, nil)
			if err != nil {
				return nil, err
			}
			return fpmatch.Nested(cases...), nil
		case "value":
			var v any
			err := val.Decode(&v)
			return fpmatch.Value(v), err
		}
	}
	var v any
	err := n.Decode(&v)
	return fpmatch.Value(v), err
}
