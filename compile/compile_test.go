package compile

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/fpmatch/access"
	"github.com/npillmayer/fpmatch/bind"
	"github.com/npillmayer/fpmatch/capture"
	"github.com/npillmayer/fpmatch/pattern"
	"github.com/npillmayer/fpmatch/typecheck"
)

var machine = pattern.NewMachine(access.Strict)

func mustCompile(t *testing.T, ctx *BuildContext, binds []string, args ...any) pattern.Pattern {
	t.Helper()
	p, err := ctx.Compile(args, binds, false)
	if err != nil {
		t.Fatalf("cannot compile %v: %v", args, err)
	}
	return p
}

func TestCompileErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch.compile")
	defer teardown()
	//
	ctx := NewContext()
	for i, args := range [][]any{
		{},
		{[]any{"*a", 1, "*b"}},
		{"/(unclosed/"},
		{ctx.Key("a")},
		{Prop("x")},
		{OneOf()},
		{"Point", []any{42}},
		{"*"},
		{"*rest"},
		{pattern.Rest()},
		{OneOf("*", 1)},
		{As("r", "*")},
		{map[string]any{"k": "*v"}},
		{"Point", []any{Prop("y", "*")}},
		{[]any{[]any{1}, OneOf("*t", 2)}},
	} {
		_, err := ctx.Compile(args, nil, false)
		if err == nil || !IsBuildError(err) {
			t.Errorf("%d: expected build error for %v, have %v", i, args, err)
		}
	}
	if _, err := ctx.Compile([]any{1, 2}, nil, true); err == nil {
		t.Errorf("expected exact pattern with 2 arguments to fail")
	}
}

func TestCompileStrings(t *testing.T) {
	ctx := NewContext()
	binds := []string{"n"}
	cases := []struct {
		spec    string
		variant string
		bind    string
	}{
		{"", "exact", ""},
		{"_", "wildcard", ""},
		{"n", "wildcard", "n"},
		{"test1@_", "wildcard", "test1"},
		{"*", "rest", ""},
		{"*tail", "rest", "tail"},
		{"/^a+$/", "regex", ""},
		{"foo", "exact", ""},
		{"m", "exact", ""},
	}
	for _, c := range cases {
		var p pattern.Pattern
		if c.variant == "rest" {
			l := mustCompile(t, ctx, binds, []any{c.spec}).(pattern.ListPattern)
			p = l.Patterns()[0]
		} else {
			p = mustCompile(t, ctx, binds, c.spec)
		}
		if p.Variant() != c.variant || p.BindName() != c.bind {
			t.Errorf("expected %q to compile to %s(%s), is %s(%s)", c.spec, c.variant, c.bind, p.Variant(), p.BindName())
		}
	}
}

func TestCompileScalars(t *testing.T) {
	ctx := NewContext()
	for _, v := range []any{nil, true, 0, 3.14, uint8(7)} {
		p := mustCompile(t, ctx, nil, v)
		if _, ok := p.(pattern.ExactPattern); !ok {
			t.Errorf("expected %v to compile to an exact pattern, is %s", v, p.Variant())
		}
	}
}

func TestCompileGroups(t *testing.T) {
	ctx := NewContext()
	or := mustCompile(t, ctx, nil, 1, 3, 5, "foo").(pattern.GroupPattern)
	if or.Connective() != pattern.Or {
		t.Errorf("expected literals to build a disjunction")
	}
	and := mustCompile(t, ctx, nil, typecheck.Int, func(n int) bool { return n > 0 }).(pattern.GroupPattern)
	if and.Connective() != pattern.And {
		t.Errorf("expected non-literals to build a conjunction")
	}
	choice := mustCompile(t, ctx, nil, OneOf(typecheck.Int, typecheck.Float)).(pattern.GroupPattern)
	if choice.Connective() != pattern.Or {
		t.Errorf("expected OneOf to build a disjunction")
	}
	if _, err := machine.Match(choice, 2.5, capture.Empty()); err != nil {
		t.Errorf("expected float to match int|float, error is %v", err)
	}
}

type Point struct {
	X, Y int
}

func TestCompileObject(t *testing.T) {
	ctx := NewContext()
	p := mustCompile(t, ctx, []string{"x"}, "Point", []any{"x", Prop("y", 0)})
	obj, ok := p.(pattern.ObjectPattern)
	if !ok {
		t.Fatalf("expected object pattern, is %s", p.Variant())
	}
	props := obj.Properties()
	if len(props) != 2 || !props[0].Capture || props[1].Capture || props[1].Pattern == nil {
		t.Errorf("unexpected properties %+v", props)
	}
	caps, err := machine.Match(p, Point{X: 3, Y: 0}, capture.Empty())
	if err != nil {
		t.Fatalf("expected point to match, error is %v", err)
	}
	if x, _ := caps.Named("x"); x != 3 {
		t.Errorf("expected x to be captured, have %s", caps)
	}
	if q := mustCompile(t, ctx, nil, typecheck.Of[Point](), []any{}); q.Variant() != "type" {
		t.Errorf("expected empty structure to build a type check, is %s", q.Variant())
	}
	m := mustCompile(t, ctx, nil, "Point", map[string]any{"y": 0})
	if _, err = machine.Match(m, Point{X: 1}, capture.Empty()); err != nil {
		t.Errorf("expected keyed properties to match, error is %v", err)
	}
}

func TestCompileKeyed(t *testing.T) {
	ctx := NewContext()
	p := mustCompile(t, ctx, []string{"name"}, map[string]any{
		"name": "_",
		"age":  typecheck.Int,
	})
	l, ok := p.(pattern.ListPattern)
	if !ok || !l.IsMapped() {
		t.Fatalf("expected mapped list, is %s", pattern.Dump(p))
	}
	caps, err := machine.Match(p, map[string]any{"name": "Frank", "age": 42}, capture.Empty())
	if err != nil {
		t.Fatalf("expected record to match, error is %v", err)
	}
	if v, _ := caps.Named("name"); v != "Frank" || caps.Len() != 1 {
		t.Errorf("expected only name to be captured, have %s", caps)
	}
}

func TestKeyHandles(t *testing.T) {
	ctx := NewContext()
	hunter := ctx.Key().As("hunter")
	prey := ctx.Key().As("prey")
	p := mustCompile(t, ctx, nil, map[any]any{hunter: "wolf", prey: "sheep"})
	t.Logf("\n%s", pattern.Dump(p))
	caps, err := machine.Match(p, map[string]string{"Peter": "wolf", "Paul": "sheep"}, capture.Empty())
	if err != nil {
		t.Fatalf("expected roles to be found, error is %v", err)
	}
	h, _ := caps.Named("hunter")
	pr, _ := caps.Named("prey")
	if h != "Peter" || pr != "Paul" {
		t.Errorf("expected Peter to hunt Paul, have %s", caps)
	}
	age := ctx.Key("age").As("a").Val(typecheck.Int)
	q := mustCompile(t, ctx, nil, map[any]any{age: nil})
	caps, err = machine.Match(q, map[string]any{"age": 42}, capture.Empty())
	if a, _ := caps.Named("a"); err != nil || a != "age" {
		t.Errorf("expected key 'age' to be captured, have %s (%v)", caps, err)
	}
	if _, err = machine.Match(q, map[string]any{"age": "old"}, capture.Empty()); err == nil {
		t.Errorf("expected default value pattern to reject a string")
	}
}

func TestWhenHandles(t *testing.T) {
	ctx := NewContext()
	positive := ctx.When(typecheck.Int, func(n int) bool { return n > 0 })
	p1 := mustCompile(t, ctx, nil, []any{positive, positive})
	if _, err := machine.Match(p1, []int{1, 2}, capture.Empty()); err != nil {
		t.Errorf("expected [1, 2] to match, error is %v", err)
	}
	if _, err := machine.Match(p1, []int{1, -2}, capture.Empty()); err == nil {
		t.Errorf("expected [1, -2] not to match")
	}
	other := NewContext()
	if _, err := other.Compile([]any{positive}, nil, false); !IsBuildError(err) {
		t.Errorf("expected foreign handle to be rejected, have %v", err)
	}
}

func TestCompileWithReflection(t *testing.T) {
	names := bind.ReflectionFunc(func(any) []string { return []string{"h"} })
	ctx := NewContext(WithReflection(names))
	p := mustCompile(t, ctx, []string{"h"}, []any{"h", "*", func(h string) bool { return h == "x" }})
	caps, err := machine.Match(p, []any{"x", 1, 2, "y"}, capture.Empty())
	if err != nil {
		t.Errorf("expected predicate to see h, error is %v", err)
	}
	if caps.Len() != 1 {
		t.Errorf("expected only h to be captured, have %s", caps)
	}
}

func TestPlaceholders(t *testing.T) {
	ctx := NewContext()
	p := mustCompile(t, ctx, nil, []any{As("first", typecheck.Int), Any, Var("last")})
	caps, err := machine.Match(p, []any{1, "x", true}, capture.Empty())
	if err != nil {
		t.Fatalf("expected list to match, error is %v", err)
	}
	if f, _ := caps.Named("first"); f != 1 {
		t.Errorf("expected first to be 1, have %s", caps)
	}
	if l, _ := caps.Named("last"); l != true {
		t.Errorf("expected last to be true, have %s", caps)
	}
	d := mustCompile(t, ctx, nil, access.At().Field("X"))
	caps, _ = machine.Match(d, Point{X: 9}, capture.Empty())
	if x, _ := caps.Named("X"); x != 9 {
		t.Errorf("expected destructured X to be 9, have %s", caps)
	}
}

func TestRestOnlyInLists(t *testing.T) {
	ctx := NewContext()
	p := mustCompile(t, ctx, nil, []any{1, []any{"*", 3}, "*tail"})
	caps, err := machine.Match(p, []any{1, []any{2, 2, 3}, 4, 5}, capture.Empty())
	if err != nil {
		t.Fatalf("expected nested rests to match, error is %v", err)
	}
	if tail, _ := caps.Named("tail"); len(tail.([]any)) != 2 {
		t.Errorf("expected tail [4 5], have %s", caps)
	}
	if _, err = machine.Match(pattern.Rest(), 5, capture.Empty()); err == nil || pattern.IsNoMatch(err) {
		t.Errorf("expected a rest outside of a list to be an error, have %v", err)
	}
}
