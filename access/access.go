/*
Package access records access paths and replays them against values.

A Path is a sequence of steps (property access, index access, method call)
written down once and applied later, during matching:

    p := access.At().Field("address").Field("city")   // ->address->city
    q := access.At("first").Field("names").Index(0)    // ->names[0]

Paths are immutable; every step returns an extended copy. The bind name of
a path is given explicitly with At or As; otherwise it is the name of the
last property step ("city" in the first example).

Replay applies the steps under a Policy. Strict fails on the first step which
does not apply. Soft resolves missing properties to nil and carries on, but
still fails for missing indexes and methods.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package access

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/fpmatch/result"
	"github.com/npillmayer/fpmatch/value"
)

// tracer traces with key 'fpmatch.access'.
func tracer() tracing.Trace {
	return tracing.Select("fpmatch.access")
}

// StepKind tells the kind of a step.
type StepKind uint8

const (
	GetField StepKind = iota
	GetIndex
	CallMethod
)

// Step is a single recorded access.
type Step struct {
	Kind StepKind
	Name string // property or method name
	Key  any    // index for GetIndex
	Args []any  // arguments for CallMethod
}

func (s Step) String() string {
	switch s.Kind {
	case GetIndex:
		return "[" + value.Repr(s.Key) + "]"
	case CallMethod:
		args := make([]string, len(s.Args))
		for i, a := range s.Args {
			args[i] = value.Repr(a)
		}
		return "->" + s.Name + "(" + strings.Join(args, ", ") + ")"
	}
	return "->" + s.Name
}

// Path is an immutable sequence of steps.
type Path struct {
	bind  string
	steps []Step
}

// At starts an empty path, optionally with a bind name.
func At(bind ...string) Path {
	if len(bind) > 0 {
		return Path{bind: bind[0]}
	}
	return Path{}
}

func (p Path) extend(s Step) Path {
	steps := make([]Step, len(p.steps), len(p.steps)+1)
	copy(steps, p.steps)
	return Path{bind: p.bind, steps: append(steps, s)}
}

// Field appends a property access.
func (p Path) Field(name string) Path {
	return p.extend(Step{Kind: GetField, Name: name})
}

// Index appends an index or key access.
func (p Path) Index(key any) Path {
	return p.extend(Step{Kind: GetIndex, Key: key})
}

// Call appends a method call.
func (p Path) Call(name string, args ...any) Path {
	return p.extend(Step{Kind: CallMethod, Name: name, Args: append([]any(nil), args...)})
}

// As sets the bind name.
func (p Path) As(name string) Path {
	return Path{bind: name, steps: p.steps}
}

// BindName is the explicit bind name or, lacking one, the name of the last
// property step.
func (p Path) BindName() string {
	if p.bind != "" {
		return p.bind
	}
	for i := len(p.steps) - 1; i >= 0; i-- {
		if p.steps[i].Kind == GetField {
			return p.steps[i].Name
		}
	}
	return ""
}

// Steps returns a copy of the steps.
func (p Path) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// Len is the number of steps.
func (p Path) Len() int {
	return len(p.steps)
}

func (p Path) String() string {
	var b strings.Builder
	for _, s := range p.steps {
		b.WriteString(s.String())
	}
	return b.String()
}

// Replay applies the path to v.
func (p Path) Replay(v any, policy Policy) result.Result[any] {
	return Replay(p.steps, v, policy)
}

// --- Replay ----------------------------------------------------------------

// Policy decides how replay treats steps which do not apply.
type Policy uint8

const (
	Strict Policy = iota // every inapplicable step fails
	Soft                 // missing properties resolve to nil
)

func (p Policy) String() string {
	if p == Soft {
		return "soft"
	}
	return "strict"
}

// DestructureError reports the step at which a replay failed.
type DestructureError struct {
	Step  Step
	Index int // position of the step in the path
	Value any // value the step was applied to
	Cause error
}

func (e *DestructureError) Error() string {
	msg := fmt.Sprintf("cannot apply %s to %s", e.Step, value.Describe(e.Value))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DestructureError) Unwrap() error {
	return e.Cause
}

// Replay applies steps to v, one after the other.
func Replay(steps []Step, v any, policy Policy) result.Result[any] {
	cur := v
	for i, s := range steps {
		fail := func(cause error) result.Result[any] {
			tracer().Debugf("replay of %s failed at step %d", s, i)
			return result.Err[any](&DestructureError{Step: s, Index: i, Value: cur, Cause: cause})
		}
		switch s.Kind {
		case GetField:
			next, ok := value.Field(cur, s.Name)
			if !ok {
				if policy != Soft {
					return fail(nil)
				}
				next = nil
			}
			cur = next
		case GetIndex:
			next, ok := value.Lookup(cur, s.Key)
			if !ok {
				return fail(nil)
			}
			cur = next
		case CallMethod:
			next, found, err := value.Method(cur, s.Name, s.Args)
			if !found || err != nil {
				return fail(err)
			}
			cur = next
		}
	}
	return result.Ok(cur)
}
