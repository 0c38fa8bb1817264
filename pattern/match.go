package pattern

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"

	"github.com/npillmayer/fpmatch/access"
	"github.com/npillmayer/fpmatch/bind"
	"github.com/npillmayer/fpmatch/capture"
	"github.com/npillmayer/fpmatch/value"
)

// ErrNoMatch signals an ordinary non-match.
var ErrNoMatch = errors.New("no match")

// IsNoMatch is true for errors signalling an ordinary non-match.
func IsNoMatch(err error) bool {
	return errors.Is(err, ErrNoMatch)
}

// ErrRestOutsideList is raised for a rest pattern which is not an element of
// a list pattern.
var ErrRestOutsideList = errors.New("rest pattern outside of list")

// MismatchError is a non-match with an explanation, e.g. a failed
// destructuring step. It counts as ErrNoMatch.
type MismatchError struct {
	Cause error
}

func (e *MismatchError) Error() string {
	return "no match: " + e.Cause.Error()
}

func (e *MismatchError) Unwrap() error {
	return e.Cause
}

// Is makes a MismatchError count as ErrNoMatch.
func (e *MismatchError) Is(target error) bool {
	return target == ErrNoMatch
}

// CallbackError is raised if the predicate of a callback pattern could not be
// called or failed.
type CallbackError struct {
	Func bind.Callable
	Err  error
}

func (e *CallbackError) Error() string {
	return e.Err.Error()
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// Machine matches patterns against values.
type Machine struct {
	policy access.Policy
}

// NewMachine creates a matching machine with a destructuring policy.
func NewMachine(policy access.Policy) Machine {
	return Machine{policy: policy}
}

// Policy is the destructuring policy of m.
func (m Machine) Policy() access.Policy {
	return m.policy
}

// Match matches p against v. caps are the captures made so far; they are
// visible to predicates. Match returns the captures p produced.
func (m Machine) Match(p Pattern, v any, caps capture.Set) (capture.Set, error) {
	delta, err := m.eval(p, v, caps)
	if err != nil {
		return capture.Empty(), err
	}
	switch p.(type) {
	case RestPattern, AssocPattern, DestructurePattern:
		// these bind their own values
	default:
		if name := p.BindName(); name != "" {
			delta = delta.Bind(name, v)
		}
	}
	return delta, nil
}

func (m Machine) eval(p Pattern, v any, caps capture.Set) (capture.Set, error) {
	none := capture.Empty()
	switch p := p.(type) {
	case ExactPattern:
		if value.Equal(p.value, v) {
			return none, nil
		}
		return none, ErrNoMatch
	case WildcardPattern:
		return none, nil
	case TypePattern:
		if p.spec.Check(v) {
			return none, nil
		}
		return none, ErrNoMatch
	case RegexPattern:
		return m.matchRegex(p, v)
	case CallbackPattern:
		return m.matchCallback(p, v, caps)
	case GroupPattern:
		if p.conn == Or {
			return m.matchAny(p, v, caps)
		}
		return m.matchAll(p, v, caps)
	case ListPattern:
		if p.mapped {
			return m.matchEach(p.patterns, v, caps)
		}
		return m.matchList(p, v, caps)
	case RestPattern:
		return none, ErrRestOutsideList
	case AssocPattern:
		return m.matchAssoc(p, v, caps)
	case ObjectPattern:
		return m.matchObject(p, v, caps)
	case DestructurePattern:
		return m.matchDestructure(p, v, caps)
	}
	panic(fmt.Sprintf("pattern: unknown pattern variant %T", p))
}

func (m Machine) matchRegex(p RegexPattern, v any) (capture.Set, error) {
	none := capture.Empty()
	if value.KindOf(v) != value.String {
		return none, ErrNoMatch
	}
	g, ok := p.re.Match(reflect.ValueOf(v).String()).Get()
	if !ok {
		return none, ErrNoMatch
	}
	caps := none
	if p.re.HasNamedGroups() {
		for _, n := range g.Named {
			caps = caps.Bind(n.Name, n.Value)
		}
	} else if len(g.Positional) > 0 {
		caps = caps.Append(g.Positional)
	}
	return caps, nil
}

func (m Machine) matchCallback(p CallbackPattern, v any, caps capture.Set) (capture.Set, error) {
	r, err := bind.Check(p.fn, caps, v)
	if err != nil {
		tracer().Debugf("predicate %s failed: %v", p.fn, err)
		return capture.Empty(), &CallbackError{Func: p.fn, Err: err}
	}
	if !value.Truthy(r) {
		return capture.Empty(), ErrNoMatch
	}
	return capture.Empty(), nil
}

// matchAll matches every pattern in order, each one seeing the captures of its
// predecessors. On collisions, later captures overwrite earlier ones.
func (m Machine) matchAll(p GroupPattern, v any, caps capture.Set) (capture.Set, error) {
	delta, running := capture.Empty(), caps
	for _, sub := range p.patterns {
		d, err := m.Match(sub, v, running)
		if err != nil {
			return capture.Empty(), err
		}
		delta, running = delta.Merge(d), running.Merge(d)
	}
	return delta, nil
}

func (m Machine) matchAny(p GroupPattern, v any, caps capture.Set) (capture.Set, error) {
	if p.literals {
		for _, sub := range p.patterns {
			if value.Equal(sub.(ExactPattern).value, v) {
				return capture.Empty(), nil
			}
		}
		return capture.Empty(), ErrNoMatch
	}
	var abnormal error
	for _, sub := range p.patterns {
		d, err := m.Match(sub, v, caps)
		if err == nil {
			return d, nil
		}
		if !IsNoMatch(err) && abnormal == nil {
			abnormal = err
		}
	}
	if abnormal != nil {
		return capture.Empty(), abnormal
	}
	return capture.Empty(), ErrNoMatch
}

// matchEach applies every pattern to the whole value.
func (m Machine) matchEach(ps []Pattern, v any, caps capture.Set) (capture.Set, error) {
	delta, running := capture.Empty(), caps
	for _, sub := range ps {
		d, err := m.Match(sub, v, running)
		if err != nil {
			return capture.Empty(), err
		}
		delta, running = delta.Merge(d), running.Merge(d)
	}
	return delta, nil
}

func (m Machine) matchList(p ListPattern, v any, caps capture.Set) (capture.Set, error) {
	none := capture.Empty()
	elems, ok := value.Elements(v)
	if !ok {
		return none, ErrNoMatch
	}
	if p.rest < 0 && len(elems) != len(p.patterns) {
		return none, ErrNoMatch
	}
	if p.rest >= 0 && len(elems) < len(p.patterns)-1 {
		return none, ErrNoMatch
	}
	delta, running := none, caps
	i := 0
	for j, sub := range p.patterns {
		if j == p.rest {
			end := len(elems) - p.after
			if name := sub.BindName(); name != "" {
				run := append([]any{}, elems[i:end]...)
				delta, running = delta.Bind(name, run), running.Bind(name, run)
			}
			i = end
			continue
		}
		d, err := m.Match(sub, elems[i], running)
		if err != nil {
			return none, err
		}
		delta, running = delta.Merge(d), running.Merge(d)
		i++
	}
	return delta, nil
}

func (m Machine) matchAssoc(p AssocPattern, v any, caps capture.Set) (capture.Set, error) {
	if exact, ok := p.key.(ExactPattern); ok {
		val, found := value.Lookup(v, exact.value)
		if !found {
			return capture.Empty(), ErrNoMatch
		}
		return m.matchEntry(p, exact.value, val, caps, false)
	}
	entries, ok := value.Entries(v)
	if !ok {
		return capture.Empty(), ErrNoMatch
	}
	_, byValue := p.key.(WildcardPattern)
	var abnormal error
	for _, e := range entries {
		d, err := m.matchEntry(p, e.Key, e.Value, caps, byValue)
		if err == nil {
			return d, nil
		}
		if !IsNoMatch(err) && abnormal == nil {
			abnormal = err
		}
	}
	if abnormal != nil {
		return capture.Empty(), abnormal
	}
	return capture.Empty(), ErrNoMatch
}

func (m Machine) matchEntry(p AssocPattern, key, val any, caps capture.Set, byValue bool) (capture.Set, error) {
	var kd, vd capture.Set
	var err error
	if byValue {
		if vd, err = m.matchValue(p.val, val, caps); err != nil {
			return capture.Empty(), err
		}
		if kd, err = m.Match(p.key, key, caps.Merge(vd)); err != nil {
			return capture.Empty(), err
		}
	} else {
		if kd, err = m.Match(p.key, key, caps); err != nil {
			return capture.Empty(), err
		}
		if vd, err = m.matchValue(p.val, val, caps.Merge(kd)); err != nil {
			return capture.Empty(), err
		}
	}
	delta := kd.Merge(vd)
	if p.bind != "" {
		delta = delta.Bind(p.bind, val)
	}
	return delta, nil
}

func (m Machine) matchValue(p Pattern, v any, caps capture.Set) (capture.Set, error) {
	if p == nil {
		return capture.Empty(), nil
	}
	return m.Match(p, v, caps)
}

func (m Machine) matchObject(p ObjectPattern, v any, caps capture.Set) (capture.Set, error) {
	none := capture.Empty()
	if p.spec != nil && !p.spec.Check(v) {
		return none, ErrNoMatch
	}
	delta, running := none, caps
	for _, prop := range p.props {
		pv, ok := value.Field(v, prop.Name)
		if !ok {
			return none, ErrNoMatch
		}
		if prop.Pattern != nil {
			d, err := m.Match(prop.Pattern, pv, running)
			if err != nil {
				return none, err
			}
			delta, running = delta.Merge(d), running.Merge(d)
		}
		if prop.Capture {
			delta, running = delta.Bind(prop.Name, pv), running.Bind(prop.Name, pv)
		}
	}
	return delta, nil
}

func (m Machine) matchDestructure(p DestructurePattern, v any, caps capture.Set) (capture.Set, error) {
	none := capture.Empty()
	x, err := p.path.Replay(v, m.policy).Get()
	if err != nil {
		return none, &MismatchError{Cause: err}
	}
	delta := none
	if p.inner != nil {
		if delta, err = m.Match(p.inner, x, caps); err != nil {
			return none, err
		}
	}
	if name := p.BindName(); name != "" {
		delta = delta.Bind(name, x)
	}
	return delta, nil
}
