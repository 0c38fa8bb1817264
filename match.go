package fpmatch

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/npillmayer/fpmatch/bind"
	"github.com/npillmayer/fpmatch/capture"
	"github.com/npillmayer/fpmatch/compile"
	"github.com/npillmayer/fpmatch/diag"
	"github.com/npillmayer/fpmatch/pattern"
	"github.com/npillmayer/fpmatch/result"
	"github.com/npillmayer/fpmatch/value"
)

// Matcher is an ordered, non-empty list of compiled cases.
type Matcher struct {
	cases   []*compiledCase
	cfg     config
	machine pattern.Machine
}

type compiledCase struct {
	src     Case
	once    sync.Once
	err     error
	pattern pattern.Pattern // nil for default cases
	guards  []bind.Callable
	result  producer
	els     producer // nil if there is no else-result
}

// New creates a matcher for cases. Unless option Lazy is given, all cases are
// compiled immediately, and a *BuildError is returned for malformed specs.
// An empty list of cases is an error as well.
func New(cases []Case, opts ...Option) (*Matcher, error) {
	return newMatcher(cases, configure(opts))
}

// Compile creates a matcher for cases, with default options.
func Compile(cases ...Case) (*Matcher, error) {
	return New(cases)
}

// Match matches v against cases once.
func Match(v any, cases ...Case) (any, error) {
	m, err := New(cases)
	if err != nil {
		return nil, err
	}
	return m.Match(v)
}

func newMatcher(cases []Case, cfg config) (*Matcher, error) {
	if len(cases) == 0 {
		return nil, &BuildError{Msg: "matcher needs at least one case"}
	}
	m := &Matcher{
		cases:   make([]*compiledCase, len(cases)),
		cfg:     cfg,
		machine: pattern.NewMachine(cfg.policy),
	}
	for i, c := range cases {
		m.cases[i] = &compiledCase{src: c}
	}
	if !cfg.lazy {
		for i := range m.cases {
			if err := m.prepare(i); err != nil {
				return nil, err
			}
		}
	}
	tracer().Debugf("created matcher with %d case(s)", len(cases))
	return m, nil
}

// Len is the number of cases.
func (m *Matcher) Len() int {
	return len(m.cases)
}

// Patterns returns the compiled pattern of each case, nil for default cases.
func (m *Matcher) Patterns() ([]pattern.Pattern, error) {
	ps := make([]pattern.Pattern, len(m.cases))
	for i, c := range m.cases {
		if err := m.prepare(i); err != nil {
			return nil, err
		}
		ps[i] = c.pattern
	}
	return ps, nil
}

// --- Compiling cases -------------------------------------------------------

func (m *Matcher) prepare(i int) error {
	c := m.cases[i]
	c.once.Do(func() {
		if err := m.compileCase(c); err != nil {
			tracer().Debugf("case %d: %v", i+1, err)
			c.err = errors.Wrapf(err, "case %d", i+1)
		}
	})
	return c.err
}

func (m *Matcher) compileCase(c *compiledCase) error {
	ctx := m.cfg.ctx
	src := c.src
	if len(src.Pattern) > 0 || src.Exact {
		p, err := ctx.Compile(src.Pattern, bindNames(ctx, src), src.Exact)
		if err != nil {
			return err
		}
		c.pattern = p
	}
	for _, g := range src.Guards {
		fn, err := ctx.Callable(g)
		if err != nil {
			return &BuildError{Msg: "invalid guard", Cause: err}
		}
		c.guards = append(c.guards, fn)
	}
	var err error
	if c.result, err = toResult(src.Result).prepare(m); err != nil {
		return err
	}
	if src.Else != nil {
		c.els, err = toResult(src.Else).prepare(m)
	}
	return err
}

// bindNames collects the bind names of a case: the names given explicitly,
// and the names consumed by its guards and results.
func bindNames(ctx *compile.BuildContext, c Case) []string {
	names := append([]string(nil), c.Binds...)
	for _, g := range c.Guards {
		if fn, err := ctx.Callable(g); err == nil {
			names = append(names, params(fn)...)
		}
	}
	names = append(names, toResult(c.Result).names(ctx)...)
	if c.Else != nil {
		names = append(names, toResult(c.Else).names(ctx)...)
	}
	return names
}

func params(c bind.Callable) []string {
	var names []string
	for _, n := range c.Params() {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// --- Matching --------------------------------------------------------------

// Match matches v against the cases in order and returns the result of the
// first case which applies. initial captures are visible to every case.
// If no case applies, a *NoMatchError is returned.
func (m *Matcher) Match(v any, initial ...capture.Set) (any, error) {
	caps := capture.Empty()
	for _, c := range initial {
		caps = caps.Merge(c)
	}
	outcomes := make([]diag.Outcome, 0, len(m.cases))
	for i := range m.cases {
		if err := m.prepare(i); err != nil {
			return nil, err
		}
		res, outcome, ok := m.try(i, v, caps)
		if ok {
			tracer().Debugf("case %d matched %s", i+1, value.Describe(v))
			return res, nil
		}
		outcomes = append(outcomes, outcome)
	}
	assertThat(len(outcomes) == len(m.cases), "%d outcomes for %d cases", len(outcomes), len(m.cases))
	tracer().Debugf("no case matched %s", value.Describe(v))
	return nil, &NoMatchError{Value: v, Diagnostic: diag.New(v, outcomes)}
}

// Try is Match returning a result.
func (m *Matcher) Try(v any, initial ...capture.Set) result.Result[any] {
	res, err := m.Match(v, initial...)
	return result.From(res, err)
}

func (m *Matcher) try(i int, v any, caps capture.Set) (any, diag.Outcome, bool) {
	c := m.cases[i]
	outcome := diag.Outcome{Pattern: c.pattern}
	if c.pattern != nil {
		delta, err := m.machine.Match(c.pattern, v, caps)
		if err != nil {
			if !pattern.IsNoMatch(err) {
				tracer().Debugf("case %d: %v", i+1, err)
				outcome.Err = err
			}
			return nil, outcome, false
		}
		caps = caps.Merge(delta)
	}
	outcome.Matched = true
	produce := c.result
	accepted, err := m.checkGuards(i, v, caps)
	if err != nil {
		tracer().Debugf("case %d: guard failed: %v", i+1, err)
		outcome.GuardErr = err
		return nil, outcome, false
	}
	if !accepted {
		if c.els == nil {
			outcome.Rejected = true
			return nil, outcome, false
		}
		produce = c.els
	}
	res, err := produce(m, v, caps)
	if err != nil {
		tracer().Debugf("case %d: result failed: %v", i+1, err)
		outcome.ResultErr = &ResultEvaluationError{Case: i + 1, Err: err}
		return nil, outcome, false
	}
	return res, outcome, true
}

func (m *Matcher) checkGuards(i int, v any, caps capture.Set) (bool, error) {
	for _, g := range m.cases[i].guards {
		r, err := bind.Invoke(g, caps, v)
		if err != nil {
			return false, &GuardEvaluationError{Case: i + 1, Guard: g, Err: err}
		}
		if !value.Truthy(r) {
			tracer().Debugf("case %d: %s rejected the captures", i+1, g)
			return false, nil
		}
	}
	return true, nil
}
