package fpmatch

// Case is a pattern spec together with guards and results.
//
// Pattern holds the arguments for the pattern compiler; an empty Pattern
// makes a default case, which matches every value. If Exact is set, the
// single argument of Pattern is compared with the value as it is, without
// interpreting strings, slices or maps as patterns.
//
// Guards are callables (functions or bind.Callables) which see the captures
// of the pattern. Result is computed if every guard returns a truthy value,
// Else if one of them does not. Result and Else may be a ResultSpec, a
// callable, a *Matcher, a []Case or any other value, which is returned as it
// is. A nil Else means there is no else-result; use Value(nil) for an
// else-result of nil.
//
// Binds lists additional bind names. Names of parameters of guards and
// results, and names referenced by Ret and Continue, are bind names anyway.
type Case struct {
	Pattern []any
	Exact   bool
	Guards  []any
	Result  any
	Else    any
	Binds   []string
}

// When creates a case for the pattern spec args.
func When(args ...any) Case {
	return Case{Pattern: args}
}

// Is creates a case matching values equal to v.
func Is(v any) Case {
	return Case{Pattern: []any{v}, Exact: true}
}

// Default creates a case which matches every value.
func Default() Case {
	return Case{}
}

// If adds guards to c.
func (c Case) If(guards ...any) Case {
	c.Guards = append(append([]any(nil), c.Guards...), guards...)
	return c
}

// Then sets the result of c.
func (c Case) Then(result any) Case {
	c.Result = result
	return c
}

// Otherwise sets the else-result of c.
func (c Case) Otherwise(result any) Case {
	c.Else = result
	return c
}

// Bind adds bind names to c.
func (c Case) Bind(names ...string) Case {
	c.Binds = append(append([]string(nil), c.Binds...), names...)
	return c
}

// IsDefault is true for cases without a pattern spec.
func (c Case) IsDefault() bool {
	return len(c.Pattern) == 0
}
