/*
Package pattern implements structural patterns and the interpreter matching
them against values.

Patterns form a closed family of immutable variants:

    ExactPattern        strict equality with a literal
    WildcardPattern     matches anything
    TypePattern         type membership, via a typecheck.Spec
    RegexPattern        regular expression over strings
    CallbackPattern     user predicate
    GroupPattern        conjunction (And) or disjunction (Or) of patterns
    ListPattern         positional sequence, at most one rest element;
                        in mapped mode a list of keyed sub-patterns
    RestPattern         the variable-length part of a list
    AssocPattern        key/value entry of a map-like value
    ObjectPattern       typed object with properties
    DestructurePattern  replay of an access path

Every pattern may carry a bind name. If the pattern matches, the matched
value (for Assoc: the entry's value; for Rest: the run of elements; for
Destructure: the value at the end of the path) is captured under that name.

A Machine matches a pattern against a value, given the captures made so far.
It returns the captures the pattern itself produced, or an error. Ordinary
non-matches are reported as errors for which errors.Is(err, ErrNoMatch)
holds. Every other error is abnormal, e.g. a predicate which panicked; it
disqualifies the pattern as well, but is worth reporting to the user.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package pattern

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'fpmatch.pattern'.
func tracer() tracing.Trace {
	return tracing.Select("fpmatch.pattern")
}

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("pattern: "+msg, msgargs...)
		panic(msg)
	}
}
