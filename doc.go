/*
Package fpmatch matches values against ordered lists of cases.

A case combines a pattern spec with optional guards, a result and an optional
else-result. Pattern specs are plain Go values, compiled once by package
compile into pattern trees:

    m, err := fpmatch.Compile(
        fpmatch.When(0).Then("zero"),
        fpmatch.When(typecheck.Int).Then(bind.Func(func(n int) string {
            return strconv.Itoa(n)
        })),
        fpmatch.Default().Then("other"),
    )
    s, err := m.Match(42)   // "42"

The first case whose pattern matches, and whose guards accept the captures,
computes the result. Callables in guards and results receive the captures
of the pattern, bound by parameter name or position (see package bind).
A guard which rejects the captures lets the case fall through to the next
one, unless the case has an else-result. Errors raised while evaluating
guards or results disqualify the case but do not stop the match.

If no case matches, Match returns a *NoMatchError. Its message explains for
every case why it did not apply (see package diag).

A Matcher is immutable after construction and may be shared between
goroutines.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package fpmatch

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'fpmatch'.
func tracer() tracing.Trace {
	return tracing.Select("fpmatch")
}

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("fpmatch: "+msg, msgargs...)
		panic(msg)
	}
}
