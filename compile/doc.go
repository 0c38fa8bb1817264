/*
Package compile builds pattern trees from loosely typed pattern specs.

Case tables are written with plain Go values. The compiler turns them into
patterns following a fixed set of rules:

    nil, booleans, numbers      exact match
    ""                          exact match
    "_", compile.Any            wildcard
    "n", with n a bind name     wildcard capturing as n
    "n@_"                       wildcard capturing as n
    "/…/flags"                  regular expression
    "*", "*n"                   rest of a list (capturing as n)
    other strings               exact match
    []any{…}                    list pattern, elements compiled recursively
    map[string]any, value.Dict  keyed entries
    func values, bind.Callable  predicate
    typecheck.Spec              type check
    access.Path                 destructuring
    compile.As(n, …)            sub-pattern capturing as n
    compile.OneOf(…)            disjunction
    pattern.Pattern             taken as it is

A pattern spec with two arguments, the first being a type (name or
typecheck.Spec) and the second a list or keyed structure, builds an object
pattern. Any other spec with several arguments builds a group: a disjunction
if all arguments are literals, a conjunction otherwise.

Bind names are the parameter names of the callables of a case. They are
passed to the compiler, which uses them to decide which strings, keys and
properties capture.

A BuildContext owns deferred sub-patterns created with Key and When. They are
referenced by handles, which are only valid within the context that created
them.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package compile

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'fpmatch.compile'.
func tracer() tracing.Trace {
	return tracing.Select("fpmatch.compile")
}
