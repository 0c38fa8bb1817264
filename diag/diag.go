/*
Package diag explains why no case of a matcher matched a value.

For every case tried, the matcher records an Outcome. The diagnostic groups
consecutive failed cases of the same kind into one line and lists errors
raised by predicates, guards and results below the case which caused them:

    No case matched int(99):
      did not match exact values: 1, 3, 5, 'foo'
      did not match any: 1, 2 or 3
      did not match types: int, float
      matched with _:
        Exception: arg 1 (n) must be of type int, string('a') given

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package diag

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	tp "github.com/xlab/treeprint"

	"github.com/npillmayer/fpmatch/pattern"
	"github.com/npillmayer/fpmatch/value"
)

// Outcome records how a single case failed.
type Outcome struct {
	Pattern   pattern.Pattern
	Err       error // abnormal failure while matching the pattern
	Matched   bool  // the pattern matched, but guards or result failed
	Rejected  bool  // guards returned false and there was no else-result
	GuardErr  error
	ResultErr error
}

// Diagnostic is the explanation of an exhausted match.
type Diagnostic struct {
	Value    any
	Outcomes []Outcome
}

// New creates a diagnostic for value v.
func New(v any, outcomes []Outcome) *Diagnostic {
	return &Diagnostic{Value: v, Outcomes: append([]Outcome(nil), outcomes...)}
}

// String renders the diagnostic as text.
func (d *Diagnostic) String() string {
	lines := []string{fmt.Sprintf("No case matched %s:", value.Describe(d.Value))}
	for i := 0; i < len(d.Outcomes); {
		o := d.Outcomes[i]
		if o.Matched {
			label := matchedLabel(o.Pattern)
			if !strings.Contains(label, ": ") {
				label += ":"
			}
			lines = append(lines, "  matched with "+label)
			switch {
			case o.GuardErr != nil:
				lines = append(lines, "    Guard failed: "+indent(o.GuardErr.Error()))
			case o.ResultErr != nil:
				lines = append(lines, "    Exception: "+indent(o.ResultErr.Error()))
			case o.Rejected:
				lines = append(lines, "    Guard rejected the value")
			}
			i++
			continue
		}
		j := i + 1
		for j < len(d.Outcomes) && groupable(o, d.Outcomes[j]) {
			j++
		}
		run := d.Outcomes[i:j]
		lines = append(lines, "  "+failedLine(run))
		for _, r := range run {
			if r.Err != nil {
				lines = append(lines, "    Exception: "+indent(r.Err.Error()))
			}
		}
		i = j
	}
	return strings.Join(lines, "\n")
}

func indent(msg string) string {
	return strings.ReplaceAll(msg, "\n", "\n    ")
}

// groupable tells if a failed outcome b may be listed in the same line as a.
// Groups are never merged, as their connectives would become ambiguous.
func groupable(a, b Outcome) bool {
	if b.Matched || a.Pattern == nil || b.Pattern == nil {
		return false
	}
	if a.Pattern.Variant() != b.Pattern.Variant() {
		return false
	}
	_, isGroup := a.Pattern.(pattern.GroupPattern)
	return !isGroup
}

func failedLine(run []Outcome) string {
	p := run[0].Pattern
	if p == nil {
		return "did not match"
	}
	reprs := make([]string, len(run))
	for i, o := range run {
		reprs[i] = o.Pattern.String()
	}
	plural := func(s string) string {
		if len(run) > 1 {
			return s + "s"
		}
		return s
	}
	switch p := p.(type) {
	case pattern.ExactPattern:
		return "did not match " + plural("exact value") + ": " + strings.Join(reprs, ", ")
	case pattern.TypePattern:
		return "did not match " + plural("type") + ": " + strings.Join(reprs, ", ")
	case pattern.GroupPattern:
		if p.Connective() == pattern.Or {
			return "did not match any: " + enumerate(p.Patterns(), "or")
		}
		return "did not match all: " + enumerate(p.Patterns(), "and")
	}
	return "did not match: " + strings.Join(reprs, ", ")
}

func enumerate(ps []pattern.Pattern, conj string) string {
	s := make([]string, len(ps))
	for i, p := range ps {
		s[i] = p.String()
	}
	if len(s) == 1 {
		return s[0]
	}
	return strings.Join(s[:len(s)-1], ", ") + " " + conj + " " + s[len(s)-1]
}

func matchedLabel(p pattern.Pattern) string {
	switch p := p.(type) {
	case nil:
		return "default"
	case pattern.WildcardPattern:
		return p.String()
	case pattern.ExactPattern:
		return "exact value: " + p.String()
	case pattern.TypePattern:
		return "type: " + p.String()
	case pattern.GroupPattern:
		if p.Connective() == pattern.Or {
			return "any: " + enumerate(p.Patterns(), "or")
		}
		return "all: " + enumerate(p.Patterns(), "and")
	}
	return p.Variant() + ": " + p.String()
}

// Errors aggregates every error recorded in the outcomes, or returns nil.
func (d *Diagnostic) Errors() error {
	var all *multierror.Error
	for i, o := range d.Outcomes {
		for _, err := range []error{o.Err, o.GuardErr, o.ResultErr} {
			if err != nil {
				all = multierror.Append(all, errors.Wrapf(err, "case %d", i+1))
			}
		}
	}
	return all.ErrorOrNil()
}

// Tree renders the diagnostic as a tree, one branch per case.
func (d *Diagnostic) Tree() string {
	tree := tp.New()
	root := tree.AddBranch(fmt.Sprintf("no case matched %s", value.Describe(d.Value)))
	for i, o := range d.Outcomes {
		name := "default"
		if o.Pattern != nil {
			name = o.Pattern.Variant() + " " + o.Pattern.String()
		}
		b := root.AddBranch(fmt.Sprintf("case %d: %s", i+1, name))
		switch {
		case o.Matched && o.GuardErr != nil:
			b.AddNode("guard failed: " + o.GuardErr.Error())
		case o.Matched && o.ResultErr != nil:
			b.AddNode("result failed: " + o.ResultErr.Error())
		case o.Matched:
			b.AddNode("guard rejected")
		case o.Err != nil:
			b.AddNode("error: " + o.Err.Error())
		default:
			b.AddNode("did not match")
		}
	}
	return tree.String()
}
